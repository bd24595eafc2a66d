package types

import (
	"time"

	"gorm.io/datatypes"
)

// Application status lifecycle.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}

// Per-guild review configuration. Rows are upserted, never deleted. A nil
// ReviewerRoleID means only members with Manage Server may review.
type GuildSettings struct {
	GuildID         string  `gorm:"primaryKey;size:64"`
	ReviewChannelID *string `gorm:"size:64"`
	ReviewerRoleID  *string `gorm:"size:64"`
	UpdatedAt       time.Time
}

// Per-guild application form schema, stored as an ordered JSON field list.
// Guilds without a row fall back to the built-in default form.
type GuildForm struct {
	GuildID   string         `gorm:"primaryKey;size:64"`
	Fields    datatypes.JSON `gorm:"type:json;not null"`
	UpdatedAt time.Time
}

// Character applications
type Character struct {
	ID             uint64  `gorm:"primaryKey"`
	GuildID        string  `gorm:"size:64;index;not null"`
	OwnerID        string  `gorm:"size:64;index;not null"`
	Name           string  `gorm:"size:100;not null"`
	ExtraJSON      *string `gorm:"type:text"`
	Status         string  `gorm:"size:16;not null;default:pending;index"`
	SubmittedAt    time.Time
	ReviewedBy     *string `gorm:"size:64"`
	DecisionReason *string `gorm:"type:text"`
}

// Users that have submitted at least one application in a guild.
type KnownUser struct {
	GuildID   string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"primaryKey;size:64"`
	FirstSeen time.Time
}

// Review channel messages carrying live approve/reject controls. Keyed by
// (guild, message) so controls can be re-attached after a restart.
type ReviewMessage struct {
	GuildID     string `gorm:"primaryKey;size:64"`
	MessageID   string `gorm:"primaryKey;size:64"`
	ChannelID   string `gorm:"size:64;not null"`
	CharacterID uint64 `gorm:"not null"`
}
