// Per-guild review configuration and form schema. Setters are idempotent
// upserts on the guild primary key; the last writer wins.
package guildconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mitchmarns/hockey-bot/src/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidForm marks a rejected form schema write.
var ErrInvalidForm = errors.New("invalid form")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetSettings returns the guild's settings, or nil when the guild was never
// configured.
func (s *Store) GetSettings(guildID string) (*types.GuildSettings, error) {
	var row types.GuildSettings
	err := s.db.First(&row, "guild_id = ?", guildID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("guildconfig: get settings: %w", err)
	}
	return &row, nil
}

// SetReviewChannel upserts the review destination channel. A nil channelID
// clears it.
func (s *Store) SetReviewChannel(guildID string, channelID *string) error {
	row := types.GuildSettings{GuildID: guildID, ReviewChannelID: channelID, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"review_channel_id", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("guildconfig: set review channel: %w", err)
	}
	return nil
}

// SetReviewerRole upserts the reviewer role. A nil roleID restores
// admins-only reviewing.
func (s *Store) SetReviewerRole(guildID string, roleID *string) error {
	row := types.GuildSettings{GuildID: guildID, ReviewerRoleID: roleID, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reviewer_role_id", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("guildconfig: set reviewer role: %w", err)
	}
	return nil
}

// GetForm returns the guild's form schema. Guilds without a stored form get
// the built-in default. The returned schema is a copy; mutations require a
// SetForm write-back and can lose concurrent edits (admin-frequency race,
// accepted).
func (s *Store) GetForm(guildID string) (Schema, error) {
	var row types.GuildForm
	err := s.db.First(&row, "guild_id = ?", guildID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultSchema(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("guildconfig: get form: %w", err)
	}

	var schema Schema
	if err := json.Unmarshal(row.Fields, &schema); err != nil {
		return nil, fmt.Errorf("guildconfig: decode form for guild %s: %w", guildID, err)
	}
	if len(schema) == 0 {
		return DefaultSchema(), nil
	}
	return schema, nil
}

// SetForm validates and stores the full schema, replacing any previous one.
func (s *Store) SetForm(guildID string, schema Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("guildconfig: encode form: %w", err)
	}

	row := types.GuildForm{GuildID: guildID, Fields: datatypes.JSON(raw), UpdatedAt: time.Now()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("guildconfig: set form: %w", err)
	}
	return nil
}

// ResetForm removes the stored schema so the guild falls back to the default.
func (s *Store) ResetForm(guildID string) error {
	err := s.db.Delete(&types.GuildForm{}, "guild_id = ?", guildID).Error
	if err != nil {
		return fmt.Errorf("guildconfig: reset form: %w", err)
	}
	return nil
}
