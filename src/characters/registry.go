package characters

import (
	"fmt"

	"github.com/mitchmarns/hockey-bot/src/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Registry is the durable (guild, message) -> application mapping behind the
// review channel's approve/reject buttons. Entries are written when an
// application is routed for review and removed when a decision lands, so a
// restart only restores controls that are still actionable.
type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Record saves the mapping, replacing any previous entry for the message.
func (r *Registry) Record(guildID, channelID, messageID string, characterID uint64) error {
	row := types.ReviewMessage{
		GuildID:     guildID,
		MessageID:   messageID,
		ChannelID:   channelID,
		CharacterID: characterID,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"channel_id", "character_id"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("characters: record review message: %w", err)
	}
	return nil
}

// Remove drops the mapping for a message. Removing an absent entry is not an
// error.
func (r *Registry) Remove(guildID, messageID string) error {
	err := r.db.Delete(&types.ReviewMessage{}, "guild_id = ? AND message_id = ?", guildID, messageID).Error
	if err != nil {
		return fmt.Errorf("characters: remove review message: %w", err)
	}
	return nil
}

// ListForGuild returns every live mapping for a guild.
func (r *Registry) ListForGuild(guildID string) ([]types.ReviewMessage, error) {
	var rows []types.ReviewMessage
	if err := r.db.Find(&rows, "guild_id = ?", guildID).Error; err != nil {
		return nil, fmt.Errorf("characters: list review messages: %w", err)
	}
	return rows, nil
}
