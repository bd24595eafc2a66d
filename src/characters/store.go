// Character application records. All lookups are guild-scoped; an ID valid
// in one guild is absent in every other.
package characters

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchmarns/hockey-bot/src/types"
	"gorm.io/gorm"
)

var (
	// ErrValidation marks a submission rejected for bad input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an application that does not exist in the guild.
	// Deliberately indistinguishable from "exists in another guild".
	ErrNotFound = errors.New("application not found")
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a pending application and registers the owner as a known
// user in the same transaction. Returns the new application ID.
func (s *Store) Create(guildID, ownerID, name string, extra map[string]string) (uint64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: missing required field: name", ErrValidation)
	}

	var extraJSON *string
	if len(extra) > 0 {
		raw, err := json.Marshal(extra)
		if err != nil {
			return 0, fmt.Errorf("characters: encode extra fields: %w", err)
		}
		v := string(raw)
		extraJSON = &v
	}

	row := types.Character{
		GuildID:     guildID,
		OwnerID:     ownerID,
		Name:        name,
		ExtraJSON:   extraJSON,
		Status:      types.StatusPending,
		SubmittedAt: time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		user := types.KnownUser{GuildID: guildID, UserID: ownerID, FirstSeen: time.Now()}
		return tx.FirstOrCreate(&user, types.KnownUser{GuildID: guildID, UserID: ownerID}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("characters: create: %w", err)
	}

	return row.ID, nil
}

// Get returns the application by guild-scoped ID.
func (s *Store) Get(guildID string, id uint64) (*types.Character, error) {
	var row types.Character
	err := s.db.First(&row, "guild_id = ? AND id = ?", guildID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("characters: get %d: %w", id, err)
	}
	return &row, nil
}

// ListByOwner returns the owner's applications, most recent first. An empty
// status lists all of them.
func (s *Store) ListByOwner(guildID, ownerID, status string) ([]types.Character, error) {
	q := s.db.Where("guild_id = ? AND owner_id = ?", guildID, ownerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var rows []types.Character
	if err := q.Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("characters: list by owner: %w", err)
	}
	return rows, nil
}

// ListPending returns the oldest pending applications first, so reviewers
// work through a FIFO queue.
func (s *Store) ListPending(guildID string, limit int) ([]types.Character, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []types.Character
	err := s.db.Where("guild_id = ? AND status = ?", guildID, types.StatusPending).
		Order("submitted_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("characters: list pending: %w", err)
	}
	return rows, nil
}

// SetStatus records a decision. The update is unconditional: re-deciding an
// already-decided application overwrites the previous reviewer and reason.
func (s *Store) SetStatus(guildID string, id uint64, status, reviewerID string, reason *string) error {
	res := s.db.Model(&types.Character{}).
		Where("guild_id = ? AND id = ?", guildID, id).
		Updates(map[string]interface{}{
			"status":          status,
			"reviewed_by":     reviewerID,
			"decision_reason": reason,
		})
	if res.Error != nil {
		return fmt.Errorf("characters: set status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOwned removes the application only when it belongs to both the guild
// and the owner, and reports whether a row was removed. Registry entries are
// not cascaded; restoration purges any row left dangling.
func (s *Store) DeleteOwned(guildID, ownerID string, id uint64) (bool, error) {
	res := s.db.Delete(&types.Character{}, "guild_id = ? AND owner_id = ? AND id = ?", guildID, ownerID, id)
	if res.Error != nil {
		return false, fmt.Errorf("characters: delete owned: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ExtraFields decodes the stored extra-fields blob of a record.
func ExtraFields(c *types.Character) map[string]string {
	if c == nil || c.ExtraJSON == nil {
		return nil
	}
	var extra map[string]string
	if err := json.Unmarshal([]byte(*c.ExtraJSON), &extra); err != nil {
		return nil
	}
	return extra
}
