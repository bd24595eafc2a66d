package data

import (
	"sync"

	"github.com/mitchmarns/hockey-bot/src/types"
	"gorm.io/gorm"
)

var (
	initMu   sync.Mutex
	initDone bool
)

// Init runs the schema migration exactly once per process. Concurrent first
// callers block on the mutex and see the done flag after it is set.
func Init(db *gorm.DB) error {
	if initDone {
		return nil
	}

	initMu.Lock()
	defer initMu.Unlock()

	if initDone {
		return nil
	}

	if err := Migrate(db); err != nil {
		return err
	}

	initDone = true
	return nil
}

// Migrate applies the additive schema migration. Safe to re-run; AutoMigrate
// only adds missing tables, columns and indexes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Setting{},
		&types.GuildSettings{},
		&types.GuildForm{},
		&types.Character{},
		&types.KnownUser{},
		&types.ReviewMessage{},
	)
}
