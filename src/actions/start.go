package actions

import (
	"context"
	"fmt"
	"log"

	adminmodule "github.com/mitchmarns/hockey-bot/src/actions/admin"
	charactersmodule "github.com/mitchmarns/hockey-bot/src/actions/characters"
	"github.com/mitchmarns/hockey-bot/src/config"
	"gorm.io/gorm"
)

// StartAll wires up enabled modules and starts the manager.
func StartAll(ctx context.Context, db *gorm.DB) (*Manager, error) {
	mgr := NewManager()

	charCfg := config.LoadCharactersConfig(db)
	if charCfg.Enabled {
		mod, err := charactersmodule.NewModule(&charCfg, db)
		if err != nil {
			return nil, fmt.Errorf("actions: init characters module: %w", err)
		}
		if err := mgr.Add(mod); err != nil {
			return nil, fmt.Errorf("actions: add characters module: %w", err)
		}
	} else {
		log.Printf("actions: characters module disabled via configuration")
	}

	adminCfg := config.LoadAdminConfig(db)
	if adminCfg.Enabled {
		mod, err := adminmodule.NewModule(&adminCfg, db)
		if err != nil {
			return nil, fmt.Errorf("actions: init admin module: %w", err)
		}
		if err := mgr.Add(mod); err != nil {
			return nil, fmt.Errorf("actions: add admin module: %w", err)
		}
	} else {
		log.Printf("actions: admin module disabled via configuration")
	}

	if err := mgr.Start(ctx); err != nil {
		return nil, err
	}

	return mgr, nil
}
