package config

import (
	"os"
	"strconv"
	"time"

	"github.com/mitchmarns/hockey-bot/src/data"
	"gorm.io/gorm"
)

// Base contains common configuration fields
type Base struct {
	Token   string
	GuildID string
}

// LoadBase loads common configuration (discord token, optional home guild).
// Values come from the settings table with environment fallbacks. An empty
// GuildID means slash commands are registered globally.
func LoadBase(db *gorm.DB) Base {
	return Base{
		Token:   GetSetting("discord_token", "DISCORD_TOKEN", ""),
		GuildID: GetSetting("guild_id", "GUILD_ID", ""),
	}
}

// CharactersConfig drives the characters module.
type CharactersConfig struct {
	Base            Base
	Enabled         bool
	SubmitCooldown  time.Duration
	RedisURL        string
}

func LoadCharactersConfig(db *gorm.DB) CharactersConfig {
	base := LoadBase(db)

	cooldownMinutes := 5
	if raw := GetSetting("submit_cooldown_minutes", "SUBMIT_COOLDOWN_MINUTES", ""); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			cooldownMinutes = v
		}
	}

	return CharactersConfig{
		Base:           base,
		Enabled:        GetSetting("characters_enabled", "CHARACTERS_ENABLED", "true") != "false",
		SubmitCooldown: time.Duration(cooldownMinutes) * time.Minute,
		RedisURL:       GetSetting("redis_url", "REDIS_URL", ""),
	}
}

// AdminConfig drives the admin configuration module.
type AdminConfig struct {
	Base    Base
	Enabled bool
}

func LoadAdminConfig(db *gorm.DB) AdminConfig {
	return AdminConfig{
		Base:    LoadBase(db),
		Enabled: GetSetting("admin_enabled", "ADMIN_ENABLED", "true") != "false",
	}
}

// GetSetting retrieves a setting with env fallback
func GetSetting(name, envKey, defaultValue string) string {
	val := data.GetSetting(name)
	if val == "" {
		val = os.Getenv(envKey)
	}
	if val == "" {
		val = defaultValue
	}
	return val
}
