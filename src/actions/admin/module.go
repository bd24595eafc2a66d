package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/mitchmarns/hockey-bot/src/config"
	shareddiscord "github.com/mitchmarns/hockey-bot/src/discord"
	"github.com/mitchmarns/hockey-bot/src/guildconfig"
	"gorm.io/gorm"
)

// Module is the admin surface: per-guild review routing and form editing.
type Module struct {
	config  *config.AdminConfig
	session *discordgo.Session
	handler *Handler
}

func NewModule(cfg *config.AdminConfig, db *gorm.DB) (*Module, error) {
	session, err := discordgo.New("Bot " + cfg.Base.Token)
	if err != nil {
		return nil, fmt.Errorf("admin: create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds

	m := &Module{
		config:  cfg,
		session: session,
		handler: &Handler{GuildConfig: guildconfig.NewStore(db)},
	}

	m.session.AddHandler(m.onReady)
	m.session.AddHandler(m.onInteractionCreate)
	return m, nil
}

// Name implements actions.Module.
func (m *Module) Name() string { return "admin" }

func (m *Module) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("admin: logged in as %s", s.State.User.Username)

	err := shareddiscord.RegisterSlashCommands(s, m.config.Base.GuildID,
		shareddiscord.CommandConfigReviewChannel,
		shareddiscord.CommandConfigReviewerRole,
		shareddiscord.CommandConfigShow,
		shareddiscord.CommandFormShow,
		shareddiscord.CommandFormAdd,
		shareddiscord.CommandFormRemove,
		shareddiscord.CommandFormReset,
	)
	if err != nil {
		log.Printf("admin: failed to register slash commands: %v", err)
	}
}

func (m *Module) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case shareddiscord.CommandConfigReviewChannel:
		m.handler.HandleConfigReviewChannel(s, i)
	case shareddiscord.CommandConfigReviewerRole:
		m.handler.HandleConfigReviewerRole(s, i)
	case shareddiscord.CommandConfigShow:
		m.handler.HandleConfigShow(s, i)
	case shareddiscord.CommandFormShow:
		m.handler.HandleFormShow(s, i)
	case shareddiscord.CommandFormAdd:
		m.handler.HandleFormAdd(s, i)
	case shareddiscord.CommandFormRemove:
		m.handler.HandleFormRemove(s, i)
	case shareddiscord.CommandFormReset:
		m.handler.HandleFormReset(s, i)
	}
}

func (m *Module) Start(ctx context.Context) error {
	if err := m.session.Open(); err != nil {
		return fmt.Errorf("admin: open Discord connection: %w", err)
	}
	return nil
}

func (m *Module) Stop(ctx context.Context) {
	if m.session != nil {
		m.session.Close()
	}
}
