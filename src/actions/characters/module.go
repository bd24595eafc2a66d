package characters

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	charstore "github.com/mitchmarns/hockey-bot/src/characters"
	"github.com/mitchmarns/hockey-bot/src/config"
	"github.com/mitchmarns/hockey-bot/src/data"
	shareddiscord "github.com/mitchmarns/hockey-bot/src/discord"
	"github.com/mitchmarns/hockey-bot/src/guildconfig"
	"github.com/mitchmarns/hockey-bot/src/ratelimit"
	"github.com/mitchmarns/hockey-bot/src/review"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Module is the member-facing surface: /apply and its modal, character
// listing and removal, the reviewer queue and the approve/reject controls.
type Module struct {
	config     *config.CharactersConfig
	db         *gorm.DB
	session    *discordgo.Session
	rdb        *redis.Client
	controller *review.Controller
	handler    *Handler
}

func NewModule(cfg *config.CharactersConfig, db *gorm.DB) (*Module, error) {
	session, err := discordgo.New("Bot " + cfg.Base.Token)
	if err != nil {
		return nil, fmt.Errorf("characters: create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = data.MustRedis(cfg.RedisURL)
	}

	store := charstore.NewStore(db)
	registry := charstore.NewRegistry(db)
	guildConfig := guildconfig.NewStore(db)
	controller := review.NewController(store, registry, guildConfig, review.NewSessionMessenger(session), rdb)

	m := &Module{
		config:     cfg,
		db:         db,
		session:    session,
		rdb:        rdb,
		controller: controller,
	}

	m.handler = &Handler{
		Store:       store,
		GuildConfig: guildConfig,
		Controller:  controller,
		Limiter:     ratelimit.New(cfg.SubmitCooldown),
	}

	m.initHandlers()
	return m, nil
}

// Name implements actions.Module.
func (m *Module) Name() string { return "characters" }

func (m *Module) initHandlers() {
	m.session.AddHandler(m.onReady)
	m.session.AddHandler(m.onInteractionCreate)
}

func (m *Module) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("characters: logged in as %s", s.State.User.Username)

	err := shareddiscord.RegisterSlashCommands(s, m.config.Base.GuildID,
		shareddiscord.CommandApply,
		shareddiscord.CommandCharacters,
		shareddiscord.CommandUnlink,
		shareddiscord.CommandApps,
	)
	if err != nil {
		log.Printf("characters: failed to register slash commands: %v", err)
	}

	// Reconnect the approve/reject controls that were live before the last
	// shutdown.
	go func() {
		for _, guild := range r.Guilds {
			if err := m.controller.Restore(guild.ID); err != nil {
				log.Printf("characters: restore guild %s: %v", guild.ID, err)
			}
		}
	}()
}

func (m *Module) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case shareddiscord.CommandApply:
			m.handler.HandleApply(s, i)
		case shareddiscord.CommandCharacters:
			m.handler.HandleCharacters(s, i)
		case shareddiscord.CommandUnlink:
			m.handler.HandleUnlink(s, i)
		case shareddiscord.CommandApps:
			m.handler.HandleApps(s, i)
		}

	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		if customID == review.CustomIDApply {
			m.handler.HandleApplySubmit(s, i)
			return
		}
		if action, guildID, charID, ok := review.ParseCustomID(customID); ok && action == review.ActionRejectReason {
			m.handler.HandleRejectReason(s, i, guildID, charID)
		}

	case discordgo.InteractionMessageComponent:
		action, guildID, charID, ok := review.ParseCustomID(i.MessageComponentData().CustomID)
		if !ok {
			return
		}
		switch action {
		case review.ActionApprove:
			m.handler.HandleApprove(s, i, guildID, charID)
		case review.ActionReject:
			m.handler.HandleReject(s, i, guildID, charID)
		}
	}
}

func (m *Module) Start(ctx context.Context) error {
	if err := m.session.Open(); err != nil {
		return fmt.Errorf("characters: open Discord connection: %w", err)
	}
	return nil
}

func (m *Module) Stop(ctx context.Context) {
	if m.session != nil {
		m.session.Close()
	}
	if m.rdb != nil {
		m.rdb.Close()
	}
}
