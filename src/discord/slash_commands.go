package discord

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	CommandApply      = "apply"
	CommandCharacters = "characters"
	CommandUnlink     = "unlink"
	CommandApps       = "apps"

	CommandConfigReviewChannel = "config_reviewchannel"
	CommandConfigReviewerRole  = "config_reviewerrole"
	CommandConfigShow          = "config_show"
	CommandFormShow            = "form_show"
	CommandFormAdd             = "form_add"
	CommandFormRemove          = "form_remove"
	CommandFormReset           = "form_reset"
)

var commandDefinitions = map[string]*discordgo.ApplicationCommand{
	CommandApply: {
		Name:        CommandApply,
		Description: "Apply for a character (reviewed by the mod team)",
	},
	CommandCharacters: {
		Name:        CommandCharacters,
		Description: "List your characters or view one",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "id",
				Description: "Character ID; omit to list your characters in this server",
			},
		},
	},
	CommandUnlink: {
		Name:        CommandUnlink,
		Description: "Remove one of your characters",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "id",
				Description: "Character ID to remove (from this server)",
				Required:    true,
			},
		},
	},
	CommandApps: {
		Name:        CommandApps,
		Description: "Reviewer: view pending applications in this server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "limit",
				Description: "Max rows (default 20)",
			},
		},
	},
	CommandConfigReviewChannel: {
		Name:        CommandConfigReviewChannel,
		Description: "Set the review channel for this server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Channel where applications are posted for review",
				Required:    true,
			},
		},
	},
	CommandConfigReviewerRole: {
		Name:        CommandConfigReviewerRole,
		Description: "Set the reviewer role for this server (omit to clear)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Role allowed to approve/reject (admins always can)",
			},
		},
	},
	CommandConfigShow: {
		Name:        CommandConfigShow,
		Description: "Show current config for this server",
	},
	CommandFormShow: {
		Name:        CommandFormShow,
		Description: "Show this server's application form",
	},
	CommandFormAdd: {
		Name:        CommandFormAdd,
		Description: "Add a field to the application form",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "key",
				Description: "Field key (alphanumeric/underscore)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "label",
				Description: "Label shown on the form",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "style",
				Description: "Input style",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "short", Value: "short"},
					{Name: "paragraph", Value: "paragraph"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "required",
				Description: "Whether applicants must fill the field",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "max_length",
				Description: "Maximum answer length (20-2000, default 100)",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "default",
				Description: "Pre-filled value",
			},
		},
	},
	CommandFormRemove: {
		Name:        CommandFormRemove,
		Description: "Remove a field from the application form",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "key",
				Description: "Field key to remove",
				Required:    true,
			},
		},
	},
	CommandFormReset: {
		Name:        CommandFormReset,
		Description: "Reset the application form to the built-in default",
	},
}

// RegisterSlashCommands registers the requested slash commands. An empty
// guildID registers them globally.
func RegisterSlashCommands(s *discordgo.Session, guildID string, names ...string) error {
	var failures []string
	for _, name := range names {
		definition, ok := commandDefinitions[name]
		if !ok {
			log.Printf("discord: unknown slash command %q", name)
			continue
		}

		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, definition)
		if err != nil {
			if isDuplicateCommandError(err) {
				log.Printf("discord: slash command %q already registered", name)
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			log.Printf("discord: failed to register command %q: %v", name, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("discord: slash command registration errors: %s", strings.Join(failures, "; "))
	}

	return nil
}

func isDuplicateCommandError(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			msg := strings.ToLower(restErr.Message.Message)
			if strings.Contains(msg, "already exists") {
				return true
			}
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "50035") && strings.Contains(msg, "already exists")
}
