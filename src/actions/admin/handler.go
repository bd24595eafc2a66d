package admin

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	shareddiscord "github.com/mitchmarns/hockey-bot/src/discord"
	"github.com/mitchmarns/hockey-bot/src/guildconfig"
)

// Handler encapsulates the admin configuration actions. Every command is
// gated on the Manage Server permission.
type Handler struct {
	GuildConfig *guildconfig.Store
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("admin: failed to respond to interaction: %v", err)
	}
}

// gate verifies the caller may administer the guild. Returns false after
// answering the interaction when they may not.
func gate(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		respondEphemeral(s, i, "This command can only be used inside a server.")
		return false
	}
	if !shareddiscord.IsManager(i.Member) {
		respondEphemeral(s, i, "You need the Manage Server permission to use this command.")
		return false
	}
	return true
}

func option(i *discordgo.InteractionCreate, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

func (h *Handler) HandleConfigReviewChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || !gate(s, i) {
		return
	}

	opt := option(i, "channel")
	if opt == nil {
		respondEphemeral(s, i, "Provide the channel to post applications into.")
		return
	}
	channelID := opt.ChannelValue(nil).ID

	if err := h.GuildConfig.SetReviewChannel(i.GuildID, &channelID); err != nil {
		log.Printf("admin: set review channel for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to save the review channel. Please try again later.")
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Review channel set to <#%s>.", channelID))
}

func (h *Handler) HandleConfigReviewerRole(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || !gate(s, i) {
		return
	}

	var roleID *string
	if opt := option(i, "role"); opt != nil {
		id := opt.RoleValue(nil, "").ID
		roleID = &id
	}

	if err := h.GuildConfig.SetReviewerRole(i.GuildID, roleID); err != nil {
		log.Printf("admin: set reviewer role for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to save the reviewer role. Please try again later.")
		return
	}

	if roleID == nil {
		respondEphemeral(s, i, "Reviewer role cleared. Only server managers can review applications now.")
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Reviewer role set to <@&%s>.", *roleID))
}

func (h *Handler) HandleConfigShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || !gate(s, i) {
		return
	}

	settings, err := h.GuildConfig.GetSettings(i.GuildID)
	if err != nil {
		log.Printf("admin: load settings for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to load the configuration. Please try again later.")
		return
	}

	channel := "not set"
	role := "not set (managers only)"
	if settings != nil {
		if settings.ReviewChannelID != nil {
			channel = fmt.Sprintf("<#%s>", *settings.ReviewChannelID)
		}
		if settings.ReviewerRoleID != nil {
			role = fmt.Sprintf("<@&%s>", *settings.ReviewerRoleID)
		}
	}
	respondEphemeral(s, i, fmt.Sprintf("**Review channel:** %s\n**Reviewer role:** %s", channel, role))
}

func (h *Handler) HandleFormShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || !gate(s, i) {
		return
	}

	schema, err := h.GuildConfig.GetForm(i.GuildID)
	if err != nil {
		log.Printf("admin: load form for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to load the form. Please try again later.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Application form (%d/%d fields):**\n", len(schema), guildconfig.MaxFields)
	for _, f := range schema {
		req := "optional"
		if f.Required {
			req = "required"
		}
		fmt.Fprintf(&b, "`%s` — %s (%s, %s, max %d)\n", f.Key, f.Label, f.Style, req, f.MaxLength)
	}
	respondEphemeral(s, i, b.String())
}

func (h *Handler) HandleFormAdd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || !gate(s, i) {
		return
	}

	field := guildconfig.Field{MaxLength: 100}
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "key":
			field.Key = strings.TrimSpace(opt.StringValue())
		case "label":
			field.Label = strings.TrimSpace(opt.StringValue())
		case "style":
			field.Style = opt.StringValue()
		case "required":
			field.Required = opt.BoolValue()
		case "max_length":
			field.MaxLength = int(opt.IntValue())
		case "default":
			field.Default = opt.StringValue()
		}
	}

	schema, err := h.GuildConfig.GetForm(i.GuildID)
	if err != nil {
		log.Printf("admin: load form for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to load the form. Please try again later.")
		return
	}

	schema, err = schema.WithField(field)
	if err == nil {
		err = h.GuildConfig.SetForm(i.GuildID, schema)
	}
	if err != nil {
		if errors.Is(err, guildconfig.ErrInvalidForm) {
			respondEphemeral(s, i, fmt.Sprintf("Cannot add that field: %v", err))
			return
		}
		log.Printf("admin: save form for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to save the form. Please try again later.")
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Field `%s` added. The form now has %d field(s).", field.Key, len(schema)))
}

func (h *Handler) HandleFormRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || !gate(s, i) {
		return
	}

	key := ""
	if opt := option(i, "key"); opt != nil {
		key = strings.TrimSpace(opt.StringValue())
	}
	if key == "name" {
		respondEphemeral(s, i, "The `name` field cannot be removed; every application needs a character name.")
		return
	}

	schema, err := h.GuildConfig.GetForm(i.GuildID)
	if err != nil {
		log.Printf("admin: load form for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to load the form. Please try again later.")
		return
	}

	schema, removed := schema.WithoutField(key)
	if !removed {
		respondEphemeral(s, i, fmt.Sprintf("The form has no field `%s`.", key))
		return
	}

	if err := h.GuildConfig.SetForm(i.GuildID, schema); err != nil {
		log.Printf("admin: save form for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to save the form. Please try again later.")
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Field `%s` removed. The form now has %d field(s).", key, len(schema)))
}

func (h *Handler) HandleFormReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || !gate(s, i) {
		return
	}

	if err := h.GuildConfig.ResetForm(i.GuildID); err != nil {
		log.Printf("admin: reset form for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to reset the form. Please try again later.")
		return
	}
	respondEphemeral(s, i, "Application form reset to the default.")
}
