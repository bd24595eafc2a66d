package characters

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	charstore "github.com/mitchmarns/hockey-bot/src/characters"
	shareddiscord "github.com/mitchmarns/hockey-bot/src/discord"
	"github.com/mitchmarns/hockey-bot/src/guildconfig"
	"github.com/mitchmarns/hockey-bot/src/ratelimit"
	"github.com/mitchmarns/hockey-bot/src/review"
	"github.com/mitchmarns/hockey-bot/src/types"
)

// Discord caps modal text input labels at 45 characters.
const maxModalLabel = 45

// Handler encapsulates the member and reviewer facing actions.
type Handler struct {
	Store       *charstore.Store
	GuildConfig *guildconfig.Store
	Controller  *review.Controller
	Limiter     *ratelimit.Limiter
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
		log.Printf("characters: failed to respond to interaction: %v", err)
	}
}

func deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("characters: failed to acknowledge interaction: %v", err)
		return false
	}
	return true
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.Printf("characters: failed to edit interaction response: %v", err)
	}
}

func reviewerFromMember(member *discordgo.Member) review.Reviewer {
	return review.Reviewer{
		ID:      member.User.ID,
		IsAdmin: shareddiscord.IsManager(member),
		RoleIDs: member.Roles,
	}
}

// HandleApply opens the guild's application form as a modal.
func (h *Handler) HandleApply(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil {
		return
	}
	if i.Member == nil {
		respondEphemeral(s, i, "This command can only be used inside a server.")
		return
	}

	if wait := h.Limiter.TimeUntilNext(i.Member.User.ID); wait > 0 {
		respondEphemeral(s, i, fmt.Sprintf("You recently submitted an application. Try again in %s.", wait.Round(time.Second)))
		return
	}

	schema, err := h.GuildConfig.GetForm(i.GuildID)
	if err != nil {
		log.Printf("characters: load form for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Could not load the application form. Please try again later.")
		return
	}

	components := make([]discordgo.MessageComponent, 0, len(schema))
	for _, field := range schema {
		style := discordgo.TextInputShort
		if field.Style == guildconfig.StyleParagraph {
			style = discordgo.TextInputParagraph
		}
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  field.Key,
					Label:     clampLabel(field.Label),
					Style:     style,
					Required:  field.Required,
					MaxLength: field.MaxLength,
					Value:     field.Default,
				},
			},
		})
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   review.CustomIDApply,
			Title:      "Character Application",
			Components: components,
		},
	})
	if err != nil {
		log.Printf("characters: failed to open application modal: %v", err)
	}
}

// HandleApplySubmit persists the submitted form and routes it for review.
func (h *Handler) HandleApplySubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || i.Member == nil {
		return
	}
	if !deferEphemeral(s, i) {
		return
	}

	if !h.Limiter.CanUse(i.Member.User.ID) {
		editResponse(s, i, "You recently submitted an application. Please wait before submitting another.")
		return
	}

	answers := collectModalAnswers(i.ModalSubmitData())

	result, err := h.Controller.Submit(i.GuildID, i.Member.User.ID, answers)
	if err != nil {
		if errors.Is(err, charstore.ErrValidation) {
			editResponse(s, i, "Your application is missing a character name.")
			return
		}
		log.Printf("characters: submit application for %s: %v", i.Member.User.ID, err)
		editResponse(s, i, "Failed to submit your application. Please try again later.")
		return
	}

	if result.Routed {
		editResponse(s, i, fmt.Sprintf("✅ Application submitted! Your application ID is **%d**. The mod team will review it shortly.", result.Character.ID))
		return
	}

	// No review channel is configured, so show the preview with its
	// controls to the applicant instead.
	content := fmt.Sprintf("Application **%d** recorded, but no review channel is configured. An admin can set one with /%s.", result.Character.ID, shareddiscord.CommandConfigReviewChannel)
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &[]*discordgo.MessageEmbed{result.Embed},
		Components: &result.Components,
	})
	if err != nil {
		log.Printf("characters: failed to show application preview: %v", err)
	}
}

// HandleApprove handles the approve button on a review message.
func (h *Handler) HandleApprove(s *discordgo.Session, i *discordgo.InteractionCreate, guildID string, id uint64) {
	if h == nil || i.Member == nil {
		return
	}
	h.decide(s, i, guildID, id, types.StatusApproved, nil)
}

// HandleReject handles the reject button by asking for an optional reason
// before committing the decision.
func (h *Handler) HandleReject(s *discordgo.Session, i *discordgo.InteractionCreate, guildID string, id uint64) {
	if h == nil || i.Member == nil {
		return
	}

	ok, err := h.Controller.CanReview(guildID, reviewerFromMember(i.Member))
	if err != nil {
		log.Printf("characters: check reviewer for guild %s: %v", guildID, err)
		respondEphemeral(s, i, "Failed to check your permissions. Please try again later.")
		return
	}
	if !ok {
		respondEphemeral(s, i, "You don't have permission to review applications.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: review.RejectReasonCustomID(guildID, id),
			Title:    fmt.Sprintf("Reject application #%d", id),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "reason",
							Label:     "Reason (optional)",
							Style:     discordgo.TextInputParagraph,
							Required:  false,
							MaxLength: 1000,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("characters: failed to open reject reason modal: %v", err)
	}
}

// HandleRejectReason commits a rejection with the reason typed into the
// modal.
func (h *Handler) HandleRejectReason(s *discordgo.Session, i *discordgo.InteractionCreate, guildID string, id uint64) {
	if h == nil || i.Member == nil {
		return
	}

	var reason *string
	if text := strings.TrimSpace(collectModalAnswers(i.ModalSubmitData())["reason"]); text != "" {
		reason = &text
	}

	h.decide(s, i, guildID, id, types.StatusRejected, reason)
}

func (h *Handler) decide(s *discordgo.Session, i *discordgo.InteractionCreate, guildID string, id uint64, status string, reason *string) {
	var ref *review.MessageRef
	if i.Message != nil {
		ref = &review.MessageRef{ChannelID: i.ChannelID, MessageID: i.Message.ID}
	}

	char, err := h.Controller.Decide(guildID, id, status, reviewerFromMember(i.Member), reason, ref)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrNotAuthorized):
			respondEphemeral(s, i, "You don't have permission to review applications.")
		case errors.Is(err, charstore.ErrNotFound):
			respondEphemeral(s, i, fmt.Sprintf("Application #%d no longer exists.", id))
		default:
			log.Printf("characters: decide application %d: %v", id, err)
			respondEphemeral(s, i, "Failed to record the decision. Please try again later.")
		}
		return
	}

	verb := "approved"
	if char.Status == types.StatusRejected {
		verb = "rejected"
	}
	respondEphemeral(s, i, fmt.Sprintf("Application #%d (%s) %s.", char.ID, char.Name, verb))
}

// HandleCharacters lists the caller's characters, or shows one by id.
func (h *Handler) HandleCharacters(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || i.Member == nil {
		return
	}

	var id uint64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "id" {
			id = uint64(opt.IntValue())
			break
		}
	}

	if id > 0 {
		h.showCharacter(s, i, id)
		return
	}

	chars, err := h.Store.ListByOwner(i.GuildID, i.Member.User.ID, "")
	if err != nil {
		log.Printf("characters: list for %s: %v", i.Member.User.ID, err)
		respondEphemeral(s, i, "Failed to load your characters. Please try again later.")
		return
	}
	if len(chars) == 0 {
		respondEphemeral(s, i, "You have no characters yet. Use /apply to submit one.")
		return
	}

	var b strings.Builder
	shown := len(chars)
	if shown > 5 {
		shown = 5
	}
	for _, c := range chars[:shown] {
		fmt.Fprintf(&b, "#%d — %s — *%s*\n", c.ID, c.Name, c.Status)
	}
	if len(chars) > shown {
		fmt.Fprintf(&b, "...and %d more", len(chars)-shown)
	}
	respondEphemeral(s, i, b.String())
}

func (h *Handler) showCharacter(s *discordgo.Session, i *discordgo.InteractionCreate, id uint64) {
	char, err := h.Store.Get(i.GuildID, id)
	if err != nil {
		if errors.Is(err, charstore.ErrNotFound) {
			respondEphemeral(s, i, fmt.Sprintf("Character #%d not found.", id))
			return
		}
		log.Printf("characters: load character %d: %v", id, err)
		respondEphemeral(s, i, "Failed to load that character. Please try again later.")
		return
	}

	if char.OwnerID != i.Member.User.ID {
		ok, err := h.Controller.CanReview(i.GuildID, reviewerFromMember(i.Member))
		if err != nil {
			log.Printf("characters: check reviewer for guild %s: %v", i.GuildID, err)
		}
		if !ok {
			// Same answer as a missing record; don't leak other owners' entries.
			respondEphemeral(s, i, fmt.Sprintf("Character #%d not found.", id))
			return
		}
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{review.Embed(char)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("characters: failed to show character %d: %v", id, err)
	}
}

// HandleUnlink removes one of the caller's own characters.
func (h *Handler) HandleUnlink(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || i.Member == nil {
		return
	}

	var id uint64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "id" {
			id = uint64(opt.IntValue())
			break
		}
	}
	if id == 0 {
		respondEphemeral(s, i, "Provide the id of the character to remove.")
		return
	}

	removed, err := h.Store.DeleteOwned(i.GuildID, i.Member.User.ID, id)
	if err != nil {
		log.Printf("characters: delete character %d: %v", id, err)
		respondEphemeral(s, i, "Failed to remove that character. Please try again later.")
		return
	}
	if !removed {
		respondEphemeral(s, i, fmt.Sprintf("You don't own a character with id %d.", id))
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Character #%d removed.", id))
}

// HandleApps shows reviewers the pending application queue.
func (h *Handler) HandleApps(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h == nil || i.Member == nil {
		return
	}

	ok, err := h.Controller.CanReview(i.GuildID, reviewerFromMember(i.Member))
	if err != nil {
		log.Printf("characters: check reviewer for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to check your permissions. Please try again later.")
		return
	}
	if !ok {
		respondEphemeral(s, i, "You don't have permission to review applications.")
		return
	}

	limit := 0
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
			break
		}
	}

	pending, err := h.Store.ListPending(i.GuildID, limit)
	if err != nil {
		log.Printf("characters: list pending for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Failed to load the queue. Please try again later.")
		return
	}
	if len(pending) == 0 {
		respondEphemeral(s, i, "No pending applications.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%d pending application(s):**\n", len(pending))
	for _, c := range pending {
		fmt.Fprintf(&b, "#%d — %s — <@%s>\n", c.ID, c.Name, c.OwnerID)
	}
	respondEphemeral(s, i, b.String())
}

func collectModalAnswers(data discordgo.ModalSubmitInteractionData) map[string]string {
	answers := make(map[string]string)
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			input, ok := comp.(*discordgo.TextInput)
			if !ok {
				continue
			}
			answers[input.CustomID] = input.Value
		}
	}
	return answers
}

func clampLabel(label string) string {
	if utf8.RuneCountInString(label) <= maxModalLabel {
		return label
	}
	runes := []rune(label)
	return string(runes[:maxModalLabel-3]) + "..."
}
