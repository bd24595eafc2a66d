package review

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/mitchmarns/hockey-bot/src/characters"
	shareddiscord "github.com/mitchmarns/hockey-bot/src/discord"
	"github.com/mitchmarns/hockey-bot/src/types"
)

const embedColor = 0x5B6770

// Discord caps embed field values at 1024 characters.
const maxFieldValue = 1024

// Custom ID namespace for the review controls.
const (
	CustomIDApply      = "char:apply"
	ActionApprove      = "approve"
	ActionReject       = "reject"
	ActionRejectReason = "rejectreason"

	customIDPrefix       = "char"
	customIDFieldsNeeded = 4
)

// Embed renders an application record for the review channel, the applicant
// preview and the decided message alike.
func Embed(c *types.Character) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Character #%d: %s", c.ID, c.Name),
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Owner", Value: fmt.Sprintf("<@%s>", c.OwnerID), Inline: true},
			{Name: "Status", Value: c.Status, Inline: true},
		},
	}

	if extra := characters.ExtraFields(c); len(extra) > 0 {
		keys := make([]string, 0, len(extra))
		for k := range extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var lines []string
		for _, k := range keys {
			v := extra[k]
			if v == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("**%s**: %s", prettyLabel(k), shareddiscord.WrapURLsNoEmbed(v)))
		}
		if len(lines) > 0 {
			e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
				Name:  "Details",
				Value: clamp(strings.Join(lines, "\n"), maxFieldValue),
			})
		}
	}

	if c.DecisionReason != nil && *c.DecisionReason != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:  "Decision Reason",
			Value: clamp(*c.DecisionReason, maxFieldValue),
		})
	}

	if !c.SubmittedAt.IsZero() {
		e.Footer = &discordgo.MessageEmbedFooter{
			Text: "Submitted " + c.SubmittedAt.UTC().Format("2006-01-02 15:04 UTC"),
		}
	}

	return e
}

// DecisionButtons builds the approve/reject row attached to a pending
// application's review message.
func DecisionButtons(guildID string, characterID uint64) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Approve",
					Style:    discordgo.SuccessButton,
					CustomID: DecisionCustomID(ActionApprove, guildID, characterID),
				},
				discordgo.Button{
					Label:    "Reject",
					Style:    discordgo.DangerButton,
					CustomID: DecisionCustomID(ActionReject, guildID, characterID),
				},
			},
		},
	}
}

// DecisionCustomID encodes a decision control as char:<action>:<guild>:<id>.
func DecisionCustomID(action, guildID string, characterID uint64) string {
	return strings.Join([]string{customIDPrefix, action, guildID, strconv.FormatUint(characterID, 10)}, ":")
}

// RejectReasonCustomID encodes the reject-reason modal identity.
func RejectReasonCustomID(guildID string, characterID uint64) string {
	return DecisionCustomID(ActionRejectReason, guildID, characterID)
}

// ParseCustomID decodes a review control custom ID. ok is false for custom
// IDs outside the char: namespace.
func ParseCustomID(customID string) (action, guildID string, characterID uint64, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != customIDFieldsNeeded || parts[0] != customIDPrefix {
		return "", "", 0, false
	}

	id, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return "", "", 0, false
	}

	switch parts[1] {
	case ActionApprove, ActionReject, ActionRejectReason:
		return parts[1], parts[2], id, true
	}
	return "", "", 0, false
}

func prettyLabel(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func clamp(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n-3]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}
