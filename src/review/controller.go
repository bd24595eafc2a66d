// The review workflow: an application comes in through the guild's form,
// lands in the configured review channel with live approve/reject controls,
// and a reviewer's decision is persisted, announced and made durable across
// restarts through the review message registry.
package review

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mitchmarns/hockey-bot/src/characters"
	"github.com/mitchmarns/hockey-bot/src/data"
	"github.com/mitchmarns/hockey-bot/src/guildconfig"
	"github.com/mitchmarns/hockey-bot/src/types"
	"github.com/redis/go-redis/v9"
)

// ErrNotAuthorized marks a decision attempt by a caller who holds neither
// the admin override nor the configured reviewer role. The message shown to
// the actor never says which.
var ErrNotAuthorized = errors.New("not permitted")

type Controller struct {
	store     *characters.Store
	registry  *characters.Registry
	config    *guildconfig.Store
	msgr      Messenger
	rdb       *redis.Client
	sanitizer *bluemonday.Policy
}

// NewController wires the workflow. rdb may be nil; event publishing is then
// disabled.
func NewController(store *characters.Store, registry *characters.Registry, config *guildconfig.Store, msgr Messenger, rdb *redis.Client) *Controller {
	return &Controller{
		store:     store,
		registry:  registry,
		config:    config,
		msgr:      msgr,
		rdb:       rdb,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// SubmitResult reports where a submission went and carries the rendered
// pieces so the caller can answer the applicant.
type SubmitResult struct {
	Character *types.Character
	// Routed is true when the application was posted to the review channel.
	// When false there was no channel configured and the caller should show
	// the preview (with its short-lived controls) to the applicant instead.
	Routed     bool
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// Submit validates and persists a new application, then routes it for
// review.
func (c *Controller) Submit(guildID, ownerID string, answers map[string]string) (*SubmitResult, error) {
	cleaned := make(map[string]string, len(answers))
	for k, v := range answers {
		// The policy strips markup but also entity-escapes plain text;
		// Discord wants the literal characters back.
		v = strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(v)))
		if v == "" {
			continue
		}
		cleaned[k] = v
	}

	name := cleaned["name"]
	delete(cleaned, "name")

	id, err := c.store.Create(guildID, ownerID, name, cleaned)
	if err != nil {
		return nil, err
	}

	char, err := c.store.Get(guildID, id)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{
		Character:  char,
		Embed:      Embed(char),
		Components: DecisionButtons(guildID, id),
	}

	settings, err := c.config.GetSettings(guildID)
	if err != nil {
		return nil, err
	}

	if settings == nil || settings.ReviewChannelID == nil || *settings.ReviewChannelID == "" {
		c.publish(char, "submitted")
		return result, nil
	}

	messageID, err := c.msgr.SendReview(*settings.ReviewChannelID, result.Embed, result.Components)
	if err != nil {
		return nil, fmt.Errorf("review: deliver application %d: %w", id, err)
	}

	if err := c.registry.Record(guildID, *settings.ReviewChannelID, messageID, id); err != nil {
		// The message is posted and usable; only restart durability is lost.
		log.Printf("review: record message mapping for application %d: %v", id, err)
	}

	result.Routed = true
	c.publish(char, "submitted")
	return result, nil
}

// Reviewer is the decision caller's identity as the platform reports it.
type Reviewer struct {
	ID      string
	IsAdmin bool
	RoleIDs []string
}

// MessageRef points at the review message a decision came from.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Decide applies a reviewer's decision. On success the registry entry is
// removed and the originating message is re-rendered without controls; the
// owner notification and event publish are best-effort.
func (c *Controller) Decide(guildID string, id uint64, status string, reviewer Reviewer, reason *string, ref *MessageRef) (*types.Character, error) {
	if status != types.StatusApproved && status != types.StatusRejected {
		return nil, fmt.Errorf("%w: unknown decision %q", characters.ErrValidation, status)
	}

	settings, err := c.config.GetSettings(guildID)
	if err != nil {
		return nil, err
	}
	if !authorized(settings, reviewer) {
		return nil, ErrNotAuthorized
	}

	if err := c.store.SetStatus(guildID, id, status, reviewer.ID, reason); err != nil {
		return nil, err
	}

	char, err := c.store.Get(guildID, id)
	if err != nil {
		return nil, err
	}

	if ref != nil {
		if err := c.registry.Remove(guildID, ref.MessageID); err != nil {
			log.Printf("review: remove message mapping for application %d: %v", id, err)
		}
		if err := c.msgr.EditReview(ref.ChannelID, ref.MessageID, Embed(char), nil); err != nil {
			log.Printf("review: re-render message for application %d: %v", id, err)
		}
	}

	c.notifyOwner(char)
	c.publish(char, status)
	return char, nil
}

// CanReview reports whether the caller could decide applications in the
// guild right now. Used to gate reviewer-only surfaces before any state
// changes.
func (c *Controller) CanReview(guildID string, reviewer Reviewer) (bool, error) {
	settings, err := c.config.GetSettings(guildID)
	if err != nil {
		return false, err
	}
	return authorized(settings, reviewer), nil
}

// Restore re-attaches live decision controls to every registered review
// message of a guild. Run once per process start, after the gateway is
// ready. Rows whose application is gone or already decided are purged;
// unreachable messages are skipped and kept.
func (c *Controller) Restore(guildID string) error {
	rows, err := c.registry.ListForGuild(guildID)
	if err != nil {
		return err
	}

	for _, row := range rows {
		char, err := c.store.Get(guildID, row.CharacterID)
		if errors.Is(err, characters.ErrNotFound) {
			log.Printf("review: purge mapping for deleted application %d (message %s)", row.CharacterID, row.MessageID)
			if err := c.registry.Remove(guildID, row.MessageID); err != nil {
				log.Printf("review: purge mapping: %v", err)
			}
			continue
		}
		if err != nil {
			log.Printf("review: restore application %d: %v", row.CharacterID, err)
			continue
		}

		if char.Status != types.StatusPending {
			if err := c.registry.Remove(guildID, row.MessageID); err != nil {
				log.Printf("review: purge decided mapping: %v", err)
			}
			continue
		}

		err = c.msgr.EditReview(row.ChannelID, row.MessageID, Embed(char), DecisionButtons(guildID, char.ID))
		if err != nil {
			// Channel or message may be gone; keep the row for a manual
			// cleanup or a later decision.
			log.Printf("review: reattach controls to message %s: %v", row.MessageID, err)
			continue
		}
	}

	return nil
}

func authorized(settings *types.GuildSettings, reviewer Reviewer) bool {
	if reviewer.IsAdmin {
		return true
	}
	if settings == nil || settings.ReviewerRoleID == nil || *settings.ReviewerRoleID == "" {
		return false
	}
	for _, roleID := range reviewer.RoleIDs {
		if roleID == *settings.ReviewerRoleID {
			return true
		}
	}
	return false
}

func (c *Controller) notifyOwner(char *types.Character) {
	var msg string
	switch char.Status {
	case types.StatusApproved:
		msg = fmt.Sprintf("Your character **%s** (ID %d) was approved!", char.Name, char.ID)
	case types.StatusRejected:
		reason := "—"
		if char.DecisionReason != nil && *char.DecisionReason != "" {
			reason = *char.DecisionReason
		}
		msg = fmt.Sprintf("Your character **%s** (ID %d) was rejected.\nReason: %s", char.Name, char.ID, reason)
	default:
		return
	}

	if err := c.msgr.DirectMessage(char.OwnerID, msg); err != nil {
		log.Printf("review: notify owner %s: %v", char.OwnerID, err)
	}
}

func (c *Controller) publish(char *types.Character, event string) {
	if c.rdb == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := data.PublishApplicationEvent(ctx, c.rdb, map[string]interface{}{
		"event":    event,
		"guild_id": char.GuildID,
		"char_id":  char.ID,
		"owner_id": char.OwnerID,
		"name":     char.Name,
		"status":   char.Status,
		"time":     time.Now().Unix(),
	})
	if err != nil {
		log.Printf("review: publish %s event for application %d: %v", event, char.ID, err)
	}
}
