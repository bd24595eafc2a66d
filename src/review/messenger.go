package review

import (
	"github.com/bwmarrin/discordgo"
)

// Messenger is the controller's rendering boundary. The connection, gateway
// and component plumbing stay on the Discord side of it.
type Messenger interface {
	// SendReview posts an application embed with its controls and returns
	// the new message ID.
	SendReview(channelID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (string, error)
	// EditReview replaces an existing message's embed and controls in place.
	// A nil components slice drops the controls.
	EditReview(channelID, messageID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error
	// DirectMessage delivers a plain DM to a user.
	DirectMessage(userID, content string) error
}

type sessionMessenger struct {
	session *discordgo.Session
}

// NewSessionMessenger wraps a discordgo session as a Messenger.
func NewSessionMessenger(s *discordgo.Session) Messenger {
	return &sessionMessenger{session: s}
}

func (m *sessionMessenger) SendReview(channelID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (string, error) {
	msg, err := m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (m *sessionMessenger) EditReview(channelID, messageID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	embeds := []*discordgo.MessageEmbed{embed}
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	_, err := m.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

func (m *sessionMessenger) DirectMessage(userID, content string) error {
	ch, err := m.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = m.session.ChannelMessageSend(ch.ID, content)
	return err
}
