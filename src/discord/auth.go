package discord

import "github.com/bwmarrin/discordgo"

// IsManager reports whether the interaction member holds Manage Server, the
// administrative override for configuration and reviewing.
func IsManager(member *discordgo.Member) bool {
	return member != nil && member.Permissions&discordgo.PermissionManageServer != 0
}
