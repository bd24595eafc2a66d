package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestIsManager(t *testing.T) {
	if IsManager(nil) {
		t.Error("nil member is never a manager")
	}
	if IsManager(&discordgo.Member{Permissions: discordgo.PermissionSendMessages}) {
		t.Error("plain member is not a manager")
	}
	if !IsManager(&discordgo.Member{Permissions: discordgo.PermissionManageServer}) {
		t.Error("Manage Server grants manager")
	}
	if !IsManager(&discordgo.Member{Permissions: discordgo.PermissionManageServer | discordgo.PermissionSendMessages}) {
		t.Error("Manage Server among other bits grants manager")
	}
}
