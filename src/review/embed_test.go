package review

import (
	"testing"
	"time"

	"github.com/mitchmarns/hockey-bot/src/types"
)

func TestCustomIDRoundTrip(t *testing.T) {
	for _, action := range []string{ActionApprove, ActionReject, ActionRejectReason} {
		id := DecisionCustomID(action, "guild-1", 42)
		gotAction, gotGuild, gotChar, ok := ParseCustomID(id)
		if !ok {
			t.Fatalf("ParseCustomID(%q) not ok", id)
		}
		if gotAction != action || gotGuild != "guild-1" || gotChar != 42 {
			t.Errorf("ParseCustomID(%q) = (%q, %q, %d)", id, gotAction, gotGuild, gotChar)
		}
	}
}

func TestParseCustomIDRejectsForeignIDs(t *testing.T) {
	cases := []string{
		"",
		"other:thing",
		"char:apply",
		"char:approve:guild-1",
		"char:approve:guild-1:notanumber",
		"char:escalate:guild-1:42",
	}
	for _, id := range cases {
		if _, _, _, ok := ParseCustomID(id); ok {
			t.Errorf("ParseCustomID(%q) should not parse", id)
		}
	}
}

func TestEmbedRendersAnswersAndDecision(t *testing.T) {
	extra := `{"age":"30","face_claim":"someone"}`
	reviewer := "rev-1"
	reason := "too sparse"
	char := &types.Character{
		ID:             7,
		GuildID:        "g1",
		OwnerID:        "owner-1",
		Name:           "Aria",
		ExtraJSON:      &extra,
		Status:         types.StatusRejected,
		SubmittedAt:    time.Now(),
		ReviewedBy:     &reviewer,
		DecisionReason: &reason,
	}

	embed := Embed(char)
	if embed.Title != "Character #7: Aria" {
		t.Errorf("title = %q", embed.Title)
	}

	var haveDetails, haveReason bool
	for _, field := range embed.Fields {
		switch field.Name {
		case "Details":
			haveDetails = true
		case "Decision Reason":
			haveReason = true
			if field.Value != reason {
				t.Errorf("reason field = %q", field.Value)
			}
		}
	}
	if !haveDetails {
		t.Error("embed missing Details field")
	}
	if !haveReason {
		t.Error("embed missing Decision Reason field")
	}
}

func TestDecisionButtons(t *testing.T) {
	components := DecisionButtons("g1", 7)
	if len(components) != 1 {
		t.Fatalf("components = %d rows, want 1", len(components))
	}
}
