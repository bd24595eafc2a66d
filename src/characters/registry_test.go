package characters

import "testing"

func TestRegistryRecordAndList(t *testing.T) {
	reg := NewRegistry(testDB(t))

	if err := reg.Record("g1", "chan-1", "msg-1", 1); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := reg.Record("g1", "chan-1", "msg-2", 2); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := reg.Record("g2", "chan-9", "msg-1", 7); err != nil {
		t.Fatalf("record: %v", err)
	}

	rows, err := reg.ListForGuild("g1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
}

func TestRegistryRecordReplacesExisting(t *testing.T) {
	reg := NewRegistry(testDB(t))

	if err := reg.Record("g1", "chan-1", "msg-1", 1); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := reg.Record("g1", "chan-2", "msg-1", 5); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	rows, err := reg.ListForGuild("g1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].ChannelID != "chan-2" || rows[0].CharacterID != 5 {
		t.Errorf("re-record did not replace: %+v", rows[0])
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry(testDB(t))

	if err := reg.Record("g1", "chan-1", "msg-1", 1); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := reg.Remove("g1", "msg-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rows, _ := reg.ListForGuild("g1")
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(rows))
	}

	// Removing an absent entry is fine.
	if err := reg.Remove("g1", "msg-1"); err != nil {
		t.Errorf("second remove: %v", err)
	}
}
