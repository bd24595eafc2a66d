package characters

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mitchmarns/hockey-bot/src/data"
	"github.com/mitchmarns/hockey-bot/src/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := data.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateAssignsIncreasingIDs(t *testing.T) {
	store := NewStore(testDB(t))

	first, err := store.Create("g1", "owner-1", "Aria", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := store.Create("g1", "owner-1", "Briar", map[string]string{"age": "30"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if second <= first {
		t.Errorf("ids not increasing: %d then %d", first, second)
	}

	char, err := store.Get("g1", second)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if char.Status != types.StatusPending {
		t.Errorf("status = %q, want pending", char.Status)
	}
	if extra := ExtraFields(char); extra["age"] != "30" {
		t.Errorf("extra fields = %v, want age=30", extra)
	}
}

func TestCreateRegistersKnownUser(t *testing.T) {
	db := testDB(t)
	store := NewStore(db)

	if _, err := store.Create("g1", "owner-1", "Aria", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create("g1", "owner-1", "Briar", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	var count int64
	if err := db.Model(&types.KnownUser{}).Where("guild_id = ? AND user_id = ?", "g1", "owner-1").Count(&count).Error; err != nil {
		t.Fatalf("count known users: %v", err)
	}
	if count != 1 {
		t.Errorf("known user rows = %d, want 1", count)
	}
}

func TestCreateRejectsMissingName(t *testing.T) {
	store := NewStore(testDB(t))

	if _, err := store.Create("g1", "owner-1", "   ", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGetIsGuildScoped(t *testing.T) {
	store := NewStore(testDB(t))

	id, err := store.Create("g1", "owner-1", "Aria", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.Get("g2", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-guild get should be ErrNotFound, got %v", err)
	}
}

func TestListByOwner(t *testing.T) {
	store := NewStore(testDB(t))

	first, _ := store.Create("g1", "owner-1", "Aria", nil)
	second, _ := store.Create("g1", "owner-1", "Briar", nil)
	if _, err := store.Create("g1", "owner-2", "Cole", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := store.ListByOwner("g1", "owner-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ID != second || rows[1].ID != first {
		t.Errorf("expected most recent first, got %d then %d", rows[0].ID, rows[1].ID)
	}

	if err := store.SetStatus("g1", first, types.StatusApproved, "rev-1", nil); err != nil {
		t.Fatalf("set status: %v", err)
	}
	rows, err = store.ListByOwner("g1", "owner-1", types.StatusApproved)
	if err != nil {
		t.Fatalf("list approved: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != first {
		t.Errorf("status filter returned %v", rows)
	}
}

func TestListPendingFIFO(t *testing.T) {
	db := testDB(t)
	store := NewStore(db)

	older, _ := store.Create("g1", "owner-1", "Aria", nil)
	newer, _ := store.Create("g1", "owner-2", "Briar", nil)

	// Force distinct submission times; sub-second inserts can tie.
	db.Model(&types.Character{}).Where("id = ?", older).Update("submitted_at", time.Now().Add(-time.Hour))

	rows, err := store.ListPending("g1", 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != older || rows[1].ID != newer {
		t.Fatalf("expected FIFO order [%d %d], got %v", older, newer, rows)
	}

	rows, err = store.ListPending("g1", 1)
	if err != nil {
		t.Fatalf("list pending limit: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != older {
		t.Errorf("limit should keep the oldest, got %v", rows)
	}

	if err := store.SetStatus("g1", older, types.StatusRejected, "rev-1", nil); err != nil {
		t.Fatalf("set status: %v", err)
	}
	rows, _ = store.ListPending("g1", 0)
	if len(rows) != 1 || rows[0].ID != newer {
		t.Errorf("decided rows must leave the queue, got %v", rows)
	}
}

func TestSetStatusOverwritesPreviousDecision(t *testing.T) {
	store := NewStore(testDB(t))

	id, _ := store.Create("g1", "owner-1", "Aria", nil)

	reason := "incomplete"
	if err := store.SetStatus("g1", id, types.StatusRejected, "rev-1", &reason); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := store.SetStatus("g1", id, types.StatusApproved, "rev-2", nil); err != nil {
		t.Fatalf("re-approve: %v", err)
	}

	char, err := store.Get("g1", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if char.Status != types.StatusApproved {
		t.Errorf("status = %q, want approved", char.Status)
	}
	if char.ReviewedBy == nil || *char.ReviewedBy != "rev-2" {
		t.Errorf("reviewer = %v, want rev-2", char.ReviewedBy)
	}
	if char.DecisionReason != nil {
		t.Errorf("reason should have been cleared, got %q", *char.DecisionReason)
	}
}

func TestSetStatusUnknownID(t *testing.T) {
	store := NewStore(testDB(t))

	if err := store.SetStatus("g1", 999, types.StatusApproved, "rev-1", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteOwned(t *testing.T) {
	store := NewStore(testDB(t))

	id, _ := store.Create("g1", "owner-1", "Aria", nil)

	removed, err := store.DeleteOwned("g1", "owner-2", id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed {
		t.Error("wrong owner must not delete")
	}

	removed, err = store.DeleteOwned("g1", "owner-1", id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !removed {
		t.Error("owner delete should succeed")
	}

	if _, err := store.Get("g1", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
