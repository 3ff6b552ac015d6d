package conflict

import (
	"testing"
	"time"

	"pos-sync-server/internal/domain"
)

func pendingRecord(kind domain.ConflictType) *domain.ConflictRecord {
	return &domain.ConflictRecord{
		Kind:              kind,
		Local:             domain.EntityFields{"name": "Local"},
		Remote:            domain.EntityFields{"name": "Remote"},
		ConflictingFields: []string{"name"},
		DetectedAt:        time.Now(),
	}
}

func TestPendingQueue_AddRemove(t *testing.T) {
	q := NewPendingQueue()

	q.Add("inventory:1", pendingRecord(domain.ConflictFieldsModified))
	if q.Len() != 1 {
		t.Fatalf("len = %d, want 1", q.Len())
	}

	if _, ok := q.Get("inventory:1"); !ok {
		t.Error("expected entry to be retrievable")
	}

	if !q.Remove("inventory:1") {
		t.Error("Remove should report the entry existed")
	}
	if q.Remove("inventory:1") {
		t.Error("Remove should report a missing entry")
	}
	if q.Len() != 0 {
		t.Errorf("len = %d, want 0 after removal", q.Len())
	}
}

func TestPendingQueue_GetAllIsDefensiveCopy(t *testing.T) {
	q := NewPendingQueue()
	q.Add("inventory:1", pendingRecord(domain.ConflictFieldsModified))

	all := q.GetAll()
	all["inventory:1"].Local["name"] = "tampered"
	delete(all, "inventory:1")

	stored, ok := q.Get("inventory:1")
	if !ok {
		t.Fatal("entry vanished from the queue")
	}
	if stored.Local["name"] != "Local" {
		t.Errorf("queue entry mutated through GetAll copy: %v", stored.Local["name"])
	}
}

func TestPendingQueue_Clear(t *testing.T) {
	q := NewPendingQueue()
	q.Add("a", pendingRecord(domain.ConflictFieldsModified))
	q.Add("b", pendingRecord(domain.ConflictDuplicateKey))

	q.Clear()
	if q.Len() != 0 {
		t.Errorf("len = %d, want 0 after Clear", q.Len())
	}
}

func TestPendingQueue_StatsByKind(t *testing.T) {
	q := NewPendingQueue()
	q.Add("a", pendingRecord(domain.ConflictFieldsModified))
	q.Add("b", pendingRecord(domain.ConflictFieldsModified))
	q.Add("c", pendingRecord(domain.ConflictDuplicateKey))

	stats := q.StatsByKind()

	want := map[domain.ConflictType]int{
		domain.ConflictFieldsModified:        2,
		domain.ConflictDuplicateKey:          1,
		domain.ConflictSchemaMismatch:        0,
		domain.ConflictRecordDeletedRemotely: 0,
	}
	for kind, count := range want {
		got, present := stats[kind]
		if !present {
			t.Errorf("kind %s missing from stats", kind)
			continue
		}
		if got != count {
			t.Errorf("stats[%s] = %d, want %d", kind, got, count)
		}
	}
}
