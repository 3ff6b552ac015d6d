package conflict

import (
	"sync"

	"pos-sync-server/internal/domain"
)

// PendingQueue holds conflicts deferred for manual resolution, keyed by an
// opaque conflict key. The owning resolver is its only writer; a mutex
// guards it because the hosting server handles requests concurrently.
type PendingQueue struct {
	mu      sync.RWMutex
	entries map[string]*domain.ConflictRecord
}

func NewPendingQueue() *PendingQueue {
	return &PendingQueue{
		entries: make(map[string]*domain.ConflictRecord),
	}
}

func (q *PendingQueue) Add(key string, record *domain.ConflictRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[key] = record
}

func (q *PendingQueue) Get(key string) (*domain.ConflictRecord, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	record, ok := q.entries[key]
	return record, ok
}

// GetAll returns a defensive copy of the queue. Mutating the returned map
// or its records does not touch the queue.
func (q *PendingQueue) GetAll() map[string]*domain.ConflictRecord {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make(map[string]*domain.ConflictRecord, len(q.entries))
	for key, record := range q.entries {
		out[key] = copyRecord(record)
	}
	return out
}

// Remove deletes the entry and reports whether it existed.
func (q *PendingQueue) Remove(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.entries[key]
	delete(q.entries, key)
	return ok
}

func (q *PendingQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = make(map[string]*domain.ConflictRecord)
}

func (q *PendingQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.entries)
}

// StatsByKind counts pending conflicts per kind. Every kind appears in the
// result, zero-valued when absent.
func (q *PendingQueue) StatsByKind() map[domain.ConflictType]int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	stats := make(map[domain.ConflictType]int, 4)
	for _, kind := range domain.ConflictTypes() {
		stats[kind] = 0
	}
	for _, record := range q.entries {
		stats[record.Kind]++
	}
	return stats
}

// CopyFields returns a deep copy of a field map.
func CopyFields(fields domain.EntityFields) domain.EntityFields {
	return deepCopyFields(fields)
}

func copyRecord(record *domain.ConflictRecord) *domain.ConflictRecord {
	out := *record
	out.Local = deepCopyFields(record.Local)
	out.Remote = deepCopyFields(record.Remote)
	out.Base = deepCopyFields(record.Base)
	out.ConflictingFields = append([]string(nil), record.ConflictingFields...)
	return &out
}
