package domain

import "time"

// PushRecord is one locally modified entity uploaded by a terminal after an
// offline period. Base carries the last version the terminal synced, when
// the terminal still has it.
type PushRecord struct {
	Key   string       `json:"key" validate:"required"`
	Local EntityFields `json:"local" validate:"required"`
	Base  EntityFields `json:"base,omitempty"`
}

type PushRequest struct {
	TerminalID string       `json:"terminal_id" validate:"required"`
	Records    []PushRecord `json:"records" validate:"required,min=1,dive"`
}

type PushStatus string

const (
	PushApplied        PushStatus = "applied"
	PushUnchanged      PushStatus = "unchanged"
	PushResolved       PushStatus = "resolved"
	PushConflictQueued PushStatus = "conflict_queued"
	PushFailed         PushStatus = "failed"
)

type PushResult struct {
	Key      string             `json:"key"`
	Status   PushStatus         `json:"status"`
	Strategy ResolutionStrategy `json:"strategy,omitempty"`
	Conflict *ConflictRecord    `json:"conflict,omitempty"`
	Resolved EntityFields       `json:"resolved,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type PushResponse struct {
	Results  []PushResult `json:"results"`
	SyncTime time.Time    `json:"sync_time"`
}

type ResolvePendingRequest struct {
	Strategy ResolutionStrategy `json:"strategy" validate:"required,oneof=keep_local keep_remote merge"`
}

// SyncMetadata records the last successful sync per user and terminal.
type SyncMetadata struct {
	UserID       string    `json:"user_id"`
	TerminalID   string    `json:"terminal_id"`
	LastSyncTime time.Time `json:"last_sync_time"`
	UpdatedAt    time.Time `json:"updated_at"`
}
