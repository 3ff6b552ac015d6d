package domain

import (
	"encoding/json"
	"time"
)

type ConflictType string

const (
	ConflictFieldsModified        ConflictType = "fields_modified"
	ConflictRecordDeletedRemotely ConflictType = "record_deleted_remotely"
	ConflictSchemaMismatch        ConflictType = "schema_mismatch"
	ConflictDuplicateKey          ConflictType = "duplicate_key"
)

// ConflictTypes lists every conflict kind in a fixed order. Stats reports
// include all of them even when their count is zero.
func ConflictTypes() []ConflictType {
	return []ConflictType{
		ConflictFieldsModified,
		ConflictRecordDeletedRemotely,
		ConflictSchemaMismatch,
		ConflictDuplicateKey,
	}
}

type ResolutionStrategy string

const (
	StrategyKeepLocal  ResolutionStrategy = "keep_local"
	StrategyKeepRemote ResolutionStrategy = "keep_remote"
	StrategyMerge      ResolutionStrategy = "merge"
	StrategyManual     ResolutionStrategy = "manual"
)

func (s ResolutionStrategy) IsValid() bool {
	switch s {
	case StrategyKeepLocal, StrategyKeepRemote, StrategyMerge, StrategyManual:
		return true
	}
	return false
}

// EntityFields is the field map of one version of a synced entity.
// Values are JSON-shaped: primitives, nested maps and slices.
type EntityFields map[string]any

// ConflictRecord describes one detected divergence between a locally
// modified and a remotely modified version of the same entity.
type ConflictRecord struct {
	Kind              ConflictType `json:"kind"`
	Local             EntityFields `json:"local"`
	Remote            EntityFields `json:"remote"`
	Base              EntityFields `json:"base,omitempty"`
	ConflictingFields []string     `json:"conflicting_fields"`
	DetectedAt        time.Time    `json:"detected_at"`
}

// ResolutionOutcome is the result of resolving one ConflictRecord.
// Callers persist ResolvedData themselves; resolution has no side effects.
type ResolutionOutcome struct {
	StrategyUsed ResolutionStrategy `json:"strategy_used"`
	ResolvedData EntityFields       `json:"resolved_data"`
	Metadata     map[string]any     `json:"metadata"`
}

// RequiresManual reports whether the outcome is a manual-resolution
// placeholder rather than final resolved state.
func (o *ResolutionOutcome) RequiresManual() bool {
	v, ok := o.Metadata["requires_manual_resolution"].(bool)
	return ok && v
}

// FieldsOf converts a typed entity into its field-map form via its JSON
// representation, so conflict detection sees the same shape the store does.
func FieldsOf(v any) (EntityFields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields EntityFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// FromFields fills a typed entity from its field-map form.
func FromFields(fields EntityFields, v any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
