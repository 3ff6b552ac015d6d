package conflict

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"pos-sync-server/internal/domain"
)

// MergeFunc merges one field's diverged values. It receives the local,
// remote and base values for that field (base is nil when no ancestor is
// known) and returns the value to keep.
type MergeFunc func(local, remote, base any) (any, error)

// Options configures a Resolver. Zero values fall back to conservative
// defaults: manual resolution, no auto-resolve rules, id/sku as the
// identifier-like fields.
type Options struct {
	DefaultStrategy  domain.ResolutionStrategy
	AutoRules        map[domain.ConflictType]domain.ResolutionStrategy
	IdentifierFields []string
	Reporter         ErrorReporter
}

// Resolver detects field-level conflicts between a locally modified and a
// remotely modified version of the same entity and resolves them under a
// configurable strategy. It owns the queue of conflicts deferred for manual
// resolution. Detection and resolution are pure with respect to their
// inputs; callers persist resolved data themselves.
type Resolver struct {
	defaultStrategy  domain.ResolutionStrategy
	autoRules        map[domain.ConflictType]domain.ResolutionStrategy
	identifierFields map[string]bool
	mergeFuncs       map[string]MergeFunc
	reporter         ErrorReporter
	pending          *PendingQueue
}

func NewResolver(opts Options) *Resolver {
	strategy := opts.DefaultStrategy
	if !strategy.IsValid() {
		strategy = domain.StrategyManual
	}

	identifiers := opts.IdentifierFields
	if len(identifiers) == 0 {
		identifiers = []string{"id", "sku"}
	}
	identifierSet := make(map[string]bool, len(identifiers))
	for _, f := range identifiers {
		identifierSet[f] = true
	}

	autoRules := make(map[domain.ConflictType]domain.ResolutionStrategy, len(opts.AutoRules))
	for kind, s := range opts.AutoRules {
		if s.IsValid() {
			autoRules[kind] = s
		}
	}

	reporter := opts.Reporter
	if reporter == nil {
		reporter = NewLogReporter()
	}

	return &Resolver{
		defaultStrategy:  strategy,
		autoRules:        autoRules,
		identifierFields: identifierSet,
		mergeFuncs:       make(map[string]MergeFunc),
		reporter:         reporter,
		pending:          NewPendingQueue(),
	}
}

// RegisterMergeFunc installs a per-field merge rule used by the merge
// strategy. Conflicting fields without a rule take the local value.
func (r *Resolver) RegisterMergeFunc(field string, fn MergeFunc) {
	r.mergeFuncs[field] = fn
}

// Pending returns the queue of conflicts awaiting manual resolution.
func (r *Resolver) Pending() *PendingQueue {
	return r.pending
}

// DetectConflict compares two versions of the same entity and returns a
// populated ConflictRecord, or nil when the versions do not actually
// disagree. With no base, any field where local and remote differ is a
// conflict. With a base, a field conflicts only when both sides changed it
// and their changes disagree; a single-sided change is a clean forward
// propagation, not a conflict.
func (r *Resolver) DetectConflict(local, remote, base domain.EntityFields) *domain.ConflictRecord {
	if remote == nil && len(local) > 0 {
		return &domain.ConflictRecord{
			Kind:              domain.ConflictRecordDeletedRemotely,
			Local:             deepCopyFields(local),
			Remote:            nil,
			Base:              deepCopyFields(base),
			ConflictingFields: sortedKeys(local),
			DetectedAt:        time.Now(),
		}
	}

	var conflicting []string
	for _, field := range unionKeys(local, remote) {
		localVal, remoteVal := local[field], remote[field]
		if base == nil {
			if !deepEqual(localVal, remoteVal) {
				conflicting = append(conflicting, field)
			}
			continue
		}
		baseVal := base[field]
		if !deepEqual(localVal, baseVal) && !deepEqual(remoteVal, baseVal) && !deepEqual(localVal, remoteVal) {
			conflicting = append(conflicting, field)
		}
	}

	if len(conflicting) == 0 {
		return nil
	}

	return &domain.ConflictRecord{
		Kind:              r.classify(local, remote, conflicting),
		Local:             deepCopyFields(local),
		Remote:            deepCopyFields(remote),
		Base:              deepCopyFields(base),
		ConflictingFields: conflicting,
		DetectedAt:        time.Now(),
	}
}

func (r *Resolver) classify(local, remote domain.EntityFields, conflicting []string) domain.ConflictType {
	if len(local) != len(remote) {
		return domain.ConflictSchemaMismatch
	}
	for _, field := range conflicting {
		if r.identifierFields[field] {
			return domain.ConflictDuplicateKey
		}
	}
	return domain.ConflictFieldsModified
}

// Resolve produces a ResolutionOutcome for the record. Strategy precedence:
// the override argument (when valid), then the per-kind auto-resolve rule,
// then the configured default. Internal faults in merge rules are reported
// to the error sink and downgraded to a manual outcome; Resolve never
// panics outward.
func (r *Resolver) Resolve(record *domain.ConflictRecord, override domain.ResolutionStrategy) (outcome domain.ResolutionOutcome) {
	return r.resolveWith(record, override, r.mergeFuncs)
}

func (r *Resolver) resolveWith(record *domain.ConflictRecord, override domain.ResolutionStrategy, rules map[string]MergeFunc) (outcome domain.ResolutionOutcome) {
	strategy := r.strategyFor(record.Kind, override)

	defer func() {
		if p := recover(); p != nil {
			r.reporter.Report("resolution_panic", fmt.Sprintf("merge rule panicked: %v", p), map[string]any{
				"kind":     string(record.Kind),
				"strategy": string(strategy),
			})
			outcome = r.manualOutcome(record)
		}
	}()

	switch strategy {
	case domain.StrategyKeepLocal:
		return r.finalOutcome(record, domain.StrategyKeepLocal, deepCopyFields(record.Local))

	case domain.StrategyKeepRemote:
		return r.finalOutcome(record, domain.StrategyKeepRemote, deepCopyFields(record.Remote))

	case domain.StrategyMerge:
		resolved := deepCopyFields(record.Remote)
		if resolved == nil {
			resolved = make(domain.EntityFields)
		}
		for _, field := range record.ConflictingFields {
			fn, ok := rules[field]
			if !ok {
				// Local edits are the most recent user intent on a
				// device that may have been offline.
				resolved[field] = deepCopyValue(record.Local[field])
				continue
			}
			var baseVal any
			if record.Base != nil {
				baseVal = record.Base[field]
			}
			merged, err := fn(record.Local[field], record.Remote[field], baseVal)
			if err != nil {
				r.reporter.Report("merge_rule_failed", err.Error(), map[string]any{
					"kind":  string(record.Kind),
					"field": field,
				})
				return r.manualOutcome(record)
			}
			resolved[field] = deepCopyValue(merged)
		}
		return r.finalOutcome(record, domain.StrategyMerge, resolved)

	default:
		return r.manualOutcome(record)
	}
}

func (r *Resolver) strategyFor(kind domain.ConflictType, override domain.ResolutionStrategy) domain.ResolutionStrategy {
	if override.IsValid() {
		return override
	}
	if rule, ok := r.autoRules[kind]; ok {
		return rule
	}
	return r.defaultStrategy
}

func (r *Resolver) finalOutcome(record *domain.ConflictRecord, strategy domain.ResolutionStrategy, resolved domain.EntityFields) domain.ResolutionOutcome {
	return domain.ResolutionOutcome{
		StrategyUsed: strategy,
		ResolvedData: resolved,
		Metadata: map[string]any{
			"fields_resolved": append([]string(nil), record.ConflictingFields...),
			"resolved_at":     time.Now(),
		},
	}
}

// manualOutcome returns the local version as a placeholder pending explicit
// user choice. Callers must not persist it as resolved state.
func (r *Resolver) manualOutcome(record *domain.ConflictRecord) domain.ResolutionOutcome {
	return domain.ResolutionOutcome{
		StrategyUsed: domain.StrategyManual,
		ResolvedData: deepCopyFields(record.Local),
		Metadata: map[string]any{
			"fields_resolved":            append([]string(nil), record.ConflictingFields...),
			"resolved_at":                time.Now(),
			"requires_manual_resolution": true,
		},
	}
}

func deepEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func unionKeys(local, remote domain.EntityFields) []string {
	seen := make(map[string]bool, len(local)+len(remote))
	for k := range local {
		seen[k] = true
	}
	for k := range remote {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(fields domain.EntityFields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func deepCopyFields(fields domain.EntityFields) domain.EntityFields {
	if fields == nil {
		return nil
	}
	out := make(domain.EntityFields, len(fields))
	for k, v := range fields {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case domain.EntityFields:
		return deepCopyFields(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
