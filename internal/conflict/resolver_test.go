package conflict

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"pos-sync-server/internal/domain"
)

type recordingReporter struct {
	kinds []string
}

func (r *recordingReporter) Report(kind, message string, context map[string]any) {
	r.kinds = append(r.kinds, kind)
}

func newTestResolver() *Resolver {
	return NewResolver(Options{Reporter: &recordingReporter{}})
}

func TestDetectConflict_NoBase(t *testing.T) {
	tests := []struct {
		name       string
		local      domain.EntityFields
		remote     domain.EntityFields
		wantNil    bool
		wantFields []string
		wantKind   domain.ConflictType
	}{
		{
			name:    "identical maps produce no conflict",
			local:   domain.EntityFields{"name": "Coffee", "quantity": float64(3)},
			remote:  domain.EntityFields{"name": "Coffee", "quantity": float64(3)},
			wantNil: true,
		},
		{
			name:       "differing fields are all flagged",
			local:      domain.EntityFields{"name": "Coffee", "quantity": float64(3)},
			remote:     domain.EntityFields{"name": "Espresso", "quantity": float64(5)},
			wantFields: []string{"name", "quantity"},
			wantKind:   domain.ConflictFieldsModified,
		},
		{
			name:       "field count mismatch is a schema mismatch",
			local:      domain.EntityFields{"name": "Coffee", "quantity": float64(3)},
			remote:     domain.EntityFields{"name": "Coffee", "quantity": float64(5), "color": "brown"},
			wantFields: []string{"color", "quantity"},
			wantKind:   domain.ConflictSchemaMismatch,
		},
		{
			name:       "identifier-like field flags duplicate key",
			local:      domain.EntityFields{"sku": "A-1", "name": "Coffee"},
			remote:     domain.EntityFields{"sku": "A-2", "name": "Coffee"},
			wantFields: []string{"sku"},
			wantKind:   domain.ConflictDuplicateKey,
		},
	}

	resolver := newTestResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := resolver.DetectConflict(tt.local, tt.remote, nil)
			if tt.wantNil {
				if record != nil {
					t.Fatalf("expected no conflict, got %+v", record)
				}
				return
			}
			if record == nil {
				t.Fatal("expected a conflict, got nil")
			}
			if !reflect.DeepEqual(record.ConflictingFields, tt.wantFields) {
				t.Errorf("conflicting fields = %v, want %v", record.ConflictingFields, tt.wantFields)
			}
			if record.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", record.Kind, tt.wantKind)
			}
			if record.DetectedAt.IsZero() {
				t.Error("expected DetectedAt to be set")
			}
		})
	}
}

func TestDetectConflict_BaseAware(t *testing.T) {
	base := domain.EntityFields{"name": "Coffee", "quantity": float64(3), "price": float64(2.5)}

	// Only local changed quantity, only remote changed price: both are
	// clean forward propagations. Both sides changed name differently.
	local := domain.EntityFields{"name": "Coffee Beans", "quantity": float64(7), "price": float64(2.5)}
	remote := domain.EntityFields{"name": "Arabica", "quantity": float64(3), "price": float64(3.0)}

	resolver := newTestResolver()
	record := resolver.DetectConflict(local, remote, base)
	if record == nil {
		t.Fatal("expected a conflict, got nil")
	}
	if want := []string{"name"}; !reflect.DeepEqual(record.ConflictingFields, want) {
		t.Errorf("conflicting fields = %v, want %v", record.ConflictingFields, want)
	}
}

func TestDetectConflict_BaseAwareConvergentEdits(t *testing.T) {
	base := domain.EntityFields{"quantity": float64(3)}
	local := domain.EntityFields{"quantity": float64(9)}
	remote := domain.EntityFields{"quantity": float64(9)}

	resolver := newTestResolver()
	if record := resolver.DetectConflict(local, remote, base); record != nil {
		t.Fatalf("both sides made the same change, expected no conflict, got %+v", record)
	}
}

func TestDetectConflict_RemoteDeleted(t *testing.T) {
	local := domain.EntityFields{"name": "Coffee", "quantity": float64(3)}

	resolver := newTestResolver()
	record := resolver.DetectConflict(local, nil, nil)
	if record == nil {
		t.Fatal("expected a conflict, got nil")
	}
	if record.Kind != domain.ConflictRecordDeletedRemotely {
		t.Errorf("kind = %s, want %s", record.Kind, domain.ConflictRecordDeletedRemotely)
	}
	if want := []string{"name", "quantity"}; !reflect.DeepEqual(record.ConflictingFields, want) {
		t.Errorf("conflicting fields = %v, want %v", record.ConflictingFields, want)
	}
}

func TestResolve_KeepLocalKeepRemote(t *testing.T) {
	resolver := newTestResolver()
	record := resolver.DetectConflict(
		domain.EntityFields{"name": "Local", "quantity": float64(1)},
		domain.EntityFields{"name": "Remote", "quantity": float64(2)},
		nil,
	)

	localOutcome := resolver.Resolve(record, domain.StrategyKeepLocal)
	if localOutcome.ResolvedData["name"] != "Local" {
		t.Errorf("keep_local resolved name = %v, want Local", localOutcome.ResolvedData["name"])
	}

	remoteOutcome := resolver.Resolve(record, domain.StrategyKeepRemote)
	if remoteOutcome.ResolvedData["name"] != "Remote" {
		t.Errorf("keep_remote resolved name = %v, want Remote", remoteOutcome.ResolvedData["name"])
	}

	// Resolving twice must be deterministic and mutation-free.
	again := resolver.Resolve(record, domain.StrategyKeepLocal)
	if !reflect.DeepEqual(localOutcome.ResolvedData, again.ResolvedData) {
		t.Errorf("keep_local not idempotent: %v vs %v", localOutcome.ResolvedData, again.ResolvedData)
	}

	localOutcome.ResolvedData["name"] = "tampered"
	if record.Local["name"] != "Local" {
		t.Error("mutating the outcome leaked into the conflict record")
	}
}

func TestResolve_MergeDefaultsToLocal(t *testing.T) {
	resolver := newTestResolver()
	record := resolver.DetectConflict(
		domain.EntityFields{"name": "Local", "quantity": float64(1), "note": "same"},
		domain.EntityFields{"name": "Remote", "quantity": float64(2), "note": "same"},
		nil,
	)

	outcome := resolver.Resolve(record, domain.StrategyMerge)
	if outcome.StrategyUsed != domain.StrategyMerge {
		t.Fatalf("strategy = %s, want merge", outcome.StrategyUsed)
	}
	if outcome.ResolvedData["name"] != "Local" {
		t.Errorf("merged name = %v, want local value", outcome.ResolvedData["name"])
	}
	if outcome.ResolvedData["quantity"] != float64(1) {
		t.Errorf("merged quantity = %v, want local value", outcome.ResolvedData["quantity"])
	}
	if outcome.ResolvedData["note"] != "same" {
		t.Errorf("non-conflicting field lost: %v", outcome.ResolvedData["note"])
	}
}

func TestResolve_CustomMergeFunc(t *testing.T) {
	resolver := newTestResolver()
	resolver.RegisterMergeFunc("quantity", func(local, remote, base any) (any, error) {
		return remote, nil
	})

	record := resolver.DetectConflict(
		domain.EntityFields{"quantity": float64(1)},
		domain.EntityFields{"quantity": float64(2)},
		nil,
	)

	outcome := resolver.Resolve(record, domain.StrategyMerge)
	if outcome.ResolvedData["quantity"] != float64(2) {
		t.Errorf("merged quantity = %v, want remote value via custom rule", outcome.ResolvedData["quantity"])
	}
}

func TestResolve_StrategyPrecedence(t *testing.T) {
	reporter := &recordingReporter{}
	resolver := NewResolver(Options{
		DefaultStrategy: domain.StrategyKeepRemote,
		AutoRules: map[domain.ConflictType]domain.ResolutionStrategy{
			domain.ConflictFieldsModified: domain.StrategyMerge,
		},
		Reporter: reporter,
	})

	record := resolver.DetectConflict(
		domain.EntityFields{"name": "Local"},
		domain.EntityFields{"name": "Remote"},
		nil,
	)

	// Explicit override wins over the auto rule.
	if out := resolver.Resolve(record, domain.StrategyKeepRemote); out.StrategyUsed != domain.StrategyKeepRemote {
		t.Errorf("override ignored, strategy = %s", out.StrategyUsed)
	}

	// Auto rule for the kind wins over the default.
	if out := resolver.Resolve(record, ""); out.StrategyUsed != domain.StrategyMerge {
		t.Errorf("auto rule ignored, strategy = %s", out.StrategyUsed)
	}

	// Default applies when the kind has no auto rule.
	record.Kind = domain.ConflictSchemaMismatch
	if out := resolver.Resolve(record, ""); out.StrategyUsed != domain.StrategyKeepRemote {
		t.Errorf("default ignored, strategy = %s", out.StrategyUsed)
	}
}

func TestResolve_ManualIsPlaceholder(t *testing.T) {
	resolver := newTestResolver()
	record := resolver.DetectConflict(
		domain.EntityFields{"name": "Local"},
		domain.EntityFields{"name": "Remote"},
		nil,
	)

	outcome := resolver.Resolve(record, domain.StrategyManual)
	if outcome.StrategyUsed != domain.StrategyManual {
		t.Fatalf("strategy = %s, want manual", outcome.StrategyUsed)
	}
	if !outcome.RequiresManual() {
		t.Error("manual outcome missing requires_manual_resolution metadata")
	}
	if outcome.ResolvedData["name"] != "Local" {
		t.Errorf("manual placeholder = %v, want local version", outcome.ResolvedData["name"])
	}
}

func TestResolve_MergeRuleErrorDowngradesToManual(t *testing.T) {
	reporter := &recordingReporter{}
	resolver := NewResolver(Options{Reporter: reporter})
	resolver.RegisterMergeFunc("name", func(local, remote, base any) (any, error) {
		return nil, errors.New("boom")
	})

	record := resolver.DetectConflict(
		domain.EntityFields{"name": "Local"},
		domain.EntityFields{"name": "Remote"},
		nil,
	)

	outcome := resolver.Resolve(record, domain.StrategyMerge)
	if outcome.StrategyUsed != domain.StrategyManual {
		t.Fatalf("strategy = %s, want manual fallback", outcome.StrategyUsed)
	}
	if !outcome.RequiresManual() {
		t.Error("fallback outcome missing manual marker")
	}
	if len(reporter.kinds) == 0 || reporter.kinds[0] != "merge_rule_failed" {
		t.Errorf("fault not reported, got %v", reporter.kinds)
	}
}

func TestResolve_MergeRulePanicDowngradesToManual(t *testing.T) {
	reporter := &recordingReporter{}
	resolver := NewResolver(Options{Reporter: reporter})
	resolver.RegisterMergeFunc("name", func(local, remote, base any) (any, error) {
		panic("buggy rule")
	})

	record := resolver.DetectConflict(
		domain.EntityFields{"name": "Local"},
		domain.EntityFields{"name": "Remote"},
		nil,
	)

	outcome := resolver.Resolve(record, domain.StrategyMerge)
	if outcome.StrategyUsed != domain.StrategyManual {
		t.Fatalf("strategy = %s, want manual fallback after panic", outcome.StrategyUsed)
	}
	if len(reporter.kinds) == 0 || reporter.kinds[0] != "resolution_panic" {
		t.Errorf("panic not reported, got %v", reporter.kinds)
	}
}

func TestResolveInventory_FieldRules(t *testing.T) {
	older := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)
	newer := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)

	local := domain.EntityFields{
		"quantity":            float64(4),
		"updated_at":          older,
		"name":                "Mug",
		"description":         "A ceramic mug with a handle",
		"unit_price":          float64(0),
		"low_stock_threshold": float64(10),
	}
	remote := domain.EntityFields{
		"quantity":            float64(9),
		"updated_at":          newer,
		"name":                "Ceramic Mug",
		"description":         "A mug",
		"unit_price":          float64(5.5),
		"low_stock_threshold": float64(5),
	}

	resolver := newTestResolver()
	record := resolver.DetectConflict(local, remote, nil)
	if record == nil {
		t.Fatal("expected a conflict")
	}

	outcome := resolver.ResolveInventory(record, domain.StrategyMerge)
	resolved := outcome.ResolvedData

	if resolved["quantity"] != float64(4) {
		t.Errorf("quantity = %v, want local device count 4", resolved["quantity"])
	}
	if resolved["updated_at"] != newer {
		t.Errorf("updated_at = %v, want later timestamp %s", resolved["updated_at"], newer)
	}
	if resolved["name"] != "Ceramic Mug" {
		t.Errorf("name = %v, want longer string", resolved["name"])
	}
	if resolved["description"] != "A ceramic mug with a handle" {
		t.Errorf("description = %v, want longer string", resolved["description"])
	}
	if resolved["unit_price"] != float64(5.5) {
		t.Errorf("unit_price = %v, want remote since local is zero", resolved["unit_price"])
	}
	if resolved["low_stock_threshold"] != float64(5) {
		t.Errorf("low_stock_threshold = %v, want smaller value", resolved["low_stock_threshold"])
	}
}

func TestResolveSales_CompletedLocalAlwaysWins(t *testing.T) {
	local := domain.EntityFields{"status": "completed", "total": float64(42)}
	remote := domain.EntityFields{"status": "pending", "total": float64(40)}

	resolver := newTestResolver()
	record := resolver.DetectConflict(local, remote, nil)
	if record == nil {
		t.Fatal("expected a conflict")
	}

	for _, strategy := range []domain.ResolutionStrategy{
		domain.StrategyKeepRemote,
		domain.StrategyMerge,
		domain.StrategyManual,
		"",
	} {
		outcome := resolver.ResolveSales(record, strategy)
		if !reflect.DeepEqual(outcome.ResolvedData, record.Local) {
			t.Errorf("strategy %q: resolved = %v, want local", strategy, outcome.ResolvedData)
		}
	}
}

func TestResolveSales_PendingFallsThrough(t *testing.T) {
	local := domain.EntityFields{"status": "pending", "total": float64(42)}
	remote := domain.EntityFields{"status": "voided", "total": float64(42)}

	resolver := newTestResolver()
	record := resolver.DetectConflict(local, remote, nil)
	if record == nil {
		t.Fatal("expected a conflict")
	}

	outcome := resolver.ResolveSales(record, domain.StrategyKeepRemote)
	if outcome.ResolvedData["status"] != "voided" {
		t.Errorf("status = %v, want remote via keep_remote", outcome.ResolvedData["status"])
	}
}

func TestIdentifierFieldsConfigurable(t *testing.T) {
	resolver := NewResolver(Options{
		IdentifierFields: []string{"receipt_no"},
		Reporter:         &recordingReporter{},
	})

	record := resolver.DetectConflict(
		domain.EntityFields{"receipt_no": "R-1"},
		domain.EntityFields{"receipt_no": "R-2"},
		nil,
	)
	if record.Kind != domain.ConflictDuplicateKey {
		t.Errorf("kind = %s, want duplicate_key for configured identifier", record.Kind)
	}

	// sku is no longer identifier-like once the list is overridden.
	record = resolver.DetectConflict(
		domain.EntityFields{"sku": "A-1"},
		domain.EntityFields{"sku": "A-2"},
		nil,
	)
	if record.Kind != domain.ConflictFieldsModified {
		t.Errorf("kind = %s, want fields_modified", record.Kind)
	}
}
