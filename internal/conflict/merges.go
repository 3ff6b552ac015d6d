package conflict

import (
	"time"

	"pos-sync-server/internal/domain"
)

// Field-level merge rules for inventory items. The heuristics mirror how
// stock is actually maintained on a POS floor: the device count is the
// freshest quantity, the longer text is the more descriptive one, and the
// smaller low-stock threshold is the safer one.
var inventoryMergeRules = map[string]MergeFunc{
	"quantity":            takeLocal,
	"updated_at":          laterTimestamp,
	"name":                longerString,
	"description":         longerString,
	"unit_price":          localUnlessZero,
	"low_stock_threshold": smallerNumber,
}

// ResolveInventory resolves an inventory item conflict. The merge strategy
// uses the inventory field rules above; other strategies behave as in
// Resolve.
func (r *Resolver) ResolveInventory(record *domain.ConflictRecord, override domain.ResolutionStrategy) domain.ResolutionOutcome {
	return r.resolveWith(record, override, inventoryMergeRules)
}

// ResolveSales resolves a sales transaction conflict. A locally completed
// transaction always wins regardless of the requested strategy: completed
// financial transactions must never be silently overwritten by a remote
// view. Anything else falls through to generic resolution.
func (r *Resolver) ResolveSales(record *domain.ConflictRecord, override domain.ResolutionStrategy) domain.ResolutionOutcome {
	if status, ok := record.Local["status"].(string); ok && status == string(domain.SaleStatusCompleted) {
		return r.finalOutcome(record, domain.StrategyKeepLocal, deepCopyFields(record.Local))
	}
	return r.resolveWith(record, override, r.mergeFuncs)
}

func takeLocal(local, _, _ any) (any, error) {
	return local, nil
}

// laterTimestamp keeps whichever side's timestamp is chronologically later.
// Values may be time.Time or RFC3339 strings (the JSON form). Unparsable
// values fall back to local.
func laterTimestamp(local, remote, _ any) (any, error) {
	localTime, okLocal := asTime(local)
	remoteTime, okRemote := asTime(remote)
	if !okLocal || !okRemote {
		return local, nil
	}
	if remoteTime.After(localTime) {
		return remote, nil
	}
	return local, nil
}

// longerString prefers the more descriptive side; ties keep local.
func longerString(local, remote, _ any) (any, error) {
	localStr, okLocal := local.(string)
	remoteStr, okRemote := remote.(string)
	if !okLocal || !okRemote {
		return local, nil
	}
	if len(remoteStr) > len(localStr) {
		return remote, nil
	}
	return local, nil
}

func localUnlessZero(local, remote, _ any) (any, error) {
	if value, ok := asFloat(local); ok && value != 0 {
		return local, nil
	}
	return remote, nil
}

func smallerNumber(local, remote, _ any) (any, error) {
	localVal, okLocal := asFloat(local)
	remoteVal, okRemote := asFloat(remote)
	if !okLocal || !okRemote {
		return local, nil
	}
	if remoteVal < localVal {
		return remote, nil
	}
	return local, nil
}

func asTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		t, err := time.Parse(time.RFC3339, val)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}
