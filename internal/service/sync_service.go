package service

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"pos-sync-server/internal/conflict"
	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/repository"
)

// Notifier pushes change events to a user's other connected terminals.
// Implemented by the websocket manager; nil-safe via noopNotifier.
type Notifier interface {
	NotifyUser(userID, event string, payload any)
}

type noopNotifier struct{}

func (noopNotifier) NotifyUser(string, string, any) {}

type entityKind string

const (
	kindInventory entityKind = "inventory"
	kindSale      entityKind = "sale"
)

// SyncService reconciles records modified offline on a terminal against the
// server copy. Clean changes are forward-propagated; diverged records go
// through the conflict resolver, and anything the resolver cannot settle is
// queued for explicit user resolution.
type SyncService struct {
	inventoryRepo repository.InventoryRepository
	saleRepo      repository.SaleRepository
	conflictRepo  repository.ConflictRepository
	metadataRepo  repository.SyncMetadataRepository
	resolver      *conflict.Resolver
	notifier      Notifier
}

func NewSyncService(
	inventoryRepo repository.InventoryRepository,
	saleRepo repository.SaleRepository,
	conflictRepo repository.ConflictRepository,
	metadataRepo repository.SyncMetadataRepository,
	resolver *conflict.Resolver,
	notifier Notifier,
) *SyncService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &SyncService{
		inventoryRepo: inventoryRepo,
		saleRepo:      saleRepo,
		conflictRepo:  conflictRepo,
		metadataRepo:  metadataRepo,
		resolver:      resolver,
		notifier:      notifier,
	}
}

func (s *SyncService) PushInventory(userID string, req *domain.PushRequest) (*domain.PushResponse, error) {
	return s.push(userID, kindInventory, req)
}

func (s *SyncService) PushSales(userID string, req *domain.PushRequest) (*domain.PushResponse, error) {
	return s.push(userID, kindSale, req)
}

func (s *SyncService) push(userID string, kind entityKind, req *domain.PushRequest) (*domain.PushResponse, error) {
	results := make([]domain.PushResult, 0, len(req.Records))
	for _, rec := range req.Records {
		results = append(results, s.pushOne(userID, kind, rec))
	}

	syncTime := time.Now()
	if err := s.metadataRepo.UpdateLastSync(userID, req.TerminalID, syncTime); err != nil {
		return nil, fmt.Errorf("failed to record sync time: %w", err)
	}

	return &domain.PushResponse{
		Results:  results,
		SyncTime: syncTime,
	}, nil
}

func (s *SyncService) pushOne(userID string, kind entityKind, rec domain.PushRecord) domain.PushResult {
	remote, err := s.remoteFields(kind, rec.Key)
	if err != nil {
		return domain.PushResult{Key: rec.Key, Status: domain.PushFailed, Error: err.Error()}
	}

	// A record the server has never seen, with no sync ancestor, was
	// created offline: store it as-is.
	if remote == nil && rec.Base == nil {
		if err := s.persist(kind, rec.Key, rec.Local); err != nil {
			return domain.PushResult{Key: rec.Key, Status: domain.PushFailed, Error: err.Error()}
		}
		s.notifier.NotifyUser(userID, string(kind)+".updated", rec.Local)
		return domain.PushResult{Key: rec.Key, Status: domain.PushApplied}
	}

	record := s.resolver.DetectConflict(rec.Local, remote, rec.Base)
	if record == nil {
		merged, changed := forwardMerge(rec.Local, remote, rec.Base)
		if !changed {
			return domain.PushResult{Key: rec.Key, Status: domain.PushUnchanged}
		}
		if err := s.persist(kind, rec.Key, merged); err != nil {
			return domain.PushResult{Key: rec.Key, Status: domain.PushFailed, Error: err.Error()}
		}
		s.notifier.NotifyUser(userID, string(kind)+".updated", merged)
		return domain.PushResult{Key: rec.Key, Status: domain.PushApplied}
	}

	outcome := s.resolveByKind(kind, record, "")

	queueKey := fmt.Sprintf("%s:%s", kind, rec.Key)
	if outcome.RequiresManual() {
		s.resolver.Pending().Add(queueKey, record)
		if err := s.conflictRepo.Create(queueKey, record); err != nil {
			// The in-memory queue still holds the conflict; losing the
			// audit copy must not fail the push.
			s.notifier.NotifyUser(userID, "conflict.audit_failed", queueKey)
		}
		s.notifier.NotifyUser(userID, "conflict.detected", record)
		return domain.PushResult{
			Key:      rec.Key,
			Status:   domain.PushConflictQueued,
			Conflict: record,
		}
	}

	if err := s.persist(kind, rec.Key, outcome.ResolvedData); err != nil {
		return domain.PushResult{Key: rec.Key, Status: domain.PushFailed, Error: err.Error()}
	}
	if err := s.conflictRepo.Create(queueKey, record); err == nil {
		_ = s.conflictRepo.MarkResolved(queueKey, outcome.StrategyUsed)
	}
	s.notifier.NotifyUser(userID, string(kind)+".updated", outcome.ResolvedData)

	return domain.PushResult{
		Key:      rec.Key,
		Status:   domain.PushResolved,
		Strategy: outcome.StrategyUsed,
		Resolved: outcome.ResolvedData,
	}
}

// ListPending returns a snapshot of the conflicts awaiting manual
// resolution.
func (s *SyncService) ListPending() map[string]*domain.ConflictRecord {
	return s.resolver.Pending().GetAll()
}

func (s *SyncService) PendingStats() map[domain.ConflictType]int {
	return s.resolver.Pending().StatsByKind()
}

func (s *SyncService) ClearPending() {
	s.resolver.Pending().Clear()
}

// ResolvePending applies an explicit user decision to a queued conflict,
// persists the resolved record and removes the queue entry.
func (s *SyncService) ResolvePending(userID, key string, strategy domain.ResolutionStrategy) (*domain.ResolutionOutcome, error) {
	record, ok := s.resolver.Pending().Get(key)
	if !ok {
		return nil, fmt.Errorf("no pending conflict for key %q", key)
	}

	kind, entityKey, err := splitQueueKey(key)
	if err != nil {
		return nil, err
	}

	outcome := s.resolveByKind(kind, record, strategy)
	if outcome.RequiresManual() {
		return nil, fmt.Errorf("strategy %q did not produce a final resolution", strategy)
	}

	if err := s.persist(kind, entityKey, outcome.ResolvedData); err != nil {
		return nil, fmt.Errorf("failed to persist resolved record: %w", err)
	}

	s.resolver.Pending().Remove(key)
	_ = s.conflictRepo.MarkResolved(key, outcome.StrategyUsed)
	s.notifier.NotifyUser(userID, "conflict.resolved", outcome)

	return &outcome, nil
}

func (s *SyncService) LastSync(userID, terminalID string) (*domain.SyncMetadata, error) {
	return s.metadataRepo.Get(userID, terminalID)
}

func (s *SyncService) resolveByKind(kind entityKind, record *domain.ConflictRecord, override domain.ResolutionStrategy) domain.ResolutionOutcome {
	switch kind {
	case kindInventory:
		return s.resolver.ResolveInventory(record, override)
	case kindSale:
		return s.resolver.ResolveSales(record, override)
	default:
		return s.resolver.Resolve(record, override)
	}
}

func (s *SyncService) remoteFields(kind entityKind, key string) (domain.EntityFields, error) {
	switch kind {
	case kindInventory:
		item, err := s.inventoryRepo.FindByID(key)
		if err != nil {
			return nil, nil // not on the server
		}
		return domain.FieldsOf(item)
	case kindSale:
		sale, err := s.saleRepo.FindByID(key)
		if err != nil {
			return nil, nil
		}
		return domain.FieldsOf(sale)
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

func (s *SyncService) persist(kind entityKind, key string, fields domain.EntityFields) error {
	switch kind {
	case kindInventory:
		var item domain.InventoryItem
		if err := domain.FromFields(fields, &item); err != nil {
			return fmt.Errorf("malformed inventory record: %w", err)
		}
		if item.ID == "" {
			item.ID = key
		}
		return s.inventoryRepo.Update(&item)
	case kindSale:
		var sale domain.Sale
		if err := domain.FromFields(fields, &sale); err != nil {
			return fmt.Errorf("malformed sale record: %w", err)
		}
		if sale.ID == "" {
			sale.ID = key
		}
		return s.saleRepo.Update(&sale)
	default:
		return fmt.Errorf("unknown entity kind %q", kind)
	}
}

// forwardMerge folds single-sided local changes onto the remote copy when
// detection found no real conflict. Without a base the two sides are
// already equal and there is nothing to apply.
func forwardMerge(local, remote, base domain.EntityFields) (domain.EntityFields, bool) {
	if base == nil {
		return conflict.CopyFields(remote), false
	}

	merged := conflict.CopyFields(remote)
	if merged == nil {
		merged = make(domain.EntityFields)
	}
	changed := false
	for field, localVal := range local {
		if reflect.DeepEqual(localVal, base[field]) {
			continue
		}
		if !reflect.DeepEqual(merged[field], localVal) {
			merged[field] = localVal
			changed = true
		}
	}
	return merged, changed
}

func splitQueueKey(key string) (entityKind, string, error) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed conflict key %q", key)
	}
	kind := entityKind(parts[0])
	if kind != kindInventory && kind != kindSale {
		return "", "", fmt.Errorf("unknown entity kind in conflict key %q", key)
	}
	return kind, parts[1], nil
}
