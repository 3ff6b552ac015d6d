package service

import (
	"errors"
	"testing"
	"time"

	"pos-sync-server/internal/conflict"
	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/repository"
)

type mockInventoryRepository struct {
	items map[string]*domain.InventoryItem
}

func newMockInventoryRepository() *mockInventoryRepository {
	return &mockInventoryRepository{items: make(map[string]*domain.InventoryItem)}
}

func (m *mockInventoryRepository) Create(item *domain.InventoryItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockInventoryRepository) FindByID(id string) (*domain.InventoryItem, error) {
	if item, ok := m.items[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, errors.New("item not found")
}

func (m *mockInventoryRepository) FindBySKU(sku string) (*domain.InventoryItem, error) {
	for _, item := range m.items {
		if item.SKU == sku {
			copied := *item
			return &copied, nil
		}
	}
	return nil, errors.New("item not found")
}

func (m *mockInventoryRepository) List() ([]*domain.InventoryItem, error) {
	items := make([]*domain.InventoryItem, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	return items, nil
}

func (m *mockInventoryRepository) Update(item *domain.InventoryItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockInventoryRepository) Delete(id string) error {
	delete(m.items, id)
	return nil
}

type mockSaleRepository struct {
	sales map[string]*domain.Sale
}

func newMockSaleRepository() *mockSaleRepository {
	return &mockSaleRepository{sales: make(map[string]*domain.Sale)}
}

func (m *mockSaleRepository) Create(sale *domain.Sale) error {
	m.sales[sale.ID] = sale
	return nil
}

func (m *mockSaleRepository) FindByID(id string) (*domain.Sale, error) {
	if sale, ok := m.sales[id]; ok {
		copied := *sale
		return &copied, nil
	}
	return nil, errors.New("sale not found")
}

func (m *mockSaleRepository) ListByCashier(cashierID string) ([]*domain.Sale, error) {
	var sales []*domain.Sale
	for _, sale := range m.sales {
		if sale.CashierID == cashierID {
			sales = append(sales, sale)
		}
	}
	return sales, nil
}

func (m *mockSaleRepository) ListSince(since time.Time) ([]*domain.Sale, error) {
	var sales []*domain.Sale
	for _, sale := range m.sales {
		if sale.CreatedAt.After(since) {
			sales = append(sales, sale)
		}
	}
	return sales, nil
}

func (m *mockSaleRepository) Update(sale *domain.Sale) error {
	m.sales[sale.ID] = sale
	return nil
}

type mockConflictRepository struct {
	docs map[string]*repository.ConflictDocument
}

func newMockConflictRepository() *mockConflictRepository {
	return &mockConflictRepository{docs: make(map[string]*repository.ConflictDocument)}
}

func (m *mockConflictRepository) Create(key string, record *domain.ConflictRecord) error {
	m.docs[key] = &repository.ConflictDocument{Key: key, Record: record}
	return nil
}

func (m *mockConflictRepository) Get(key string) (*repository.ConflictDocument, error) {
	if doc, ok := m.docs[key]; ok {
		return doc, nil
	}
	return nil, errors.New("conflict not found")
}

func (m *mockConflictRepository) MarkResolved(key string, strategy domain.ResolutionStrategy) error {
	doc, ok := m.docs[key]
	if !ok {
		return errors.New("conflict not found")
	}
	now := time.Now()
	doc.Resolved = true
	doc.ResolvedAt = &now
	doc.Strategy = strategy
	return nil
}

func (m *mockConflictRepository) ListUnresolved() ([]*repository.ConflictDocument, error) {
	var docs []*repository.ConflictDocument
	for _, doc := range m.docs {
		if !doc.Resolved {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

type mockSyncMetadataRepository struct {
	lastSync map[string]time.Time
}

func newMockSyncMetadataRepository() *mockSyncMetadataRepository {
	return &mockSyncMetadataRepository{lastSync: make(map[string]time.Time)}
}

func (m *mockSyncMetadataRepository) Get(userID, terminalID string) (*domain.SyncMetadata, error) {
	return &domain.SyncMetadata{
		UserID:       userID,
		TerminalID:   terminalID,
		LastSyncTime: m.lastSync[userID+":"+terminalID],
	}, nil
}

func (m *mockSyncMetadataRepository) UpdateLastSync(userID, terminalID string, timestamp time.Time) error {
	m.lastSync[userID+":"+terminalID] = timestamp
	return nil
}

type mockNotifier struct {
	events []string
}

func (m *mockNotifier) NotifyUser(_ string, event string, _ any) {
	m.events = append(m.events, event)
}

func (m *mockNotifier) saw(event string) bool {
	for _, e := range m.events {
		if e == event {
			return true
		}
	}
	return false
}

type syncFixture struct {
	svc           *SyncService
	inventoryRepo *mockInventoryRepository
	saleRepo      *mockSaleRepository
	conflictRepo  *mockConflictRepository
	metadataRepo  *mockSyncMetadataRepository
	notifier      *mockNotifier
}

func newSyncFixture(opts conflict.Options) *syncFixture {
	f := &syncFixture{
		inventoryRepo: newMockInventoryRepository(),
		saleRepo:      newMockSaleRepository(),
		conflictRepo:  newMockConflictRepository(),
		metadataRepo:  newMockSyncMetadataRepository(),
		notifier:      &mockNotifier{},
	}
	f.svc = NewSyncService(
		f.inventoryRepo,
		f.saleRepo,
		f.conflictRepo,
		f.metadataRepo,
		conflict.NewResolver(opts),
		f.notifier,
	)
	return f
}

func seedItem(t *testing.T, repo *mockInventoryRepository, id string) domain.EntityFields {
	t.Helper()
	item := &domain.InventoryItem{
		ID:                id,
		SKU:               "SKU-" + id,
		Name:              "Espresso Beans",
		Quantity:          10,
		UnitPrice:         12.50,
		LowStockThreshold: 5,
	}
	repo.items[id] = item

	fields, err := domain.FieldsOf(item)
	if err != nil {
		t.Fatalf("FieldsOf: %v", err)
	}
	return fields
}

func pushOne(t *testing.T, f *syncFixture, rec domain.PushRecord) domain.PushResult {
	t.Helper()
	resp, err := f.svc.PushInventory("user-1", &domain.PushRequest{
		TerminalID: "till-1",
		Records:    []domain.PushRecord{rec},
	})
	if err != nil {
		t.Fatalf("PushInventory: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(resp.Results))
	}
	return resp.Results[0]
}

func TestSyncService_PushCreatesOfflineRecord(t *testing.T) {
	f := newSyncFixture(conflict.Options{})

	result := pushOne(t, f, domain.PushRecord{
		Key: "item-1",
		Local: domain.EntityFields{
			"id":       "item-1",
			"sku":      "SKU-item-1",
			"name":     "Oat Milk",
			"quantity": float64(24),
		},
	})

	if result.Status != domain.PushApplied {
		t.Fatalf("status = %q, want applied", result.Status)
	}
	stored, err := f.inventoryRepo.FindByID("item-1")
	if err != nil {
		t.Fatal("record not persisted")
	}
	if stored.Name != "Oat Milk" || stored.Quantity != 24 {
		t.Errorf("persisted record mismatch: %+v", stored)
	}
	if !f.notifier.saw("inventory.updated") {
		t.Error("other terminals were not notified")
	}
}

func TestSyncService_PushForwardMergesCleanChange(t *testing.T) {
	f := newSyncFixture(conflict.Options{})
	base := seedItem(t, f.inventoryRepo, "item-1")

	local := conflict.CopyFields(base)
	local["quantity"] = float64(7)

	result := pushOne(t, f, domain.PushRecord{Key: "item-1", Local: local, Base: base})

	if result.Status != domain.PushApplied {
		t.Fatalf("status = %q, want applied", result.Status)
	}
	stored, _ := f.inventoryRepo.FindByID("item-1")
	if stored.Quantity != 7 {
		t.Errorf("quantity = %d, want 7", stored.Quantity)
	}
}

func TestSyncService_PushUnchangedRecord(t *testing.T) {
	f := newSyncFixture(conflict.Options{})
	base := seedItem(t, f.inventoryRepo, "item-1")

	result := pushOne(t, f, domain.PushRecord{
		Key:   "item-1",
		Local: conflict.CopyFields(base),
		Base:  base,
	})

	if result.Status != domain.PushUnchanged {
		t.Fatalf("status = %q, want unchanged", result.Status)
	}
	if f.notifier.saw("inventory.updated") {
		t.Error("no-op push must not notify")
	}
}

func TestSyncService_PushQueuesDivergedRecord(t *testing.T) {
	f := newSyncFixture(conflict.Options{})
	base := seedItem(t, f.inventoryRepo, "item-1")

	// Another terminal already renamed the item on the server.
	remote := f.inventoryRepo.items["item-1"]
	remote.Name = "Espresso Beans Dark Roast"

	local := conflict.CopyFields(base)
	local["name"] = "House Espresso"

	result := pushOne(t, f, domain.PushRecord{Key: "item-1", Local: local, Base: base})

	if result.Status != domain.PushConflictQueued {
		t.Fatalf("status = %q, want conflict_queued", result.Status)
	}
	if result.Conflict == nil || result.Conflict.Kind != domain.ConflictFieldsModified {
		t.Fatalf("conflict record missing or misclassified: %+v", result.Conflict)
	}

	pending := f.svc.ListPending()
	if _, ok := pending["inventory:item-1"]; !ok {
		t.Error("conflict not queued under inventory:item-1")
	}
	if _, err := f.conflictRepo.Get("inventory:item-1"); err != nil {
		t.Error("conflict not written to the audit trail")
	}
	if !f.notifier.saw("conflict.detected") {
		t.Error("conflict.detected event not emitted")
	}

	stored, _ := f.inventoryRepo.FindByID("item-1")
	if stored.Name != "Espresso Beans Dark Roast" {
		t.Error("queued conflict must leave the server copy untouched")
	}
}

func TestSyncService_PushAutoResolvesWithMergeRule(t *testing.T) {
	f := newSyncFixture(conflict.Options{
		AutoRules: map[domain.ConflictType]domain.ResolutionStrategy{
			domain.ConflictFieldsModified: domain.StrategyMerge,
		},
	})
	base := seedItem(t, f.inventoryRepo, "item-1")

	remote := f.inventoryRepo.items["item-1"]
	remote.Quantity = 3

	local := conflict.CopyFields(base)
	local["quantity"] = float64(8)

	result := pushOne(t, f, domain.PushRecord{Key: "item-1", Local: local, Base: base})

	if result.Status != domain.PushResolved {
		t.Fatalf("status = %q, want resolved", result.Status)
	}
	if result.Strategy != domain.StrategyMerge {
		t.Errorf("strategy = %q, want merge", result.Strategy)
	}

	// The terminal's physical count wins over the server quantity.
	stored, _ := f.inventoryRepo.FindByID("item-1")
	if stored.Quantity != 8 {
		t.Errorf("quantity = %d, want 8", stored.Quantity)
	}
	if f.svc.resolver.Pending().Len() != 0 {
		t.Error("auto-resolved conflict must not be queued")
	}
}

func TestSyncService_PushSalesCompletedLocalWins(t *testing.T) {
	f := newSyncFixture(conflict.Options{})
	sale := &domain.Sale{
		ID:        "sale-1",
		CashierID: "user-1",
		Status:    domain.SaleStatusVoided,
		Total:     20,
	}
	f.saleRepo.sales["sale-1"] = sale

	base, err := domain.FieldsOf(sale)
	if err != nil {
		t.Fatalf("FieldsOf: %v", err)
	}
	base["status"] = string(domain.SaleStatusPending)

	local := conflict.CopyFields(base)
	local["status"] = string(domain.SaleStatusCompleted)

	resp, err := f.svc.PushSales("user-1", &domain.PushRequest{
		TerminalID: "till-1",
		Records:    []domain.PushRecord{{Key: "sale-1", Local: local, Base: base}},
	})
	if err != nil {
		t.Fatalf("PushSales: %v", err)
	}

	result := resp.Results[0]
	if result.Status != domain.PushResolved {
		t.Fatalf("status = %q, want resolved", result.Status)
	}
	if result.Strategy != domain.StrategyKeepLocal {
		t.Errorf("strategy = %q, want keep_local", result.Strategy)
	}
	stored, _ := f.saleRepo.FindByID("sale-1")
	if stored.Status != domain.SaleStatusCompleted {
		t.Errorf("status = %q, want completed", stored.Status)
	}
}

func TestSyncService_PushUpdatesLastSync(t *testing.T) {
	f := newSyncFixture(conflict.Options{})

	pushOne(t, f, domain.PushRecord{
		Key:   "item-1",
		Local: domain.EntityFields{"id": "item-1", "name": "Filters"},
	})

	meta, err := f.svc.LastSync("user-1", "till-1")
	if err != nil {
		t.Fatalf("LastSync: %v", err)
	}
	if meta.LastSyncTime.IsZero() {
		t.Error("last sync time not recorded")
	}
}

func TestSyncService_ResolvePending(t *testing.T) {
	f := newSyncFixture(conflict.Options{})
	base := seedItem(t, f.inventoryRepo, "item-1")

	remote := f.inventoryRepo.items["item-1"]
	remote.Name = "Espresso Beans Dark Roast"

	local := conflict.CopyFields(base)
	local["name"] = "House Espresso"
	pushOne(t, f, domain.PushRecord{Key: "item-1", Local: local, Base: base})

	outcome, err := f.svc.ResolvePending("user-1", "inventory:item-1", domain.StrategyKeepRemote)
	if err != nil {
		t.Fatalf("ResolvePending: %v", err)
	}
	if outcome.StrategyUsed != domain.StrategyKeepRemote {
		t.Errorf("strategy = %q, want keep_remote", outcome.StrategyUsed)
	}

	stored, _ := f.inventoryRepo.FindByID("item-1")
	if stored.Name != "Espresso Beans Dark Roast" {
		t.Errorf("name = %q, want the remote value", stored.Name)
	}
	if f.svc.resolver.Pending().Len() != 0 {
		t.Error("resolved conflict still queued")
	}
	doc, err := f.conflictRepo.Get("inventory:item-1")
	if err != nil || !doc.Resolved {
		t.Error("audit trail not marked resolved")
	}
	if !f.notifier.saw("conflict.resolved") {
		t.Error("conflict.resolved event not emitted")
	}
}

func TestSyncService_ResolvePending_UnknownKey(t *testing.T) {
	f := newSyncFixture(conflict.Options{})

	if _, err := f.svc.ResolvePending("user-1", "inventory:ghost", domain.StrategyKeepLocal); err == nil {
		t.Error("expected an error for an unknown conflict key")
	}
}

func TestSyncService_PendingStats(t *testing.T) {
	f := newSyncFixture(conflict.Options{})
	base := seedItem(t, f.inventoryRepo, "item-1")

	remote := f.inventoryRepo.items["item-1"]
	remote.Name = "Espresso Beans Dark Roast"

	local := conflict.CopyFields(base)
	local["name"] = "House Espresso"
	pushOne(t, f, domain.PushRecord{Key: "item-1", Local: local, Base: base})

	stats := f.svc.PendingStats()
	if stats[domain.ConflictFieldsModified] != 1 {
		t.Errorf("fields_modified count = %d, want 1", stats[domain.ConflictFieldsModified])
	}
	if stats[domain.ConflictDuplicateKey] != 0 {
		t.Errorf("duplicate_key count = %d, want 0", stats[domain.ConflictDuplicateKey])
	}

	f.svc.ClearPending()
	if f.svc.resolver.Pending().Len() != 0 {
		t.Error("ClearPending left entries behind")
	}
}
