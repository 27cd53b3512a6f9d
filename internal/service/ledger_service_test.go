package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"assettrack/internal/dto"
	"assettrack/internal/lock"
	"assettrack/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore is an in-memory AccessoryRepository. DB() returns nil so the
// service runs its transaction body directly against the map.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.AccessoryRecord
}

func newMemStore(records ...*model.AccessoryRecord) *memStore {
	s := &memStore{records: make(map[uuid.UUID]*model.AccessoryRecord)}
	for _, r := range records {
		s.put(r)
	}
	return s
}

func (s *memStore) put(r *model.AccessoryRecord) {
	cp := *r
	s.records[r.ID] = &cp
}

func (s *memStore) get(id uuid.UUID) (*model.AccessoryRecord, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) Create(_ context.Context, r *model.AccessoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(r)
	return nil
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*model.AccessoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *memStore) FindByBarcode(_ context.Context, barcode string) (*model.AccessoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Barcode == barcode {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) List(_ context.Context, _ dto.AccessoryFilter) ([]model.AccessoryRecord, int64, error) {
	all, _ := s.ListAll(context.Background())
	return all, int64(len(all)), nil
}

func (s *memStore) ListAll(_ context.Context) ([]model.AccessoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AccessoryRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out, nil
}

func (s *memStore) Update(_ context.Context, r *model.AccessoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[r.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.put(r)
	return nil
}

func (s *memStore) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.AccessoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *memStore) CreateTx(_ *gorm.DB, r *model.AccessoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(r)
	return nil
}

func (s *memStore) SaveTx(_ *gorm.DB, r *model.AccessoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(r)
	return nil
}

func (s *memStore) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *memStore) DB() *gorm.DB { return nil }

// totalQuantity sums quantity across all live records.
func (s *memStore) totalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, r := range s.records {
		total += r.Quantity
	}
	return total
}

// memActivityLog captures side-log rows written through CreateTx.
type memActivityLog struct {
	mu     sync.Mutex
	events []model.ActivityEvent
}

func (l *memActivityLog) Create(_ context.Context, ev *model.ActivityEvent) error {
	return l.CreateTx(nil, ev)
}

func (l *memActivityLog) CreateTx(_ *gorm.DB, ev *model.ActivityEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, *ev)
	return nil
}

func (l *memActivityLog) List(_ context.Context, _ dto.ActivityFilter) ([]model.ActivityEvent, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.ActivityEvent(nil), l.events...), int64(len(l.events)), nil
}

func stockRecord(qty int) *model.AccessoryRecord {
	return &model.AccessoryRecord{
		ID:           uuid.New(),
		AssetType:    "headset",
		Brand:        "Logitech",
		Model:        "H390",
		SerialNumber: "SN-001",
		Barcode:      "ACC-0001",
		Location:     "Shelf A3",
		Quantity:     qty,
		Status:       model.StatusOnStock,
	}
}

func newTestLedger(store *memStore, activity *memActivityLog) LedgerService {
	return NewLedgerService(store, activity, lock.NewMemoryLocker(), nil, time.Second)
}

func TestSplitCreatesDerivedRecord(t *testing.T) {
	source := stockRecord(15)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	resp, err := svc.Split(context.Background(), "maria", source.ID, 5, model.StatusIssued, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 10, resp.SourceQuantity)

	derivedID, err := uuid.Parse(resp.NewRecordID)
	require.NoError(t, err)

	derived, err := store.FindByID(context.Background(), derivedID)
	require.NoError(t, err)
	assert.Equal(t, 5, derived.Quantity)
	assert.Equal(t, model.StatusIssued, derived.Status)
	require.NotNil(t, derived.LineageID)
	assert.Equal(t, source.ID, *derived.LineageID)
	require.NotNil(t, derived.Borrower)
	assert.Equal(t, "Alice", *derived.Borrower)
	assert.Equal(t, "headset", derived.AssetType)
	assert.NotEqual(t, source.Barcode, derived.Barcode)
	assert.Contains(t, derived.Barcode, "ISS")

	updated, err := store.FindByID(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Quantity)
	assert.Equal(t, model.StatusOnStock, updated.Status)

	// Both sides carry exactly one audit entry for the operation
	require.Len(t, updated.AuditTrail, 1)
	assert.Equal(t, "split", updated.AuditTrail[0].Action)
	require.Len(t, derived.AuditTrail, 1)
	assert.Equal(t, "created", derived.AuditTrail[0].Action)

	assert.Equal(t, 15, store.totalQuantity())
}

func TestSplitToOnStockKeepsBothRecords(t *testing.T) {
	source := stockRecord(10)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	resp, err := svc.Split(context.Background(), "maria", source.ID, 4, model.StatusOnStock, "")
	require.NoError(t, err)
	assert.Equal(t, 6, resp.SourceQuantity)

	derivedID := uuid.MustParse(resp.NewRecordID)
	derived, err := store.FindByID(context.Background(), derivedID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnStock, derived.Status)
	assert.Equal(t, 4, derived.Quantity)
	require.NotNil(t, derived.LineageID)
	assert.Nil(t, derived.Borrower)
	assert.Equal(t, 10, store.totalQuantity())
}

func TestSplitInsufficientQuantity(t *testing.T) {
	source := stockRecord(10)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	_, err := svc.Split(context.Background(), "maria", source.ID, 11, model.StatusReserve, "Bob")
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	// Nothing changed
	rec, err := store.FindByID(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)
	assert.Empty(t, rec.AuditTrail)
	assert.Equal(t, 10, store.totalQuantity())
}

func TestSplitInvalidQuantity(t *testing.T) {
	source := stockRecord(10)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	for _, qty := range []int{0, -3} {
		_, err := svc.Split(context.Background(), "maria", source.ID, qty, model.StatusReserve, "Bob")
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestSplitExactQuantityEmptiesSource(t *testing.T) {
	source := stockRecord(5)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	resp, err := svc.Split(context.Background(), "maria", source.ID, 5, model.StatusMaintenance, "")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.SourceQuantity)

	// The source survives at quantity zero; it is not auto-deleted.
	rec, err := store.FindByID(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Quantity)
	assert.Equal(t, 5, store.totalQuantity())
}

func TestSplitUnknownSource(t *testing.T) {
	store := newMemStore()
	svc := newTestLedger(store, &memActivityLog{})

	_, err := svc.Split(context.Background(), "maria", uuid.New(), 1, model.StatusReserve, "Bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturnMergesBackAndDeletesDerived(t *testing.T) {
	source := stockRecord(15)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	resp, err := svc.Split(context.Background(), "maria", source.ID, 5, model.StatusIssued, "Alice")
	require.NoError(t, err)
	derivedID := uuid.MustParse(resp.NewRecordID)

	ret, err := svc.Return(context.Background(), "maria", derivedID)
	require.NoError(t, err)
	assert.Equal(t, source.ID.String(), ret.SourceID)
	assert.Equal(t, 15, ret.SourceQuantity)

	_, err = store.FindByID(context.Background(), derivedID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	rec, err := store.FindByID(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, rec.Quantity)
	// split entry + return entry
	require.Len(t, rec.AuditTrail, 2)
	assert.Equal(t, "return", rec.AuditTrail[1].Action)
	assert.Contains(t, rec.AuditTrail[1].Description, "Alice")

	assert.Equal(t, 15, store.totalQuantity())
}

func TestReturnOnCanonicalRecordFails(t *testing.T) {
	source := stockRecord(10)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	_, err := svc.Return(context.Background(), "maria", source.ID)
	assert.ErrorIs(t, err, ErrNotDerived)
}

func TestReturnWithMissingSourceKeepsDerived(t *testing.T) {
	missing := uuid.New()
	derived := stockRecord(5)
	derived.LineageID = &missing
	derived.Status = model.StatusIssued
	store := newMemStore(derived)
	svc := newTestLedger(store, &memActivityLog{})

	_, err := svc.Return(context.Background(), "maria", derived.ID)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	// The derived record must survive, or its quantity would vanish.
	rec, err := store.FindByID(context.Background(), derived.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Quantity)
}

func TestIssueReservedFlipsStatusOnce(t *testing.T) {
	source := stockRecord(15)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	resp, err := svc.Split(context.Background(), "maria", source.ID, 3, model.StatusReserve, "Bob")
	require.NoError(t, err)
	derivedID := uuid.MustParse(resp.NewRecordID)

	issued, err := svc.IssueReserved(context.Background(), "maria", derivedID)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusIssued), issued.Status)
	assert.Equal(t, 3, issued.Quantity)

	// The flip is not idempotent: a second call must fail.
	_, err = svc.IssueReserved(context.Background(), "maria", derivedID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	rec, err := store.FindByID(context.Background(), derivedID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusIssued, rec.Status)
	require.Len(t, rec.AuditTrail, 2)
	assert.Equal(t, "issue", rec.AuditTrail[1].Action)
}

func TestIssueOnStockRecordFails(t *testing.T) {
	source := stockRecord(10)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	_, err := svc.IssueReserved(context.Background(), "maria", source.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdjustDecrementsQuantity(t *testing.T) {
	source := stockRecord(10)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	resp, err := svc.AdjustOrDelete(context.Background(), "maria", source.ID, 4)
	require.NoError(t, err)
	assert.False(t, resp.Removed)
	assert.Equal(t, 6, resp.Quantity)

	rec, err := store.FindByID(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, rec.Quantity)
	require.Len(t, rec.AuditTrail, 1)
	assert.Equal(t, "adjust", rec.AuditTrail[0].Action)
}

func TestAdjustAtOrAboveQuantityDeletes(t *testing.T) {
	for _, amount := range []int{10, 25} {
		source := stockRecord(10)
		store := newMemStore(source)
		activity := &memActivityLog{}
		svc := newTestLedger(store, activity)

		resp, err := svc.AdjustOrDelete(context.Background(), "maria", source.ID, amount)
		require.NoError(t, err)
		assert.True(t, resp.Removed)
		assert.Equal(t, 0, resp.Quantity)

		_, err = store.FindByID(context.Background(), source.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		// Full deletion writes its entry to the side log in the same tx.
		events, _, err := activity.List(context.Background(), dto.ActivityFilter{})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "delete", events[0].Action)
		require.NotNil(t, events[0].TargetID)
		assert.Equal(t, source.ID, *events[0].TargetID)

		// A second delete on the removed record reports not found.
		_, err = svc.AdjustOrDelete(context.Background(), "maria", source.ID, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestAdjustRejectsNonPositiveAmount(t *testing.T) {
	source := stockRecord(10)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	for _, amount := range []int{0, -1} {
		_, err := svc.AdjustOrDelete(context.Background(), "maria", source.ID, amount)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestContentionWhenRecordLocked(t *testing.T) {
	source := stockRecord(10)
	store := newMemStore(source)
	locks := lock.NewMemoryLocker()
	svc := NewLedgerService(store, &memActivityLog{}, locks, nil, 50*time.Millisecond)

	// Hold the record lock from outside the service.
	release, err := locks.Acquire(context.Background(), source.ID)
	require.NoError(t, err)
	defer release()

	_, err = svc.Split(context.Background(), "maria", source.ID, 1, model.StatusReserve, "Bob")
	assert.ErrorIs(t, err, ErrContention)

	// No partial writes happened.
	rec, err := store.FindByID(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)
	assert.Empty(t, rec.AuditTrail)
}

func TestConcurrentSplitsConserveQuantity(t *testing.T) {
	source := stockRecord(100)
	store := newMemStore(source)
	svc := newTestLedger(store, &memActivityLog{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Split(context.Background(), "maria", source.ID, 3, model.StatusReserve, "Bob")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := store.FindByID(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, rec.Quantity)
	assert.Len(t, rec.AuditTrail, 20)
	assert.Equal(t, 100, store.totalQuantity())
}
