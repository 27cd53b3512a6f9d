package service

import (
	"context"
	"testing"

	"assettrack/internal/dto"
	"assettrack/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccessoryService(store *memStore) AccessoryService {
	return NewAccessoryService(store, nil, "ACC")
}

func TestCreateGeneratesBarcode(t *testing.T) {
	store := newMemStore()
	svc := newTestAccessoryService(store)

	resp, err := svc.Create(context.Background(), "maria", dto.CreateAccessoryRequest{
		AssetType:    "mouse",
		Brand:        "Logitech",
		Model:        "MX Master 3",
		Quantity:     12,
		PurchaseCost: decimal.NewFromInt(99),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Barcode)
	assert.Equal(t, string(model.StatusOnStock), resp.Status)
	assert.Equal(t, 12, resp.Quantity)
	assert.Nil(t, resp.LineageID)

	rec, err := store.FindByBarcode(context.Background(), resp.Barcode)
	require.NoError(t, err)
	require.Len(t, rec.AuditTrail, 1)
	assert.Equal(t, "create", rec.AuditTrail[0].Action)
}

func TestCreateRejectsTakenBarcode(t *testing.T) {
	existing := stockRecord(5)
	store := newMemStore(existing)
	svc := newTestAccessoryService(store)

	_, err := svc.Create(context.Background(), "maria", dto.CreateAccessoryRequest{
		AssetType: "mouse",
		Barcode:   existing.Barcode,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, ErrBarcodeTaken)
}

func TestUpdateTouchesDescriptiveFieldsOnly(t *testing.T) {
	rec := stockRecord(10)
	store := newMemStore(rec)
	svc := newTestAccessoryService(store)

	location := "Shelf B1"
	comments := "cable frayed"
	resp, err := svc.Update(context.Background(), "maria", rec.ID, dto.UpdateAccessoryRequest{
		Location: &location,
		Comments: &comments,
	})
	require.NoError(t, err)
	assert.Equal(t, "Shelf B1", resp.Location)
	assert.Equal(t, "cable frayed", resp.Comments)
	// Quantity and status are off limits here
	assert.Equal(t, 10, resp.Quantity)
	assert.Equal(t, string(model.StatusOnStock), resp.Status)

	updated, err := store.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Len(t, updated.AuditTrail, 1)
	assert.Equal(t, "update", updated.AuditTrail[0].Action)
}

func TestUpdateUnknownRecord(t *testing.T) {
	store := newMemStore()
	svc := newTestAccessoryService(store)

	loc := "nowhere"
	_, err := svc.Update(context.Background(), "maria", stockRecord(1).ID, dto.UpdateAccessoryRequest{Location: &loc})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListClampsPagination(t *testing.T) {
	store := newMemStore(stockRecord(1))
	svc := newTestAccessoryService(store)

	resp, err := svc.List(context.Background(), dto.AccessoryFilter{Page: -2, Limit: 9999})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 50, resp.Limit)
	assert.Equal(t, int64(1), resp.Total)
}

func TestGetAuditReturnsOrderedEntries(t *testing.T) {
	rec := stockRecord(10)
	rec.AppendAudit("maria", "create", "created with 10 unit(s) on stock")
	rec.AppendAudit("maria", "adjust", "deleted 2 unit(s) (quantity 10 -> 8)")
	store := newMemStore(rec)
	svc := newTestAccessoryService(store)

	entries, err := svc.GetAudit(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "create", entries[0].Action)
	assert.Equal(t, "adjust", entries[1].Action)
}

func TestActionOrchestratorRejectsUnknownStatus(t *testing.T) {
	store := newMemStore(stockRecord(10))
	ledger := newTestLedger(store, &memActivityLog{})
	orchestrator := NewActionOrchestrator(ledger)

	_, err := orchestrator.Perform(context.Background(), "maria", stockRecord(1).ID, dto.ActionRequest{
		Amount:       1,
		TargetStatus: "lost",
	})
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestActionOrchestratorDelegatesToSplit(t *testing.T) {
	source := stockRecord(10)
	store := newMemStore(source)
	ledger := newTestLedger(store, &memActivityLog{})
	orchestrator := NewActionOrchestrator(ledger)

	resp, err := orchestrator.Perform(context.Background(), "maria", source.ID, dto.ActionRequest{
		Amount:       4,
		TargetStatus: "reserve",
		Borrower:     "Bob",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.SourceQuantity)
	assert.NotEmpty(t, resp.NewRecordID)
}
