package service

import (
	"context"
	"fmt"
	"time"

	"assettrack/internal/dto"
	"assettrack/internal/infra"
	"assettrack/internal/model"
	"assettrack/internal/repository"
	"assettrack/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AccessoryService covers the non-ledger surface of accessory records:
// creation of canonical stock records, descriptive updates, listing and
// audit trail reads. Quantity and status never change here.
type AccessoryService interface {
	Create(ctx context.Context, actor string, req dto.CreateAccessoryRequest) (*dto.AccessoryResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.AccessoryResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.AccessoryResponse, error)
	List(ctx context.Context, filter dto.AccessoryFilter) (*dto.AccessoryListResponse, error)
	Update(ctx context.Context, actor string, id uuid.UUID, req dto.UpdateAccessoryRequest) (*dto.AccessoryResponse, error)
	GetAudit(ctx context.Context, id uuid.UUID) ([]dto.AuditEntryResponse, error)
	AuditPDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type accessoryService struct {
	repo          repository.AccessoryRepository
	dispatcher    *worker.Dispatcher
	barcodePrefix string
}

func NewAccessoryService(repo repository.AccessoryRepository, dispatcher *worker.Dispatcher, barcodePrefix string) AccessoryService {
	return &accessoryService{repo: repo, dispatcher: dispatcher, barcodePrefix: barcodePrefix}
}

func (s *accessoryService) Create(ctx context.Context, actor string, req dto.CreateAccessoryRequest) (*dto.AccessoryResponse, error) {
	barcode := req.Barcode
	if barcode == "" {
		barcode = NewBarcode(s.barcodePrefix)
	} else if _, err := s.repo.FindByBarcode(ctx, barcode); err == nil {
		return nil, ErrBarcodeTaken
	}

	rec := &model.AccessoryRecord{
		ID:           uuid.New(),
		AssetType:    req.AssetType,
		Brand:        req.Brand,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Barcode:      barcode,
		Location:     req.Location,
		Comments:     req.Comments,
		Attachments:  req.Attachments,
		PurchaseCost: req.PurchaseCost,
		Quantity:     req.Quantity,
		Status:       model.StatusOnStock,
	}
	rec.AppendAudit(actor, "create", fmt.Sprintf("created with %d unit(s) on stock", req.Quantity))

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		id := rec.ID.String()
		err := s.dispatcher.EnqueueActivity(ctx, worker.ActivityPayload{
			Actor:    actor,
			Action:   "create",
			TargetID: &id,
			Detail:   fmt.Sprintf("%s %s %s added with %d unit(s)", rec.AssetType, rec.Brand, rec.Model, rec.Quantity),
		})
		if err != nil {
			log.Warn().Err(err).Msg("activity event dropped")
		}
	}

	resp := toAccessoryResponse(rec)
	return &resp, nil
}

func (s *accessoryService) Get(ctx context.Context, id uuid.UUID) (*dto.AccessoryResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	resp := toAccessoryResponse(rec)
	return &resp, nil
}

func (s *accessoryService) GetByBarcode(ctx context.Context, barcode string) (*dto.AccessoryResponse, error) {
	rec, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, mapNotFound(err)
	}
	resp := toAccessoryResponse(rec)
	return &resp, nil
}

func (s *accessoryService) List(ctx context.Context, filter dto.AccessoryFilter) (*dto.AccessoryListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 50
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AccessoryResponse, 0, len(records))
	for i := range records {
		items = append(items, toAccessoryResponse(&records[i]))
	}
	return &dto.AccessoryListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *accessoryService) Update(ctx context.Context, actor string, id uuid.UUID, req dto.UpdateAccessoryRequest) (*dto.AccessoryResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if req.AssetType != nil {
		rec.AssetType = *req.AssetType
	}
	if req.Brand != nil {
		rec.Brand = *req.Brand
	}
	if req.Model != nil {
		rec.Model = *req.Model
	}
	if req.SerialNumber != nil {
		rec.SerialNumber = *req.SerialNumber
	}
	if req.Location != nil {
		rec.Location = *req.Location
	}
	if req.Comments != nil {
		rec.Comments = *req.Comments
	}
	if req.Attachments != nil {
		rec.Attachments = req.Attachments
	}
	if req.PurchaseCost != nil {
		rec.PurchaseCost = *req.PurchaseCost
	}
	rec.AppendAudit(actor, "update", "descriptive fields updated")

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	resp := toAccessoryResponse(rec)
	return &resp, nil
}

func (s *accessoryService) GetAudit(ctx context.Context, id uuid.UUID) ([]dto.AuditEntryResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	entries := make([]dto.AuditEntryResponse, 0, len(rec.AuditTrail))
	for _, e := range rec.AuditTrail {
		entries = append(entries, dto.AuditEntryResponse{
			Timestamp:   e.Timestamp.Format(time.RFC3339),
			Actor:       e.Actor,
			Action:      e.Action,
			Description: e.Description,
		})
	}
	return entries, nil
}

// AuditPDF renders a printable audit sheet for the record.
func (s *accessoryService) AuditPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return infra.GenerateAuditPDF(rec)
}

func toAccessoryResponse(r *model.AccessoryRecord) dto.AccessoryResponse {
	var lineage *string
	if r.LineageID != nil {
		s := r.LineageID.String()
		lineage = &s
	}
	return dto.AccessoryResponse{
		ID:           r.ID.String(),
		LineageID:    lineage,
		AssetType:    r.AssetType,
		Brand:        r.Brand,
		Model:        r.Model,
		SerialNumber: r.SerialNumber,
		Barcode:      r.Barcode,
		Location:     r.Location,
		Comments:     r.Comments,
		Attachments:  r.Attachments,
		PurchaseCost: r.PurchaseCost,
		Quantity:     r.Quantity,
		Status:       string(r.Status),
		Borrower:     r.Borrower,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
}
