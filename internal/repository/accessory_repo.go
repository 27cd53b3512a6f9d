package repository

import (
	"context"

	"assettrack/internal/dto"
	"assettrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessoryRepository defines the data access contract for accessory records.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type AccessoryRepository interface {
	Create(ctx context.Context, r *model.AccessoryRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AccessoryRecord, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.AccessoryRecord, error)
	List(ctx context.Context, filter dto.AccessoryFilter) ([]model.AccessoryRecord, int64, error)
	ListAll(ctx context.Context) ([]model.AccessoryRecord, error)
	Update(ctx context.Context, r *model.AccessoryRecord) error

	// Used inside ledger transactions; callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.AccessoryRecord, error)
	CreateTx(tx *gorm.DB, r *model.AccessoryRecord) error
	SaveTx(tx *gorm.DB, r *model.AccessoryRecord) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type accessoryRepo struct{ db *gorm.DB }

func NewAccessoryRepository(db *gorm.DB) AccessoryRepository { return &accessoryRepo{db: db} }

func (r *accessoryRepo) Create(ctx context.Context, rec *model.AccessoryRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *accessoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.AccessoryRecord, error) {
	var rec model.AccessoryRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *accessoryRepo) FindByBarcode(ctx context.Context, barcode string) (*model.AccessoryRecord, error) {
	var rec model.AccessoryRecord
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

var sortableColumns = map[string]string{
	"asset_type": "asset_type",
	"brand":      "brand",
	"model":      "model",
	"barcode":    "barcode",
	"location":   "location",
	"quantity":   "quantity",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *accessoryRepo) List(ctx context.Context, filter dto.AccessoryFilter) ([]model.AccessoryRecord, int64, error) {
	var records []model.AccessoryRecord
	var total int64

	q := r.db.WithContext(ctx).Model(&model.AccessoryRecord{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AssetType != "" {
		q = q.Where("asset_type = ?", filter.AssetType)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("brand ILIKE ? OR model ILIKE ? OR serial_number ILIKE ? OR barcode ILIKE ?",
			like, like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sort only on whitelisted columns to keep user input out of the ORDER BY.
	order := "created_at DESC"
	if col, ok := sortableColumns[filter.SortBy]; ok {
		dir := "ASC"
		if filter.SortDir == "desc" {
			dir = "DESC"
		}
		order = col + " " + dir
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order(order).Limit(filter.Limit).Offset(offset).Find(&records).Error
	return records, total, err
}

func (r *accessoryRepo) ListAll(ctx context.Context) ([]model.AccessoryRecord, error) {
	var records []model.AccessoryRecord
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error
	return records, err
}

func (r *accessoryRepo) Update(ctx context.Context, rec *model.AccessoryRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *accessoryRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.AccessoryRecord, error) {
	var rec model.AccessoryRecord
	err := tx.First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *accessoryRepo) CreateTx(tx *gorm.DB, rec *model.AccessoryRecord) error {
	return tx.Create(rec).Error
}

func (r *accessoryRepo) SaveTx(tx *gorm.DB, rec *model.AccessoryRecord) error {
	return tx.Save(rec).Error
}

func (r *accessoryRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.AccessoryRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accessoryRepo) DB() *gorm.DB { return r.db }
