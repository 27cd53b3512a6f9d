package repository

import (
	"context"

	"assettrack/internal/dto"
	"assettrack/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, ev *model.ActivityEvent) error
	// CreateTx writes an event inside an ongoing ledger transaction, used for
	// full-deletion entries that must commit atomically with the deletion.
	CreateTx(tx *gorm.DB, ev *model.ActivityEvent) error
	List(ctx context.Context, filter dto.ActivityFilter) ([]model.ActivityEvent, int64, error)
}

type activityRepo struct{ db *gorm.DB }

func NewActivityRepository(db *gorm.DB) ActivityRepository { return &activityRepo{db: db} }

func (r *activityRepo) Create(ctx context.Context, ev *model.ActivityEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *activityRepo) CreateTx(tx *gorm.DB, ev *model.ActivityEvent) error {
	return tx.Create(ev).Error
}

func (r *activityRepo) List(ctx context.Context, filter dto.ActivityFilter) ([]model.ActivityEvent, int64, error) {
	var events []model.ActivityEvent
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ActivityEvent{})
	if filter.Actor != "" {
		q = q.Where("actor = ?", filter.Actor)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.TargetID != "" {
		q = q.Where("target_id = ?", filter.TargetID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&events).Error
	return events, total, err
}
