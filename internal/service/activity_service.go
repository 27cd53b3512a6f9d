package service

import (
	"context"
	"time"

	"assettrack/internal/dto"
	"assettrack/internal/repository"
)

// ActivityService is the read side of the telemetry log.
type ActivityService interface {
	List(ctx context.Context, filter dto.ActivityFilter) (*dto.ActivityListResponse, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) List(ctx context.Context, filter dto.ActivityFilter) (*dto.ActivityListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 50
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ActivityEventResponse, 0, len(events))
	for _, ev := range events {
		var target *string
		if ev.TargetID != nil {
			t := ev.TargetID.String()
			target = &t
		}
		items = append(items, dto.ActivityEventResponse{
			ID:        ev.ID.String(),
			Actor:     ev.Actor,
			Action:    ev.Action,
			TargetID:  target,
			Detail:    ev.Detail,
			CreatedAt: ev.CreatedAt.Format(time.RFC3339),
		})
	}
	return &dto.ActivityListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}
