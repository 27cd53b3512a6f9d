package worker

import (
	"context"

	"assettrack/internal/model"
	"assettrack/internal/repository"

	"github.com/google/uuid"
)

// ActivityWorker persists queued activity events into the append-only
// activity_events table.
type ActivityWorker struct {
	repo repository.ActivityRepository
}

func NewActivityWorker(repo repository.ActivityRepository) *ActivityWorker {
	return &ActivityWorker{repo: repo}
}

func (w *ActivityWorker) Process(ctx context.Context, p ActivityPayload) error {
	ev := &model.ActivityEvent{
		Actor:  p.Actor,
		Action: p.Action,
		Detail: p.Detail,
	}
	if p.TargetID != nil {
		if id, err := uuid.Parse(*p.TargetID); err == nil {
			ev.TargetID = &id
		}
	}
	return w.repo.Create(ctx, ev)
}
