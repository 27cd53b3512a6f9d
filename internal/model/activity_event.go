package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivityEvent is one row of the append-only side log. Most events arrive
// best-effort through the worker queue; full-deletion events are written
// synchronously inside the deleting transaction because the record itself
// no longer exists to carry an audit entry.
type ActivityEvent struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Actor    string     `gorm:"not null;index"`
	Action   string     `gorm:"not null"` // "split" | "return" | "issue" | "adjust" | "delete" | "create" | "import"
	TargetID *uuid.UUID `gorm:"type:uuid;index"`
	Detail   string
	CreatedAt time.Time
}

func (ActivityEvent) TableName() string { return "activity_events" }
