package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueActivity = "jobs:activity"
	QueueEmail    = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ActivityPayload mirrors one activity_events row.
type ActivityPayload struct {
	Actor    string  `json:"actor"`
	Action   string  `json:"action"`
	TargetID *string `json:"target_id,omitempty"`
	Detail   string  `json:"detail"`
}

// EmailPayload is a rendered notification ready to send.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP. Enqueueing is best-effort from
// the caller's point of view: ledger operations never fail because a
// telemetry or notification job could not be queued.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueActivity pushes an activity event job.
func (d *Dispatcher) EnqueueActivity(ctx context.Context, payload ActivityPayload) error {
	return d.enqueue(ctx, QueueActivity, "activity", payload)
}

// EnqueueEmail pushes a notification email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers carries one worker per queue; wired at the composition root.
type Handlers struct {
	Activity *ActivityWorker
	Email    *EmailWorker
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueActivity, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	switch job.Type {
	case "activity":
		var p ActivityPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			log.Error().Err(err).Msg("bad activity payload")
			return
		}
		if err := handlers.Activity.Process(ctx, p); err != nil {
			log.Error().Err(err).Str("action", p.Action).Msg("activity event write failed")
		}
	case "email":
		var p EmailPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			log.Error().Err(err).Msg("bad email payload")
			return
		}
		if err := handlers.Email.Process(ctx, p); err != nil {
			log.Error().Err(err).Str("to", p.To).Msg("notification email failed")
		}
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type")
	}
}
