package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"assettrack/internal/dto"
	"assettrack/internal/lock"
	"assettrack/internal/metrics"
	"assettrack/internal/model"
	"assettrack/internal/repository"
	"assettrack/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LedgerService owns every quantity and status mutation of accessory
// records. Invariants:
//
//   - quantity never goes negative on any record;
//   - Split and Return conserve total quantity across source and derived
//     records;
//   - every mutated record gets exactly one audit entry per operation;
//   - mutations and their audit entries commit in one transaction.
//
// Concurrent operations against the same record are serialized through the
// injected Locker, held for the whole read-modify-write.
type LedgerService interface {
	Split(ctx context.Context, actor string, sourceID uuid.UUID, quantity int, target model.Status, borrower string) (*dto.SplitResponse, error)
	Return(ctx context.Context, actor string, derivedID uuid.UUID) (*dto.ReturnResponse, error)
	IssueReserved(ctx context.Context, actor string, recordID uuid.UUID) (*dto.AccessoryResponse, error)
	AdjustOrDelete(ctx context.Context, actor string, recordID uuid.UUID, amount int) (*dto.AdjustResponse, error)
}

type ledgerService struct {
	repo        repository.AccessoryRepository
	activity    repository.ActivityRepository
	locks       lock.Locker
	dispatcher  *worker.Dispatcher // nil in unit tests, telemetry is best-effort
	lockTimeout time.Duration
}

func NewLedgerService(
	repo repository.AccessoryRepository,
	activity repository.ActivityRepository,
	locks lock.Locker,
	dispatcher *worker.Dispatcher,
	lockTimeout time.Duration,
) LedgerService {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &ledgerService{
		repo:        repo,
		activity:    activity,
		locks:       locks,
		dispatcher:  dispatcher,
		lockTimeout: lockTimeout,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// acquire takes per-record locks with the configured timeout.
func (s *ledgerService) acquire(ctx context.Context, ids ...uuid.UUID) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	release, err := s.locks.Acquire(lockCtx, ids...)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrContention
		}
		return nil, err
	}
	return release, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrContention):
		return metrics.OutcomeContention
	default:
		return metrics.OutcomeError
	}
}

// ── Split ─────────────────────────────────────────────────────────────────────
// Moves quantity units out of the source record into a new derived record
// with the target status. An on_stock target is legal and produces a second
// stock record with a lineage reference instead of merging back into the
// source, keeping the provenance trail intact.

func (s *ledgerService) Split(ctx context.Context, actor string, sourceID uuid.UUID, quantity int, target model.Status, borrower string) (resp *dto.SplitResponse, err error) {
	defer func() { metrics.LedgerOperations.WithLabelValues("split", outcomeOf(err)).Inc() }()

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	release, err := s.acquire(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	defer release()

	var derived *model.AccessoryRecord
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		source, err := s.repo.FindByIDTx(tx, sourceID)
		if err != nil {
			return mapNotFound(err)
		}
		if quantity > source.Quantity {
			return ErrInsufficientQuantity
		}

		var borrowerPtr *string
		if target == model.StatusReserve || target == model.StatusIssued {
			if borrower != "" {
				borrowerPtr = &borrower
			}
		}

		derived = &model.AccessoryRecord{
			ID:           uuid.New(),
			LineageID:    &source.ID,
			AssetType:    source.AssetType,
			Brand:        source.Brand,
			Model:        source.Model,
			SerialNumber: source.SerialNumber,
			Barcode:      DerivedBarcode(source.Barcode, target),
			Location:     source.Location,
			PurchaseCost: source.PurchaseCost,
			Quantity:     quantity,
			Status:       target,
			Borrower:     borrowerPtr,
		}
		created := fmt.Sprintf("created: %s - %d unit(s)", target, quantity)
		if borrowerPtr != nil {
			created += ", for " + *borrowerPtr
		}
		derived.AppendAudit(actor, "created", created)

		before := source.Quantity
		source.Quantity -= quantity
		source.AppendAudit(actor, "split", fmt.Sprintf(
			"moved %d unit(s) to %s record %s (quantity %d -> %d)",
			quantity, target, derived.ID, before, source.Quantity))

		if err := s.repo.SaveTx(tx, source); err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, derived); err != nil {
			return err
		}
		resp = &dto.SplitResponse{
			NewRecordID:    derived.ID.String(),
			SourceQuantity: source.Quantity,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitActivity(ctx, actor, "split", derived.ID, fmt.Sprintf(
		"%d unit(s) of %s split from %s as %s", quantity, derived.AssetType, sourceID, target))
	s.notifyBorrower(ctx, actor, derived)
	return resp, nil
}

// ── Return ────────────────────────────────────────────────────────────────────
// Merges a derived record back into its source: the source regains the
// derived quantity and the derived record is deleted. If the source is
// gone the operation aborts without touching the derived record: deleting
// it anyway would destroy its quantity with no surviving account of it.

func (s *ledgerService) Return(ctx context.Context, actor string, derivedID uuid.UUID) (resp *dto.ReturnResponse, err error) {
	defer func() { metrics.LedgerOperations.WithLabelValues("return", outcomeOf(err)).Inc() }()

	// Unlocked pre-read to learn the lineage, so both locks can be taken
	// before any mutation. The state is re-validated under the locks.
	peek, err := s.repo.FindByID(ctx, derivedID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if peek.LineageID == nil {
		return nil, ErrNotDerived
	}
	sourceID := *peek.LineageID

	release, err := s.acquire(ctx, derivedID, sourceID)
	if err != nil {
		return nil, err
	}
	defer release()

	var detail string
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		derived, err := s.repo.FindByIDTx(tx, derivedID)
		if err != nil {
			return mapNotFound(err)
		}
		if derived.LineageID == nil {
			return ErrNotDerived
		}
		source, err := s.repo.FindByIDTx(tx, *derived.LineageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSourceNotFound
			}
			return err
		}

		before := source.Quantity
		source.Quantity += derived.Quantity
		source.AppendAudit(actor, "return", fmt.Sprintf(
			"returned %d unit(s) from %s (quantity %d -> %d)",
			derived.Quantity, derived.BorrowerOrNA(), before, source.Quantity))

		if err := s.repo.SaveTx(tx, source); err != nil {
			return err
		}
		if err := s.repo.DeleteTx(tx, derived.ID); err != nil {
			return err
		}
		detail = fmt.Sprintf("%d unit(s) of %s returned to %s", derived.Quantity, derived.AssetType, source.ID)
		resp = &dto.ReturnResponse{
			SourceID:       source.ID.String(),
			SourceQuantity: source.Quantity,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitActivity(ctx, actor, "return", sourceID, detail)
	return resp, nil
}

// ── IssueReserved ─────────────────────────────────────────────────────────────
// In-place status flip Reserve -> Issued. Quantity untouched, no other
// record involved. A second call on the same record fails; the flip is not
// idempotent, double-issues must surface instead of passing silently.

func (s *ledgerService) IssueReserved(ctx context.Context, actor string, recordID uuid.UUID) (resp *dto.AccessoryResponse, err error) {
	defer func() { metrics.LedgerOperations.WithLabelValues("issue", outcomeOf(err)).Inc() }()

	release, err := s.acquire(ctx, recordID)
	if err != nil {
		return nil, err
	}
	defer release()

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rec, err := s.repo.FindByIDTx(tx, recordID)
		if err != nil {
			return mapNotFound(err)
		}
		if rec.Status != model.StatusReserve {
			return ErrInvalidTransition
		}
		rec.Status = model.StatusIssued
		rec.AppendAudit(actor, "issue", "status changed reserve -> issued")
		if err := s.repo.SaveTx(tx, rec); err != nil {
			return err
		}
		r := toAccessoryResponse(rec)
		resp = &r
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitActivity(ctx, actor, "issue", recordID, "reserved units issued")
	return resp, nil
}

// ── AdjustOrDelete ────────────────────────────────────────────────────────────
// Consumes amount units from a record. An amount at or above the current
// quantity deletes the record entirely; over-asking is not an error, it
// clamps to full deletion. Because a deleted record can no
// longer carry an audit entry, the full-deletion entry goes to the
// activity_events side log inside the same transaction.

func (s *ledgerService) AdjustOrDelete(ctx context.Context, actor string, recordID uuid.UUID, amount int) (resp *dto.AdjustResponse, err error) {
	defer func() { metrics.LedgerOperations.WithLabelValues("adjust", outcomeOf(err)).Inc() }()

	if amount <= 0 {
		return nil, ErrInvalidQuantity
	}

	release, err := s.acquire(ctx, recordID)
	if err != nil {
		return nil, err
	}
	defer release()

	var detail string
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rec, err := s.repo.FindByIDTx(tx, recordID)
		if err != nil {
			return mapNotFound(err)
		}

		if amount >= rec.Quantity {
			if err := s.repo.DeleteTx(tx, rec.ID); err != nil {
				return err
			}
			id := rec.ID
			ev := &model.ActivityEvent{
				Actor:    actor,
				Action:   "delete",
				TargetID: &id,
				Detail: fmt.Sprintf("deleted %d unit(s) of %s (%s) - record removed",
					rec.Quantity, rec.AssetType, rec.Barcode),
			}
			if err := s.activity.CreateTx(tx, ev); err != nil {
				return err
			}
			detail = ev.Detail
			resp = &dto.AdjustResponse{Removed: true, Quantity: 0}
			return nil
		}

		before := rec.Quantity
		rec.Quantity -= amount
		rec.AppendAudit(actor, "adjust", fmt.Sprintf(
			"deleted %d unit(s) (quantity %d -> %d)", amount, before, rec.Quantity))
		if err := s.repo.SaveTx(tx, rec); err != nil {
			return err
		}
		detail = fmt.Sprintf("%d unit(s) of %s deleted", amount, rec.AssetType)
		resp = &dto.AdjustResponse{Removed: false, Quantity: rec.Quantity}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitActivity(ctx, actor, "adjust", recordID, detail)
	return resp, nil
}

// ── Best-effort side effects ──────────────────────────────────────────────────

// emitActivity queues a telemetry event. Failures are logged and swallowed;
// the ledger operation has already committed.
func (s *ledgerService) emitActivity(ctx context.Context, actor, action string, targetID uuid.UUID, detail string) {
	if s.dispatcher == nil {
		return
	}
	target := targetID.String()
	err := s.dispatcher.EnqueueActivity(ctx, worker.ActivityPayload{
		Actor:    actor,
		Action:   action,
		TargetID: &target,
		Detail:   detail,
	})
	if err != nil {
		metrics.ActivityQueueFailures.Inc()
		log.Warn().Err(err).Str("action", action).Msg("activity event dropped")
	}
}

// notifyBorrower emails the borrower of a freshly reserved/issued record
// when the borrower field looks like an address.
func (s *ledgerService) notifyBorrower(ctx context.Context, actor string, rec *model.AccessoryRecord) {
	if s.dispatcher == nil || rec == nil || rec.Borrower == nil {
		return
	}
	to := *rec.Borrower
	if !strings.Contains(to, "@") {
		return
	}
	verb := "reserved for"
	if rec.Status == model.StatusIssued {
		verb = "issued to"
	}
	err := s.dispatcher.EnqueueEmail(ctx, worker.EmailPayload{
		To:      to,
		Subject: fmt.Sprintf("%d x %s %s you", rec.Quantity, rec.AssetType, verb),
		Body: fmt.Sprintf("%d unit(s) of %s %s (barcode %s) were %s you by %s.",
			rec.Quantity, rec.Brand, rec.Model, rec.Barcode, verb, actor),
	})
	if err != nil {
		log.Warn().Err(err).Str("to", to).Msg("borrower notification dropped")
	}
}
