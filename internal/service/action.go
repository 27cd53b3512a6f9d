package service

import (
	"context"

	"assettrack/internal/dto"
	"assettrack/internal/model"

	"github.com/google/uuid"
)

// ActionOrchestrator resolves a user-initiated action intent into exactly
// one ledger call. It owns no state and performs no validation beyond
// translating the wire shape; the ledger enforces the invariants.
type ActionOrchestrator struct {
	ledger LedgerService
}

func NewActionOrchestrator(ledger LedgerService) *ActionOrchestrator {
	return &ActionOrchestrator{ledger: ledger}
}

// Perform executes a split intent: reserve, issue, send to maintenance,
// retire, or split back to stock.
func (o *ActionOrchestrator) Perform(ctx context.Context, actor string, recordID uuid.UUID, req dto.ActionRequest) (*dto.SplitResponse, error) {
	status, err := model.ParseStatus(req.TargetStatus)
	if err != nil {
		return nil, ErrUnknownStatus
	}
	return o.ledger.Split(ctx, actor, recordID, req.Amount, status, req.Borrower)
}
