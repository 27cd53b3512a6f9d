package worker

import (
	"context"

	"assettrack/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailWorker sends borrower notifications queued by the ledger
// (reserved / issued units) via SMTP.
type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, p EmailPayload) error {
	if p.To == "" {
		log.Warn().Msg("email worker: empty recipient, skipping")
		return nil
	}
	return w.mailer.Send(p.To, p.Subject, p.Body)
}
