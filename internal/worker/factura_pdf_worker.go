package worker

// factura_pdf_worker.go
// Processes invoice PDF jobs from QueueFacturaPDF: renders the PDF, stores
// its path on the factura, and optionally enqueues an email job with the
// attachment. Retries with exponential backoff; exhausted jobs go to the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ferrepos/internal/infra"
	"ferrepos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pdfMaxAttempts = 3

// FacturaPDFJobPayload is the job envelope sent to QueueFacturaPDF.
type FacturaPDFJobPayload struct {
	FacturaID    string  `json:"factura_id"`
	ClienteEmail *string `json:"cliente_email,omitempty"`
}

type FacturaPDFWorker struct {
	facturaRepo    repository.FacturaRepository
	dispatcher     *Dispatcher
	rdb            *redis.Client
	pdfStoragePath string
}

func NewFacturaPDFWorker(
	facturaRepo repository.FacturaRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	pdfStoragePath string,
) *FacturaPDFWorker {
	return &FacturaPDFWorker{
		facturaRepo:    facturaRepo,
		dispatcher:     dispatcher,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single PDF job:
//  1. Parse FacturaPDFJobPayload from the job envelope
//  2. Fetch the Factura (with detalles) from DB
//  3. Render the PDF with exponential backoff (max 3 attempts)
//  4. Store the PDF path on the factura
//  5. Optionally enqueue an email job with the attachment
func (w *FacturaPDFWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload FacturaPDFJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("factura_pdf_worker: invalid payload")
		return
	}

	facturaID, err := uuid.Parse(payload.FacturaID)
	if err != nil {
		log.Error().Str("factura_id", payload.FacturaID).Msg("factura_pdf_worker: invalid factura_id")
		return
	}

	factura, err := w.facturaRepo.FindByID(ctx, facturaID)
	if err != nil {
		log.Error().Err(err).Str("factura_id", payload.FacturaID).Msg("factura_pdf_worker: factura not found")
		return
	}

	var pdfPath string
	genErr := withRetry(ctx, pdfMaxAttempts, func(attempt int) error {
		path, err := infra.GenerateFacturaPDF(factura, w.pdfStoragePath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("factura", factura.Numero).
				Msg("factura_pdf_worker: PDF attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})
	if genErr != nil {
		log.Error().Err(genErr).Str("factura", factura.Numero).Msg("factura_pdf_worker: PDF failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueFacturaPDF, "factura_pdf", raw, genErr.Error(), pdfMaxAttempts)
		return
	}

	if err := w.facturaRepo.UpdatePDFPath(ctx, facturaID, pdfPath); err != nil {
		log.Warn().Err(err).Str("factura", factura.Numero).Msg("factura_pdf_worker: failed to store pdf path")
	} else {
		log.Info().Str("pdf", pdfPath).Str("factura", factura.Numero).Msg("factura_pdf_worker: PDF generated")
	}

	if payload.ClienteEmail != nil && *payload.ClienteEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail: *payload.ClienteEmail,
			Subject: fmt.Sprintf("Factura %s — %s", factura.Numero, factura.EmpresaNombre),
			Body: fmt.Sprintf("Adjunto encontrará su factura %s.\nTotal: $%s",
				factura.Numero, factura.Total.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *payload.ClienteEmail).Msg("factura_pdf_worker: failed to enqueue email")
		}
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
