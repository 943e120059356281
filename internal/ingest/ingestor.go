// Package ingest drives batch import of canonical documents into the
// document store. The batch is best-effort and at-least-once: one bad
// record never aborts the rest, and duplicate source ids are skipped,
// not crashed on.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rezonia/efaktura-ingest/internal/model"
	"github.com/rezonia/efaktura-ingest/internal/store"
)

// BatchResult aggregates the outcome of one batch import. Errors is
// append-only; the batch as a whole never fails.
type BatchResult struct {
	ImportedCount int      `json:"imported_count"`
	SkippedCount  int      `json:"skipped_count"`
	Errors        []string `json:"errors,omitempty"`
}

// Ingestor persists batches of canonical documents
type Ingestor struct {
	store  store.DocumentStore
	logger zerolog.Logger
}

// Option configures the ingestor
type Option func(*Ingestor)

// WithLogger attaches a logger; the default discards everything
func WithLogger(logger zerolog.Logger) Option {
	return func(i *Ingestor) {
		i.logger = logger
	}
}

// NewIngestor creates an ingestor over the given store
func NewIngestor(s store.DocumentStore, opts ...Option) *Ingestor {
	ing := &Ingestor{
		store:  s,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// ImportBatch persists a batch of documents for one tenant. Documents
// whose (tenant, source id) already exists are counted as skipped.
// Per-record persistence failures are captured in Errors and the batch
// continues. The batch is not transactional: a failure on record k does
// not roll back records 1..k-1.
//
// Cancellation is checked between records only; a record already being
// persisted is never interrupted mid-write.
func (ing *Ingestor) ImportBatch(ctx context.Context, tenantID uuid.UUID, docs []*model.ImportedDocument) *BatchResult {
	result := &BatchResult{}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("batch cancelled: %v", err))
			break
		}

		doc.TenantID = tenantID
		if doc.ID == uuid.Nil {
			doc.ID = uuid.New()
		}

		_, err := ing.store.FindBySourceID(ctx, tenantID, doc.SourceID)
		if err == nil {
			result.SkippedCount++
			ing.logger.Debug().
				Str("source_id", doc.SourceID).
				Msg("document already imported, skipping")
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			result.Errors = append(result.Errors, model.NewImportError(doc.SourceID, "lookup failed", err).Error())
			continue
		}

		if err := ing.store.Insert(ctx, doc); err != nil {
			// A concurrent import may have won the race since the lookup
			if errors.Is(err, store.ErrDuplicate) {
				result.SkippedCount++
				continue
			}
			result.Errors = append(result.Errors, model.NewImportError(doc.SourceID, "persist failed", err).Error())
			continue
		}

		result.ImportedCount++
		ing.logger.Info().
			Str("source_id", doc.SourceID).
			Str("number", doc.Number).
			Msg("document imported")
	}

	return result
}
