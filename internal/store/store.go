// Package store persists canonical imported documents keyed by
// (tenant, source document id). The parsing core does not depend on the
// storage engine; the ingest orchestrator talks to DocumentStore only.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rezonia/efaktura-ingest/internal/model"
)

var (
	// ErrNotFound is returned when no document matches the lookup
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate is returned when an insert collides with an existing
	// (tenant, source id) pair
	ErrDuplicate = errors.New("document already imported")
)

// Filter narrows ListForTenant results. Zero values match everything.
type Filter struct {
	Status    model.Status
	Direction model.Direction
}

// DocumentStore is the storage collaborator for canonical records.
// Implementations must expose detect-duplicate semantics on Insert and
// never mutate financial fields after the initial write.
type DocumentStore interface {
	// Insert persists a new document. Returns ErrDuplicate when the
	// (tenant, source id) pair already exists.
	Insert(ctx context.Context, doc *model.ImportedDocument) error

	// FindBySourceID looks up a document by its source-system id
	FindBySourceID(ctx context.Context, tenantID uuid.UUID, sourceID string) (*model.ImportedDocument, error)

	// FindByID looks up a document by its record id
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.ImportedDocument, error)

	// ListForTenant returns the tenant's documents, newest first
	ListForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]model.ImportedDocument, error)

	// UpdateStatus sets the processing status and, for rejections, the
	// rejection reason
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status model.Status, reason string) error

	// LinkInvoice attaches the locally created invoice and flips the
	// status to imported
	LinkInvoice(ctx context.Context, tenantID, id, invoiceID uuid.UUID) error

	// Delete removes a document. Explicit user action only.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
