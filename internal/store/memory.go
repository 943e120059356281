package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rezonia/efaktura-ingest/internal/model"
)

// MemoryDocumentStore is an in-memory DocumentStore. It mirrors the GORM
// store's semantics and backs tests and the library default.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*model.ImportedDocument
}

// NewMemoryDocumentStore creates an empty in-memory store
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		docs: make(map[uuid.UUID]*model.ImportedDocument),
	}
}

// Insert persists a new document, detecting (tenant, source id) duplicates
func (s *MemoryDocumentStore) Insert(ctx context.Context, doc *model.ImportedDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.docs {
		if existing.TenantID == doc.TenantID && existing.SourceID == doc.SourceID {
			return ErrDuplicate
		}
	}

	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	stored := *doc
	s.docs[doc.ID] = &stored
	return nil
}

// FindBySourceID looks up a document by its source-system id
func (s *MemoryDocumentStore) FindBySourceID(ctx context.Context, tenantID uuid.UUID, sourceID string) (*model.ImportedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.docs {
		if doc.TenantID == tenantID && doc.SourceID == sourceID {
			found := *doc
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// FindByID looks up a document by its record id
func (s *MemoryDocumentStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.ImportedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok || doc.TenantID != tenantID {
		return nil, ErrNotFound
	}
	found := *doc
	return &found, nil
}

// ListForTenant returns the tenant's documents, newest first
func (s *MemoryDocumentStore) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]model.ImportedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []model.ImportedDocument
	for _, doc := range s.docs {
		if doc.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if filter.Direction != "" && doc.Direction != filter.Direction {
			continue
		}
		docs = append(docs, *doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// UpdateStatus sets the processing status and rejection reason
func (s *MemoryDocumentStore) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status model.Status, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok || doc.TenantID != tenantID {
		return ErrNotFound
	}
	doc.Status = status
	doc.RejectionReason = reason
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

// LinkInvoice attaches the local invoice id and flips status to imported
func (s *MemoryDocumentStore) LinkInvoice(ctx context.Context, tenantID, id, invoiceID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok || doc.TenantID != tenantID {
		return ErrNotFound
	}
	doc.InvoiceID = &invoiceID
	doc.Status = model.StatusImported
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes a document
func (s *MemoryDocumentStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok || doc.TenantID != tenantID {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}
