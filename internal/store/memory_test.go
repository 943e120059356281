package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/efaktura-ingest/internal/model"
	"github.com/rezonia/efaktura-ingest/internal/store"
)

var testTenant = uuid.MustParse("5f8d7a3e-1b2c-4d5e-8f9a-0b1c2d3e4f5a")

func newDoc(sourceID string) *model.ImportedDocument {
	return &model.ImportedDocument{
		ID:          uuid.New(),
		TenantID:    testTenant,
		SourceID:    sourceID,
		Direction:   model.DirectionPurchase,
		Number:      "IF-" + sourceID,
		TotalAmount: decimal.NewFromInt(100),
		Currency:    "RSD",
		Status:      model.StatusImported,
	}
}

func TestMemoryDocumentStore_InsertAndFind(t *testing.T) {
	s := store.NewMemoryDocumentStore()
	ctx := context.Background()

	doc := newDoc("src-1")
	require.NoError(t, s.Insert(ctx, doc))
	assert.False(t, doc.CreatedAt.IsZero())

	byID, err := s.FindByID(ctx, testTenant, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "src-1", byID.SourceID)

	bySource, err := s.FindBySourceID(ctx, testTenant, "src-1")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, bySource.ID)
}

func TestMemoryDocumentStore_InsertDuplicate(t *testing.T) {
	s := store.NewMemoryDocumentStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, newDoc("src-1")))

	err := s.Insert(ctx, newDoc("src-1"))
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestMemoryDocumentStore_NotFound(t *testing.T) {
	s := store.NewMemoryDocumentStore()
	ctx := context.Background()

	_, err := s.FindByID(ctx, testTenant, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.FindBySourceID(ctx, testTenant, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.UpdateStatus(ctx, testTenant, uuid.New(), model.StatusApproved, ""), store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, testTenant, uuid.New()), store.ErrNotFound)
}

func TestMemoryDocumentStore_TenantIsolation(t *testing.T) {
	s := store.NewMemoryDocumentStore()
	ctx := context.Background()
	otherTenant := uuid.New()

	doc := newDoc("src-1")
	require.NoError(t, s.Insert(ctx, doc))

	// Another tenant cannot see, change, or delete the record
	_, err := s.FindByID(ctx, otherTenant, doc.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateStatus(ctx, otherTenant, doc.ID, model.StatusApproved, ""), store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, otherTenant, doc.ID), store.ErrNotFound)

	// Same source id under another tenant inserts cleanly
	other := newDoc("src-1")
	other.ID = uuid.New()
	other.TenantID = otherTenant
	assert.NoError(t, s.Insert(ctx, other))
}

func TestMemoryDocumentStore_ListForTenant(t *testing.T) {
	s := store.NewMemoryDocumentStore()
	ctx := context.Background()

	pending := newDoc("src-1")
	pending.Status = model.StatusPending

	sales := newDoc("src-2")
	sales.Direction = model.DirectionSales

	require.NoError(t, s.Insert(ctx, pending))
	require.NoError(t, s.Insert(ctx, sales))
	require.NoError(t, s.Insert(ctx, newDoc("src-3")))

	all, err := s.ListForTenant(ctx, testTenant, store.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyPending, err := s.ListForTenant(ctx, testTenant, store.Filter{Status: model.StatusPending})
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, "src-1", onlyPending[0].SourceID)

	onlySales, err := s.ListForTenant(ctx, testTenant, store.Filter{Direction: model.DirectionSales})
	require.NoError(t, err)
	require.Len(t, onlySales, 1)
	assert.Equal(t, "src-2", onlySales[0].SourceID)

	empty, err := s.ListForTenant(ctx, uuid.New(), store.Filter{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryDocumentStore_UpdateStatus(t *testing.T) {
	s := store.NewMemoryDocumentStore()
	ctx := context.Background()

	doc := newDoc("src-1")
	require.NoError(t, s.Insert(ctx, doc))

	require.NoError(t, s.UpdateStatus(ctx, testTenant, doc.ID, model.StatusRejected, "wrong supplier"))

	updated, err := s.FindByID(ctx, testTenant, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, updated.Status)
	assert.Equal(t, "wrong supplier", updated.RejectionReason)
}

func TestMemoryDocumentStore_LinkInvoice(t *testing.T) {
	s := store.NewMemoryDocumentStore()
	ctx := context.Background()

	doc := newDoc("src-1")
	doc.Status = model.StatusApproved
	require.NoError(t, s.Insert(ctx, doc))

	invoiceID := uuid.New()
	require.NoError(t, s.LinkInvoice(ctx, testTenant, doc.ID, invoiceID))

	linked, err := s.FindByID(ctx, testTenant, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.InvoiceID)
	assert.Equal(t, invoiceID, *linked.InvoiceID)
	assert.Equal(t, model.StatusImported, linked.Status)
}

func TestMemoryDocumentStore_Delete(t *testing.T) {
	s := store.NewMemoryDocumentStore()
	ctx := context.Background()

	doc := newDoc("src-1")
	require.NoError(t, s.Insert(ctx, doc))
	require.NoError(t, s.Delete(ctx, testTenant, doc.ID))

	_, err := s.FindByID(ctx, testTenant, doc.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryDocumentStore_ReadsReturnCopies(t *testing.T) {
	s := store.NewMemoryDocumentStore()
	ctx := context.Background()

	doc := newDoc("src-1")
	require.NoError(t, s.Insert(ctx, doc))

	found, err := s.FindByID(ctx, testTenant, doc.ID)
	require.NoError(t, err)
	found.Number = "tampered"

	again, err := s.FindByID(ctx, testTenant, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "IF-src-1", again.Number)
}
