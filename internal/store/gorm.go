package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rezonia/efaktura-ingest/internal/model"
)

// ImportedDocumentModel is the persistence model for ImportedDocument
type ImportedDocumentModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_document_tenant_source,priority:1"`
	SourceID          string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_document_tenant_source,priority:2"`
	Direction         string          `gorm:"type:varchar(10);not null"`
	Number            string          `gorm:"type:varchar(100);not null"`
	IssueDate         time.Time
	DueDate           time.Time
	CounterpartyName  string          `gorm:"type:varchar(255)"`
	CounterpartyTaxID string          `gorm:"type:varchar(20);index"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalVat          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency          string          `gorm:"type:varchar(3);not null"`
	RawPayload        string          `gorm:"type:text"`
	Status            string          `gorm:"type:varchar(20);not null;index"`
	RejectionReason   string          `gorm:"type:varchar(500)"`
	InvoiceID         *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ImportedDocumentModel) TableName() string {
	return "imported_documents"
}

// ToDomain converts the persistence model to the domain record
func (m *ImportedDocumentModel) ToDomain() *model.ImportedDocument {
	return &model.ImportedDocument{
		ID:                m.ID,
		TenantID:          m.TenantID,
		SourceID:          m.SourceID,
		Direction:         model.Direction(m.Direction),
		Number:            m.Number,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		CounterpartyName:  m.CounterpartyName,
		CounterpartyTaxID: m.CounterpartyTaxID,
		Subtotal:          m.Subtotal,
		TotalVat:          m.TotalVat,
		TotalAmount:       m.TotalAmount,
		Currency:          m.Currency,
		RawPayload:        m.RawPayload,
		Status:            model.Status(m.Status),
		RejectionReason:   m.RejectionReason,
		InvoiceID:         m.InvoiceID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from the domain record
func (m *ImportedDocumentModel) FromDomain(doc *model.ImportedDocument) {
	m.ID = doc.ID
	m.TenantID = doc.TenantID
	m.SourceID = doc.SourceID
	m.Direction = string(doc.Direction)
	m.Number = doc.Number
	m.IssueDate = doc.IssueDate
	m.DueDate = doc.DueDate
	m.CounterpartyName = doc.CounterpartyName
	m.CounterpartyTaxID = doc.CounterpartyTaxID
	m.Subtotal = doc.Subtotal
	m.TotalVat = doc.TotalVat
	m.TotalAmount = doc.TotalAmount
	m.Currency = doc.Currency
	m.RawPayload = doc.RawPayload
	m.Status = string(doc.Status)
	m.RejectionReason = doc.RejectionReason
	m.InvoiceID = doc.InvoiceID
	m.CreatedAt = doc.CreatedAt
	m.UpdatedAt = doc.UpdatedAt
}

// GormDocumentStore implements DocumentStore using GORM
type GormDocumentStore struct {
	db *gorm.DB
}

// NewGormDocumentStore creates a store over an existing gorm.DB and
// migrates the schema
func NewGormDocumentStore(db *gorm.DB) (*GormDocumentStore, error) {
	if err := db.AutoMigrate(&ImportedDocumentModel{}); err != nil {
		return nil, err
	}
	return &GormDocumentStore{db: db}, nil
}

// OpenSQLite opens a SQLite-backed store at the given path
// (":memory:" for an in-process database)
func OpenSQLite(path string) (*GormDocumentStore, error) {
	// TranslateError maps the driver's unique-index violation onto
	// gorm.ErrDuplicatedKey, which Insert relies on for race detection
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return NewGormDocumentStore(db)
}

// Insert persists a new document, detecting (tenant, source id) duplicates
func (s *GormDocumentStore) Insert(ctx context.Context, doc *model.ImportedDocument) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&ImportedDocumentModel{}).
		Where("tenant_id = ? AND source_id = ?", doc.TenantID, doc.SourceID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	var m ImportedDocumentModel
	m.FromDomain(doc)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindBySourceID looks up a document by its source-system id
func (s *GormDocumentStore) FindBySourceID(ctx context.Context, tenantID uuid.UUID, sourceID string) (*model.ImportedDocument, error) {
	var m ImportedDocumentModel
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND source_id = ?", tenantID, sourceID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByID looks up a document by its record id
func (s *GormDocumentStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.ImportedDocument, error) {
	var m ImportedDocumentModel
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// ListForTenant returns the tenant's documents, newest first
func (s *GormDocumentStore) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]model.ImportedDocument, error) {
	query := s.db.WithContext(ctx).Model(&ImportedDocumentModel{}).
		Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", string(filter.Direction))
	}

	var docModels []ImportedDocumentModel
	if err := query.Order("created_at DESC").Find(&docModels).Error; err != nil {
		return nil, err
	}

	docs := make([]model.ImportedDocument, len(docModels))
	for i, m := range docModels {
		docs[i] = *m.ToDomain()
	}
	return docs, nil
}

// UpdateStatus sets the processing status and rejection reason
func (s *GormDocumentStore) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status model.Status, reason string) error {
	result := s.db.WithContext(ctx).Model(&ImportedDocumentModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]interface{}{
			"status":           string(status),
			"rejection_reason": reason,
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkInvoice attaches the local invoice id and flips status to imported
func (s *GormDocumentStore) LinkInvoice(ctx context.Context, tenantID, id, invoiceID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&ImportedDocumentModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]interface{}{
			"invoice_id": invoiceID,
			"status":     string(model.StatusImported),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document
func (s *GormDocumentStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&ImportedDocumentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
