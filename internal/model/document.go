package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction indicates which side of the document the tenant is on.
type Direction string

const (
	DirectionPurchase Direction = "purchase"
	DirectionSales    Direction = "sales"
)

// Status is the processing status of an imported document.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusImported Status = "imported"
)

// CanTransition reports whether a status change is allowed. Batch imports
// enter directly as imported; the manual review flow enters as pending.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusImported
	case StatusRejected:
		return to == StatusPending
	default:
		return false
	}
}

// ImportedDocument is the canonical stored record produced by either
// ingestion path. Financial fields are written once at ingestion and never
// mutated; only Status, RejectionReason and InvoiceID change afterwards.
type ImportedDocument struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`

	// SourceID is the source-system document id, unique per tenant.
	// Re-ingestion of the same id is a no-op.
	SourceID  string    `json:"source_id"`
	Direction Direction `json:"direction"`

	Number    string    `json:"number"`
	IssueDate time.Time `json:"issue_date"`
	DueDate   time.Time `json:"due_date"`

	CounterpartyName  string `json:"counterparty_name"`
	CounterpartyTaxID string `json:"counterparty_tax_id"`

	Subtotal    decimal.Decimal `json:"subtotal"`
	TotalVat    decimal.Decimal `json:"total_vat"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`

	// RawPayload is the original XML/CSV text, retained for audit and
	// re-parse.
	RawPayload string `json:"-"`

	Status          Status `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`

	// InvoiceID links to the locally created invoice/bill once reconciled.
	InvoiceID *uuid.UUID `json:"invoice_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDocument converts a parsed invoice into the canonical stored record.
// The counterparty is the supplier for purchase documents and the customer
// for sales documents.
func (inv *ParsedInvoice) ToDocument(tenantID uuid.UUID, direction Direction) *ImportedDocument {
	counterparty := inv.Supplier
	if direction == DirectionSales {
		counterparty = inv.Customer
	}

	sourceID := inv.ExchangeID
	if sourceID == "" {
		sourceID = inv.Number
	}

	return &ImportedDocument{
		ID:                uuid.New(),
		TenantID:          tenantID,
		SourceID:          sourceID,
		Direction:         direction,
		Number:            inv.Number,
		IssueDate:         inv.IssueDate,
		DueDate:           inv.DueDate,
		CounterpartyName:  counterparty.Name,
		CounterpartyTaxID: counterparty.TaxID,
		Subtotal:          inv.Subtotal,
		TotalVat:          inv.TotalVat,
		TotalAmount:       inv.TotalAmount,
		Currency:          inv.Currency,
		RawPayload:        string(inv.RawXML),
		Status:            StatusImported,
	}
}
