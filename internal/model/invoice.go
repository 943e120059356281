package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnitCode is the UN/ECE unit code used when an invoice line
// carries no unitCode attribute ("H87" = piece).
const DefaultUnitCode = "H87"

// ParsedInvoice is the normalized result of parsing one UBL e-invoice
// document. Missing optional elements default to the zero value of the
// field (empty string, decimal zero) rather than producing an error.
type ParsedInvoice struct {
	// Header
	Number      string    `json:"number"`       // Invoice number (cbc:ID)
	ExchangeID  string    `json:"exchange_id"`  // Exchange-assigned UUID
	IssueDate   time.Time `json:"issue_date"`
	DueDate     time.Time `json:"due_date"`
	ServiceDate time.Time `json:"service_date"` // Delivery/service period date
	Currency    string    `json:"currency"`

	// Parties
	Supplier Party `json:"supplier"`
	Customer Party `json:"customer"`

	// Lines and tax
	Items        []LineItem `json:"items"`
	VatBreakdown []VatBand  `json:"vat_breakdown"`

	// Totals, in the document currency
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalVat      decimal.Decimal `json:"total_vat"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PayableAmount decimal.Decimal `json:"payable_amount"`

	// Optional
	Note             string `json:"note,omitempty"`
	PaymentReference string `json:"payment_reference,omitempty"`
	BankAccount      string `json:"bank_account,omitempty"`

	// Metadata
	RawXML []byte `json:"-"` // Original document for audit
}

// Party represents the supplier or customer of an invoice. Both use the
// identical shape; only the source subtree differs.
type Party struct {
	Name               string `json:"name"`
	Address            string `json:"address"`
	City               string `json:"city"`
	PostalCode         string `json:"postal_code,omitempty"`
	TaxID              string `json:"tax_id"` // PIB
	RegistrationNumber string `json:"registration_number,omitempty"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Website            string `json:"website,omitempty"`
}

// LineItem represents one invoice line, in document order.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`  // Defaults to 1
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCode    string          `json:"unit_code"` // Defaults to DefaultUnitCode
	Discount    decimal.Decimal `json:"discount,omitempty"`
	Amount      decimal.Decimal `json:"amount"`   // Net line amount
	VatRate     decimal.Decimal `json:"vat_rate"` // Percent
}

// VatBand is one tax-rate bucket of the invoice's VAT breakdown.
type VatBand struct {
	Rate   decimal.Decimal `json:"rate"` // Percent
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

// IsZero reports whether rate, base and amount are all zero. All-zero
// bands are placeholder noise and are dropped from the breakdown.
func (b VatBand) IsZero() bool {
	return b.Rate.IsZero() && b.Base.IsZero() && b.Amount.IsZero()
}
