package ubl

import (
	"github.com/beevik/etree"

	"github.com/rezonia/efaktura-ingest/internal/model"
)

// DefaultCurrency is used when a document carries no DocumentCurrencyCode.
const DefaultCurrency = "RSD"

// Parser converts raw UBL Invoice or CreditNote XML into a ParsedInvoice.
// Parsing is pure and best-effort: the only hard failure is XML that does
// not parse at all, every missing optional element defaults silently.
type Parser struct {
	defaultCurrency string
}

// Option configures the parser
type Option func(*Parser)

// WithDefaultCurrency overrides the currency used when the document has
// no DocumentCurrencyCode
func WithDefaultCurrency(code string) Option {
	return func(p *Parser) {
		p.defaultCurrency = code
	}
}

// NewParser creates a UBL parser
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		defaultCurrency: DefaultCurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses raw XML into a ParsedInvoice. It returns nil if and only
// if the XML is malformed; everything downstream is best-effort. The
// input is never mutated and no I/O is performed.
func (p *Parser) Parse(raw []byte) *model.ParsedInvoice {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}

	inv := &model.ParsedInvoice{
		RawXML: raw,
	}

	inv.Number = childText(root, "ID")
	inv.ExchangeID = childText(root, "UUID")
	if inv.ExchangeID == "" {
		inv.ExchangeID = attr(root, "UUID")
	}

	inv.IssueDate = childDate(root, "IssueDate")
	inv.DueDate = childDate(root, "DueDate")
	if delivery := find(root, "Delivery"); delivery != nil {
		inv.ServiceDate = childDate(delivery, "ActualDeliveryDate")
	}
	if inv.ServiceDate.IsZero() {
		if period := find(root, "InvoicePeriod"); period != nil {
			inv.ServiceDate = childDate(period, "StartDate")
		}
	}

	inv.Currency = childText(root, "DocumentCurrencyCode")
	if inv.Currency == "" {
		inv.Currency = p.defaultCurrency
	}

	inv.Note = childText(root, "Note")
	if means := find(root, "PaymentMeans"); means != nil {
		inv.PaymentReference = childText(means, "PaymentID")
		if account := find(means, "PayeeFinancialAccount"); account != nil {
			inv.BankAccount = childText(account, "ID")
		}
	}

	if supplier := find(root, "AccountingSupplierParty"); supplier != nil {
		inv.Supplier = extractParty(find(supplier, "Party"))
	}
	if customer := find(root, "AccountingCustomerParty"); customer != nil {
		inv.Customer = extractParty(find(customer, "Party"))
	}

	inv.Items = extractLineItems(root)
	inv.VatBreakdown = extractVatBreakdown(root)
	resolveTotals(root, inv)

	return inv
}
