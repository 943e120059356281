// Package ingestlib provides the public API for ingesting external
// invoice documents from the national e-invoicing exchange.
//
// Two source formats produce the same canonical record: UBL-flavored
// XML e-invoices and semicolon-delimited CSV exports.
//
// Example usage:
//
//	imp := ingestlib.NewImporter(store)
//	result, err := imp.ImportFile(ctx, tenantID, ingestlib.DirectionPurchase, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.ImportedCount)
package ingestlib

import "github.com/rezonia/efaktura-ingest/internal/model"

// Re-export core types for public API
type (
	ParsedInvoice    = model.ParsedInvoice
	Party            = model.Party
	LineItem         = model.LineItem
	VatBand          = model.VatBand
	ImportedDocument = model.ImportedDocument
	Direction        = model.Direction
	Status           = model.Status
	SourceFormat     = model.SourceFormat
)

// Re-export directions
const (
	DirectionPurchase = model.DirectionPurchase
	DirectionSales    = model.DirectionSales
)

// Re-export processing statuses
const (
	StatusPending  = model.StatusPending
	StatusApproved = model.StatusApproved
	StatusRejected = model.StatusRejected
	StatusImported = model.StatusImported
)

// Re-export source formats
const (
	SourceXML     = model.SourceXML
	SourceCSV     = model.SourceCSV
	SourceUnknown = model.SourceUnknown
)

// Re-export error types
type (
	ParseError  = model.ParseError
	ImportError = model.ImportError
)
