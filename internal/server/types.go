package server

import (
	"github.com/rezonia/efaktura-ingest/internal/ingest"
	"github.com/rezonia/efaktura-ingest/internal/model"
)

// IngestResponse is the response for ingest endpoints
type IngestResponse struct {
	ImportedCount int      `json:"imported_count"`
	SkippedCount  int      `json:"skipped_count"`
	Errors        []string `json:"errors,omitempty"`
}

func newIngestResponse(r *ingest.BatchResult) IngestResponse {
	return IngestResponse{
		ImportedCount: r.ImportedCount,
		SkippedCount:  r.SkippedCount,
		Errors:        r.Errors,
	}
}

// ParseResponse is the response for the parse-only endpoint
type ParseResponse struct {
	Invoice *model.ParsedInvoice `json:"invoice"`
}

// ListResponse is the response for the document listing endpoint
type ListResponse struct {
	Documents []model.ImportedDocument `json:"documents"`
	Count     int                      `json:"count"`
}

// RejectRequest carries the rejection reason for a review decision
type RejectRequest struct {
	Reason string `json:"reason"`
}

// LinkRequest carries the local invoice id to attach to a document
type LinkRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
