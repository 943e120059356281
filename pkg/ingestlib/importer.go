package ingestlib

import (
	"bytes"
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rezonia/efaktura-ingest/internal/ingest"
	"github.com/rezonia/efaktura-ingest/internal/model"
	"github.com/rezonia/efaktura-ingest/internal/parser/csvimport"
	"github.com/rezonia/efaktura-ingest/internal/parser/ubl"
	"github.com/rezonia/efaktura-ingest/internal/store"
)

// Re-export storage collaborators
type (
	DocumentStore = store.DocumentStore
	Filter        = store.Filter
	BatchResult   = ingest.BatchResult
)

// NewMemoryStore creates an in-memory document store
func NewMemoryStore() DocumentStore {
	return store.NewMemoryDocumentStore()
}

// DetectFormat identifies the source format from raw content
func DetectFormat(data []byte) SourceFormat {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	if len(trimmed) == 0 {
		return SourceUnknown
	}
	if trimmed[0] == '<' {
		return SourceXML
	}
	// A CSV export's header line is semicolon-delimited
	if line, _, _ := bytes.Cut(trimmed, []byte("\n")); bytes.Contains(line, []byte(";")) {
		return SourceCSV
	}
	return SourceUnknown
}

// Options configures the importer facade
type Options struct {
	// DefaultCurrency is used when a document carries no currency code
	DefaultCurrency string

	// Logger receives ingestion events; defaults to a no-op logger
	Logger zerolog.Logger
}

// DefaultOptions returns the default importer options
func DefaultOptions() Options {
	return Options{
		DefaultCurrency: ubl.DefaultCurrency,
		Logger:          zerolog.Nop(),
	}
}

// Importer bundles the format parsers with the ingestion orchestrator
// over a chosen store.
type Importer struct {
	parser   *ubl.Parser
	ingestor *ingest.Ingestor
	options  Options
}

// NewImporter creates an importer with default options
func NewImporter(s DocumentStore) *Importer {
	return NewImporterWithOptions(s, DefaultOptions())
}

// NewImporterWithOptions creates an importer with the given options
func NewImporterWithOptions(s DocumentStore, opts Options) *Importer {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = ubl.DefaultCurrency
	}
	return &Importer{
		parser:   ubl.NewParser(ubl.WithDefaultCurrency(opts.DefaultCurrency)),
		ingestor: ingest.NewIngestor(s, ingest.WithLogger(opts.Logger)),
		options:  opts,
	}
}

// ParseXML parses raw UBL XML without persisting anything. Returns nil
// when the XML is malformed.
func (imp *Importer) ParseXML(data []byte) *ParsedInvoice {
	return imp.parser.Parse(data)
}

// ImportXML parses a UBL document and ingests the canonical record
func (imp *Importer) ImportXML(ctx context.Context, tenantID uuid.UUID, direction Direction, data []byte) (*BatchResult, error) {
	inv := imp.parser.Parse(data)
	if inv == nil {
		return nil, model.NewParseError(model.SourceXML, "document", "malformed XML", nil)
	}
	docs := []*model.ImportedDocument{inv.ToDocument(tenantID, direction)}
	return imp.ingestor.ImportBatch(ctx, tenantID, docs), nil
}

// ImportCSV parses a CSV export and ingests every parseable row. Row
// errors are merged into the batch result.
func (imp *Importer) ImportCSV(ctx context.Context, tenantID uuid.UUID, direction Direction, data []byte) (*BatchResult, error) {
	csvImporter := csvimport.NewImporter(
		csvimport.WithDirection(direction),
		csvimport.WithCurrency(imp.options.DefaultCurrency),
	)
	parsed := csvImporter.Import(data, tenantID)

	result := imp.ingestor.ImportBatch(ctx, tenantID, parsed.Documents)
	result.Errors = append(parsed.Errors, result.Errors...)
	return result, nil
}

// ImportFile auto-detects the format and ingests the content
func (imp *Importer) ImportFile(ctx context.Context, tenantID uuid.UUID, direction Direction, data []byte) (*BatchResult, error) {
	switch DetectFormat(data) {
	case SourceXML:
		return imp.ImportXML(ctx, tenantID, direction, data)
	case SourceCSV:
		return imp.ImportCSV(ctx, tenantID, direction, data)
	default:
		return nil, model.NewParseError(model.SourceUnknown, "document", "unsupported file format", nil)
	}
}
