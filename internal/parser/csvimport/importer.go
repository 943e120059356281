// Package csvimport turns flat CSV exports from the e-invoicing exchange
// into canonical imported documents. Export column order and naming are
// not contractually fixed, so columns are detected by keyword instead of
// position, and malformed rows are skipped with a per-row error rather
// than failing the file.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	money "github.com/rezonia/efaktura-ingest/internal/decimal"
	"github.com/rezonia/efaktura-ingest/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result carries the parsed documents plus an append-only list of
// per-row error messages. The importer never returns a Go error for
// data-quality problems.
type Result struct {
	Documents []*model.ImportedDocument
	Errors    []string
}

// Importer parses semicolon-delimited CSV exports
type Importer struct {
	direction model.Direction
	currency  string
}

// Option configures the importer
type Option func(*Importer)

// WithDirection sets the document direction for imported rows
func WithDirection(d model.Direction) Option {
	return func(i *Importer) {
		i.direction = d
	}
}

// WithCurrency sets the currency for imported rows; CSV exports carry no
// currency column
func WithCurrency(code string) Option {
	return func(i *Importer) {
		i.currency = code
	}
}

// NewImporter creates a CSV importer. Exports default to purchase
// documents in RSD.
func NewImporter(opts ...Option) *Importer {
	imp := &Importer{
		direction: model.DirectionPurchase,
		currency:  "RSD",
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// columns holds the detected index of each semantic field, -1 if the
// header has no matching column
type columns struct {
	number   int
	date     int
	amount   int
	supplier int
	taxID    int
	status   int
}

// detectColumns maps semantic fields to header positions by keyword.
// Substring matching on the lower-cased header, not exact matching:
// export column names vary between exchange versions.
func detectColumns(header []string) columns {
	lowered := make([]string, len(header))
	for i, h := range header {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	match := func(pred func(string) bool) int {
		for i, h := range lowered {
			if pred(h) {
				return i
			}
		}
		return -1
	}
	contains := func(keywords ...string) func(string) bool {
		return func(h string) bool {
			for _, kw := range keywords {
				if strings.Contains(h, kw) {
					return true
				}
			}
			return false
		}
	}

	return columns{
		number: match(contains("broj", "number")),
		date: match(func(h string) bool {
			if strings.Contains(h, "datum") && strings.Contains(h, "izdav") {
				return true
			}
			return strings.Contains(h, "date")
		}),
		amount:   match(contains("iznos", "amount", "total")),
		supplier: match(contains("dobav", "izdavač", "izdavac", "supplier", "naziv")),
		taxID:    match(contains("pib", "tax")),
		status:   match(contains("status")),
	}
}

// Import parses raw CSV text into canonical documents for the tenant.
// The only top-level failure is a file with no data rows; every other
// problem is a skipped row with a 1-based row number in Errors.
func (imp *Importer) Import(raw []byte, tenantID uuid.UUID) *Result {
	result := &Result{}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, "CSV has no data rows")
		return result
	}
	cols := detectColumns(header)

	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		doc, rowErr := imp.convertRow(record, header, cols, rowNum, tenantID)
		if rowErr != "" {
			result.Errors = append(result.Errors, rowErr)
			continue
		}
		result.Documents = append(result.Documents, doc)
	}

	if rowNum == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "CSV has no data rows")
	}
	return result
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// convertRow builds one canonical document from a data row. Returns a
// non-empty error string when the row must be skipped.
func (imp *Importer) convertRow(record, header []string, cols columns, rowNum int, tenantID uuid.UUID) (*model.ImportedDocument, string) {
	amount := money.Zero
	if raw := cell(record, cols.amount); raw != "" {
		parsed, err := money.ParseLocale(raw)
		if err != nil {
			return nil, fmt.Sprintf("row %d: invalid amount %q", rowNum, raw)
		}
		amount = parsed
	}

	var issueDate time.Time
	if raw := cell(record, cols.date); raw != "" {
		if parsed, err := parseDate(raw); err == nil {
			issueDate = parsed
		}
	}

	number := cell(record, cols.number)
	if number == "" {
		number = fmt.Sprintf("CSV-%d", rowNum)
	}

	doc := &model.ImportedDocument{
		ID:                uuid.New(),
		TenantID:          tenantID,
		SourceID:          syntheticSourceID(record, issueDate, rowNum),
		Direction:         imp.direction,
		Number:            number,
		IssueDate:         issueDate,
		CounterpartyName:  cell(record, cols.supplier),
		CounterpartyTaxID: cell(record, cols.taxID),
		TotalAmount:       amount,
		Currency:          imp.currency,
		RawPayload:        strings.Join(header, ";") + "\n" + strings.Join(record, ";"),
		Status:            parseStatus(cell(record, cols.status)),
	}
	return doc, ""
}

// syntheticSourceID derives a stable source id for a format that has
// none: same file content and row position always produce the same id,
// so re-running an export cannot silently duplicate records.
func syntheticSourceID(record []string, issueDate time.Time, rowNum int) string {
	datePart := "00000000"
	if !issueDate.IsZero() {
		datePart = issueDate.Format("20060102")
	}

	h := fnv.New32a()
	h.Write([]byte(strings.Join(record, ";")))
	return fmt.Sprintf("CSV-%s-%d-%08x", datePart, rowNum, h.Sum32())
}

// parseStatus maps an export status cell onto the processing status.
// Unknown values default to imported, matching the batch-import flow.
func parseStatus(s string) model.Status {
	switch strings.ToLower(s) {
	case "odbijeno", "odbijen", "rejected":
		return model.StatusRejected
	case "odobreno", "odobren", "approved":
		return model.StatusApproved
	case "na čekanju", "pending":
		return model.StatusPending
	default:
		return model.StatusImported
	}
}

var dateFormats = []string{
	"2006-01-02",
	"02.01.2006",
	"02.01.2006.",
	"2006-01-02T15:04:05",
	"02/01/2006",
}

func parseDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date: %s", s)
}
