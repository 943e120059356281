package ubl

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, content string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(content))
	require.NotNil(t, doc.Root())
	return doc.Root()
}

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		content string
		local   string
		want    string
	}{
		{
			name:    "unprefixed direct child",
			content: `<Invoice><ID>1</ID></Invoice>`,
			local:   "ID",
			want:    "1",
		},
		{
			name:    "cbc prefixed direct child",
			content: `<Invoice xmlns:cbc="urn:x"><cbc:ID>2</cbc:ID></Invoice>`,
			local:   "ID",
			want:    "2",
		},
		{
			name:    "unknown prefix found by local name scan",
			content: `<Invoice xmlns:inv="urn:x"><inv:ID>3</inv:ID></Invoice>`,
			local:   "ID",
			want:    "3",
		},
		{
			name:    "direct child wins over nested descendant",
			content: `<Invoice><Order><ID>nested</ID></Order><ID>direct</ID></Invoice>`,
			local:   "ID",
			want:    "direct",
		},
		{
			name:    "descendant fallback",
			content: `<Invoice><Party><Name>ACME</Name></Party></Invoice>`,
			local:   "Name",
			want:    "ACME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parseDoc(t, tt.content)
			el := find(root, tt.local)
			require.NotNil(t, el)
			assert.Equal(t, tt.want, text(el))
		})
	}
}

func TestFind_Missing(t *testing.T) {
	root := parseDoc(t, `<Invoice><ID>1</ID></Invoice>`)
	assert.Nil(t, find(root, "DueDate"))
	assert.Nil(t, find(nil, "ID"))
}

func TestFindAll(t *testing.T) {
	content := `<Invoice xmlns:cac="urn:y">
		<cac:InvoiceLine><ID>1</ID></cac:InvoiceLine>
		<cac:InvoiceLine><ID>2</ID></cac:InvoiceLine>
		<cac:InvoiceLine><ID>3</ID></cac:InvoiceLine>
	</Invoice>`
	root := parseDoc(t, content)

	lines := findAll(root, "InvoiceLine")
	require.Len(t, lines, 3)
	assert.Equal(t, "1", childText(lines[0], "ID"))
	assert.Equal(t, "2", childText(lines[1], "ID"))
	assert.Equal(t, "3", childText(lines[2], "ID"))
}

func TestFindAll_DescendantScan(t *testing.T) {
	content := `<Invoice xmlns:tax="urn:z">
		<tax:TaxTotal>
			<tax:TaxSubtotal><Percent>20</Percent></tax:TaxSubtotal>
			<tax:TaxSubtotal><Percent>10</Percent></tax:TaxSubtotal>
		</tax:TaxTotal>
	</Invoice>`
	root := parseDoc(t, content)

	subtotals := findAll(root, "TaxSubtotal")
	require.Len(t, subtotals, 2)
	assert.Equal(t, "20", childText(subtotals[0], "Percent"))
	assert.Equal(t, "10", childText(subtotals[1], "Percent"))
}

func TestAttr(t *testing.T) {
	root := parseDoc(t, `<Invoice UUID="abc"><Quantity unitCode="H87">5</Quantity></Invoice>`)

	assert.Equal(t, "abc", attr(root, "UUID"))
	assert.Equal(t, "H87", attr(find(root, "Quantity"), "unitCode"))
	assert.Equal(t, "", attr(root, "missing"))
	assert.Equal(t, "", attr(nil, "UUID"))
}

func TestChildText(t *testing.T) {
	root := parseDoc(t, `<Invoice><Note>  spaced out  </Note></Invoice>`)

	assert.Equal(t, "spaced out", childText(root, "Note"))
	assert.Equal(t, "", childText(root, "Missing"))
}

func TestChildDecimal(t *testing.T) {
	root := parseDoc(t, `<Invoice><Amount>1234.56</Amount><Bad>abc</Bad></Invoice>`)

	assert.True(t, childDecimal(root, "Amount").Equal(decimal.RequireFromString("1234.56")))
	assert.True(t, childDecimal(root, "Bad").IsZero())
	assert.True(t, childDecimal(root, "Missing").IsZero())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2026-03-15", want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{input: "15.03.2026", want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{input: "15/03/2026", want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{input: "2026-03-15T10:30:00", want: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)},
		{input: "not a date", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChildDate(t *testing.T) {
	root := parseDoc(t, `<Invoice><IssueDate>2026-05-01</IssueDate><Bad>xx</Bad></Invoice>`)

	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), childDate(root, "IssueDate"))
	assert.True(t, childDate(root, "Bad").IsZero())
	assert.True(t, childDate(root, "Missing").IsZero())
}
