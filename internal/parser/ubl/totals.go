package ubl

import (
	"github.com/beevik/etree"

	money "github.com/rezonia/efaktura-ingest/internal/decimal"
	"github.com/rezonia/efaktura-ingest/internal/model"
)

// resolveTotals fills the invoice totals from LegalMonetaryTotal, with
// fallback chains across the alternate total-amount elements.
func resolveTotals(root *etree.Element, inv *model.ParsedInvoice) {
	if total := find(root, "LegalMonetaryTotal"); total != nil {
		inv.Subtotal = childDecimal(total, "LineExtensionAmount")
		if inv.Subtotal.IsZero() {
			inv.Subtotal = childDecimal(total, "TaxExclusiveAmount")
		}

		inv.TotalAmount = childDecimal(total, "TaxInclusiveAmount")

		// Only a missing PayableAmount falls back to the total. An
		// explicit zero is meaningful: fully prepaid invoices carry
		// PayableAmount 0.00.
		if payable := find(total, "PayableAmount"); payable != nil {
			inv.PayableAmount = money.ParseOrZero(text(payable))
		} else {
			inv.PayableAmount = inv.TotalAmount
		}
	}

	// Total VAT comes from the document-level TaxTotal, not from summing
	// the bands: the document figure is authoritative and may carry
	// rounding the bands do not.
	if taxTotal := find(root, "TaxTotal"); taxTotal != nil {
		inv.TotalVat = childDecimal(taxTotal, "TaxAmount")
	}
}
