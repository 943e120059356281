package ubl

import (
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	money "github.com/rezonia/efaktura-ingest/internal/decimal"
	"github.com/rezonia/efaktura-ingest/internal/model"
)

// extractLineItems builds the invoice lines in document order. CreditNote
// documents use CreditNoteLine/CreditedQuantity instead of the Invoice
// element names.
func extractLineItems(root *etree.Element) []model.LineItem {
	lines := findAll(root, "InvoiceLine")
	if len(lines) == 0 {
		lines = findAll(root, "CreditNoteLine")
	}

	items := make([]model.LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, extractLineItem(line))
	}
	return items
}

func extractLineItem(line *etree.Element) model.LineItem {
	item := model.LineItem{
		Quantity: decimal.NewFromInt(1),
		UnitCode: model.DefaultUnitCode,
	}

	itemEl := find(line, "Item")
	if itemEl != nil {
		item.Description = childText(itemEl, "Name")
		if item.Description == "" {
			item.Description = childText(itemEl, "Description")
		}
	}

	qty := find(line, "InvoicedQuantity")
	if qty == nil {
		qty = find(line, "CreditedQuantity")
	}
	if qty != nil {
		// Unit of measure is the unitCode attribute on the quantity
		// element, not a child element
		if q, err := money.ParseLocale(text(qty)); err == nil {
			item.Quantity = q
		}
		if code := attr(qty, "unitCode"); code != "" {
			item.UnitCode = code
		}
	}

	if price := find(line, "Price"); price != nil {
		item.UnitPrice = childDecimal(price, "PriceAmount")
	}
	item.Amount = childDecimal(line, "LineExtensionAmount")

	if allowance := find(line, "AllowanceCharge"); allowance != nil {
		item.Discount = childDecimal(allowance, "Amount")
	}

	rateSet := false
	if itemEl != nil {
		if cat := find(itemEl, "ClassifiedTaxCategory"); cat != nil {
			item.VatRate = childDecimal(cat, "Percent")
			rateSet = true
		}
	}
	if !rateSet {
		if cat := find(line, "TaxCategory"); cat != nil {
			item.VatRate = childDecimal(cat, "Percent")
		}
	}

	return item
}

// extractVatBreakdown builds the per-rate tax subtotal list. All-zero
// bands are placeholder noise some documents include and are dropped.
func extractVatBreakdown(root *etree.Element) []model.VatBand {
	var bands []model.VatBand
	for _, sub := range findAll(root, "TaxSubtotal") {
		band := model.VatBand{
			Base:   childDecimal(sub, "TaxableAmount"),
			Amount: childDecimal(sub, "TaxAmount"),
		}
		if cat := find(sub, "TaxCategory"); cat != nil {
			band.Rate = childDecimal(cat, "Percent")
		}
		if !band.IsZero() {
			bands = append(bands, band)
		}
	}
	return bands
}
