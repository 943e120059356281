package ubl

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/rezonia/efaktura-ingest/internal/model"
)

// extractParty builds a Party from a cac:Party subtree. A nil subtree
// yields an all-empty Party; parsing of the rest of the invoice continues.
func extractParty(el *etree.Element) model.Party {
	var party model.Party
	if el == nil {
		return party
	}

	if name := find(el, "PartyName"); name != nil {
		party.Name = childText(name, "Name")
	}
	if party.Name == "" {
		// Some documents only carry the registered legal name
		if legal := find(el, "PartyLegalEntity"); legal != nil {
			party.Name = childText(legal, "RegistrationName")
		}
	}

	if addr := find(el, "PostalAddress"); addr != nil {
		street := childText(addr, "StreetName")
		building := childText(addr, "BuildingNumber")
		party.Address = strings.TrimSpace(street + " " + building)
		party.City = childText(addr, "CityName")
		party.PostalCode = childText(addr, "PostalZone")
	}

	// Tax id and registration number share the CompanyID leaf tag but
	// live in different subtrees. Both lookups are intentional.
	if scheme := find(el, "PartyTaxScheme"); scheme != nil {
		party.TaxID = childText(scheme, "CompanyID")
	}
	if legal := find(el, "PartyLegalEntity"); legal != nil {
		party.RegistrationNumber = childText(legal, "CompanyID")
	}

	if contact := find(el, "Contact"); contact != nil {
		party.Email = childText(contact, "ElectronicMail")
		party.Phone = childText(contact, "Telephone")
	}
	party.Website = childText(el, "WebsiteURI")

	return party
}
