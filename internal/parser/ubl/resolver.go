package ubl

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	money "github.com/rezonia/efaktura-ingest/internal/decimal"
)

// Namespace prefixes seen in documents from the exchange. Real-world
// documents use inconsistent prefixes (or none) for the same semantic
// element, so every lookup tries these before scanning by local name.
var nsPrefixes = []string{"", "cbc", "cac", "ubl", "ns1", "ns2"}

// find returns the first element matching the local tag name within
// parent: known-prefix direct children first, then a full-subtree scan
// comparing local names. Returns nil when nothing matches, never errors.
func find(parent *etree.Element, local string) *etree.Element {
	if parent == nil {
		return nil
	}

	for _, prefix := range nsPrefixes {
		tag := local
		if prefix != "" {
			tag = prefix + ":" + local
		}
		for _, child := range parent.ChildElements() {
			if child.FullTag() == tag {
				return child
			}
		}
	}

	// Fallback: recursive search ignoring namespace prefixes
	for _, child := range parent.ChildElements() {
		if found := findDescendant(child, local); found != nil {
			return found
		}
	}

	return nil
}

// findAll returns every element matching the local tag name, in document
// order. Direct children win over a descendant scan, mirroring find.
func findAll(parent *etree.Element, local string) []*etree.Element {
	if parent == nil {
		return nil
	}

	for _, prefix := range nsPrefixes {
		tag := local
		if prefix != "" {
			tag = prefix + ":" + local
		}
		var matches []*etree.Element
		for _, child := range parent.ChildElements() {
			if child.FullTag() == tag {
				matches = append(matches, child)
			}
		}
		if len(matches) > 0 {
			return matches
		}
	}

	var matches []*etree.Element
	for _, child := range parent.ChildElements() {
		collectDescendants(child, local, &matches)
	}
	return matches
}

// findDescendant searches for an element by local name recursively
func findDescendant(el *etree.Element, local string) *etree.Element {
	if localName(el) == local {
		return el
	}

	for _, child := range el.ChildElements() {
		if found := findDescendant(child, local); found != nil {
			return found
		}
	}

	return nil
}

func collectDescendants(el *etree.Element, local string, out *[]*etree.Element) {
	if localName(el) == local {
		*out = append(*out, el)
		return
	}
	for _, child := range el.ChildElements() {
		collectDescendants(child, local, out)
	}
}

// localName returns the element's tag without any namespace prefix
func localName(el *etree.Element) string {
	tag := el.Tag
	if idx := strings.IndexByte(tag, ':'); idx >= 0 {
		tag = tag[idx+1:]
	}
	return tag
}

// text returns the element's trimmed text content, or "" for nil
func text(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// attr returns the named attribute's value, ignoring any namespace prefix
// on the attribute key
func attr(el *etree.Element, key string) string {
	if el == nil {
		return ""
	}
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// childText resolves a child element by local name and returns its text,
// defaulting to ""
func childText(parent *etree.Element, local string) string {
	return text(find(parent, local))
}

// childDecimal resolves a child element and parses its text as a decimal,
// defaulting to zero
func childDecimal(parent *etree.Element, local string) decimal.Decimal {
	return money.ParseOrZero(childText(parent, local))
}

// childDate resolves a child element and parses its text as a date,
// defaulting to the zero time
func childDate(parent *etree.Element, local string) time.Time {
	d, err := parseDate(childText(parent, local))
	if err != nil {
		return time.Time{}
	}
	return d
}

var dateFormats = []string{
	"2006-01-02",
	"02.01.2006",
	"2006-01-02T15:04:05",
	"02/01/2006",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date: %s", s)
}
