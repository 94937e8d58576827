// Package estimation prices an analysis against the catalog.
// Each analyzed line is resolved to a catalog entry by normalized name and
// multiplied out; lines with no entry stay in the quote, priced at zero.
package estimation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smart-pricing/decision/analysis"
	"smart-pricing/decision/catalog"
	"smart-pricing/pkg/confidence"
	"smart-pricing/pkg/util"
)

// DefaultProductName is shown when the generator does not name the product.
const DefaultProductName = "Sản phẩm theo mô tả"

// PricedLine explains a single cost line item
type PricedLine struct {
	Name      string          `json:"name"`
	Quantity  float64         `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`

	// Unmatched lines have no catalog entry and contribute nothing.
	Unmatched bool `json:"unmatched"`

	// CatalogIndex is the position of the matched entry, -1 when unmatched.
	CatalogIndex int    `json:"catalog_index"`
	CatalogUnit  string `json:"catalog_unit,omitempty"`

	// UnitMismatch flags a matched line whose analyzed unit differs from the
	// catalog unit. It never affects the subtotal.
	UnitMismatch bool `json:"unit_mismatch,omitempty"`
}

// Formula renders the subtotal calculation for a matched line.
func (l PricedLine) Formula() string {
	if l.Unmatched {
		return "không có trong bảng giá"
	}
	return fmt.Sprintf("%s %s × %s = %s",
		decimal.NewFromFloat(l.Quantity).String(),
		l.Unit,
		util.FormatVND(l.UnitPrice),
		util.FormatVND(l.Subtotal),
	)
}

// Totals holds the per-category sums of one quote.
type Totals struct {
	Materials   decimal.Decimal `json:"materials"`
	Accessories decimal.Decimal `json:"accessories"`
	Labor       decimal.Decimal `json:"labor"`
}

// Grand is the sum of the three category totals.
func (t Totals) Grand() decimal.Decimal {
	return t.Materials.Add(t.Accessories).Add(t.Labor)
}

// Quote contains the complete estimation output
type Quote struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ProductName string `json:"product_name"`
	Dimensions  string `json:"dimensions,omitempty"`

	Materials   []PricedLine `json:"materials"`
	Accessories []PricedLine `json:"accessories"`
	Labor       []PricedLine `json:"labor"`

	Totals     Totals          `json:"totals"`
	GrandTotal decimal.Decimal `json:"grand_total"`

	// Statistics
	MatchedCount   int     `json:"matched_count"`
	UnmatchedCount int     `json:"unmatched_count"`
	Coverage       float64 `json:"coverage"`

	// Analysis is the decoded generator output the quote was priced from.
	Analysis analysis.Result `json:"analysis"`
}

// Lines returns the priced lines for a category.
func (q *Quote) Lines(c catalog.Category) []PricedLine {
	switch c {
	case catalog.Materials:
		return q.Materials
	case catalog.Accessories:
		return q.Accessories
	case catalog.Labor:
		return q.Labor
	default:
		return nil
	}
}

// Total returns the total for a category.
func (q *Quote) Total(c catalog.Category) decimal.Decimal {
	switch c {
	case catalog.Materials:
		return q.Totals.Materials
	case catalog.Accessories:
		return q.Totals.Accessories
	case catalog.Labor:
		return q.Totals.Labor
	default:
		return decimal.Zero
	}
}

// IsIncomplete reports whether any line could not be priced.
func (q *Quote) IsIncomplete() bool {
	return q.UnmatchedCount > 0
}

// Aggregate prices every category of res against cat. It is pure: the same
// inputs always give the same lines and totals, and nothing is retained
// between calls. ID and CreatedAt are left for the caller to stamp.
func Aggregate(res analysis.Result, cat catalog.Catalog) Quote {
	q := Quote{
		ProductName: strings.TrimSpace(res.ProductName),
		Dimensions:  strings.TrimSpace(res.Dimensions),
		Analysis:    res,
	}
	if q.ProductName == "" {
		q.ProductName = DefaultProductName
	}

	q.Materials, q.Totals.Materials = PriceCategory(res.Materials, cat.Materials)
	q.Accessories, q.Totals.Accessories = PriceCategory(res.Accessories, cat.Accessories)
	q.Labor, q.Totals.Labor = PriceCategory(res.LaborSteps, cat.Labor)
	q.GrandTotal = q.Totals.Grand()

	for _, lines := range [][]PricedLine{q.Materials, q.Accessories, q.Labor} {
		for _, l := range lines {
			if l.Unmatched {
				q.UnmatchedCount++
			} else {
				q.MatchedCount++
			}
		}
	}
	q.Coverage = confidence.Coverage(q.MatchedCount, q.MatchedCount+q.UnmatchedCount)
	return q
}

// PriceCategory prices items against one catalog list and returns the lines
// in input order with their re-summed total. An empty or nil input gives an
// empty, non-nil slice and a zero total.
func PriceCategory(items []analysis.LineItem, entries []catalog.PricedItem) ([]PricedLine, decimal.Decimal) {
	lines := make([]PricedLine, 0, len(items))
	total := decimal.Zero

	for _, item := range items {
		line := priceLine(item, entries)
		total = total.Add(line.Subtotal)
		lines = append(lines, line)
	}
	return lines, total
}

func priceLine(item analysis.LineItem, entries []catalog.PricedItem) PricedLine {
	line := PricedLine{
		Name:         item.Name,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		UnitPrice:    decimal.Zero,
		Subtotal:     decimal.Zero,
		CatalogIndex: findEntry(item.Name, entries),
	}

	if line.CatalogIndex < 0 {
		line.Unmatched = true
		return line
	}

	entry := entries[line.CatalogIndex]
	line.UnitPrice = entry.Price
	line.Subtotal = entry.Price.Mul(decimal.NewFromFloat(item.Quantity))
	line.CatalogUnit = entry.Unit
	line.UnitMismatch = !util.SameUnit(item.Unit, entry.Unit)
	return line
}

// findEntry returns the index of the first entry whose normalized name
// equals name, or -1.
func findEntry(name string, entries []catalog.PricedItem) int {
	key := normalizeName(name)
	if key == "" {
		return -1
	}
	for i, e := range entries {
		if normalizeName(e.Name) == key {
			return i
		}
	}
	return -1
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
