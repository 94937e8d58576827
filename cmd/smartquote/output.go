package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smart-pricing/decision/catalog"
	"smart-pricing/decision/estimation"
	"smart-pricing/pkg/confidence"
	"smart-pricing/pkg/util"
)

// =============================================================================
// OUTPUT FORMATTERS
// =============================================================================

type JSONLine struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice string  `json:"unit_price"`
	Subtotal  string  `json:"subtotal"`
	Unmatched bool    `json:"unmatched"`
	Warning   string  `json:"warning,omitempty"`
}

type JSONOutput struct {
	ID             string            `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	ProductName    string            `json:"product_name"`
	Dimensions     string            `json:"dimensions,omitempty"`
	Materials      []JSONLine        `json:"materials"`
	Accessories    []JSONLine        `json:"accessories"`
	Labor          []JSONLine        `json:"labor"`
	Totals         map[string]string `json:"totals"`
	GrandTotal     string            `json:"grand_total"`
	GrandTotalText string            `json:"grand_total_text"`
	IsIncomplete   bool              `json:"is_incomplete"`
	MatchedCount   int               `json:"matched_count"`
	UnmatchedCount int               `json:"unmatched_count"`
	Coverage       float64           `json:"coverage"`
}

func lineWarning(l estimation.PricedLine) string {
	switch {
	case l.Unmatched:
		return "không có trong bảng giá"
	case l.UnitMismatch:
		return fmt.Sprintf("đơn vị %q khác đơn vị bảng giá %q", l.Unit, l.CatalogUnit)
	default:
		return ""
	}
}

func jsonLines(lines []estimation.PricedLine) []JSONLine {
	out := make([]JSONLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, JSONLine{
			Name:      l.Name,
			Quantity:  l.Quantity,
			Unit:      l.Unit,
			UnitPrice: l.UnitPrice.String(),
			Subtotal:  l.Subtotal.String(),
			Unmatched: l.Unmatched,
			Warning:   lineWarning(l),
		})
	}
	return out
}

func outputJSON(w io.Writer, q *estimation.Quote) error {
	output := JSONOutput{
		ID:          q.ID.String(),
		CreatedAt:   q.CreatedAt,
		ProductName: q.ProductName,
		Dimensions:  q.Dimensions,
		Materials:   jsonLines(q.Materials),
		Accessories: jsonLines(q.Accessories),
		Labor:       jsonLines(q.Labor),
		Totals: map[string]string{
			string(catalog.Materials):   q.Totals.Materials.String(),
			string(catalog.Accessories): q.Totals.Accessories.String(),
			string(catalog.Labor):       q.Totals.Labor.String(),
		},
		GrandTotal:     q.GrandTotal.String(),
		GrandTotalText: util.FormatVND(q.GrandTotal),
		IsIncomplete:   q.IsIncomplete(),
		MatchedCount:   q.MatchedCount,
		UnmatchedCount: q.UnmatchedCount,
		Coverage:       q.Coverage,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputRaw(w io.Writer, q *estimation.Quote) error {
	data, err := json.MarshalIndent(q.Analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	fmt.Fprintln(w, "🧾 Kết quả phân tích JSON:")
	fmt.Fprintln(w, string(data))
	return nil
}

func coverageText(score float64) string {
	return fmt.Sprintf("%.0f%% (%s)", score*100, confidence.Level(score))
}

func quantityText(q float64) string {
	return decimal.NewFromFloat(q).String()
}

func outputTable(w io.Writer, q *estimation.Quote) error {
	rule := strings.Repeat("═", 78)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔"+rule)
	fmt.Fprintf(w, "║  💰 BÁO GIÁ: %s\n", q.ProductName)
	if q.Dimensions != "" {
		fmt.Fprintf(w, "║  Kích thước: %s\n", q.Dimensions)
	}

	for _, cat := range catalog.Categories() {
		fmt.Fprintln(w, "╠"+rule)
		fmt.Fprintf(w, "║  %s\n", strings.ToUpper(cat.Label()))
		lines := q.Lines(cat)
		if len(lines) == 0 {
			fmt.Fprintf(w, "║    Không có %s nào.\n", cat.Label())
		}
		for _, l := range lines {
			fmt.Fprintf(w, "║    %-28s %8s %-6s × %16s = %16s\n",
				truncate(l.Name, 28), quantityText(l.Quantity), l.Unit,
				util.FormatVND(l.UnitPrice), util.FormatVND(l.Subtotal))
			if warn := lineWarning(l); warn != "" {
				fmt.Fprintf(w, "║      ⚠️  %s\n", warn)
			}
		}
		fmt.Fprintf(w, "║  Tổng %s: %s\n", cat.Label(), util.FormatVND(q.Total(cat)))
	}

	fmt.Fprintln(w, "╠"+rule)
	fmt.Fprintf(w, "║  TỔNG CỘNG: %s\n", util.FormatVND(q.GrandTotal))
	fmt.Fprintf(w, "║  Độ phủ bảng giá: %s\n", coverageText(q.Coverage))
	if q.IsIncomplete() {
		fmt.Fprintf(w, "║  ⚠️  %d mục không có trong bảng giá, chưa được tính vào tổng.\n", q.UnmatchedCount)
	}
	fmt.Fprintln(w, "╚"+rule)
	return nil
}

func outputMarkdown(w io.Writer, q *estimation.Quote) error {
	fmt.Fprintf(w, "## 💰 Báo giá: %s\n\n", q.ProductName)
	if q.Dimensions != "" {
		fmt.Fprintf(w, "**Kích thước:** %s\n\n", q.Dimensions)
	}

	for _, cat := range catalog.Categories() {
		fmt.Fprintf(w, "### %s\n\n", capitalize(cat.Label()))
		lines := q.Lines(cat)
		if len(lines) == 0 {
			fmt.Fprintf(w, "_Không có %s nào._\n\n", cat.Label())
			continue
		}
		fmt.Fprintln(w, "| Tên | Số lượng | Đơn vị | Đơn giá | Thành tiền |")
		fmt.Fprintln(w, "|-----|----------|--------|---------|------------|")
		for _, l := range lines {
			price := util.FormatVND(l.UnitPrice)
			if l.Unmatched {
				price = "⚠️ Không có trong bảng giá"
			}
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				l.Name, quantityText(l.Quantity), l.Unit, price, util.FormatVND(l.Subtotal))
		}
		fmt.Fprintf(w, "\n**Tổng %s:** %s\n\n", cat.Label(), util.FormatVND(q.Total(cat)))
	}

	fmt.Fprintf(w, "---\n\n**Tổng cộng: %s**\n\n", util.FormatVND(q.GrandTotal))
	fmt.Fprintf(w, "Độ phủ bảng giá: %s\n", coverageText(q.Coverage))
	if q.IsIncomplete() {
		fmt.Fprintf(w, "\n> ⚠️ %d mục không có trong bảng giá, chưa được tính vào tổng.\n", q.UnmatchedCount)
	}
	return nil
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
