// Package analysis turns the generator's free-form reply into a structured
// bill of quantities. Decoding is lenient inside the document:
// only a reply that is not a JSON object at all is rejected.
package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"smart-pricing/decision/catalog"
)

// LineItem is one analyzed material, accessory or labor step.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Result is the decoded analysis of one product description.
type Result struct {
	ProductName string     `json:"productName,omitempty"`
	Dimensions  string     `json:"dimensions,omitempty"`
	Materials   []LineItem `json:"materials"`
	Accessories []LineItem `json:"accessories"`
	LaborSteps  []LineItem `json:"laborSteps"`
}

// Items returns the analyzed lines for a catalog category.
func (r Result) Items(c catalog.Category) []LineItem {
	switch c {
	case catalog.Materials:
		return r.Materials
	case catalog.Accessories:
		return r.Accessories
	case catalog.Labor:
		return r.LaborSteps
	default:
		return nil
	}
}

// errNotObject is returned when the top level is not a JSON object.
var errNotObject = errors.New("analysis document is not a JSON object")

// Keys accepted for each field, English first. The Vietnamese forms are the
// ones older prompts asked for.
var (
	keysProductName = []string{"productName", "san_pham"}
	keysDimensions  = []string{"dimensions", "kich_thuoc"}
	keysMaterials   = []string{"materials", "vat_lieu"}
	keysAccessories = []string{"accessories", "phu_kien"}
	keysLaborSteps  = []string{"laborSteps", "cong_doan"}
	keysName        = []string{"name", "ten"}
	keysQuantity    = []string{"quantity", "so_luong"}
	keysUnit        = []string{"unit", "don_vi"}
)

// UnmarshalJSON decodes an analysis document. A category that is not an
// array is treated as absent, elements that are not objects are skipped, a
// name or unit that is not a string becomes text (numbers) or "", and a
// quantity that is not numeric becomes 0.
func (r *Result) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	*r = Result{
		ProductName: textValue(lookup(fields, keysProductName)),
		Dimensions:  textValue(lookup(fields, keysDimensions)),
		Materials:   decodeLines(lookup(fields, keysMaterials)),
		Accessories: decodeLines(lookup(fields, keysAccessories)),
		LaborSteps:  decodeLines(lookup(fields, keysLaborSteps)),
	}
	return nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func lookup(fields map[string]json.RawMessage, keys []string) json.RawMessage {
	for _, k := range keys {
		if raw, ok := fields[k]; ok {
			return raw
		}
	}
	return nil
}

// decodeLines returns nil when raw is absent or not an array, and a non-nil
// slice otherwise, so an explicit empty list survives a round trip.
func decodeLines(raw json.RawMessage) []LineItem {
	if raw == nil {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || elems == nil {
		return nil
	}

	lines := make([]LineItem, 0, len(elems))
	for _, elem := range elems {
		fields, err := decodeObject(elem)
		if err != nil {
			continue
		}
		lines = append(lines, LineItem{
			Name:     textValue(lookup(fields, keysName)),
			Quantity: numberValue(lookup(fields, keysQuantity)),
			Unit:     textValue(lookup(fields, keysUnit)),
		})
	}
	return lines
}

func textValue(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func numberValue(raw json.RawMessage) float64 {
	if raw == nil {
		return 0
	}
	var text string
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		text = n.String()
	} else if err := json.Unmarshal(raw, &text); err != nil {
		return 0
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
