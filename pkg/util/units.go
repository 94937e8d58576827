package util

import (
	"strings"

	"smart-pricing/pkg/units"
)

// SameUnit reports whether the generator's unit and the catalog unit denote
// the same thing. An empty generator unit is treated as agreeing with the
// catalog.
func SameUnit(analyzed, catalog string) bool {
	if strings.TrimSpace(analyzed) == "" {
		return true
	}
	return units.Canonical(analyzed) == units.Canonical(catalog)
}
