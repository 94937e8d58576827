// Package units provides canonical units of measure for catalog items.
package units

import "strings"

// Unit represents a measurable quantity.
type Unit string

const (
	// Area, length and volume
	UnitSquareMetre Unit = "m2"
	UnitMetre       Unit = "m"
	UnitCubicMetre  Unit = "m3"

	// Countable goods
	UnitPiece Unit = "cái"
	UnitSet   Unit = "bộ"
	UnitSheet Unit = "tấm"

	// Labor
	UnitManDay Unit = "công"
	UnitHour   Unit = "giờ"
	UnitTimes  Unit = "lần"
)

// aliases maps spellings the generator tends to produce onto the canonical
// unit. Keys are lower-case.
var aliases = map[string]Unit{
	"m2":        UnitSquareMetre,
	"m²":        UnitSquareMetre,
	"m^2":       UnitSquareMetre,
	"mét vuông": UnitSquareMetre,
	"m":         UnitMetre,
	"md":        UnitMetre,
	"m dài":     UnitMetre,
	"mét":       UnitMetre,
	"m3":        UnitCubicMetre,
	"m³":        UnitCubicMetre,
	"m^3":       UnitCubicMetre,
	"cái":       UnitPiece,
	"cai":       UnitPiece,
	"chiếc":     UnitPiece,
	"bộ":        UnitSet,
	"bo":        UnitSet,
	"tấm":       UnitSheet,
	"tam":       UnitSheet,
	"công":      UnitManDay,
	"ngày công": UnitManDay,
	"giờ":       UnitHour,
	"h":         UnitHour,
	"hours":     UnitHour,
	"lần":       UnitTimes,
}

// Canonical trims and lower-cases s and folds known aliases. Units with no
// alias are returned in their trimmed lower-case form.
func Canonical(s string) Unit {
	u := strings.ToLower(strings.TrimSpace(s))
	if c, ok := aliases[u]; ok {
		return c
	}
	return Unit(u)
}

// Known reports whether s is one of the recognised units or aliases.
func Known(s string) bool {
	_, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	return ok
}
