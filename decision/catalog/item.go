// Package catalog provides the user-maintained price catalog: three ordered
// lists of priced items (materials, accessories, labor) backed by durable
// key-value storage.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	perrors "smart-pricing/pkg/errors"
)

// Category identifies one of the three independent catalog lists.
type Category string

const (
	Materials   Category = "materials"
	Accessories Category = "accessories"
	Labor       Category = "labor"
)

// ErrUnknownCategory is returned for a category outside Categories.
var ErrUnknownCategory = errors.New("unknown catalog category")

// Categories lists every category in presentation order.
func Categories() []Category {
	return []Category{Materials, Accessories, Labor}
}

// Valid reports whether c is one of the three catalog lists.
func (c Category) Valid() bool {
	switch c {
	case Materials, Accessories, Labor:
		return true
	}
	return false
}

// StorageKey is the durable key holding the category's list.
func (c Category) StorageKey() string {
	return "smartpricing_" + string(c)
}

// Label is the Vietnamese noun used in messages about this category.
func (c Category) Label() string {
	switch c {
	case Materials:
		return "vật liệu"
	case Accessories:
		return "phụ kiện"
	case Labor:
		return "công đoạn"
	default:
		return string(c)
	}
}

// ParseCategory accepts the category name in singular or plural form.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "materials", "material", "vat-lieu":
		return Materials, nil
	case "accessories", "accessory", "phu-kien":
		return Accessories, nil
	case "labor", "labour", "cong-doan":
		return Labor, nil
	}
	return "", fmt.Errorf("%w %q (want materials, accessories or labor)", ErrUnknownCategory, s)
}

// PricedItem is one catalog entry. Identity is its position in the list.
type PricedItem struct {
	Name  string          `json:"name"`
	Unit  string          `json:"unit"`
	Price decimal.Decimal `json:"price"`
}

// NewPricedItem trims name and unit and validates the result.
func NewPricedItem(name, unit string, price decimal.Decimal) (PricedItem, error) {
	item := PricedItem{
		Name:  strings.TrimSpace(name),
		Unit:  strings.TrimSpace(unit),
		Price: price,
	}
	return item, item.Validate()
}

// Validate rejects empty names or units and non-positive prices.
func (p PricedItem) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return perrors.NewInvalidItemError("name is empty")
	case strings.TrimSpace(p.Unit) == "":
		return perrors.NewInvalidItemError("unit is empty")
	case !p.Price.IsPositive():
		return perrors.NewInvalidItemError("price must be greater than 0, got " + p.Price.String())
	}
	return nil
}

// Catalog is a point-in-time copy of all three lists.
type Catalog struct {
	Materials   []PricedItem `json:"materials"`
	Accessories []PricedItem `json:"accessories"`
	Labor       []PricedItem `json:"labor"`
}

// Items returns the list for a category.
func (c Catalog) Items(cat Category) []PricedItem {
	switch cat {
	case Materials:
		return c.Materials
	case Accessories:
		return c.Accessories
	case Labor:
		return c.Labor
	default:
		return nil
	}
}

// Names returns the item names of a category in catalog order.
func (c Catalog) Names(cat Category) []string {
	items := c.Items(cat)
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}
