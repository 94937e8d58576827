package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"smart-pricing/decision/catalog"
	"smart-pricing/pkg/units"
	"smart-pricing/pkg/util"
)

// =============================================================================
// CATALOG COMMAND
// =============================================================================

func catalogCommand() *cli.Command {
	categoryFlag := func(required bool) *cli.StringFlag {
		return &cli.StringFlag{
			Name:     "category",
			Aliases:  []string{"k"},
			Usage:    "Catalog category (materials, accessories, labor)",
			Required: required,
		}
	}

	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage the price catalog",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List catalog items",
				Flags:  []cli.Flag{categoryFlag(false)},
				Action: runCatalogList,
			},
			{
				Name:  "add",
				Usage: "Add an item to a category",
				Flags: []cli.Flag{
					categoryFlag(true),
					&cli.StringFlag{Name: "name", Usage: "Item name", Required: true},
					&cli.StringFlag{Name: "unit", Usage: "Unit of measure (m2, cái, công...)", Required: true},
					&cli.StringFlag{Name: "price", Usage: "Unit price in VND", Required: true},
				},
				Action: runCatalogAdd,
			},
			{
				Name:  "delete",
				Usage: "Delete the item at an index",
				Flags: []cli.Flag{
					categoryFlag(true),
					&cli.IntFlag{Name: "index", Aliases: []string{"i"}, Usage: "Index shown by catalog list", Required: true},
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
				},
				Action: runCatalogDelete,
			},
			{
				Name:  "export",
				Usage: "Write all three lists as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"o"}, Usage: "Output file (default stdout)"},
				},
				Action: runCatalogExport,
			},
			{
				Name:  "import",
				Usage: "Replace lists from a JSON export",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "Export file to import", Required: true},
				},
				Action: runCatalogImport,
			},
		},
	}
}

func selectedCategories(c *cli.Context) ([]catalog.Category, error) {
	if !c.IsSet("category") {
		return catalog.Categories(), nil
	}
	cat, err := catalog.ParseCategory(c.String("category"))
	if err != nil {
		return nil, err
	}
	return []catalog.Category{cat}, nil
}

func runCatalogList(c *cli.Context) error {
	cats, err := selectedCategories(c)
	if err != nil {
		return err
	}
	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	snap := rt.store.Snapshot()
	for _, cat := range cats {
		writeCategoryTable(c.App.Writer, cat, snap.Items(cat))
	}
	return nil
}

func writeCategoryTable(w io.Writer, cat catalog.Category, items []catalog.PricedItem) {
	fmt.Fprintf(w, "\n📦 %s (%d)\n", strings.ToUpper(cat.Label()), len(items))
	if len(items) == 0 {
		fmt.Fprintf(w, "   Chưa có %s nào.\n", cat.Label())
		return
	}
	fmt.Fprintf(w, "   %-4s %-32s %-10s %18s\n", "#", "Tên", "Đơn vị", "Đơn giá")
	for i, item := range items {
		fmt.Fprintf(w, "   %-4d %-32s %-10s %18s\n", i, truncate(item.Name, 32), item.Unit, util.FormatVND(item.Price))
	}
}

func runCatalogAdd(c *cli.Context) error {
	cat, err := catalog.ParseCategory(c.String("category"))
	if err != nil {
		return err
	}
	// An unparsable price becomes 0 and is rejected by validation.
	price, err := decimal.NewFromString(strings.TrimSpace(c.String("price")))
	if err != nil {
		price = decimal.Zero
	}

	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	item := catalog.PricedItem{Name: c.String("name"), Unit: c.String("unit"), Price: price}
	if err := reportMutation(c, rt, rt.store.Add(c.Context, cat, item)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "✅ Đã thêm %s %q (%s / %s)\n",
		cat.Label(), strings.TrimSpace(item.Name), util.FormatVND(price), strings.TrimSpace(item.Unit))
	if !units.Known(item.Unit) {
		fmt.Fprintf(c.App.ErrWriter, "ℹ️  Đơn vị %q không thuộc danh sách đơn vị quen thuộc; cảnh báo lệch đơn vị sẽ so sánh nguyên văn.\n",
			strings.TrimSpace(item.Unit))
	}
	return nil
}

func runCatalogDelete(c *cli.Context) error {
	cat, err := catalog.ParseCategory(c.String("category"))
	if err != nil {
		return err
	}
	index := c.Int("index")

	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	items := rt.store.List(cat)
	if index >= 0 && index < len(items) && !c.Bool("yes") {
		ok, err := confirm(c.App.Reader, c.App.Writer,
			fmt.Sprintf("Xóa %s %q?", cat.Label(), items[index].Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.App.Writer, "Đã hủy.")
			return nil
		}
	}

	if err := reportMutation(c, rt, rt.store.Delete(c.Context, cat, index)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "🗑️  Đã xóa %s %q\n", cat.Label(), items[index].Name)
	return nil
}

func confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "c", "có":
		return true, nil
	default:
		return false, nil
	}
}

func runCatalogExport(c *cli.Context) error {
	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	data, err := json.MarshalIndent(rt.store.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	data = append(data, '\n')

	if path := c.String("file"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(c.App.ErrWriter, "📤 Exported catalog to %s\n", path)
		return nil
	}
	_, err = c.App.Writer.Write(data)
	return err
}

func runCatalogImport(c *cli.Context) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	lists, err := decodeImport(data)
	if err != nil {
		return err
	}

	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	for _, cat := range catalog.Categories() {
		items, ok := lists[cat]
		if !ok {
			continue
		}
		if err := reportMutation(c, rt, rt.store.Replace(c.Context, cat, items)); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "📥 %s: %d\n", cat.Label(), len(items))
	}
	return nil
}

// decodeImport reads an export document. Every category present is
// validated before anything is replaced.
func decodeImport(data []byte) (map[catalog.Category][]catalog.PricedItem, error) {
	var raw map[string][]catalog.PricedItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}

	lists := make(map[catalog.Category][]catalog.PricedItem, len(raw))
	for key, items := range raw {
		cat, err := catalog.ParseCategory(key)
		if err != nil {
			return nil, err
		}
		valid := make([]catalog.PricedItem, 0, len(items))
		for i, item := range items {
			v, err := catalog.NewPricedItem(item.Name, item.Unit, item.Price)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			valid = append(valid, v)
		}
		lists[cat] = valid
	}
	return lists, nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
