package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"smart-pricing/decision/catalog"
	"smart-pricing/decision/composer"
	"smart-pricing/decision/generator"
	"smart-pricing/decision/quote"
	perrors "smart-pricing/pkg/errors"
)

// =============================================================================
// QUOTE COMMAND
// =============================================================================

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Analyze a product description and price it against the catalog",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "cabinet-type",
				Usage: "Cabinet type (repeatable), e.g. trên, dưới",
			},
			&cli.StringFlag{Name: "width", Usage: "Width in metres"},
			&cli.StringFlag{Name: "height", Usage: "Height in metres"},
			&cli.StringFlag{Name: "depth", Usage: "Depth in metres"},
			&cli.StringSliceFlag{
				Name:  "material",
				Usage: "Catalog material to use (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "accessory",
				Usage: "Catalog accessory to install (repeatable)",
			},
			&cli.StringFlag{
				Name:  "extra",
				Usage: "Additional free-text requirements",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json, markdown)",
			},
			&cli.BoolFlag{
				Name:  "show-raw",
				Usage: "Also print the decoded analysis JSON",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Generator model (overrides config)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Generator timeout (overrides config)",
			},
			&cli.StringFlag{
				Name:  "response-file",
				Usage: "Price a saved generator reply instead of calling the generator",
			},
		},
		Action: runQuote,
	}
}

func formInputs(c *cli.Context) composer.FormInputs {
	return composer.FormInputs{
		CabinetTypes: c.StringSlice("cabinet-type"),
		Width:        c.String("width"),
		Height:       c.String("height"),
		Depth:        c.String("depth"),
		Materials:    c.StringSlice("material"),
		Accessories:  c.StringSlice("accessory"),
		Extra:        c.String("extra"),
	}
}

// checkSelections requires selected materials and accessories to be names
// from the current catalog.
func checkSelections(in composer.FormInputs, snap catalog.Catalog) error {
	check := func(cat catalog.Category, selected []string) error {
		known := make(map[string]bool)
		for _, n := range snap.Names(cat) {
			known[n] = true
		}
		for _, s := range selected {
			if s = strings.TrimSpace(s); s != "" && !known[s] {
				return fmt.Errorf("%s %q không có trong bảng giá", cat.Label(), s)
			}
		}
		return nil
	}
	if err := check(catalog.Materials, in.Materials); err != nil {
		return err
	}
	return check(catalog.Accessories, in.Accessories)
}

func runQuote(c *cli.Context) error {
	format := c.String("format")
	switch format {
	case "table", "json", "markdown":
	default:
		return fmt.Errorf("unknown format %q (want table, json or markdown)", format)
	}

	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	in := formInputs(c)
	if err := checkSelections(in, rt.store.Snapshot()); err != nil {
		return err
	}

	model := rt.cfg.Generator.Model
	if c.IsSet("model") {
		model = c.String("model")
	}
	if c.IsSet("timeout") {
		rt.cfg.Generator.Timeout = c.Duration("timeout").String()
	}
	timeout, err := rt.cfg.GeneratorTimeout()
	if err != nil {
		return err
	}

	gen, err := newGenerator(c, rt)
	if err != nil {
		return err
	}

	analyzer := quote.NewAnalyzer(rt.store, gen, model, timeout, rt.logger)
	fmt.Fprintf(c.App.ErrWriter, "🔎 Đang phân tích (model %s, timeout %s)...\n", model, timeout.Round(time.Second))

	q, err := analyzer.Analyze(c.Context, in)
	if err != nil {
		rt.logger.Debug().Err(err).Msg("Analysis failed")
		return &userError{err: err}
	}

	if c.Bool("show-raw") {
		if err := outputRaw(c.App.Writer, q); err != nil {
			return err
		}
	}

	switch format {
	case "json":
		return outputJSON(c.App.Writer, q)
	case "markdown":
		return outputMarkdown(c.App.Writer, q)
	default:
		return outputTable(c.App.Writer, q)
	}
}

func newGenerator(c *cli.Context, rt *runtime) (generator.Generator, error) {
	if path := c.String("response-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read response file: %w", err)
		}
		return generator.Static(string(data)), nil
	}
	if rt.cfg.Generator.APIKey == "" {
		return nil, &userError{err: perrors.NewGeneratorCallError(fmt.Errorf("GEMINI_API_KEY is not set"))}
	}
	return generator.NewGemini(c.Context, rt.cfg.Generator.APIKey, rt.cfg.Generator.Temperature, rt.logger)
}
