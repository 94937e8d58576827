// Package quote runs the analyze operation: compose a request from the form
// and the current catalog, call the generator, normalize its reply and price
// it. The analyzer keeps the latest successful quote.
package quote

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smart-pricing/decision/analysis"
	"smart-pricing/decision/catalog"
	"smart-pricing/decision/composer"
	"smart-pricing/decision/estimation"
	"smart-pricing/decision/generator"
	perrors "smart-pricing/pkg/errors"
)

// CatalogSource supplies catalog snapshots. *catalog.Store satisfies it.
type CatalogSource interface {
	Snapshot() catalog.Catalog
}

// Analyzer runs analyses against a catalog and a generator.
type Analyzer struct {
	catalog CatalogSource
	gen     generator.Generator
	model   string
	logger  zerolog.Logger
	now     func() time.Time

	// seq is the token of the most recently started analysis.
	seq atomic.Uint64

	mu   sync.RWMutex
	last *estimation.Quote
}

// NewAnalyzer creates an analyzer. Generator calls are bounded by timeout
// (zero means unbounded).
func NewAnalyzer(source CatalogSource, gen generator.Generator, model string, timeout time.Duration, logger zerolog.Logger) *Analyzer {
	if model == "" {
		model = generator.DefaultModel
	}
	return &Analyzer{
		catalog: source,
		gen:     generator.WithTimeout(gen, timeout),
		model:   model,
		logger:  logger.With().Str("component", "analyzer").Logger(),
		now:     time.Now,
	}
}

// Analyze prices the product described by in. On success the quote becomes
// the latest quote; on any failure the latest quote is left as it was. A
// call overtaken by a newer Analyze returns STALE_RESPONSE.
func (a *Analyzer) Analyze(ctx context.Context, in composer.FormInputs) (*estimation.Quote, error) {
	description := composer.BuildDescription(in)
	if description == "" {
		return nil, perrors.NewEmptyDescriptionError()
	}

	token := a.seq.Add(1)
	logger := a.logger.With().Uint64("token", token).Logger()

	req := generator.Request{
		Model:             a.model,
		Content:           composer.ProductContent(description),
		SystemInstruction: composer.BuildInstructions(a.catalog.Snapshot()),
	}

	start := a.now()
	raw, err := a.gen.Generate(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Generator call failed")
		return nil, err
	}

	res, err := analysis.Parse(raw)
	if err != nil {
		logger.Error().Err(err).Msg("Generator reply could not be parsed")
		return nil, err
	}

	// Price against the catalog as it is now, not as it was when the
	// request was composed.
	q := estimation.Aggregate(res, a.catalog.Snapshot())
	q.ID = uuid.New()
	q.CreatedAt = a.now()

	a.mu.Lock()
	defer a.mu.Unlock()
	if latest := a.seq.Load(); latest != token {
		logger.Info().Uint64("latest", latest).Msg("Discarding superseded analysis")
		return nil, perrors.NewStaleResponseError(token, latest)
	}
	a.last = &q

	logger.Info().
		Str("quote_id", q.ID.String()).
		Str("product", q.ProductName).
		Int("matched", q.MatchedCount).
		Int("unmatched", q.UnmatchedCount).
		Str("grand_total", q.GrandTotal.String()).
		Dur("elapsed", a.now().Sub(start)).
		Msg("Analysis complete")
	return &q, nil
}

// Last returns the latest successful quote, or nil.
func (a *Analyzer) Last() *estimation.Quote {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}
