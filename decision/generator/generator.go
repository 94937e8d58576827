// Package generator sends a composed request to an external text generator
// and returns its raw reply.
package generator

import (
	"context"
	"errors"
	"time"

	perrors "smart-pricing/pkg/errors"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Request is one generation call. The reply is expected to be a JSON
// document, possibly wrapped in a code fence.
type Request struct {
	Model             string
	Content           string
	SystemInstruction string
}

// Generator produces the raw reply text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts an ordinary function to a Generator.
type Func func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Static returns a Generator that always replies with text. It backs
// offline quoting from a saved reply.
func Static(text string) Generator {
	return Func(func(ctx context.Context, _ Request) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return text, nil
	})
}

type timeoutGenerator struct {
	next  Generator
	limit time.Duration
}

// WithTimeout bounds every call to next by limit and classifies failures:
// a call that ran past the limit becomes GENERATOR_TIMEOUT, anything else
// GENERATOR_CALL_FAILED. A limit of zero or less leaves calls unbounded
// but still classifies their errors.
func WithTimeout(next Generator, limit time.Duration) Generator {
	return &timeoutGenerator{next: next, limit: limit}
}

func (g *timeoutGenerator) Generate(ctx context.Context, req Request) (string, error) {
	callCtx := ctx
	if g.limit > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.limit)
		defer cancel()
	}

	text, err := g.next.Generate(callCtx, req)
	if err == nil {
		return text, nil
	}

	var perr *perrors.PricingError
	if errors.As(err, &perr) {
		return "", err
	}
	// Only our own deadline counts as a timeout; a cancelled or expired
	// caller context is reported as a failed call.
	if g.limit > 0 && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return "", perrors.NewGeneratorTimeoutError(g.limit, err)
	}
	return "", perrors.NewGeneratorCallError(err)
}
