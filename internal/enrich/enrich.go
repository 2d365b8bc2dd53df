// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich looks up the fields of research for every harvested grant
// under a concurrency cap and returns the results in grant order.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/grant-harvester/internal/logging"
	"github.com/pdiddy/grant-harvester/pkg/types"
)

// DefaultConcurrency is the number of lookups allowed in flight when
// Enricher.Concurrency is not set.
const DefaultConcurrency = 15

// Lookup returns the derived fields value for one grant.
type Lookup interface {
	Fields(ctx context.Context, grantID string) (string, error)
}

// Result is the outcome of one lookup. A failed lookup has an empty Value
// and the recovered error in Err.
type Result struct {
	Value string
	Err   error
}

// Enricher fans lookups out over a bounded pool.
type Enricher struct {
	Lookup Lookup

	// Concurrency caps simultaneous lookups (default 15).
	Concurrency int

	// Timeout bounds each lookup when positive.
	Timeout time.Duration

	// OnDone, when set, is called once per finished lookup, successful or
	// not. It is called from worker goroutines and must be safe for
	// concurrent use.
	OnDone func()

	Metrics *Metrics
	Logger  zerolog.Logger
}

// New returns an Enricher over l configured by cfg.
func New(l Lookup, cfg types.EnrichConfig, m *Metrics) *Enricher {
	return &Enricher{
		Lookup:      l,
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
		Metrics:     m,
		Logger:      logging.NewLogger("enrich"),
	}
}

// Enrich runs one lookup per grant and returns a slice index-aligned with
// grants. Failures never abort sibling lookups; each is recorded in its own
// Result. Once ctx is done no further lookups start and the remaining grants
// carry ctx.Err(); callers should check ctx.Err() before using the values.
func (e *Enricher) Enrich(ctx context.Context, grants []types.Grant) []Result {
	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]Result, len(grants))

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range grants {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Err: err}
			if e.OnDone != nil {
				e.OnDone()
			}
			continue
		}
		id := grants[i].ID
		g.Go(func() error {
			results[i] = e.lookupOne(ctx, id)
			if e.OnDone != nil {
				e.OnDone()
			}
			return nil
		})
	}
	g.Wait()

	e.Logger.Info().
		Int("grants", len(grants)).
		Int("failed", Failures(results)).
		Int("concurrency", limit).
		Msg("enrichment complete")

	return results
}

// lookupOne performs a single lookup and converts any failure, including a
// panic in the Lookup, into a Result.
func (e *Enricher) lookupOne(ctx context.Context, grantID string) (res Result) {
	e.Metrics.start()
	defer func() {
		if p := recover(); p != nil {
			res = Result{Err: fmt.Errorf("lookup for %s panicked: %v", grantID, p)}
		}
		e.Metrics.finish(res.Err)
		if res.Err != nil {
			e.Logger.Warn().Err(res.Err).Str("grant_id", grantID).Msg("fields lookup failed")
		}
	}()

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	v, err := e.Lookup.Fields(ctx, grantID)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Value: v}
}

// Values projects results onto their derived field values; failed lookups
// contribute "".
func Values(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	return out
}

// Failures counts the results that carry a recovered error.
func Failures(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
