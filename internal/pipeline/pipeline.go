// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one harvest end to end: count, harvest, enrich,
// normalize and export.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/grant-harvester/internal/enrich"
	"github.com/pdiddy/grant-harvester/internal/export"
	"github.com/pdiddy/grant-harvester/internal/harvest"
	"github.com/pdiddy/grant-harvester/internal/httputil"
	"github.com/pdiddy/grant-harvester/internal/logging"
	"github.com/pdiddy/grant-harvester/internal/normalize"
	"github.com/pdiddy/grant-harvester/internal/progress"
	"github.com/pdiddy/grant-harvester/pkg/types"
)

// Options configures a run.
type Options struct {
	Config types.PipelineConfig
	OrgID  string

	// Progress receives operator-facing status lines. Nil discards them.
	Progress io.Writer

	// Now returns the run timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Summary describes a finished run.
type Summary struct {
	RunID         string
	OrgID         string
	Reported      int
	Grants        int
	Researchers   int
	Pages         int
	FailedLookups int
	Outputs       []string
	Duration      time.Duration
}

// Run executes the pipeline for opts.OrgID. Harvest, normalize and export
// errors are fatal; failed enrichment lookups are counted in the Summary
// and leave an empty fields value. A context cancelled during enrichment
// fails the run before anything is exported.
func Run(ctx context.Context, opts Options) (sum Summary, err error) {
	cfg := opts.Config
	origin := cfg.Origin
	if origin == "" {
		origin = types.DefaultOrigin
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	w := opts.Progress
	if w == nil {
		w = io.Discard
	}

	start := now()
	runID := uuid.NewString()
	sum = Summary{RunID: runID, OrgID: opts.OrgID}

	logger := logging.NewLogger("pipeline").With().Str("run_id", runID).Logger()
	logger.Info().Str("org", opts.OrgID).Str("origin", origin).Msg("run started")

	reg := prometheus.NewRegistry()
	if cfg.MetricsFile != "" {
		defer func() {
			if werr := prometheus.WriteToTextfile(cfg.MetricsFile, reg); werr != nil {
				logger.Error().Err(werr).Str("path", cfg.MetricsFile).Msg("writing metrics file")
				if err == nil {
					err = fmt.Errorf("writing metrics file: %w", werr)
				}
			}
		}()
	}

	client := httputil.NewClient(cfg.HTTP, origin, httputil.NewMetrics(reg))
	client.Logger = client.Logger.With().Str("run_id", runID).Logger()

	h := harvest.New(client, cfg.Harvest.MaxPages)
	h.Logger = h.Logger.With().Str("run_id", runID).Logger()

	reported, err := h.Count(ctx, opts.OrgID)
	if err != nil {
		return sum, err
	}
	sum.Reported = reported
	fmt.Fprintf(w, "%d grants reported for %s\n", reported, opts.OrgID)

	pages := progress.New(w, "harvest", reported)
	h.OnPage = pages.Set

	state, err := h.Harvest(ctx, opts.OrgID)
	if err != nil {
		return sum, err
	}
	sum.Grants = len(state.Grants)
	sum.Researchers = len(state.Researchers)
	sum.Pages = state.Pages

	enr := enrich.New(&enrich.DetailsLookup{Fetcher: client}, cfg.Enrich, enrich.NewMetrics(reg))
	enr.Logger = enr.Logger.With().Str("run_id", runID).Logger()
	lookups := progress.New(w, "enrich", len(state.Grants))
	enr.OnDone = lookups.Inc

	results := enr.Enrich(ctx, state.Grants)
	sum.FailedLookups = enrich.Failures(results)
	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("enriching grants: %w", err)
	}

	rows, err := normalize.Normalize(client.Origin, state.Grants, state.Researchers, enrich.Values(results))
	if err != nil {
		return sum, fmt.Errorf("normalizing grants: %w", err)
	}

	outputs, err := export.Write(ctx, cfg.Output, export.Dataset{
		RunID:       runID,
		OrgID:       opts.OrgID,
		GeneratedAt: start,
		Rows:        rows,
		Researchers: state.Researchers,
	})
	if err != nil {
		return sum, fmt.Errorf("exporting grants: %w", err)
	}
	sum.Outputs = outputs
	sum.Duration = now().Sub(start)

	for _, p := range outputs {
		fmt.Fprintf(w, "wrote %s\n", p)
	}
	fmt.Fprintf(w, "\nRun summary: %d grants, %d researchers, %d pages, %d failed lookups\n",
		sum.Grants, sum.Researchers, sum.Pages, sum.FailedLookups)

	logger.Info().
		Int("grants", sum.Grants).
		Int("failed_lookups", sum.FailedLookups).
		Dur("duration", sum.Duration).
		Msg("run complete")

	return sum, nil
}
