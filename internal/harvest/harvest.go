// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest walks the discovery search results for one research
// organization, following the server-supplied continuation path page by page
// until the server-reported total has been collected.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/pdiddy/grant-harvester/internal/httputil"
	"github.com/pdiddy/grant-harvester/internal/logging"
	"github.com/pdiddy/grant-harvester/pkg/types"
)

// ResultsPath is the first page of the grant search.
const ResultsPath = "/discover/grant/results.json"

// ErrPageLimit is returned when MaxPages pages were fetched without
// reaching the reported total.
var ErrPageLimit = errors.New("page limit reached before harvest completed")

// Fetcher retrieves and decodes one JSON document.
type Fetcher interface {
	FetchJSON(ctx context.Context, endpoint, path string, params url.Values, v any) error
}

// State accumulates one harvest. Only the Harvester appends to it; once
// Harvest returns it is read-only.
type State struct {
	Grants      []types.Grant
	Researchers []types.Researcher

	// Pages is the number of pages fetched.
	Pages int

	// Total is the count reported by the most recent page.
	Total int
}

// add appends a page's grants and stamps their researchers with the owning
// grant ID.
func (s *State) add(page types.Page) {
	for i := range page.Docs {
		g := &page.Docs[i]
		for j := range g.Researchers {
			g.Researchers[j].GrantID = g.ID
		}
		s.Researchers = append(s.Researchers, g.Researchers...)
	}
	s.Grants = append(s.Grants, page.Docs...)
}

// done reports whether the latest reported total has been reached. More
// records than the total is accepted and kept.
func (s *State) done() bool {
	return len(s.Grants) >= s.Total
}

// Harvester runs the pagination loop.
type Harvester struct {
	Fetcher Fetcher

	// MaxPages bounds the number of pages per harvest; 0 means unbounded,
	// which trusts the server's cursor chain to terminate.
	MaxPages int

	// OnPage, when set, is called after each page with the running
	// collected count and the latest reported total.
	OnPage func(collected, total int)

	Logger zerolog.Logger
}

// New returns a Harvester that fetches through f.
func New(f Fetcher, maxPages int) *Harvester {
	return &Harvester{
		Fetcher:  f,
		MaxPages: maxPages,
		Logger:   logging.NewLogger("harvest"),
	}
}

// SearchParams returns the fixed query parameters of the search, filtered
// to orgID.
func SearchParams(orgID string) url.Values {
	return url.Values{
		"search_mode":           {"content"},
		"search_type":           {"kws"},
		"search_field":          {"full_search"},
		"or_facet_research_org": {orgID},
	}
}

// Harvest fetches every page of results for orgID. Any transport or decode
// error aborts the whole harvest and no partial state is returned.
func (h *Harvester) Harvest(ctx context.Context, orgID string) (*State, error) {
	if orgID == "" {
		return nil, fmt.Errorf("organization ID is empty")
	}

	params := SearchParams(orgID)
	state := &State{}
	path := ResultsPath

	for {
		if h.MaxPages > 0 && state.Pages >= h.MaxPages {
			return nil, fmt.Errorf("%w: %d pages fetched, %d/%d grants collected",
				ErrPageLimit, state.Pages, len(state.Grants), state.Total)
		}

		h.Logger.Debug().Str("path", path).Int("page", state.Pages+1).Msg("fetching page")

		page, err := h.fetchPage(ctx, path, params)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", state.Pages+1, err)
		}

		state.Pages++
		state.Total = page.Count
		state.add(page)

		if h.OnPage != nil {
			h.OnPage(len(state.Grants), state.Total)
		}

		if state.done() {
			h.Logger.Info().
				Str("org", orgID).
				Int("grants", len(state.Grants)).
				Int("researchers", len(state.Researchers)).
				Int("pages", state.Pages).
				Msg("harvest complete")
			return state, nil
		}

		h.Logger.Info().
			Int("collected", len(state.Grants)).
			Int("total", state.Total).
			Msg("harvest progress")

		if page.Next == "" {
			return nil, &httputil.MalformedResponseError{URL: path, Key: "navigation.results_json"}
		}
		path = page.Next
	}
}

// Count fetches the first page for orgID and returns the reported total
// without accumulating anything.
func (h *Harvester) Count(ctx context.Context, orgID string) (int, error) {
	if orgID == "" {
		return 0, fmt.Errorf("organization ID is empty")
	}
	page, err := h.fetchPage(ctx, ResultsPath, SearchParams(orgID))
	if err != nil {
		return 0, fmt.Errorf("fetching result count: %w", err)
	}
	return page.Count, nil
}

func (h *Harvester) fetchPage(ctx context.Context, path string, params url.Values) (types.Page, error) {
	var resp pageResponse
	if err := h.Fetcher.FetchJSON(ctx, "results", path, params, &resp); err != nil {
		return types.Page{}, err
	}
	return resp.toPage(path)
}

// pageResponse is the search endpoint's JSON shape. Pointers distinguish a
// missing key from an empty value.
type pageResponse struct {
	Docs       *[]types.Grant `json:"docs"`
	Count      *int           `json:"count"`
	Navigation *struct {
		ResultsJSON string `json:"results_json"`
	} `json:"navigation"`
}

func (r pageResponse) toPage(path string) (types.Page, error) {
	if r.Docs == nil {
		return types.Page{}, &httputil.MalformedResponseError{URL: path, Key: "docs"}
	}
	if r.Count == nil {
		return types.Page{}, &httputil.MalformedResponseError{URL: path, Key: "count"}
	}
	for i, g := range *r.Docs {
		if g.ID == "" {
			return types.Page{}, &httputil.MalformedResponseError{URL: path, Key: fmt.Sprintf("docs[%d].id", i)}
		}
	}

	page := types.Page{Docs: *r.Docs, Count: *r.Count}
	if r.Navigation != nil {
		page.Next = r.Navigation.ResultsJSON
	}
	return page, nil
}

// Compile-time check that the transport satisfies Fetcher.
var _ Fetcher = (*httputil.Client)(nil)
