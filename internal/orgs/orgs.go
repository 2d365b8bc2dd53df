// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orgs resolves free-text organization names to the research
// organization IDs the grant search filters on, and lets the operator pick
// one from a numbered list.
package orgs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/grant-harvester/internal/httputil"
	"github.com/pdiddy/grant-harvester/pkg/types"
)

// CompletionPath is the organization autocomplete endpoint.
const CompletionPath = "/completion/publication/research_org.json"

// DefaultMaxAttempts bounds Select when maxAttempts is not positive.
const DefaultMaxAttempts = 3

// ErrNoSelection is returned when the operator gives no valid choice.
var ErrNoSelection = errors.New("no organization selected")

// Fetcher retrieves and decodes one JSON document.
type Fetcher interface {
	FetchJSON(ctx context.Context, endpoint, path string, params url.Values, v any) error
}

// Suggest returns the organizations the service suggests for query, in the
// service's order.
func Suggest(ctx context.Context, f Fetcher, query string) ([]types.Organization, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("organization query is empty")
	}

	var resp completionResponse
	if err := f.FetchJSON(ctx, "completion", CompletionPath, url.Values{"query": {query}}, &resp); err != nil {
		return nil, fmt.Errorf("looking up organizations: %w", err)
	}
	if resp.Suggestions == nil {
		return nil, &httputil.MalformedResponseError{URL: CompletionPath, Key: "suggestions"}
	}

	out := make([]types.Organization, 0, len(*resp.Suggestions))
	for _, s := range *resp.Suggestions {
		if s.Data.ID == "" {
			continue
		}
		out = append(out, types.Organization{ID: s.Data.ID, Name: s.Data.Name})
	}
	return out, nil
}

// Select prints a numbered list of orgs to out and reads a 1-based choice
// from in. Invalid input is reported and re-prompted up to maxAttempts
// times in total.
func Select(in io.Reader, out io.Writer, orgs []types.Organization, maxAttempts int) (types.Organization, error) {
	if len(orgs) == 0 {
		return types.Organization{}, fmt.Errorf("%w: no organizations to choose from", ErrNoSelection)
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for i, o := range orgs {
		fmt.Fprintf(out, "%3d  %-60s  %s\n", i+1, o.Name, o.ID)
	}

	scanner := bufio.NewScanner(in)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprintf(out, "Select an organization [1-%d]: ", len(orgs))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return types.Organization{}, fmt.Errorf("%w: input closed", ErrNoSelection)
		}

		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || n < 1 || n > len(orgs) {
			fmt.Fprintf(out, "invalid choice %q\n", scanner.Text())
			continue
		}
		return orgs[n-1], nil
	}
	return types.Organization{}, fmt.Errorf("%w: %d invalid attempts", ErrNoSelection, maxAttempts)
}

type completionResponse struct {
	Suggestions *[]struct {
		Data struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	} `json:"suggestions"`
}
