// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize projects harvested grants, their researchers and the
// enriched fields into flat output rows.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/grant-harvester/pkg/types"
)

// datePattern matches the first YYYY-MM-DD substring of a free-text date.
var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// PatternExtractionError reports a date field that is present but holds no
// YYYY-MM-DD substring.
type PatternExtractionError struct {
	GrantID string
	Field   string
	Raw     string
}

// Error implements the error interface.
func (e *PatternExtractionError) Error() string {
	return fmt.Sprintf("grant %s: no YYYY-MM-DD date in %s %q", e.GrantID, e.Field, e.Raw)
}

// Normalize builds one row per grant, in grant order. fields must be
// index-aligned with grants. The first date that cannot be extracted aborts
// normalization.
func Normalize(origin string, grants []types.Grant, researchers []types.Researcher, fields []string) ([]types.Row, error) {
	if len(fields) != len(grants) {
		return nil, fmt.Errorf("got %d field values for %d grants", len(fields), len(grants))
	}

	names := ResearcherNames(researchers)
	rows := make([]types.Row, len(grants))
	for i, g := range grants {
		row, err := normalizeGrant(origin, g, names[g.ID], fields[i])
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

func normalizeGrant(origin string, g types.Grant, names []string, fields string) (types.Row, error) {
	start, err := ExtractDate(g.StartDateRaw)
	if err != nil {
		return types.Row{}, &PatternExtractionError{GrantID: g.ID, Field: "start_date", Raw: g.StartDateRaw.Value}
	}
	end, err := ExtractDate(g.EndDateRaw)
	if err != nil {
		return types.Row{}, &PatternExtractionError{GrantID: g.ID, Field: "end_date", Raw: g.EndDateRaw.Value}
	}

	return types.Row{
		ID:             g.ID,
		Title:          g.Title,
		StartDate:      start,
		EndDate:        end,
		FundingAmount:  g.FundingAmount,
		Researchers:    strings.Join(names, ", "),
		FundingOrgName: g.FundingOrgName,
		ShortAbstract:  g.Abstract,
		Fields:         fields,
		Link:           Link(origin, g.NavigationPath),
		Linkout:        g.Linkout,
	}, nil
}

// errNoDate is returned by ExtractDate when raw holds no date.
var errNoDate = errors.New("no YYYY-MM-DD date")

// ExtractDate returns the first YYYY-MM-DD substring of raw. An absent raw
// value yields an absent result.
func ExtractDate(raw types.Scalar) (types.Scalar, error) {
	if !raw.Valid {
		return types.Scalar{}, nil
	}
	m := datePattern.FindString(raw.Value)
	if m == "" {
		return types.Scalar{}, errNoDate
	}
	return types.Some(m), nil
}

// Link returns origin followed by the grant's navigation path, or an absent
// value when the grant has no path.
func Link(origin string, navigationPath types.Scalar) types.Scalar {
	if !navigationPath.Valid {
		return types.Scalar{}
	}
	return types.Some(origin + navigationPath.Value)
}

// ResearcherNames groups "First Last" names by grant ID, keeping harvest
// order within each grant.
func ResearcherNames(researchers []types.Researcher) map[string][]string {
	names := make(map[string][]string)
	for _, r := range researchers {
		names[r.GrantID] = append(names[r.GrantID], r.FullName())
	}
	return names
}
