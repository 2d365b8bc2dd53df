// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/grant-harvester/internal/httputil"
)

// detailsPathFmt is the per-grant fields-of-research endpoint.
const detailsPathFmt = "/details/sources/grant/%s/for.json"

// Fetcher retrieves and decodes one JSON document.
type Fetcher interface {
	FetchJSON(ctx context.Context, endpoint, path string, params url.Values, v any) error
}

// DetailsLookup resolves a grant's fields of research from the details
// endpoint.
type DetailsLookup struct {
	Fetcher Fetcher
}

// Fields returns the entity names of the grant's fields of research joined
// with ", ". Every entity contributes, duplicates and empty names included;
// no entities yields "". An entity without a name is a malformed response.
func (d *DetailsLookup) Fields(ctx context.Context, grantID string) (string, error) {
	path := DetailsPath(grantID)

	var resp detailsResponse
	if err := d.Fetcher.FetchJSON(ctx, "details", path, nil, &resp); err != nil {
		return "", err
	}
	if resp.Entities == nil {
		return "", &httputil.MalformedResponseError{URL: path, Key: "entities"}
	}

	names := make([]string, 0, len(*resp.Entities))
	for i, ent := range *resp.Entities {
		if ent.Details == nil || ent.Details.Name == nil {
			return "", &httputil.MalformedResponseError{URL: path, Key: fmt.Sprintf("entities[%d].details.name", i)}
		}
		names = append(names, *ent.Details.Name)
	}
	return strings.Join(names, ", "), nil
}

// DetailsPath returns the details endpoint path for grantID.
func DetailsPath(grantID string) string {
	return fmt.Sprintf(detailsPathFmt, url.PathEscape(grantID))
}

type detailsResponse struct {
	Entities *[]detailsEntity `json:"entities"`
}

type detailsEntity struct {
	Details *struct {
		Name *string `json:"name"`
	} `json:"details"`
}
