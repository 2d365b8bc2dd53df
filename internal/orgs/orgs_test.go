// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orgs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grant-harvester/internal/httputil"
	"github.com/pdiddy/grant-harvester/pkg/types"
)

const sampleCompletionJSON = `{
  "suggestions": [
    {"value": "University of Michigan", "data": {"id": "grid.214458.e", "name": "University of Michigan"}},
    {"value": "Michigan State University", "data": {"id": "grid.17088.36", "name": "Michigan State University"}},
    {"value": "broken", "data": {}}
  ]
}`

func completionServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != CompletionPath {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "michigan", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func TestSuggest(t *testing.T) {
	ts := completionServer(t, sampleCompletionJSON)
	defer ts.Close()

	c := httputil.NewClient(types.HTTPConfig{}, ts.URL, nil)
	got, err := Suggest(context.Background(), c, " michigan ")
	require.NoError(t, err)

	assert.Equal(t, []types.Organization{
		{ID: "grid.214458.e", Name: "University of Michigan"},
		{ID: "grid.17088.36", Name: "Michigan State University"},
	}, got)
}

func TestSuggestMissingKey(t *testing.T) {
	ts := completionServer(t, `{"results": []}`)
	defer ts.Close()

	c := httputil.NewClient(types.HTTPConfig{}, ts.URL, nil)
	_, err := Suggest(context.Background(), c, "michigan")

	var me *httputil.MalformedResponseError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "suggestions", me.Key)
}

func TestSuggestEmptyQuery(t *testing.T) {
	_, err := Suggest(context.Background(), nil, "   ")
	assert.Error(t, err)
}

var testOrgs = []types.Organization{
	{ID: "grid.1", Name: "Alpha University"},
	{ID: "grid.2", Name: "Beta Institute"},
}

func TestSelectValid(t *testing.T) {
	var out bytes.Buffer
	got, err := Select(strings.NewReader("2\n"), &out, testOrgs, 3)
	require.NoError(t, err)
	assert.Equal(t, "grid.2", got.ID)
	assert.Contains(t, out.String(), "Alpha University")
	assert.Contains(t, out.String(), "[1-2]")
}

func TestSelectRetriesInvalidInput(t *testing.T) {
	var out bytes.Buffer
	got, err := Select(strings.NewReader("zero\n7\n1\n"), &out, testOrgs, 3)
	require.NoError(t, err)
	assert.Equal(t, "grid.1", got.ID)
	assert.Equal(t, 2, strings.Count(out.String(), "invalid choice"))
}

func TestSelectGivesUp(t *testing.T) {
	var out bytes.Buffer
	_, err := Select(strings.NewReader("x\ny\nz\n1\n"), &out, testOrgs, 3)
	assert.True(t, errors.Is(err, ErrNoSelection))
	assert.Equal(t, 3, strings.Count(out.String(), "invalid choice"))
}

func TestSelectInputClosed(t *testing.T) {
	_, err := Select(strings.NewReader(""), &bytes.Buffer{}, testOrgs, 3)
	assert.True(t, errors.Is(err, ErrNoSelection))
}

func TestSelectNoOrgs(t *testing.T) {
	_, err := Select(strings.NewReader("1\n"), &bytes.Buffer{}, nil, 3)
	assert.True(t, errors.Is(err, ErrNoSelection))
}
