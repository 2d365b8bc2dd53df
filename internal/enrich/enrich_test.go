// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grant-harvester/internal/httputil"
	"github.com/pdiddy/grant-harvester/pkg/types"
)

// --- instrumented fake lookup ---

type fakeLookup struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	calls    atomic.Int32

	delay func(id string) time.Duration
	fail  map[string]error
}

func (f *fakeLookup) Fields(ctx context.Context, grantID string) (string, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	if f.delay != nil {
		select {
		case <-time.After(f.delay(grantID)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err, ok := f.fail[grantID]; ok {
		return "", err
	}
	return "fields-" + grantID, nil
}

func makeGrants(n int) []types.Grant {
	grants := make([]types.Grant, n)
	for i := range grants {
		grants[i] = types.Grant{ID: fmt.Sprintf("g%d", i)}
	}
	return grants
}

func testEnricher(l Lookup, concurrency int) *Enricher {
	return New(l, types.EnrichConfig{Concurrency: concurrency}, nil)
}

// --- Enrich ---

func TestEnrichPreservesOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	delays := map[string]time.Duration{}
	grants := makeGrants(60)
	for _, g := range grants {
		delays[g.ID] = time.Duration(rng.Intn(10)) * time.Millisecond
	}

	f := &fakeLookup{delay: func(id string) time.Duration { return delays[id] }}
	results := testEnricher(f, 8).Enrich(context.Background(), grants)

	require.Len(t, results, len(grants))
	for i, g := range grants {
		assert.Equal(t, "fields-"+g.ID, results[i].Value, "index %d", i)
		assert.NoError(t, results[i].Err)
	}
}

func TestEnrichReverseCompletionOrder(t *testing.T) {
	grants := makeGrants(10)
	// Earlier grants finish last.
	f := &fakeLookup{delay: func(id string) time.Duration {
		var n int
		fmt.Sscanf(id, "g%d", &n)
		return time.Duration(10-n) * 3 * time.Millisecond
	}}

	results := testEnricher(f, 10).Enrich(context.Background(), grants)
	assert.Equal(t, []string{
		"fields-g0", "fields-g1", "fields-g2", "fields-g3", "fields-g4",
		"fields-g5", "fields-g6", "fields-g7", "fields-g8", "fields-g9",
	}, Values(results))
}

func TestEnrichBoundsConcurrency(t *testing.T) {
	const limit = 4
	f := &fakeLookup{delay: func(string) time.Duration { return 5 * time.Millisecond }}

	testEnricher(f, limit).Enrich(context.Background(), makeGrants(40))

	assert.Equal(t, int32(40), f.calls.Load())
	assert.LessOrEqual(t, f.maxSeen.Load(), int32(limit))
	assert.Greater(t, f.maxSeen.Load(), int32(1), "lookups should overlap")
}

func TestEnrichDefaultConcurrency(t *testing.T) {
	f := &fakeLookup{delay: func(string) time.Duration { return 5 * time.Millisecond }}

	testEnricher(f, 0).Enrich(context.Background(), makeGrants(50))

	assert.LessOrEqual(t, f.maxSeen.Load(), int32(DefaultConcurrency))
}

func TestEnrichIsolatesFailures(t *testing.T) {
	grants := makeGrants(6)
	boom := errors.New("connection reset")
	f := &fakeLookup{fail: map[string]error{
		"g2": boom,
		"g4": &httputil.RemoteError{StatusCode: http.StatusInternalServerError, URL: "/x"},
	}}

	results := testEnricher(f, 3).Enrich(context.Background(), grants)

	assert.Equal(t, []string{"fields-g0", "fields-g1", "", "fields-g3", "", "fields-g5"}, Values(results))
	assert.ErrorIs(t, results[2].Err, boom)
	var re *httputil.RemoteError
	assert.ErrorAs(t, results[4].Err, &re)
	assert.Equal(t, 2, Failures(results))
}

type panickyLookup struct{}

func (panickyLookup) Fields(_ context.Context, id string) (string, error) {
	if id == "g1" {
		panic("unexpected payload")
	}
	return id, nil
}

func TestEnrichRecoversPanics(t *testing.T) {
	results := testEnricher(panickyLookup{}, 2).Enrich(context.Background(), makeGrants(3))

	assert.Equal(t, []string{"g0", "", "g2"}, Values(results))
	require.Error(t, results[1].Err)
	assert.Contains(t, results[1].Err.Error(), "panicked")
}

func TestEnrichProgressCount(t *testing.T) {
	grants := makeGrants(25)
	f := &fakeLookup{fail: map[string]error{"g3": errors.New("x"), "g7": errors.New("y")}}

	var done atomic.Int32
	e := testEnricher(f, 5)
	e.OnDone = func() { done.Add(1) }
	e.Enrich(context.Background(), grants)

	assert.Equal(t, int32(len(grants)), done.Load())
}

func TestEnrichCancelledContextStartsNoLookups(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	grants := makeGrants(10)
	f := &fakeLookup{}
	var done atomic.Int32
	e := testEnricher(f, 3)
	e.OnDone = func() { done.Add(1) }

	results := e.Enrich(ctx, grants)

	assert.Zero(t, f.calls.Load())
	assert.Equal(t, int32(len(grants)), done.Load())
	require.Len(t, results, len(grants))
	for i, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled, "index %d", i)
	}
}

func TestEnrichTimeoutIsSwallowed(t *testing.T) {
	f := &fakeLookup{delay: func(id string) time.Duration {
		if id == "g1" {
			return time.Second
		}
		return 0
	}}

	e := testEnricher(f, 3)
	e.Timeout = 20 * time.Millisecond
	results := e.Enrich(context.Background(), makeGrants(3))

	assert.Equal(t, []string{"fields-g0", "", "fields-g2"}, Values(results))
	assert.ErrorIs(t, results[1].Err, context.DeadlineExceeded)
}

func TestEnrichEmpty(t *testing.T) {
	results := testEnricher(&fakeLookup{}, 3).Enrich(context.Background(), nil)
	assert.Empty(t, results)
}

func TestEnrichMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	f := &fakeLookup{fail: map[string]error{"g0": errors.New("x")}}

	e := New(f, types.EnrichConfig{Concurrency: 2}, m)
	e.Enrich(context.Background(), makeGrants(4))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.lookups.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

// --- DetailsLookup ---

func TestDetailsPath(t *testing.T) {
	assert.Equal(t, "/details/sources/grant/grant.123/for.json", DetailsPath("grant.123"))
	assert.Equal(t, "/details/sources/grant/a%2Fb/for.json", DetailsPath("a/b"))
}

func detailsServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case DetailsPath("g1"):
			fmt.Fprint(w, `{"entities":[{"details":{"name":"Physics"}},{"details":{"name":"Chemistry"}},{"details":{"name":"Physics"}}]}`)
		case DetailsPath("g2"):
			fmt.Fprint(w, `{"entities":[]}`)
		case DetailsPath("g3"):
			fmt.Fprint(w, `{"other":true}`)
		case DetailsPath("g4"):
			fmt.Fprint(w, `not json`)
		case DetailsPath("g6"):
			fmt.Fprint(w, `{"entities":[{"details":{"name":"Physics"}},{"details":{"name":""}},{"details":{"name":"Physics"}}]}`)
		case DetailsPath("g7"):
			fmt.Fprint(w, `{"entities":[{"details":{"name":"Physics"}},{"details":{}}]}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
}

func TestDetailsLookupFields(t *testing.T) {
	ts := detailsServer(t)
	defer ts.Close()

	d := &DetailsLookup{Fetcher: httputil.NewClient(types.HTTPConfig{}, ts.URL, nil)}

	got, err := d.Fields(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "Physics, Chemistry, Physics", got)

	got, err = d.Fields(context.Background(), "g2")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = d.Fields(context.Background(), "g3")
	var me *httputil.MalformedResponseError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "entities", me.Key)
}

func TestDetailsLookupKeepsEveryEntity(t *testing.T) {
	ts := detailsServer(t)
	defer ts.Close()

	d := &DetailsLookup{Fetcher: httputil.NewClient(types.HTTPConfig{}, ts.URL, nil)}

	got, err := d.Fields(context.Background(), "g6")
	require.NoError(t, err)
	assert.Equal(t, "Physics, , Physics", got)

	_, err = d.Fields(context.Background(), "g7")
	var me *httputil.MalformedResponseError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "entities[1].details.name", me.Key)
}

func TestEnrichOverHTTP(t *testing.T) {
	ts := detailsServer(t)
	defer ts.Close()

	d := &DetailsLookup{Fetcher: httputil.NewClient(types.HTTPConfig{}, ts.URL, nil)}
	grants := []types.Grant{{ID: "g1"}, {ID: "g2"}, {ID: "g3"}, {ID: "g4"}, {ID: "g5"}}

	results := testEnricher(d, 15).Enrich(context.Background(), grants)

	assert.Equal(t, []string{"Physics, Chemistry, Physics", "", "", "", ""}, Values(results))
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	for _, i := range []int{2, 3, 4} {
		assert.Error(t, results[i].Err, "index %d", i)
	}
	assert.True(t, strings.Contains(results[4].Err.Error(), "500"))
}
