// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil is the stateless JSON transport shared by every stage:
// one GET per call, typed errors for failed statuses and undecodable bodies,
// and no retry unless the caller opts in.
package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/grant-harvester/internal/logging"
	"github.com/pdiddy/grant-harvester/pkg/types"
)

const (
	// DefaultTimeout applies when HTTPConfig.Timeout is zero.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent applies when HTTPConfig.UserAgent is empty.
	DefaultUserAgent = "grant-harvester/0.1"
)

// Client fetches JSON documents from one service origin.
type Client struct {
	HTTP       *http.Client
	Origin     string
	UserAgent  string
	MaxRetries int
	Metrics    *Metrics
	Logger     zerolog.Logger
}

// NewClient builds a Client for origin from cfg. m may be nil.
func NewClient(cfg types.HTTPConfig, origin string, m *Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		Origin:     strings.TrimSuffix(origin, "/"),
		UserAgent:  ua,
		MaxRetries: cfg.MaxRetries,
		Metrics:    m,
		Logger:     logging.NewLogger("transport"),
	}
}

// FetchJSON GETs Origin+path with params appended to any query the path
// already carries, and decodes the JSON body into v. endpoint is a short,
// fixed label used for metrics and logs.
//
// A status outside 2xx yields *RemoteError; a body that does not decode
// yields *MalformedResponseError. Network failures and timeouts are returned
// wrapped.
func (c *Client) FetchJSON(ctx context.Context, endpoint, path string, params url.Values, v any) error {
	reqURL := BuildURL(c.Origin, path, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		c.Metrics.observe(endpoint, 0, time.Since(start))
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.Metrics.observe(endpoint, resp.StatusCode, time.Since(start))
	c.Logger.Debug().
		Str("endpoint", endpoint).
		Str("url", reqURL).
		Int("status_code", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request complete")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{StatusCode: resp.StatusCode, URL: reqURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &MalformedResponseError{URL: reqURL, Err: err}
	}
	return nil
}

// BuildURL joins origin and path and appends params, using "&" when path
// already carries a query string.
func BuildURL(origin, path string, params url.Values) string {
	u := origin + path
	if len(params) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return u + sep + params.Encode()
}
