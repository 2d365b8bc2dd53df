// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import "fmt"

// RemoteError reports a non-success HTTP status from the remote service.
type RemoteError struct {
	StatusCode int
	URL        string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote returned HTTP %d for %s", e.StatusCode, e.URL)
}

// MalformedResponseError reports a response body that is not JSON or lacks an
// expected key.
type MalformedResponseError struct {
	URL string
	// Key names the missing or invalid key, when known.
	Key string
	Err error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	switch {
	case e.Key != "" && e.Err != nil:
		return fmt.Sprintf("malformed response from %s: key %q: %v", e.URL, e.Key, e.Err)
	case e.Key != "":
		return fmt.Sprintf("malformed response from %s: missing key %q", e.URL, e.Key)
	default:
		return fmt.Sprintf("malformed response from %s: %v", e.URL, e.Err)
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
