// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the grant-harvester pipeline:
// harvested grants and their researchers, result pages, flat output rows, and
// stage configuration.
package types

import (
	"bytes"
	"encoding/json"
)

// Scalar is an optional free-form value taken from the remote JSON payload.
// A missing key or a JSON null leaves it absent; any other scalar is kept in
// its textual form (numbers verbatim, strings unquoted).
type Scalar struct {
	Value string
	Valid bool
}

// Some returns a present Scalar holding s.
func Some(s string) Scalar {
	return Scalar{Value: s, Valid: true}
}

// String returns the value, or "" when absent.
func (s Scalar) String() string {
	if !s.Valid {
		return ""
	}
	return s.Value
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Scalar{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Some(str)
		return nil
	}
	// Numbers, booleans and nested values keep their compact JSON text.
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*s = Some(buf.String())
	return nil
}

// MarshalJSON implements json.Marshaler; absent values encode as null.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// MarshalYAML implements yaml.Marshaler; absent values encode as null.
func (s Scalar) MarshalYAML() (any, error) {
	if !s.Valid {
		return nil, nil
	}
	return s.Value, nil
}

// Grant is one harvested record from the discovery search endpoint.
type Grant struct {
	// ID is the opaque grant identifier, unique within a harvest.
	ID string `json:"id"`

	Title          Scalar `json:"title"`
	Abstract       Scalar `json:"short_abstract"`
	FundingAmount  Scalar `json:"funding_amount"`
	FundingOrgName Scalar `json:"funding_org_name"`

	// StartDateRaw and EndDateRaw are free text that embed a YYYY-MM-DD date.
	StartDateRaw Scalar `json:"start_date"`
	EndDateRaw   Scalar `json:"end_date"`

	Linkout Scalar `json:"linkout"`

	// NavigationPath is the service-relative path of the grant's detail page.
	NavigationPath Scalar `json:"navigation_path"`

	// Researchers is nil when the payload carried no researcher_details.
	Researchers []Researcher `json:"researcher_details,omitempty"`
}

// Researcher is a person attached to a grant.
type Researcher struct {
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`

	// GrantID refers back to the owning grant. It is stamped during
	// harvesting and used only for cross-referencing.
	GrantID string `json:"grant_id" yaml:"grant_id"`
}

// FullName returns "First Last".
func (r Researcher) FullName() string {
	return r.FirstName + " " + r.LastName
}

// Page is one decoded response from the search endpoint.
type Page struct {
	Docs []Grant

	// Count is the server's claim of the full result-set size. It is re-read
	// on every page and the latest value wins.
	Count int

	// Next is the opaque relative path of the following page, or "" when the
	// server did not supply one.
	Next string
}

// Organization is a research organization suggested by the completion endpoint.
type Organization struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
