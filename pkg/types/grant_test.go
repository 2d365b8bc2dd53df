// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Scalar
	}{
		{"string", `"hello"`, Some("hello")},
		{"empty string is present", `""`, Some("")},
		{"integer", `125000`, Some("125000")},
		{"float", `125000.5`, Some("125000.5")},
		{"bool", `true`, Some("true")},
		{"null is absent", `null`, Scalar{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Scalar
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestGrantMissingKeysStayAbsent(t *testing.T) {
	var g Grant
	err := json.Unmarshal([]byte(`{"id":"g1","title":"Quantum","funding_amount":5000}`), &g)
	require.NoError(t, err)

	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, Some("Quantum"), g.Title)
	assert.Equal(t, Some("5000"), g.FundingAmount)
	assert.False(t, g.StartDateRaw.Valid)
	assert.False(t, g.NavigationPath.Valid)
	assert.Nil(t, g.Researchers)
}

func TestGrantResearcherDetails(t *testing.T) {
	var g Grant
	err := json.Unmarshal([]byte(`{"id":"g1","researcher_details":[{"first_name":"Ada","last_name":"Lovelace","orcid":"x"}]}`), &g)
	require.NoError(t, err)

	require.Len(t, g.Researchers, 1)
	assert.Equal(t, "Ada Lovelace", g.Researchers[0].FullName())
	assert.Empty(t, g.Researchers[0].GrantID)
}

func TestScalarMarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Scalar `json:"a"`
		B Scalar `json:"b"`
	}{A: Some("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":null}`, string(data))
}

func TestRowValues(t *testing.T) {
	r := Row{
		ID:          "g1",
		Title:       Some("T"),
		StartDate:   Some("2021-05-01"),
		Researchers: "Ada Lovelace",
		Fields:      "Physics",
		Link:        Some("https://example.org/grant/g1"),
	}
	got := r.Values()
	require.Len(t, got, len(Columns))
	assert.Equal(t, []string{"g1", "T", "2021-05-01", "", "", "Ada Lovelace", "", "", "Physics", "https://example.org/grant/g1", ""}, got)
}
