// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grant-harvester/pkg/types"
)

// Document is the JSON and YAML artifact layout.
type Document struct {
	Run         RunInfo            `json:"run" yaml:"run"`
	Grants      []types.Row        `json:"grants" yaml:"grants"`
	Researchers []types.Researcher `json:"researchers,omitempty" yaml:"researchers,omitempty"`
}

// RunInfo identifies the run that produced a document.
type RunInfo struct {
	ID          string    `json:"id" yaml:"id"`
	OrgID       string    `json:"org_id" yaml:"org_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Grants      int       `json:"grants" yaml:"grants"`
}

func newDocument(ds Dataset) Document {
	rows := ds.Rows
	if rows == nil {
		rows = []types.Row{}
	}
	return Document{
		Run: RunInfo{
			ID:          ds.RunID,
			OrgID:       ds.OrgID,
			GeneratedAt: ds.GeneratedAt.UTC(),
			Grants:      len(ds.Rows),
		},
		Grants:      rows,
		Researchers: ds.Researchers,
	}
}

// WriteJSON writes ds as indented JSON.
func WriteJSON(w io.Writer, ds Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(ds))
}

// WriteYAML writes ds as YAML.
func WriteYAML(w io.Writer, ds Dataset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(ds)); err != nil {
		return err
	}
	return enc.Close()
}
