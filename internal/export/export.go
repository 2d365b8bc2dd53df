// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the single artifact produced by a harvest run, as
// CSV, JSON, YAML or a SQLite database.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/grant-harvester/pkg/types"
)

// Dataset is everything a run hands to the exporter.
type Dataset struct {
	RunID       string
	OrgID       string
	GeneratedAt time.Time
	Rows        []types.Row
	Researchers []types.Researcher
}

// DefaultPath returns the artifact path used when none is configured.
func DefaultPath(format types.OutputFormat) string {
	ext := string(format)
	if format == types.FormatSQLite {
		ext = "db"
	}
	return filepath.Join("results", "grants."+ext)
}

// ResearchersPath returns the sibling CSV path for the researcher table,
// e.g. results/grants.csv → results/grants-researchers.csv.
func ResearchersPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-researchers" + ext
}

// Write exports ds according to cfg and returns the paths written. The
// researcher table is included only when cfg.Researchers is set.
func Write(ctx context.Context, cfg types.OutputConfig, ds Dataset) ([]string, error) {
	format := cfg.Format
	if format == "" {
		format = types.FormatCSV
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath(format)
	}
	if !cfg.Researchers {
		ds.Researchers = nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	switch format {
	case types.FormatCSV:
		if err := writeAtomic(path, func(w io.Writer) error { return WriteCSV(w, ds.Rows) }); err != nil {
			return nil, err
		}
		if !cfg.Researchers {
			return []string{path}, nil
		}
		rpath := ResearchersPath(path)
		if err := writeAtomic(rpath, func(w io.Writer) error { return WriteResearchersCSV(w, ds.Researchers) }); err != nil {
			return nil, err
		}
		return []string{path, rpath}, nil
	case types.FormatJSON:
		if err := writeAtomic(path, func(w io.Writer) error { return WriteJSON(w, ds) }); err != nil {
			return nil, err
		}
	case types.FormatYAML:
		if err := writeAtomic(path, func(w io.Writer) error { return WriteYAML(w, ds) }); err != nil {
			return nil, err
		}
	case types.FormatSQLite:
		if err := writeSQLite(ctx, path, ds); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q: use csv, json, yaml or sqlite", format)
	}
	return []string{path}, nil
}

// writeAtomic writes to a temp file in path's directory and renames it into
// place on success.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := write(tmpFile)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
