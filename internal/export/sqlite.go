// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/grant-harvester/pkg/types"
)

var sqliteSchema = []string{
	`CREATE TABLE run (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		generated_at TEXT NOT NULL
	)`,
	`CREATE TABLE grants (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		title TEXT,
		start_date TEXT,
		end_date TEXT,
		funding_amount TEXT,
		researchers TEXT NOT NULL,
		funding_org_name TEXT,
		short_abstract TEXT,
		fields TEXT NOT NULL,
		link TEXT,
		linkout TEXT
	)`,
	`CREATE INDEX idx_grants_id ON grants(id)`,
	`CREATE TABLE researchers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		grant_id TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT
	)`,
	`CREATE INDEX idx_researchers_grant_id ON researchers(grant_id)`,
}

// writeSQLite builds a fresh database next to path and renames it into
// place, replacing any earlier artifact.
func writeSQLite(ctx context.Context, path string, ds Dataset) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".export-*.db")
	if err != nil {
		return fmt.Errorf("creating temp database: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	if err := fillSQLite(ctx, tmpPath, ds); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp database: %w", err)
	}
	return nil
}

func fillSQLite(ctx context.Context, path string, ds Dataset) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO run (id, org_id, generated_at) VALUES (?, ?, ?)`,
		ds.RunID, ds.OrgID, ds.GeneratedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	grantStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO grants (position, id, title, start_date, end_date, funding_amount, researchers,
			funding_org_name, short_abstract, fields, link, linkout)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing grant insert: %w", err)
	}
	defer grantStmt.Close()

	for i, r := range ds.Rows {
		_, err := grantStmt.ExecContext(ctx,
			i, r.ID, nullable(r.Title), nullable(r.StartDate), nullable(r.EndDate),
			nullable(r.FundingAmount), r.Researchers, nullable(r.FundingOrgName),
			nullable(r.ShortAbstract), r.Fields, nullable(r.Link), nullable(r.Linkout),
		)
		if err != nil {
			return fmt.Errorf("inserting grant %s: %w", r.ID, err)
		}
	}

	researcherStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO researchers (grant_id, first_name, last_name) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing researcher insert: %w", err)
	}
	defer researcherStmt.Close()

	for _, r := range ds.Researchers {
		if _, err := researcherStmt.ExecContext(ctx, r.GrantID, r.FirstName, r.LastName); err != nil {
			return fmt.Errorf("inserting researcher for %s: %w", r.GrantID, err)
		}
	}

	return tx.Commit()
}

func nullable(s types.Scalar) sql.NullString {
	return sql.NullString{String: s.Value, Valid: s.Valid}
}
