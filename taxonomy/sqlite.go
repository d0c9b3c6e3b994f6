// metaPrep: filtering and co-occurrence analysis of taxonomic abundance tables.
// Copyright (c) 2023 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/metaprep/blob/master/LICENSE.txt>.

package taxonomy

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// An SQLiteService reads the taxa.sqlite database of the ete toolkit,
// as created by NCBITaxa. It uses the species table, whose track column
// holds the comma-separated lineage from a taxon up to the root, and
// the merged table, which maps retired identifiers to current ones.
type SQLiteService struct {
	db *sql.DB
}

// OpenSQLite opens the existing taxa.sqlite database at path.
func OpenSQLite(path string) (*SQLiteService, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "opening taxonomy database %v", path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening taxonomy database %v", path)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "opening taxonomy database %v", path)
	}
	return NewSQLiteService(db), nil
}

// NewSQLiteService returns a service that queries db.
func NewSQLiteService(db *sql.DB) *SQLiteService {
	return &SQLiteService{db: db}
}

// Close closes the underlying database.
func (s *SQLiteService) Close() error {
	return s.db.Close()
}

func (s *SQLiteService) merged(ctx context.Context, id int64) (int64, bool, error) {
	var current int64
	err := s.db.QueryRowContext(ctx, `SELECT taxid_new FROM merged WHERE taxid_old = ?`, id).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	case err != nil:
		return 0, false, errors.Wrapf(err, "querying merged taxonomy id %v", id)
	}
	return current, true, nil
}

// Lineage implements the Service interface. Retired identifiers are
// followed to their current identifier.
func (s *SQLiteService) Lineage(ctx context.Context, id int64) ([]int64, error) {
	var track string
	err := s.db.QueryRowContext(ctx, `SELECT track FROM species WHERE taxid = ?`, id).Scan(&track)
	if errors.Is(err, sql.ErrNoRows) {
		current, found, merr := s.merged(ctx, id)
		if merr != nil {
			return nil, merr
		}
		if !found {
			return nil, unknownID(id)
		}
		err = s.db.QueryRowContext(ctx, `SELECT track FROM species WHERE taxid = ?`, current).Scan(&track)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrLookup, "taxonomy id %v merged into unknown id %v", id, current)
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying lineage of taxonomy id %v", id)
	}
	fields := strings.Split(track, ",")
	lineage := make([]int64, len(fields))
	for i, field := range fields {
		ancestor, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrLookup, "malformed lineage %q for taxonomy id %v", track, id)
		}
		lineage[len(fields)-1-i] = ancestor
	}
	return lineage, nil
}

// Translate implements the Service interface. Retired identifiers are
// translated to the name of their current identifier.
func (s *SQLiteService) Translate(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `SELECT taxid, spname FROM species WHERE taxid IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying taxonomy names")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, errors.Wrap(err, "scanning taxonomy names")
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying taxonomy names")
	}
	for _, id := range ids {
		if _, found := names[id]; found {
			continue
		}
		current, found, err := s.merged(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		var name string
		err = s.db.QueryRowContext(ctx, `SELECT spname FROM species WHERE taxid = ?`, current).Scan(&name)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, errors.Wrapf(err, "querying name of taxonomy id %v", current)
		default:
			names[id] = name
		}
	}
	return names, nil
}
