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
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTaxaDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxa.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()
	statements := []string{
		`CREATE TABLE species (taxid INT PRIMARY KEY, parent INT, spname VARCHAR(50) COLLATE NOCASE, common VARCHAR(50) COLLATE NOCASE, rank VARCHAR(50), track TEXT)`,
		`CREATE TABLE merged (taxid_old INT PRIMARY KEY, taxid_new INT)`,
		`INSERT INTO species VALUES (1, 1, 'root', '', 'no rank', '1')`,
		`INSERT INTO species VALUES (2, 131567, 'Bacteria', '', 'superkingdom', '2,131567,1')`,
		`INSERT INTO species VALUES (131567, 1, 'cellular organisms', '', 'no rank', '131567,1')`,
		`INSERT INTO species VALUES (547, 2, 'Enterobacter', '', 'genus', '547,2,131567,1')`,
		`INSERT INTO merged VALUES (1234, 547)`,
	}
	for _, statement := range statements {
		_, err := db.Exec(statement)
		require.NoError(t, err, statement)
	}
	return path
}

func TestSQLiteService(t *testing.T) {
	service, err := OpenSQLite(createTaxaDatabase(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, service.Close()) }()
	ctx := context.Background()

	lineage, err := service.Lineage(ctx, 547)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 131567, 2, 547}, lineage)

	lineage, err = service.Lineage(ctx, 1234)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 131567, 2, 547}, lineage, "merged id")

	_, err = service.Lineage(ctx, 999)
	assert.True(t, errors.Is(err, ErrLookup))

	names, err := service.Translate(ctx, []int64{1, 547, 1234, 999})
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{1: "root", 547: "Enterobacter", 1234: "Enterobacter"}, names)

	resolved, err := NewResolver(service).Resolve(ctx, 547)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "cellular organisms", "Bacteria", "Enterobacter"}, resolved)
}

func TestOpenSQLiteMissingFile(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "absent.sqlite"))
	assert.Error(t, err)
}
