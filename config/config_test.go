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

package config

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/metaprep/abundance"
	"github.com/exascience/metaprep/cooccur"
)

func TestDefault(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())
	options := config.Options()
	assert.Equal(t, abundance.DefaultSegregationOptions, options.Segregation)
	assert.Equal(t, []string{"Bacteria"}, options.Kingdoms)
	assert.Equal(t, 0.01, options.Threshold)
	assert.Equal(t, 0.05, options.MinFraction)
	assert.True(t, options.DropEmptySamples)
	assert.Equal(t, cooccur.DefaultCutoff, options.Cutoff)
	assert.Empty(t, options.Pinned)
}

func TestDecode(t *testing.T) {
	config, err := Decode(strings.NewReader(`
[kingdom]
retain = ["Bacteria", "Fungi"]

[prevalence]
min_fraction = 0.1

[cooccurrence]
pinned = "Enterobacter bugandensis"
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bacteria", "Fungi"}, config.Kingdom.Retain)
	assert.Equal(t, 0.1, config.Prevalence.MinFraction)
	assert.Equal(t, 0.01, config.Prevalence.Threshold, "default kept")
	assert.Equal(t, "Enterobacter bugandensis", config.Options().Pinned)
}

func TestDecodeInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":       "[prevalence\nthreshold = 1",
		"unknown":      "[prevalence]\nthreshhold = 0.1",
		"fraction":     "[prevalence]\nmin_fraction = 1.5",
		"threshold":    "[prevalence]\nthreshold = -0.1",
		"cutoff":       "[cooccurrence]\ncutoff = -1.0",
		"kingdoms":     "[kingdom]\nretain = []",
		"suffixes":     "[segregation]\ncount_suffix = \"frac\"",
		"cache size":   "[taxonomy]\ncache_size = -4",
		"workers":      "[taxonomy]\nworkers = -1",
		"empty suffix": "[segregation]\ncount_suffix = \"\"",
		"empty id":     "[segregation]\nid_column = \"\"",
		"same columns": "[segregation]\nid_column = \"name\"",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestDecodeSegregationColumns(t *testing.T) {
	config, err := Decode(strings.NewReader(`
[segregation]
identifiers = ["taxid", "name", "kraken_assigned_reads"]
id_column = "taxid"
`))
	require.NoError(t, err)
	options := config.Options().Segregation
	assert.Equal(t, []string{"taxid", "name", "kraken_assigned_reads"}, options.Identifiers)
	assert.Equal(t, "taxid", options.IDColumn)
	assert.Equal(t, abundance.NameColumn, options.NameColumn)
	assert.Equal(t, abundance.TaxonomyLvlColumn, options.RankColumn)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metaprep.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cooccurrence]\ncutoff = 0.05\n"), 0o600))
	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.05, config.CoOccurrence.Cutoff)

	_, err = Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestService(t *testing.T) {
	_, _, err := Default().Service()
	assert.True(t, errors.Is(err, ErrInvalid))

	path := filepath.Join(t.TempDir(), "taxa.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, statement := range []string{
		`CREATE TABLE species (taxid INT PRIMARY KEY, parent INT, spname TEXT, common TEXT, rank TEXT, track TEXT)`,
		`CREATE TABLE merged (taxid_old INT PRIMARY KEY, taxid_new INT)`,
		`INSERT INTO species VALUES (1, 1, 'root', '', 'no rank', '1')`,
		`INSERT INTO species VALUES (2, 1, 'Bacteria', '', 'superkingdom', '2,1')`,
	} {
		_, err := db.Exec(statement)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	for _, cacheSize := range []int{0, 8} {
		config := Default()
		config.Taxonomy.Database = path
		config.Taxonomy.CacheSize = cacheSize
		config.Taxonomy.Workers = 2
		service, closeService, err := config.Service()
		require.NoError(t, err)
		resolver := config.Resolver(service)
		assert.Equal(t, 2, resolver.Workers)
		lineage, err := resolver.Resolve(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"root", "Bacteria"}, lineage)
		require.NoError(t, closeService())
	}
}
