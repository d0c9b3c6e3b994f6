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

package abundance

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomTable(t *testing.T, rng *rand.Rand, taxa, samples int) *Table {
	t.Helper()
	sampleIDs := make([]string, samples)
	for j := range sampleIDs {
		sampleIDs[j] = string(rune('a'+j%26)) + string(rune('0'+j/26))
	}
	names := make([]string, taxa)
	values := make([][]float64, taxa)
	for i := range values {
		names[i] = "taxon" + string(rune('A'+i%26)) + string(rune('0'+i/26))
		values[i] = make([]float64, samples)
		for j := range values[i] {
			if rng.Intn(3) > 0 {
				values[i][j] = float64(rng.Intn(1000))
			}
		}
	}
	return mustTable(t, sampleIDs, names, values)
}

func TestNormalizeColumnSums(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 20; round++ {
		table, _ := DropEmptySamples(randomTable(t, rng, 1+rng.Intn(30), 1+rng.Intn(12)))
		normalized, err := Normalize(table)
		require.NoError(t, err)
		for _, sum := range normalized.ColumnSums() {
			assert.InDelta(t, 1.0, sum, 1e-9)
		}
	}
}

func TestNormalizeValues(t *testing.T) {
	table := mustTable(t, []string{"X", "Y"}, []string{"A", "C"}, [][]float64{{10, 0}, {2, 8}})
	normalized, err := Normalize(table)
	require.NoError(t, err)
	assert.InDelta(t, 10.0/12, normalized.Value(0, 0), 1e-12)
	assert.InDelta(t, 2.0/12, normalized.Value(1, 0), 1e-12)
	assert.Equal(t, 0.0, normalized.Value(0, 1))
	assert.Equal(t, 1.0, normalized.Value(1, 1))
	assert.Equal(t, 10.0, table.Value(0, 0), "input must not change")
}

func TestNormalizeDivisionByZero(t *testing.T) {
	table := mustTable(t, []string{"X", "Y", "Z"}, []string{"A", "B"}, [][]float64{{1, 0, 2}, {3, 0, 0}})
	_, err := Normalize(table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDivisionByZero))
	assert.Equal(t, []string{"Y"}, EmptySamples(table))

	dropped, samples := DropEmptySamples(table)
	assert.Equal(t, []string{"Y"}, samples)
	assert.Equal(t, []string{"X", "Z"}, dropped.Samples())
	normalized, err := Normalize(dropped)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 1}, normalized.Row(0))
}

func TestDropEmptySamplesKeepsTable(t *testing.T) {
	table := mustTable(t, []string{"X"}, []string{"A"}, [][]float64{{1}})
	same, dropped := DropEmptySamples(table)
	assert.Same(t, table, same)
	assert.Nil(t, dropped)
}
