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
	"math"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinSamples(t *testing.T) {
	assert.Equal(t, 1, MinSamples(2, 0.5))
	assert.Equal(t, 0, MinSamples(9, 0.1))
	assert.Equal(t, 1, MinSamples(10, 0.1))
	assert.Equal(t, 2, MinSamples(45, 0.05))
	assert.Equal(t, 0, MinSamples(20, 0))
}

func TestFilterPrevalenceInclusiveThreshold(t *testing.T) {
	table := mustTable(t, []string{"X", "Y"}, []string{"A", "B", "C"},
		[][]float64{{0.5, 0}, {0.49, 0.2}, {0, 0.5}})
	filtered, err := FilterPrevalence(table, 0.5, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, filtered.Names())

	filtered, err = FilterPrevalence(table, 0.5, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, filtered.Len())
}

func TestFilterPrevalenceEdgeCases(t *testing.T) {
	table := mustTable(t, []string{"X", "Y"}, []string{"A", "B"}, [][]float64{{0, 0}, {1, 0}})

	all, err := FilterPrevalence(table, 0.9, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, all.Names())

	all, err = FilterPrevalence(table, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, all.Names())
}

func TestFilterPrevalenceInvalidArguments(t *testing.T) {
	table := mustTable(t, []string{"X"}, []string{"A"}, [][]float64{{1}})
	for _, args := range [][2]float64{{-0.1, 0.5}, {math.NaN(), 0.5}, {0.1, -0.5}, {0.1, 1.5}, {0.1, math.NaN()}} {
		_, err := FilterPrevalence(table, args[0], args[1])
		assert.True(t, errors.Is(err, ErrInvalidArgument), "%v", args)
	}
}

func isSubset(small, large []string) bool {
	set := make(map[string]bool, len(large))
	for _, name := range large {
		set[name] = true
	}
	for _, name := range small {
		if !set[name] {
			return false
		}
	}
	return true
}

func TestFilterPrevalenceMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		table, _ := DropEmptySamples(randomTable(t, rng, 25, 10))
		normalized, err := Normalize(table)
		require.NoError(t, err)

		threshold := rng.Float64() * 0.2
		fraction := rng.Float64() * 0.8
		base, err := FilterPrevalence(normalized, threshold, fraction)
		require.NoError(t, err)

		higherThreshold, err := FilterPrevalence(normalized, threshold+0.05, fraction)
		require.NoError(t, err)
		assert.True(t, isSubset(higherThreshold.Names(), base.Names()))

		higherFraction, err := FilterPrevalence(normalized, threshold, fraction+0.2)
		require.NoError(t, err)
		assert.True(t, isSubset(higherFraction.Names(), base.Names()))
	}
}
