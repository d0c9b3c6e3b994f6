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
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, samples []string, names []string, values [][]float64) *Table {
	t.Helper()
	taxa := make([]Taxon, len(names))
	for i, name := range names {
		taxa[i] = Taxon{ID: int64(i + 1), Name: name}
	}
	table, err := NewTable(samples, taxa, values)
	require.NoError(t, err)
	return table
}

func TestNewTableValidation(t *testing.T) {
	taxa := []Taxon{{Name: "A"}, {Name: "B"}}
	_, err := NewTable([]string{"X", "Y"}, taxa, [][]float64{{1, 2}, {3}})
	assert.True(t, errors.Is(err, ErrSchema), "ragged")

	_, err = NewTable([]string{"X", "Y"}, taxa, [][]float64{{1, 2}})
	assert.True(t, errors.Is(err, ErrSchema), "missing row")

	_, err = NewTable([]string{"X", "X"}, taxa, [][]float64{{1, 2}, {3, 4}})
	assert.True(t, errors.Is(err, ErrSchema), "duplicate sample")

	_, err = NewTable([]string{"X"}, taxa, [][]float64{{1}, {math.NaN()}})
	assert.True(t, errors.Is(err, ErrSchema), "NaN")

	_, err = NewTable([]string{"X"}, taxa, [][]float64{{1}, {-1}})
	assert.True(t, errors.Is(err, ErrSchema), "negative")
}

func TestTableCopiesArguments(t *testing.T) {
	samples := []string{"X"}
	taxa := []Taxon{{Name: "A", Lineage: []string{"root", "A"}}}
	values := [][]float64{{1}}
	table, err := NewTable(samples, taxa, values)
	require.NoError(t, err)

	samples[0] = "Z"
	taxa[0].Lineage[0] = "changed"
	values[0][0] = 42
	assert.Equal(t, "X", table.Sample(0))
	assert.Equal(t, []string{"root", "A"}, table.Taxon(0).Lineage)
	assert.Equal(t, 1.0, table.Value(0, 0))

	row := table.Row(0)
	row[0] = 7
	assert.Equal(t, 1.0, table.Value(0, 0))
}

func TestNameIndex(t *testing.T) {
	table := mustTable(t, []string{"X"}, []string{"A", "B"}, [][]float64{{1}, {2}})
	index, err := table.NameIndex()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 0, "B": 1}, index)

	i, err := table.Lookup("B")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = table.Lookup("C")
	assert.True(t, errors.Is(err, ErrNotFound))

	duplicates := mustTable(t, []string{"X"}, []string{"A", "A"}, [][]float64{{1}, {2}})
	_, err = duplicates.NameIndex()
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	_, err = duplicates.Lookup("A")
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestSubsetAndSelectSamples(t *testing.T) {
	table := mustTable(t, []string{"X", "Y", "Z"}, []string{"A", "B", "C"},
		[][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})

	rows := bitset.New(3).Set(0).Set(2)
	subset := table.Subset(rows)
	assert.Equal(t, []string{"A", "C"}, subset.Names())
	assert.Equal(t, []float64{7, 8, 9}, subset.Row(1))

	columns := bitset.New(3).Set(1)
	selected := table.SelectSamples(columns)
	assert.Equal(t, []string{"Y"}, selected.Samples())
	assert.Equal(t, []float64{2, 5, 8}, selected.Column(0))
	assert.Equal(t, 3, table.NumSamples())
}

func TestTaxonKind(t *testing.T) {
	bacterium := Taxon{Lineage: []string{"root", "cellular organisms", "Bacteria", "Enterobacter"}}
	fungus := Taxon{Lineage: []string{"root", "Eukaryota", "Fungi", "Candida"}}
	other := Taxon{Lineage: []string{"root", "Viruses"}}
	lowercase := Taxon{Lineage: []string{"root", "bacteria"}}

	assert.Equal(t, Bacteria, bacterium.Kind())
	assert.Equal(t, Fungi, fungus.Kind())
	assert.Equal(t, Unknown, other.Kind())
	assert.Equal(t, Unknown, lowercase.Kind())
	assert.Equal(t, Unknown, Taxon{}.Kind())
}

func TestAnnotate(t *testing.T) {
	table := mustTable(t, []string{"X"}, []string{"A", "B"}, [][]float64{{1}, {2}})
	annotated, err := table.Annotate([][]string{{"root", "Bacteria", "A"}, nil})
	require.NoError(t, err)
	assert.Equal(t, Bacteria, annotated.Taxon(0).Kind())
	assert.Nil(t, annotated.Taxon(1).Lineage)
	assert.Nil(t, table.Taxon(0).Lineage)

	_, err = table.Annotate(nil)
	assert.True(t, errors.Is(err, ErrSchema))
}
