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
	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
)

// EmptySamples returns the ids of the samples whose total abundance is
// zero.
func EmptySamples(t *Table) []string {
	var empty []string
	for j, sum := range t.ColumnSums() {
		if sum == 0 {
			empty = append(empty, t.samples[j])
		}
	}
	return empty
}

// DropEmptySamples returns a table without the samples whose total
// abundance is zero, together with the ids of the dropped samples.
func DropEmptySamples(t *Table) (*Table, []string) {
	sums := t.ColumnSums()
	keep := bitset.New(uint(len(sums)))
	var dropped []string
	for j, sum := range sums {
		if sum == 0 {
			dropped = append(dropped, t.samples[j])
		} else {
			keep.Set(uint(j))
		}
	}
	if dropped == nil {
		return t, nil
	}
	return t.SelectSamples(keep), dropped
}

// Normalize converts absolute abundances into relative abundances by
// dividing every value by the total of its sample column, so that each
// column of the result sums to 1.
//
// A sample with zero total abundance cannot be normalized. In that case
// Normalize fails with ErrDivisionByZero and names the offending
// samples; use DropEmptySamples first to exclude them explicitly.
func Normalize(t *Table) (*Table, error) {
	if empty := EmptySamples(t); len(empty) > 0 {
		return nil, errors.WithDetailf(
			errors.Wrapf(ErrDivisionByZero, "%v sample(s) with zero total abundance", len(empty)),
			"samples: %v", empty)
	}
	sums := t.ColumnSums()
	n := len(t.samples)
	values := make([]float64, len(t.values))
	for i := range t.taxa {
		row := values[i*n : (i+1)*n]
		copy(row, t.row(i))
		floats.Div(row, sums)
	}
	return newTable(t.Samples(), t.Taxa(), values), nil
}
