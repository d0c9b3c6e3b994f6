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

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
)

// Default prevalence filter parameters.
const (
	DefaultThreshold   = 0.01
	DefaultMinFraction = 0.1
)

// MinSamples returns the number of samples in which a taxon has to
// reach the threshold to pass a prevalence filter with the given
// minimum fraction: floor(samples * minFraction).
func MinSamples(samples int, minFraction float64) int {
	return int(math.Floor(float64(samples) * minFraction))
}

func checkPrevalenceArguments(threshold, minFraction float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold < 0 {
		return errors.Wrapf(ErrInvalidArgument, "threshold %v", threshold)
	}
	if math.IsNaN(minFraction) || minFraction < 0 || minFraction > 1 {
		return errors.Wrapf(ErrInvalidArgument, "minimum sample fraction %v", minFraction)
	}
	return nil
}

// PrevalenceMask returns the rows of t whose abundance is at least
// threshold in at least MinSamples(t.NumSamples(), minFraction)
// samples.
func PrevalenceMask(t *Table, threshold, minFraction float64) (*bitset.BitSet, error) {
	if err := checkPrevalenceArguments(threshold, minFraction); err != nil {
		return nil, err
	}
	minColumns := MinSamples(len(t.samples), minFraction)
	reaches := func(value float64) bool { return value >= threshold }
	keep := bitset.New(uint(len(t.taxa)))
	for i := range t.taxa {
		if floats.Count(reaches, t.row(i)) >= minColumns {
			keep.Set(uint(i))
		}
	}
	return keep, nil
}

// FilterPrevalence returns the rows of t whose abundance is at least
// threshold in at least floor(samples * minFraction) samples. The
// threshold is inclusive. A minFraction of 0 keeps every row.
func FilterPrevalence(t *Table, threshold, minFraction float64) (*Table, error) {
	keep, err := PrevalenceMask(t, threshold, minFraction)
	if err != nil {
		return nil, err
	}
	return t.Subset(keep), nil
}
