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

// Package cooccur finds the taxa that co-occur with a pinned organism.
//
// Extract restricts a relative abundance table to the samples in which
// the pinned organism is present, and then records for each of these
// samples which taxa exceed a presence cutoff. Presence is computed as
// one bitset over the taxa per sample, so the result is the sparse
// (sample, taxon) relation of the table cells above the cutoff.
package cooccur

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/exascience/pargo/parallel"

	"github.com/exascience/metaprep/abundance"
)

// DefaultCutoff is the default presence cutoff.
const DefaultCutoff = 0.01

// A Pair is one element of the co-occurrence relation.
type Pair struct {
	Sample, Taxon string
}

// A Result holds, for every sample in which the pinned organism is
// present, the taxa that exceed the presence cutoff in that sample.
// The pinned organism itself is listed whenever its own abundance
// exceeds the cutoff.
type Result struct {
	Pinned string
	Cutoff float64

	samples []string
	taxa    map[string][]string
}

// Samples returns the samples in which the pinned organism is present,
// in table column order.
func (r *Result) Samples() []string {
	return append([]string(nil), r.samples...)
}

// Taxa returns the taxa that exceed the cutoff in the given sample, in
// table row order. It returns nil for samples not in the result.
func (r *Result) Taxa(sample string) []string {
	taxa, found := r.taxa[sample]
	if !found {
		return nil
	}
	return append([]string{}, taxa...)
}

// Map returns the result as a mapping from sample to taxa. Every
// sample of the result is a key, even if no taxon exceeds the cutoff
// in that sample.
func (r *Result) Map() map[string][]string {
	result := make(map[string][]string, len(r.taxa))
	for sample, taxa := range r.taxa {
		result[sample] = append([]string{}, taxa...)
	}
	return result
}

// Pairs returns the co-occurrence relation as (sample, taxon) pairs,
// ordered by sample and then by taxon in table order.
func (r *Result) Pairs() []Pair {
	var pairs []Pair
	for _, sample := range r.samples {
		for _, taxon := range r.taxa[sample] {
			pairs = append(pairs, Pair{Sample: sample, Taxon: taxon})
		}
	}
	return pairs
}

// Prevalence returns, for every taxon that occurs in the result, the
// number of samples of the result in which it exceeds the cutoff.
func (r *Result) Prevalence() map[string]int {
	counts := make(map[string]int)
	for _, taxa := range r.taxa {
		for _, taxon := range taxa {
			counts[taxon]++
		}
	}
	return counts
}

// Extract computes the co-occurrence result of the pinned organism in
// t. A taxon co-occurs in a sample when its abundance there is strictly
// greater than cutoff. Extract fails with abundance.ErrNotFound if t
// has no taxon named pinned, and with abundance.ErrDuplicateKey if the
// names of t are ambiguous.
func Extract(t *abundance.Table, pinned string, cutoff float64) (*Result, error) {
	if math.IsNaN(cutoff) || cutoff < 0 {
		return nil, errors.Wrapf(abundance.ErrInvalidArgument, "presence cutoff %v", cutoff)
	}
	row, err := t.Lookup(pinned)
	if err != nil {
		return nil, errors.Wrap(err, "locating pinned organism")
	}
	present := bitset.New(uint(t.NumSamples()))
	for j := 0; j < t.NumSamples(); j++ {
		if t.Value(row, j) != 0 {
			present.Set(uint(j))
		}
	}
	restricted := t.SelectSamples(present)

	n := restricted.NumSamples()
	presence := make([]*bitset.BitSet, n)
	if n > 0 {
		parallel.Range(0, n, 0, func(low, high int) {
			for j := low; j < high; j++ {
				column := restricted.Column(j)
				set := bitset.New(uint(len(column)))
				for i, value := range column {
					if value > cutoff {
						set.Set(uint(i))
					}
				}
				presence[j] = set
			}
		})
	}

	names := restricted.Names()
	result := &Result{
		Pinned:  pinned,
		Cutoff:  cutoff,
		samples: restricted.Samples(),
		taxa:    make(map[string][]string, n),
	}
	for j, sample := range result.samples {
		taxa := make([]string, 0, presence[j].Count())
		for i, ok := presence[j].NextSet(0); ok; i, ok = presence[j].NextSet(i + 1) {
			taxa = append(taxa, names[i])
		}
		result.taxa[sample] = taxa
	}
	return result, nil
}
