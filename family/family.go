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

// Package family aggregates taxon-level abundance tables to family
// level.
//
// The input is a curated taxon table in which every taxon carries a
// Family attribute. Assigning families is a manual curation step that
// happens outside of metaprep.
package family

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/exascience/metaprep/abundance"
)

// Column is the name of the curated family column.
const Column = "Family"

// Unassigned is the family of taxa with a missing or blank Family.
const Unassigned = "Unassigned"

// CuratedSchema describes the curated family-level input table: a name
// column, an optional taxa_id column, the Family column, and the
// metadata columns added by the filtering pipeline.
var CuratedSchema = abundance.Schema{
	ID:         "taxa_id",
	Name:       abundance.NameColumn,
	Attributes: []string{Column},
	Ignore:     []string{"taxa", "lineage", abundance.TaxonomyIDColumn, abundance.TaxonomyLvlColumn},
}

// Read parses a curated tab-separated taxon table with a Family column.
func Read(r io.Reader) (*abundance.Table, error) {
	raw, err := abundance.ReadRaw(r)
	if err != nil {
		return nil, err
	}
	return raw.Table(CuratedSchema)
}

// A Table holds summed abundances per family and sample.
type Table struct {
	families []string
	samples  []string
	values   [][]float64
	members  map[string][]string
}

// Families returns the family names in order of first appearance in
// the taxon table.
func (t *Table) Families() []string {
	return append([]string(nil), t.families...)
}

// Samples returns the sample ids in column order.
func (t *Table) Samples() []string {
	return append([]string(nil), t.samples...)
}

// Row returns a copy of the summed abundances of family i.
func (t *Table) Row(i int) []float64 {
	return append([]float64(nil), t.values[i]...)
}

// Value returns the summed abundance of the named family in the named
// sample.
func (t *Table) Value(family, sample string) (float64, bool) {
	for i, f := range t.families {
		if f != family {
			continue
		}
		for j, s := range t.samples {
			if s == sample {
				return t.values[i][j], true
			}
		}
	}
	return 0, false
}

// Members returns the names of the taxa that were summed into family.
func (t *Table) Members(family string) []string {
	return append([]string(nil), t.members[family]...)
}

// Sum returns the total abundance over all families and samples.
func (t *Table) Sum() float64 {
	var sum float64
	for _, row := range t.values {
		sum += floats.Sum(row)
	}
	return sum
}

// Aggregate groups the taxa of t by their Family attribute and sums
// their abundances per sample. Taxa with a missing or blank family are
// summed into the Unassigned family, so the total abundance of the
// result equals that of t.
func Aggregate(t *abundance.Table) (*Table, error) {
	if t.NumSamples() == 0 && t.Len() > 0 {
		return nil, errors.Wrap(abundance.ErrSchema, "taxon table has no sample columns")
	}
	result := &Table{
		samples: t.Samples(),
		members: make(map[string][]string),
	}
	positions := make(map[string]int)
	for i := 0; i < t.Len(); i++ {
		taxon := t.Taxon(i)
		family := strings.TrimSpace(taxon.Attributes[Column])
		if family == "" {
			family = Unassigned
		}
		pos, found := positions[family]
		if !found {
			pos = len(result.families)
			positions[family] = pos
			result.families = append(result.families, family)
			result.values = append(result.values, make([]float64, t.NumSamples()))
		}
		floats.Add(result.values[pos], t.Row(i))
		result.members[family] = append(result.members[family], taxon.Name)
	}
	return result, nil
}
