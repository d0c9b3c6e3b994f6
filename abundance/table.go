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
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
)

// A Kind is the kingdom a taxon belongs to, as far as metaprep is
// concerned.
type Kind string

// Kinds distinguished by Taxon.Kind.
const (
	Bacteria Kind = "Bacteria"
	Fungi    Kind = "Fungi"
	Unknown  Kind = ""
)

// Kingdoms is the ordered set of kingdoms that Taxon.Kind checks. The
// first kingdom that occurs in a lineage wins.
var Kingdoms = []Kind{Bacteria, Fungi}

// A Taxon describes one row of a Table.
type Taxon struct {
	// ID is the NCBI taxonomy identifier, or 0 if the table has none.
	ID int64

	// Name is the scientific name. It doubles as the join key between
	// tables, see Table.NameIndex.
	Name string

	// Rank is the taxonomic level as reported by the classifier, for
	// example "S" for species.
	Rank string

	// Lineage is the ancestor chain from the root to the taxon itself,
	// or nil if the taxon has not been annotated.
	Lineage []string

	// Attributes holds additional per-taxon columns, such as the
	// curated Family column.
	Attributes map[string]string
}

// InLineage reports whether name occurs literally in the lineage of
// the taxon. The comparison is case-sensitive.
func (taxon Taxon) InLineage(name string) bool {
	for _, ancestor := range taxon.Lineage {
		if ancestor == name {
			return true
		}
	}
	return false
}

// Kind returns the first kingdom in Kingdoms that occurs in the
// lineage of the taxon, or Unknown.
func (taxon Taxon) Kind() Kind {
	for _, kingdom := range Kingdoms {
		if taxon.InLineage(string(kingdom)) {
			return kingdom
		}
	}
	return Unknown
}

func (taxon Taxon) clone() Taxon {
	result := taxon
	if taxon.Lineage != nil {
		result.Lineage = append([]string(nil), taxon.Lineage...)
	}
	if taxon.Attributes != nil {
		result.Attributes = make(map[string]string, len(taxon.Attributes))
		for key, value := range taxon.Attributes {
			result.Attributes[key] = value
		}
	}
	return result
}

// A Table is an immutable matrix of abundance values, one row per
// taxon and one column per sample.
type Table struct {
	samples []string
	taxa    []Taxon
	values  []float64 // row-major

	indexOnce sync.Once
	index     map[string]int
	indexErr  error
}

// NewTable returns a table for the given samples and taxa. values must
// have one row per taxon, and each row one entry per sample. Sample
// ids must be unique, and values must be finite and non-negative.
// NewTable copies its arguments.
func NewTable(samples []string, taxa []Taxon, values [][]float64) (*Table, error) {
	if len(values) != len(taxa) {
		return nil, errors.Wrapf(ErrSchema, "%v value rows for %v taxa", len(values), len(taxa))
	}
	seen := make(map[string]bool, len(samples))
	for _, sample := range samples {
		if seen[sample] {
			return nil, errors.Wrapf(ErrSchema, "sample %q occurs more than once", sample)
		}
		seen[sample] = true
	}
	n := len(samples)
	flat := make([]float64, 0, len(taxa)*n)
	for i, row := range values {
		if len(row) != n {
			return nil, errors.Wrapf(ErrSchema, "taxon %q has %v values for %v samples", taxa[i].Name, len(row), n)
		}
		for j, value := range row {
			if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
				return nil, errors.Wrapf(ErrSchema, "invalid abundance %v for taxon %q in sample %q", value, taxa[i].Name, samples[j])
			}
		}
		flat = append(flat, row...)
	}
	newTaxa := make([]Taxon, len(taxa))
	for i, taxon := range taxa {
		newTaxa[i] = taxon.clone()
	}
	return newTable(append([]string(nil), samples...), newTaxa, flat), nil
}

// newTable takes ownership of its arguments.
func newTable(samples []string, taxa []Taxon, values []float64) *Table {
	if samples == nil {
		samples = []string{}
	}
	if taxa == nil {
		taxa = []Taxon{}
	}
	return &Table{samples: samples, taxa: taxa, values: values}
}

// Len returns the number of taxa in the table.
func (t *Table) Len() int {
	return len(t.taxa)
}

// NumSamples returns the number of samples in the table.
func (t *Table) NumSamples() int {
	return len(t.samples)
}

// Samples returns the sample ids in column order.
func (t *Table) Samples() []string {
	return append([]string(nil), t.samples...)
}

// Sample returns the id of sample j.
func (t *Table) Sample(j int) string {
	return t.samples[j]
}

// SampleIndex returns the column of the given sample id.
func (t *Table) SampleIndex(sample string) (int, bool) {
	for j, s := range t.samples {
		if s == sample {
			return j, true
		}
	}
	return -1, false
}

// Taxon returns a copy of the metadata of row i.
func (t *Table) Taxon(i int) Taxon {
	return t.taxa[i].clone()
}

// Taxa returns a copy of the metadata of all rows.
func (t *Table) Taxa() []Taxon {
	result := make([]Taxon, len(t.taxa))
	for i, taxon := range t.taxa {
		result[i] = taxon.clone()
	}
	return result
}

// Names returns the taxon names in row order.
func (t *Table) Names() []string {
	result := make([]string, len(t.taxa))
	for i, taxon := range t.taxa {
		result[i] = taxon.Name
	}
	return result
}

// Value returns the abundance of taxon i in sample j.
func (t *Table) Value(i, j int) float64 {
	return t.values[i*len(t.samples)+j]
}

func (t *Table) row(i int) []float64 {
	n := len(t.samples)
	return t.values[i*n : (i+1)*n : (i+1)*n]
}

// Row returns a copy of the values of taxon i.
func (t *Table) Row(i int) []float64 {
	return append([]float64(nil), t.row(i)...)
}

// Column returns a copy of the values of sample j.
func (t *Table) Column(j int) []float64 {
	result := make([]float64, len(t.taxa))
	for i := range t.taxa {
		result[i] = t.Value(i, j)
	}
	return result
}

// ColumnSums returns the total abundance of each sample.
func (t *Table) ColumnSums() []float64 {
	sums := make([]float64, len(t.samples))
	for i := range t.taxa {
		floats.Add(sums, t.row(i))
	}
	return sums
}

// Sum returns the total abundance over all cells of the table.
func (t *Table) Sum() float64 {
	return floats.Sum(t.values)
}

// NameIndex returns the row of every taxon name. The index is computed
// once per table. It fails with ErrDuplicateKey if a name occurs more
// than once, and every later call reports the same error.
func (t *Table) NameIndex() (map[string]int, error) {
	t.indexOnce.Do(func() {
		index := make(map[string]int, len(t.taxa))
		for i, taxon := range t.taxa {
			if first, found := index[taxon.Name]; found {
				t.indexErr = errors.WithDetailf(
					errors.Wrapf(ErrDuplicateKey, "taxon name %q", taxon.Name),
					"rows %v and %v", first, i)
				return
			}
			index[taxon.Name] = i
		}
		t.index = index
	})
	if t.indexErr != nil {
		return nil, t.indexErr
	}
	result := make(map[string]int, len(t.index))
	for name, i := range t.index {
		result[name] = i
	}
	return result, nil
}

// Lookup returns the row of the taxon with the given name. It fails
// with ErrDuplicateKey if the table has ambiguous names, and with
// ErrNotFound if no taxon has that name.
func (t *Table) Lookup(name string) (int, error) {
	if _, err := t.NameIndex(); err != nil {
		return -1, err
	}
	i, found := t.index[name]
	if !found {
		return -1, errors.Wrapf(ErrNotFound, "taxon %q", name)
	}
	return i, nil
}

// Subset returns a table with only the rows that are set in keep,
// in their original order.
func (t *Table) Subset(keep *bitset.BitSet) *Table {
	n := len(t.samples)
	count := int(keep.Count())
	taxa := make([]Taxon, 0, count)
	values := make([]float64, 0, count*n)
	for i, ok := keep.NextSet(0); ok && int(i) < len(t.taxa); i, ok = keep.NextSet(i + 1) {
		taxa = append(taxa, t.taxa[i].clone())
		values = append(values, t.row(int(i))...)
	}
	return newTable(append([]string(nil), t.samples...), taxa, values)
}

// SelectSamples returns a table with only the sample columns that are
// set in keep, in their original order.
func (t *Table) SelectSamples(keep *bitset.BitSet) *Table {
	var columns []int
	for j, ok := keep.NextSet(0); ok && int(j) < len(t.samples); j, ok = keep.NextSet(j + 1) {
		columns = append(columns, int(j))
	}
	samples := make([]string, len(columns))
	for k, j := range columns {
		samples[k] = t.samples[j]
	}
	values := make([]float64, 0, len(t.taxa)*len(columns))
	for i := range t.taxa {
		row := t.row(i)
		for _, j := range columns {
			values = append(values, row[j])
		}
	}
	return newTable(samples, t.Taxa(), values)
}

// Annotate returns a table with the same values in which row i has
// lineages[i] as its lineage.
func (t *Table) Annotate(lineages [][]string) (*Table, error) {
	if len(lineages) != len(t.taxa) {
		return nil, errors.Wrapf(ErrSchema, "%v lineages for %v taxa", len(lineages), len(t.taxa))
	}
	taxa := t.Taxa()
	for i := range taxa {
		taxa[i].Lineage = append([]string(nil), lineages[i]...)
	}
	return newTable(t.Samples(), taxa, append([]float64(nil), t.values...)), nil
}
