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

import "github.com/cockroachdb/errors"

// A FilteredTable is a table of retained taxa in which every row
// carries the kingdom and taxonomy id of the annotated taxon it was
// derived from.
type FilteredTable struct {
	*Table
	kinds []Kind
	ids   []int64
}

// Kind returns the kingdom of row i.
func (f *FilteredTable) Kind(i int) Kind {
	return f.kinds[i]
}

// TaxonID returns the taxonomy id of row i.
func (f *FilteredTable) TaxonID(i int) int64 {
	return f.ids[i]
}

// Reattach looks up every taxon of filtered by name in the annotated
// source table, and attaches the kingdom, taxonomy id and lineage of
// the source row.
//
// Names are matched exactly through source.NameIndex, so Reattach fails
// with ErrDuplicateKey if the source has ambiguous names, and with
// ErrNotFound if a filtered taxon does not occur in the source.
func Reattach(filtered, source *Table) (*FilteredTable, error) {
	index, err := source.NameIndex()
	if err != nil {
		return nil, errors.Wrap(err, "indexing annotated source table")
	}
	taxa := filtered.Taxa()
	kinds := make([]Kind, len(taxa))
	ids := make([]int64, len(taxa))
	for i := range taxa {
		pos, found := index[taxa[i].Name]
		if !found {
			return nil, errors.Wrapf(ErrNotFound, "taxon %q in annotated source table", taxa[i].Name)
		}
		original := source.taxa[pos]
		kinds[i] = original.Kind()
		ids[i] = original.ID
		taxa[i].ID = original.ID
		taxa[i].Lineage = append([]string(nil), original.Lineage...)
	}
	table := newTable(filtered.Samples(), taxa, append([]float64(nil), filtered.values...))
	return &FilteredTable{Table: table, kinds: kinds, ids: ids}, nil
}
