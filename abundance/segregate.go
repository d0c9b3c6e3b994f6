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
	"strings"

	"github.com/cockroachdb/errors"
)

// SegregationOptions controls how Segregate classifies columns.
type SegregationOptions struct {
	// Identifiers are the columns copied into both measurement tables.
	Identifiers []string

	// IDColumn, NameColumn and RankColumn name the identifier columns
	// that hold the taxonomy id, the taxon name and the taxonomy level.
	// They are identifiers even when Identifiers does not list them.
	// Empty names select the Bracken column names.
	IDColumn, NameColumn, RankColumn string

	// CountSuffix and FractionSuffix select the absolute-count and
	// relative-fraction measurement columns.
	CountSuffix, FractionSuffix string
}

// DefaultSegregationOptions matches the column layout of Bracken
// reports.
var DefaultSegregationOptions = SegregationOptions{
	Identifiers:    []string{TaxonomyIDColumn, TaxonomyLvlColumn, NameColumn},
	IDColumn:       TaxonomyIDColumn,
	NameColumn:     NameColumn,
	RankColumn:     TaxonomyLvlColumn,
	CountSuffix:    "num",
	FractionSuffix: "frac",
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// keyColumns returns the id, name and rank column names.
func (options SegregationOptions) keyColumns() (id, name, rank string) {
	return orDefault(options.IDColumn, TaxonomyIDColumn),
		orDefault(options.NameColumn, NameColumn),
		orDefault(options.RankColumn, TaxonomyLvlColumn)
}

func (options SegregationOptions) isIdentifier(column string) bool {
	id, name, rank := options.keyColumns()
	return column == id || column == name || column == rank || contains(options.Identifiers, column)
}

// A Segregation is the result of splitting a raw table into its
// measurement families.
type Segregation struct {
	// Counts holds the identifier columns and the absolute-count
	// columns.
	Counts *RawTable

	// Fractions holds the identifier columns and the relative-fraction
	// columns.
	Fractions *RawTable

	// Identifiers lists the identifier columns found in the input.
	Identifiers []string

	// Dropped lists the columns that are neither identifiers nor
	// measurements, and therefore occur in neither table.
	Dropped []string

	// Schema interprets Counts and Fractions. Identifiers other than
	// the id, name and rank columns become taxon attributes, so only
	// measurement columns become samples.
	Schema Schema
}

// Segregate splits raw into a counts table and a fractions table.
// Identifier columns keep their input order and precede the
// measurement columns. Every input column ends up either in the
// identifiers, in exactly one measurement family, or in Dropped. An
// empty measurement family results in a table without measurement
// columns. A record whose length differs from the header is an
// ErrSchema.
func Segregate(raw *RawTable, options SegregationOptions) (Segregation, error) {
	id, name, rank := options.keyColumns()
	schema := Schema{ID: id, Name: name, Rank: rank, RequireID: true}
	var identifiers, counts, fractions, dropped []string
	for _, column := range raw.Header {
		switch {
		case options.isIdentifier(column):
			identifiers = append(identifiers, column)
			if column != id && column != name && column != rank {
				schema.Attributes = append(schema.Attributes, column)
			}
		case options.CountSuffix != "" && strings.HasSuffix(column, options.CountSuffix):
			counts = append(counts, column)
		case options.FractionSuffix != "" && strings.HasSuffix(column, options.FractionSuffix):
			fractions = append(fractions, column)
		default:
			dropped = append(dropped, column)
		}
	}
	countTable, err := raw.Select(append(append([]string(nil), identifiers...), counts...))
	if err != nil {
		return Segregation{}, errors.Wrap(err, "selecting absolute-count columns")
	}
	fractionTable, err := raw.Select(append(append([]string(nil), identifiers...), fractions...))
	if err != nil {
		return Segregation{}, errors.Wrap(err, "selecting relative-fraction columns")
	}
	return Segregation{
		Counts:      countTable,
		Fractions:   fractionTable,
		Identifiers: identifiers,
		Dropped:     dropped,
		Schema:      schema,
	}, nil
}
