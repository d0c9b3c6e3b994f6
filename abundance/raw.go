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
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// A RawTable is a tab-separated table as read from its source, before
// any column has been interpreted.
type RawTable struct {
	Header  []string
	Records [][]string
}

// ReadRaw parses a tab-separated table with a header row. Every record
// must have as many fields as the header.
func ReadRaw(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrSchema, "missing header row")
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "reading header row"), ErrSchema)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	raw := &RawTable{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "reading tab-separated record"), ErrSchema)
		}
		raw.Records = append(raw.Records, record)
	}
	return raw, nil
}

// Column returns the position of the named column, or -1.
func (raw *RawTable) Column(name string) int {
	for i, column := range raw.Header {
		if column == name {
			return i
		}
	}
	return -1
}

// Select returns a raw table with only the given columns, in the given
// order. Unknown column names are ignored. A record whose length
// differs from the header is an ErrSchema.
func (raw *RawTable) Select(columns []string) (*RawTable, error) {
	var positions []int
	var header []string
	for _, name := range columns {
		if pos := raw.Column(name); pos >= 0 {
			positions = append(positions, pos)
			header = append(header, name)
		}
	}
	records := make([][]string, len(raw.Records))
	for r, record := range raw.Records {
		if len(record) != len(raw.Header) {
			return nil, errors.Wrapf(ErrSchema, "record %v has %v fields, header has %v", r+1, len(record), len(raw.Header))
		}
		fields := make([]string, len(positions))
		for k, pos := range positions {
			fields[k] = record[pos]
		}
		records[r] = fields
	}
	return &RawTable{Header: header, Records: records}, nil
}

// Bracken report column names.
const (
	TaxonomyIDColumn  = "taxonomy_id"
	TaxonomyLvlColumn = "taxonomy_lvl"
	NameColumn        = "name"
)

// A Schema tells RawTable.Table how to interpret the columns of a raw
// table. Columns that are not named in a Schema are sample columns.
type Schema struct {
	ID, Name, Rank string

	// RequireID makes a missing ID column a schema error. The Name
	// column is always required; Rank is optional.
	RequireID bool

	// Attributes are copied verbatim into Taxon.Attributes.
	Attributes []string

	// Ignore lists columns that are neither metadata nor samples.
	Ignore []string
}

// BrackenSchema describes one measurement family of a Bracken report.
var BrackenSchema = Schema{
	ID:        TaxonomyIDColumn,
	Name:      NameColumn,
	Rank:      TaxonomyLvlColumn,
	RequireID: true,
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// Table interprets the raw table according to schema.
func (raw *RawTable) Table(schema Schema) (*Table, error) {
	namePos := raw.Column(schema.Name)
	if namePos < 0 {
		return nil, errors.Wrapf(ErrSchema, "missing name column %q", schema.Name)
	}
	idPos := -1
	if schema.ID != "" {
		idPos = raw.Column(schema.ID)
		if idPos < 0 && schema.RequireID {
			return nil, errors.Wrapf(ErrSchema, "missing taxonomy id column %q", schema.ID)
		}
	}
	rankPos := -1
	if schema.Rank != "" {
		rankPos = raw.Column(schema.Rank)
	}
	attributes := make(map[string]int)
	for _, name := range schema.Attributes {
		pos := raw.Column(name)
		if pos < 0 {
			return nil, errors.Wrapf(ErrSchema, "missing column %q", name)
		}
		attributes[name] = pos
	}

	var samples []string
	var samplePos []int
	for pos, column := range raw.Header {
		switch {
		case pos == namePos, pos == idPos, pos == rankPos:
		case contains(schema.Attributes, column), contains(schema.Ignore, column):
		default:
			samples = append(samples, column)
			samplePos = append(samplePos, pos)
		}
	}

	taxa := make([]Taxon, len(raw.Records))
	values := make([][]float64, len(raw.Records))
	for r, record := range raw.Records {
		if len(record) != len(raw.Header) {
			return nil, errors.Wrapf(ErrSchema, "record %v has %v fields, header has %v", r+1, len(record), len(raw.Header))
		}
		taxon := Taxon{Name: strings.TrimSpace(record[namePos])}
		if idPos >= 0 {
			if field := strings.TrimSpace(record[idPos]); field != "" {
				id, err := strconv.ParseInt(field, 10, 64)
				if err != nil {
					return nil, errors.Wrapf(ErrSchema, "invalid taxonomy id %q for taxon %q", field, taxon.Name)
				}
				taxon.ID = id
			} else if schema.RequireID {
				return nil, errors.Wrapf(ErrSchema, "missing taxonomy id for taxon %q", taxon.Name)
			}
		}
		if rankPos >= 0 {
			taxon.Rank = strings.TrimSpace(record[rankPos])
		}
		if len(attributes) > 0 {
			taxon.Attributes = make(map[string]string, len(attributes))
			for name, pos := range attributes {
				taxon.Attributes[name] = strings.TrimSpace(record[pos])
			}
		}
		taxa[r] = taxon
		row := make([]float64, len(samplePos))
		for k, pos := range samplePos {
			value, err := parseAbundance(record[pos])
			if err != nil {
				return nil, errors.Wrapf(err, "taxon %q, column %q", taxon.Name, samples[k])
			}
			row[k] = value
		}
		values[r] = row
	}
	return NewTable(samples, taxa, values)
}

// parseAbundance accepts empty fields as zero.
func parseAbundance(field string) (float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrSchema, "non-numeric abundance %q", field)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, errors.Wrapf(ErrSchema, "invalid abundance %q", field)
	}
	return value, nil
}
