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

// Package abundance provides the table types and the table-level
// operations of metaprep.
//
// A Table holds one non-negative abundance value per (taxon, sample)
// pair, together with the taxonomy metadata of each taxon. Tables are
// immutable snapshots: every operation in this package (Normalize,
// FilterPrevalence, DropEmptySamples, Subset, Reattach) returns a new
// table and leaves its input untouched, so earlier pipeline stages can
// be kept around and inspected.
//
// Raw input arrives as a tab-separated RawTable, typically a Bracken
// report in which every sample contributes a ...num column with
// absolute read counts and a ...frac column with relative fractions.
// Segregate splits such a table into its two measurement families, and
// RawTable.Table converts one family into a Table.
package abundance
