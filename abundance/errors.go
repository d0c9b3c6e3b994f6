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

// Error kinds reported by this package. Use errors.Is to test for them.
var (
	// ErrSchema reports missing required columns, ragged records,
	// non-numeric or negative measurements, and other shape problems.
	ErrSchema = errors.New("schema error")

	// ErrDivisionByZero reports sample columns whose total abundance is
	// zero when normalizing.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrDuplicateKey reports taxon names that occur more than once in
	// a table that is being indexed by name.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound reports a taxon name that is absent from a table.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports out-of-range filter parameters.
	ErrInvalidArgument = errors.New("invalid argument")
)
