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

// Package taxonomy resolves taxonomy identifiers to lineages.
//
// The lineage database itself is an external collaborator, accessed
// through the Service interface. MemoryService is a deterministic
// in-memory implementation, SQLiteService reads the taxa.sqlite
// database maintained by the ete toolkit, and CachingService puts LRU
// caches in front of any other Service. A Resolver turns the
// identifier chains a Service returns into chains of names.
package taxonomy

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrLookup reports a taxonomy identifier that the service does not
// know, or a lineage that cannot be translated into names. Callers
// that resolve many identifiers treat it as a per-identifier failure.
var ErrLookup = errors.New("taxonomy lookup failed")

// A Service gives access to a taxonomy database. Implementations must
// be safe for concurrent use.
type Service interface {
	// Lineage returns the identifiers of the ancestors of id, ordered
	// from the root to id itself. It fails with ErrLookup if id is
	// unknown.
	Lineage(ctx context.Context, id int64) ([]int64, error)

	// Translate returns the scientific names of the given identifiers.
	// Unknown identifiers are absent from the result.
	Translate(ctx context.Context, ids []int64) (map[int64]string, error)
}

func unknownID(id int64) error {
	return errors.Wrapf(ErrLookup, "unknown taxonomy id %v", id)
}
