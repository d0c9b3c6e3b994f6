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

package taxonomy

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/exascience/pargo/parallel"
)

// A Resolver maps taxonomy identifiers to lineages of names.
type Resolver struct {
	service Service

	// Workers bounds the number of concurrent lookups in ResolveAll.
	// If Workers is 0, pargo chooses the number of goroutines.
	Workers int
}

// NewResolver returns a Resolver that queries service.
func NewResolver(service Service) *Resolver {
	return &Resolver{service: service}
}

// Resolve returns the lineage of id as scientific names, ordered from
// the root to the taxon itself. It fails with ErrLookup if id is
// unknown, or if any ancestor has no name.
func (r *Resolver) Resolve(ctx context.Context, id int64) ([]string, error) {
	ids, err := r.service.Lineage(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, unknownID(id)
	}
	names, err := r.service.Translate(ctx, ids)
	if err != nil {
		return nil, errors.Wrapf(err, "translating lineage of taxonomy id %v", id)
	}
	lineage := make([]string, len(ids))
	for i, ancestor := range ids {
		name, found := names[ancestor]
		if !found {
			return nil, errors.Wrapf(ErrLookup, "no name for taxonomy id %v in lineage of %v", ancestor, id)
		}
		lineage[i] = name
	}
	return lineage, nil
}

// A Resolution is the outcome of resolving one identifier.
type Resolution struct {
	Lineage []string
	Err     error
}

// ResolveAll resolves every identifier in ids, in parallel. The result
// has one Resolution per identifier, in the same order. Failures are
// reported per identifier and do not affect the other lookups.
func (r *Resolver) ResolveAll(ctx context.Context, ids []int64) []Resolution {
	result := make([]Resolution, len(ids))
	if len(ids) == 0 {
		return result
	}
	parallel.Range(0, len(ids), r.Workers, func(low, high int) {
		for i := low; i < high; i++ {
			if err := ctx.Err(); err != nil {
				result[i].Err = err
				continue
			}
			result[i].Lineage, result[i].Err = r.Resolve(ctx, ids[i])
		}
	})
	return result
}
