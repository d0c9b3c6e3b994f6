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

package filters

import (
	"context"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/exascience/metaprep/abundance"
	"github.com/exascience/metaprep/taxonomy"
)

// DefaultKingdoms are the kingdoms a KingdomFilter retains by default.
// Fungi are recognized by abundance.Taxon.Kind, but only retained when
// configured explicitly.
var DefaultKingdoms = []string{string(abundance.Bacteria)}

// An Exclusion records a taxon that a KingdomFilter dropped because its
// lineage could not be resolved.
type Exclusion struct {
	Taxon abundance.Taxon
	Err   error
}

// A KingdomFilter annotates every taxon of a table with its lineage,
// and retains the taxa whose lineage contains one of the configured
// kingdoms.
type KingdomFilter struct {
	Resolver *taxonomy.Resolver
	Kingdoms []string
	Logger   *zap.Logger
}

// NewKingdomFilter returns a filter that retains the given kingdoms, or
// DefaultKingdoms if none are given.
func NewKingdomFilter(resolver *taxonomy.Resolver, logger *zap.Logger, kingdoms ...string) *KingdomFilter {
	if len(kingdoms) == 0 {
		kingdoms = DefaultKingdoms
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KingdomFilter{Resolver: resolver, Kingdoms: kingdoms, Logger: logger}
}

func (f *KingdomFilter) retains(taxon abundance.Taxon) bool {
	for _, kingdom := range f.Kingdoms {
		if taxon.InLineage(kingdom) {
			return true
		}
	}
	return false
}

// Apply returns the annotated rows of t that belong to one of the
// retained kingdoms. Kingdom names are matched literally and
// case-sensitively against the lineage.
//
// A taxon whose lineage cannot be resolved (taxonomy.ErrLookup) is
// logged, reported as an Exclusion, and dropped; the other rows are
// unaffected. Any other service failure aborts Apply.
func (f *KingdomFilter) Apply(ctx context.Context, t *abundance.Table) (*abundance.Table, []Exclusion, error) {
	taxa := t.Taxa()
	ids := make([]int64, len(taxa))
	for i, taxon := range taxa {
		ids[i] = taxon.ID
	}
	resolutions := f.Resolver.ResolveAll(ctx, ids)
	lineages := make([][]string, len(taxa))
	var exclusions []Exclusion
	for i, resolution := range resolutions {
		if err := resolution.Err; err != nil {
			if !errors.Is(err, taxonomy.ErrLookup) {
				return nil, nil, errors.Wrapf(err, "resolving taxon %q (taxonomy id %v)", taxa[i].Name, taxa[i].ID)
			}
			f.Logger.Warn("error fetching taxonomy, taxon excluded",
				zap.Int64("taxonomy_id", taxa[i].ID),
				zap.String("name", taxa[i].Name),
				zap.Error(err))
			exclusions = append(exclusions, Exclusion{Taxon: taxa[i], Err: err})
			continue
		}
		lineages[i] = resolution.Lineage
	}
	annotated, err := t.Annotate(lineages)
	if err != nil {
		return nil, nil, err
	}
	keep := bitset.New(uint(annotated.Len()))
	for i := 0; i < annotated.Len(); i++ {
		if f.retains(annotated.Taxon(i)) {
			keep.Set(uint(i))
		}
	}
	result := annotated.Subset(keep)
	f.Logger.Info("kingdom filter",
		zap.Strings("kingdoms", f.Kingdoms),
		zap.Int("taxa", t.Len()),
		zap.Int("retained", result.Len()),
		zap.Int("unresolved", len(exclusions)))
	return result, exclusions, nil
}

// Stage returns Apply as a Stage that drops the exclusions; they are
// still logged.
func (f *KingdomFilter) Stage(ctx context.Context) Stage {
	return func(t *abundance.Table) (*abundance.Table, error) {
		result, _, err := f.Apply(ctx, t)
		return result, err
	}
}
