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
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of lineages and names a
// CachingService keeps by default.
const DefaultCacheSize = 1 << 14

// A CachingService remembers the lineages and names returned by
// another Service. Failed lookups are not cached.
type CachingService struct {
	service  Service
	lineages *lru.Cache[int64, []int64]
	names    *lru.Cache[int64, string]
}

// NewCachingService returns a service that caches up to size lineages
// and size names of service.
func NewCachingService(service Service, size int) (*CachingService, error) {
	lineages, err := lru.New[int64, []int64](size)
	if err != nil {
		return nil, errors.Wrapf(err, "creating lineage cache of size %v", size)
	}
	names, err := lru.New[int64, string](size)
	if err != nil {
		return nil, errors.Wrapf(err, "creating name cache of size %v", size)
	}
	return &CachingService{service: service, lineages: lineages, names: names}, nil
}

// Lineage implements the Service interface.
func (s *CachingService) Lineage(ctx context.Context, id int64) ([]int64, error) {
	if lineage, ok := s.lineages.Get(id); ok {
		return append([]int64(nil), lineage...), nil
	}
	lineage, err := s.service.Lineage(ctx, id)
	if err != nil {
		return nil, err
	}
	s.lineages.Add(id, append([]int64(nil), lineage...))
	return lineage, nil
}

// Translate implements the Service interface. Only identifiers that are
// not cached are passed on to the underlying service.
func (s *CachingService) Translate(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	var missing []int64
	for _, id := range ids {
		if name, ok := s.names.Get(id); ok {
			names[id] = name
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return names, nil
	}
	found, err := s.service.Translate(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, name := range found {
		s.names.Add(id, name)
		names[id] = name
	}
	return names, nil
}
