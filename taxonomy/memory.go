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
)

// A Node is one entry of a taxonomy tree. The root is the node whose
// Parent is itself or 0.
type Node struct {
	ID, Parent int64
	Name       string
}

// A MemoryService is a read-only taxonomy held in memory.
type MemoryService struct {
	nodes map[int64]Node
}

// NewMemoryService returns a service for the given nodes.
func NewMemoryService(nodes ...Node) *MemoryService {
	service := &MemoryService{nodes: make(map[int64]Node, len(nodes))}
	for _, node := range nodes {
		service.nodes[node.ID] = node
	}
	return service
}

// Lineage implements the Service interface.
func (s *MemoryService) Lineage(_ context.Context, id int64) ([]int64, error) {
	var reversed []int64
	for current := id; ; {
		node, found := s.nodes[current]
		if !found {
			if current == id {
				return nil, unknownID(id)
			}
			return nil, errors.Wrapf(ErrLookup, "dangling parent %v in lineage of %v", current, id)
		}
		reversed = append(reversed, current)
		if node.Parent == 0 || node.Parent == current {
			break
		}
		if len(reversed) > len(s.nodes) {
			return nil, errors.Wrapf(ErrLookup, "cycle in lineage of %v", id)
		}
		current = node.Parent
	}
	lineage := make([]int64, len(reversed))
	for i, ancestor := range reversed {
		lineage[len(reversed)-1-i] = ancestor
	}
	return lineage, nil
}

// Translate implements the Service interface.
func (s *MemoryService) Translate(_ context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		if node, found := s.nodes[id]; found {
			names[id] = node.Name
		}
	}
	return names, nil
}
