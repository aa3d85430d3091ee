// elBridge: long-read completion of short-read assembly graphs.
// Copyright (c) 2026 imec vzw.

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
// <https://github.com/ExaScience/elbridge/blob/master/LICENSE.txt>.

package align

import (
	"context"
	"slices"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elbridge/graph"
	"github.com/exascience/elbridge/sequence"
)

// An Alignment is a Pair that knows which read and node it aligns.
// Node coordinates are on the strand of Node.
type Alignment struct {
	ReadID int
	Node   graph.Node
	Pair
}

// ReadLength returns the number of aligned read bases.
func (a *Alignment) ReadLength() int {
	return a.ReadEnd - a.ReadStart
}

// AlignRead aligns one read against all nodes it shares seeds with.
// The result is ordered by read start, then by node. Reads shorter
// than the seed length have no alignments.
func (idx *Index) AlignRead(id int, bases []byte) []Alignment {
	if len(bases) < idx.cfg.SeedLength {
		return nil
	}
	nodes, bands := idx.bands(bases)
	var result []Alignment
	for i, node := range nodes {
		seq := idx.graph.Seq(node)
		for _, band := range bands[i] {
			pair, ok := AlignPair(bases, seq, band, idx.cfg)
			if !ok {
				continue
			}
			if slices.ContainsFunc(result, func(a Alignment) bool {
				return a.Node == node && a.ReadStart == pair.ReadStart && a.NodeStart == pair.NodeStart
			}) {
				continue
			}
			result = append(result, Alignment{ReadID: id, Node: node, Pair: pair})
		}
	}
	slices.SortStableFunc(result, func(a, b Alignment) int {
		if a.ReadStart != b.ReadStart {
			return a.ReadStart - b.ReadStart
		}
		return int(a.Node - b.Node)
	})
	return result
}

// AlignReads aligns all reads of the store in parallel. The result is
// indexed by read ID. A cancelled context stops the remaining work,
// and the context error is returned.
func AlignReads(ctx context.Context, idx *Index, store *sequence.Store) ([][]Alignment, error) {
	result := make([][]Alignment, store.Len())
	parallel.Range(0, len(result), 0, func(low, high int) {
		for id := low; id < high; id++ {
			if ctx.Err() != nil {
				return
			}
			result[id] = idx.AlignRead(id, store.Read(id).Bases)
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the total number of alignments and the number of
// reads with at least one alignment.
func Count(alignments [][]Alignment) (total, aligned int) {
	for _, alns := range alignments {
		total += len(alns)
		if len(alns) > 0 {
			aligned++
		}
	}
	return
}
