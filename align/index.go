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

/*
Package align aligns long reads against the strand nodes of an
assembly graph.

Exact k-mer seeds shared by a read and a node locate diagonal bands,
and a banded affine-gap semi-global alignment inside each band gives
the final alignments. Reads are aligned in parallel; the index and the
graph are only read during alignment.
*/
package align

import (
	"slices"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elbridge/config"
	"github.com/exascience/elbridge/graph"
)

var baseCodes = [256]int8{}

func init() {
	for i := range baseCodes {
		baseCodes[i] = -1
	}
	baseCodes['A'] = 0
	baseCodes['C'] = 1
	baseCodes['G'] = 2
	baseCodes['T'] = 3
}

type seedHit struct {
	node graph.Node
	pos  int32
}

// forEachKmer calls f with the 2-bit encoding and start position of
// every k-mer of bases that contains no N.
func forEachKmer(bases []byte, k int, f func(kmer uint64, pos int)) {
	mask := uint64(1)<<(2*uint(k)) - 1
	if k == 32 {
		mask = ^uint64(0)
	}
	var kmer uint64
	valid := 0
	for i, b := range bases {
		code := baseCodes[b]
		if code < 0 {
			valid = 0
			kmer = 0
			continue
		}
		kmer = (kmer<<2 | uint64(code)) & mask
		valid++
		if valid >= k {
			f(kmer, i-k+1)
		}
	}
}

// Index maps the k-mers of both strands of all live segments to their
// occurrences.
type Index struct {
	graph *graph.Graph
	cfg   config.AlignConfig
	seeds map[uint64][]seedHit
}

// NewIndex builds the seed index of the graph. K-mers that occur more
// than cfg.MaxSeedOccurrences times are left out.
func NewIndex(g *graph.Graph, cfg config.AlignConfig) *Index {
	ids := g.Segments()
	k := cfg.SeedLength
	result := parallel.RangeReduce(0, len(ids), 0, func(low, high int) interface{} {
		seeds := make(map[uint64][]seedHit)
		for _, id := range ids[low:high] {
			for _, n := range [2]graph.Node{graph.Forward(id), graph.Reverse(id)} {
				forEachKmer(g.Seq(n), k, func(kmer uint64, pos int) {
					seeds[kmer] = append(seeds[kmer], seedHit{node: n, pos: int32(pos)})
				})
			}
		}
		return seeds
	}, func(result1, result2 interface{}) interface{} {
		seeds1 := result1.(map[uint64][]seedHit)
		for kmer, hits := range result2.(map[uint64][]seedHit) {
			seeds1[kmer] = append(seeds1[kmer], hits...)
		}
		return seeds1
	})
	var seeds map[uint64][]seedHit
	if result != nil {
		seeds = result.(map[uint64][]seedHit)
	} else {
		seeds = make(map[uint64][]seedHit)
	}
	for kmer, hits := range seeds {
		if len(hits) > cfg.MaxSeedOccurrences {
			delete(seeds, kmer)
		}
	}
	return &Index{graph: g, cfg: cfg, seeds: seeds}
}

// Graph returns the graph the index was built for.
func (idx *Index) Graph() *graph.Graph {
	return idx.graph
}

// Kmers returns the number of distinct k-mers used as seeds.
func (idx *Index) Kmers() int {
	return len(idx.seeds)
}

type diagonalHit struct {
	node     graph.Node
	diagonal int
}

// bands collects the seed hits of the read per node, clusters them by
// diagonal, and returns the band of every cluster with enough hits.
// Nodes are visited in ascending order.
func (idx *Index) bands(bases []byte) (nodes []graph.Node, bands [][]Band) {
	var hits []diagonalHit
	forEachKmer(bases, idx.cfg.SeedLength, func(kmer uint64, pos int) {
		for _, hit := range idx.seeds[kmer] {
			hits = append(hits, diagonalHit{node: hit.node, diagonal: int(hit.pos) - pos})
		}
	})
	slices.SortFunc(hits, func(a, b diagonalHit) int {
		if a.node != b.node {
			if a.node < b.node {
				return -1
			}
			return 1
		}
		return a.diagonal - b.diagonal
	})
	for start := 0; start < len(hits); {
		end := start + 1
		for end < len(hits) && hits[end].node == hits[start].node {
			end++
		}
		var nodeBands []Band
		for c := start; c < end; {
			d := c + 1
			for d < end && hits[d].diagonal-hits[d-1].diagonal <= idx.cfg.DiagonalGap {
				d++
			}
			if d-c >= idx.cfg.MinSeedHits {
				nodeBands = append(nodeBands, Band{
					Low:  hits[c].diagonal - idx.cfg.BandPadding,
					High: hits[d-1].diagonal + idx.cfg.BandPadding,
				})
			}
			c = d
		}
		if len(nodeBands) > 0 {
			nodes = append(nodes, hits[start].node)
			bands = append(bands, nodeBands)
		}
		start = end
	}
	return nodes, bands
}
