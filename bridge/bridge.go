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
Package bridge turns long-read alignments into bridges: walks through
the assembly graph supported by one or more reads, with evidence and a
score that decide in which order they are applied.
*/
package bridge

import (
	"fmt"
	"math"
	"slices"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elbridge/align"
	"github.com/exascience/elbridge/config"
	"github.com/exascience/elbridge/graph"
	"github.com/exascience/elbridge/sequence"
)

// A Key identifies a bridge by the nodes its canonical walk starts
// and ends with. Circular bridges start and end with the same node.
type Key struct {
	Start, End graph.Node
}

func (k Key) String() string {
	return k.Start.String() + ".." + k.End.String()
}

// compareNodes orders nodes by segment ID, forward strand first.
func compareNodes(a, b graph.Node) int {
	switch {
	case a.ID() != b.ID():
		return a.ID() - b.ID()
	case a == b:
		return 0
	case a.IsReverse():
		return 1
	default:
		return -1
	}
}

func compareKeys(a, b Key) int {
	if c := compareNodes(a.Start, b.Start); c != 0 {
		return c
	}
	return compareNodes(a.End, b.End)
}

// Evidence summarises the reads that support a bridge.
type Evidence struct {
	// number of distinct reads proposing a walk with this key
	Support int

	// mean alignment identity of those reads
	MeanIdentity float64

	// one minus the coefficient of variation of the walk lengths observed in the reads
	LengthConsistency float64

	// agreement of the node depths along the walk, see depthConsistency
	DepthConsistency float64

	// fraction of the reads that agree with the chosen walk
	Agreement float64
}

// A Scorer maps evidence to a score. Higher is better.
type Scorer func(Evidence) float64

// DefaultScorer adds a quality term below 1 to the support, so
// support always dominates.
func DefaultScorer(e Evidence) float64 {
	return float64(e.Support) + 0.999*e.MeanIdentity*e.LengthConsistency*e.DepthConsistency*e.Agreement
}

// A Bridge is a walk through the graph proposed by long reads.
type Bridge struct {
	Key   Key
	Walk  graph.Walk
	Reads []int // IDs of the supporting reads, ascending
	Evidence
	Score float64
}

// Circular tells whether the bridge closes a cycle.
func (b *Bridge) Circular() bool {
	return b.Walk.Circular
}

func (b *Bridge) String() string {
	return fmt.Sprintf("bridge %v via %v (support %v, score %.3f)", b.Key, b.Walk, b.Support, b.Score)
}

// canonical returns the representative of a walk and its twin. Linear
// walks are represented by the strand with the smaller key. Cycles are
// rotated to start with their smallest segment, on its forward strand.
func canonical(w graph.Walk) graph.Walk {
	if w.Circular {
		first := 0
		for i, n := range w.Nodes {
			if n.ID() < w.Nodes[first].ID() {
				first = i
			}
		}
		if w.Nodes[first].IsReverse() {
			w = w.Twin()
			first = len(w.Nodes) - 1 - first
		}
		nodes := append(slices.Clone(w.Nodes[first:]), w.Nodes[:first]...)
		return graph.Walk{Nodes: nodes, Circular: true}
	}
	t := w.Twin()
	switch c := compareKeys(keyOf(w), keyOf(t)); {
	case c < 0:
		return w
	case c > 0:
		return t
	case slices.CompareFunc(w.Nodes, t.Nodes, compareNodes) <= 0:
		return w
	default:
		return t
	}
}

func keyOf(w graph.Walk) Key {
	if w.Circular {
		return Key{Start: w.Nodes[0], End: w.Nodes[0]}
	}
	return Key{Start: w.Nodes[0], End: w.Nodes[len(w.Nodes)-1]}
}

// variantKey identifies a walk by its nodes and the positions of its
// gaps. Reads may fill the same gap with different bases.
func variantKey(w graph.Walk) string {
	gaps := make([]int, len(w.Gaps))
	for i, gap := range w.Gaps {
		gaps[i] = gap.Index
	}
	return fmt.Sprint(w.Nodes, gaps, w.Circular)
}

type candidate struct {
	chain *Chain
	walk  graph.Walk
}

type variant struct {
	walk  graph.Walk
	best  *Chain
	reads int
}

func lengthConsistency(spans []int) float64 {
	if len(spans) < 2 {
		return 1
	}
	mean := 0.0
	for _, s := range spans {
		mean += float64(s)
	}
	mean /= float64(len(spans))
	if mean <= 0 {
		return 0
	}
	variance := 0.0
	for _, s := range spans {
		d := float64(s) - mean
		variance += d * d
	}
	cv := math.Sqrt(variance/float64(len(spans))) / mean
	return math.Max(0, math.Min(1, 1-cv))
}

// depthConsistency compares the depths of the nodes along a walk. A
// node whose depth is about k times the smallest depth on the walk is
// taken to be k copies of a repeat, and its depth is divided by k. The
// result is the smallest divided by the largest of these per-copy
// depths. Nodes without depth are ignored.
func depthConsistency(g *graph.Graph, w graph.Walk) float64 {
	base := math.Inf(1)
	for _, n := range w.Nodes {
		if d := g.Depth(n); d > 0 {
			base = math.Min(base, d)
		}
	}
	if math.IsInf(base, 1) {
		return 1
	}
	lo, hi := math.Inf(1), 0.0
	for _, n := range w.Nodes {
		d := g.Depth(n)
		if d <= 0 {
			continue
		}
		perCopy := d / math.Max(1, math.Round(d/base))
		lo, hi = math.Min(lo, perCopy), math.Max(hi, perCopy)
	}
	return lo / hi
}

/*
Aggregate groups the chains by the key of their canonical walk, and
creates one bridge per key. The walk of the bridge is the variant
proposed by most reads; ties go to the shorter walk sequence, then to
the smaller node IDs. Gaps are filled with the bases of the read with
the best identity for that variant.

Bridges are returned in key order and scored with scorer, or with
DefaultScorer if scorer is nil.
*/
func Aggregate(g *graph.Graph, chains [][]Chain, scorer Scorer) []*Bridge {
	if scorer == nil {
		scorer = DefaultScorer
	}
	groups := make(map[Key][]candidate)
	for _, readChains := range chains {
		for i := range readChains {
			chain := &readChains[i]
			w := canonical(chain.Walk)
			key := keyOf(w)
			groups[key] = append(groups[key], candidate{chain: chain, walk: w})
		}
	}
	keys := make([]Key, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, compareKeys)

	bridges := make([]*Bridge, 0, len(keys))
	for _, key := range keys {
		candidates := groups[key]
		variants := make(map[string]*variant)
		var order []string
		seen := make(map[int]bool)
		var reads []int
		var spans []int
		identity := 0.0
		for _, c := range candidates {
			vk := variantKey(c.walk)
			v, found := variants[vk]
			if !found {
				v = &variant{walk: c.walk, best: c.chain}
				variants[vk] = v
				order = append(order, vk)
			} else if c.chain.Identity > v.best.Identity {
				v.walk, v.best = c.walk, c.chain
			}
			if seen[c.chain.ReadID] {
				continue
			}
			seen[c.chain.ReadID] = true
			v.reads++
			reads = append(reads, c.chain.ReadID)
			spans = append(spans, c.chain.Span)
			identity += c.chain.Identity
		}
		var best *variant
		bestLength := 0
		for _, vk := range order {
			v := variants[vk]
			length := g.WalkLength(v.walk)
			if best == nil || v.reads > best.reads ||
				(v.reads == best.reads && (length < bestLength ||
					(length == bestLength && slices.CompareFunc(v.walk.Nodes, best.walk.Nodes, compareNodes) < 0))) {
				best, bestLength = v, length
			}
		}
		slices.Sort(reads)
		b := &Bridge{
			Key:   key,
			Walk:  best.walk,
			Reads: reads,
			Evidence: Evidence{
				Support:           len(reads),
				MeanIdentity:      identity / float64(len(reads)),
				LengthConsistency: lengthConsistency(spans),
				DepthConsistency:  depthConsistency(g, best.walk),
				Agreement:         float64(best.reads) / float64(len(reads)),
			},
		}
		b.Score = scorer(b.Evidence)
		bridges = append(bridges, b)
	}
	return bridges
}

// Build chains the alignments of every read, in parallel, and
// aggregates the chains into ranked bridges.
func Build(g *graph.Graph, store *sequence.Store, alignments [][]align.Alignment, cfg config.BridgeConfig, scorer Scorer) []*Bridge {
	maxOverlap := g.MaxOverlap() + cfg.OverlapSlack
	chains := make([][]Chain, len(alignments))
	parallel.Range(0, len(alignments), 0, func(low, high int) {
		for id := low; id < high; id++ {
			chains[id] = Chains(g, store.Read(id), alignments[id], maxOverlap, cfg)
		}
	})
	bridges := Aggregate(g, chains, scorer)
	Rank(bridges)
	return bridges
}
