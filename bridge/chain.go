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

package bridge

import (
	"math"
	"slices"

	"github.com/exascience/elbridge/align"
	"github.com/exascience/elbridge/config"
	"github.com/exascience/elbridge/graph"
	"github.com/exascience/elbridge/sequence"
)

// A Chain is a run of consecutive alignments of one read together
// with the walk through the graph that connects them.
type Chain struct {
	ReadID     int
	Walk       graph.Walk
	Alignments []align.Alignment

	// Span is the length of the walk as observed in the read: from the
	// start of the first node to the end of the last node, or once
	// around the cycle for circular walks.
	Span int

	// Identity is the mean identity of the alignments.
	Identity float64
}

func readOverlap(a, b *align.Alignment) int {
	return max(0, min(a.ReadEnd, b.ReadEnd)-max(a.ReadStart, b.ReadStart))
}

// filterOverlapping keeps the best-scoring alignments whose read
// regions overlap each other by at most maxOverlap bases, ordered by
// read start.
func filterOverlapping(alns []align.Alignment, maxOverlap int) []align.Alignment {
	sorted := slices.Clone(alns)
	slices.SortStableFunc(sorted, func(a, b align.Alignment) int {
		switch {
		case a.Score != b.Score:
			return int(b.Score - a.Score)
		case a.ReadStart != b.ReadStart:
			return a.ReadStart - b.ReadStart
		default:
			return int(a.Node - b.Node)
		}
	})
	var accepted []align.Alignment
	for i := range sorted {
		if !slices.ContainsFunc(accepted, func(b align.Alignment) bool {
			return readOverlap(&sorted[i], &b) > maxOverlap
		}) {
			accepted = append(accepted, sorted[i])
		}
	}
	slices.SortStableFunc(accepted, func(a, b align.Alignment) int {
		if a.ReadStart != b.ReadStart {
			return a.ReadStart - b.ReadStart
		}
		return int(a.Node - b.Node)
	})
	return accepted
}

func tolerance(readGap int, cfg *config.BridgeConfig) float64 {
	return float64(cfg.GapToleranceBases) + cfg.GapToleranceFraction*math.Abs(float64(readGap))
}

type chainer struct {
	g       *graph.Graph
	cfg     *config.BridgeConfig
	read    *sequence.Read
	aligned map[int]bool
	result  []Chain
	cycles  []map[int]bool // segments of the cycles closed by the read

	nodes  []graph.Node
	gaps   []graph.Gap
	starts []int // read position of the start of each node
	alns   []align.Alignment
}

func (c *chainer) reset() {
	c.nodes, c.gaps, c.starts, c.alns = nil, nil, nil, nil
}

func (c *chainer) start(a align.Alignment) {
	c.reset()
	c.nodes = []graph.Node{a.Node}
	c.starts = []int{a.ReadStart - a.NodeStart}
	c.alns = []align.Alignment{a}
}

func meanIdentity(alns []align.Alignment) float64 {
	sum := 0.0
	for i := range alns {
		sum += alns[i].Identity()
	}
	return sum / float64(len(alns))
}

func (c *chainer) emit(walk graph.Walk, span int) {
	c.result = append(c.result, Chain{
		ReadID:     c.read.ID,
		Walk:       walk,
		Alignments: c.alns,
		Span:       span,
		Identity:   meanIdentity(c.alns),
	})
}

// branching tells whether n has more than one link on either side.
func (c *chainer) branching(n graph.Node) bool {
	return c.g.InDegree(n) > 1 || c.g.OutDegree(n) > 1
}

// trim drops a branching node from either end of the current walk
// when the read does not cover that node up to its outer end. The read
// says nothing about how the walk continues there.
func (c *chainer) trim() {
	slack := c.cfg.GapToleranceBases
	if k := len(c.nodes); k >= 2 {
		last, tail := c.nodes[k-1], &c.alns[len(c.alns)-1]
		if tail.Node == last && tail.NodeEnd < c.g.NodeLen(last)-slack && c.branching(last) {
			c.nodes, c.starts = c.nodes[:k-1], c.starts[:k-1]
			c.gaps = slices.DeleteFunc(c.gaps, func(gap graph.Gap) bool { return gap.Index == k-2 })
			c.alns = slices.DeleteFunc(c.alns, func(a align.Alignment) bool { return a.Node == last })
		}
	}
	if len(c.nodes) >= 2 && len(c.alns) > 0 {
		first, head := c.nodes[0], &c.alns[0]
		if head.Node == first && head.NodeStart > slack && c.branching(first) {
			c.nodes, c.starts = c.nodes[1:], c.starts[1:]
			var gaps []graph.Gap
			for _, gap := range c.gaps {
				if gap.Index > 0 {
					gaps = append(gaps, graph.Gap{Index: gap.Index - 1, Seq: gap.Seq})
				}
			}
			c.gaps = gaps
			c.alns = slices.DeleteFunc(c.alns, func(a align.Alignment) bool { return a.Node == first })
		}
	}
}

// finish emits the current chain if its walk still has at least two
// nodes and one alignment after trimming.
func (c *chainer) finish() {
	c.trim()
	if k := len(c.nodes); k >= 2 && len(c.alns) > 0 {
		last := c.nodes[k-1]
		c.emit(graph.Walk{Nodes: c.nodes, Gaps: c.gaps}, c.starts[k-1]+c.g.NodeLen(last)-c.starts[0])
	}
	c.reset()
}

// withinClosedCycle tells whether all segments of w lie on a cycle
// that the read went all the way around.
func (c *chainer) withinClosedCycle(w graph.Walk) bool {
	for _, cycle := range c.cycles {
		if !slices.ContainsFunc(w.Nodes, func(n graph.Node) bool { return !cycle[n.ID()] }) {
			return true
		}
	}
	return false
}

// push appends a node starting at the given read position to the
// current walk. If the segment of n is already on the walk, the chain
// ends instead: with a circular walk if n closes an isolated cycle,
// otherwise with the walk before n.
func (c *chainer) push(n graph.Node, pos int) bool {
	for i, m := range c.nodes {
		if m.ID() != n.ID() {
			continue
		}
		if cycle := c.nodes[i:]; m == n && len(c.gaps) == 0 && c.g.IsolatedCycle(cycle) {
			c.emit(graph.Walk{Nodes: slices.Clone(cycle), Circular: true}, pos-c.starts[i])
			segments := make(map[int]bool, len(cycle))
			for _, m := range cycle {
				segments[m.ID()] = true
			}
			c.cycles = append(c.cycles, segments)
			c.reset()
			return false
		}
		c.finish()
		return false
	}
	c.nodes = append(c.nodes, n)
	c.starts = append(c.starts, pos)
	return true
}

// connect finds how the graph leads from alignment a to alignment b:
// over a direct link, over a path of unaligned nodes, or by filling
// the gap between two dead ends with read bases.
func (c *chainer) connect(a, b *align.Alignment) (path graph.Path, fill []byte, ok bool) {
	readGap := b.ReadStart - a.ReadEnd
	tailA := c.g.NodeLen(a.Node) - a.NodeEnd
	headB := b.NodeStart
	tol := tolerance(readGap, c.cfg)
	maxLength := readGap + int(tol) - tailA - headB
	paths := c.g.Paths(a.Node, b.Node, c.cfg.MaxPathNodes, maxLength, c.cfg.MaxPathSearch)
	best, bestDiff := -1, 0
	for i, p := range paths {
		diff := tailA + p.Length + headB - readGap
		if diff < 0 {
			diff = -diff
		}
		if float64(diff) > tol {
			continue
		}
		if len(p.Nodes) == 0 {
			return p, nil, true
		}
		if slices.ContainsFunc(p.Nodes, func(n graph.Node) bool { return c.aligned[n.ID()] }) {
			continue
		}
		if best < 0 || diff < bestDiff ||
			(diff == bestDiff && (len(p.Nodes) < len(paths[best].Nodes) ||
				(len(p.Nodes) == len(paths[best].Nodes) && slices.CompareFunc(p.Nodes, paths[best].Nodes, compareNodes) < 0))) {
			best, bestDiff = i, diff
		}
	}
	if best >= 0 {
		return paths[best], nil, true
	}
	if c.cfg.MaxGapFill > 0 && c.g.OutDegree(a.Node) == 0 && c.g.InDegree(b.Node) == 0 {
		fillStart, fillEnd := a.ReadEnd+tailA, b.ReadStart-headB
		if length := fillEnd - fillStart; fillStart >= 0 && fillEnd <= len(c.read.Bases) && length >= 0 && length <= c.cfg.MaxGapFill {
			fill = make([]byte, length)
			copy(fill, c.read.Bases[fillStart:fillEnd])
			return path, fill, true
		}
	}
	return path, nil, false
}

func (c *chainer) extend(b align.Alignment) {
	a := &c.alns[len(c.alns)-1]
	if b.Node == a.Node && b.NodeStart >= a.NodeStart && b.ReadStart >= a.ReadStart {
		c.alns = append(c.alns, b)
		return
	}
	path, fill, ok := c.connect(a, &b)
	if !ok {
		c.finish()
		c.start(b)
		return
	}
	pos := c.starts[len(c.starts)-1]
	prev := a.Node
	for _, n := range path.Nodes {
		overlap, _ := c.g.HasLink(prev, n)
		pos += c.g.NodeLen(prev) - overlap
		if !c.push(n, pos) {
			c.start(b)
			return
		}
		prev = n
	}
	if !c.push(b.Node, b.ReadStart-b.NodeStart) {
		c.start(b)
		return
	}
	if fill != nil {
		c.gaps = append(c.gaps, graph.Gap{Index: len(c.nodes) - 2, Seq: fill})
	}
	c.alns = append(c.alns, b)
}

/*
Chains splits the alignments of one read into chains.

Alignments are taken by decreasing score, dropping those that overlap
an already accepted alignment by more than maxOverlap read bases. The
remaining alignments are visited in read order, and each one is joined
to the chain of its predecessor when the graph connects the two nodes
with a gap that agrees with the read. A branching node at either end
of a chain that the read only partly covers is dropped from it. Only
chains whose walk has at least two nodes are returned. When the read
goes around an isolated cycle, its linear chains within that cycle
are left out.
*/
func Chains(g *graph.Graph, read *sequence.Read, alns []align.Alignment, maxOverlap int, cfg config.BridgeConfig) []Chain {
	accepted := filterOverlapping(alns, maxOverlap)
	if len(accepted) == 0 {
		return nil
	}
	c := &chainer{g: g, cfg: &cfg, read: read, aligned: make(map[int]bool, len(accepted))}
	for i := range accepted {
		c.aligned[accepted[i].Node.ID()] = true
	}
	c.start(accepted[0])
	for _, b := range accepted[1:] {
		c.extend(b)
	}
	c.finish()
	if len(c.cycles) == 0 {
		return c.result
	}
	return slices.DeleteFunc(c.result, func(chain Chain) bool {
		return !chain.Walk.Circular && c.withinClosedCycle(chain.Walk)
	})
}
