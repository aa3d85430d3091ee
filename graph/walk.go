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

package graph

import (
	"fmt"
	"slices"

	"github.com/exascience/elbridge/sequence"
)

// A Gap is read-derived sequence inserted between Walk.Nodes[Index]
// and Walk.Nodes[Index+1], two nodes that are not linked.
type Gap struct {
	Index int
	Seq   []byte
}

// A Walk is a sequence of strand nodes. Consecutive nodes are
// connected by a link, or by a gap when the first node has no
// outgoing and the second node no incoming links. A circular walk
// also steps from its last node back to its first one.
type Walk struct {
	Nodes    []Node
	Gaps     []Gap
	Circular bool
}

// NewWalk creates a walk without gaps.
func NewWalk(nodes ...Node) Walk {
	return Walk{Nodes: nodes}
}

// GapAt returns the gap after Nodes[i], if any.
func (w Walk) GapAt(i int) ([]byte, bool) {
	for _, gap := range w.Gaps {
		if gap.Index == i {
			return gap.Seq, true
		}
	}
	return nil, false
}

// Twin returns the same walk read along the other strand.
func (w Walk) Twin() Walk {
	k := len(w.Nodes)
	result := Walk{Nodes: make([]Node, k), Circular: w.Circular}
	for i, n := range w.Nodes {
		result.Nodes[k-1-i] = -n
	}
	for _, gap := range w.Gaps {
		result.Gaps = append(result.Gaps, Gap{Index: k - 2 - gap.Index, Seq: sequence.ReverseComplement(gap.Seq)})
	}
	slices.SortFunc(result.Gaps, func(a, b Gap) int { return a.Index - b.Index })
	return result
}

// Segments returns the segment IDs along the walk.
func (w Walk) Segments() []int {
	result := make([]int, len(w.Nodes))
	for i, n := range w.Nodes {
		result[i] = n.ID()
	}
	return result
}

func (w Walk) String() string {
	return fmt.Sprint(w.Nodes)
}

// step returns the overlap between Nodes[i] and the next node, or
// the gap between them. For circular walks, the step after the last
// node goes back to the first one.
func (g *Graph) step(w Walk, i int) (overlap int, gap []byte, isGap bool, ok bool) {
	from := w.Nodes[i]
	var to Node
	if i+1 < len(w.Nodes) {
		to = w.Nodes[i+1]
	} else {
		to = w.Nodes[0]
	}
	if gap, isGap = w.GapAt(i); isGap {
		return 0, gap, true, g.OutDegree(from) == 0 && g.InDegree(to) == 0
	}
	overlap, ok = g.HasLink(from, to)
	return overlap, nil, false, ok
}

// IsValidWalk checks that all segments of the walk are alive, that no
// segment occurs twice, and that every step is either a link or a gap
// between two dead ends.
func (g *Graph) IsValidWalk(w Walk) bool {
	if len(w.Nodes) == 0 || (len(w.Nodes) == 1 && !w.Circular) {
		return false
	}
	seen := make(map[int]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		if n == 0 || !g.Alive(n.ID()) || seen[n.ID()] {
			return false
		}
		seen[n.ID()] = true
	}
	steps := len(w.Nodes) - 1
	if w.Circular {
		steps++
	}
	for i := 0; i < steps; i++ {
		if _, _, isGap, ok := g.step(w, i); !ok || (isGap && w.Circular) {
			return false
		}
	}
	return true
}

// WalkSequence returns the bases spelled by a valid walk. Overlaps are
// counted once, gaps are inserted verbatim, and for circular walks the
// overlap of the closing link is removed from the end.
func (g *Graph) WalkSequence(w Walk) []byte {
	result := append([]byte(nil), g.Seq(w.Nodes[0])...)
	for i := 1; i < len(w.Nodes); i++ {
		overlap, gap, _, _ := g.step(w, i-1)
		result = append(result, gap...)
		result = append(result, g.Seq(w.Nodes[i])[overlap:]...)
	}
	if w.Circular {
		overlap, _, _, _ := g.step(w, len(w.Nodes)-1)
		result = result[:len(result)-overlap]
	}
	return result
}

// WalkLength returns the length of WalkSequence(w) without building it.
func (g *Graph) WalkLength(w Walk) int {
	length := g.NodeLen(w.Nodes[0])
	for i := 1; i < len(w.Nodes); i++ {
		overlap, gap, _, _ := g.step(w, i-1)
		length += len(gap) + g.NodeLen(w.Nodes[i]) - overlap
	}
	if w.Circular {
		overlap, _, _, _ := g.step(w, len(w.Nodes)-1)
		length -= overlap
	}
	return length
}

// IsolatedCycle tells whether the nodes form a cycle of links whose
// segments are linked only to each other.
func (g *Graph) IsolatedCycle(cycle []Node) bool {
	if !g.IsValidWalk(Walk{Nodes: cycle, Circular: true}) {
		return false
	}
	members := make(map[int]bool, len(cycle))
	for _, n := range cycle {
		members[n.ID()] = true
	}
	for _, n := range cycle {
		for _, s := range [2]Node{n, -n} {
			for _, l := range g.Out(s) {
				if !members[l.To.ID()] {
					return false
				}
			}
		}
	}
	return true
}

// A Path is a walk between two given nodes, excluding those nodes.
// Length is the number of bases between the end of the first node and
// the start of the second one: the lengths of the intermediate nodes
// minus all overlaps. It is negative when the overlaps dominate.
type Path struct {
	Nodes  []Node
	Length int
}

/*
Paths searches the walks from → ... → to with at most maxNodes
intermediate nodes. A direct link yields a path without nodes.
Intermediate nodes are distinct and differ from the segments of from
and to. Walks longer than maxLength are skipped, and the search
gives up after maxSearch extension steps.

Paths are returned in the order in which they are found, which is
deterministic: links are followed in insertion order.
*/
func (g *Graph) Paths(from, to Node, maxNodes, maxLength, maxSearch int) []Path {
	var result []Path
	budget := maxSearch
	visited := map[int]bool{from.ID(): true, to.ID(): true}
	var nodes []Node
	var search func(current Node, length int)
	search = func(current Node, length int) {
		for _, l := range g.Out(current) {
			if budget <= 0 {
				return
			}
			budget--
			if l.To == to {
				if length-l.Overlap <= maxLength {
					result = append(result, Path{Nodes: append([]Node(nil), nodes...), Length: length - l.Overlap})
				}
				continue
			}
			if len(nodes) >= maxNodes || visited[l.To.ID()] {
				continue
			}
			next := length - l.Overlap + g.NodeLen(l.To)
			if next-g.NodeLen(l.To) > maxLength {
				continue
			}
			visited[l.To.ID()] = true
			nodes = append(nodes, l.To)
			search(l.To, next)
			nodes = nodes[:len(nodes)-1]
			visited[l.To.ID()] = false
		}
	}
	search(from, 0)
	return result
}
