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
Package graph implements the assembly graph: an arena of segments
addressed by stable integer IDs, with double-stranded links between
signed strand nodes.

Removed segments are tombstoned rather than deleted, so IDs never
change during a run. Only outgoing links are stored; the incoming
links of a node are the twins of the outgoing links of its twin.
*/
package graph

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/willf/bitset"

	"github.com/exascience/elbridge/sequence"
)

var (
	// ErrUnknownNode is returned when a node refers to a segment that does not exist or was removed.
	ErrUnknownNode = errors.New("unknown or removed segment")
	// ErrDuplicateName is returned when two segments get the same name.
	ErrDuplicateName = errors.New("duplicate segment name")
	// ErrInvalidOverlap is returned for link overlaps that are negative or longer than a segment.
	ErrInvalidOverlap = errors.New("invalid link overlap")
	// ErrConflictingLink is returned when a link is added twice with different overlaps.
	ErrConflictingLink = errors.New("conflicting link overlap")
	// ErrInvalidWalk is returned when a walk cannot be merged.
	ErrInvalidWalk = errors.New("invalid walk")
)

// A Link connects the end of From to the start of To. The last
// Overlap bases of From are the first Overlap bases of To.
type Link struct {
	From, To Node
	Overlap  int
}

func (l Link) String() string {
	return l.From.String() + " -> " + l.To.String() + " (" + strconv.Itoa(l.Overlap) + ")"
}

// Twin returns the same link seen from the other strands.
func (l Link) Twin() Link {
	return Link{From: -l.To, To: -l.From, Overlap: l.Overlap}
}

type edge struct {
	to      Node
	overlap int
}

// Graph is an assembly graph. It is not safe for concurrent
// modification, but read-only access from several goroutines is fine.
type Graph struct {
	segments []*Segment // index 0 is unused
	out      [][]edge   // indexed by slot(n)
	live     *bitset.BitSet
	names    map[string]int // includes removed segments
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		segments: []*Segment{nil},
		out:      [][]edge{nil, nil},
		live:     bitset.New(64),
		names:    make(map[string]int),
	}
}

func slot(n Node) int {
	if n < 0 {
		return 2*int(-n) + 1
	}
	return 2 * int(n)
}

// AddSegment adds a segment with the given normalised bases and
// returns its ID. The bases are owned by the graph afterwards.
func (g *Graph) AddSegment(name string, bases []byte, depth float64) (int, error) {
	if _, found := g.names[name]; found {
		return 0, fmt.Errorf("%w: %v", ErrDuplicateName, name)
	}
	id := len(g.segments)
	g.segments = append(g.segments, &Segment{
		ID:     id,
		Name:   name,
		Seq:    sequence.NewPair(bases),
		Depth:  depth,
		Origin: []string{name},
	})
	g.out = append(g.out, nil, nil)
	g.live.Set(uint(id))
	g.names[name] = id
	return id, nil
}

// Alive tells whether segment id exists and was not removed.
func (g *Graph) Alive(id int) bool {
	return id > 0 && id < len(g.segments) && g.live.Test(uint(id))
}

// Segment returns the segment with the given ID, or nil if it does
// not exist or was removed.
func (g *Graph) Segment(id int) *Segment {
	if !g.Alive(id) {
		return nil
	}
	return g.segments[id]
}

// Lookup returns the ID of the live segment with the given name.
func (g *Graph) Lookup(name string) (int, bool) {
	id, found := g.names[name]
	if !found || !g.Alive(id) {
		return 0, false
	}
	return id, true
}

// Segments returns the IDs of all live segments in ascending order.
func (g *Graph) Segments() []int {
	result := make([]int, 0, g.live.Count())
	for i, e := g.live.NextSet(0); e; i, e = g.live.NextSet(i + 1) {
		result = append(result, int(i))
	}
	return result
}

// Len returns the number of live segments.
func (g *Graph) Len() int {
	return int(g.live.Count())
}

// MaxID returns the largest segment ID ever assigned.
func (g *Graph) MaxID() int {
	return len(g.segments) - 1
}

// Seq returns the bases of the given strand.
func (g *Graph) Seq(n Node) []byte {
	return g.segments[n.ID()].Seq.Strand(n.IsReverse())
}

// NodeLen returns the length of the segment of n.
func (g *Graph) NodeLen(n Node) int {
	return g.segments[n.ID()].Len()
}

// Depth returns the depth of the segment of n.
func (g *Graph) Depth(n Node) float64 {
	return g.segments[n.ID()].Depth
}

func (g *Graph) findEdge(from, to Node) int {
	for i, e := range g.out[slot(from)] {
		if e.to == to {
			return i
		}
	}
	return -1
}

func (g *Graph) addEdge(from, to Node, overlap int) {
	if g.findEdge(from, to) < 0 {
		s := slot(from)
		g.out[s] = append(g.out[s], edge{to: to, overlap: overlap})
	}
}

func (g *Graph) removeEdge(from, to Node) {
	s := slot(from)
	if i := g.findEdge(from, to); i >= 0 {
		edges := g.out[s]
		g.out[s] = append(edges[:i], edges[i+1:]...)
	}
}

// AddLink adds the link from → to together with its twin -to → -from.
// Adding an existing link again is a no-op.
func (g *Graph) AddLink(from, to Node, overlap int) error {
	if !g.Alive(from.ID()) || !g.Alive(to.ID()) {
		return fmt.Errorf("%w: link %v -> %v", ErrUnknownNode, from, to)
	}
	if overlap < 0 || overlap > g.NodeLen(from) || overlap > g.NodeLen(to) {
		return fmt.Errorf("%w: link %v -> %v with overlap %v", ErrInvalidOverlap, from, to, overlap)
	}
	if ov, ok := g.HasLink(from, to); ok {
		if ov != overlap {
			return fmt.Errorf("%w: link %v -> %v has overlap %v, not %v", ErrConflictingLink, from, to, ov, overlap)
		}
		return nil
	}
	g.addEdge(from, to, overlap)
	g.addEdge(-to, -from, overlap)
	return nil
}

// RemoveLink removes the link from → to and its twin.
func (g *Graph) RemoveLink(from, to Node) {
	g.removeEdge(from, to)
	g.removeEdge(-to, -from)
}

// HasLink returns the overlap of the link from → to, if it exists.
func (g *Graph) HasLink(from, to Node) (overlap int, ok bool) {
	if from.ID() >= len(g.segments) || from == 0 {
		return 0, false
	}
	if i := g.findEdge(from, to); i >= 0 {
		return g.out[slot(from)][i].overlap, true
	}
	return 0, false
}

// Out returns the links leaving n.
func (g *Graph) Out(n Node) []Link {
	edges := g.out[slot(n)]
	result := make([]Link, len(edges))
	for i, e := range edges {
		result[i] = Link{From: n, To: e.to, Overlap: e.overlap}
	}
	return result
}

// In returns the links entering n.
func (g *Graph) In(n Node) []Link {
	edges := g.out[slot(-n)]
	result := make([]Link, len(edges))
	for i, e := range edges {
		result[i] = Link{From: -e.to, To: n, Overlap: e.overlap}
	}
	return result
}

// OutDegree returns the number of links leaving n.
func (g *Graph) OutDegree(n Node) int {
	return len(g.out[slot(n)])
}

// InDegree returns the number of links entering n.
func (g *Graph) InDegree(n Node) int {
	return len(g.out[slot(-n)])
}

// Links returns every link once per twin pair, in ascending order of
// the segments they leave from.
func (g *Graph) Links() []Link {
	var result []Link
	for _, id := range g.Segments() {
		for _, n := range [2]Node{Forward(id), Reverse(id)} {
			for _, l := range g.Out(n) {
				if canonicalLink(l) {
					result = append(result, l)
				}
			}
		}
	}
	return result
}

// canonicalLink selects one link of each twin pair: the one whose
// source has the smaller segment ID, preferring forward strands.
func canonicalLink(l Link) bool {
	t := l.Twin()
	if l == t {
		return true
	}
	return l.From.ID() < t.From.ID() ||
		(l.From.ID() == t.From.ID() && (l.From > t.From || (l.From == t.From && l.To > t.To)))
}

// MaxOverlap returns the largest overlap of any link.
func (g *Graph) MaxOverlap() int {
	result := 0
	for _, id := range g.Segments() {
		for _, n := range [2]Node{Forward(id), Reverse(id)} {
			for _, e := range g.out[slot(n)] {
				if e.overlap > result {
					result = e.overlap
				}
			}
		}
	}
	return result
}

// remove tombstones segment id and drops all links touching it.
func (g *Graph) remove(id int) {
	for _, n := range [2]Node{Forward(id), Reverse(id)} {
		for _, l := range g.Out(n) {
			g.RemoveLink(l.From, l.To)
		}
	}
	g.live.Clear(uint(id))
}

// Remove tombstones segment id and drops all links touching it. The
// name of the segment stays reserved.
func (g *Graph) Remove(id int) error {
	if !g.Alive(id) {
		return fmt.Errorf("%w: %v", ErrUnknownNode, id)
	}
	g.remove(id)
	return nil
}

// Clone returns a deep copy of the graph structure. Sequences are
// shared, since they are never modified.
func (g *Graph) Clone() *Graph {
	h := &Graph{
		segments: make([]*Segment, len(g.segments)),
		out:      make([][]edge, len(g.out)),
		live:     g.live.Clone(),
		names:    make(map[string]int, len(g.names)),
	}
	for i, s := range g.segments {
		if s != nil {
			c := *s
			c.Origin = append([]string(nil), s.Origin...)
			h.segments[i] = &c
		}
	}
	for i, edges := range g.out {
		h.out[i] = append([]edge(nil), edges...)
	}
	for name, id := range g.names {
		h.names[name] = id
	}
	return h
}
