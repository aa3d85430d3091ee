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
	"math"
	"strconv"
)

func (g *Graph) uniqueName(id int) string {
	name := strconv.Itoa(id)
	for i := 1; ; i++ {
		if _, found := g.names[name]; !found {
			return name
		}
		name = strconv.Itoa(id) + "_" + strconv.Itoa(i)
	}
}

// externallyLinked tells whether segment id has a link to a segment
// outside of members.
func (g *Graph) externallyLinked(id int, members map[int]bool) bool {
	for _, n := range [2]Node{Forward(id), Reverse(id)} {
		for _, l := range g.Out(n) {
			if !members[l.To.ID()] {
				return true
			}
		}
	}
	return false
}

// branchesOff tells whether end node n of a walk has a link on the
// inner side of the walk other than the one to its neighbour: an
// outgoing link for the first node, an incoming link for the last.
func (g *Graph) branchesOff(n, neighbour Node, incoming bool) bool {
	if incoming {
		for _, l := range g.In(n) {
			if l.From != neighbour {
				return true
			}
		}
		return false
	}
	for _, l := range g.Out(n) {
		if l.To != neighbour {
			return true
		}
	}
	return false
}

/*
Merge replaces a valid walk by a single new segment with the given
status, and returns the ID of that segment.

The new segment spells WalkSequence(w), and its depth is the smallest
depth along the walk. It takes over the incoming links of the first
node and the outgoing links of the last node. Links between the ends
of the walk are kept as links of the new segment onto itself.

Segments that other walks still pass through remain as further copies
of a repeat, with their depth reduced by the depth of the new segment.
An internal segment remains if it has any link to a segment outside
the walk. The first segment remains if it has an outgoing link that
does not lead to the second node, and the last segment if it has an
incoming link that does not come from the one before it. All other
segments are removed together with their links.

A circular walk is merged into a circular segment with a single link
onto itself without overlap. All segments of a circular walk are
removed.
*/
func (g *Graph) Merge(w Walk, status Status) (int, error) {
	if !g.IsValidWalk(w) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWalk, w)
	}
	bases := g.WalkSequence(w)
	depth := math.Inf(1)
	var origin []string
	members := make(map[int]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		s := g.segments[n.ID()]
		depth = math.Min(depth, s.Depth)
		origin = append(origin, s.Origin...)
		members[n.ID()] = true
	}

	first, last := w.Nodes[0], w.Nodes[len(w.Nodes)-1]
	consumed := make(map[int]bool, len(w.Nodes))
	var retained []int
	if w.Circular {
		consumed = members
	} else {
		if g.branchesOff(first, w.Nodes[1], false) {
			retained = append(retained, first.ID())
		} else {
			consumed[first.ID()] = true
		}
		if g.branchesOff(last, w.Nodes[len(w.Nodes)-2], true) {
			retained = append(retained, last.ID())
		} else {
			consumed[last.ID()] = true
		}
		for _, n := range w.Nodes[1 : len(w.Nodes)-1] {
			if g.externallyLinked(n.ID(), members) {
				retained = append(retained, n.ID())
			} else {
				consumed[n.ID()] = true
			}
		}
	}

	// fromNew and toNew mark ends on the new segment, fromTwin and
	// toTwin select its reverse strand.
	type newLink struct {
		from, to         Node
		fromNew, toNew   bool
		fromTwin, toTwin bool
		overlap          int
	}
	var links []newLink
	if !w.Circular {
		for _, l := range g.In(first) {
			switch {
			case !consumed[l.From.ID()]:
				links = append(links, newLink{from: l.From, toNew: true, overlap: l.Overlap})
			case l.From == last:
				links = append(links, newLink{fromNew: true, toNew: true, overlap: l.Overlap})
			case l.From == -first:
				links = append(links, newLink{fromNew: true, fromTwin: true, toNew: true, overlap: l.Overlap})
			}
		}
		for _, l := range g.Out(last) {
			switch {
			case !consumed[l.To.ID()]:
				links = append(links, newLink{fromNew: true, to: l.To, overlap: l.Overlap})
			case l.To == first:
				links = append(links, newLink{fromNew: true, toNew: true, overlap: l.Overlap})
			case l.To == -last:
				links = append(links, newLink{fromNew: true, toNew: true, toTwin: true, overlap: l.Overlap})
			}
		}
	}

	for id := range consumed {
		g.remove(id)
	}
	for _, id := range retained {
		s := g.segments[id]
		s.Depth = math.Max(0, s.Depth-depth)
	}

	id, err := g.AddSegment(g.uniqueName(len(g.segments)), bases, depth)
	if err != nil {
		return 0, err
	}
	m := g.segments[id]
	m.Status = status
	m.Origin = origin
	m.Circular = w.Circular

	resolve := func(n Node, isNew, twin bool) Node {
		if !isNew {
			return n
		}
		if twin {
			return Reverse(id)
		}
		return Forward(id)
	}
	if w.Circular {
		if err := g.AddLink(Forward(id), Forward(id), 0); err != nil {
			return id, err
		}
	}
	for _, l := range links {
		if err := g.AddLink(resolve(l.from, l.fromNew, l.fromTwin), resolve(l.to, l.toNew, l.toTwin), l.overlap); err != nil {
			return id, err
		}
	}
	return id, nil
}
