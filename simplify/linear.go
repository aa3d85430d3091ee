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

package simplify

import (
	"github.com/charmbracelet/log"

	"github.com/exascience/elbridge/graph"
)

// successor returns the only node following n, if n has exactly one
// outgoing link and that link is the only incoming link of its target.
func successor(g *graph.Graph, n graph.Node) (graph.Node, bool) {
	out := g.Out(n)
	if len(out) != 1 || g.InDegree(out[0].To) != 1 {
		return 0, false
	}
	return out[0].To, true
}

// unitig returns the maximal non-branching walk through n.
func unitig(g *graph.Graph, n graph.Node) graph.Walk {
	nodes := []graph.Node{n}
	seen := map[int]bool{n.ID(): true}
	for next, ok := successor(g, n); ok; next, ok = successor(g, next) {
		if next == n {
			return graph.Walk{Nodes: nodes, Circular: true}
		}
		if seen[next.ID()] {
			break
		}
		seen[next.ID()] = true
		nodes = append(nodes, next)
	}
	var prefix []graph.Node
	for prev, ok := successor(g, -n); ok; prev, ok = successor(g, prev) {
		if seen[prev.ID()] {
			break
		}
		seen[prev.ID()] = true
		prefix = append(prefix, -prev)
	}
	for i, j := 0, len(prefix)-1; i < j; i, j = i+1, j-1 {
		prefix[i], prefix[j] = prefix[j], prefix[i]
	}
	return graph.Walk{Nodes: append(prefix, nodes...)}
}

// MergeLinearPaths merges every maximal non-branching walk of two or
// more segments into a single segment with status graph.Merged, and
// returns the number of new segments. Isolated cycles are merged into
// circular segments. The support of a new segment is the largest
// support along its walk.
func MergeLinearPaths(g *graph.Graph, logger *log.Logger) (int, error) {
	merged := 0
	for _, id := range g.Segments() {
		if !g.Alive(id) {
			continue
		}
		w := unitig(g, graph.Forward(id))
		if len(w.Nodes) < 2 || (w.Circular && !g.IsolatedCycle(w.Nodes)) || !g.IsValidWalk(w) {
			continue
		}
		support := 0
		for _, n := range w.Nodes {
			support = max(support, g.Segment(n.ID()).Support)
		}
		newID, err := g.Merge(w, graph.Merged)
		if err != nil {
			return merged, err
		}
		s := g.Segment(newID)
		s.Support = support
		merged++
		logger.Debug("merged unitig", "walk", w, "segment", s.Name)
	}
	if merged > 0 {
		return merged, g.Validate()
	}
	return merged, nil
}
