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

// Connected components of the live segments, ignoring strands. This is
// a union-find over segment IDs.

func findRepresentative(grouping []int, id int) int {
	representative := id
	for representative != grouping[representative] {
		representative = grouping[representative]
	}
	for id != representative {
		next := grouping[id]
		grouping[id] = representative
		id = next
	}
	return representative
}

func joinSegments(grouping []int, id1, id2 int) {
	rep1 := findRepresentative(grouping, id1)
	rep2 := findRepresentative(grouping, id2)
	if rep1 == rep2 {
		return
	}
	if rep1 < rep2 {
		grouping[rep2] = rep1
	} else {
		grouping[rep1] = rep2
	}
}

// Components returns the connected components of the graph. Each
// component lists its segment IDs in ascending order, and components
// are ordered by their smallest ID.
func (g *Graph) Components() [][]int {
	grouping := make([]int, len(g.segments))
	for i := range grouping {
		grouping[i] = i
	}
	ids := g.Segments()
	for _, id := range ids {
		for _, n := range [2]Node{Forward(id), Reverse(id)} {
			for _, e := range g.out[slot(n)] {
				joinSegments(grouping, id, e.to.ID())
			}
		}
	}
	index := make(map[int]int)
	var result [][]int
	for _, id := range ids {
		rep := findRepresentative(grouping, id)
		i, found := index[rep]
		if !found {
			i = len(result)
			index[rep] = i
			result = append(result, nil)
		}
		result[i] = append(result[i], id)
	}
	return result
}

// MarkCircular flags every segment whose only link is a link onto its
// own start without changing strand, and returns how many segments
// are circular afterwards.
func (g *Graph) MarkCircular() int {
	count := 0
	for _, id := range g.Segments() {
		s := g.segments[id]
		n := Forward(id)
		if !s.Circular && g.OutDegree(n) == 1 && g.InDegree(n) == 1 {
			if _, ok := g.HasLink(n, n); ok {
				s.Circular = true
			}
		}
		if s.Circular {
			count++
		}
	}
	return count
}
