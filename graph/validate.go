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
	"strings"
)

// A ConsistencyError lists the structural problems found by Validate.
// It indicates a bug and is always fatal.
type ConsistencyError struct {
	Problems []string
	Nodes    []Node
	Links    []Link
}

func (e *ConsistencyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "assembly graph is inconsistent (%v problems)", len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n\t")
		b.WriteString(p)
	}
	return b.String()
}

func (e *ConsistencyError) add(problem string, nodes []Node, links []Link) {
	e.Problems = append(e.Problems, problem)
	e.Nodes = append(e.Nodes, nodes...)
	e.Links = append(e.Links, links...)
}

// Validate checks that both strands of every segment have the same
// length, that every link connects live segments with a valid overlap,
// that every link has its twin, and that no link is stored twice.
// It returns nil or a *ConsistencyError.
func (g *Graph) Validate() error {
	e := new(ConsistencyError)
	for _, id := range g.Segments() {
		s := g.segments[id]
		if len(s.Seq.Strand(false)) != len(s.Seq.Strand(true)) {
			e.add(fmt.Sprintf("segment %v has strands of different lengths", s.Name), []Node{Forward(id)}, nil)
		}
		if named, found := g.names[s.Name]; !found || named != id {
			e.add(fmt.Sprintf("segment %v is not registered under its name", s.Name), []Node{Forward(id)}, nil)
		}
		for _, n := range [2]Node{Forward(id), Reverse(id)} {
			targets := make(map[Node]bool)
			for _, l := range g.Out(n) {
				if targets[l.To] {
					e.add(fmt.Sprintf("link %v is stored twice", l), []Node{n}, []Link{l})
				}
				targets[l.To] = true
				if !g.Alive(l.To.ID()) {
					e.add(fmt.Sprintf("link %v ends in a removed segment", l), []Node{n, l.To}, []Link{l})
					continue
				}
				if l.Overlap < 0 || l.Overlap > g.NodeLen(l.From) || l.Overlap > g.NodeLen(l.To) {
					e.add(fmt.Sprintf("link %v has an invalid overlap", l), []Node{n, l.To}, []Link{l})
				}
				t := l.Twin()
				if overlap, ok := g.HasLink(t.From, t.To); !ok || overlap != l.Overlap {
					e.add(fmt.Sprintf("link %v has no matching twin", l), []Node{n, l.To}, []Link{l})
				}
			}
		}
	}
	if len(e.Problems) > 0 {
		return e
	}
	return nil
}
