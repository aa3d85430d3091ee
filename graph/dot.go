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
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

var statusColors = [...]string{"white", "lightblue", "palegreen", "lightyellow"}

// ToDOT converts the graph to Graphviz DOT format. Segments become
// nodes labelled with name, length and depth; each twin pair of links
// becomes one edge, labelled with the strands it connects.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph assembly {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12];\n")
	buf.WriteString("\n")
	for _, id := range g.Segments() {
		s := g.segments[id]
		color := "white"
		if int(s.Status) < len(statusColors) {
			color = statusColors[s.Status]
		}
		shape := "box"
		if s.Circular {
			shape = "ellipse"
		}
		label := fmt.Sprintf("%v\\n%v bp\\n%.2fx", s.Name, s.Len(), s.Depth)
		fmt.Fprintf(&buf, "  %q [label=%q, shape=%v, fillcolor=%v];\n", s.Name, label, shape, color)
	}
	buf.WriteString("\n")
	for _, l := range g.Links() {
		from, to := g.segments[l.From.ID()], g.segments[l.To.ID()]
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", from.Name, to.Name,
			string(sign(l.From))+string(sign(l.To)))
	}
	buf.WriteString("}\n")
	return buf.String()
}

func sign(n Node) byte {
	if n.IsReverse() {
		return '-'
	}
	return '+'
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
