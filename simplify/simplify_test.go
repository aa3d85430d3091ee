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
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/exascience/elbridge/bridge"
	"github.com/exascience/elbridge/config"
	"github.com/exascience/elbridge/graph"
)

var discard = log.New(io.Discard)

func addSegment(t *testing.T, g *graph.Graph, name, bases string, depth float64) graph.Node {
	t.Helper()
	id, err := g.AddSegment(name, []byte(bases), depth)
	if err != nil {
		t.Fatal(err)
	}
	return graph.Forward(id)
}

func addLinks(t *testing.T, g *graph.Graph, nodes ...graph.Node) {
	t.Helper()
	for i := 1; i < len(nodes); i++ {
		if err := g.AddLink(nodes[i-1], nodes[i], 0); err != nil {
			t.Fatal(err)
		}
	}
}

func newBridge(support int, score float64, circular bool, nodes ...graph.Node) *bridge.Bridge {
	key := bridge.Key{Start: nodes[0], End: nodes[len(nodes)-1]}
	if circular {
		key.End = nodes[0]
	}
	return &bridge.Bridge{
		Key:      key,
		Walk:     graph.Walk{Nodes: nodes, Circular: circular},
		Evidence: bridge.Evidence{Support: support, MeanIdentity: 0.97},
		Score:    score,
	}
}

func TestApplyBridges(t *testing.T) {
	g := graph.New()
	a := addSegment(t, g, "A", "AAAAAAAA", 10)
	b := addSegment(t, g, "B", "CCCCCCCC", 12)
	c := addSegment(t, g, "C", "GGGGGGGG", 9)
	d := addSegment(t, g, "D", "TTTTTTTT", 11)
	e := addSegment(t, g, "E", "ACACACAC", 10)
	f := addSegment(t, g, "F", "AGAGAGAG", 10)
	r := addSegment(t, g, "R", "ATATATAT", 30)
	addLinks(t, g, a, r, b)
	addLinks(t, g, c, r, d)
	addLinks(t, g, e, r, f)

	bridges := []*bridge.Bridge{
		newBridge(4, 4.9, false, a, r, b),
		newBridge(3, 3.9, false, c, r, d),
		newBridge(2, 2.9, false, a, r, d),
		newBridge(4, 4.9, false, a, r, b),
		newBridge(1, 1.9, false, e, r, f),
	}
	stats, err := ApplyBridges(g, bridges, config.Default().Simplify, discard)
	if err != nil {
		t.Fatal(err)
	}
	if stats != (Stats{Applied: 2, Stale: 2, Rejected: 1}) {
		t.Errorf("unexpected stats %+v", stats)
	}
	ab, ok := g.Lookup("8")
	if !ok {
		t.Fatal("merged segment not found")
	}
	s := g.Segment(ab)
	if string(s.Seq.Strand(false)) != "AAAAAAAAATATATATCCCCCCCC" || s.Depth != 10 || s.Support != 4 || s.Status != graph.Bridged {
		t.Errorf("unexpected merged segment %+v", s)
	}
	if !slices.Equal(s.Origin, []string{"A", "R", "B"}) {
		t.Errorf("unexpected origin %v", s.Origin)
	}
	cd, _ := g.Lookup("9")
	if g.Depth(graph.Forward(cd)) != 9 {
		t.Errorf("unexpected depth %v", g.Depth(graph.Forward(cd)))
	}
	if !g.Alive(r.ID()) || g.Depth(r) != 11 {
		t.Errorf("repeat copy should remain with depth 11, got %v", g.Depth(r))
	}
	if g.Len() != 5 {
		t.Errorf("expected 5 segments, got %v", g.Len())
	}
}

func TestApplyBridgesMinScore(t *testing.T) {
	g := graph.New()
	a := addSegment(t, g, "A", "AAAA", 1)
	b := addSegment(t, g, "B", "CCCC", 1)
	addLinks(t, g, a, b)
	cfg := config.Default().Simplify
	cfg.MinScore = 5
	cfg.ValidateEachStep = false
	stats, err := ApplyBridges(g, []*bridge.Bridge{newBridge(4, 4.9, false, a, b)}, cfg, discard)
	if err != nil || stats.Rejected != 1 || g.Len() != 2 {
		t.Errorf("bridge below the minimum score should be rejected: %+v, %v", stats, err)
	}
}

func TestApplyCircularBridge(t *testing.T) {
	g := graph.New()
	a := addSegment(t, g, "A", "AAAACC", 5)
	b := addSegment(t, g, "B", "CCGGGG", 6)
	c := addSegment(t, g, "C", "GGTTAA", 7)
	for _, l := range [][2]graph.Node{{a, b}, {b, c}, {c, a}} {
		if err := g.AddLink(l[0], l[1], 2); err != nil {
			t.Fatal(err)
		}
	}
	stats, err := ApplyBridges(g, []*bridge.Bridge{
		newBridge(3, 3.9, true, a, b, c),
		newBridge(3, 3.8, true, b, c, a),
	}, config.Default().Simplify, discard)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Applied != 1 || stats.Stale != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	ids := g.Segments()
	if len(ids) != 1 {
		t.Fatalf("expected a single segment, got %v", ids)
	}
	s := g.Segment(ids[0])
	if !s.Circular || string(s.Seq.Strand(false)) != "AAAACCGGGGTT" || s.Depth != 5 {
		t.Errorf("unexpected circular segment %+v", s)
	}
	if g.MarkCircular() != 1 {
		t.Error("merged cycle should count as circular")
	}
}

func depthGraph(t *testing.T, repeatDepth float64, flankDepths ...float64) *graph.Graph {
	t.Helper()
	g := graph.New()
	r := addSegment(t, g, "R", "ACGTACGTAC", repeatDepth)
	bases := []string{"AAAAAA", "CCCCCC", "GGGGGG", "TTTTTT"}
	for i, depth := range flankDepths[:2] {
		addLinks(t, g, addSegment(t, g, "in"+bases[i][:1], bases[i], depth), r)
	}
	for i, depth := range flankDepths[2:] {
		addLinks(t, g, r, addSegment(t, g, "out"+bases[i+2][:1], bases[i+2], depth))
	}
	return g
}

func TestResolveDepth(t *testing.T) {
	g := depthGraph(t, 22.3, 10, 12, 12, 10)
	cfg := config.Default().Depth
	cfg.Tolerance = 1
	stats, err := ResolveDepth(g, cfg, discard)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Resolved != 1 || stats.Merged != 2 || len(stats.Ambiguous) != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	var sequences []string
	var depths []float64
	for _, id := range g.Segments() {
		s := g.Segment(id)
		if s.Status != graph.DepthResolved {
			t.Errorf("segment %v has status %v", s.Name, s.Status)
		}
		sequences = append(sequences, string(s.Seq.Strand(false)))
		depths = append(depths, s.Depth)
	}
	if !slices.Equal(sequences, []string{"AAAAAAACGTACGTACTTTTTT", "CCCCCCACGTACGTACGGGGGG"}) {
		t.Errorf("unexpected sequences %v", sequences)
	}
	if !slices.Equal(depths, []float64{10, 12}) {
		t.Errorf("unexpected depths %v", depths)
	}
	if len(Unresolved(g)) != 0 {
		t.Error("no segment should remain unresolved")
	}
}

func TestResolveDepthAmbiguous(t *testing.T) {
	for _, test := range []struct {
		name      string
		repeat    float64
		flanks    []float64
		tolerance float64
	}{
		{"residual", 22.3, []float64{10, 12, 12, 10}, 0.2},
		{"tie", 20, []float64{10, 10, 10, 10}, 1},
		{"mismatch", 22, []float64{8, 14, 11, 11}, 1},
	} {
		g := depthGraph(t, test.repeat, test.flanks...)
		cfg := config.Default().Depth
		cfg.Tolerance = test.tolerance
		stats, err := ResolveDepth(g, cfg, discard)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Resolved != 0 || !slices.Equal(stats.Ambiguous, []int{1}) || g.Len() != 5 {
			t.Errorf("%v: repeat should stay unresolved, got %+v", test.name, stats)
		}
		if len(Unresolved(g)) != 5 {
			t.Errorf("%v: all segments should be unresolved", test.name)
		}
	}
}

func TestMergeLinearPaths(t *testing.T) {
	g := graph.New()
	a := addSegment(t, g, "A", "AAAA", 3)
	b := addSegment(t, g, "B", "CCCC", 2)
	c := addSegment(t, g, "C", "GGGG", 4)
	d := addSegment(t, g, "D", "TTTT", 1)
	e := addSegment(t, g, "E", "ACAC", 1)
	x := addSegment(t, g, "X", "AGAG", 1)
	y := addSegment(t, g, "Y", "TCTC", 1)
	addLinks(t, g, a, -b, c, d)
	addLinks(t, g, c, e)
	addLinks(t, g, x, y, x)
	g.Segment(b.ID()).Support = 7

	merged, err := MergeLinearPaths(g, discard)
	if err != nil {
		t.Fatal(err)
	}
	if merged != 2 || g.Len() != 4 {
		t.Fatalf("expected 2 merges and 4 segments, got %v and %v", merged, g.Len())
	}
	var linear, circular *graph.Segment
	for _, id := range g.Segments() {
		if s := g.Segment(id); s.Status == graph.Merged {
			if s.Circular {
				circular = s
			} else {
				linear = s
			}
		}
	}
	if linear == nil || string(linear.Seq.Strand(false)) != "AAAAGGGGGGGG" || linear.Depth != 2 || linear.Support != 7 {
		t.Errorf("unexpected linear unitig %+v", linear)
	}
	if circular == nil || string(circular.Seq.Strand(false)) != "AGAGTCTC" {
		t.Errorf("unexpected circular unitig %+v", circular)
	}
}

func TestWriteReport(t *testing.T) {
	g := graph.New()
	a := addSegment(t, g, "A", "AAAA", 2.5)
	b := addSegment(t, g, "B", "CCCC", 1)
	addLinks(t, g, a, b)
	if _, err := ApplyBridges(g, []*bridge.Bridge{newBridge(2, 2.5, false, a, b)}, config.Default().Simplify, discard); err != nil {
		t.Fatal(err)
	}
	addSegment(t, g, "C", "GG", 3)
	var buf bytes.Buffer
	if err := WriteReport(&buf, g); err != nil {
		t.Fatal(err)
	}
	expected := ReportHeader +
		"3\t8\t1\tfalse\t2\tbridged\tA,B\n" +
		"C\t2\t3\tfalse\t0\tunresolved\tC\n"
	if buf.String() != expected {
		t.Errorf("unexpected report:\n%v", buf.String())
	}
	if ids := Unresolved(g); len(ids) != 1 || g.Segment(ids[0]).Name != "C" {
		t.Errorf("unexpected unresolved segments %v", ids)
	}
}

func TestConsistencyErrorType(t *testing.T) {
	var err error = &graph.ConsistencyError{Problems: []string{"dangling link"}}
	var ce *graph.ConsistencyError
	if !errors.As(err, &ce) || !strings.Contains(err.Error(), "dangling link") {
		t.Error("consistency errors should be recognisable")
	}
}
