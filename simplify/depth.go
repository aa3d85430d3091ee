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
	"math"

	"github.com/charmbracelet/log"

	"github.com/exascience/elbridge/config"
	"github.com/exascience/elbridge/graph"
)

// repeat is a segment entered by k flanks and left by k flanks, each
// of which is linked to nothing but the repeat on that side.
type repeat struct {
	node     graph.Node
	in, out  []graph.Node
	inDepth  []float64
	outDepth []float64
}

// findRepeat checks whether segment id has the shape of a resolvable
// repeat, and returns its flanks.
func findRepeat(g *graph.Graph, id int, maxMultiplicity int) (r repeat, ok bool) {
	s := g.Segment(id)
	if s == nil || s.Status != graph.Unresolved || s.Circular {
		return r, false
	}
	n := graph.Forward(id)
	ins, outs := g.In(n), g.Out(n)
	k := len(ins)
	if k < 2 || k > maxMultiplicity || len(outs) != k {
		return r, false
	}
	seen := map[int]bool{id: true}
	r.node = n
	for _, l := range ins {
		if seen[l.From.ID()] || g.OutDegree(l.From) != 1 {
			return r, false
		}
		seen[l.From.ID()] = true
		r.in = append(r.in, l.From)
		r.inDepth = append(r.inDepth, g.Depth(l.From))
	}
	for _, l := range outs {
		if seen[l.To.ID()] || g.InDegree(l.To) != 1 {
			return r, false
		}
		seen[l.To.ID()] = true
		r.out = append(r.out, l.To)
		r.outDepth = append(r.outDepth, g.Depth(l.To))
	}
	return r, true
}

// permutations calls f for every permutation of 0..k-1.
func permutations(k int, f func([]int)) {
	p := make([]int, k)
	for i := range p {
		p[i] = i
	}
	var generate func(int)
	generate = func(i int) {
		if i == k {
			f(p)
			return
		}
		for j := i; j < k; j++ {
			p[i], p[j] = p[j], p[i]
			generate(i + 1)
			p[i], p[j] = p[j], p[i]
		}
	}
	generate(0)
}

/*
pairing finds the unique best way to pair the incoming with the
outgoing flanks of a repeat. In a pairing, the depths of the flanks of
each pair must differ by at most tolerance, and the depth of the repeat
must differ by at most tolerance from the sum of the pair depths, the
mean depths of the two flanks of each pair. The best pairing has the
smallest largest difference within a pair. If two pairings are equally
good, the repeat is ambiguous.
*/
func pairing(r repeat, depth, tolerance float64) (best []int, ok bool) {
	total := 0.0
	for i := range r.in {
		total += (r.inDepth[i] + r.outDepth[i]) / 2
	}
	if math.Abs(depth-total) > tolerance {
		return nil, false
	}
	bestResidual := math.Inf(1)
	ambiguous := false
	permutations(len(r.in), func(p []int) {
		residual := 0.0
		for i, j := range p {
			residual = math.Max(residual, math.Abs(r.inDepth[i]-r.outDepth[j]))
		}
		switch {
		case residual > tolerance:
		case residual < bestResidual:
			best, bestResidual, ambiguous = append(best[:0], p...), residual, false
		case residual == bestResidual:
			ambiguous = true
		}
	})
	if best == nil || ambiguous {
		return nil, false
	}
	return best, true
}

// DepthStats counts the outcome of depth-based repeat resolution.
type DepthStats struct {
	Resolved  int   // repeats resolved
	Merged    int   // new segments, one per flank pair
	Ambiguous []int // IDs of repeats whose depths admit no unique pairing
}

/*
ResolveDepth resolves repeats from depth arithmetic. A candidate repeat
is an unresolved, non-circular segment R with k incoming and k outgoing
flanks, 2 ≤ k ≤ cfg.MaxMultiplicity, where each flank is a distinct
segment linked only to R on that side. If the flank depths admit a
unique best pairing within cfg.Tolerance, every pair is merged with R
into a new segment with status graph.DepthResolved. The first merges
keep R as a shared repeat copy; the last one consumes it.
*/
func ResolveDepth(g *graph.Graph, cfg config.DepthConfig, logger *log.Logger) (stats DepthStats, err error) {
	for _, id := range g.Segments() {
		r, ok := findRepeat(g, id, cfg.MaxMultiplicity)
		if !ok {
			continue
		}
		p, ok := pairing(r, g.Depth(r.node), cfg.Tolerance)
		if !ok {
			logger.Debug("ambiguous repeat", "segment", g.Segment(id).Name, "depth", g.Depth(r.node), "in", r.inDepth, "out", r.outDepth)
			stats.Ambiguous = append(stats.Ambiguous, id)
			continue
		}
		name := g.Segment(id).Name
		for i, j := range p {
			merged, err := g.Merge(graph.NewWalk(r.in[i], r.node, r.out[j]), graph.DepthResolved)
			if err != nil {
				return stats, err
			}
			stats.Merged++
			logger.Debug("depth-resolved pair", "repeat", name, "from", r.in[i], "to", r.out[j], "segment", g.Segment(merged).Name)
		}
		stats.Resolved++
		if err := g.Validate(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
