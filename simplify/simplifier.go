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
Package simplify rewrites the assembly graph. Bridges are applied best
first, and the repeats that no bridge resolves can afterwards be
resolved from their depths alone.
*/
package simplify

import (
	"github.com/charmbracelet/log"

	"github.com/exascience/elbridge/bridge"
	"github.com/exascience/elbridge/config"
	"github.com/exascience/elbridge/graph"
)

// Stats counts what happened to the offered bridges.
type Stats struct {
	Applied  int
	Stale    int
	Rejected int
}

// stale tells whether a bridge can no longer be applied to the graph
// in its current state.
func stale(g *graph.Graph, b *bridge.Bridge) bool {
	if !g.Alive(b.Key.Start.ID()) || !g.Alive(b.Key.End.ID()) {
		return true
	}
	if !g.IsValidWalk(b.Walk) {
		return true
	}
	return b.Walk.Circular && !g.IsolatedCycle(b.Walk.Nodes)
}

/*
ApplyBridges offers the bridges to the graph in the given order, which
must be best first.

Bridges with less support than cfg.MinSupport or a score below
cfg.MinScore are rejected. A bridge whose segments were removed by an
earlier merge, or whose walk is no longer valid, is stale and skipped.
Every other bridge is merged into a single segment with status
graph.Bridged.

When cfg.ValidateEachStep is set, the graph is validated after every
merge, otherwise once at the end. A validation failure is returned as
a *graph.ConsistencyError.
*/
func ApplyBridges(g *graph.Graph, bridges []*bridge.Bridge, cfg config.SimplifyConfig, logger *log.Logger) (stats Stats, err error) {
	for _, b := range bridges {
		if b.Support < cfg.MinSupport || b.Score < cfg.MinScore {
			stats.Rejected++
			continue
		}
		if stale(g, b) {
			logger.Debug("stale bridge", "key", b.Key, "walk", b.Walk)
			stats.Stale++
			continue
		}
		id, err := g.Merge(b.Walk, graph.Bridged)
		if err != nil {
			return stats, err
		}
		g.Segment(id).Support = b.Support
		stats.Applied++
		logger.Debug("applied bridge", "key", b.Key, "walk", b.Walk, "segment", g.Segment(id).Name, "circular", b.Circular())
		if cfg.ValidateEachStep {
			if err := g.Validate(); err != nil {
				return stats, err
			}
		}
	}
	if !cfg.ValidateEachStep {
		err = g.Validate()
	}
	return stats, err
}
