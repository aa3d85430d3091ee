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
Package engine runs the complete long-read completion of an assembly
graph: alignment, bridge building, bridge application, depth-based
repeat resolution, and the optional merge of linear paths.
*/
package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/exascience/elbridge/align"
	"github.com/exascience/elbridge/bridge"
	"github.com/exascience/elbridge/config"
	"github.com/exascience/elbridge/graph"
	"github.com/exascience/elbridge/internal"
	"github.com/exascience/elbridge/sequence"
	"github.com/exascience/elbridge/simplify"
)

// Result describes the outcome of a run. The graph passed to Run is
// modified in place.
type Result struct {
	Alignments [][]align.Alignment // per read ID
	Bridges    []*bridge.Bridge    // best first

	Reads        int
	AlignedReads int
	Alignment    int // total number of alignments
	AlignedBases int // read bases covered by an alignment

	Bridging     simplify.Stats
	Depth        simplify.DepthStats
	LinearMerges int

	Segments   int
	Circular   int
	Components int
	Unresolved []int // IDs of the segments no step resolved
}

func (r *Result) summarise(g *graph.Graph) {
	r.Circular = g.MarkCircular()
	r.Segments = g.Len()
	r.Components = len(g.Components())
	r.Unresolved = simplify.Unresolved(g)
}

/*
Run completes the assembly graph g with the long reads in store, and
returns what it did. Bridges are scored with scorer, or with
bridge.DefaultScorer if scorer is nil.

Without reads, g is left unchanged and every segment stays
unresolved. A cancelled context stops the alignment phase, and Run
then returns ctx.Err(). A *graph.ConsistencyError indicates that a
merge corrupted the graph, and is fatal.
*/
func Run(ctx context.Context, g *graph.Graph, store *sequence.Store, cfg config.Config, scorer bridge.Scorer, logger *log.Logger) (*Result, error) {
	result := &Result{Reads: store.Len()}
	logger.Info("input graph", "segments", g.Len(), "links", len(g.Links()), "reads", result.Reads, "bases", store.TotalBases())
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("input graph: %w", err)
	}
	if result.Reads == 0 {
		logger.Warn("no long reads, the graph is left unchanged")
		result.summarise(g)
		return result, nil
	}

	phases := &internal.Timer{Logger: logger}
	var idx *align.Index
	err := phases.Run("Indexing graph segments.", func() error {
		idx = align.NewIndex(g, cfg.Align)
		logger.Debug("seed index", "k-mers", idx.Kmers())
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = phases.Run("Aligning long reads.", func() (err error) {
		result.Alignments, err = align.AlignReads(ctx, idx, store)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Alignment, result.AlignedReads = align.Count(result.Alignments)
	result.AlignedBases = align.AlignedBases(result.Alignments)
	logger.Info("aligned reads", "aligned", result.AlignedReads, "alignments", result.Alignment,
		"bases", fmt.Sprintf("%.1f%%", 100*float64(result.AlignedBases)/float64(max(1, store.TotalBases()))))

	err = phases.Run("Building bridges.", func() error {
		result.Bridges = bridge.Build(g, store, result.Alignments, cfg.Bridge, scorer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("bridges", "count", len(result.Bridges))

	err = phases.Run("Applying bridges.", func() (err error) {
		result.Bridging, err = simplify.ApplyBridges(g, result.Bridges, cfg.Simplify, logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("bridging", "applied", result.Bridging.Applied, "stale", result.Bridging.Stale, "rejected", result.Bridging.Rejected)

	if cfg.Depth.Enabled {
		err = phases.Run("Resolving repeats by depth.", func() (err error) {
			result.Depth, err = simplify.ResolveDepth(g, cfg.Depth, logger)
			return err
		})
		if err != nil {
			return nil, err
		}
		logger.Info("depth resolution", "resolved", result.Depth.Resolved, "ambiguous", len(result.Depth.Ambiguous))
	}

	if cfg.Simplify.MergeLinearPaths {
		err = phases.Run("Merging linear paths.", func() (err error) {
			result.LinearMerges, err = simplify.MergeLinearPaths(g, logger)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	result.summarise(g)
	logger.Info("output graph", "segments", result.Segments, "circular", result.Circular, "components", result.Components, "unresolved", len(result.Unresolved))
	return result, nil
}
