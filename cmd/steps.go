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

package cmd

import (
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/exascience/elbridge/align"
	"github.com/exascience/elbridge/graph"
	"github.com/exascience/elbridge/internal"
	"github.com/exascience/elbridge/sequence"
	"github.com/exascience/elbridge/simplify"
)

func newAlignCmd() *cobra.Command {
	var (
		s                            settings
		graphFile, readsFile, output string
	)
	cmd := &cobra.Command{
		Use:   "align",
		Short: "Align long reads to the segments of an assembly graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if err := checkExist("graph", graphFile); err != nil {
				return err
			}
			if err := checkExist("reads", readsFile); err != nil {
				return err
			}
			if err := checkCreate("out", output); err != nil {
				return err
			}
			cfg, err := s.load(cmd)
			if err != nil {
				return err
			}
			t := &internal.Timer{Logger: logger, Timed: s.timed, Profile: s.profile}
			var (
				g     *graph.Graph
				store *sequence.Store
			)
			err = t.Run("Loading graph and reads.", func() (err error) {
				if g, err = loadGraph(graphFile); err != nil {
					return err
				}
				store, err = sequence.LoadReads(readsFile)
				return err
			})
			if err != nil {
				return err
			}
			var alignments [][]align.Alignment
			err = t.Run("Aligning long reads.", func() (err error) {
				alignments, err = align.AlignReads(ctx, align.NewIndex(g, cfg.Align), store)
				return err
			})
			if err != nil {
				return err
			}
			total, aligned := align.Count(alignments)
			logger.Info("aligned reads", "reads", store.Len(), "aligned", aligned, "alignments", total)
			return t.Run("Writing alignments.", func() error {
				return writeFile(output, func(w io.Writer) error {
					return align.WriteSAM(w, g, store, alignments, uuid.NewString())
				})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&graphFile, "graph", "", "input GFA assembly graph")
	f.StringVar(&readsFile, "reads", "", "long reads in FASTA or FASTQ format, optionally compressed")
	f.StringVarP(&output, "out", "o", "", "output SAM file")
	s.addFlags(cmd)
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("reads")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newDepthCmd() *cobra.Command {
	var (
		s                            settings
		graphFile, output, reportOut string
	)
	cmd := &cobra.Command{
		Use:   "depth",
		Short: "Resolve repeats of an assembly graph from segment depths alone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			if err := checkExist("graph", graphFile); err != nil {
				return err
			}
			if err := checkCreate("out", output); err != nil {
				return err
			}
			cfg, err := s.load(cmd)
			if err != nil {
				return err
			}
			g, err := loadGraph(graphFile)
			if err != nil {
				return err
			}
			stats, err := simplify.ResolveDepth(g, cfg.Depth, logger)
			if err != nil {
				return err
			}
			logger.Info("depth resolution", "resolved", stats.Resolved, "merged", stats.Merged, "ambiguous", len(stats.Ambiguous))
			if cfg.Simplify.MergeLinearPaths {
				merged, err := simplify.MergeLinearPaths(g, logger)
				if err != nil {
					return err
				}
				logger.Info("linear paths", "merged", merged)
			}
			g.MarkCircular()
			if err := writeGraph(output, g, uuid.NewString()); err != nil {
				return err
			}
			if reportOut != "" {
				return writeFile(reportOut, func(w io.Writer) error { return simplify.WriteReport(w, g) })
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&graphFile, "graph", "", "input GFA assembly graph")
	f.StringVarP(&output, "out", "o", "", "output GFA graph")
	f.StringVar(&reportOut, "report", "", "also write a tab-separated status report per segment")
	s.addFlags(cmd)
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		graphFile, output string
		dotOnly           bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an assembly graph with Graphviz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkExist("graph", graphFile); err != nil {
				return err
			}
			g, err := loadGraph(graphFile)
			if err != nil {
				return err
			}
			g.MarkCircular()
			if dotOnly {
				return writeRendering(cmd, g, output, "")
			}
			return writeRendering(cmd, g, "", output)
		},
	}
	f := cmd.Flags()
	f.StringVar(&graphFile, "graph", "", "input GFA assembly graph")
	f.StringVarP(&output, "out", "o", "", "output SVG file")
	f.BoolVar(&dotOnly, "dot", false, "write Graphviz DOT instead of SVG")
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newGfaToFastaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gfa-to-fasta graph.gfa segments.fasta",
		Short: "Write the segments of a GFA assembly graph as FASTA",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkExist("graph", args[0]); err != nil {
				return err
			}
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}
			g.MarkCircular()
			return writeFasta(args[1], g)
		},
	}
}
