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
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/exascience/elbridge/align"
	"github.com/exascience/elbridge/config"
	"github.com/exascience/elbridge/engine"
	"github.com/exascience/elbridge/graph"
	"github.com/exascience/elbridge/internal"
	"github.com/exascience/elbridge/sequence"
	"github.com/exascience/elbridge/simplify"
)

// settings are the command line flags that override the configuration file.
type settings struct {
	configFile string
	threads    int
	timed      bool
	profile    string

	seedLength     int
	minIdentity    float64
	minSupport     int
	minScore       float64
	depthTolerance float64
	noDepth        bool
	mergeLinear    bool
}

func (s *settings) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.configFile, "config", "", "TOML configuration file")
	f.IntVar(&s.threads, "threads", 0, "number of worker threads (default all processors)")
	f.BoolVar(&s.timed, "timed", false, "log the time of every phase")
	f.StringVar(&s.profile, "profile", "", "write a CPU profile per phase with this file prefix")
	f.IntVar(&s.seedLength, "seed-length", 0, "k-mer length of alignment seeds")
	f.Float64Var(&s.minIdentity, "min-identity", 0, "minimum alignment identity")
	f.IntVar(&s.minSupport, "min-support", 0, "minimum number of reads supporting an applied bridge")
	f.Float64Var(&s.minScore, "min-score", 0, "minimum score of an applied bridge")
	f.Float64Var(&s.depthTolerance, "depth-tolerance", 0, "largest depth residual accepted by the depth resolver")
	f.BoolVar(&s.noDepth, "no-depth", false, "skip depth-based repeat resolution")
	f.BoolVar(&s.mergeLinear, "merge-linear", false, "merge non-branching paths after bridging")
}

// load reads the configuration and applies the flags that were given.
func (s *settings) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadConfig(s.configFile, s.threads)
	if err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	if f.Changed("seed-length") {
		cfg.Align.SeedLength = s.seedLength
	}
	if f.Changed("min-identity") {
		cfg.Align.MinIdentity = s.minIdentity
	}
	if f.Changed("min-support") {
		cfg.Simplify.MinSupport = s.minSupport
	}
	if f.Changed("min-score") {
		cfg.Simplify.MinScore = s.minScore
	}
	if f.Changed("depth-tolerance") {
		cfg.Depth.Tolerance = s.depthTolerance
	}
	if s.noDepth {
		cfg.Depth.Enabled = false
	}
	if s.mergeLinear {
		cfg.Simplify.MergeLinearPaths = true
	}
	return cfg, cfg.Validate()
}

type bridgeOptions struct {
	settings
	graphFile, readsFile, output           string
	fasta, alignments, dot, svg, reportOut string
}

func newBridgeCmd() *cobra.Command {
	var opts bridgeOptions
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Complete an assembly graph with long reads",
		Long: "bridge aligns long reads to the segments of a GFA assembly graph, builds bridges from the alignments, " +
			"applies them best first, resolves remaining repeats by depth, and writes the annotated graph.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(cmd, &opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.graphFile, "graph", "", "input GFA assembly graph")
	f.StringVar(&opts.readsFile, "reads", "", "long reads in FASTA or FASTQ format, optionally compressed")
	f.StringVarP(&opts.output, "out", "o", "", "output GFA graph")
	f.StringVar(&opts.fasta, "fasta", "", "also write the segments as FASTA")
	f.StringVar(&opts.alignments, "alignments", "", "also write the read alignments as SAM")
	f.StringVar(&opts.dot, "dot", "", "also write the graph in Graphviz DOT format")
	f.StringVar(&opts.svg, "svg", "", "also render the graph as SVG")
	f.StringVar(&opts.reportOut, "report", "", "also write a tab-separated status report per segment")
	opts.addFlags(cmd)
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("reads")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runBridge(cmd *cobra.Command, opts *bridgeOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	if err := checkExist("graph", opts.graphFile); err != nil {
		return err
	}
	if err := checkExist("reads", opts.readsFile); err != nil {
		return err
	}
	for parameter, filename := range map[string]string{
		"out": opts.output, "fasta": opts.fasta, "alignments": opts.alignments,
		"dot": opts.dot, "svg": opts.svg, "report": opts.reportOut,
	} {
		if err := checkCreate(parameter, filename); err != nil {
			return err
		}
	}
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	logger.Info("Starting run", "id", runID, "threads", cfg.Threads)

	t := &internal.Timer{Logger: logger, Timed: opts.timed, Profile: opts.profile}
	var (
		g     *graph.Graph
		store *sequence.Store
	)
	err = t.Run("Loading graph and reads.", func() (err error) {
		if g, err = loadGraph(opts.graphFile); err != nil {
			return err
		}
		store, err = sequence.LoadReads(opts.readsFile)
		return err
	})
	if err != nil {
		return err
	}

	var original *graph.Graph
	if opts.alignments != "" {
		original = g.Clone()
	}
	var result *engine.Result
	err = t.Run("Completing the graph.", func() (err error) {
		result, err = engine.Run(ctx, g, store, cfg, nil, logger)
		return err
	})
	if err != nil {
		return err
	}

	return t.Run("Writing output.", func() error {
		if err := writeGraph(opts.output, g, runID); err != nil {
			return err
		}
		if opts.fasta != "" {
			if err := writeFasta(opts.fasta, g); err != nil {
				return err
			}
		}
		if opts.alignments != "" {
			err := writeFile(opts.alignments, func(w io.Writer) error {
				return align.WriteSAM(w, original, store, result.Alignments, runID)
			})
			if err != nil {
				return err
			}
		}
		if opts.reportOut != "" {
			if err := writeFile(opts.reportOut, func(w io.Writer) error { return simplify.WriteReport(w, g) }); err != nil {
				return err
			}
		}
		return writeRendering(cmd, g, opts.dot, opts.svg)
	})
}

func writeRendering(cmd *cobra.Command, g *graph.Graph, dotFile, svgFile string) error {
	if dotFile == "" && svgFile == "" {
		return nil
	}
	dot := g.ToDOT()
	if dotFile != "" {
		if err := os.WriteFile(dotFile, []byte(dot), 0666); err != nil {
			return err
		}
	}
	if svgFile != "" {
		svg, err := graph.RenderSVG(cmd.Context(), dot)
		if err != nil {
			return fmt.Errorf("rendering %v: %w", svgFile, err)
		}
		return os.WriteFile(svgFile, svg, 0666)
	}
	return nil
}
