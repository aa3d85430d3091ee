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
Package cmd implements the elbridge command line: the complete bridge
run, and the alignment, depth resolution, rendering, and conversion
steps on their own.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/exascience/elbridge/utils"
)

// Execute runs the elbridge command line.
func Execute() error {
	var (
		verbose bool
		logPath string
	)
	root := &cobra.Command{
		Use:          utils.ProgramName,
		Short:        "Complete short-read assembly graphs with long reads",
		Long:         "elbridge aligns long reads to a short-read assembly graph, builds bridges from the alignments, and applies them to resolve repeats and close circular sequences.",
		Version:      utils.ProgramVersion,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			var w io.Writer = os.Stderr
			var logFile string
			if cmd.Flags().Changed("log-path") {
				var err error
				if w, logFile, err = setLogOutput(logPath); err != nil {
					return fmt.Errorf("creating log file: %w", err)
				}
			}
			logger := newLogger(w, level)
			if logFile != "" {
				logger.Info("Created log file", "path", logFile)
				logger.Info("Command line", "args", os.Args)
			}
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&logPath, "log-path", "", "also write the log to a timestamped file under this directory (home directory if empty)")

	root.AddCommand(newBridgeCmd())
	root.AddCommand(newAlignCmd())
	root.AddCommand(newDepthCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newGfaToFastaCmd())
	root.AddCommand(newVersionCmd())

	return root.ExecuteContext(context.Background())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), ProgramMessage)
		},
	}
}
