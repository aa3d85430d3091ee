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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"

	"github.com/exascience/elbridge/config"
	"github.com/exascience/elbridge/gfa"
	"github.com/exascience/elbridge/graph"
	"github.com/exascience/elbridge/internal"
	"github.com/exascience/elbridge/sequence"
	"github.com/exascience/elbridge/utils"
)

// ProgramMessage is the first line written to a log file.
var ProgramMessage = fmt.Sprint(
	utils.ProgramName, " version ", utils.ProgramVersion,
	" compiled with ", runtime.Version(), " - see ", utils.ProgramURL, " for more information.",
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

func checkExist(parameter, filename string) error {
	if filename == "" {
		return fmt.Errorf("missing filename for --%v", parameter)
	}
	if _, err := os.Stat(filename); err != nil {
		switch {
		case os.IsNotExist(err):
			return fmt.Errorf("file %v for --%v does not exist", filename, parameter)
		case os.IsPermission(err):
			return fmt.Errorf("no permission to read file %v for --%v", filename, parameter)
		default:
			return fmt.Errorf("%v when trying to access file %v for --%v", err, filename, parameter)
		}
	}
	return nil
}

func checkCreate(parameter, filename string) error {
	if filename == "" {
		return nil
	}
	if _, err := os.Stat(filename); err == nil {
		// Assume that the file has been written by previous runs, and can be overwritten.
		return nil
	}
	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err == nil {
		err = os.WriteFile(filename, nil, 0666)
	}
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("no permission to create file %v for --%v", filename, parameter)
		}
		return fmt.Errorf("%v when trying to create file %v for --%v", err, filename, parameter)
	}
	return os.Remove(filename)
}

func createLogFilename() string {
	t := time.Now()
	zone, _ := t.Zone()
	return fmt.Sprintf("logs/elbridge/elbridge-%d-%02d-%02d-%02d-%02d-%02d-%09d-%v.log", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone)
}

// setLogOutput creates a log file under path, or under the home
// directory if path is empty, and redirects standard error into it.
// The returned writer writes both to the log file and to the original
// standard error.
func setLogOutput(path string) (io.Writer, string, error) {
	logPath := createLogFilename()
	var fullPath string
	if path == "" {
		fullPath = filepath.Join(os.Getenv("HOME"), logPath)
	} else {
		fullPath = filepath.Join(path, logPath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0700); err != nil {
		return nil, "", err
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return nil, "", err
	}
	fmt.Fprintln(f, ProgramMessage)

	orgStderr, err := unix.Dup(2)
	if err != nil {
		return nil, "", err
	}
	ferr := os.NewFile(uintptr(orgStderr), "/dev/stderr")
	if err := unix.Dup2(int(f.Fd()), 2); err != nil {
		return nil, "", err
	}
	return io.MultiWriter(f, ferr), fullPath, nil
}

// loadConfig reads the configuration file, if any, and applies the
// thread count.
func loadConfig(filename string, threads int) (cfg config.Config, err error) {
	if filename == "" {
		cfg = config.Default()
	} else if cfg, err = config.Load(filename); err != nil {
		return cfg, err
	}
	if threads > 0 {
		cfg.Threads = threads
	}
	if cfg.Threads > 0 {
		runtime.GOMAXPROCS(cfg.Threads)
	}
	return cfg, nil
}

func loadGraph(filename string) (*graph.Graph, error) {
	gg, err := gfa.ParseFile(filename)
	if err != nil {
		return nil, err
	}
	return graph.FromGFA(gg, filename)
}

// writeFile creates filename, including its directory, and writes it
// through a buffer.
func writeFile(filename string, write func(w io.Writer) error) (err error) {
	pathname, err := internal.FullPathname(filename)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(pathname), 0700); err != nil {
		return err
	}
	f, err := os.Create(pathname)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := f.Close(); err == nil {
			err = nerr
		}
	}()
	out := bufio.NewWriter(f)
	if err = write(out); err != nil {
		return err
	}
	return out.Flush()
}

func writeGraph(filename string, g *graph.Graph, runID string) error {
	return writeFile(filename, func(w io.Writer) error {
		return gfa.Write(w, g.ToGFA(runID))
	})
}

func writeFasta(filename string, g *graph.Graph) error {
	return writeFile(filename, func(w io.Writer) error {
		return sequence.WriteFasta(w, g.FastaRecords())
	})
}
