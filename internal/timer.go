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

package internal

import (
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// A Timer runs the phases of a computation one after the other. Every
// phase is announced on the logger. Its elapsed time is logged at info
// level when Timed is set, and at debug level otherwise. With a
// Profile prefix, phase n writes a CPU profile to <Profile>n.prof.
type Timer struct {
	Logger  *log.Logger
	Timed   bool
	Profile string
	phase   int64
}

// Run runs f as the next phase.
func (t *Timer) Run(msg string, f func() error) (err error) {
	t.phase++
	phase := t.phase
	if t.Profile != "" {
		file, ferr := os.Create(t.Profile + strconv.FormatInt(phase, 10) + ".prof")
		if ferr != nil {
			return ferr
		}
		defer func() {
			if nerr := file.Close(); err == nil {
				err = nerr
			}
		}()
		if perr := pprof.StartCPUProfile(file); perr != nil {
			return perr
		}
		defer pprof.StopCPUProfile()
	}
	t.Logger.Info(msg)
	start := time.Now()
	defer func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		if t.Timed {
			t.Logger.Info("Elapsed time", "phase", phase, "elapsed", elapsed)
		} else {
			t.Logger.Debug("Elapsed time", "phase", phase, "elapsed", elapsed)
		}
	}()
	return f()
}
