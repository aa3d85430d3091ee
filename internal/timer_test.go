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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestTimer(t *testing.T) {
	var buf bytes.Buffer
	timer := &Timer{Logger: log.New(&buf), Timed: true}
	ran := false
	if err := timer.Run("First phase.", func() error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("phase did not run: %v", err)
	}
	failure := errors.New("failure")
	if err := timer.Run("Second phase.", func() error { return failure }); !errors.Is(err, failure) {
		t.Errorf("expected the error of the phase, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "First phase.") || !strings.Contains(out, "Second phase.") {
		t.Errorf("phases were not announced:\n%v", out)
	}
	if strings.Count(out, "Elapsed time") != 2 || !strings.Contains(out, "phase=2") {
		t.Errorf("elapsed times were not logged:\n%v", out)
	}

	buf.Reset()
	quiet := &Timer{Logger: log.New(&buf)}
	if err := quiet.Run("Phase.", func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Elapsed time") {
		t.Error("untimed phases should log their time at debug level only")
	}
}
