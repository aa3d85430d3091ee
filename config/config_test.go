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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/exascience/elbridge/internal"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Align.SeedLength = 40
	if c.Validate() == nil {
		t.Error("seed length 40 accepted")
	}
	c = Default()
	c.Align.GapOpen = 5
	if c.Validate() == nil {
		t.Error("positive gap open accepted")
	}
	c = Default()
	c.Simplify.MinSupport = 0
	if c.Validate() == nil {
		t.Error("min support 0 accepted")
	}
	c = Default()
	c.Depth.Tolerance = -1
	if c.Validate() == nil {
		t.Error("negative depth tolerance accepted")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "elbridge.toml")
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestLoad(t *testing.T) {
	filename := writeFile(t, `
threads = 4

[align]
seed-length = 11
min-identity = 0.9

[depth]
tolerance = 1.0
`)
	c, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if c.Threads != 4 || c.Align.SeedLength != 11 || c.Align.MinIdentity != 0.9 || c.Depth.Tolerance != 1.0 {
		t.Errorf("settings not loaded: %+v", c)
	}
	if c.Align.Match != Default().Align.Match || c.Simplify.MinSupport != Default().Simplify.MinSupport {
		t.Error("defaults not kept for missing keys")
	}
}

func TestLoadUnknownKey(t *testing.T) {
	filename := writeFile(t, "[align]\nseed-size = 11\n")
	_, err := Load(filename)
	var inputErr *internal.InputError
	if !errors.As(err, &inputErr) {
		t.Errorf("expected an input error, got %v", err)
	}
}

func TestLoadInvalidValue(t *testing.T) {
	filename := writeFile(t, "[align]\nseed-length = 2\n")
	if _, err := Load(filename); err == nil {
		t.Error("invalid seed length accepted")
	}
}
