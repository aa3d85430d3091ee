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

// Package config holds the run-wide thresholds of the completion
// engine. A Config value is passed explicitly to every stage; there is
// no global state, so several runs with different thresholds can share
// one process.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/exascience/elbridge/internal"
)

// AlignConfig are the seed and scoring settings of the aligner.
type AlignConfig struct {
	// length of the exact k-mer seeds, at most 32
	SeedLength int `toml:"seed-length"`

	// k-mers that occur more often than this in the graph are not used as seeds
	MaxSeedOccurrences int `toml:"max-seed-occurrences"`

	// minimum number of seed hits in one diagonal cluster before a band is aligned
	MinSeedHits int `toml:"min-seed-hits"`

	// seed hits whose diagonals differ by more than this end up in different clusters
	DiagonalGap int `toml:"diagonal-gap"`

	// extra diagonals added on both sides of a seed cluster
	BandPadding int `toml:"band-padding"`

	Match     int32 `toml:"match"`
	Mismatch  int32 `toml:"mismatch"`
	GapOpen   int32 `toml:"gap-open"`
	GapExtend int32 `toml:"gap-extend"`

	// matching bases divided by alignment columns
	MinIdentity float64 `toml:"min-identity"`

	// minimum number of read bases covered by an alignment
	MinAlignedLength int `toml:"min-aligned-length"`
}

// BridgeConfig are the settings for chaining alignments and building bridges.
type BridgeConfig struct {
	// read overlap allowed between two alignments on top of the largest link overlap
	OverlapSlack int `toml:"overlap-slack"`

	// absolute part of the tolerated difference between read gap and graph gap
	GapToleranceBases int `toml:"gap-tolerance-bases"`

	// relative part of the tolerated difference between read gap and graph gap
	GapToleranceFraction float64 `toml:"gap-tolerance-fraction"`

	// maximum number of unaligned nodes between two aligned nodes
	MaxPathNodes int `toml:"max-path-nodes"`

	// upper bound on walks explored per pair of consecutive alignments
	MaxPathSearch int `toml:"max-path-search"`

	// longest read stretch that may be used to fill a gap between two dead ends, 0 disables gap filling
	MaxGapFill int `toml:"max-gap-fill"`
}

// SimplifyConfig are the settings for applying bridges.
type SimplifyConfig struct {
	// bridges with fewer supporting reads are never applied
	MinSupport int `toml:"min-support"`

	// bridges with a lower score are never applied
	MinScore float64 `toml:"min-score"`

	// merge non-branching walks after bridging
	MergeLinearPaths bool `toml:"merge-linear-paths"`

	// check the complete graph after every merge
	ValidateEachStep bool `toml:"validate-each-step"`
}

// DepthConfig are the settings of the depth-based repeat resolver.
type DepthConfig struct {
	Enabled bool `toml:"enabled"`

	// largest accepted absolute depth residual
	Tolerance float64 `toml:"tolerance"`

	// largest number of flank pairs through one repeat node
	MaxMultiplicity int `toml:"max-multiplicity"`
}

// Config is the root-level settings struct, a mix of the settings in
// an optional TOML file and those given on the command line.
type Config struct {
	// number of worker threads, 0 means all available processors
	Threads int `toml:"threads"`

	Align    AlignConfig    `toml:"align"`
	Bridge   BridgeConfig   `toml:"bridge"`
	Simplify SimplifyConfig `toml:"simplify"`
	Depth    DepthConfig    `toml:"depth"`
}

// Default returns the default settings. The scoring scheme is a
// match reward of 3, a mismatch penalty of 6, and affine gaps of
// 5 to open and 2 to extend.
func Default() Config {
	return Config{
		Align: AlignConfig{
			SeedLength:         13,
			MaxSeedOccurrences: 100,
			MinSeedHits:        3,
			DiagonalGap:        60,
			BandPadding:        40,
			Match:              3,
			Mismatch:           -6,
			GapOpen:            -5,
			GapExtend:          -2,
			MinIdentity:        0.7,
			MinAlignedLength:   100,
		},
		Bridge: BridgeConfig{
			OverlapSlack:         30,
			GapToleranceBases:    100,
			GapToleranceFraction: 0.25,
			MaxPathNodes:         8,
			MaxPathSearch:        1000,
			MaxGapFill:           5000,
		},
		Simplify: SimplifyConfig{
			MinSupport:       2,
			ValidateEachStep: true,
		},
		Depth: DepthConfig{
			Enabled:         true,
			Tolerance:       0.5,
			MaxMultiplicity: 4,
		},
	}
}

// Load decodes a TOML file on top of the default settings. Keys that
// are not present in the file keep their default values.
func Load(filename string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(filename)
	if err != nil {
		return c, err
	}
	meta, err := toml.Decode(string(data), &c)
	if err != nil {
		return c, &internal.InputError{Source: filename, Err: err}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return c, internal.NewInputError(filename, 0, "unknown setting %v", undecoded[0].String())
	}
	return c, c.Validate()
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	var errs []error
	if c.Threads < 0 {
		errs = append(errs, fmt.Errorf("threads must not be negative, got %v", c.Threads))
	}
	a := c.Align
	if a.SeedLength < 4 || a.SeedLength > 32 {
		errs = append(errs, fmt.Errorf("align.seed-length must be between 4 and 32, got %v", a.SeedLength))
	}
	if a.MaxSeedOccurrences < 1 {
		errs = append(errs, fmt.Errorf("align.max-seed-occurrences must be positive, got %v", a.MaxSeedOccurrences))
	}
	if a.MinSeedHits < 1 {
		errs = append(errs, fmt.Errorf("align.min-seed-hits must be positive, got %v", a.MinSeedHits))
	}
	if a.DiagonalGap < 0 || a.BandPadding < 0 {
		errs = append(errs, errors.New("align.diagonal-gap and align.band-padding must not be negative"))
	}
	if a.Match <= 0 {
		errs = append(errs, fmt.Errorf("align.match must be positive, got %v", a.Match))
	}
	if a.Mismatch >= 0 || a.GapOpen >= 0 || a.GapExtend >= 0 {
		errs = append(errs, errors.New("align.mismatch, align.gap-open and align.gap-extend must be negative"))
	}
	if a.MinIdentity < 0 || a.MinIdentity > 1 {
		errs = append(errs, fmt.Errorf("align.min-identity must be between 0 and 1, got %v", a.MinIdentity))
	}
	b := c.Bridge
	if b.OverlapSlack < 0 || b.GapToleranceBases < 0 || b.GapToleranceFraction < 0 || b.MaxGapFill < 0 {
		errs = append(errs, errors.New("bridge tolerances must not be negative"))
	}
	if b.MaxPathNodes < 0 || b.MaxPathSearch < 1 {
		errs = append(errs, errors.New("bridge.max-path-nodes must not be negative and bridge.max-path-search must be positive"))
	}
	if c.Simplify.MinSupport < 1 {
		errs = append(errs, fmt.Errorf("simplify.min-support must be at least 1, got %v", c.Simplify.MinSupport))
	}
	if c.Depth.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("depth.tolerance must not be negative, got %v", c.Depth.Tolerance))
	}
	if c.Depth.MaxMultiplicity < 2 || c.Depth.MaxMultiplicity > 6 {
		errs = append(errs, fmt.Errorf("depth.max-multiplicity must be between 2 and 6, got %v", c.Depth.MaxMultiplicity))
	}
	return errors.Join(errs...)
}
