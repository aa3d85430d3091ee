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

package align

import (
	"slices"

	"github.com/exascience/pargo/parallel"
)

// A ReadInterval is a half-open range [Start, End) of read positions.
type ReadInterval struct {
	Start, End int
}

// extend merges next into interval if they overlap or touch, and
// reports whether it did. next must not start before interval.
func (interval *ReadInterval) extend(next ReadInterval) bool {
	if next.Start > interval.End {
		return false
	}
	interval.End = max(interval.End, next.End)
	return true
}

// Covered returns the disjoint read ranges covered by the given
// alignments of one read, in ascending order.
func Covered(alns []Alignment) []ReadInterval {
	if len(alns) == 0 {
		return nil
	}
	intervals := make([]ReadInterval, len(alns))
	for i := range alns {
		intervals[i] = ReadInterval{Start: alns[i].ReadStart, End: alns[i].ReadEnd}
	}
	slices.SortFunc(intervals, func(a, b ReadInterval) int {
		return a.Start - b.Start
	})
	result := intervals[:1]
	for _, next := range intervals[1:] {
		if !result[len(result)-1].extend(next) {
			result = append(result, next)
		}
	}
	return result
}

// AlignedBases returns the number of read bases covered by at least
// one alignment, summed over all reads.
func AlignedBases(alignments [][]Alignment) int {
	return parallel.RangeReduceInt(0, len(alignments), 0, func(low, high int) (bases int) {
		for _, alns := range alignments[low:high] {
			for _, interval := range Covered(alns) {
				bases += interval.End - interval.Start
			}
		}
		return
	}, func(x, y int) int {
		return x + y
	})
}
