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

package bridge

import (
	"sort"

	psort "github.com/exascience/pargo/sort"
)

// Less is the ranking order of bridges: more support first, then the
// higher score, the higher mean identity, the walk with fewer nodes,
// and finally the smaller key. Keys are unique, so this is a total
// order on the bridges of one run.
func Less(a, b *Bridge) bool {
	switch {
	case a.Support != b.Support:
		return a.Support > b.Support
	case a.Score != b.Score:
		return a.Score > b.Score
	case a.MeanIdentity != b.MeanIdentity:
		return a.MeanIdentity > b.MeanIdentity
	case len(a.Walk.Nodes) != len(b.Walk.Nodes):
		return len(a.Walk.Nodes) < len(b.Walk.Nodes)
	default:
		return compareKeys(a.Key, b.Key) < 0
	}
}

type bridgeSorter []*Bridge

func (s bridgeSorter) SequentialSort(i, j int) {
	bridges := s[i:j]
	sort.SliceStable(bridges, func(i, j int) bool {
		return Less(bridges[i], bridges[j])
	})
}

func (s bridgeSorter) NewTemp() psort.StableSorter {
	return bridgeSorter(make([]*Bridge, len(s)))
}

func (s bridgeSorter) Len() int {
	return len(s)
}

func (s bridgeSorter) Less(i, j int) bool {
	return Less(s[i], s[j])
}

func (s bridgeSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(bridgeSorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// Rank sorts the bridges best first, using a parallel stable sort.
func Rank(bridges []*Bridge) {
	psort.StableSort(bridgeSorter(bridges))
}
