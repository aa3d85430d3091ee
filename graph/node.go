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

package graph

import (
	"fmt"
	"strconv"

	"github.com/exascience/elbridge/sequence"
)

// A Node is one strand of a segment: +id is the forward strand, -id
// the reverse complement. The zero Node is invalid.
type Node int

// Forward returns the forward strand of segment id.
func Forward(id int) Node {
	return Node(id)
}

// Reverse returns the reverse-complement strand of segment id.
func Reverse(id int) Node {
	return Node(-id)
}

// ID returns the segment the node belongs to.
func (n Node) ID() int {
	if n < 0 {
		return int(-n)
	}
	return int(n)
}

// IsReverse tells whether n is the reverse-complement strand.
func (n Node) IsReverse() bool {
	return n < 0
}

// Twin returns the other strand of the same segment.
func (n Node) Twin() Node {
	return -n
}

// Twin returns the other strand of n.
func Twin(n Node) Node {
	return -n
}

func (n Node) String() string {
	if n < 0 {
		return strconv.Itoa(int(-n)) + "-"
	}
	return strconv.Itoa(int(n)) + "+"
}

// Status is the resolution status of a segment.
type Status int

const (
	// Unresolved segments were not touched by any resolution step.
	Unresolved Status = iota
	// Bridged segments are the result of applying a long-read bridge.
	Bridged
	// DepthResolved segments are the result of depth-based repeat resolution.
	DepthResolved
	// Merged segments are the result of merging a non-branching walk.
	Merged
)

var statusNames = [...]string{"unresolved", "bridged", "depth-resolved", "merged"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
	return statusNames[s]
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for i, s := range statusNames {
		if s == name {
			return Status(i), nil
		}
	}
	return Unresolved, fmt.Errorf("unknown segment status %q", name)
}

// A Segment is one contig of the assembly graph. Both strands are
// stored together in Seq.
type Segment struct {
	ID       int
	Name     string
	Seq      sequence.Pair
	Depth    float64
	Circular bool
	Support  int
	Status   Status
	Origin   []string // names of the input segments this segment was built from
}

// Len returns the number of bases of the segment.
func (s *Segment) Len() int {
	return s.Seq.Len()
}
