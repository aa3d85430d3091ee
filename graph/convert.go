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
	"strconv"
	"strings"

	"github.com/exascience/elbridge/gfa"
	"github.com/exascience/elbridge/internal"
	"github.com/exascience/elbridge/sequence"
)

// Segment tags written by ToGFA and understood by FromGFA, in addition
// to the standard LN and DP tags.
const (
	CircularTag = "ci"
	SupportTag  = "bs"
	StatusTag   = "st"
	OriginTag   = "or"
)

// FromGFA builds a graph from parsed GFA records. Segment IDs follow
// the order of the segments in the file. The source is only used in
// error messages.
func FromGFA(gg *gfa.Graph, source string) (*Graph, error) {
	g := New()
	for i := range gg.Segments {
		gs := &gg.Segments[i]
		id, err := g.AddSegment(gs.Name, gs.Seq, gs.Depth)
		if err != nil {
			return nil, &internal.InputError{Source: source, Err: err}
		}
		s := g.segments[id]
		for _, tag := range gs.Tags {
			switch tag.Name {
			case CircularTag:
				s.Circular = tag.Value == "true"
			case SupportTag:
				support, err := strconv.Atoi(tag.Value)
				if err != nil || support < 0 {
					return nil, internal.NewInputError(source, 0, "invalid support %q for segment %v", tag.Value, gs.Name)
				}
				s.Support = support
			case StatusTag:
				status, err := ParseStatus(tag.Value)
				if err != nil {
					return nil, &internal.InputError{Source: source, Err: err}
				}
				s.Status = status
			case OriginTag:
				if tag.Value != "" {
					s.Origin = strings.Split(tag.Value, ",")
				}
			}
		}
	}
	for _, l := range gg.Links {
		from, _ := g.Lookup(l.From)
		to, _ := g.Lookup(l.To)
		f, t := Forward(from), Forward(to)
		if l.FromReverse {
			f = Reverse(from)
		}
		if l.ToReverse {
			t = Reverse(to)
		}
		if err := g.AddLink(f, t, l.Overlap); err != nil {
			return nil, &internal.InputError{Source: source, Err: err}
		}
	}
	return g, nil
}

// ToGFA converts the live part of the graph to GFA records, with the
// given run identifier in the header.
func (g *Graph) ToGFA(runID string) *gfa.Graph {
	gg := &gfa.Graph{Header: []gfa.Tag{{Name: "VN", Type: 'Z', Value: gfa.Version}}}
	if runID != "" {
		gg.Header = append(gg.Header, gfa.Tag{Name: "RI", Type: 'Z', Value: runID})
	}
	for _, id := range g.Segments() {
		s := g.segments[id]
		gg.Segments = append(gg.Segments, gfa.Segment{
			Name:  s.Name,
			Seq:   s.Seq.Strand(false),
			Depth: s.Depth,
			Tags: []gfa.Tag{
				{Name: "LN", Type: 'i', Value: strconv.Itoa(s.Len())},
				{Name: "DP", Type: 'f', Value: strconv.FormatFloat(s.Depth, 'f', -1, 64)},
				{Name: CircularTag, Type: 'Z', Value: strconv.FormatBool(s.Circular)},
				{Name: SupportTag, Type: 'i', Value: strconv.Itoa(s.Support)},
				{Name: StatusTag, Type: 'Z', Value: s.Status.String()},
				{Name: OriginTag, Type: 'Z', Value: strings.Join(s.Origin, ",")},
			},
		})
	}
	for _, l := range g.Links() {
		gg.Links = append(gg.Links, gfa.Link{
			From:        g.segments[l.From.ID()].Name,
			FromReverse: l.From.IsReverse(),
			To:          g.segments[l.To.ID()].Name,
			ToReverse:   l.To.IsReverse(),
			Overlap:     l.Overlap,
		})
	}
	return gg
}

// FastaRecords returns one FASTA record per live segment. The
// description carries the length, depth, and circular flag.
func (g *Graph) FastaRecords() []sequence.Record {
	var records []sequence.Record
	for _, id := range g.Segments() {
		s := g.segments[id]
		records = append(records, sequence.Record{
			Name: s.Name,
			Description: "length=" + strconv.Itoa(s.Len()) +
				" depth=" + strconv.FormatFloat(s.Depth, 'f', 2, 64) +
				" circular=" + strconv.FormatBool(s.Circular),
			Bases: s.Seq.Strand(false),
		})
	}
	return records
}
