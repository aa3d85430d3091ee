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

// Package gfa reads and writes assembly graphs in the GFA1 exchange
// format. Only header, segment and link records are interpreted; other
// record types are skipped on input.
package gfa

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/elbridge/internal"
	"github.com/exascience/elbridge/sequence"
)

// Version is written into the header of output files.
const Version = "1.0"

// A Tag is an optional field of a GFA record, for example DP:f:12.5.
type Tag struct {
	Name  string
	Type  byte
	Value string
}

func (tag Tag) String() string {
	return tag.Name + ":" + string(tag.Type) + ":" + tag.Value
}

// Segment is an S record.
type Segment struct {
	Name  string
	Seq   []byte
	Depth float64
	Tags  []Tag
}

// Tag returns the first tag with the given name.
func (s *Segment) Tag(name string) (Tag, bool) {
	for _, tag := range s.Tags {
		if tag.Name == name {
			return tag, true
		}
	}
	return Tag{}, false
}

// Link is an L record between two oriented segments.
type Link struct {
	From, To               string
	FromReverse, ToReverse bool
	Overlap                int
}

// Graph is the content of a GFA file.
type Graph struct {
	Header   []Tag
	Segments []Segment
	Links    []Link
}

type records struct {
	header   []Tag
	segments []Segment
	links    []Link
}

func parseTag(field string) (Tag, error) {
	if len(field) < 5 || field[2] != ':' || field[4] != ':' {
		return Tag{}, fmt.Errorf("invalid tag %q", field)
	}
	return Tag{Name: field[:2], Type: field[3], Value: field[5:]}, nil
}

func parseTags(fields []string) ([]Tag, error) {
	var tags []Tag
	for _, field := range fields {
		tag, err := parseTag(field)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func parseOrientation(field string) (reverse bool, err error) {
	switch field {
	case "+":
		return false, nil
	case "-":
		return true, nil
	default:
		return false, fmt.Errorf("invalid orientation %q", field)
	}
}

// ParseOverlap parses the overlap field of a link. Only exact
// overlaps (<n>M) and missing overlaps (* or 0M) are supported.
func ParseOverlap(field string) (int, error) {
	if field == "*" {
		return 0, nil
	}
	if len(field) < 2 || field[len(field)-1] != 'M' {
		return 0, fmt.Errorf("unsupported overlap %q", field)
	}
	n, err := strconv.Atoi(field[:len(field)-1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid overlap %q", field)
	}
	return n, nil
}

// segmentDepth determines the depth from the DP tag, or else from one
// of the count tags relative to the segment length. Segments without
// any of these tags have depth 1.
func segmentDepth(tags []Tag, length int) (float64, error) {
	for _, tag := range tags {
		if tag.Name == "DP" {
			d, err := strconv.ParseFloat(tag.Value, 64)
			if err != nil || d < 0 {
				return 0, fmt.Errorf("invalid depth %q", tag.Value)
			}
			return d, nil
		}
	}
	for _, name := range []string{"KC", "RC", "FC"} {
		for _, tag := range tags {
			if tag.Name == name {
				count, err := strconv.ParseInt(tag.Value, 10, 64)
				if err != nil || count < 0 {
					return 0, fmt.Errorf("invalid %v count %q", name, tag.Value)
				}
				if length == 0 {
					return 0, nil
				}
				return float64(count) / float64(length), nil
			}
		}
	}
	return 1, nil
}

func parseSegment(fields []string) (Segment, error) {
	if len(fields) < 3 {
		return Segment{}, errors.New("segment record with fewer than 3 fields")
	}
	if fields[2] == "*" {
		return Segment{}, fmt.Errorf("segment %v without sequence", fields[1])
	}
	tags, err := parseTags(fields[3:])
	if err != nil {
		return Segment{}, err
	}
	seq := []byte(fields[2])
	if !sequence.Normalize(seq) {
		return Segment{}, fmt.Errorf("segment %v contains non-nucleotide letters", fields[1])
	}
	depth, err := segmentDepth(tags, len(seq))
	if err != nil {
		return Segment{}, err
	}
	return Segment{Name: fields[1], Seq: seq, Depth: depth, Tags: tags}, nil
}

func parseLink(fields []string) (link Link, err error) {
	if len(fields) < 6 {
		return link, errors.New("link record with fewer than 6 fields")
	}
	link.From, link.To = fields[1], fields[3]
	if link.FromReverse, err = parseOrientation(fields[2]); err != nil {
		return
	}
	if link.ToReverse, err = parseOrientation(fields[4]); err != nil {
		return
	}
	link.Overlap, err = ParseOverlap(fields[5])
	return
}

func parseLines(lines []string) (result records, err error) {
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "H":
			tags, err := parseTags(fields[1:])
			if err != nil {
				return result, fmt.Errorf("%v in %q", err, line)
			}
			result.header = append(result.header, tags...)
		case "S":
			segment, err := parseSegment(fields)
			if err != nil {
				return result, fmt.Errorf("%v in %q", err, line)
			}
			result.segments = append(result.segments, segment)
		case "L":
			link, err := parseLink(fields)
			if err != nil {
				return result, fmt.Errorf("%v in %q", err, line)
			}
			result.links = append(result.links, link)
		}
	}
	return result, nil
}

/*
Parse reads a GFA1 graph. Line batches are parsed in parallel and
merged in input order. Lines are not limited in length. All segments must have a sequence, all links
must refer to known segments, and segment names must be unique.

The source is only used in error messages.
*/
func Parse(r io.Reader, source string) (*Graph, error) {
	g := new(Graph)
	scanner := pipeline.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt)
	var p pipeline.Pipeline
	p.Source(scanner)
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		result, err := parseLines(data.([]string))
		if err != nil {
			p.SetErr(err)
		}
		return result
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		result := data.(records)
		g.Header = append(g.Header, result.header...)
		g.Segments = append(g.Segments, result.segments...)
		g.Links = append(g.Links, result.links...)
		return data
	})))
	p.Run()
	if err := p.Err(); err != nil {
		return nil, &internal.InputError{Source: source, Err: err}
	}
	if len(g.Segments) == 0 {
		return nil, internal.NewInputError(source, 0, "graph has no segments")
	}
	names := make(map[string]bool, len(g.Segments))
	for _, s := range g.Segments {
		if names[s.Name] {
			return nil, internal.NewInputError(source, 0, "duplicate segment name %v", s.Name)
		}
		names[s.Name] = true
	}
	for _, l := range g.Links {
		if !names[l.From] || !names[l.To] {
			return nil, internal.NewInputError(source, 0, "link %v -> %v refers to an unknown segment", l.From, l.To)
		}
	}
	return g, nil
}

// ParseFile reads a GFA1 file, which may be gzip or zstd compressed.
func ParseFile(filename string) (g *Graph, err error) {
	f, err := internal.OpenInput(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := f.Close(); err == nil {
			err = nerr
		}
	}()
	return Parse(f, filename)
}

func orientation(reverse bool) byte {
	if reverse {
		return '-'
	}
	return '+'
}

func appendTags(buf []byte, tags []Tag) []byte {
	for _, tag := range tags {
		buf = append(buf, '\t')
		buf = append(buf, tag.Name...)
		buf = append(buf, ':', tag.Type, ':')
		buf = append(buf, tag.Value...)
	}
	return buf
}

// Write formats the graph in GFA1. Records are written in the order in
// which they appear in g.
func Write(w io.Writer, g *Graph) error {
	buf := internal.ReserveByteBuffer()
	defer internal.ReleaseByteBuffer(buf)
	b := append((*buf)[:0], 'H')
	b = appendTags(b, g.Header)
	b = append(b, '\n')
	for i := range g.Segments {
		s := &g.Segments[i]
		b = append(b, 'S', '\t')
		b = append(b, s.Name...)
		b = append(b, '\t')
		b = append(b, s.Seq...)
		b = appendTags(b, s.Tags)
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			*buf = b
			return err
		}
		b = b[:0]
	}
	for _, l := range g.Links {
		b = append(b, 'L', '\t')
		b = append(b, l.From...)
		b = append(b, '\t', orientation(l.FromReverse), '\t')
		b = append(b, l.To...)
		b = append(b, '\t', orientation(l.ToReverse), '\t')
		b = strconv.AppendInt(b, int64(l.Overlap), 10)
		b = append(b, 'M', '\n')
	}
	_, err := w.Write(b)
	*buf = b
	return err
}
