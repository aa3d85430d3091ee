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

package simplify

import (
	"io"
	"strconv"
	"strings"

	"github.com/exascience/elbridge/graph"
	"github.com/exascience/elbridge/internal"
)

// Unresolved returns the IDs of the remaining segments that no
// resolution step touched.
func Unresolved(g *graph.Graph) []int {
	var result []int
	for _, id := range g.Segments() {
		if g.Segment(id).Status == graph.Unresolved {
			result = append(result, id)
		}
	}
	return result
}

// ReportHeader is the first line of a status report.
const ReportHeader = "#name\tlength\tdepth\tcircular\tsupport\tstatus\torigin\n"

// WriteReport writes one tab-separated line per remaining segment with
// its resolution status.
func WriteReport(w io.Writer, g *graph.Graph) error {
	buf := internal.ReserveByteBuffer()
	defer internal.ReleaseByteBuffer(buf)
	b := append((*buf)[:0], ReportHeader...)
	for _, id := range g.Segments() {
		s := g.Segment(id)
		b = append(b, s.Name...)
		b = append(b, '\t')
		b = strconv.AppendInt(b, int64(s.Len()), 10)
		b = append(b, '\t')
		b = strconv.AppendFloat(b, s.Depth, 'f', -1, 64)
		b = append(b, '\t')
		b = strconv.AppendBool(b, s.Circular)
		b = append(b, '\t')
		b = strconv.AppendInt(b, int64(s.Support), 10)
		b = append(b, '\t')
		b = append(b, s.Status.String()...)
		b = append(b, '\t')
		b = append(b, strings.Join(s.Origin, ",")...)
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			*buf = b
			return err
		}
		b = b[:0]
	}
	_, err := w.Write(b)
	*buf = b
	return err
}
