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
	"fmt"
	"io"

	"github.com/biogo/hts/sam"

	"github.com/exascience/elbridge/graph"
	"github.com/exascience/elbridge/sequence"
	"github.com/exascience/elbridge/utils"
)

func samHeader(g *graph.Graph, runID string) (*sam.Header, map[int]*sam.Reference, error) {
	ids := g.Segments()
	refs := make([]*sam.Reference, 0, len(ids))
	byID := make(map[int]*sam.Reference, len(ids))
	for _, id := range ids {
		s := g.Segment(id)
		ref, err := sam.NewReference(s.Name, "", "", s.Len(), nil, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create reference %s: %w", s.Name, err)
		}
		refs = append(refs, ref)
		byID[id] = ref
	}
	header, err := sam.NewHeader(nil, refs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create header: %w", err)
	}
	header.Version = "1.6"
	header.SortOrder = sam.Unsorted
	if err := header.AddProgram(sam.NewProgram(utils.ProgramName, utils.ProgramName, "", "", utils.ProgramVersion)); err != nil {
		return nil, nil, err
	}
	if runID != "" {
		header.Comments = append(header.Comments, "run "+runID)
	}
	return header, byID, nil
}

/*
WriteSAM writes the alignments in SAM format, with one reference per
live segment. Alignments to reverse strands are reported on the
forward strand of the segment with the reverse flag set, and all but
the first alignment of a read are marked supplementary. Unaligned read
bases are soft clipped, and the AS tag holds the alignment score.
*/
func WriteSAM(w io.Writer, g *graph.Graph, store *sequence.Store, alignments [][]Alignment, runID string) error {
	header, refs, err := samHeader(g, runID)
	if err != nil {
		return err
	}
	sw, err := sam.NewWriter(w, header, sam.FlagDecimal)
	if err != nil {
		return err
	}
	scoreTag := sam.NewTag("AS")
	for id, alns := range alignments {
		read := store.Read(id)
		for i := range alns {
			aln := &alns[i]
			bases := read.Bases
			readStart, readEnd := aln.ReadStart, aln.ReadEnd
			nodeStart := aln.NodeStart
			cigar := aln.Cigar
			var flags sam.Flags
			if aln.Node.IsReverse() {
				flags |= sam.Reverse
				bases = sequence.ReverseComplement(bases)
				readStart, readEnd = len(read.Bases)-aln.ReadEnd, len(read.Bases)-aln.ReadStart
				nodeStart = g.NodeLen(aln.Node) - aln.NodeEnd
				cigar = make([]CigarOperation, len(aln.Cigar))
				for j, op := range aln.Cigar {
					cigar[len(cigar)-1-j] = op
				}
			}
			if i > 0 {
				flags |= sam.Supplementary
			}
			score, err := sam.NewAux(scoreTag, int(aln.Score))
			if err != nil {
				return err
			}
			rec, err := sam.NewRecord(read.Name, refs[aln.Node.ID()], nil, nodeStart, -1, 0, 255,
				samCigar(cigar, readStart, len(bases)-readEnd), bases, nil, []sam.Aux{score})
			if err != nil {
				return fmt.Errorf("failed to create record for read %s: %w", read.Name, err)
			}
			rec.Flags = flags
			if err := sw.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
