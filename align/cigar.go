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
	"strconv"

	"github.com/biogo/hts/sam"
)

// A CigarOperation is one run of an alignment: M for aligned bases,
// I for read bases missing from the node, D for node bases missing
// from the read.
type CigarOperation struct {
	Length    int32
	Operation byte
}

func operatorConsumesReadBases(operator byte) bool {
	switch operator {
	case 'M', 'I', 'S', '=', 'X':
		return true
	default:
		return false
	}
}

func operatorConsumesNodeBases(operator byte) bool {
	switch operator {
	case 'M', 'D', 'N', '=', 'X':
		return true
	default:
		return false
	}
}

// CigarString formats the operations in SAM notation.
func CigarString(cigar []CigarOperation) string {
	if len(cigar) == 0 {
		return "*"
	}
	var buf []byte
	for _, op := range cigar {
		buf = strconv.AppendInt(buf, int64(op.Length), 10)
		buf = append(buf, op.Operation)
	}
	return string(buf)
}

// CigarLengths sums the read and node bases covered by the operations.
func CigarLengths(cigar []CigarOperation) (readLength, nodeLength int) {
	for _, op := range cigar {
		if operatorConsumesReadBases(op.Operation) {
			readLength += int(op.Length)
		}
		if operatorConsumesNodeBases(op.Operation) {
			nodeLength += int(op.Length)
		}
	}
	return
}

var samCigarTypes = map[byte]sam.CigarOpType{
	'M': sam.CigarMatch,
	'I': sam.CigarInsertion,
	'D': sam.CigarDeletion,
	'S': sam.CigarSoftClipped,
}

// samCigar converts the operations to biogo form, with soft clips for
// the unaligned read bases on both sides.
func samCigar(cigar []CigarOperation, leftClip, rightClip int) sam.Cigar {
	result := make(sam.Cigar, 0, len(cigar)+2)
	if leftClip > 0 {
		result = append(result, sam.NewCigarOp(sam.CigarSoftClipped, leftClip))
	}
	for _, op := range cigar {
		result = append(result, sam.NewCigarOp(samCigarTypes[op.Operation], int(op.Length)))
	}
	if rightClip > 0 {
		result = append(result, sam.NewCigarOp(sam.CigarSoftClipped, rightClip))
	}
	return result
}
