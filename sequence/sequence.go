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

// Package sequence holds nucleotide sequences: normalisation of input
// letters, reverse complements, strand pairs for contigs, and the
// read-only store of long reads.
package sequence

var iupacUpperTable = [256]byte{}

var complementTable = [256]byte{}

func init() {
	for i := range iupacUpperTable {
		iupacUpperTable[i] = byte(i)
		complementTable[i] = 'N'
	}
	for _, c := range "ACGTN" {
		iupacUpperTable[c] = byte(c)
		iupacUpperTable[c+'a'-'A'] = byte(c)
	}
	for _, c := range "RYMKWSBDHVU" {
		iupacUpperTable[c] = 'N'
		iupacUpperTable[c+'a'-'A'] = 'N'
	}
	iupacUpperTable['U'] = 'T'
	iupacUpperTable['u'] = 'T'
	complementTable['A'] = 'T'
	complementTable['C'] = 'G'
	complementTable['G'] = 'C'
	complementTable['T'] = 'A'
}

// ToUpperAndN converts a base to upper case and maps ambiguity codes
// to N. Uracil is read as thymine.
func ToUpperAndN(base byte) byte {
	return iupacUpperTable[base]
}

/*
Normalize converts the given bases in place to the alphabet ACGTN.

Returns false if a letter outside the IUPAC nucleotide codes was
found; such letters are left unchanged.
*/
func Normalize(bases []byte) bool {
	ok := true
	for i, c := range bases {
		n := iupacUpperTable[c]
		switch n {
		case 'A', 'C', 'G', 'T', 'N':
			bases[i] = n
		default:
			ok = false
		}
	}
	return ok
}

// ReverseComplement returns a new slice with the reverse complement of
// the given normalised bases.
func ReverseComplement(bases []byte) []byte {
	result := make([]byte, len(bases))
	for i, j := 0, len(bases)-1; j >= 0; i, j = i+1, j-1 {
		result[i] = complementTable[bases[j]]
	}
	return result
}

// A Pair holds both strands of one sequence. Both slices are created
// together by NewPair and must not be modified afterwards.
type Pair struct {
	forward, reverse []byte
}

// NewPair creates the strand pair for the given normalised bases. The
// slice is owned by the pair afterwards.
func NewPair(forward []byte) Pair {
	return Pair{forward: forward, reverse: ReverseComplement(forward)}
}

// Strand returns the forward strand, or the reverse complement if
// reverse is true.
func (p Pair) Strand(reverse bool) []byte {
	if reverse {
		return p.reverse
	}
	return p.forward
}

// Len returns the length of both strands.
func (p Pair) Len() int {
	return len(p.forward)
}
