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
	"math"
	"sync"

	"github.com/exascience/elbridge/config"
)

// A Band restricts the alignment matrix to the cells whose diagonal,
// the node position minus the read position, lies in [Low, High].
type Band struct {
	Low, High int
}

// Mirror returns the band for aligning the reverse complements of a
// read of length readLength and a node of length nodeLength.
func (b Band) Mirror(readLength, nodeLength int) Band {
	shift := nodeLength - readLength
	return Band{Low: shift - b.High, High: shift - b.Low}
}

const (
	negInf = math.MinInt32 / 2

	fromDiagonal = 0
	fromE        = 1
	fromF        = 2
	hMask        = 3
	eExtended    = 4
	fExtended    = 8
)

type bandMatrices struct {
	width   int
	h, e, f []int32
	trace   []byte
}

func ensureInt32(v []int32, size int) []int32 {
	if size <= cap(v) {
		v = v[:size]
	} else {
		v = make([]int32, size)
	}
	for i := range v {
		v[i] = negInf
	}
	return v
}

func (m *bandMatrices) ensureSize(rows, width int) {
	m.width = width
	size := rows * width
	m.h = ensureInt32(m.h, size)
	m.e = ensureInt32(m.e, size)
	m.f = ensureInt32(m.f, size)
	if size <= cap(m.trace) {
		m.trace = m.trace[:size]
	} else {
		m.trace = make([]byte, size)
	}
}

var bandMatricesPool = sync.Pool{New: func() interface{} { return &bandMatrices{} }}

func getBandMatrices() *bandMatrices {
	return bandMatricesPool.Get().(*bandMatrices)
}

func putBandMatrices(m *bandMatrices) {
	bandMatricesPool.Put(m)
}

func substitution(r, n byte, cfg *config.AlignConfig) int32 {
	switch {
	case r == 'N' || n == 'N':
		return 0
	case r == n:
		return cfg.Match
	default:
		return cfg.Mismatch
	}
}

// A Pair is the result of aligning one read against one node.
// Coordinates are half-open.
type Pair struct {
	ReadStart, ReadEnd int
	NodeStart, NodeEnd int
	Cigar              []CigarOperation
	Score              int32
	Matches, Columns   int
}

// Identity returns the fraction of alignment columns with matching bases.
func (p *Pair) Identity() float64 {
	if p.Columns == 0 {
		return 0
	}
	return float64(p.Matches) / float64(p.Columns)
}

/*
alignBand computes the best semi-global alignment of read against node
inside the band, with free end gaps at the outer edges of both
sequences and affine gap costs: a gap of length L costs
GapOpen + (L-1)*GapExtend. An N on either side scores 0.

It returns false if the band does not touch the matrix or no cell has
a positive score.
*/
func alignBand(read, node []byte, band Band, cfg *config.AlignConfig) (result Pair, ok bool) {
	m, n := len(read), len(node)
	lo, hi := band.Low, band.High
	if lo < -m {
		lo = -m
	}
	if hi > n {
		hi = n
	}
	if lo > hi || m == 0 || n == 0 {
		return result, false
	}
	width := hi - lo + 1

	mat := getBandMatrices()
	defer putBandMatrices(mat)
	mat.ensureSize(m+1, width)

	// cell (i, j) lives at i*width + (j - i - lo)
	index := func(i, j int) int {
		return i*width + j - i - lo
	}
	inBand := func(i, j int) bool {
		d := j - i
		return d >= lo && d <= hi && j >= 0 && j <= n
	}

	for j := max(0, lo); j <= min(n, hi); j++ {
		mat.h[index(0, j)] = 0
	}
	for i := max(0, -hi); i <= min(m, -lo); i++ {
		mat.h[index(i, 0)] = 0
	}

	open, extend := cfg.GapOpen, cfg.GapExtend
	for i := 1; i <= m; i++ {
		r := read[i-1]
		for j := max(1, i+lo); j <= min(n, i+hi); j++ {
			k := index(i, j)
			var trace byte

			e := int32(negInf)
			if inBand(i, j-1) {
				kl := index(i, j-1)
				if fromOpen, fromExtend := mat.h[kl]+open, mat.e[kl]+extend; fromExtend > fromOpen {
					e = fromExtend
					trace |= eExtended
				} else {
					e = fromOpen
				}
			}
			f := int32(negInf)
			if inBand(i-1, j) {
				ku := index(i-1, j)
				if fromOpen, fromExtend := mat.h[ku]+open, mat.f[ku]+extend; fromExtend > fromOpen {
					f = fromExtend
					trace |= fExtended
				} else {
					f = fromOpen
				}
			}
			h := mat.h[index(i-1, j-1)] + substitution(r, node[j-1], cfg)
			if e > h {
				h = e
				trace = trace&^hMask | fromE
			}
			if f > h {
				h = f
				trace = trace&^hMask | fromF
			}
			mat.h[k], mat.e[k], mat.f[k] = h, max(e, negInf), max(f, negInf)
			mat.trace[k] = trace
		}
	}

	bestScore := int32(0)
	bestI, bestJ := -1, -1
	for j := max(1, m+lo); j <= min(n, m+hi); j++ {
		if s := mat.h[index(m, j)]; s > bestScore {
			bestScore, bestI, bestJ = s, m, j
		}
	}
	for i := max(1, n-hi); i <= min(m, n-lo); i++ {
		if s := mat.h[index(i, n)]; s > bestScore {
			bestScore, bestI, bestJ = s, i, n
		}
	}
	if bestI < 0 {
		return result, false
	}

	i, j := bestI, bestJ
	var ops []CigarOperation
	push := func(op byte) {
		if l := len(ops); l > 0 && ops[l-1].Operation == op {
			ops[l-1].Length++
		} else {
			ops = append(ops, CigarOperation{Length: 1, Operation: op})
		}
	}
	state := byte(fromDiagonal)
	for i > 0 && j > 0 {
		t := mat.trace[index(i, j)]
		switch state {
		case fromE:
			push('D')
			result.Columns++
			if t&eExtended == 0 {
				state = fromDiagonal
			}
			j--
			continue
		case fromF:
			push('I')
			result.Columns++
			if t&fExtended == 0 {
				state = fromDiagonal
			}
			i--
			continue
		}
		switch t & hMask {
		case fromE:
			state = fromE
		case fromF:
			state = fromF
		default:
			push('M')
			result.Columns++
			if r := read[i-1]; r == node[j-1] && r != 'N' {
				result.Matches++
			}
			i--
			j--
		}
	}
	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}

	result.ReadStart, result.ReadEnd = i, bestI
	result.NodeStart, result.NodeEnd = j, bestJ
	result.Cigar = ops
	result.Score = bestScore
	return result, true
}

// AlignPair aligns read against node inside the band, and reports
// whether the result meets the identity and aligned length thresholds.
func AlignPair(read, node []byte, band Band, cfg config.AlignConfig) (Pair, bool) {
	result, ok := alignBand(read, node, band, &cfg)
	if !ok || result.ReadEnd-result.ReadStart < cfg.MinAlignedLength || result.Identity() < cfg.MinIdentity {
		return Pair{}, false
	}
	return result, true
}
