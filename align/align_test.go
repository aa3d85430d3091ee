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
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/exascience/elbridge/config"
	"github.com/exascience/elbridge/graph"
	"github.com/exascience/elbridge/sequence"
)

func randomBases(rnd *rand.Rand, n int) []byte {
	result := make([]byte, n)
	for i := range result {
		result[i] = "ACGT"[rnd.Intn(4)]
	}
	return result
}

// mutate introduces substitutions, insertions and deletions at the
// given rate.
func mutate(rnd *rand.Rand, bases []byte, rate float64) []byte {
	var result []byte
	for _, b := range bases {
		switch r := rnd.Float64(); {
		case r < rate/3:
			result = append(result, "ACGT"[rnd.Intn(4)])
		case r < 2*rate/3:
			result = append(result, b, "ACGT"[rnd.Intn(4)])
		case r < rate:
		default:
			result = append(result, b)
		}
	}
	return result
}

func TestForEachKmer(t *testing.T) {
	var positions []int
	var kmers []uint64
	forEachKmer([]byte("ACGTNACGTA"), 3, func(kmer uint64, pos int) {
		positions = append(positions, pos)
		kmers = append(kmers, kmer)
	})
	expected := []int{0, 1, 5, 6, 7}
	if len(positions) != len(expected) {
		t.Fatalf("unexpected k-mer positions %v", positions)
	}
	for i, p := range expected {
		if positions[i] != p {
			t.Errorf("unexpected k-mer positions %v", positions)
		}
	}
	// ACG = 0b000110
	if kmers[0] != 6 || kmers[2] != 6 {
		t.Errorf("unexpected k-mer encoding %v", kmers)
	}
}

func TestAlignExact(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	node := randomBases(rnd, 200)
	read := append([]byte(nil), node[40:160]...)
	cfg := config.Default().Align
	pair, ok := AlignPair(read, node, Band{Low: 20, High: 60}, cfg)
	if !ok {
		t.Fatal("expected an alignment")
	}
	if pair.Score != 360 || pair.Identity() != 1 {
		t.Errorf("unexpected score %v or identity %v", pair.Score, pair.Identity())
	}
	if pair.ReadStart != 0 || pair.ReadEnd != 120 || pair.NodeStart != 40 || pair.NodeEnd != 160 {
		t.Errorf("unexpected coordinates %+v", pair)
	}
	if CigarString(pair.Cigar) != "120M" {
		t.Errorf("unexpected cigar %v", CigarString(pair.Cigar))
	}
	if _, ok := AlignPair(read, node, Band{Low: 300, High: 400}, cfg); ok {
		t.Error("band outside of the matrix should not align")
	}
	cfg.MinAlignedLength = 121
	if _, ok := AlignPair(read, node, Band{Low: 20, High: 60}, cfg); ok {
		t.Error("alignment shorter than the minimum length should be rejected")
	}
}

func TestAlignOverhang(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	node := randomBases(rnd, 150)
	read := append(append([]byte(nil), node[100:]...), randomBases(rnd, 80)...)
	cfg := config.Default().Align
	cfg.MinAlignedLength = 40
	pair, ok := AlignPair(read, node, Band{Low: 80, High: 120}, cfg)
	if !ok {
		t.Fatal("expected an alignment of the read prefix to the node suffix")
	}
	if pair.ReadStart != 0 || pair.NodeEnd != 150 || pair.NodeStart != 100 {
		t.Errorf("unexpected coordinates %+v", pair)
	}
	if pair.ReadEnd < 50 || pair.ReadEnd > 52 {
		t.Errorf("unexpected read end %v", pair.ReadEnd)
	}
}

func TestAffineGap(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	node := randomBases(rnd, 60)
	read := append(append([]byte(nil), node[:30]...), node[33:]...)
	cfg := config.Default().Align
	cfg.MinAlignedLength = 0
	pair, ok := AlignPair(read, node, Band{Low: -10, High: 10}, cfg)
	if !ok {
		t.Fatal("expected an alignment")
	}
	if pair.Score != 57*3-5-2-2 {
		t.Errorf("unexpected score %v", pair.Score)
	}
	readLength, nodeLength := CigarLengths(pair.Cigar)
	if readLength != 57 || nodeLength != 60 || pair.Columns != 60 || pair.Matches != 57 {
		t.Errorf("unexpected cigar %v", CigarString(pair.Cigar))
	}
}

func TestNScoresZero(t *testing.T) {
	cfg := config.Default().Align
	if substitution('N', 'A', &cfg) != 0 || substitution('A', 'N', &cfg) != 0 {
		t.Error("N should score 0")
	}
	if substitution('A', 'A', &cfg) != 3 || substitution('A', 'C', &cfg) != -6 {
		t.Error("unexpected substitution scores")
	}
}

func TestReverseComplementSymmetry(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	cfg := config.Default().Align
	for trial := 0; trial < 20; trial++ {
		node := randomBases(rnd, 150+rnd.Intn(150))
		start := rnd.Intn(50)
		read := mutate(rnd, node[start:start+100], 0.1)
		if rnd.Intn(2) == 0 {
			read = append(randomBases(rnd, 20), read...)
			start -= 20
		}
		band := Band{Low: start - 25, High: start + 25}
		forward, ok1 := alignBand(read, node, band, &cfg)
		mirror := band.Mirror(len(read), len(node))
		reverse, ok2 := alignBand(sequence.ReverseComplement(read), sequence.ReverseComplement(node), mirror, &cfg)
		if ok1 != ok2 || forward.Score != reverse.Score {
			t.Errorf("trial %v: score %v (%v) differs from reverse-complement score %v (%v)",
				trial, forward.Score, ok1, reverse.Score, ok2)
		}
	}
}

func testGraph(t *testing.T, rnd *rand.Rand) *graph.Graph {
	g := graph.New()
	for _, name := range []string{"ctg1", "ctg2"} {
		if _, err := g.AddSegment(name, randomBases(rnd, 400), 1); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestAlignRead(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	g := testGraph(t, rnd)
	idx := NewIndex(g, config.Default().Align)
	if idx.Kmers() == 0 || idx.Graph() != g {
		t.Fatal("empty index")
	}
	read := sequence.ReverseComplement(g.Seq(graph.Forward(1))[50:350])
	alns := idx.AlignRead(7, read)
	if len(alns) != 1 {
		t.Fatalf("expected one alignment, got %v", alns)
	}
	aln := alns[0]
	if aln.ReadID != 7 || aln.Node != graph.Reverse(1) {
		t.Errorf("unexpected read %v or node %v", aln.ReadID, aln.Node)
	}
	if aln.ReadStart != 0 || aln.ReadEnd != 300 || aln.NodeStart != 50 || aln.NodeEnd != 350 || aln.Score != 900 {
		t.Errorf("unexpected alignment %+v", aln.Pair)
	}
	if alns := idx.AlignRead(8, read[:10]); alns != nil {
		t.Error("read shorter than the seed length should not align")
	}
	if alns := idx.AlignRead(9, randomBases(rnd, 300)); len(alns) != 0 {
		t.Errorf("unrelated read should not align, got %v", alns)
	}
}

func TestMaxSeedOccurrences(t *testing.T) {
	g := graph.New()
	if _, err := g.AddSegment("rep", bytes.Repeat([]byte("A"), 200), 1); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default().Align
	idx := NewIndex(g, cfg)
	if idx.Kmers() != 0 {
		t.Errorf("expected the repeated k-mers to be dropped, got %v k-mers", idx.Kmers())
	}
	if alns := idx.AlignRead(0, bytes.Repeat([]byte("A"), 150)); len(alns) != 0 {
		t.Error("k-mers above the occurrence limit should not seed alignments")
	}
}

func testStore(t *testing.T, reads ...sequence.Read) *sequence.Store {
	store, ok := sequence.NewStore(reads)
	if !ok {
		t.Fatal("duplicate read names")
	}
	return store
}

func TestAlignReads(t *testing.T) {
	rnd := rand.New(rand.NewSource(6))
	g := testGraph(t, rnd)
	idx := NewIndex(g, config.Default().Align)
	store := testStore(t,
		sequence.Read{Name: "read1", Bases: sequence.ReverseComplement(g.Seq(graph.Forward(1))[50:350])},
		sequence.Read{Name: "read2", Bases: append([]byte(nil), g.Seq(graph.Forward(2))[0:250]...)},
		sequence.Read{Name: "read3", Bases: []byte("ACGT")},
	)
	alignments, err := AlignReads(context.Background(), idx, store)
	if err != nil {
		t.Fatal(err)
	}
	if total, aligned := Count(alignments); total != 2 || aligned != 2 {
		t.Errorf("unexpected counts %v %v", total, aligned)
	}
	if len(alignments[1]) != 1 || alignments[1][0].Node != graph.Forward(2) {
		t.Errorf("unexpected alignments of read2 %v", alignments[1])
	}

	var buf bytes.Buffer
	if err := WriteSAM(&buf, g, store, alignments, "run-1"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{
		"@SQ\tSN:ctg1\tLN:400",
		"@CO\trun run-1",
		"read1\t16\tctg1\t51\t255\t300M\t",
		"read2\t0\tctg2\t1\t255\t250M\t",
		"AS:i:900",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("SAM output does not contain %q:\n%v", s, out)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AlignReads(ctx, idx, store); err != context.Canceled {
		t.Errorf("expected a cancellation error, got %v", err)
	}
}

func TestCovered(t *testing.T) {
	alns := []Alignment{
		{Pair: Pair{ReadStart: 300, ReadEnd: 400}},
		{Pair: Pair{ReadStart: 0, ReadEnd: 100}},
		{Pair: Pair{ReadStart: 50, ReadEnd: 150}},
		{Pair: Pair{ReadStart: 150, ReadEnd: 200}},
	}
	intervals := Covered(alns)
	if len(intervals) != 2 || intervals[0] != (ReadInterval{0, 200}) || intervals[1] != (ReadInterval{300, 400}) {
		t.Errorf("unexpected intervals %v", intervals)
	}
	if Covered(nil) != nil {
		t.Error("no alignments should cover nothing")
	}
	if bases := AlignedBases([][]Alignment{alns, nil, alns[:1]}); bases != 400 {
		t.Errorf("unexpected aligned bases %v", bases)
	}
}
