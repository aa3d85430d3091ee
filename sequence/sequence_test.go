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

package sequence

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/exascience/elbridge/internal"
)

func TestNormalize(t *testing.T) {
	b := []byte("acgtNRyu")
	if !Normalize(b) {
		t.Fatal("Normalize rejected IUPAC letters")
	}
	if string(b) != "ACGTNNNT" {
		t.Errorf("Normalize produced %v", string(b))
	}
	if Normalize([]byte("ACGT*")) {
		t.Error("Normalize accepted '*'")
	}
}

func TestReverseComplement(t *testing.T) {
	if rc := string(ReverseComplement([]byte("AACGTN"))); rc != "NACGTT" {
		t.Errorf("ReverseComplement produced %v", rc)
	}
	if len(ReverseComplement(nil)) != 0 {
		t.Error("ReverseComplement of empty sequence not empty")
	}
}

func TestPair(t *testing.T) {
	p := NewPair([]byte("GATTACA"))
	if string(p.Strand(false)) != "GATTACA" || string(p.Strand(true)) != "TGTAATC" {
		t.Errorf("unexpected strands %v %v", string(p.Strand(false)), string(p.Strand(true)))
	}
	if p.Len() != 7 {
		t.Errorf("unexpected length %v", p.Len())
	}
}

func TestParseReadsFasta(t *testing.T) {
	input := ">r1 first read\nacgtac\nGGTT\n>r2\nNNNN\n"
	store, err := ParseReads(strings.NewReader(input), "test")
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 reads, got %v", store.Len())
	}
	r, ok := store.Lookup("r1")
	if !ok || string(r.Bases) != "ACGTACGGTT" || r.ID != 0 {
		t.Errorf("unexpected first read %+v", r)
	}
	if store.TotalBases() != 14 {
		t.Errorf("unexpected total %v", store.TotalBases())
	}
}

func TestParseReadsFastq(t *testing.T) {
	input := "@r1\nACGTT\n+\nIIIII\n@r2\nggcc\n+\nIIII\n"
	store, err := ParseReads(strings.NewReader(input), "test")
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 2 || string(store.Read(1).Bases) != "GGCC" {
		t.Errorf("unexpected reads from FASTQ input")
	}
}

func TestParseReadsErrors(t *testing.T) {
	var inputErr *internal.InputError
	if _, err := ParseReads(strings.NewReader("ACGT\n"), "test"); !errors.As(err, &inputErr) {
		t.Errorf("headerless input not rejected: %v", err)
	}
	if _, err := ParseReads(strings.NewReader(">a\nACGT\n>a\nACGT\n"), "test"); !errors.As(err, &inputErr) {
		t.Errorf("duplicate names not rejected: %v", err)
	}
	store, err := ParseReads(strings.NewReader("\n\n"), "test")
	if err != nil || store.Len() != 0 {
		t.Errorf("empty input not accepted: %v", err)
	}
}

func TestLoadReadsGzip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "reads.fa.gz")
	f, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(">read\nACGTACGT\n")); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	store, err := LoadReads(filename)
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 || string(store.Read(0).Bases) != "ACGTACGT" {
		t.Error("compressed reads not loaded")
	}
}

func TestWriteFasta(t *testing.T) {
	var buf bytes.Buffer
	bases := bytes.Repeat([]byte("A"), 100)
	if err := WriteFasta(&buf, []Record{{Name: "contig", Description: "circular=true", Bases: bases}}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != ">contig circular=true" || len(lines[1]) != FastaLineWidth {
		t.Errorf("unexpected FASTA output %q", buf.String())
	}
}
