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

package cmd

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func randomBases(rnd *rand.Rand, n int) string {
	result := make([]byte, n)
	for i := range result {
		result[i] = "ACGT"[rnd.Intn(4)]
	}
	return string(result)
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}
	return filename
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(withLogger(context.Background(), log.New(io.Discard)))
}

func TestBridgeCommand(t *testing.T) {
	dir := t.TempDir()
	rnd := rand.New(rand.NewSource(21))
	a, b := randomBases(rnd, 600), randomBases(rnd, 600)
	graphFile := writeTestFile(t, dir, "input.gfa",
		"H\tVN:Z:1.0\n"+
			"S\tA\t"+a+"\tDP:f:4\n"+
			"S\tB\t"+b+"\tDP:f:5\n"+
			"L\tA\t+\tB\t+\t0M\n")
	readsFile := writeTestFile(t, dir, "reads.fasta",
		">r1\n"+a[100:]+b[:400]+"\n"+
			">r2\n"+a[200:]+b[:500]+"\n")
	output := filepath.Join(dir, "out", "output.gfa")
	report := filepath.Join(dir, "out", "report.tsv")
	fasta := filepath.Join(dir, "out", "segments.fasta")
	dot := filepath.Join(dir, "graph.dot")
	sam := filepath.Join(dir, "reads.sam")
	err := execute(t, newBridgeCmd(),
		"--graph", graphFile, "--reads", readsFile, "--out", output,
		"--report", report, "--fasta", fasta, "--dot", dot, "--alignments", sam, "--threads", "2")
	if err != nil {
		t.Fatal(err)
	}
	gfa, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(gfa), "S\t3\t"+a+b+"\tLN:i:1200\tDP:f:4\tci:Z:false\tbs:i:2\tst:Z:bridged\tor:Z:A,B\n") {
		t.Errorf("unexpected output graph:\n%s", gfa)
	}
	if !strings.Contains(string(gfa), "\tRI:Z:") {
		t.Error("missing run identifier")
	}
	for _, filename := range []string{report, fasta, dot, sam} {
		if info, err := os.Stat(filename); err != nil || info.Size() == 0 {
			t.Errorf("missing output %v", filename)
		}
	}
	if samText, _ := os.ReadFile(sam); !strings.Contains(string(samText), "@SQ\tSN:A\tLN:600") {
		t.Errorf("alignments should refer to the input segments:\n%s", samText)
	}
}

func TestBridgeCommandErrors(t *testing.T) {
	dir := t.TempDir()
	if err := execute(t, newBridgeCmd(), "--graph", filepath.Join(dir, "missing.gfa"), "--reads", "r", "--out", "o"); err == nil {
		t.Error("expected an error for a missing graph")
	}
	graphFile := writeTestFile(t, dir, "input.gfa", "S\tA\tACGT\n")
	readsFile := writeTestFile(t, dir, "reads.fasta", "")
	err := execute(t, newBridgeCmd(), "--graph", graphFile, "--reads", readsFile, "--out", filepath.Join(dir, "o.gfa"), "--seed-length", "40")
	if err == nil || !strings.Contains(err.Error(), "seed-length") {
		t.Errorf("expected an invalid seed length, got %v", err)
	}
}

func TestSettings(t *testing.T) {
	var s settings
	cmd := &cobra.Command{Use: "test", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
	s.addFlags(cmd)
	if err := cmd.ParseFlags([]string{"--min-support", "3", "--no-depth", "--merge-linear", "--depth-tolerance", "1.5"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := s.load(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Simplify.MinSupport != 3 || cfg.Depth.Enabled || !cfg.Simplify.MergeLinearPaths || cfg.Depth.Tolerance != 1.5 {
		t.Errorf("flags were not applied: %+v", cfg)
	}
	if cfg.Align.SeedLength != 13 {
		t.Errorf("flags that were not given should keep their defaults, got seed length %v", cfg.Align.SeedLength)
	}
}

func TestGfaToFasta(t *testing.T) {
	dir := t.TempDir()
	graphFile := writeTestFile(t, dir, "input.gfa", "S\tA\tACGTAC\tDP:f:2\nL\tA\t+\tA\t+\t0M\n")
	output := filepath.Join(dir, "out.fasta")
	if err := execute(t, newGfaToFastaCmd(), graphFile, output); err != nil {
		t.Fatal(err)
	}
	fasta, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(fasta)) != ">A length=6 depth=2.00 circular=true\nACGTAC" {
		t.Errorf("unexpected FASTA output %q", fasta)
	}
}

func TestGfaToFastaLongSegment(t *testing.T) {
	dir := t.TempDir()
	rnd := rand.New(rand.NewSource(22))
	long := randomBases(rnd, 150000)
	graphFile := writeTestFile(t, dir, "input.gfa", "S\tA\t"+long+"\tDP:f:2\nS\tB\tACGT\n")
	output := filepath.Join(dir, "out.fasta")
	if err := execute(t, newGfaToFastaCmd(), graphFile, output); err != nil {
		t.Fatal(err)
	}
	fasta, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	records := strings.Split(string(fasta), ">")
	if len(records) != 3 || !strings.HasPrefix(records[1], "A length=150000 ") {
		t.Fatalf("unexpected FASTA records %v", len(records))
	}
	lines := strings.SplitN(records[1], "\n", 2)
	if strings.ReplaceAll(lines[1], "\n", "") != long {
		t.Error("long segment was not written intact")
	}
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "elbridge version") {
		t.Errorf("unexpected version output %q", buf.String())
	}
}
