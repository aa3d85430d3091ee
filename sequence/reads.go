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
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"

	"github.com/exascience/elbridge/internal"
)

// FastaLineWidth is the number of bases per line in FASTA output.
const FastaLineWidth = 80

func lettersToBytes(letters alphabet.Letters) []byte {
	result := make([]byte, len(letters))
	for i, l := range letters {
		result[i] = byte(l)
	}
	return result
}

func qLettersToBytes(letters alphabet.QLetters) []byte {
	result := make([]byte, len(letters))
	for i, ql := range letters {
		result[i] = byte(ql.L)
	}
	return result
}

// firstByte skips leading white space and returns the first byte
// without consuming it. It returns io.EOF for empty input.
func firstByte(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, r.UnreadByte()
	}
}

/*
ParseReads parses long reads in FASTA or FASTQ format. The format is
determined by the first non-blank character. Qualities are ignored.
Bases are normalised to ACGTN. Empty input yields an empty store.

The source is only used in error messages.
*/
func ParseReads(r io.Reader, source string) (*Store, error) {
	buf := bufio.NewReader(r)
	first, err := firstByte(buf)
	if err == io.EOF {
		store, _ := NewStore(nil)
		return store, nil
	} else if err != nil {
		return nil, &internal.InputError{Source: source, Err: err}
	}

	var reads []Read
	add := func(name string, bases []byte) error {
		if name == "" {
			return fmt.Errorf("read %v without a name", len(reads)+1)
		}
		if !Normalize(bases) {
			return fmt.Errorf("read %v contains non-nucleotide letters", name)
		}
		reads = append(reads, Read{Name: name, Bases: bases})
		return nil
	}

	switch first {
	case '>':
		reader := fasta.NewReader(buf, linear.NewSeq("", nil, alphabet.DNAredundant))
		for {
			s, err := reader.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return nil, &internal.InputError{Source: source, Err: err}
			}
			l := s.(*linear.Seq)
			if err := add(l.Name(), lettersToBytes(l.Seq)); err != nil {
				return nil, &internal.InputError{Source: source, Err: err}
			}
		}
	case '@':
		reader := fastq.NewReader(buf, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger))
		for {
			s, err := reader.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return nil, &internal.InputError{Source: source, Err: err}
			}
			q := s.(*linear.QSeq)
			if err := add(q.Name(), qLettersToBytes(q.Seq)); err != nil {
				return nil, &internal.InputError{Source: source, Err: err}
			}
		}
	default:
		return nil, internal.NewInputError(source, 1, "neither FASTA nor FASTQ, starts with %q", first)
	}

	store, ok := NewStore(reads)
	if !ok {
		return nil, &internal.InputError{Source: source, Err: errors.New("duplicate read names")}
	}
	return store, nil
}

// LoadReads parses a FASTA or FASTQ file of long reads, which may be
// gzip or zstd compressed.
func LoadReads(filename string) (store *Store, err error) {
	f, err := internal.OpenInput(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := f.Close(); err == nil {
			err = nerr
		}
	}()
	return ParseReads(f, filename)
}

// A Record is one named sequence for FASTA output.
type Record struct {
	Name        string
	Description string
	Bases       []byte
}

// WriteFasta writes the given records in FASTA format.
func WriteFasta(w io.Writer, records []Record) error {
	writer := fasta.NewWriter(w, FastaLineWidth)
	for _, rec := range records {
		s := linear.NewSeq(rec.Name, alphabet.BytesToLetters(rec.Bases), alphabet.DNAredundant)
		s.Desc = rec.Description
		if _, err := writer.Write(s); err != nil {
			return err
		}
	}
	return nil
}
