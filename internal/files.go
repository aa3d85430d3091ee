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

package internal

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type inputFile struct {
	io.Reader
	closers []io.Closer
}

func (f *inputFile) Close() (err error) {
	for _, c := range f.closers {
		if nerr := c.Close(); err == nil {
			err = nerr
		}
	}
	return
}

/*
OpenInput opens a file for reading. It checks the initial bytes of
the file, and transparently decompresses gzip (including BGZF) and
zstd streams. Plain files are returned buffered.
*/
func OpenInput(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewReader(f)
	magic, err := buf.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		_ = f.Close()
		return nil, err
	}
	switch {
	case len(magic) >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		gz, err := gzip.NewReader(buf)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return &inputFile{Reader: gz, closers: []io.Closer{gz, f}}, nil
	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(buf)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		rc := zr.IOReadCloser()
		return &inputFile{Reader: rc, closers: []io.Closer{rc, f}}, nil
	default:
		return &inputFile{Reader: buf, closers: []io.Closer{f}}, nil
	}
}

// FullPathname returns an absolute version of filename.
func FullPathname(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return filename, nil
	}
	wd, err := os.Getwd()
	return filepath.Join(wd, filename), err
}
