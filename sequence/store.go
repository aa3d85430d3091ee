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

// A Read is one long read. ID is the position of the read in its
// input, and is stable for the duration of a run.
type Read struct {
	ID    int
	Name  string
	Bases []byte
}

// Store holds the long reads of a run. It is read-only once created,
// so it can be shared by any number of alignment workers.
type Store struct {
	reads  []Read
	byName map[string]int
}

// NewStore creates a store for the given reads, renumbering their IDs
// in order. It returns false if two reads have the same name.
func NewStore(reads []Read) (*Store, bool) {
	s := &Store{reads: reads, byName: make(map[string]int, len(reads))}
	for i := range reads {
		reads[i].ID = i
		if _, found := s.byName[reads[i].Name]; found {
			return nil, false
		}
		s.byName[reads[i].Name] = i
	}
	return s, true
}

// Len returns the number of reads.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.reads)
}

// Read returns the read with the given ID.
func (s *Store) Read(id int) *Read {
	return &s.reads[id]
}

// Lookup finds a read by name.
func (s *Store) Lookup(name string) (*Read, bool) {
	id, found := s.byName[name]
	if !found {
		return nil, false
	}
	return &s.reads[id], true
}

// TotalBases returns the summed length of all reads.
func (s *Store) TotalBases() (total int) {
	for i := 0; i < s.Len(); i++ {
		total += len(s.reads[i].Bases)
	}
	return total
}
