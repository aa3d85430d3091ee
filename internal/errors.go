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

import "fmt"

// InputError reports malformed input data: a graph exchange file, a
// read file, or a configuration file. It is fatal and always raised
// before any alignment work starts.
type InputError struct {
	Source string // file name, or a short description of the input
	Line   int    // 1-based line number, 0 when unknown
	Err    error
}

func (e *InputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid input %v, line %v: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("invalid input %v: %v", e.Source, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NewInputError formats a message into an InputError.
func NewInputError(source string, line int, format string, args ...interface{}) error {
	return &InputError{Source: source, Line: line, Err: fmt.Errorf(format, args...)}
}
