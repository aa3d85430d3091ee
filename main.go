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

// elBridge completes short-read assembly graphs with long reads.
//
// Long reads are aligned to the segments of a GFA assembly graph, the
// alignments are chained into bridges through the graph, and the
// bridges are applied best first to resolve repeats and close
// circular sequences. Repeats that no read spans can be resolved from
// segment depths.
//
// Please see the cmd package for the available commands.
package main

import (
	"os"

	"github.com/exascience/elbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
