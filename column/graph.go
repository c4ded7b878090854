// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package column

import "github.com/tabulua/tabulua/errors"

// topoOrder returns a column evaluation order respecting every
// SelfRefDep edge, ties resolved by header order (spec §4.5: "ties
// resolved by header order"). A cycle is reported as an error rather
// than guessed at, matching spec §4.5's "cycles... are rejected at
// compile time."
func topoOrder(sink *errors.Sink, source string, line int, cols []*Column) ([]int, bool) {
	n := len(cols)
	visited := make([]int, n) // 0 = unvisited, 1 = in-progress, 2 = done
	order := make([]int, 0, n)

	var visit func(i int) bool
	visit = func(i int) bool {
		switch visited[i] {
		case 2:
			return true
		case 1:
			sink.Errorf(source, line, i+1, "self-ref dependency cycle involving column %q", cols[i].Header.Name)
			return false
		}
		visited[i] = 1
		if dep := cols[i].SelfRefDep; dep >= 0 {
			if !visit(dep) {
				return false
			}
		}
		visited[i] = 2
		order = append(order, i)
		return true
	}

	for i := range cols {
		if !visit(i) {
			return nil, false
		}
	}
	return order, true
}
