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

import (
	"sort"
	"strconv"
	"strings"
)

// Path is one exploded column name broken into its root and the
// remaining path steps (spec §4.5 step 6, spec glossary "Explode"):
// `item.name` -> root "item", steps ["name"]; `item._1` -> root "item",
// steps ["_1"]; `item[0]` -> root "item", steps ["0"], Bracket=true for
// that step.
type Path struct {
	Root  string
	Steps []Step
}

type Step struct {
	Name    string
	Bracket bool
}

// SplitPath parses a dotted/bracketed column name into a Path. A plain
// name with no '.' or '[' yields a Path with no Steps (not exploded).
func SplitPath(name string) Path {
	var root string
	rest := name
	if i := strings.IndexAny(rest, ".["); i >= 0 {
		root = rest[:i]
		rest = rest[i:]
	} else {
		return Path{Root: name}
	}

	var steps []Step
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			j := strings.IndexAny(rest, ".[")
			if j < 0 {
				j = len(rest)
			}
			steps = append(steps, Step{Name: rest[:j]})
			rest = rest[j:]
		case '[':
			j := strings.IndexByte(rest, ']')
			if j < 0 {
				steps = append(steps, Step{Name: rest[1:], Bracket: true})
				rest = ""
				break
			}
			steps = append(steps, Step{Name: rest[1:j], Bracket: true})
			rest = rest[j+1:]
		default:
			rest = ""
		}
	}
	return Path{Root: root, Steps: steps}
}

// Group is every column sharing one exploded root, grouped in the order
// their first-level step was first seen in the header row.
type Group struct {
	Root    string
	Columns []*Column
	Paths   []Path
}

// GroupExploded partitions cols into root-name groups. A root with only
// one column and no steps is not exploded; GroupExploded still returns it
// as a single-entry group so callers have one uniform path.
func GroupExploded(cols []*Column) []*Group {
	index := map[string]int{}
	var groups []*Group
	for _, c := range cols {
		p := SplitPath(c.Header.Name)
		gi, ok := index[p.Root]
		if !ok {
			gi = len(groups)
			index[p.Root] = gi
			groups = append(groups, &Group{Root: p.Root})
		}
		groups[gi].Columns = append(groups[gi].Columns, c)
		groups[gi].Paths = append(groups[gi].Paths, p)
	}
	return groups
}

// IsTuple reports whether g's first-level steps are the consecutive
// `_1`, `_2`, ... sequence spec §4.5 step 6 uses to distinguish an
// exploded tuple from an exploded record.
func (g *Group) IsTuple() bool {
	if len(g.Paths) == 0 {
		return false
	}
	seen := map[int]bool{}
	for _, p := range g.Paths {
		if len(p.Steps) == 0 || p.Steps[0].Bracket {
			return false
		}
		name := p.Steps[0].Name
		if !strings.HasPrefix(name, "_") {
			return false
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil || n < 1 {
			return false
		}
		seen[n] = true
	}
	indices := make([]int, 0, len(seen))
	for n := range seen {
		indices = append(indices, n)
	}
	sort.Ints(indices)
	for i, n := range indices {
		if n != i+1 {
			return false
		}
	}
	return true
}

// IsArrayOrMap reports whether g's first-level steps use bracket
// notation, meaning the root assembles into an array or a map depending
// on whether the bracket contents are numeric indices or named keys.
func (g *Group) IsArrayOrMap() bool {
	if len(g.Paths) == 0 {
		return false
	}
	for _, p := range g.Paths {
		if len(p.Steps) == 0 || !p.Steps[0].Bracket {
			return false
		}
	}
	return true
}
