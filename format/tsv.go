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

// Package format renders a parsed [row.File] back to canonical
// tab-separated text: the source's own counterpart to cue/format, which
// prints a canonical textual form from a parsed tree. Every compiled
// [registry.Parser] (package lang) already produces the canonical
// reformat string for its own cell as a side effect of parsing, so this
// package's only job is assembling those per-cell strings, plus the
// header row, into tab-separated lines (spec §8's exploded/collapsed and
// round-trip properties).
package format

import (
	"strings"

	"github.com/tabulua/tabulua/column"
	"github.com/tabulua/tabulua/row"
)

// WriteTSV renders f's header row and every successfully parsed data row
// as canonical tab-separated text, one line per row, trailing newline
// included. Column order follows f.Columns; a leaf column's canonical
// text comes from Row.Reformatted, falling back to the empty string for
// an exploded-group root that has no single-cell reformat of its own.
func WriteTSV(f *row.File) string {
	var b strings.Builder

	headers := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		headers[i] = headerToken(c)
	}
	b.WriteString(strings.Join(headers, "\t"))
	b.WriteByte('\n')

	for _, r := range f.Rows {
		cells := make([]string, len(f.Columns))
		for i, c := range f.Columns {
			cells[i] = r.Reformatted[c.Header.Name]
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// headerToken reassembles a column's canonical `name:typeSpec[:default]`
// header text.
func headerToken(c *column.Column) string {
	tok := c.Header.Name + ":" + c.Header.TypeSpec
	if c.Header.HasDefault {
		if c.Header.IsExpr {
			tok += ":=" + c.Header.Default
		} else {
			tok += ":" + c.Header.Default
		}
	}
	return tok
}
