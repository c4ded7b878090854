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

// Package token defines source positions used throughout TabuLua: type-spec
// text, header tokens, and the raw cells of a row all report errors through
// a [Position].
package token

import "fmt"

// A Position describes a location a diagnostic can point at: the file (or
// row source) it came from, the 1-based line, and the 1-based column
// within that line, counted in bytes.
//
// Type-spec strings live inside a single TSV cell, so Line is usually the
// row's line number in the source file and Column is the byte offset into
// the cell text, not a full multi-line file position the way cue/token's
// File/Pos pair track it.
type Position struct {
	Source string // file or stream name, if any
	Line   int    // 1-based line number, 0 if unknown
	Column int    // 1-based column, 0 if unknown
}

// NoPos is the zero value of Position; it is invalid.
var NoPos = Position{}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool { return p.Line > 0 }

// String renders the position in one of:
//
//	source:line:column
//	line:column
//	source
//	-
func (p Position) String() string {
	s := p.Source
	if p.IsValid() {
		if s != "" {
			s += ":"
		}
		if p.Column > 0 {
			s += fmt.Sprintf("%d:%d", p.Line, p.Column)
		} else {
			s += fmt.Sprintf("%d", p.Line)
		}
	}
	if s == "" {
		s = "-"
	}
	return s
}

// Add returns p shifted right by n columns. It is used while walking a
// type-spec string left to right so every sub-expression's AST node
// position points at its own offset rather than the start of the cell.
func (p Position) Add(n int) Position {
	if !p.IsValid() || p.Column == 0 {
		return p
	}
	q := p
	q.Column += n
	return q
}
