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

// Package errors defines the structured error sink shared by every stage of
// the TabuLua core. Parsers, the sandbox, and the validator engine never
// panic or return a Go error for a cell-level or row-level failure: they
// report into a [Sink] and return a sentinel so that batch validation can
// continue past individual failures. A non-zero [Sink.Errors] at the end of
// a run is the sole failure signal the core exposes to a caller.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tabulua/tabulua/token"
)

// Severity distinguishes a hard failure from an accumulated warning.
type Severity int

const (
	// Error reports stop acceptance of the enclosing file or package.
	Error Severity = iota
	// Warn reports accumulate but never block acceptance.
	Warn
)

func (s Severity) String() string {
	if s == Warn {
		return "warning"
	}
	return "error"
}

// A Report is one entry appended to a [Sink]. It carries every piece of
// context spec §4.1 requires: source, line, column (1-based field index
// within the row, not a byte offset), the type that was being checked
// when the report fired, the offending raw value, and a severity.
type Report struct {
	Source   string
	Line     int
	Column   int    // 1-based column (field) index within the row; 0 if not row-scoped
	ColType  string // name of the type in effect when the report fired, if any
	Value    string // offending raw text, if any
	Message  string
	Severity Severity
}

func (r *Report) String() string {
	var b strings.Builder
	if r.Source != "" {
		fmt.Fprintf(&b, "%s:", r.Source)
	}
	if r.Line > 0 {
		if r.Column > 0 {
			fmt.Fprintf(&b, "%d:%d: ", r.Line, r.Column)
		} else {
			fmt.Fprintf(&b, "%d: ", r.Line)
		}
	}
	if r.ColType != "" {
		fmt.Fprintf(&b, "[%s] ", r.ColType)
	}
	b.WriteString(r.Severity.String())
	b.WriteString(": ")
	b.WriteString(r.Message)
	if r.Value != "" {
		fmt.Fprintf(&b, " (value %q)", r.Value)
	}
	return b.String()
}

// Position reconstructs a [token.Position] for the report, for callers
// that want to route diagnostics through the shared position type.
func (r *Report) Position() token.Position {
	return token.Position{Source: r.Source, Line: r.Line, Column: r.Column}
}

// A Sink is an append-only collector of [Report]s. It is the sole
// failure-signalling mechanism of the core: parsers, the sandbox, and the
// validator engine take a *Sink and report into it instead of returning an
// error. Callers inspect [Sink.Errors] to decide whether a parse, a file,
// or a package run succeeded.
//
// A Sink is not safe for concurrent use; the core is single-threaded by
// design (spec §5).
type Sink struct {
	reports []Report
	errors  int
	warns   int

	// colType stack for nested WithColType scopes. Exploded columns nest
	// (a record field inside an array inside an exploded group), so this
	// is a stack, not a single slot.
	colTypeStack []string
}

// NewSink returns an empty sink.
func NewSink() *Sink { return &Sink{} }

// Add appends a Report as-is, after stamping it with the active ColType
// scope if the report did not already set one.
func (s *Sink) Add(r Report) {
	if r.ColType == "" && len(s.colTypeStack) > 0 {
		r.ColType = s.colTypeStack[len(s.colTypeStack)-1]
	}
	s.reports = append(s.reports, r)
	if r.Severity == Warn {
		s.warns++
	} else {
		s.errors++
	}
}

// Errorf reports a formatted error at the given source position.
func (s *Sink) Errorf(source string, line, column int, format string, args ...interface{}) {
	s.Add(Report{
		Source: source, Line: line, Column: column,
		Message: fmt.Sprintf(format, args...), Severity: Error,
	})
}

// Warnf reports a formatted warning at the given source position.
func (s *Sink) Warnf(source string, line, column int, format string, args ...interface{}) {
	s.Add(Report{
		Source: source, Line: line, Column: column,
		Message: fmt.Sprintf(format, args...), Severity: Warn,
	})
}

// Errors returns the number of Error-severity reports collected so far.
func (s *Sink) Errors() int { return s.errors }

// Warnings returns the number of Warn-severity reports collected so far.
func (s *Sink) Warnings() int { return s.warns }

// Ok reports whether no Error-severity report has been collected. Warnings
// do not affect Ok.
func (s *Sink) Ok() bool { return s.errors == 0 }

// Reports returns a snapshot of all reports collected so far, in the order
// they were added.
func (s *Sink) Reports() []Report {
	out := make([]Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// WithColType tags every report produced while fn runs with t, unless fn's
// own reports set a more specific ColType. Scopes nest: a WithColType
// inside another WithColType reports the innermost type, matching the way
// exploded columns (spec §4.5.6) compile sub-values of a containing record
// or array.
func (s *Sink) WithColType(t string, fn func()) {
	s.colTypeStack = append(s.colTypeStack, t)
	defer func() { s.colTypeStack = s.colTypeStack[:len(s.colTypeStack)-1] }()
	fn()
}

// Mark returns a cursor into the sink's current state. Combined with
// RollbackTo, it lets union parsing (spec §4.3) try an alternative, and
// discard its reports if the alternative fails, keeping the sink's state
// identical to what it would have been had the failed trial never run.
func (s *Sink) Mark() int { return len(s.reports) }

// RollbackTo discards every report added after mark, and restores the
// error/warning counters to match. It is the "save+restore the error sink
// counters across trials" behavior spec §4.3 requires for union member
// trials.
func (s *Sink) RollbackTo(mark int) {
	for _, r := range s.reports[mark:] {
		if r.Severity == Warn {
			s.warns--
		} else {
			s.errors--
		}
	}
	s.reports = s.reports[:mark]
}

// Best returns the report the sink would keep if only one could survive a
// failed union trial: the first Error-severity report, or the first report
// of any severity if no error was recorded. It implements "report the best
// error" from spec §4.3 when every union alternative fails.
func (s *Sink) Best(from int) (Report, bool) {
	var best Report
	found := false
	for _, r := range s.reports[from:] {
		if !found || r.Severity == Error {
			best, found = r, true
			if r.Severity == Error {
				break
			}
		}
	}
	return best, found
}

// Sorted returns the collected reports ordered by source, then line, then
// column, for stable diagnostic output.
func (s *Sink) Sorted() []Report {
	out := s.Reports()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// Print returns every collected report formatted as a string, one per
// line, in sorted order. It is a convenience for command-line front ends;
// the core itself never writes output.
func Print(s *Sink) string {
	var b strings.Builder
	for _, r := range s.Sorted() {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}
