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

// Package join resolves the file-join metadata spec §4.7 describes: a
// secondary file declares joinInto (a primary file) and joinColumn
// (default: the primary key). Every primary row is preserved (LEFT
// JOIN); an unmatched secondary row is an error; a duplicate column name
// across files (other than the join column) is an error; chaining a
// join off another secondary file is rejected. The match/preserve/
// reject-unmatched shape follows the LEFT JOIN plan node dolthub's
// sql/plan package builds for SQL's own LEFT JOIN, scaled down to two
// in-memory row sets instead of a query-executor iterator pipeline.
package join

import (
	"github.com/tabulua/tabulua/column"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/row"
	"github.com/tabulua/tabulua/value"
)

// Spec is one secondary file's join declaration.
type Spec struct {
	JoinInto   string // primary file's source name
	JoinColumn string // empty means "the primary key column"
}

// Registry tracks which files have already been joined as a secondary,
// so a later attempt to join a third file into an already-secondary file
// can be rejected as a chained join (spec §4.7: "chained joins
// (secondary->secondary) are rejected").
type Registry struct {
	usedAsSecondary map[string]bool
}

func NewRegistry() *Registry { return &Registry{usedAsSecondary: map[string]bool{}} }

// Join merges secondary into primary in place: every column of
// secondary other than the join column is appended to primary's schema
// and every primary row, with a nil value where no secondary row
// matched. It reports an error and returns false for a duplicate column
// name, an unmatched secondary row, or a chained join.
func (jr *Registry) Join(sink *errors.Sink, primary, secondary *row.File, spec Spec) bool {
	if jr.usedAsSecondary[primary.Source] {
		sink.Errorf(secondary.Source, 0, 0, "cannot join into %q: it is itself a secondary file (chained joins are rejected)", primary.Source)
		return false
	}

	joinColumn := spec.JoinColumn
	if joinColumn == "" {
		joinColumn = primary.Columns[0].Header.Name
	}

	added, ok := nonJoinColumns(sink, primary, secondary, joinColumn)
	if !ok {
		return false
	}

	secIndex, secKeyCol, ok := indexSecondary(sink, secondary, joinColumn)
	if !ok {
		return false
	}

	matched := make(map[string]bool, len(secIndex))
	for _, r := range primary.Rows {
		key, found := primaryJoinKey(r, joinColumn)
		if !found {
			for _, c := range added {
				r.Cells[c.Header.Name] = value.Nil
			}
			continue
		}
		secRow, ok := secIndex[key]
		if !ok {
			for _, c := range added {
				r.Cells[c.Header.Name] = value.Nil
			}
			continue
		}
		matched[key] = true
		for _, c := range added {
			r.Cells[c.Header.Name] = secRow.Cells[c.Header.Name]
			r.Reformatted[c.Header.Name] = secRow.Reformatted[c.Header.Name]
		}
	}

	for key := range secIndex {
		if !matched[key] {
			sink.Errorf(secondary.Source, 0, 0, "unmatched secondary row for join key %q on column %q", key, secKeyCol)
			ok = false
		}
	}

	primary.Columns = append(primary.Columns, added...)
	jr.usedAsSecondary[secondary.Source] = true
	return ok
}

func nonJoinColumns(sink *errors.Sink, primary, secondary *row.File, joinColumn string) ([]*column.Column, bool) {
	primaryNames := map[string]bool{}
	for _, c := range primary.Columns {
		primaryNames[c.Header.Name] = true
	}
	var added []*column.Column
	ok := true
	for _, c := range secondary.Columns {
		if c.Header.Name == joinColumn {
			continue
		}
		if primaryNames[c.Header.Name] {
			sink.Errorf(secondary.Source, 0, 0, "column %q conflicts with a column of the same name in %q", c.Header.Name, primary.Source)
			ok = false
			continue
		}
		added = append(added, c)
	}
	return added, ok
}

// indexSecondary builds a join-key -> row index for secondary, using the
// secondary file's own column named joinColumn if it has one, else its
// primary key column.
func indexSecondary(sink *errors.Sink, secondary *row.File, joinColumn string) (map[string]*row.Row, string, bool) {
	keyCol := joinColumn
	hasNamed := false
	for _, c := range secondary.Columns {
		if c.Header.Name == joinColumn {
			hasNamed = true
			break
		}
	}
	if !hasNamed {
		keyCol = secondary.Columns[0].Header.Name
	}

	index := map[string]*row.Row{}
	for _, r := range secondary.Rows {
		v, found := r.Get(keyCol)
		if !found {
			sink.Errorf(secondary.Source, r.Line, 0, "secondary row missing join key column %q", keyCol)
			return nil, keyCol, false
		}
		index[v.CanonicalKey()] = r
	}
	return index, keyCol, true
}

func primaryJoinKey(r *row.Row, joinColumn string) (string, bool) {
	v, ok := r.Get(joinColumn)
	if !ok {
		return "", false
	}
	return v.CanonicalKey(), true
}
