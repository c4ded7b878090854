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

package row

import (
	"github.com/tabulua/tabulua/column"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/kind"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/value"
)

// File is one fully-parsed, row-ordered dataset file (spec §3's "File
// (dataset)"): its column pipeline, every successfully parsed row in
// source order, and the published view the package's other files can
// reference.
type File struct {
	Source  string
	Columns []*column.Column
	Rows    []*Row

	// Published maps the primary-key cell's canonical key to either the
	// projected publishColumn value (when publishColumn is set) or the
	// whole row, mirroring spec §3's "key->value... or key->whole-row"
	// choice. There is no publishContext option.
	Published map[string]value.Value
}

// BuildFile parses a header row and every following raw data row into a
// File, enforcing primary-key uniqueness within the file (spec §4.5:
// "primary-key rule") and building the published view: the
// publishColumn cell per row when publishColumn is set, else the whole row.
func BuildFile(sink *errors.Sink, reg *registry.Registry, source string, header []string, dataRows [][]string, firstDataLine int, publishColumn string) (*File, bool) {
	cols, order, ok := column.BuildColumns(sink, reg, source, 1, header)
	if !ok {
		return nil, false
	}

	f := &File{Source: source, Columns: cols, Published: map[string]value.Value{}}
	seenPK := map[string]int{} // canonical PK key -> source line number, for duplicate reporting

	ok = true
	for i, raw := range dataRows {
		line := firstDataLine + i
		r, rowOK := ParseRow(sink, reg, cols, order, source, line, i+1, raw)
		if !rowOK {
			ok = false
			continue
		}
		f.Rows = append(f.Rows, r)

		pkName := cols[0].Header.Name
		pk, found := r.Get(pkName)
		if !found {
			continue
		}
		key := pk.CanonicalKey()
		if prevLine, dup := seenPK[key]; dup {
			sink.Errorf(source, line, 1, "duplicate primary key %q (first seen on line %d)", pkName, prevLine)
			ok = false
			continue
		}
		seenPK[key] = line

		if publishColumn != "" {
			v, ok := r.Get(publishColumn)
			if ok {
				f.Published[key] = v
			}
		} else {
			f.Published[key] = rowAsRecord(r)
		}
	}

	return f, ok
}

func rowAsRecord(r *Row) value.Value {
	keys := append([]string(nil), r.Order...)
	fields := map[string]value.Value{}
	for _, k := range keys {
		fields[k] = r.Cells[k]
	}
	for k, v := range r.Assembled {
		keys = append(keys, k)
		fields[k] = v
	}
	return value.NewRecord(kind.Record, keys, fields)
}
