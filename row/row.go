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

// Package row applies the column pipeline (package column) across a
// file's raw rows: resolving defaults, evaluating sandboxed expressions
// against a growing `self` view, parsing each cell, and assembling
// exploded columns into nested values, the row/file half of spec §4.5.
package row

import (
	"strconv"
	"strings"

	"github.com/tabulua/tabulua/column"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/kind"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/sandbox"
	"github.com/tabulua/tabulua/value"
)

// Row is one parsed, assembled data row. Cells holds every leaf column's
// parsed value keyed by its full header name; Assembled holds the
// exploded groups' reconstructed nested values keyed by root name (spec
// §3: "exploded groups... expose the assembled nested value under the
// root name").
type Row struct {
	Source    string
	Line      int
	Cells     map[string]value.Value
	Assembled map[string]value.Value
	Order     []string // leaf column names, header order

	// Reformatted holds each leaf column's canonical reformat string, the
	// text a round-trip to canonical TSV emits for that cell (spec §8:
	// "canonical reformatting string").
	Reformatted map[string]string
}

// Get looks a row value up by column name, checking leaf cells first and
// falling back to an assembled exploded root.
func (r *Row) Get(name string) (value.Value, bool) {
	if v, ok := r.Cells[name]; ok {
		return v, true
	}
	v, ok := r.Assembled[name]
	return v, ok
}

// Quota bounds the total sandbox operations one row's default/expression
// evaluation may spend (spec §5: row quota 1000).
const Quota = 1000

// ParseRow runs the full per-row pipeline: default substitution,
// topologically-ordered expression evaluation, cell parsing, and
// exploded-group assembly. raw holds exactly len(cols) cells; a short
// row (fewer raw cells than a non-nullable column requires) is the
// caller's responsibility to pad with "" before calling, so that a
// missing non-nullable cell reports the same "cell required" failure a
// present-but-empty cell would. rowIndex is the row's 1-based position
// among its file's data rows (spec §4.5 step 4: "self.__idx (1-based row
// index)"), which is not generally the same as its source line number
// once a header or any skipped rows come before it.
func ParseRow(sink *errors.Sink, reg *registry.Registry, cols []*column.Column, order []int, source string, line, rowIndex int, raw []string) (*Row, bool) {
	row := &Row{
		Source:      source,
		Line:        line,
		Cells:       map[string]value.Value{},
		Reformatted: map[string]string{},
	}
	selfTable := map[string]sandbox.Value{"__idx": sandbox.Num(float64(rowIndex))}
	env := &sandbox.Env{Vars: map[string]sandbox.Value{"self": sandbox.Table(selfTable)}, Ctx: map[string]sandbox.Value{}, Funcs: sandbox.DefaultFuncs()}

	evalOrder, ok := rowEvalOrder(sink, cols, order, raw, source, line)
	if !ok {
		return row, false
	}

	for _, i := range evalOrder {
		c := cols[i]
		cellRaw := ""
		if i < len(raw) {
			cellRaw = raw[i]
		}
		env.Vars["self"] = sandbox.Table(selfTable) // refresh view with values computed so far

		text, resolved := resolveCellText(sink, env, c, cellRaw, source, line)
		if !resolved {
			ok = false
			continue
		}

		var v value.Value
		var reformatted string
		var parsed bool
		sink.WithColType(c.Header.Name, func() {
			v, reformatted, parsed = c.Parser(&registry.ParseCtx{
				Sink: sink, Registry: reg, Source: source, Line: line, Column: c.Index + 1, ColName: c.Header.Name,
			}, text)
		})
		if !parsed {
			ok = false
			continue
		}

		row.Cells[c.Header.Name] = v
		row.Reformatted[c.Header.Name] = reformatted
		row.Order = append(row.Order, c.Header.Name)
		selfTable[c.Header.Name] = toSandboxValue(v)
	}

	if !ok {
		return row, false
	}

	groups := column.GroupExploded(cols)
	row.Assembled = assembleGroups(groups, row.Cells)

	return row, true
}

// resolveCellText applies spec §4.5's default/expression step: an empty
// cell with a plain default substitutes it verbatim; an empty cell with
// an `=`-expression default evaluates the expression against self and
// uses its string form; a non-empty cell starting with `=` is itself a
// sandboxed expression (spec §1/§3: "evaluates =-prefixed sandboxed
// expressions... against a self row view") and is evaluated the same
// way; any other non-empty cell is used as-is (defaults never override a
// value actually present).
func resolveCellText(sink *errors.Sink, env *sandbox.Env, c *column.Column, cellRaw, source string, line int) (string, bool) {
	if cellRaw != "" {
		if !strings.HasPrefix(cellRaw, "=") {
			return cellRaw, true
		}
		v, err := sandbox.Eval(env, Quota, cellRaw)
		if err != nil {
			sink.Errorf(source, line, c.Index+1, "cell expression for %q failed: %v", c.Header.Name, err)
			return "", false
		}
		return v.String(), true
	}
	if !c.Header.HasDefault {
		return "", true
	}
	if !c.Header.IsExpr {
		return c.Header.Default, true
	}
	v, err := sandbox.Eval(env, Quota, c.Header.Default)
	if err != nil {
		sink.Errorf(source, line, c.Index+1, "default expression for %q failed: %v", c.Header.Name, err)
		return "", false
	}
	return v.String(), true
}

// cellExpr reports the expression text a column's cell resolves to this
// row, if any: a cell-level `=`-expression takes priority over an empty
// cell's own `=`-expression default. Neither applies to a plain present
// value, which has no self-dependencies of its own.
func cellExpr(c *column.Column, raw []string) (string, bool) {
	cellRaw := ""
	if c.Index < len(raw) {
		cellRaw = raw[c.Index]
	}
	if cellRaw != "" {
		if strings.HasPrefix(cellRaw, "=") {
			return cellRaw, true
		}
		return "", false
	}
	if c.Header.HasDefault && c.Header.IsExpr {
		return c.Header.Default, true
	}
	return "", false
}

// rowEvalOrder extends baseOrder (the compile-time order respecting type
// self-ref dependencies, package column's topoOrder) with this row's
// actual expression dependencies: a column whose resolved text this row
// is a `self.*`-referencing expression must be evaluated after every
// column it reads from self, not merely after its declared type's
// self-ref (spec §4.5 step 3, §8: "evaluated in dependency order, not
// header order"). baseOrder is reused as the DFS visitation order so
// ties still resolve to header order exactly as topoOrder's do; a row
// with no `=`-cells and no `=`-defaults reproduces baseOrder unchanged.
func rowEvalOrder(sink *errors.Sink, cols []*column.Column, baseOrder []int, raw []string, source string, line int) ([]int, bool) {
	n := len(cols)
	names := make(map[string]int, n)
	for i, c := range cols {
		names[c.Header.Name] = i
	}

	deps := make([][]int, n)
	for i, c := range cols {
		if c.SelfRefDep >= 0 {
			deps[i] = append(deps[i], c.SelfRefDep)
		}
		expr, isExpr := cellExpr(c, raw)
		if !isExpr {
			continue
		}
		refs, err := sandbox.SelfFieldRefs(expr)
		if err != nil {
			continue // malformed expression is left for resolveCellText to report
		}
		for _, name := range refs {
			if j, ok := names[name]; ok && j != i {
				deps[i] = append(deps[i], j)
			}
		}
	}

	visited := make([]int, n) // 0 = unvisited, 1 = in-progress, 2 = done
	order := make([]int, 0, n)

	var visit func(i int) bool
	visit = func(i int) bool {
		switch visited[i] {
		case 2:
			return true
		case 1:
			sink.Errorf(source, line, i+1, "expression dependency cycle involving column %q", cols[i].Header.Name)
			return false
		}
		visited[i] = 1
		for _, d := range deps[i] {
			if !visit(d) {
				return false
			}
		}
		visited[i] = 2
		order = append(order, i)
		return true
	}

	for _, i := range baseOrder {
		if !visit(i) {
			return nil, false
		}
	}
	return order, true
}

func toSandboxValue(v value.Value) sandbox.Value {
	switch v.Kind {
	case kind.Nil:
		return sandbox.Nil()
	case kind.Bool, kind.True:
		return sandbox.Bool(v.Bool)
	case kind.Int, kind.Float:
		f, _ := v.AsFloat64()
		return sandbox.Num(f)
	case kind.String, kind.Enum:
		return sandbox.Str(v.Str)
	case kind.Raw:
		return sandbox.Str(string(v.Byte))
	case kind.Array, kind.Tuple:
		list := v.List
		if v.Kind == kind.Tuple {
			list = v.Tuple
		}
		out := make([]sandbox.Value, len(list))
		for i, e := range list {
			out[i] = toSandboxValue(e)
		}
		return sandbox.List(out)
	case kind.Record, kind.Map:
		out := map[string]sandbox.Value{}
		for _, k := range v.Keys {
			out[k] = toSandboxValue(v.Fields[k])
		}
		return sandbox.Table(out)
	default:
		return sandbox.Nil()
	}
}

// assembleGroups reconstructs every exploded root into a nested
// [value.Value] (spec §4.5 step 6). A group with no path steps at all
// (an ordinary, non-exploded column) is skipped: it already lives in
// cells under its own name.
func assembleGroups(groups []*column.Group, cells map[string]value.Value) map[string]value.Value {
	out := map[string]value.Value{}
	for _, g := range groups {
		if len(g.Paths) == 1 && len(g.Paths[0].Steps) == 0 {
			continue
		}
		switch {
		case g.IsTuple():
			elems := make([]value.Value, len(g.Columns))
			for idx, c := range g.Columns {
				n, _ := strconv.Atoi(strings.TrimPrefix(g.Paths[idx].Steps[0].Name, "_"))
				if n >= 1 && n <= len(elems) {
					elems[n-1] = cells[c.Header.Name]
				}
			}
			out[g.Root] = value.NewTuple(elems)
		case g.IsArrayOrMap():
			out[g.Root] = assembleArrayOrMap(g, cells)
		default:
			keys := make([]string, 0, len(g.Columns))
			fields := map[string]value.Value{}
			for i, c := range g.Columns {
				name := c.Header.Name
				if len(g.Paths[i].Steps) > 0 {
					name = g.Paths[i].Steps[0].Name
				}
				keys = append(keys, name)
				fields[name] = cells[c.Header.Name]
			}
			out[g.Root] = value.NewRecord(kind.Record, keys, fields)
		}
	}
	return out
}


// assembleArrayOrMap builds a bracket-path group into an array (all
// bracket contents are small consecutive non-negative integers starting
// at 0) or a map (any bracket content is a non-numeric key), per spec
// glossary's "Explode" entry.
func assembleArrayOrMap(g *column.Group, cells map[string]value.Value) value.Value {
	isArray := true
	for _, p := range g.Paths {
		if n, err := strconv.Atoi(p.Steps[0].Name); err != nil || n < 0 || n >= len(g.Paths) {
			isArray = false
			break
		}
	}
	if isArray {
		max := -1
		idxs := make([]int, len(g.Columns))
		for i, p := range g.Paths {
			n, _ := strconv.Atoi(p.Steps[0].Name)
			idxs[i] = n
			if n > max {
				max = n
			}
		}
		elems := make([]value.Value, max+1)
		for i, c := range g.Columns {
			elems[idxs[i]] = cells[c.Header.Name]
		}
		return value.NewArray(elems)
	}

	keys := make([]string, 0, len(g.Columns))
	fields := map[string]value.Value{}
	for i, c := range g.Columns {
		key := g.Paths[i].Steps[0].Name
		keys = append(keys, key)
		fields[key] = cells[c.Header.Name]
	}
	return value.NewRecord(kind.Map, keys, fields)
}
