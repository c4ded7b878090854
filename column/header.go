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

// Package column builds the per-file column pipeline spec §4.5 describes:
// parsing `name:typeSpec[:default]` header tokens, compiling a
// [registry.Parser] for each, detecting `self.*` dependencies between
// columns, and ordering evaluation topologically. It plays the role
// cue/ast's struct-literal compiler plays for CUE: turning a flat,
// textual declaration into a graph of interdependent fields evaluated in
// dependency order rather than declaration order.
package column

import (
	"strings"

	"github.com/tabulua/tabulua/errors"
	tabast "github.com/tabulua/tabulua/ast"
	"github.com/tabulua/tabulua/lang"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/typeparser"
)

// Header is one parsed `name:typeSpec[:default]` header token (spec
// §4.5). Default is empty when the column has none; IsExpr records
// whether Default began with `=` (stripped here, so the sandbox sees a
// bare expression string).
type Header struct {
	Name     string
	TypeSpec string
	Default  string
	HasDefault bool
	IsExpr   bool
}

// ParseHeader splits one header token on exactly its first two ':'
// characters (spec §4.5: "the implementer must handle defaults that
// contain ':' by consuming the first two ':' only"). A typeSpec that
// itself needs an unescaped ':' cannot appear directly in a header this
// way; that is the documented tradeoff of the two-colon rule, not a bug
// in this implementation.
func ParseHeader(token string) (Header, bool) {
	i := strings.IndexByte(token, ':')
	if i < 0 {
		return Header{}, false
	}
	name := token[:i]
	rest := token[i+1:]

	h := Header{Name: name}
	j := strings.IndexByte(rest, ':')
	if j < 0 {
		h.TypeSpec = rest
		return h, true
	}
	h.TypeSpec = rest[:j]
	def := rest[j+1:]
	h.HasDefault = true
	if strings.HasPrefix(def, "=") {
		h.IsExpr = true
		def = def[1:]
	}
	h.Default = def
	return h, true
}

// Column is one compiled column of a file: its header information, the
// declared type expression (possibly containing a SelfRef node the
// second compile pass resolves), and the parser once compilation
// completes.
type Column struct {
	Index      int // 0-based position within the header row
	Header     Header
	Decl       *tabast.TypeExpr
	SelfRefDep int // -1 if this column has no self-ref dependency, else the Index it depends on
	Parser     registry.Parser
}

// IsPrimaryKey reports whether c is the file's primary-key column: column
// 1 of the header row (spec §4.5).
func (c *Column) IsPrimaryKey() bool { return c.Index == 0 }

// BuildColumns parses every header token, resolves self-ref dependencies
// in topological order, and compiles a [registry.Parser] per column. It
// reports a sink error and returns ok=false on any parse failure, a
// self-ref cycle, or a self-pointing ref, matching spec §4.5's "cycles
// and self-pointing refs are rejected at compile time."
func BuildColumns(sink *errors.Sink, r *registry.Registry, source string, line int, tokens []string) ([]*Column, []int, bool) {
	cols := make([]*Column, len(tokens))
	names := map[string]int{}

	for i, tok := range tokens {
		h, ok := ParseHeader(tok)
		if !ok {
			sink.Errorf(source, line, i+1, "malformed header %q: expected name:typeSpec[:default]", tok)
			return nil, nil, false
		}
		if _, dup := names[h.Name]; dup {
			sink.Errorf(source, line, i+1, "duplicate column name %q", h.Name)
			return nil, nil, false
		}
		names[h.Name] = i

		decl, ok := typeparser.Parse(sink, source, line, i+1, h.TypeSpec)
		if !ok {
			return nil, nil, false
		}
		dep, ok := selfRefIndex(decl, i, len(tokens), names, sink, source, line)
		if !ok {
			return nil, nil, false
		}
		cols[i] = &Column{Index: i, Header: h, Decl: decl, SelfRefDep: dep}
	}

	order, ok := topoOrder(sink, source, line, cols)
	if !ok {
		return nil, nil, false
	}

	for _, i := range order {
		c := cols[i]
		if c.SelfRefDep >= 0 {
			// Second pass: the referenced sibling has already been
			// compiled (it precedes c in topological order), so its
			// registered type name can be resolved now.
			dep := cols[c.SelfRefDep]
			typeName := resolvedTypeName(dep)
			if typeName == "" {
				sink.Errorf(source, line, c.Index+1, "self-ref column %q does not resolve to a registered type", c.Header.Name)
				return nil, nil, false
			}
			e, ok := r.Lookup(typeName)
			if !ok {
				sink.Errorf(source, line, c.Index+1, "self-ref column %q refers to unknown type %q", c.Header.Name, typeName)
				return nil, nil, false
			}
			c.Parser = lang.CompileEntry(r, e)
			continue
		}
		c.Parser = lang.CompileExpr(r, c.Decl)
	}

	return cols, order, true
}

// resolvedTypeName returns the registered type name a column's declared
// type names, for self-ref resolution. It only succeeds for a bare
// primitive/alias reference (spec §4.5: "yields a registered type
// name"); a compound declaration cannot itself be the target of a
// self-ref.
func resolvedTypeName(c *Column) string {
	switch c.Decl.Kind {
	case tabast.PrimitiveExpr, tabast.AliasExpr:
		return c.Decl.Name
	default:
		return ""
	}
}

// selfRefIndex walks decl looking for a top-level SelfRef node and
// resolves it to a sibling column index, reporting an error for an
// unknown field name, a self-pointing ref, or a forward reference to a
// column that has not been declared at all (out of range _N); ok is false
// after any such report. n is the number of columns in the header.
func selfRefIndex(decl *tabast.TypeExpr, self, n int, names map[string]int, sink *errors.Sink, source string, line int) (int, bool) {
	ref := findSelfRef(decl)
	if ref == nil {
		return -1, true
	}
	var idx int
	if ref.Index >= 0 {
		idx = ref.Index
		if idx >= n {
			sink.Errorf(source, line, self+1, "self-ref to out-of-range column _%d", idx)
			return -1, false
		}
	} else {
		i, ok := names[ref.Name]
		if !ok {
			sink.Errorf(source, line, self+1, "self-ref to unknown column %q", ref.Name)
			return -1, false
		}
		idx = i
	}
	if idx == self {
		sink.Errorf(source, line, self+1, "column cannot self-ref its own header")
		return -1, false
	}
	return idx, true
}

// findSelfRef looks for a SelfRef node directly at decl's top level (spec
// §4.5 only requires detecting it at column-header compile time, not
// buried arbitrarily deep inside a container type).
func findSelfRef(decl *tabast.TypeExpr) *tabast.TypeExpr {
	if decl == nil {
		return nil
	}
	if decl.Kind == tabast.SelfRefExpr {
		return decl
	}
	return nil
}
