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

// Package registry holds the global name->type table spec §4.3 describes:
// registration, cycle detection, extends/ancestor/tag composition, and the
// introspection surface the parser factory (package lang) and the schema
// exporter (package introspect) both query. It plays the role cue/types.go
// and internal/core/adt's scope/vertex model play for CUE's own type
// graph, simplified to TabuLua's name-keyed (not pointer-keyed) registry
// (design note §9: "registry entries reference types by name ... keeping
// the graph acyclic at the representation level").
package registry

import (
	"fmt"
	"regexp"

	"github.com/cockroachdb/apd/v3"
	tabast "github.com/tabulua/tabulua/ast"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/kind"
	"github.com/tabulua/tabulua/value"
)

// Constraints narrow a registered type beyond its parent's. Spec §3
// requires these to be mutually exclusive on any one Entry; RegisterType
// enforces that.
type Constraints struct {
	Min, Max       *apd.Decimal
	MinLen, MaxLen *int
	Pattern        *regexp.Regexp
	Values         []string // enum subset narrowing
	Validate       string   // source text of an expression validator, compiled by package sandbox
	Members        []string // type-tag members
}

// count returns how many of the mutually-exclusive constraint groups are
// set, so RegisterType can reject a registration naming more than one.
func (c Constraints) count() int {
	n := 0
	if c.Min != nil || c.Max != nil {
		n++
	}
	if c.MinLen != nil || c.MaxLen != nil || c.Pattern != nil {
		n++
	}
	if len(c.Values) > 0 {
		n++
	}
	if c.Validate != "" {
		n++
	}
	if len(c.Members) > 0 {
		n++
	}
	return n
}

// An Entry is one registered type: built-in, or declared by a custom-type
// record (spec §6.1) or inline in a column header.
type Entry struct {
	Name     string
	Parent   string // "" for the handful of roots (raw, table, ...)
	Kind     kind.Kind
	Decl     *tabast.TypeExpr // the declaration's shape; nil for hand-built roots
	Con      Constraints
	Fields   []tabast.Field   // resolved: parent fields (if any) followed by own
	OwnCount int              // len(own fields), for distinguishing inherited vs added
	Elems    []*tabast.TypeExpr // resolved tuple element types, parent then own
	OwnElems int
	Labels   []string // enum labels (own declared, before parent's are merged in for enum-subset)
	Anonymous bool    // true for an inline compound never given a registry name

	// Parser is filled in by package lang's factory once the entry is
	// registered; the registry itself never compiles cell text.
	Parser Parser

	builtIn bool
}

// Parser is the compiled cell-parser capability for one registered type:
// a function from raw cell text plus a [ParseContext] to a parsed
// [value.Value] plus its canonical reformat string (design note §9:
// "Replace source-language dynamic dispatch with a single Parser
// capability"). Declared here, not in package lang, so Entry can hold one
// without an import cycle; package lang is the only place that builds
// Parser values, by calling [Registry.SetParser].
type Parser func(ctx *ParseCtx, raw string) (value.Value, string, bool)

// ParseCtx carries everything a compiled Parser needs besides the raw
// cell text: the sink to report into, the registry to resolve alias
// references against, and the source position to attribute reports to.
// Row-level context (self.* resolution) is layered on top by package
// column, which is the only caller that needs it; most Parsers never look
// at a row at all.
type ParseCtx struct {
	Sink     *errors.Sink
	Registry *Registry
	Source   string
	Line     int
	Column   int
	ColName  string
}

// SetParser installs the compiled Parser for e. Called by package lang's
// factory once, after RegisterType; never by the registry itself.
func (r *Registry) SetParser(name string, p Parser) {
	if e, ok := r.entries[name]; ok {
		e.Parser = p
	}
}

func (s lookupState) String() string {
	switch s {
	case stateUnresolved:
		return "unresolved"
	case stateResolved:
		return "resolved"
	case stateCachedUnknown:
		return "cached-unknown"
	default:
		return "unknown"
	}
}

type lookupState int

const (
	stateUnresolved lookupState = iota
	stateResolved
	stateCachedUnknown
)

// A Registry is the process-wide (per design note §9: "explicit handle",
// never an ambient global) type table. The zero value is not usable; call
// [New].
type Registry struct {
	entries map[string]*Entry
	unknown map[string]lookupState
}

// New returns an empty registry. Built-ins are registered into it by
// package builtins, the same separation cue/internal/core keeps between
// the scope mechanism and the predeclared-identifier table it seeds.
func New() *Registry {
	return &Registry{
		entries: map[string]*Entry{},
		unknown: map[string]lookupState{},
	}
}

// Lookup returns the entry named name, and whether it is known. It records
// nothing about a miss; package lang calls [Registry.MarkUnknown] before
// reporting an unknown type so a second reference does not duplicate the
// report (spec §9 Open Question a).
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	if ok {
		return e, true
	}
	return nil, false
}

// MarkUnknown records that name was referenced and not found, returning
// whether this is the first time (so the caller should report an error)
// or a repeat (cached, caller should stay silent).
func (r *Registry) MarkUnknown(name string) (firstTime bool) {
	if r.unknown[name] == stateCachedUnknown {
		return false
	}
	r.unknown[name] = stateCachedUnknown
	return true
}

// Names returns every registered type name, for introspection/schema
// export; order is unspecified, callers sort as needed.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for n := range r.entries {
		out = append(out, n)
	}
	return out
}

// isLegalName rejects the reserved forms from spec §3/§6.3: "self", "_N",
// and any name ending in "_" (field names are exempt, but a *type* name
// never is).
func isLegalName(name string) bool {
	if name == "" {
		return false
	}
	if !tabast.IsValidIdentifier(name, false) {
		return false
	}
	return true
}

// RegisterType implements spec §4.3's registration algorithm: verify the
// name and parent, compute kind, reject disallowed constraint/parent
// combinations, and store the entry. It does not compile a Parser; call
// lang.CompileEntry afterwards to fill Entry.Parser.
//
// Re-registering an existing name with an identical parent is idempotent
// (spec §3's invariant); re-registering with a different parent is an
// error. The one exception is Tag kind, whose Members merge additively
// across packages (spec §4.7).
func (r *Registry) RegisterType(sink *errors.Sink, source string, line int, name, parent string, con Constraints, decl *tabast.TypeExpr) (*Entry, bool) {
	if !isLegalName(name) {
		sink.Errorf(source, line, 1, "illegal type name %q", name)
		return nil, false
	}

	if existing, ok := r.entries[name]; ok {
		if len(con.Members) > 0 && existing.Kind == kind.Tag {
			return r.mergeTagMembers(existing, con.Members), true
		}
		if existing.Parent != parent {
			sink.Errorf(source, line, 1,
				"type %q already registered with parent %q, cannot re-register with parent %q",
				name, existing.Parent, parent)
			return nil, false
		}
		return existing, true
	}

	if con.count() > 1 {
		sink.Errorf(source, line, 1, "type %q declares more than one constraint group", name)
		return nil, false
	}

	var parentEntry *Entry
	if parent != "" {
		pe, ok := r.Lookup(parent)
		if !ok {
			sink.Errorf(source, line, 1, "unknown parent type %q for %q", parent, name)
			return nil, false
		}
		parentEntry = pe

		if pe.Kind.Is(kind.Union) && con.count() > 0 && len(con.Members) == 0 {
			sink.Errorf(source, line, 1,
				"type %q: union types may only be parents for expression validators, not %s",
				name, "scalar constraints")
			return nil, false
		}
	}

	k := computeKind(parentEntry, decl, len(con.Members) > 0)

	if len(con.Values) > 0 {
		if parentEntry == nil || !parentEntry.Kind.Is(kind.Enum) {
			sink.Errorf(source, line, 1, "type %q: 'values' constraint requires an enum parent", name)
			return nil, false
		}
		labels := map[string]bool{}
		for _, l := range parentEntry.Labels {
			labels[l] = true
		}
		for _, v := range con.Values {
			if !labels[v] {
				sink.Errorf(source, line, 1, "type %q: value %q is not a label of parent enum %q", name, v, parent)
				return nil, false
			}
		}
	}

	e := &Entry{Name: name, Parent: parent, Kind: k, Decl: decl, Con: con}
	if parentEntry != nil {
		e.Fields = append(e.Fields, parentEntry.Fields...)
		e.Elems = append(e.Elems, parentEntry.Elems...)
		e.Labels = append(e.Labels, parentEntry.Labels...)
	}

	if decl != nil {
		switch decl.Kind {
		case tabast.RecordExpr:
			if len(decl.Fields) < 2 {
				sink.Errorf(source, line, 1, "type %q: a record needs at least 2 declared fields", name)
				return nil, false
			}
			e.Fields = decl.Fields
			e.OwnCount = len(decl.Fields)

		case tabast.ExtendsRecordExpr:
			if parentEntry == nil || !parentEntry.Kind.Is(kind.Record) && !parentEntry.Kind.Is(kind.ExtendsRecord) {
				sink.Errorf(source, line, 1, "type %q: extends:%s requires a record parent", name, decl.Parent)
				return nil, false
			}
			if !r.checkExtendsRecordFields(sink, source, line, name, parentEntry, decl.Fields) {
				return nil, false
			}
			e.OwnCount = len(decl.Fields)
			e.Fields = mergeFields(e.Fields, decl.Fields)
			r.checkSiblingFieldConsistency(sink, source, line, parentEntry, name, decl.Fields)

		case tabast.TupleExpr:
			if len(decl.Elements) < 2 {
				sink.Errorf(source, line, 1, "type %q: a tuple needs at least 2 elements", name)
				return nil, false
			}
			e.Elems = decl.Elements
			e.OwnElems = len(decl.Elements)

		case tabast.ExtendsTupleExpr:
			if parentEntry == nil || !parentEntry.Kind.Is(kind.Tuple) && !parentEntry.Kind.Is(kind.ExtendsTuple) {
				sink.Errorf(source, line, 1, "type %q: extends,%s requires a tuple parent", name, decl.Parent)
				return nil, false
			}
			e.OwnElems = len(decl.Elements)
			e.Elems = append(e.Elems, decl.Elements...)

		case tabast.EnumExpr:
			if len(decl.Labels) == 0 {
				sink.Errorf(source, line, 1, "type %q: an enum needs at least one label", name)
				return nil, false
			}
			e.Labels = decl.Labels
		}
	}

	r.entries[name] = e
	return e, true
}

// checkExtendsRecordFields validates each added/narrowed/omitted field
// against the parent's corresponding field (spec §3): a field absent from
// the parent is a plain addition; a field present in the parent must have
// a type equal to, or a registered subtype of, the parent's field type
// (narrowing), or be declared "nil" (omission).
func (r *Registry) checkExtendsRecordFields(sink *errors.Sink, source string, line int, childName string, parent *Entry, added []tabast.Field) bool {
	ok := true
	parentFields := map[string]*tabast.TypeExpr{}
	for _, f := range parent.Fields {
		parentFields[f.Name] = f.Type
	}
	for _, f := range added {
		pt, existedInParent := parentFields[f.Name]
		if !existedInParent {
			continue // pure addition
		}
		if f.Type.Kind == tabast.PrimitiveExpr && f.Type.Name == "nil" {
			continue // column omission, always legal
		}
		if typeRefName(f.Type) == typeRefName(pt) {
			continue // identical type, legal narrowing no-op
		}
		childTypeName := typeRefName(f.Type)
		if childTypeName == "" || !r.ExtendsOrRestrict(childTypeName, typeRefName(pt)) {
			sink.Errorf(source, line, 1,
				"type %q: field %q narrows parent field type %q incompatibly",
				childName, f.Name, typeRefName(pt))
			ok = false
		}
	}
	return ok
}

// checkSiblingFieldConsistency implements spec §3's "sibling subtypes of
// the same parent" rule: scans every other registered direct child of
// parent and requires fields with the same name to share a type, unless
// each sibling's field type is independently a valid subtype of the
// parent's declared field type.
func (r *Registry) checkSiblingFieldConsistency(sink *errors.Sink, source string, line int, parent *Entry, childName string, added []tabast.Field) {
	parentFields := map[string]*tabast.TypeExpr{}
	for _, f := range parent.Fields {
		parentFields[f.Name] = f.Type
	}
	for _, sib := range r.entries {
		if sib.Name == childName || sib.Parent != parent.Name || sib.Decl == nil {
			continue
		}
		for _, af := range added {
			for _, sf := range sib.Decl.Fields {
				if sf.Name != af.Name {
					continue
				}
				if typeRefName(sf.Type) == typeRefName(af.Type) {
					continue
				}
				pt, ok := parentFields[af.Name]
				if !ok {
					continue
				}
				aOK := r.ExtendsOrRestrict(typeRefName(af.Type), typeRefName(pt))
				sOK := r.ExtendsOrRestrict(typeRefName(sf.Type), typeRefName(pt))
				if !aOK || !sOK {
					sink.Errorf(source, line, 1,
						"type %q: field %q conflicts with sibling %q's field of the same name",
						childName, af.Name, sib.Name)
				}
			}
		}
	}
}

// mergeFields overlays added onto inherited: a field with a name already
// present in inherited replaces it in place (narrowing or, for a "nil"
// type, omission); a new name is appended in declared order after the
// inherited fields.
func mergeFields(inherited []tabast.Field, added []tabast.Field) []tabast.Field {
	out := append([]tabast.Field(nil), inherited...)
	for _, f := range added {
		replaced := false
		for i := range out {
			if out[i].Name == f.Name {
				out[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return out
}

// typeRefName returns the alias name t refers to, if t is a simple
// Alias/Primitive reference; "" for any compound/union/nil type, which
// narrowing-compatibility checks then treat as "cannot compare, must
// differ structurally".
func typeRefName(t *tabast.TypeExpr) string {
	if t == nil {
		return ""
	}
	if t.Kind == tabast.AliasExpr || t.Kind == tabast.PrimitiveExpr {
		return t.Name
	}
	return ""
}

// RegisterBuiltin is RegisterType specialized for the bootstrap built-in
// table (package builtins): it panics on failure, since a built-in
// declaration is a programming error, never user input.
func (r *Registry) RegisterBuiltin(name, parent string, con Constraints, decl *tabast.TypeExpr) *Entry {
	sink := errors.NewSink()
	e, ok := r.RegisterType(sink, "<builtin>", 0, name, parent, con, decl)
	if !ok {
		panic(fmt.Sprintf("registering built-in %q: %v", name, sink.Reports()))
	}
	e.builtIn = true
	return e
}

func (r *Registry) mergeTagMembers(e *Entry, members []string) *Entry {
	have := map[string]bool{}
	for _, m := range e.Con.Members {
		have[m] = true
	}
	for _, m := range members {
		if !have[m] {
			e.Con.Members = append(e.Con.Members, m)
			have[m] = true
		}
	}
	return e
}

// computeKind derives an Entry's structural Kind from its declaration form
// and its parent's kind (spec §3's "kind" field).
func computeKind(parent *Entry, decl *tabast.TypeExpr, isTag bool) kind.Kind {
	if isTag {
		return kind.Tag
	}
	if decl == nil {
		if parent != nil {
			return parent.Kind
		}
		return kind.Raw
	}
	switch decl.Kind {
	case tabast.UnionExpr:
		return kind.Union
	case tabast.ArrayExpr:
		return kind.Array
	case tabast.MapExpr:
		return kind.Map
	case tabast.TableExpr:
		return kind.Table
	case tabast.TupleExpr:
		return kind.Tuple
	case tabast.RecordExpr:
		return kind.Record
	case tabast.EnumExpr:
		return kind.Enum
	case tabast.ExtendsRecordExpr:
		return kind.ExtendsRecord
	case tabast.ExtendsTupleExpr:
		return kind.ExtendsTuple
	case tabast.AncestorConstraintExpr:
		return kind.Ancestor
	default:
		if parent != nil {
			return parent.Kind
		}
		return kind.Primitive
	}
}
