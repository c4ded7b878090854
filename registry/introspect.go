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

package registry

import (
	tabast "github.com/tabulua/tabulua/ast"
	"github.com/tabulua/tabulua/kind"
)

// ExtendsOrRestrict implements spec §4.3/§8's subtyping predicate: a is
// equal to b, or a's registered ancestor chain reaches b. A union extends
// b iff every non-nil alternative extends b - the rule spec §8 states
// explicitly for testing "raw extendsOrRestrict string|number".
func (r *Registry) ExtendsOrRestrict(a, b string) bool {
	if a == b {
		return true
	}
	ea, ok := r.Lookup(a)
	if !ok {
		return false
	}
	if ea.Kind.Is(kind.Union) && ea.Decl != nil {
		for _, alt := range ea.Decl.Alternatives {
			if alt.Kind == tabast.PrimitiveExpr && alt.Name == "nil" {
				continue
			}
			name := typeRefName(alt)
			if name == "" || !r.ExtendsOrRestrict(name, b) {
				return false
			}
		}
		return true
	}
	for p := ea.Parent; p != ""; {
		if p == b {
			return true
		}
		pe, ok := r.Lookup(p)
		if !ok {
			return false
		}
		p = pe.Parent
	}
	return false
}

// Kind returns the registered structural kind of name, or kind.Invalid if
// name is not registered.
func (r *Registry) Kind(name string) kind.Kind {
	e, ok := r.Lookup(name)
	if !ok {
		return kind.Invalid
	}
	return e.Kind
}

// Parent returns the direct parent of name, and whether name is registered
// with one ("" for roots such as raw and table).
func (r *Registry) Parent(name string) (string, bool) {
	e, ok := r.Lookup(name)
	if !ok {
		return "", false
	}
	return e.Parent, true
}

// FieldsOf returns the fully-resolved (inherited then own) field list of a
// record or extends-record type.
func (r *Registry) FieldsOf(name string) ([]tabast.Field, bool) {
	e, ok := r.Lookup(name)
	if !ok || !(e.Kind.Is(kind.Record) || e.Kind.Is(kind.ExtendsRecord)) {
		return nil, false
	}
	return e.Fields, true
}

// TupleLenAndTypes returns the fully-resolved element types of a tuple or
// extends-tuple type.
func (r *Registry) TupleLenAndTypes(name string) ([]*tabast.TypeExpr, bool) {
	e, ok := r.Lookup(name)
	if !ok || !(e.Kind.Is(kind.Tuple) || e.Kind.Is(kind.ExtendsTuple)) {
		return nil, false
	}
	return e.Elems, true
}

// ArrayElemType returns the element type of a registered array type.
func (r *Registry) ArrayElemType(name string) (*tabast.TypeExpr, bool) {
	e, ok := r.Lookup(name)
	if !ok || e.Decl == nil || e.Decl.Kind != tabast.ArrayExpr {
		return nil, false
	}
	return e.Decl.Elem, true
}

// MapKeyValueTypes returns the key and value types of a registered map
// type.
func (r *Registry) MapKeyValueTypes(name string) (key, val *tabast.TypeExpr, ok bool) {
	e, found := r.Lookup(name)
	if !found || e.Decl == nil || e.Decl.Kind != tabast.MapExpr {
		return nil, nil, false
	}
	return e.Decl.MapKey, e.Decl.Elem, true
}

// UnionAlternatives returns the alternative types of a registered union.
func (r *Registry) UnionAlternatives(name string) ([]*tabast.TypeExpr, bool) {
	e, ok := r.Lookup(name)
	if !ok || e.Decl == nil || e.Decl.Kind != tabast.UnionExpr {
		return nil, false
	}
	return e.Decl.Alternatives, true
}

// EnumLabels returns the fully-resolved (inherited then own) label list of
// an enum type.
func (r *Registry) EnumLabels(name string) ([]string, bool) {
	e, ok := r.Lookup(name)
	if !ok || !e.Kind.Is(kind.Enum) {
		return nil, false
	}
	return e.Labels, true
}

// IsBuiltIn reports whether name was registered by package builtins rather
// than by a custom-type manifest or inline column declaration.
func (r *Registry) IsBuiltIn(name string) bool {
	e, ok := r.Lookup(name)
	return ok && e.builtIn
}

// IsNeverTable reports whether a value of the named type can never itself
// be a nested table (spec §4.4's "never_table" built-ins): scalars, enums,
// and raw are never tables; array/map/record/tuple/table are.
func (r *Registry) IsNeverTable(name string) bool {
	e, ok := r.Lookup(name)
	if !ok {
		return true
	}
	return e.Kind.IsNeverTable()
}

// IsMemberOfTag reports whether name is a member of tag, directly, through
// a registered subtype relationship, or transitively through another tag
// that tag itself is a member of (spec §4.7).
func (r *Registry) IsMemberOfTag(name, tag string) bool {
	return r.isMemberOfTag(name, tag, map[string]bool{})
}

func (r *Registry) isMemberOfTag(name, tag string, seen map[string]bool) bool {
	if seen[tag] {
		return false
	}
	seen[tag] = true

	te, ok := r.Lookup(tag)
	if !ok || te.Kind != kind.Tag {
		return false
	}
	for _, m := range te.Con.Members {
		if m == name || r.ExtendsOrRestrict(name, m) {
			return true
		}
		if me, ok := r.Lookup(m); ok && me.Kind == kind.Tag {
			if r.isMemberOfTag(name, m, seen) {
				return true
			}
		}
	}
	return false
}
