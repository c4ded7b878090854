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

// Package ast defines the node set produced by the type-spec PEG (spec
// §4.2): TypeExpr is a tagged union over owned children, the same pattern
// cue/ast uses for CUE's own expression tree, scaled down to the much
// smaller type-spec grammar.
package ast

import "github.com/tabulua/tabulua/token"

// A TypeExpr is one node of a parsed type-spec string. Exactly one group
// of the typed fields below is meaningful for any given Kind; the rest are
// zero. This mirrors cue/ast's practice of a small closed node set rather
// than a Go interface per node: the parser factory (package lang) switches
// on Kind the way cue/internal/core/compile switches on cue/ast.Expr
// concrete types.
type TypeExpr struct {
	Kind TypeKind
	Pos  token.Position

	// Primitive / Alias / AncestorConstraint(ancestor name) / SelfRef(field)
	Name string

	// Union: the alternatives, in declaration order. HasNil records
	// whether "nil" appeared (always last); HasString records whether
	// "string" appeared (must precede nil), so later passes can enforce
	// the union ordering constraint from spec §3 without re-walking.
	Alternatives []*TypeExpr
	HasNil       bool
	HasString    bool

	// Array: Elem is the element type.
	// Map: Elem is the value type, MapKey is the key type.
	Elem   *TypeExpr
	MapKey *TypeExpr

	// Tuple / ExtendsTuple: ordered element types. For ExtendsTuple these
	// are the *added* elements; Parent names the tuple being extended.
	Elements []*TypeExpr

	// Record / ExtendsRecord: ordered fields. For ExtendsRecord, Fields
	// are the added/narrowed/omitted fields; Parent names the record
	// being extended.
	Fields []Field
	Parent string

	// Enum: ordered, unique labels.
	Labels []string

	// SelfRef: Index is set (>=0) for self._N, or -1 when Name (the field
	// name) identifies the reference for self.field.
	Index int
}

// TypeKind discriminates the variant stored in a TypeExpr. It is
// intentionally distinct from package kind's registry-level Kind: this one
// names grammar productions (spec §3), the other names the structural
// classification a *registered* type ends up with once constraints are
// layered on top of a grammar production.
type TypeKind int

const (
	Invalid TypeKind = iota
	PrimitiveExpr
	AliasExpr
	UnionExpr
	ArrayExpr
	MapExpr
	TableExpr
	TupleExpr
	RecordExpr
	EnumExpr
	ExtendsRecordExpr
	ExtendsTupleExpr
	AncestorConstraintExpr
	SelfRefExpr
)

func (k TypeKind) String() string {
	switch k {
	case PrimitiveExpr:
		return "primitive"
	case AliasExpr:
		return "alias"
	case UnionExpr:
		return "union"
	case ArrayExpr:
		return "array"
	case MapExpr:
		return "map"
	case TableExpr:
		return "table"
	case TupleExpr:
		return "tuple"
	case RecordExpr:
		return "record"
	case EnumExpr:
		return "enum"
	case ExtendsRecordExpr:
		return "extends-record"
	case ExtendsTupleExpr:
		return "extends-tuple"
	case AncestorConstraintExpr:
		return "ancestor-constraint"
	case SelfRefExpr:
		return "self-ref"
	default:
		return "invalid"
	}
}

// A Field is one member of a Record or ExtendsRecord TypeExpr. Optional
// fields may be absent from a cell (spec §4.3); a field whose Type is the
// literal "nil" primitive is column omission (spec §3), which the
// registry, not this package, rejects at registration time.
type Field struct {
	Name     string
	Type     *TypeExpr
	Optional bool
}

// Primitive constructs a reference to a built-in or previously registered
// primitive/scalar type name, such as "integer" or "identifier".
func Primitive(pos token.Position, name string) *TypeExpr {
	return &TypeExpr{Kind: PrimitiveExpr, Pos: pos, Name: name}
}

// Alias constructs a reference to another registered type by name, used
// wherever a type-spec names a compound type registered earlier (custom
// types, or a previous column's record/tuple).
func Alias(pos token.Position, name string) *TypeExpr {
	return &TypeExpr{Kind: AliasExpr, Pos: pos, Name: name}
}

// NewUnion constructs a TypeExpr|TypeExpr|... node. Callers are expected
// to have already validated the string/nil ordering constraint from spec
// §3; NewUnion itself only records HasNil/HasString for later inspection.
func NewUnion(pos token.Position, alts []*TypeExpr) *TypeExpr {
	u := &TypeExpr{Kind: UnionExpr, Pos: pos, Alternatives: alts}
	for _, a := range alts {
		if a.Kind == PrimitiveExpr && a.Name == "nil" {
			u.HasNil = true
		}
		if a.Kind == PrimitiveExpr && a.Name == "string" {
			u.HasString = true
		}
	}
	return u
}

// IsNullable reports whether a nil alternative is present, the test the
// column pipeline uses (spec §4.5.1) to decide whether an empty cell with
// no default is legal.
func (t *TypeExpr) IsNullable() bool {
	if t == nil {
		return false
	}
	if t.Kind == PrimitiveExpr && t.Name == "nil" {
		return true
	}
	return t.Kind == UnionExpr && t.HasNil
}
