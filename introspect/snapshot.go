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

// Package introspect exports a registry's type table as the schema
// snapshot spec §6.2 defines, the way encoding/openapi exported a CUE
// value's schema for the teacher: walking the registered type graph and
// emitting one descriptor per type rather than executing anything.
package introspect

import (
	"sort"

	tabast "github.com/tabulua/tabulua/ast"
	"github.com/tabulua/tabulua/kind"
	"github.com/tabulua/tabulua/registry"
)

// Descriptor is one entry of a schema snapshot: spec §6.2's
// `{name, kind, parent?, definition_string, constraints?, enum_labels?,
// record_fields?, tuple_types?, tag_members?}` shape.
type Descriptor struct {
	Name             string
	Kind             string
	Parent           string `json:"parent,omitempty" yaml:"parent,omitempty"`
	DefinitionString string
	Constraints      *ConstraintSummary `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	EnumLabels       []string           `json:"enum_labels,omitempty" yaml:"enum_labels,omitempty"`
	RecordFields     []FieldSummary     `json:"record_fields,omitempty" yaml:"record_fields,omitempty"`
	TupleTypes       []string           `json:"tuple_types,omitempty" yaml:"tuple_types,omitempty"`
	TagMembers       []string           `json:"tag_members,omitempty" yaml:"tag_members,omitempty"`
}

// ConstraintSummary mirrors [registry.Constraints] in the plain,
// export-friendly shape a snapshot consumer (the schema command, a
// downstream tool) can serialize directly.
type ConstraintSummary struct {
	Min      string   `json:"min,omitempty" yaml:"min,omitempty"`
	Max      string   `json:"max,omitempty" yaml:"max,omitempty"`
	MinLen   *int     `json:"min_len,omitempty" yaml:"min_len,omitempty"`
	MaxLen   *int     `json:"max_len,omitempty" yaml:"max_len,omitempty"`
	Pattern  string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Values   []string `json:"values,omitempty" yaml:"values,omitempty"`
	Validate string   `json:"validate,omitempty" yaml:"validate,omitempty"`
	Members  []string `json:"members,omitempty" yaml:"members,omitempty"`
}

// FieldSummary is one record field of a Descriptor's RecordFields.
type FieldSummary struct {
	Name     string
	Type     string
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Snapshot exports every type named by names (in the order given) as a
// Descriptor. Callers typically pass [registry.Registry.Names] for a
// full-package schema export (spec §6.2's `Introspect` operation).
func Snapshot(r *registry.Registry, names []string) []Descriptor {
	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		d, ok := describe(r, name)
		if !ok {
			continue
		}
		out = append(out, d)
	}
	return out
}

func describe(r *registry.Registry, name string) (Descriptor, bool) {
	e, ok := r.Lookup(name)
	if !ok {
		return Descriptor{}, false
	}

	d := Descriptor{
		Name:             name,
		Kind:             e.Kind.String(),
		Parent:           e.Parent,
		DefinitionString: definitionString(r, e),
	}

	if c := constraintSummary(e); c != nil {
		d.Constraints = c
	}

	if labels, ok := r.EnumLabels(name); ok {
		d.EnumLabels = labels
	}

	if fields, ok := r.FieldsOf(name); ok {
		d.RecordFields = make([]FieldSummary, len(fields))
		for i, f := range fields {
			d.RecordFields[i] = FieldSummary{Name: f.Name, Type: tabast.Print(f.Type), Optional: f.Optional}
		}
	}

	if elems, ok := r.TupleLenAndTypes(name); ok {
		d.TupleTypes = make([]string, len(elems))
		for i, t := range elems {
			d.TupleTypes[i] = tabast.Print(t)
		}
	}

	if len(e.Con.Members) > 0 {
		members := append([]string(nil), e.Con.Members...)
		sort.Strings(members)
		d.TagMembers = members
	}

	return d, true
}

// definitionString re-derives the canonical type-spec text for e
// (supplemented feature: a definition_string is regenerated from the
// registry entry's own AST rather than the verbatim source text, so it
// stays stable across re-registration and tag-member merges).
func definitionString(r *registry.Registry, e *registry.Entry) string {
	if e.Decl != nil {
		return tabast.Print(e.Decl)
	}
	if e.Parent != "" {
		return e.Parent
	}
	return e.Name
}

func constraintSummary(e *registry.Entry) *ConstraintSummary {
	c := e.Con
	if c.Min == nil && c.Max == nil && c.MinLen == nil && c.MaxLen == nil &&
		c.Pattern == nil && len(c.Values) == 0 && c.Validate == "" && len(c.Members) == 0 {
		return nil
	}
	s := &ConstraintSummary{Validate: c.Validate}
	if c.Min != nil {
		s.Min = c.Min.String()
	}
	if c.Max != nil {
		s.Max = c.Max.String()
	}
	s.MinLen = c.MinLen
	s.MaxLen = c.MaxLen
	if c.Pattern != nil {
		s.Pattern = c.Pattern.String()
	}
	s.Values = c.Values
	s.Members = c.Members
	return s
}

// IsNeverTable re-exposes [kind.Kind.IsNeverTable] for a named type,
// spec §4.3's introspection surface entry of the same name.
func IsNeverTable(r *registry.Registry, name string) bool {
	k := r.Kind(name)
	return k != kind.Invalid && k.IsNeverTable()
}
