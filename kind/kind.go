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

// Package kind classifies registered TabuLua types into the structural
// families spec §3 enumerates for a registered type's "kind" field.
package kind

// A Kind is a bitmask over structural families of registered types,
// following the shape of CUE's own Kind (cue/types.go): a handful of base
// bits plus derived masks such as Number = Int|Float. Unlike CUE, TabuLua
// kinds are per-registry-entry classifications, not value-level bits -
// every registered type has exactly one Kind, computed once at
// registration time from its parent's Kind and its own declaration form.
type Kind uint32

const (
	Invalid Kind = 0

	Primitive Kind = 1 << iota
	Alias
	Int
	Float
	String
	Bool
	Nil
	True
	Enum
	Record
	Tuple
	Array
	Map
	Union
	Table
	ExtendsRecord
	ExtendsTuple
	Ancestor
	Tag
	Raw
	SelfRef

	// Number is the parent kind of Int and Float, matching the registered
	// built-in "number" (spec §4.4).
	Number = Int | Float
)

var names = map[Kind]string{
	Invalid:       "invalid",
	Primitive:     "primitive",
	Alias:         "alias",
	Int:           "int",
	Float:         "float",
	String:        "string",
	Bool:          "bool",
	Nil:           "nil",
	True:          "true",
	Enum:          "enum",
	Record:        "record",
	Tuple:         "tuple",
	Array:         "array",
	Map:           "map",
	Union:         "union",
	Table:         "table",
	ExtendsRecord: "extends-record",
	ExtendsTuple:  "extends-tuple",
	Ancestor:      "ancestor",
	Tag:           "tag",
	Raw:           "raw",
	SelfRef:       "self-ref",
}

// String renders the primary name of a (non-composite) kind, or "number"
// for the Number alias, falling back to "unknown" for unrecognized bits.
func (k Kind) String() string {
	if k == Number {
		return "number"
	}
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown"
}

// Is reports whether k has every bit of other set.
func (k Kind) Is(other Kind) bool { return k&other == other }

// IsNumeric reports whether k is Int, Float, or the Number alias.
func (k Kind) IsNumeric() bool { return k&Number != 0 }

// IsContainer reports whether values of this kind hold other registered
// values (record, tuple, array, map, the two extends-forms).
func (k Kind) IsContainer() bool {
	return k.Is(Record) || k.Is(Tuple) || k.Is(Array) || k.Is(Map) ||
		k.Is(ExtendsRecord) || k.Is(ExtendsTuple)
}

// IsNeverTable reports whether a value of this kind can never be rendered
// as a bare `{}` table cell — i.e. every container kind except the open
// Table kind itself, matching introspect's isNeverTable surface (spec
// §4.3).
func (k Kind) IsNeverTable() bool {
	return k != Table && (k.IsContainer() || k.Is(Enum) || k.Is(Union))
}
