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

// Package value defines the runtime sum type every compiled parser
// (package lang) produces: a [Value] is the "parsed" half of spec §3's
// ParsedCell, the tagged-variant representation design note §9
// prescribes ("Use a tagged-variant for ParsedValue so exporters can
// match over kind").
package value

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/tabulua/tabulua/kind"
)

// A Value is a parsed cell value. Exactly the fields matching Kind are
// meaningful. Numbers are stored as [apd.Decimal] rather than float64/int64
// so that percent/ratio arithmetic (spec §4.4, §8) and integer-range
// checks are exact instead of accumulating binary floating-point error -
// the same reason CUE backs its own arbitrary-precision number kind with
// apd.
type Value struct {
	Kind kind.Kind

	Bool bool
	Num  apd.Decimal
	Str  string // string family, enum label, identifier/name/version/type text
	Byte []byte // decoded hexbytes/base64bytes payload

	List  []Value // array elements, in order
	Tuple []Value // tuple elements, in declared position order

	// Record holds record/map entries. Keys preserves insertion order
	// (spec §9: "records as insertion-ordered name-keyed maps"); Fields
	// is the key->Value lookup.
	Keys   []string
	Fields map[string]Value

	// TypeRef carries the named registered type (for `type`/`type_spec`
	// values, or the resolved type of a self-ref/{extends,T} column).
	TypeRef string
}

// Nil is the canonical nil value.
var Nil = Value{Kind: kind.Nil}

func NewBool(b bool) Value { return Value{Kind: kind.Bool, Bool: b} }

func NewInt(n int64) Value {
	v := Value{Kind: kind.Int}
	v.Num.SetInt64(n)
	return v
}

func NewDecimal(kindOf kind.Kind, d apd.Decimal) Value {
	return Value{Kind: kindOf, Num: d}
}

func NewString(s string) Value { return Value{Kind: kind.String, Str: s} }

func NewEnum(label string) Value { return Value{Kind: kind.Enum, Str: label} }

func NewBytes(b []byte) Value { return Value{Kind: kind.Raw, Byte: b} }

func NewArray(elems []Value) Value { return Value{Kind: kind.Array, List: elems} }

func NewTuple(elems []Value) Value { return Value{Kind: kind.Tuple, Tuple: elems} }

// NewRecord builds a record/map value preserving the given key order.
func NewRecord(k kind.Kind, keys []string, fields map[string]Value) Value {
	return Value{Kind: k, Keys: keys, Fields: fields}
}

// IsNil reports whether v is the nil value.
func (v Value) IsNil() bool { return v.Kind == kind.Nil }

// Get looks up a record/map field by name.
func (v Value) Get(name string) (Value, bool) {
	if v.Fields == nil {
		return Value{}, false
	}
	f, ok := v.Fields[name]
	return f, ok
}

// Index returns the 1-based positional element of a tuple or array.
func (v Value) Index(n int) (Value, bool) {
	var list []Value
	switch v.Kind {
	case kind.Tuple:
		list = v.Tuple
	case kind.Array:
		list = v.List
	default:
		return Value{}, false
	}
	if n < 1 || n > len(list) {
		return Value{}, false
	}
	return list[n-1], true
}

// CanonicalKey returns a string that is equal for two Values that spec §8
// considers equal, used for primary-key uniqueness checks and set/map
// deduplication. It is not meant for display.
func (v Value) CanonicalKey() string {
	switch v.Kind {
	case kind.Nil:
		return "nil"
	case kind.Bool:
		if v.Bool {
			return "b:true"
		}
		return "b:false"
	case kind.Int, kind.Float:
		return "n:" + v.Num.Text('g')
	case kind.String, kind.Enum:
		return "s:" + v.Str
	case kind.Raw:
		return "x:" + string(v.Byte)
	case kind.Array, kind.Tuple:
		list := v.List
		if v.Kind == kind.Tuple {
			list = v.Tuple
		}
		parts := make([]string, len(list))
		for i, e := range list {
			parts[i] = e.CanonicalKey()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case kind.Record, kind.Map:
		keys := append([]string(nil), v.Keys...)
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%s", k, v.Fields[k].CanonicalKey())
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// AsFloat64 converts a numeric Value to float64 for use by sandbox
// arithmetic and validator helpers (sum/avg/min/max), which operate at
// float64 precision even though cell parsing itself keeps apd.Decimal
// exactness for range and ratio checks.
func (v Value) AsFloat64() (float64, bool) {
	if v.Kind != kind.Int && v.Kind != kind.Float {
		return 0, false
	}
	f, err := v.Num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}
