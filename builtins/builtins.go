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

// Package builtins registers the predeclared type table of spec §4.4 into
// a fresh [registry.Registry], the same role internal/core/adt's
// predeclared-identifier table plays for CUE's own built-in kinds
// (boolean, number, string, and so on), seeded once before any user
// package's custom types are registered.
package builtins

import (
	"regexp"

	"github.com/cockroachdb/apd/v3"
	tabast "github.com/tabulua/tabulua/ast"
	"github.com/tabulua/tabulua/kind"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/token"
)

var (
	identifierPattern  = regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*$`)
	namePattern        = regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*(\.[_A-Za-z][_A-Za-z0-9]*)*$`)
	versionPattern     = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	cmpVersionPattern  = regexp.MustCompile(`^(<|<=|>|>=|=)\d+\.\d+\.\d+$`)
	hexbytesPattern    = regexp.MustCompile(`^([0-9A-Fa-f]{2})*$`)
	base64Pattern      = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)
)

func decimal(n int64) *apd.Decimal {
	d := apd.New(n, 0)
	return d
}

func rangeCon(min, max int64) registry.Constraints {
	return registry.Constraints{Min: decimal(min), Max: decimal(max)}
}

func patternCon(p *regexp.Regexp) registry.Constraints {
	return registry.Constraints{Pattern: p}
}

// Register seeds r with every built-in type spec §4.4 names. It must run
// before any custom-type manifest or column header is processed, since
// every later registration resolves its parent against this table.
func Register(r *registry.Registry) *registry.Registry {
	pos := token.NoPos

	raw := r.RegisterBuiltin("raw", "", registry.Constraints{}, nil)
	raw.Kind = kind.Raw

	nilType := r.RegisterBuiltin("nil", "raw", registry.Constraints{}, nil)
	nilType.Kind = kind.Nil

	trueType := r.RegisterBuiltin("true", "raw", registry.Constraints{}, nil)
	trueType.Kind = kind.True

	boolean := r.RegisterBuiltin("boolean", "raw", registry.Constraints{}, nil)
	boolean.Kind = kind.Bool

	number := r.RegisterBuiltin("number", "raw", registry.Constraints{}, nil)
	number.Kind = kind.Number

	str := r.RegisterBuiltin("string", "raw", registry.Constraints{}, nil)
	str.Kind = kind.String

	r.RegisterBuiltin("table", "raw", registry.Constraints{}, &tabast.TypeExpr{Kind: tabast.TableExpr})

	// 64-bit-safe integer: ±2^53, the IEEE-754 double-exact range (spec §8).
	integer := r.RegisterBuiltin("integer", "number", rangeCon(-(1<<53), 1<<53), nil)
	integer.Kind = kind.Int

	long := r.RegisterBuiltin("long", "number", registry.Constraints{}, nil)
	long.Kind = kind.Int

	float := r.RegisterBuiltin("float", "number", registry.Constraints{}, nil)
	float.Kind = kind.Float

	r.RegisterBuiltin("byte", "integer", rangeCon(-128, 127), nil)
	r.RegisterBuiltin("ubyte", "integer", rangeCon(0, 255), nil)
	r.RegisterBuiltin("short", "integer", rangeCon(-32768, 32767), nil)
	r.RegisterBuiltin("ushort", "integer", rangeCon(0, 65535), nil)
	r.RegisterBuiltin("int", "integer", rangeCon(-2147483648, 2147483647), nil)
	r.RegisterBuiltin("uint", "integer", rangeCon(0, 4294967295), nil)

	// String family. These are registered without constraints; the parser
	// factory (package lang) carries the actual escape, casing, and
	// round-trip rules spec §4.4 describes per type.
	r.RegisterBuiltin("ascii", "string", registry.Constraints{}, nil)
	r.RegisterBuiltin("asciitext", "ascii", registry.Constraints{}, nil)
	r.RegisterBuiltin("asciimarkdown", "ascii", registry.Constraints{}, nil)
	r.RegisterBuiltin("text", "string", registry.Constraints{}, nil)
	r.RegisterBuiltin("markdown", "text", registry.Constraints{}, nil)
	r.RegisterBuiltin("comment", "text", registry.Constraints{}, nil)
	r.RegisterBuiltin("identifier", "string", patternCon(identifierPattern), nil)
	r.RegisterBuiltin("name", "string", patternCon(namePattern), nil)
	r.RegisterBuiltin("version", "string", patternCon(versionPattern), nil)
	r.RegisterBuiltin("cmp_version", "string", patternCon(cmpVersionPattern), nil)
	r.RegisterBuiltin("http", "string", registry.Constraints{}, nil)
	r.RegisterBuiltin("type", "string", registry.Constraints{}, nil)
	r.RegisterBuiltin("type_spec", "string", registry.Constraints{}, nil)
	r.RegisterBuiltin("regex", "string", registry.Constraints{}, nil)
	r.RegisterBuiltin("hexbytes", "raw", patternCon(hexbytesPattern), nil)
	r.RegisterBuiltin("base64bytes", "raw", patternCon(base64Pattern), nil)

	// percent/ratio: percent yields a plain number (0.5 for "50%"), so it
	// registers as a child of number; ratio is a map<name,percent> whose
	// declared shape the parser factory cross-checks for the 1.0 tolerance
	// sum invariant (spec §8) at parse time, not at registration time.
	r.RegisterBuiltin("percent", "number", registry.Constraints{}, nil)
	r.RegisterBuiltin("ratio", "", registry.Constraints{}, &tabast.TypeExpr{
		Kind:   tabast.MapExpr,
		Pos:    pos,
		MapKey: tabast.Alias(pos, "name"),
		Elem:   tabast.Alias(pos, "percent"),
	})

	// any = {type, value} where value's runtime kind must match the named
	// type (spec §4.4): a two-field record the parser factory validates
	// with a custom cross-field check, the same way self-ref columns are
	// validated against a sibling's declared type.
	r.RegisterBuiltin("any", "", registry.Constraints{}, &tabast.TypeExpr{
		Kind: tabast.RecordExpr,
		Pos:  pos,
		Fields: []tabast.Field{
			{Name: "type", Type: tabast.Alias(pos, "type")},
			{Name: "value", Type: tabast.Alias(pos, "raw")},
		},
	})

	r.RegisterBuiltin("package_id", "name", registry.Constraints{}, nil)

	r.RegisterBuiltin("super_type", "", registry.Constraints{}, tabast.NewUnion(pos, []*tabast.TypeExpr{
		tabast.Alias(pos, "type_spec"),
		tabast.Primitive(pos, "nil"),
	}))

	return r
}
