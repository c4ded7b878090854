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

package builtins

import (
	"testing"

	"github.com/tabulua/tabulua/registry"
)

func TestRegisterSeedsCoreHierarchy(t *testing.T) {
	r := Register(registry.New())

	for _, name := range []string{
		"raw", "nil", "true", "boolean", "number", "string", "table",
		"integer", "long", "float", "byte", "ubyte", "short", "ushort", "int", "uint",
		"ascii", "asciitext", "asciimarkdown", "text", "markdown", "comment",
		"identifier", "name", "version", "cmp_version", "http", "type", "type_spec",
		"regex", "hexbytes", "base64bytes", "percent", "ratio", "any", "package_id", "super_type",
	} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("built-in %q was not registered", name)
		}
	}
}

func TestBuiltinExtendsChains(t *testing.T) {
	r := Register(registry.New())

	cases := []struct{ a, b string }{
		{"byte", "integer"},
		{"byte", "number"},
		{"byte", "raw"},
		{"ubyte", "raw"},
		{"identifier", "string"},
		{"markdown", "text"},
		{"percent", "number"},
	}
	for _, c := range cases {
		if !r.ExtendsOrRestrict(c.a, c.b) {
			t.Errorf("ExtendsOrRestrict(%q, %q) = false, want true", c.a, c.b)
		}
	}
}

func TestAnyIsTwoFieldRecord(t *testing.T) {
	r := Register(registry.New())
	fields, ok := r.FieldsOf("any")
	if !ok || len(fields) != 2 {
		t.Fatalf("FieldsOf(any) = %+v, ok=%v, want 2 fields", fields, ok)
	}
}

func TestRatioIsMapOfNameToPercent(t *testing.T) {
	r := Register(registry.New())
	key, val, ok := r.MapKeyValueTypes("ratio")
	if !ok || key.Name != "name" || val.Name != "percent" {
		t.Fatalf("MapKeyValueTypes(ratio) = (%v, %v), ok=%v", key, val, ok)
	}
}
