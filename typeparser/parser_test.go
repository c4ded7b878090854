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

package typeparser

import (
	"testing"

	tabast "github.com/tabulua/tabulua/ast"
	"github.com/tabulua/tabulua/errors"
)

func mustParse(t *testing.T, spec string) *tabast.TypeExpr {
	t.Helper()
	sink := errors.NewSink()
	typ, ok := Parse(sink, "test.tsv", 1, 1, spec)
	if !ok {
		t.Fatalf("Parse(%q) failed: %v", spec, sink.Reports())
	}
	return typ
}

func TestParsePrimitiveAndAlias(t *testing.T) {
	typ := mustParse(t, "integer")
	if typ.Kind != tabast.AliasExpr || typ.Name != "integer" {
		t.Errorf("Parse(integer) = %+v, want alias(integer)", typ)
	}
}

func TestParseUnion(t *testing.T) {
	typ := mustParse(t, "integer|string|nil")
	if typ.Kind != tabast.UnionExpr {
		t.Fatalf("Kind = %v, want UnionExpr", typ.Kind)
	}
	if len(typ.Alternatives) != 3 {
		t.Fatalf("len(Alternatives) = %d, want 3", len(typ.Alternatives))
	}
	if !typ.HasNil || !typ.HasString {
		t.Errorf("HasNil=%v HasString=%v, want both true", typ.HasNil, typ.HasString)
	}
	if !typ.IsNullable() {
		t.Errorf("IsNullable() = false, want true")
	}
}

func TestParseUnionNilMustBeLast(t *testing.T) {
	sink := errors.NewSink()
	_, ok := Parse(sink, "t.tsv", 1, 1, "nil|integer")
	if ok || sink.Errors() == 0 {
		t.Errorf("expected an error for nil not in last position")
	}
}

func TestParseRecordNeedsTwoFields(t *testing.T) {
	typ := mustParse(t, "{attack:integer,defense:integer}")
	if typ.Kind != tabast.RecordExpr {
		t.Fatalf("Kind = %v, want RecordExpr", typ.Kind)
	}
	if len(typ.Fields) != 2 || typ.Fields[0].Name != "attack" || typ.Fields[1].Name != "defense" {
		t.Errorf("Fields = %+v", typ.Fields)
	}
}

func TestParseSingleColonIsMap(t *testing.T) {
	typ := mustParse(t, "{name:integer}")
	if typ.Kind != tabast.MapExpr {
		t.Fatalf("Kind = %v, want MapExpr (single name:Type is a map, not a 1-field record)", typ.Kind)
	}
	if typ.MapKey.Name != "name" || typ.Elem.Name != "integer" {
		t.Errorf("Map(key=%v, elem=%v)", typ.MapKey, typ.Elem)
	}
}

func TestParseSingleBareIsArray(t *testing.T) {
	typ := mustParse(t, "{integer}")
	if typ.Kind != tabast.ArrayExpr || typ.Elem.Name != "integer" {
		t.Errorf("Parse({integer}) = %+v, want array(integer)", typ)
	}
}

func TestParseTuple(t *testing.T) {
	typ := mustParse(t, "{integer,string,boolean}")
	if typ.Kind != tabast.TupleExpr || len(typ.Elements) != 3 {
		t.Errorf("Parse(tuple) = %+v", typ)
	}
}

func TestParseBareTable(t *testing.T) {
	typ := mustParse(t, "{}")
	if typ.Kind != tabast.TableExpr {
		t.Errorf("Kind = %v, want TableExpr", typ.Kind)
	}
}

func TestParseEnum(t *testing.T) {
	typ := mustParse(t, "{enum:gold|silver|bronze}")
	if typ.Kind != tabast.EnumExpr {
		t.Fatalf("Kind = %v, want EnumExpr", typ.Kind)
	}
	want := []string{"gold", "silver", "bronze"}
	if len(typ.Labels) != len(want) {
		t.Fatalf("Labels = %v", typ.Labels)
	}
	for i, w := range want {
		if typ.Labels[i] != w {
			t.Errorf("Labels[%d] = %q, want %q", i, typ.Labels[i], w)
		}
	}
}

func TestParseExtendsRecord(t *testing.T) {
	typ := mustParse(t, "{extends:Weapon,damage:integer}")
	if typ.Kind != tabast.ExtendsRecordExpr || typ.Parent != "Weapon" {
		t.Fatalf("Parse(extends:) = %+v", typ)
	}
	if len(typ.Fields) != 1 || typ.Fields[0].Name != "damage" {
		t.Errorf("Fields = %+v", typ.Fields)
	}
}

func TestParseAncestorConstraint(t *testing.T) {
	typ := mustParse(t, "{extends,CurrencyType}")
	if typ.Kind != tabast.AncestorConstraintExpr || typ.Name != "CurrencyType" {
		t.Errorf("Parse(extends,T) = %+v", typ)
	}
}

func TestParseExtendsTuple(t *testing.T) {
	typ := mustParse(t, "{extends,Coord,integer}")
	if typ.Kind != tabast.ExtendsTupleExpr || typ.Parent != "Coord" {
		t.Fatalf("Parse(extends-tuple) = %+v", typ)
	}
	if len(typ.Elements) != 1 || typ.Elements[0].Name != "integer" {
		t.Errorf("Elements = %+v", typ.Elements)
	}
}

func TestParseSelfRef(t *testing.T) {
	typ := mustParse(t, "self.type")
	if typ.Kind != tabast.SelfRefExpr || typ.Name != "type" || typ.Index != -1 {
		t.Errorf("Parse(self.type) = %+v", typ)
	}

	typ = mustParse(t, "self._2")
	if typ.Kind != tabast.SelfRefExpr || typ.Index != 2 {
		t.Errorf("Parse(self._2) = %+v", typ)
	}
}

func TestPrintRoundTrip(t *testing.T) {
	specs := []string{
		"integer",
		"integer|string|nil",
		"{attack:integer,defense:integer}",
		"{integer,string}",
		"{name:integer}",
		"{enum:gold|silver}",
		"self.type",
	}
	for _, spec := range specs {
		typ := mustParse(t, spec)
		if got := tabast.Print(typ); got != spec {
			t.Errorf("Print(Parse(%q)) = %q, want %q", spec, got, spec)
		}
	}
}
