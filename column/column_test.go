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

package column

import (
	"testing"

	"github.com/tabulua/tabulua/builtins"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/registry"
)

func TestParseHeaderSplitsOnFirstTwoColons(t *testing.T) {
	h, ok := ParseHeader("damage:integer:10:not part of default")
	if !ok {
		t.Fatal("expected header to parse")
	}
	if h.Name != "damage" || h.TypeSpec != "integer" || h.Default != "10:not part of default" {
		t.Errorf("got %+v", h)
	}
}

func TestParseHeaderExprDefault(t *testing.T) {
	h, ok := ParseHeader("total:integer:=a+b")
	if !ok {
		t.Fatal("expected header to parse")
	}
	if !h.IsExpr || h.Default != "a+b" {
		t.Errorf("got %+v", h)
	}
}

func TestParseHeaderNoDefault(t *testing.T) {
	h, ok := ParseHeader("name:string")
	if !ok {
		t.Fatal("expected header to parse")
	}
	if h.HasDefault {
		t.Errorf("expected no default, got %+v", h)
	}
}

func TestBuildColumnsRejectsDuplicateNames(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	_, _, ok := BuildColumns(sink, r, "t.tsv", 1, []string{"name:string", "name:integer"})
	if ok {
		t.Errorf("expected duplicate column name to fail")
	}
}

func TestBuildColumnsSimple(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	cols, _, ok := BuildColumns(sink, r, "t.tsv", 1, []string{"name:string", "damage:integer"})
	if !ok {
		t.Fatalf("build failed: %v", sink.Reports())
	}
	if len(cols) != 2 || cols[0].Header.Name != "name" || !cols[0].IsPrimaryKey() {
		t.Errorf("unexpected columns: %+v", cols)
	}
}

func TestSplitPathDotted(t *testing.T) {
	p := SplitPath("item.name")
	if p.Root != "item" || len(p.Steps) != 1 || p.Steps[0].Name != "name" {
		t.Errorf("got %+v", p)
	}
}

func TestGroupExplodedDetectsTuple(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	cols, _, ok := BuildColumns(sink, r, "t.tsv", 1, []string{"id:string", "range._1:integer", "range._2:integer"})
	if !ok {
		t.Fatalf("build failed: %v", sink.Reports())
	}
	groups := GroupExploded(cols)
	var rangeGroup *Group
	for _, g := range groups {
		if g.Root == "range" {
			rangeGroup = g
		}
	}
	if rangeGroup == nil || !rangeGroup.IsTuple() {
		t.Errorf("expected range group to be detected as a tuple: %+v", rangeGroup)
	}
}
