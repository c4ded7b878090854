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

package row

import (
	"testing"

	"github.com/tabulua/tabulua/builtins"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/registry"
)

func TestBuildFileParsesRowsAndPublishesWholeRow(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	header := []string{"name:string", "damage:integer:0"}
	data := [][]string{
		{"sword", "5"},
		{"shield", ""},
	}
	f, ok := BuildFile(sink, r, "items.tsv", header, data, 2, "")
	if !ok {
		t.Fatalf("build failed: %v", sink.Reports())
	}
	if len(f.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(f.Rows))
	}
	if len(f.Published) != 2 {
		t.Errorf("expected 2 published entries, got %d", len(f.Published))
	}
}

func TestBuildFileRejectsDuplicatePrimaryKey(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	header := []string{"name:string", "damage:integer"}
	data := [][]string{
		{"sword", "5"},
		{"sword", "6"},
	}
	_, ok := BuildFile(sink, r, "items.tsv", header, data, 2, "")
	if ok {
		t.Errorf("expected duplicate primary key to fail")
	}
}

func TestBuildFileEvaluatesCellLevelExpression(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	header := []string{"name:string", "damage:integer"}
	data := [][]string{{"sword", "=2*3"}}
	f, ok := BuildFile(sink, r, "items.tsv", header, data, 2, "")
	if !ok {
		t.Fatalf("build failed: %v", sink.Reports())
	}
	v, found := f.Rows[0].Get("damage")
	if n, _ := v.AsFloat64(); !found || n != 6 {
		t.Errorf("expected damage=6 from cell expression, got %+v found=%v", v, found)
	}
}

func TestBuildFileOrdersExpressionsByDependencyNotHeaderOrder(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	header := []string{"a:integer:=self.b", "b:integer:=self.c", "c:integer:1"}
	data := [][]string{{"", "", ""}}
	f, ok := BuildFile(sink, r, "items.tsv", header, data, 2, "")
	if !ok {
		t.Fatalf("build failed: %v", sink.Reports())
	}
	a, _ := f.Rows[0].Get("a")
	b, _ := f.Rows[0].Get("b")
	c, _ := f.Rows[0].Get("c")
	af, _ := a.AsFloat64()
	bf, _ := b.AsFloat64()
	cf, _ := c.AsFloat64()
	if cf != 1 || bf != 1 || af != 1 {
		t.Errorf("expected a=b=c=1 via dependency order, got a=%+v b=%+v c=%+v", a, b, c)
	}
}

func TestBuildFileRejectsExpressionDependencyCycle(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	header := []string{"a:integer:=self.b", "b:integer:=self.a"}
	data := [][]string{{"", ""}}
	if _, ok := BuildFile(sink, r, "items.tsv", header, data, 2, ""); ok {
		t.Errorf("expected a cycle between a and b to fail")
	}
}

func TestBuildFileSelfIdxIsRowIndexNotLineNumber(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	header := []string{"name:string", "idx:integer:=self.__idx"}
	data := [][]string{{"sword", ""}, {"axe", ""}}
	f, ok := BuildFile(sink, r, "items.tsv", header, data, 7, "")
	if !ok {
		t.Fatalf("build failed: %v", sink.Reports())
	}
	first, _ := f.Rows[0].Get("idx")
	second, _ := f.Rows[1].Get("idx")
	ff, _ := first.AsFloat64()
	sf, _ := second.AsFloat64()
	if ff != 1 || sf != 2 {
		t.Errorf("expected self.__idx 1 then 2 regardless of source line, got %+v then %+v", first, second)
	}
}

func TestBuildFileExplodedTuple(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	header := []string{"name:string", "range._1:integer", "range._2:integer"}
	data := [][]string{{"bow", "5", "10"}}
	f, ok := BuildFile(sink, r, "items.tsv", header, data, 2, "")
	if !ok {
		t.Fatalf("build failed: %v", sink.Reports())
	}
	v, found := f.Rows[0].Get("range")
	if !found || len(v.Tuple) != 2 {
		t.Errorf("expected assembled range tuple, got %+v found=%v", v, found)
	}
}
