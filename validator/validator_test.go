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

package validator

import (
	"testing"

	"github.com/tabulua/tabulua/builtins"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/row"
	"github.com/tabulua/tabulua/sandbox"
)

func buildFile(t *testing.T) (*registry.Registry, *row.File) {
	t.Helper()
	sink := errors.NewSink()
	r := builtins.Register(registry.New())
	header := []string{"name:string", "damage:integer"}
	data := [][]string{{"sword", "5"}, {"axe", "8"}}
	f, ok := row.BuildFile(sink, r, "items.tsv", header, data, 2, "")
	if !ok {
		t.Fatalf("build failed: %v", sink.Reports())
	}
	return r, f
}

func TestRowValidatorPassesAndFails(t *testing.T) {
	_, f := buildFile(t)
	sink := errors.NewSink()
	ctx := map[string]sandbox.Value{}
	ok := RunRow(sink, []Validator{{Expr: "self.damage > 0"}}, f.Rows[0], 0, f.Source, ctx)
	if !ok {
		t.Errorf("expected row validator to pass: %v", sink.Reports())
	}

	sink = errors.NewSink()
	ok = RunRow(sink, []Validator{{Expr: "self.damage > 100"}}, f.Rows[0], 0, f.Source, ctx)
	if ok {
		t.Errorf("expected row validator to fail")
	}
}

func TestWarnLevelNeverBlocks(t *testing.T) {
	_, f := buildFile(t)
	sink := errors.NewSink()
	ctx := map[string]sandbox.Value{}
	ok := RunRow(sink, []Validator{{Expr: "self.damage > 100", Level: LevelWarn}}, f.Rows[0], 0, f.Source, ctx)
	if !ok {
		t.Errorf("warn-level validator should not block acceptance")
	}
	if sink.Warnings() != 1 {
		t.Errorf("expected 1 warning, got %d", sink.Warnings())
	}
}

func TestFileValidatorSeesAllRows(t *testing.T) {
	_, f := buildFile(t)
	sink := errors.NewSink()
	ctx := map[string]sandbox.Value{}
	ok := RunFile(sink, []Validator{{Expr: "count == 2"}}, f, ctx, nil)
	if !ok {
		t.Errorf("expected file validator to pass: %v", sink.Reports())
	}
}

func TestTagHelpers(t *testing.T) {
	r := builtins.Register(registry.New())
	helpers := TagHelpers(r)
	if _, ok := helpers["isMemberOfTag"]; !ok {
		t.Errorf("expected isMemberOfTag helper")
	}
	if _, ok := helpers["listMembersOfTag"]; !ok {
		t.Errorf("expected listMembersOfTag helper")
	}
}
