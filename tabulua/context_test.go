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

package tabulua

import (
	"testing"

	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/join"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/sandbox"
	"github.com/tabulua/tabulua/validator"
)

func TestRegisterTypeThenBuildFileAndValidate(t *testing.T) {
	ctx := New()
	sink := errors.NewSink()

	if _, ok := ctx.RegisterType(sink, "types.yaml", 1, "rarity", "string", registry.Constraints{}, nil); !ok {
		t.Fatalf("register rarity: %v", sink.Reports())
	}

	f, ok := ctx.BuildFile(sink, "items.tsv",
		[]string{"name:string", "damage:integer"},
		[][]string{{"sword", "5"}, {"axe", "8"}}, 2, "")
	if !ok {
		t.Fatalf("build file: %v", sink.Reports())
	}

	if !ctx.RunFileValidators(sink, []validator.Validator{{Expr: "count == 2"}}, f, map[string]sandbox.Value{}) {
		t.Errorf("expected file validator to pass: %v", sink.Reports())
	}
}

func TestIntrospectListsBuiltins(t *testing.T) {
	ctx := New()
	descs := ctx.Introspect([]string{"byte"})
	if len(descs) != 1 || descs[0].Name != "byte" {
		t.Fatalf("expected byte descriptor, got %+v", descs)
	}
}

func TestJoinThroughFacade(t *testing.T) {
	ctx := New()
	sink := errors.NewSink()

	primary, ok := ctx.BuildFile(sink, "items.tsv", []string{"name:string"}, [][]string{{"sword"}}, 2, "")
	if !ok {
		t.Fatalf("primary: %v", sink.Reports())
	}
	secondary, ok := ctx.BuildFile(sink, "flavor.tsv", []string{"name:string", "flavor:text"}, [][]string{{"sword", "Sharp."}}, 2, "")
	if !ok {
		t.Fatalf("secondary: %v", sink.Reports())
	}
	if !ctx.Join(sink, primary, secondary, join.Spec{}) {
		t.Fatalf("join: %v", sink.Reports())
	}
}
