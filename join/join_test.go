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

package join

import (
	"testing"

	"github.com/tabulua/tabulua/builtins"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/row"
)

func TestLeftJoinPreservesAllPrimaryRows(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())

	primary, ok := row.BuildFile(sink, r, "items.tsv",
		[]string{"name:string", "damage:integer"},
		[][]string{{"sword", "5"}, {"shield", "0"}}, 2, "")
	if !ok {
		t.Fatalf("primary build failed: %v", sink.Reports())
	}

	secondary, ok := row.BuildFile(sink, r, "item_flavor.tsv",
		[]string{"name:string", "flavor:text"},
		[][]string{{"sword", "A sharp blade."}}, 2, "")
	if !ok {
		t.Fatalf("secondary build failed: %v", sink.Reports())
	}

	jr := NewRegistry()
	ok = jr.Join(sink, primary, secondary, Spec{JoinInto: "items.tsv"})
	if !ok {
		t.Fatalf("expected join to succeed since every secondary row matches; got reports: %v", sink.Reports())
	}
}

func TestLeftJoinRejectsDuplicateColumn(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())

	primary, _ := row.BuildFile(sink, r, "items.tsv",
		[]string{"name:string", "damage:integer"},
		[][]string{{"sword", "5"}}, 2, "")

	secondary, _ := row.BuildFile(sink, r, "item_damage2.tsv",
		[]string{"name:string", "damage:integer"},
		[][]string{{"sword", "5"}}, 2, "")

	jr := NewRegistry()
	if jr.Join(sink, primary, secondary, Spec{}) {
		t.Errorf("expected duplicate column name to fail the join")
	}
}

func TestChainedJoinRejected(t *testing.T) {
	sink := errors.NewSink()
	r := builtins.Register(registry.New())

	a, _ := row.BuildFile(sink, r, "a.tsv", []string{"name:string"}, [][]string{{"x"}}, 2, "")
	b, _ := row.BuildFile(sink, r, "b.tsv", []string{"name:string", "extra:string"}, [][]string{{"x", "y"}}, 2, "")
	c, _ := row.BuildFile(sink, r, "c.tsv", []string{"name:string", "more:string"}, [][]string{{"x", "z"}}, 2, "")

	jr := NewRegistry()
	if !jr.Join(sink, a, b, Spec{}) {
		t.Fatalf("first join should succeed: %v", sink.Reports())
	}
	if jr.Join(sink, b, c, Spec{}) {
		t.Errorf("expected chained join (into an already-secondary file) to be rejected")
	}
}
