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

package lang

import (
	"testing"

	"github.com/tabulua/tabulua/builtins"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/kind"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/typeparser"
)

func newCtx() (*registry.Registry, *errors.Sink) {
	return builtins.Register(registry.New()), errors.NewSink()
}

func parseWith(t *testing.T, spec, raw string) bool {
	t.Helper()
	r, sink := newCtx()
	typ, ok := typeparser.Parse(sink, "t.tsv", 1, 1, spec)
	if !ok {
		t.Fatalf("type-spec %q failed to parse: %v", spec, sink.Reports())
	}
	p := CompileExpr(r, typ)
	ctx := &registry.ParseCtx{Sink: sink, Registry: r, Source: "t.tsv", Line: 1, Column: 1}
	_, _, ok = p(ctx, raw)
	return ok
}

func TestIntegerRange(t *testing.T) {
	if !parseWith(t, "integer", "42") {
		t.Errorf("expected 42 to parse as integer")
	}
	if parseWith(t, "integer", "not a number") {
		t.Errorf("expected non-numeric input to fail")
	}
}

func TestFloatAlwaysHasDecimalPoint(t *testing.T) {
	r, sink := newCtx()
	e, _ := r.Lookup("float")
	p := CompileEntry(r, e)
	ctx := &registry.ParseCtx{Sink: sink, Registry: r, Source: "t.tsv", Line: 1, Column: 1}
	_, reformatted, ok := p(ctx, "5")
	if !ok {
		t.Fatalf("float parse failed: %v", sink.Reports())
	}
	if reformatted != "5.0" {
		t.Errorf("reformatted = %q, want %q", reformatted, "5.0")
	}
}

func TestByteRangeRejectsOutOfBounds(t *testing.T) {
	if !parseWith(t, "byte", "127") {
		t.Errorf("127 should be a valid byte")
	}
	if parseWith(t, "byte", "200") {
		t.Errorf("200 should be out of byte range")
	}
}

func TestUnionTriesAlternativesInOrder(t *testing.T) {
	r, sink := newCtx()
	typ, ok := typeparser.Parse(sink, "t.tsv", 1, 1, "integer|string")
	if !ok {
		t.Fatalf("parse failed: %v", sink.Reports())
	}
	p := CompileExpr(r, typ)
	ctx := &registry.ParseCtx{Sink: sink, Registry: r, Source: "t.tsv", Line: 1, Column: 1}

	v, _, ok := p(ctx, "10")
	if !ok || v.Kind != kind.Int {
		t.Errorf("parse(10) = %+v, ok=%v, want kind.Int", v, ok)
	}
	if sink.Errors() != 0 {
		t.Errorf("sink should be clean after a successful union match, got %v", sink.Reports())
	}

	v, _, ok = p(ctx, "10 kg")
	if !ok || v.Kind != kind.String {
		t.Errorf("parse(\"10 kg\") = %+v, ok=%v, want kind.String", v, ok)
	}
}

func TestRecordParsing(t *testing.T) {
	r, sink := newCtx()
	typ, ok := typeparser.Parse(sink, "t.tsv", 1, 1, "{attack:integer,defense:integer}")
	if !ok {
		t.Fatalf("parse failed: %v", sink.Reports())
	}
	p := CompileExpr(r, typ)
	ctx := &registry.ParseCtx{Sink: sink, Registry: r, Source: "t.tsv", Line: 1, Column: 1}
	v, reformatted, ok := p(ctx, "attack=5,defense=3")
	if !ok {
		t.Fatalf("record parse failed: %v", sink.Reports())
	}
	if f, found := v.Get("attack"); !found || f.Kind != kind.Int {
		t.Errorf("attack field = %+v, found=%v", f, found)
	}
	if reformatted != "attack=5,defense=3" {
		t.Errorf("reformatted = %q", reformatted)
	}
}

func TestPercentParsesPercentAndFraction(t *testing.T) {
	r, sink := newCtx()
	e, _ := r.Lookup("percent")
	p := CompileEntry(r, e)
	ctx := &registry.ParseCtx{Sink: sink, Registry: r, Source: "t.tsv", Line: 1, Column: 1}

	v, _, ok := p(ctx, "50%")
	if !ok {
		t.Fatalf("percent parse failed: %v", sink.Reports())
	}
	f, _ := v.AsFloat64()
	if f != 0.5 {
		t.Errorf("50%% = %v, want 0.5", f)
	}

	v, _, ok = p(ctx, "3/5")
	if !ok {
		t.Fatalf("fraction parse failed: %v", sink.Reports())
	}
	f, _ = v.AsFloat64()
	if f != 0.6 {
		t.Errorf("3/5 = %v, want 0.6", f)
	}
}

func TestRatioMustSumToOne(t *testing.T) {
	r, sink := newCtx()
	e, _ := r.Lookup("ratio")
	p := CompileEntry(r, e)
	ctx := &registry.ParseCtx{Sink: sink, Registry: r, Source: "t.tsv", Line: 1, Column: 1}

	if _, _, ok := p(ctx, "gold=50%,silver=50%"); !ok {
		t.Errorf("gold+silver=100%% should be a valid ratio: %v", sink.Reports())
	}
	if _, _, ok := p(ctx, "gold=50%,silver=25%"); ok {
		t.Errorf("gold+silver=75%% should fail the ratio sum check")
	}
}

func TestHexbytesRoundTrip(t *testing.T) {
	r, sink := newCtx()
	e, _ := r.Lookup("hexbytes")
	p := CompileEntry(r, e)
	ctx := &registry.ParseCtx{Sink: sink, Registry: r, Source: "t.tsv", Line: 1, Column: 1}
	_, reformatted, ok := p(ctx, "deadbeef")
	if !ok || reformatted != "DEADBEEF" {
		t.Errorf("hexbytes(deadbeef) = %q, ok=%v, want DEADBEEF", reformatted, ok)
	}
}

func TestEnumRejectsUnknownLabel(t *testing.T) {
	r, sink := newCtx()
	typ, ok := typeparser.Parse(sink, "t.tsv", 1, 1, "{enum:gold|silver|bronze}")
	if !ok {
		t.Fatalf("parse failed: %v", sink.Reports())
	}
	p := CompileExpr(r, typ)
	ctx := &registry.ParseCtx{Sink: sink, Registry: r, Source: "t.tsv", Line: 1, Column: 1}
	if _, _, ok := p(ctx, "gold"); !ok {
		t.Errorf("gold should be a valid enum label")
	}
	if _, _, ok := p(ctx, "platinum"); ok {
		t.Errorf("platinum should not be a valid enum label")
	}
}
