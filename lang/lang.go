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

// Package lang is the parser factory (spec §4.3): it compiles a registered
// [registry.Entry] or a bare [ast.TypeExpr] into a [registry.Parser] -
// composing member parsers for containers and unions, and producing the
// canonical reformat string alongside the parsed [value.Value]. This plays
// the role internal/core/convert plays for CUE: turning a declarative shape
// into runtime conversion functions, once, so later calls are cheap.
package lang

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	tabast "github.com/tabulua/tabulua/ast"
	"github.com/tabulua/tabulua/kind"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/typeparser"
	"github.com/tabulua/tabulua/value"
)

// CompileEntry returns e's compiled [registry.Parser], compiling and
// caching it first if necessary. Compilation recurses into e's parent
// chain and, for containers, into member entries - each entry is compiled
// at most once per registry (the registry.Entry.Parser field is the
// memoization slot).
func CompileEntry(r *registry.Registry, e *registry.Entry) registry.Parser {
	if e.Parser != nil {
		return e.Parser
	}
	base := compileBody(r, e)
	wrapped := wrapConstraints(r, e, base)
	r.SetParser(e.Name, wrapped)
	return wrapped
}

// CompileExpr compiles a bare (possibly unregistered, inline) [ast.TypeExpr]
// directly, the path the column pipeline uses for a header's type-spec
// before any name is registered for it.
func CompileExpr(r *registry.Registry, t *tabast.TypeExpr) registry.Parser {
	switch t.Kind {
	case tabast.PrimitiveExpr, tabast.AliasExpr:
		e, ok := r.Lookup(t.Name)
		if !ok {
			name := t.Name
			return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
				if r.MarkUnknown(name) {
					ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "unknown type %q", name)
				}
				return value.Value{}, "", false
			}
		}
		return CompileEntry(r, e)
	case tabast.UnionExpr:
		return compileUnion(r, t.Alternatives)
	case tabast.ArrayExpr:
		return compileArray(r, CompileExpr(r, t.Elem))
	case tabast.MapExpr:
		return compileMap(r, CompileExpr(r, t.MapKey), CompileExpr(r, t.Elem), "")
	case tabast.TableExpr:
		return compileTable()
	case tabast.TupleExpr:
		return compileTuple(r, t.Elements)
	case tabast.RecordExpr:
		return compileRecord(r, toFieldParsers(r, t.Fields))
	case tabast.EnumExpr:
		return compileEnum(t.Labels)
	case tabast.AncestorConstraintExpr:
		return compileAncestor(r, t.Name)
	case tabast.SelfRefExpr:
		return errParser("self-ref columns are compiled by package column, not package lang")
	default:
		return errParser(fmt.Sprintf("cannot compile type expression of kind %v", t.Kind))
	}
}

func compileBody(r *registry.Registry, e *registry.Entry) registry.Parser {
	if special, ok := specialScalars[e.Name]; ok {
		return special()
	}

	switch {
	case e.Kind.Is(kind.Record) || e.Kind.Is(kind.ExtendsRecord):
		return compileRecord(r, toFieldParsers(r, e.Fields))
	case e.Kind.Is(kind.Tuple) || e.Kind.Is(kind.ExtendsTuple):
		return compileTuple(r, e.Elems)
	case e.Kind.Is(kind.Enum):
		return compileEnum(e.Labels)
	case e.Kind.Is(kind.Union):
		return compileUnion(r, e.Decl.Alternatives)
	case e.Kind.Is(kind.Array):
		return compileArray(r, CompileExpr(r, e.Decl.Elem))
	case e.Kind.Is(kind.Map):
		return compileMap(r, CompileExpr(r, e.Decl.MapKey), CompileExpr(r, e.Decl.Elem), e.Name)
	case e.Kind.Is(kind.Table):
		return compileTable()
	case e.Kind.Is(kind.Ancestor):
		return compileAncestor(r, e.Decl.Name)
	}

	if e.Parent != "" {
		if pe, ok := r.Lookup(e.Parent); ok {
			return CompileEntry(r, pe)
		}
	}
	return identityString()
}

func toFieldParsers(r *registry.Registry, fields []tabast.Field) []fieldParser {
	out := make([]fieldParser, len(fields))
	for i, f := range fields {
		out[i] = fieldParser{Name: f.Name, Optional: f.Optional, Parse: CompileExpr(r, f.Type)}
	}
	return out
}

func errParser(msg string) registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%s", msg)
		return value.Value{}, "", false
	}
}

func identityString() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		return value.NewString(raw), raw, true
	}
}

// decimalOf parses raw as an exact decimal, reporting a type error into
// ctx on failure.
func decimalOf(ctx *registry.ParseCtx, raw string) (apd.Decimal, bool) {
	var d apd.Decimal
	if _, _, err := d.SetString(strings.TrimSpace(raw)); err != nil {
		ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not a valid number", raw)
		return d, false
	}
	return d, true
}

func isFloatLiteral(raw string) bool {
	return strings.ContainsAny(raw, ".eE")
}

func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

// wrapConstraints layers Entry.Con's narrowing - range, length/pattern,
// enum-subset, tag membership - atop base, the generic last step of
// spec §4.3's registration algorithm ("wrap with the narrower check").
// Expression validators (Con.Validate) are not applied here or by any
// other package: a value is never checked against Con.Validate.
func wrapConstraints(r *registry.Registry, e *registry.Entry, base registry.Parser) registry.Parser {
	con := e.Con
	if con.Min == nil && con.Max == nil && con.MinLen == nil && con.MaxLen == nil &&
		con.Pattern == nil && len(con.Values) == 0 && len(con.Members) == 0 {
		return base
	}
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		v, reformatted, ok := base(ctx, raw)
		if !ok {
			return v, reformatted, false
		}
		if con.Min != nil || con.Max != nil {
			if v.Kind != kind.Int && v.Kind != kind.Float {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q: range constraint requires a numeric value", e.Name)
				return value.Value{}, "", false
			}
			if con.Min != nil && v.Num.Cmp(con.Min) < 0 {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%s: value %s is below minimum %s", e.Name, raw, con.Min.String())
				return value.Value{}, "", false
			}
			if con.Max != nil && v.Num.Cmp(con.Max) > 0 {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%s: value %s is above maximum %s", e.Name, raw, con.Max.String())
				return value.Value{}, "", false
			}
		}
		if con.MinLen != nil || con.MaxLen != nil {
			n := len(v.Str)
			if con.MinLen != nil && n < *con.MinLen {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%s: value too short (min %d)", e.Name, *con.MinLen)
				return value.Value{}, "", false
			}
			if con.MaxLen != nil && n > *con.MaxLen {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%s: value too long (max %d)", e.Name, *con.MaxLen)
				return value.Value{}, "", false
			}
		}
		if con.Pattern != nil && !con.Pattern.MatchString(v.Str) {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%s: %q does not match required pattern", e.Name, raw)
			return value.Value{}, "", false
		}
		if len(con.Values) > 0 {
			allowed := false
			for _, allowedVal := range con.Values {
				if allowedVal == v.Str {
					allowed = true
					break
				}
			}
			if !allowed {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%s: %q is not one of %v", e.Name, v.Str, con.Values)
				return value.Value{}, "", false
			}
		}
		if len(con.Members) > 0 {
			refName := v.Str
			if v.Kind == kind.Enum || v.Kind == kind.String {
				refName = v.Str
			}
			if !r.IsMemberOfTag(refName, e.Name) {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%s: %q is not a member of tag %q", e.Name, raw, e.Name)
				return value.Value{}, "", false
			}
		}
		return v, reformatted, true
	}
}

type fieldParser struct {
	Name     string
	Optional bool
	Parse    registry.Parser
}

// --- scalar leaves ---------------------------------------------------

var specialScalars = map[string]func() registry.Parser{
	"raw":         rawParser,
	"nil":         nilParser,
	"true":        trueParser,
	"boolean":     booleanParser,
	"string":      stringParser,
	"number":      func() registry.Parser { return numberParser(false) },
	"integer":     func() registry.Parser { return numberParser(true) },
	"long":        func() registry.Parser { return numberParser(true) },
	"float":       floatParser,
	"text":        func() registry.Parser { return escapedTextParser() },
	"markdown":    func() registry.Parser { return escapedTextParser() },
	"comment":     func() registry.Parser { return escapedTextParser() },
	"hexbytes":    hexbytesParser,
	"base64bytes": base64bytesParser,
	"percent":     percentParser,
	"type":        typeParser,
	"type_spec":   typeSpecParser,
	"any":         anyParser,
}

func nilParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		if raw != "" {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "expected an empty cell for nil, got %q", raw)
			return value.Value{}, "", false
		}
		return value.Nil, "", true
	}
}

func trueParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		if raw != "true" {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "expected the literal true, got %q", raw)
			return value.Value{}, "", false
		}
		return value.NewBool(true), "true", true
	}
}

func booleanParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		switch strings.ToLower(raw) {
		case "true", "yes", "1":
			return value.NewBool(true), "true", true
		case "false", "no", "0":
			return value.NewBool(false), "false", true
		}
		ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not a boolean", raw)
		return value.Value{}, "", false
	}
}

func stringParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		return value.NewString(raw), raw, true
	}
}

func numberParser(integral bool) registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		d, ok := decimalOf(ctx, raw)
		if !ok {
			return value.Value{}, "", false
		}
		if integral && isFloatLiteral(raw) {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not an integer", raw)
			return value.Value{}, "", false
		}
		k := kind.Int
		if isFloatLiteral(raw) {
			k = kind.Float
		}
		return value.NewDecimal(k, d), trimTrailingZeros(d.Text('f')), true
	}
}

func floatParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		d, ok := decimalOf(ctx, raw)
		if !ok {
			return value.Value{}, "", false
		}
		v := value.NewDecimal(kind.Float, d)
		s := d.Text('f')
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return v, s, true
	}
}

func percentParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		s := strings.TrimSpace(raw)
		var frac apd.Decimal
		switch {
		case strings.HasSuffix(s, "%"):
			d, ok := decimalOf(ctx, strings.TrimSuffix(s, "%"))
			if !ok {
				return value.Value{}, "", false
			}
			hundred := apd.New(100, 0)
			apd.BaseContext.WithPrecision(34).Quo(&frac, &d, hundred)
		case strings.Contains(s, "/"):
			parts := strings.SplitN(s, "/", 2)
			if len(parts) != 2 {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not a valid percent", raw)
				return value.Value{}, "", false
			}
			num, ok1 := decimalOf(ctx, parts[0])
			den, ok2 := decimalOf(ctx, parts[1])
			if !ok1 || !ok2 {
				return value.Value{}, "", false
			}
			apd.BaseContext.WithPrecision(34).Quo(&frac, &num, &den)
		default:
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not a valid percent (want N%% or a/b)", raw)
			return value.Value{}, "", false
		}
		return value.NewDecimal(kind.Float, frac), raw, true
	}
}

func escapedTextParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		unescaped := unescapeText(raw)
		return value.NewString(unescaped), escapeText(unescaped), true
	}
}

// unescapeText/escapeText implement spec §6.3's only three escapes for the
// text family.
func unescapeText(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 't':
				b.WriteByte('\t')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func escapeText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "\t", "\\t", "\n", "\\n")
	return r.Replace(s)
}

func hexbytesParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		if len(raw)%2 != 0 {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q has an odd number of hex digits", raw)
			return value.Value{}, "", false
		}
		b := make([]byte, len(raw)/2)
		for i := 0; i < len(b); i++ {
			hi, ok1 := hexDigit(raw[i*2])
			lo, ok2 := hexDigit(raw[i*2+1])
			if !ok1 || !ok2 {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not valid hex", raw)
				return value.Value{}, "", false
			}
			b[i] = hi<<4 | lo
		}
		return value.NewBytes(b), strings.ToUpper(raw), true
	}
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func base64bytesParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		b, err := base64Decode(raw)
		if err != nil {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not valid base64: %v", raw, err)
			return value.Value{}, "", false
		}
		return value.NewBytes(b), base64Encode(b), true
	}
}

func base64Decode(s string) ([]byte, error) {
	// Minimal RFC 4648 strict decoder: no whitespace, required padding.
	if len(s)%4 != 0 {
		return nil, fmt.Errorf("length %d is not a multiple of 4", len(s))
	}
	var out []byte
	idx := func(c byte) (int, bool) {
		if c == '=' {
			return -1, true
		}
		i := strings.IndexByte(base64Alphabet, c)
		if i < 0 {
			return 0, false
		}
		return i, true
	}
	for i := 0; i < len(s); i += 4 {
		var vals [4]int
		for j := 0; j < 4; j++ {
			v, ok := idx(s[i+j])
			if !ok {
				return nil, fmt.Errorf("invalid character %q", s[i+j])
			}
			vals[j] = v
		}
		last := i+4 == len(s)
		if vals[0] < 0 || vals[1] < 0 || (vals[2] < 0 && vals[3] >= 0) || (!last && vals[3] < 0) {
			return nil, fmt.Errorf("misplaced padding in quantum at offset %d", i)
		}
		out = append(out, byte(vals[0]<<2|vals[1]>>4))
		if vals[2] >= 0 {
			out = append(out, byte((vals[1]&0xF)<<4|vals[2]>>2))
		}
		if vals[3] >= 0 {
			out = append(out, byte((vals[2]&0x3)<<6|vals[3]))
		}
	}
	return out, nil
}

func base64Encode(b []byte) string {
	var out strings.Builder
	for i := 0; i < len(b); i += 3 {
		var chunk [3]byte
		n := copy(chunk[:], b[i:])
		out.WriteByte(base64Alphabet[chunk[0]>>2])
		out.WriteByte(base64Alphabet[(chunk[0]&0x3)<<4|chunk[1]>>4])
		if n > 1 {
			out.WriteByte(base64Alphabet[(chunk[1]&0xF)<<2|chunk[2]>>6])
		} else {
			out.WriteByte('=')
		}
		if n > 2 {
			out.WriteByte(base64Alphabet[chunk[2]&0x3F])
		} else {
			out.WriteByte('=')
		}
	}
	return out.String()
}

func rawParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		if raw == "" {
			return value.Nil, "", true
		}
		switch strings.ToLower(raw) {
		case "true", "yes":
			return value.NewBool(true), "true", true
		case "false", "no":
			return value.NewBool(false), "false", true
		}
		var d apd.Decimal
		if _, _, err := d.SetString(raw); err == nil {
			k := kind.Int
			if isFloatLiteral(raw) {
				k = kind.Float
			}
			return value.NewDecimal(k, d), raw, true
		}
		return value.NewString(raw), raw, true
	}
}

func typeParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		if _, ok := ctx.Registry.Lookup(raw); !ok {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q does not name a registered type", raw)
			return value.Value{}, "", false
		}
		return value.Value{Kind: kind.String, Str: raw, TypeRef: raw}, raw, true
	}
}

func typeSpecParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		t, ok := typeparser.Parse(ctx.Sink, ctx.Source, ctx.Line, ctx.Column, raw)
		if !ok {
			return value.Value{}, "", false
		}
		return value.Value{Kind: kind.String, Str: raw}, tabast.Print(t), true
	}
}

func anyParser() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		// type="T",value=... per the "any" record shape registered by
		// package builtins; the leading field pins the kind, the trailing
		// field is then parsed against T's compiled parser.
		entries, ok := splitRecordEntries(raw)
		if !ok {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not a valid any value", raw)
			return value.Value{}, "", false
		}
		typeName, hasType := entries["type"]
		valRaw, hasValue := entries["value"]
		if !hasType || !hasValue {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "any value requires both type and value fields")
			return value.Value{}, "", false
		}
		te, ok := ctx.Registry.Lookup(strings.Trim(typeName, `"`))
		if !ok {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q does not name a registered type", typeName)
			return value.Value{}, "", false
		}
		parser := CompileEntry(ctx.Registry, te)
		v, reformatted, ok := parser(ctx, valRaw)
		if !ok {
			return value.Value{}, "", false
		}
		rec := map[string]value.Value{"type": value.NewString(te.Name), "value": v}
		return value.NewRecord(kind.Record, []string{"type", "value"}, rec),
			fmt.Sprintf("type=%q,value=%s", te.Name, reformatted), true
	}
}

// splitRecordEntries is a minimal parser for the `key=value,...` cell
// syntax spec §6.3 defines for record/map cells, shared by compileRecord
// and the "any" special case. It does not handle nested containers; field
// values containing "," or "=" must be quoted, matching the string-quoting
// rule spec §6.3 states for record/map cell values.
func splitRecordEntries(raw string) (map[string]string, bool) {
	out := map[string]string{}
	if raw == "" {
		return out, true
	}
	for _, part := range splitTopLevel(raw, ',') {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, false
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out, true
}

// splitTopLevel splits s on sep, honoring double-quoted substrings so a
// quoted string value may itself contain sep.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			cur.WriteByte(c)
		case c == sep && !inQuotes:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	out = append(out, cur.String())
	return out
}

// --- containers --------------------------------------------------------

func compileUnion(r *registry.Registry, alts []*tabast.TypeExpr) registry.Parser {
	parsers := make([]registry.Parser, len(alts))
	for i, a := range alts {
		parsers[i] = CompileExpr(r, a)
	}
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		if raw == "" {
			for _, a := range alts {
				if a.Kind == tabast.PrimitiveExpr && a.Name == "nil" {
					return value.Nil, "", true
				}
			}
		}
		mark := ctx.Sink.Mark()
		bestMsg := ""
		for _, p := range parsers {
			v, reformatted, ok := p(ctx, raw)
			if ok {
				return v, reformatted, true
			}
			if best, found := ctx.Sink.Best(mark); found && bestMsg == "" {
				bestMsg = best.Message
			}
			ctx.Sink.RollbackTo(mark)
		}
		if bestMsg != "" {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q does not match any alternative of the union: %s", raw, bestMsg)
			return value.Value{}, "", false
		}
		ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q does not match any alternative of the union", raw)
		return value.Value{}, "", false
	}
}

func compileArray(r *registry.Registry, elem registry.Parser) registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		if raw == "" {
			return value.NewArray(nil), "", true
		}
		parts := splitTopLevel(raw, ',')
		elems := make([]value.Value, 0, len(parts))
		reformats := make([]string, 0, len(parts))
		for _, p := range parts {
			v, rf, ok := elem(ctx, strings.TrimSpace(unquote(p)))
			if !ok {
				return value.Value{}, "", false
			}
			elems = append(elems, v)
			reformats = append(reformats, quoteIfString(v, rf))
		}
		return value.NewArray(elems), strings.Join(reformats, ","), true
	}
}

func compileMap(r *registry.Registry, key, val registry.Parser, ratioName string) registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		entries, ok := splitRecordEntries(raw)
		if !ok {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not a valid map cell", raw)
			return value.Value{}, "", false
		}
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := map[string]value.Value{}
		var parts []string
		var sum apd.Decimal
		for _, k := range keys {
			kv, _, ok := key(ctx, k)
			if !ok {
				return value.Value{}, "", false
			}
			vv, rf, ok := val(ctx, unquote(entries[k]))
			if !ok {
				return value.Value{}, "", false
			}
			fields[kv.Str] = vv
			parts = append(parts, fmt.Sprintf("%s=%s", kv.Str, quoteIfString(vv, rf)))
			if ratioName == "ratio" {
				apd.BaseContext.Add(&sum, &sum, &vv.Num)
			}
		}
		if ratioName == "ratio" && len(keys) > 0 {
			one := apd.New(1, 0)
			var diff apd.Decimal
			apd.BaseContext.Sub(&diff, &sum, one)
			diff.Abs(&diff)
			tolerance := apd.New(1, -9)
			if diff.Cmp(tolerance) > 0 {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "ratio values sum to %s, want 1.0", sum.String())
				return value.Value{}, "", false
			}
		}
		return value.NewRecord(kind.Map, keys, fields), strings.Join(parts, ","), true
	}
}

func compileTable() registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		return value.NewString(raw), raw, true
	}
}

func compileTuple(r *registry.Registry, elems []*tabast.TypeExpr) registry.Parser {
	parsers := make([]registry.Parser, len(elems))
	for i, e := range elems {
		parsers[i] = CompileExpr(r, e)
	}
	return compileTupleParsers(parsers)
}

func compileTupleParsers(parsers []registry.Parser) registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		parts := splitTopLevel(raw, ',')
		if len(parts) != len(parsers) {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "tuple has %d elements, want %d", len(parts), len(parsers))
			return value.Value{}, "", false
		}
		elems := make([]value.Value, len(parsers))
		reformats := make([]string, len(parsers))
		for i, p := range parsers {
			v, rf, ok := p(ctx, strings.TrimSpace(unquote(parts[i])))
			if !ok {
				return value.Value{}, "", false
			}
			elems[i] = v
			reformats[i] = quoteIfString(v, rf)
		}
		return value.NewTuple(elems), strings.Join(reformats, ","), true
	}
}

func compileRecord(r *registry.Registry, fields []fieldParser) registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		entries, ok := splitRecordEntries(raw)
		if !ok {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not a valid record cell", raw)
			return value.Value{}, "", false
		}
		known := map[string]bool{}
		for _, f := range fields {
			known[f.Name] = true
		}
		for name := range entries {
			if !known[name] {
				ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "unknown field %q", name)
				return value.Value{}, "", false
			}
		}
		keys := make([]string, 0, len(fields))
		vals := map[string]value.Value{}
		var parts []string
		for _, f := range fields {
			raw, present := entries[f.Name]
			if !present {
				if !f.Optional {
					ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "missing required field %q", f.Name)
					return value.Value{}, "", false
				}
				continue
			}
			v, rf, ok := f.Parse(ctx, unquote(raw))
			if !ok {
				return value.Value{}, "", false
			}
			keys = append(keys, f.Name)
			vals[f.Name] = v
			parts = append(parts, fmt.Sprintf("%s=%s", f.Name, quoteIfString(v, rf)))
		}
		return value.NewRecord(kind.Record, keys, vals), strings.Join(parts, ","), true
	}
}

func compileEnum(labels []string) registry.Parser {
	set := map[string]bool{}
	for _, l := range labels {
		set[l] = true
	}
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		if !set[raw] {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q is not one of %v", raw, labels)
			return value.Value{}, "", false
		}
		return value.NewEnum(raw), raw, true
	}
}

func compileAncestor(r *registry.Registry, ancestor string) registry.Parser {
	return func(ctx *registry.ParseCtx, raw string) (value.Value, string, bool) {
		e, ok := r.Lookup(raw)
		if !ok || !r.ExtendsOrRestrict(e.Name, ancestor) {
			ctx.Sink.Errorf(ctx.Source, ctx.Line, ctx.Column, "%q does not extend %q", raw, ancestor)
			return value.Value{}, "", false
		}
		return value.Value{Kind: kind.String, Str: raw, TypeRef: raw}, raw, true
	}
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}

func quoteIfString(v value.Value, reformatted string) string {
	if v.Kind == kind.String || v.Kind == kind.Enum {
		return strconv.Quote(reformatted)
	}
	return reformatted
}
