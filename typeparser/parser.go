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

// Package typeparser implements the recursive-descent parser for the
// type-spec grammar of spec §4.2, the TabuLua analogue of cue/parser: it
// turns header type-spec text ("integer", "{attack:integer,defense:
// integer}", "self.type") into an [ast.TypeExpr] tree.
//
// Like every stage of the core, Parse never panics on malformed input: a
// syntax error is reported to the supplied [errors.Sink] and Parse returns
// (nil, false).
package typeparser

import (
	tabast "github.com/tabulua/tabulua/ast"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/scanner"
	"github.com/tabulua/tabulua/token"
)

// Parse parses a type-spec string in isolation (no column/header context).
// source and line identify the row the spec came from for error
// reporting; column is the 1-based column index.
func Parse(sink *errors.Sink, source string, line, column int, spec string) (*tabast.TypeExpr, bool) {
	p := &parser{sink: sink, source: source, line: line, column: column, spec: spec}
	p.sc.Init(spec)
	p.next()
	t := p.parseUnion()
	if p.tok != scanner.EOF {
		p.errorf("unexpected trailing input %q in type spec %q", p.lit, spec)
		return nil, false
	}
	if p.failed {
		return nil, false
	}
	return t, true
}

type parser struct {
	sink   *errors.Sink
	source string
	line   int
	column int
	spec   string

	sc     scanner.Scanner
	tok    scanner.Token
	lit    string
	pos    int
	failed bool
}

func (p *parser) next() {
	p.tok, p.lit, p.pos = p.sc.Scan()
}

func (p *parser) errorf(format string, args ...interface{}) {
	p.failed = true
	p.sink.Errorf(p.source, p.line, p.column, format, args...)
}

func (p *parser) at() token.Position {
	return token.Position{Source: p.source, Line: p.line, Column: p.column}.Add(p.pos)
}

// parseUnion parses UnionAtom ('|' UnionAtom)*, enforcing the ordering
// constraints from spec §3: "string" (if present) must precede "nil";
// "nil" (if present) must be last; duplicate alternatives are rejected.
func (p *parser) parseUnion() *tabast.TypeExpr {
	first := p.parseUnionAtom()
	if p.tok != scanner.PIPE {
		return first
	}

	alts := []*tabast.TypeExpr{first}
	seen := map[string]bool{atomKey(first): true}
	for p.tok == scanner.PIPE {
		p.next()
		a := p.parseUnionAtom()
		if a == nil {
			return nil
		}
		key := atomKey(a)
		if seen[key] {
			p.errorf("duplicate union alternative %q", key)
			continue
		}
		seen[key] = true
		alts = append(alts, a)
	}

	sawNil := false
	for i, a := range alts {
		isNil := a.Kind == tabast.PrimitiveExpr && a.Name == "nil"
		if sawNil {
			p.errorf("nil must be the last union alternative")
			break
		}
		if isNil {
			sawNil = true
		}
		if isNil && i != len(alts)-1 {
			p.errorf("nil must be the last union alternative")
		}
	}

	return tabast.NewUnion(p.at(), alts)
}

func atomKey(t *tabast.TypeExpr) string {
	if t == nil {
		return ""
	}
	if t.Kind == tabast.PrimitiveExpr || t.Kind == tabast.AliasExpr {
		return t.Name
	}
	return tabast.Print(t)
}

// parseUnionAtom parses '{' CompoundInner '}' | Identifier | 'nil' | 'true'.
func (p *parser) parseUnionAtom() *tabast.TypeExpr {
	switch p.tok {
	case scanner.LBRACE:
		return p.parseCompound()
	case scanner.IDENT:
		return p.parseIdentAtom()
	default:
		p.errorf("expected a type, found %q", p.lit)
		return nil
	}
}

func (p *parser) parseIdentAtom() *tabast.TypeExpr {
	name := p.lit
	pos := p.at()
	p.next()

	switch name {
	case "self":
		return p.parseSelfRef(pos)
	default:
		return tabast.Alias(pos, name)
	}
}

// parseSelfRef parses 'self.' Ident | 'self._' Integer, already having
// consumed the "self" identifier.
func (p *parser) parseSelfRef(pos token.Position) *tabast.TypeExpr {
	if p.tok != scanner.PERIOD {
		p.errorf("expected '.' after 'self'")
		return nil
	}
	p.next()
	if p.tok != scanner.IDENT {
		p.errorf("expected a field name or _N after 'self.'")
		return nil
	}
	field := p.lit
	p.next()

	if n, ok := tabast.SelfIndexField(field); ok {
		return &tabast.TypeExpr{Kind: tabast.SelfRefExpr, Pos: pos, Index: n}
	}
	return &tabast.TypeExpr{Kind: tabast.SelfRefExpr, Pos: pos, Name: field, Index: -1}
}

// parseCompound parses the body of a '{' ... '}' type, dispatching on the
// keyword-shaped prefixes the grammar reserves (enum:, extends:, extends,)
// before falling back to the generic field/tuple/map/array/table
// disambiguation (spec §4.2's tie-break rules).
func (p *parser) parseCompound() *tabast.TypeExpr {
	open := p.at()
	p.next() // consume '{'

	switch {
	case p.atKeyword("enum") && p.peekIsColon():
		p.next() // enum
		p.next() // :
		return p.finishCompound(p.parseEnum(open))

	case p.atKeyword("extends") && p.peekIsColon():
		p.next() // extends
		p.next() // :
		return p.finishCompound(p.parseExtendsRecord(open))

	case p.atKeyword("extends") && p.peekIsComma():
		p.next() // extends
		p.next() // ,
		return p.finishCompound(p.parseExtendsComma(open))

	default:
		return p.finishCompound(p.parseGenericCompound(open))
	}
}

func (p *parser) finishCompound(t *tabast.TypeExpr) *tabast.TypeExpr {
	if t == nil {
		return nil
	}
	if p.tok != scanner.RBRACE {
		p.errorf("expected '}', found %q", p.lit)
		return nil
	}
	p.next()
	return t
}

func (p *parser) atKeyword(kw string) bool {
	return p.tok == scanner.IDENT && p.lit == kw
}

// peekIsColon/peekIsComma look one token ahead without consuming, needed
// to decide between "extends:Parent,..." (record) and "extends,Parent"
// (ancestor-constraint/tuple) before committing to either branch.
func (p *parser) peekIsColon() bool { return p.peekTok() == scanner.COLON }
func (p *parser) peekIsComma() bool { return p.peekTok() == scanner.COMMA }

func (p *parser) peekTok() scanner.Token {
	save := p.sc
	tok, _, _ := save.Scan()
	return tok
}

func (p *parser) parseEnum(pos token.Position) *tabast.TypeExpr {
	var labels []string
	seen := map[string]bool{}
	for {
		if p.tok != scanner.IDENT {
			p.errorf("expected an enum label, found %q", p.lit)
			return nil
		}
		label := p.lit
		if !tabast.IsValidIdentifier(label, false) {
			p.errorf("invalid enum label %q", label)
		}
		if seen[label] {
			p.errorf("duplicate enum label %q", label)
		}
		seen[label] = true
		labels = append(labels, label)
		p.next()
		if p.tok != scanner.PIPE {
			break
		}
		p.next()
	}
	if len(labels) == 0 {
		p.errorf("enum must declare at least one label")
		return nil
	}
	return &tabast.TypeExpr{Kind: tabast.EnumExpr, Pos: pos, Labels: labels}
}

// parseExtendsRecord parses Ident (',' Field)+ for the "{extends:Parent,
// field:Type,...}" form (spec's CompoundInner 'extends:' production): at
// least one added field, per spec §3 ("add >= 1 field/element").
func (p *parser) parseExtendsRecord(pos token.Position) *tabast.TypeExpr {
	if p.tok != scanner.IDENT {
		p.errorf("expected parent type name after 'extends:'")
		return nil
	}
	parent := p.lit
	p.next()

	var fields []tabast.Field
	for p.tok == scanner.COMMA {
		p.next()
		f, ok := p.parseField()
		if !ok {
			return nil
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		p.errorf("extends:%s must add at least one field", parent)
		return nil
	}
	return &tabast.TypeExpr{Kind: tabast.ExtendsRecordExpr, Pos: pos, Parent: parent, Fields: fields}
}

// parseExtendsComma parses the "extends," forms: a bare ancestor name
// ("{extends,T}", an AncestorConstraint) or a parent name followed by one
// or more added tuple elements ("{extends,Parent,Type,...}", an
// ExtendsTuple).
func (p *parser) parseExtendsComma(pos token.Position) *tabast.TypeExpr {
	if p.tok != scanner.IDENT {
		p.errorf("expected a type name after 'extends,'")
		return nil
	}
	name := p.lit
	p.next()

	if p.tok != scanner.COMMA {
		return &tabast.TypeExpr{Kind: tabast.AncestorConstraintExpr, Pos: pos, Name: name}
	}

	var elems []*tabast.TypeExpr
	for p.tok == scanner.COMMA {
		p.next()
		e := p.parseUnion()
		if e == nil {
			return nil
		}
		elems = append(elems, e)
	}
	if len(elems) == 0 {
		p.errorf("extends,%s must add at least one element", name)
		return nil
	}
	return &tabast.TypeExpr{Kind: tabast.ExtendsTupleExpr, Pos: pos, Parent: name, Elements: elems}
}

func (p *parser) parseField() (tabast.Field, bool) {
	if p.tok != scanner.IDENT {
		p.errorf("expected a field name, found %q", p.lit)
		return tabast.Field{}, false
	}
	name := p.lit
	if !tabast.IsValidIdentifier(name, true) {
		p.errorf("invalid field name %q", name)
	}
	p.next()
	if p.tok != scanner.COLON {
		p.errorf("expected ':' after field name %q", name)
		return tabast.Field{}, false
	}
	p.next()
	typ := p.parseUnion()
	if typ == nil {
		return tabast.Field{}, false
	}
	return tabast.Field{Name: name, Type: typ, Optional: typ.IsNullable()}, true
}

// compoundItem is one top-level comma-separated element inside a generic
// '{' ... '}' body, before the parser knows whether the body as a whole
// is a record, a tuple, a map, or an array.
type compoundItem struct {
	// fieldName is set when left parsed as a single bare identifier
	// immediately followed by ':' - the shape required to be a record
	// field (spec §4.2: "record vs tuple is determined by the presence
	// of name: prefixes").
	fieldName string
	left      *tabast.TypeExpr
	hasColon  bool
	right     *tabast.TypeExpr
}

// parseGenericCompound implements spec §4.2's tie-break rules for a '{'
// body that is none of enum/extends: FieldList (record, >=2 name:Type
// items), TupleList (>=2 bare items), ArrayMapEntry (one bare item is an
// array, one 'Type:Type' item is a map), or an empty body (bare table).
func (p *parser) parseGenericCompound(pos token.Position) *tabast.TypeExpr {
	if p.tok == scanner.RBRACE {
		return &tabast.TypeExpr{Kind: tabast.TableExpr, Pos: pos}
	}

	var items []compoundItem
	for {
		item, ok := p.parseCompoundItem()
		if !ok {
			return nil
		}
		items = append(items, item)
		if p.tok != scanner.COMMA {
			break
		}
		p.next()
	}

	switch len(items) {
	case 0:
		return &tabast.TypeExpr{Kind: tabast.TableExpr, Pos: pos}

	case 1:
		it := items[0]
		if it.hasColon {
			return &tabast.TypeExpr{Kind: tabast.MapExpr, Pos: pos, MapKey: it.left, Elem: it.right}
		}
		return &tabast.TypeExpr{Kind: tabast.ArrayExpr, Pos: pos, Elem: it.left}

	default:
		allFields, anyColon := true, false
		for _, it := range items {
			if it.fieldName == "" {
				allFields = false
			}
			if it.hasColon {
				anyColon = true
			}
		}
		switch {
		case allFields:
			fields := make([]tabast.Field, len(items))
			seen := map[string]bool{}
			for i, it := range items {
				if seen[it.fieldName] {
					p.errorf("duplicate field name %q", it.fieldName)
				}
				seen[it.fieldName] = true
				fields[i] = tabast.Field{Name: it.fieldName, Type: it.right, Optional: it.right.IsNullable()}
			}
			return &tabast.TypeExpr{Kind: tabast.RecordExpr, Pos: pos, Fields: fields}
		case anyColon:
			p.errorf("cannot mix record fields and positional tuple elements in one type")
			return nil
		default:
			elems := make([]*tabast.TypeExpr, len(items))
			for i, it := range items {
				elems[i] = it.left
			}
			return &tabast.TypeExpr{Kind: tabast.TupleExpr, Pos: pos, Elements: elems}
		}
	}
}

// parseCompoundItem parses one comma-delimited item of a generic compound
// body: an optional "name:" prefix check is folded into the general
// "parse a TypeSpec, then see if ':' follows" path so that a bare
// identifier used as a map-key type and a field name share one code path.
func (p *parser) parseCompoundItem() (compoundItem, bool) {
	var fieldCandidate string
	if p.tok == scanner.IDENT {
		fieldCandidate = p.lit
	}

	left := p.parseUnion()
	if left == nil {
		return compoundItem{}, false
	}

	isBareName := fieldCandidate != "" && left.Kind == tabast.AliasExpr && left.Name == fieldCandidate

	if p.tok != scanner.COLON {
		return compoundItem{left: left}, true
	}
	p.next()
	right := p.parseUnion()
	if right == nil {
		return compoundItem{}, false
	}

	item := compoundItem{left: left, hasColon: true, right: right}
	if isBareName && tabast.IsValidIdentifier(fieldCandidate, true) {
		item.fieldName = fieldCandidate
	}
	return item, true
}
