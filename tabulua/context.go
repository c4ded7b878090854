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

// Package tabulua is the top-level facade spec §1 names: a single
// [Context] wiring the type registry, column pipeline, row assembly,
// validator engine, schema introspection, and file-join resolver behind
// the six public operations the core exposes (registerType, parseTypeSpec,
// makeColumnParser, parseRow, runValidators, introspect). It plays the
// role cue/cue.go's Context/Runtime pairing plays for CUE: callers never
// touch the leaf packages directly, only this facade.
package tabulua

import (
	tabast "github.com/tabulua/tabulua/ast"
	"github.com/tabulua/tabulua/builtins"
	"github.com/tabulua/tabulua/column"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/introspect"
	"github.com/tabulua/tabulua/join"
	"github.com/tabulua/tabulua/lang"
	"github.com/tabulua/tabulua/manifest"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/row"
	"github.com/tabulua/tabulua/sandbox"
	"github.com/tabulua/tabulua/typeparser"
	"github.com/tabulua/tabulua/validator"
)

// Context is a package's live type registry plus the join bookkeeping a
// directory of files needs across a single check run. It holds no I/O
// state: callers read manifests and files themselves and pass decoded
// bytes/strings in, matching spec §1's "no I/O in the core".
type Context struct {
	Registry *registry.Registry
	joins    *join.Registry
}

// New returns a Context seeded with the built-in primitive/container
// types (spec §4.4), ready for RegisterType calls layering custom types
// on top.
func New() *Context {
	return &Context{
		Registry: builtins.Register(registry.New()),
		joins:    join.NewRegistry(),
	}
}

// RegisterType implements spec §4.3's registerType(name, parent,
// constraints, validator?) operation: validate and store the entry, then
// compile its [registry.Parser] immediately so every other operation can
// assume a successfully registered type is also a parseable one.
func (c *Context) RegisterType(sink *errors.Sink, source string, line int, name, parent string, con registry.Constraints, decl *tabast.TypeExpr) (*registry.Entry, bool) {
	e, ok := c.Registry.RegisterType(sink, source, line, name, parent, con, decl)
	if !ok {
		return nil, false
	}
	lang.CompileEntry(c.Registry, e)
	return e, true
}

// RegisterTypesFromManifest decodes and registers every custom type a
// package.yaml or dedicated custom-type file declares (spec §6.1),
// stopping at the first failure since later declarations may name an
// earlier one as parent.
func (c *Context) RegisterTypesFromManifest(sink *errors.Sink, source string, specs []manifest.CustomTypeSpec) bool {
	return manifest.RegisterCustomTypes(sink, c.Registry, source, specs)
}

// ParseTypeSpec implements spec §4.2's type-spec PEG entry point: parse a
// typeSpec string (as it appears after the first ':' of a header token,
// or in a customType's "parent" extension grammar) into an [ast.TypeExpr]
// without registering anything.
func (c *Context) ParseTypeSpec(sink *errors.Sink, source string, line, column int, spec string) (*tabast.TypeExpr, bool) {
	return typeparser.Parse(sink, source, line, column, spec)
}

// MakeColumnParser implements spec §4.5's per-file column-pipeline
// construction: parse every header token, resolve self-ref dependencies,
// and compile a parser per column, returning the columns in topological
// evaluation order alongside declaration order.
func (c *Context) MakeColumnParser(sink *errors.Sink, source string, line int, headerTokens []string) ([]*column.Column, []int, bool) {
	return column.BuildColumns(sink, c.Registry, source, line, headerTokens)
}

// ParseRow implements spec §4.5's per-row pipeline: resolve defaults and
// expressions in topological order, parse each cell, and assemble
// exploded-path groups into nested values. rowIndex is the row's 1-based
// position among its file's data rows, the value self.__idx exposes.
func (c *Context) ParseRow(sink *errors.Sink, cols []*column.Column, order []int, source string, line, rowIndex int, raw []string) (*row.Row, bool) {
	return row.ParseRow(sink, c.Registry, cols, order, source, line, rowIndex, raw)
}

// BuildFile runs MakeColumnParser and ParseRow across a whole TSV file's
// rows, plus primary-key uniqueness and published-view construction
// (spec §4.5's row/file assembly). It is the convenience entry point
// cmd/tabulua and most callers use instead of driving MakeColumnParser/
// ParseRow by hand.
func (c *Context) BuildFile(sink *errors.Sink, source string, header []string, dataRows [][]string, firstDataLine int, publishColumn string) (*row.File, bool) {
	return row.BuildFile(sink, c.Registry, source, header, dataRows, firstDataLine, publishColumn)
}

// Join resolves one secondary-into-primary file join (spec §4.7): LEFT
// JOIN semantics, rejecting duplicate columns, unmatched secondary rows,
// and chained joins.
func (c *Context) Join(sink *errors.Sink, primary, secondary *row.File, spec join.Spec) bool {
	return c.joins.Join(sink, primary, secondary, spec)
}

// RunRowValidators, RunFileValidators, and RunPackageValidators implement
// spec §4.6's runValidators operation at each of its three scopes. They
// are kept as distinct methods, rather than one dispatching function,
// because each scope's environment shape and quota differ enough (spec
// §4.6) that a single signature would need scope-specific optional
// arguments anyway.
func (c *Context) RunRowValidators(sink *errors.Sink, validators []validator.Validator, r *row.Row, rowIndex int, fileName string, fileCtx map[string]sandbox.Value) bool {
	return validator.RunRow(sink, validators, r, rowIndex, fileName, fileCtx)
}

func (c *Context) RunFileValidators(sink *errors.Sink, validators []validator.Validator, f *row.File, fileCtx map[string]sandbox.Value) bool {
	return validator.RunFile(sink, validators, f, fileCtx, validator.TagHelpers(c.Registry))
}

func (c *Context) RunPackageValidators(sink *errors.Sink, validators []validator.Validator, packageID string, files map[string]*row.File, pkgCtx map[string]sandbox.Value) bool {
	return validator.RunPackage(sink, validators, packageID, files, pkgCtx, validator.TagHelpers(c.Registry))
}

// Introspect implements spec §6.2's schema-snapshot export: describe
// every named type in names (or every registered type, if names is
// empty).
func (c *Context) Introspect(names []string) []introspect.Descriptor {
	if len(names) == 0 {
		names = c.Registry.Names()
	}
	return introspect.Snapshot(c.Registry, names)
}
