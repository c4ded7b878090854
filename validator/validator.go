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

// Package validator runs the row/file/package validator engine spec
// §4.6 describes, layering a shared, per-scope `ctx` table and the
// listMembersOfTag/isMemberOfTag registry helpers on top of package
// sandbox's bounded evaluator, the same way cue/errors layers structured
// positions on top of Go's plain error interface.
package validator

import (
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/kind"
	"github.com/tabulua/tabulua/registry"
	"github.com/tabulua/tabulua/row"
	"github.com/tabulua/tabulua/sandbox"
	"github.com/tabulua/tabulua/value"
)

// Level is a validator's severity: Error halts acceptance of the
// enclosing file/package, Warn accumulates and never blocks (spec
// §4.6).
type Level int

const (
	LevelError Level = iota
	LevelWarn
)

// Validator is one row/file/package validator declaration: a plain
// expression string (error level) or an {expr, level} record (spec
// §4.6's "A validator is a string... or a record").
type Validator struct {
	Expr  string
	Level Level
}

// Quotas per scope, spec §5/§4.6.
const (
	RowQuota     = 1000
	FileQuota    = 10000
	PackageQuota = 100000
)

// RunRow runs every row validator against one row, sharing fileCtx
// across every row invocation within the same file (spec §4.6: "ctx
// (writable, per-file, shared across all row invocations)").
func RunRow(sink *errors.Sink, validators []Validator, r *row.Row, rowIndex int, fileName string, fileCtx map[string]sandbox.Value) bool {
	env := &sandbox.Env{
		Vars: map[string]sandbox.Value{
			"self":     rowTable(r),
			"row":      rowTable(r),
			"rowIndex": sandbox.Num(float64(rowIndex)),
			"fileName": sandbox.Str(fileName),
		},
		Ctx:   fileCtx,
		Funcs: sandbox.DefaultFuncs(),
	}
	return runAll(sink, validators, env, RowQuota, r.Source, r.Line, "")
}

// RunFile runs every file validator once, after every row in the file
// has been parsed (spec §4.6's file scope).
func RunFile(sink *errors.Sink, validators []Validator, f *row.File, fileCtx map[string]sandbox.Value, extra map[string]Func) bool {
	rows := make([]sandbox.Value, len(f.Rows))
	for i, r := range f.Rows {
		rows[i] = rowTable(r)
	}
	env := &sandbox.Env{
		Vars: map[string]sandbox.Value{
			"rows":     sandbox.List(rows),
			"file":     sandbox.List(rows),
			"count":    sandbox.Num(float64(len(rows))),
			"fileName": sandbox.Str(f.Source),
		},
		Ctx:   fileCtx,
		Funcs: mergeFuncs(sandbox.DefaultFuncs(), extra),
	}
	return runAll(sink, validators, env, FileQuota, f.Source, 0, "")
}

// RunPackage runs every package validator once, against every file's
// rows keyed by lowercased filename, plus every file's published view
// (spec §4.6's package scope). Every diagnostic this run produces is
// tagged with a fresh run ID so repeated package runs in the same
// process (a caller re-checking a package after an edit) can be told
// apart in aggregated logs.
func RunPackage(sink *errors.Sink, validators []Validator, packageID string, files map[string]*row.File, pkgCtx map[string]sandbox.Value, extra map[string]Func) bool {
	filesTable := map[string]sandbox.Value{}
	publishedTable := map[string]sandbox.Value{}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := files[name]
		rows := make([]sandbox.Value, len(f.Rows))
		for i, r := range f.Rows {
			rows[i] = rowTable(r)
		}
		filesTable[name] = sandbox.List(rows)
		for k, v := range f.Published {
			publishedTable[k] = toSandboxValue(v)
		}
	}
	env := &sandbox.Env{
		Vars: map[string]sandbox.Value{
			"files":     sandbox.Table(filesTable),
			"package":   sandbox.Table(filesTable),
			"packageId": sandbox.Str(packageID),
			"published": sandbox.Table(publishedTable),
		},
		Ctx:   pkgCtx,
		Funcs: mergeFuncs(sandbox.DefaultFuncs(), extra),
	}
	for k, v := range publishedTable {
		env.Vars[k] = v
	}
	runID := uuid.New().String()
	env.Vars["runId"] = sandbox.Str(runID)
	return runAll(sink, validators, env, PackageQuota, packageID, 0, runID)
}

// Func is re-exported so callers building the tag-aware helper set don't
// need to import package sandbox directly for the type alone.
type Func = sandbox.Func

// TagHelpers returns the listMembersOfTag/isMemberOfTag helpers spec
// §4.6 lists for file/package scope, bound to r. These need registry
// access package sandbox deliberately has none of, so they are built
// here rather than in sandbox.DefaultFuncs.
func TagHelpers(r *registry.Registry) map[string]Func {
	return map[string]Func{
		"isMemberOfTag": func(ev *sandbox.Evaluator, args []sandbox.Value) (sandbox.Value, error) {
			if len(args) != 2 {
				return sandbox.Bool(false), nil
			}
			return sandbox.Bool(r.IsMemberOfTag(args[0].String(), args[1].String())), nil
		},
		"listMembersOfTag": func(ev *sandbox.Evaluator, args []sandbox.Value) (sandbox.Value, error) {
			if len(args) != 1 {
				return sandbox.List(nil), nil
			}
			tag := args[0].String()
			var members []sandbox.Value
			for _, name := range r.Names() {
				if r.IsMemberOfTag(name, tag) {
					members = append(members, sandbox.Str(name))
				}
			}
			return sandbox.List(members), nil
		},
	}
}

func mergeFuncs(base, extra map[string]Func) map[string]Func {
	if len(extra) == 0 {
		return base
	}
	out := make(map[string]Func, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// runAll evaluates every validator against env, reporting a failure per
// spec §4.6's result-interpretation rules. It does not stop at the first
// error-level failure ("errors in a preceding validator do not mask
// later ones"); it returns false if any error-level validator failed.
// runID, when non-empty, is appended to every report so diagnostics from
// the same package run can be correlated across a caller's aggregated
// log output.
func runAll(sink *errors.Sink, validators []Validator, env *sandbox.Env, quota int, source string, line int, runID string) bool {
	suffix := ""
	if runID != "" {
		suffix = " (run " + runID + ")"
	}
	ok := true
	for _, v := range validators {
		result, err := sandbox.Eval(env, quota, v.Expr)
		if err != nil {
			sink.Errorf(source, line, 0, "validator %q failed: %v%s", v.Expr, err, suffix)
			ok = false
			continue
		}
		if pass, msg := interpret(result); !pass {
			if v.Level == LevelWarn {
				sink.Warnf(source, line, 0, "%s%s", msg, suffix)
			} else {
				sink.Errorf(source, line, 0, "%s%s", msg, suffix)
				ok = false
			}
		}
	}
	return ok
}

// interpret implements spec §4.6's result-interpretation table: true/""
// pass; false/nil fail with a default message; a string result fails
// with that string as the message; a number fails with its string form.
func interpret(v sandbox.Value) (pass bool, message string) {
	switch v.Kind {
	case sandbox.KBool:
		if v.Bool {
			return true, ""
		}
		return false, "validator failed"
	case sandbox.KNil:
		return false, "validator failed"
	case sandbox.KStr:
		if v.Str == "" {
			return true, ""
		}
		return false, v.Str
	case sandbox.KNum:
		return false, strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return false, v.String()
	}
}

func rowTable(r *row.Row) sandbox.Value {
	fields := map[string]sandbox.Value{}
	for name, v := range r.Cells {
		fields[name] = toSandboxValue(v)
	}
	for name, v := range r.Assembled {
		fields[name] = toSandboxValue(v)
	}
	return sandbox.Table(fields)
}

// toSandboxValue mirrors package row's own private converter of the same
// name: both translate a parsed [value.Value] into the sandbox's dynamic
// [sandbox.Value] so validator expressions and column expressions see
// the same shape. It is duplicated rather than shared because row's
// conversion is row-pipeline-internal state, not part of row's public
// surface.
func toSandboxValue(v value.Value) sandbox.Value {
	switch v.Kind {
	case kind.Nil:
		return sandbox.Nil()
	case kind.Bool, kind.True:
		return sandbox.Bool(v.Bool)
	case kind.Int, kind.Float:
		f, _ := v.AsFloat64()
		return sandbox.Num(f)
	case kind.String, kind.Enum:
		return sandbox.Str(v.Str)
	case kind.Raw:
		return sandbox.Str(string(v.Byte))
	case kind.Array, kind.Tuple:
		list := v.List
		if v.Kind == kind.Tuple {
			list = v.Tuple
		}
		out := make([]sandbox.Value, len(list))
		for i, e := range list {
			out[i] = toSandboxValue(e)
		}
		return sandbox.List(out)
	case kind.Record, kind.Map:
		out := map[string]sandbox.Value{}
		for _, k := range v.Keys {
			out[k] = toSandboxValue(v.Fields[k])
		}
		return sandbox.Table(out)
	default:
		return sandbox.Nil()
	}
}
