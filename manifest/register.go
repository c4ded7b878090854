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

package manifest

import (
	"regexp"

	"github.com/cockroachdb/apd/v3"
	tabast "github.com/tabulua/tabulua/ast"
	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/registry"
)

// RegisterCustomTypes runs every decoded CustomTypeSpec through
// [registry.Registry.RegisterType], translating YAML's plain strings
// into the typed [registry.Constraints]/AST shape the registry expects.
// It stops registering on the first type that fails (later specs may
// depend on it as a parent), matching the registry's own "first
// violated invariant wins" semantics.
func RegisterCustomTypes(sink *errors.Sink, r *registry.Registry, source string, specs []CustomTypeSpec) bool {
	for i, spec := range specs {
		con, ok := toConstraints(sink, source, i+1, spec)
		if !ok {
			return false
		}
		var decl *tabast.TypeExpr
		if spec.Ancestor != "" {
			decl = &tabast.TypeExpr{Kind: tabast.AncestorConstraintExpr, Name: spec.Ancestor}
		}
		if _, ok := r.RegisterType(sink, source, i+1, spec.Name, spec.Parent, con, decl); !ok {
			return false
		}
	}
	return true
}

func toConstraints(sink *errors.Sink, source string, line int, spec CustomTypeSpec) (registry.Constraints, bool) {
	var con registry.Constraints
	if spec.Min != "" {
		d, _, err := apd.NewFromString(spec.Min)
		if err != nil {
			sink.Errorf(source, line, 0, "type %q: invalid min %q: %v", spec.Name, spec.Min, err)
			return con, false
		}
		con.Min = d
	}
	if spec.Max != "" {
		d, _, err := apd.NewFromString(spec.Max)
		if err != nil {
			sink.Errorf(source, line, 0, "type %q: invalid max %q: %v", spec.Name, spec.Max, err)
			return con, false
		}
		con.Max = d
	}
	con.MinLen = spec.MinLen
	con.MaxLen = spec.MaxLen
	if spec.Pattern != "" {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			sink.Errorf(source, line, 0, "type %q: invalid pattern %q: %v", spec.Name, spec.Pattern, err)
			return con, false
		}
		con.Pattern = re
	}
	con.Values = spec.Values
	con.Validate = spec.Validate
	con.Members = spec.Members
	return con, true
}
