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

// Package manifest decodes the YAML-authored package and custom-type
// declarations spec §6.1 lists as core inputs: `gopkg.in/yaml.v3` plays
// the same role here CUE's own encoding/yaml plays for importing YAML
// into a cue.Value, minus the evaluation step - a manifest is plain
// data, not a value to be unified against a schema.
//
// Building the cross-package dependency graph from LoadAfter/Dependencies
// is explicitly out of scope (spec §1): this package only exposes the
// decoded declarations for a caller's own graph-construction code.
package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CustomTypeSpec is one `{name, parent, ...}` custom-type declaration
// (spec §6.1), as authored in YAML: a dedicated custom-type file or a
// package manifest's customTypes list.
type CustomTypeSpec struct {
	Name     string   `yaml:"name"`
	Parent   string   `yaml:"parent"`
	Min      string   `yaml:"min,omitempty"`
	Max      string   `yaml:"max,omitempty"`
	MinLen   *int     `yaml:"minLen,omitempty"`
	MaxLen   *int     `yaml:"maxLen,omitempty"`
	Pattern  string   `yaml:"pattern,omitempty"`
	Values   []string `yaml:"values,omitempty"`
	Validate string   `yaml:"validate,omitempty"`
	Members  []string `yaml:"members,omitempty"`
	Ancestor string   `yaml:"ancestor,omitempty"`
}

// ValidatorSpec is one row/file/package validator declaration: a plain
// string (error level, file scope) or an {expr, level, scope} record
// (spec §4.6). YAML's scalar-or-mapping ambiguity is resolved in
// UnmarshalYAML below. Spec §4.6 describes three validator scopes but
// does not specify how a manifest selects one for a given declaration;
// Scope resolves that by defaulting unscoped validators to "file", the
// scope most package validators in the wild are written for, while
// letting a manifest opt a declaration into "row" or "package" scope
// explicitly.
type ValidatorSpec struct {
	Expr  string
	Level string // "error" (default) or "warn"
	Scope string // "row", "file" (default), or "package"
}

func (v *ValidatorSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		v.Expr = value.Value
		v.Level = "error"
		v.Scope = "file"
		return nil
	}
	var rec struct {
		Expr  string `yaml:"expr"`
		Level string `yaml:"level"`
		Scope string `yaml:"scope"`
	}
	if err := value.Decode(&rec); err != nil {
		return fmt.Errorf("validator must be a string or {expr, level, scope} record: %w", err)
	}
	v.Expr = rec.Expr
	if rec.Level == "" {
		rec.Level = "error"
	}
	v.Level = rec.Level
	if rec.Scope == "" {
		rec.Scope = "file"
	}
	v.Scope = rec.Scope
	return nil
}

// DependencySpec is one package dependency with a version-range
// predicate (spec §3's Package "dependency list with version-range
// predicates").
type DependencySpec struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"` // e.g. ">=1.2.0", "=2.0.0"
}

// PackageManifest is the top-level `package.yaml` shape spec §3/§6.1
// describes: identity, dependencies, custom types, code libraries,
// validators, and load ordering hints.
type PackageManifest struct {
	Name          string           `yaml:"name"`
	Version       string           `yaml:"version"`
	Dependencies  []DependencySpec `yaml:"dependencies,omitempty"`
	CustomTypes   []CustomTypeSpec `yaml:"customTypes,omitempty"`
	CodeLibraries []string         `yaml:"codeLibraries,omitempty"`
	Validators    []ValidatorSpec  `yaml:"validators,omitempty"`
	LoadAfter     []string         `yaml:"loadAfter,omitempty"`
	Files         []string         `yaml:"files,omitempty"`
}

// ParsePackageManifest decodes a package.yaml document.
func ParsePackageManifest(data []byte) (*PackageManifest, error) {
	var m PackageManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing package manifest: %w", err)
	}
	return &m, nil
}

// ParseCustomTypes decodes a dedicated custom-type file: a bare YAML
// list of CustomTypeSpec records (spec §6.1's "from manifest or a
// dedicated custom-type file").
func ParseCustomTypes(data []byte) ([]CustomTypeSpec, error) {
	var specs []CustomTypeSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing custom types: %w", err)
	}
	return specs, nil
}
