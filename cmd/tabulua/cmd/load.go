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

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tabulua/tabulua/errors"
	"github.com/tabulua/tabulua/join"
	"github.com/tabulua/tabulua/manifest"
	"github.com/tabulua/tabulua/row"
	"github.com/tabulua/tabulua/sandbox"
	"github.com/tabulua/tabulua/tabulua"
	"github.com/tabulua/tabulua/validator"
	"gopkg.in/yaml.v3"
)

// joinSidecar is the optional "<file>.join.yaml" sitting next to a
// secondary TSV file, naming the file-join metadata spec §3's File model
// allows but leaves format-unspecified. This is the CLI's own I/O-layer
// convention, not a core concept: package tabulua's Join operation takes
// the resulting [join.Spec] directly.
type joinSidecar struct {
	JoinInto   string `yaml:"joinInto"`
	JoinColumn string `yaml:"joinColumn"`
}

// loadedPackage is everything one directory's worth of TSV files and
// manifest decode to, ready for validation or schema export.
type loadedPackage struct {
	ctx      *tabulua.Context
	manifest *manifest.PackageManifest
	files    map[string]*row.File // keyed by lowercased base filename, per spec §4.6 package scope
	sink     *errors.Sink
}

func loadPackage(dir string) (*loadedPackage, error) {
	sink := errors.NewSink()
	ctx := tabulua.New()

	pm, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	if !ctx.RegisterTypesFromManifest(sink, filepath.Join(dir, "package.yaml"), pm.CustomTypes) {
		return &loadedPackage{ctx: ctx, manifest: pm, files: map[string]*row.File{}, sink: sink}, nil
	}

	paths, err := tsvPaths(dir)
	if err != nil {
		return nil, err
	}

	files := map[string]*row.File{}
	sidecars := map[string]joinSidecar{}
	for _, p := range paths {
		header, data, err := readTSV(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		f, ok := ctx.BuildFile(sink, p, header, data, 2, "")
		if !ok {
			continue
		}
		files[strings.ToLower(filepath.Base(p))] = f
		if sc, ok, err := readJoinSidecar(p); err != nil {
			return nil, err
		} else if ok {
			sidecars[p] = sc
		}
	}

	applyJoins(ctx, sink, files, paths, sidecars)

	return &loadedPackage{ctx: ctx, manifest: pm, files: files, sink: sink}, nil
}

// applyJoins resolves every sidecar-declared join, secondary files in
// path order so a chained join (secondary declaring joinInto another
// secondary) surfaces the chained-join error rather than silently
// reordering around it.
func applyJoins(ctx *tabulua.Context, sink *errors.Sink, files map[string]*row.File, paths []string, sidecars map[string]joinSidecar) {
	for _, p := range paths {
		sc, ok := sidecars[p]
		if !ok {
			continue
		}
		secondary, ok := files[strings.ToLower(filepath.Base(p))]
		if !ok {
			continue
		}
		primary, ok := files[strings.ToLower(sc.JoinInto)]
		if !ok {
			sink.Errorf(p, 0, 0, "joinInto %q does not name a loaded file", sc.JoinInto)
			continue
		}
		ctx.Join(sink, primary, secondary, join.Spec{JoinInto: sc.JoinInto, JoinColumn: sc.JoinColumn})
	}
}

// runValidators runs every manifest validator at its declared scope
// (spec §4.6's three scopes; scope selection is the manifest.ValidatorSpec
// Scope field, a resolution of an otherwise-unspecified part of the
// manifest format): row validators once per row, file validators once
// per file, package validators once across every loaded file.
func runValidators(lp *loadedPackage) bool {
	ok := true
	rowV := toValidators(lp.manifest.Validators, "row")
	fileV := toValidators(lp.manifest.Validators, "file")
	pkgV := toValidators(lp.manifest.Validators, "package")

	for name, f := range lp.files {
		rowCtx := map[string]sandbox.Value{}
		for i, r := range f.Rows {
			if !lp.ctx.RunRowValidators(lp.sink, rowV, r, i, name, rowCtx) {
				ok = false
			}
		}
		if !lp.ctx.RunFileValidators(lp.sink, fileV, f, map[string]sandbox.Value{}) {
			ok = false
		}
	}
	if !lp.ctx.RunPackageValidators(lp.sink, pkgV, lp.manifest.Name, lp.files, map[string]sandbox.Value{}) {
		ok = false
	}
	return ok
}

func toValidators(specs []manifest.ValidatorSpec, scope string) []validator.Validator {
	var out []validator.Validator
	for _, s := range specs {
		if s.Scope != scope {
			continue
		}
		lvl := validator.LevelError
		if s.Level == "warn" {
			lvl = validator.LevelWarn
		}
		out = append(out, validator.Validator{Expr: s.Expr, Level: lvl})
	}
	return out
}

func readManifest(dir string) (*manifest.PackageManifest, error) {
	path := filepath.Join(dir, "package.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &manifest.PackageManifest{Name: filepath.Base(dir)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	pm, err := manifest.ParsePackageManifest(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return pm, nil
}

func tsvPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tsv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// readTSV splits a file's lines into a header row and data rows on tab
// characters. The core intentionally has no tokenizer of its own (spec
// §1 places the "raw TSV tokenizer" out of scope); this is the minimal
// line/field splitter a host is expected to supply.
func readTSV(path string) (header []string, rows [][]string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}
	header = strings.Split(lines[0], "\t")
	for _, l := range lines[1:] {
		rows = append(rows, strings.Split(l, "\t"))
	}
	return header, rows, nil
}

func readJoinSidecar(tsvPath string) (joinSidecar, bool, error) {
	path := strings.TrimSuffix(tsvPath, ".tsv") + ".join.yaml"
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return joinSidecar{}, false, nil
	}
	if err != nil {
		return joinSidecar{}, false, fmt.Errorf("reading %s: %w", path, err)
	}
	var sc joinSidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return joinSidecar{}, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return sc, true, nil
}
