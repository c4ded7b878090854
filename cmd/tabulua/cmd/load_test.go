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
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestReadTSVSplitsHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.tsv", "name:string\tdamage:integer\nsword\t5\naxe\t8\n")

	header, rows, err := readTSV(path)
	if err != nil {
		t.Fatalf("readTSV: %v", err)
	}
	if len(header) != 2 || header[0] != "name:string" {
		t.Errorf("unexpected header: %v", header)
	}
	if len(rows) != 2 || rows[0][0] != "sword" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestLoadPackageRunsValidatorsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.yaml", "name: rpg.items\nversion: 1.0.0\nvalidators:\n  - count > 0\n")
	writeFile(t, dir, "items.tsv", "name:string\tdamage:integer\nsword\t5\naxe\t8\n")

	lp, err := loadPackage(dir)
	if err != nil {
		t.Fatalf("loadPackage: %v", err)
	}
	if !runValidators(lp) {
		t.Errorf("expected validators to pass: %v", lp.sink.Reports())
	}
}

func TestLoadPackageAppliesSidecarJoin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "items.tsv", "name:string\tdamage:integer\nsword\t5\n")
	writeFile(t, dir, "item_flavor.tsv", "name:string\tflavor:text\nsword\tA sharp blade.\n")
	writeFile(t, dir, "item_flavor.join.yaml", "joinInto: items.tsv\n")

	lp, err := loadPackage(dir)
	if err != nil {
		t.Fatalf("loadPackage: %v", err)
	}
	if !lp.sink.Ok() {
		t.Fatalf("unexpected errors: %v", lp.sink.Reports())
	}
	f := lp.files["items.tsv"]
	if _, ok := f.Rows[0].Get("flavor"); !ok {
		t.Errorf("expected joined flavor column on primary row")
	}
}
