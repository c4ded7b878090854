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

package introspect

import (
	"testing"

	"github.com/tabulua/tabulua/builtins"
	"github.com/tabulua/tabulua/registry"
)

func TestSnapshotIncludesConstraints(t *testing.T) {
	r := builtins.Register(registry.New())
	descs := Snapshot(r, []string{"byte"})
	if len(descs) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(descs))
	}
	d := descs[0]
	if d.Parent != "integer" || d.Constraints == nil || d.Constraints.Min != "-128" {
		t.Errorf("unexpected descriptor: %+v", d)
	}
}

func TestSnapshotIncludesRecordFields(t *testing.T) {
	r := builtins.Register(registry.New())
	descs := Snapshot(r, []string{"any"})
	if len(descs) != 1 || len(descs[0].RecordFields) != 2 {
		t.Fatalf("unexpected descriptor: %+v", descs)
	}
}

func TestIsNeverTableForRecordKind(t *testing.T) {
	r := builtins.Register(registry.New())
	if !IsNeverTable(r, "any") {
		t.Errorf("expected any (a record) to be never-table")
	}
	if IsNeverTable(r, "table") {
		t.Errorf("expected table itself to not be never-table")
	}
}
