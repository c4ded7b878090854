// Copyright 2019 CUE Authors
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

package ast

import "testing"

func TestIsReservedNameRejectsSelfAndPositional(t *testing.T) {
	for _, name := range []string{"self", "_0", "_12"} {
		if !IsReservedName(name) {
			t.Errorf("expected %q to be reserved", name)
		}
	}
	if IsReservedName("_x") {
		t.Errorf("_x is not a positional index and should not be reserved")
	}
}

func TestIsValidIdentifierRejectsTrailingUnderscoreByDefault(t *testing.T) {
	if IsValidIdentifier("name_", false) {
		t.Errorf("trailing underscore should be rejected when not allowed")
	}
	if !IsValidIdentifier("name_", true) {
		t.Errorf("trailing underscore should be accepted when allowed")
	}
	if IsValidIdentifier("self", false) {
		t.Errorf("self is reserved and should never validate")
	}
	if IsValidIdentifier("1abc", false) {
		t.Errorf("identifiers cannot start with a digit")
	}
}

func TestIsValidNameChecksEveryDottedSegment(t *testing.T) {
	if !IsValidName("Item.sword") {
		t.Errorf("expected Item.sword to be a valid dotted name")
	}
	if IsValidName("Item.self") {
		t.Errorf("expected a reserved segment to invalidate the whole name")
	}
}

func TestSelfIndexFieldParsesPositionalNames(t *testing.T) {
	n, ok := SelfIndexField("_3")
	if !ok || n != 3 {
		t.Errorf("expected (3, true), got (%d, %v)", n, ok)
	}
	if _, ok := SelfIndexField("name"); ok {
		t.Errorf("expected non-positional name to report ok=false")
	}
}
