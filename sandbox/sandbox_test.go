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

package sandbox

import "testing"

func newEnv() *Env {
	return &Env{Vars: map[string]Value{}, Ctx: map[string]Value{}, Funcs: DefaultFuncs()}
}

func TestArithmetic(t *testing.T) {
	v, err := Eval(newEnv(), 1000, "=2+3*4")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.Num != 14 {
		t.Errorf("2+3*4 = %v, want 14", v.Num)
	}
}

func TestFieldAccessAndIndex(t *testing.T) {
	env := newEnv()
	env.Vars["self"] = Table(map[string]Value{
		"name":   Str("sword"),
		"damage": Num(5),
	})
	v, err := Eval(env, 1000, "self.damage * 2")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.Num != 10 {
		t.Errorf("self.damage*2 = %v, want 10", v.Num)
	}
}

func TestComparisonAndLogic(t *testing.T) {
	env := newEnv()
	env.Vars["self"] = Table(map[string]Value{"x": Num(5)})
	v, err := Eval(env, 1000, "self.x > 3 && self.x < 10")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if !v.Bool {
		t.Errorf("expected true")
	}
}

func TestQuotaExceeded(t *testing.T) {
	env := newEnv()
	_, err := Eval(env, 2, "1+1+1+1+1")
	if err == nil {
		t.Fatalf("expected quota error")
	}
	if _, ok := err.(*QuotaExceededError); !ok {
		t.Errorf("error = %T, want *QuotaExceededError", err)
	}
}

func TestHelperFunctions(t *testing.T) {
	env := newEnv()
	env.Vars["xs"] = List([]Value{Num(1), Num(2), Num(3)})
	v, err := Eval(env, 1000, "sum(xs)")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.Num != 6 {
		t.Errorf("sum(xs) = %v, want 6", v.Num)
	}

	v, err = Eval(env, 1000, "unique(xs)")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if !v.Bool {
		t.Errorf("unique(xs) should be true")
	}
}

func TestUndefinedReferenceErrors(t *testing.T) {
	env := newEnv()
	if _, err := Eval(env, 1000, "missing + 1"); err == nil {
		t.Errorf("expected error for undefined reference")
	}
}

func TestSelfFieldRefsCollectsDotAndIndexAccess(t *testing.T) {
	refs, err := SelfFieldRefs(`self.a + self["b"] * count`)
	if err != nil {
		t.Fatalf("SelfFieldRefs error: %v", err)
	}
	if len(refs) != 2 || refs[0] != "a" || refs[1] != "b" {
		t.Errorf("got %v, want [a b]", refs)
	}
}

func TestSelfFieldRefsIgnoresNonSelfAccess(t *testing.T) {
	refs, err := SelfFieldRefs(`other.field + self[1]`)
	if err != nil {
		t.Fatalf("SelfFieldRefs error: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("got %v, want no self-field references", refs)
	}
}

func TestStringConcatenation(t *testing.T) {
	env := newEnv()
	v, err := Eval(env, 1000, `"a" + "b"`)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.Str != "ab" {
		t.Errorf("concat = %q, want %q", v.Str, "ab")
	}
}
