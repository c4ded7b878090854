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

package errors

import "testing"

func TestSinkCounters(t *testing.T) {
	s := NewSink()
	s.Errorf("Item.tsv", 3, 1, "bad value %q", "x")
	s.Warnf("Item.tsv", 4, 2, "wrap in {}")

	if got, want := s.Errors(), 1; got != want {
		t.Errorf("Errors() = %d, want %d", got, want)
	}
	if got, want := s.Warnings(), 1; got != want {
		t.Errorf("Warnings() = %d, want %d", got, want)
	}
	if s.Ok() {
		t.Errorf("Ok() = true, want false")
	}
}

func TestRollbackTo(t *testing.T) {
	s := NewSink()
	s.Errorf("a.tsv", 1, 1, "outer")

	mark := s.Mark()
	s.Errorf("a.tsv", 1, 1, "trial failed")
	s.Warnf("a.tsv", 1, 1, "trial warned")
	s.RollbackTo(mark)

	if got, want := s.Errors(), 1; got != want {
		t.Errorf("Errors() after rollback = %d, want %d", got, want)
	}
	if got, want := s.Warnings(), 0; got != want {
		t.Errorf("Warnings() after rollback = %d, want %d", got, want)
	}
	if got, want := len(s.Reports()), 1; got != want {
		t.Errorf("len(Reports()) after rollback = %d, want %d", got, want)
	}
}

func TestWithColTypeNests(t *testing.T) {
	s := NewSink()
	s.WithColType("Stats", func() {
		s.Errorf("a.tsv", 1, 1, "outer field")
		s.WithColType("Attack", func() {
			s.Errorf("a.tsv", 1, 1, "inner field")
		})
	})

	reports := s.Reports()
	if len(reports) != 2 {
		t.Fatalf("len(Reports()) = %d, want 2", len(reports))
	}
	if reports[0].ColType != "Stats" {
		t.Errorf("reports[0].ColType = %q, want %q", reports[0].ColType, "Stats")
	}
	if reports[1].ColType != "Attack" {
		t.Errorf("reports[1].ColType = %q, want %q", reports[1].ColType, "Attack")
	}
}

func TestBestPrefersError(t *testing.T) {
	s := NewSink()
	from := s.Mark()
	s.Warnf("a.tsv", 1, 1, "warn branch")
	s.Errorf("a.tsv", 1, 1, "error branch")

	best, ok := s.Best(from)
	if !ok {
		t.Fatalf("Best() found nothing")
	}
	if best.Severity != Error || best.Message != "error branch" {
		t.Errorf("Best() = %+v, want the error-severity report", best)
	}
}
