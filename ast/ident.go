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

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// identRE matches spec §6.3's Identifier production:
// [_A-Za-z][_A-Za-z0-9]*
var identRE = regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*$`)

var digitsRE = regexp.MustCompile(`^[0-9]+$`)

// NormalizeText runs NFC normalization on raw header/identifier text
// before any lexical check. Header tokens are author-typed TSV text and
// may carry look-alike Unicode forms (combining marks, different
// normalization forms of the same glyph); normalizing first means two
// spellings of what a human reads as the same identifier are treated
// identically, the way cue/ast relies on golang.org/x/text for its own
// text-layer concerns.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// IsValidIdentifier reports whether ident matches spec §6.3's Identifier
// grammar and is not one of the reserved names: "self", "_N" for any
// non-negative integer N, and (except where allowTrailingUnderscore is set,
// for record field names) a name ending in "_".
func IsValidIdentifier(ident string, allowTrailingUnderscore bool) bool {
	ident = NormalizeText(ident)
	if ident == "" || !identRE.MatchString(ident) {
		return false
	}
	if IsReservedName(ident) {
		return false
	}
	if !allowTrailingUnderscore && strings.HasSuffix(ident, "_") {
		return false
	}
	return true
}

// IsReservedName reports whether name is "self" or matches "_N" for a
// non-negative integer N, the two reserved forms spec §3/§6.3 forbid as
// registered type names, enum labels, or record field names.
func IsReservedName(name string) bool {
	if name == "self" {
		return true
	}
	if strings.HasPrefix(name, "_") {
		rest := name[1:]
		if rest != "" && digitsRE.MatchString(rest) {
			if _, err := strconv.Atoi(rest); err == nil {
				return true
			}
		}
	}
	return false
}

// IsValidName reports whether name is spec §6.3's dotted-identifier Name
// production: one or more Identifiers joined by '.', e.g. "Item.sword".
func IsValidName(name string) bool {
	parts := strings.Split(NormalizeText(name), ".")
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if !IsValidIdentifier(p, false) {
			return false
		}
	}
	return true
}

// SelfIndexField parses "_N" into N, reporting ok=false if s is not of
// that reserved form. It is used to recognize positional tuple field names
// (_1, _2, ...) when grouping exploded columns by root (spec §4.5.6).
func SelfIndexField(s string) (n int, ok bool) {
	if !strings.HasPrefix(s, "_") {
		return 0, false
	}
	rest := s[1:]
	if rest == "" || !digitsRE.MatchString(rest) {
		return 0, false
	}
	v, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return v, true
}
