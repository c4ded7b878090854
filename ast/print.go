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

package ast

import (
	"strconv"
	"strings"
)

// Print renders t back into type-spec text, the inverse of package
// typeparser's Parse. The AST is used directly for this canonical
// re-emission (spec §4.2), the same role cue/format plays for CUE source:
// record fields, union alternatives, and tuple elements keep the order
// they were parsed in.
func Print(t *TypeExpr) string {
	var b strings.Builder
	print1(&b, t)
	return b.String()
}

func print1(b *strings.Builder, t *TypeExpr) {
	if t == nil {
		b.WriteString("nil")
		return
	}
	switch t.Kind {
	case PrimitiveExpr, AliasExpr:
		b.WriteString(t.Name)

	case UnionExpr:
		for i, a := range t.Alternatives {
			if i > 0 {
				b.WriteByte('|')
			}
			print1(b, a)
		}

	case ArrayExpr:
		b.WriteByte('{')
		print1(b, t.Elem)
		b.WriteByte('}')

	case MapExpr:
		b.WriteByte('{')
		print1(b, t.MapKey)
		b.WriteByte(':')
		print1(b, t.Elem)
		b.WriteByte('}')

	case TableExpr:
		b.WriteString("{}")

	case TupleExpr:
		b.WriteByte('{')
		for i, e := range t.Elements {
			if i > 0 {
				b.WriteByte(',')
			}
			print1(b, e)
		}
		b.WriteByte('}')

	case RecordExpr:
		b.WriteByte('{')
		printFields(b, t.Fields)
		b.WriteByte('}')

	case EnumExpr:
		b.WriteString("{enum:")
		b.WriteString(strings.Join(t.Labels, "|"))
		b.WriteByte('}')

	case ExtendsRecordExpr:
		b.WriteString("{extends:")
		b.WriteString(t.Parent)
		if len(t.Fields) > 0 {
			b.WriteByte(',')
			printFields(b, t.Fields)
		}
		b.WriteByte('}')

	case ExtendsTupleExpr:
		b.WriteString("{extends,")
		b.WriteString(t.Parent)
		for _, e := range t.Elements {
			b.WriteByte(',')
			print1(b, e)
		}
		b.WriteByte('}')

	case AncestorConstraintExpr:
		b.WriteString("{extends,")
		b.WriteString(t.Name)
		b.WriteByte('}')

	case SelfRefExpr:
		if t.Index >= 0 {
			b.WriteString("self._")
			b.WriteString(strconv.Itoa(t.Index))
		} else {
			b.WriteString("self.")
			b.WriteString(t.Name)
		}

	default:
		b.WriteString("invalid")
	}
}

func printFields(b *strings.Builder, fields []Field) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Name)
		b.WriteByte(':')
		print1(b, f.Type)
	}
}
