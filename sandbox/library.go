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

import "sort"

// DefaultFuncs returns the collection helper library spec §4.6 names for
// file- and package-scope validators: unique, sum, min, max, avg, count,
// all, any, none, filter, find, lookup, groupBy. Row-scope validators get
// these too since they're harmless (and occasionally useful) over a
// single-element self table; the validator package adds
// listMembersOfTag/isMemberOfTag separately since those need registry
// access this package deliberately has none of.
//
// Every helper charges one evaluator step per element it walks, on top of
// the one step the call itself already charged, so a helper that scans a
// large table cannot bypass the quota.
func DefaultFuncs() map[string]Func {
	return map[string]Func{
		"unique":  fnUnique,
		"sum":     fnSum,
		"min":     fnMin,
		"max":     fnMax,
		"avg":     fnAvg,
		"count":   fnCount,
		"all":     fnAll,
		"any":     fnAny,
		"none":    fnNone,
		"filter":  fnFilter,
		"find":    fnFind,
		"lookup":  fnLookup,
		"groupBy": fnGroupBy,
	}
}

func chargeN(ev *Evaluator, n int) error {
	for i := 0; i < n; i++ {
		if err := ev.charge(); err != nil {
			return err
		}
	}
	return nil
}

func fnUnique(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KList {
		return Bool(false), nil
	}
	seen := map[string]bool{}
	for _, v := range args[0].List {
		if err := ev.charge(); err != nil {
			return Value{}, err
		}
		k := v.String()
		if seen[k] {
			return Bool(false), nil
		}
		seen[k] = true
	}
	return Bool(true), nil
}

func fnSum(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KList {
		return Num(0), nil
	}
	var total float64
	for _, v := range args[0].List {
		if err := ev.charge(); err != nil {
			return Value{}, err
		}
		total += v.Num
	}
	return Num(total), nil
}

func fnMin(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KList || len(args[0].List) == 0 {
		return Nil(), nil
	}
	best := args[0].List[0]
	for _, v := range args[0].List[1:] {
		if err := ev.charge(); err != nil {
			return Value{}, err
		}
		if compareValues(v, best) < 0 {
			best = v
		}
	}
	return best, nil
}

func fnMax(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KList || len(args[0].List) == 0 {
		return Nil(), nil
	}
	best := args[0].List[0]
	for _, v := range args[0].List[1:] {
		if err := ev.charge(); err != nil {
			return Value{}, err
		}
		if compareValues(v, best) > 0 {
			best = v
		}
	}
	return best, nil
}

func fnAvg(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KList || len(args[0].List) == 0 {
		return Num(0), nil
	}
	sum, err := fnSum(ev, args)
	if err != nil {
		return Value{}, err
	}
	return Num(sum.Num / float64(len(args[0].List))), nil
}

func fnCount(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KList {
		return Num(0), nil
	}
	return Num(float64(len(args[0].List))), nil
}

func fnAll(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KList {
		return Bool(true), nil
	}
	for _, v := range args[0].List {
		if err := ev.charge(); err != nil {
			return Value{}, err
		}
		if !v.Truthy() {
			return Bool(false), nil
		}
	}
	return Bool(true), nil
}

func fnAny(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KList {
		return Bool(false), nil
	}
	for _, v := range args[0].List {
		if err := ev.charge(); err != nil {
			return Value{}, err
		}
		if v.Truthy() {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func fnNone(ev *Evaluator, args []Value) (Value, error) {
	v, err := fnAny(ev, args)
	if err != nil {
		return Value{}, err
	}
	return Bool(!v.Bool), nil
}

// fnFilter/fnFind take a list and a field name plus expected value,
// rather than a callback: the sandbox has no function values of its own
// (spec §5 forbids arbitrary user-defined recursion budgets stacking),
// so "predicate" here is the same field-equality shape lookup uses.
func fnFilter(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 3 || args[0].Kind != KList {
		return List(nil), nil
	}
	field, want := args[1].String(), args[2]
	var out []Value
	for _, v := range args[0].List {
		if err := ev.charge(); err != nil {
			return Value{}, err
		}
		if v.Kind == KTable && valuesEqual(v.Table[field], want) {
			out = append(out, v)
		}
	}
	return List(out), nil
}

func fnFind(ev *Evaluator, args []Value) (Value, error) {
	filtered, err := fnFilter(ev, args)
	if err != nil {
		return Value{}, err
	}
	if len(filtered.List) == 0 {
		return Nil(), nil
	}
	return filtered.List[0], nil
}

func fnLookup(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 2 || args[0].Kind != KTable {
		return Nil(), nil
	}
	if err := ev.charge(); err != nil {
		return Value{}, err
	}
	v, ok := args[0].Table[args[1].String()]
	if !ok {
		return Nil(), nil
	}
	return v, nil
}

func fnGroupBy(ev *Evaluator, args []Value) (Value, error) {
	if len(args) != 2 || args[0].Kind != KList {
		return Table(nil), nil
	}
	field := args[1].String()
	groups := map[string][]Value{}
	var order []string
	for _, v := range args[0].List {
		if err := ev.charge(); err != nil {
			return Value{}, err
		}
		if v.Kind != KTable {
			continue
		}
		key := v.Table[field].String()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], v)
	}
	sort.Strings(order)
	out := map[string]Value{}
	for _, k := range order {
		out[k] = List(groups[k])
	}
	return Table(out), nil
}
