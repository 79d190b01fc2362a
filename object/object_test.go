// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"errors"
	"math"
	"testing"
)

func excType(err error) string {
	var e *Exception
	if errors.As(err, &e) {
		return e.typ
	}
	return ""
}

func mustRepr(t *testing.T, o Object) string {
	t.Helper()
	s, err := Repr(o)
	if err != nil {
		t.Fatalf("Repr: %v", err)
	}
	return s
}

func TestRepr(t *testing.T) {
	d := NewDict()
	if err := d.SetItem(Text("a"), NewInt(1)); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	r, _ := NewRange(0, 10, 3)
	tests := []struct {
		name string
		obj  Object
		want string
	}{
		{"list", NewList(NewInt(1), None, NewList()), "[1, None, []]"},
		{"single tuple", NewTuple(NewInt(1)), "(1,)"},
		{"float", Float(1), "1.0"},
		{"complex", Complex(1 + 2i), "(1+2j)"},
		{"bytes", Bytes("a\n"), `b'a\n'`},
		{"dict", d, "{'a': 1}"},
		{"range", r, "range(0, 12, 3)"},
		{"empty set", must(NewSet()), "set()"},
		{"slice", NewSlice(nil, NewInt(3), nil), "slice(None, 3, None)"},
		{"exception", ValueError("bad"), "ValueError('bad')"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustRepr(t, tt.obj); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func TestReprCycle(t *testing.T) {
	l := NewList()
	l.Append(l)
	if got := mustRepr(t, l); got != "[[...]]" {
		t.Errorf("got %q, want %q", got, "[[...]]")
	}
}

func TestNumericHashAndEquality(t *testing.T) {
	h1 := must(Hash(NewInt(1)))
	h2 := must(Hash(Float(1)))
	h3 := must(Hash(True))
	if h1 != h2 || h2 != h3 {
		t.Errorf("hashes differ: %d %d %d", h1, h2, h3)
	}
	eq, err := Equal(NewInt(1), Float(1))
	if err != nil || !eq {
		t.Errorf("1 == 1.0: got %v, %v", eq, err)
	}

	d := NewDict()
	if err := d.SetItem(NewInt(1), Text("one")); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	v, ok, err := d.Get(Float(1))
	if err != nil || !ok || v != Text("one") {
		t.Errorf("Get(1.0) = %v, %v, %v", v, ok, err)
	}

	if _, err := Hash(NewList()); excType(err) != "TypeError" {
		t.Errorf("hash(list): got %v, want TypeError", err)
	}
}

func TestBinary(t *testing.T) {
	tests := []struct {
		op   string
		a, b Object
		want string
	}{
		{"floordiv", NewInt(-7), NewInt(2), "-4"},
		{"mod", NewInt(-7), NewInt(2), "1"},
		{"mod", Float(-7), NewInt(2), "1.0"},
		{"truediv", NewInt(1), NewInt(4), "0.25"},
		{"pow", NewInt(2), NewInt(100), "1267650600228229401496703205376"},
		{"lshift", NewInt(1), NewInt(3), "8"},
		{"and", True, False, "False"},
		{"or", True, False, "True"},
		{"xor", True, False, "True"},
		{"xor", True, True, "False"},
		{"xor", True, NewInt(3), "2"},
		{"add", NewList(NewInt(1)), NewList(NewInt(2)), "[1, 2]"},
		{"mul", Text("ab"), NewInt(2), "'abab'"},
		{"sub", must(NewSet(NewInt(1), NewInt(2))), must(NewSet(NewInt(2))), "{1}"},
	}
	for _, tt := range tests {
		got, err := Binary(tt.op, tt.a, tt.b)
		if err != nil {
			t.Errorf("%s: %v", tt.op, err)
			continue
		}
		if s := mustRepr(t, got); s != tt.want {
			t.Errorf("%s: got %s, want %s", tt.op, s, tt.want)
		}
	}

	for _, op := range []string{"and", "or", "xor"} {
		if got := must(Binary(op, False, True)); got.TypeName() != "bool" {
			t.Errorf("%s of bools is %s", op, got.TypeName())
		}
	}

	if _, err := Binary("truediv", NewInt(1), NewInt(0)); excType(err) != "ZeroDivisionError" {
		t.Errorf("1/0: got %v", err)
	}
	if _, err := Binary("add", NewInt(1), Text("a")); excType(err) != "TypeError" {
		t.Errorf("1+'a': got %v", err)
	}
}

func TestCompare(t *testing.T) {
	lt, err := Compare("lt", NewTuple(NewInt(1), NewInt(2)), NewTuple(NewInt(1), NewInt(3)))
	if err != nil || !lt {
		t.Errorf("(1, 2) < (1, 3): got %v, %v", lt, err)
	}
	for _, op := range []string{"lt", "le", "gt", "ge", "eq"} {
		got, err := Compare(op, Float(math.NaN()), NewInt(1))
		if err != nil || got {
			t.Errorf("nan %s 1: got %v, %v", op, got, err)
		}
	}
	if _, err := Compare("lt", NewInt(1), Text("a")); excType(err) != "TypeError" {
		t.Errorf("1 < 'a': got %v", err)
	}
}

func TestGetItem(t *testing.T) {
	l := NewList(NewInt(0), NewInt(1), NewInt(2), NewInt(3), NewInt(4))
	got := must(GetItem(l, NewSlice(nil, nil, NewInt(-2))))
	if s := mustRepr(t, got); s != "[4, 2, 0]" {
		t.Errorf("l[::-2] = %s", s)
	}
	if v := must(GetItem(l, NewInt(-1))); mustRepr(t, v) != "4" {
		t.Errorf("l[-1] = %v", v)
	}
	if _, err := GetItem(l, NewInt(5)); excType(err) != "IndexError" {
		t.Errorf("l[5]: got %v", err)
	}

	r := must(NewRange(0, 10, 1))
	sub := must(GetItem(r, NewSlice(NewInt(2), NewInt(8), NewInt(2))))
	if eq := must(Equal(sub, must(NewRange(2, 7, 2)))); !eq {
		t.Errorf("range slice = %s", mustRepr(t, sub))
	}

	if _, err := GetItem(NewDict(), Text("x")); excType(err) != "KeyError" {
		t.Errorf("{}['x']: got %v", err)
	}
}

func TestSetAndDelItem(t *testing.T) {
	l := NewList(NewInt(0), NewInt(1), NewInt(2))
	if err := SetItem(l, NewSlice(NewInt(1), NewInt(2), nil), NewList(Text("a"), Text("b"))); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if s := mustRepr(t, l); s != "[0, 'a', 'b', 2]" {
		t.Errorf("got %s", s)
	}
	if err := DelItem(l, NewInt(0)); err != nil {
		t.Fatalf("DelItem: %v", err)
	}
	if s := mustRepr(t, l); s != "['a', 'b', 2]" {
		t.Errorf("got %s", s)
	}
	if err := SetItem(NewTuple(), NewInt(0), None); excType(err) != "TypeError" {
		t.Errorf("tuple assignment: got %v", err)
	}
}

func TestIteration(t *testing.T) {
	it := must(Iter(NewList(NewInt(1))))
	if v := must(Next(it)); mustRepr(t, v) != "1" {
		t.Errorf("first = %v", v)
	}
	_, err := Next(it)
	if !IsStopIteration(err) {
		t.Errorf("got %v, want StopIteration", err)
	}
	ok, err := Contains(must(NewRange(0, 10, 2)), NewInt(4))
	if err != nil || !ok {
		t.Errorf("4 in range(0, 10, 2): %v, %v", ok, err)
	}
}

func TestRangeBounds(t *testing.T) {
	tests := []struct {
		name              string
		start, stop, step int64
		wantStop, wantLen int64
	}{
		{"canonical stop", 0, 10, 3, 12, 4},
		{"empty", 5, 1, 1, 5, 0},
		{"negative step", 10, 0, -3, -2, 4},
		{"last element at max", 0, math.MaxInt64 - 1, 2, math.MaxInt64 - 1, 1<<62 - 1},
		{"min step", math.MaxInt64, -1, math.MinInt64, -1, 1},
		{"min step empty", 0, 1, math.MinInt64, 0, 0},
		{"max step", math.MinInt64, math.MaxInt64 - 1, math.MaxInt64, math.MaxInt64 - 1, 2},
	}
	for _, tt := range tests {
		r, err := NewRange(tt.start, tt.stop, tt.step)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if r.Stop() != tt.wantStop || r.Len() != tt.wantLen {
			t.Errorf("%s: stop %d len %d, want stop %d len %d", tt.name, r.Stop(), r.Len(), tt.wantStop, tt.wantLen)
		}
	}

	overflows := []struct {
		name              string
		start, stop, step int64
	}{
		{"canonical stop past max", 0, math.MaxInt64, 2},
		{"canonical stop past min", 0, math.MinInt64, -3},
		{"two min steps", math.MaxInt64, math.MinInt64, math.MinInt64},
		{"too many items", math.MinInt64, math.MaxInt64, 1},
	}
	for _, tt := range overflows {
		if _, err := NewRange(tt.start, tt.stop, tt.step); excType(err) != "OverflowError" {
			t.Errorf("%s: got %v, want OverflowError", tt.name, err)
		}
	}

	sub := must(GetItem(must(NewRange(0, 10, 3)), NewSlice(NewInt(1), nil, NewInt(2))))
	if r := sub.(Range); r.Start() != 3 || r.Stop() != 15 || r.Step() != 6 || r.Len() != 2 {
		t.Errorf("range(0, 10, 3)[1::2] = %d %d %d", r.Start(), r.Stop(), r.Step())
	}
}

func TestAttributes(t *testing.T) {
	inst := NewInstance("Point")
	if err := SetAttr(inst, "x", NewInt(3)); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	if v := must(GetAttr(inst, "x")); mustRepr(t, v) != "3" {
		t.Errorf("x = %v", v)
	}
	if err := DelAttr(inst, "x"); err != nil {
		t.Fatalf("DelAttr: %v", err)
	}
	if _, err := GetAttr(inst, "x"); excType(err) != "AttributeError" {
		t.Errorf("got %v, want AttributeError", err)
	}
	err := DelAttr(inst, "100%d")
	if excType(err) != "AttributeError" {
		t.Fatalf("got %v, want AttributeError", err)
	}
	if msg := err.(*Exception).Message(); msg != "'Point' object has no attribute '100%d'" {
		t.Errorf("message = %q", msg)
	}

	l := NewList()
	appendFn := must(GetAttr(l, "append"))
	if _, err := Call(appendFn, []Object{NewInt(7)}, nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if s := mustRepr(t, l); s != "[7]" {
		t.Errorf("got %s", s)
	}
}

func TestBuiltins(t *testing.T) {
	b := DefaultBuiltins()
	call := func(name string, args ...Object) Object {
		t.Helper()
		v, err := Call(b[name], args, nil)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		return v
	}
	if s := mustRepr(t, call("sorted", NewList(NewInt(3), NewInt(1), NewInt(2)))); s != "[1, 2, 3]" {
		t.Errorf("sorted = %s", s)
	}
	if s := mustRepr(t, call("sum", NewList(NewInt(1), NewInt(2)))); s != "3" {
		t.Errorf("sum = %s", s)
	}
	if s := mustRepr(t, call("int", Text("42"))); s != "42" {
		t.Errorf("int = %s", s)
	}
	if s := mustRepr(t, call("len", Text("héllo"))); s != "5" {
		t.Errorf("len = %s", s)
	}
	if _, err := Call(b["int"], []Object{Text("x")}, nil); excType(err) != "ValueError" {
		t.Errorf("int('x'): got %v", err)
	}
	exc := call("ValueError", Text("boom"))
	if e, ok := exc.(*Exception); !ok || e.Error() != "ValueError: boom" {
		t.Errorf("exception = %v", exc)
	}
}
