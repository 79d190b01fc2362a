// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"math"
	"math/big"
	"reflect"
	"strings"
)

// maxDepth bounds recursion through nested containers.
const maxDepth = 1000

func recursionError() *Exception {
	return Errorf("RuntimeError", "maximum recursion depth exceeded in comparison")
}

// identical reports whether a and b are the same object.
func identical(a, b Object) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Truth reports the truth value of o.
func Truth(o Object) (bool, error) {
	switch v := o.(type) {
	case *Singleton:
		return v != None, nil
	case Bool:
		return bool(v), nil
	case *Int:
		return v.v.Sign() != 0, nil
	case Float:
		return v != 0, nil
	case Complex:
		return v != 0, nil
	case *Instance, *Builtin, *Exception, *Iterator:
		return true, nil
	}
	n, err := Len(o)
	if err != nil {
		return true, nil
	}
	return n != 0, nil
}

// Equal reports whether a == b.
func Equal(a, b Object) (bool, error) {
	return equal(a, b, 0)
}

func equal(a, b Object, depth int) (bool, error) {
	if depth > maxDepth {
		return false, recursionError()
	}
	if identical(a, b) {
		return true, nil
	}
	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			return numEqual(x, y), nil
		}
		return false, nil
	}
	switch x := a.(type) {
	case Text:
		y, ok := b.(Text)
		return ok && x == y, nil
	case Bytes, *ByteArray:
		xb, _ := bytesOf(a)
		yb, ok := bytesOf(b)
		return ok && xb == yb, nil
	case Range:
		y, ok := b.(Range)
		return ok && rangeEqual(x, y), nil
	case *List:
		if y, ok := b.(*List); ok {
			return seqEqual(x.items, y.items, depth)
		}
	case *Tuple:
		if y, ok := b.(*Tuple); ok {
			return seqEqual(x.items, y.items, depth)
		}
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || x.Len() != y.Len() {
			return false, nil
		}
		for _, e := range x.entries {
			v, found, err := y.Get(e.Key)
			if err != nil || !found {
				return false, err
			}
			eq, err := equal(e.Value, v, depth+1)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case *Set, *FrozenSet:
		xs := setOf(a)
		ys := setOf(b)
		if ys == nil || xs.Len() != ys.Len() {
			return false, nil
		}
		for k := range xs.index {
			if _, ok := ys.index[k]; !ok {
				return false, nil
			}
		}
		return true, nil
	case *Slice:
		y, ok := b.(*Slice)
		if !ok {
			return false, nil
		}
		return seqEqual([]Object{x.start, x.stop, x.step}, []Object{y.start, y.stop, y.step}, depth)
	}
	return false, nil
}

func seqEqual(x, y []Object, depth int) (bool, error) {
	if len(x) != len(y) {
		return false, nil
	}
	for i := range x {
		eq, err := equal(x[i], y[i], depth+1)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

func rangeEqual(x, y Range) bool {
	n := x.Len()
	if n != y.Len() {
		return false
	}
	switch n {
	case 0:
		return true
	case 1:
		return x.start == y.start
	}
	return x.start == y.start && x.step == y.step
}

func setOf(o Object) *setData {
	switch v := o.(type) {
	case *Set:
		return &v.setData
	case *FrozenSet:
		return &v.setData
	}
	return nil
}

func bytesOf(o Object) (string, bool) {
	switch v := o.(type) {
	case Bytes:
		return string(v), true
	case *ByteArray:
		return string(v.data), true
	}
	return "", false
}

// Compare evaluates a rich comparison: op is one of lt, le, eq, ne, gt, ge.
func Compare(op string, a, b Object) (bool, error) {
	switch op {
	case "eq":
		return Equal(a, b)
	case "ne":
		eq, err := Equal(a, b)
		return !eq, err
	}
	c, ordered, err := order(a, b, op, 0)
	if err != nil || !ordered {
		return false, err
	}
	switch op {
	case "lt":
		return c < 0, nil
	case "le":
		return c <= 0, nil
	case "gt":
		return c > 0, nil
	case "ge":
		return c >= 0, nil
	}
	return false, ValueError("unknown comparison %q", op)
}

var opSymbols = map[string]string{
	"lt": "<", "le": "<=", "gt": ">", "ge": ">=",
	"add": "+", "sub": "-", "mul": "*", "truediv": "/", "floordiv": "//",
	"mod": "%", "pow": "** or pow()", "lshift": "<<", "rshift": ">>",
	"and": "&", "xor": "^", "or": "|",
}

// order returns the three-way comparison of a and b. ordered is false when
// the operands are unordered (NaN).
func order(a, b Object, op string, depth int) (c int, ordered bool, err error) {
	if depth > maxDepth {
		return 0, false, recursionError()
	}
	if x, ok := toNumber(a); ok && x.kind != kindComplex {
		if y, ok := toNumber(b); ok && y.kind != kindComplex {
			return numCmp(x, y)
		}
	}
	switch x := a.(type) {
	case Text:
		if y, ok := b.(Text); ok {
			return strings.Compare(string(x), string(y)), true, nil
		}
	case Bytes, *ByteArray:
		xb, _ := bytesOf(a)
		if yb, ok := bytesOf(b); ok {
			return strings.Compare(xb, yb), true, nil
		}
	case *List:
		if y, ok := b.(*List); ok {
			return seqOrder(x.items, y.items, op, depth)
		}
	case *Tuple:
		if y, ok := b.(*Tuple); ok {
			return seqOrder(x.items, y.items, op, depth)
		}
	}
	return 0, false, TypeError("'%s' not supported between instances of '%s' and '%s'",
		opSymbols[op], a.TypeName(), b.TypeName())
}

func seqOrder(x, y []Object, op string, depth int) (int, bool, error) {
	for i := 0; i < len(x) && i < len(y); i++ {
		eq, err := equal(x[i], y[i], depth+1)
		if err != nil {
			return 0, false, err
		}
		if !eq {
			return order(x[i], y[i], op, depth+1)
		}
	}
	switch {
	case len(x) < len(y):
		return -1, true, nil
	case len(x) > len(y):
		return 1, true, nil
	}
	return 0, true, nil
}

type numKind int

const (
	kindInt numKind = iota
	kindFloat
	kindComplex
)

// number is the common view of Bool, Int, Float and Complex.
type number struct {
	kind numKind
	i    *big.Int
	f    float64
	c    complex128
}

func toNumber(o Object) (number, bool) {
	switch v := o.(type) {
	case Bool:
		if v {
			return number{kind: kindInt, i: big.NewInt(1)}, true
		}
		return number{kind: kindInt, i: big.NewInt(0)}, true
	case *Int:
		return number{kind: kindInt, i: &v.v}, true
	case Float:
		return number{kind: kindFloat, f: float64(v)}, true
	case Complex:
		return number{kind: kindComplex, c: complex128(v)}, true
	}
	return number{}, false
}

func (n number) float() float64 {
	switch n.kind {
	case kindInt:
		f, _ := new(big.Float).SetInt(n.i).Float64()
		return f
	case kindComplex:
		return real(n.c)
	}
	return n.f
}

func (n number) complex() complex128 {
	if n.kind == kindComplex {
		return n.c
	}
	return complex(n.float(), 0)
}

func (n number) bigFloat() *big.Float {
	if n.kind == kindInt {
		return new(big.Float).SetInt(n.i)
	}
	return new(big.Float).SetFloat64(n.float())
}

func numEqual(x, y number) bool {
	if x.kind == kindComplex || y.kind == kindComplex {
		return x.complex() == y.complex()
	}
	c, ordered, _ := numCmp(x, y)
	return ordered && c == 0
}

func numCmp(x, y number) (int, bool, error) {
	if x.kind == kindInt && y.kind == kindInt {
		return x.i.Cmp(y.i), true, nil
	}
	if (x.kind == kindFloat && math.IsNaN(x.f)) || (y.kind == kindFloat && math.IsNaN(y.f)) {
		return 0, false, nil
	}
	return x.bigFloat().Cmp(y.bigFloat()), true, nil
}

type floatBits uint64

type complexBits struct {
	re, im uint64
}

// Identity returns a map key standing for the identity of o. Heap objects
// key on their pointer and immutable value types on their value; floats key
// on their bits so 0.0 and -0.0 stay distinct. ok is false for objects that
// cannot be keyed.
func Identity(o Object) (key any, ok bool) {
	switch v := o.(type) {
	case Float:
		return floatBits(math.Float64bits(float64(v))), true
	case Complex:
		return complexBits{math.Float64bits(real(v)), math.Float64bits(imag(v))}, true
	}
	if t := reflect.TypeOf(o); t == nil || !t.Comparable() {
		return nil, false
	}
	return o, true
}
