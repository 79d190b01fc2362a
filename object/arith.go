// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"math"
	"math/big"
	"math/cmplx"
	"strconv"
	"strings"
)

// maxShift bounds left shifts and exponents so a single request cannot
// allocate without limit.
const maxShift = 1 << 24

func unsupported(op string, a, b Object) *Exception {
	return TypeError("unsupported operand type(s) for %s: '%s' and '%s'",
		opSymbols[op], a.TypeName(), b.TypeName())
}

// Binary applies the named binary operator (add, sub, mul, truediv,
// floordiv, mod, pow, lshift, rshift, and, xor, or) to a and b.
func Binary(op string, a, b Object) (Object, error) {
	if _, ok := opSymbols[op]; !ok || isComparison(op) {
		return nil, ValueError("unknown operator %q", op)
	}
	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			return numBinary(op, a, b, x, y)
		}
	}
	switch op {
	case "add":
		return concat(a, b)
	case "mul":
		if n, ok := b.(*Int); ok {
			return repeat(a, n)
		}
		if n, ok := b.(Bool); ok {
			return repeat(a, boolInt(n))
		}
		if n, ok := a.(*Int); ok {
			return repeat(b, n)
		}
		if n, ok := a.(Bool); ok {
			return repeat(b, boolInt(n))
		}
	case "sub", "and", "or", "xor":
		if xs, ys := setOf(a), setOf(b); xs != nil && ys != nil {
			return setBinary(op, a, xs, ys)
		}
	}
	return nil, unsupported(op, a, b)
}

func isComparison(op string) bool {
	switch op {
	case "lt", "le", "gt", "ge":
		return true
	}
	return false
}

func boolInt(b Bool) *Int {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

func numBinary(op string, a, b Object, x, y number) (Object, error) {
	switch op {
	case "and", "or", "xor", "lshift", "rshift":
		if x.kind != kindInt || y.kind != kindInt {
			return nil, unsupported(op, a, b)
		}
		ab, aok := a.(Bool)
		bb, bok := b.(Bool)
		if aok && bok {
			switch op {
			case "and":
				return ab && bb, nil
			case "or":
				return ab || bb, nil
			case "xor":
				return Bool(ab != bb), nil
			}
		}
		return intBitwise(op, x.i, y.i)
	}
	if x.kind == kindComplex || y.kind == kindComplex {
		return complexBinary(op, x.complex(), y.complex())
	}
	if x.kind == kindFloat || y.kind == kindFloat {
		return floatBinary(op, x.float(), y.float())
	}
	return intBinary(op, x.i, y.i)
}

func intBitwise(op string, x, y *big.Int) (Object, error) {
	r := new(big.Int)
	switch op {
	case "and":
		r.And(x, y)
	case "or":
		r.Or(x, y)
	case "xor":
		r.Xor(x, y)
	case "lshift", "rshift":
		if y.Sign() < 0 {
			return nil, ValueError("negative shift count")
		}
		if op == "rshift" {
			if !y.IsInt64() || y.Int64() > int64(x.BitLen()) {
				if x.Sign() < 0 {
					return NewInt(-1), nil
				}
				return NewInt(0), nil
			}
			r.Rsh(x, uint(y.Int64()))
			break
		}
		if x.Sign() == 0 {
			return NewInt(0), nil
		}
		if !y.IsInt64() || y.Int64() > maxShift {
			return nil, OverflowError("too many digits in integer")
		}
		r.Lsh(x, uint(y.Int64()))
	}
	return &Int{v: *r}, nil
}

func intBinary(op string, x, y *big.Int) (Object, error) {
	r := new(big.Int)
	switch op {
	case "add":
		r.Add(x, y)
	case "sub":
		r.Sub(x, y)
	case "mul":
		r.Mul(x, y)
	case "truediv":
		if y.Sign() == 0 {
			return nil, ZeroDivisionError("division by zero")
		}
		q, _ := new(big.Rat).SetFrac(x, y).Float64()
		if math.IsInf(q, 0) {
			return nil, OverflowError("integer division result too large for a float")
		}
		return Float(q), nil
	case "floordiv", "mod":
		if y.Sign() == 0 {
			return nil, ZeroDivisionError("integer division or modulo by zero")
		}
		q, m := floorDivMod(x, y)
		if op == "mod" {
			return &Int{v: *m}, nil
		}
		return &Int{v: *q}, nil
	case "pow":
		if y.Sign() < 0 {
			xf, _ := new(big.Float).SetInt(x).Float64()
			yf, _ := new(big.Float).SetInt(y).Float64()
			return floatBinary("pow", xf, yf)
		}
		if x.CmpAbs(big.NewInt(1)) > 0 && (!y.IsInt64() || y.Int64()*int64(x.BitLen()) > maxShift) {
			return nil, OverflowError("exponent too large")
		}
		r.Exp(x, y, nil)
	}
	return &Int{v: *r}, nil
}

// floorDivMod rounds the quotient toward negative infinity, so the modulus
// takes the sign of the divisor.
func floorDivMod(x, y *big.Int) (*big.Int, *big.Int) {
	q, m := new(big.Int).QuoRem(x, y, new(big.Int))
	if m.Sign() != 0 && m.Sign() != y.Sign() {
		q.Sub(q, big.NewInt(1))
		m.Add(m, y)
	}
	return q, m
}

func floatBinary(op string, x, y float64) (Object, error) {
	switch op {
	case "add":
		return Float(x + y), nil
	case "sub":
		return Float(x - y), nil
	case "mul":
		return Float(x * y), nil
	case "truediv":
		if y == 0 {
			return nil, ZeroDivisionError("float division by zero")
		}
		return Float(x / y), nil
	case "floordiv", "mod":
		if y == 0 {
			return nil, ZeroDivisionError("float modulo")
		}
		m := math.Mod(x, y)
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		if op == "mod" {
			return Float(m), nil
		}
		return Float(math.Floor((x - m) / y)), nil
	case "pow":
		if x == 0 && y < 0 {
			return nil, ZeroDivisionError("0.0 cannot be raised to a negative power")
		}
		if x < 0 && y != math.Trunc(y) {
			return Complex(cmplx.Pow(complex(x, 0), complex(y, 0))), nil
		}
		r := math.Pow(x, y)
		if math.IsInf(r, 0) && !math.IsInf(x, 0) && !math.IsInf(y, 0) {
			return nil, OverflowError("numerical result out of range")
		}
		return Float(r), nil
	}
	return nil, ValueError("unknown operator %q", op)
}

func complexBinary(op string, x, y complex128) (Object, error) {
	switch op {
	case "add":
		return Complex(x + y), nil
	case "sub":
		return Complex(x - y), nil
	case "mul":
		return Complex(x * y), nil
	case "truediv":
		if y == 0 {
			return nil, ZeroDivisionError("complex division by zero")
		}
		return Complex(x / y), nil
	case "pow":
		if x == 0 {
			if real(y) < 0 || imag(y) != 0 {
				return nil, ZeroDivisionError("0.0 to a negative or complex power")
			}
			if y == 0 {
				return Complex(1), nil
			}
			return Complex(0), nil
		}
		return Complex(cmplx.Pow(x, y)), nil
	}
	return nil, TypeError("can't take floor or mod of complex number.")
}

func concat(a, b Object) (Object, error) {
	switch x := a.(type) {
	case Text:
		if y, ok := b.(Text); ok {
			return x + y, nil
		}
	case Bytes:
		if y, ok := bytesOf(b); ok {
			return x + Bytes(y), nil
		}
	case *ByteArray:
		if y, ok := bytesOf(b); ok {
			return &ByteArray{data: append(x.Bytes(), y...)}, nil
		}
	case *List:
		if y, ok := b.(*List); ok {
			items := append(x.Items(), y.items...)
			return NewList(items...), nil
		}
	case *Tuple:
		if y, ok := b.(*Tuple); ok {
			return NewTuple(append(x.Items(), y.items...)...), nil
		}
	}
	return nil, unsupported("add", a, b)
}

func repeat(seq Object, n *Int) (Object, error) {
	count, ok := n.Int64()
	if !ok {
		return nil, OverflowError("cannot fit 'int' into an index-sized integer")
	}
	if count < 0 {
		count = 0
	}
	size := func(l int) error {
		if l > 0 && count > maxShift/int64(l) {
			return OverflowError("repeated sequence is too long")
		}
		return nil
	}
	switch v := seq.(type) {
	case Text:
		if err := size(len(v)); err != nil {
			return nil, err
		}
		return Text(strings.Repeat(string(v), int(count))), nil
	case Bytes:
		if err := size(len(v)); err != nil {
			return nil, err
		}
		return Bytes(strings.Repeat(string(v), int(count))), nil
	case *ByteArray:
		if err := size(len(v.data)); err != nil {
			return nil, err
		}
		return &ByteArray{data: []byte(strings.Repeat(string(v.data), int(count)))}, nil
	case *List, *Tuple:
		var items []Object
		if l, ok := v.(*List); ok {
			items = l.items
		} else {
			items = v.(*Tuple).items
		}
		if err := size(len(items)); err != nil {
			return nil, err
		}
		out := make([]Object, 0, len(items)*int(count))
		for range count {
			out = append(out, items...)
		}
		if _, ok := v.(*List); ok {
			return NewList(out...), nil
		}
		return NewTuple(out...), nil
	}
	return nil, unsupported("mul", seq, n)
}

func setBinary(op string, a Object, xs, ys *setData) (Object, error) {
	out := newSetData()
	switch op {
	case "or":
		for _, o := range xs.items {
			_ = out.add(o)
		}
		for _, o := range ys.items {
			_ = out.add(o)
		}
	case "and":
		for k, i := range xs.index {
			if _, ok := ys.index[k]; ok {
				_ = out.add(xs.items[i])
			}
		}
	case "sub":
		for k, i := range xs.index {
			if _, ok := ys.index[k]; !ok {
				_ = out.add(xs.items[i])
			}
		}
	case "xor":
		for k, i := range xs.index {
			if _, ok := ys.index[k]; !ok {
				_ = out.add(xs.items[i])
			}
		}
		for k, i := range ys.index {
			if _, ok := xs.index[k]; !ok {
				_ = out.add(ys.items[i])
			}
		}
	}
	if _, ok := a.(*FrozenSet); ok {
		return &FrozenSet{setData: out}, nil
	}
	return &Set{setData: out}, nil
}

// Unary applies neg, pos, abs or invert to o.
func Unary(op string, o Object) (Object, error) {
	n, ok := toNumber(o)
	if !ok {
		return nil, badUnary(op, o)
	}
	switch n.kind {
	case kindInt:
		r := new(big.Int)
		switch op {
		case "neg":
			r.Neg(n.i)
		case "pos":
			r.Set(n.i)
		case "abs":
			r.Abs(n.i)
		case "invert":
			r.Not(n.i)
		default:
			return nil, ValueError("unknown operator %q", op)
		}
		return &Int{v: *r}, nil
	case kindFloat:
		switch op {
		case "neg":
			return Float(-n.f), nil
		case "pos":
			return Float(n.f), nil
		case "abs":
			return Float(math.Abs(n.f)), nil
		}
	case kindComplex:
		switch op {
		case "neg":
			return Complex(-n.c), nil
		case "pos":
			return Complex(n.c), nil
		case "abs":
			return Float(cmplx.Abs(n.c)), nil
		}
	}
	return nil, badUnary(op, o)
}

func badUnary(op string, o Object) *Exception {
	sym := map[string]string{"neg": "-", "pos": "+", "abs": "abs()", "invert": "~"}[op]
	if sym == "abs()" {
		return TypeError("bad operand type for abs(): '%s'", o.TypeName())
	}
	return TypeError("bad operand type for unary %s: '%s'", sym, o.TypeName())
}

// ToInt converts o to an int the way int() does.
func ToInt(o Object) (*Int, error) {
	switch v := o.(type) {
	case Bool:
		return boolInt(v), nil
	case *Int:
		return v, nil
	case Float:
		f := float64(v)
		if math.IsNaN(f) {
			return nil, ValueError("cannot convert float NaN to integer")
		}
		if math.IsInf(f, 0) {
			return nil, OverflowError("cannot convert float infinity to integer")
		}
		i, _ := new(big.Float).SetFloat64(math.Trunc(f)).Int(nil)
		return &Int{v: *i}, nil
	case Text:
		return ParseInt(strings.ReplaceAll(string(v), "_", ""))
	case Bytes:
		return ParseInt(string(v))
	}
	return nil, TypeError("int() argument must be a string, a bytes-like object or a real number, not '%s'", o.TypeName())
}

// ToFloat converts o to a float the way float() does.
func ToFloat(o Object) (Float, error) {
	switch v := o.(type) {
	case Text, Bytes:
		s, _ := o.(Text)
		if b, ok := v.(Bytes); ok {
			s = Text(b)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
		if err != nil && !isRangeErr(err) {
			return 0, ValueError("could not convert string to float: %s", quoteText(string(s)))
		}
		return Float(f), nil
	case Complex:
		return 0, TypeError("float() argument must be a string or a real number, not 'complex'")
	}
	n, ok := toNumber(o)
	if !ok {
		return 0, TypeError("float() argument must be a string or a real number, not '%s'", o.TypeName())
	}
	if n.kind == kindInt {
		f, acc := new(big.Float).SetInt(n.i).Float64()
		if math.IsInf(f, 0) && acc != big.Exact {
			return 0, OverflowError("int too large to convert to float")
		}
		return Float(f), nil
	}
	return Float(n.f), nil
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// ToComplex converts o to a complex the way complex() does.
func ToComplex(o Object) (Complex, error) {
	if s, ok := o.(Text); ok {
		c, err := strconv.ParseComplex(strings.Trim(strings.TrimSpace(string(s)), "()"), 128)
		if err != nil {
			return 0, ValueError("complex() arg is a malformed string")
		}
		return Complex(c), nil
	}
	n, ok := toNumber(o)
	if !ok {
		return 0, TypeError("complex() first argument must be a string or a number, not '%s'", o.TypeName())
	}
	if n.kind == kindInt {
		f, err := ToFloat(o)
		if err != nil {
			return 0, err
		}
		return Complex(complex(float64(f), 0)), nil
	}
	return Complex(n.complex()), nil
}

// Index converts an integer-like object to an int; anything else is a
// TypeError.
func Index(o Object) (*Int, error) {
	switch v := o.(type) {
	case Bool:
		return boolInt(v), nil
	case *Int:
		return v, nil
	}
	return nil, TypeError("'%s' object cannot be interpreted as an integer", o.TypeName())
}

func indexInt64(o Object) (int64, error) {
	i, err := Index(o)
	if err != nil {
		return 0, err
	}
	n, ok := i.Int64()
	if !ok {
		return 0, IndexError("cannot fit 'int' into an index-sized integer")
	}
	return n, nil
}
