// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package object implements the heap of the bridged runtime: the dynamically
// typed values a server session retains and a client proxies.
//
// Scalars that are immutable Go value types (Bool, Float, Complex, Bytes,
// Text, Range) compare by value. Everything else is a pointer and carries
// identity, which is what the codec's per-message cache and the server's
// object cache key on.
package object

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Object is any value that can live in the runtime heap.
type Object interface {
	TypeName() string
}

// Singleton is one of the unit values None, NotImplemented and Ellipsis.
type Singleton struct {
	name     string
	typeName string
}

var (
	None           = &Singleton{name: "None", typeName: "NoneType"}
	NotImplemented = &Singleton{name: "NotImplemented", typeName: "NotImplementedType"}
	Ellipsis       = &Singleton{name: "Ellipsis", typeName: "ellipsis"}
)

func (s *Singleton) TypeName() string { return s.typeName }
func (s *Singleton) String() string   { return s.name }

// Bool is a runtime boolean.
type Bool bool

const (
	True  Bool = true
	False Bool = false
)

func (Bool) TypeName() string { return "bool" }

// Int is an arbitrary precision integer. Ints are immutable once built.
type Int struct {
	v big.Int
}

// NewInt returns an Int holding i.
func NewInt(i int64) *Int {
	n := &Int{}
	n.v.SetInt64(i)
	return n
}

// NewIntFromBig returns an Int holding a copy of b.
func NewIntFromBig(b *big.Int) *Int {
	n := &Int{}
	n.v.Set(b)
	return n
}

// ParseInt parses a base-10 integer literal.
func ParseInt(s string) (*Int, error) {
	n := &Int{}
	if _, ok := n.v.SetString(strings.TrimSpace(s), 10); !ok {
		return nil, ValueError("invalid literal for int() with base 10: %s", quoteText(s))
	}
	return n, nil
}

func (*Int) TypeName() string { return "int" }

// Big returns a copy of the value.
func (i *Int) Big() *big.Int { return new(big.Int).Set(&i.v) }

// Int64 returns the value and whether it fits in an int64.
func (i *Int) Int64() (int64, bool) {
	if !i.v.IsInt64() {
		return 0, false
	}
	return i.v.Int64(), true
}

func (i *Int) String() string { return i.v.String() }

// Float is a double precision float.
type Float float64

func (Float) TypeName() string { return "float" }

// Complex is a complex number with float components.
type Complex complex128

func (Complex) TypeName() string { return "complex" }

// Bytes is an immutable byte string.
type Bytes string

func (Bytes) TypeName() string { return "bytes" }

// Text is an immutable unicode string.
type Text string

func (Text) TypeName() string { return "str" }

// ByteArray is a mutable byte buffer.
type ByteArray struct {
	data []byte
}

// NewByteArray returns a ByteArray holding a copy of b.
func NewByteArray(b []byte) *ByteArray {
	return &ByteArray{data: append([]byte{}, b...)}
}

func (*ByteArray) TypeName() string { return "bytearray" }

// Bytes returns a copy of the buffer contents.
func (a *ByteArray) Bytes() []byte { return append([]byte{}, a.data...) }

func (a *ByteArray) Len() int { return len(a.data) }

// Range is an arithmetic progression. Bounds are canonical: stop is the first
// value past the last element and an empty range has start == stop, so two
// ranges producing the same elements with the same step are equal.
type Range struct {
	start, stop, step int64
	n                 int64
}

// NewRange builds a canonical range. A zero step is a ValueError. A range
// whose length or canonical stop does not fit in an int64 is an
// OverflowError.
func NewRange(start, stop, step int64) (Range, error) {
	if step == 0 {
		return Range{}, ValueError("range() arg 3 must not be zero")
	}
	s := big.NewInt(step)
	n := new(big.Int).Sub(big.NewInt(stop), big.NewInt(start))
	if n.Sign() != s.Sign() {
		n.SetInt64(0)
	} else {
		// ceil(n / s); both operands share a sign.
		n.Add(n, s)
		n.Sub(n, big.NewInt(int64(s.Sign())))
		n.Quo(n, s)
	}
	return rangeOf(big.NewInt(start), s, n)
}

// rangeOf builds the range of n elements starting at start.
func rangeOf(start, step, n *big.Int) (Range, error) {
	stop := new(big.Int).Mul(n, step)
	stop.Add(stop, start)
	if !start.IsInt64() || !step.IsInt64() || !n.IsInt64() || !stop.IsInt64() {
		return Range{}, OverflowError("range() result has too many items")
	}
	return Range{start: start.Int64(), stop: stop.Int64(), step: step.Int64(), n: n.Int64()}, nil
}

func (Range) TypeName() string { return "range" }

func (r Range) Start() int64 { return r.start }
func (r Range) Stop() int64  { return r.stop }
func (r Range) Step() int64  { return r.step }
func (r Range) Len() int64   { return r.n }

// At returns the i-th element; i must be in [0, Len()).
func (r Range) At(i int64) int64 { return r.start + i*r.step }

// List is a mutable sequence.
type List struct {
	items []Object
}

// NewList returns a list holding items. The slice is retained.
func NewList(items ...Object) *List {
	if items == nil {
		items = []Object{}
	}
	return &List{items: items}
}

func (*List) TypeName() string { return "list" }

func (l *List) Len() int            { return len(l.items) }
func (l *List) At(i int) Object     { return l.items[i] }
func (l *List) Set(i int, o Object) { l.items[i] = o }
func (l *List) Append(o Object)     { l.items = append(l.items, o) }

// Items returns a copy of the elements.
func (l *List) Items() []Object { return append([]Object{}, l.items...) }

// Tuple is an immutable sequence.
type Tuple struct {
	items []Object
}

// NewTuple returns a tuple holding a copy of items.
func NewTuple(items ...Object) *Tuple {
	return &Tuple{items: append([]Object{}, items...)}
}

// MakeTuple allocates a tuple of n elements and returns it together with its
// backing storage. Decoders use it to register a tuple before its elements
// exist; the storage must be fully populated before the tuple is handed to
// anything but the decoder.
func MakeTuple(n int) (*Tuple, []Object) {
	t := &Tuple{items: make([]Object, n)}
	return t, t.items
}

func (*Tuple) TypeName() string { return "tuple" }

func (t *Tuple) Len() int        { return len(t.items) }
func (t *Tuple) At(i int) Object { return t.items[i] }

// Items returns a copy of the elements.
func (t *Tuple) Items() []Object { return append([]Object{}, t.items...) }

// Slice is an immutable slice object; missing bounds are None.
type Slice struct {
	start, stop, step Object
}

// NewSlice builds a slice. Nil bounds become None.
func NewSlice(start, stop, step Object) *Slice {
	orNone := func(o Object) Object {
		if o == nil {
			return None
		}
		return o
	}
	return &Slice{start: orNone(start), stop: orNone(stop), step: orNone(step)}
}

// MakeSlice allocates a slice whose bounds are filled in later through the
// returned setter. Decoders use it to register a slice before its bounds
// exist.
func MakeSlice() (*Slice, func(start, stop, step Object)) {
	s := &Slice{start: None, stop: None, step: None}
	return s, func(start, stop, step Object) {
		*s = *NewSlice(start, stop, step)
	}
}

func (*Slice) TypeName() string { return "slice" }

func (s *Slice) Start() Object { return s.start }
func (s *Slice) Stop() Object  { return s.stop }
func (s *Slice) Step() Object  { return s.step }

// Instance is an opaque object with a free-form attribute namespace.
type Instance struct {
	class string
	attrs map[string]Object
}

// NewInstance returns an empty instance reporting the given type name.
func NewInstance(class string) *Instance {
	return &Instance{class: class, attrs: make(map[string]Object)}
}

func (i *Instance) TypeName() string { return i.class }

// BuiltinFunc implements a callable builtin. kwargs is never nil.
type BuiltinFunc func(args []Object, kwargs *Dict) (Object, error)

// Builtin is a callable implemented in Go.
type Builtin struct {
	name string
	fn   BuiltinFunc
}

// NewBuiltin wraps fn as a callable named name.
func NewBuiltin(name string, fn BuiltinFunc) *Builtin {
	return &Builtin{name: name, fn: fn}
}

func (*Builtin) TypeName() string { return "builtin_function_or_method" }
func (b *Builtin) Name() string   { return b.name }

// Iterator yields objects until exhausted.
type Iterator struct {
	typeName string
	next     func() (Object, bool)
}

// NewIterator wraps next as an iterator object.
func NewIterator(typeName string, next func() (Object, bool)) *Iterator {
	return &Iterator{typeName: typeName, next: next}
}

func (it *Iterator) TypeName() string { return it.typeName }

// Exception is a runtime exception. It is both an Object, so it can be
// retained and proxied, and an error, so operations can return it.
type Exception struct {
	typ  string
	args *Tuple
}

// NewException builds an exception of the given type with args.
func NewException(typ string, args ...Object) *Exception {
	return &Exception{typ: typ, args: NewTuple(args...)}
}

// Errorf builds an exception whose single argument is the formatted message.
func Errorf(typ, format string, args ...any) *Exception {
	return NewException(typ, Text(fmt.Sprintf(format, args...)))
}

func (e *Exception) TypeName() string { return e.typ }
func (e *Exception) Args() *Tuple     { return e.args }

// Message renders the exception arguments the way str() does.
func (e *Exception) Message() string {
	switch e.args.Len() {
	case 0:
		return ""
	case 1:
		s, err := Str(e.args.At(0))
		if err != nil {
			return "<unprintable>"
		}
		return s
	}
	s, err := Repr(e.args)
	if err != nil {
		return "<unprintable>"
	}
	return s
}

func (e *Exception) Error() string {
	if msg := e.Message(); msg != "" {
		return e.typ + ": " + msg
	}
	return e.typ
}

func TypeError(format string, args ...any) *Exception {
	return Errorf("TypeError", format, args...)
}

func ValueError(format string, args ...any) *Exception {
	return Errorf("ValueError", format, args...)
}

func IndexError(format string, args ...any) *Exception {
	return Errorf("IndexError", format, args...)
}

func AttributeError(format string, args ...any) *Exception {
	return Errorf("AttributeError", format, args...)
}

func ZeroDivisionError(format string, args ...any) *Exception {
	return Errorf("ZeroDivisionError", format, args...)
}

func OverflowError(format string, args ...any) *Exception {
	return Errorf("OverflowError", format, args...)
}

// KeyError carries the missing key itself, not a message.
func KeyError(key Object) *Exception {
	return NewException("KeyError", key)
}

// StopIteration signals iterator exhaustion.
func StopIteration() *Exception {
	return NewException("StopIteration")
}

// IsStopIteration reports whether err is an exhausted-iterator exception.
func IsStopIteration(err error) bool {
	var e *Exception
	return errors.As(err, &e) && e.typ == "StopIteration"
}
