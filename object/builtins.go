// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package object

// DefaultBuiltins returns a fresh builtin namespace: the singletons, the
// type constructors, a handful of builtin functions and the exception types.
func DefaultBuiltins() map[string]Object {
	b := map[string]Object{
		"None":           None,
		"True":           True,
		"False":          False,
		"NotImplemented": NotImplemented,
		"Ellipsis":       Ellipsis,
	}
	add := func(name string, fn BuiltinFunc) {
		b[name] = NewBuiltin(name, fn)
	}

	add("len", unary("len", func(o Object) (Object, error) {
		n, err := Len(o)
		if err != nil {
			return nil, err
		}
		return NewInt(int64(n)), nil
	}))
	add("repr", unary("repr", func(o Object) (Object, error) {
		s, err := Repr(o)
		return Text(s), err
	}))
	add("str", optional("str", Text(""), func(o Object) (Object, error) {
		s, err := Str(o)
		return Text(s), err
	}))
	add("int", optional("int", NewInt(0), func(o Object) (Object, error) { return ToInt(o) }))
	add("float", optional("float", Float(0), func(o Object) (Object, error) { return ToFloat(o) }))
	add("bool", optional("bool", False, func(o Object) (Object, error) {
		t, err := Truth(o)
		return Bool(t), err
	}))
	add("complex", func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs("complex", args, 0, 2); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return Complex(0), nil
		}
		re, err := ToComplex(args[0])
		if err != nil || len(args) == 1 {
			return re, err
		}
		im, err := ToComplex(args[1])
		if err != nil {
			return nil, err
		}
		return re + im*1i, nil
	})
	add("hash", unary("hash", func(o Object) (Object, error) {
		h, err := Hash(o)
		if err != nil {
			return nil, err
		}
		return NewInt(h), nil
	}))
	add("abs", unary("abs", func(o Object) (Object, error) { return Unary("abs", o) }))
	add("iter", unary("iter", func(o Object) (Object, error) { return Iter(o) }))
	add("next", func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs("next", args, 1, 2); err != nil {
			return nil, err
		}
		v, err := Next(args[0])
		if IsStopIteration(err) && len(args) == 2 {
			return args[1], nil
		}
		return v, err
	})

	add("list", optional("list", nil, func(o Object) (Object, error) {
		items, err := Iterate(o)
		return NewList(items...), err
	}))
	add("tuple", optional("tuple", nil, func(o Object) (Object, error) {
		items, err := Iterate(o)
		return NewTuple(items...), err
	}))
	add("set", optional("set", nil, func(o Object) (Object, error) {
		items, err := Iterate(o)
		if err != nil {
			return nil, err
		}
		return NewSet(items...)
	}))
	add("frozenset", optional("frozenset", nil, func(o Object) (Object, error) {
		items, err := Iterate(o)
		if err != nil {
			return nil, err
		}
		return NewFrozenSet(items...)
	}))
	add("dict", func(args []Object, kwargs *Dict) (Object, error) {
		if err := wantArgs("dict", args, 0, 1); err != nil {
			return nil, err
		}
		d := NewDict()
		if len(args) == 1 {
			if err := updateDict(d, args[0]); err != nil {
				return nil, err
			}
		}
		for _, e := range kwargs.entries {
			if err := d.SetItem(e.Key, e.Value); err != nil {
				return nil, err
			}
		}
		return d, nil
	})
	add("bytes", optional("bytes", nil, func(o Object) (Object, error) {
		data, err := byteSource(o)
		return Bytes(data), err
	}))
	add("bytearray", optional("bytearray", nil, func(o Object) (Object, error) {
		data, err := byteSource(o)
		return &ByteArray{data: data}, err
	}))
	rangeFn := func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs("range", args, 1, 3); err != nil {
			return nil, err
		}
		bounds := make([]int64, len(args))
		for i, a := range args {
			n, err := indexInt64(a)
			if err != nil {
				return nil, err
			}
			bounds[i] = n
		}
		switch len(bounds) {
		case 1:
			return NewRange(0, bounds[0], 1)
		case 2:
			return NewRange(bounds[0], bounds[1], 1)
		}
		return NewRange(bounds[0], bounds[1], bounds[2])
	}
	add("range", rangeFn)
	add("xrange", rangeFn)
	add("slice", func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs("slice", args, 1, 3); err != nil {
			return nil, err
		}
		switch len(args) {
		case 1:
			return NewSlice(nil, args[0], nil), nil
		case 2:
			return NewSlice(args[0], args[1], nil), nil
		}
		return NewSlice(args[0], args[1], args[2]), nil
	})
	add("object", func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs("object", args, 0, 0); err != nil {
			return nil, err
		}
		return NewInstance("object"), nil
	})

	add("getattr", func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs("getattr", args, 2, 3); err != nil {
			return nil, err
		}
		name, err := attrName(args[1])
		if err != nil {
			return nil, err
		}
		v, err := GetAttr(args[0], name)
		if err != nil && len(args) == 3 {
			return args[2], nil
		}
		return v, err
	})
	add("setattr", func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs("setattr", args, 3, 3); err != nil {
			return nil, err
		}
		name, err := attrName(args[1])
		if err != nil {
			return nil, err
		}
		return None, SetAttr(args[0], name, args[2])
	})
	add("hasattr", func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs("hasattr", args, 2, 2); err != nil {
			return nil, err
		}
		name, err := attrName(args[1])
		if err != nil {
			return nil, err
		}
		_, err = GetAttr(args[0], name)
		return Bool(err == nil), nil
	})
	add("sorted", unary("sorted", func(o Object) (Object, error) {
		items, err := Iterate(o)
		if err != nil {
			return nil, err
		}
		if err := sortObjects(items); err != nil {
			return nil, err
		}
		return NewList(items...), nil
	}))
	add("sum", func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs("sum", args, 1, 2); err != nil {
			return nil, err
		}
		items, err := Iterate(args[0])
		if err != nil {
			return nil, err
		}
		var total Object = NewInt(0)
		if len(args) == 2 {
			total = args[1]
		}
		for _, item := range items {
			if total, err = Binary("add", total, item); err != nil {
				return nil, err
			}
		}
		return total, nil
	})

	for _, name := range []string{
		"Exception", "TypeError", "ValueError", "KeyError", "IndexError",
		"AttributeError", "RuntimeError", "ZeroDivisionError", "OverflowError",
		"StopIteration",
	} {
		add(name, func(args []Object, _ *Dict) (Object, error) {
			return NewException(name, args...), nil
		})
	}
	return b
}

func unary(name string, fn func(Object) (Object, error)) BuiltinFunc {
	return func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs(name, args, 1, 1); err != nil {
			return nil, err
		}
		return fn(args[0])
	}
}

// optional wraps a one-argument constructor whose argument may be omitted.
// When def is nil the constructor runs on an empty tuple.
func optional(name string, def Object, fn func(Object) (Object, error)) BuiltinFunc {
	return func(args []Object, _ *Dict) (Object, error) {
		if err := wantArgs(name, args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			if def != nil {
				return def, nil
			}
			return fn(NewTuple())
		}
		return fn(args[0])
	}
}

func attrName(o Object) (string, error) {
	s, ok := o.(Text)
	if !ok {
		return "", TypeError("attribute name must be string, not '%s'", o.TypeName())
	}
	return string(s), nil
}

// byteSource accepts bytes-like objects, a length, or an iterable of ints.
func byteSource(o Object) ([]byte, error) {
	if s, ok := bytesOf(o); ok {
		return []byte(s), nil
	}
	if n, err := indexInt64(o); err == nil {
		if n < 0 {
			return nil, ValueError("negative count")
		}
		if n > maxShift {
			return nil, OverflowError("byte string is too large")
		}
		return make([]byte, n), nil
	}
	items, err := Iterate(o)
	if err != nil {
		return nil, TypeError("cannot convert '%s' object to bytes", o.TypeName())
	}
	out := make([]byte, len(items))
	for i, item := range items {
		if out[i], err = byteValue(item); err != nil {
			return nil, err
		}
	}
	return out, nil
}
