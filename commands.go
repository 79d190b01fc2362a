// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"context"

	"github.com/luxfi/rtbridge/codec"
	"github.com/luxfi/rtbridge/object"
)

type handlerFunc func(ctx context.Context, s *Session, args []object.Object) (object.Object, error)

// command is one entry of the server's command table. The result is
// encoded at depth.
type command struct {
	name             string
	minArgs, maxArgs int
	depth            codec.Depth
	run              handlerFunc
}

func commandTable() map[string]command {
	t := make(map[string]command)
	add := func(name string, args int, depth codec.Depth, run handlerFunc) {
		t[name] = command{name: name, minArgs: args, maxArgs: args, depth: depth, run: run}
	}
	unary := func(fn func(object.Object) (object.Object, error)) handlerFunc {
		return func(_ context.Context, _ *Session, args []object.Object) (object.Object, error) {
			return fn(args[0])
		}
	}
	binary := func(fn func(a, b object.Object) (object.Object, error)) handlerFunc {
		return func(_ context.Context, _ *Session, args []object.Object) (object.Object, error) {
			return fn(args[0], args[1])
		}
	}
	reflect := unary(func(o object.Object) (object.Object, error) { return o, nil })

	add("ping", 0, codec.Deep, func(context.Context, *Session, []object.Object) (object.Object, error) {
		return object.None, nil
	})

	// The object comes back unchanged; only the encoding depth differs.
	add("project", 1, codec.Ref, reflect)
	add("lift", 1, codec.Shallow, reflect)
	add("deeplift", 1, codec.Deep, reflect)

	add("del", 1, codec.Deep, func(_ context.Context, s *Session, args []object.Object) (object.Object, error) {
		s.cache.Release(args[0])
		return object.None, nil
	})
	add("builtin", 1, codec.Ref, func(_ context.Context, s *Session, args []object.Object) (object.Object, error) {
		name, err := textArg(args[0], "builtin name")
		if err != nil {
			return nil, err
		}
		b, ok := s.server.builtins[name]
		if !ok {
			return nil, object.AttributeError("module 'builtins' has no attribute '%s'", name)
		}
		return b, nil
	})

	// String conversion
	add("repr", 1, codec.Deep, unary(func(o object.Object) (object.Object, error) {
		r, err := object.Repr(o)
		return object.Text(r), err
	}))
	add("str", 1, codec.Deep, unary(func(o object.Object) (object.Object, error) {
		r, err := object.Str(o)
		return object.Text(r), err
	}))

	// Comparison
	for _, op := range []string{"lt", "le", "eq", "ne", "gt", "ge"} {
		add(op, 2, codec.Deep, binary(func(a, b object.Object) (object.Object, error) {
			r, err := object.Compare(op, a, b)
			return object.Bool(r), err
		}))
	}
	add("bool", 1, codec.Deep, unary(func(o object.Object) (object.Object, error) {
		r, err := object.Truth(o)
		return object.Bool(r), err
	}))
	add("hash", 1, codec.Deep, unary(func(o object.Object) (object.Object, error) {
		h, err := object.Hash(o)
		if err != nil {
			return nil, err
		}
		return object.NewInt(h), nil
	}))

	// Attribute access
	add("getattr", 2, codec.Ref, func(_ context.Context, _ *Session, args []object.Object) (object.Object, error) {
		name, err := textArg(args[1], "attribute name")
		if err != nil {
			return nil, err
		}
		return object.GetAttr(args[0], name)
	})
	add("setattr", 3, codec.Deep, func(_ context.Context, _ *Session, args []object.Object) (object.Object, error) {
		name, err := textArg(args[1], "attribute name")
		if err != nil {
			return nil, err
		}
		return object.None, object.SetAttr(args[0], name, args[2])
	})
	add("delattr", 2, codec.Deep, func(_ context.Context, _ *Session, args []object.Object) (object.Object, error) {
		name, err := textArg(args[1], "attribute name")
		if err != nil {
			return nil, err
		}
		return object.None, object.DelAttr(args[0], name)
	})

	// Callable objects
	add("call", 3, codec.Ref, func(_ context.Context, _ *Session, args []object.Object) (object.Object, error) {
		pos, ok := args[1].(*object.Tuple)
		if !ok {
			return nil, object.TypeError("call arguments must be a tuple, not %s", args[1].TypeName())
		}
		kwargs, ok := args[2].(*object.Dict)
		if !ok {
			return nil, object.TypeError("call keywords must be a dict, not %s", args[2].TypeName())
		}
		return object.Call(args[0], pos.Items(), kwargs)
	})

	// Container types
	add("len", 1, codec.Deep, unary(func(o object.Object) (object.Object, error) {
		n, err := object.Len(o)
		if err != nil {
			return nil, err
		}
		return object.NewInt(int64(n)), nil
	}))
	add("getitem", 2, codec.Ref, binary(object.GetItem))
	add("setitem", 3, codec.Deep, func(_ context.Context, _ *Session, args []object.Object) (object.Object, error) {
		return object.None, object.SetItem(args[0], args[1], args[2])
	})
	add("delitem", 2, codec.Deep, func(_ context.Context, _ *Session, args []object.Object) (object.Object, error) {
		return object.None, object.DelItem(args[0], args[1])
	})
	add("contains", 2, codec.Deep, binary(func(container, item object.Object) (object.Object, error) {
		r, err := object.Contains(container, item)
		return object.Bool(r), err
	}))
	add("iter", 1, codec.Ref, unary(func(o object.Object) (object.Object, error) { return object.Iter(o) }))

	// Iterators
	add("next", 1, codec.Ref, unary(object.Next))

	// Numeric types
	for _, op := range []string{
		"add", "sub", "mul", "truediv", "floordiv", "mod", "pow",
		"lshift", "rshift", "and", "xor", "or",
	} {
		add(op, 2, codec.Ref, binary(func(a, b object.Object) (object.Object, error) {
			return object.Binary(op, a, b)
		}))
	}
	for _, op := range []string{"neg", "pos", "abs", "invert"} {
		add(op, 1, codec.Ref, unary(func(o object.Object) (object.Object, error) {
			return object.Unary(op, o)
		}))
	}
	add("int", 1, codec.Deep, unary(func(o object.Object) (object.Object, error) { return object.ToInt(o) }))
	add("float", 1, codec.Deep, unary(func(o object.Object) (object.Object, error) { return object.ToFloat(o) }))
	add("complex", 1, codec.Deep, unary(func(o object.Object) (object.Object, error) { return object.ToComplex(o) }))
	add("index", 1, codec.Deep, unary(func(o object.Object) (object.Object, error) { return object.Index(o) }))
	return t
}

func textArg(o object.Object, what string) (string, error) {
	s, ok := o.(object.Text)
	if !ok {
		return "", object.TypeError("%s must be str, not %s", what, o.TypeName())
	}
	return string(s), nil
}
