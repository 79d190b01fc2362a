// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/rtbridge/object"
)

// Handle is the client's proxy for an object that lives in the remote
// runtime. A client holds at most one live Handle per remote id, so handles
// can be compared with ==. Once a Handle is unreachable the client tells the
// runtime to release the object.
type Handle struct {
	id     int64
	client *Client
}

// TypeName implements object.Object so handles can be nested inside local
// values sent to the runtime.
func (h *Handle) TypeName() string { return "proxy" }

// ID returns the remote object id.
func (h *Handle) ID() int64 { return h.id }

// Client returns the client the handle belongs to.
func (h *Handle) Client() *Client { return h.client }

func (h *Handle) String() string { return fmt.Sprintf("<proxy %d>", h.id) }

func (h *Handle) invoke(ctx context.Context, command string, args ...object.Object) (object.Object, error) {
	return h.client.Invoke(ctx, command, append([]object.Object{h}, args...)...)
}

func (h *Handle) ref(ctx context.Context, command string, args ...object.Object) (*Handle, error) {
	return asHandle(h.invoke(ctx, command, args...))
}

// Lift copies the object one level deep; nested objects stay remote.
func (h *Handle) Lift(ctx context.Context) (object.Object, error) {
	return h.invoke(ctx, "lift")
}

// DeepLift copies the whole object graph. Opaque objects inside it still
// come back as handles.
func (h *Handle) DeepLift(ctx context.Context) (object.Object, error) {
	return h.invoke(ctx, "deeplift")
}

// Repr returns repr() of the object.
func (h *Handle) Repr(ctx context.Context) (string, error) {
	return h.text(ctx, "repr")
}

// Str returns str() of the object.
func (h *Handle) Str(ctx context.Context) (string, error) {
	return h.text(ctx, "str")
}

func (h *Handle) text(ctx context.Context, command string) (string, error) {
	o, err := h.invoke(ctx, command)
	if err != nil {
		return "", err
	}
	s, ok := o.(object.Text)
	if !ok {
		return "", fmt.Errorf("%w: %s returned %s", ErrProtocol, command, o.TypeName())
	}
	return string(s), nil
}

func (h *Handle) GetAttr(ctx context.Context, name string) (*Handle, error) {
	return h.ref(ctx, "getattr", object.Text(name))
}

func (h *Handle) SetAttr(ctx context.Context, name string, value object.Object) error {
	_, err := h.invoke(ctx, "setattr", object.Text(name), value)
	return err
}

func (h *Handle) DelAttr(ctx context.Context, name string) error {
	_, err := h.invoke(ctx, "delattr", object.Text(name))
	return err
}

// Call calls the object. kwargs may be nil.
func (h *Handle) Call(ctx context.Context, args []object.Object, kwargs *object.Dict) (*Handle, error) {
	if kwargs == nil {
		kwargs = object.NewDict()
	}
	return h.ref(ctx, "call", object.NewTuple(args...), kwargs)
}

func (h *Handle) Len(ctx context.Context) (int64, error) {
	return h.integer(ctx, "len")
}

// Hash returns hash() of the object.
func (h *Handle) Hash(ctx context.Context) (int64, error) {
	return h.integer(ctx, "hash")
}

func (h *Handle) integer(ctx context.Context, command string) (int64, error) {
	o, err := h.invoke(ctx, command)
	if err != nil {
		return 0, err
	}
	i, ok := o.(*object.Int)
	if !ok {
		return 0, fmt.Errorf("%w: %s returned %s", ErrProtocol, command, o.TypeName())
	}
	n, ok := i.Int64()
	if !ok {
		return 0, fmt.Errorf("%s result %s overflows int64", command, i)
	}
	return n, nil
}

func (h *Handle) GetItem(ctx context.Context, key object.Object) (*Handle, error) {
	return h.ref(ctx, "getitem", key)
}

func (h *Handle) SetItem(ctx context.Context, key, value object.Object) error {
	_, err := h.invoke(ctx, "setitem", key, value)
	return err
}

func (h *Handle) DelItem(ctx context.Context, key object.Object) error {
	_, err := h.invoke(ctx, "delitem", key)
	return err
}

func (h *Handle) Contains(ctx context.Context, item object.Object) (bool, error) {
	return h.truth(ctx, "contains", item)
}

// Iter returns an iterator over the object.
func (h *Handle) Iter(ctx context.Context) (*Handle, error) {
	return h.ref(ctx, "iter")
}

// Next advances an iterator. ok is false once it is exhausted.
func (h *Handle) Next(ctx context.Context) (item *Handle, ok bool, err error) {
	item, err = h.ref(ctx, "next")
	if errors.Is(err, ErrStopIteration) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// Compare evaluates a rich comparison; op is one of lt, le, eq, ne, gt, ge.
func (h *Handle) Compare(ctx context.Context, op string, other object.Object) (bool, error) {
	return h.truth(ctx, op, other)
}

// Equal evaluates h == other in the runtime.
func (h *Handle) Equal(ctx context.Context, other object.Object) (bool, error) {
	return h.truth(ctx, "eq", other)
}

// Bool returns the truth value of the object.
func (h *Handle) Bool(ctx context.Context) (bool, error) {
	return h.truth(ctx, "bool")
}

func (h *Handle) truth(ctx context.Context, command string, args ...object.Object) (bool, error) {
	o, err := h.invoke(ctx, command, args...)
	if err != nil {
		return false, err
	}
	b, ok := o.(object.Bool)
	if !ok {
		return false, fmt.Errorf("%w: %s returned %s", ErrProtocol, command, o.TypeName())
	}
	return bool(b), nil
}

// Binary applies an arithmetic or bitwise operator with h on the left: add,
// sub, mul, truediv, floordiv, mod, pow, lshift, rshift, and, xor, or.
func (h *Handle) Binary(ctx context.Context, op string, other object.Object) (*Handle, error) {
	return h.ref(ctx, op, other)
}

// Unary applies neg, pos, abs or invert.
func (h *Handle) Unary(ctx context.Context, op string) (*Handle, error) {
	return h.ref(ctx, op)
}

// Int converts the object with int().
func (h *Handle) Int(ctx context.Context) (*object.Int, error) {
	o, err := h.invoke(ctx, "int")
	if err != nil {
		return nil, err
	}
	i, ok := o.(*object.Int)
	if !ok {
		return nil, fmt.Errorf("%w: int returned %s", ErrProtocol, o.TypeName())
	}
	return i, nil
}

// Float converts the object with float().
func (h *Handle) Float(ctx context.Context) (float64, error) {
	o, err := h.invoke(ctx, "float")
	if err != nil {
		return 0, err
	}
	f, ok := o.(object.Float)
	if !ok {
		return 0, fmt.Errorf("%w: float returned %s", ErrProtocol, o.TypeName())
	}
	return float64(f), nil
}
