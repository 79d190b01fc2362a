// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/luxfi/rtbridge/object"
)

// DecodingSession decodes the Values of one message. It records every object
// decoded by value in emission order so cached back references resolve,
// including references to containers whose children are still being
// decoded.
type DecodingSession struct {
	refs    Referencer
	objects []object.Object
}

// NewDecodingSession starts a message. refs may be nil, in which case any
// reference fails to decode.
func NewDecodingSession(refs Referencer) *DecodingSession {
	return &DecodingSession{refs: refs}
}

// register reserves the next index for o, which may be nil for an object
// that can only be built once its children are known.
func (s *DecodingSession) register(o object.Object) int {
	s.objects = append(s.objects, o)
	return len(s.objects) - 1
}

func serialization(err error) error {
	return fmt.Errorf("%w: %w", ErrSerialization, err)
}

// Decode converts v back to an object.
func (s *DecodingSession) Decode(v Value) (object.Object, error) {
	tag, err := v.Tag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case "ref":
		if s.refs == nil {
			return nil, fmt.Errorf("%w: reference %d without a resolver", ErrSerialization, v.Ref.ID)
		}
		return s.refs.DecodeRef(v.Ref.ID)
	case "cached":
		i := v.Cached.Index
		if i < 0 || i >= len(s.objects) {
			return nil, fmt.Errorf("%w: cached index %d out of range [0, %d)", ErrProtocol, i, len(s.objects))
		}
		if s.objects[i] == nil {
			return nil, fmt.Errorf("%w: cached index %d refers to an object under construction", ErrProtocol, i)
		}
		return s.objects[i], nil
	case "list":
		l := object.NewList()
		s.register(l)
		for _, item := range v.List.Items {
			o, err := s.Decode(item)
			if err != nil {
				return nil, err
			}
			l.Append(o)
		}
		return l, nil
	case "tuple":
		t, storage := object.MakeTuple(len(v.Tuple.Items))
		s.register(t)
		for i, item := range v.Tuple.Items {
			o, err := s.Decode(item)
			if err != nil {
				return nil, err
			}
			storage[i] = o
		}
		return t, nil
	case "set":
		set, _ := object.NewSet()
		s.register(set)
		items, err := s.decodeAll(v.Set.Items)
		if err != nil {
			return nil, err
		}
		for _, o := range items {
			if err := set.Add(o); err != nil {
				return nil, serialization(err)
			}
		}
		return set, nil
	case "frozenset":
		slot := s.register(nil)
		items, err := s.decodeAll(v.FrozenSet.Items)
		if err != nil {
			return nil, err
		}
		fs, err := object.NewFrozenSet(items...)
		if err != nil {
			return nil, serialization(err)
		}
		s.objects[slot] = fs
		return fs, nil
	case "dict":
		d := object.NewDict()
		s.register(d)
		for _, p := range v.Dict.Items {
			k, err := s.Decode(p.Key)
			if err != nil {
				return nil, err
			}
			val, err := s.Decode(p.Value)
			if err != nil {
				return nil, err
			}
			if err := d.SetItem(k, val); err != nil {
				return nil, serialization(err)
			}
		}
		return d, nil
	case "slice":
		sl, set := object.MakeSlice()
		s.register(sl)
		parts, err := s.decodeAll([]Value{v.Slice.Start, v.Slice.Stop, v.Slice.Step})
		if err != nil {
			return nil, err
		}
		set(parts[0], parts[1], parts[2])
		return sl, nil
	}

	o, err := scalar(tag, &v)
	if err != nil {
		return nil, err
	}
	s.register(o)
	return o, nil
}

func (s *DecodingSession) decodeAll(values []Value) ([]object.Object, error) {
	out := make([]object.Object, len(values))
	for i, item := range values {
		o, err := s.Decode(item)
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}

func scalar(tag string, v *Value) (object.Object, error) {
	switch tag {
	case "none":
		return object.None, nil
	case "NotImplemented":
		return object.NotImplemented, nil
	case "Ellipsis":
		return object.Ellipsis, nil
	case "bool":
		return object.Bool(v.Bool.Value), nil
	case "int":
		i, err := object.ParseInt(string(v.Int.Value))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		return i, nil
	case "float":
		return object.Float(v.Float.Value), nil
	case "complex":
		return object.Complex(complex(v.Complex.Real, v.Complex.Imag)), nil
	case "bytes":
		return object.Bytes(v.Bytes.Data), nil
	case "unicode":
		return object.Text(v.Unicode.Data), nil
	case "bytearray":
		return object.NewByteArray(v.ByteArray.Data), nil
	case "range":
		r, err := object.NewRange(v.Range.Start, v.Range.Stop, v.Range.Step)
		if err != nil {
			return nil, serialization(err)
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: unknown value tag %q", ErrProtocol, tag)
}
