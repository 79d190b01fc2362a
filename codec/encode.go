// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"fmt"

	"github.com/luxfi/rtbridge/object"
)

// Referencer resolves objects that travel by reference. The server side
// backs it with its object cache; the client side with its proxy handles.
type Referencer interface {
	EncodeRef(obj object.Object) (int64, error)
	DecodeRef(id int64) (object.Object, error)
}

// EncodingSession encodes the objects of one message. Every object encoded
// by value takes the next index in depth-first pre-order; a later encounter
// of the same object in the session is emitted as a cached back reference.
type EncodingSession struct {
	refs  Referencer
	index map[any]int
	next  int
}

// NewEncodingSession starts a message. refs may be nil, in which case any
// object that must travel by reference fails to encode.
func NewEncodingSession(refs Referencer) *EncodingSession {
	return &EncodingSession{
		refs:  refs,
		index: make(map[any]int),
	}
}

// Encode converts o to a Value. At Ref depth the object always travels by
// reference; otherwise objects with a value form are encoded structurally
// and opaque objects still travel by reference.
func (s *EncodingSession) Encode(o object.Object, depth Depth) (Value, error) {
	if o == nil {
		return Value{}, fmt.Errorf("%w: nil object", ErrSerialization)
	}
	if depth == Ref {
		return s.ref(o)
	}
	key, keyed := object.Identity(o)
	if keyed {
		if i, ok := s.index[key]; ok {
			return CachedAt(i), nil
		}
	}
	if !hasValueForm(o) {
		return s.ref(o)
	}
	if keyed {
		s.index[key] = s.next
	}
	s.next++
	return s.value(o, depth.Child())
}

func (s *EncodingSession) ref(o object.Object) (Value, error) {
	if s.refs == nil {
		return Value{}, fmt.Errorf("%w: %s cannot be sent by reference", ErrSerialization, o.TypeName())
	}
	id, err := s.refs.EncodeRef(o)
	if err != nil {
		return Value{}, err
	}
	return RefTo(id), nil
}

func hasValueForm(o object.Object) bool {
	switch o.(type) {
	case *object.Singleton, object.Bool, *object.Int, object.Float, object.Complex,
		object.Bytes, object.Text, *object.ByteArray, object.Range,
		*object.List, *object.Tuple, *object.Set, *object.FrozenSet, *object.Dict, *object.Slice:
		return true
	}
	return false
}

func (s *EncodingSession) value(o object.Object, child Depth) (Value, error) {
	switch v := o.(type) {
	case *object.Singleton:
		switch v {
		case object.None:
			return Value{None: &Empty{}}, nil
		case object.NotImplemented:
			return Value{NotImplemented: &Empty{}}, nil
		case object.Ellipsis:
			return Value{Ellipsis: &Empty{}}, nil
		}
	case object.Bool:
		return Value{Bool: &BoolValue{Value: bool(v)}}, nil
	case *object.Int:
		return Value{Int: &IntValue{Value: json.Number(v.String())}}, nil
	case object.Float:
		return Value{Float: &FloatValue{Value: float64(v)}}, nil
	case object.Complex:
		return Value{Complex: &ComplexValue{Real: real(v), Imag: imag(v)}}, nil
	case object.Bytes:
		return Value{Bytes: &DataValue{Data: []byte(v)}}, nil
	case object.Text:
		return TextValue(string(v)), nil
	case *object.ByteArray:
		return Value{ByteArray: &DataValue{Data: v.Bytes()}}, nil
	case object.Range:
		return Value{Range: &RangeValue{Start: v.Start(), Stop: v.Stop(), Step: v.Step()}}, nil
	case *object.List:
		items, err := s.items(v.Items(), child)
		return Value{List: &ItemsValue{Items: items}}, err
	case *object.Tuple:
		items, err := s.items(v.Items(), child)
		return Value{Tuple: &ItemsValue{Items: items}}, err
	case *object.Set:
		items, err := s.items(v.Items(), child)
		return Value{Set: &ItemsValue{Items: items}}, err
	case *object.FrozenSet:
		items, err := s.items(v.Items(), child)
		return Value{FrozenSet: &ItemsValue{Items: items}}, err
	case *object.Dict:
		entries := v.Entries()
		pairs := make([]Pair, len(entries))
		for i, e := range entries {
			k, err := s.Encode(e.Key, child)
			if err != nil {
				return Value{}, err
			}
			val, err := s.Encode(e.Value, child)
			if err != nil {
				return Value{}, err
			}
			pairs[i] = Pair{Key: k, Value: val}
		}
		return Value{Dict: &DictValue{Items: pairs}}, nil
	case *object.Slice:
		parts, err := s.items([]object.Object{v.Start(), v.Stop(), v.Step()}, child)
		if err != nil {
			return Value{}, err
		}
		return Value{Slice: &SliceValue{Start: parts[0], Stop: parts[1], Step: parts[2]}}, nil
	}
	return Value{}, fmt.Errorf("%w: no value form for %s", ErrSerialization, o.TypeName())
}

func (s *EncodingSession) items(objs []object.Object, depth Depth) ([]Value, error) {
	out := make([]Value, len(objs))
	for i, o := range objs {
		v, err := s.Encode(o, depth)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
