// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package codec converts runtime objects to and from the tagged wire Value.
//
// A Value is an externally tagged union: exactly one field is set and it
// serializes as {"<tag>": {...}}. Identity within one message is preserved
// by the encoding and decoding sessions; identity across messages is carried
// by references resolved through a Referencer.
package codec

import (
	"encoding/json"
	"fmt"
)

// Empty is the body of the unit variants.
type Empty struct{}

// Scalar bodies.
type (
	BoolValue struct {
		Value bool `json:"value" cbor:"value"`
	}
	IntValue struct {
		Value json.Number `json:"value" cbor:"value"`
	}
	FloatValue struct {
		Value float64 `json:"value" cbor:"value"`
	}
	ComplexValue struct {
		Real float64 `json:"real" cbor:"real"`
		Imag float64 `json:"imag" cbor:"imag"`
	}
	DataValue struct {
		Data []byte `json:"data" cbor:"data"`
	}
	RangeValue struct {
		Start int64 `json:"start" cbor:"start"`
		Stop  int64 `json:"stop" cbor:"stop"`
		Step  int64 `json:"step" cbor:"step"`
	}
)

// Composite bodies.
type (
	ItemsValue struct {
		Items []Value `json:"items" cbor:"items"`
	}
	Pair struct {
		Key   Value `json:"key" cbor:"key"`
		Value Value `json:"value" cbor:"value"`
	}
	DictValue struct {
		Items []Pair `json:"items" cbor:"items"`
	}
	SliceValue struct {
		Start Value `json:"start" cbor:"start"`
		Stop  Value `json:"stop" cbor:"stop"`
		Step  Value `json:"step" cbor:"step"`
	}
	RefValue struct {
		ID int64 `json:"id" cbor:"id"`
	}
	CachedValue struct {
		Index int `json:"index" cbor:"index"`
	}
)

// Value is one node of the wire representation.
type Value struct {
	None           *Empty        `json:"none,omitempty" cbor:"none,omitempty"`
	NotImplemented *Empty        `json:"NotImplemented,omitempty" cbor:"NotImplemented,omitempty"`
	Ellipsis       *Empty        `json:"Ellipsis,omitempty" cbor:"Ellipsis,omitempty"`
	Bool           *BoolValue    `json:"bool,omitempty" cbor:"bool,omitempty"`
	Int            *IntValue     `json:"int,omitempty" cbor:"int,omitempty"`
	Float          *FloatValue   `json:"float,omitempty" cbor:"float,omitempty"`
	Complex        *ComplexValue `json:"complex,omitempty" cbor:"complex,omitempty"`
	Bytes          *DataValue    `json:"bytes,omitempty" cbor:"bytes,omitempty"`
	Unicode        *DataValue    `json:"unicode,omitempty" cbor:"unicode,omitempty"`
	ByteArray      *DataValue    `json:"bytearray,omitempty" cbor:"bytearray,omitempty"`
	Range          *RangeValue   `json:"range,omitempty" cbor:"range,omitempty"`
	List           *ItemsValue   `json:"list,omitempty" cbor:"list,omitempty"`
	Tuple          *ItemsValue   `json:"tuple,omitempty" cbor:"tuple,omitempty"`
	Set            *ItemsValue   `json:"set,omitempty" cbor:"set,omitempty"`
	FrozenSet      *ItemsValue   `json:"frozenset,omitempty" cbor:"frozenset,omitempty"`
	Dict           *DictValue    `json:"dict,omitempty" cbor:"dict,omitempty"`
	Slice          *SliceValue   `json:"slice,omitempty" cbor:"slice,omitempty"`
	Ref            *RefValue     `json:"ref,omitempty" cbor:"ref,omitempty"`
	Cached         *CachedValue  `json:"cached,omitempty" cbor:"cached,omitempty"`
}

// Tag returns the name of the single variant that is set. It fails with
// ErrProtocol when none or several are set.
func (v *Value) Tag() (string, error) {
	tag := ""
	set := func(name string, present bool) error {
		if !present {
			return nil
		}
		if tag != "" {
			return fmt.Errorf("%w: value has both %q and %q", ErrProtocol, tag, name)
		}
		tag = name
		return nil
	}
	for _, f := range []struct {
		name    string
		present bool
	}{
		{"none", v.None != nil},
		{"NotImplemented", v.NotImplemented != nil},
		{"Ellipsis", v.Ellipsis != nil},
		{"bool", v.Bool != nil},
		{"int", v.Int != nil},
		{"float", v.Float != nil},
		{"complex", v.Complex != nil},
		{"bytes", v.Bytes != nil},
		{"unicode", v.Unicode != nil},
		{"bytearray", v.ByteArray != nil},
		{"range", v.Range != nil},
		{"list", v.List != nil},
		{"tuple", v.Tuple != nil},
		{"set", v.Set != nil},
		{"frozenset", v.FrozenSet != nil},
		{"dict", v.Dict != nil},
		{"slice", v.Slice != nil},
		{"ref", v.Ref != nil},
		{"cached", v.Cached != nil},
	} {
		if err := set(f.name, f.present); err != nil {
			return "", err
		}
	}
	if tag == "" {
		return "", fmt.Errorf("%w: value has no variant", ErrProtocol)
	}
	return tag, nil
}

// Constructors for the variants a caller typically builds by hand.

func RefTo(id int64) Value     { return Value{Ref: &RefValue{ID: id}} }
func CachedAt(index int) Value { return Value{Cached: &CachedValue{Index: index}} }
func TextValue(s string) Value { return Value{Unicode: &DataValue{Data: []byte(s)}} }
