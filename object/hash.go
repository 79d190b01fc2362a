// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// hashKey returns a canonical string such that two hashable objects compare
// equal exactly when their keys do. Numbers share one key space so 1, 1.0
// and True collide, as equality demands.
func hashKey(o Object) (string, error) {
	if o == nil {
		return "", ValueError("object is not fully constructed")
	}
	switch v := o.(type) {
	case *Singleton:
		return "S" + v.name, nil
	case Bool:
		if v {
			return "n1", nil
		}
		return "n0", nil
	case *Int:
		return "n" + v.v.String(), nil
	case Float:
		return floatKey(float64(v)), nil
	case Complex:
		if imag(v) == 0 {
			return floatKey(real(v)), nil
		}
		return "c" + strconv.FormatFloat(real(v), 'g', -1, 64) + "," +
			strconv.FormatFloat(imag(v), 'g', -1, 64), nil
	case Text:
		return "t" + string(v), nil
	case Bytes:
		return "b" + string(v), nil
	case Range:
		switch v.Len() {
		case 0:
			return "r", nil
		case 1:
			return fmt.Sprintf("r%d", v.start), nil
		}
		return fmt.Sprintf("r%d,%d,%d", v.start, v.Len(), v.step), nil
	case *Tuple:
		var sb strings.Builder
		sb.WriteString("(")
		for _, item := range v.items {
			k, err := hashKey(item)
			if err != nil {
				return "", err
			}
			sb.WriteString(strconv.Itoa(len(k)))
			sb.WriteByte(':')
			sb.WriteString(k)
		}
		return sb.String(), nil
	case *FrozenSet:
		keys := make([]string, 0, len(v.items))
		for k := range v.index {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		sb.WriteString("{")
		for _, k := range keys {
			sb.WriteString(strconv.Itoa(len(k)))
			sb.WriteByte(':')
			sb.WriteString(k)
		}
		return sb.String(), nil
	case *List, *Dict, *Set, *ByteArray, *Slice:
		return "", TypeError("unhashable type: '%s'", o.TypeName())
	}
	if reflect.ValueOf(o).Kind() == reflect.Pointer {
		return fmt.Sprintf("p%p", o), nil
	}
	return "", TypeError("unhashable type: '%s'", o.TypeName())
}

func floatKey(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		i, _ := new(big.Float).SetFloat64(f).Int(nil)
		return "n" + i.String()
	}
	return "f" + strconv.FormatFloat(f, 'g', -1, 64)
}

// Hash returns the hash of a hashable object.
func Hash(o Object) (int64, error) {
	k, err := hashKey(o)
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	h.Write([]byte(k))
	return int64(h.Sum64()), nil
}

// Entry is one key/value pair of a Dict.
type Entry struct {
	Key, Value Object
}

// Dict is a mutable mapping that remembers insertion order.
type Dict struct {
	entries []Entry
	index   map[string]int
}

func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

func (*Dict) TypeName() string { return "dict" }

func (d *Dict) Len() int { return len(d.entries) }

// Get returns the value stored under key.
func (d *Dict) Get(key Object) (Object, bool, error) {
	k, err := hashKey(key)
	if err != nil {
		return nil, false, err
	}
	i, ok := d.index[k]
	if !ok {
		return nil, false, nil
	}
	return d.entries[i].Value, true, nil
}

// SetItem stores value under key, keeping the original key object when the
// key is already present.
func (d *Dict) SetItem(key, value Object) error {
	k, err := hashKey(key)
	if err != nil {
		return err
	}
	if i, ok := d.index[k]; ok {
		d.entries[i].Value = value
		return nil
	}
	d.index[k] = len(d.entries)
	d.entries = append(d.entries, Entry{Key: key, Value: value})
	return nil
}

// Delete removes key and reports whether it was present.
func (d *Dict) Delete(key Object) (bool, error) {
	k, err := hashKey(key)
	if err != nil {
		return false, err
	}
	i, ok := d.index[k]
	if !ok {
		return false, nil
	}
	delete(d.index, k)
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	for j := i; j < len(d.entries); j++ {
		kj, _ := hashKey(d.entries[j].Key)
		d.index[kj] = j
	}
	return true, nil
}

// Entries returns a copy of the pairs in insertion order.
func (d *Dict) Entries() []Entry { return append([]Entry{}, d.entries...) }

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []Object {
	keys := make([]Object, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.Key
	}
	return keys
}

// setData is the storage shared by Set and FrozenSet.
type setData struct {
	items []Object
	index map[string]int
}

func newSetData() setData { return setData{index: make(map[string]int)} }

func (s *setData) Len() int { return len(s.items) }

// Contains reports membership; an unhashable probe is a TypeError.
func (s *setData) Contains(o Object) (bool, error) {
	k, err := hashKey(o)
	if err != nil {
		return false, err
	}
	_, ok := s.index[k]
	return ok, nil
}

// Items returns a copy of the members in insertion order.
func (s *setData) Items() []Object { return append([]Object{}, s.items...) }

func (s *setData) add(o Object) error {
	k, err := hashKey(o)
	if err != nil {
		return err
	}
	if _, ok := s.index[k]; ok {
		return nil
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, o)
	return nil
}

func (s *setData) remove(o Object) (bool, error) {
	k, err := hashKey(o)
	if err != nil {
		return false, err
	}
	i, ok := s.index[k]
	if !ok {
		return false, nil
	}
	delete(s.index, k)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		kj, _ := hashKey(s.items[j])
		s.index[kj] = j
	}
	return true, nil
}

// Set is a mutable hash set.
type Set struct {
	setData
}

// NewSet builds a set from items.
func NewSet(items ...Object) (*Set, error) {
	s := &Set{setData: newSetData()}
	for _, o := range items {
		if err := s.add(o); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (*Set) TypeName() string { return "set" }

func (s *Set) Add(o Object) error { return s.add(o) }

// Discard removes o if present.
func (s *Set) Discard(o Object) (bool, error) { return s.remove(o) }

// FrozenSet is an immutable hash set.
type FrozenSet struct {
	setData
}

// NewFrozenSet builds a frozenset from items.
func NewFrozenSet(items ...Object) (*FrozenSet, error) {
	s := &FrozenSet{setData: newSetData()}
	for _, o := range items {
		if err := s.add(o); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (*FrozenSet) TypeName() string { return "frozenset" }
