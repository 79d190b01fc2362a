// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"math/big"
	"strings"
	"unicode/utf8"
)

// Len returns the number of items in a container. Text length counts code
// points.
func Len(o Object) (int, error) {
	switch v := o.(type) {
	case Text:
		return utf8.RuneCountInString(string(v)), nil
	case Bytes:
		return len(v), nil
	case *ByteArray:
		return len(v.data), nil
	case Range:
		return int(v.Len()), nil
	case *List:
		return len(v.items), nil
	case *Tuple:
		return len(v.items), nil
	case *Dict:
		return v.Len(), nil
	case *Set:
		return v.Len(), nil
	case *FrozenSet:
		return v.Len(), nil
	}
	return 0, TypeError("object of type '%s' has no len()", o.TypeName())
}

// indices resolves the slice against a sequence of length n, clamping the
// bounds the way sequence slicing does.
func (s *Slice) indices(n int64) (start, stop, step int64, err error) {
	step = 1
	if s.step != None {
		if step, err = indexInt64(s.step); err != nil {
			return 0, 0, 0, err
		}
		if step == 0 {
			return 0, 0, 0, ValueError("slice step cannot be zero")
		}
	}
	lower, upper := int64(0), n
	if step < 0 {
		lower, upper = -1, n-1
	}
	bound := func(o Object, def int64) (int64, error) {
		if o == None {
			return def, nil
		}
		i, err := indexInt64(o)
		if err != nil {
			return 0, err
		}
		if i < 0 {
			i += n
			if i < lower {
				i = lower
			}
		} else if i > upper {
			i = upper
		}
		return i, nil
	}
	if step < 0 {
		start, err = bound(s.start, upper)
		if err == nil {
			stop, err = bound(s.stop, lower)
		}
	} else {
		start, err = bound(s.start, lower)
		if err == nil {
			stop, err = bound(s.stop, upper)
		}
	}
	return start, stop, step, err
}

// positions lists the indices the slice selects in a sequence of length n.
func (s *Slice) positions(n int64) ([]int64, error) {
	start, stop, step, err := s.indices(n)
	if err != nil {
		return nil, err
	}
	var out []int64
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, i)
	}
	return out, nil
}

func normIndex(key Object, n int, what string) (int, error) {
	i, err := indexInt64(key)
	if err != nil {
		return 0, TypeError("%s indices must be integers or slices, not %s", what, key.TypeName())
	}
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, IndexError("%s index out of range", what)
	}
	return int(i), nil
}

func pick(items []Object, pos []int64) []Object {
	out := make([]Object, len(pos))
	for i, p := range pos {
		out[i] = items[p]
	}
	return out
}

// GetItem evaluates o[key].
func GetItem(o, key Object) (Object, error) {
	sl, isSlice := key.(*Slice)
	switch v := o.(type) {
	case *List:
		if isSlice {
			pos, err := sl.positions(int64(len(v.items)))
			if err != nil {
				return nil, err
			}
			return NewList(pick(v.items, pos)...), nil
		}
		i, err := normIndex(key, len(v.items), "list")
		if err != nil {
			return nil, err
		}
		return v.items[i], nil
	case *Tuple:
		if isSlice {
			pos, err := sl.positions(int64(len(v.items)))
			if err != nil {
				return nil, err
			}
			return NewTuple(pick(v.items, pos)...), nil
		}
		i, err := normIndex(key, len(v.items), "tuple")
		if err != nil {
			return nil, err
		}
		return v.items[i], nil
	case Text:
		runes := []rune(string(v))
		if isSlice {
			pos, err := sl.positions(int64(len(runes)))
			if err != nil {
				return nil, err
			}
			var sb strings.Builder
			for _, p := range pos {
				sb.WriteRune(runes[p])
			}
			return Text(sb.String()), nil
		}
		i, err := normIndex(key, len(runes), "string")
		if err != nil {
			return nil, err
		}
		return Text(runes[i]), nil
	case Bytes, *ByteArray:
		data, _ := bytesOf(o)
		if isSlice {
			pos, err := sl.positions(int64(len(data)))
			if err != nil {
				return nil, err
			}
			out := make([]byte, len(pos))
			for i, p := range pos {
				out[i] = data[p]
			}
			if _, ok := o.(Bytes); ok {
				return Bytes(out), nil
			}
			return &ByteArray{data: out}, nil
		}
		what := "index"
		if _, ok := o.(*ByteArray); ok {
			what = "bytearray"
		}
		i, err := normIndex(key, len(data), what)
		if err != nil {
			return nil, err
		}
		return NewInt(int64(data[i])), nil
	case Range:
		n := v.Len()
		if isSlice {
			_, _, step, err := sl.indices(n)
			if err != nil {
				return nil, err
			}
			pos, _ := sl.positions(n)
			first := big.NewInt(v.stop)
			if len(pos) > 0 {
				first.SetInt64(v.At(pos[0]))
			}
			sub := new(big.Int).Mul(big.NewInt(v.step), big.NewInt(step))
			return rangeOf(first, sub, big.NewInt(int64(len(pos))))
		}
		i, err := normIndex(key, int(n), "range object")
		if err != nil {
			return nil, err
		}
		return NewInt(v.At(int64(i))), nil
	case *Dict:
		val, ok, err := v.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, KeyError(key)
		}
		return val, nil
	}
	return nil, TypeError("'%s' object is not subscriptable", o.TypeName())
}

func byteValue(o Object) (byte, error) {
	n, err := indexInt64(o)
	if err != nil {
		return 0, TypeError("'%s' object cannot be interpreted as an integer", o.TypeName())
	}
	if n < 0 || n > 255 {
		return 0, ValueError("byte must be in range(0, 256)")
	}
	return byte(n), nil
}

// SetItem evaluates o[key] = value.
func SetItem(o, key, value Object) error {
	switch v := o.(type) {
	case *List:
		if sl, ok := key.(*Slice); ok {
			return v.setSlice(sl, value)
		}
		i, err := normIndex(key, len(v.items), "list assignment")
		if err != nil {
			return err
		}
		v.items[i] = value
		return nil
	case *ByteArray:
		i, err := normIndex(key, len(v.data), "bytearray")
		if err != nil {
			return err
		}
		b, err := byteValue(value)
		if err != nil {
			return err
		}
		v.data[i] = b
		return nil
	case *Dict:
		return v.SetItem(key, value)
	}
	return TypeError("'%s' object does not support item assignment", o.TypeName())
}

func (l *List) setSlice(sl *Slice, value Object) error {
	items, err := Iterate(value)
	if err != nil {
		return err
	}
	start, stop, step, err := sl.indices(int64(len(l.items)))
	if err != nil {
		return err
	}
	if step == 1 {
		if stop < start {
			stop = start
		}
		out := make([]Object, 0, len(l.items)-int(stop-start)+len(items))
		out = append(out, l.items[:start]...)
		out = append(out, items...)
		out = append(out, l.items[stop:]...)
		l.items = out
		return nil
	}
	pos, _ := sl.positions(int64(len(l.items)))
	if len(pos) != len(items) {
		return ValueError("attempt to assign sequence of size %d to extended slice of size %d", len(items), len(pos))
	}
	for i, p := range pos {
		l.items[p] = items[i]
	}
	return nil
}

// DelItem evaluates del o[key].
func DelItem(o, key Object) error {
	switch v := o.(type) {
	case *List:
		if sl, ok := key.(*Slice); ok {
			pos, err := sl.positions(int64(len(v.items)))
			if err != nil {
				return err
			}
			drop := make(map[int64]bool, len(pos))
			for _, p := range pos {
				drop[p] = true
			}
			out := v.items[:0:0]
			for i, item := range v.items {
				if !drop[int64(i)] {
					out = append(out, item)
				}
			}
			v.items = out
			return nil
		}
		i, err := normIndex(key, len(v.items), "list assignment")
		if err != nil {
			return err
		}
		v.items = append(v.items[:i], v.items[i+1:]...)
		return nil
	case *ByteArray:
		i, err := normIndex(key, len(v.data), "bytearray")
		if err != nil {
			return err
		}
		v.data = append(v.data[:i], v.data[i+1:]...)
		return nil
	case *Dict:
		ok, err := v.Delete(key)
		if err != nil {
			return err
		}
		if !ok {
			return KeyError(key)
		}
		return nil
	}
	return TypeError("'%s' object doesn't support item deletion", o.TypeName())
}

// Contains evaluates item in container.
func Contains(container, item Object) (bool, error) {
	switch v := container.(type) {
	case Text:
		s, ok := item.(Text)
		if !ok {
			return false, TypeError("'in <string>' requires string as left operand, not %s", item.TypeName())
		}
		return strings.Contains(string(v), string(s)), nil
	case Bytes, *ByteArray:
		data, _ := bytesOf(container)
		if sub, ok := bytesOf(item); ok {
			return strings.Contains(data, sub), nil
		}
		b, err := byteValue(item)
		if err != nil {
			return false, err
		}
		return strings.IndexByte(data, b) >= 0, nil
	case Range:
		n, ok := toNumber(item)
		if !ok || n.kind == kindComplex {
			return false, nil
		}
		if n.kind == kindFloat {
			f := n.f
			if f != float64(int64(f)) {
				return false, nil
			}
			n = number{kind: kindInt, i: NewInt(int64(f)).Big()}
		}
		if !n.i.IsInt64() || v.Len() == 0 {
			return false, nil
		}
		x := n.i.Int64()
		if v.step > 0 && (x < v.start || x >= v.stop) || v.step < 0 && (x > v.start || x <= v.stop) {
			return false, nil
		}
		return (x-v.start)%v.step == 0, nil
	case *Dict:
		_, ok, err := v.Get(item)
		return ok, err
	case *Set:
		return v.Contains(item)
	case *FrozenSet:
		return v.Contains(item)
	}
	it, err := Iter(container)
	if err != nil {
		return false, TypeError("argument of type '%s' is not iterable", container.TypeName())
	}
	for {
		o, ok := it.next()
		if !ok {
			return false, nil
		}
		eq, err := Equal(o, item)
		if err != nil || eq {
			return eq, err
		}
	}
}

func sliceIterator(typeName string, items func() []Object) *Iterator {
	i := 0
	return NewIterator(typeName, func() (Object, bool) {
		cur := items()
		if i >= len(cur) {
			return nil, false
		}
		i++
		return cur[i-1], true
	})
}

// Iter returns an iterator over o. Iterators are their own iterators.
func Iter(o Object) (*Iterator, error) {
	switch v := o.(type) {
	case *Iterator:
		return v, nil
	case *List:
		return sliceIterator("list_iterator", func() []Object { return v.items }), nil
	case *Tuple:
		return sliceIterator("tuple_iterator", func() []Object { return v.items }), nil
	case Text:
		runes := []rune(string(v))
		i := 0
		return NewIterator("str_iterator", func() (Object, bool) {
			if i >= len(runes) {
				return nil, false
			}
			i++
			return Text(runes[i-1]), true
		}), nil
	case Bytes, *ByteArray:
		i := 0
		return NewIterator("bytes_iterator", func() (Object, bool) {
			data, _ := bytesOf(o)
			if i >= len(data) {
				return nil, false
			}
			i++
			return NewInt(int64(data[i-1])), true
		}), nil
	case Range:
		var i int64
		return NewIterator("range_iterator", func() (Object, bool) {
			if i >= v.Len() {
				return nil, false
			}
			i++
			return NewInt(v.At(i - 1)), true
		}), nil
	case *Dict:
		keys := v.Keys()
		return sliceIterator("dict_keyiterator", func() []Object { return keys }), nil
	case *Set:
		items := v.Items()
		return sliceIterator("set_iterator", func() []Object { return items }), nil
	case *FrozenSet:
		items := v.Items()
		return sliceIterator("set_iterator", func() []Object { return items }), nil
	}
	return nil, TypeError("'%s' object is not iterable", o.TypeName())
}

// Next advances an iterator; exhaustion is a StopIteration exception.
func Next(o Object) (Object, error) {
	it, ok := o.(*Iterator)
	if !ok {
		return nil, TypeError("'%s' object is not an iterator", o.TypeName())
	}
	v, ok := it.next()
	if !ok {
		return nil, StopIteration()
	}
	return v, nil
}

// Iterate drains an iterable into a slice.
func Iterate(o Object) ([]Object, error) {
	switch v := o.(type) {
	case *List:
		return v.Items(), nil
	case *Tuple:
		return v.Items(), nil
	}
	it, err := Iter(o)
	if err != nil {
		return nil, err
	}
	var out []Object
	for {
		v, ok := it.next()
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}
