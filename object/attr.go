// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"sort"
	"strings"
)

func noAttr(o Object, name string) *Exception {
	return AttributeError("'%s' object has no attribute '%s'", o.TypeName(), name)
}

// method binds fn as a builtin named after its receiver's type.
func method(o Object, name string, fn BuiltinFunc) *Builtin {
	return NewBuiltin(o.TypeName()+"."+name, fn)
}

func wantArgs(name string, args []Object, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return TypeError("%s() takes exactly %d argument(s) (%d given)", name, lo, len(args))
		}
		return TypeError("%s() takes from %d to %d arguments (%d given)", name, lo, hi, len(args))
	}
	return nil
}

// GetAttr evaluates o.name.
func GetAttr(o Object, name string) (Object, error) {
	switch v := o.(type) {
	case *Instance:
		if a, ok := v.attrs[name]; ok {
			return a, nil
		}
	case *Exception:
		if name == "args" {
			return v.args, nil
		}
	case Complex:
		switch name {
		case "real":
			return Float(real(v)), nil
		case "imag":
			return Float(imag(v)), nil
		}
	case Float:
		switch name {
		case "real":
			return v, nil
		case "imag":
			return Float(0), nil
		}
	case *Int:
		switch name {
		case "real", "numerator":
			return v, nil
		case "imag":
			return NewInt(0), nil
		case "denominator":
			return NewInt(1), nil
		}
	case Range:
		switch name {
		case "start":
			return NewInt(v.start), nil
		case "stop":
			return NewInt(v.stop), nil
		case "step":
			return NewInt(v.step), nil
		}
	case *Slice:
		switch name {
		case "start":
			return v.start, nil
		case "stop":
			return v.stop, nil
		case "step":
			return v.step, nil
		}
	case *Builtin:
		if name == "__name__" {
			return Text(v.name), nil
		}
	}
	if m := boundMethod(o, name); m != nil {
		return m, nil
	}
	return nil, noAttr(o, name)
}

// SetAttr evaluates o.name = value. Only instances have a writable
// namespace.
func SetAttr(o Object, name string, value Object) error {
	v, ok := o.(*Instance)
	if !ok {
		if boundMethod(o, name) != nil {
			return AttributeError("'%s' object attribute '%s' is read-only", o.TypeName(), name)
		}
		return noAttr(o, name)
	}
	v.attrs[name] = value
	return nil
}

// DelAttr evaluates del o.name.
func DelAttr(o Object, name string) error {
	v, ok := o.(*Instance)
	if !ok {
		return noAttr(o, name)
	}
	if _, ok := v.attrs[name]; !ok {
		return noAttr(o, name)
	}
	delete(v.attrs, name)
	return nil
}

// Call invokes a callable with positional and keyword arguments. kwargs may
// be nil.
func Call(fn Object, args []Object, kwargs *Dict) (Object, error) {
	b, ok := fn.(*Builtin)
	if !ok {
		return nil, TypeError("'%s' object is not callable", fn.TypeName())
	}
	if kwargs == nil {
		kwargs = NewDict()
	}
	out, err := b.fn(args, kwargs)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return None, nil
	}
	return out, nil
}

func boundMethod(o Object, name string) *Builtin {
	switch v := o.(type) {
	case *List:
		return listMethod(v, name)
	case *Dict:
		return dictMethod(v, name)
	case *Set:
		return setMethod(v, name)
	case Text:
		return textMethod(v, name)
	case Bytes:
		if name == "decode" {
			return method(o, name, func(args []Object, _ *Dict) (Object, error) {
				return Text(string(v)), nil
			})
		}
	}
	return nil
}

func listMethod(l *List, name string) *Builtin {
	var fn BuiltinFunc
	switch name {
	case "append":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs("append", args, 1, 1); err != nil {
				return nil, err
			}
			l.Append(args[0])
			return None, nil
		}
	case "extend":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs("extend", args, 1, 1); err != nil {
				return nil, err
			}
			items, err := Iterate(args[0])
			if err != nil {
				return nil, err
			}
			l.items = append(l.items, items...)
			return None, nil
		}
	case "insert":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs("insert", args, 2, 2); err != nil {
				return nil, err
			}
			i, err := indexInt64(args[0])
			if err != nil {
				return nil, err
			}
			n := int64(len(l.items))
			if i < 0 {
				i = max(i+n, 0)
			}
			i = min(i, n)
			l.items = append(l.items, nil)
			copy(l.items[i+1:], l.items[i:])
			l.items[i] = args[1]
			return None, nil
		}
	case "pop":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs("pop", args, 0, 1); err != nil {
				return nil, err
			}
			if len(l.items) == 0 {
				return nil, IndexError("pop from empty list")
			}
			var key Object = NewInt(-1)
			if len(args) == 1 {
				key = args[0]
			}
			i, err := normIndex(key, len(l.items), "pop")
			if err != nil {
				return nil, err
			}
			out := l.items[i]
			l.items = append(l.items[:i], l.items[i+1:]...)
			return out, nil
		}
	case "index", "count":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs(name, args, 1, 1); err != nil {
				return nil, err
			}
			count := 0
			for i, item := range l.items {
				eq, err := Equal(item, args[0])
				if err != nil {
					return nil, err
				}
				if eq && name == "index" {
					return NewInt(int64(i)), nil
				}
				if eq {
					count++
				}
			}
			if name == "index" {
				return nil, ValueError("value is not in list")
			}
			return NewInt(int64(count)), nil
		}
	case "reverse":
		fn = func(args []Object, _ *Dict) (Object, error) {
			for i, j := 0, len(l.items)-1; i < j; i, j = i+1, j-1 {
				l.items[i], l.items[j] = l.items[j], l.items[i]
			}
			return None, nil
		}
	case "sort":
		fn = func(args []Object, _ *Dict) (Object, error) {
			return None, sortObjects(l.items)
		}
	default:
		return nil
	}
	return method(l, name, fn)
}

// sortObjects sorts items in place by the "<" ordering; the first
// comparison failure is returned.
func sortObjects(items []Object) error {
	var err error
	sort.SliceStable(items, func(i, j int) bool {
		if err != nil {
			return false
		}
		var lt bool
		lt, err = Compare("lt", items[i], items[j])
		return lt
	})
	return err
}

func dictMethod(d *Dict, name string) *Builtin {
	var fn BuiltinFunc
	switch name {
	case "keys":
		fn = func([]Object, *Dict) (Object, error) { return NewList(d.Keys()...), nil }
	case "values":
		fn = func([]Object, *Dict) (Object, error) {
			out := make([]Object, 0, d.Len())
			for _, e := range d.entries {
				out = append(out, e.Value)
			}
			return NewList(out...), nil
		}
	case "items":
		fn = func([]Object, *Dict) (Object, error) {
			out := make([]Object, 0, d.Len())
			for _, e := range d.entries {
				out = append(out, NewTuple(e.Key, e.Value))
			}
			return NewList(out...), nil
		}
	case "get":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs("get", args, 1, 2); err != nil {
				return nil, err
			}
			v, ok, err := d.Get(args[0])
			if err != nil {
				return nil, err
			}
			if ok {
				return v, nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return None, nil
		}
	case "pop":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs("pop", args, 1, 2); err != nil {
				return nil, err
			}
			v, ok, err := d.Get(args[0])
			if err != nil {
				return nil, err
			}
			if !ok {
				if len(args) == 2 {
					return args[1], nil
				}
				return nil, KeyError(args[0])
			}
			_, _ = d.Delete(args[0])
			return v, nil
		}
	case "update":
		fn = func(args []Object, kwargs *Dict) (Object, error) {
			if err := wantArgs("update", args, 0, 1); err != nil {
				return nil, err
			}
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
			return None, nil
		}
	default:
		return nil
	}
	return method(d, name, fn)
}

// updateDict merges a mapping or an iterable of pairs into d.
func updateDict(d *Dict, src Object) error {
	if m, ok := src.(*Dict); ok {
		for _, e := range m.Entries() {
			if err := d.SetItem(e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	}
	pairs, err := Iterate(src)
	if err != nil {
		return err
	}
	for i, p := range pairs {
		kv, err := Iterate(p)
		if err != nil || len(kv) != 2 {
			return ValueError("dictionary update sequence element #%d has wrong length", i)
		}
		if err := d.SetItem(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func setMethod(s *Set, name string) *Builtin {
	var fn BuiltinFunc
	switch name {
	case "add":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs("add", args, 1, 1); err != nil {
				return nil, err
			}
			return None, s.Add(args[0])
		}
	case "discard", "remove":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs(name, args, 1, 1); err != nil {
				return nil, err
			}
			ok, err := s.Discard(args[0])
			if err != nil {
				return nil, err
			}
			if !ok && name == "remove" {
				return nil, KeyError(args[0])
			}
			return None, nil
		}
	default:
		return nil
	}
	return method(s, name, fn)
}

func textMethod(t Text, name string) *Builtin {
	s := string(t)
	var fn BuiltinFunc
	switch name {
	case "upper":
		fn = func([]Object, *Dict) (Object, error) { return Text(strings.ToUpper(s)), nil }
	case "lower":
		fn = func([]Object, *Dict) (Object, error) { return Text(strings.ToLower(s)), nil }
	case "strip":
		fn = func([]Object, *Dict) (Object, error) { return Text(strings.TrimSpace(s)), nil }
	case "encode":
		fn = func([]Object, *Dict) (Object, error) { return Bytes(s), nil }
	case "startswith", "endswith":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs(name, args, 1, 1); err != nil {
				return nil, err
			}
			p, ok := args[0].(Text)
			if !ok {
				return nil, TypeError("%s first arg must be str, not %s", name, args[0].TypeName())
			}
			if name == "startswith" {
				return Bool(strings.HasPrefix(s, string(p))), nil
			}
			return Bool(strings.HasSuffix(s, string(p))), nil
		}
	case "split":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs("split", args, 0, 1); err != nil {
				return nil, err
			}
			var parts []string
			if len(args) == 0 || args[0] == None {
				parts = strings.Fields(s)
			} else {
				sep, ok := args[0].(Text)
				if !ok {
					return nil, TypeError("must be str or None, not %s", args[0].TypeName())
				}
				if sep == "" {
					return nil, ValueError("empty separator")
				}
				parts = strings.Split(s, string(sep))
			}
			out := make([]Object, len(parts))
			for i, p := range parts {
				out[i] = Text(p)
			}
			return NewList(out...), nil
		}
	case "join":
		fn = func(args []Object, _ *Dict) (Object, error) {
			if err := wantArgs("join", args, 1, 1); err != nil {
				return nil, err
			}
			items, err := Iterate(args[0])
			if err != nil {
				return nil, err
			}
			parts := make([]string, len(items))
			for i, item := range items {
				p, ok := item.(Text)
				if !ok {
					return nil, TypeError("sequence item %d: expected str instance, %s found", i, item.TypeName())
				}
				parts[i] = string(p)
			}
			return Text(strings.Join(parts, s)), nil
		}
	default:
		return nil
	}
	return method(t, name, fn)
}
