// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Repr returns the canonical printable form of o.
func Repr(o Object) (string, error) {
	p := &printer{active: make(map[Object]bool)}
	if err := p.repr(o); err != nil {
		return "", err
	}
	return p.sb.String(), nil
}

// Str returns the informal string form of o: text is returned as is and
// exceptions render their message.
func Str(o Object) (string, error) {
	switch v := o.(type) {
	case Text:
		return string(v), nil
	case *Exception:
		return v.Message(), nil
	}
	return Repr(o)
}

type printer struct {
	sb strings.Builder
	// containers currently being printed, for "[...]" on cycles
	active map[Object]bool
}

func (p *printer) repr(o Object) error {
	switch v := o.(type) {
	case nil:
		return ValueError("object is not fully constructed")
	case *Singleton:
		p.sb.WriteString(v.name)
	case Bool:
		if v {
			p.sb.WriteString("True")
		} else {
			p.sb.WriteString("False")
		}
	case *Int:
		p.sb.WriteString(v.v.String())
	case Float:
		p.sb.WriteString(formatFloat(float64(v)))
	case Complex:
		p.sb.WriteString(formatComplex(complex128(v)))
	case Text:
		p.sb.WriteString(quoteText(string(v)))
	case Bytes:
		p.sb.WriteString("b" + quoteBytes(string(v)))
	case *ByteArray:
		p.sb.WriteString("bytearray(b" + quoteBytes(string(v.data)) + ")")
	case Range:
		if v.step == 1 {
			fmt.Fprintf(&p.sb, "range(%d, %d)", v.start, v.stop)
		} else {
			fmt.Fprintf(&p.sb, "range(%d, %d, %d)", v.start, v.stop, v.step)
		}
	case *List:
		return p.seq(v, "[", "]", v.items, false)
	case *Tuple:
		return p.seq(v, "(", ")", v.items, len(v.items) == 1)
	case *Set:
		if v.Len() == 0 {
			p.sb.WriteString("set()")
			return nil
		}
		return p.seq(v, "{", "}", v.items, false)
	case *FrozenSet:
		if v.Len() == 0 {
			p.sb.WriteString("frozenset()")
			return nil
		}
		p.sb.WriteString("frozenset(")
		if err := p.seq(v, "{", "}", v.items, false); err != nil {
			return err
		}
		p.sb.WriteString(")")
	case *Dict:
		return p.dict(v)
	case *Slice:
		p.sb.WriteString("slice(")
		for i, part := range []Object{v.start, v.stop, v.step} {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			if err := p.repr(part); err != nil {
				return err
			}
		}
		p.sb.WriteString(")")
	case *Exception:
		p.sb.WriteString(v.typ)
		if v.args.Len() == 1 {
			p.sb.WriteString("(")
			if err := p.repr(v.args.At(0)); err != nil {
				return err
			}
			p.sb.WriteString(")")
			return nil
		}
		return p.repr(v.args)
	case *Builtin:
		fmt.Fprintf(&p.sb, "<built-in function %s>", v.name)
	case *Instance:
		fmt.Fprintf(&p.sb, "<%s object at %p>", v.class, v)
	default:
		fmt.Fprintf(&p.sb, "<%s object>", o.TypeName())
	}
	return nil
}

func (p *printer) seq(self Object, open, end string, items []Object, trailingComma bool) error {
	if p.active[self] {
		p.sb.WriteString(open + "..." + end)
		return nil
	}
	p.active[self] = true
	defer delete(p.active, self)

	p.sb.WriteString(open)
	for i, item := range items {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		if err := p.repr(item); err != nil {
			return err
		}
	}
	if trailingComma {
		p.sb.WriteString(",")
	}
	p.sb.WriteString(end)
	return nil
}

func (p *printer) dict(d *Dict) error {
	if p.active[d] {
		p.sb.WriteString("{...}")
		return nil
	}
	p.active[d] = true
	defer delete(p.active, d)

	p.sb.WriteString("{")
	for i, e := range d.entries {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		if err := p.repr(e.Key); err != nil {
			return err
		}
		p.sb.WriteString(": ")
		if err := p.repr(e.Value); err != nil {
			return err
		}
	}
	p.sb.WriteString("}")
	return nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func formatComplex(c complex128) string {
	re, im := real(c), imag(c)
	ims := strconv.FormatFloat(im, 'g', -1, 64)
	if re == 0 && !math.Signbit(re) {
		return ims + "j"
	}
	if !strings.HasPrefix(ims, "-") {
		ims = "+" + ims
	}
	return "(" + strconv.FormatFloat(re, 'g', -1, 64) + ims + "j)"
}

func quoteText(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch {
		case r == '\'' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

func quoteBytes(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
