// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/luxfi/rtbridge/object"
)

// refTable hands out ids the way the server's object cache does.
type refTable struct {
	objs []object.Object
}

func (r *refTable) EncodeRef(o object.Object) (int64, error) {
	for i, x := range r.objs {
		if x == o {
			return int64(i + 100), nil
		}
	}
	r.objs = append(r.objs, o)
	return int64(len(r.objs) + 99), nil
}

func (r *refTable) DecodeRef(id int64) (object.Object, error) {
	i := int(id - 100)
	if i < 0 || i >= len(r.objs) {
		return nil, errors.New("dangling reference")
	}
	return r.objs[i], nil
}

func encodeJSON(t *testing.T, s *EncodingSession, o object.Object, d Depth) string {
	t.Helper()
	v, err := s.Encode(o, d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return string(b)
}

func TestEncodeConcreteScenario(t *testing.T) {
	l := object.NewList(object.NewInt(1), object.None, object.NewList())
	got := encodeJSON(t, NewEncodingSession(nil), l, Deep)
	want := `{"list":{"items":[{"int":{"value":1}},{"none":{}},{"list":{"items":[]}}]}}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	var v Value
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := NewDecodingSession(nil).Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	eq, err := object.Equal(out, l)
	if err != nil || !eq {
		t.Errorf("round trip: got %v, %v", out, err)
	}
}

func TestEncodeCycle(t *testing.T) {
	l := object.NewList()
	l.Append(l)
	got := encodeJSON(t, NewEncodingSession(nil), l, Deep)
	want := `{"list":{"items":[{"cached":{"index":0}}]}}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	var v Value
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := NewDecodingSession(nil).Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	dl := out.(*object.List)
	if dl.Len() != 1 || dl.At(0) != object.Object(dl) {
		t.Errorf("decoded list is not self-referential")
	}
}

func TestEncodeCachesScalars(t *testing.T) {
	got := encodeJSON(t, NewEncodingSession(nil), object.NewList(object.None, object.None), Deep)
	want := `{"list":{"items":[{"none":{}},{"cached":{"index":1}}]}}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestEncodeSharedChild(t *testing.T) {
	x := object.NewList(object.NewInt(7))
	outer := object.NewList(x, x)
	got := encodeJSON(t, NewEncodingSession(nil), outer, Deep)
	want := `{"list":{"items":[{"list":{"items":[{"int":{"value":7}}]}},{"cached":{"index":1}}]}}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	var v Value
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := NewDecodingSession(nil).Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	dl := out.(*object.List)
	if dl.At(0) != dl.At(1) {
		t.Errorf("shared child decoded as two objects")
	}
}

func TestSessionLocalCache(t *testing.T) {
	x := object.NewList()
	want := `{"list":{"items":[]}}`

	s := NewEncodingSession(nil)
	if got := encodeJSON(t, s, x, Deep); got != want {
		t.Errorf("first: got %s", got)
	}
	if got := encodeJSON(t, s, x, Deep); got != `{"cached":{"index":0}}` {
		t.Errorf("same session: got %s", got)
	}
	if got := encodeJSON(t, NewEncodingSession(nil), x, Deep); got != want {
		t.Errorf("new session: got %s", got)
	}
}

func TestRefDepthBypassesCache(t *testing.T) {
	refs := &refTable{}
	x := object.NewList()
	s := NewEncodingSession(refs)
	if got := encodeJSON(t, s, x, Ref); got != `{"ref":{"id":100}}` {
		t.Errorf("ref: got %s", got)
	}
	if got := encodeJSON(t, s, x, Deep); got != `{"list":{"items":[]}}` {
		t.Errorf("deep after ref: got %s", got)
	}
	if got := encodeJSON(t, s, x, Ref); got != `{"ref":{"id":100}}` {
		t.Errorf("ref after deep: got %s", got)
	}
}

func TestShallowDepth(t *testing.T) {
	refs := &refTable{}
	inner := object.NewList()
	outer := object.NewList(inner, object.NewInt(1))
	got := encodeJSON(t, NewEncodingSession(refs), outer, Shallow)
	want := `{"list":{"items":[{"ref":{"id":100}},{"ref":{"id":101}}]}}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if refs.objs[0] != object.Object(inner) {
		t.Errorf("first reference is not the inner list")
	}
}

func TestOpaqueFallsBackToRef(t *testing.T) {
	refs := &refTable{}
	inst := object.NewInstance("Widget")
	got := encodeJSON(t, NewEncodingSession(refs), object.NewList(inst), Deep)
	if want := `{"list":{"items":[{"ref":{"id":100}}]}}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	if _, err := NewEncodingSession(nil).Encode(inst, Deep); !errors.Is(err, ErrSerialization) {
		t.Errorf("without referencer: got %v, want ErrSerialization", err)
	}
}

func TestRoundTripSelfReferentialTuple(t *testing.T) {
	l := object.NewList()
	tup := object.NewTuple(l)
	l.Append(tup)

	v, err := NewEncodingSession(nil).Encode(l, Deep)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := NewDecodingSession(nil).Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	dl := out.(*object.List)
	dt, ok := dl.At(0).(*object.Tuple)
	if !ok || dt.Len() != 1 || dt.At(0) != object.Object(dl) {
		t.Errorf("cycle through tuple not preserved")
	}
}

func TestRoundTripSliceReachedThroughItsBound(t *testing.T) {
	l := object.NewList()
	sl := object.NewSlice(l, object.NewInt(2), nil)
	l.Append(sl)

	// Encoding the slice first makes the list refer back to it while the
	// slice is still being decoded.
	v, err := NewEncodingSession(nil).Encode(sl, Deep)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := NewDecodingSession(nil).Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ds := out.(*object.Slice)
	dl, ok := ds.Start().(*object.List)
	if !ok || dl.Len() != 1 || dl.At(0) != object.Object(ds) {
		t.Fatalf("cycle through slice not preserved")
	}
	if eq, err := object.Equal(ds.Stop(), object.NewInt(2)); err != nil || !eq {
		t.Errorf("stop = %v", ds.Stop())
	}
}

func TestRoundTripScalars(t *testing.T) {
	d := object.NewDict()
	if err := d.SetItem(object.Text("k"), object.NewTuple(object.True, object.Float(2.5))); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	r, _ := object.NewRange(1, 10, 3)
	fs, _ := object.NewFrozenSet(object.NewInt(1), object.Bytes("x"))
	in := object.NewList(
		object.Ellipsis,
		object.NotImplemented,
		object.Complex(1-2i),
		object.Text("héllo"),
		object.NewByteArray([]byte{0, 1, 2}),
		r,
		fs,
		d,
		object.NewSlice(object.NewInt(1), nil, object.NewInt(-1)),
	)
	in.Append(object.NewInt(0))
	huge, _ := object.ParseInt("123456789012345678901234567890")
	in.Append(huge)

	v, err := NewEncodingSession(nil).Encode(in, Deep)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Value
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := NewDecodingSession(nil).Decode(back)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	eq, err := object.Equal(in, out)
	if err != nil || !eq {
		s, _ := object.Repr(out)
		t.Errorf("round trip mismatch: %s (%v)", s, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"cached out of range", `{"cached":{"index":3}}`, ErrProtocol},
		{"no variant", `{}`, ErrProtocol},
		{"two variants", `{"none":{},"bool":{"value":true}}`, ErrProtocol},
		{"unhashable key", `{"dict":{"items":[{"key":{"list":{"items":[]}},"value":{"none":{}}}]}}`, ErrSerialization},
		{"zero step range", `{"range":{"start":0,"stop":1,"step":0}}`, ErrSerialization},
		{"range stop overflows", `{"range":{"start":0,"stop":9223372036854775807,"step":2}}`, ErrSerialization},
		{"ref without resolver", `{"ref":{"id":1}}`, ErrSerialization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			_, err := NewDecodingSession(nil).Decode(v)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeRef(t *testing.T) {
	refs := &refTable{}
	inst := object.NewInstance("Widget")
	id, _ := refs.EncodeRef(inst)
	out, err := NewDecodingSession(refs).Decode(RefTo(id))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != object.Object(inst) {
		t.Errorf("got %v, want the referenced instance", out)
	}
}

func TestDepthChild(t *testing.T) {
	if Deep.Child() != Deep {
		t.Errorf("Deep is not sticky")
	}
	if Shallow.Child() != Ref {
		t.Errorf("Shallow.Child() = %v", Shallow.Child())
	}
	if Depth(3).Child() != Depth(2) {
		t.Errorf("Depth(3).Child() = %v", Depth(3).Child())
	}
}
