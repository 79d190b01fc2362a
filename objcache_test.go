// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"errors"
	"testing"

	"github.com/luxfi/rtbridge/object"
)

func TestObjectCache(t *testing.T) {
	c := NewObjectCache()
	l := object.NewList()

	id := c.Add(l)
	if again := c.Add(l); again != id {
		t.Errorf("Add returned %d then %d for the same object", id, again)
	}
	other := c.Add(object.NewList())
	if other == id {
		t.Errorf("distinct objects share id %d", id)
	}
	got, err := c.Get(id)
	if err != nil || got != object.Object(l) {
		t.Fatalf("Get = %v, %v", got, err)
	}

	c.Delete(id)
	if _, err := c.Get(id); !errors.Is(err, ErrDanglingReference) {
		t.Errorf("Get after Delete: got %v, want ErrDanglingReference", err)
	}
	if readded := c.Add(l); readded == id {
		t.Errorf("id %d reused after Delete", id)
	}
	c.Delete(12345)

	c.Release(l)
	if c.Len() != 1 {
		t.Errorf("Len = %d after Release, want 1", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len = %d after Clear", c.Len())
	}
}

func TestObjectCacheValueIdentity(t *testing.T) {
	c := NewObjectCache()
	if c.Add(object.Text("a")) != c.Add(object.Text("a")) {
		t.Errorf("equal strings got distinct ids")
	}
	zero := object.Float(0)
	negZero := object.Float(-float64(zero))
	if c.Add(zero) == c.Add(negZero) {
		t.Errorf("0.0 and -0.0 share an id")
	}
	if c.Add(object.NewInt(7)) == c.Add(object.NewInt(7)) {
		t.Errorf("distinct int objects share an id")
	}
}
