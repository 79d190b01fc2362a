// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"fmt"
	"sync"

	"github.com/luxfi/rtbridge/object"
)

// ObjectCache retains the objects a session has handed out by reference.
// Adding the same object twice yields the same id.
type ObjectCache struct {
	mu     sync.Mutex
	byID   map[int64]object.Object
	ids    map[any]int64
	nextID int64
}

// NewObjectCache creates an empty cache.
func NewObjectCache() *ObjectCache {
	return &ObjectCache{
		byID: make(map[int64]object.Object),
		ids:  make(map[any]int64),
	}
}

// Add retains obj and returns its id.
func (c *ObjectCache) Add(obj object.Object) int64 {
	key, keyed := object.Identity(obj)

	c.mu.Lock()
	defer c.mu.Unlock()

	if keyed {
		if id, ok := c.ids[key]; ok {
			return id
		}
	}
	c.nextID++
	id := c.nextID
	c.byID[id] = obj
	if keyed {
		c.ids[key] = id
	}
	return id
}

// Get returns the object retained under id.
func (c *ObjectCache) Get(id int64) (object.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrDanglingReference, id)
	}
	return obj, nil
}

// Delete releases id. Unknown ids are ignored.
func (c *ObjectCache) Delete(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj, ok := c.byID[id]
	if !ok {
		return
	}
	delete(c.byID, id)
	if key, keyed := object.Identity(obj); keyed {
		delete(c.ids, key)
	}
}

// Len returns the number of retained objects.
func (c *ObjectCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}

// Clear releases everything.
func (c *ObjectCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.byID)
	clear(c.ids)
}

// EncodeRef implements codec.Referencer.
func (c *ObjectCache) EncodeRef(obj object.Object) (int64, error) {
	return c.Add(obj), nil
}

// DecodeRef implements codec.Referencer.
func (c *ObjectCache) DecodeRef(id int64) (object.Object, error) {
	return c.Get(id)
}

// Release drops obj if it is retained.
func (c *ObjectCache) Release(obj object.Object) {
	key, keyed := object.Identity(obj)
	if !keyed {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[key]; ok {
		delete(c.ids, key)
		delete(c.byID, id)
	}
}
