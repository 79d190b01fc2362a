// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"errors"
	"strconv"
)

var (
	// ErrSerialization reports an object or Value with no representation on
	// the other side. It fails the call, not the session.
	ErrSerialization = errors.New("codec: serialization failure")
	// ErrProtocol reports a malformed message. The session cannot continue.
	ErrProtocol = errors.New("codec: protocol failure")
)

// Depth is how many container levels are encoded by value before falling
// back to references.
type Depth int

const (
	Ref     Depth = 0
	Shallow Depth = 1
	Deep    Depth = -1
)

// Child returns the depth used for the children of a container encoded at d.
// Deep is sticky.
func (d Depth) Child() Depth {
	if d < 0 {
		return d
	}
	return d - 1
}

func (d Depth) String() string {
	switch {
	case d == Ref:
		return "ref"
	case d == Shallow:
		return "shallow"
	case d < 0:
		return "deep"
	}
	return "depth(" + strconv.Itoa(int(d)) + ")"
}
