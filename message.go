// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"github.com/luxfi/rtbridge/codec"
)

// Response results
const (
	resultReturn = "return"
	resultRaise  = "raise"
)

// request is one command frame: {"command": ..., "args": [...]}.
type request struct {
	Command string        `json:"command" cbor:"command"`
	Args    []codec.Value `json:"args" cbor:"args"`
}

// response is one reply frame. A "return" carries Value; a "raise" carries
// Exception (a reference) and Message (text), plus ExcType for iterator
// exhaustion.
type response struct {
	Result    string       `json:"result" cbor:"result"`
	Value     *codec.Value `json:"value,omitempty" cbor:"value,omitempty"`
	Exception *codec.Value `json:"exception,omitempty" cbor:"exception,omitempty"`
	Message   *codec.Value `json:"message,omitempty" cbor:"message,omitempty"`
	ExcType   string       `json:"exc_type,omitempty" cbor:"exc_type,omitempty"`
}

const excStopIteration = "StopIteration"
