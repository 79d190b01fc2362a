// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"github.com/luxfi/rtbridge/object"
)

// Option configures clients and servers
type Option func(*options)

type options struct {
	codec    Codec
	builtins map[string]object.Object
}

func newOptions(opts []Option) *options {
	o := &options{codec: defaultCodec}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithCodec sets the frame codec. Both ends must agree.
func WithCodec(c Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithBuiltins sets the namespace the builtin command resolves names in.
// Servers default to object.DefaultBuiltins.
func WithBuiltins(b map[string]object.Object) Option {
	return func(o *options) { o.builtins = b }
}
