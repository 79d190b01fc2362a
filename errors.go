// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"errors"

	"github.com/luxfi/rtbridge/codec"
)

var (
	ErrClosed            = errors.New("rtbridge: session closed")
	ErrDanglingReference = errors.New("rtbridge: dangling reference")
	ErrStopIteration     = errors.New("rtbridge: iteration stopped")
	ErrUnknownCommand    = errors.New("rtbridge: unknown command")
	ErrFrameTooLarge     = errors.New("rtbridge: frame too large")

	// Re-exported so callers need not import the codec package to classify
	// failures.
	ErrSerialization = codec.ErrSerialization
	ErrProtocol      = codec.ErrProtocol
)

// RemoteError is an exception raised by the remote runtime. The session
// stays usable after one.
type RemoteError struct {
	// Message is the str() of the remote exception.
	Message string
	// Exception refers to the remote exception object. It may be nil when
	// the response carried no reference.
	Exception *Handle
	// StopIteration is set when the remote iterator was exhausted.
	StopIteration bool
}

func (e *RemoteError) Error() string {
	if e.StopIteration {
		return "remote: StopIteration"
	}
	return "remote: " + e.Message
}

// Is reports StopIteration failures as ErrStopIteration.
func (e *RemoteError) Is(target error) bool {
	return target == ErrStopIteration && e.StopIteration
}
