// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxFrameSize bounds a single frame (64MB).
const maxFrameSize = 64 * 1024 * 1024

// lineFraming ends every frame with '\n'. Frames must not contain a raw
// newline, which JSON frames never do. A zero max means maxFrameSize.
type lineFraming struct {
	max int
}

func (f lineFraming) readFrame(r *bufio.Reader) ([]byte, error) {
	limit := f.max
	if limit <= 0 {
		limit = maxFrameSize
	}
	for {
		var line []byte
		for {
			chunk, err := r.ReadSlice('\n')
			if len(line)+len(chunk) > limit+2 {
				return nil, fmt.Errorf("%w: line exceeds %d bytes", ErrFrameTooLarge, limit)
			}
			line = append(line, chunk...)
			if err == nil {
				break
			}
			if !errors.Is(err, bufio.ErrBufferFull) {
				return nil, err
			}
		}
		line = bytes.TrimRight(line[:len(line)-1], "\r")
		if len(line) > limit {
			return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(line))
		}
		if len(line) > 0 {
			return line, nil
		}
	}
}

func (lineFraming) writeFrame(w io.Writer, data []byte) error {
	if bytes.IndexByte(data, '\n') >= 0 {
		return fmt.Errorf("%w: frame contains a newline", ErrSerialization)
	}
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	buf[len(data)] = '\n'
	_, err := w.Write(buf)
	return err
}

// lengthFraming prefixes every frame with its length:
// [4 len big-endian][payload]
type lengthFraming struct {
	max uint32
}

func (f lengthFraming) readFrame(r *bufio.Reader) ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	msgLen := binary.BigEndian.Uint32(header)
	if msgLen == 0 || msgLen > f.max {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, msgLen)
	}
	msg := make([]byte, msgLen)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f lengthFraming) writeFrame(w io.Writer, data []byte) error {
	if len(data) == 0 || uint64(len(data)) > uint64(f.max) {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	buf := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(data)))
	copy(buf[4:], data)
	_, err := w.Write(buf)
	return err
}
