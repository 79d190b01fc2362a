// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
)

// Transport carries whole frames between the two ends of a session.
type Transport interface {
	io.Closer
	Send(ctx context.Context, data []byte) error
	Recv(ctx context.Context) ([]byte, error)
}

// Transport types
const (
	TransportLine   = "line"   // newline delimited, default
	TransportFramed = "framed" // 4-byte big-endian length prefix
	TransportGRPC   = "grpc"   // gRPC bidirectional stream
	TransportHTTP   = "http"   // JSON-RPC 2.0 over HTTP
)

// DefaultTransport is the default transport type (line)
const DefaultTransport = TransportLine

// framing reads and writes frames on a byte stream.
type framing interface {
	readFrame(r *bufio.Reader) ([]byte, error)
	writeFrame(w io.Writer, data []byte) error
}

var (
	transportsMu sync.RWMutex
	transports   = map[string]framing{
		TransportLine:   lineFraming{max: maxFrameSize},
		TransportFramed: lengthFraming{max: maxFrameSize},
	}
)

// registerTransport registers a stream framing
func registerTransport(name string, f framing) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	transports[name] = f
}

// AvailableTransports returns the stream framings NewTransport accepts
func AvailableTransports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	result := make([]string, 0, len(transports))
	for name := range transports {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// HasTransport checks if a stream framing is available
func HasTransport(name string) bool {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	_, ok := transports[name]
	return ok
}

// NewTransport frames rwc with the named stream framing. The transport owns
// rwc and closes it on Close.
func NewTransport(name string, rwc io.ReadWriteCloser) (Transport, error) {
	transportsMu.RLock()
	f, ok := transports[name]
	transportsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown transport: %s", name)
	}
	t := &streamTransport{
		rwc:      rwc,
		framing:  f,
		frames:   make(chan []byte),
		closing:  make(chan struct{}),
		readDone: make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

// streamTransport runs one framing over a byte stream. A reader goroutine
// owns the read side so Recv can honor its context.
type streamTransport struct {
	rwc     io.ReadWriteCloser
	framing framing
	writeMu sync.Mutex

	frames   chan []byte
	closing  chan struct{}
	readDone chan struct{}
	readErr  error
	closed   atomic.Bool
}

func (t *streamTransport) readLoop() {
	defer close(t.readDone)

	br := bufio.NewReaderSize(t.rwc, 64*1024)
	for {
		frame, err := t.framing.readFrame(br)
		if err != nil {
			t.readErr = err
			return
		}
		select {
		case t.frames <- frame:
		case <-t.closing:
			return
		}
	}
}

func (t *streamTransport) Send(ctx context.Context, data []byte) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.framing.writeFrame(t.rwc, data); err != nil {
		if errors.Is(err, ErrSerialization) || errors.Is(err, ErrFrameTooLarge) {
			return err
		}
		return fmt.Errorf("%w: write: %w", ErrClosed, err)
	}
	return nil
}

func (t *streamTransport) Recv(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-t.frames:
		return frame, nil
	case <-t.readDone:
		if t.closed.Load() || t.readErr == nil || errors.Is(t.readErr, io.EOF) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("%w: read: %w", ErrClosed, t.readErr)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes the underlying stream
func (t *streamTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	close(t.closing)
	return t.rwc.Close()
}

// pipe joins the two halves of a pipe pair into one stream.
type pipe struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

// NewPipe joins a read end and a write end into a stream that closes both.
func NewPipe(r io.ReadCloser, w io.WriteCloser) io.ReadWriteCloser {
	return &pipe{Reader: r, Writer: w, closers: []io.Closer{w, r}}
}

func (p *pipe) Close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
