// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/luxfi/rtbridge/codec"
	"github.com/luxfi/rtbridge/object"
)

// Client drives a remote runtime over a transport. Calls are serialized:
// exactly one request is in flight at a time.
type Client struct {
	transport Transport
	codec     Codec

	mu     sync.Mutex // held for a whole request/response exchange
	closed atomic.Bool
	done   chan struct{}

	handlesMu sync.Mutex
	handles   map[int64]weak.Pointer[Handle]

	releaseMu sync.Mutex
	pending   []int64
	releaseCh chan struct{}
}

// NewClient starts a client on t. The client owns t.
func NewClient(t Transport, opts ...Option) *Client {
	o := newOptions(opts)
	c := &Client{
		transport: t,
		codec:     o.codec,
		done:      make(chan struct{}),
		handles:   make(map[int64]weak.Pointer[Handle]),
		releaseCh: make(chan struct{}, 1),
	}
	go c.releaseLoop()
	return c
}

// Invoke sends command with args and returns the decoded result. Handles
// travel by reference and local objects by value. A remote exception is
// returned as *RemoteError and leaves the client usable; a broken stream
// closes the client.
func (c *Client) Invoke(ctx context.Context, command string, args ...object.Object) (object.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return nil, ErrClosed
	}
	enc := codec.NewEncodingSession(c)
	req := request{Command: command, Args: make([]codec.Value, len(args))}
	for i, a := range args {
		v, err := enc.Encode(a, codec.Deep)
		if err != nil {
			return nil, fmt.Errorf("encode %s argument %d: %w", command, i, err)
		}
		req.Args[i] = v
	}
	frame, err := c.codec.Encode(&req)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", command, err)
	}
	return c.roundTrip(ctx, frame)
}

// roundTrip exchanges one frame. The caller holds c.mu.
func (c *Client) roundTrip(ctx context.Context, frame []byte) (object.Object, error) {
	logFrame(clientLog, "send", frame)
	if err := c.transport.Send(ctx, frame); err != nil {
		if errors.Is(err, ErrSerialization) || errors.Is(err, ErrFrameTooLarge) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, c.fail(err)
	}
	reply, err := c.transport.Recv(ctx)
	if err != nil {
		// The reply is still owed; the stream cannot be resynchronized.
		return nil, c.fail(err)
	}
	logFrame(clientLog, "recv", reply)

	var resp response
	if err := c.codec.Decode(reply, &resp); err != nil {
		return nil, c.fail(err)
	}
	dec := codec.NewDecodingSession(c)
	switch resp.Result {
	case resultReturn:
		if resp.Value == nil {
			return nil, c.fail(fmt.Errorf("%w: return without value", ErrProtocol))
		}
		v, err := dec.Decode(*resp.Value)
		if err != nil {
			return nil, c.decodeFailure(err)
		}
		return v, nil
	case resultRaise:
		rerr := &RemoteError{StopIteration: resp.ExcType == excStopIteration}
		if resp.Exception != nil {
			exc, err := dec.Decode(*resp.Exception)
			if err != nil {
				return nil, c.decodeFailure(err)
			}
			rerr.Exception, _ = exc.(*Handle)
		}
		if resp.Message != nil {
			msg, err := dec.Decode(*resp.Message)
			if err != nil {
				return nil, c.decodeFailure(err)
			}
			if s, ok := msg.(object.Text); ok {
				rerr.Message = string(s)
			}
		}
		return nil, rerr
	}
	return nil, c.fail(fmt.Errorf("%w: unknown result %q", ErrProtocol, resp.Result))
}

func (c *Client) decodeFailure(err error) error {
	if errors.Is(err, ErrProtocol) {
		return c.fail(err)
	}
	return err
}

// fail closes the client after an unrecoverable stream error.
func (c *Client) fail(err error) error {
	clientLog.Errorf("closing session: %s", err)
	c.Close()
	if errors.Is(err, ErrClosed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrClosed, err)
}

// Close stops the client and closes its transport. Outstanding handles
// become unusable; the remote side drops everything on disconnect.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)
	return c.transport.Close()
}

// EncodeRef implements codec.Referencer: only handles of this client can be
// sent to the runtime by reference.
func (c *Client) EncodeRef(obj object.Object) (int64, error) {
	h, ok := obj.(*Handle)
	if !ok {
		return 0, fmt.Errorf("%w: local %s cannot be sent by reference", ErrSerialization, obj.TypeName())
	}
	if h.client != c {
		return 0, fmt.Errorf("%w: handle belongs to another client", ErrSerialization)
	}
	return h.id, nil
}

// DecodeRef implements codec.Referencer.
func (c *Client) DecodeRef(id int64) (object.Object, error) {
	return c.handle(id), nil
}

// handle returns the live handle for id, creating one if needed. The table
// holds handles weakly; an unreachable handle queues a release of its id.
func (c *Client) handle(id int64) *Handle {
	c.handlesMu.Lock()
	defer c.handlesMu.Unlock()

	if wp, ok := c.handles[id]; ok {
		if h := wp.Value(); h != nil {
			return h
		}
	}
	h := &Handle{id: id, client: c}
	c.handles[id] = weak.Make(h)
	runtime.AddCleanup(h, c.queueRelease, id)
	return h
}

// queueRelease runs on the cleanup goroutine and must not block.
func (c *Client) queueRelease(id int64) {
	c.releaseMu.Lock()
	c.pending = append(c.pending, id)
	c.releaseMu.Unlock()

	select {
	case c.releaseCh <- struct{}{}:
	default:
	}
}

func (c *Client) releaseLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.releaseCh:
			c.releaseMu.Lock()
			ids := c.pending
			c.pending = nil
			c.releaseMu.Unlock()

			for _, id := range ids {
				c.release(id)
			}
		}
	}
}

// release tells the runtime to drop id unless a live handle for it exists
// again. Failures are logged and dropped.
func (c *Client) release(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return
	}
	c.handlesMu.Lock()
	wp, ok := c.handles[id]
	if !ok || wp.Value() != nil {
		c.handlesMu.Unlock()
		return
	}
	delete(c.handles, id)
	c.handlesMu.Unlock()

	frame, err := c.codec.Encode(&request{Command: "del", Args: []codec.Value{codec.RefTo(id)}})
	if err == nil {
		_, err = c.roundTrip(context.Background(), frame)
	}
	if err != nil {
		clientLog.Debugf("release %d: %s", id, err)
	}
}

// Ping checks that the runtime answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Invoke(ctx, "ping")
	return err
}

// Builtin looks up a name in the runtime's builtin namespace.
func (c *Client) Builtin(ctx context.Context, name string) (*Handle, error) {
	return asHandle(c.Invoke(ctx, "builtin", object.Text(name)))
}

// Project copies a local object into the runtime and returns a handle to
// the copy.
func (c *Client) Project(ctx context.Context, obj object.Object) (*Handle, error) {
	return asHandle(c.Invoke(ctx, "project", obj))
}

func asHandle(o object.Object, err error) (*Handle, error) {
	if err != nil {
		return nil, err
	}
	h, ok := o.(*Handle)
	if !ok {
		return nil, fmt.Errorf("%w: expected a reference, got %s", ErrProtocol, o.TypeName())
	}
	return h, nil
}
