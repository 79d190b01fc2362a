// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/rtbridge/codec"
	"github.com/luxfi/rtbridge/object"
)

// Server hosts the runtime heap. Each connection is served by its own
// Session; command execution across sessions is serialized by one lock.
type Server struct {
	commands map[string]command
	builtins map[string]object.Object
	codec    Codec

	// interpreter lock
	mu sync.Mutex
}

// NewServer creates a server with the standard command set.
func NewServer(opts ...Option) *Server {
	o := newOptions(opts)
	builtins := o.builtins
	if builtins == nil {
		builtins = object.DefaultBuiltins()
	}
	return &Server{
		commands: commandTable(),
		builtins: builtins,
		codec:    o.codec,
	}
}

// Serve runs a session on t until the peer disconnects, ctx is done or the
// stream is corrupted. t is closed on return.
func (s *Server) Serve(ctx context.Context, t Transport) error {
	defer t.Close()
	return s.NewSession(t).Run(ctx)
}

// NewSession creates a session bound to t. t may be nil for a session that
// is only driven through Handle.
func (s *Server) NewSession(t Transport) *Session {
	return &Session{
		server:    s,
		transport: t,
		cache:     NewObjectCache(),
	}
}

// Session is the server side of one connection.
type Session struct {
	server    *Server
	transport Transport
	cache     *ObjectCache
}

// Cache returns the objects this session has handed out by reference.
func (s *Session) Cache() *ObjectCache { return s.cache }

// Run reads and executes commands until the transport closes. A malformed
// frame or unknown command ends the session and closes the transport.
func (s *Session) Run(ctx context.Context) error {
	defer s.cache.Clear()
	for {
		frame, err := s.transport.Recv(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) {
				serverLog.Infof("peer closed the session")
				return nil
			}
			return err
		}
		reply, err := s.Handle(ctx, frame)
		if err != nil {
			serverLog.Errorf("ending session: %s", err)
			s.transport.Close()
			return err
		}
		if err := s.transport.Send(ctx, reply); err != nil {
			return fmt.Errorf("send reply: %w", err)
		}
	}
}

// Handle executes one request frame and returns the reply frame. An error
// means the frame could not be understood and the session must end.
func (s *Session) Handle(ctx context.Context, frame []byte) ([]byte, error) {
	logFrame(serverLog, "recv", frame)

	var req request
	if err := s.server.codec.Decode(frame, &req); err != nil {
		return nil, err
	}
	cmd, ok := s.server.commands[req.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", ErrProtocol, ErrUnknownCommand, req.Command)
	}

	var resp *response
	args, err := s.decodeArgs(req.Args)
	switch {
	case errors.Is(err, ErrProtocol):
		return nil, err
	case err != nil:
		resp = s.raise(toException(err))
	default:
		resp = s.execute(ctx, cmd, args)
	}

	out, err := s.server.codec.Encode(resp)
	if err != nil {
		if !errors.Is(err, ErrSerialization) {
			return nil, err
		}
		serverLog.Warningf("%s: result not serializable: %s", req.Command, err)
		if out, err = s.server.codec.Encode(s.raise(toException(err))); err != nil {
			return nil, err
		}
	}
	logFrame(serverLog, "send", out)
	return out, nil
}

func (s *Session) decodeArgs(values []codec.Value) ([]object.Object, error) {
	dec := codec.NewDecodingSession(s.cache)
	args := make([]object.Object, len(values))
	for i, v := range values {
		o, err := dec.Decode(v)
		if err != nil {
			return nil, err
		}
		args[i] = o
	}
	return args, nil
}

func (s *Session) execute(ctx context.Context, cmd command, args []object.Object) *response {
	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		return s.raise(object.TypeError("%s takes %d argument(s) (%d given)", cmd.name, cmd.maxArgs, len(args)))
	}

	s.server.mu.Lock()
	result, err := cmd.run(ctx, s, args)
	if err == nil && result == nil {
		result = object.None
	}
	var resp *response
	if err != nil {
		resp = s.raise(toException(err))
	} else {
		resp = s.ret(result, cmd.depth)
	}
	s.server.mu.Unlock()
	return resp
}

func (s *Session) ret(result object.Object, depth codec.Depth) *response {
	v, err := codec.NewEncodingSession(s.cache).Encode(result, depth)
	if err != nil {
		return s.raise(toException(err))
	}
	return &response{Result: resultReturn, Value: &v}
}

func (s *Session) raise(exc *object.Exception) *response {
	return raiseResponse(s.cache, exc)
}

// raiseResponse reports exc to the client. A part that fails to encode is
// left out; the client accepts a raise without an exception or message.
func raiseResponse(refs codec.Referencer, exc *object.Exception) *response {
	resp := &response{Result: resultRaise}
	enc := codec.NewEncodingSession(refs)
	if ref, err := enc.Encode(exc, codec.Ref); err != nil {
		serverLog.Warningf("exception %s not sent: %s", exc.TypeName(), err)
	} else {
		resp.Exception = &ref
	}
	if msg, err := enc.Encode(object.Text(exc.Message()), codec.Deep); err != nil {
		serverLog.Warningf("exception message not sent: %s", err)
	} else {
		resp.Message = &msg
	}
	if exc.TypeName() == excStopIteration {
		resp.ExcType = excStopIteration
	}
	return resp
}

// toException converts a failure into the exception object reported to the
// client.
func toException(err error) *object.Exception {
	var exc *object.Exception
	switch {
	case errors.As(err, &exc):
		return exc
	case errors.Is(err, ErrDanglingReference):
		return object.Errorf("ReferenceError", "%s", err)
	case errors.Is(err, ErrSerialization):
		return object.TypeError("%s", err)
	}
	return object.Errorf("RuntimeError", "%s", err)
}
