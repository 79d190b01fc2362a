// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

// gRPC carries each frame as one message of a bidirectional stream. Frames
// are already encoded, so messages use a pass-through codec instead of
// protobuf.
const (
	grpcServiceName = "rtbridge.Bridge"
	grpcSessionPath = "/" + grpcServiceName + "/Session"
	frameCodecName  = "rtbridge-frame"
)

func init() {
	encoding.RegisterCodec(frameCodec{})
}

// frameCodec passes []byte messages through unchanged.
type frameCodec struct{}

func (frameCodec) Name() string { return frameCodecName }

func (frameCodec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case []byte:
		return m, nil
	case *[]byte:
		return *m, nil
	}
	return nil, fmt.Errorf("frame codec: cannot marshal %T", v)
}

func (frameCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("frame codec: cannot unmarshal into %T", v)
	}
	// grpc may reuse data after Unmarshal returns
	*m = append([]byte(nil), data...)
	return nil
}

type bridgeServer interface {
	session(stream grpc.ServerStream) error
}

var bridgeServiceDesc = grpc.ServiceDesc{
	ServiceName: grpcServiceName,
	HandlerType: (*bridgeServer)(nil),
	Streams: []grpc.StreamDesc{{
		StreamName:    "Session",
		Handler:       sessionHandler,
		ServerStreams: true,
		ClientStreams: true,
	}},
	Metadata: "rtbridge.proto",
}

func sessionHandler(srv any, stream grpc.ServerStream) error {
	return srv.(bridgeServer).session(stream)
}

type grpcService struct {
	srv *Server
}

func (g *grpcService) session(stream grpc.ServerStream) error {
	ctx := stream.Context()
	err := g.srv.Serve(ctx, newGRPCTransport(stream, nil))
	if errors.Is(err, ErrProtocol) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return err
}

// RegisterGRPC serves sessions for srv on gs. Every stream is its own
// session.
func RegisterGRPC(gs *grpc.Server, srv *Server) {
	gs.RegisterService(&bridgeServiceDesc, &grpcService{srv: srv})
}

// NewGRPCTransport opens a session stream on conn. Closing the transport
// ends the stream but leaves conn open.
func NewGRPCTransport(ctx context.Context, conn *grpc.ClientConn) (Transport, error) {
	sctx, cancel := context.WithCancel(ctx)
	stream, err := conn.NewStream(sctx, &bridgeServiceDesc.Streams[0], grpcSessionPath,
		grpc.CallContentSubtype(frameCodecName),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("grpc stream: %w", err)
	}
	return newGRPCTransport(stream, func() error {
		err := stream.CloseSend()
		cancel()
		return err
	}), nil
}

// DialGRPC connects to addr without transport security and opens a session
// stream. The connection is closed with the transport.
func DialGRPC(ctx context.Context, addr string, opts ...grpc.DialOption) (Transport, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	t, err := NewGRPCTransport(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	gt := t.(*grpcTransport)
	closeStream := gt.closeFn
	gt.closeFn = func() error {
		return errors.Join(closeStream(), conn.Close())
	}
	return gt, nil
}

// msgStream is the part of grpc.ServerStream and grpc.ClientStream a
// transport needs.
type msgStream interface {
	SendMsg(m any) error
	RecvMsg(m any) error
}

type grpcTransport struct {
	stream  msgStream
	closeFn func() error
	sendMu  sync.Mutex

	frames   chan []byte
	closing  chan struct{}
	readDone chan struct{}
	readErr  error
	closed   atomic.Bool
}

func newGRPCTransport(stream msgStream, closeFn func() error) *grpcTransport {
	t := &grpcTransport{
		stream:   stream,
		closeFn:  closeFn,
		frames:   make(chan []byte),
		closing:  make(chan struct{}),
		readDone: make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *grpcTransport) readLoop() {
	defer close(t.readDone)
	for {
		var frame []byte
		if err := t.stream.RecvMsg(&frame); err != nil {
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

func (t *grpcTransport) Send(ctx context.Context, data []byte) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	if err := t.stream.SendMsg(data); err != nil {
		return fmt.Errorf("%w: grpc send: %w", ErrClosed, err)
	}
	return nil
}

func (t *grpcTransport) Recv(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-t.frames:
		return frame, nil
	case <-t.readDone:
		err := t.readErr
		if t.closed.Load() || errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
			return nil, ErrClosed
		}
		transportLog.Debugf("grpc stream ended: %s", err)
		return nil, fmt.Errorf("%w: grpc recv: %w", ErrClosed, err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *grpcTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	close(t.closing)
	if t.closeFn == nil {
		return nil
	}
	return t.closeFn()
}
