// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"context"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/luxfi/rtbridge/object"
)

func dialBufconn(t *testing.T) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterGRPC(gs, NewServer())
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPCSession(t *testing.T) {
	ctx := context.Background()
	conn := dialBufconn(t)

	tr, err := NewGRPCTransport(ctx, conn)
	if err != nil {
		t.Fatalf("NewGRPCTransport: %v", err)
	}
	c := NewClient(tr)
	defer c.Close()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	in := object.NewDict()
	if err := in.SetItem(object.Text("k"), object.NewList(object.NewInt(1), object.None)); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	h, err := c.Project(ctx, in)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	out, err := h.DeepLift(ctx)
	if err != nil {
		t.Fatalf("DeepLift: %v", err)
	}
	mustEqual(t, out, in)

	// Each stream is its own session.
	tr2, err := NewGRPCTransport(ctx, conn)
	if err != nil {
		t.Fatalf("NewGRPCTransport: %v", err)
	}
	c2 := NewClient(tr2)
	defer c2.Close()
	_, err = c2.Invoke(ctx, "repr", &Handle{id: h.ID(), client: c2})
	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Errorf("reference leaked across sessions: %v", err)
	}
}

func TestGRPCProtocolFailureClosesSession(t *testing.T) {
	ctx := context.Background()
	tr, err := NewGRPCTransport(ctx, dialBufconn(t))
	if err != nil {
		t.Fatalf("NewGRPCTransport: %v", err)
	}
	c := NewClient(tr)
	defer c.Close()

	if _, err := c.Invoke(ctx, "frobnicate"); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
	if err := c.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping: got %v, want ErrClosed", err)
	}
}

func TestFrameCodec(t *testing.T) {
	var fc frameCodec
	b, err := fc.Marshal([]byte("abc"))
	if err != nil || string(b) != "abc" {
		t.Fatalf("Marshal = %q, %v", b, err)
	}
	src := []byte("xyz")
	var dst []byte
	if err := fc.Unmarshal(src, &dst); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	src[0] = 'X'
	if string(dst) != "xyz" {
		t.Errorf("Unmarshal aliased its input: %q", dst)
	}
	if _, err := fc.Marshal("text"); err == nil {
		t.Errorf("Marshal accepted a string")
	}
}
