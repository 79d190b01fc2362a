// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/luxfi/rtbridge/object"
)

func startGateway(t *testing.T) (*Client, *Gateway) {
	t.Helper()
	gw, err := NewGateway(NewServer())
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	hs := httptest.NewServer(gw)
	t.Cleanup(hs.Close)

	u, err := url.Parse(hs.URL)
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}
	c := NewClient(NewHTTPTransport(u, nil))
	t.Cleanup(func() { c.Close() })
	return c, gw
}

func TestGatewaySession(t *testing.T) {
	ctx := context.Background()
	c, gw := startGateway(t)

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	sum, err := c.Builtin(ctx, "sum")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	h, err := sum.Call(ctx, []object.Object{object.NewList(object.NewInt(1), object.NewInt(2))}, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	got, err := h.Int(ctx)
	if err != nil {
		t.Fatalf("Int: %v", err)
	}
	mustEqual(t, got, object.NewInt(3))

	// Handles stay valid across requests.
	if n := gw.Session().Cache().Len(); n != 2 {
		t.Errorf("cache holds %d objects, want 2", n)
	}

	_, err = h.GetItem(ctx, object.NewInt(0))
	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("got %v, want *RemoteError", err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("session unusable after exception: %v", err)
	}
}

func TestGatewayRejectsMalformedFrame(t *testing.T) {
	ctx := context.Background()
	c, _ := startGateway(t)

	if _, err := c.Invoke(ctx, "frobnicate"); !errors.Is(err, ErrClosed) || !errors.Is(err, ErrProtocol) {
		t.Fatalf("got %v, want a protocol failure closing the client", err)
	}
}

func TestHTTPTransportRecvWithoutSend(t *testing.T) {
	u, _ := url.Parse("http://127.0.0.1:1")
	tr := NewHTTPTransport(u, nil)
	if _, err := tr.Recv(context.Background()); !errors.Is(err, ErrProtocol) {
		t.Errorf("got %v, want ErrProtocol", err)
	}
	tr.Close()
	if err := tr.Send(context.Background(), []byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close: got %v, want ErrClosed", err)
	}
}
