// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// httpExecMethod is the JSON-RPC 2.0 method that carries one frame.
const httpExecMethod = "Bridge.Exec"

// ExecArgs carries a request frame.
type ExecArgs struct {
	Frame []byte `json:"frame"`
}

// ExecReply carries the response frame.
type ExecReply struct {
	Frame []byte `json:"frame"`
}

// Gateway exposes one server session as a JSON-RPC 2.0 endpoint. Every POST
// executes one frame; handles stay valid across requests.
type Gateway struct {
	session *Session
	rpc     *rpc.Server
}

// NewGateway creates an HTTP handler bound to a fresh session of srv.
func NewGateway(srv *Server) (*Gateway, error) {
	g := &Gateway{session: srv.NewSession(nil), rpc: rpc.NewServer()}
	g.rpc.RegisterCodec(json2.NewCodec(), "application/json")
	if err := g.rpc.RegisterService(&bridgeService{session: g.session}, "Bridge"); err != nil {
		return nil, fmt.Errorf("register bridge service: %w", err)
	}
	return g, nil
}

// Session returns the session requests are executed in.
func (g *Gateway) Session() *Session { return g.session }

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.rpc.ServeHTTP(w, r)
}

type bridgeService struct {
	session *Session
}

// Exec runs one frame.
func (b *bridgeService) Exec(r *http.Request, args *ExecArgs, reply *ExecReply) error {
	out, err := b.session.Handle(r.Context(), args.Frame)
	if err != nil {
		serverLog.Warningf("rejecting frame: %s", err)
		return err
	}
	reply.Frame = out
	return nil
}

// newHTTPClient creates a fresh HTTP client with disabled connection reuse.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DisableKeepAlives: true,
		},
	}
}

// CleanlyCloseBody drains and closes an HTTP response body to prevent
// HTTP/2 GOAWAY errors caused by closing bodies with unread data.
// See: https://github.com/golang/go/issues/46071
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

// httpTransport turns each Send/Recv pair into one POST. Requests are not
// idempotent, so failed posts are never retried.
type httpTransport struct {
	uri    string
	header http.Header
	client *http.Client

	mu      sync.Mutex
	pending [][]byte
	closed  bool
}

// NewHTTPTransport talks to a Gateway at uri. header is added to every
// request and may be nil.
func NewHTTPTransport(uri *url.URL, header http.Header) Transport {
	return &httpTransport{
		uri:    uri.String(),
		header: header,
		client: newHTTPClient(),
	}
}

func (t *httpTransport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.pending = append(t.pending, data)
	return nil
}

func (t *httpTransport) Recv(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrClosed
	}
	if len(t.pending) == 0 {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: receive without a request", ErrProtocol)
	}
	frame := t.pending[0]
	t.pending = t.pending[1:]
	t.mu.Unlock()

	return t.post(ctx, frame)
}

func (t *httpTransport) post(ctx context.Context, frame []byte) ([]byte, error) {
	body, err := json2.EncodeClientRequest(httpExecMethod, &ExecArgs{Frame: frame})
	if err != nil {
		return nil, fmt.Errorf("failed to encode client params: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, t.uri, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range t.header {
		for _, v := range vs {
			request.Header.Add(k, v)
		}
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(request)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to issue request: %w", err)
	}
	defer CleanlyCloseBody(resp.Body)

	var reply ExecReply
	err = json2.DecodeClientResponse(resp.Body, &reply)
	var rpcErr *json2.Error
	switch {
	case errors.As(err, &rpcErr):
		return nil, fmt.Errorf("%w: gateway: %s", ErrProtocol, rpcErr.Message)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("received status code: %d", resp.StatusCode)
	case err != nil:
		return nil, fmt.Errorf("failed to decode client response: %w", err)
	}
	transportLog.Debugf("http exchange: %d bytes out, %d bytes in", len(frame), len(reply.Frame))
	return reply.Frame, nil
}

func (t *httpTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.pending = nil
	t.client.CloseIdleConnections()
	return nil
}
