// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"slices"
	"testing"
	"time"
)

func transportPair(t *testing.T, name string) (Transport, Transport) {
	t.Helper()
	a, b := net.Pipe()
	ta, err := NewTransport(name, a)
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	tb, err := NewTransport(name, b)
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	t.Cleanup(func() {
		ta.Close()
		tb.Close()
	})
	return ta, tb
}

func TestTransportRoundTrip(t *testing.T) {
	frames := [][]byte{
		[]byte(`{"command":"ping","args":[]}`),
		[]byte("x"),
		bytes.Repeat([]byte("a"), 100*1024),
	}
	for _, name := range AvailableTransports() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a, b := transportPair(t, name)
			go func() {
				for _, f := range frames {
					if err := a.Send(ctx, f); err != nil {
						t.Errorf("Send: %v", err)
						return
					}
				}
			}()
			for i, want := range frames {
				got, err := b.Recv(ctx)
				if err != nil {
					t.Fatalf("Recv %d: %v", i, err)
				}
				if !bytes.Equal(got, want) {
					t.Fatalf("frame %d: got %d bytes, want %d", i, len(got), len(want))
				}
			}
		})
	}
}

func TestAvailableTransports(t *testing.T) {
	got := AvailableTransports()
	for _, name := range []string{TransportLine, TransportFramed} {
		if !slices.Contains(got, name) {
			t.Errorf("%s missing from %v", name, got)
		}
		if !HasTransport(name) {
			t.Errorf("HasTransport(%q) = false", name)
		}
	}
	if HasTransport("carrier-pigeon") {
		t.Errorf("HasTransport accepted an unknown name")
	}
	a, _ := net.Pipe()
	defer a.Close()
	if _, err := NewTransport("carrier-pigeon", a); err == nil {
		t.Errorf("NewTransport accepted an unknown name")
	}
}

func TestLineFramingRejectsNewline(t *testing.T) {
	a, _ := transportPair(t, TransportLine)
	err := a.Send(context.Background(), []byte("two\nlines"))
	if !errors.Is(err, ErrSerialization) {
		t.Errorf("got %v, want ErrSerialization", err)
	}
}

func TestLineFramingSkipsBlankLines(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("\n\r\nabc\r\n"))
	got, err := lineFraming{}.readFrame(r)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("got %q", got)
	}
	if _, err := (lineFraming{}).readFrame(r); !errors.Is(err, io.EOF) {
		t.Errorf("got %v, want EOF", err)
	}
}

type endlessLine struct{}

func (endlessLine) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'x'
	}
	return len(p), nil
}

func TestLineFramingLimits(t *testing.T) {
	f := lineFraming{max: 4}
	r := bufio.NewReaderSize(bytes.NewBufferString("abcd\r\nabcde\n"), 16)
	got, err := f.readFrame(r)
	if err != nil || string(got) != "abcd" {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := f.readFrame(r); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("over limit: got %v, want ErrFrameTooLarge", err)
	}

	// A peer that never sends a newline must not grow the buffer forever.
	r = bufio.NewReaderSize(endlessLine{}, 16)
	if _, err := (lineFraming{max: 64}).readFrame(r); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("endless line: got %v, want ErrFrameTooLarge", err)
	}
}

func TestLengthFramingLimits(t *testing.T) {
	f := lengthFraming{max: 8}
	var buf bytes.Buffer
	if err := f.writeFrame(&buf, []byte("123456789")); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("oversized write: got %v", err)
	}
	if err := f.writeFrame(&buf, nil); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("empty write: got %v", err)
	}

	// header announcing 9 bytes
	r := bufio.NewReader(bytes.NewReader([]byte{0, 0, 0, 9, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	if _, err := f.readFrame(r); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("oversized read: got %v", err)
	}

	buf.Reset()
	if err := f.writeFrame(&buf, []byte("ok")); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0, 0, 0, 2, 'o', 'k'}) {
		t.Errorf("encoded %v", buf.Bytes())
	}
}

func TestRecvHonorsContext(t *testing.T) {
	_, b := transportPair(t, TransportLine)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := b.Recv(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want DeadlineExceeded", err)
	}
}

func TestRecvAfterPeerClose(t *testing.T) {
	a, b := transportPair(t, TransportFramed)
	a.Close()
	if _, err := b.Recv(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
	if err := a.Send(context.Background(), []byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close: got %v, want ErrClosed", err)
	}
}

func TestPipeClosesBothEnds(t *testing.T) {
	r, w := io.Pipe()
	p := NewPipe(r, w)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := w.Write([]byte("x")); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("write end still open: %v", err)
	}
}
