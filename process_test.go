//go:build unix

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"context"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/luxfi/rtbridge/object"
)

// The test binary doubles as the runtime executable.
const runtimeEnv = "RTBRIDGE_TEST_RUNTIME=1"

func TestMain(m *testing.M) {
	if os.Getenv("RTBRIDGE_TEST_RUNTIME") == "1" {
		os.Exit(runtimeMain(os.Args[1:]))
	}
	os.Exit(m.Run())
}

func runtimeMain(args []string) int {
	fs := flag.NewFlagSet("runtime", flag.ContinueOnError)
	in := fs.Int("in", 0, "")
	out := fs.Int("out", 1, "")
	framing := fs.String("framing", DefaultTransport, "")
	codecName := fs.String("codec", CodecJSON, "")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	c, err := LookupCodec(*codecName)
	if err != nil {
		return 2
	}
	err = ServeFiles(context.Background(), NewServer(WithCodec(c)), *framing,
		os.NewFile(uintptr(*in), "in"), os.NewFile(uintptr(*out), "out"))
	if err != nil {
		return 1
	}
	return 0
}

func testRuntimeConfig(framing, codec string) *Config {
	cfg := DefaultConfig()
	cfg.Runtime.Executable = os.Args[0]
	cfg.Runtime.Env = []string{runtimeEnv}
	cfg.Transport.Framing = framing
	cfg.Transport.Codec = codec
	return cfg
}

func TestStartRuntime(t *testing.T) {
	tests := []struct {
		framing, codec string
	}{
		{TransportLine, CodecJSON},
		{TransportFramed, CodecCBOR},
	}
	for _, tt := range tests {
		t.Run(tt.framing+"/"+tt.codec, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			p, err := Start(ctx, testRuntimeConfig(tt.framing, tt.codec))
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			c := p.Client()
			r, err := c.Builtin(ctx, "range")
			if err != nil {
				t.Fatalf("Builtin: %v", err)
			}
			h, err := r.Call(ctx, []object.Object{object.NewInt(3)}, nil)
			if err != nil {
				t.Fatalf("Call: %v", err)
			}
			s, err := h.Repr(ctx)
			if err != nil || s != "range(0, 3)" {
				t.Errorf("Repr = %q, %v", s, err)
			}

			if err := p.Shutdown(); err != nil {
				t.Errorf("Shutdown: %v", err)
			}
			select {
			case <-p.Done():
			default:
				t.Errorf("runtime still running after Shutdown")
			}
			if err := c.Ping(ctx); err == nil {
				t.Errorf("Ping succeeded after Shutdown")
			}
		})
	}
}

func TestStartRequiresExecutable(t *testing.T) {
	if _, err := Start(context.Background(), DefaultConfig()); err == nil {
		t.Errorf("Start without an executable succeeded")
	}
	cfg := DefaultConfig()
	cfg.Runtime.Executable = "/nonexistent/runtime"
	if _, err := Start(context.Background(), cfg); err == nil {
		t.Errorf("Start of a missing executable succeeded")
	}
}
