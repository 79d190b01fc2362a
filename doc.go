// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rtbridge drives an isolated runtime process from Go. Objects in
// the runtime are reached through proxy handles; values are copied across
// with a graph-aware codec that preserves sharing and cycles.
//
// # Transport Selection
//
// A session is a strictly synchronous request/response exchange over one
// Transport:
//
//	line     newline-delimited frames on a byte stream (default)
//	framed   4-byte big-endian length prefix, required for CBOR frames
//	grpc     one bidirectional gRPC stream per session
//	http     one JSON-RPC 2.0 POST per request
//
// # Usage
//
// Starting a runtime:
//
//	cfg, err := rtbridge.LoadConfig("rtbridge.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	proc, err := rtbridge.Start(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer proc.Shutdown()
//
//	client := proc.Client()
//	sorted, err := client.Builtin(ctx, "sorted")
//	h, err := sorted.Call(ctx, []object.Object{object.NewList(object.NewInt(3), object.NewInt(1))}, nil)
//	v, err := h.DeepLift(ctx) // [1, 3]
//
// Serving in-process:
//
//	srv := rtbridge.NewServer()
//	t, _ := rtbridge.NewTransport(rtbridge.TransportLine, conn)
//	err := srv.Serve(ctx, t)
//
// # Architecture
//
// The package separates concerns:
//
//   - object: the runtime's object model and operations
//   - codec: Value wire form and per-message encoding/decoding sessions
//   - client.go, handle.go: Client, proxy handles and remote release
//   - server.go, commands.go, objcache.go: Session dispatcher, command
//     table and the per-session object cache
//   - transport.go, framed.go: stream framings
//   - grpc.go, jsonrpc.go: network transports
//   - codec.go: frame codecs (JSON, CBOR)
//   - config.go, process.go: TOML config and runtime process bootstrap
package rtbridge
