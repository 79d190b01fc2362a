// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// rtbridge-server hosts a runtime heap and serves bridge sessions, either
// on an inherited descriptor pair or on a network listener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tliron/commonlog"
	"google.golang.org/grpc"

	"github.com/luxfi/rtbridge"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("rtbridge.main")

func main() {
	inFD := flag.Int("in", 0, "Descriptor to read requests from")
	outFD := flag.Int("out", 1, "Descriptor to write responses to")
	framing := flag.String("framing", rtbridge.DefaultTransport, "Stream framing: line or framed")
	codecName := flag.String("codec", rtbridge.CodecJSON, "Frame codec: json or cbor")
	configPath := flag.String("config", "", "Load settings from a TOML config file")
	grpcAddr := flag.String("grpc", "", "Serve gRPC sessions on this address instead of descriptors")
	httpAddr := flag.String("http", "", "Serve a JSON-RPC gateway on this address instead of descriptors")
	verbosity := flag.Int("v", 0, "Log verbosity (0 errors only, 1 info, 2 debug)")
	logPath := flag.String("log", "", "Log file (default stderr)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rtbridge-server [options]\n\n")
		fmt.Fprintf(os.Stderr, "Serves one bridge session over a descriptor pair, or many over the network.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rtbridge-server --in 3 --out 4          # Started by rtbridge.Start\n")
		fmt.Fprintf(os.Stderr, "  rtbridge-server --grpc localhost:7300   # gRPC sessions\n")
		fmt.Fprintf(os.Stderr, "  rtbridge-server --http localhost:7301   # JSON-RPC gateway\n")
	}
	flag.Parse()

	cfg := rtbridge.DefaultConfig()
	if *configPath != "" {
		loaded, err := rtbridge.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "framing":
			cfg.Transport.Framing = *framing
		case "codec":
			cfg.Transport.Codec = *codecName
		case "v":
			cfg.Log.Verbosity = *verbosity
		case "log":
			cfg.Log.File = *logPath
		}
	})

	var logFile *string
	if cfg.Log.File != "" {
		logFile = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, logFile)

	if err := run(cfg, *inFD, *outFD, *grpcAddr, *httpAddr); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}

func run(cfg *rtbridge.Config, inFD, outFD int, grpcAddr, httpAddr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	srv := rtbridge.NewServer(opts...)

	switch {
	case grpcAddr != "":
		return serveGRPC(ctx, srv, grpcAddr)
	case httpAddr != "":
		return serveHTTP(ctx, srv, httpAddr)
	}

	in := os.NewFile(uintptr(inFD), "bridge-in")
	out := os.NewFile(uintptr(outFD), "bridge-out")
	if in == nil || out == nil {
		return fmt.Errorf("invalid descriptors %d/%d", inFD, outFD)
	}
	log.Infof("serving on descriptors %d/%d (%s, %s)", inFD, outFD, cfg.Transport.Framing, cfg.Transport.Codec)
	return rtbridge.ServeFiles(ctx, srv, cfg.Transport.Framing, in, out)
}

func serveGRPC(ctx context.Context, srv *rtbridge.Server, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	gs := grpc.NewServer()
	rtbridge.RegisterGRPC(gs, srv)
	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()
	log.Infof("serving gRPC on %s", lis.Addr())
	return gs.Serve(lis)
}

func serveHTTP(ctx context.Context, srv *rtbridge.Server, addr string) error {
	gw, err := rtbridge.NewGateway(srv)
	if err != nil {
		return err
	}
	hs := &http.Server{Addr: addr, Handler: gw}
	go func() {
		<-ctx.Done()
		hs.Close()
	}()
	log.Infof("serving JSON-RPC gateway on %s", addr)
	if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
