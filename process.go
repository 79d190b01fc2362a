// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// shutdownGrace is how long Shutdown waits for the runtime to exit after
// its pipes are closed.
const shutdownGrace = time.Second

// Descriptor numbers of the runtime's ends of the pipe pair.
const (
	runtimeInFD  = 3
	runtimeOutFD = 4
)

// Process is a runtime started by Start.
type Process struct {
	cmd    *exec.Cmd
	client *Client

	waitDone chan struct{}
	waitErr  error
}

// Start spawns the runtime named by cfg and connects a client to it. The
// runtime reads requests from descriptor 3 and writes responses to
// descriptor 4. ctx bounds the startup handshake only.
func Start(ctx context.Context, cfg *Config) (*Process, error) {
	if cfg.Runtime.Executable == "" {
		return nil, errNoExecutable
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	// requests: parent -> child; responses: child -> parent
	reqR, reqW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("request pipe: %w", err)
	}
	respR, respW, err := os.Pipe()
	if err != nil {
		reqR.Close()
		reqW.Close()
		return nil, fmt.Errorf("response pipe: %w", err)
	}

	args := append([]string{}, cfg.Runtime.Args...)
	args = append(args,
		"--in", fmt.Sprint(runtimeInFD),
		"--out", fmt.Sprint(runtimeOutFD),
		"--framing", cfg.Transport.Framing,
		"--codec", cfg.Transport.Codec,
	)
	cmd := exec.Command(cfg.Runtime.Executable, args...)
	cmd.ExtraFiles = []*os.File{reqR, respW}
	cmd.Env = append(os.Environ(), cfg.Runtime.Env...)
	cmd.Stderr = os.Stderr
	setProcAttr(cmd)

	err = cmd.Start()
	// The child holds its own copies now.
	reqR.Close()
	respW.Close()
	if err != nil {
		reqW.Close()
		respR.Close()
		return nil, fmt.Errorf("start %s: %w", cfg.Runtime.Executable, err)
	}
	clientLog.Infof("started runtime %s (pid %d)", cfg.Runtime.Executable, cmd.Process.Pid)

	t, err := NewTransport(cfg.Transport.Framing, NewPipe(respR, reqW))
	if err != nil {
		reqW.Close()
		respR.Close()
		killProcess(cmd)
		cmd.Wait()
		return nil, err
	}
	p := &Process{
		cmd:      cmd,
		client:   NewClient(t, opts...),
		waitDone: make(chan struct{}),
	}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.waitDone)
	}()

	if err := p.client.Ping(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("runtime handshake: %w", err), p.Shutdown())
	}
	return p, nil
}

// Client returns the client connected to the runtime.
func (p *Process) Client() *Client { return p.client }

// Pid returns the runtime's process id.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Done is closed when the runtime has exited.
func (p *Process) Done() <-chan struct{} { return p.waitDone }

// Shutdown closes the session, which asks the runtime to exit, and kills
// the runtime's process group if it is still running after a grace period.
func (p *Process) Shutdown() error {
	p.client.Close()
	select {
	case <-p.waitDone:
	case <-time.After(shutdownGrace):
		clientLog.Warningf("runtime %d did not exit, killing it", p.cmd.Process.Pid)
		killProcess(p.cmd)
		<-p.waitDone
	}
	var exitErr *exec.ExitError
	if errors.As(p.waitErr, &exitErr) && !exitErr.Exited() {
		// Killed by us.
		return nil
	}
	return p.waitErr
}

// ServeFiles runs a server session over a descriptor pair inherited from
// the process that started the runtime.
func ServeFiles(ctx context.Context, srv *Server, framing string, in, out *os.File) error {
	t, err := NewTransport(framing, NewPipe(in, out))
	if err != nil {
		return err
	}
	return srv.Serve(ctx, t)
}
