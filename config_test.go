// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rtbridge.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[runtime]
executable = "/usr/bin/runtime"
args = ["-u", "server.py"]
env = ["PYTHONHASHSEED=0"]

[transport]
framing = "framed"
codec = "cbor"

[log]
verbosity = 2
file = "/tmp/rtbridge.log"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Runtime.Executable != "/usr/bin/runtime" || strings.Join(cfg.Runtime.Args, " ") != "-u server.py" {
		t.Errorf("runtime = %+v", cfg.Runtime)
	}
	if len(cfg.Runtime.Env) != 1 || cfg.Runtime.Env[0] != "PYTHONHASHSEED=0" {
		t.Errorf("env = %v", cfg.Runtime.Env)
	}
	if cfg.Transport.Framing != TransportFramed || cfg.Transport.Codec != CodecCBOR {
		t.Errorf("transport = %+v", cfg.Transport)
	}
	if cfg.Log.Verbosity != 2 || cfg.Log.File != "/tmp/rtbridge.log" {
		t.Errorf("log = %+v", cfg.Log)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if o := newOptions(opts); o.codec.Name() != CodecCBOR {
		t.Errorf("codec option = %s", o.codec.Name())
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[runtime]\nexecutable = \"rt\"\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Transport.Framing != DefaultTransport || cfg.Transport.Codec != CodecJSON {
		t.Errorf("transport = %+v", cfg.Transport)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[runtime\n", "parse error"},
		{"unknown framing", "[transport]\nframing = \"smoke\"\n", "unknown framing"},
		{"unknown codec", "[transport]\ncodec = \"xml\"\n", "unknown codec"},
		{"cbor over lines", "[transport]\ncodec = \"cbor\"\n", "requires"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want an error containing %q", err, tt.want)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("missing file loaded")
	}
}
