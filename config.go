// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config describes how to start a runtime and talk to it. It is usually
// loaded from an rtbridge.toml file.
type Config struct {
	Runtime   RuntimeConfig   `toml:"runtime"`
	Transport TransportConfig `toml:"transport"`
	Log       LogConfig       `toml:"log"`
}

// RuntimeConfig names the runtime executable. The bridge appends the
// descriptor flags (--in, --out) and the transport flags to Args.
type RuntimeConfig struct {
	Executable string   `toml:"executable"`
	Args       []string `toml:"args"`
	// Env entries (KEY=value) are added to the inherited environment.
	Env []string `toml:"env"`
}

// TransportConfig selects the stream framing and frame codec.
type TransportConfig struct {
	Framing string `toml:"framing"`
	Codec   string `toml:"codec"`
}

// LogConfig is passed to commonlog.Configure.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// DefaultConfig returns a config with the default framing and codec and no
// runtime executable.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Framing: DefaultTransport,
			Codec:   CodecJSON,
		},
	}
}

// LoadConfig reads a TOML config file. Omitted settings keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the framing and codec exist and can be combined.
func (c *Config) Validate() error {
	if !HasTransport(c.Transport.Framing) {
		return fmt.Errorf("unknown framing %q (available: %v)", c.Transport.Framing, AvailableTransports())
	}
	codec, err := LookupCodec(c.Transport.Codec)
	if err != nil {
		return err
	}
	// Binary frames may contain newline bytes.
	if c.Transport.Framing == TransportLine && codec.Name() != CodecJSON {
		return fmt.Errorf("codec %q requires the %q framing", codec.Name(), TransportFramed)
	}
	return nil
}

// Options returns the client/server options the config selects.
func (c *Config) Options() ([]Option, error) {
	codec, err := LookupCodec(c.Transport.Codec)
	if err != nil {
		return nil, err
	}
	return []Option{WithCodec(codec)}, nil
}

var errNoExecutable = errors.New("config: runtime.executable is not set")
