// Package config loads the vault client settings: defaults, then an optional
// JSON or YAML file named by -c/-config, then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/filex"
	"github.com/dmitrijs2005/gophvault/internal/flagx"
	"github.com/dmitrijs2005/gophvault/internal/netx"
	"github.com/dmitrijs2005/gophvault/internal/timex"
)

type Config struct {
	ServerAddr     string
	RequestTimeout time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:50061"
	c.RequestTimeout = 30 * time.Second
}

type fileConfig struct {
	ServerAddr     string         `json:"server_addr" yaml:"server_addr"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// Load builds a Config from args (usually os.Args[1:]).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigPath(args); path != "" {
		var fc fileConfig
		if err := filex.DecodeFile(path, &fc); err != nil {
			return nil, err
		}
		if fc.ServerAddr != "" {
			cfg.ServerAddr = fc.ServerAddr
		}
		if fc.RequestTimeout.Duration != 0 {
			cfg.RequestTimeout = fc.RequestTimeout.Duration
		}
	}

	fs := flag.NewFlagSet("vault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address and port of the vault daemon")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	if err := fs.Parse(flagx.FilterArgs(args, flagx.Names(fs))); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if !netx.IsLoopbackAddr(cfg.ServerAddr) {
		return nil, fmt.Errorf("server address %q is not a loopback address", cfg.ServerAddr)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, errors.New("request timeout must be positive")
	}
	return cfg, nil
}
