// Package config loads the daemon settings: built-in defaults, then an
// optional JSON or YAML file named by -c/-config, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/filex"
	"github.com/dmitrijs2005/gophvault/internal/flagx"
	"github.com/dmitrijs2005/gophvault/internal/netx"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
)

// Config holds runtime settings for the vault daemon.
type Config struct {
	Address string

	DatabaseDriver string
	DatabaseDSN    string

	KDF cryptox.KDFAlgorithm
	// KDFIterations of zero selects the algorithm's default work factor.
	KDFIterations uint32

	IdleTimeout   time.Duration
	WatchInterval time.Duration
	TokenTTL      time.Duration

	// LoginRate is the number of setup/login attempts per minute allowed
	// from one peer, LoginBurst the bucket size.
	LoginRate  float64
	LoginBurst int

	LogLevel  string
	LogFormat string

	BackupDir   string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string

	// RestoreFrom is a backup file path or s3:// key loaded at start.
	RestoreFrom string
}

// LoadDefaults sets values suitable for a single local user.
func (c *Config) LoadDefaults() {
	c.Address = "127.0.0.1:50061"
	c.DatabaseDriver = repomanager.DriverSQLite
	c.DatabaseDSN = "gophvault.db"
	c.KDF = cryptox.KDFPBKDF2SHA256
	c.IdleTimeout = 15 * time.Minute
	c.WatchInterval = 30 * time.Second
	c.TokenTTL = 12 * time.Hour
	c.LoginRate = 5
	c.LoginBurst = 5
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.BackupDir = "backups"
	c.S3Region = "us-east-1"
	c.S3Prefix = "gophvault"
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
		fc.apply(cfg)
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) KDFParams() cryptox.KDFParams {
	p := cryptox.KDFParams{Algorithm: c.KDF, Iterations: c.KDFIterations}
	if p.Iterations == 0 {
		switch p.Algorithm {
		case cryptox.KDFArgon2id:
			p.Iterations = cryptox.DefaultArgon2Iterations
		default:
			p.Iterations = cryptox.DefaultPBKDF2Iterations
		}
	}
	return p
}

func (c *Config) Validate() error {
	var errs []error

	if err := netx.CheckListenAddr(c.Address); err != nil {
		errs = append(errs, err)
	}
	if c.DatabaseDriver != repomanager.DriverSQLite && c.DatabaseDriver != repomanager.DriverPostgres {
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is empty"))
	}
	if err := c.KDFParams().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.IdleTimeout < 0 {
		errs = append(errs, errors.New("idle timeout must not be negative"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		errs = append(errs, errors.New("login rate and burst must be positive"))
	}
	if c.BackupDir == "" {
		errs = append(errs, errors.New("backup dir is empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
