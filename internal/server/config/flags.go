package config

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/flagx"
)

// parseFlags overrides config with command-line flags. The config file flag
// is handled by Load and skipped here.
//
//	-a               gRPC listen address (loopback only)
//	-driver          database driver: sqlite or postgres
//	-d               database DSN
//	-kdf             key derivation: pbkdf2-sha256 or argon2id
//	-kdf-iterations  KDF iteration count / Argon2 time cost
//	-idle            idle timeout before the vault locks itself, 0 disables
//	-token-ttl       session token lifetime
//	-login-rate      setup/login attempts per minute per peer
//	-login-burst     setup/login burst size
//	-log-level       debug, info, warn or error
//	-log-format      text or json
//	-backup-dir      local directory for backup archives
//	-s3-bucket, -s3-region, -s3-endpoint, -s3-access-key, -s3-secret-key, -s3-prefix
//	-restore         backup file or s3:// key to restore into an empty store
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("vaultd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Address, "a", config.Address, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	kdf := fs.String("kdf", string(config.KDF), "key derivation function")
	iterations := fs.Uint("kdf-iterations", uint(config.KDFIterations), "key derivation iterations")
	fs.DurationVar(&config.IdleTimeout, "idle", config.IdleTimeout, "idle timeout")
	fs.DurationVar(&config.TokenTTL, "token-ttl", config.TokenTTL, "session token lifetime")
	fs.Float64Var(&config.LoginRate, "login-rate", config.LoginRate, "login attempts per minute")
	fs.IntVar(&config.LoginBurst, "login-burst", config.LoginBurst, "login burst")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")
	fs.StringVar(&config.BackupDir, "backup-dir", config.BackupDir, "backup directory")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3Endpoint, "s3-endpoint", config.S3Endpoint, "S3 endpoint")
	fs.StringVar(&config.S3AccessKey, "s3-access-key", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "s3-secret-key", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Prefix, "s3-prefix", config.S3Prefix, "S3 key prefix")
	fs.StringVar(&config.RestoreFrom, "restore", config.RestoreFrom, "restore from backup")

	if err := fs.Parse(flagx.FilterArgs(args, flagx.Names(fs))); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if *iterations > uint(^uint32(0)) {
		return fmt.Errorf("parse flags: kdf-iterations %d out of range", *iterations)
	}
	config.KDF = cryptox.KDFAlgorithm(strings.ToLower(*kdf))
	config.KDFIterations = uint32(*iterations)
	return nil
}
