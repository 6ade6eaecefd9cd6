package config

import (
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/timex"
)

// fileConfig mirrors Config for JSON and YAML files. Missing or zero
// values leave the current setting alone.
type fileConfig struct {
	Address        string          `json:"address" yaml:"address"`
	DatabaseDriver string          `json:"database_driver" yaml:"database_driver"`
	DatabaseDSN    string          `json:"database_dsn" yaml:"database_dsn"`
	KDF            string          `json:"kdf" yaml:"kdf"`
	KDFIterations  uint32          `json:"kdf_iterations" yaml:"kdf_iterations"`
	IdleTimeout    *timex.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	WatchInterval  timex.Duration  `json:"watch_interval" yaml:"watch_interval"`
	TokenTTL       timex.Duration  `json:"token_ttl" yaml:"token_ttl"`
	LoginRate      float64         `json:"login_rate" yaml:"login_rate"`
	LoginBurst     int             `json:"login_burst" yaml:"login_burst"`
	LogLevel       string          `json:"log_level" yaml:"log_level"`
	LogFormat      string          `json:"log_format" yaml:"log_format"`
	BackupDir      string          `json:"backup_dir" yaml:"backup_dir"`
	S3Bucket       string          `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       string          `json:"s3_region" yaml:"s3_region"`
	S3Endpoint     string          `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3AccessKey    string          `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    string          `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Prefix       string          `json:"s3_prefix" yaml:"s3_prefix"`
	RestoreFrom    string          `json:"restore_from" yaml:"restore_from"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (f *fileConfig) apply(c *Config) {
	setString(&c.Address, f.Address)
	setString(&c.DatabaseDriver, f.DatabaseDriver)
	setString(&c.DatabaseDSN, f.DatabaseDSN)
	if f.KDF != "" {
		c.KDF = cryptox.KDFAlgorithm(f.KDF)
	}
	if f.KDFIterations != 0 {
		c.KDFIterations = f.KDFIterations
	}
	// zero is meaningful here: it disables idle expiry
	if f.IdleTimeout != nil {
		c.IdleTimeout = f.IdleTimeout.Duration
	}
	if f.WatchInterval.Duration != 0 {
		c.WatchInterval = f.WatchInterval.Duration
	}
	if f.TokenTTL.Duration != 0 {
		c.TokenTTL = f.TokenTTL.Duration
	}
	if f.LoginRate != 0 {
		c.LoginRate = f.LoginRate
	}
	if f.LoginBurst != 0 {
		c.LoginBurst = f.LoginBurst
	}
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.LogFormat, f.LogFormat)
	setString(&c.BackupDir, f.BackupDir)
	setString(&c.S3Bucket, f.S3Bucket)
	setString(&c.S3Region, f.S3Region)
	setString(&c.S3Endpoint, f.S3Endpoint)
	setString(&c.S3AccessKey, f.S3AccessKey)
	setString(&c.S3SecretKey, f.S3SecretKey)
	setString(&c.S3Prefix, f.S3Prefix)
	setString(&c.RestoreFrom, f.RestoreFrom)
}
