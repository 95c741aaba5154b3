// Package config loads the passcheck driver configuration from a YAML file,
// .env files and PASSCHECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/passverify/passcheck"
	"github.com/passverify/passcheck/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PASSCHECK_"

// Config is the driver configuration. Command-line flags are applied on
// top of it by the caller.
type Config struct {
	// MasterKeyFile holds base64 key material. MasterKey, if set, takes
	// precedence and carries the same text inline.
	MasterKeyFile string `yaml:"master_key_file"`
	MasterKey     string `yaml:"master_key"`

	Events []string `yaml:"events"`

	// ExportPublicKeyFile, if set, requires every events file to carry a
	// valid detached signature under this ML-DSA-65 key.
	ExportPublicKeyFile string `yaml:"export_public_key_file"`

	MaxTimeDiff            time.Duration `yaml:"max_time_diff"`
	TrustedProducer        string        `yaml:"trusted_producer"`
	FlagIdenticalChecksums bool          `yaml:"flag_identical_checksums"`
	Concurrency            int           `yaml:"concurrency"`
	Output                 string        `yaml:"output"`
	MetricsFile            string        `yaml:"metrics_file"`

	Log logging.Config `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads the YAML file at path. An empty path yields Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.MaxTimeDiff == 0 {
		c.MaxTimeDiff = passcheck.DefaultMaxTimeDiff
	}
	if c.TrustedProducer == "" {
		c.TrustedProducer = passcheck.DefaultTrustedProducer
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// LoadEnv loads .env files into the process environment without
// overriding variables that are already set. With no paths it reads
// ".env" in the working directory, and a missing file is not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		err := godotenv.Load()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(paths...)
}

// ApplyEnv overrides fields from PASSCHECK_* variables looked up with
// getenv. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	str("MASTER_KEY_FILE", &c.MasterKeyFile)
	str("MASTER_KEY", &c.MasterKey)
	str("EXPORT_PUBLIC_KEY_FILE", &c.ExportPublicKeyFile)
	str("TRUSTED_PRODUCER", &c.TrustedProducer)
	str("OUTPUT", &c.Output)
	str("METRICS_FILE", &c.MetricsFile)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v := getenv(EnvPrefix + "EVENTS"); v != "" {
		c.Events = splitList(v)
	}
	if v := getenv(EnvPrefix + "MAX_TIME_DIFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sMAX_TIME_DIFF: %w", EnvPrefix, err)
		}
		c.MaxTimeDiff = d
	}
	if v := getenv(EnvPrefix + "CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCONCURRENCY: %w", EnvPrefix, err)
		}
		c.Concurrency = n
	}
	if v := getenv(EnvPrefix + "FLAG_IDENTICAL_CHECKSUMS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sFLAG_IDENTICAL_CHECKSUMS: %w", EnvPrefix, err)
		}
		c.FlagIdenticalChecksums = b
	}
	return nil
}

// Validate reports settings no run can use.
func (c *Config) Validate() error {
	if c.MaxTimeDiff < 0 {
		return fmt.Errorf("max_time_diff must not be negative, got %s", c.MaxTimeDiff)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := logging.New(io.Discard, c.Log); err != nil {
		return err
	}
	return nil
}

// LoadMasterKey resolves the configured key material.
func (c *Config) LoadMasterKey() (passcheck.MasterKey, error) {
	switch {
	case c.MasterKey != "":
		return passcheck.ParseMasterKey(c.MasterKey)
	case c.MasterKeyFile != "":
		return passcheck.LoadMasterKey(c.MasterKeyFile)
	}
	return nil, passcheck.ErrMissingMasterKey
}

// splitList splits paths joined with the OS list separator.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, string(os.PathListSeparator)) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
