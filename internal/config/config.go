package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// TargetName is the only file name ds_clean removes
	TargetName = ".DS_Store"

	DefaultMaxPathLength   = 4096
	DefaultReadBatchSize   = 128
	DefaultIntervalMinutes = 60
	DefaultPrometheusPort  = 9109
	DefaultRotationDays    = 30
	DefaultNFSTimeout      = 5
	DefaultLogFile         = "ds-clean.log"
	DefaultDatabasePath    = "/var/lib/ds-clean/removals.db"
)

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"` // Negative disables the metrics server
}

type LoggingCfg struct {
	Dir          string `yaml:"dir" json:"dir"`                     // Empty means console only
	File         string `yaml:"file" json:"file"`                   // File name inside Dir
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"` // 0 disables throttling
}

type Config struct {
	Roots           []string       `yaml:"roots" json:"roots"`
	IntervalMinutes int            `yaml:"interval_minutes" json:"interval_minutes"`
	Verbose         bool           `yaml:"verbose" json:"verbose"`
	MaxPathLength   int            `yaml:"max_path_length" json:"max_path_length"`
	ReadBatchSize   int            `yaml:"read_batch_size" json:"read_batch_size"`
	ProtectedPaths  []string       `yaml:"protected_paths" json:"protected_paths"`
	Prometheus      PrometheusCfg  `yaml:"prometheus" json:"prometheus"`
	Logging         LoggingCfg     `yaml:"logging" json:"logging"`
	ResourceLimits  ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
	NFSTimeout      int            `yaml:"nfs_timeout_seconds" json:"nfs_timeout_seconds"` // Timeout for the stale mount probe
	DatabasePath    string         `yaml:"database_path" json:"database_path"`             // Path to SQLite database for removal history
}

var (
	errNoRoots        = errors.New("configuration must specify roots")
	errInvalidPath    = errors.New("path must be absolute")
	errNegativeLength = errors.New("max_path_length cannot be negative")
	errNegativeBatch  = errors.New("read_batch_size cannot be negative")
	errInvalidCPU     = errors.New("max_cpu_percent must be between 0 and 100")
)

// Default returns the settings ds_clean runs with when invoked from the command line.
// No roots, no history database, no metrics server, console logging only.
func Default() *Config {
	return &Config{
		IntervalMinutes: DefaultIntervalMinutes,
		MaxPathLength:   DefaultMaxPathLength,
		ReadBatchSize:   DefaultReadBatchSize,
		Prometheus:      PrometheusCfg{Port: -1},
		Logging: LoggingCfg{
			File:         DefaultLogFile,
			RotationDays: DefaultRotationDays,
		},
		NFSTimeout: DefaultNFSTimeout,
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if len(c.Roots) == 0 {
		return errNoRoots
	}

	if c.MaxPathLength < 0 {
		return errNegativeLength
	}
	if c.MaxPathLength == 0 {
		c.MaxPathLength = DefaultMaxPathLength
	}

	if c.ReadBatchSize < 0 {
		return errNegativeBatch
	}
	if c.ReadBatchSize == 0 {
		c.ReadBatchSize = DefaultReadBatchSize
	}

	if c.IntervalMinutes <= 0 {
		c.IntervalMinutes = DefaultIntervalMinutes
	}

	if c.Prometheus.Port == 0 {
		c.Prometheus.Port = DefaultPrometheusPort
	}

	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = DefaultRotationDays
	}
	if c.Logging.File == "" {
		c.Logging.File = DefaultLogFile
	}

	if c.ResourceLimits.MaxCPUPercent < 0 || c.ResourceLimits.MaxCPUPercent > 100 {
		return errInvalidCPU
	}

	if c.NFSTimeout <= 0 {
		c.NFSTimeout = DefaultNFSTimeout
	}

	if c.DatabasePath == "" {
		c.DatabasePath = DefaultDatabasePath
	}

	roots := make([]string, 0, len(c.Roots))
	for _, p := range c.Roots {
		cp, err := cleanAbsolute(p)
		if err != nil {
			return err
		}
		roots = append(roots, cp)
	}
	c.Roots = roots

	protected := make([]string, 0, len(c.ProtectedPaths))
	for _, p := range c.ProtectedPaths {
		cp, err := cleanAbsolute(p)
		if err != nil {
			return fmt.Errorf("protected_paths: %w", err)
		}
		protected = append(protected, cp)
	}
	c.ProtectedPaths = protected

	return nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errInvalidPath
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c *Config) NFSTimeoutDuration() time.Duration {
	return time.Duration(c.NFSTimeout) * time.Second
}

// PrometheusAddress returns the listen address, or "" when the server is disabled
func (c *Config) PrometheusAddress() string {
	if c.Prometheus.Port < 0 {
		return ""
	}
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
