// Package config holds the disassembler tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/sarchlab/vc4dis/listing"
	"github.com/sarchlab/vc4dis/memory"
)

// Config holds the settings of a disassembly run.
type Config struct {
	// Format is the listing format: text, yaml, cbor or dump.
	// Default: text.
	Format string `yaml:"format" json:"format"`

	// Raw treats the input as a flat binary instead of an ELF file.
	// Default: false.
	Raw bool `yaml:"raw" json:"raw"`

	// BaseAddress is the address of the first byte of a raw binary.
	// Default: 0.
	BaseAddress uint64 `yaml:"base_address" json:"base_address"`

	// Start and End bound the swept addresses. End 0 means the end of the
	// input. With an ELF input and both zero, every executable segment is
	// swept.
	Start uint64 `yaml:"start" json:"start"`
	End   uint64 `yaml:"end" json:"end"`

	// Workers is the number of ranges decoded in parallel. Default: 1.
	Workers int `yaml:"workers" json:"workers"`

	// Color enables terminal colors in the text listing. Default: false.
	Color bool `yaml:"color" json:"color"`

	// LogLevel is a zerolog level name. Default: warn.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// CacheSize, CacheWays and CacheBlock configure the block cache in
	// front of raw inputs read from disk. CacheSize 0 disables the cache.
	CacheSize  int `yaml:"cache_size" json:"cache_size"`
	CacheWays  int `yaml:"cache_ways" json:"cache_ways"`
	CacheBlock int `yaml:"cache_block" json:"cache_block"`
}

// Default returns the default configuration.
func Default() *Config {
	cache := memory.DefaultCacheConfig()
	return &Config{
		Format:     string(listing.FormatText),
		Workers:    1,
		LogLevel:   zerolog.WarnLevel.String(),
		CacheSize:  cache.Size,
		CacheWays:  cache.Associativity,
		CacheBlock: cache.BlockSize,
	}
}

// Load reads a YAML or JSON configuration file. Missing keys keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return c, nil
}

// Save writes the configuration. Files ending in .json are written as JSON,
// everything else as YAML.
func (c *Config) Save(path string) error {
	var opts []yaml.EncodeOption
	if strings.EqualFold(filepath.Ext(path), ".json") {
		opts = append(opts, yaml.JSON())
	}

	data, err := yaml.MarshalWithOptions(c, opts...)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if _, err := listing.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be > 0")
	}
	if c.End != 0 && c.End < c.Start {
		return fmt.Errorf("end 0x%x is below start 0x%x", c.End, c.Start)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be >= 0")
	}
	if c.CacheSize > 0 {
		if c.CacheWays < 1 || c.CacheBlock < 2 {
			return fmt.Errorf("cache_ways must be > 0 and cache_block >= 2")
		}
		if c.CacheSize%(c.CacheWays*c.CacheBlock) != 0 {
			return fmt.Errorf("cache_size must be a multiple of cache_ways*cache_block")
		}
	}
	return nil
}

// Level returns the parsed log level, falling back to warn.
func (c *Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return l
}

// Cache returns the block cache configuration and whether the cache is
// enabled.
func (c *Config) Cache() (memory.CacheConfig, bool) {
	return memory.CacheConfig{
		Size:          c.CacheSize,
		Associativity: c.CacheWays,
		BlockSize:     c.CacheBlock,
	}, c.CacheSize > 0
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
