// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package tokenservice

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openchami/macsmith/pkg/errors"
)

// FileConfig represents the configuration stored in a file. Durations are
// written in time.ParseDuration syntax ("1h", "30s").
type FileConfig struct {
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience,omitempty"`
	TokenLifetime string `yaml:"token_lifetime,omitempty"`
	ClockSkew     string `yaml:"clock_skew,omitempty"`
	CacheSize     int    `yaml:"cache_size,omitempty"`
	KeysetPath    string `yaml:"keyset_path"`
}

// DefaultFileConfig returns a default file configuration
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Issuer:        "http://macsmith:8080",
		TokenLifetime: "1h",
		ClockSkew:     "5s",
		KeysetPath:    "keyset.yaml",
	}
}

// LoadFileConfig loads configuration from a file
func LoadFileConfig(configPath string) (*FileConfig, error) {
	if configPath == "" {
		return DefaultFileConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveFileConfig saves configuration to a file
func SaveFileConfig(config *FileConfig, configPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ServiceConfig converts the file configuration into a service Config
func (c *FileConfig) ServiceConfig() (Config, error) {
	config := Config{
		Issuer:    c.Issuer,
		Audience:  c.Audience,
		CacheSize: c.CacheSize,
	}

	var err error
	if c.TokenLifetime != "" {
		config.TokenLifetime, err = time.ParseDuration(c.TokenLifetime)
		if err != nil {
			return Config{}, errors.Wrapf(err, errors.ErrCodeInvalidConfig, "invalid token_lifetime %q", c.TokenLifetime)
		}
	}
	if c.ClockSkew != "" {
		config.ClockSkew, err = time.ParseDuration(c.ClockSkew)
		if err != nil {
			return Config{}, errors.Wrapf(err, errors.ErrCodeInvalidConfig, "invalid clock_skew %q", c.ClockSkew)
		}
	}

	return config, nil
}
