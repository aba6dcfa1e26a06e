// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/gamma/pkg/logger"
)

// lockTimeout is the maximum time to wait for a file lock
const lockTimeout = 1 * time.Second

// Store defines the interface for configuration storage operations
type Store interface {
	// Load loads the configuration from storage
	Load(ctx context.Context) (*Config, error)
	// Save saves the configuration to storage
	Save(ctx context.Context, config *Config) error
	// Exists checks if configuration exists in storage
	Exists(ctx context.Context) (bool, error)
	// Update performs a locked update operation on the configuration.
	// Nothing is written when updateFn returns an error.
	Update(ctx context.Context, updateFn func(*Config) error) error
	// Path is where the configuration is stored
	Path() (string, error)
}

// LocalStore implements Store using a YAML file on the local file system
type LocalStore struct {
	configPath string
}

// NewLocalStore creates a new local file-based configuration store.
// An empty configPath uses the XDG default.
func NewLocalStore(configPath string) *LocalStore {
	return &LocalStore{
		configPath: configPath,
	}
}

// Path returns the config file path, resolving the default when unset.
func (s *LocalStore) Path() (string, error) {
	if s.configPath != "" {
		return filepath.Clean(s.configPath), nil
	}
	configPath, err := DefaultPath()
	if err != nil {
		return "", fmt.Errorf("unable to fetch config path: %w", err)
	}
	return filepath.Clean(configPath), nil
}

// Load loads configuration from the local file, creating it with default
// values when it does not exist yet.
func (s *LocalStore) Load(_ context.Context) (*Config, error) {
	configPath, err := s.Path()
	if err != nil {
		return nil, err
	}

	// #nosec G304: the path is either the XDG default or given by the user.
	configFile, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		config := createNewConfigWithDefaults()

		logger.Debugf("initializing configuration file at %s", configPath)
		if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := config.saveToPath(configPath); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		return &config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read config file %s: %w", configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(configFile, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file yaml: %w", err)
	}
	return &config, nil
}

// Save saves configuration to the local file
func (s *LocalStore) Save(_ context.Context, config *Config) error {
	configPath, err := s.Path()
	if err != nil {
		return err
	}
	return config.saveToPath(configPath)
}

// Exists checks if the local config file exists
func (s *LocalStore) Exists(_ context.Context) (bool, error) {
	configPath, err := s.Path()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}
	return true, nil
}

// Update performs a locked update operation on the configuration
func (s *LocalStore) Update(ctx context.Context, updateFn func(*Config) error) error {
	configPath, err := s.Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use a separate lock file for cross-platform compatibility
	fileLock := flock.New(configPath + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock: timeout after %v", lockTimeout)
	}
	defer func() { _ = fileLock.Unlock() }()

	// Load after acquiring the lock so concurrent updates are not lost.
	config, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := updateFn(config); err != nil {
		return err
	}

	if err := s.Save(ctx, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
