// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"slices"
	"sync"
)

// ConfigFieldSpec describes a config value that can be read and written by
// name, as `gamma config set` does.
//
//nolint:revive // ConfigFieldSpec reads better than FieldSpec at call sites
type ConfigFieldSpec struct {
	// Name is the key used on the command line
	Name string
	// Secret fields are redacted when displayed
	Secret bool
	// Validator checks a raw value before it is set. Optional.
	Validator func(value string) error
	// Setter stores a validated value
	Setter func(cfg *Config, value string)
	// Getter returns the current value as a string
	Getter func(cfg *Config) string
	// Unsetter restores the field to its zero value
	Unsetter func(cfg *Config)
}

var (
	fieldsMu sync.RWMutex
	fields   = map[string]ConfigFieldSpec{}
)

// RegisterConfigField adds a field to the registry. It panics on an
// incomplete spec or a duplicate name, which are programming errors.
func RegisterConfigField(spec ConfigFieldSpec) {
	if spec.Name == "" {
		panic("config field name cannot be empty")
	}
	if spec.Setter == nil || spec.Getter == nil || spec.Unsetter == nil {
		panic(fmt.Sprintf("config field %s must have a Setter, Getter and Unsetter", spec.Name))
	}

	fieldsMu.Lock()
	defer fieldsMu.Unlock()
	if _, exists := fields[spec.Name]; exists {
		panic(fmt.Sprintf("config field %s is already registered", spec.Name))
	}
	fields[spec.Name] = spec
}

// GetConfigFieldSpec returns the spec registered under name.
func GetConfigFieldSpec(name string) (ConfigFieldSpec, bool) {
	fieldsMu.RLock()
	defer fieldsMu.RUnlock()
	spec, ok := fields[name]
	return spec, ok
}

// ListConfigFields returns the registered field names in sorted order.
func ListConfigFields() []string {
	fieldsMu.RLock()
	defer fieldsMu.RUnlock()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupField(name string) (ConfigFieldSpec, error) {
	spec, ok := GetConfigFieldSpec(name)
	if !ok {
		return ConfigFieldSpec{}, fmt.Errorf("%w: %s (valid fields: %v)", ErrUnknownField, name, ListConfigFields())
	}
	return spec, nil
}

// SetValue validates value and stores it in the field registered as key.
func (c *Config) SetValue(key, value string) error {
	spec, err := lookupField(key)
	if err != nil {
		return err
	}
	if spec.Validator != nil {
		if err := spec.Validator(value); err != nil {
			return &FieldError{Field: key, Err: err}
		}
	}
	spec.Setter(c, value)
	return nil
}

// GetValue returns the value of the field registered as key. Secret values
// are redacted.
func (c *Config) GetValue(key string) (string, error) {
	spec, err := lookupField(key)
	if err != nil {
		return "", err
	}
	value := spec.Getter(c)
	if spec.Secret {
		return redact(value), nil
	}
	return value, nil
}

// UnsetValue resets the field registered as key.
func (c *Config) UnsetValue(key string) error {
	spec, err := lookupField(key)
	if err != nil {
		return err
	}
	spec.Unsetter(c)
	return nil
}
