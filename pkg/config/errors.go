// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a config key is not registered.
var ErrUnknownField = errors.New("unknown config field")

// FieldError wraps a rejected value for a config field
type FieldError struct {
	// Field is the name of the config field
	Field string
	// Err is the underlying error
	Err error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
