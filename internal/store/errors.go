// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when a row with the same unique key exists.
var ErrDuplicate = errors.New("duplicate record")

// MapError maps unique-constraint violations of any supported driver to
// ErrDuplicate. Matching is on the message to keep driver types out of
// this package.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry (1062), Postgres unique violation (23505), SQLite UNIQUE constraint.
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	return err
}
