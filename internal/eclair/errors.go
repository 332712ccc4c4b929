// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package eclair

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized        = errors.New("eclair: unauthorized, check the API password")
	ErrNotFound            = errors.New("eclair: method not found")
	ErrUpstreamUnavailable = errors.New("eclair: node unreachable or transport failure")
	ErrUpstreamError       = errors.New("eclair: node returned an error")
	ErrBadResponse         = errors.New("eclair: malformed response")
	ErrTimeout             = errors.New("eclair: request timed out")
)

// maxErrorBody bounds how much of a failed reply ends up in an error.
const maxErrorBody = 256

// APIError carries the context of a failed call. It matches both its
// sentinel and the lower-level cause under errors.Is.
type APIError struct {
	Sentinel error
	Method   string
	Status   int
	Body     string
	Err      error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Method, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}

func statusSentinel(code int) error {
	switch {
	case code == 401 || code == 403:
		return ErrUnauthorized
	case code == 404:
		return ErrNotFound
	default:
		return ErrUpstreamError
	}
}
