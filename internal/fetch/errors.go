// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package fetch

import (
	"errors"
	"fmt"
)

// StatusError is a terminal, unretryable HTTP status returned by the API.
// Body carries the (possibly truncated) response body as a diagnostic.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api status %d", e.Code)
	}
	return fmt.Sprintf("api status %d: %s", e.Code, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// ErrRetriesExhausted terminates a logical request once the configured
// resend cap is reached. Wrapped around the final StatusError.
var ErrRetriesExhausted = errors.New("retries exhausted")
