// Package services implements the record store accessors, the recurring
// due-date scanner, and the alert engine. Accessors own the error policy
// from the product: a failure is surfaced to the user through the
// notification sink and returned as an error the caller treats as "no-op,
// keep UI state".
package services

import "errors"

// ErrUnauthenticated is returned when an owner-scoped operation runs
// without an active principal.
var ErrUnauthenticated = errors.New("no authenticated principal")
