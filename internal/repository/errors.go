// Package repository persists the sync history.  Sentinel errors defined
// here let higher layers such as handlers tell failure scenarios apart.
package repository

import "errors"

// ErrSyncRunNotFound is returned when no sync run has the requested id.
// Handlers should translate this into an HTTP 404 response.
var ErrSyncRunNotFound = errors.New("sync run not found")
