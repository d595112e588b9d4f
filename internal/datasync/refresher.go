// Package datasync refreshes the backing data files from the upstream
// provider and fans the result out: backups, cache invalidation, the sync
// log, the sync history table and the data.synced event.
package datasync

import "context"

// Provider status values reported by Check.
const (
	ProviderOnline  = "online"
	ProviderOffline = "offline"
)

// RefreshResult is what a successful refresh reports back.
type RefreshResult struct {
	Message string
	Output  string
}

// ProviderDebug carries the raw facts behind a ProviderStatus.
type ProviderDebug struct {
	ExitCode     int  `json:"exitCode"`
	OutputLength int  `json:"outputLength"`
	HasError     bool `json:"hasError"`
}

// ProviderStatus reports whether the upstream provider is reachable.
type ProviderStatus struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Debug   ProviderDebug `json:"debug"`
}

// Refresher rewrites the data files from the upstream provider.
type Refresher interface {
	Refresh(ctx context.Context) (RefreshResult, error)
	Check(ctx context.Context) ProviderStatus
}
