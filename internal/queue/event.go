// Package queue defines the messages exchanged over the broker and the
// background consumer that reacts to them.
package queue

import "github.com/stih/tank-insights/internal/model"

// DataSyncedExchange is the fanout exchange every instance binds to.
const DataSyncedExchange = "data.synced"

// DataSyncedEvent is published after a successful data refresh so that
// every running instance drops its cached collections.  Origin identifies
// the publishing instance.
type DataSyncedEvent struct {
	RunID    string              `json:"run_id"`
	Origin   string              `json:"origin"`
	Status   string              `json:"status"`
	Message  string              `json:"message,omitempty"`
	Counts   *model.RecordCounts `json:"counts,omitempty"`
	Backups  []string            `json:"backups,omitempty"`
	SyncedAt string              `json:"synced_at"`
}
