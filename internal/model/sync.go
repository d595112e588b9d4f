package model

import "time"

// Sync statuses shared by the sync log file and the sync_runs table.
const (
	SyncSuccess = "success"
	SyncError   = "error"
	SyncRunning = "running"
)

// RecordCounts holds the number of records per collection after a refresh.
type RecordCounts struct {
	Pitches    int `json:"pitches"`
	Sharks     int `json:"sharks"`
	Seasons    int `json:"seasons"`
	Industries int `json:"industries"`
}

// SyncLog is the document persisted to sync-log.json after every refresh
// attempt.  It is overwritten wholesale.
type SyncLog struct {
	LastSyncAt      time.Time     `json:"lastSyncAt"`
	Status          string        `json:"status"`
	Message         string        `json:"message,omitempty"`
	Error           string        `json:"error,omitempty"`
	RecordsImported *RecordCounts `json:"recordsImported,omitempty"`
}

// SyncRun models a row in the `sync_runs` table.
//
// Fields:
//  ID         – uuid of the run.
//  Status     – running, success or error.
//  StartedAt  – when the run began.
//  FinishedAt – when it ended (nil while running).
//  Message    – provider message on success.
//  Error      – failure reason.
//  Counts     – record counts on success.
//  Backups    – backup file names written by the run.
type SyncRun struct {
	ID         string        `json:"id"`
	Status     string        `json:"status"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty"`
	Message    string        `json:"message,omitempty"`
	Error      string        `json:"error,omitempty"`
	Counts     *RecordCounts `json:"counts,omitempty"`
	Backups    []string      `json:"backups,omitempty"`
}
