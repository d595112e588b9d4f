package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/stih/tank-insights/internal/model"
)

// SyncLog returns the last persisted sync log.
func (s *Store) SyncLog() (*model.SyncLog, error) {
	return load(s, SyncLogFile, func(raw []byte) (*model.SyncLog, error) {
		var l model.SyncLog
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, err
		}
		return &l, nil
	})
}

// SaveSyncLog overwrites sync-log.json and drops its cached copy.  The file
// is written to a temporary sibling and renamed into place; a single writer
// is assumed.
func (s *Store) SaveSyncLog(l model.SyncLog) error {
	body, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return eris.Wrap(err, "store: marshal sync log")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return eris.Wrap(err, "store: create data dir")
	}

	path := filepath.Join(s.dir, SyncLogFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return eris.Wrap(err, "store: write sync log")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrap(err, "store: replace sync log")
	}
	s.Invalidate(SyncLogFile)
	return nil
}
