package queue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stih/tank-insights/internal/model"
)

type fakeStore struct{ calls int }

func (f *fakeStore) Invalidate(names ...string) { f.calls++ }

func TestSyncHandler_RemoteEventInvalidatesAndLogs(t *testing.T) {
	st := &fakeStore{}
	logPath := filepath.Join(t.TempDir(), "logs", "sync.log")
	h := NewSyncHandler(st, "instance-a", logPath)

	body := []byte(`{"run_id":"r1","origin":"instance-b","status":"success",
        "counts":{"pitches":702,"sharks":8,"seasons":5,"industries":18},
        "backups":["pitches_170225093005.json"],"synced_at":"2025-02-17T09:30:05Z"}`)
	require.NoError(t, handleMessage(body, h))
	assert.Equal(t, 1, st.calls)

	got, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t,
		"[2025-02-17T09:30:05Z] Data synced | run_id=r1 | origin=instance-b | status=success | pitches=702 sharks=8 seasons=5 industries=18 | backups=[pitches_170225093005.json]\n",
		string(got))
}

func TestSyncHandler_OwnEventOnlyLogs(t *testing.T) {
	st := &fakeStore{}
	logPath := filepath.Join(t.TempDir(), "sync.log")
	h := NewSyncHandler(st, "instance-a", logPath)

	require.NoError(t, h(DataSyncedEvent{RunID: "r2", Origin: "instance-a", Status: model.SyncSuccess}))
	require.NoError(t, h(DataSyncedEvent{RunID: "r3", Origin: "instance-a", Status: model.SyncSuccess}))
	assert.Zero(t, st.calls)

	got, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "run_id=r2")
	assert.Contains(t, string(got), "run_id=r3 | origin=instance-a | status=success | - | backups=[]")
}

func TestHandleMessage_Rejects(t *testing.T) {
	called := false
	h := func(DataSyncedEvent) error { called = true; return nil }

	assert.Error(t, handleMessage([]byte(`not json`), h))
	assert.Error(t, handleMessage([]byte(`{"origin":"x"}`), h))
	assert.False(t, called)
}
