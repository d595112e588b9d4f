package datasync

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stih/tank-insights/internal/model"
	"github.com/stih/tank-insights/internal/queue"
	"github.com/stih/tank-insights/internal/store"
)

// ErrSyncInProgress is returned when Run is called while another run is
// still going.
var ErrSyncInProgress = errors.New("sync already in progress")

// Store is the subset of *store.Store the syncer drives.
type Store interface {
	Invalidate(names ...string)
	Count(name string) (int, error)
	SaveSyncLog(l model.SyncLog) error
	SyncLog() (*model.SyncLog, error)
}

// Backuper snapshots data files before they are reloaded.
type Backuper interface {
	Snapshot(names []string) ([]string, error)
}

// CachePurger drops cached HTTP responses.
type CachePurger interface {
	Purge(ctx context.Context) (int, error)
}

// RunRecorder persists sync history.
type RunRecorder interface {
	Create(ctx context.Context, run model.SyncRun) error
	Finish(ctx context.Context, run model.SyncRun) error
}

// Publisher announces a finished sync to the other instances.
type Publisher interface {
	PublishDataSynced(ctx context.Context, ev queue.DataSyncedEvent) error
}

// Options wires the optional collaborators of a Syncer.  Nil fields are
// skipped.
type Options struct {
	Backups   Backuper
	Purger    CachePurger
	Runs      RunRecorder
	Publisher Publisher
	// Origin identifies this instance in published events.
	Origin string
}

// Result describes a successful run.
type Result struct {
	RunID    string             `json:"runId"`
	Message  string             `json:"message"`
	Counts   model.RecordCounts `json:"recordsImported"`
	Backups  []string           `json:"backups"`
	Purged   int                `json:"purged"`
	SyncedAt time.Time          `json:"lastSyncAt"`
}

// Status is the admin view of the sync state.
type Status struct {
	SyncLog  *model.SyncLog `json:"syncLog"`
	Provider ProviderStatus `json:"kaggleStatus"`
	Running  bool           `json:"running"`
}

// Syncer runs at most one refresh at a time.
type Syncer struct {
	refresher Refresher
	store     Store
	opts      Options

	running atomic.Bool
	now     func() time.Time
	newID   func() string
}

func NewSyncer(r Refresher, st Store, opts Options) *Syncer {
	return &Syncer{
		refresher: r,
		store:     st,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Running reports whether a run is in progress.
func (s *Syncer) Running() bool { return s.running.Load() }

// Run refreshes the data files and brings every cache in line with them.
// Backup, purge, history and publish failures are logged and do not fail
// the run.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	log := zap.L().Named("sync")
	run := model.SyncRun{ID: s.newID(), Status: model.SyncRunning, StartedAt: s.now()}
	if s.opts.Runs != nil {
		if err := s.opts.Runs.Create(ctx, run); err != nil {
			log.Warn("record sync run", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	log.Info("sync started", zap.String("run_id", run.ID))

	refreshed, err := s.refresher.Refresh(ctx)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	var backups []string
	if s.opts.Backups != nil {
		backups, err = s.opts.Backups.Snapshot(store.DataFiles)
		if err != nil {
			log.Warn("backup failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	s.store.Invalidate()
	counts, err := s.count()
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	syncedAt := s.now()
	if err := s.store.SaveSyncLog(model.SyncLog{
		LastSyncAt:      syncedAt,
		Status:          model.SyncSuccess,
		Message:         refreshed.Message,
		RecordsImported: &counts,
	}); err != nil {
		return nil, s.fail(ctx, run, err)
	}

	res := &Result{
		RunID:    run.ID,
		Message:  refreshed.Message,
		Counts:   counts,
		Backups:  backups,
		SyncedAt: syncedAt,
	}
	if s.opts.Purger != nil {
		n, err := s.opts.Purger.Purge(ctx)
		if err != nil {
			log.Warn("purge response cache", zap.Error(err))
		}
		res.Purged = n
	}

	run.Status = model.SyncSuccess
	run.FinishedAt = &syncedAt
	run.Message = refreshed.Message
	run.Counts = &counts
	run.Backups = backups
	s.finish(ctx, run)

	if s.opts.Publisher != nil {
		ev := queue.DataSyncedEvent{
			RunID:    run.ID,
			Origin:   s.opts.Origin,
			Status:   model.SyncSuccess,
			Message:  refreshed.Message,
			Counts:   &counts,
			Backups:  backups,
			SyncedAt: syncedAt.Format(time.RFC3339),
		}
		if err := s.opts.Publisher.PublishDataSynced(ctx, ev); err != nil {
			log.Warn("publish data.synced", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	log.Info("sync finished",
		zap.String("run_id", run.ID),
		zap.Int("pitches", counts.Pitches),
		zap.Int("backups", len(backups)),
		zap.Int("purged", res.Purged),
	)
	return res, nil
}

func (s *Syncer) count() (model.RecordCounts, error) {
	var c model.RecordCounts
	targets := []struct {
		name string
		dst  *int
	}{
		{store.PitchesFile, &c.Pitches},
		{store.SharksFile, &c.Sharks},
		{store.SeasonsFile, &c.Seasons},
		{store.IndustriesFile, &c.Industries},
	}
	for _, t := range targets {
		n, err := s.store.Count(t.name)
		if err != nil {
			return c, eris.Wrapf(err, "count %s", t.name)
		}
		*t.dst = n
	}
	return c, nil
}

// fail records a failed run and returns cause unchanged.
func (s *Syncer) fail(ctx context.Context, run model.SyncRun, cause error) error {
	log := zap.L().Named("sync")
	log.Error("sync failed", zap.String("run_id", run.ID), zap.Error(cause))

	at := s.now()
	if err := s.store.SaveSyncLog(model.SyncLog{
		LastSyncAt: at,
		Status:     model.SyncError,
		Error:      cause.Error(),
	}); err != nil {
		log.Warn("save error sync log", zap.Error(err))
	}
	run.Status = model.SyncError
	run.FinishedAt = &at
	run.Error = cause.Error()
	s.finish(ctx, run)
	return cause
}

func (s *Syncer) finish(ctx context.Context, run model.SyncRun) {
	if s.opts.Runs == nil {
		return
	}
	// the request context may already be cancelled; history is still wanted
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.opts.Runs.Finish(ctx, run); err != nil {
		zap.L().Warn("finish sync run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// Status returns the last sync log together with a live provider check.
// A missing sync log is reported as nil.
func (s *Syncer) Status(ctx context.Context) Status {
	st := Status{Running: s.Running()}
	if l, err := s.store.SyncLog(); err == nil {
		st.SyncLog = l
	}
	st.Provider = s.refresher.Check(ctx)
	return st
}
