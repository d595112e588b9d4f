package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"github.com/stih/tank-insights/internal/model"
)

// SyncRunRepo records every data sync in the sync_runs table.  Timestamps
// are stored as unix milliseconds so the same schema works on MySQL and
// SQLite.
type SyncRunRepo struct{ DB *sql.DB }

func NewSyncRunRepo(db *sql.DB) *SyncRunRepo { return &SyncRunRepo{DB: db} }

const syncRunsSchema = `CREATE TABLE IF NOT EXISTS sync_runs (
	id          VARCHAR(36) NOT NULL PRIMARY KEY,
	status      VARCHAR(16) NOT NULL,
	started_at  BIGINT      NOT NULL,
	finished_at BIGINT      NULL,
	message     TEXT        NULL,
	error       TEXT        NULL,
	pitches     INT         NULL,
	sharks      INT         NULL,
	seasons     INT         NULL,
	industries  INT         NULL,
	backups     TEXT        NULL
)`

const syncRunColumns = "id, status, started_at, finished_at, message, error, pitches, sharks, seasons, industries, backups"

// EnsureSchema creates the sync_runs table when it does not exist.
func (r *SyncRunRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, syncRunsSchema); err != nil {
		return eris.Wrap(err, "repository: create sync_runs")
	}
	return nil
}

// Create inserts a run in the running state.
func (r *SyncRunRepo) Create(ctx context.Context, run model.SyncRun) error {
	status := run.Status
	if status == "" {
		status = model.SyncRunning
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sync_runs (id, status, started_at) VALUES (?,?,?)",
		run.ID, status, run.StartedAt.UTC().UnixMilli())
	if err != nil {
		return eris.Wrapf(err, "repository: insert sync run %s", run.ID)
	}
	return nil
}

// Finish stores the outcome of a run.  It returns ErrSyncRunNotFound when
// the run was never created.
func (r *SyncRunRepo) Finish(ctx context.Context, run model.SyncRun) error {
	finished := time.Now().UTC()
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}
	var pitches, sharks, seasons, industries sql.NullInt64
	if c := run.Counts; c != nil {
		pitches = sql.NullInt64{Int64: int64(c.Pitches), Valid: true}
		sharks = sql.NullInt64{Int64: int64(c.Sharks), Valid: true}
		seasons = sql.NullInt64{Int64: int64(c.Seasons), Valid: true}
		industries = sql.NullInt64{Int64: int64(c.Industries), Valid: true}
	}
	var backups sql.NullString
	if len(run.Backups) > 0 {
		b, err := json.Marshal(run.Backups)
		if err != nil {
			return eris.Wrap(err, "repository: encode backups")
		}
		backups = sql.NullString{String: string(b), Valid: true}
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE sync_runs SET status=?, finished_at=?, message=?, error=?,
			pitches=?, sharks=?, seasons=?, industries=?, backups=? WHERE id=?`,
		run.Status, finished.UnixMilli(), nullString(run.Message), nullString(run.Error),
		pitches, sharks, seasons, industries, backups, run.ID)
	if err != nil {
		return eris.Wrapf(err, "repository: finish sync run %s", run.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "repository: rows affected")
	}
	if n == 0 {
		return ErrSyncRunNotFound
	}
	return nil
}

// GetByID returns one run.
func (r *SyncRunRepo) GetByID(ctx context.Context, id string) (*model.SyncRun, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+syncRunColumns+" FROM sync_runs WHERE id=? LIMIT 1", id)
	run, err := scanSyncRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSyncRunNotFound
		}
		return nil, eris.Wrapf(err, "repository: get sync run %s", id)
	}
	return run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *SyncRunRepo) ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+syncRunColumns+" FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, eris.Wrap(err, "repository: list sync runs")
	}
	defer rows.Close()

	out := make([]model.SyncRun, 0, limit)
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "repository: scan sync run")
		}
		out = append(out, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: iterate sync runs")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyncRun(s rowScanner) (*model.SyncRun, error) {
	var (
		run                                 model.SyncRun
		started                             int64
		finished                            sql.NullInt64
		message, errMsg, backups            sql.NullString
		pitches, sharks, seasons, industries sql.NullInt64
	)
	if err := s.Scan(&run.ID, &run.Status, &started, &finished, &message, &errMsg,
		&pitches, &sharks, &seasons, &industries, &backups); err != nil {
		return nil, err
	}
	run.StartedAt = time.UnixMilli(started).UTC()
	if finished.Valid {
		t := time.UnixMilli(finished.Int64).UTC()
		run.FinishedAt = &t
	}
	run.Message = message.String
	run.Error = errMsg.String
	if pitches.Valid {
		run.Counts = &model.RecordCounts{
			Pitches:    int(pitches.Int64),
			Sharks:     int(sharks.Int64),
			Seasons:    int(seasons.Int64),
			Industries: int(industries.Int64),
		}
	}
	if backups.Valid && backups.String != "" {
		if err := json.Unmarshal([]byte(backups.String), &run.Backups); err != nil {
			return nil, eris.Wrap(err, "decode backups")
		}
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
