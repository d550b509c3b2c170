package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/cpm"
)

// Run is one scheduling attempt against a stored project.
type Run struct {
	ID        string        `json:"id"`
	Project   string        `json:"project"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Finish    time.Time     `json:"finish,omitempty"`
	Critical  []int         `json:"critical_path,omitempty"`
	Warnings  int           `json:"warnings"`
	Error     string        `json:"error,omitempty"`
}

// NewRun summarises a scheduling attempt. Exactly one of res and runErr is
// expected to be set.
func NewRun(project string, started time.Time, res *cpm.Result, runErr error) Run {
	r := Run{
		ID:        uuid.NewString(),
		Project:   project,
		StartedAt: started,
		Elapsed:   time.Since(started),
	}
	if runErr != nil {
		r.Error = runErr.Error()
		return r
	}
	if res != nil {
		r.Finish = res.ProjectFinish
		r.Critical = append([]int(nil), res.CriticalPath...)
		r.Warnings = len(res.Warnings)
	}
	return r
}

// RecordRun appends a run to the history.
func (d *DB) RecordRun(r Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := d.db.Exec(
		`INSERT INTO runs (id, project, started_at, elapsed_ms, finish, critical, warnings, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Project, r.StartedAt.UnixMilli(), r.Elapsed.Milliseconds(),
		nullableUnix(r.Finish), joinIDs(r.Critical), r.Warnings, r.Error,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs for project, newest first. A limit of
// zero or less returns all of them.
func (d *DB) ListRuns(project string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(
		`SELECT id, project, started_at, elapsed_ms, finish, critical, warnings, error
		 FROM runs WHERE project = ? ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		project, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, elapsed int64
		var finish sql.NullInt64
		var critical string
		if err := rows.Scan(&r.ID, &r.Project, &started, &elapsed, &finish, &critical, &r.Warnings, &r.Error); err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(started)
		r.Elapsed = time.Duration(elapsed) * time.Millisecond
		if finish.Valid {
			r.Finish = time.Unix(finish.Int64, 0).UTC()
		}
		if r.Critical, err = splitIDs(critical); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad critical path entry %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
