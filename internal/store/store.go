// Package store persists projects and schedule runs in SQLite.
// Uses WAL mode so the CLI can read while the server writes.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/projectfile"
)

// ErrProjectNotFound is returned when no project is stored under a name.
var ErrProjectNotFound = errors.New("project not found")

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// ProjectInfo is a row of the project listing.
type ProjectInfo struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open creates or opens the database at dir/ganttloom.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "ganttloom.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			name       TEXT PRIMARY KEY,
			body       TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			project    TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			finish     INTEGER,
			critical   TEXT NOT NULL DEFAULT '',
			warnings   INTEGER NOT NULL DEFAULT 0,
			error      TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project, started_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// PutProject stores p under p.Name, replacing any previous version. The body
// is the JSON project document, derived fields included.
func (d *DB) PutProject(p *model.Project) error {
	if p.Name == "" {
		return &model.ValidationError{Msg: "project name is required"}
	}
	body, err := projectfile.Encode(projectfile.FromProject(p), projectfile.JSON)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		`INSERT INTO projects (name, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body=excluded.body, updated_at=excluded.updated_at`,
		p.Name, string(body), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put project %s: %w", p.Name, err)
	}
	return nil
}

// GetProject loads a stored project. fallback is the calendar used when the
// stored document has none.
func (d *DB) GetProject(name string, fallback model.CalendarSettings) (*model.Project, error) {
	var body string
	err := d.db.QueryRow(`SELECT body FROM projects WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", name, err)
	}

	doc, err := projectfile.Decode([]byte(body), projectfile.JSON)
	if err != nil {
		return nil, err
	}
	p, err := doc.ToProject(fallback)
	if err != nil {
		return nil, err
	}
	p.Name = name
	return p, nil
}

// ListProjects returns stored projects, most recently updated first.
func (d *DB) ListProjects() ([]ProjectInfo, error) {
	rows, err := d.db.Query(`SELECT name, updated_at FROM projects ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProjectInfo
	for rows.Next() {
		var info ProjectInfo
		var updated int64
		if err := rows.Scan(&info.Name, &updated); err != nil {
			return nil, err
		}
		info.UpdatedAt = time.UnixMilli(updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteProject removes a stored project and its run history.
func (d *DB) DeleteProject(name string) error {
	result, err := d.db.Exec(`DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrProjectNotFound
	}
	_, err = d.db.Exec(`DELETE FROM runs WHERE project = ?`, name)
	return err
}
