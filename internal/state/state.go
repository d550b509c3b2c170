// Package state keeps the record of the last scheduling run per project file
// in .ganttloom/state.json, relative to the working directory.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const stateDir = ".ganttloom"
const stateFile = "state.json"

// ProjectStatus is the outcome of the last run for one project file.
type ProjectStatus string

const (
	StatusPending   ProjectStatus = "pending"
	StatusScheduled ProjectStatus = "scheduled"
	StatusFailed    ProjectStatus = "failed"
)

// RunState is the persistent state of the most recent ganttloom invocation.
type RunState struct {
	RunID     string                 `json:"run_id"`
	StartedAt time.Time              `json:"started_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Projects  map[string]*ProjectRun `json:"projects"`

	mu   sync.Mutex `json:"-"`
	path string     `json:"-"`
}

// ProjectRun is the persistent state of one project file.
type ProjectRun struct {
	Status       ProjectStatus `json:"status"`
	Name         string        `json:"name"`
	PlanID       string        `json:"plan_id,omitempty"`
	ScheduledAt  *time.Time    `json:"scheduled_at,omitempty"`
	Finish       *time.Time    `json:"finish,omitempty"`
	TotalTasks   int           `json:"total_tasks"`
	CriticalPath []int         `json:"critical_path,omitempty"`
	Warnings     int           `json:"warnings,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// New creates a fresh RunState and persists it, replacing any previous one.
func New(runID string) (*RunState, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	now := time.Now()
	s := &RunState{
		RunID:     runID,
		StartedAt: now,
		UpdatedAt: now,
		Projects:  make(map[string]*ProjectRun),
		path:      filepath.Join(stateDir, stateFile),
	}

	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads existing state from disk.
func Load() (*RunState, error) {
	path := filepath.Join(stateDir, stateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	if s.Projects == nil {
		s.Projects = make(map[string]*ProjectRun)
	}
	s.path = path
	return &s, nil
}

// Exists checks if a state file exists.
func Exists() bool {
	_, err := os.Stat(filepath.Join(stateDir, stateFile))
	return err == nil
}

// Save persists the current state to disk.
func (s *RunState) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// Record stores the outcome for a project file and saves. Safe for
// concurrent use.
func (s *RunState) Record(file string, pr *ProjectRun) error {
	s.mu.Lock()
	s.Projects[file] = pr
	s.mu.Unlock()
	return s.Save()
}

// Get returns the recorded outcome for a project file.
func (s *RunState) Get(file string) *ProjectRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Projects[file]
}

// Files returns the recorded project files in sorted order.
func (s *RunState) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]string, 0, len(s.Projects))
	for f := range s.Projects {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Failed returns the files whose last run failed.
func (s *RunState) Failed() []string {
	var failed []string
	for _, f := range s.Files() {
		if s.Get(f).Status == StatusFailed {
			failed = append(failed, f)
		}
	}
	return failed
}

// Clean removes the state directory.
func Clean() error {
	return os.RemoveAll(stateDir)
}
