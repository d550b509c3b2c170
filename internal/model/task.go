package model

import (
	"fmt"
	"time"
)

// Task is a row of the project. Callers own it; the engine only writes the
// embedded Schedule.
type Task struct {
	ID              int
	Name            string
	Level           int
	Duration        Duration
	Mode            Mode
	Links           []Link
	Constraint      Constraint
	PercentComplete int
	Notes           string

	// LinkErr is set by callers whose predecessor text failed to parse.
	// The engine refuses to schedule a project while any task carries one.
	LinkErr *ParseError

	Schedule
}

// Schedule holds the fields derived by a scheduling run.
type Schedule struct {
	EarlyStart  time.Time `json:"early_start"`
	EarlyFinish time.Time `json:"early_finish"`
	LateStart   time.Time `json:"late_start"`
	LateFinish  time.Time `json:"late_finish"`
	TotalFloat  float64   `json:"total_float"`
	IsCritical  bool      `json:"is_critical"`
	IsSummary   bool      `json:"is_summary"`
	WBS         string    `json:"wbs"`
}

// ModeOrDefault returns the scheduling mode, Automatic when unset.
func (t *Task) ModeOrDefault() Mode {
	if t.Mode == nil {
		return Automatic{}
	}
	return t.Mode
}

// IsMilestone reports whether the task has zero duration.
func (t *Task) IsMilestone() bool { return t.Duration.IsZero() }

// Validate checks field-level invariants that do not depend on other tasks.
func (t *Task) Validate() error {
	if t.ID <= 0 {
		return &ValidationError{TaskID: t.ID, Msg: "id must be positive"}
	}
	if t.Level < 0 {
		return &ValidationError{TaskID: t.ID, Msg: fmt.Sprintf("negative level %d", t.Level)}
	}
	if t.Duration.Value < 0 {
		return &ValidationError{TaskID: t.ID, Msg: "duration must not be negative"}
	}
	if !t.Duration.Normalized().Unit.Valid() {
		return &ValidationError{TaskID: t.ID, Msg: fmt.Sprintf("unknown duration unit %q", t.Duration.Unit)}
	}
	if t.PercentComplete < 0 || t.PercentComplete > 100 {
		return &ValidationError{TaskID: t.ID, Msg: fmt.Sprintf("percent complete %d out of range", t.PercentComplete)}
	}
	if err := t.Constraint.Validate(); err != nil {
		return &ValidationError{TaskID: t.ID, Msg: err.Error()}
	}
	if m, ok := t.Mode.(Manual); ok && m.Pinned() && m.Finish.Before(m.Start) {
		return &ValidationError{TaskID: t.ID, Msg: "manual finish precedes manual start"}
	}
	for _, l := range t.Links {
		if !l.KindOrDefault().Valid() {
			return &ValidationError{TaskID: t.ID, Msg: fmt.Sprintf("unknown link kind %q", l.Kind)}
		}
		if !l.Lag.Normalized().Unit.Valid() {
			return &ValidationError{TaskID: t.ID, Msg: fmt.Sprintf("unknown lag unit %q", l.Lag.Unit)}
		}
	}
	return nil
}
