package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrParse           = errors.New("parse error")
	ErrConfiguration   = errors.New("configuration error")
	ErrValidation      = errors.New("validation error")
	ErrCycle           = errors.New("dependency cycle")
	ErrEngineInvariant = errors.New("engine invariant violated")
)

// ParseError reports malformed duration or predecessor text.
type ParseError struct {
	TaskID int
	Field  string
	Input  string
	Msg    string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(ErrParse.Error())
	if e.TaskID != 0 {
		fmt.Fprintf(&b, ": task %d", e.TaskID)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	fmt.Fprintf(&b, ": %q", e.Input)
	if e.Msg != "" {
		b.WriteString(": " + e.Msg)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ConfigurationError reports an unusable calendar.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return ErrConfiguration.Error() + ": " + e.Msg
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ValidationError reports input the engine refuses to schedule.
// TaskID is zero when the problem is not tied to one task.
type ValidationError struct {
	TaskID int
	Msg    string
}

func (e *ValidationError) Error() string {
	if e.TaskID == 0 {
		return ErrValidation.Error() + ": " + e.Msg
	}
	return fmt.Sprintf("%s: task %d: %s", ErrValidation, e.TaskID, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// CycleError reports a precedence cycle. Stack is the DFS visiting stack at
// detection time; Cycle is the part of it that closes the loop, first id repeated last.
type CycleError struct {
	Stack []int
	Cycle []int
}

func (e *CycleError) Error() string {
	return ErrCycle.Error() + ": " + joinIDs(e.Cycle, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// Contains reports whether id takes part in the cycle.
func (e *CycleError) Contains(id int) bool {
	for _, c := range e.Cycle {
		if c == id {
			return true
		}
	}
	return false
}

// EngineInvariantError signals a defect in the engine itself, not bad input.
type EngineInvariantError struct {
	Msg string
}

func (e *EngineInvariantError) Error() string {
	return ErrEngineInvariant.Error() + ": " + e.Msg
}

func (e *EngineInvariantError) Unwrap() error { return ErrEngineInvariant }

// ConstraintConflictWarning is returned alongside a successful schedule when a
// constraint overrode what the links required, or left a task with negative float.
type ConstraintConflictWarning struct {
	TaskID   int            `json:"task_id"`
	Kind     ConstraintKind `json:"kind"`
	Anchor   time.Time      `json:"anchor"`
	Required time.Time      `json:"required"`
	Reason   string         `json:"reason"`
}

func (w ConstraintConflictWarning) String() string {
	return fmt.Sprintf("task %d: %s %s: %s (required %s)",
		w.TaskID, w.Kind, w.Anchor.Format("2006-01-02"), w.Reason, w.Required.Format("2006-01-02"))
}

func joinIDs(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, sep)
}
