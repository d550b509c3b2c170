package model

import (
	"fmt"
	"time"
)

// CalendarSettings describes which calendar days are workable.
type CalendarSettings struct {
	WorkingWeekdays []time.Weekday `json:"working_weekdays" yaml:"working_weekdays" toml:"working_weekdays"`
	HoursPerDay     float64        `json:"hours_per_day" yaml:"hours_per_day" toml:"hours_per_day"`
	Holidays        []string       `json:"holidays" yaml:"holidays" toml:"holidays"` // YYYY-MM-DD
}

// DefaultCalendar is a Monday–Friday, eight hour calendar with no holidays.
func DefaultCalendar() CalendarSettings {
	return CalendarSettings{
		WorkingWeekdays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		HoursPerDay:     8,
	}
}

// Project is everything one scheduling run needs: the ordered task list, the
// calendar and the project start.
type Project struct {
	Name     string
	Start    time.Time
	Calendar CalendarSettings
	Tasks    []*Task
}

// Task returns the task with the given id, or nil.
func (p *Project) Task(id int) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Levels returns the hierarchy depth of every task in list order.
func (p *Project) Levels() []int {
	levels := make([]int, len(p.Tasks))
	for i, t := range p.Tasks {
		levels[i] = t.Level
	}
	return levels
}

// NextID returns one more than the largest id in use.
func (p *Project) NextID() int {
	next := 1
	for _, t := range p.Tasks {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return next
}

// ValidateStructure checks per-task invariants, id uniqueness and the level
// adjacency rule. It does not look at links beyond their own fields.
func (p *Project) ValidateStructure() error {
	if p.Start.IsZero() {
		return &ValidationError{Msg: "project start is not set"}
	}
	seen := make(map[int]bool, len(p.Tasks))
	prevLevel := -1
	for _, t := range p.Tasks {
		if t == nil {
			return &ValidationError{Msg: "nil task in list"}
		}
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.ID] {
			return &ValidationError{TaskID: t.ID, Msg: "duplicate task id"}
		}
		seen[t.ID] = true
		if t.Level > prevLevel+1 {
			return &ValidationError{TaskID: t.ID, Msg: fmt.Sprintf("level jumps from %d to %d", prevLevel, t.Level)}
		}
		prevLevel = t.Level
	}
	return nil
}
