package model

import "time"

// Mode is how a task is scheduled: Automatic or Manual.
// The interface is sealed; only the two variants below implement it.
type Mode interface {
	isMode()
	String() string
}

// Automatic tasks are placed by links, constraints and the project start.
type Automatic struct{}

// Manual tasks keep author-set dates. When either date is missing the task is
// scheduled as if it were automatic.
type Manual struct {
	Start  time.Time
	Finish time.Time
}

func (Automatic) isMode() {}
func (Manual) isMode()    {}

func (Automatic) String() string { return "auto" }
func (Manual) String() string    { return "manual" }

// Pinned reports whether both author dates are present.
func (m Manual) Pinned() bool { return !m.Start.IsZero() && !m.Finish.IsZero() }

// ManualDates returns the pinned dates of a manual task. ok is false for
// automatic tasks and for manual tasks missing either date.
func ManualDates(m Mode) (start, finish time.Time, ok bool) {
	man, isManual := m.(Manual)
	if !isManual || !man.Pinned() {
		return time.Time{}, time.Time{}, false
	}
	return man.Start, man.Finish, true
}
