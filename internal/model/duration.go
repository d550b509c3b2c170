package model

import "fmt"

// Unit is the unit a duration or lag is expressed in.
type Unit string

const (
	Hour Unit = "h"
	Day  Unit = "d"
	Week Unit = "w"
)

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case Hour, Day, Week:
		return true
	}
	return false
}

// Duration is a magnitude in a unit. Lags may be negative; task durations may not.
type Duration struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  Unit    `json:"unit" yaml:"unit"`
}

// Days is shorthand for a duration in days.
func Days(v float64) Duration { return Duration{Value: v, Unit: Day} }

// Hours is shorthand for a duration in hours.
func Hours(v float64) Duration { return Duration{Value: v, Unit: Hour} }

// Weeks is shorthand for a duration in weeks.
func Weeks(v float64) Duration { return Duration{Value: v, Unit: Week} }

// Neg returns the duration with its sign flipped.
func (d Duration) Neg() Duration { return Duration{Value: -d.Value, Unit: d.unit()} }

// IsZero reports whether the duration has no magnitude.
func (d Duration) IsZero() bool { return d.Value == 0 }

func (d Duration) unit() Unit {
	if d.Unit == "" {
		return Day
	}
	return d.Unit
}

// Normalized returns d with an empty unit defaulted to days.
func (d Duration) Normalized() Duration { return Duration{Value: d.Value, Unit: d.unit()} }

func (d Duration) String() string {
	return fmt.Sprintf("%g%s", d.Value, d.unit())
}

// LinkKind is one of the four precedence relationships.
type LinkKind string

const (
	FS LinkKind = "FS"
	SS LinkKind = "SS"
	FF LinkKind = "FF"
	SF LinkKind = "SF"
)

// Valid reports whether k is a known link kind.
func (k LinkKind) Valid() bool {
	switch k {
	case FS, SS, FF, SF:
		return true
	}
	return false
}

// Link is a precedence link from a predecessor to the task that owns it.
type Link struct {
	PredecessorID int      `json:"predecessor_id" yaml:"predecessor_id"`
	Kind          LinkKind `json:"kind" yaml:"kind"`
	Lag           Duration `json:"lag" yaml:"lag"`
}

// KindOrDefault returns the link kind, FS when unset.
func (l Link) KindOrDefault() LinkKind {
	if l.Kind == "" {
		return FS
	}
	return l.Kind
}
