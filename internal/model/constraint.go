package model

import (
	"fmt"
	"time"
)

// ConstraintKind is a date constraint applied to a task.
type ConstraintKind string

const (
	ASAP ConstraintKind = "ASAP" // as soon as possible
	ALAP ConstraintKind = "ALAP" // as late as possible
	SNET ConstraintKind = "SNET" // start no earlier than
	FNLT ConstraintKind = "FNLT" // finish no later than
	MSO  ConstraintKind = "MSO"  // must start on
	MFO  ConstraintKind = "MFO"  // must finish on
)

// Constraint pairs a kind with its anchor date. ASAP carries no anchor, ALAP
// may carry one as an upper bound on the late finish.
type Constraint struct {
	Kind   ConstraintKind `json:"kind" yaml:"kind"`
	Anchor time.Time      `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// NeedsAnchor reports whether the kind is meaningless without an anchor date.
func (k ConstraintKind) NeedsAnchor() bool {
	switch k {
	case SNET, FNLT, MSO, MFO:
		return true
	}
	return false
}

// Valid reports whether k is a known constraint kind. The empty kind means ASAP.
func (k ConstraintKind) Valid() bool {
	switch k {
	case "", ASAP, ALAP, SNET, FNLT, MSO, MFO:
		return true
	}
	return false
}

// KindOrDefault returns the constraint kind, ASAP when unset.
func (c Constraint) KindOrDefault() ConstraintKind {
	if c.Kind == "" {
		return ASAP
	}
	return c.Kind
}

// HasAnchor reports whether an anchor date is set.
func (c Constraint) HasAnchor() bool { return !c.Anchor.IsZero() }

// Validate checks that the kind is known and anchored when it has to be.
func (c Constraint) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("unknown constraint kind %q", c.Kind)
	}
	if c.Kind.NeedsAnchor() && !c.HasAnchor() {
		return fmt.Errorf("constraint %s requires an anchor date", c.Kind)
	}
	return nil
}
