package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validProject() *Project {
	return &Project{
		Start:    date(2024, 3, 4),
		Calendar: DefaultCalendar(),
		Tasks: []*Task{
			{ID: 1, Name: "phase", Level: 0},
			{ID: 2, Name: "design", Level: 1, Duration: Days(2)},
			{ID: 3, Name: "build", Level: 1, Duration: Days(3), Links: []Link{{PredecessorID: 2}}},
			{ID: 4, Name: "ship", Level: 0},
		},
	}
}

func TestValidateStructure_OK(t *testing.T) {
	if err := validProject().ValidateStructure(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructure_LevelJump(t *testing.T) {
	p := validProject()
	p.Tasks[1].Level = 2

	err := p.ValidateStructure()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.TaskID != 2 {
		t.Errorf("expected task 2, got %d", ve.TaskID)
	}
}

func TestValidateStructure_FirstTaskMustBeTopLevel(t *testing.T) {
	p := validProject()
	p.Tasks[0].Level = 1
	if err := p.ValidateStructure(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateStructure_DuplicateID(t *testing.T) {
	p := validProject()
	p.Tasks[3].ID = 2
	if err := p.ValidateStructure(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateStructure_MissingStart(t *testing.T) {
	p := validProject()
	p.Start = time.Time{}
	if err := p.ValidateStructure(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTaskValidate(t *testing.T) {
	cases := []struct {
		name string
		task Task
		want string
	}{
		{"zero id", Task{ID: 0}, "id must be positive"},
		{"negative duration", Task{ID: 1, Duration: Days(-1)}, "duration"},
		{"bad unit", Task{ID: 1, Duration: Duration{Value: 1, Unit: "m"}}, "unit"},
		{"percent", Task{ID: 1, PercentComplete: 101}, "percent"},
		{"snet without anchor", Task{ID: 1, Constraint: Constraint{Kind: SNET}}, "anchor"},
		{"manual backwards", Task{ID: 1, Mode: Manual{Start: date(2024, 3, 5), Finish: date(2024, 3, 4)}}, "manual finish"},
		{"bad link kind", Task{ID: 1, Links: []Link{{PredecessorID: 2, Kind: "XX"}}}, "link kind"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.task.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestModeDefaults(t *testing.T) {
	var task Task
	if _, ok := task.ModeOrDefault().(Automatic); !ok {
		t.Errorf("expected Automatic, got %v", task.ModeOrDefault())
	}
	if _, _, ok := ManualDates(Manual{Start: date(2024, 3, 4)}); ok {
		t.Error("manual task without finish should not be pinned")
	}
	s, f, ok := ManualDates(Manual{Start: date(2024, 3, 4), Finish: date(2024, 3, 6)})
	if !ok || !s.Equal(date(2024, 3, 4)) || !f.Equal(date(2024, 3, 6)) {
		t.Errorf("unexpected manual dates %v %v %v", s, f, ok)
	}
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{&ParseError{Input: "abc"}, ErrParse},
		{&ConfigurationError{Msg: "no working weekdays"}, ErrConfiguration},
		{&ValidationError{TaskID: 3, Msg: "x"}, ErrValidation},
		{&CycleError{Cycle: []int{1, 2, 1}}, ErrCycle},
		{&EngineInvariantError{Msg: "x"}, ErrEngineInvariant},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Errorf("%T should unwrap to %v", tc.err, tc.sentinel)
		}
	}
}

func TestCycleErrorMessage(t *testing.T) {
	err := &CycleError{Stack: []int{1, 2}, Cycle: []int{1, 2, 1}}
	if got := err.Error(); got != "dependency cycle: 1 -> 2 -> 1" {
		t.Errorf("unexpected message %q", got)
	}
	if !err.Contains(2) || err.Contains(3) {
		t.Error("Contains mismatch")
	}
}

func TestNextID(t *testing.T) {
	if got := validProject().NextID(); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}
