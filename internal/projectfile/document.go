// Package projectfile reads and writes project documents. Durations and
// predecessors are kept in their text form so files stay hand-editable.
package projectfile

import (
	"fmt"
	"strings"
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/parse"
)

const dateLayout = "2006-01-02"

// Document is the serialised form of a project.
type Document struct {
	Name     string            `json:"name" yaml:"name"`
	Start    string            `json:"start" yaml:"start"`
	Calendar *CalendarDocument `json:"calendar,omitempty" yaml:"calendar,omitempty"`
	Tasks    []TaskDocument    `json:"tasks" yaml:"tasks"`
}

type CalendarDocument struct {
	WorkingWeekdays []int    `json:"working_weekdays" yaml:"working_weekdays"`
	HoursPerDay     float64  `json:"hours_per_day" yaml:"hours_per_day"`
	Holidays        []string `json:"holidays,omitempty" yaml:"holidays,omitempty"`
}

type ConstraintDocument struct {
	Type string `json:"type" yaml:"type"`
	Date string `json:"date,omitempty" yaml:"date,omitempty"`
}

// TaskDocument is one row. The fields after Notes are written by Save and
// ignored by Load.
type TaskDocument struct {
	ID           int                 `json:"id" yaml:"id"`
	Name         string              `json:"name" yaml:"name"`
	Level        int                 `json:"level,omitempty" yaml:"level,omitempty"`
	Duration     string              `json:"duration,omitempty" yaml:"duration,omitempty"`
	Predecessors string              `json:"predecessors,omitempty" yaml:"predecessors,omitempty"`
	Mode         string              `json:"mode,omitempty" yaml:"mode,omitempty"`
	Start        string              `json:"start,omitempty" yaml:"start,omitempty"`
	Finish       string              `json:"finish,omitempty" yaml:"finish,omitempty"`
	Constraint   *ConstraintDocument `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Progress     int                 `json:"progress,omitempty" yaml:"progress,omitempty"`
	Notes        string              `json:"notes,omitempty" yaml:"notes,omitempty"`

	WBS         string   `json:"wbs,omitempty" yaml:"wbs,omitempty"`
	Summary     bool     `json:"summary,omitempty" yaml:"summary,omitempty"`
	EarlyStart  string   `json:"early_start,omitempty" yaml:"early_start,omitempty"`
	EarlyFinish string   `json:"early_finish,omitempty" yaml:"early_finish,omitempty"`
	LateStart   string   `json:"late_start,omitempty" yaml:"late_start,omitempty"`
	LateFinish  string   `json:"late_finish,omitempty" yaml:"late_finish,omitempty"`
	TotalFloat  *float64 `json:"total_float,omitempty" yaml:"total_float,omitempty"`
	Critical    bool     `json:"critical,omitempty" yaml:"critical,omitempty"`
}

// ToProject converts a document into the engine model. A malformed
// predecessor list does not fail the load; it is attached to the task so the
// engine refuses to schedule until it is fixed. Every other malformed field is
// an error.
func (d *Document) ToProject(fallback model.CalendarSettings) (*model.Project, error) {
	start, err := parseDate(d.Start)
	if err != nil {
		return nil, &model.ParseError{Field: "start", Input: d.Start, Msg: err.Error()}
	}

	p := &model.Project{Name: d.Name, Start: start, Calendar: fallback}
	if d.Calendar != nil {
		p.Calendar = d.Calendar.settings()
	}

	for _, td := range d.Tasks {
		t, err := td.toTask()
		if err != nil {
			return nil, err
		}
		p.Tasks = append(p.Tasks, t)
	}
	return p, nil
}

func (td TaskDocument) toTask() (*model.Task, error) {
	t := &model.Task{
		ID:              td.ID,
		Name:            td.Name,
		Level:           td.Level,
		PercentComplete: td.Progress,
		Notes:           td.Notes,
		Duration:        model.Days(0),
	}

	if strings.TrimSpace(td.Duration) != "" {
		d, err := parse.Duration(td.Duration)
		if err != nil {
			return nil, withTask(err, td.ID, "duration")
		}
		t.Duration = d
	}

	links, err := parse.Links(td.Predecessors)
	if err != nil {
		pe := withTask(err, td.ID, "predecessors")
		pe.Msg = fmt.Sprintf("entry %q: %s", pe.Input, pe.Msg)
		pe.Input = td.Predecessors
		t.LinkErr = pe
	} else {
		t.Links = links
	}

	switch strings.ToLower(td.Mode) {
	case "", "auto", "automatic":
		t.Mode = model.Automatic{}
	case "manual":
		m := model.Manual{}
		if m.Start, err = parseDate(td.Start); err != nil {
			return nil, &model.ParseError{TaskID: td.ID, Field: "start", Input: td.Start, Msg: err.Error()}
		}
		if m.Finish, err = parseDate(td.Finish); err != nil {
			return nil, &model.ParseError{TaskID: td.ID, Field: "finish", Input: td.Finish, Msg: err.Error()}
		}
		t.Mode = m
	default:
		return nil, &model.ParseError{TaskID: td.ID, Field: "mode", Input: td.Mode, Msg: "expected auto or manual"}
	}

	if td.Constraint != nil {
		c := model.Constraint{Kind: model.ConstraintKind(strings.ToUpper(td.Constraint.Type))}
		if c.Anchor, err = parseDate(td.Constraint.Date); err != nil {
			return nil, &model.ParseError{TaskID: td.ID, Field: "constraint", Input: td.Constraint.Date, Msg: err.Error()}
		}
		t.Constraint = c
	}
	return t, nil
}

// FromProject builds a document from the project, including derived fields
// when the project has been scheduled.
func FromProject(p *model.Project) *Document {
	d := &Document{
		Name:     p.Name,
		Start:    formatDate(p.Start),
		Calendar: calendarDocument(p.Calendar),
	}
	for _, t := range p.Tasks {
		td := TaskDocument{
			ID:           t.ID,
			Name:         t.Name,
			Level:        t.Level,
			Duration:     parse.FormatDuration(t.Duration),
			Predecessors: parse.FormatLinks(t.Links),
			Progress:     t.PercentComplete,
			Notes:        t.Notes,
			WBS:          t.WBS,
			Summary:      t.IsSummary,
			EarlyStart:   formatDate(t.EarlyStart),
			EarlyFinish:  formatDate(t.EarlyFinish),
			LateStart:    formatDate(t.LateStart),
			LateFinish:   formatDate(t.LateFinish),
			Critical:     t.IsCritical,
		}
		if t.LinkErr != nil {
			td.Predecessors = t.LinkErr.Input
		}
		if !t.EarlyStart.IsZero() {
			f := t.TotalFloat
			td.TotalFloat = &f
		}
		if m, ok := t.Mode.(model.Manual); ok {
			td.Mode = "manual"
			td.Start = formatDate(m.Start)
			td.Finish = formatDate(m.Finish)
		}
		if t.Constraint.Kind != "" && t.Constraint.Kind != model.ASAP {
			td.Constraint = &ConstraintDocument{Type: string(t.Constraint.Kind), Date: formatDate(t.Constraint.Anchor)}
		}
		d.Tasks = append(d.Tasks, td)
	}
	return d
}

func (c *CalendarDocument) settings() model.CalendarSettings {
	s := model.CalendarSettings{HoursPerDay: c.HoursPerDay, Holidays: append([]string(nil), c.Holidays...)}
	for _, wd := range c.WorkingWeekdays {
		s.WorkingWeekdays = append(s.WorkingWeekdays, time.Weekday(wd))
	}
	return s
}

func calendarDocument(s model.CalendarSettings) *CalendarDocument {
	c := &CalendarDocument{HoursPerDay: s.HoursPerDay, Holidays: append([]string(nil), s.Holidays...)}
	for _, wd := range s.WorkingWeekdays {
		c.WorkingWeekdays = append(c.WorkingWeekdays, int(wd))
	}
	return c
}

func withTask(err error, id int, field string) *model.ParseError {
	pe, ok := err.(*model.ParseError)
	if !ok {
		return &model.ParseError{TaskID: id, Field: field, Msg: err.Error()}
	}
	cp := *pe
	cp.TaskID = id
	cp.Field = field
	return &cp
}

// parseDate accepts a bare date or an RFC 3339 timestamp. Empty input yields the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC 3339 timestamp")
	}
	return t, nil
}

// formatDate drops the clock when it is midnight.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339)
}
