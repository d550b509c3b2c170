package projectfile

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/parse"
)

// ImportLegacy converts a project exported by the browser Gantt app. Those
// files are loosely typed: duration is a bare number of days or a {v, u}
// object, dates are ISO strings or null, and settings may be missing.
func ImportLegacy(data []byte, fallback model.CalendarSettings) (*model.Project, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("legacy import: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.Get("tasks").IsArray() {
		return nil, fmt.Errorf("legacy import: no tasks array")
	}

	p := &model.Project{
		Name:     root.Get("name").String(),
		Calendar: fallback,
	}
	start, err := legacyTime(root.Get("startDate"))
	if err != nil {
		return nil, &model.ParseError{Field: "startDate", Input: root.Get("startDate").Raw, Msg: err.Error()}
	}
	p.Start = start

	if s := root.Get("settings"); s.Exists() {
		cal := model.CalendarSettings{HoursPerDay: fallback.HoursPerDay}
		for _, d := range s.Get("workingDays").Array() {
			cal.WorkingWeekdays = append(cal.WorkingWeekdays, time.Weekday(d.Int()))
		}
		if h := s.Get("hoursPerDay"); h.Exists() {
			cal.HoursPerDay = h.Float()
		}
		for _, h := range s.Get("holidays").Array() {
			if t, err := legacyTime(h); err == nil && !t.IsZero() {
				cal.Holidays = append(cal.Holidays, t.Format(dateLayout))
			}
		}
		if len(cal.WorkingWeekdays) == 0 {
			cal.WorkingWeekdays = fallback.WorkingWeekdays
		}
		p.Calendar = cal
	}

	var parseErr error
	root.Get("tasks").ForEach(func(_, v gjson.Result) bool {
		t, err := legacyTask(v)
		if err != nil {
			parseErr = err
			return false
		}
		p.Tasks = append(p.Tasks, t)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return p, nil
}

func legacyTask(v gjson.Result) (*model.Task, error) {
	t := &model.Task{
		ID:              int(v.Get("id").Int()),
		Name:            v.Get("name").String(),
		Level:           int(v.Get("level").Int()),
		PercentComplete: int(v.Get("progress").Int()),
		Notes:           v.Get("notes").String(),
		Mode:            model.Automatic{},
	}

	switch dur := v.Get("duration"); {
	case dur.IsObject():
		unit := strings.ToLower(dur.Get("u").String())
		d, err := parse.Duration(fmt.Sprintf("%g%s", dur.Get("v").Float(), unit))
		if err != nil {
			return nil, withTask(err, t.ID, "duration")
		}
		t.Duration = d
	case dur.Type == gjson.String:
		d, err := parse.Duration(dur.String())
		if err != nil {
			return nil, withTask(err, t.ID, "duration")
		}
		t.Duration = d
	default:
		t.Duration = model.Days(dur.Float())
	}

	preds := v.Get("predecessors")
	if preds.IsArray() {
		// The module build stores parsed links as {id, type, lag: {v, u}}.
		for _, l := range preds.Array() {
			link := model.Link{
				PredecessorID: int(l.Get("id").Int()),
				Kind:          model.LinkKind(strings.ToUpper(l.Get("type").String())),
				Lag:           model.Duration{Value: l.Get("lag.v").Float(), Unit: model.Unit(strings.ToLower(l.Get("lag.u").String()))},
			}
			if link.Kind == "" {
				link.Kind = model.FS
			}
			t.Links = append(t.Links, link)
		}
	} else if links, err := parse.Links(preds.String()); err != nil {
		pe := withTask(err, t.ID, "predecessors")
		pe.Input = preds.String()
		t.LinkErr = pe
	} else {
		t.Links = links
	}

	if v.Get("manual").Bool() {
		start, err := legacyTime(v.Get("start"))
		if err != nil {
			return nil, &model.ParseError{TaskID: t.ID, Field: "start", Input: v.Get("start").Raw, Msg: err.Error()}
		}
		finish, err := legacyTime(v.Get("finish"))
		if err != nil {
			return nil, &model.ParseError{TaskID: t.ID, Field: "finish", Input: v.Get("finish").Raw, Msg: err.Error()}
		}
		t.Mode = model.Manual{Start: start, Finish: finish}
	}
	return t, nil
}

// legacyTime reads an ISO timestamp, a bare date or null, truncated to the calendar day.
func legacyTime(v gjson.Result) (time.Time, error) {
	if !v.Exists() || v.Type == gjson.Null || v.String() == "" {
		return time.Time{}, nil
	}
	s := v.String()
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.UTC().Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
