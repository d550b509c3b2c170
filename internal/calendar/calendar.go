// Package calendar implements working-time arithmetic over a weekday set with
// holiday exceptions.
//
// Whole working days are stepped one calendar day at a time. A sub-day
// remainder is carried as the time of day: a timestamp at hh:mm on a working
// day means hh:mm worth of that day's HoursPerDay has been used. A day's work
// ending exactly on HoursPerDay lands on the next working day at midnight,
// which is the same instant whole-day stepping produces.
package calendar

import (
	"fmt"
	"math"
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

const dateLayout = "2006-01-02"

// precision used to keep float results stable across runs
const eps = 1e-9

// Calendar answers working-time questions. Build one with New; the zero value is not usable.
type Calendar struct {
	weekdays    [7]bool
	perWeek     int
	hoursPerDay float64
	holidays    map[string]bool
}

// New validates settings and builds a Calendar.
func New(s model.CalendarSettings) (*Calendar, error) {
	c := &Calendar{
		hoursPerDay: s.HoursPerDay,
		holidays:    make(map[string]bool, len(s.Holidays)),
	}
	for _, wd := range s.WorkingWeekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, &model.ConfigurationError{Msg: fmt.Sprintf("weekday %d out of range", wd)}
		}
		if !c.weekdays[wd] {
			c.weekdays[wd] = true
			c.perWeek++
		}
	}
	if c.perWeek == 0 {
		return nil, &model.ConfigurationError{Msg: "calendar has no working weekdays"}
	}
	if s.HoursPerDay <= 0 || s.HoursPerDay > 24 {
		return nil, &model.ConfigurationError{Msg: fmt.Sprintf("hours per day %g must be in (0, 24]", s.HoursPerDay)}
	}
	for _, h := range s.Holidays {
		d, err := time.Parse(dateLayout, h)
		if err != nil {
			return nil, &model.ConfigurationError{Msg: fmt.Sprintf("holiday %q is not a YYYY-MM-DD date", h)}
		}
		c.holidays[d.Format(dateLayout)] = true
	}
	return c, nil
}

// MustNew is New for settings known to be valid. It panics otherwise.
func MustNew(s model.CalendarSettings) *Calendar {
	c, err := New(s)
	if err != nil {
		panic(err)
	}
	return c
}

// HoursPerDay returns the working hours in one working day.
func (c *Calendar) HoursPerDay() float64 { return c.hoursPerDay }

// WorkingDaysPerWeek returns the number of distinct working weekdays.
func (c *Calendar) WorkingDaysPerWeek() int { return c.perWeek }

// IsWorking reports whether t falls on a working weekday that is not a holiday.
func (c *Calendar) IsWorking(t time.Time) bool {
	return c.weekdays[t.Weekday()] && !c.holidays[t.Format(dateLayout)]
}

// NextWorking returns t if it is on a working day, otherwise the first later
// working day at the same time of day.
func (c *Calendar) NextWorking(t time.Time) time.Time {
	for !c.IsWorking(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// PrevWorking is NextWorking stepping backwards.
func (c *Calendar) PrevWorking(t time.Time) time.Time {
	for !c.IsWorking(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// ToDays converts a duration to working days.
func (c *Calendar) ToDays(d model.Duration) float64 {
	d = d.Normalized()
	switch d.Unit {
	case model.Hour:
		return d.Value / c.hoursPerDay
	case model.Week:
		return d.Value * float64(c.perWeek)
	default:
		return d.Value
	}
}

// FromDays converts working days back to the given unit.
func (c *Calendar) FromDays(days float64, unit model.Unit) float64 {
	switch unit {
	case model.Hour:
		return round(days * c.hoursPerDay)
	case model.Week:
		return round(days / float64(c.perWeek))
	default:
		return round(days)
	}
}

// AddWork moves start by d worth of working time, forwards or backwards
// depending on the sign of d.
func (c *Calendar) AddWork(start time.Time, d model.Duration) time.Time {
	return c.AddDays(start, c.ToDays(d))
}

// AddDays is AddWork with the amount already expressed in working days.
func (c *Calendar) AddDays(start time.Time, days float64) time.Time {
	if math.Abs(days) < eps {
		return start
	}
	step := 1
	if days < 0 {
		step = -1
	}
	abs := math.Abs(days)
	whole := math.Floor(abs + eps)
	frac := abs - whole
	if frac < eps {
		frac = 0
	}

	t := start
	for n := int(whole); n > 0; {
		t = t.AddDate(0, 0, step)
		if c.IsWorking(t) {
			n--
		}
	}
	if frac == 0 {
		return t
	}
	hours := frac * c.hoursPerDay
	if step > 0 {
		return c.forwardHours(t, hours)
	}
	return c.backwardHours(t, hours)
}

func (c *Calendar) forwardHours(t time.Time, hours float64) time.Time {
	day, used := split(t)
	if !c.IsWorking(day) {
		day, used = c.NextWorking(day), 0
	}
	used = math.Min(used, c.hoursPerDay)
	if used+hours < c.hoursPerDay-eps {
		return at(day, used+hours)
	}
	rest := used + hours - c.hoursPerDay
	return at(c.NextWorking(day.AddDate(0, 0, 1)), rest)
}

func (c *Calendar) backwardHours(t time.Time, hours float64) time.Time {
	day, used := split(t)
	if !c.IsWorking(day) {
		day, used = c.PrevWorking(day), c.hoursPerDay
	}
	used = math.Min(used, c.hoursPerDay)
	if used-hours > -eps {
		return at(day, math.Max(used-hours, 0))
	}
	deficit := hours - used
	return at(c.PrevWorking(day.AddDate(0, 0, -1)), c.hoursPerDay-deficit)
}

// DiffWork returns the signed working time from start to end in unit. Working
// calendar days in [start, end) count fully; sub-day parts count exactly.
func (c *Calendar) DiffWork(start, end time.Time, unit model.Unit) float64 {
	if end.Equal(start) {
		return 0
	}
	if end.Before(start) {
		return -c.DiffWork(end, start, unit)
	}
	sd, sh := split(start)
	ed, eh := split(end)
	days := 0.0
	for d := sd; d.Before(ed); d = d.AddDate(0, 0, 1) {
		if c.IsWorking(d) {
			days++
		}
	}
	days += c.part(ed, eh) - c.part(sd, sh)
	return c.FromDays(days, unit)
}

func (c *Calendar) part(day time.Time, used float64) float64 {
	if !c.IsWorking(day) {
		return 0
	}
	return math.Min(used, c.hoursPerDay) / c.hoursPerDay
}

// split returns local midnight of t and the hours elapsed since then.
func split(t time.Time) (time.Time, float64) {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return day, t.Sub(day).Hours()
}

func at(day time.Time, hours float64) time.Time {
	return day.Add(time.Duration(math.Round(hours*3600)) * time.Second)
}

func round(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}
