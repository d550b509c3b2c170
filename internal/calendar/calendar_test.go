package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestCalendar(t *testing.T, holidays ...string) *Calendar {
	t.Helper()
	s := model.DefaultCalendar()
	s.Holidays = holidays
	c, err := New(s)
	if err != nil {
		t.Fatalf("new calendar: %v", err)
	}
	return c
}

func TestNew_NoWorkingDays(t *testing.T) {
	_, err := New(model.CalendarSettings{HoursPerDay: 8})
	if !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNew_BadHoliday(t *testing.T) {
	s := model.DefaultCalendar()
	s.Holidays = []string{"11/03/2024"}
	if _, err := New(s); !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestIsWorking(t *testing.T) {
	c := newTestCalendar(t, "2024-03-11")

	if !c.IsWorking(date(2024, 3, 8)) {
		t.Error("friday should be working")
	}
	if c.IsWorking(date(2024, 3, 9)) {
		t.Error("saturday should not be working")
	}
	if c.IsWorking(date(2024, 3, 11)) {
		t.Error("holiday monday should not be working")
	}
}

func TestNextPrevWorking(t *testing.T) {
	c := newTestCalendar(t, "2024-03-11")

	if got := c.NextWorking(date(2024, 3, 9)); !got.Equal(date(2024, 3, 12)) {
		t.Errorf("next working after saturday: got %s", got)
	}
	if got := c.PrevWorking(date(2024, 3, 11)); !got.Equal(date(2024, 3, 8)) {
		t.Errorf("prev working before holiday: got %s", got)
	}
	if got := c.NextWorking(date(2024, 3, 4)); !got.Equal(date(2024, 3, 4)) {
		t.Errorf("working day should be returned unchanged: got %s", got)
	}
}

func TestAddWork_SkipsWeekendsAndHolidays(t *testing.T) {
	c := newTestCalendar(t, "2024-03-11")

	got := c.AddWork(date(2024, 3, 8), model.Days(1))
	if got.Weekday() != time.Tuesday {
		t.Errorf("expected tuesday, got %s", got.Weekday())
	}
}

func TestAddWork_Units(t *testing.T) {
	c := newTestCalendar(t)
	mon := date(2024, 3, 4)

	cases := []struct {
		name string
		d    model.Duration
		want time.Time
	}{
		{"two days", model.Days(2), date(2024, 3, 6)},
		{"one week", model.Weeks(1), date(2024, 3, 11)},
		{"sixteen hours", model.Hours(16), date(2024, 3, 6)},
		{"zero", model.Days(0), mon},
		{"back one day", model.Days(-1), date(2024, 3, 1)},
	}
	for _, tc := range cases {
		if got := c.AddWork(mon, tc.d); !got.Equal(tc.want) {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestAddWork_SubDay(t *testing.T) {
	c := newTestCalendar(t)
	fri := date(2024, 3, 8)

	got := c.AddWork(fri, model.Hours(4))
	if want := fri.Add(4 * time.Hour); !got.Equal(want) {
		t.Errorf("4h from friday: expected %s, got %s", want, got)
	}

	// 6h into friday plus 4h spills 2h into monday
	got = c.AddWork(fri.Add(6*time.Hour), model.Hours(4))
	if want := date(2024, 3, 11).Add(2 * time.Hour); !got.Equal(want) {
		t.Errorf("spill over weekend: expected %s, got %s", want, got)
	}

	// backwards from monday midnight lands in friday
	got = c.AddWork(date(2024, 3, 11), model.Hours(-4))
	if want := fri.Add(4 * time.Hour); !got.Equal(want) {
		t.Errorf("backwards over weekend: expected %s, got %s", want, got)
	}

	// a full day of hours is the same instant as one whole day
	if a, b := c.AddWork(fri, model.Hours(8)), c.AddWork(fri, model.Days(1)); !a.Equal(b) {
		t.Errorf("8h and 1d disagree: %s vs %s", a, b)
	}
}

func TestDiffWork(t *testing.T) {
	c := newTestCalendar(t)

	if got := c.DiffWork(date(2024, 3, 8), date(2024, 3, 5), model.Day); got != -3 {
		t.Errorf("expected -3, got %v", got)
	}
	if got := c.DiffWork(date(2024, 3, 4), date(2024, 3, 11), model.Week); got != 1 {
		t.Errorf("expected 1 week, got %v", got)
	}
	if got := c.DiffWork(date(2024, 3, 4), date(2024, 3, 4).Add(4*time.Hour), model.Hour); got != 4 {
		t.Errorf("expected 4 hours, got %v", got)
	}
	if got := c.DiffWork(date(2024, 3, 9), date(2024, 3, 11), model.Day); got != 0 {
		t.Errorf("weekend span should be zero, got %v", got)
	}
}

func TestAddDiffRoundTrip(t *testing.T) {
	c := newTestCalendar(t, "2024-03-13")
	start := date(2024, 3, 4)

	for _, d := range []model.Duration{model.Days(3), model.Days(7), model.Hours(12), model.Weeks(2)} {
		end := c.AddWork(start, d)
		if got := c.DiffWork(start, end, d.Unit); got != d.Value {
			t.Errorf("round trip %s: got %v", d, got)
		}
	}
}
