package calendar

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMonthGrid_May2024(t *testing.T) {
	// 1 May 2024 is a Wednesday.
	g := BuildMonthGrid(2024, time.May)

	assert.Equal(t, "2024-04-29", g.Days[0].Key())
	assert.False(t, g.Days[0].InMonth)
	assert.Equal(t, "2024-05-01", g.Days[2].Key())
	assert.True(t, g.Days[2].InMonth)
	assert.Equal(t, "2024-05-31", g.Days[32].Key())
	assert.Equal(t, "2024-06-09", g.Days[41].Key())
	assert.False(t, g.Days[41].InMonth)
}

func TestBuildMonthGrid_MonthStartingOnMonday(t *testing.T) {
	// 1 April 2024 is a Monday, so there are no leading days.
	g := BuildMonthGrid(2024, time.April)
	if g.Days[0].Key() != "2024-04-01" {
		t.Errorf("expected grid to start on 2024-04-01, got %s", g.Days[0].Key())
	}
	if !g.Days[0].InMonth {
		t.Error("expected first cell to be in month")
	}
}

func TestBuildMonthGrid_MonthStartingOnSunday(t *testing.T) {
	// 1 September 2024 is a Sunday: six leading days from August.
	g := BuildMonthGrid(2024, time.September)
	if g.Days[6].Key() != "2024-09-01" {
		t.Errorf("expected 2024-09-01 in the Sunday column, got %s", g.Days[6].Key())
	}
	if g.Days[5].InMonth {
		t.Error("expected Saturday before the 1st to be outside the month")
	}
}

func TestGrid_Weeks(t *testing.T) {
	weeks := BuildMonthGrid(2024, time.February).Weeks()
	require.Len(t, weeks, 6)
	for _, w := range weeks {
		assert.Len(t, w, 7)
		assert.Equal(t, time.Monday, w[0].Date.Weekday())
	}
}

func TestBuildMonthGrid_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("grid starts on Monday and is contiguous", prop.ForAll(
		func(year, month int) bool {
			g := BuildMonthGrid(year, time.Month(month))
			if g.Days[0].Date.Weekday() != time.Monday {
				return false
			}
			for i := 1; i < GridCells; i++ {
				if !g.Days[i].Date.Equal(g.Days[i-1].Date.AddDate(0, 0, 1)) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1900, 2200),
		gen.IntRange(1, 12),
	))

	properties.Property("every day of the month appears exactly once", prop.ForAll(
		func(year, month int) bool {
			g := BuildMonthGrid(year, time.Month(month))
			daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()

			seen := make(map[int]int)
			for _, d := range g.Days {
				if d.InMonth {
					seen[d.Date.Day()]++
				}
			}
			if len(seen) != daysInMonth {
				return false
			}
			for _, n := range seen {
				if n != 1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1900, 2200),
		gen.IntRange(1, 12),
	))

	properties.Property("leading and trailing days belong to adjacent months", prop.ForAll(
		func(year, month int) bool {
			g := BuildMonthGrid(year, time.Month(month))
			first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			prev := first.AddDate(0, -1, 0)
			next := first.AddDate(0, 1, 0)

			inMonthSeen := false
			for _, d := range g.Days {
				switch {
				case d.InMonth:
					inMonthSeen = true
				case !inMonthSeen:
					if d.Date.Month() != prev.Month() || d.Date.Year() != prev.Year() {
						return false
					}
				default:
					if d.Date.Month() != next.Month() || d.Date.Year() != next.Year() {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1900, 2200),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}

func TestExpandEvents(t *testing.T) {
	events := []Event{
		{ID: "1", Title: "Offsite", EventDate: "2024-05-30", EndDate: "2024-06-02"},
		{ID: "2", Title: "Release", EventDate: "2024-05-31"},
		{ID: "3", Title: "Backwards", EventDate: "2024-05-10", EndDate: "2024-05-01"},
		{ID: "4", Title: "Timestamp", EventDate: "2024-05-15T09:30:00Z"},
	}

	buckets, errs := ExpandEvents(events)
	assert.Empty(t, errs)

	for _, key := range []string{"2024-05-30", "2024-05-31", "2024-06-01", "2024-06-02"} {
		assert.Contains(t, titles(buckets[key]), "Offsite", key)
	}
	assert.NotContains(t, buckets, "2024-06-03")
	assert.Equal(t, []string{"Offsite", "Release"}, titles(buckets["2024-05-31"]))
	assert.Equal(t, []string{"Backwards"}, titles(buckets["2024-05-10"]))
	assert.NotContains(t, buckets, "2024-05-01")
	assert.Equal(t, []string{"Timestamp"}, titles(buckets["2024-05-15"]))
}

func TestExpandEvents_MalformedDates(t *testing.T) {
	events := []Event{
		{ID: "bad-start", Title: "A", EventDate: "05/01/2024"},
		{ID: "bad-end", Title: "B", EventDate: "2024-05-02", EndDate: "soon"},
		{ID: "ok", Title: "C", EventDate: "2024-05-03"},
	}

	buckets, errs := ExpandEvents(events)
	require.Len(t, errs, 2)

	var dateErr *DateError
	require.True(t, errors.As(errs[0], &dateErr))
	assert.Equal(t, "bad-start", dateErr.EventID)
	assert.Equal(t, "eventDate", dateErr.Field)

	require.True(t, errors.As(errs[1], &dateErr))
	assert.Equal(t, "bad-end", dateErr.EventID)
	assert.Equal(t, "endDate", dateErr.Field)

	assert.Equal(t, []string{"B"}, titles(buckets["2024-05-02"]))
	assert.Equal(t, []string{"C"}, titles(buckets["2024-05-03"]))
	assert.Len(t, buckets, 2)
}

func TestExpandEvents_SpanLimit(t *testing.T) {
	buckets, errs := ExpandEvents([]Event{{ID: "x", EventDate: "2024-01-01", EndDate: "2999-01-01"}})
	require.Len(t, errs, 1)
	assert.Len(t, buckets, MaxSpanDays+1)
}

func TestRender(t *testing.T) {
	g := BuildMonthGrid(2024, time.May)
	buckets, _ := ExpandEvents([]Event{
		{ID: "1", Title: "Sprint 12 starts", Type: EventSprint, EventDate: "2024-05-06"},
		{ID: "2", Title: "April leave", Type: EventLeave, EventDate: "2024-04-29"},
	})

	out := Render(g, buckets, DefaultStyles(), "")

	assert.Contains(t, out, "May 2024")
	assert.Contains(t, out, "Mo")
	assert.Contains(t, out, "Su")
	assert.Contains(t, out, "Sprint 12 starts")
	assert.NotContains(t, out, "April leave", "events outside the month are not listed")
	assert.True(t, strings.Contains(out, "6*"), "busy day should be marked")
}

func titles(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Title)
	}
	return out
}
