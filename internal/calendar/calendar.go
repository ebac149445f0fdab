// Package calendar builds month grids and buckets calendar events by day.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of event dates and the key format of day buckets.
const DateLayout = "2006-01-02"

// GridCells is the number of cells in a month grid (six weeks).
const GridCells = 42

// MaxSpanDays bounds how many days a single event may cover.
const MaxSpanDays = 366

// Event types reported by the backend.
const (
	EventHoliday   = "HOLIDAY"
	EventLeave     = "LEAVE"
	EventSprint    = "SPRINT"
	EventRelease   = "RELEASE"
	EventMilestone = "MILESTONE"
)

// Event is a calendar entry. EndDate is optional; an event without one
// occupies only EventDate.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	EventDate   string `json:"eventDate"`
	EndDate     string `json:"endDate,omitempty"`
	TeammateID  string `json:"teammateId,omitempty"`
	Description string `json:"description,omitempty"`
}

// Day is one cell of a month grid.
type Day struct {
	Date    time.Time
	InMonth bool
}

// Key returns the bucket key of the day.
func (d Day) Key() string {
	return d.Date.Format(DateLayout)
}

// Grid is a Monday-first six-week view of a month.
type Grid struct {
	Year  int
	Month time.Month
	Days  [GridCells]Day
}

// Weeks splits the grid into rows of seven days.
func (g Grid) Weeks() [][]Day {
	weeks := make([][]Day, 0, GridCells/7)
	for i := 0; i < GridCells; i += 7 {
		weeks = append(weeks, g.Days[i:i+7])
	}
	return weeks
}

// BuildMonthGrid returns the 42-cell grid for a month. Cells before the
// first and after the last day of the month are filled from the adjacent
// months.
func BuildMonthGrid(year int, month time.Month) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Monday = 0 ... Sunday = 6
	offset := (int(first.Weekday()) + 6) % 7
	start := first.AddDate(0, 0, -offset)

	g := Grid{Year: first.Year(), Month: first.Month()}
	for i := range g.Days {
		d := start.AddDate(0, 0, i)
		g.Days[i] = Day{Date: d, InMonth: d.Month() == first.Month() && d.Year() == first.Year()}
	}
	return g
}

// DateError reports an event whose dates could not be used.
type DateError struct {
	EventID string
	Field   string
	Value   string
	Err     error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("event %s: %s %q: %v", e.EventID, e.Field, e.Value, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// ExpandEvents places every event into a bucket for each day it covers,
// EventDate through EndDate inclusive. Events with an unparseable EventDate
// are skipped and reported. A missing or unparseable EndDate, or one before
// EventDate, makes the event a single-day event; an unparseable one is also
// reported.
func ExpandEvents(events []Event) (map[string][]Event, []error) {
	buckets := make(map[string][]Event)
	var errs []error

	for _, ev := range events {
		start, err := parseDate(ev.EventDate)
		if err != nil {
			errs = append(errs, &DateError{EventID: ev.ID, Field: "eventDate", Value: ev.EventDate, Err: err})
			continue
		}

		end := start
		if ev.EndDate != "" {
			parsed, err := parseDate(ev.EndDate)
			switch {
			case err != nil:
				errs = append(errs, &DateError{EventID: ev.ID, Field: "endDate", Value: ev.EndDate, Err: err})
			case parsed.Before(start):
			case parsed.Sub(start) > MaxSpanDays*24*time.Hour:
				errs = append(errs, &DateError{
					EventID: ev.ID, Field: "endDate", Value: ev.EndDate,
					Err: fmt.Errorf("span exceeds %d days", MaxSpanDays),
				})
				end = start.AddDate(0, 0, MaxSpanDays)
			default:
				end = parsed
			}
		}

		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			key := d.Format(DateLayout)
			buckets[key] = append(buckets[key], ev)
		}
	}
	return buckets, errs
}

// parseDate accepts a plain date or an RFC 3339 timestamp, keeping only
// the calendar date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected %s", DateLayout)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
