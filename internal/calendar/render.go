package calendar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles of the month view.
type Styles struct {
	Title      lipgloss.Style
	Weekday    lipgloss.Style
	Day        lipgloss.Style
	OtherMonth lipgloss.Style
	Today      lipgloss.Style
	Busy       lipgloss.Style
	EventDate  lipgloss.Style
	EventTypes map[string]lipgloss.Style
}

// DefaultStyles returns the default month view styles.
func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Weekday:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Day:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		OtherMonth: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Today:      lipgloss.NewStyle().Bold(true).Underline(true),
		Busy:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		EventDate:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		EventTypes: map[string]lipgloss.Style{
			EventHoliday:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			EventLeave:     lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
			EventSprint:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			EventRelease:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			EventMilestone: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		},
	}
}

var weekdayHeader = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

const cellWidth = 4

// Render draws the month grid followed by the events of each in-month day.
// Days with at least one event are marked with an asterisk. today may be
// empty.
func Render(g Grid, buckets map[string][]Event, styles Styles, today string) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d", g.Month, g.Year)
	b.WriteString(styles.Title.Width(cellWidth * 7).Align(lipgloss.Center).Render(title))
	b.WriteString("\n")

	for _, wd := range weekdayHeader {
		b.WriteString(styles.Weekday.Width(cellWidth).Render(wd))
	}
	b.WriteString("\n")

	for _, week := range g.Weeks() {
		for _, d := range week {
			b.WriteString(renderCell(d, buckets, styles, today))
		}
		b.WriteString("\n")
	}

	var lines []string
	for _, d := range g.Days {
		if !d.InMonth {
			continue
		}
		for _, ev := range sortedEvents(buckets[d.Key()]) {
			style, ok := styles.EventTypes[ev.Type]
			if !ok {
				style = styles.Day
			}
			lines = append(lines, fmt.Sprintf("%s  %s", styles.EventDate.Render(d.Key()), style.Render(ev.Title)))
		}
	}
	if len(lines) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCell(d Day, buckets map[string][]Event, styles Styles, today string) string {
	label := fmt.Sprintf("%2d", d.Date.Day())
	style := styles.Day
	switch {
	case !d.InMonth:
		style = styles.OtherMonth
	case len(buckets[d.Key()]) > 0:
		style = styles.Busy
		label += "*"
	}
	if d.Key() == today {
		style = style.Inherit(styles.Today)
	}
	return style.Width(cellWidth).Render(label)
}

func sortedEvents(events []Event) []Event {
	out := append([]Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Title < out[j].Title
	})
	return out
}
