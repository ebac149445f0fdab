package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/zenem/zenem/internal/refresh"
)

// View implements tea.Model
func (m *Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch {
	case m.State.Loading:
		fmt.Fprintf(&b, "  %s Loading refresh options...\n", m.Spinner.View())
	case m.State.CurrentRefresh != nil:
		b.WriteString(m.renderRun())
	default:
		b.WriteString(m.renderTargets())
		b.WriteString(m.renderEstimate())
	}

	if m.State.Error != "" {
		b.WriteString("\n  ")
		b.WriteString(m.Styles.Error.Render(m.State.Error))
		b.WriteString("\n")
	}

	if m.ShowLogs {
		b.WriteString(m.renderLogs())
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title line with timer and active-refresh badge
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	header := fmt.Sprintf("%s  %s",
		m.Styles.Title.Render("Zenem Refresh"),
		m.Styles.Timer.Render(fmt.Sprintf("[%s]", formatDuration(elapsed))),
	)
	if m.State.ActiveCount > 0 {
		header += "  " + m.Styles.Badge.Render(fmt.Sprintf("%d active", m.State.ActiveCount))
	}
	return header
}

// renderTargets renders the selectable target list
func (m *Model) renderTargets() string {
	options := m.State.TargetOptions
	if len(options) == 0 {
		return "  No refresh targets available\n"
	}

	var b strings.Builder
	for i, opt := range options {
		cursor := "  "
		if i == m.Cursor {
			cursor = m.Styles.Cursor.Render("> ")
		}

		box := IconUnchecked
		style := m.Styles.Unselected
		if m.selected(opt.Target) {
			box = IconChecked
			style = m.Styles.Selected
		}
		if !opt.Available {
			style = m.Styles.Unavailable
		}

		label := opt.Label
		if label == "" {
			label = string(opt.Target)
		}
		line := fmt.Sprintf("%s%s %s", cursor, box, style.Render(label))
		if opt.Description != "" {
			line += "  " + m.Styles.Description.Render(opt.Description)
		}
		if m.suggested(opt.Target) {
			line += "  " + m.Styles.Suggested.Render("suggested")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderEstimate renders the live estimate and the last validation result
func (m *Model) renderEstimate() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.State.Starting:
		fmt.Fprintf(&b, "  %s Starting refresh...\n", m.Spinner.View())
	case m.State.Estimating:
		fmt.Fprintf(&b, "  %s Estimating...\n", m.Spinner.View())
	case m.State.Estimate != nil:
		est := m.State.Estimate
		b.WriteString("  ")
		b.WriteString(m.Styles.Estimate.Render(fmt.Sprintf("~%s records, about %s",
			humanize.Comma(int64(est.EstimatedRecords)),
			formatDuration(time.Duration(est.EstimatedDurationSeconds)*time.Second))))
		b.WriteString("\n")
		for _, w := range est.Warnings {
			b.WriteString("  " + m.Styles.Warning.Render("! "+w) + "\n")
		}
	}

	if v := m.State.Validation; v != nil {
		for _, w := range v.Warnings {
			b.WriteString("  " + m.Styles.Warning.Render("! "+w) + "\n")
		}
	}
	return b.String()
}

// renderRun renders the followed orchestration
func (m *Model) renderRun() string {
	cur := m.State.CurrentRefresh
	var b strings.Builder

	if cur.Status == nil {
		fmt.Fprintf(&b, "  %s %s waiting for progress...\n", m.Spinner.View(), cur.OrchestrationID)
		return b.String()
	}

	st := cur.Status
	fmt.Fprintf(&b, "  %s %s  %s\n", m.statusIcon(st.Status), cur.OrchestrationID, st.Status)
	fmt.Fprintf(&b, "  %s\n\n", m.Progress.ViewAs(clampPercent(st.OverallProgress)))

	for _, t := range st.Targets {
		fmt.Fprintf(&b, "  %s %-12s %3.0f%%  %s records",
			m.statusIcon(t.Status), t.Target, t.Progress, humanize.Comma(int64(t.RecordsProcessed)))
		if t.Message != "" {
			b.WriteString("  " + m.Styles.Description.Render(t.Message))
		}
		b.WriteString("\n")
	}
	for _, e := range st.Errors {
		b.WriteString("  " + m.Styles.Error.Render(e) + "\n")
	}
	for _, w := range st.Warnings {
		b.WriteString("  " + m.Styles.Warning.Render(w) + "\n")
	}
	return b.String()
}

func (m *Model) statusIcon(s refresh.Status) string {
	switch s {
	case "COMPLETED":
		return m.Styles.StatusComplete.Render(IconComplete)
	case "FAILED":
		return m.Styles.StatusFailed.Render(IconFailed)
	case "CANCELLED":
		return m.Styles.StatusFailed.Render(IconCancelled)
	case "RUNNING", "IN_PROGRESS":
		return m.Styles.StatusActive.Render(IconActive)
	default:
		return m.Styles.Description.Render(IconPending)
	}
}

// renderLogs renders the tail of the log panel
func (m *Model) renderLogs() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.Styles.LogTitle.Render("  Logs"))
	b.WriteString("\n")

	lines := m.LogLines
	if limit := 8; len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	for _, l := range lines {
		b.WriteString("  " + m.Styles.LogLine.Render(l) + "\n")
	}
	return b.String()
}

// renderFooter renders the key help for the current screen
func (m *Model) renderFooter() string {
	key := m.Styles.FooterKey.Render
	var parts []string
	switch {
	case m.running():
		parts = []string{key("c") + " cancel"}
	case m.Finished:
	default:
		parts = []string{
			key("↑/↓") + " move",
			key("space") + " toggle",
			key("enter") + " start",
		}
	}
	parts = append(parts, key("l")+" logs", key("q")+" quit")
	return m.Styles.Footer.Render("  "+strings.Join(parts, " • ")) + "\n"
}

// clampPercent converts a 0-100 backend percentage to the 0-1 bar range
func clampPercent(p float64) float64 {
	p /= 100
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// formatDuration formats a duration as HH:MM:SS
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	mi := d / time.Minute
	d -= mi * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, mi, s)
}
