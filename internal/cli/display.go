package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/zenem/zenem/internal/api"
)

// StatusSymbol is the glyph shown next to a refresh status
type StatusSymbol string

const (
	SymbolComplete   StatusSymbol = "✓"
	SymbolInProgress StatusSymbol = "●"
	SymbolPending    StatusSymbol = "○"
	SymbolFailed     StatusSymbol = "✗"
	SymbolCancelled  StatusSymbol = "⊘"
)

// GetStatusSymbol returns the symbol for a refresh status
func GetStatusSymbol(status api.RefreshStatus) StatusSymbol {
	switch status {
	case api.StatusCompleted:
		return SymbolComplete
	case api.StatusRunning, api.StatusInProgress:
		return SymbolInProgress
	case api.StatusFailed:
		return SymbolFailed
	case api.StatusCancelled:
		return SymbolCancelled
	default:
		return SymbolPending
	}
}

// RenderProgressBar renders a progress bar of specified width.
// percent is 0-100 as reported by the backend.
func RenderProgressBar(percent float64, width int) string {
	progress := percent / 100
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("[%s] %3d%%", bar, int(progress*100))
}

// newTable returns a tabwriter with the column layout used by every listing
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// displayStatus renders one orchestration with per-target progress
func displayStatus(w io.Writer, s *api.RefreshStatusResponse) {
	fmt.Fprintf(w, "%s %s  %s  %s\n",
		GetStatusSymbol(s.Status), s.OrchestrationID, s.Status, RenderProgressBar(s.OverallProgress, 20))
	if s.StartedAt != "" {
		fmt.Fprintf(w, "  started %s", formatTimestamp(s.StartedAt))
		if s.CompletedAt != "" {
			fmt.Fprintf(w, ", finished %s", formatTimestamp(s.CompletedAt))
		}
		fmt.Fprintln(w)
	}

	if len(s.Targets) > 0 {
		tw := newTable(w)
		fmt.Fprintln(tw, "  TARGET\tSTATUS\tPROGRESS\tRECORDS\tMESSAGE")
		for _, t := range s.Targets {
			fmt.Fprintf(tw, "  %s %s\t%s\t%.0f%%\t%s\t%s\n",
				GetStatusSymbol(t.Status), t.Target, t.Status, t.Progress,
				humanize.Comma(int64(t.RecordsProcessed)), t.Message)
		}
		tw.Flush()
	}

	for _, e := range s.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}

// displayActive renders a list of orchestrations in tabular format.
// Columns: ID, Status, Progress, Targets, Started
func displayActive(w io.Writer, runs []api.RefreshStatusResponse) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No active refreshes")
		return
	}

	tw := newTable(w)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSTATUS\tPROGRESS\tTARGETS\tSTARTED")
	for _, r := range runs {
		targets := make([]string, 0, len(r.Targets))
		for _, t := range r.Targets {
			targets = append(targets, string(t.Target))
		}
		fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%s\t%s\n",
			r.OrchestrationID,
			r.Status,
			r.OverallProgress,
			strings.Join(targets, ","),
			formatTimestamp(r.StartedAt),
		)
	}
}

// displayEstimate renders the backend's projection for a selection
func displayEstimate(w io.Writer, est *api.RefreshEstimate) {
	if est == nil {
		return
	}
	fmt.Fprintf(w, "Estimated: ~%s records in about %s\n",
		humanize.Comma(int64(est.EstimatedRecords)),
		formatDuration(time.Duration(est.EstimatedDurationSeconds)*time.Second))
	for _, warn := range est.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}

// displayConnectors renders connectors in tabular format
func displayConnectors(w io.Writer, page *api.Page[api.Connector]) {
	tw := newTable(w)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tLAST SYNC")
	for _, c := range page.Content {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, c.Status, formatTimestamp(c.LastSyncAt))
	}
}

// displayLogs renders connector log rows in tabular format
func displayLogs(w io.Writer, page *api.Page[api.ConnectorLog]) {
	tw := newTable(w)
	defer tw.Flush()

	fmt.Fprintln(tw, "TIME\tLEVEL\tJOB\tMESSAGE")
	for _, l := range page.Content {
		job := l.JobID
		if job == "" {
			job = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", formatTimestamp(l.CreatedAt), l.Level, job, l.Message)
	}
}

// boolToStatus converts a health boolean to a human-readable status string.
func boolToStatus(healthy bool) string {
	if healthy {
		return "healthy"
	}
	return "unhealthy"
}

// formatDuration formats a duration in human-readable form (e.g., "2m30s")
func formatDuration(d time.Duration) string {
	// Truncate to seconds for display
	d = d.Round(time.Second)

	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		if seconds > 0 {
			return fmt.Sprintf("%dm%ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if minutes > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}

// formatTimestamp renders a backend timestamp relative to now ("3 minutes ago").
// Unparseable values are shown as-is and empty ones as "-".
func formatTimestamp(s string) string {
	if s == "" {
		return "-"
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return humanize.Time(t)
		}
	}
	return s
}
