package events

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/zenem/zenem/internal/logging"
)

// LogConfig configures the logging handler
type LogConfig struct {
	// Writer is where logs are written (default: os.Stderr)
	Writer io.Writer

	// IncludePayload includes event payload in log output
	IncludePayload bool

	// TimeFormat is the timestamp format (default: RFC3339)
	TimeFormat string
}

// LogHandler returns a handler that writes one line per event
// Format: time [event.type] subject error="..." payload=...
func LogHandler(cfg LogConfig) Handler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	return func(e Event) {
		var buf strings.Builder
		if !e.Time.IsZero() {
			buf.WriteString(e.Time.Format(cfg.TimeFormat))
			buf.WriteString(" ")
		}
		buf.WriteString(e.String())
		if cfg.IncludePayload && e.Payload != nil {
			fmt.Fprintf(&buf, " payload=%v", e.Payload)
		}
		buf.WriteString("\n")

		fmt.Fprint(cfg.Writer, buf.String())
	}
}

// LoggerHandler returns a handler that traces events through a logger.
// Failure events are logged as warnings, everything else at debug level.
func LoggerHandler(log *logging.Logger) Handler {
	return func(e Event) {
		if e.IsFailure() {
			log.Warning(e.String())
			return
		}
		log.Debug(e.String())
	}
}
