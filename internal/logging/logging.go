// Package logging configures the leveled go-logging backend shared by all
// zenem packages. Packages obtain their logger with Get("refresh") and the
// CLI calls Init once the config is loaded.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	gologging "github.com/op/go-logging"
)

// Logger is the leveled logger type handed to components.
type Logger = gologging.Logger

const modulePrefix = "zenem."

var format = gologging.MustStringFormatter(
	`%{time:2006-01-02 15:04:05} %{level:.5s} %{module} %{message}`,
)

// Init installs a formatted backend writing to w at the given level.
// Level names are case-insensitive: debug, info, warn, error.
// A nil writer means os.Stderr.
func Init(level string, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}

	backend := gologging.NewLogBackend(w, "", 0)
	formatted := gologging.NewBackendFormatter(backend, format)
	leveled := gologging.AddModuleLevel(formatted)
	leveled.SetLevel(lvl, "")
	gologging.SetBackend(leveled)
	return nil
}

// Get returns the logger for a zenem subsystem.
func Get(subsystem string) *Logger {
	return gologging.MustGetLogger(modulePrefix + subsystem)
}

// Discard silences all logging; used by tests and by the TUI when the
// terminal is owned by bubbletea.
func Discard() {
	backend := gologging.NewLogBackend(io.Discard, "", 0)
	leveled := gologging.AddModuleLevel(backend)
	leveled.SetLevel(gologging.CRITICAL, "")
	gologging.SetBackend(leveled)
}

func parseLevel(level string) (gologging.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return gologging.DEBUG, nil
	case "info", "":
		return gologging.INFO, nil
	case "warn", "warning":
		return gologging.WARNING, nil
	case "error":
		return gologging.ERROR, nil
	default:
		return gologging.INFO, fmt.Errorf("unknown log level %q", level)
	}
}
