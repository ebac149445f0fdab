package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init("warn", &buf))
	t.Cleanup(Discard)

	log := Get("test")
	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warning("visible warning")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible warning")
	assert.Contains(t, out, "zenem.test")
}

func TestInit_UnknownLevel(t *testing.T) {
	err := Init("verbose", nil)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error", ""} {
		_, err := parseLevel(level)
		assert.NoError(t, err, level)
	}
}
