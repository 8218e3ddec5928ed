package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfl-io/sflreport/pkg/shared/config"
)

func TestGetLogLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want hclog.Level
	}{
		{in: "TRACE", want: hclog.Trace},
		{in: "DEBUG", want: hclog.Debug},
		{in: "INFO", want: hclog.Info},
		{in: "WARN", want: hclog.Warn},
		{in: "ERROR", want: hclog.Error},
		{in: "", want: hclog.Info},
		{in: "verbose", want: hclog.Info},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, getLogLevel(tc.in))
		})
	}
}

func TestNewLoggerUsesConfigLevel(t *testing.T) {
	t.Setenv("SFLREPORT_LOG_LEVEL", "ERROR")
	cfg := &config.Config{Logger: config.Logger{Level: "debug"}}

	var buf bytes.Buffer
	l := newLogger(cfg, "report", &buf)
	l.Debug("selected lines", "count", 3)

	assert.True(t, l.IsDebug())
	assert.Contains(t, buf.String(), "report: selected lines: count=3")
}

func TestNewLoggerFallsBackToEnv(t *testing.T) {
	t.Setenv("SFLREPORT_LOG_LEVEL", "warn")

	var buf bytes.Buffer
	l := newLogger(nil, "report", &buf)
	l.Info("hidden")

	assert.False(t, l.IsInfo())
	assert.Empty(t, buf.String())
}

func TestNewLoggerJSONFormat(t *testing.T) {
	enabled := true
	cfg := &config.Config{Logger: config.Logger{Level: "info", JSONFormat: &enabled}}

	var buf bytes.Buffer
	newLogger(cfg, "publisher", &buf).Info("comment created", "id", 7)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "comment created", entry["@message"])
	assert.Equal(t, "publisher", entry["@module"])
	assert.EqualValues(t, 7, entry["id"])
}
