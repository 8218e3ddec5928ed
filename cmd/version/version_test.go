package version

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintVersionInfo(t *testing.T) {
	v := Versions{Version: "1.2.0", GolangVersion: "go1.22.5", BuildTime: "2026-10-01T10:00:00Z"}

	var text bytes.Buffer
	require.NoError(t, printVersionInfo(&text, v, false))
	assert.Equal(t, "Core Version: v1.2.0\nGo Version: go1.22.5\nBuild Time: 2026-10-01T10:00:00Z\n", text.String())

	var raw bytes.Buffer
	require.NoError(t, printVersionInfo(&raw, v, true))
	var decoded Versions
	require.NoError(t, json.Unmarshal(raw.Bytes(), &decoded))
	assert.Equal(t, v, decoded)
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"version": "unknown"`)
}
