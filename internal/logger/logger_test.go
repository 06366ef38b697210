package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json"}, &buf)

	l.Info().Str("ip", "127.0.0.1").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "127.0.0.1", entry["ip"])
	assert.Contains(t, entry, "time")
}

func TestNewConsoleNoColor(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "console"}, &buf)

	l.Warn().Msg("plain")

	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestOpenOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	w := openOutput(path)
	f, ok := w.(*os.File)
	require.True(t, ok)
	defer func() { _ = f.Close() }()

	assert.Equal(t, path, f.Name())
	assert.Equal(t, os.Stdout, openOutput("stdout"))
	assert.Equal(t, os.Stderr, openOutput("stderr"))
}
