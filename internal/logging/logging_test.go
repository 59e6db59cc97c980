package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.With("owner_id", "b1").Error("store failed", "op", "list campaigns")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store failed", entry["msg"])
	assert.Equal(t, "b1", entry["owner_id"])
	assert.Equal(t, "list campaigns", entry["op"])
	assert.Contains(t, entry, "stacktrace")
}

func TestNewTextWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := NewText(&buf, "info")

	log.Debug("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("label unavailable", "campaign_id", "c1")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "campaign_id=c1")
	assert.NotContains(t, buf.String(), "stacktrace")
}
