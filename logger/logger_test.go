package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesJSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production", false)

	log.Info("scan finished", "added", 3)
	log.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scan finished", entry["msg"])
	assert.EqualValues(t, 3, entry["added"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewDebugEnablesDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production", true)

	log.Debug("walking location", "path", "/srv/movies")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "path=/srv/movies")
}
