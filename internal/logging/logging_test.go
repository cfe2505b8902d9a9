package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("info", "json", &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("card exported")
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "card exported", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "ts")
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("debug", "console", &buf)
	require.NoError(t, err)

	logger.Debug("label analysis applied")
	assert.Contains(t, buf.String(), "label analysis applied")
}

func TestNewWithWriter_Errors(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewWithWriter("loud", "json", &buf)
	require.Error(t, err)

	_, err = NewWithWriter("info", "xml", &buf)
	require.Error(t, err)
}
