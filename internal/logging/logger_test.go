package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(&buf, "debug", FormatJSON)
	require.NoError(t, err)

	log.WithField("user", "alice").Debug("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "alice", entry["user"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_LevelFallback(t *testing.T) {
	log, err := NewWithOutput(&bytes.Buffer{}, "loud", FormatText)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(&buf, "warn", FormatText)
	require.NoError(t, err)

	log.Info("quiet")
	assert.Empty(t, buf.String())

	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := NewWithOutput(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}
