package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdash/internal/config"
)

func TestProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&config.Config{LogLevel: "debug", Environment: "production"}, &buf)

	log.WithField("grade", "6A").Info("saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "saved", entry["msg"])
	assert.Equal(t, "6A", entry["grade"])
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&config.Config{LogLevel: "loud"}, &buf)

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}
