package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:       LevelInfo,
		ServiceName: "test-service",
		JSONFormat:  true,
		Output:      &buf,
	})

	log.Info("cycle complete", F("meeting_id", "m-1"), F("tasks", 5))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cycle complete", entry["message"])
	assert.Equal(t, "test-service", entry["service_name"])
	assert.Equal(t, "m-1", entry["meeting_id"])
	assert.Equal(t, float64(5), entry["tasks"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:       LevelWarn,
		ServiceName: "test-service",
		JSONFormat:  true,
		Output:      &buf,
	})

	log.Debug("dropped")
	log.Info("also dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestWith_AttachesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelInfo,
		JSONFormat: true,
		Output:     &buf,
	})

	child := log.With(F("agent_id", "a-42"))
	child.Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "a-42", entry["agent_id"])
}

func TestErrField(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelInfo,
		JSONFormat: true,
		Output:     &buf,
	})

	log.Error("save failed", Err(errors.New("disk full")))
	assert.Contains(t, buf.String(), "disk full")
}

func TestNopLogger_DoesNothing(t *testing.T) {
	log := NewNopLogger()
	// Must not panic and With must keep returning a usable logger.
	log.With(F("k", "v")).Info("ignored")
	log.Debug("ignored")
	log.Error("ignored", Err(errors.New("boom")))
}
