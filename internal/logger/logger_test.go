package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLeavesCallerArgsIntact(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelInfo, &buf)

	args := make([]any, 2, 8)
	args[0], args[1] = "ride_id", 1
	log.Error("add passenger", errors.New("ride full"), args...)

	spare := args[:cap(args)]
	assert.Nil(t, spare[2], "Error wrote into the caller's backing array")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "add passenger", line["message"])
	assert.Equal(t, float64(1), line["ride_id"])
	assert.Equal(t, "wayfare", line["service"])
	group, ok := line["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ride full", group["msg"])
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)
	log.Info("hidden")
	assert.Zero(t, buf.Len())
	log.Warn("shown", "k", "v")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}
