package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)
	log.With("target", "embedded").Info("assembled", "modules", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "assembled", entry["msg"])
	assert.Equal(t, "embedded", entry["target"])
	assert.EqualValues(t, 3, entry["modules"])
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "console", &buf)
	log.Info("hidden")
	assert.Empty(t, buf.String())
	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNopAndGlobal(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { SetLogger(prev) })

	n := Nop()
	SetLogger(n)
	assert.Same(t, n, GetLogger())
	SetLogger(nil)
	assert.Same(t, n, GetLogger(), "nil must not replace the logger")
}
