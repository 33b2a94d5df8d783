package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutputCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New("board", Options{Level: "debug", Out: &buf})

	l.Infof("loaded %d jobs", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "board", line["component"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "loaded 3 jobs", line["message"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New("x", Options{Level: "warn", Out: &buf})

	l.Debugf("hidden")
	l.Infof("hidden")
	l.Warnf("shown")

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "shown")
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New("x", Options{Level: "chatty", Out: &buf})

	l.Debugf("hidden")
	l.Infof("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestDebugwAndWith(t *testing.T) {
	var buf bytes.Buffer
	l := New("root", Options{Level: "debug", Out: &buf}).With("api")

	l.Debugw("allocated", map[string]any{"view": "fab", "total": 12.5})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "api", line["component"])
	assert.Equal(t, "fab", line["view"])
	assert.Equal(t, 12.5, line["total"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New("cli", Options{Format: "console", Out: &buf})

	l.Errorf("boom")

	assert.Contains(t, buf.String(), "boom")
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	l.Debugf("x")
	l.Debugw("x", nil)
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")
	assert.NotNil(t, l.With("y"))
}
