package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestZerologLogger_WritesFieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLoggerFor(&buf, "debug")
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Error(ctx, "failed", "error", errors.New("boom"), "operation", "verify")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "dbg", lines[0]["message"])
	assert.EqualValues(t, 1, lines[0]["a"])

	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
	assert.Equal(t, "verify", lines[1]["operation"])
}

func TestZerologLogger_WithAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLoggerFor(&buf, "info").With("module", "dispatch")

	log.Info(context.Background(), "hello", "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "dispatch", lines[0]["module"])
	assert.Equal(t, "dangling", lines[0]["!BADKEY"])
}

func TestZerologLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLoggerFor(&buf, "error")

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "hidden")

	assert.Empty(t, buf.String())
}

func TestNew_SelectsBackend(t *testing.T) {
	var buf bytes.Buffer

	assert.IsType(t, &ZerologLogger{}, New("zerolog", "info", &buf))
	assert.IsType(t, &SlogLogger{}, New("slog", "info", &buf))
	assert.IsType(t, &SlogLogger{}, New("unknown", "info", &buf))
}

func TestNop_DiscardsEverything(t *testing.T) {
	log := Nop().With("k", "v")
	log.Info(context.Background(), "nothing")
}
