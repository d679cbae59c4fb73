package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxhall/tavus-relay/internal/logging"
)

func testWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	dir := t.TempDir()
	return New(dir, logging.New(nil, "silent", "json")), dir
}

func TestAppend_WritesJSONL(t *testing.T) {
	w, dir := testWriter(t)

	w.Append(map[string]any{"conversation_id": "c1", "event_type": "ping"})
	w.Append(map[string]any{"conversation_id": "c1", "event_type": "pong"})

	f, err := os.Open(filepath.Join(dir, "c1", "events.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var types []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var payload map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &payload))
		types = append(types, payload["event_type"].(string))
	}
	assert.Equal(t, []string{"ping", "pong"}, types)
}

func TestAppend_UnknownConversation(t *testing.T) {
	w, dir := testWriter(t)

	w.Append(map[string]any{"event_type": "ping"})

	_, err := os.Stat(filepath.Join(dir, "unknown", "events.jsonl"))
	assert.NoError(t, err)
}

func TestAppend_TranscriptRendering(t *testing.T) {
	w, dir := testWriter(t)

	w.Append(map[string]any{
		"conversation_id": "c1",
		"timestamp":       "2024-01-01T00:00:00Z",
		"properties": map[string]any{
			"transcript": []any{
				map[string]any{"role": "assistant", "content": "hello"},
				map[string]any{"role": "user", "name": "Alex", "content": "hi there"},
				map[string]any{"role": "", "content": ""},
			},
		},
	})

	data, err := os.ReadFile(filepath.Join(dir, "c1", "transcript.txt"))
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "=== Event @ 2024-01-01T00:00:00Z ===")
	assert.Contains(t, text, "assistant: hello\n")
	assert.Contains(t, text, "Alex (user): hi there\n")
}

func TestAppend_NumericTimestampHeader(t *testing.T) {
	w, dir := testWriter(t)

	w.Append(map[string]any{
		"conversation_id": "c1",
		"timestamp":       1704067200.0,
		"properties": map[string]any{
			"transcript": []any{
				map[string]any{"role": "user", "content": "hi"},
			},
		},
	})

	data, err := os.ReadFile(filepath.Join(dir, "c1", "transcript.txt"))
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "=== Event @ 1704067200 ===")
	assert.NotContains(t, text, "e+09")
}

func TestAppend_NoTranscriptNoFile(t *testing.T) {
	w, dir := testWriter(t)

	w.Append(map[string]any{"conversation_id": "c1"})

	_, err := os.Stat(filepath.Join(dir, "c1", "transcript.txt"))
	assert.True(t, os.IsNotExist(err))
}
