package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxhall/tavus-relay/internal/config"
	"github.com/voxhall/tavus-relay/internal/logging"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// --- loadJSONConfig ---

func TestLoadJSONConfigPlain(t *testing.T) {
	path := writeTemp(t, "persona.json", `{"persona_name": "Facilitator", "pipeline_mode": "full"}`)

	cfg, err := loadJSONConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Facilitator", cfg["persona_name"])
	assert.Equal(t, "full", cfg["pipeline_mode"])
}

func TestLoadJSONConfigJSONC(t *testing.T) {
	path := writeTemp(t, "persona.jsonc", `{
	// the display name
	"persona_name": "Facilitator",
	/* block comment
	   spanning lines */
	"system_prompt": "Guide the meeting."
}`)

	cfg, err := loadJSONConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Facilitator", cfg["persona_name"])
	assert.Equal(t, "Guide the meeting.", cfg["system_prompt"])
}

func TestLoadJSONConfigCommentedJSONExtension(t *testing.T) {
	// Comments in a .json file still parse via the stripped retry.
	path := writeTemp(t, "persona.json", `{
	// comment
	"persona_name": "Facilitator"
}`)

	cfg, err := loadJSONConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Facilitator", cfg["persona_name"])
}

func TestLoadJSONConfigPreservesSlashesInStrings(t *testing.T) {
	path := writeTemp(t, "conv.json", `{"callback_url": "https://relay.example.com/tavus/callback"}`)

	cfg, err := loadJSONConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://relay.example.com/tavus/callback", cfg["callback_url"])
}

func TestLoadJSONConfigMissingFile(t *testing.T) {
	_, err := loadJSONConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadJSONConfigInvalid(t *testing.T) {
	path := writeTemp(t, "bad.json", `{"persona_name": `)

	_, err := loadJSONConfig(path)
	assert.Error(t, err)
}

// --- small helpers ---

func TestCSVList(t *testing.T) {
	assert.Nil(t, csvList(""))
	assert.Equal(t, []string{"a", "b"}, csvList("a,b"))
	assert.Equal(t, []string{"a", "b"}, csvList(" a , b , "))
	assert.Equal(t, []string{"doc-1"}, csvList("doc-1"))
}

func TestPickPrefersFlag(t *testing.T) {
	cfg := map[string]any{"persona_name": "FromFile", "count": 3}

	assert.Equal(t, "FromFlag", pick("FromFlag", cfg, "persona_name"))
	assert.Equal(t, "FromFile", pick("", cfg, "persona_name"))
	assert.Equal(t, "", pick("", cfg, "missing"))
	assert.Equal(t, "", pick("", cfg, "count"))
}

// --- saveRequestLog ---

func TestSaveRequestLog(t *testing.T) {
	prevPaths, prevLog := paths, log
	t.Cleanup(func() { paths, log = prevPaths, prevLog })
	paths = config.Paths{Logs: t.TempDir()}
	log = logging.New(nil, "silent", "json")

	saveRequestLog("persona_create",
		map[string]any{"persona_name": "Facilitator"},
		map[string]any{"persona_id": "p-1"},
		"/v2/personas", nil)

	entries, err := os.ReadDir(paths.Logs)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "_persona_create")

	runDir := filepath.Join(paths.Logs, entries[0].Name())
	for _, name := range []string{"payload.json", "response.json", "meta.json"} {
		_, err := os.Stat(filepath.Join(runDir, name))
		assert.NoError(t, err, name)
	}
}

func TestSaveRequestLogErrorSkipsResponse(t *testing.T) {
	prevPaths, prevLog := paths, log
	t.Cleanup(func() { paths, log = prevPaths, prevLog })
	paths = config.Paths{Logs: t.TempDir()}
	log = logging.New(nil, "silent", "json")

	saveRequestLog("conversation_create",
		map[string]any{}, nil, "/v2/conversations", assert.AnError)

	entries, err := os.ReadDir(paths.Logs)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	runDir := filepath.Join(paths.Logs, entries[0].Name())
	_, err = os.Stat(filepath.Join(runDir, "response.json"))
	assert.True(t, os.IsNotExist(err))

	meta, err := os.ReadFile(filepath.Join(runDir, "meta.json"))
	require.NoError(t, err)
	assert.Contains(t, string(meta), "error")
}
