package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentPattern  = regexp.MustCompile(`(?m)(^|\s)//.*?$`)
)

// loadJSONConfig reads a JSON or JSONC file. Comments are stripped before
// parsing; plain JSON is tried first for non-.jsonc files so comment-like
// content inside strings survives when possible.
func loadJSONConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	parse := func(b []byte) (map[string]any, error) {
		var out map[string]any
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".jsonc") {
		return parse(stripJSONComments(data))
	}
	if out, err := parse(data); err == nil {
		return out, nil
	}
	out, err := parse(stripJSONComments(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}

func stripJSONComments(data []byte) []byte {
	data = blockCommentPattern.ReplaceAll(data, nil)
	return lineCommentPattern.ReplaceAll(data, []byte("$1"))
}

// csvList splits a comma-separated flag value into clean entries.
func csvList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// configString reads a string key from a loaded JSON config.
func configString(cfg map[string]any, key string) string {
	s, _ := cfg[key].(string)
	return s
}

// pick returns the flag value when set, else the config file value.
func pick(flag string, cfg map[string]any, key string) string {
	if flag != "" {
		return flag
	}
	return configString(cfg, key)
}

// saveRequestLog writes the payload and response of one API action under
// logs/<timestamp>_<action>/ for later inspection.
func saveRequestLog(action string, payload any, response map[string]any, endpoint string, reqErr error) {
	runDir := filepath.Join(paths.Logs, fmt.Sprintf("%s_%s", time.Now().Format("20060102-150405"), action))
	if err := os.MkdirAll(runDir, 0o700); err != nil {
		log.Warn().Err(err).Msg("failed to create request log directory")
		return
	}

	writeJSONFile := func(name string, v any) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return
		}
		if err := os.WriteFile(filepath.Join(runDir, name), data, 0o600); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("failed to write request log")
		}
	}

	writeJSONFile("payload.json", payload)
	if response != nil {
		writeJSONFile("response.json", response)
	}
	meta := map[string]any{"endpoint": endpoint}
	if reqErr != nil {
		meta["error"] = reqErr.Error()
	}
	writeJSONFile("meta.json", meta)
}
