package roster

import (
	"regexp"
	"strings"

	"github.com/voxhall/tavus-relay/internal/event"
)

// Key-name lists for the heuristic field scan. Provider payloads spell
// these fields differently across pipeline modes, so the lists are
// centralized and tried in order; first non-empty match wins.
var (
	nameKeys = []string{
		"name", "display_name", "displayName", "user_name", "userName",
		"username", "speaker_name", "participant_name",
	}
	idKeys = []string{
		"participant_id", "id", "user_id", "session_id", "sender_id",
		"speaker_id",
	}
	containerKeys = []string{"speaker", "sender", "user", "participant"}
)

// humanRoles are transcript roles that identify a human turn.
var humanRoles = map[string]bool{
	"user":        true,
	"participant": true,
	"speaker":     true,
	"human":       true,
}

// namePatterns capture a self-introduction from free text: a single
// capitalized token of letters, apostrophes, and hyphens, 2-40 chars.
// Ordered by priority; best-effort, false positives are acceptable.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:my name is )([A-Z][A-Za-z'-]{1,39})\b`),
	regexp.MustCompile(`\bI am ([A-Z][A-Za-z'-]{1,39})\b`),
	regexp.MustCompile(`\bI'm ([A-Z][A-Za-z'-]{1,39})\b`),
}

// fieldExtractor pulls an optional value from a generic message view.
type fieldExtractor func(msg map[string]any) string

// extractorChain builds the ordered extractor list for a key set:
// direct fields on the message first, then each nested container.
func extractorChain(keys []string) []fieldExtractor {
	chain := []fieldExtractor{func(msg map[string]any) string {
		return firstStringField(msg, keys)
	}}
	for _, container := range containerKeys {
		container := container
		chain = append(chain, func(msg map[string]any) string {
			return firstStringField(event.MapField(msg, container), keys)
		})
	}
	return chain
}

var (
	labelExtractors = extractorChain(nameKeys)
	idExtractors    = extractorChain(idKeys)
)

func firstStringField(m map[string]any, keys []string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(event.StringField(m, key)); s != "" {
			return s
		}
	}
	return ""
}

// speakerLabel resolves a display name from one transcript message.
func speakerLabel(msg map[string]any) string {
	for _, extract := range labelExtractors {
		if s := extract(msg); s != "" {
			return s
		}
	}
	return ""
}

// SpeakerLabel resolves a display name from one transcript message, for
// callers outside the engine (e.g. transcript rendering).
func SpeakerLabel(msg map[string]any) string {
	return speakerLabel(msg)
}

// speakerID resolves a participant id from one transcript message.
func speakerID(msg map[string]any) string {
	for _, extract := range idExtractors {
		if s := extract(msg); s != "" {
			return s
		}
	}
	return ""
}

// isHumanRole reports whether a transcript role names a human turn.
func isHumanRole(role string) bool {
	return humanRoles[strings.ToLower(strings.TrimSpace(role))]
}

// captureNameFromText tries the self-introduction patterns against free
// text, in priority order.
func captureNameFromText(content string) string {
	for _, pattern := range namePatterns {
		if m := pattern.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	return ""
}

// lastHumanMessage returns the final transcript message with a human role,
// or nil when there is none.
func lastHumanMessage(msgs []map[string]any) map[string]any {
	var last map[string]any
	for _, msg := range msgs {
		if isHumanRole(event.StringField(msg, "role")) {
			last = msg
		}
	}
	return last
}
