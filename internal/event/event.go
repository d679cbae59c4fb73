// Package event normalizes the loosely-structured callback payloads the
// Tavus platform delivers. Payload shapes vary across pipeline modes and
// SDK versions, so everything here works against generic key-value views
// and degrades instead of failing.
package event

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ToolCall is a single requested tool invocation extracted from a payload.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	CallID    string         `json:"call_id,omitempty"`
}

// Event is the normalized view of one webhook delivery. One Event is built
// per extracted ToolCall; non-tool events carry a nil Tool.
type Event struct {
	EventType      string         `json:"event_type"`
	ConversationID string         `json:"conversation_id,omitempty"`
	EventID        string         `json:"event_id,omitempty"`
	Timestamp      *float64       `json:"timestamp,omitempty"`
	Tool           *ToolCall      `json:"tool,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
}

// Build merges a raw payload with one extracted tool call into a fully
// populated Event: event_id is synthesized when absent, the timestamp is
// coerced (falling back to now only when the field is missing), and
// event_type defaults to "tool_call".
func Build(payload map[string]any, call *ToolCall) *Event {
	evt := &Event{
		EventType:      StringField(payload, "event_type"),
		ConversationID: StringField(payload, "conversation_id"),
		EventID:        StringField(payload, "event_id"),
		Tool:           call,
		Data:           MapField(payload, "data"),
		Properties:     MapField(payload, "properties"),
	}
	if evt.EventType == "" {
		evt.EventType = "tool_call"
	}
	if evt.EventID == "" {
		evt.EventID = uuid.New().String()
	}
	raw, present := payload["timestamp"]
	evt.Timestamp = CoerceTimestamp(raw)
	// A missing timestamp defaults to now; a present-but-unparseable one
	// stays nil so handlers see it as unknown.
	if evt.Timestamp == nil && !present {
		now := float64(time.Now().UnixMilli()) / 1000
		evt.Timestamp = &now
	}
	return evt
}

// CoerceTimestamp converts a timestamp of unknown shape to epoch seconds.
// Accepts numeric literals, ISO-8601 strings (a trailing Z is a UTC
// offset), and raw float strings. Unparseable input yields nil; timestamp
// unknown, never an error.
func CoerceTimestamp(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case float32:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				f := float64(parsed.UnixNano()) / float64(time.Second)
				return &f
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

// StringField returns the string at key, or "" when absent or non-string.
func StringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// MapField returns the nested map at key, or nil.
func MapField(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	nested, _ := m[key].(map[string]any)
	return nested
}

// SliceField returns the slice at key, or nil.
func SliceField(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	s, _ := m[key].([]any)
	return s
}

// Transcript returns properties.transcript as an ordered sequence of
// message maps, skipping entries that are not objects.
func Transcript(payload map[string]any) []map[string]any {
	raw := SliceField(MapField(payload, "properties"), "transcript")
	if raw == nil {
		return nil
	}
	msgs := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if msg, ok := item.(map[string]any); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
