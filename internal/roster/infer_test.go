package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeakerLabelDirectKeys(t *testing.T) {
	tests := []struct {
		name string
		msg  map[string]any
		want string
	}{
		{"name", map[string]any{"name": "Alex"}, "Alex"},
		{"display_name", map[string]any{"display_name": "Alex"}, "Alex"},
		{"camel displayName", map[string]any{"displayName": "Alex"}, "Alex"},
		{"user_name", map[string]any{"user_name": "Alex"}, "Alex"},
		{"priority order", map[string]any{"name": "First", "user_name": "Second"}, "First"},
		{"whitespace only ignored", map[string]any{"name": "  ", "username": "Alex"}, "Alex"},
		{"none", map[string]any{"role": "user"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, speakerLabel(tt.msg))
		})
	}
}

func TestSpeakerLabelNestedContainers(t *testing.T) {
	msg := map[string]any{
		"role":    "user",
		"speaker": map[string]any{"name": "Nested"},
	}
	assert.Equal(t, "Nested", speakerLabel(msg))

	msg = map[string]any{
		"role":   "user",
		"sender": map[string]any{"display_name": "FromSender"},
	}
	assert.Equal(t, "FromSender", speakerLabel(msg))

	// Direct field wins over containers.
	msg = map[string]any{
		"name":    "Direct",
		"speaker": map[string]any{"name": "Nested"},
	}
	assert.Equal(t, "Direct", speakerLabel(msg))
}

func TestSpeakerID(t *testing.T) {
	assert.Equal(t, "p-1", speakerID(map[string]any{"participant_id": "p-1"}))
	assert.Equal(t, "u-2", speakerID(map[string]any{"user": map[string]any{"id": "u-2"}}))
	assert.Equal(t, "", speakerID(map[string]any{"role": "user"}))
}

func TestIsHumanRole(t *testing.T) {
	for _, role := range []string{"user", "participant", "speaker", "human", "USER", " user "} {
		assert.True(t, isHumanRole(role), role)
	}
	for _, role := range []string{"assistant", "system", "tool", ""} {
		assert.False(t, isHumanRole(role), role)
	}
}

func TestCaptureNameFromText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"my name is", "hello, my name is Alex", "Alex"},
		{"my name is case-insensitive phrase", "My Name Is Priya", "Priya"},
		{"i am", "I am Sam and I like Go", "Sam"},
		{"im contraction", "I'm Priya, nice to meet you", "Priya"},
		{"apostrophe name", "my name is O'Brien", "O'Brien"},
		{"hyphen name", "I'm Jean-Luc", "Jean-Luc"},
		{"pattern priority", "I'm Bob, but my name is Robert", "Robert"},
		{"lowercase name rejected", "i am nobody", ""},
		{"no match", "nice weather today", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, captureNameFromText(tt.content))
		})
	}
}

func TestLastHumanMessage(t *testing.T) {
	msgs := []map[string]any{
		{"role": "user", "content": "first"},
		{"role": "assistant", "content": "mid"},
		{"role": "participant", "content": "last"},
	}
	assert.Equal(t, "last", lastHumanMessage(msgs)["content"])

	assert.Nil(t, lastHumanMessage([]map[string]any{{"role": "assistant"}}))
	assert.Nil(t, lastHumanMessage(nil))
}
