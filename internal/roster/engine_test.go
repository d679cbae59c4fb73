package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxhall/tavus-relay/internal/logging"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(NewMemoryStore(), logging.New(nopWriter{}, "silent", "json"))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func transcriptPayload(conversationID string, msgs ...map[string]any) map[string]any {
	items := make([]any, len(msgs))
	for i, m := range msgs {
		items[i] = m
	}
	payload := map[string]any{
		"properties": map[string]any{"transcript": items},
	}
	if conversationID != "" {
		payload["conversation_id"] = conversationID
	}
	return payload
}

func TestUpdateFromEventNamedSpeaker(t *testing.T) {
	e := newTestEngine(t)

	e.UpdateFromEvent(transcriptPayload("c1",
		map[string]any{"role": "assistant", "content": "hi"},
		map[string]any{"role": "user", "name": "Alex", "content": "my name is Alex"},
	))

	entry := e.Entry("c1")
	assert.Equal(t, "Alex", entry.LastSpeakerName)

	speaker := e.CurrentSpeaker("c1", transcriptPayload("c1",
		map[string]any{"role": "user", "name": "Alex", "content": "hello again"},
	))
	assert.True(t, speaker.Confident)
	assert.Equal(t, "Alex", speaker.Name)
}

func TestUpdateFromEventFreeTextFallback(t *testing.T) {
	e := newTestEngine(t)

	e.UpdateFromEvent(transcriptPayload("c1",
		map[string]any{"role": "user", "content": "I'm Priya, nice to meet you"},
	))

	assert.Equal(t, "Priya", e.Entry("c1").LastSpeakerName)
}

func TestUpdateFromEventUpsertsParticipants(t *testing.T) {
	e := newTestEngine(t)

	e.UpdateFromEvent(transcriptPayload("c1",
		map[string]any{"role": "user", "participant_id": "p-1", "name": "Alex", "content": "hi"},
		map[string]any{"role": "user", "participant_id": "p-2", "name": "Priya", "content": "hello"},
	))

	entry := e.Entry("c1")
	assert.Equal(t, map[string]string{"p-1": "Alex", "p-2": "Priya"}, entry.Participants)
	assert.Equal(t, "p-2", entry.LastSpeakerID)
	assert.Equal(t, "Priya", entry.LastSpeakerName)
}

func TestUpdateFromEventPartialOverwrite(t *testing.T) {
	e := newTestEngine(t)

	e.UpdateFromEvent(transcriptPayload("c1",
		map[string]any{"role": "user", "participant_id": "p-1", "name": "Alex", "content": "hi"},
	))
	// A later name-only turn keeps the stored id.
	e.UpdateFromEvent(transcriptPayload("c1",
		map[string]any{"role": "user", "content": "my name is Priya"},
	))

	entry := e.Entry("c1")
	assert.Equal(t, "p-1", entry.LastSpeakerID)
	assert.Equal(t, "Priya", entry.LastSpeakerName)
}

func TestUpdateFromEventNoConversationID(t *testing.T) {
	e := newTestEngine(t)
	e.UpdateFromEvent(transcriptPayload("",
		map[string]any{"role": "user", "name": "Ghost", "content": "hi"},
	))
	assert.Empty(t, e.store.(*MemoryStore).Conversations())
}

func TestCurrentSpeakerMemoryFallback(t *testing.T) {
	e := newTestEngine(t)
	e.UpdateFromEvent(transcriptPayload("c1",
		map[string]any{"role": "user", "name": "Sam", "content": "hi"},
	))

	// No human-role message in the current request.
	speaker := e.CurrentSpeaker("c1", transcriptPayload("c1",
		map[string]any{"role": "assistant", "content": "thinking..."},
	))
	assert.True(t, speaker.Confident)
	assert.Equal(t, "Sam", speaker.Name)
	assert.Equal(t, "memory", speaker.Source)
}

func TestCurrentSpeakerFreshEvidenceOverridesMemory(t *testing.T) {
	e := newTestEngine(t)
	e.UpdateFromEvent(transcriptPayload("c1",
		map[string]any{"role": "user", "name": "Sam", "content": "hi"},
	))

	speaker := e.CurrentSpeaker("c1", transcriptPayload("c1",
		map[string]any{"role": "user", "name": "Priya", "content": "now me"},
	))
	assert.Equal(t, "Priya", speaker.Name)
	assert.Equal(t, "transcript", speaker.Source)
}

func TestCurrentSpeakerUnknownConversation(t *testing.T) {
	e := newTestEngine(t)
	speaker := e.CurrentSpeaker("nope", map[string]any{})
	assert.False(t, speaker.Confident)
	assert.Empty(t, speaker.Name)
}

func TestCurrentSpeakerSingleConversationFallback(t *testing.T) {
	e := newTestEngine(t)
	e.UpdateFromEvent(transcriptPayload("only-one",
		map[string]any{"role": "user", "name": "Sam", "content": "hi"},
	))

	// Missing conversation id resolves to the sole known entry.
	speaker := e.CurrentSpeaker("", map[string]any{})
	assert.True(t, speaker.Confident)
	assert.Equal(t, "Sam", speaker.Name)
}

func TestRegisterSynthesizesNameKey(t *testing.T) {
	e := newTestEngine(t)

	key, isNew := e.Register("c1", "  Alex  ", "", false)
	assert.Equal(t, "name:alex", key)
	assert.True(t, isNew)

	key, isNew = e.Register("c1", "Alex", "", false)
	assert.Equal(t, "name:alex", key)
	assert.False(t, isNew)
}

func TestRegisterDistinctParticipants(t *testing.T) {
	e := newTestEngine(t)

	_, first := e.Register("c1", "Alex", "p-1", false)
	_, second := e.Register("c1", "Priya", "p-2", false)
	assert.True(t, first)
	assert.True(t, second)

	roster := e.Snapshot("c1")
	require.Len(t, roster, 2)
	names := map[string]string{}
	for _, p := range roster {
		names[p.ID] = p.Name
	}
	assert.Equal(t, map[string]string{"p-1": "Alex", "p-2": "Priya"}, names)

	// Re-registering the same id updates without duplicating.
	_, isNew := e.Register("c1", "Alexandra", "p-1", false)
	assert.False(t, isNew)
	assert.Len(t, e.Snapshot("c1"), 2)
	assert.Equal(t, "Alexandra", e.Entry("c1").Participants["p-1"])
}

func TestRegisterActiveMarksSpeaker(t *testing.T) {
	e := newTestEngine(t)
	e.Register("c1", "Alex", "p-1", true)

	entry := e.Entry("c1")
	assert.Equal(t, "p-1", entry.LastSpeakerID)
	assert.Equal(t, "Alex", entry.LastSpeakerName)
}
