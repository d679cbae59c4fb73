package roster

import (
	"strings"

	"github.com/voxhall/tavus-relay/internal/event"
	"github.com/voxhall/tavus-relay/internal/logging"
)

// Engine owns all roster mutation. Readers get snapshots; the store
// serializes writes so concurrent deliveries cannot drop updates.
type Engine struct {
	store Store
	log   *logging.Logger
}

// NewEngine creates a roster engine over the given store.
func NewEngine(store Store, log *logging.Logger) *Engine {
	return &Engine{store: store, log: log.Sub("roster")}
}

// Speaker is the result of a current-speaker inference.
type Speaker struct {
	ID        string `json:"participant_id"`
	Name      string `json:"display_name"`
	Confident bool   `json:"confident"`
	Source    string `json:"source,omitempty"` // "transcript" | "memory"
}

// UpdateFromEvent folds one webhook payload into the conversation's roster.
// Without a conversation_id the update is a no-op.
func (e *Engine) UpdateFromEvent(payload map[string]any) {
	conversationID := event.StringField(payload, "conversation_id")
	if conversationID == "" {
		return
	}

	msgs := event.Transcript(payload)
	err := e.store.Update(conversationID, func(entry *Entry) {
		for _, msg := range msgs {
			id := speakerID(msg)
			label := speakerLabel(msg)
			if id != "" && label != "" {
				entry.Participants[id] = label
			}
		}

		candidate := lastHumanMessage(msgs)
		if candidate == nil {
			return
		}
		id := speakerID(candidate)
		name := speakerLabel(candidate)
		if name == "" {
			name = captureNameFromText(event.StringField(candidate, "content"))
		}
		// Partial overwrite: each field updates independently.
		if id != "" {
			entry.LastSpeakerID = id
		}
		if name != "" {
			entry.LastSpeakerName = name
		}
	})
	if err != nil {
		e.log.Error().Err(err).Str("conversationId", conversationID).Msg("roster update failed")
	}
}

// CurrentSpeaker resolves who is speaking right now. Fresh in-request
// transcript evidence always overrides stored memory; stored memory is
// still reported as confident, and only a fully unknown speaker comes
// back with Confident false.
func (e *Engine) CurrentSpeaker(conversationID string, payload map[string]any) Speaker {
	conversationID = e.resolveConversation(conversationID)

	if candidate := lastHumanMessage(event.Transcript(payload)); candidate != nil {
		name := speakerLabel(candidate)
		if name == "" {
			name = captureNameFromText(event.StringField(candidate, "content"))
		}
		if name != "" {
			return Speaker{
				ID:        speakerID(candidate),
				Name:      name,
				Confident: true,
				Source:    "transcript",
			}
		}
	}

	if conversationID != "" {
		entry, ok := e.store.Get(conversationID)
		if ok && (entry.LastSpeakerID != "" || entry.LastSpeakerName != "") {
			return Speaker{
				ID:        entry.LastSpeakerID,
				Name:      entry.LastSpeakerName,
				Confident: true,
				Source:    "memory",
			}
		}
	}

	return Speaker{}
}

// Snapshot returns every known participant for a conversation, unordered.
func (e *Engine) Snapshot(conversationID string) []Participant {
	entry, _ := e.store.Get(e.resolveConversation(conversationID))
	out := make([]Participant, 0, len(entry.Participants))
	for id, name := range entry.Participants {
		out = append(out, Participant{ID: id, Name: name})
	}
	return out
}

// Entry returns the raw roster entry for debug inspection, or an empty
// default when the conversation is unknown.
func (e *Engine) Entry(conversationID string) Entry {
	entry, _ := e.store.Get(conversationID)
	return entry
}

// Register explicitly upserts a participant. When no participant id is
// supplied the key is synthesized from the lowercased display name. The
// returned flag reports whether the key was newly seen, so the caller can
// trigger a join announcement.
func (e *Engine) Register(conversationID, displayName, participantID string, active bool) (key string, isNew bool) {
	key = participantID
	if key == "" {
		key = "name:" + strings.ToLower(strings.TrimSpace(displayName))
	}

	err := e.store.Update(conversationID, func(entry *Entry) {
		_, seen := entry.Participants[key]
		isNew = !seen
		entry.Participants[key] = displayName
		if active {
			entry.LastSpeakerID = key
			entry.LastSpeakerName = displayName
		}
	})
	if err != nil {
		e.log.Error().Err(err).Str("conversationId", conversationID).Msg("roster register failed")
	}
	return key, isNew
}

// resolveConversation falls back to the sole known conversation when the
// requested one is absent or unknown, a convenience for single-
// conversation deployments.
func (e *Engine) resolveConversation(conversationID string) string {
	if conversationID != "" {
		if _, ok := e.store.Get(conversationID); ok {
			return conversationID
		}
	}
	ids := e.store.Conversations()
	if len(ids) == 1 {
		return ids[0]
	}
	return conversationID
}
