// Package roster tracks per-conversation participant identity and the
// currently-inferred active speaker. Entries are created lazily on first
// reference and live for the process lifetime unless a persistent backend
// is configured.
package roster

// Participant is one known member of a conversation.
type Participant struct {
	ID   string `json:"participant_id"`
	Name string `json:"display_name"`
}

// Entry is the speaker memory for a single conversation. Participant keys
// are provider-supplied ids or synthesized "name:<lowercased name>" keys.
type Entry struct {
	Participants    map[string]string `json:"participants"`
	LastSpeakerID   string            `json:"last_speaker_id,omitempty"`
	LastSpeakerName string            `json:"last_speaker_name,omitempty"`
}

// clone returns a deep copy safe to hand to readers.
func (e Entry) clone() Entry {
	out := Entry{
		Participants:    make(map[string]string, len(e.Participants)),
		LastSpeakerID:   e.LastSpeakerID,
		LastSpeakerName: e.LastSpeakerName,
	}
	for k, v := range e.Participants {
		out.Participants[k] = v
	}
	return out
}

// Store is the roster backend. Update serializes read-modify-write cycles
// per store, so concurrent deliveries for the same conversation cannot
// drop each other's changes.
type Store interface {
	// Get returns a snapshot of the entry, or an empty default and false
	// when the conversation has never been referenced.
	Get(conversationID string) (Entry, bool)

	// Update applies fn to the conversation's entry under the store lock,
	// creating the entry if needed.
	Update(conversationID string, fn func(*Entry)) error

	// Conversations returns the ids of all known entries.
	Conversations() []string
}
