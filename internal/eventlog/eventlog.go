// Package eventlog persists raw webhook payloads for traceability. Every
// payload is appended as one JSON line to a per-conversation file, with a
// parallel human-readable transcript when one is present. Write failures
// are logged and swallowed; persistence never affects the webhook response.
package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/voxhall/tavus-relay/internal/event"
	"github.com/voxhall/tavus-relay/internal/logging"
	"github.com/voxhall/tavus-relay/internal/roster"
)

// Writer appends events under <dir>/<conversation_id>/.
type Writer struct {
	dir string
	mu  sync.Mutex
	log *logging.Logger
}

// New creates an event log writer rooted at dir.
func New(dir string, log *logging.Logger) *Writer {
	return &Writer{dir: dir, log: log.Sub("eventlog")}
}

// Append records one raw payload. Payloads without a conversation_id land
// under "unknown".
func (w *Writer) Append(payload map[string]any) {
	conversationID := event.StringField(payload, "conversation_id")
	if conversationID == "" {
		conversationID = "unknown"
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	base := filepath.Join(w.dir, conversationID)
	if err := os.MkdirAll(base, 0o700); err != nil {
		w.log.Error().Err(err).Str("conversationId", conversationID).Msg("failed to create event log directory")
		return
	}

	if err := w.appendJSONL(filepath.Join(base, "events.jsonl"), payload); err != nil {
		w.log.Error().Err(err).Str("conversationId", conversationID).Msg("failed to persist event")
	}

	if msgs := event.Transcript(payload); len(msgs) > 0 {
		if err := w.appendTranscript(filepath.Join(base, "transcript.txt"), payload, msgs); err != nil {
			w.log.Error().Err(err).Str("conversationId", conversationID).Msg("failed to persist transcript")
		}
	}
}

func (w *Writer) appendJSONL(path string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(data, '\n'))
	return err
}

func (w *Writer) appendTranscript(path string, payload map[string]any, msgs []map[string]any) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	ts := event.StringField(payload, "timestamp")
	if ts == "" {
		if v, ok := payload["timestamp"].(float64); ok {
			// Plain decimal notation; %v renders large epochs as 1.7e+09.
			ts = strconv.FormatFloat(v, 'f', -1, 64)
		} else {
			ts = time.Now().UTC().Format(time.RFC3339)
		}
	}
	if _, err := fmt.Fprintf(f, "\n=== Event @ %s ===\n", ts); err != nil {
		return err
	}

	for _, msg := range msgs {
		role := event.StringField(msg, "role")
		content := event.StringField(msg, "content")
		if role == "" && content == "" {
			continue
		}
		label := roster.SpeakerLabel(msg)
		var line string
		if label != "" {
			line = fmt.Sprintf("%s (%s): %s\n", label, role, content)
		} else {
			line = fmt.Sprintf("%s: %s\n", role, content)
		}
		if _, err := f.WriteString(line); err != nil {
			return err
		}
	}
	return nil
}
