package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/voxhall/tavus-relay/internal/event"
)

// registerRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /tavus/callback", s.handleCallback)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /admin/upload_recording", s.handleUploadRecording)
	mux.HandleFunc("POST /roster/register", s.handleRosterRegister)
	mux.HandleFunc("GET /debug/roster/{conversation_id}", s.handleDebugRoster)
	mux.HandleFunc("GET /debug/events", s.handleEventFeed)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// handleCallback processes one webhook delivery: persist, update the
// roster, extract tool calls, dispatch, and acknowledge. Handler failures
// stay inside the response document; only bad auth and bad JSON surface as
// HTTP errors.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON"})
		return
	}

	if s.eventLog != nil {
		s.eventLog.Append(payload)
	}

	s.engine.UpdateFromEvent(payload)

	calls := event.ExtractToolCalls(payload)
	if len(calls) == 0 {
		s.log.Info().
			Str("eventType", event.StringField(payload, "event_type")).
			Msg("event with no tool calls")
	}
	resp := s.dispatcher.Dispatch(r.Context(), payload, calls)

	s.feed.Broadcast(payload)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type uploadRecordingRequest struct {
	ConversationID string `json:"conversation_id"`
	URL            string `json:"url"`
}

// handleUploadRecording triggers the storage collaborator synchronously so
// the admin caller learns whether the upload worked.
func (s *Server) handleUploadRecording(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}

	var req uploadRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON"})
		return
	}
	if req.ConversationID == "" || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "conversation_id and url are required"})
		return
	}
	if s.uploader == nil || !s.uploader.Enabled() {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "recording upload not configured"})
		return
	}

	key, err := s.uploader.UploadRecording(r.Context(), req.ConversationID, req.URL)
	if err != nil {
		s.log.Error().Err(err).Str("conversationId", req.ConversationID).Msg("recording upload failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "key": key})
}

type rosterRegisterRequest struct {
	ConversationID string `json:"conversation_id"`
	DisplayName    string `json:"display_name"`
	ParticipantID  string `json:"participant_id"`
	Active         bool   `json:"active"`
}

// handleRosterRegister explicitly upserts a participant. A newly-seen
// participant triggers a fire-and-forget join announcement when enabled.
func (s *Server) handleRosterRegister(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}

	var req rosterRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON"})
		return
	}
	if req.ConversationID == "" || req.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "conversation_id and display_name are required"})
		return
	}

	key, isNew := s.engine.Register(req.ConversationID, req.DisplayName, req.ParticipantID, req.Active)

	if isNew && s.cfg.Roster.AnnounceJoins && s.tavus != nil {
		go s.announceJoin(req.ConversationID, req.DisplayName)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"participant_id": key,
		"new":            isNew,
	})
}

// announceJoin greets a newly registered participant via echo. Failure is
// logged and swallowed.
func (s *Server) announceJoin(conversationID, displayName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	text := fmt.Sprintf("Welcome, %s!", displayName)
	if err := s.tavus.Echo(ctx, conversationID, text); err != nil {
		s.log.Warn().Err(err).Str("conversationId", conversationID).Msg("join announcement failed")
	}
}

// handleDebugRoster exposes the raw roster entry for inspection.
func (s *Server) handleDebugRoster(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}

	conversationID := r.PathValue("conversation_id")
	entry := s.engine.Entry(conversationID)

	participants := entry.Participants
	if participants == nil {
		participants = map[string]string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id":   conversationID,
		"participants":      participants,
		"last_speaker_id":   entry.LastSpeakerID,
		"last_speaker_name": entry.LastSpeakerName,
	})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
