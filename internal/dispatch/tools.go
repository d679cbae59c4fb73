package dispatch

import (
	"context"
	"strings"

	"github.com/voxhall/tavus-relay/internal/event"
	"github.com/voxhall/tavus-relay/internal/logging"
	"github.com/voxhall/tavus-relay/internal/roster"
)

// RegisterBuiltins wires the standard tool set into the registry: the
// meeting-helper placeholders, session-flow acknowledgers, and the three
// roster tools backed by the inference engine.
func RegisterBuiltins(reg *Registry, engine *roster.Engine, log *logging.Logger) {
	t := &builtins{engine: engine, log: log.Sub("tools")}

	reg.Register("summarize_discussion", t.summarizeDiscussion)
	reg.Register("take_meeting_notes", t.takeMeetingNotes)
	reg.Register("cluster_ideas", t.clusterIdeas)
	reg.Register("print_message", t.printMessage)
	reg.Register("announce_timecheck", acknowledge("announce_timecheck"))
	reg.Register("begin_wrap_up", acknowledge("begin_wrap_up"))
	reg.Register("get_speaker_name", t.getSpeakerName)
	reg.Register("get_current_speaker", t.getCurrentSpeaker)
	reg.Register("get_roster", t.getRoster)
}

type builtins struct {
	engine *roster.Engine
	log    *logging.Logger
}

// acknowledge returns a handler for session-flow triggers that only need
// receipt confirmation; the replica drives the actual behavior.
func acknowledge(name string) Handler {
	return func(ctx context.Context, ev *event.Event) (map[string]any, error) {
		return map[string]any{"acknowledged": true, "tool": name}, nil
	}
}

func (t *builtins) summarizeDiscussion(ctx context.Context, ev *event.Event) (map[string]any, error) {
	transcript := argString(ev, "transcript")

	// Placeholder summary: first few non-empty lines as bullets.
	var bullets []string
	for _, line := range strings.Split(transcript, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			bullets = append(bullets, line)
		}
		if len(bullets) == 5 {
			break
		}
	}
	if bullets == nil {
		bullets = []string{}
	}
	return map[string]any{"summary": bullets}, nil
}

func (t *builtins) takeMeetingNotes(ctx context.Context, ev *event.Event) (map[string]any, error) {
	content := argString(ev, "content")
	notes := []string{}
	if content != "" {
		notes = append(notes, content)
	}
	return map[string]any{"notes": notes}, nil
}

func (t *builtins) clusterIdeas(ctx context.Context, ev *event.Event) (map[string]any, error) {
	ideas := argStrings(ev, "ideas")

	clusters := map[string][]string{}
	for _, idea := range ideas {
		key := "misc"
		if fields := strings.Fields(idea); len(fields) > 0 {
			key = strings.ToLower(fields[0])
		}
		clusters[key] = append(clusters[key], idea)
	}
	return map[string]any{"clusters": clusters}, nil
}

func (t *builtins) printMessage(ctx context.Context, ev *event.Event) (map[string]any, error) {
	t.log.Info().Str("text", argString(ev, "text")).Msg("print_message")
	return map[string]any{"printed": true}, nil
}

func (t *builtins) getSpeakerName(ctx context.Context, ev *event.Event) (map[string]any, error) {
	speaker := t.engine.CurrentSpeaker(ev.ConversationID, rosterPayload(ev))
	return map[string]any{
		"speaker_name": speaker.Name,
		"confident":    speaker.Confident,
	}, nil
}

func (t *builtins) getCurrentSpeaker(ctx context.Context, ev *event.Event) (map[string]any, error) {
	speaker := t.engine.CurrentSpeaker(ev.ConversationID, rosterPayload(ev))
	return map[string]any{
		"participant_id": speaker.ID,
		"display_name":   speaker.Name,
		"confident":      speaker.Confident,
		"source":         speaker.Source,
	}, nil
}

func (t *builtins) getRoster(ctx context.Context, ev *event.Event) (map[string]any, error) {
	participants := t.engine.Snapshot(ev.ConversationID)
	out := make([]map[string]any, 0, len(participants))
	for _, p := range participants {
		out = append(out, map[string]any{
			"participant_id": p.ID,
			"display_name":   p.Name,
		})
	}
	return map[string]any{"participants": out, "count": len(out)}, nil
}

// rosterPayload rebuilds the view the inference engine scans for in-request
// transcript evidence.
func rosterPayload(ev *event.Event) map[string]any {
	payload := map[string]any{}
	if ev.ConversationID != "" {
		payload["conversation_id"] = ev.ConversationID
	}
	if ev.Properties != nil {
		payload["properties"] = ev.Properties
	}
	return payload
}

// argString reads a string argument from the tool call, falling back to the
// event's data block the way upstream payloads sometimes deliver it.
func argString(ev *event.Event, key string) string {
	if ev.Tool != nil {
		if s, ok := ev.Tool.Arguments[key].(string); ok {
			return s
		}
	}
	return event.StringField(ev.Data, key)
}

// argStrings reads a string-array argument, tolerating mixed []any input.
func argStrings(ev *event.Event, key string) []string {
	var raw any
	if ev.Tool != nil {
		raw = ev.Tool.Arguments[key]
	}
	if raw == nil && ev.Data != nil {
		raw = ev.Data[key]
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
