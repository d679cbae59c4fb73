package event

import "encoding/json"

// ExtractToolCalls pulls every tool-call intent out of a raw payload.
// Strategies are tried in fixed priority order and the first one that
// yields any result wins:
//
//  1. typed conversation.tool_call event (properties.name)
//  2. top-level tool object
//  3. flat data.tool string
//  4. transcript messages carrying tool_calls arrays
//
// A payload matching none of them returns an empty slice; that is a
// normal outcome, not an error.
func ExtractToolCalls(payload map[string]any) []ToolCall {
	for _, strategy := range []func(map[string]any) []ToolCall{
		extractTypedEvent,
		extractDirectTool,
		extractDataTool,
		extractTranscriptTools,
	} {
		if calls := strategy(payload); len(calls) > 0 {
			return calls
		}
	}
	return nil
}

// extractTypedEvent handles the documented conversation.tool_call shape.
func extractTypedEvent(payload map[string]any) []ToolCall {
	if StringField(payload, "event_type") != "conversation.tool_call" {
		return nil
	}
	props := MapField(payload, "properties")
	name := StringField(props, "name")
	if name == "" {
		return nil
	}
	callID := StringField(props, "id")
	if callID == "" {
		callID = StringField(payload, "inference_id")
	}
	return []ToolCall{{
		Name:      name,
		Arguments: decodeArguments(props["arguments"]),
		CallID:    callID,
	}}
}

// extractDirectTool handles a top-level tool object with a string name.
func extractDirectTool(payload map[string]any) []ToolCall {
	tool := MapField(payload, "tool")
	name := StringField(tool, "name")
	if name == "" {
		return nil
	}
	return []ToolCall{{
		Name:      name,
		Arguments: decodeArguments(tool["arguments"]),
		CallID:    StringField(tool, "call_id"),
	}}
}

// extractDataTool handles payloads nesting a tool name under data.
func extractDataTool(payload map[string]any) []ToolCall {
	data := MapField(payload, "data")
	name := StringField(data, "tool")
	if name == "" {
		return nil
	}
	return []ToolCall{{
		Name:      name,
		Arguments: decodeArguments(data["arguments"]),
	}}
}

// extractTranscriptTools scans properties.transcript in message order for
// messages carrying OpenAI-style tool_calls arrays.
func extractTranscriptTools(payload map[string]any) []ToolCall {
	var calls []ToolCall
	for _, msg := range Transcript(payload) {
		for _, raw := range SliceField(msg, "tool_calls") {
			tc, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			fn := MapField(tc, "function")
			name := StringField(fn, "name")
			if name == "" {
				continue
			}
			calls = append(calls, ToolCall{
				Name:      name,
				Arguments: decodeArguments(fn["arguments"]),
				CallID:    StringField(tc, "id"),
			})
		}
	}
	return calls
}

// decodeArguments normalizes an arguments value of unknown shape. String
// values are parsed as JSON and degrade to {"raw": s} on failure; anything
// that is not an object becomes an empty map.
func decodeArguments(v any) map[string]any {
	switch args := v.(type) {
	case map[string]any:
		return args
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(args), &decoded); err != nil || decoded == nil {
			return map[string]any{"raw": args}
		}
		return decoded
	default:
		return map[string]any{}
	}
}
