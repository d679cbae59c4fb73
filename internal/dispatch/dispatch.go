package dispatch

import (
	"context"
	"fmt"

	"github.com/voxhall/tavus-relay/internal/event"
	"github.com/voxhall/tavus-relay/internal/logging"
)

// record captures one processed tool call. Every response shape is a
// projection of the record list.
type record struct {
	Name      string
	CallID    string
	Arguments map[string]any
	Result    map[string]any
}

// Dispatcher runs tool calls against a registry and composes responses.
type Dispatcher struct {
	registry *Registry
	log      *logging.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, log *logging.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, log: log.Sub("dispatch")}
}

// Dispatch runs each tool call in order and returns the response document.
// A failing or unknown tool yields an error result for that call only; the
// batch always completes and the document always carries ok: true.
func (d *Dispatcher) Dispatch(ctx context.Context, payload map[string]any, calls []event.ToolCall) map[string]any {
	records := make([]record, 0, len(calls))
	for i := range calls {
		call := calls[i]
		ev := event.Build(payload, &call)
		records = append(records, record{
			Name:      call.Name,
			CallID:    call.CallID,
			Arguments: call.Arguments,
			Result:    d.run(ctx, ev),
		})
	}
	return compose(records)
}

// run executes a single call, containing unknown names, handler errors and
// panics as {"error": ...} results.
func (d *Dispatcher) run(ctx context.Context, ev *event.Event) (result map[string]any) {
	name := ev.Tool.Name

	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("tool", name).Any("panic", r).Msg("tool handler panicked")
			result = map[string]any{"error": fmt.Sprintf("tool %s panicked: %v", name, r)}
		}
	}()

	handler, ok := d.registry.Get(name)
	if !ok {
		d.log.Warn().Str("tool", name).Msg("unknown tool")
		return map[string]any{"error": fmt.Sprintf("unknown tool: %s", name)}
	}

	out, err := handler(ctx, ev)
	if err != nil {
		d.log.Error().Err(err).Str("tool", name).Msg("tool handler failed")
		return map[string]any{"error": err.Error()}
	}
	if out == nil {
		out = map[string]any{}
	}
	d.log.Debug().Str("tool", name).Str("call_id", ev.Tool.CallID).Msg("tool dispatched")
	return out
}

// compose builds the multi-shape response document from the record list.
func compose(records []record) map[string]any {
	resp := map[string]any{"ok": true}
	if len(records) == 0 {
		return resp
	}

	toolCalls := make([]map[string]any, 0, len(records))
	results := make(map[string]any, len(records))
	toolResults := make([]map[string]any, 0, len(records))
	responses := make([]map[string]any, 0, len(records))

	for _, rec := range records {
		toolCalls = append(toolCalls, map[string]any{
			"id":     rec.CallID,
			"name":   rec.Name,
			"result": rec.Result,
		})
		results[rec.Name] = rec.Result
		toolResults = append(toolResults, map[string]any{
			"name":      rec.Name,
			"call_id":   rec.CallID,
			"arguments": rec.Arguments,
			"result":    rec.Result,
		})
		responses = append(responses, map[string]any{
			"tool_call_id": rec.CallID,
			"result":       rec.Result,
		})
	}

	resp["tool_calls"] = toolCalls
	resp["results"] = results
	resp["tool_results"] = toolResults
	resp["responses"] = responses

	if len(records) == 1 {
		resp["tool_call_id"] = records[0].CallID
		resp["result"] = records[0].Result
	}
	return resp
}
