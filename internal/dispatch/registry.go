// Package dispatch routes extracted tool calls to registered handlers and
// composes the webhook response document.
package dispatch

import (
	"context"
	"sync"

	"github.com/voxhall/tavus-relay/internal/event"
	"github.com/voxhall/tavus-relay/internal/logging"
)

// Handler executes one tool call and returns its result document.
type Handler func(ctx context.Context, ev *event.Event) (map[string]any, error)

// Registry maps tool names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	order    []string
	log      *logging.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		log:      log.Sub("dispatch"),
	}
}

// Register adds a handler for a tool name. Re-registering a name replaces
// the previous handler.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.handlers[name] = h
	r.log.Debug().Str("tool", name).Msg("tool registered")
}

// Get returns the handler for a tool name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
