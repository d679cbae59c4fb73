// Package tavus is a minimal client for the Tavus platform REST API: the
// outbound echo interaction plus the persona/conversation management calls
// used by the CLI.
package tavus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voxhall/tavus-relay/internal/logging"
)

// DefaultBaseURL is the production Tavus API endpoint.
const DefaultBaseURL = "https://tavusapi.com"

// echoTimeout bounds the fire-and-forget echo calls so a slow platform
// never stalls a webhook-side goroutine for long.
const echoTimeout = 10 * time.Second

// Client talks to the Tavus REST API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *logging.Logger
}

// NewClient creates a Tavus API client. An empty baseURL selects the
// production endpoint.
func NewClient(apiKey, baseURL string, log *logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.Sub("tavus"),
	}
}

// Echo instructs the replica in a conversation to speak the given text.
func (c *Client) Echo(ctx context.Context, conversationID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, echoTimeout)
	defer cancel()

	payload := map[string]any{
		"message_type":    "conversation",
		"event_type":      "conversation.echo",
		"conversation_id": conversationID,
		"properties":      map[string]any{"text": text},
	}
	_, err := c.do(ctx, "POST", fmt.Sprintf("/v2/conversations/%s/interactions", conversationID), payload)
	return err
}

// CreatePersona creates a persona from the given payload.
func (c *Client) CreatePersona(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.do(ctx, "POST", "/v2/personas", payload)
}

// UpdatePersona applies a JSON Patch document to an existing persona.
func (c *Client) UpdatePersona(ctx context.Context, personaID string, patch []map[string]any) (map[string]any, error) {
	return c.do(ctx, "PATCH", "/v2/personas/"+personaID, patch)
}

// CreateConversation starts a conversation from the given payload.
func (c *Client) CreateConversation(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.do(ctx, "POST", "/v2/conversations", payload)
}

// ListReplicas returns all replicas visible to the API key.
func (c *Client) ListReplicas(ctx context.Context) ([]map[string]any, error) {
	body, err := c.do(ctx, "GET", "/v2/replicas", nil)
	if err != nil {
		return nil, err
	}
	return itemList(body), nil
}

// PickReplica resolves a replica id: an explicit override wins, then the
// configured preference, then the first completed replica on the account.
func (c *Client) PickReplica(ctx context.Context, override, preferred string) (string, error) {
	if s := strings.TrimSpace(override); s != "" {
		return s, nil
	}
	if s := strings.TrimSpace(preferred); s != "" {
		return s, nil
	}

	replicas, err := c.ListReplicas(ctx)
	if err != nil {
		return "", fmt.Errorf("listing replicas: %w", err)
	}
	for _, r := range replicas {
		status, _ := r["status"].(string)
		if strings.EqualFold(status, "completed") {
			id, _ := r["replica_id"].(string)
			if id != "" {
				c.log.Info().Str("replica", id).Msg("auto-selected replica")
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("no completed replicas found")
}

// ResolveObjectivesID looks up an objectives id by its display name.
// Returns "" when nothing matches; field naming differences across API
// versions are tolerated.
func (c *Client) ResolveObjectivesID(ctx context.Context, name string) (string, error) {
	return c.resolveByName(ctx, "/v2/objectives", name,
		[]string{"name", "title", "objective_name", "objectives_name"},
		[]string{"uuid", "id", "objective_id", "objectives_id"},
	)
}

// ResolveGuardrailsID looks up a guardrails id by its display name.
func (c *Client) ResolveGuardrailsID(ctx context.Context, name string) (string, error) {
	return c.resolveByName(ctx, "/v2/guardrails", name,
		[]string{"name", "title", "guardrails_name", "policy_name"},
		[]string{"uuid", "id", "guardrails_id", "policy_id"},
	)
}

func (c *Client) resolveByName(ctx context.Context, path, name string, nameKeys, idKeys []string) (string, error) {
	body, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return "", err
	}

	target := strings.ToLower(strings.TrimSpace(name))
	for _, item := range itemList(body) {
		if !matchesName(item, target, nameKeys) {
			continue
		}
		for _, key := range idKeys {
			if id, ok := item[key].(string); ok && strings.TrimSpace(id) != "" {
				return strings.TrimSpace(id), nil
			}
		}
	}
	return "", nil
}

func matchesName(item map[string]any, target string, nameKeys []string) bool {
	for _, key := range nameKeys {
		if v, ok := item[key].(string); ok && strings.ToLower(strings.TrimSpace(v)) == target {
			return true
		}
	}
	return false
}

// itemList unwraps either {"data": [...]} or a bare array response.
func itemList(body map[string]any) []map[string]any {
	raw, ok := body["data"].([]any)
	if !ok {
		if items, ok := body["items"].([]any); ok {
			raw = items
		}
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// do sends one API request and decodes the JSON object response.
func (c *Client) do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	result := map[string]any{}
	if len(respBody) > 0 {
		// Bare-array responses get wrapped so callers see one shape.
		var decoded any
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		switch v := decoded.(type) {
		case map[string]any:
			result = v
		case []any:
			result = map[string]any{"data": v}
		}
	}
	return result, nil
}
