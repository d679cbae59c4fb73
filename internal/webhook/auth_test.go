package webhook

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxhall/tavus-relay/internal/config"
)

func TestSafeEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "secret", "secret", true},
		{"different", "secret", "wrong!", false},
		{"different length", "secret", "secr", false},
		{"both empty", "", "", true},
		{"one empty", "secret", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safeEqual(tt.a, tt.b))
		})
	}
}

func TestAuthorized_DisabledWithoutSecret(t *testing.T) {
	s, _ := testServer(t, nil)

	req := httptest.NewRequest("POST", "/tavus/callback", nil)
	assert.True(t, s.authorized(req))
}

func TestAuthorized_HeaderPrecedence(t *testing.T) {
	s, _ := testServer(t, func(cfg *config.Config) {
		cfg.Webhook.Secret = "s3cret"
	})

	req := httptest.NewRequest("POST", "/tavus/callback", nil)
	assert.False(t, s.authorized(req))

	// x-webhook-secret is consulted first; a wrong value there loses even
	// when x-tavus-secret matches.
	req.Header.Set("x-webhook-secret", "wrong")
	req.Header.Set("x-tavus-secret", "s3cret")
	assert.False(t, s.authorized(req))

	req.Header.Del("x-webhook-secret")
	assert.True(t, s.authorized(req))
}
