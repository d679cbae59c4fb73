package webhook

import (
	"crypto/subtle"
	"net/http"
)

// authorized checks the shared-secret headers on an inbound request. With
// no configured secret the check is disabled entirely (explicit dev mode).
func (s *Server) authorized(r *http.Request) bool {
	secret := s.cfg.Webhook.Secret
	if secret == "" {
		return true
	}

	provided := r.Header.Get("x-webhook-secret")
	if provided == "" {
		provided = r.Header.Get("x-tavus-secret")
	}
	return provided != "" && safeEqual(provided, secret)
}

// safeEqual performs a constant-time string comparison to prevent timing attacks.
// It avoids early-return on length mismatch to prevent leaking secret length via timing.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}
