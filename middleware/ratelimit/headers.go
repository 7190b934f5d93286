package ratelimit

import (
	"net/http"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
)

// Headers padronizados (draft IETF RateLimit, formato "draft-6").
const (
	HeaderPolicy    = "RateLimit-Policy"
	HeaderLimit     = "RateLimit-Limit"
	HeaderRemaining = "RateLimit-Remaining"
	HeaderReset     = "RateLimit-Reset"

	HeaderLegacyLimit     = "X-RateLimit-Limit"
	HeaderLegacyRemaining = "X-RateLimit-Remaining"
	HeaderLegacyReset     = "X-RateLimit-Reset"

	HeaderRetryAfter = "Retry-After"
)

// setStandardHeaders escreve RateLimit-*; Reset é em segundos até o fim da janela.
func setStandardHeaders(h http.Header, dec domain.Decision, window time.Duration, now time.Time) {
	if window > 0 {
		h.Set(HeaderPolicy, formatInt(dec.Limit)+";w="+formatSeconds(window))
	}
	h.Set(HeaderLimit, formatInt(dec.Limit))
	h.Set(HeaderRemaining, formatInt(dec.Remaining))
	if !dec.Reset.IsZero() {
		h.Set(HeaderReset, formatSeconds(dec.Reset.Sub(now)))
	}
}

// setLegacyHeaders escreve X-RateLimit-*; Reset é o epoch em segundos.
func setLegacyHeaders(h http.Header, dec domain.Decision) {
	h.Set(HeaderLegacyLimit, formatInt(dec.Limit))
	h.Set(HeaderLegacyRemaining, formatInt(dec.Remaining))
	if !dec.Reset.IsZero() {
		h.Set(HeaderLegacyReset, formatInt64(dec.Reset.Unix()))
	}
}
