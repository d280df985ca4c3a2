// Package ratelimit bounds how fast a single caller can hit the webhook
// endpoint. The store is in-memory; this service keeps no external state.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
)

// New builds a limiter allowing max requests per window. A non-positive max
// disables limiting (New returns nil and Handler passes through).
func New(max int, window time.Duration) *limiter.Limiter {
	if max <= 0 || window <= 0 {
		return nil
	}
	return limiter.New(memorystore.NewStore(), limiter.Rate{
		Period: window,
		Limit:  int64(max),
	})
}

// Handler enforces the limit per client IP before delegating.
type Handler struct {
	Limiter *limiter.Limiter
	Logger  zerolog.Logger
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lctx, err := h.Limiter.Get(r.Context(), clientKey(r))
		if err != nil {
			h.Logger.Error().Err(err).Msg("rate limiter store error")
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			retryAfter := lctx.Reset - time.Now().Unix()
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
