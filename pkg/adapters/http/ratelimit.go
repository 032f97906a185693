package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// rateLimit enforces the per-bot turn limit. Limiter failures fail open.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		botID := chi.URLParam(r, "botID")
		decision, err := s.limiter.Allow(r.Context(), botID)
		if err != nil {
			s.logger.Warn("rate limiter unavailable", "bot_id", botID, "err", err)
			next.ServeHTTP(w, r)
			return
		}

		reset := strconv.Itoa(int(math.Ceil(decision.ResetAfter.Seconds())))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", reset)

		if !decision.Allowed {
			s.observeTurn(botID, "rate_limited")
			w.Header().Set("Retry-After", reset)
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
