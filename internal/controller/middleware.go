package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gigaba/overlay-server/pkg/ctxlogger"
	"github.com/gigaba/overlay-server/pkg/rest"
)

func (c controller) requestIDMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlogger.AppendCtx(r.Context(), slog.String("request_id", uuid.NewString()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// sessionMw resolves the caller's stable identity from the session JWT. An
// unparsable session is a blocking auth failure: a 401 with remediation, no
// automatic retry.
func (c controller) sessionMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.URL.Query().Get("session")
		}

		userID, err := c.roomService.ParseSession(token)
		if err != nil {
			c.logger.InfoContext(r.Context(), "session rejected", "error", err)
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{
				"error": "invalid session: request a new one via POST /api/session",
			})
			return
		}

		ctx := context.WithValue(r.Context(), userIDCtxKey, userID)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
