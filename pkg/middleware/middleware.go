package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/connectedplaces/directory/pkg/composables"
	"github.com/connectedplaces/directory/pkg/constants"
)

// WithPool makes the database pool available to repositories downstream.
func WithPool(pool *pgxpool.Pool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(composables.WithPool(r.Context(), pool)))
		})
	}
}

// RequestID tags every request with an id for log correlation, honoring an
// inbound X-Request-ID when present.
func RequestID() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)
			ctx := context.WithValue(r.Context(), constants.RequestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LogRequests emits one structured line per request.
func LogRequests(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			fields := logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}
			if id, ok := r.Context().Value(constants.RequestIDKey).(string); ok {
				fields["request_id"] = id
			}
			log.WithFields(fields).Info("request")
		})
	}
}
