package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/patients/internal/core/domain"
	"github.com/vncsmyrnk/patients/internal/core/ports"
)

type contextKey string

const UserKey contextKey = "user"

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate runs before every protected handler. Any authentication
// failure ends the request with the same 401; the cause is only logged.
func Authenticate(authService ports.AuthService, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := log.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"path":       r.URL.Path,
			})

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				entry.WithField("reason", "missing bearer token").Info("authorization failed")
				writeUnauthorized(w, detailBadToken)
				return
			}

			user, err := authService.Authorize(r.Context(), token)
			if err != nil {
				if domain.IsAuthError(err) {
					entry.WithField("reason", err.Error()).Info("authorization failed")
					writeUnauthorized(w, detailBadToken)
					return
				}
				entry.WithError(err).Error("authorization failed with internal error")
				writeError(w, http.StatusInternalServerError, detailInternal)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger writes one access log entry per request.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				fields := logrus.Fields{
					"request_id":  middleware.GetReqID(r.Context()),
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": r.RemoteAddr,
					"status":      ww.Status(),
					"bytes":       ww.BytesWritten(),
					"duration":    time.Since(start).String(),
				}
				log.WithFields(fields).Info("request completed")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
