package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/garnizeh/staffboard/internal/session"
	"github.com/garnizeh/staffboard/internal/validation"
	"github.com/garnizeh/staffboard/internal/view"
	"github.com/garnizeh/staffboard/pkg/repository"
)

// RequestIDHeader carries the per-request id on requests and responses.
const RequestIDHeader = "X-Request-ID"

// LoginURL is where anonymous users are sent by RequireUser.
const LoginURL = "/accounts/login/"

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info("request",
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", slog.Any("err", err), slog.String("path", r.URL.Path))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// SessionMiddleware resolves the session cookie into the request user. Requests
// without a valid session continue anonymously.
func SessionMiddleware(sessions *session.Manager, users repository.UserRepo) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := sessions.UserID(r)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					logger.Debug("ignoring session cookie", slog.Any("err", err))
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), id)
			if err != nil {
				logger.Error("load session user", slog.Int64("user_id", id), slog.Any("err", err))
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				// user was removed after the cookie was issued
				sessions.Clear(w)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithUser(r.Context(), user)))
		})
	}
}

// RequireUser gates a handler on an authenticated user, and on the staff flag
// when staff is set. Anonymous users are redirected to the login page with
// the requested path in next; authenticated users lacking staff get a 403 page.
func RequireUser(v *view.Renderer, staff bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := validation.Authorize(session.UserFromContext(r.Context()), staff)
			switch {
			case errors.Is(err, validation.ErrUnauthenticated):
				http.Redirect(w, r, LoginURL+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			case errors.Is(err, validation.ErrForbidden):
				v.Forbidden(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
