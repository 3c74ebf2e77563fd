package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"

	"github.com/garnizeh/staffboard/internal/config"
	"github.com/garnizeh/staffboard/internal/db"
	"github.com/garnizeh/staffboard/internal/repository/sqlite"
	"github.com/garnizeh/staffboard/internal/session"
	"github.com/garnizeh/staffboard/internal/view"
	"github.com/garnizeh/staffboard/pkg/repository"
)

// Services is everything the handlers depend on.
type Services struct {
	Users     repository.UserRepo
	Profiles  repository.ProfileRepo
	Questions repository.QuestionRepo
	Choices   repository.ChoiceRepo
	View      *view.Renderer
	Sessions  *session.Manager
}

// NewRouter registers every page and health endpoint on a fresh router. CSRF protection
// and request logging are layered on by SetupRoutes.
func NewRouter(s Services, version, buildTime string) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.View.NotFound)

	// Middleware chain
	r.Use(SessionMiddleware(s.Sessions, s.Users))

	// Create handlers
	systemHandler := &SystemHandler{}
	employeeHandler := NewEmployeeHandler(s.Users, s.Profiles, s.View, s.Sessions)
	pollHandler := NewPollHandler(s.Questions, s.Choices, s.View)
	accountsHandler := NewAccountsHandler(s.Users, s.View, s.Sessions)

	loginRequired := RequireUser(s.View, false)
	staffRequired := RequireUser(s.View, true)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/", employeeHandler.Home).Methods("GET")
	r.HandleFunc("/register", employeeHandler.Register).Methods("GET", "POST")
	r.HandleFunc(LoginURL, accountsHandler.Login).Methods("GET", "POST")
	r.HandleFunc("/accounts/logout/", accountsHandler.Logout).Methods("POST")
	r.HandleFunc("/poll/", pollHandler.List).Methods("GET")

	// Login required
	r.Handle("/profile", loginRequired(http.HandlerFunc(employeeHandler.Profile))).Methods("GET")
	r.Handle("/profile/edit", loginRequired(http.HandlerFunc(employeeHandler.ProfileEdit))).Methods("GET", "POST")
	r.Handle("/poll/{pk:[0-9]+}/", loginRequired(http.HandlerFunc(pollHandler.Detail))).Methods("GET", "POST")

	// Staff only
	r.Handle("/poll/create/", staffRequired(http.HandlerFunc(pollHandler.Create))).Methods("GET", "POST")
	r.Handle("/poll/choice/create/", staffRequired(http.HandlerFunc(pollHandler.ChoiceCreate))).Methods("GET", "POST")

	return r
}

// SetupRoutes wires the SQLite store, sessions and templates from cfg and
// returns the fully wrapped server handler.
func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB) (http.Handler, error) {
	// Repository
	repo := sqlite.New(db, logger)

	renderer, err := view.New(view.NewFlashStore(cfg.SessionSecret, cfg.SecureCookies), logger)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	r := NewRouter(Services{
		Users:     repo,
		Profiles:  repo,
		Questions: repo,
		Choices:   repo,
		View:      renderer,
		Sessions:  session.NewManager(cfg.SessionSecret, cfg.SessionDuration, cfg.SecureCookies),
	}, version, buildTime)

	protect := csrf.Protect(cfg.CSRFAuthKey(),
		csrf.Secure(cfg.SecureCookies),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf rejected", slog.String("path", r.URL.Path), slog.Any("reason", csrf.FailureReason(r)))
			renderer.Forbidden(w, r)
		})),
	)

	var handler http.Handler = protect(r)
	if !cfg.SecureCookies {
		handler = PlaintextMiddleware(handler)
	}
	return LoggingMiddleware(RecoveryMiddleware(handler)), nil
}

// PlaintextMiddleware marks requests as served over plain HTTP so the CSRF
// origin checks do not demand HTTPS referers.
func PlaintextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
