package handler

import (
	"net/http"

	"private-scribe-server/internal/config"
	"private-scribe-server/internal/middleware"
	"private-scribe-server/internal/service"
	"private-scribe-server/pkg/response"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Notes         *service.NoteService
	Templates     *service.TemplateService
	Participants  *service.ParticipantService
	Transcription *service.TranscriptionService
	Formatting    *service.FormattingService
}

type RouterConfig struct {
	CORS           config.CORSConfig
	MaxUploadBytes int64
	// HealthCheck reports whether the store is reachable.
	HealthCheck func() error
	// Metrics is optional; when set, /metrics serves MetricsHandler.
	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
}

func NewRouter(svc Services, cfg RouterConfig, logger zerolog.Logger) *mux.Router {
	authHandler := NewAuthHandler(svc.Auth, logger)
	userHandler := NewUserHandler(svc.Users, logger)
	noteHandler := NewNoteHandler(svc.Notes, logger)
	templateHandler := NewTemplateHandler(svc.Templates, logger)
	participantHandler := NewParticipantHandler(svc.Participants, logger)
	scribeHandler := NewScribeHandler(svc.Transcription, svc.Formatting, cfg.MaxUploadBytes, logger)

	chain := []mux.MiddlewareFunc{middleware.LoggerMiddleware(logger)}
	if cfg.Metrics != nil {
		chain = append(chain, cfg.Metrics.Middleware)
	}
	chain = append(chain, middleware.CORSMiddleware(cfg.CORS))

	r := mux.NewRouter()
	r.Use(chain...)
	// mux skips Use middlewares when nothing matches.
	r.NotFoundHandler = wrap(http.HandlerFunc(notFound), chain)
	r.MethodNotAllowedHandler = wrap(http.HandlerFunc(methodNotAllowed), chain)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/signup", authHandler.Signup).Methods("POST", "OPTIONS")
	api.HandleFunc("/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(svc.Auth))

	protected.HandleFunc("/validateToken", authHandler.ValidateToken).Methods("GET", "OPTIONS")
	protected.HandleFunc("/users", userHandler.List).Methods("GET", "OPTIONS")

	protected.HandleFunc("/notes", noteHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notes/user/{userId}", noteHandler.ListByUser).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}", noteHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}", noteHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/notes/{id}/delete", noteHandler.Delete).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/notes/{id}/restore", noteHandler.Restore).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/templates", templateHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/templates/user/{userId}", templateHandler.ListByUser).Methods("GET", "OPTIONS")
	protected.HandleFunc("/templates/{id}", templateHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/templates/{id}", templateHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/templates/{id}/delete", templateHandler.Delete).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/templates/{id}/restore", templateHandler.Restore).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/participants", participantHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/participants/{userId}", participantHandler.ListByUser).Methods("GET", "OPTIONS")

	protected.HandleFunc("/transcribe", scribeHandler.Transcribe).Methods("POST", "OPTIONS")
	protected.HandleFunc("/getMarkdown", scribeHandler.GetMarkdown).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", healthHandler(cfg.HealthCheck)).Methods("GET")
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler).Methods("GET")
	}

	return r
}

func healthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				response.JSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":   "unhealthy",
					"database": err.Error(),
				})
				return
			}
		}
		response.Success(w, map[string]string{"status": "ok"})
	}
}

func wrap(h http.Handler, chain []mux.MiddlewareFunc) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

func notFound(w http.ResponseWriter, r *http.Request) {
	response.NotFound(w, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
