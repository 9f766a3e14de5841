// Package http serves the demo API. Handlers only hold controller proxies,
// so every request crosses the interception dispatcher.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/weft/internal/demo"
	"github.com/aretw0/weft/pkg/domain"
)

// Server holds the controller proxies behind the routes.
type Server struct {
	Users  demo.UserControllerAPI
	Orders demo.OrderControllerAPI

	logger      *slog.Logger
	spec        *openapi3.T
	metricsPath string
	metrics     http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithValidation validates requests against doc before they reach a handler.
func WithValidation(doc *openapi3.T) Option {
	return func(s *Server) {
		s.spec = doc
	}
}

// WithMetrics mounts a metrics handler (typically promhttp) at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metrics = h
	}
}

// NewHandler builds the router for the demo application.
func NewHandler(app *demo.App, opts ...Option) http.Handler {
	s := &Server{Users: app.Users, Orders: app.Orders}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	if s.metrics != nil && s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, s.metrics)
	}

	r.Group(func(r chi.Router) {
		if s.spec != nil {
			r.Use(validateRequests(s.spec))
		}
		r.Get("/api/users", s.GetAllUsers)
		r.Post("/api/users", s.CreateUser)
		r.Get("/api/users/error", s.TriggerError)
		r.Get("/api/users/{id}", s.GetUser)
		r.Get("/api/orders/create", s.CreateOrder)
		r.Get("/api/orders/self-invocation", s.SelfInvocation)
	})
	return r
}

// GetUser handles GET /api/users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := s.Users.GetUser(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetAllUsers handles GET /api/users.
func (s *Server) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Users.GetAllUsers(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /api/users?name=..&email=..
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var name, email string
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "name", query, &name); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "email", query, &email); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := s.Users.CreateUser(r.Context(), name, email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// TriggerError handles GET /api/users/error. It always answers 500.
func (s *Server) TriggerError(w http.ResponseWriter, r *http.Request) {
	if err := s.Users.TriggerError(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CreateOrder handles GET /api/orders/create.
func (s *Server) CreateOrder(w http.ResponseWriter, r *http.Request) {
	msg, err := s.Orders.CreateOrder(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeText(w, msg)
}

// SelfInvocation handles GET /api/orders/self-invocation.
func (s *Server) SelfInvocation(w http.ResponseWriter, r *http.Request) {
	msg, err := s.Orders.SelfInvocationTest(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeText(w, msg)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrTargetNotFound) {
		status = http.StatusNotFound
	}
	s.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, status, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeText(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg))
}
