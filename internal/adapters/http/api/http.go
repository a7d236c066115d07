// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/bistro/internal/domain/model"
	"github.com/okian/bistro/pkg/logger"
)

// RestaurantStore is the persistence surface the resource handlers need.
type RestaurantStore interface {
	FindAll(ctx context.Context) ([]model.Restaurant, error)
	FindByID(ctx context.Context, id int64) (model.Restaurant, error)
	Create(ctx context.Context, fields model.Fields) (model.Restaurant, error)
	Update(ctx context.Context, id int64, fields model.Fields, partial bool) (model.Restaurant, error)
	Delete(ctx context.Context, id int64) error
}

// BodyValidator turns a raw request body into validated fields.
type BodyValidator interface {
	Validate(ctx context.Context, input []byte, partial bool) (model.Fields, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RestaurantStore
	Pinger
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	restaurantsHandler *RestaurantsHandler

	maxBodyBytes int64
	log          logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, validator BodyValidator, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("api")
	}

	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.restaurantsHandler = NewRestaurantsHandler(deps, validator, s.maxBodyBytes, s.log)
	return s
}

// Register attaches all HTTP routes to mux. Methods not listed for a path
// are answered with 405 by the mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.Handle("GET /healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.Handle("GET /metrics", s.wrap(s.healthHandler.HandleMetrics, "metrics"))

	rh := s.restaurantsHandler
	for _, p := range []string{"/restaurants/{$}", "/restaurants"} {
		mux.Handle("GET "+p, s.wrap(rh.HandleList, "restaurants"))
		mux.Handle("POST "+p, s.wrap(rh.HandleCreate, "restaurants"))
	}
	for _, p := range []string{"/restaurants/{id}/{$}", "/restaurants/{id}"} {
		mux.Handle("GET "+p, s.wrap(rh.HandleGet, "restaurant"))
		mux.Handle("PUT "+p, s.wrap(rh.HandleReplace, "restaurant"))
		mux.Handle("PATCH "+p, s.wrap(rh.HandlePatch, "restaurant"))
		mux.Handle("DELETE "+p, s.wrap(rh.HandleDelete, "restaurant"))
	}
}

// wrap applies the middleware chain shared by every route.
func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.Handler {
	return RequestIDMiddleware(AccessLogMiddleware(s.log, MetricsMiddleware(h, endpoint)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeEmpty sends status with no body.
func writeEmpty(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
