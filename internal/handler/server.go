// Package handler implements the HTTP handlers for the Itinerary API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, location.go) but all share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mpons/itinerary-api/internal/domain"
	"github.com/mpons/itinerary-api/spec"
)

// LocationServicer defines the business operations the location handlers
// depend on. Defining the interface here (in the consumer package) follows the
// Go convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type LocationServicer interface {
	Create(ctx context.Context, loc domain.NewLocation) (domain.Location, error)
	List(ctx context.Context) ([]domain.Location, error)
	Update(ctx context.Context, id int64, patch domain.LocationUpdate) (domain.Location, error)
	Delete(ctx context.Context, id int64) error
}

// Server holds the dependencies for all API endpoints.
type Server struct {
	locations LocationServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(locations LocationServicer) *Server {
	return &Server{locations: locations}
}

// Routes returns the chi router for the full API surface.
// Mount it at the root in main.go; middleware is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/locations", func(r chi.Router) {
		r.Get("/", s.ListLocations)
		r.Post("/", s.CreateLocation)
		r.Put("/{id}", s.UpdateLocation)
		r.Delete("/{id}", s.DeleteLocation)
	})

	return r
}

// GetOpenAPI serves the embedded OpenAPI document.
// Serving it from the binary means the spec and the running code are always
// in sync.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
