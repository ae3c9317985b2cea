package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mpons/itinerary-api/internal/domain"
)

// createLocationRequest is the POST /locations body. Pointer fields let the
// handler distinguish a missing field from a zero value (lat 0 is a valid
// coordinate; an absent lat is not).
type createLocationRequest struct {
	Name        *string  `json:"name"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Day         *string  `json:"day"`
	Time        *string  `json:"time"`
	Description *string  `json:"description"`
}

// ListLocations handles GET /locations.
// Returns all locations in itinerary order with a count field.
func (s *Server) ListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := s.locations.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list locations failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch locations")
		return
	}

	respondList(w, locs, len(locs))
}

// CreateLocation handles POST /locations.
func (s *Server) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == nil || req.Lat == nil || req.Lng == nil ||
		req.Day == nil || req.Time == nil || req.Description == nil {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	loc := domain.NewLocation{
		Name:        *req.Name,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Day:         domain.Day(*req.Day),
		Time:        *req.Time,
		Description: *req.Description,
	}

	created, err := s.locations.Create(r.Context(), loc)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			respondError(w, http.StatusBadRequest, unwrapMessage(err))
			return
		}
		slog.ErrorContext(r.Context(), "create location failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create location")
		return
	}

	respondData(w, http.StatusCreated, created)
}

// UpdateLocation handles PUT /locations/{id}.
// The body may contain any subset of mutable fields; absent fields are
// left unchanged.
func (s *Server) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := locationID(w, r)
	if !ok {
		return
	}

	var patch domain.LocationUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := s.locations.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			respondError(w, http.StatusBadRequest, unwrapMessage(err))
		case errors.Is(err, domain.ErrNotFound):
			respondError(w, http.StatusNotFound, "Location not found")
		default:
			slog.ErrorContext(r.Context(), "update location failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to update location")
		}
		return
	}

	respondData(w, http.StatusOK, updated)
}

// DeleteLocation handles DELETE /locations/{id}.
// A missing id is reported as 404, distinct from a server error.
func (s *Server) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := locationID(w, r)
	if !ok {
		return
	}

	if err := s.locations.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Location not found")
			return
		}
		slog.ErrorContext(r.Context(), "delete location failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete location")
		return
	}

	respond(w, http.StatusOK, envelope{Success: true, Message: "Location deleted successfully"})
}

// locationID parses the {id} path parameter. On failure it writes a 400
// response and returns ok=false; the caller must return immediately.
func locationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid location ID")
		return 0, false
	}
	return id, true
}
