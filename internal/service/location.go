// Package service contains the business logic for the Itinerary API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mpons/itinerary-api/internal/domain"
	"github.com/mpons/itinerary-api/internal/repo"
)

// LocationService implements business logic for Location operations.
// It is the only gate through which writes reach the locations table, so all
// Location invariants (coordinate ranges, day enumeration, non-empty display
// fields) are enforced here.
type LocationService struct {
	locations repo.LocationRepo
}

// NewLocationService constructs a LocationService backed by the provided repo.
func NewLocationService(r repo.LocationRepo) *LocationService {
	return &LocationService{locations: r}
}

// Create validates and persists a new location. All fields are required.
// Returns domain.ErrValidation with a field-specific message on any violation;
// nothing is inserted in that case.
func (s *LocationService) Create(ctx context.Context, loc domain.NewLocation) (domain.Location, error) {
	loc.Name = strings.TrimSpace(loc.Name)
	loc.Time = strings.TrimSpace(loc.Time)
	loc.Description = strings.TrimSpace(loc.Description)

	if err := validateRequired(loc); err != nil {
		return domain.Location{}, err
	}

	result, err := s.locations.Create(ctx, loc)
	if err != nil {
		return domain.Location{}, fmt.Errorf("service.LocationService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single location by ID.
// Returns domain.ErrNotFound if no location with that ID exists.
func (s *LocationService) GetByID(ctx context.Context, id int64) (domain.Location, error) {
	result, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return domain.Location{}, fmt.Errorf("service.LocationService.GetByID: %w", err)
	}
	return result, nil
}

// List returns all locations in itinerary order (day sequence, then id).
// Always returns a non-nil slice so callers can safely range over it.
func (s *LocationService) List(ctx context.Context) ([]domain.Location, error) {
	locs, err := s.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.LocationService.List: %w", err)
	}
	if locs == nil {
		return []domain.Location{}, nil
	}
	return locs, nil
}

// Update validates the supplied fields of the patch and applies them.
// Fields not present in the patch are left unchanged; updated_at always
// advances. An empty patch is rejected as a no-op validation error.
// Returns domain.ErrNotFound if the location does not exist.
func (s *LocationService) Update(ctx context.Context, id int64, patch domain.LocationUpdate) (domain.Location, error) {
	if patch.IsEmpty() {
		return domain.Location{}, fmt.Errorf("%w: No valid fields to update", domain.ErrValidation)
	}
	if err := validatePatch(&patch); err != nil {
		return domain.Location{}, err
	}

	result, err := s.locations.Update(ctx, id, patch)
	if err != nil {
		return domain.Location{}, fmt.Errorf("service.LocationService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a location by ID.
// Returns domain.ErrNotFound if the location does not exist — callers must be
// able to distinguish a missing record from a storage failure.
func (s *LocationService) Delete(ctx context.Context, id int64) error {
	if err := s.locations.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.LocationService.Delete: %w", err)
	}
	return nil
}

// --- validation -------------------------------------------------------------

// Field-specific validation messages. These are part of the API contract:
// clients render them inline next to form fields.
const (
	msgName        = "Name must be a non-empty string"
	msgLat         = "Latitude must be a number between -90 and 90"
	msgLng         = "Longitude must be a number between -180 and 180"
	msgDay         = "Day must be one of: day1, day2, day3, day4, day5"
	msgTime        = "Time must be a non-empty string"
	msgDescription = "Description must be a non-empty string"
)

// validateRequired enforces the create rules: every field present and valid.
// Inputs are expected to be trimmed already.
func validateRequired(loc domain.NewLocation) error {
	if loc.Name == "" {
		return fmt.Errorf("%w: %s", domain.ErrValidation, msgName)
	}
	if loc.Lat < -90 || loc.Lat > 90 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, msgLat)
	}
	if loc.Lng < -180 || loc.Lng > 180 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, msgLng)
	}
	if !loc.Day.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrValidation, msgDay)
	}
	if loc.Time == "" {
		return fmt.Errorf("%w: %s", domain.ErrValidation, msgTime)
	}
	if loc.Description == "" {
		return fmt.Errorf("%w: %s", domain.ErrValidation, msgDescription)
	}
	return nil
}

// validatePatch enforces the update rules: each supplied field must satisfy
// the same per-field rule as create. String fields are trimmed in place so
// the repo persists the normalized value.
func validatePatch(patch *domain.LocationUpdate) error {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return fmt.Errorf("%w: %s", domain.ErrValidation, msgName)
		}
		patch.Name = &trimmed
	}
	if patch.Lat != nil && (*patch.Lat < -90 || *patch.Lat > 90) {
		return fmt.Errorf("%w: %s", domain.ErrValidation, msgLat)
	}
	if patch.Lng != nil && (*patch.Lng < -180 || *patch.Lng > 180) {
		return fmt.Errorf("%w: %s", domain.ErrValidation, msgLng)
	}
	if patch.Day != nil && !patch.Day.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrValidation, msgDay)
	}
	if patch.Time != nil {
		trimmed := strings.TrimSpace(*patch.Time)
		if trimmed == "" {
			return fmt.Errorf("%w: %s", domain.ErrValidation, msgTime)
		}
		patch.Time = &trimmed
	}
	if patch.Description != nil {
		trimmed := strings.TrimSpace(*patch.Description)
		if trimmed == "" {
			return fmt.Errorf("%w: %s", domain.ErrValidation, msgDescription)
		}
		patch.Description = &trimmed
	}
	return nil
}
