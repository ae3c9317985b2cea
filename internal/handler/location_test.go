package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpons/itinerary-api/internal/domain"
	"github.com/mpons/itinerary-api/internal/handler"
)

// mockLocationServicer is a test double for handler.LocationServicer.
// Set only the method fields your test needs.
type mockLocationServicer struct {
	create func(ctx context.Context, loc domain.NewLocation) (domain.Location, error)
	list   func(ctx context.Context) ([]domain.Location, error)
	update func(ctx context.Context, id int64, patch domain.LocationUpdate) (domain.Location, error)
	delete func(ctx context.Context, id int64) error
}

func (m *mockLocationServicer) Create(ctx context.Context, loc domain.NewLocation) (domain.Location, error) {
	return m.create(ctx, loc)
}
func (m *mockLocationServicer) List(ctx context.Context) ([]domain.Location, error) {
	return m.list(ctx)
}
func (m *mockLocationServicer) Update(ctx context.Context, id int64, patch domain.LocationUpdate) (domain.Location, error) {
	return m.update(ctx, id, patch)
}
func (m *mockLocationServicer) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

// compile-time check: mockLocationServicer must satisfy handler.LocationServicer.
var _ handler.LocationServicer = (*mockLocationServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mock into its chi router.
// This mirrors exactly how main.go wires it in production.
func newHTTPHandler(svc handler.LocationServicer) http.Handler {
	return handler.NewServer(svc).Routes()
}

func locationFixture() domain.Location {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Location{
		ID:          1,
		Name:        "Cala Formentor",
		Lat:         39.9597,
		Lng:         3.2097,
		Day:         domain.Day1,
		Time:        "7:00 AM",
		Description: "Pristine golden beach",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// envelope mirrors the uniform response wrapper for assertions.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

// ---- GET /locations --------------------------------------------------------

func TestListLocations_200(t *testing.T) {
	fixture := locationFixture()
	svc := &mockLocationServicer{
		list: func(_ context.Context) ([]domain.Location, error) {
			return []domain.Location{fixture}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	var locs []domain.Location
	require.NoError(t, json.Unmarshal(env.Data, &locs))
	require.Len(t, locs, 1)
	assert.Equal(t, fixture.Name, locs[0].Name)
}

func TestListLocations_500(t *testing.T) {
	svc := &mockLocationServicer{
		list: func(_ context.Context) ([]domain.Location, error) {
			return nil, fmt.Errorf("repo.LocationRepo.List: connection refused")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	// Storage details must stay opaque to the caller.
	assert.Equal(t, "Failed to fetch locations", env.Error)
}

// ---- POST /locations -------------------------------------------------------

func TestCreateLocation_201(t *testing.T) {
	fixture := locationFixture()
	var captured domain.NewLocation
	svc := &mockLocationServicer{
		create: func(_ context.Context, loc domain.NewLocation) (domain.Location, error) {
			captured = loc
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"name":        "Cala X",
		"lat":         39.9,
		"lng":         3.1,
		"day":         "day1",
		"time":        "9:00 AM",
		"description": "test",
	})
	req := httptest.NewRequest(http.MethodPost, "/locations", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Cala X", captured.Name)
	assert.Equal(t, domain.Day1, captured.Day)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var created domain.Location
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, fixture.ID, created.ID)
}

func TestCreateLocation_400_MissingFields(t *testing.T) {
	svc := &mockLocationServicer{} // service must not be reached

	body := jsonBody(t, map[string]any{"name": "Cala X"})
	req := httptest.NewRequest(http.MethodPost, "/locations", body)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Missing required fields", env.Error)
}

func TestCreateLocation_400_Validation(t *testing.T) {
	svc := &mockLocationServicer{
		create: func(_ context.Context, _ domain.NewLocation) (domain.Location, error) {
			return domain.Location{}, fmt.Errorf("%w: Latitude must be a number between -90 and 90", domain.ErrValidation)
		},
	}

	body := jsonBody(t, map[string]any{
		"name":        "Cala X",
		"lat":         100.0,
		"lng":         3.1,
		"day":         "day1",
		"time":        "9:00 AM",
		"description": "test",
	})
	req := httptest.NewRequest(http.MethodPost, "/locations", body)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	// The field-specific message survives the sentinel wrapping.
	assert.Equal(t, "Latitude must be a number between -90 and 90", env.Error)
}

func TestCreateLocation_400_MalformedJSON(t *testing.T) {
	svc := &mockLocationServicer{}

	req := httptest.NewRequest(http.MethodPost, "/locations", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- PUT /locations/{id} ---------------------------------------------------

func TestUpdateLocation_200(t *testing.T) {
	fixture := locationFixture()
	fixture.Name = "Renamed"
	var capturedID int64
	svc := &mockLocationServicer{
		update: func(_ context.Context, id int64, patch domain.LocationUpdate) (domain.Location, error) {
			capturedID = id
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"name": "Renamed"})
	req := httptest.NewRequest(http.MethodPut, "/locations/1", body)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), capturedID)

	env := decodeEnvelope(t, rec)
	var updated domain.Location
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdateLocation_400_InvalidID(t *testing.T) {
	svc := &mockLocationServicer{}

	body := jsonBody(t, map[string]any{"name": "x"})
	req := httptest.NewRequest(http.MethodPut, "/locations/abc", body)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Invalid location ID", env.Error)
}

func TestUpdateLocation_400_Validation(t *testing.T) {
	svc := &mockLocationServicer{
		update: func(_ context.Context, _ int64, _ domain.LocationUpdate) (domain.Location, error) {
			return domain.Location{}, fmt.Errorf("%w: Latitude must be a number between -90 and 90", domain.ErrValidation)
		},
	}

	body := jsonBody(t, map[string]any{"lat": 100.0})
	req := httptest.NewRequest(http.MethodPut, "/locations/1", body)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Latitude must be a number between -90 and 90", env.Error)
}

func TestUpdateLocation_404(t *testing.T) {
	svc := &mockLocationServicer{
		update: func(_ context.Context, _ int64, _ domain.LocationUpdate) (domain.Location, error) {
			return domain.Location{}, fmt.Errorf("service.LocationService.Update: %w", domain.ErrNotFound)
		},
	}

	body := jsonBody(t, map[string]any{"name": "x"})
	req := httptest.NewRequest(http.MethodPut, "/locations/999999", body)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Location not found", env.Error)
}

// ---- DELETE /locations/{id} ------------------------------------------------

func TestDeleteLocation_200(t *testing.T) {
	svc := &mockLocationServicer{
		delete: func(_ context.Context, id int64) error { return nil },
	}

	req := httptest.NewRequest(http.MethodDelete, "/locations/1", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Location deleted successfully", env.Message)
}

func TestDeleteLocation_404(t *testing.T) {
	svc := &mockLocationServicer{
		delete: func(_ context.Context, _ int64) error {
			return fmt.Errorf("repo.LocationRepo.Delete: %w", domain.ErrNotFound)
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/locations/999999", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	// Not found must be distinguishable from a server error.
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Location not found", env.Error)
}

func TestDeleteLocation_400_InvalidID(t *testing.T) {
	svc := &mockLocationServicer{}

	req := httptest.NewRequest(http.MethodDelete, "/locations/nope", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
