// Package repo contains all database access logic for the Itinerary API.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mpons/itinerary-api/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LocationRepo defines the persistence operations for Locations.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type LocationRepo interface {
	// Create inserts a new location and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, loc domain.NewLocation) (domain.Location, error)

	// GetByID retrieves a single location by its integer primary key.
	// Returns domain.ErrNotFound if no location with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Location, error)

	// List returns all locations ordered by the day enumeration's natural
	// sequence (day1 < day2 < ... < day5), then by id.
	List(ctx context.Context) ([]domain.Location, error)

	// Update applies the non-nil fields of the patch and returns the updated
	// record. updated_at is always advanced, regardless of which fields were
	// supplied. Returns domain.ErrNotFound if no location with that ID exists.
	Update(ctx context.Context, id int64, patch domain.LocationUpdate) (domain.Location, error)

	// Delete removes a location by ID. Returns domain.ErrNotFound if it does
	// not exist.
	Delete(ctx context.Context, id int64) error
}

// pgLocationRepo is the Postgres implementation of LocationRepo.
type pgLocationRepo struct {
	db db
}

// NewLocationRepo constructs a LocationRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewLocationRepo(db db) LocationRepo {
	return &pgLocationRepo{db: db}
}

const locationColumns = `id, name, lat, lng, day, time, description, created_at, updated_at`

// Create inserts a new location row and returns the full persisted record.
func (r *pgLocationRepo) Create(ctx context.Context, loc domain.NewLocation) (domain.Location, error) {
	const q = `
		INSERT INTO locations (name, lat, lng, day, time, description)
		VALUES (@name, @lat, @lng, @day, @time, @description)
		RETURNING ` + locationColumns

	args := pgx.NamedArgs{
		"name":        loc.Name,
		"lat":         loc.Lat,
		"lng":         loc.Lng,
		"day":         string(loc.Day),
		"time":        loc.Time,
		"description": loc.Description,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanLocation(row)
	if err != nil {
		return domain.Location{}, fmt.Errorf("repo.LocationRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a location by primary key.
func (r *pgLocationRepo) GetByID(ctx context.Context, id int64) (domain.Location, error) {
	const q = `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanLocation(row)
	if err != nil {
		return domain.Location{}, fmt.Errorf("repo.LocationRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all locations in itinerary order: day sequence first, then
// insertion id. The display time string is deliberately not part of the sort —
// ordering by it is the annotation layer's concern.
func (r *pgLocationRepo) List(ctx context.Context) ([]domain.Location, error) {
	const q = `
		SELECT ` + locationColumns + `
		FROM locations
		ORDER BY
			CASE day
				WHEN 'day1' THEN 1
				WHEN 'day2' THEN 2
				WHEN 'day3' THEN 3
				WHEN 'day4' THEN 4
				WHEN 'day5' THEN 5
				ELSE 6
			END,
			id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.LocationRepo.List: %w", err)
	}
	defer rows.Close()

	var locs []domain.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.LocationRepo.List: scan: %w", err)
		}
		locs = append(locs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.LocationRepo.List: rows: %w", err)
	}

	return locs, nil
}

// Update builds a SET clause from the non-nil patch fields and returns the
// updated record. The updated_at assignment is always part of the clause, so
// even a value-identical update advances it. clock_timestamp() rather than
// now(): now() is pinned to transaction start, which would leave updated_at
// equal to created_at for any update running in the insert's transaction.
func (r *pgLocationRepo) Update(ctx context.Context, id int64, patch domain.LocationUpdate) (domain.Location, error) {
	set := []string{"updated_at = clock_timestamp()"}
	args := pgx.NamedArgs{"id": id}

	if patch.Name != nil {
		set = append(set, "name = @name")
		args["name"] = *patch.Name
	}
	if patch.Lat != nil {
		set = append(set, "lat = @lat")
		args["lat"] = *patch.Lat
	}
	if patch.Lng != nil {
		set = append(set, "lng = @lng")
		args["lng"] = *patch.Lng
	}
	if patch.Day != nil {
		set = append(set, "day = @day")
		args["day"] = string(*patch.Day)
	}
	if patch.Time != nil {
		set = append(set, "time = @time")
		args["time"] = *patch.Time
	}
	if patch.Description != nil {
		set = append(set, "description = @description")
		args["description"] = *patch.Description
	}

	q := `
		UPDATE locations
		SET ` + strings.Join(set, ", ") + `
		WHERE id = @id
		RETURNING ` + locationColumns

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanLocation(row)
	if err != nil {
		return domain.Location{}, fmt.Errorf("repo.LocationRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a location by primary key.
func (r *pgLocationRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM locations WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.LocationRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.LocationRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanLocation to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanLocation maps a single database row into a domain.Location.
// lat/lng are DECIMAL columns, scanned through float64 by pgx.
func scanLocation(s scanner) (domain.Location, error) {
	var (
		l   domain.Location
		day string
	)

	err := s.Scan(&l.ID, &l.Name, &l.Lat, &l.Lng, &day, &l.Time, &l.Description, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Location{}, domain.ErrNotFound
		}
		return domain.Location{}, err
	}

	l.Day = domain.Day(day)
	return l, nil
}
