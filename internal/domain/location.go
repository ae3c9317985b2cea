// Package domain contains the core data types for the Itinerary API.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler, client, routing).
package domain

import "time"

// Day is the itinerary day a location belongs to. The set is closed:
// the itinerary covers exactly five days.
type Day string

const (
	Day1 Day = "day1"
	Day2 Day = "day2"
	Day3 Day = "day3"
	Day4 Day = "day4"
	Day5 Day = "day5"
)

// Days lists all valid Day values in itinerary order.
// List results are sorted by position in this sequence, then by id.
var Days = []Day{Day1, Day2, Day3, Day4, Day5}

// Valid reports whether d is one of the five enumerated days.
func (d Day) Valid() bool {
	for _, v := range Days {
		if d == v {
			return true
		}
	}
	return false
}

// Location represents a single point of interest on the itinerary.
//
// TravelTimeFromPrevious and DistanceFromPrevious are derived per session by
// the routing package and are never persisted; they are empty unless the
// location list has been annotated.
type Location struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Day         Day       `json:"day"`
	Time        string    `json:"time"` // display string, e.g. "7:00 AM" or "Dinner"
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	TravelTimeFromPrevious string `json:"travelTimeFromPrevious,omitempty"`
	DistanceFromPrevious   string `json:"distanceFromPrevious,omitempty"`
}

// NewLocation carries the fields a caller supplies when creating a location.
// The server assigns ID, CreatedAt, and UpdatedAt.
type NewLocation struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Day         Day     `json:"day"`
	Time        string  `json:"time"`
	Description string  `json:"description"`
}

// LocationUpdate is a partial update: nil fields are left unchanged.
// A successful update always advances UpdatedAt, regardless of which
// fields were supplied.
type LocationUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Day         *Day     `json:"day,omitempty"`
	Time        *string  `json:"time,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// IsEmpty reports whether the patch carries no recognized fields.
// Empty patches are rejected by the service as a no-op error.
func (u LocationUpdate) IsEmpty() bool {
	return u.Name == nil && u.Lat == nil && u.Lng == nil &&
		u.Day == nil && u.Time == nil && u.Description == nil
}
