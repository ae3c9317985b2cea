// Package routing enriches day-ordered location chains with driving
// time/distance estimates from a mapping provider.
//
// The provider sits behind the narrow Estimator interface: the rest of the
// system never depends on any mapping SDK's native shapes. Two implementations
// are provided — a Google Distance Matrix web-service client and an offline
// great-circle fallback.
package routing

import (
	"context"
	"errors"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// Estimate is a human-readable driving estimate between two points,
// e.g. Duration "25 mins", Distance "18.3 km". Display-only; never persisted.
type Estimate struct {
	Duration string
	Distance string
}

// ErrNoRoute is returned when the provider cannot produce an estimate for a
// pair (no drivable route, zero results).
var ErrNoRoute = errors.New("routing: no route between points")

// Estimator produces a driving estimate for a single origin/destination pair.
type Estimator interface {
	EstimateDriving(ctx context.Context, origin, dest Point) (Estimate, error)
}
