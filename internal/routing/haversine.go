package routing

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371000.0

// averageRoadSpeedKmh is the assumed driving speed for offline estimates.
// Island roads are slow; 50 km/h tracks observed point-to-point times better
// than highway speeds would.
const averageRoadSpeedKmh = 50.0

// HaversineEstimator is an offline Estimator: great-circle distance at an
// assumed average road speed. Used when no mapping API key is configured,
// and as a deterministic estimator in tests. It never fails.
type HaversineEstimator struct{}

// EstimateDriving computes a straight-line driving estimate between the two
// points, formatted the same way the Distance Matrix API formats its texts so
// either estimator can feed the same display fields.
func (HaversineEstimator) EstimateDriving(_ context.Context, origin, dest Point) (Estimate, error) {
	p1 := s2.LatLngFromDegrees(origin.Lat, origin.Lng)
	p2 := s2.LatLngFromDegrees(dest.Lat, dest.Lng)
	meters := p1.Distance(p2).Radians() * earthRadiusMeters

	hours := (meters / 1000) / averageRoadSpeedKmh
	return Estimate{
		Duration: formatDuration(hours),
		Distance: formatDistance(meters),
	}, nil
}

// formatDuration renders fractional hours as "X mins" / "1 hour Y mins" /
// "N hours Y mins", rounding to whole minutes with a 1-minute floor.
func formatDuration(hours float64) string {
	mins := int(math.Round(hours * 60))
	if mins < 1 {
		mins = 1
	}
	h, m := mins/60, mins%60
	switch {
	case h == 0 && mins == 1:
		return "1 min"
	case h == 0:
		return fmt.Sprintf("%d mins", mins)
	case h == 1 && m == 0:
		return "1 hour"
	case h == 1:
		return fmt.Sprintf("1 hour %d mins", m)
	case m == 0:
		return fmt.Sprintf("%d hours", h)
	default:
		return fmt.Sprintf("%d hours %d mins", h, m)
	}
}

// formatDistance renders meters as "850 m" below one kilometre and "12.4 km"
// above it.
func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}
