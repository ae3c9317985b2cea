package routing

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/mpons/itinerary-api/internal/domain"
)

// Annotate returns a copy of locs where each location that follows another on
// the same day carries TravelTimeFromPrevious/DistanceFromPrevious. The first
// location of each day has no predecessor and is left bare, as is any day with
// fewer than two locations.
//
// Within a day, locations are ordered by plain string comparison of the time
// field ("10:30 AM" sorts before "7:00 AM"). The stored itineraries were
// authored against this ordering, so it is kept as-is.
//
// Pairs within a day are requested strictly in sequence; distinct days run
// concurrently. A failed pair is logged and skipped — one bad estimate never
// aborts the batch.
func Annotate(ctx context.Context, est Estimator, locs []domain.Location) []domain.Location {
	if len(locs) == 0 || est == nil {
		return locs
	}

	out := make([]domain.Location, len(locs))
	copy(out, locs)

	// Indexes into out for matching an estimate back to its location.
	// Built once up front; read-only while the day goroutines run.
	byID := make(map[int64]int, len(out))
	byCoord := make(map[Point]int, len(out))
	for i, l := range out {
		if l.ID != 0 {
			byID[l.ID] = i
		}
		byCoord[Point{Lat: l.Lat, Lng: l.Lng}] = i
	}

	chains := dayChains(out)

	// One goroutine per day. Chains write disjoint indices of out (a location
	// belongs to exactly one day), so no locking is needed.
	var wg sync.WaitGroup
	for day, chain := range chains {
		wg.Add(1)
		go func(day domain.Day, chain []domain.Location) {
			defer wg.Done()
			annotateChain(ctx, est, day, chain, out, byID, byCoord)
		}(day, chain)
	}
	wg.Wait()

	return out
}

// dayChains partitions locations by day and sorts each partition by the
// lexicographic time string.
func dayChains(locs []domain.Location) map[domain.Day][]domain.Location {
	chains := make(map[domain.Day][]domain.Location)
	for _, l := range locs {
		chains[l.Day] = append(chains[l.Day], l)
	}
	for _, chain := range chains {
		sort.SliceStable(chain, func(i, j int) bool {
			return chain[i].Time < chain[j].Time
		})
	}
	return chains
}

// annotateChain walks one day's chain pairwise and attaches estimates to each
// successor in out. Matching prefers the record id and falls back to an exact
// coordinate match for records that were never persisted.
func annotateChain(ctx context.Context, est Estimator, day domain.Day, chain []domain.Location, out []domain.Location, byID map[int64]int, byCoord map[Point]int) {
	for i := 1; i < len(chain); i++ {
		prev, curr := chain[i-1], chain[i]

		e, err := est.EstimateDriving(ctx,
			Point{Lat: prev.Lat, Lng: prev.Lng},
			Point{Lat: curr.Lat, Lng: curr.Lng},
		)
		if err != nil {
			slog.Warn("travel time estimate failed",
				"day", day, "from", prev.Name, "to", curr.Name, "error", err)
			continue
		}

		idx, ok := byID[curr.ID]
		if curr.ID == 0 || !ok {
			idx, ok = byCoord[Point{Lat: curr.Lat, Lng: curr.Lng}]
		}
		if !ok {
			continue
		}
		out[idx].TravelTimeFromPrevious = e.Duration
		out[idx].DistanceFromPrevious = e.Distance
	}
}
