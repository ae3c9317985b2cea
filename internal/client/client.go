// Package client is a typed Go client for the Itinerary API.
// It is the sole read/write path for UI-side consumers: reads go through the
// persistent TTL cache, writes invalidate it, and a failed live fetch falls
// back to whatever cached data exists — availability over freshness.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mpons/itinerary-api/internal/cache"
	"github.com/mpons/itinerary-api/internal/domain"
	"github.com/mpons/itinerary-api/internal/routing"
)

// Cache keys used by the client. Writes invalidate the list and travel-times
// keys together: annotations are derived from the list and go stale with it.
const (
	cacheKeyLocations   = "locations"
	cacheKeyTravelTimes = "travel_times"
)

// travelTimesTTL is longer than the location TTL: driving estimates drift far
// more slowly than itinerary edits.
const travelTimesTTL = 30 * time.Minute

func cacheKeyLocation(id int64) string {
	return fmt.Sprintf("location_%d", id)
}

// Client fronts the remote API with a cache.Store.
// Construct with New; the zero value is not usable.
type Client struct {
	baseURL string
	httpc   *http.Client
	cache   *cache.Store
	logger  *slog.Logger
}

// Options configures a Client.
type Options struct {
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// New constructs a Client for the API at baseURL (no trailing slash),
// caching through store. A disabled store degrades every read to a
// pass-through network call.
func New(baseURL string, store *cache.Store, opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: baseURL, httpc: httpc, cache: store, logger: logger}
}

// FetchOptions controls caching behaviour for FetchLocations.
type FetchOptions struct {
	// UseCache enables the read-through cache and the stale fallback.
	UseCache bool
	// TTL is the freshness window for a newly cached result.
	// Zero means cache.DefaultTTL.
	TTL time.Duration
}

// FetchLocations returns the location list, serving a fresh cache entry
// without touching the network when possible.
//
// On a network or API failure the client prefers availability: any cached
// entry — even one past its TTL — is returned instead of the error. The error
// is only surfaced when no cached data exists at all.
func (c *Client) FetchLocations(ctx context.Context, opts FetchOptions) ([]domain.Location, error) {
	ttl := opts.TTL
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}

	if opts.UseCache {
		var cached []domain.Location
		if c.cache.Get(cacheKeyLocations, &cached) {
			c.logger.Debug("serving locations from cache")
			return cached, nil
		}
	}

	var locs []domain.Location
	err := c.do(ctx, http.MethodGet, "/locations", nil, &locs)
	if err != nil {
		if opts.UseCache {
			var stale []domain.Location
			if c.cache.GetStale(cacheKeyLocations, &stale) {
				c.logger.Warn("fetch failed, serving stale cached locations", "error", err)
				return stale, nil
			}
		}
		return nil, err
	}

	if opts.UseCache {
		c.cache.Set(cacheKeyLocations, locs, ttl)
	}
	return locs, nil
}

// CreateLocation posts a new location and invalidates the list caches so the
// next read is fresh. The server's error message is propagated on failure.
func (c *Client) CreateLocation(ctx context.Context, loc domain.NewLocation) (domain.Location, error) {
	var created domain.Location
	if err := c.do(ctx, http.MethodPost, "/locations", loc, &created); err != nil {
		return domain.Location{}, err
	}
	c.invalidateList()
	return created, nil
}

// UpdateLocation applies a partial update and invalidates both the per-id
// entry and the list caches.
func (c *Client) UpdateLocation(ctx context.Context, id int64, patch domain.LocationUpdate) (domain.Location, error) {
	var updated domain.Location
	path := fmt.Sprintf("/locations/%d", id)
	if err := c.do(ctx, http.MethodPut, path, patch, &updated); err != nil {
		return domain.Location{}, err
	}
	c.cache.Remove(cacheKeyLocation(id))
	c.invalidateList()
	return updated, nil
}

// DeleteLocation removes a location and invalidates caches.
func (c *Client) DeleteLocation(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/locations/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	c.cache.Remove(cacheKeyLocation(id))
	c.invalidateList()
	return nil
}

// FetchLocationsWithTravelTimes fetches the list and annotates consecutive
// same-day locations with driving time/distance from est. Annotated results
// are cached separately under a longer TTL. Annotation failures never fail
// the fetch — an unannotated list is still a complete answer.
func (c *Client) FetchLocationsWithTravelTimes(ctx context.Context, est routing.Estimator, opts FetchOptions) ([]domain.Location, error) {
	locs, err := c.FetchLocations(ctx, opts)
	if err != nil {
		return nil, err
	}

	annotated := routing.Annotate(ctx, est, locs)
	c.CacheTravelTimes(annotated)
	return annotated, nil
}

// CacheTravelTimes stores the annotated subset of locations under the
// travel-times key. Locations without annotations are skipped; an all-bare
// list writes nothing.
func (c *Client) CacheTravelTimes(locs []domain.Location) {
	var withTimes []domain.Location
	for _, l := range locs {
		if l.TravelTimeFromPrevious != "" || l.DistanceFromPrevious != "" {
			withTimes = append(withTimes, l)
		}
	}
	if len(withTimes) > 0 {
		c.cache.Set(cacheKeyTravelTimes, withTimes, travelTimesTTL)
	}
}

// CachedTravelTimes returns previously annotated locations, or ok=false when
// none are cached or the entry has expired.
func (c *Client) CachedTravelTimes() ([]domain.Location, bool) {
	var locs []domain.Location
	if !c.cache.Get(cacheKeyTravelTimes, &locs) {
		return nil, false
	}
	return locs, true
}

// KeyStatus reports cache state for one key, for diagnostics.
type KeyStatus struct {
	Cached    bool          `json:"cached"`
	Age       time.Duration `json:"age,omitempty"`
	ExpiresIn time.Duration `json:"expires_in,omitempty"`
}

// CacheStatus reports age and remaining freshness for the known cache keys.
func (c *Client) CacheStatus() map[string]KeyStatus {
	status := make(map[string]KeyStatus, 2)
	for _, key := range []string{cacheKeyLocations, cacheKeyTravelTimes} {
		info, ok := c.cache.Info(key)
		if !ok {
			status[key] = KeyStatus{}
			continue
		}
		status[key] = KeyStatus{
			Cached:    true,
			Age:       info.Age,
			ExpiresIn: time.Until(info.ExpiresAt),
		}
	}
	return status
}

// PreloadData warms the locations cache. Best-effort: errors are logged and
// swallowed so callers can fire-and-forget during startup.
func (c *Client) PreloadData(ctx context.Context) {
	if _, err := c.FetchLocations(ctx, FetchOptions{UseCache: true}); err != nil {
		c.logger.Warn("preload failed", "error", err)
		return
	}
	c.logger.Debug("data preloaded and cached")
}

// ClearCache drops every entry in the client's cache namespace.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// invalidateList drops the list and derived travel-times entries together.
func (c *Client) invalidateList() {
	c.cache.Remove(cacheKeyLocations)
	c.cache.Remove(cacheKeyTravelTimes)
	c.logger.Debug("locations cache invalidated")
}

// apiEnvelope mirrors the server's uniform response wrapper.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// do issues one request and decodes the envelope. Network errors and
// non-success envelopes both surface as a single "operation failed" error
// carrying the best available message. Requests are never retried.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("client: %s %s: decode response: %w", method, path, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("client: %s %s: %s", method, path, msg)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("client: %s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}
