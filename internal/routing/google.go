package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// googleBaseURL is the Distance Matrix web service endpoint.
// Overridable via GoogleOptions.BaseURL for tests.
const googleBaseURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// GoogleClient is an Estimator backed by the Google Distance Matrix API
// (driving mode, metric units).
type GoogleClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// GoogleOptions configures a GoogleClient.
type GoogleOptions struct {
	// BaseURL defaults to the public Distance Matrix endpoint.
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewGoogleClient constructs a GoogleClient with the given API key.
func NewGoogleClient(apiKey string, opts GoogleOptions) *GoogleClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = googleBaseURL
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &GoogleClient{apiKey: apiKey, baseURL: baseURL, httpc: httpc}
}

// distanceMatrixResponse is the slice of the API response we consume:
// one origin, one destination, human-readable texts.
type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
			Distance struct {
				Text string `json:"text"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// EstimateDriving requests a single-pair driving estimate.
// A non-OK element status (e.g. ZERO_RESULTS) maps to ErrNoRoute.
func (g *GoogleClient) EstimateDriving(ctx context.Context, origin, dest Point) (Estimate, error) {
	q := url.Values{}
	q.Set("origins", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	q.Set("destinations", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	q.Set("mode", "driving")
	q.Set("units", "metric")
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Estimate{}, fmt.Errorf("routing: build request: %w", err)
	}

	resp, err := g.httpc.Do(req)
	if err != nil {
		return Estimate{}, fmt.Errorf("routing: distance matrix: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Estimate{}, fmt.Errorf("routing: distance matrix: status %d", resp.StatusCode)
	}

	var dm distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&dm); err != nil {
		return Estimate{}, fmt.Errorf("routing: decode response: %w", err)
	}
	if dm.Status != "OK" {
		return Estimate{}, fmt.Errorf("routing: distance matrix: %s", dm.Status)
	}
	if len(dm.Rows) == 0 || len(dm.Rows[0].Elements) == 0 {
		return Estimate{}, ErrNoRoute
	}

	el := dm.Rows[0].Elements[0]
	if el.Status != "OK" {
		return Estimate{}, fmt.Errorf("%w: element status %s", ErrNoRoute, el.Status)
	}

	return Estimate{Duration: el.Duration.Text, Distance: el.Distance.Text}, nil
}
