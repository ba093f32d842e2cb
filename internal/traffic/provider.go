package traffic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/nvoss/ontime/internal/errors"
)

// DefaultRouterURL is the public OSRM demo server. Override with
// ONTIME_ROUTER_URL for a self-hosted instance.
const DefaultRouterURL = "https://router.project-osrm.org"

// EnvRouterURL overrides the routing service base URL.
const EnvRouterURL = "ONTIME_ROUTER_URL"

// Provider measures the current travel time between two places.
type Provider interface {
	Measure(ctx context.Context, origin, destination, mode string) (time.Duration, error)
}

// osrmProfiles maps trip modes to OSRM routing profiles.
var osrmProfiles = map[string]string{
	"driving": "driving",
	"cycling": "cycling",
	"walking": "foot",
}

// HTTPProvider measures travel times against an OSRM-compatible
// routing service. Origin and destination are "lon,lat" coordinate
// pairs.
type HTTPProvider struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	retryDelay []time.Duration
}

// NewHTTPProvider creates a provider against the configured routing
// service.
func NewHTTPProvider() *HTTPProvider {
	baseURL := os.Getenv(EnvRouterURL)
	if baseURL == "" {
		baseURL = DefaultRouterURL
	}
	return &HTTPProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		maxRetries: 2,
		retryDelay: []time.Duration{
			0,               // Immediate first attempt
			2 * time.Second, // Retry after 2s
		},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

// Measure queries the routing service for the current fastest route
// duration between origin and destination.
func (p *HTTPProvider) Measure(ctx context.Context, origin, destination, mode string) (time.Duration, error) {
	profile, ok := osrmProfiles[mode]
	if !ok {
		profile = osrmProfiles["driving"]
	}

	endpoint := fmt.Sprintf("%s/route/v1/%s/%s;%s?%s",
		p.baseURL, profile,
		url.PathEscape(origin), url.PathEscape(destination),
		url.Values{"overview": {"false"}}.Encode())

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			delay := p.retryDelay[min(attempt, len(p.retryDelay)-1)]
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(delay):
			}
		}

		duration, retry, err := p.attempt(ctx, endpoint)
		if err == nil {
			return duration, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return 0, errors.NewSystemErrorWithOp("traffic.measure", "travel time measurement failed", lastErr)
}

func (p *HTTPProvider) attempt(ctx context.Context, endpoint string) (time.Duration, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, false, err
	}
	req.Header.Set("User-Agent", "Ontime/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, true, err
	}

	// Rate limits and server errors are retryable, client errors are not.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return 0, true, fmt.Errorf("routing service error (HTTP %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, false, fmt.Errorf("routing request rejected (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, false, fmt.Errorf("malformed routing response: %w", err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return 0, false, fmt.Errorf("no route found (code %s)", parsed.Code)
	}

	return time.Duration(parsed.Routes[0].Duration * float64(time.Second)), false, nil
}
