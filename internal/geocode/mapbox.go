package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aimerfeng/PawPals/internal/config"
	"github.com/aimerfeng/PawPals/internal/geo"
	"github.com/aimerfeng/PawPals/internal/logging"
	"github.com/aimerfeng/PawPals/internal/monitoring"
	"github.com/rs/zerolog"
)

// forwardTypes are the feature types accepted for address lookups
const forwardTypes = "address,place,locality,neighborhood"

// Options configures the Mapbox client
type Options struct {
	BaseURL     string
	AccessToken string
	Country     string
	Timeout     time.Duration
	MaxRetries  int
	// Backoff is the first retry delay; it doubles per attempt
	Backoff time.Duration
	Breaker BreakerConfig
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = "https://api.mapbox.com"
	}
	if o.Country == "" {
		o.Country = "US"
	}
	if o.Timeout == 0 {
		o.Timeout = 5 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Backoff == 0 {
		o.Backoff = 500 * time.Millisecond
	}
	if o.Breaker.FailureThreshold == 0 {
		o.Breaker = DefaultBreakerConfig()
	}
	return o
}

// OptionsFromConfig maps service configuration to client options
func OptionsFromConfig(cfg *config.GeocoderConfig) Options {
	breaker := DefaultBreakerConfig()
	if cfg.BreakerFailures > 0 {
		breaker.FailureThreshold = cfg.BreakerFailures
	}
	if cfg.BreakerTimeout > 0 {
		breaker.Timeout = cfg.BreakerTimeout
	}
	return Options{
		BaseURL:     cfg.BaseURL,
		AccessToken: cfg.AccessToken,
		Country:     cfg.Country,
		Timeout:     cfg.Timeout,
		MaxRetries:  cfg.MaxRetries,
		Breaker:     breaker,
	}
}

// Mapbox is a Geocoder backed by the Mapbox Places API
type Mapbox struct {
	opts    Options
	http    *http.Client
	breaker *Breaker
	logger  zerolog.Logger
}

// NewMapbox creates a Mapbox geocoder
func NewMapbox(opts Options) *Mapbox {
	opts = opts.withDefaults()
	return &Mapbox{
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		breaker: NewBreaker("mapbox", opts.Breaker),
		logger:  logging.NewLogger("geocode"),
	}
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Center    []float64 `json:"center"` // [lng, lat]
}

func (f feature) place() (*Place, bool) {
	if len(f.Center) != 2 {
		return nil, false
	}
	p := geo.Point{Lat: f.Center[1], Lng: f.Center[0]}
	if !p.Valid() {
		return nil, false
	}
	label := f.PlaceName
	if label == "" {
		label = f.Text
	}
	return &Place{Label: label, Point: p}, true
}

// Forward geocodes an address query; the first feature wins
func (m *Mapbox) Forward(ctx context.Context, query string) (*Place, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}
	params := url.Values{}
	params.Set("country", m.opts.Country)
	params.Set("types", forwardTypes)
	return m.lookup(ctx, "forward", url.PathEscape(query), params)
}

// Reverse finds a label for a coordinate
func (m *Mapbox) Reverse(ctx context.Context, p geo.Point) (*Place, error) {
	if !p.Valid() {
		return nil, ErrNoMatch
	}
	q := strconv.FormatFloat(p.Lng, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
	place, err := m.lookup(ctx, "reverse", q, url.Values{})
	if err != nil {
		return nil, err
	}
	// Keep the caller's coordinate; only the label comes from upstream
	place.Point = p
	return place, nil
}

// lookup queries the places endpoint; segment must already be path-escaped
func (m *Mapbox) lookup(ctx context.Context, direction, segment string, params url.Values) (*Place, error) {
	if m.opts.AccessToken == "" {
		return nil, ErrNotConfigured
	}
	params.Set("access_token", m.opts.AccessToken)
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		strings.TrimRight(m.opts.BaseURL, "/"), segment, params.Encode())

	start := time.Now()
	place, err := m.breaker.Execute(ctx, func() (*Place, error) {
		return m.fetch(ctx, endpoint)
	})

	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNoMatch):
		status = "no_match"
	case errors.Is(err, ErrCircuitOpen):
		status = "circuit_open"
	default:
		status = "error"
	}
	monitoring.RecordGeocode(direction, status, time.Since(start))

	if err != nil {
		m.logger.Debug().Err(err).
			Str("direction", direction).
			Str("query", logging.SanitizeForLog(segment, 32)).
			Msg("Geocode lookup failed")
		return nil, err
	}
	return place, nil
}

// fetch performs the request, retrying with exponential backoff on 429 and 503
func (m *Mapbox) fetch(ctx context.Context, endpoint string) (*Place, error) {
	backoff := m.opts.Backoff
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("geocode: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := m.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable
		if retryable && attempt < m.opts.MaxRetries {
			resp.Body.Close()
			m.logger.Warn().
				Int("status", resp.StatusCode).
				Dur("backoff", backoff).
				Int("attempt", attempt+1).
				Msg("Geocoder throttled, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			continue
		}

		return decode(resp)
	}
}

func decode(resp *http.Response) (*Place, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: token rejected (status %d)", ErrNotConfigured, resp.StatusCode)
	default:
		// Unparseable queries come back as 4xx; treat them as no match
		return nil, ErrNoMatch
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if len(fc.Features) == 0 {
		return nil, ErrNoMatch
	}
	place, ok := fc.Features[0].place()
	if !ok {
		return nil, ErrNoMatch
	}
	return place, nil
}
