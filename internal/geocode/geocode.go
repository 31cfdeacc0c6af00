// Package geocode turns free-text addresses into coordinates and back.
package geocode

import (
	"context"
	"errors"

	"github.com/aimerfeng/PawPals/internal/geo"
)

// MinQueryLength is the shortest address query sent upstream
const MinQueryLength = 3

var (
	ErrNoMatch       = errors.New("no matching location")
	ErrNotConfigured = errors.New("geocoder is not configured")
	ErrQueryTooShort = errors.New("address query is too short")
	ErrUpstream      = errors.New("geocoder upstream error")
	ErrCircuitOpen   = errors.New("geocoder circuit breaker is open")
)

// Place is a geocoded location
type Place struct {
	Label string    `json:"label"`
	Point geo.Point `json:"point"`
}

// Geocoder resolves addresses. Forward returns the first match only.
type Geocoder interface {
	Forward(ctx context.Context, query string) (*Place, error)
	Reverse(ctx context.Context, p geo.Point) (*Place, error)
}
