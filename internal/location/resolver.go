// Package location decides the reference point a search is centered on.
package location

import (
	"context"
	"errors"
	"strings"

	"github.com/aimerfeng/PawPals/internal/geo"
	"github.com/aimerfeng/PawPals/internal/geocode"
	"github.com/aimerfeng/PawPals/internal/logging"
	"github.com/rs/zerolog"
)

// Source records where an origin came from
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceGeocoded Source = "geocoded"
	SourceSensor   Source = "sensor"
	SourceNone     Source = "none"
)

// Advisory messages shown when the search falls back to no distance filter
const (
	AdvisoryNoMatch           = "We couldn't find that location. Showing results without a distance filter."
	AdvisoryQueryTooShort     = "Enter at least 3 characters to search by location. Showing results without a distance filter."
	AdvisoryLookupUnavailable = "Location lookup is unavailable right now. Showing results without a distance filter."
	AdvisoryInvalidPoint      = "The selected coordinates are invalid. Showing results without a distance filter."
	AdvisorySensorDenied      = "Location access was denied. Showing results without a distance filter."
	AdvisorySensorUnavailable = "Your current location is unavailable. Showing results without a distance filter."
)

// Input carries the location hints of one search, highest priority first
type Input struct {
	// Point is an explicit coordinate; Label is its optional display address
	Point *geo.Point
	Label string
	// Query is a free-text address to geocode
	Query string
}

// Resolution is the outcome of resolving an Input. Origin is nil when the
// search must not be distance-filtered.
type Resolution struct {
	Origin   *geo.Point `json:"origin,omitempty"`
	Label    string     `json:"label,omitempty"`
	Source   Source     `json:"source"`
	Advisory string     `json:"advisory,omitempty"`
}

// Resolver turns location hints into an origin
type Resolver struct {
	geocoder geocode.Geocoder
	logger   zerolog.Logger
}

// NewResolver creates a resolver. A nil geocoder disables address lookup.
func NewResolver(g geocode.Geocoder) *Resolver {
	return &Resolver{
		geocoder: g,
		logger:   logging.NewLogger("location"),
	}
}

// Resolve picks the origin for a search. It never fails: problems become an
// advisory and an unfiltered search. At most one geocoder call is made.
func (r *Resolver) Resolve(ctx context.Context, in Input, sensor Sensor) Resolution {
	var advisory string

	if in.Point != nil {
		if in.Point.Valid() {
			p := *in.Point
			label := strings.TrimSpace(in.Label)
			if label == "" {
				label = p.String()
			}
			return Resolution{Origin: &p, Label: label, Source: SourceExplicit}
		}
		advisory = AdvisoryInvalidPoint
	}

	if q := strings.TrimSpace(in.Query); q != "" {
		return r.geocodeQuery(ctx, q)
	}

	if sensor != nil {
		return r.fromSensor(ctx, sensor)
	}

	return Resolution{Source: SourceNone, Advisory: advisory}
}

func (r *Resolver) geocodeQuery(ctx context.Context, q string) Resolution {
	if r.geocoder == nil {
		return Resolution{Source: SourceNone, Advisory: AdvisoryLookupUnavailable}
	}

	place, err := r.geocoder.Forward(ctx, q)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Address lookup failed")
		return Resolution{Source: SourceNone, Advisory: advisoryFor(err)}
	}

	p := place.Point
	return Resolution{Origin: &p, Label: place.Label, Source: SourceGeocoded}
}

func (r *Resolver) fromSensor(ctx context.Context, sensor Sensor) Resolution {
	p, err := sensor.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, ErrSensorDenied) {
			return Resolution{Source: SourceNone, Advisory: AdvisorySensorDenied}
		}
		return Resolution{Source: SourceNone, Advisory: AdvisorySensorUnavailable}
	}
	if !p.Valid() {
		return Resolution{Source: SourceNone, Advisory: AdvisorySensorUnavailable}
	}

	label := p.String()
	if r.geocoder != nil {
		if place, err := r.geocoder.Reverse(ctx, p); err == nil && place.Label != "" {
			label = place.Label
		} else if err != nil {
			r.logger.Debug().Err(err).Msg("Reverse lookup failed, using coordinates as label")
		}
	}
	return Resolution{Origin: &p, Label: label, Source: SourceSensor}
}

func advisoryFor(err error) string {
	switch {
	case errors.Is(err, geocode.ErrNoMatch):
		return AdvisoryNoMatch
	case errors.Is(err, geocode.ErrQueryTooShort):
		return AdvisoryQueryTooShort
	default:
		return AdvisoryLookupUnavailable
	}
}
