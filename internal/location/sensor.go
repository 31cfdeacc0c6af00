package location

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/aimerfeng/PawPals/internal/geo"
)

var (
	ErrSensorDenied      = errors.New("position access denied")
	ErrSensorUnavailable = errors.New("position unavailable")
)

// Sensor reports the searcher's current device position
type Sensor interface {
	CurrentPosition(ctx context.Context) (geo.Point, error)
}

// HeaderSensor reads a position forwarded by the client as "lat,lng".
// The literal values "denied" and "unavailable" report the client's failure.
type HeaderSensor string

// CurrentPosition implements Sensor
func (h HeaderSensor) CurrentPosition(ctx context.Context) (geo.Point, error) {
	v := strings.TrimSpace(string(h))
	switch strings.ToLower(v) {
	case "denied":
		return geo.Point{}, ErrSensorDenied
	case "", "unavailable":
		return geo.Point{}, ErrSensorUnavailable
	}
	p, err := ParsePoint(v)
	if err != nil {
		return geo.Point{}, ErrSensorUnavailable
	}
	return p, nil
}

// StaticSensor always reports the same position or error
type StaticSensor struct {
	Point geo.Point
	Err   error
}

// CurrentPosition implements Sensor
func (s StaticSensor) CurrentPosition(ctx context.Context) (geo.Point, error) {
	if s.Err != nil {
		return geo.Point{}, s.Err
	}
	return s.Point, nil
}

// ParsePoint parses "lat,lng"
func ParsePoint(s string) (geo.Point, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Point{}, errors.New("expected lat,lng")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Point{}, err
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return geo.Point{}, err
	}
	p := geo.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return geo.Point{}, errors.New("coordinate out of range")
	}
	return p, nil
}
