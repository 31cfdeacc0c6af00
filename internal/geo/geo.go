// Package geo holds the great-circle distance helpers used by search.
package geo

import (
	"fmt"
	"math"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula
	EarthRadiusKm = 6371.0
	// MilesPerKm converts kilometres to statute miles
	MilesPerKm = 0.621371
)

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the point with five decimals (about one metre)
func (p Point) String() string {
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng)
}

// Valid reports whether the point is within the coordinate bounds
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceKm returns the haversine distance between a and b in kilometres
func DistanceKm(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// DistanceMiles returns the haversine distance between a and b in miles
func DistanceMiles(a, b Point) float64 {
	return DistanceKm(a, b) * MilesPerKm
}

// Within reports whether b lies within radiusMiles of a
func Within(a, b Point, radiusMiles float64) bool {
	return DistanceMiles(a, b) <= radiusMiles
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
