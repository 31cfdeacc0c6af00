package models

import "math"

// Location is a geographic position with an optional street address
type Location struct {
	Lat     float64 `json:"lat" db:"lat"`
	Lng     float64 `json:"lng" db:"lng"`
	Address string  `json:"address,omitempty" db:"address"`
}

// Usable reports whether the location can be distance-filtered and mapped.
// A zero coordinate is how unset locations were persisted, so it counts as missing.
func (l *Location) Usable() bool {
	if l == nil {
		return false
	}
	if l.Lat == 0 || l.Lng == 0 {
		return false
	}
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lng) || math.IsInf(l.Lat, 0) || math.IsInf(l.Lng, 0) {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}
