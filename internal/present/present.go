// Package present adapts ordered search results for list and map display.
// It never reorders or filters.
package present

import (
	"fmt"

	"github.com/aimerfeng/PawPals/internal/geo"
	"github.com/aimerfeng/PawPals/internal/ratings"
	"github.com/aimerfeng/PawPals/internal/search"
)

// DefaultCenter is shown when there is neither an origin nor a result
var DefaultCenter = geo.Point{Lat: 40.7128, Lng: -74.0060}

// Zoom levels
const (
	ZoomFirstResult = 10
	ZoomEmpty       = 8
)

// Marker is one pin on the results map
type Marker struct {
	ID          string    `json:"id"`
	Position    geo.Point `json:"position"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Rate        string    `json:"rate"`
	RateType    string    `json:"rate_type"`
	PriceLabel  string    `json:"price_label"`
	ServiceType string    `json:"service_type,omitempty"`
	IsProvider  bool      `json:"is_provider"`
	DetailsPath string    `json:"details_path"`
}

// Viewport is the initial map camera
type Viewport struct {
	Center geo.Point `json:"center"`
	Zoom   int       `json:"zoom"`
}

// Card is one entry of the results list
type Card struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Kind        string   `json:"kind"`
	ServiceText string   `json:"service_text"`
	Description string   `json:"description"`
	PriceLabel  string   `json:"price_label"`
	RatingLabel string   `json:"rating_label,omitempty"`
	Distance    string   `json:"distance,omitempty"`
	Address     string   `json:"address,omitempty"`
	PhotoURL    string   `json:"photo_url,omitempty"`
	Breeds      []string `json:"breeds"`
	DetailsPath string   `json:"details_path"`
}

// Markers returns one marker per result, in result order
func Markers(results []search.SearchResult) []Marker {
	markers := make([]Marker, len(results))
	for i := range results {
		r := &results[i]
		markers[i] = Marker{
			ID:          r.ID,
			Position:    r.Point(),
			Title:       Title(r),
			Description: r.Description,
			Rate:        r.Price,
			RateType:    r.RateType.Unit(),
			PriceLabel:  r.PriceLabel,
			ServiceType: string(r.ServiceType),
			IsProvider:  r.IsProvider,
			DetailsPath: r.DetailsPath,
		}
	}
	return markers
}

// ZoomForDistance maps a search radius in miles to a zoom level
func ZoomForDistance(miles float64) int {
	switch {
	case miles <= 5:
		return 12
	case miles <= 10:
		return 11
	case miles <= 25:
		return 10
	default:
		return 9
	}
}

// MapViewport centers on the origin zoomed to the radius, else on the first
// result, else on DefaultCenter.
func MapViewport(origin *geo.Point, radiusMiles float64, results []search.SearchResult) Viewport {
	switch {
	case origin != nil:
		return Viewport{Center: *origin, Zoom: ZoomForDistance(radiusMiles)}
	case len(results) > 0:
		return Viewport{Center: results[0].Point(), Zoom: ZoomFirstResult}
	default:
		return Viewport{Center: DefaultCenter, Zoom: ZoomEmpty}
	}
}

// Cards returns one list card per result, in result order
func Cards(results []search.SearchResult) []Card {
	cards := make([]Card, len(results))
	for i := range results {
		r := &results[i]
		c := Card{
			ID:          r.ID,
			Title:       Title(r),
			Kind:        "Job Post",
			ServiceText: r.ServiceLabel,
			Description: r.Description,
			PriceLabel:  r.PriceLabel,
			Address:     r.Location.Address,
			PhotoURL:    r.PhotoURL,
			Breeds:      r.Breeds,
			DetailsPath: r.DetailsPath,
		}
		if r.IsProvider {
			c.Kind = "Service Provider"
			c.RatingLabel = RatingLabel(r)
		}
		if r.DistanceMiles != nil {
			c.Distance = fmt.Sprintf("%.1f mi away", *r.DistanceMiles)
		}
		cards[i] = c
	}
	return cards
}

// Title is the service glyph followed by the display name
func Title(r *search.SearchResult) string {
	return r.ServiceType.Emoji() + " " + r.DisplayName
}

// RatingLabel renders a provider's rating, or "No reviews yet"
func RatingLabel(r *search.SearchResult) string {
	if r.Rating == nil || r.TotalReviews == nil {
		return ratings.Summary{}.Label()
	}
	return ratings.Summary{Average: *r.Rating, Total: *r.TotalReviews}.Label()
}
