// Package search runs the search pipeline: resolve an origin, fetch
// candidates, filter and enrich them, then sort.
package search

import (
	"fmt"
	"strings"

	"github.com/aimerfeng/PawPals/internal/geo"
	"github.com/aimerfeng/PawPals/internal/location"
	"github.com/aimerfeng/PawPals/internal/models"
)

// ResultType selects which entity streams appear in the output
type ResultType string

const (
	ResultAll       ResultType = "all"
	ResultJobs      ResultType = "jobs"
	ResultProviders ResultType = "providers"
)

// ParseResultType validates a result type; empty means all
func ParseResultType(s string) (ResultType, error) {
	switch ResultType(strings.ToLower(strings.TrimSpace(s))) {
	case "", ResultAll:
		return ResultAll, nil
	case ResultJobs:
		return ResultJobs, nil
	case ResultProviders:
		return ResultProviders, nil
	}
	return "", fmt.Errorf("unknown result type %q", s)
}

// IncludesJobs reports whether job posts are wanted
func (t ResultType) IncludesJobs() bool {
	return t != ResultProviders
}

// IncludesProviders reports whether provider profiles are wanted
func (t ResultType) IncludesProviders() bool {
	return t != ResultJobs
}

// SortOrder is the headline-price ordering of results
type SortOrder string

const (
	SortNone      SortOrder = "none"
	SortLowToHigh SortOrder = "lowToHigh"
	SortHighToLow SortOrder = "highToLow"
)

// ParseSortOrder validates a sort order; empty means none
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "lowtohigh", "price_asc":
		return SortLowToHigh, nil
	case "hightolow", "price_desc":
		return SortHighToLow, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Request is one search as submitted by a caller
type Request struct {
	// Query is a free-text location to geocode
	Query string
	// Point and Address are an explicit origin and its label
	Point   *geo.Point
	Address string

	ServiceType   models.ServiceType
	Breeds        []string
	DistanceMiles float64
	ResultType    ResultType
	SortOrder     SortOrder

	// Session groups successive searches for last-request-wins
	Session string
}

// Filters returns the engine configuration of the request
func (r *Request) Filters() Filters {
	return Filters{
		ServiceType:   r.ServiceType,
		Breeds:        models.NormalizeBreeds(r.Breeds),
		DistanceMiles: r.DistanceMiles,
		ResultType:    r.ResultType,
	}
}

// Filters configures the engine. Zero values do not filter.
type Filters struct {
	ServiceType   models.ServiceType
	Breeds        []string
	DistanceMiles float64
	ResultType    ResultType
}

// Identity is the viewer on whose behalf a search runs
type Identity struct {
	UID  string
	Name string
}

// Anonymous reports a signed-out viewer
func (i Identity) Anonymous() bool {
	return i.UID == ""
}

// Capabilities carries everything ambient a search may use. A nil Sensor
// means the device position is unavailable.
type Capabilities struct {
	Viewer Identity
	Sensor location.Sensor
}

// JobCandidate is a fetched job post with its poster's photo
type JobCandidate struct {
	Job         models.JobPost
	PosterPhoto string
}

// ProviderCandidate is a fetched host profile with its reviews
type ProviderCandidate struct {
	Profile models.User
	Reviews []models.Review
}

// Candidates are the raw enriched streams handed to the engine
type Candidates struct {
	Jobs      []JobCandidate
	Providers []ProviderCandidate
}

// SearchResult is the unified view of a job post or a provider
type SearchResult struct {
	ID            string             `json:"id"`
	IsProvider    bool               `json:"is_provider"`
	DisplayName   string             `json:"display_name"`
	ServiceLabel  string             `json:"service_label"`
	ServiceType   models.ServiceType `json:"service_type,omitempty"`
	Description   string             `json:"description"`
	Location      models.Location    `json:"location"`
	Price         string             `json:"price"`
	RateType      models.RateType    `json:"rate_type"`
	PriceLabel    string             `json:"price_label"`
	PhotoURL      string             `json:"photo_url,omitempty"`
	Rating        *float64           `json:"rating,omitempty"`
	TotalReviews  *int               `json:"total_reviews,omitempty"`
	DistanceMiles *float64           `json:"distance_miles,omitempty"`
	Breeds        []string           `json:"breeds"`
	DetailsPath   string             `json:"details_path"`
}

// Point returns the result position
func (r *SearchResult) Point() geo.Point {
	return geo.Point{Lat: r.Location.Lat, Lng: r.Location.Lng}
}

// Response is the outcome of one search
type Response struct {
	Results        []SearchResult  `json:"results"`
	Total          int             `json:"total"`
	Origin         *geo.Point      `json:"origin,omitempty"`
	LocationLabel  string          `json:"location_label,omitempty"`
	LocationSource location.Source `json:"location_source"`
	DistanceMiles  float64         `json:"distance_miles"`
	Advisories     []string        `json:"advisories"`
}
