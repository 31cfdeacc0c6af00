// Package ratings aggregates provider reviews.
package ratings

import (
	"fmt"

	"github.com/aimerfeng/PawPals/internal/models"
	"github.com/shopspring/decimal"
)

// Summary is the rating aggregate of one provider
type Summary struct {
	Average float64 `json:"average_rating"`
	Total   int     `json:"total_reviews"`
}

// Summarize averages the ratings of reviews. Reviews with an out-of-range
// rating are legacy data and are left out of both the mean and the count.
func Summarize(reviews []models.Review) Summary {
	var sum, n int
	for i := range reviews {
		if reviews[i].Validate() != nil {
			continue
		}
		sum += reviews[i].Rating
		n++
	}
	if n == 0 {
		return Summary{}
	}
	return Summary{Average: float64(sum) / float64(n), Total: n}
}

// FromStored converts a row written by the Refresher
func FromStored(rs *models.RatingSummary) Summary {
	if rs == nil || rs.TotalReviews <= 0 {
		return Summary{}
	}
	return Summary{Average: rs.AverageRating, Total: rs.TotalReviews}
}

// HasRating reports whether at least one review counted
func (s Summary) HasRating() bool {
	return s.Total > 0
}

// Rating returns the average, or nil when there are no reviews
func (s Summary) Rating() *float64 {
	if !s.HasRating() {
		return nil
	}
	avg := s.Average
	return &avg
}

// Rounded returns the average rounded to one decimal for display
func (s Summary) Rounded() decimal.Decimal {
	return decimal.NewFromFloat(s.Average).Round(1)
}

// Label renders the summary as shown on cards
func (s Summary) Label() string {
	if !s.HasRating() {
		return "No reviews yet"
	}
	noun := "reviews"
	if s.Total == 1 {
		noun = "review"
	}
	return fmt.Sprintf("%s (%d %s)", s.Rounded().StringFixed(1), s.Total, noun)
}
