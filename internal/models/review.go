package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// ErrInvalidRating is returned for ratings outside 1-5
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Review represents feedback left by a user about a provider. Reviews are
// immutable once created and reference the provider by id only.
type Review struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	ProviderID    string      `json:"provider_id" db:"provider_id"`
	ReviewerID    string      `json:"reviewer_id" db:"reviewer_id"`
	ReviewerName  string      `json:"reviewer_name" db:"reviewer_name"`
	ReviewerPhoto string      `json:"reviewer_photo,omitempty" db:"reviewer_photo"`
	Rating        int         `json:"rating" db:"rating"`
	Comment       string      `json:"comment" db:"comment"`
	ServiceType   ServiceType `json:"service_type" db:"service_type"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}

// Validate checks the rating range
func (r *Review) Validate() error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// RatingSummary is the denormalized rating aggregate written by the rating
// refresher. Provider detail falls back to it when reviews cannot be read;
// search never uses it.
type RatingSummary struct {
	ProviderID    string    `json:"provider_id" db:"provider_id"`
	AverageRating float64   `json:"average_rating" db:"average_rating"`
	TotalReviews  int       `json:"total_reviews" db:"total_reviews"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
