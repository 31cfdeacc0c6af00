// Package store reads jobs, provider accounts and reviews from Postgres.
package store

import (
	"context"
	"errors"

	"github.com/aimerfeng/PawPals/internal/models"
	"github.com/google/uuid"
)

// MaxUserBatch is the largest number of uids resolved in one GetUsers call
const MaxUserBatch = 10

// Store errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrBatchTooLarge = errors.New("too many ids in one batch")
)

// JobFilter narrows the job query. Empty fields do not filter.
type JobFilter struct {
	ServiceType models.ServiceType
	// Breeds matches jobs sharing at least one tag
	Breeds []string
}

// HostFilter narrows the provider query. Empty fields do not filter.
type HostFilter struct {
	Breeds []string
}

// Store is the read side the search pipeline depends on
type Store interface {
	ListJobs(ctx context.Context, f JobFilter) ([]models.JobPost, error)
	ListHosts(ctx context.Context, f HostFilter) ([]models.User, error)
	// GetUsers resolves up to MaxUserBatch uids; unknown uids are omitted
	GetUsers(ctx context.Context, uids []string) ([]models.User, error)
	// ListReviews returns a provider's reviews, newest first
	ListReviews(ctx context.Context, providerID string) ([]models.Review, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.JobPost, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// SummaryReader is implemented by stores that keep the denormalized
// rating_summaries table written by the rating refresher
type SummaryReader interface {
	GetRatingSummary(ctx context.Context, providerID string) (*models.RatingSummary, error)
}
