package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aimerfeng/PawPals/internal/models"
	"github.com/aimerfeng/PawPals/internal/monitoring"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobColumns = `id, owner_uid, owner_name, service_type, description,
	lat, lng, address, rate, rate_type, start_date, end_date, breeds,
	status, created_at, updated_at`

const userColumns = `uid, name, bio, photo_url, role_owner, role_host,
	services, service_rates, accepted_breeds, lat, lng, address, rate,
	rate_type, created_at, updated_at`

const reviewColumns = `id, provider_id, reviewer_id, reviewer_name, reviewer_photo,
	rating, comment, service_type, created_at`

// Postgres implements Store on a pgx pool
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a Postgres store
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

var _ Store = (*Postgres)(nil)

// ListJobs returns job posts, newest first
func (s *Postgres) ListJobs(ctx context.Context, f JobFilter) ([]models.JobPost, error) {
	defer observe("list_jobs", time.Now())

	var (
		where []string
		args  []any
	)
	if f.ServiceType != "" {
		args = append(args, string(f.ServiceType))
		where = append(where, fmt.Sprintf("service_type = $%d", len(args)))
	}
	if breeds := models.NormalizeBreeds(f.Breeds); len(breeds) > 0 {
		args = append(args, breeds)
		where = append(where, fmt.Sprintf("breeds && $%d", len(args)))
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.JobPost
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// ListHosts returns accounts flagged as hosts, oldest first
func (s *Postgres) ListHosts(ctx context.Context, f HostFilter) ([]models.User, error) {
	defer observe("list_hosts", time.Now())

	query := `SELECT ` + userColumns + ` FROM users WHERE role_host`
	var args []any
	if breeds := models.NormalizeBreeds(f.Breeds); len(breeds) > 0 {
		args = append(args, breeds)
		query += ` AND accepted_breeds && $1`
	}
	query += ` ORDER BY created_at, uid`

	return s.queryUsers(ctx, "hosts", query, args...)
}

// GetUsers resolves a batch of uids
func (s *Postgres) GetUsers(ctx context.Context, uids []string) ([]models.User, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	if len(uids) > MaxUserBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(uids), MaxUserBatch)
	}
	defer observe("get_users", time.Now())

	return s.queryUsers(ctx, "users", `SELECT `+userColumns+` FROM users WHERE uid = ANY($1)`, uids)
}

// GetUser returns one account
func (s *Postgres) GetUser(ctx context.Context, uid string) (*models.User, error) {
	defer observe("get_user", time.Now())

	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetJob returns one job post
func (s *Postgres) GetJob(ctx context.Context, id uuid.UUID) (*models.JobPost, error) {
	defer observe("get_job", time.Now())

	row := s.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListReviews returns every review of a provider, newest first
func (s *Postgres) ListReviews(ctx context.Context, providerID string) ([]models.Review, error) {
	defer observe("list_reviews", time.Now())

	rows, err := s.db.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE provider_id = $1
		ORDER BY created_at DESC
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var (
			r           models.Review
			serviceType string
		)
		err := rows.Scan(
			&r.ID, &r.ProviderID, &r.ReviewerID, &r.ReviewerName, &r.ReviewerPhoto,
			&r.Rating, &r.Comment, &serviceType, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		r.ServiceType = models.ServiceType(serviceType)
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

// GetRatingSummary returns the stored rating aggregate of a provider
func (s *Postgres) GetRatingSummary(ctx context.Context, providerID string) (*models.RatingSummary, error) {
	defer observe("get_rating_summary", time.Now())

	var rs models.RatingSummary
	err := s.db.QueryRow(ctx, `
		SELECT provider_id, average_rating, total_reviews, updated_at
		FROM rating_summaries
		WHERE provider_id = $1
	`, providerID).Scan(&rs.ProviderID, &rs.AverageRating, &rs.TotalReviews, &rs.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rating summary: %w", err)
	}
	return &rs, nil
}

func (s *Postgres) queryUsers(ctx context.Context, what, query string, args ...any) ([]models.User, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", what, err)
	}
	return users, nil
}

func scanJob(row pgx.Row) (*models.JobPost, error) {
	var (
		j                             models.JobPost
		lat, lng                      *float64
		address                       string
		serviceType, rateType, status string
	)
	err := row.Scan(
		&j.ID, &j.OwnerUID, &j.OwnerName, &serviceType, &j.Description,
		&lat, &lng, &address, &j.Rate, &rateType, &j.StartDate, &j.EndDate, &j.Breeds,
		&status, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.ServiceType = models.ServiceType(serviceType)
	j.RateType = models.ParseRateType(rateType)
	j.Status = models.JobStatus(status)
	j.Location = toLocation(lat, lng, address)
	return &j, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u        models.User
		lat, lng *float64
		address  string
		rateType string
	)
	err := row.Scan(
		&u.UID, &u.Name, &u.Bio, &u.PhotoURL, &u.Role.Owner, &u.Role.Host,
		&u.Services, &u.ServiceRates, &u.AcceptedBreeds, &lat, &lng, &address, &u.Rate,
		&rateType, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.RateType = models.ParseRateType(rateType)
	u.Location = toLocation(lat, lng, address)
	return &u, nil
}

// toLocation keeps a location only when both coordinates were stored
func toLocation(lat, lng *float64, address string) *models.Location {
	if lat == nil || lng == nil {
		return nil
	}
	return &models.Location{Lat: *lat, Lng: *lng, Address: address}
}

func observe(queryType string, start time.Time) {
	monitoring.RecordDBQuery(queryType, time.Since(start))
}
