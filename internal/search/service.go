package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aimerfeng/PawPals/internal/geocode"
	"github.com/aimerfeng/PawPals/internal/location"
	"github.com/aimerfeng/PawPals/internal/logging"
	"github.com/aimerfeng/PawPals/internal/models"
	"github.com/aimerfeng/PawPals/internal/monitoring"
	"github.com/aimerfeng/PawPals/internal/ratings"
	"github.com/aimerfeng/PawPals/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultDistanceMiles is the radius used when a request names none
const DefaultDistanceMiles = 5

// ValidDistance reports whether d is a usable search radius in miles.
// Zero is allowed and means the default radius.
func ValidDistance(d float64) bool {
	return d >= 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

// Config tunes the service
type Config struct {
	EnrichConcurrency    int
	DefaultDistanceMiles float64
}

// Service is the search entry point
type Service struct {
	store       store.Store
	resolver    *location.Resolver
	fetcher     *Fetcher
	coordinator *Coordinator
	config      Config
	logger      zerolog.Logger
}

// NewService wires the pipeline stages. A nil geocoder disables free-text
// location lookup.
func NewService(st store.Store, g geocode.Geocoder, cfg Config) *Service {
	if cfg.DefaultDistanceMiles <= 0 || !ValidDistance(cfg.DefaultDistanceMiles) {
		cfg.DefaultDistanceMiles = DefaultDistanceMiles
	}
	return &Service{
		store:       st,
		resolver:    location.NewResolver(g),
		fetcher:     NewFetcher(st, cfg.EnrichConcurrency),
		coordinator: NewCoordinator(),
		config:      cfg,
		logger:      logging.NewLogger("search"),
	}
}

// Search resolves an origin, fetches and filters candidates and sorts the
// survivors. On a read failure it returns an empty response together with
// an error wrapping ErrFetchFailed. A search overtaken by a newer one in
// the same session returns ErrSuperseded and no results.
func (s *Service) Search(ctx context.Context, req Request, caps Capabilities) (*Response, error) {
	start := time.Now()
	ticket, ctx := s.coordinator.Begin(ctx, req.Session)
	defer ticket.Finish()

	if req.DistanceMiles <= 0 || !ValidDistance(req.DistanceMiles) {
		req.DistanceMiles = s.config.DefaultDistanceMiles
	}
	if req.ResultType == "" {
		req.ResultType = ResultAll
	}

	entry := &logging.SearchLogEntry{
		Session:       req.Session,
		Viewer:        caps.Viewer.UID,
		ServiceType:   string(req.ServiceType),
		ResultType:    string(req.ResultType),
		Breeds:        len(req.Breeds),
		DistanceMiles: req.DistanceMiles,
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		entry.RequestID = id
	}
	defer func() {
		entry.Latency = time.Since(start)
		logging.LogSearch(entry)
		monitoring.RecordSearch(entry.ResultType, entry.Status, entry.Results)
	}()

	resolveStart := time.Now()
	res := s.resolver.Resolve(ctx, location.Input{
		Point: req.Point,
		Label: req.Address,
		Query: req.Query,
	}, caps.Sensor)
	monitoring.RecordSearchStage("resolve", time.Since(resolveStart))
	entry.LocationSource = string(res.Source)

	resp := &Response{
		Results:        []SearchResult{},
		Origin:         res.Origin,
		LocationLabel:  res.Label,
		LocationSource: res.Source,
		DistanceMiles:  req.DistanceMiles,
		Advisories:     []string{},
	}
	if res.Advisory != "" {
		resp.Advisories = append(resp.Advisories, res.Advisory)
	}

	filters := req.Filters()
	candidates, err := s.fetcher.Fetch(ctx, FetchParams{
		ServiceType: filters.ServiceType,
		Breeds:      filters.Breeds,
		ResultType:  filters.ResultType,
	})
	if !ticket.Current() {
		entry.Status = "superseded"
		return nil, ErrSuperseded
	}
	if err != nil {
		entry.Status = "error"
		entry.Error = err.Error()
		return resp, err
	}
	entry.Jobs = len(candidates.Jobs)
	entry.Providers = len(candidates.Providers)

	engineStart := time.Now()
	results := Apply(candidates, filters, res.Origin)
	Sort(results, req.SortOrder)
	monitoring.RecordSearchStage("filter_sort", time.Since(engineStart))

	if !ticket.Current() {
		entry.Status = "superseded"
		return nil, ErrSuperseded
	}

	resp.Results = results
	resp.Total = len(results)
	entry.Results = resp.Total
	entry.Status = "ok"
	return resp, nil
}

type requestIDKey struct{}

// WithRequestID attaches a request id that Search includes in its log line
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// ProviderDetail is a host profile with its rating computed from reviews
type ProviderDetail struct {
	Profile     *models.User    `json:"profile"`
	Rating      ratings.Summary `json:"rating"`
	RatingLabel string          `json:"rating_label"`
	Price       string          `json:"price"`
	RateType    models.RateType `json:"rate_type"`
	PriceLabel  string          `json:"price_label"`
	Services    []string        `json:"services"`
	// RatingAsOf is set when Rating comes from the stored summary because
	// the reviews could not be read
	RatingAsOf *time.Time `json:"rating_as_of,omitempty"`
}

// Provider loads a host profile. Accounts that are not hosts are not found.
func (s *Service) Provider(ctx context.Context, uid string) (*ProviderDetail, error) {
	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !user.Role.Host {
		return nil, store.ErrNotFound
	}

	var (
		summary ratings.Summary
		asOf    *time.Time
	)
	reviews, err := s.store.ListReviews(ctx, uid)
	if err == nil {
		summary = ratings.Summarize(reviews)
	} else {
		stored, serr := s.storedSummary(ctx, uid)
		if serr != nil {
			return nil, fmt.Errorf("failed to load reviews: %w", err)
		}
		s.logger.Warn().Err(err).Str("provider_id", uid).Msg("Reviews unavailable, serving stored rating summary")
		summary = ratings.FromStored(stored)
		asOf = &stored.UpdatedAt
	}

	price, rateType := HeadlinePrice(user)
	services := make([]string, 0, len(user.Services))
	for _, t := range user.EnabledServices() {
		services = append(services, string(t))
	}

	return &ProviderDetail{
		Profile:     user,
		Rating:      summary,
		RatingLabel: summary.Label(),
		Price:       price,
		RateType:    rateType,
		PriceLabel:  PriceLabel(price, rateType),
		Services:    services,
		RatingAsOf:  asOf,
	}, nil
}

func (s *Service) storedSummary(ctx context.Context, uid string) (*models.RatingSummary, error) {
	reader, ok := s.store.(store.SummaryReader)
	if !ok {
		return nil, errors.New("store keeps no rating summaries")
	}
	return reader.GetRatingSummary(ctx, uid)
}

// Reviews returns a host's reviews, newest first
func (s *Service) Reviews(ctx context.Context, uid string) ([]models.Review, error) {
	if _, err := s.Provider(ctx, uid); err != nil {
		return nil, err
	}
	reviews, err := s.store.ListReviews(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// JobDetail is a job post with its poster's photo
type JobDetail struct {
	Job         *models.JobPost `json:"job"`
	PosterPhoto string          `json:"poster_photo,omitempty"`
	PriceLabel  string          `json:"price_label"`
}

// Job loads one job post. A poster that cannot be resolved leaves the
// photo empty.
func (s *Service) Job(ctx context.Context, id uuid.UUID) (*JobDetail, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &JobDetail{Job: job, PriceLabel: PriceLabel(job.Rate, job.RateType)}
	if job.OwnerUID == "" {
		return detail, nil
	}
	users, err := s.store.GetUsers(ctx, []string{job.OwnerUID})
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", id.String()).Msg("Poster lookup failed")
		return detail, nil
	}
	if len(users) > 0 {
		detail.PosterPhoto = users[0].PhotoURL
	}
	return detail, nil
}

// IsNotFound reports whether err means the requested record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
