package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aimerfeng/PawPals/internal/logging"
	"github.com/aimerfeng/PawPals/internal/models"
	"github.com/aimerfeng/PawPals/internal/monitoring"
	"github.com/aimerfeng/PawPals/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrFetchFailed is returned when any candidate read fails. No partial
// candidates accompany it.
var ErrFetchFailed = errors.New("failed to load services, try again")

// DefaultEnrichConcurrency caps in-flight enrichment lookups
const DefaultEnrichConcurrency = 8

// FetchParams narrows the candidate queries
type FetchParams struct {
	ServiceType models.ServiceType
	Breeds      []string
	ResultType  ResultType
}

// Fetcher reads and enriches candidates from the store
type Fetcher struct {
	store       store.Store
	concurrency int
	logger      zerolog.Logger
}

// NewFetcher creates a fetcher. Concurrency below one uses the default.
func NewFetcher(s store.Store, concurrency int) *Fetcher {
	if concurrency < 1 {
		concurrency = DefaultEnrichConcurrency
	}
	return &Fetcher{
		store:       s,
		concurrency: concurrency,
		logger:      logging.NewLogger("fetcher"),
	}
}

// Fetch queries both streams, drops candidates that cannot be placed on a
// map, then joins poster photos and provider reviews. Enrichment lookups run
// concurrently and are awaited together before Fetch returns.
func (f *Fetcher) Fetch(ctx context.Context, p FetchParams) (Candidates, error) {
	start := time.Now()
	defer func() { monitoring.RecordSearchStage("fetch", time.Since(start)) }()

	jobs, hosts, err := f.query(ctx, p)
	if err != nil {
		return Candidates{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	jobs = f.placeableJobs(jobs)
	hosts = f.placeableHosts(hosts)

	candidates, err := f.enrich(ctx, jobs, hosts)
	if err != nil {
		return Candidates{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return candidates, nil
}

func (f *Fetcher) query(ctx context.Context, p FetchParams) ([]models.JobPost, []models.User, error) {
	var (
		jobs  []models.JobPost
		hosts []models.User
	)
	g, gctx := errgroup.WithContext(ctx)

	if p.ResultType.IncludesJobs() {
		g.Go(func() error {
			var err error
			jobs, err = f.store.ListJobs(gctx, store.JobFilter{ServiceType: p.ServiceType, Breeds: p.Breeds})
			return err
		})
	}
	if p.ResultType.IncludesProviders() {
		g.Go(func() error {
			var err error
			hosts, err = f.store.ListHosts(gctx, store.HostFilter{Breeds: p.Breeds})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	monitoring.RecordCandidates("job", "fetched", len(jobs))
	monitoring.RecordCandidates("provider", "fetched", len(hosts))
	return jobs, hosts, nil
}

func (f *Fetcher) placeableJobs(jobs []models.JobPost) []models.JobPost {
	kept := jobs[:0]
	for _, j := range jobs {
		if !j.Location.Usable() {
			f.logger.Debug().Str("job_id", j.ID.String()).Msg("Dropping job without location")
			continue
		}
		kept = append(kept, j)
	}
	monitoring.RecordCandidates("job", "placeable", len(kept))
	return kept
}

func (f *Fetcher) placeableHosts(hosts []models.User) []models.User {
	kept := hosts[:0]
	for _, h := range hosts {
		if !h.Location.Usable() {
			f.logger.Debug().Str("uid", h.UID).Msg("Dropping provider without location")
			continue
		}
		kept = append(kept, h)
	}
	monitoring.RecordCandidates("provider", "placeable", len(kept))
	return kept
}

// enrich fans out one lookup per batch of posters and one per provider.
// Each goroutine writes only its own slot, so no locking is needed.
func (f *Fetcher) enrich(ctx context.Context, jobs []models.JobPost, hosts []models.User) (Candidates, error) {
	start := time.Now()
	defer func() { monitoring.RecordSearchStage("enrich", time.Since(start)) }()

	batches := posterBatches(jobs)
	posters := make([][]models.User, len(batches))
	reviews := make([][]models.Review, len(hosts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			users, err := f.store.GetUsers(gctx, batch)
			if err != nil {
				return fmt.Errorf("poster lookup: %w", err)
			}
			posters[i] = users
			return nil
		})
	}
	for i := range hosts {
		i := i
		uid := hosts[i].UID
		g.Go(func() error {
			rs, err := f.store.ListReviews(gctx, uid)
			if err != nil {
				return fmt.Errorf("reviews of %s: %w", uid, err)
			}
			reviews[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Candidates{}, err
	}

	photos := make(map[string]string)
	for _, batch := range posters {
		for _, u := range batch {
			photos[u.UID] = u.PhotoURL
		}
	}

	out := Candidates{
		Jobs:      make([]JobCandidate, len(jobs)),
		Providers: make([]ProviderCandidate, len(hosts)),
	}
	for i, j := range jobs {
		out.Jobs[i] = JobCandidate{Job: j, PosterPhoto: photos[j.OwnerUID]}
	}
	for i, h := range hosts {
		out.Providers[i] = ProviderCandidate{Profile: h, Reviews: reviews[i]}
	}
	return out, nil
}

// posterBatches groups the distinct poster uids of jobs into chunks of at
// most store.MaxUserBatch, in first-seen order.
func posterBatches(jobs []models.JobPost) [][]string {
	seen := make(map[string]struct{}, len(jobs))
	var uids []string
	for _, j := range jobs {
		if j.OwnerUID == "" {
			continue
		}
		if _, ok := seen[j.OwnerUID]; ok {
			continue
		}
		seen[j.OwnerUID] = struct{}{}
		uids = append(uids, j.OwnerUID)
	}

	var batches [][]string
	for len(uids) > 0 {
		n := min(len(uids), store.MaxUserBatch)
		batches = append(batches, uids[:n:n])
		uids = uids[n:]
	}
	return batches
}
