package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aimerfeng/PawPals/internal/models"
	"github.com/aimerfeng/PawPals/internal/store"
	"github.com/google/uuid"
)

// fakeStore is an in-memory store that records how it was called
type fakeStore struct {
	jobs    []models.JobPost
	users   []models.User
	reviews map[string][]models.Review

	jobsErr    error
	hostsErr   error
	usersErr   error
	reviewsErr error

	// delay holds every call for the duration, honouring ctx
	delay time.Duration

	mu         sync.Mutex
	batchSizes []int
	inFlight   atomic.Int32
	maxFlight  atomic.Int32
}

var _ store.Store = (*fakeStore)(nil)

func (f *fakeStore) enter(ctx context.Context) (func(), error) {
	n := f.inFlight.Add(1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	done := func() { f.inFlight.Add(-1) }
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			done()
			return nil, ctx.Err()
		}
	}
	return done, nil
}

func (f *fakeStore) ListJobs(ctx context.Context, flt store.JobFilter) ([]models.JobPost, error) {
	done, err := f.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	if f.jobsErr != nil {
		return nil, f.jobsErr
	}
	var out []models.JobPost
	for _, j := range f.jobs {
		if flt.ServiceType != "" && j.ServiceType != flt.ServiceType {
			continue
		}
		if len(flt.Breeds) > 0 && !models.BreedsIntersect(j.Breeds, flt.Breeds) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeStore) ListHosts(ctx context.Context, flt store.HostFilter) ([]models.User, error) {
	done, err := f.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	if f.hostsErr != nil {
		return nil, f.hostsErr
	}
	var out []models.User
	for _, u := range f.users {
		if !u.Role.Host {
			continue
		}
		if len(flt.Breeds) > 0 && !models.BreedsIntersect(u.AcceptedBreeds, flt.Breeds) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) GetUsers(ctx context.Context, uids []string) ([]models.User, error) {
	done, err := f.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	f.mu.Lock()
	f.batchSizes = append(f.batchSizes, len(uids))
	f.mu.Unlock()

	if len(uids) > store.MaxUserBatch {
		return nil, store.ErrBatchTooLarge
	}
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	var out []models.User
	for _, uid := range uids {
		for _, u := range f.users {
			if u.UID == uid {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListReviews(ctx context.Context, providerID string) ([]models.Review, error) {
	done, err := f.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	if f.reviewsErr != nil {
		return nil, f.reviewsErr
	}
	return f.reviews[providerID], nil
}

func (f *fakeStore) GetJob(ctx context.Context, id uuid.UUID) (*models.JobPost, error) {
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			j := f.jobs[i]
			return &j, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].UID == uid {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func loc(lat, lng float64) *models.Location {
	return &models.Location{Lat: lat, Lng: lng}
}

func job(rate string, svc models.ServiceType, at *models.Location, breeds ...string) models.JobPost {
	return models.JobPost{
		ID:          uuid.New(),
		OwnerUID:    "owner-1",
		OwnerName:   "Olive",
		ServiceType: svc,
		Location:    at,
		Rate:        rate,
		RateType:    models.RatePerHour,
		Breeds:      breeds,
		Status:      models.JobStatusOpen,
	}
}

func host(uid string, at *models.Location, services ...models.ServiceType) models.User {
	enabled := make(map[models.ServiceType]bool, len(services))
	for _, s := range services {
		enabled[s] = true
	}
	return models.User{
		UID:      uid,
		Name:     "Host " + uid,
		Role:     models.Role{Host: true},
		Services: enabled,
		Location: at,
	}
}

func reviewsOf(provider string, ratings ...int) []models.Review {
	out := make([]models.Review, len(ratings))
	for i, r := range ratings {
		out[i] = models.Review{ID: uuid.New(), ProviderID: provider, Rating: r}
	}
	return out
}
