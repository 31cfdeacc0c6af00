package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aimerfeng/PawPals/internal/config"
	"github.com/aimerfeng/PawPals/internal/models"
	"github.com/aimerfeng/PawPals/internal/search"
	"github.com/aimerfeng/PawPals/internal/store"
	"github.com/aimerfeng/PawPals/internal/ui"
	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type memStore struct {
	jobs    []models.JobPost
	users   []models.User
	reviews map[string][]models.Review
	err     error
}

var _ store.Store = (*memStore)(nil)

func (m *memStore) ListJobs(ctx context.Context, f store.JobFilter) ([]models.JobPost, error) {
	return m.jobs, m.err
}

func (m *memStore) ListHosts(ctx context.Context, f store.HostFilter) ([]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var hosts []models.User
	for _, u := range m.users {
		if u.Role.Host {
			hosts = append(hosts, u)
		}
	}
	return hosts, nil
}

func (m *memStore) GetUsers(ctx context.Context, uids []string) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		for _, uid := range uids {
			if u.UID == uid {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (m *memStore) ListReviews(ctx context.Context, providerID string) ([]models.Review, error) {
	return m.reviews[providerID], nil
}

func (m *memStore) GetJob(ctx context.Context, id uuid.UUID) (*models.JobPost, error) {
	for i := range m.jobs {
		if m.jobs[i].ID == id {
			return &m.jobs[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].UID == uid {
			return &m.users[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func newMemStore() *memStore {
	return &memStore{
		jobs: []models.JobPost{{
			ID:          uuid.New(),
			OwnerUID:    "owner-1",
			OwnerName:   "Olive",
			ServiceType: models.ServiceWalk,
			Location:    &models.Location{Lat: 30.28, Lng: -97.73},
			Rate:        "30",
			RateType:    models.RatePerHour,
			Breeds:      []string{"Pug"},
		}},
		users: []models.User{
			{UID: "owner-1", Name: "Olive", Role: models.Role{Owner: true}},
			{
				UID:            "host-1",
				Name:           "Hannah",
				Bio:            "Ten years of pack walks.",
				Role:           models.Role{Host: true},
				Services:       map[models.ServiceType]bool{models.ServiceWalk: true},
				AcceptedBreeds: []string{"Pug", "Husky"},
				Location:       &models.Location{Lat: 30.30, Lng: -97.70},
				Rate:           "20",
				RateType:       models.RatePerHour,
			},
		},
		reviews: map[string][]models.Review{
			"host-1": {
				{ProviderID: "host-1", Rating: 5, ReviewerName: "Sam", Comment: "Great with Biscuit"},
				{ProviderID: "host-1", Rating: 4, ReviewerName: "Lee"},
			},
		},
	}
}

type harness struct {
	ctx       *Context
	out, errs bytes.Buffer
	refreshed int
}

func newHarness(t *testing.T, st store.Store) *harness {
	t.Helper()
	h := &harness{}
	h.ctx = &Context{
		Out:       &h.out,
		Err:       &h.errs,
		UI:        ui.New(&h.out, &h.errs, ui.ColorNever, true),
		Config:    config.FileConfig{DefaultDistance: 5, DefaultFormat: "table"},
		ConfigDir: filepath.Join(t.TempDir(), config.DirName),
		Logger:    zerolog.Nop(),
		Version:   "1.2.3",
		Connect: func(ctx context.Context, cfg config.FileConfig) (*Backend, error) {
			return &Backend{
				Store: st,
				Refresh: func(ctx context.Context) (int64, error) {
					h.refreshed++
					return 7, nil
				},
			}, nil
		},
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	parser, err := kong.New(&CLI{}, kong.Vars{"version": h.ctx.Version}, kong.Exit(func(int) {}))
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(h.ctx)
}

func TestSearchCSVOrderedByPrice(t *testing.T) {
	h := newHarness(t, newMemStore())

	if err := h.run(t, "search", "--near", "30.27,-97.74", "-d", "10", "--sort", "highToLow", "-f", "csv"); err != nil {
		t.Fatalf("search error = %v", err)
	}

	rows, err := csv.NewReader(&h.out).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][5] != "30" || rows[2][5] != "20" {
		t.Errorf("expected prices 30 then 20, got %s then %s", rows[1][5], rows[2][5])
	}
	if rows[2][1] != "provider" || rows[2][7] != "4.50" {
		t.Errorf("unexpected provider row: %v", rows[2])
	}
}

func TestSearchFiltersByType(t *testing.T) {
	h := newHarness(t, newMemStore())

	if err := h.run(t, "search", "--near", "30.27,-97.74", "-t", "jobs", "-f", "json"); err != nil {
		t.Fatalf("search error = %v", err)
	}
	if strings.Contains(h.out.String(), "host-1") {
		t.Errorf("providers should be excluded:\n%s", h.out.String())
	}
}

func TestSearchTableFooter(t *testing.T) {
	h := newHarness(t, newMemStore())

	if err := h.run(t, "search", "--near", "30.27,-97.74"); err != nil {
		t.Fatalf("search error = %v", err)
	}
	out := h.out.String()
	if !strings.Contains(out, "Within 5 mi of") || !strings.Contains(out, "2 result(s)") {
		t.Errorf("unexpected table output:\n%s", out)
	}
}

func TestSearchFetchFailure(t *testing.T) {
	st := newMemStore()
	st.err = errors.New("connection refused")
	h := newHarness(t, st)

	err := h.run(t, "search", "--near", "30.27,-97.74")
	if !errors.Is(err, search.ErrFetchFailed) || !Reported(err) {
		t.Fatalf("expected a reported fetch failure, got %v", err)
	}
	if got := h.errs.String(); !strings.Contains(got, "Failed to load services. Please try again.") {
		t.Errorf("expected the user-facing message on stderr, got %q", got)
	}
	if h.out.Len() != 0 {
		t.Errorf("no results should be written on failure, got %q", h.out.String())
	}
}

func TestSearchRejectsBadFlags(t *testing.T) {
	h := newHarness(t, newMemStore())

	cases := [][]string{
		{"search", "--near", "95,10"},
		{"search", "--service", "swimming"},
		{"search", "--sort", "cheapest"},
		{"search", "-f", "xml"},
		{"search", "-d", "-1"},
		{"search", "-d", "NaN"},
		{"search", "-d", "Inf"},
	}
	for _, args := range cases {
		if err := h.run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestProvider(t *testing.T) {
	h := newHarness(t, newMemStore())

	if err := h.run(t, "provider", "host-1"); err != nil {
		t.Fatalf("provider error = %v", err)
	}
	out := h.out.String()
	for _, want := range []string{"Hannah", "4.5 (2 reviews)", "$20/hour", "Pug, Husky", "Great with Biscuit"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if err := h.run(t, "provider", "owner-1"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("non-host should be not found, got %v", err)
	}
}

func TestRefreshRatings(t *testing.T) {
	h := newHarness(t, newMemStore())

	if err := h.run(t, "refresh-ratings"); err != nil {
		t.Fatalf("refresh error = %v", err)
	}
	if h.refreshed != 1 || !strings.Contains(h.out.String(), "Refreshed 7 rating summaries") {
		t.Errorf("unexpected refresh output %q (calls %d)", h.out.String(), h.refreshed)
	}
}

func TestConfigInitAndPath(t *testing.T) {
	h := newHarness(t, newMemStore())

	if err := h.run(t, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.ctx.ConfigDir, config.ConfigFileName)); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if err := h.run(t, "config", "init"); err != nil {
		t.Fatalf("second config init error = %v", err)
	}
	if !strings.Contains(h.out.String(), "already initialized") {
		t.Errorf("second init should report existing config:\n%s", h.out.String())
	}

	h.out.Reset()
	if err := h.run(t, "config", "path"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(h.out.String()) != h.ctx.ConfigDir {
		t.Errorf("config path = %q, want %q", h.out.String(), h.ctx.ConfigDir)
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t, newMemStore())
	if err := h.run(t, "version"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(h.out.String()) != "1.2.3" {
		t.Errorf("version = %q", h.out.String())
	}
}

func TestReported(t *testing.T) {
	base := errors.New("boom")
	if Reported(base) {
		t.Error("plain errors are not reported")
	}
	wrapped := fmt.Errorf("search: %w", reportedError{base})
	if !Reported(wrapped) || !errors.Is(wrapped, base) {
		t.Error("reported errors must survive wrapping and unwrap to the cause")
	}
}

func TestConnectRequiresDatabase(t *testing.T) {
	if _, err := Connect(context.Background(), config.FileConfig{}); !errors.Is(err, errNoDatabase) {
		t.Errorf("expected errNoDatabase, got %v", err)
	}
}
