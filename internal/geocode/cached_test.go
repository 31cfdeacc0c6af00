package geocode

import (
	"context"
	"os"
	"testing"

	"github.com/aimerfeng/PawPals/internal/cache"
	"github.com/aimerfeng/PawPals/internal/geo"
	"github.com/google/uuid"
)

type countingGeocoder struct {
	forward int
	reverse int
}

func (g *countingGeocoder) Forward(ctx context.Context, query string) (*Place, error) {
	g.forward++
	return &Place{Label: query, Point: geo.Point{Lat: 30.27, Lng: -97.74}}, nil
}

func (g *countingGeocoder) Reverse(ctx context.Context, p geo.Point) (*Place, error) {
	g.reverse++
	return &Place{Label: "Austin, Texas", Point: p}, nil
}

func TestNewCached_NilRedisReturnsNext(t *testing.T) {
	next := &countingGeocoder{}
	if got := NewCached(next, nil, 0); got != Geocoder(next) {
		t.Error("expected the wrapped geocoder when no cache is configured")
	}
}

func TestCached_ServesRepeatLookupsFromRedis(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := cache.NewRedis(ctx, url)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer r.Close()

	next := &countingGeocoder{}
	g := NewCached(next, r, 0)

	query := "Unique Street " + uuid.NewString()
	for i := 0; i < 3; i++ {
		place, err := g.Forward(ctx, query)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if place.Label != query {
			t.Errorf("unexpected label %q", place.Label)
		}
	}
	if next.forward != 1 {
		t.Errorf("expected one upstream lookup, got %d", next.forward)
	}

	// Nearby coordinates share a reverse cache entry but keep their own point
	p1 := geo.Point{Lat: 30.123412, Lng: -97.123412}
	p2 := geo.Point{Lat: 30.123414, Lng: -97.123414}
	if _, err := g.Reverse(ctx, p1); err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	place, err := g.Reverse(ctx, p2)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if place.Point != p2 {
		t.Errorf("expected point %v, got %v", p2, place.Point)
	}
	if next.reverse > 1 {
		t.Errorf("expected at most one reverse lookup, got %d", next.reverse)
	}
}
