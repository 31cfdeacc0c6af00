package location

import (
	"context"
	"errors"
	"testing"

	"github.com/aimerfeng/PawPals/internal/geo"
	"github.com/aimerfeng/PawPals/internal/geocode"
)

type fakeGeocoder struct {
	place   *geocode.Place
	err     error
	forward int
	reverse int
}

func (f *fakeGeocoder) Forward(ctx context.Context, query string) (*geocode.Place, error) {
	f.forward++
	if f.err != nil {
		return nil, f.err
	}
	return f.place, nil
}

func (f *fakeGeocoder) Reverse(ctx context.Context, p geo.Point) (*geocode.Place, error) {
	f.reverse++
	if f.err != nil {
		return nil, f.err
	}
	return &geocode.Place{Label: f.place.Label, Point: p}, nil
}

var austin = geo.Point{Lat: 30.27, Lng: -97.74}

func TestResolve_ExplicitPointWins(t *testing.T) {
	g := &fakeGeocoder{place: &geocode.Place{Label: "Dallas", Point: geo.Point{Lat: 32.77, Lng: -96.79}}}
	r := NewResolver(g)

	res := r.Resolve(context.Background(), Input{Point: &austin, Label: "Downtown Austin", Query: "Dallas"}, StaticSensor{Point: austin})

	if res.Source != SourceExplicit {
		t.Fatalf("expected explicit source, got %s", res.Source)
	}
	if res.Origin == nil || *res.Origin != austin {
		t.Errorf("expected origin %v, got %v", austin, res.Origin)
	}
	if res.Label != "Downtown Austin" {
		t.Errorf("unexpected label %q", res.Label)
	}
	if g.forward+g.reverse != 0 {
		t.Error("explicit coordinates must not trigger a lookup")
	}
}

func TestResolve_ExplicitPointWithoutLabel(t *testing.T) {
	res := NewResolver(nil).Resolve(context.Background(), Input{Point: &austin}, nil)
	if res.Label != austin.String() {
		t.Errorf("expected formatted coordinates as label, got %q", res.Label)
	}
}

func TestResolve_GeocodedFirstMatch(t *testing.T) {
	g := &fakeGeocoder{place: &geocode.Place{Label: "Austin, Texas", Point: austin}}
	res := NewResolver(g).Resolve(context.Background(), Input{Query: "Austin"}, nil)

	if res.Source != SourceGeocoded || res.Origin == nil || *res.Origin != austin {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if res.Advisory != "" {
		t.Errorf("unexpected advisory %q", res.Advisory)
	}
	if g.forward != 1 {
		t.Errorf("expected one lookup, got %d", g.forward)
	}
}

func TestResolve_GeocodeFailuresBecomeAdvisories(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{geocode.ErrNoMatch, AdvisoryNoMatch},
		{geocode.ErrQueryTooShort, AdvisoryQueryTooShort},
		{geocode.ErrNotConfigured, AdvisoryLookupUnavailable},
		{geocode.ErrCircuitOpen, AdvisoryLookupUnavailable},
		{errors.New("boom"), AdvisoryLookupUnavailable},
	}
	for _, tc := range cases {
		g := &fakeGeocoder{err: tc.err}
		res := NewResolver(g).Resolve(context.Background(), Input{Query: "Somewhere"}, StaticSensor{Point: austin})

		if res.Origin != nil {
			t.Errorf("%v: expected no origin, got %v", tc.err, res.Origin)
		}
		if res.Source != SourceNone {
			t.Errorf("%v: expected source none, got %s", tc.err, res.Source)
		}
		if res.Advisory != tc.want {
			t.Errorf("%v: expected advisory %q, got %q", tc.err, tc.want, res.Advisory)
		}
		if g.forward != 1 || g.reverse != 0 {
			t.Errorf("%v: expected exactly one lookup, got forward=%d reverse=%d", tc.err, g.forward, g.reverse)
		}
	}
}

func TestResolve_SensorReverseGeocodesLabel(t *testing.T) {
	g := &fakeGeocoder{place: &geocode.Place{Label: "East Austin, Texas"}}
	res := NewResolver(g).Resolve(context.Background(), Input{}, StaticSensor{Point: austin})

	if res.Source != SourceSensor || res.Origin == nil || *res.Origin != austin {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if res.Label != "East Austin, Texas" {
		t.Errorf("unexpected label %q", res.Label)
	}
	if g.forward != 0 || g.reverse != 1 {
		t.Errorf("expected one reverse lookup, got forward=%d reverse=%d", g.forward, g.reverse)
	}
}

func TestResolve_SensorLabelFailureKeepsOrigin(t *testing.T) {
	g := &fakeGeocoder{err: geocode.ErrUpstream}
	res := NewResolver(g).Resolve(context.Background(), Input{}, StaticSensor{Point: austin})

	if res.Origin == nil || *res.Origin != austin {
		t.Fatalf("expected origin to survive label failure, got %+v", res)
	}
	if res.Label != austin.String() {
		t.Errorf("expected coordinate label, got %q", res.Label)
	}
	if res.Advisory != "" {
		t.Errorf("label failure must not produce an advisory, got %q", res.Advisory)
	}
}

func TestResolve_SensorFailures(t *testing.T) {
	r := NewResolver(nil)

	denied := r.Resolve(context.Background(), Input{}, StaticSensor{Err: ErrSensorDenied})
	if denied.Origin != nil || denied.Advisory != AdvisorySensorDenied {
		t.Errorf("unexpected denied resolution %+v", denied)
	}

	unavailable := r.Resolve(context.Background(), Input{}, HeaderSensor("not-a-point"))
	if unavailable.Origin != nil || unavailable.Advisory != AdvisorySensorUnavailable {
		t.Errorf("unexpected unavailable resolution %+v", unavailable)
	}
}

func TestResolve_NothingProvided(t *testing.T) {
	res := NewResolver(nil).Resolve(context.Background(), Input{}, nil)
	if res.Origin != nil || res.Source != SourceNone || res.Advisory != "" {
		t.Errorf("expected silent no-origin resolution, got %+v", res)
	}
}

func TestResolve_InvalidExplicitPoint(t *testing.T) {
	bad := geo.Point{Lat: 120, Lng: 0}
	res := NewResolver(nil).Resolve(context.Background(), Input{Point: &bad}, nil)
	if res.Origin != nil || res.Advisory != AdvisoryInvalidPoint {
		t.Errorf("unexpected resolution %+v", res)
	}
}

func TestHeaderSensor(t *testing.T) {
	p, err := HeaderSensor(" 30.27, -97.74 ").CurrentPosition(context.Background())
	if err != nil || p != austin {
		t.Errorf("expected %v, got %v (%v)", austin, p, err)
	}
	if _, err := HeaderSensor("denied").CurrentPosition(context.Background()); !errors.Is(err, ErrSensorDenied) {
		t.Errorf("expected ErrSensorDenied, got %v", err)
	}
	if _, err := HeaderSensor("91,0").CurrentPosition(context.Background()); !errors.Is(err, ErrSensorUnavailable) {
		t.Errorf("expected ErrSensorUnavailable, got %v", err)
	}
}
