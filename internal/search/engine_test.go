package search

import (
	"math"
	"testing"

	"github.com/aimerfeng/PawPals/internal/geo"
	"github.com/aimerfeng/PawPals/internal/models"
	"pgregory.net/rapid"
)

var austin = geo.Point{Lat: 30.27, Lng: -97.74}

func TestApply_RadiusFilter(t *testing.T) {
	c := Candidates{Providers: []ProviderCandidate{
		{Profile: host("near", loc(30.30, -97.70), models.ServiceWalk)},
		{Profile: host("far", loc(31.0, -97.74), models.ServiceWalk)},
	}}

	got := Apply(c, Filters{DistanceMiles: 10, ResultType: ResultAll}, &austin)
	if len(got) != 1 || got[0].ID != "near" {
		t.Fatalf("expected only the nearby provider, got %+v", got)
	}
	if got[0].DistanceMiles == nil || *got[0].DistanceMiles > 4 {
		t.Errorf("expected distance of about 3 miles, got %v", got[0].DistanceMiles)
	}
}

func TestApply_BreedFilterUsesAnyMatch(t *testing.T) {
	pug := job("20", models.ServiceWalk, loc(30.27, -97.74), "Pug", "Beagle")
	husky := job("20", models.ServiceWalk, loc(30.27, -97.74), "Husky")
	c := Candidates{Jobs: []JobCandidate{{Job: pug}, {Job: husky}}}

	got := Apply(c, Filters{Breeds: []string{"Pug"}, ResultType: ResultAll}, nil)
	if len(got) != 1 || got[0].ID != pug.ID.String() {
		t.Fatalf("expected only the Pug job, got %+v", got)
	}

	got = Apply(c, Filters{Breeds: []string{"Pug", "Husky"}, ResultType: ResultAll}, nil)
	if len(got) != 2 {
		t.Errorf("any selected breed should match, got %d results", len(got))
	}
}

func TestApply_ProviderRating(t *testing.T) {
	c := Candidates{Providers: []ProviderCandidate{
		{Profile: host("rated", loc(30.27, -97.74), models.ServiceWalk), Reviews: reviewsOf("rated", 5, 4, 5)},
		{Profile: host("new", loc(30.27, -97.74), models.ServiceWalk)},
	}}

	got := Apply(c, Filters{ResultType: ResultAll}, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Rating == nil || math.Abs(*got[0].Rating-14.0/3.0) > 1e-9 {
		t.Errorf("expected average 4.666..., got %v", got[0].Rating)
	}
	if got[0].TotalReviews == nil || *got[0].TotalReviews != 3 {
		t.Errorf("expected 3 reviews, got %v", got[0].TotalReviews)
	}
	if got[1].Rating != nil || got[1].TotalReviews != nil {
		t.Error("a provider without reviews must carry no rating")
	}
}

func TestApply_ResultTypeJobsExcludesProviders(t *testing.T) {
	c := Candidates{
		Jobs:      []JobCandidate{{Job: job("15", models.ServiceWalk, loc(30.27, -97.74))}},
		Providers: []ProviderCandidate{{Profile: host("h", loc(30.27, -97.74), models.ServiceWalk)}},
	}

	for _, r := range Apply(c, Filters{ResultType: ResultJobs}, &austin) {
		if r.IsProvider {
			t.Fatalf("provider %s leaked into a jobs-only search", r.ID)
		}
	}
	for _, r := range Apply(c, Filters{ResultType: ResultProviders}, nil) {
		if !r.IsProvider {
			t.Fatalf("job %s leaked into a providers-only search", r.ID)
		}
	}
}

func TestApply_ServiceTypeFilter(t *testing.T) {
	c := Candidates{
		Jobs: []JobCandidate{
			{Job: job("15", models.ServiceWalk, loc(30.27, -97.74))},
			{Job: job("40", models.ServiceBoarding, loc(30.27, -97.74))},
		},
		Providers: []ProviderCandidate{
			{Profile: host("walker", loc(30.27, -97.74), models.ServiceWalk)},
			{Profile: host("sitter", loc(30.27, -97.74), models.ServiceHouseSitting)},
		},
	}

	got := Apply(c, Filters{ServiceType: models.ServiceWalk, ResultType: ResultAll}, nil)
	if len(got) != 2 {
		t.Fatalf("expected one job and one provider, got %+v", got)
	}
	if got[0].IsProvider || got[0].ServiceType != models.ServiceWalk {
		t.Errorf("expected walk job first, got %+v", got[0])
	}
	if got[1].ID != "walker" {
		t.Errorf("expected walker provider, got %s", got[1].ID)
	}
}

func TestApply_Normalization(t *testing.T) {
	p := host("multi", loc(30.27, -97.74), models.ServiceWalk, models.ServiceBoarding, models.ServiceTraining)
	p.ServiceRates = map[models.ServiceType]string{
		models.ServiceWalk:     "30",
		models.ServiceBoarding: "18.50",
		models.ServiceDaycare:  "5",
		models.ServiceTraining: "n/a",
	}
	p.Bio = "Loves dogs"

	j := job("22", models.ServiceDropIn, loc(30.27, -97.74))
	j.RateType = models.RateFixed

	got := Apply(Candidates{
		Jobs:      []JobCandidate{{Job: j, PosterPhoto: "https://img/olive.png"}},
		Providers: []ProviderCandidate{{Profile: p}},
	}, Filters{ResultType: ResultAll}, nil)

	if got[0].PriceLabel != "$22 fixed" || got[0].PhotoURL != "https://img/olive.png" {
		t.Errorf("unexpected job normalization: %+v", got[0])
	}
	if got[0].DetailsPath != "/services/"+j.ID.String() {
		t.Errorf("unexpected job details path %s", got[0].DetailsPath)
	}

	prov := got[1]
	if prov.Price != "18.50" {
		t.Errorf("headline price should be the lowest enabled rate, got %s", prov.Price)
	}
	if prov.ServiceLabel != "walk, boarding, training" {
		t.Errorf("unexpected service label %q", prov.ServiceLabel)
	}
	if prov.Description != "Loves dogs" || prov.DetailsPath != "/providers/multi" {
		t.Errorf("unexpected provider normalization: %+v", prov)
	}
	if prov.DistanceMiles != nil {
		t.Error("distance must be absent without an origin")
	}
}

func TestHeadlinePrice_Fallbacks(t *testing.T) {
	p := host("plain", loc(30.27, -97.74), models.ServiceWalk)
	if price, rt := HeadlinePrice(&p); price != DefaultProviderRate || rt != models.RatePerHour {
		t.Errorf("expected default rate, got %s %s", price, rt)
	}

	p.Rate = "35"
	p.RateType = models.RatePerDay
	if price, rt := HeadlinePrice(&p); price != "35" || rt != models.RatePerDay {
		t.Errorf("expected profile rate, got %s %s", price, rt)
	}
	if label := PriceLabel("35", models.RatePerDay); label != "$35/day" {
		t.Errorf("unexpected label %s", label)
	}
}

func genCandidates(t *rapid.T) Candidates {
	catalogue := models.Breeds.All()
	genLoc := rapid.Custom(func(t *rapid.T) *models.Location {
		if rapid.IntRange(0, 5).Draw(t, "missing") == 0 {
			return nil
		}
		return loc(
			rapid.Float64Range(29.5, 31.0).Draw(t, "lat"),
			rapid.Float64Range(-98.5, -97.0).Draw(t, "lng"),
		)
	})

	var c Candidates
	for i, n := 0, rapid.IntRange(0, 8).Draw(t, "jobs"); i < n; i++ {
		breeds := rapid.SliceOfN(rapid.SampledFrom(catalogue), 0, 3).Draw(t, "jobBreeds")
		svc := rapid.SampledFrom(models.AllServiceTypes).Draw(t, "jobService")
		c.Jobs = append(c.Jobs, JobCandidate{Job: job("20", svc, genLoc.Draw(t, "jobLoc"), breeds...)})
	}
	for i, n := 0, rapid.IntRange(0, 8).Draw(t, "providers"); i < n; i++ {
		svcs := rapid.SliceOfN(rapid.SampledFrom(models.AllServiceTypes), 0, 3).Draw(t, "providerServices")
		p := host(rapid.StringMatching(`[a-z]{6}`).Draw(t, "uid"), genLoc.Draw(t, "providerLoc"), svcs...)
		p.AcceptedBreeds = rapid.SliceOfN(rapid.SampledFrom(catalogue), 0, 3).Draw(t, "acceptedBreeds")
		c.Providers = append(c.Providers, ProviderCandidate{Profile: p})
	}
	return c
}

// TestProperty_Apply_FilterInvariants checks that every survivor has a
// location, is inside the radius and shares a selected breed
func TestProperty_Apply_FilterInvariants(t *testing.T) {
	catalogue := models.Breeds.All()

	rapid.Check(t, func(t *rapid.T) {
		c := genCandidates(t)
		radius := rapid.Float64Range(1, 60).Draw(t, "radius")
		selected := rapid.SliceOfN(rapid.SampledFrom(catalogue), 0, 3).Draw(t, "selected")
		f := Filters{Breeds: selected, DistanceMiles: radius, ResultType: ResultAll}

		for _, r := range Apply(c, f, &austin) {
			if r.Location.Lat == 0 || r.Location.Lng == 0 {
				t.Fatalf("PROPERTY VIOLATION: result %s has no location", r.ID)
			}
			if d := geo.DistanceMiles(austin, r.Point()); d > radius+1e-9 {
				t.Fatalf("PROPERTY VIOLATION: result %s is %.3f mi away, radius %.3f", r.ID, d, radius)
			}
			if len(models.NormalizeBreeds(selected)) > 0 && !models.BreedsIntersect(r.Breeds, selected) {
				t.Fatalf("PROPERTY VIOLATION: result %s breeds %v miss %v", r.ID, r.Breeds, selected)
			}
		}
	})
}

// TestProperty_Apply_EmptyBreedsIsNoFilter checks that filtering by no
// breeds matches not filtering at all
func TestProperty_Apply_EmptyBreedsIsNoFilter(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genCandidates(t)
		a := Apply(c, Filters{ResultType: ResultAll}, nil)
		b := Apply(c, Filters{Breeds: []string{}, ResultType: ResultAll}, nil)
		if len(a) != len(b) {
			t.Fatalf("PROPERTY VIOLATION: empty breed selection changed result count %d -> %d", len(a), len(b))
		}
		for i := range a {
			if a[i].ID != b[i].ID {
				t.Fatalf("PROPERTY VIOLATION: empty breed selection changed order at %d", i)
			}
		}
	})
}

// TestProperty_Apply_Deterministic checks identical inputs give identical output
func TestProperty_Apply_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genCandidates(t)
		f := Filters{DistanceMiles: 25, ResultType: ResultAll}
		a := Apply(c, f, &austin)
		b := Apply(c, f, &austin)
		if len(a) != len(b) {
			t.Fatalf("PROPERTY VIOLATION: non-deterministic result count")
		}
		for i := range a {
			if a[i].ID != b[i].ID || a[i].PriceLabel != b[i].PriceLabel {
				t.Fatalf("PROPERTY VIOLATION: non-deterministic result at %d", i)
			}
		}
	})
}
