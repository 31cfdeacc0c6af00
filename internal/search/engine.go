package search

import (
	"strings"

	"github.com/aimerfeng/PawPals/internal/geo"
	"github.com/aimerfeng/PawPals/internal/models"
	"github.com/aimerfeng/PawPals/internal/ratings"
	"github.com/shopspring/decimal"
)

// DefaultProviderRate is shown for hosts that never set a rate
const DefaultProviderRate = "25"

// Apply filters candidates and maps the survivors to SearchResults. Jobs
// come first, then providers, each in fetch order. A nil origin or a
// non-positive radius disables the distance filter; distances are still
// attached whenever an origin is known.
func Apply(c Candidates, f Filters, origin *geo.Point) []SearchResult {
	breeds := models.NormalizeBreeds(f.Breeds)
	results := make([]SearchResult, 0, len(c.Jobs)+len(c.Providers))

	if f.ResultType.IncludesJobs() {
		for i := range c.Jobs {
			job := &c.Jobs[i].Job
			if !job.Location.Usable() {
				continue
			}
			if f.ServiceType != "" && job.ServiceType != f.ServiceType {
				continue
			}
			if len(breeds) > 0 && !models.BreedsIntersect(job.Breeds, breeds) {
				continue
			}
			dist, ok := distance(origin, job.Location, f.DistanceMiles)
			if !ok {
				continue
			}
			r := jobResult(&c.Jobs[i])
			r.DistanceMiles = dist
			results = append(results, r)
		}
	}

	if f.ResultType.IncludesProviders() {
		for i := range c.Providers {
			p := &c.Providers[i].Profile
			if !p.Location.Usable() {
				continue
			}
			if f.ServiceType != "" && !p.Offers(f.ServiceType) {
				continue
			}
			if len(breeds) > 0 && !models.BreedsIntersect(p.AcceptedBreeds, breeds) {
				continue
			}
			dist, ok := distance(origin, p.Location, f.DistanceMiles)
			if !ok {
				continue
			}
			r := providerResult(&c.Providers[i])
			r.DistanceMiles = dist
			results = append(results, r)
		}
	}

	return results
}

// distance reports the miles from origin to loc and whether loc is inside
// the radius.
func distance(origin *geo.Point, loc *models.Location, radius float64) (*float64, bool) {
	if origin == nil {
		return nil, true
	}
	d := geo.DistanceMiles(*origin, geo.Point{Lat: loc.Lat, Lng: loc.Lng})
	if radius > 0 && d > radius {
		return nil, false
	}
	return &d, true
}

func jobResult(c *JobCandidate) SearchResult {
	j := &c.Job
	rateType := j.RateType
	if rateType == "" {
		rateType = models.RatePerHour
	}
	return SearchResult{
		ID:           j.ID.String(),
		DisplayName:  j.OwnerName,
		ServiceLabel: string(j.ServiceType),
		ServiceType:  j.ServiceType,
		Description:  j.Description,
		Location:     *j.Location,
		Price:        j.Rate,
		RateType:     rateType,
		PriceLabel:   PriceLabel(j.Rate, rateType),
		PhotoURL:     c.PosterPhoto,
		Breeds:       nonNil(j.Breeds),
		DetailsPath:  "/services/" + j.ID.String(),
	}
}

func providerResult(c *ProviderCandidate) SearchResult {
	p := &c.Profile
	price, rateType := HeadlinePrice(p)

	services := p.EnabledServices()
	labels := make([]string, len(services))
	for i, s := range services {
		labels[i] = string(s)
	}

	r := SearchResult{
		ID:           p.UID,
		IsProvider:   true,
		DisplayName:  p.Name,
		ServiceLabel: strings.Join(labels, ", "),
		Description:  p.Bio,
		Location:     *p.Location,
		Price:        price,
		RateType:     rateType,
		PriceLabel:   PriceLabel(price, rateType),
		PhotoURL:     p.PhotoURL,
		Breeds:       nonNil(p.AcceptedBreeds),
		DetailsPath:  "/providers/" + p.UID,
	}

	summary := ratings.Summarize(c.Reviews)
	if summary.HasRating() {
		total := summary.Total
		r.Rating = summary.Rating()
		r.TotalReviews = &total
	}
	return r
}

// HeadlinePrice picks the single rate shown for a provider: the lowest
// parseable per-service rate among enabled services, else the profile rate,
// else DefaultProviderRate per hour.
func HeadlinePrice(p *models.User) (string, models.RateType) {
	rateType := p.RateType
	if rateType == "" {
		rateType = models.RatePerHour
	}

	var (
		best    string
		bestVal decimal.Decimal
	)
	for _, s := range p.EnabledServices() {
		raw := strings.TrimSpace(p.ServiceRates[s])
		v, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		if best == "" || v.LessThan(bestVal) {
			best, bestVal = raw, v
		}
	}
	if best != "" {
		return best, rateType
	}
	if rate := strings.TrimSpace(p.Rate); rate != "" {
		return rate, rateType
	}
	return DefaultProviderRate, models.RatePerHour
}

// PriceLabel renders a rate for cards and markers, e.g. "$25/hour"
func PriceLabel(rate string, rateType models.RateType) string {
	if rateType == models.RateFixed {
		return "$" + rate + " fixed"
	}
	return "$" + rate + "/" + rateType.Unit()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
