package ratings

import (
	"math"
	"testing"

	"github.com/aimerfeng/PawPals/internal/models"
	"pgregory.net/rapid"
)

func reviewsWith(ratings ...int) []models.Review {
	out := make([]models.Review, len(ratings))
	for i, r := range ratings {
		out[i] = models.Review{Rating: r}
	}
	return out
}

func TestSummarize_MeanOfRatings(t *testing.T) {
	s := Summarize(reviewsWith(5, 4, 5))

	if s.Total != 3 {
		t.Errorf("expected 3 reviews, got %d", s.Total)
	}
	if math.Abs(s.Average-14.0/3.0) > 1e-12 {
		t.Errorf("expected 4.666..., got %f", s.Average)
	}
	if s.Label() != "4.7 (3 reviews)" {
		t.Errorf("unexpected label %q", s.Label())
	}
}

func TestSummarize_NoReviews(t *testing.T) {
	s := Summarize(nil)

	if s.HasRating() {
		t.Error("zero reviews must not have a rating")
	}
	if s.Rating() != nil {
		t.Error("expected nil rating")
	}
	if s.Label() != "No reviews yet" {
		t.Errorf("unexpected label %q", s.Label())
	}
}

func TestSummarize_SkipsInvalidLegacyRatings(t *testing.T) {
	s := Summarize(reviewsWith(0, 5, 9, 3))

	if s.Total != 2 || s.Average != 4 {
		t.Errorf("expected 2 reviews averaging 4, got %+v", s)
	}
}

func TestLabel_Singular(t *testing.T) {
	if got := Summarize(reviewsWith(5)).Label(); got != "5.0 (1 review)" {
		t.Errorf("unexpected label %q", got)
	}
}

// TestProperty_Summarize_IsMean checks the average equals the arithmetic mean
// and stays within the rating bounds
func TestProperty_Summarize_IsMean(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ratings := rapid.SliceOfN(rapid.IntRange(models.MinRating, models.MaxRating), 1, 50).Draw(rt, "ratings")

		s := Summarize(reviewsWith(ratings...))

		sum := 0
		for _, r := range ratings {
			sum += r
		}
		want := float64(sum) / float64(len(ratings))

		if s.Total != len(ratings) {
			rt.Fatalf("PROPERTY VIOLATION: total %d, want %d", s.Total, len(ratings))
		}
		if math.Abs(s.Average-want) > 1e-9 {
			rt.Fatalf("PROPERTY VIOLATION: average %f, want %f", s.Average, want)
		}
		if s.Average < models.MinRating || s.Average > models.MaxRating {
			rt.Fatalf("PROPERTY VIOLATION: average %f out of bounds", s.Average)
		}
		if r := s.Rating(); r == nil || *r != s.Average {
			rt.Fatalf("PROPERTY VIOLATION: Rating() must expose the unrounded average")
		}
	})
}

func TestFromStored(t *testing.T) {
	s := FromStored(&models.RatingSummary{ProviderID: "host-1", AverageRating: 4.25, TotalReviews: 4})
	if s.Total != 4 || s.Label() != "4.3 (4 reviews)" {
		t.Errorf("unexpected summary %+v %q", s, s.Label())
	}
	if FromStored(nil).HasRating() || FromStored(&models.RatingSummary{}).HasRating() {
		t.Error("empty stored summaries must read as no rating")
	}
}
