package usecase

import (
	"math"
	"testing"

	"github.com/pricelens/engine/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStoreTrust(t *testing.T) {
	testCases := []struct {
		store string
		want  float64
	}{
		{store: "amazon", want: 0.90},
		{store: "Amazon", want: 0.90},
		{store: "noon", want: 0.85},
		{store: "jumia", want: 0.80},
		{store: "btech", want: 0.75},
		{store: "souq", want: 0.70},
		{store: "2b", want: 0.65},
		{store: "corner-shop", want: 0.30},
		{store: "", want: 0.30},
	}

	for _, tc := range testCases {
		t.Run(tc.store, func(t *testing.T) {
			if got := StoreTrust(tc.store); got != tc.want {
				t.Errorf("StoreTrust(%q) = %v, want %v", tc.store, got, tc.want)
			}
		})
	}
}

func TestConfidenceScore(t *testing.T) {
	s := NewScorer(ScorerConfig{})

	t.Run("weighted combination of the four components", func(t *testing.T) {
		signals := domain.ExtractedSignals{Confidence: 0.8}
		breakdown := s.ConfidenceScore(signals, 0.9, "amazon", nil)

		// 0.8*0.3 + 0.9*0.3 + 0.9*0.2 + 0.5*0.2
		if !almostEqual(breakdown.Overall, 0.79) {
			t.Errorf("Overall = %v, want 0.79", breakdown.Overall)
		}
		if breakdown.TrustScore != 0.9 {
			t.Errorf("TrustScore = %v, want 0.9", breakdown.TrustScore)
		}
		if breakdown.ConsistencyScore != 0.5 {
			t.Errorf("ConsistencyScore = %v, want 0.5 neutral without comparisons", breakdown.ConsistencyScore)
		}
	})

	t.Run("condition flags bump trust clipped at 1", func(t *testing.T) {
		signals := domain.ExtractedSignals{
			Confidence: 0.8,
			Conditions: domain.ConditionFlags{IsNew: true, HasWarranty: true, IsOfficial: true},
		}
		breakdown := s.ConfidenceScore(signals, 0.9, "amazon", nil)
		if breakdown.TrustScore != 1.0 {
			t.Errorf("TrustScore = %v, want 1.0 (0.9 + three bumps, clipped)", breakdown.TrustScore)
		}
	})

	t.Run("consistency engages with enough comparison prices", func(t *testing.T) {
		signals := domain.ExtractedSignals{Confidence: 0.8, BestPrice: 45000}
		breakdown := s.ConfidenceScore(signals, 0.9, "amazon", []float64{44000, 45000, 46000})
		if breakdown.ConsistencyScore != 1.0 {
			t.Errorf("ConsistencyScore = %v, want 1.0 at the median", breakdown.ConsistencyScore)
		}
	})

	t.Run("breakdown components carry their contributions", func(t *testing.T) {
		signals := domain.ExtractedSignals{Confidence: 0.8}
		breakdown := s.ConfidenceScore(signals, 0.9, "unknown", nil)

		sum := 0.0
		for _, c := range breakdown.Components {
			if !almostEqual(c.Contribution, c.Score*c.Weight) {
				t.Errorf("Contribution %v != Score %v * Weight %v", c.Contribution, c.Score, c.Weight)
			}
			sum += c.Contribution
		}
		if !almostEqual(sum, breakdown.Overall) {
			t.Errorf("sum of contributions %v != Overall %v", sum, breakdown.Overall)
		}
	})
}

func TestPriceConsistency(t *testing.T) {
	s := NewScorer(ScorerConfig{})
	comparisons := []float64{44000, 45000, 46000} // median 45000

	testCases := []struct {
		name  string
		price float64
		want  float64
	}{
		{name: "at the median", price: 45000, want: 1.0},
		{name: "within 5 percent", price: 46000, want: 1.0},
		{name: "within 10 percent", price: 48000, want: 0.9},
		{name: "within 20 percent", price: 52000, want: 0.7},
		{name: "within max deviation", price: 56000, want: 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.priceConsistency(tc.price, comparisons)
			if !almostEqual(got, tc.want) {
				t.Errorf("priceConsistency(%v) = %v, want %v", tc.price, got, tc.want)
			}
		})
	}

	t.Run("extreme deviation floors at zero", func(t *testing.T) {
		if got := s.priceConsistency(450000, comparisons); got != 0.0 {
			t.Errorf("priceConsistency = %v, want 0", got)
		}
	})
}

func TestApplyScoringRules(t *testing.T) {
	s := NewScorer(ScorerConfig{})

	t.Run("trusted store bonus with audit string", func(t *testing.T) {
		signals := domain.ExtractedSignals{Stores: []string{"Amazon"}}
		score, rules := s.ApplyScoringRules(0.5, signals, domain.ValidationResult{})
		if !almostEqual(score, 0.9) {
			t.Errorf("score = %v, want 0.9", score)
		}
		if len(rules) != 1 || rules[0] != "+0.4: Trusted store found" {
			t.Errorf("rules = %v, want the trusted store audit string", rules)
		}
	})

	t.Run("low-trust store earns no bonus", func(t *testing.T) {
		signals := domain.ExtractedSignals{Stores: []string{"2B"}}
		score, rules := s.ApplyScoringRules(0.5, signals, domain.ValidationResult{})
		if score != 0.5 || len(rules) != 0 {
			t.Errorf("score = %v rules = %v, want unchanged", score, rules)
		}
	})

	t.Run("bonuses clamp at 1 after each step", func(t *testing.T) {
		signals := domain.ExtractedSignals{
			Stores: []string{"Amazon"},
			Prices: []domain.PriceMention{{Value: 45999}, {Value: 46999}},
			Conditions: domain.ConditionFlags{
				HasWarranty: true,
			},
		}
		validation := domain.ValidationResult{StorageMatch: true}
		score, rules := s.ApplyScoringRules(0.9, signals, validation)
		if score != 1.0 {
			t.Errorf("score = %v, want 1.0", score)
		}
		want := []string{
			"+0.4: Trusted store found",
			"+0.3: Storage variant matches exactly",
			"+0.2: Price from multiple sources",
			"+0.1: Official or warranty mentioned",
		}
		if len(rules) != len(want) {
			t.Fatalf("rules = %v, want %v", rules, want)
		}
		for i := range want {
			if rules[i] != want[i] {
				t.Errorf("rules[%d] = %q, want %q", i, rules[i], want[i])
			}
		}
	})

	t.Run("penalties clamp at 0 after each step", func(t *testing.T) {
		signals := domain.ExtractedSignals{
			Conditions: domain.ConditionFlags{IsRefurbished: true},
		}
		validation := domain.ValidationResult{IsAccessory: true, IsOutlier: true}
		score, rules := s.ApplyScoringRules(0.3, signals, validation)
		if score != 0.0 {
			t.Errorf("score = %v, want 0.0", score)
		}
		want := []string{
			"-0.5: Accessory detected",
			"-0.3: Refurbished or used",
			"-0.4: Price is outlier",
		}
		if len(rules) != len(want) {
			t.Fatalf("rules = %v, want %v", rules, want)
		}
		for i := range want {
			if rules[i] != want[i] {
				t.Errorf("rules[%d] = %q, want %q", i, rules[i], want[i])
			}
		}
	})

	t.Run("clamping is per step, not at the end", func(t *testing.T) {
		// +0.4 from a trusted store clamps 0.9 to 1.0 before the -0.3
		// refurbished penalty lands, so the result is 0.7, not 0.9+0.4-0.3.
		signals := domain.ExtractedSignals{
			Stores:     []string{"Amazon"},
			Conditions: domain.ConditionFlags{IsUsed: true},
		}
		score, _ := s.ApplyScoringRules(0.9, signals, domain.ValidationResult{})
		if !almostEqual(score, 0.7) {
			t.Errorf("score = %v, want 0.7", score)
		}
	})
}

func TestClassifyConfidenceLevel(t *testing.T) {
	testCases := []struct {
		confidence float64
		want       string
	}{
		{confidence: 1.0, want: "high"},
		{confidence: 0.75, want: "high"},
		{confidence: 0.74, want: "medium"},
		{confidence: 0.50, want: "medium"},
		{confidence: 0.49, want: "low"},
		{confidence: 0.0, want: "low"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			if got := ClassifyConfidenceLevel(tc.confidence); got != tc.want {
				t.Errorf("ClassifyConfidenceLevel(%v) = %q, want %q", tc.confidence, got, tc.want)
			}
		})
	}
}

func TestAggregateOfferScores(t *testing.T) {
	s := NewScorer(ScorerConfig{})

	t.Run("empty input yields zeroed stats", func(t *testing.T) {
		stats := s.AggregateOfferScores(nil)
		if stats.TotalOffers != 0 || stats.AvgConfidence != 0 {
			t.Errorf("stats = %+v, want zeroed", stats)
		}
	})

	t.Run("distribution and extremes", func(t *testing.T) {
		offers := []domain.Offer{
			{Confidence: 0.9},
			{Confidence: 0.8},
			{Confidence: 0.6},
			{Confidence: 0.3},
		}
		stats := s.AggregateOfferScores(offers)
		if stats.TotalOffers != 4 {
			t.Errorf("TotalOffers = %d, want 4", stats.TotalOffers)
		}
		if !almostEqual(stats.AvgConfidence, 0.65) {
			t.Errorf("AvgConfidence = %v, want 0.65", stats.AvgConfidence)
		}
		if stats.MaxConfidence != 0.9 || stats.MinConfidence != 0.3 {
			t.Errorf("extremes = [%v, %v], want [0.3, 0.9]", stats.MinConfidence, stats.MaxConfidence)
		}
		if stats.HighConfidenceCount != 2 {
			t.Errorf("HighConfidenceCount = %d, want 2", stats.HighConfidenceCount)
		}
		if stats.Distribution.High != 2 || stats.Distribution.Medium != 1 || stats.Distribution.Low != 1 {
			t.Errorf("Distribution = %+v, want 2/1/1", stats.Distribution)
		}
	})
}

func TestBestOffer(t *testing.T) {
	s := NewScorer(ScorerConfig{})

	t.Run("empty input returns nil", func(t *testing.T) {
		if best := s.BestOffer(nil); best != nil {
			t.Errorf("BestOffer = %+v, want nil", best)
		}
	})

	t.Run("single offer wins by default", func(t *testing.T) {
		best := s.BestOffer([]domain.Offer{{Store: "Amazon", Price: 45999, Confidence: 0.4}})
		if best == nil || best.Store != "Amazon" {
			t.Fatalf("BestOffer = %+v, want the only offer", best)
		}
	})

	t.Run("cheaper offer can beat a slightly more confident one", func(t *testing.T) {
		offers := []domain.Offer{
			{Store: "Amazon", Price: 48000, Confidence: 0.85}, // composite 0.6*0.85 + 0.4*0 = 0.51
			{Store: "Jumia", Price: 44000, Confidence: 0.80},  // composite 0.6*0.80 + 0.4*1 = 0.88
		}
		best := s.BestOffer(offers)
		if best == nil || best.Store != "Jumia" {
			t.Fatalf("BestOffer = %+v, want the cheaper Jumia offer", best)
		}
	})

	t.Run("confidence dominates when prices are equal", func(t *testing.T) {
		offers := []domain.Offer{
			{Store: "Noon", Price: 45000, Confidence: 0.6},
			{Store: "Amazon", Price: 45000, Confidence: 0.9},
		}
		best := s.BestOffer(offers)
		if best == nil || best.Store != "Amazon" {
			t.Fatalf("BestOffer = %+v, want the more confident Amazon offer", best)
		}
	})

	t.Run("ties keep the earliest offer", func(t *testing.T) {
		offers := []domain.Offer{
			{Store: "Noon", Price: 45000, Confidence: 0.8},
			{Store: "Amazon", Price: 45000, Confidence: 0.8},
		}
		best := s.BestOffer(offers)
		if best == nil || best.Store != "Noon" {
			t.Fatalf("BestOffer = %+v, want the first offer on a tie", best)
		}
	})
}

func TestConfidenceReport(t *testing.T) {
	s := NewScorer(ScorerConfig{})
	target := domain.TargetProduct{Brand: "Samsung", Model: "Galaxy S24 Ultra"}
	variant := domain.Variant{Storage: "256GB"}

	t.Run("excellent data quality", func(t *testing.T) {
		offers := []domain.Offer{
			{Store: "Amazon", Price: 45999, Confidence: 0.9},
			{Store: "Noon", Price: 46500, Confidence: 0.85},
		}
		report := s.ConfidenceReport(target, variant, offers)

		if report.Summary.TotalOffers != 2 {
			t.Errorf("TotalOffers = %d, want 2", report.Summary.TotalOffers)
		}
		if report.BestOffer == nil {
			t.Fatal("BestOffer = nil, want an offer")
		}
		if report.PriceRange == nil || report.PriceRange.Min != 45999 || report.PriceRange.Max != 46500 {
			t.Errorf("PriceRange = %+v, want [45999, 46500]", report.PriceRange)
		}
		if len(report.Recommendations) != 2 {
			t.Fatalf("Recommendations = %v, want 2 entries", report.Recommendations)
		}
		if report.Recommendations[0] != "Data quality is excellent. Prices are reliable." {
			t.Errorf("Recommendations[0] = %q", report.Recommendations[0])
		}
		if report.Recommendations[1] != "Found 2 high-confidence offers from trusted sources." {
			t.Errorf("Recommendations[1] = %q", report.Recommendations[1])
		}
	})

	t.Run("no offers at all", func(t *testing.T) {
		report := s.ConfidenceReport(target, variant, nil)
		if report.BestOffer != nil {
			t.Errorf("BestOffer = %+v, want nil", report.BestOffer)
		}
		if report.PriceRange != nil {
			t.Errorf("PriceRange = %+v, want nil", report.PriceRange)
		}
		found := false
		for _, r := range report.Recommendations {
			if r == "No high-confidence offers found. Proceed with caution." {
				found = true
			}
		}
		if !found {
			t.Errorf("Recommendations = %v, want the no-high-confidence warning", report.Recommendations)
		}
	})

	t.Run("middling data quality suggests verification", func(t *testing.T) {
		offers := []domain.Offer{
			{Store: "Jumia", Price: 44000, Confidence: 0.6},
			{Store: "Souq", Price: 45500, Confidence: 0.55},
		}
		report := s.ConfidenceReport(target, variant, offers)
		if report.Recommendations[0] != "Data quality is good. Verify with stores before purchase." {
			t.Errorf("Recommendations[0] = %q", report.Recommendations[0])
		}
	})
}
