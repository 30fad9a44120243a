package usecase

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/pricelens/engine/internal/domain"
)

// Confidence component weights: extraction 0.3, match 0.3, store trust 0.2,
// price consistency 0.2.
const (
	extractionWeight  = 0.3
	matchWeight       = 0.3
	trustWeight       = 0.2
	consistencyWeight = 0.2

	conditionTrustBump = 0.05
	neutralConsistency = 0.5

	// DefaultConsistencyDeviation is the deviation band edge for the price
	// consistency score (distinct from the validator's 0.5 outlier cut).
	DefaultConsistencyDeviation = 0.3
)

// Confidence level thresholds, inclusive lower bounds.
const (
	highConfidenceFloor   = 0.75
	mediumConfidenceFloor = 0.50
)

// Best-offer composite weights.
const (
	bestOfferConfidenceWeight = 0.6
	bestOfferPriceWeight      = 0.4
)

// trustedStores is the fixed per-store reputation baseline. Unknown stores
// get 0.30.
var trustedStores = map[string]float64{
	"amazon":  0.90,
	"noon":    0.85,
	"jumia":   0.80,
	"btech":   0.75,
	"souq":    0.70,
	"2b":      0.65,
	"unknown": 0.30,
}

const trustedStoreFloor = 0.8 // stores at or above this trigger the +0.4 rule

// ScorerConfig holds configuration for the scorer.
type ScorerConfig struct {
	MaxDeviation       float64
	EnableDebugLogging bool
}

// Scorer combines extraction, match, trust and consistency into an overall
// confidence, applies the rule adjustments and classifies the result.
// Stateless and safe for concurrent use.
type Scorer struct {
	maxDeviation float64
	debug        bool
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(config ScorerConfig) *Scorer {
	maxDeviation := config.MaxDeviation
	if maxDeviation <= 0 {
		maxDeviation = DefaultConsistencyDeviation
	}
	return &Scorer{maxDeviation: maxDeviation, debug: config.EnableDebugLogging}
}

// StoreTrust returns the reputation baseline for a store name.
func StoreTrust(store string) float64 {
	if trust, ok := trustedStores[strings.ToLower(store)]; ok {
		return trust
	}
	return trustedStores["unknown"]
}

// ConfidenceScore assembles the overall confidence with its full
// per-component breakdown. Trust starts from the store baseline and is
// bumped +0.05 (clipped after each bump) for new/warranty/official flags.
// Consistency is 0.5 neutral with fewer than two comparison prices.
func (s *Scorer) ConfidenceScore(
	signals domain.ExtractedSignals,
	matchConfidence float64,
	store string,
	comparisonPrices []float64,
) domain.ConfidenceBreakdown {
	trust := StoreTrust(store)
	if signals.Conditions.IsNew {
		trust = math.Min(trust+conditionTrustBump, 1.0)
	}
	if signals.Conditions.HasWarranty {
		trust = math.Min(trust+conditionTrustBump, 1.0)
	}
	if signals.Conditions.IsOfficial {
		trust = math.Min(trust+conditionTrustBump, 1.0)
	}

	consistency := neutralConsistency
	if len(comparisonPrices) >= 2 && signals.BestPrice > 0 {
		consistency = s.priceConsistency(signals.BestPrice, comparisonPrices)
	}

	breakdown := domain.ConfidenceBreakdown{
		ExtractionScore:  signals.Confidence,
		MatchScore:       matchConfidence,
		TrustScore:       trust,
		ConsistencyScore: consistency,
		Components: map[string]domain.ComponentScore{
			"extraction":  {Score: signals.Confidence, Weight: extractionWeight, Contribution: signals.Confidence * extractionWeight},
			"match":       {Score: matchConfidence, Weight: matchWeight, Contribution: matchConfidence * matchWeight},
			"trust":       {Score: trust, Weight: trustWeight, Contribution: trust * trustWeight},
			"consistency": {Score: consistency, Weight: consistencyWeight, Contribution: consistency * consistencyWeight},
		},
	}

	overall := signals.Confidence*extractionWeight +
		matchConfidence*matchWeight +
		trust*trustWeight +
		consistency*consistencyWeight
	breakdown.Overall = math.Min(overall, 1.0)

	if s.debug {
		log.Printf("[SCORE] extraction=%.2f match=%.2f trust=%.2f consistency=%.2f overall=%.2f",
			signals.Confidence, matchConfidence, trust, consistency, breakdown.Overall)
	}
	return breakdown
}

// priceConsistency bands the deviation from the comparison median:
// <=5% -> 1.0, <=10% -> 0.9, <=20% -> 0.7, <=maxDeviation -> 0.5, beyond
// that a linear falloff floored at 0.
func (s *Scorer) priceConsistency(price float64, comparisonPrices []float64) float64 {
	if len(comparisonPrices) < 2 {
		return neutralConsistency
	}
	med := median(comparisonPrices)
	if med == 0 {
		return neutralConsistency
	}

	deviation := math.Abs(price-med) / med
	switch {
	case deviation <= 0.05:
		return 1.0
	case deviation <= 0.10:
		return 0.9
	case deviation <= 0.20:
		return 0.7
	case deviation <= s.maxDeviation:
		return 0.5
	default:
		return math.Max(0.0, 1.0-deviation/s.maxDeviation)
	}
}

// ApplyScoringRules applies the ordered rule adjustments to a base
// confidence, clamping to [0,1] after every single adjustment (the order
// and per-step clamping are part of the contract), and returns the adjusted
// score with the audit trail of applied rules.
func (s *Scorer) ApplyScoringRules(
	baseConfidence float64,
	signals domain.ExtractedSignals,
	validation domain.ValidationResult,
) (float64, []string) {
	confidence := baseConfidence
	var applied []string

	trustedFound := false
	for _, store := range signals.Stores {
		if StoreTrust(store) >= trustedStoreFloor {
			trustedFound = true
			break
		}
	}
	if trustedFound {
		confidence = math.Min(confidence+0.4, 1.0)
		applied = append(applied, "+0.4: Trusted store found")
	}

	if validation.StorageMatch {
		confidence = math.Min(confidence+0.3, 1.0)
		applied = append(applied, "+0.3: Storage variant matches exactly")
	}

	if len(signals.Prices) >= 2 {
		confidence = math.Min(confidence+0.2, 1.0)
		applied = append(applied, "+0.2: Price from multiple sources")
	}

	if signals.Conditions.IsOfficial || signals.Conditions.HasWarranty {
		confidence = math.Min(confidence+0.1, 1.0)
		applied = append(applied, "+0.1: Official or warranty mentioned")
	}

	if validation.IsAccessory {
		confidence = math.Max(confidence-0.5, 0.0)
		applied = append(applied, "-0.5: Accessory detected")
	}

	if signals.Conditions.IsRefurbished || signals.Conditions.IsUsed {
		confidence = math.Max(confidence-0.3, 0.0)
		applied = append(applied, "-0.3: Refurbished or used")
	}

	if validation.IsOutlier {
		confidence = math.Max(confidence-0.4, 0.0)
		applied = append(applied, "-0.4: Price is outlier")
	}

	return confidence, applied
}

// ClassifyConfidenceLevel maps a confidence score to its tier: >=0.75
// "high", >=0.50 "medium", else "low".
func ClassifyConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= highConfidenceFloor:
		return "high"
	case confidence >= mediumConfidenceFloor:
		return "medium"
	default:
		return "low"
	}
}

// AggregateOfferScores computes descriptive statistics over a set of scored
// offers. An empty input yields zeroed stats.
func (s *Scorer) AggregateOfferScores(offers []domain.Offer) domain.OfferStats {
	stats := domain.OfferStats{TotalOffers: len(offers)}
	if len(offers) == 0 {
		return stats
	}

	sum := 0.0
	stats.MinConfidence = offers[0].Confidence
	stats.MaxConfidence = offers[0].Confidence

	for _, o := range offers {
		sum += o.Confidence
		if o.Confidence > stats.MaxConfidence {
			stats.MaxConfidence = o.Confidence
		}
		if o.Confidence < stats.MinConfidence {
			stats.MinConfidence = o.Confidence
		}
		switch ClassifyConfidenceLevel(o.Confidence) {
		case "high":
			stats.Distribution.High++
		case "medium":
			stats.Distribution.Medium++
		default:
			stats.Distribution.Low++
		}
	}

	stats.AvgConfidence = sum / float64(len(offers))
	stats.HighConfidenceCount = stats.Distribution.High
	return stats
}

// BestOffer selects the best offer by the composite
// 0.6*confidence + 0.4*priceScore, where priceScore rewards the cheapest
// offer (1.0 when all prices are equal). Ties keep the earliest offer.
func (s *Scorer) BestOffer(offers []domain.Offer) *domain.Offer {
	if len(offers) == 0 {
		return nil
	}
	if len(offers) == 1 {
		best := offers[0]
		return &best
	}

	minPrice := offers[0].Price
	maxPrice := offers[0].Price
	for _, o := range offers {
		if o.Price < minPrice {
			minPrice = o.Price
		}
		if o.Price > maxPrice {
			maxPrice = o.Price
		}
	}
	priceRange := maxPrice - minPrice

	bestIdx := 0
	bestComposite := -1.0
	for i, o := range offers {
		priceScore := 1.0
		if priceRange > 0 {
			priceScore = 1.0 - (o.Price-minPrice)/priceRange
		}
		composite := o.Confidence*bestOfferConfidenceWeight + priceScore*bestOfferPriceWeight
		if composite > bestComposite {
			bestComposite = composite
			bestIdx = i
		}
	}

	best := offers[bestIdx]
	return &best
}

// ConfidenceReport builds the per-variant summary handed to reporting
// layers: aggregate stats, the best offer, the observed price range and
// plain-language recommendations.
func (s *Scorer) ConfidenceReport(target domain.TargetProduct, variant domain.Variant, offers []domain.Offer) domain.ConfidenceReport {
	report := domain.ConfidenceReport{
		Target:  target,
		Variant: variant,
		Summary: s.AggregateOfferScores(offers),
	}
	report.BestOffer = s.BestOffer(offers)

	if len(offers) > 0 {
		pr := domain.PriceRange{Min: offers[0].Price, Max: offers[0].Price}
		sum := 0.0
		for _, o := range offers {
			sum += o.Price
			if o.Price < pr.Min {
				pr.Min = o.Price
			}
			if o.Price > pr.Max {
				pr.Max = o.Price
			}
		}
		pr.Avg = sum / float64(len(offers))
		report.PriceRange = &pr
	}

	switch {
	case report.Summary.AvgConfidence >= highConfidenceFloor:
		report.Recommendations = append(report.Recommendations, "Data quality is excellent. Prices are reliable.")
	case report.Summary.AvgConfidence >= mediumConfidenceFloor:
		report.Recommendations = append(report.Recommendations, "Data quality is good. Verify with stores before purchase.")
	default:
		report.Recommendations = append(report.Recommendations, "Data quality is low. Manual verification strongly recommended.")
	}

	if report.Summary.HighConfidenceCount >= 2 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Found %d high-confidence offers from trusted sources.", report.Summary.HighConfidenceCount))
	} else if report.Summary.HighConfidenceCount == 0 {
		report.Recommendations = append(report.Recommendations, "No high-confidence offers found. Proceed with caution.")
	}

	return report
}
