package usecase

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/pricelens/engine/internal/domain"
)

// DefaultMaxPriceDeviation is the outlier threshold against the comparison
// median: 0.5 means a price 50% away from the median is rejected.
const DefaultMaxPriceDeviation = 0.5

// Seller-quality increments, applied on top of a 0.5 base.
const (
	qualityBase = 0.5

	ratingExcellent     = 4.5
	ratingGood          = 4.0
	ratingFair          = 3.5
	ratingExcellentBump = 0.20
	ratingGoodBump      = 0.15
	ratingFairBump      = 0.10

	reviewsMany     = 100
	reviewsSome     = 50
	reviewsFew      = 10
	reviewsManyBump = 0.15
	reviewsSomeBump = 0.10
	reviewsFewBump  = 0.05

	verifiedBump = 0.10
	inStockBump  = 0.05
)

// ValidatorConfig holds configuration for the validator.
type ValidatorConfig struct {
	AllowRefurbished   bool
	MaxDeviation       float64
	MinPrice           float64
	MaxPrice           float64
	EnableDebugLogging bool
}

// Validator applies the ordered accept/reject rules to a candidate offer.
// Rejection is a value, never an error. Stateless and safe for concurrent
// use.
type Validator struct {
	allowRefurbished bool
	maxDeviation     float64
	minPrice         float64
	maxPrice         float64
	debug            bool
}

// NewValidator creates a validator with the given configuration, falling
// back to the shared price bounds and the default deviation threshold.
func NewValidator(config ValidatorConfig) *Validator {
	maxDeviation := config.MaxDeviation
	if maxDeviation <= 0 {
		maxDeviation = DefaultMaxPriceDeviation
	}
	minPrice := config.MinPrice
	if minPrice <= 0 {
		minPrice = DefaultMinPrice
	}
	maxPrice := config.MaxPrice
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}
	return &Validator{
		allowRefurbished: config.AllowRefurbished,
		maxDeviation:     maxDeviation,
		minPrice:         minPrice,
		maxPrice:         maxPrice,
		debug:            config.EnableDebugLogging,
	}
}

// ValidateOffer runs the ordered checks against one candidate price and
// short-circuits on the first failure:
//
//	1. accessory keywords, 2. refurbished/used (unless allowed),
//	3. storage variant, 4. RAM variant, 5. price sanity.
//
// Variant checks are lenient: a capacity the text never states is not a
// rejection, only a stated mismatch is.
func (v *Validator) ValidateOffer(candidate domain.CandidateText, price float64, variant domain.Variant) domain.ValidationResult {
	fullText := strings.ToLower(candidate.FullText())
	result := domain.ValidationResult{}

	if IsAccessory(fullText) {
		result.IsAccessory = true
		return v.reject(result, "Product is an accessory, not a phone")
	}

	if !v.allowRefurbished && IsRefurbished(fullText) {
		return v.reject(result, "Product is refurbished/used")
	}

	if variant.Storage != "" {
		if extracted := ExtractStorageCapacity(fullText); extracted != "" {
			found := NormalizeStorage(extracted)
			expected := NormalizeStorage(variant.Storage)
			if found != expected {
				return v.reject(result, fmt.Sprintf("Storage mismatch: found %s, expected %s", found, expected))
			}
			result.StorageMatch = true
		}
	}

	if variant.RAM != "" {
		if extracted := ExtractRAMCapacity(fullText); extracted != "" {
			found := NormalizeRAM(extracted)
			expected := NormalizeRAM(variant.RAM)
			if found != expected {
				return v.reject(result, fmt.Sprintf("RAM mismatch: found %s, expected %s", found, expected))
			}
		}
	}

	switch {
	case price <= 0:
		return v.reject(result, "No valid price found")
	case price < v.minPrice:
		return v.reject(result, fmt.Sprintf("Price too low (%.0f EGP) - likely not a phone", price))
	case price > v.maxPrice:
		return v.reject(result, fmt.Sprintf("Price too high (%.0f EGP) - likely an error", price))
	}

	result.IsValid = true
	return result
}

func (v *Validator) reject(result domain.ValidationResult, reason string) domain.ValidationResult {
	result.IsValid = false
	result.RejectionReason = reason
	if v.debug {
		log.Printf("[VALIDATE] rejected: %s", reason)
	}
	return result
}

// IsAccessory reports whether the text describes an accessory rather than a
// handset. An accessory keyword is overridden only when a phone-indicator
// keyword is also present and the accessory keyword is not the leading
// token. Known limitation: this ordering can accept accessory bundles and
// reject legitimate mid-sentence phone mentions; kept as-is pending review.
func IsAccessory(text string) bool {
	lower := strings.ToLower(text)

	for _, keyword := range accessoryKeywords.Find(lower) {
		if !accessoryKeywords.FoundAsWord(lower, keyword) {
			continue
		}
		hasPhoneIndicator := phoneIndicatorKeywords.Matches(lower)
		if !hasPhoneIndicator || strings.HasPrefix(lower, keyword) {
			return true
		}
	}
	return false
}

// IsRefurbished reports whether the text flags the product as
// refurbished/used/open-box.
func IsRefurbished(text string) bool {
	return refurbishedKeywords.Matches(text)
}

// ValidatePriceRange checks a price against the median of comparison prices.
// Fewer than two comparison prices always passes (insufficient data). The
// returned reason names the direction of the deviation.
func (v *Validator) ValidatePriceRange(price float64, comparisonPrices []float64) (bool, string) {
	if len(comparisonPrices) < 2 {
		return true, ""
	}

	med := median(comparisonPrices)
	if med <= 0 {
		return true, ""
	}

	deviation := math.Abs(price-med) / med
	if deviation > v.maxDeviation {
		direction := "below"
		if price > med {
			direction = "above"
		}
		return false, fmt.Sprintf("Price is outlier: %.1f%% %s median", deviation*100, direction)
	}

	return true, ""
}

// OfferQualityScore is the auxiliary seller-reputation score: 0.5 base plus
// rating, review-count, verified and stock bumps, clipped to 1.0. It feeds
// reporting, not the primary confidence pipeline.
func (v *Validator) OfferQualityScore(seller *domain.Seller) float64 {
	score := qualityBase
	if seller == nil {
		return score
	}

	switch {
	case seller.Rating >= ratingExcellent:
		score += ratingExcellentBump
	case seller.Rating >= ratingGood:
		score += ratingGoodBump
	case seller.Rating >= ratingFair:
		score += ratingFairBump
	}

	switch {
	case seller.Reviews >= reviewsMany:
		score += reviewsManyBump
	case seller.Reviews >= reviewsSome:
		score += reviewsSomeBump
	case seller.Reviews >= reviewsFew:
		score += reviewsFewBump
	}

	if seller.Verified {
		score += verifiedBump
	}
	if seller.Availability == "in_stock" {
		score += inStockBump
	}

	return math.Min(score, 1.0)
}

// median computes the standard odd/even median without mutating the input.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
