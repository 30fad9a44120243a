package usecase

import (
	"log"
	"math"
	"regexp"
	"strings"

	"github.com/pricelens/engine/internal/domain"
)

// Fuzzy-match component weights. Model identity matters most; capacity
// signals are binary (a wrong variant scores zero) while a missing capacity
// signal earns half credit, tolerating incomplete listings.
const (
	brandMatchWeight   = 0.30
	modelMatchWeight   = 0.40
	storageMatchWeight = 0.20
	ramMatchWeight     = 0.10

	missingSignalCredit = 0.5

	// Secondary variant scorer weights, renormalized over the weights that
	// actually apply (no RAM target shifts everything onto storage).
	variantStorageWeight = 0.7
	variantRAMWeight     = 0.3
)

var (
	currencyTokenRegex = regexp.MustCompile(`EGP|LE|E£|جنيه|ج\.م`)
	groupedNumberRegex = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
)

// MatcherConfig holds configuration for the matcher.
type MatcherConfig struct {
	EnableDebugLogging bool
}

// Matcher scores how well a raw text blob matches a target phone variant.
// Stateless and safe for concurrent use.
type Matcher struct {
	debug bool
}

// NewMatcher creates a matcher.
func NewMatcher(config MatcherConfig) *Matcher {
	return &Matcher{debug: config.EnableDebugLogging}
}

// FuzzyMatchPhone computes the [0,1] match confidence of a candidate text
// against a target product and variant:
//
//	brand 30% (partial fuzzy), model 40% (substring, else token-set fuzzy),
//	storage 20%, RAM 10% (exact-or-zero, half credit when absent from text).
func (m *Matcher) FuzzyMatchPhone(candidate domain.CandidateText, target domain.TargetProduct, variant domain.Variant) float64 {
	searchText := strings.ToLower(candidate.FullText())

	score := 0.0

	targetBrand := strings.ToLower(NormalizeBrand(target.Brand))
	if targetBrand != "" {
		score += partialRatio(targetBrand, searchText) * brandMatchWeight
	}

	targetModel := strings.ToLower(NormalizeModel(target.Model))
	if targetModel != "" {
		modelScore := tokenSetRatio(targetModel, searchText)
		if strings.Contains(searchText, targetModel) {
			modelScore = 1.0
		}
		score += modelScore * modelMatchWeight
	}

	score += capacityComponent(variant.Storage, NormalizeStorage, ExtractStorageCapacity, searchText, storageMatchWeight)
	score += capacityComponent(variant.RAM, NormalizeRAM, ExtractRAMCapacity, searchText, ramMatchWeight)

	final := math.Min(score, 1.0)
	if m.debug {
		log.Printf("[MATCH] %q vs %s %s = %.2f", candidate.Title, target.Brand, target.Model, final)
	}
	return final
}

// capacityComponent scores one capacity dimension (storage or RAM). No
// target requirement earns the full weight; an unnormalizable requirement
// earns nothing; an extracted value either matches exactly or scores zero.
func capacityComponent(targetRaw string, normalize func(string) string, extract func(string) string, searchText string, weight float64) float64 {
	if targetRaw == "" {
		return weight
	}
	normalized := normalize(targetRaw)
	if normalized == "" {
		return 0.0
	}

	extracted := extract(searchText)
	if extracted == "" {
		return missingSignalCredit * weight
	}
	if strings.EqualFold(normalized, extracted) {
		return weight
	}
	return 0.0
}

// VariantMatchScore scores already-extracted capacity values against a
// target variant: storage 0.7, RAM 0.3 when a RAM target exists, normalized
// by the weights in play.
func (m *Matcher) VariantMatchScore(extractedStorage, extractedRAM, targetStorage, targetRAM string) float64 {
	score := 0.0
	weightsUsed := variantStorageWeight

	if extractedStorage != "" && targetStorage != "" {
		if NormalizeStorage(extractedStorage) == NormalizeStorage(targetStorage) {
			score += variantStorageWeight
		}
	}

	if targetRAM != "" {
		weightsUsed += variantRAMWeight
		if extractedRAM != "" && NormalizeRAM(extractedRAM) == NormalizeRAM(targetRAM) {
			score += variantRAMWeight
		}
	}

	return score / weightsUsed
}

// ExtractPriceFromText strips known currency tokens and returns the first
// comma-grouped numeric literal, e.g. "EGP 15,999" -> 15999.
func ExtractPriceFromText(text string) (float64, bool) {
	stripped := currencyTokenRegex.ReplaceAllString(text, "")
	m := groupedNumberRegex.FindStringSubmatch(stripped)
	if m == nil {
		return 0, false
	}
	return parsePrice(m[1])
}
