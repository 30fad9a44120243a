package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"time"

	"github.com/pricelens/engine/internal/domain"
)

// DefaultCacheTTL is how long an evaluation report stays memoised.
const DefaultCacheTTL = 1 * time.Hour

// OfferServiceConfig holds configuration for the offer service.
type OfferServiceConfig struct {
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// OfferService orchestrates the full pipeline: extract signals from each
// candidate text, match against the target, validate, score and aggregate
// into a report. Batch results are memoised in the cache repository keyed by
// target slug and candidate content hash.
type OfferService struct {
	cache     domain.CacheRepository
	extractor *Extractor
	matcher   *Matcher
	validator *Validator
	scorer    *Scorer
	cacheTTL  time.Duration
	debug     bool
}

// NewOfferService wires the pipeline stages together. A nil cache disables
// memoisation.
func NewOfferService(
	cache domain.CacheRepository,
	extractor *Extractor,
	matcher *Matcher,
	validator *Validator,
	scorer *Scorer,
	config OfferServiceConfig,
) *OfferService {
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &OfferService{
		cache:     cache,
		extractor: extractor,
		matcher:   matcher,
		validator: validator,
		scorer:    scorer,
		cacheTTL:  ttl,
		debug:     config.EnableDebugLogging,
	}
}

// Evaluate runs one candidate text through the pipeline and returns the
// accepted offers (one per surviving price mention). Candidates with no
// extractable price fall back to the declared price when one is attached.
// Rejections are silent drops; the report layer carries the aggregate view.
func (s *OfferService) Evaluate(
	target domain.TargetProduct,
	variant domain.Variant,
	candidate domain.CandidateText,
	comparisonPrices []float64,
) []domain.Offer {
	fullText := candidate.FullText()
	signals := s.extractor.Extract(fullText, target)

	mentions := signals.Prices
	if len(mentions) == 0 && candidate.DeclaredPrice != nil && *candidate.DeclaredPrice > 0 {
		mentions = []domain.PriceMention{{
			Value:      *candidate.DeclaredPrice,
			Currency:   s.extractor.currency,
			Confidence: keywordPriceConfidence,
		}}
	}

	store := "unknown"
	if len(signals.Stores) > 0 {
		store = signals.Stores[0]
	} else if candidate.StoreHint != "" {
		store = candidate.StoreHint
	}

	matchConfidence := s.matcher.FuzzyMatchPhone(candidate, target, variant)

	var offers []domain.Offer
	for _, mention := range mentions {
		validation := s.validator.ValidateOffer(candidate, mention.Value, variant)
		if ok, reason := s.validator.ValidatePriceRange(mention.Value, comparisonPrices); !ok {
			validation.IsOutlier = true
			if s.debug {
				log.Printf("[OFFER] %s: %s", store, reason)
			}
		}
		if !validation.IsValid {
			if s.debug {
				log.Printf("[OFFER] dropped %s @ %.0f: %s", store, mention.Value, validation.RejectionReason)
			}
			continue
		}

		breakdown := s.scorer.ConfidenceScore(signals, matchConfidence, store, comparisonPrices)
		confidence, rules := s.scorer.ApplyScoringRules(breakdown.Overall, signals, validation)

		offers = append(offers, domain.Offer{
			Store:           store,
			Title:           candidate.Title,
			Price:           mention.Value,
			Currency:        mention.Currency,
			URL:             candidate.URL,
			Storage:         signals.Storage,
			RAM:             signals.RAM,
			Conditions:      signals.Conditions,
			Confidence:      confidence,
			ConfidenceLevel: ClassifyConfidenceLevel(confidence),
			AppliedRules:    rules,
			QualityScore:    s.validator.OfferQualityScore(candidate.Seller),
		})
	}
	return offers
}

// EvaluateBatch evaluates every candidate against the target and returns the
// aggregated confidence report. A target without a brand or model is
// ErrInvalidRequest; an empty candidate list is ErrNoCandidates. The context
// is checked between candidates so a cancelled request stops early.
func (s *OfferService) EvaluateBatch(
	ctx context.Context,
	target domain.TargetProduct,
	variant domain.Variant,
	candidates []domain.CandidateText,
	comparisonPrices []float64,
) (domain.ConfidenceReport, error) {
	if target.Brand == "" || target.Model == "" {
		return domain.ConfidenceReport{}, domain.ErrInvalidRequest
	}
	if len(candidates) == 0 {
		return domain.ConfidenceReport{}, domain.ErrNoCandidates
	}

	key := s.cacheKey(target, variant, candidates, comparisonPrices)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			if report, ok := cached.(domain.ConfidenceReport); ok {
				if s.debug {
					log.Printf("[OFFER] cache hit for %s", key)
				}
				return report, nil
			}
		}
	}

	var offers []domain.Offer
	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			return domain.ConfidenceReport{}, ctx.Err()
		default:
		}
		offers = append(offers, s.Evaluate(target, variant, candidate, comparisonPrices)...)
	}

	report := s.scorer.ConfidenceReport(target, variant, offers)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil && s.debug {
			log.Printf("[OFFER] cache set failed for %s: %v", key, err)
		}
	}
	return report, nil
}

// cacheKey combines the target slug with a content hash of the variant,
// every candidate text and the comparison prices, so any change in the
// inputs misses the cache.
func (s *OfferService) cacheKey(target domain.TargetProduct, variant domain.Variant, candidates []domain.CandidateText, comparisonPrices []float64) string {
	h := fnv.New64a()
	h.Write([]byte(variant.Storage))
	h.Write([]byte{0})
	h.Write([]byte(variant.RAM))
	for _, c := range candidates {
		h.Write([]byte{0})
		h.Write([]byte(c.FullText()))
	}
	for _, p := range comparisonPrices {
		fmt.Fprintf(h, "\x00%g", p)
	}
	return fmt.Sprintf("offer:%s:%x", CreateSlug(target.Brand, target.Model), h.Sum64())
}
