package usecase

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pricelens/engine/internal/domain"
)

// Default extraction bounds. A phone listing outside [2000, 100000] EGP is
// either an accessory or a data error; the same bounds are enforced again at
// validation time.
const (
	DefaultCurrency = "EGP"
	DefaultMinPrice = 2000.0
	DefaultMaxPrice = 100000.0

	currencyPriceConfidence = 0.8 // explicit currency token next to the number
	keywordPriceConfidence  = 0.5 // bare number near a price-intent keyword
	mentionConfidence       = 0.7

	priceDedupValueDelta    = 10.0
	priceDedupPositionDelta = 100

	maxBrandsChecked = 5
	maxMentionsKept  = 3
)

// Compiled price patterns. Currency spellings cover the Egyptian Pound
// variations seen in marketplace text, Latin and Arabic script.
var (
	currencyBeforeRegex = regexp.MustCompile(`(?i)(?:EGP|LE|E£|جنيه|ج\.م|pound)\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
	currencyAfterRegex  = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*(?:EGP|LE|E£|جنيه|ج\.م|pound)`)
	barePriceRegex      = regexp.MustCompile(`\b(\d{4,6})\b`)
)

// Capacity patterns operate on upper-cased text. TB is checked before GB:
// first match wins.
var (
	storageTBRegex = regexp.MustCompile(`(\d+)\s*TB\b`)
	storageGBRegex = regexp.MustCompile(`(\d+)\s*GB\b`)
	ramComboRegex  = regexp.MustCompile(`(\d+)\s*GB?\s*/\s*(\d+)\s*GB?`)
)

// ramAdjacencyRegexes require an explicit RAM/MEMORY token next to the
// capacity. Evaluated in order, stopping at the first plausible value.
var ramAdjacencyRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*GB\s+RAM`),
	regexp.MustCompile(`RAM\s+(\d+)\s*GB`),
	regexp.MustCompile(`(\d+)\s*GB\s+MEMORY`),
	regexp.MustCompile(`MEMORY\s+(\d+)\s*GB`),
}

// storePatterns map marketplace spellings to canonical store names. Order is
// fixed so output order is deterministic.
var storePatterns = []struct {
	canonical string
	pattern   *regexp.Regexp
}{
	{"Amazon", regexp.MustCompile(`(?i)\b(Amazon|amazon\.eg)\b`)},
	{"Noon", regexp.MustCompile(`(?i)\b(Noon|noon\.com)\b`)},
	{"Jumia", regexp.MustCompile(`(?i)\b(Jumia|jumia\.com\.eg)\b`)},
	{"Btech", regexp.MustCompile(`(?i)\b(B\.?Tech|btech\.com)\b`)},
	{"Souq", regexp.MustCompile(`(?i)\b(Souq)\b`)},
	{"2B", regexp.MustCompile(`(?i)\b(2B|twob)\b`)},
}

// brandPriority is the fixed brand list scanned for phone mentions. Only the
// first maxBrandsChecked entries are scanned per call; a target brand is
// moved to the front.
var brandPriority = []string{
	"Samsung", "Apple", "Xiaomi", "Oppo", "Realme", "OnePlus",
	"Google", "Motorola", "Nokia", "Vivo", "Infinix", "Tecno",
}

var tentativeModelRegex = regexp.MustCompile(`([A-Z]\w+(?:\s+[A-Z0-9]\w*)*)`)

// brandMentionRegexes are compiled once for the priority brands; target
// brands outside the list are compiled on first use and cached.
var brandMentionRegexes = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(brandPriority))
	for _, b := range brandPriority {
		m[b] = compileBrandRegex(b)
	}
	return m
}()

var (
	extraBrandRegexesMu sync.Mutex
	extraBrandRegexes   = map[string]*regexp.Regexp{}
)

func compileBrandRegex(brand string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(brand) + `\b`)
}

func brandRegex(brand string) *regexp.Regexp {
	if re, ok := brandMentionRegexes[brand]; ok {
		return re
	}
	extraBrandRegexesMu.Lock()
	defer extraBrandRegexesMu.Unlock()
	re, ok := extraBrandRegexes[brand]
	if !ok {
		re = compileBrandRegex(brand)
		extraBrandRegexes[brand] = re
	}
	return re
}

// ExtractorConfig holds configuration for the extractor.
type ExtractorConfig struct {
	Currency           string
	MinPrice           float64
	MaxPrice           float64
	EnableDebugLogging bool
}

// Extractor scans raw marketplace text for prices, capacities, store names,
// condition flags and phone mentions. It holds no per-call state and is safe
// for concurrent use.
type Extractor struct {
	currency string
	minPrice float64
	maxPrice float64
	debug    bool
}

// NewExtractor creates an extractor with the given configuration, falling
// back to the EGP defaults.
func NewExtractor(config ExtractorConfig) *Extractor {
	currency := config.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	minPrice := config.MinPrice
	if minPrice <= 0 {
		minPrice = DefaultMinPrice
	}
	maxPrice := config.MaxPrice
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}
	return &Extractor{
		currency: currency,
		minPrice: minPrice,
		maxPrice: maxPrice,
		debug:    config.EnableDebugLogging,
	}
}

// ExtractPrices finds price mentions in text. Currency-explicit matches get
// confidence 0.8; bare 4-6 digit numbers near a price-intent keyword get
// 0.5. Near-identical mentions (value within 10, position within 100) are
// collapsed keeping the higher confidence. Output is sorted by position.
func (e *Extractor) ExtractPrices(text string) []domain.PriceMention {
	var prices []domain.PriceMention

	for _, re := range []*regexp.Regexp{currencyBeforeRegex, currencyAfterRegex} {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			value, ok := parsePrice(text[loc[2]:loc[3]])
			if !ok || value < e.minPrice || value > e.maxPrice {
				continue
			}
			prices = append(prices, domain.PriceMention{
				Value:      value,
				Currency:   e.currency,
				Context:    strings.TrimSpace(textWindow(text, loc[0], loc[1], 50)),
				Position:   loc[0],
				Confidence: currencyPriceConfidence,
			})
		}
	}

	// Bare numbers count only with a price-intent keyword within ±100 chars.
	for _, loc := range barePriceRegex.FindAllStringSubmatchIndex(text, -1) {
		value, ok := parsePrice(text[loc[2]:loc[3]])
		if !ok || value < e.minPrice || value > e.maxPrice {
			continue
		}
		context := textWindow(text, loc[0], loc[1], 100)
		if !priceIntentKeywords.Matches(context) {
			continue
		}
		prices = append(prices, domain.PriceMention{
			Value:      value,
			Currency:   e.currency,
			Context:    strings.TrimSpace(context),
			Position:   loc[0],
			Confidence: keywordPriceConfidence,
		})
	}

	unique := dedupePrices(prices)
	sort.SliceStable(unique, func(i, j int) bool { return unique[i].Position < unique[j].Position })

	if e.debug {
		log.Printf("[EXTRACT] %d price mention(s) in %d chars", len(unique), len(text))
	}
	return unique
}

// dedupePrices collapses mentions of the same price at nearby positions,
// keeping the higher-confidence one.
func dedupePrices(prices []domain.PriceMention) []domain.PriceMention {
	var unique []domain.PriceMention
	for _, p := range prices {
		duplicate := false
		for i, existing := range unique {
			if math.Abs(p.Value-existing.Value) < priceDedupValueDelta &&
				absInt(p.Position-existing.Position) < priceDedupPositionDelta {
				duplicate = true
				if p.Confidence > existing.Confidence {
					unique = append(unique[:i], unique[i+1:]...)
					unique = append(unique, p)
				}
				break
			}
		}
		if !duplicate {
			unique = append(unique, p)
		}
	}
	return unique
}

// ExtractStorageCapacity pulls a storage capacity out of free text. TB values
// are always storage; GB values only when >=32 or one of the legacy 8/16
// sizes, which keeps RAM-sized mentions out.
func ExtractStorageCapacity(text string) string {
	upper := strings.ToUpper(text)

	if m := storageTBRegex.FindStringSubmatch(upper); m != nil {
		return m[1] + "TB"
	}

	if m := storageGBRegex.FindStringSubmatch(upper); m != nil {
		capacity, err := strconv.Atoi(m[1])
		if err != nil {
			return ""
		}
		if capacity >= 32 || capacity == 8 || capacity == 16 {
			return fmt.Sprintf("%dGB", capacity)
		}
	}

	return ""
}

// ExtractRAMCapacity pulls a RAM capacity out of free text. It needs either
// an explicit RAM/MEMORY token next to the value, or an "X/Y" combo where
// the smaller X (<=24) is taken to be RAM. The combo rule is a documented
// heuristic: it can misread unrelated X/Y pairs, and stays as-is pending
// product sign-off.
func ExtractRAMCapacity(text string) string {
	upper := strings.ToUpper(text)

	for _, re := range ramAdjacencyRegexes {
		m := re.FindStringSubmatch(upper)
		if m == nil {
			continue
		}
		value, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if value <= 24 {
			return fmt.Sprintf("%dGB", value)
		}
	}

	if m := ramComboRegex.FindStringSubmatch(upper); m != nil {
		ram, err1 := strconv.Atoi(m[1])
		storage, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && ram < storage && ram <= 24 {
			return fmt.Sprintf("%dGB", ram)
		}
	}

	return ""
}

// ExtractStoreNames returns the canonical names of the known stores
// mentioned in text, in fixed table order.
func (e *Extractor) ExtractStoreNames(text string) []string {
	var stores []string
	for _, sp := range storePatterns {
		if sp.pattern.MatchString(text) {
			stores = append(stores, sp.canonical)
		}
	}
	return stores
}

// ExtractConditions derives the five independent condition flags from
// keyword hits. Flags are not mutually exclusive.
func (e *Extractor) ExtractConditions(text string) domain.ConditionFlags {
	return domain.ConditionFlags{
		IsNew:         newConditionKeywords.Matches(text),
		HasWarranty:   warrantyKeywords.Matches(text),
		IsRefurbished: refurbishedFlagKeywords.Matches(text),
		IsUsed:        usedConditionKeywords.Matches(text),
		IsOfficial:    officialConditionKeywords.Matches(text),
	}
}

// ExtractPhoneMentions finds brand occurrences and the capitalized token run
// after each as a tentative model. Only the first five brands of the
// priority list are scanned; a target brand is promoted to the front.
func (e *Extractor) ExtractPhoneMentions(text, targetBrand string) []domain.PhoneMention {
	brands := brandPriority
	if targetBrand != "" {
		brands = make([]string, 0, len(brandPriority)+1)
		brands = append(brands, targetBrand)
		for _, b := range brandPriority {
			if !strings.EqualFold(b, targetBrand) {
				brands = append(brands, b)
			}
		}
	}
	if len(brands) > maxBrandsChecked {
		brands = brands[:maxBrandsChecked]
	}

	var mentions []domain.PhoneMention
	for _, brand := range brands {
		re := brandRegex(brand)
		for _, loc := range re.FindAllStringIndex(text, -1) {
			after := text[loc[1]:clampRuneBoundary(text, loc[1]+50)]
			model := ""
			if m := tentativeModelRegex.FindString(after); m != "" {
				model = strings.TrimSpace(m)
			}
			mentions = append(mentions, domain.PhoneMention{
				Brand:      brand,
				Model:      model,
				Position:   loc[0],
				Confidence: mentionConfidence,
			})
		}
	}
	return mentions
}

// StructuredData holds machine-readable fragments found inside raw text.
type StructuredData struct {
	JSONLD  map[string]interface{} `json:"jsonLd,omitempty"`
	Price   string                 `json:"price,omitempty"`
	Model   string                 `json:"model,omitempty"`
	Storage string                 `json:"storage,omitempty"`
}

var (
	jsonLDProductRegex = regexp.MustCompile(`(?is)\{[^{}]*"@type"\s*:\s*"Product"[^{}]*\}`)
	kvPriceRegex       = regexp.MustCompile(`(?i)(?:price|سعر)\s*:?\s*(\d{4,6})`)
	kvModelRegex       = regexp.MustCompile(`(?i)(?:model|موديل)\s*:?\s*([A-Z][A-Za-z0-9\s]+)`)
	kvStorageRegex     = regexp.MustCompile(`(?i)(?:storage|ذاكرة)\s*:?\s*(\d+\s*GB)`)
)

// ExtractStructuredData looks for embedded JSON-LD product blobs and
// key/value patterns. Malformed JSON fragments are skipped, never fatal.
func (e *Extractor) ExtractStructuredData(text string) StructuredData {
	var data StructuredData

	for _, fragment := range jsonLDProductRegex.FindAllString(text, -1) {
		var blob map[string]interface{}
		if err := json.Unmarshal([]byte(fragment), &blob); err != nil {
			continue
		}
		if _, ok := blob["price"]; ok {
			data.JSONLD = blob
			break
		}
		if _, ok := blob["offers"]; ok {
			data.JSONLD = blob
			break
		}
	}

	if m := kvPriceRegex.FindStringSubmatch(text); m != nil {
		data.Price = strings.TrimSpace(m[1])
	}
	if m := kvModelRegex.FindStringSubmatch(text); m != nil {
		data.Model = strings.TrimSpace(m[1])
	}
	if m := kvStorageRegex.FindStringSubmatch(text); m != nil {
		data.Storage = strings.TrimSpace(m[1])
	}

	return data
}

// Extract runs the full signal extraction for one candidate text and
// aggregates the extraction confidence.
func (e *Extractor) Extract(text string, target domain.TargetProduct) domain.ExtractedSignals {
	signals := domain.ExtractedSignals{
		Prices:     e.ExtractPrices(text),
		Storage:    ExtractStorageCapacity(text),
		RAM:        ExtractRAMCapacity(text),
		Stores:     e.ExtractStoreNames(text),
		Conditions: e.ExtractConditions(text),
	}

	mentions := e.ExtractPhoneMentions(text, target.Brand)
	if len(mentions) > maxMentionsKept {
		mentions = mentions[:maxMentionsKept]
	}
	signals.Mentions = mentions

	for _, p := range signals.Prices {
		if signals.BestPrice == 0 || p.Value < signals.BestPrice {
			signals.BestPrice = p.Value
		}
	}

	signals.Confidence = extractionConfidence(
		len(text),
		len(signals.Prices) > 0,
		len(signals.Mentions) > 0,
		signals.Storage != "",
		len(signals.Stores) > 0,
	)
	return signals
}

// extractionConfidence is the aggregate extraction heuristic: substantial
// text +0.2, price found +0.4, mention found +0.2, storage +0.1, store +0.1,
// clipped to 1.0.
func extractionConfidence(textLen int, priceFound, mentionFound, storageFound, storeFound bool) float64 {
	score := 0.0
	if textLen > 50 {
		score += 0.2
	}
	if priceFound {
		score += 0.4
	}
	if mentionFound {
		score += 0.2
	}
	if storageFound {
		score += 0.1
	}
	if storeFound {
		score += 0.1
	}
	return math.Min(score, 1.0)
}

// parsePrice converts a comma-grouped numeric literal to a float, reporting
// failure instead of panicking on malformed input.
func parsePrice(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// textWindow slices [start-pad, end+pad) clamped to the text and snapped to
// rune boundaries so multi-byte script never gets split.
func textWindow(text string, start, end, pad int) string {
	lo := clampRuneBoundary(text, start-pad)
	hi := clampRuneBoundary(text, end+pad)
	if lo > hi {
		return ""
	}
	return text[lo:hi]
}

func clampRuneBoundary(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
