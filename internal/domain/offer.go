package domain

// PriceMention is a single price found in candidate text.
type PriceMention struct {
	Value      float64 `json:"value"`
	Currency   string  `json:"currency"`
	Context    string  `json:"context"`  // surrounding substring
	Position   int     `json:"position"` // byte offset in the source text
	Confidence float64 `json:"confidence"`
}

// PhoneMention is a brand (and tentative model) occurrence found in text.
type PhoneMention struct {
	Brand      string  `json:"brand"`
	Model      string  `json:"model,omitempty"` // tentative, the capitalized run after the brand
	Position   int     `json:"position"`
	Confidence float64 `json:"confidence"`
}

// ConditionFlags are the five independent product-condition booleans.
// They are not mutually exclusive.
type ConditionFlags struct {
	IsNew         bool `json:"isNew"`
	HasWarranty   bool `json:"hasWarranty"`
	IsRefurbished bool `json:"isRefurbished"`
	IsUsed        bool `json:"isUsed"`
	IsOfficial    bool `json:"isOfficial"`
}

// ExtractedSignals is everything the extractor pulled out of one candidate
// text, plus the aggregate extraction confidence.
type ExtractedSignals struct {
	Prices     []PriceMention `json:"prices,omitempty"`
	BestPrice  float64        `json:"bestPrice,omitempty"` // lowest accepted price, 0 when none
	Storage    string         `json:"storage,omitempty"`
	RAM        string         `json:"ram,omitempty"`
	Stores     []string       `json:"stores,omitempty"` // canonical store names
	Conditions ConditionFlags `json:"conditions"`
	Mentions   []PhoneMention `json:"mentions,omitempty"`
	Confidence float64        `json:"confidence"`
}

// ValidationResult is the outcome of the ordered accept/reject checks.
// RejectionReason is empty exactly when IsValid is true.
type ValidationResult struct {
	IsValid         bool   `json:"isValid"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	StorageMatch    bool   `json:"storageMatch"`
	IsAccessory     bool   `json:"isAccessory"`
	IsOutlier       bool   `json:"isOutlier"`
}

// ComponentScore is one weighted component of the overall confidence.
type ComponentScore struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ConfidenceBreakdown is the full audit of how an overall confidence score
// was assembled from its four components.
type ConfidenceBreakdown struct {
	ExtractionScore  float64                   `json:"extractionScore"`
	MatchScore       float64                   `json:"matchScore"`
	TrustScore       float64                   `json:"trustScore"`
	ConsistencyScore float64                   `json:"consistencyScore"`
	Overall          float64                   `json:"overall"`
	Components       map[string]ComponentScore `json:"components"`
}

// Offer is the final scored, validated price record for a (store, variant)
// pair. AppliedRules is a list of human-readable audit strings
// (e.g. "+0.4: Trusted store found") and is a stable contract for any
// downstream reporting layer.
type Offer struct {
	Store           string         `json:"store"`
	Title           string         `json:"title,omitempty"`
	Price           float64        `json:"price"`
	Currency        string         `json:"currency"`
	URL             string         `json:"url,omitempty"`
	Storage         string         `json:"storage,omitempty"` // as extracted from the text
	RAM             string         `json:"ram,omitempty"`
	Conditions      ConditionFlags `json:"conditions"`
	Confidence      float64        `json:"confidence"`
	ConfidenceLevel string         `json:"confidenceLevel"`
	AppliedRules    []string       `json:"appliedRules,omitempty"`
	QualityScore    float64        `json:"qualityScore,omitempty"` // auxiliary seller-reputation score
}

// OfferStats are descriptive statistics over a set of scored offers.
type OfferStats struct {
	TotalOffers         int               `json:"totalOffers"`
	AvgConfidence       float64           `json:"avgConfidence"`
	MaxConfidence       float64           `json:"maxConfidence"`
	MinConfidence       float64           `json:"minConfidence"`
	HighConfidenceCount int               `json:"highConfidenceCount"`
	Distribution        LevelDistribution `json:"distribution"`
}

// LevelDistribution is the confidence-tier histogram of a set of offers.
type LevelDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// PriceRange summarises the prices seen across a set of offers.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// ConfidenceReport is the per-variant summary handed to reporting layers.
type ConfidenceReport struct {
	Target          TargetProduct `json:"target"`
	Variant         Variant       `json:"variant"`
	Summary         OfferStats    `json:"summary"`
	BestOffer       *Offer        `json:"bestOffer,omitempty"`
	PriceRange      *PriceRange   `json:"priceRange,omitempty"`
	Recommendations []string      `json:"recommendations"`
}
