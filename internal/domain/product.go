package domain

// TargetProduct is the brand+model identity a price search is about.
// Immutable once constructed.
type TargetProduct struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// Variant holds the optional storage/RAM constraints attached to a
// TargetProduct. Empty fields mean "any".
type Variant struct {
	Storage string `json:"storage,omitempty"`
	RAM     string `json:"ram,omitempty"`
}

// CandidateText is a raw marketplace snippet (title, description, search
// result blob) being evaluated against a target. It is never mutated.
type CandidateText struct {
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	DeclaredPrice *float64 `json:"declaredPrice,omitempty"`
	StoreHint     string   `json:"storeHint,omitempty"`
	URL           string   `json:"url,omitempty"` // passed through to the resulting offer
	Seller        *Seller  `json:"seller,omitempty"`
}

// Seller carries optional seller reputation signals attached to a candidate.
type Seller struct {
	Name         string  `json:"name,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	Reviews      int     `json:"reviews,omitempty"`
	Verified     bool    `json:"verified,omitempty"`
	Availability string  `json:"availability,omitempty"` // e.g. "in_stock"
}

// FullText returns the combined title+description blob the matching and
// validation checks operate on.
func (c CandidateText) FullText() string {
	if c.Description == "" {
		return c.Title
	}
	return c.Title + " " + c.Description
}
