package usecase

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Package-level compiled regex patterns for performance
var (
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
	nonSlugCharsRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
	repeatedUnderscores = regexp.MustCompile(`_+`)
	leadingDigitsRegex  = regexp.MustCompile(`\d+`)
)

// brandMap standardizes the common phone-brand spellings seen in
// marketplace text. Keys are lowercased, whitespace-collapsed input.
var brandMap = map[string]string{
	"samsung":  "Samsung",
	"apple":    "Apple",
	"xiaomi":   "Xiaomi",
	"oppo":     "Oppo",
	"realme":   "Realme",
	"oneplus":  "OnePlus",
	"one plus": "OnePlus",
	"google":   "Google",
	"motorola": "Motorola",
	"moto":     "Motorola",
	"nokia":    "Nokia",
	"vivo":     "Vivo",
	"huawei":   "Huawei",
	"honor":    "Honor",
	"infinix":  "Infinix",
	"tecno":    "Tecno",
	"itel":     "Itel",
	"lenovo":   "Lenovo",
	"asus":     "Asus",
	"sony":     "Sony",
	"lg":       "LG",
	"htc":      "HTC",
	"alcatel":  "Alcatel",
	"zte":      "ZTE",
	"meizu":    "Meizu",
	"nothing":  "Nothing",
}

// NormalizeBrand standardizes a brand name ("SAMSUNG" -> "Samsung",
// "one plus" -> "OnePlus"). Unknown brands come back title-cased from the
// original input. Empty input yields an empty string.
func NormalizeBrand(brand string) string {
	if brand == "" {
		return ""
	}

	key := strings.ToLower(strings.TrimSpace(brand))
	key = multipleSpacesRegex.ReplaceAllString(key, " ")

	if canonical, ok := brandMap[key]; ok {
		return canonical
	}

	// Title-case the original casing, not the lowercased lookup key
	return cases.Title(language.English).String(strings.TrimSpace(brand))
}

// NormalizeModel trims and collapses internal whitespace runs. Casing is
// left alone: "iPhone 15 Pro Max" must survive round trips.
func NormalizeModel(model string) string {
	if model == "" {
		return ""
	}
	return multipleSpacesRegex.ReplaceAllString(strings.TrimSpace(model), " ")
}

// CreateSlug builds the URL-safe identifier for a brand+model pair,
// e.g. ("Samsung", "Galaxy S24 Ultra") -> "samsung_galaxy_s24_ultra".
// Deterministic and total for any input.
func CreateSlug(brand, model string) string {
	combined := strings.ToLower(brand + " " + model)
	cleaned := nonSlugCharsRegex.ReplaceAllString(combined, "")
	slug := multipleSpacesRegex.ReplaceAllString(strings.TrimSpace(cleaned), "_")
	slug = repeatedUnderscores.ReplaceAllString(slug, "_")
	return strings.Trim(slug, "_")
}

// NormalizeStorage canonicalizes a storage capacity string
// ("256 GB" -> "256GB", "1 TB" -> "1TB", "512G" -> "512GB").
// Returns "" when no capacity can be recognized.
func NormalizeStorage(storage string) string {
	return normalizeCapacity(storage, true)
}

// NormalizeRAM canonicalizes a RAM capacity string ("12 GB" -> "12GB").
// Returns "" when no capacity can be recognized.
func NormalizeRAM(ram string) string {
	return normalizeCapacity(ram, false)
}

// normalizeCapacity applies the shared unit rules. Order matters: TB is
// checked before GB, GB before the bare-G fallback.
func normalizeCapacity(raw string, allowTB bool) string {
	if raw == "" {
		return ""
	}

	clean := strings.ReplaceAll(strings.ToUpper(raw), " ", "")
	digits := leadingDigitsRegex.FindString(clean)

	switch {
	case allowTB && strings.Contains(clean, "TB"):
		if digits == "" {
			return ""
		}
		return digits + "TB"
	case strings.Contains(clean, "GB"):
		if digits == "" {
			return ""
		}
		return digits + "GB"
	case strings.Contains(clean, "G"):
		return strings.ReplaceAll(clean, "G", "GB")
	case digits != "":
		// Bare number, assume GB
		return digits + "GB"
	}

	return ""
}
