package usecase

import (
	"regexp"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// keywordSet compiles a fixed list of literal keywords into an Aho-Corasick
// automaton for single-pass, case-insensitive substring matching.
type keywordSet struct {
	words      []string
	matcher    *ahocorasick.Matcher
	boundaries map[string]*regexp.Regexp
}

func newKeywordSet(words ...string) *keywordSet {
	k := &keywordSet{
		words:      words,
		matcher:    ahocorasick.NewStringMatcher(words),
		boundaries: make(map[string]*regexp.Regexp, len(words)),
	}
	// Word-boundary patterns are only meaningful for ASCII keywords; \b in
	// Go regexps is ASCII-only, so non-Latin keywords fall back to plain
	// containment.
	for _, w := range words {
		if isASCIIWord(w) {
			k.boundaries[w] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		}
	}
	return k
}

// Matches reports whether any keyword occurs in text as a substring.
func (k *keywordSet) Matches(text string) bool {
	return len(k.matcher.Match([]byte(strings.ToLower(text)))) > 0
}

// Find returns the keywords occurring in text, in dictionary order.
func (k *keywordSet) Find(text string) []string {
	hits := k.matcher.Match([]byte(strings.ToLower(text)))
	if len(hits) == 0 {
		return nil
	}
	sort.Ints(hits)
	found := make([]string, 0, len(hits))
	for _, h := range hits {
		if h < len(k.words) {
			found = append(found, k.words[h])
		}
	}
	return found
}

// FoundAsWord reports whether the keyword occurs in text delimited by word
// boundaries (containment for non-ASCII keywords).
func (k *keywordSet) FoundAsWord(text, keyword string) bool {
	lower := strings.ToLower(text)
	if re, ok := k.boundaries[keyword]; ok {
		return re.MatchString(lower)
	}
	return strings.Contains(lower, keyword)
}

func isASCIIWord(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

// Accessory detection keywords (English + Arabic). A hit means the listing
// is probably a case/charger/cable, not a handset.
var accessoryKeywords = newKeywordSet(
	"case", "cover", "cable", "charger", "screen protector",
	"tempered glass", "adapter", "holder", "stand", "mount",
	"earphone", "headphone", "headset", "earbuds", "airpods",
	"power bank", "battery pack", "car charger", "wall charger",
	"usb", "otg", "stylus", "pen", "grip", "ring",
	"skin", "sticker", "protector", "film", "guard",
	"جراب", "كفر", "واقي", "شاحن", "كابل", "سماعة",
)

// Refurbished/used detection keywords.
var refurbishedKeywords = newKeywordSet(
	"refurbished", "used", "open box", "pre-owned", "second hand",
	"renewed", "reconditioned", "like new", "pre owned",
	"مستعمل", "مجدد", "مستورد", "مفتوح",
)

// Keywords that indicate the text describes an actual handset. Used to tell
// phone+accessory bundles apart from accessory-only listings.
var phoneIndicatorKeywords = newKeywordSet(
	"phone", "smartphone", "mobile", "هاتف", "موبايل",
)

// Price-intent keywords legitimize bare numbers as price mentions.
var priceIntentKeywords = newKeywordSet(
	"price", "cost", "costs", "سعر", "buy", "sale", "offer",
)

// Condition-flag keyword sets. The five flags are independent; "new" also
// firing on "renewed" is inherited substring behavior and is compensated by
// the separate refurbished flag.
var (
	newConditionKeywords      = newKeywordSet("new", "brand new", "جديد")
	warrantyKeywords          = newKeywordSet("warranty", "ضمان", "guarantee")
	refurbishedFlagKeywords   = newKeywordSet("refurbished", "renewed", "مجدد")
	usedConditionKeywords     = newKeywordSet("used", "second hand", "مستعمل", "pre-owned")
	officialConditionKeywords = newKeywordSet("official", "authorized", "رسمي")
)
