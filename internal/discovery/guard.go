// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/source-scout/pkg/types"
)

// Guard rejection reasons. The first failing rule is the one recorded.
const (
	reasonMissingBrandToken     = "missing_brand_token"
	reasonMissingRequiredDigits = "missing_required_digits"
	reasonMissingModelToken     = "missing_model_token"
	reasonForeignModelToken     = "foreign_model_token"
	reasonGuardFallback         = "guard_fallback_retained"
)

// maxForeignTokenReasons bounds the foreign tokens retained per query.
const maxForeignTokenReasons = 6

// genericStoplist holds marketing words that never identify a model on
// their own. They are excluded from the model token set.
var genericStoplist = map[string]bool{
	"gaming":    true,
	"pro":       true,
	"wireless":  true,
	"wired":     true,
	"mini":      true,
	"max":       true,
	"ultra":     true,
	"lite":      true,
	"plus":      true,
	"edition":   true,
	"series":    true,
	"special":   true,
	"signature": true,
	"the":       true,
	"and":       true,
	"for":       true,
}

var (
	digitGroupRe = regexp.MustCompile(`\d{2,}`)

	// unitSuffixRe matches measurement tokens like "26kdpi", "1000hz",
	// "8khz", "54g", "80mah" that contain digits without naming a model.
	unitSuffixRe = regexp.MustCompile(`^\d+(\.\d+)?k?(dpi|hz|khz|g|mm|ms|mah|ghz|mhz)$`)

	hasLetterRe = regexp.MustCompile(`[a-z]`)
	hasDigitRe  = regexp.MustCompile(`[0-9]`)
)

// foldAlnum lowercases s and drops every non-alphanumeric rune.
func foldAlnum(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokenize splits s into lowercased alphanumeric tokens.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	var tokens []string
	for _, f := range fields {
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// BuildGuardContext derives the identity guard's token material from the
// identity and any extra guard terms the caller allows (learned synonyms,
// known aliases). The context is persisted into the search profile.
func BuildGuardContext(id types.Identity, extraAllowed []string) types.GuardContext {
	var gc types.GuardContext

	for _, t := range tokenize(id.Brand) {
		if len(t) >= 3 {
			gc.BrandTokens = append(gc.BrandTokens, t)
		}
	}

	brandSet := make(map[string]bool, len(gc.BrandTokens))
	for _, t := range gc.BrandTokens {
		brandSet[t] = true
	}

	modelText := strings.TrimSpace(id.Model + " " + id.Variant)
	seen := make(map[string]bool)
	for _, t := range tokenize(modelText) {
		if len(t) < 3 || genericStoplist[t] || brandSet[t] || seen[t] {
			continue
		}
		seen[t] = true
		gc.ModelTokens = append(gc.ModelTokens, t)
	}

	for _, g := range digitGroupRe.FindAllString(modelText, -1) {
		gc.RequiredDigits = append(gc.RequiredDigits, g)
	}

	// Allowed tokens: everything from model/variant plus caller-supplied
	// guard terms, in both literal and compacted forms.
	allowed := make(map[string]bool)
	add := func(s string) {
		for _, t := range tokenize(s) {
			allowed[t] = true
		}
		if c := foldAlnum(s); c != "" {
			allowed[c] = true
		}
	}
	add(modelText)
	add(id.Brand)
	for _, term := range extraAllowed {
		add(term)
	}
	for t := range allowed {
		gc.AllowedTokens = append(gc.AllowedTokens, t)
	}
	sort.Strings(gc.AllowedTokens)

	return gc
}

// checkQuery applies the identity guard rules to one query. It returns
// ok=true for accepted queries; otherwise the first failing rule's reason
// and any rule-specific details. The guard is a contract, not a cosmetic
// filter: a query passing it is guaranteed to reference the target
// identity and no foreign model.
func checkQuery(query string, gc types.GuardContext) (ok bool, reason string, details []string) {
	tokens := tokenize(query)
	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
	}
	folded := foldAlnum(query)

	// Rule 1: brand presence, literal or alnum-compacted.
	if len(gc.BrandTokens) > 0 {
		found := false
		for _, bt := range gc.BrandTokens {
			if tokenSet[bt] || strings.Contains(folded, bt) {
				found = true
				break
			}
		}
		if !found {
			return false, reasonMissingBrandToken, nil
		}
	}

	// Rule 2: every required digit group must appear.
	for _, dg := range gc.RequiredDigits {
		if !strings.Contains(folded, dg) {
			return false, reasonMissingRequiredDigits, []string{dg}
		}
	}

	// Rule 3: no foreign model-like token. A token naming another model
	// (letters and digits mixed, outside the allowed set, not a unit
	// suffix) poisons the query even when the target model is absent
	// too, so this fires before the model-token rule.
	allowed := make(map[string]bool, len(gc.AllowedTokens))
	for _, t := range gc.AllowedTokens {
		allowed[t] = true
	}
	var foreign []string
	for _, t := range tokens {
		if !hasLetterRe.MatchString(t) || !hasDigitRe.MatchString(t) {
			continue
		}
		if allowed[t] || unitSuffixRe.MatchString(t) {
			continue
		}
		if len(foreign) < maxForeignTokenReasons {
			foreign = append(foreign, t)
		}
	}
	if len(foreign) > 0 {
		return false, reasonForeignModelToken, foreign
	}

	// Rule 4: without digit groups, require a distinctive model token.
	if len(gc.RequiredDigits) == 0 && len(gc.ModelTokens) > 0 {
		hasLong := false
		found := false
		for _, mt := range gc.ModelTokens {
			if len(mt) < 4 {
				continue
			}
			hasLong = true
			if tokenSet[mt] || strings.Contains(folded, mt) {
				found = true
				break
			}
		}
		if hasLong && !found {
			return false, reasonMissingModelToken, nil
		}
	}

	return true, "", nil
}
