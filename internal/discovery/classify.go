// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/source-scout/internal/category"
	"github.com/pdiddy/source-scout/internal/urlx"
	"github.com/pdiddy/source-scout/pkg/types"
)

// Classifier drop reasons.
const (
	reasonInsecureURL     = "insecure_url"
	reasonUnparseableURL  = "unparseable_url"
	reasonDeniedHost      = "denied_host"
	reasonCooldownURLSkip = "cooldown_url_skip"
	reasonLowSignalPath   = "low_signal_path"
	reasonRelevanceFilter = "relevance_filter"
)

// DroppedResult records one raw result the classifier rejected.
type DroppedResult struct {
	URL    string `json:"url" yaml:"url"`
	Reason string `json:"reason" yaml:"reason"`
}

// ClassifyInput bundles the classifier's collaborators alongside the raw
// results of one execution pass.
type ClassifyInput struct {
	Identity types.Identity
	Category *category.Config

	// KnownVariants are the variant names of the whole product family.
	// Any variant other than the target trips the variant guard.
	KnownVariants []string

	Cooldown Cooldown
	Results  []types.RawResult
}

// ClassifyOutput holds the deduplicated candidates in first-seen order and
// the per-URL drop log.
type ClassifyOutput struct {
	Candidates []types.Candidate
	Dropped    []DroppedResult
}

// Classify canonicalizes, deduplicates, and classifies raw results.
// Rejections are logged, never fatal. Duplicate sightings of a canonical
// URL merge provenance into the existing candidate.
func Classify(in ClassifyInput, logger *zap.Logger) ClassifyOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	cooldown := in.Cooldown
	if cooldown == nil {
		cooldown = NopCooldown{}
	}

	brandTokens := matchTokens(in.Identity.Brand)
	modelTokens := matchTokens(in.Identity.Model)

	var out ClassifyOutput
	byCanonical := make(map[string]int)

	drop := func(rawURL, reason string) {
		out.Dropped = append(out.Dropped, DroppedResult{URL: rawURL, Reason: reason})
		logger.Debug("result dropped", zap.String("url", rawURL), zap.String("reason", reason))
	}

	for _, r := range in.Results {
		if !urlx.IsSecureHTTP(r.URL) {
			drop(r.URL, reasonInsecureURL)
			continue
		}

		canonical := cooldown.Canonicalize(r.URL)
		if canonical == "" {
			c, err := urlx.Canonicalize(r.URL)
			if err != nil {
				drop(r.URL, reasonUnparseableURL)
				continue
			}
			canonical = c
		}
		u, err := url.Parse(canonical)
		if err != nil || u.Host == "" {
			drop(r.URL, reasonUnparseableURL)
			continue
		}

		host := urlx.NormalizeHost(u.Host)
		if in.Category != nil && in.Category.IsDenied(host) {
			drop(r.URL, reasonDeniedHost)
			continue
		}
		if cooldown.ShouldSkipURL(canonical) {
			drop(r.URL, reasonCooldownURLSkip)
			continue
		}

		if idx, ok := byCanonical[canonical]; ok {
			mergeSighting(&out.Candidates[idx], r)
			continue
		}

		tier, tierName, role := 4, "candidate", "other"
		if in.Category != nil {
			tier, tierName, role = in.Category.Classify(host)
		}

		// The relevance filter never applies to manufacturer pages or
		// synthesized plan URLs.
		if r.Provider != "plan" && role != "manufacturer" {
			if isLowSignalPath(u) {
				drop(r.URL, reasonLowSignalPath)
				continue
			}
			haystack := strings.ToLower(host + " " + u.Path + " " + u.RawQuery + " " +
				r.Title + " " + r.Snippet + " " + r.Query)
			if !passesRelevance(haystack, brandTokens, modelTokens) {
				drop(r.URL, reasonRelevanceFilter)
				continue
			}
		}

		text := strings.ToLower(canonical + " " + r.Title + " " + r.Snippet)
		c := types.Candidate{
			URL:                canonical,
			Host:               host,
			RootDomain:         urlx.RootDomain(host),
			Tier:               tier,
			TierName:           tierName,
			Role:               role,
			Title:              r.Title,
			Snippet:            r.Snippet,
			DocKindGuess:       guessDocKind(strings.ToLower(canonical), strings.ToLower(r.Title)),
			IdentityMatchLevel: identityMatchLevel(text, in.Identity),
			VariantGuardHit:    variantGuardHit(text, in.Identity.Variant, in.KnownVariants),
			MultiModelHint:     multiModelHintRe.MatchString(text),
			Decision:           types.DecisionPending,
		}
		mergeSighting(&c, r)
		byCanonical[canonical] = len(out.Candidates)
		out.Candidates = append(out.Candidates, c)
	}

	logger.Info("classification complete",
		zap.Int("raw", len(in.Results)),
		zap.Int("candidates", len(out.Candidates)),
		zap.Int("dropped", len(out.Dropped)))
	return out
}

// mergeSighting folds one raw sighting into a candidate, accumulating
// provider and query provenance.
func mergeSighting(c *types.Candidate, r types.RawResult) {
	if c.Title == "" {
		c.Title = r.Title
	}
	if c.Snippet == "" {
		c.Snippet = r.Snippet
	}
	if r.Provider != "" && !containsString(c.SeenByProviders, r.Provider) {
		c.SeenByProviders = append(c.SeenByProviders, r.Provider)
	}
	if r.Query != "" && !containsString(c.SeenInQueries, r.Query) {
		c.SeenInQueries = append(c.SeenInQueries, r.Query)
	}
	c.CrossProviderCount = len(c.SeenByProviders)
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

var (
	pdfManualRe   = regexp.MustCompile(`manual|guide|support|instructions|user`)
	teardownRe    = regexp.MustCompile(`teardown|disassembl`)
	labReviewRe   = regexp.MustCompile(`review|benchmark|lab|measurement|latency test`)
	specSignalRe  = regexp.MustCompile(`datasheet|technical|specification|specs\b|/spec`)
	supportRe     = regexp.MustCompile(`support|download|driver|firmware`)
	productPathRe = regexp.MustCompile(`/(product|products|p)/`)

	multiModelHintRe = regexp.MustCompile(`\bvs\.?\b|\btop\s+\d+\b|\bbest\s+\d+\b|compar(e|ison|ing)`)
)

// guessDocKind classifies the document type from the lowercased URL and
// title. Checks run in priority order; the first match wins.
func guessDocKind(lowerURL, lowerTitle string) types.DocKind {
	text := lowerURL + " " + lowerTitle
	if strings.Contains(lowerURL, ".pdf") {
		if pdfManualRe.MatchString(text) {
			return types.DocManualPDF
		}
		return types.DocSpecPDF
	}
	switch {
	case teardownRe.MatchString(text):
		return types.DocTeardownReview
	case labReviewRe.MatchString(text):
		return types.DocLabReview
	case specSignalRe.MatchString(text):
		return types.DocSpec
	case supportRe.MatchString(text):
		return types.DocSupport
	case productPathRe.MatchString(lowerURL):
		return types.DocProductPage
	}
	return types.DocOther
}

// identityMatchLevel grades how much of the identity appears in text
// (already lowercased). Both literal and alnum-compacted forms count.
func identityMatchLevel(text string, id types.Identity) types.IdentityMatch {
	folded := foldAlnum(text)
	present := func(term string) bool {
		if term == "" {
			return false
		}
		lower := strings.ToLower(term)
		return strings.Contains(text, lower) || strings.Contains(folded, foldAlnum(term))
	}

	brand := present(id.Brand)
	model := present(id.Model)
	variant := present(id.Variant)

	switch {
	case brand && model && variant:
		return types.MatchStrong
	case brand && model:
		return types.MatchPartial
	case brand:
		return types.MatchWeak
	}
	return types.MatchNone
}

// variantGuardHit reports whether text names a known variant other than
// the target one.
func variantGuardHit(text, targetVariant string, known []string) bool {
	target := foldAlnum(targetVariant)
	folded := foldAlnum(text)
	for _, v := range known {
		fv := foldAlnum(v)
		if fv == "" || fv == target {
			continue
		}
		if strings.Contains(folded, fv) {
			return true
		}
	}
	return false
}

var feedPathRe = regexp.MustCompile(`(^|/)(rss|atom|feed|opensearch)(\.xml)?$|\.(rss|atom)$`)

// isLowSignalPath flags URLs that never carry product data: site roots,
// index pages, feeds, and search result pages.
func isLowSignalPath(u *url.URL) bool {
	path := strings.ToLower(strings.TrimSuffix(u.Path, "/"))
	switch path {
	case "", "/index", "/index.html", "/index.php", "/home":
		return true
	}
	if feedPathRe.MatchString(path) {
		return true
	}
	if strings.Contains(path, "/search") {
		return true
	}
	return false
}

// genericSignals are keywords that let a result through the relevance
// filter when the identity has no distinctive model tokens.
var genericSignals = []string{
	"review", "spec", "manual", "support", "product", "technical",
	"datasheet", "benchmark", "latency", "sensor", "dpi",
}

// matchTokens returns the identity tokens used for relevance matching:
// lowercased, stoplisted marketing words removed.
func matchTokens(s string) []string {
	var tokens []string
	for _, t := range tokenize(s) {
		if len(t) < 2 || genericStoplist[t] {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// passesRelevance applies the token-hit thresholds to the lowercased
// haystack. With three or more model tokens at least two must appear,
// otherwise one suffices, and the brand must appear whenever brand tokens
// exist. Without model tokens a brand hit or a generic signal keyword is
// enough.
func passesRelevance(haystack string, brandTokens, modelTokens []string) bool {
	folded := foldAlnum(haystack)
	hits := func(tokens []string) int {
		n := 0
		for _, t := range tokens {
			if strings.Contains(haystack, t) || strings.Contains(folded, t) {
				n++
			}
		}
		return n
	}

	brandHits := hits(brandTokens)
	if len(modelTokens) == 0 {
		if brandHits > 0 {
			return true
		}
		for _, kw := range genericSignals {
			if strings.Contains(haystack, kw) {
				return true
			}
		}
		return false
	}

	need := 1
	if len(modelTokens) >= 3 {
		need = 2
	}
	if hits(modelTokens) < need {
		return false
	}
	if len(brandTokens) > 0 && brandHits == 0 {
		return false
	}
	return true
}
