// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RawResult is a single provider or corpus hit before classification.
type RawResult struct {
	// URL is the result URL as returned by the provider.
	URL string `json:"url" yaml:"url"`

	// Title is the result title, if the provider returned one.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Snippet is the provider's result excerpt, if any.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// Provider identifies which backend found this result
	// (e.g. "searxng", "duckduckgo", "corpus", "plan").
	Provider string `json:"provider" yaml:"provider"`

	// Query is the query text that produced this result.
	Query string `json:"query" yaml:"query"`
}

// Decision is the terminal state of a classified candidate. Every
// candidate reaches exactly one terminal decision.
type Decision string

const (
	DecisionPending     Decision = "pending"
	DecisionSelected    Decision = "selected"
	DecisionNotSelected Decision = "not_selected"
)

// DocKind is a guessed document type for a URL.
type DocKind string

const (
	DocManualPDF      DocKind = "manual_pdf"
	DocSpecPDF        DocKind = "spec_pdf"
	DocTeardownReview DocKind = "teardown_review"
	DocLabReview      DocKind = "lab_review"
	DocSpec           DocKind = "spec"
	DocSupport        DocKind = "support"
	DocProductPage    DocKind = "product_page"
	DocOther          DocKind = "other"
)

// IdentityMatch grades how much of the identity appears in a result's text.
type IdentityMatch string

const (
	MatchStrong  IdentityMatch = "strong"  // brand + model + variant
	MatchPartial IdentityMatch = "partial" // brand + model
	MatchWeak    IdentityMatch = "weak"    // brand only
	MatchNone    IdentityMatch = "none"
)

// Candidate is a classified, de-duplicated URL. The canonical URL is
// unique within one discovery pass; duplicate sightings merge provenance
// rather than create new entries.
type Candidate struct {
	// URL is the canonical URL.
	URL string `json:"url" yaml:"url"`

	// Host is the normalized host with any leading "www." stripped.
	Host string `json:"host" yaml:"host"`

	// RootDomain is the registrable domain of Host.
	RootDomain string `json:"root_domain" yaml:"root_domain"`

	// Tier is the source-quality rank (manufacturer=1, lab=2, ...).
	Tier int `json:"tier" yaml:"tier"`

	// TierName is the human name for Tier (e.g. "manufacturer", "lab").
	TierName string `json:"tier_name" yaml:"tier_name"`

	// Role is the functional category of the host
	// (manufacturer, review, retailer, other).
	Role string `json:"role" yaml:"role"`

	// Title and Snippet are carried over from the best raw sighting.
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// DocKindGuess is the heuristic document-type classification.
	DocKindGuess DocKind `json:"doc_kind_guess" yaml:"doc_kind_guess"`

	// IdentityMatchLevel grades identity presence in url+title+snippet.
	IdentityMatchLevel IdentityMatch `json:"identity_match_level" yaml:"identity_match_level"`

	// VariantGuardHit is true when text references a different known
	// variant than the target, flagging cross-variant contamination.
	VariantGuardHit bool `json:"variant_guard_hit" yaml:"variant_guard_hit"`

	// MultiModelHint is true for comparison/listicle-looking pages.
	MultiModelHint bool `json:"multi_model_hint" yaml:"multi_model_hint"`

	// CrossProviderCount is the number of distinct providers that saw
	// this canonical URL.
	CrossProviderCount int `json:"cross_provider_count" yaml:"cross_provider_count"`

	// SeenByProviders and SeenInQueries accumulate provenance across
	// merged sightings.
	SeenByProviders []string `json:"seen_by_providers" yaml:"seen_by_providers"`
	SeenInQueries   []string `json:"seen_in_queries" yaml:"seen_in_queries"`

	// Decision is finalized by the reranker.
	Decision Decision `json:"decision" yaml:"decision"`

	// ReasonCodes is the deduplicated audit trace for the decision.
	ReasonCodes []string `json:"reason_codes" yaml:"reason_codes"`

	// TriageScore is the final ordering score (deterministic or LLM).
	TriageScore float64 `json:"triage_score" yaml:"triage_score"`
}

// AddReason appends code to ReasonCodes if not already present.
func (c *Candidate) AddReason(code string) {
	for _, r := range c.ReasonCodes {
		if r == code {
			return
		}
	}
	c.ReasonCodes = append(c.ReasonCodes, code)
}
