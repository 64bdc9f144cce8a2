// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/source-scout/internal/intel"
	"github.com/pdiddy/source-scout/internal/llmassist"
	"github.com/pdiddy/source-scout/pkg/types"
)

// Reranker reason codes. ReasonCodes on a candidate are the audit trace
// downstream tooling consumes; codes accumulate and never repeat.
const (
	reasonApprovedDomain     = "approved_domain"
	reasonTier1              = "tier_1"
	reasonDocPDF             = "doc_pdf"
	reasonCrossProvider      = "cross_provider_multi"
	reasonBrandMatch         = "brand_match"
	reasonModelMatch         = "model_match"
	reasonDomainHintMatch    = "domain_hint_match"
	reasonDocHintMatch       = "doc_hint_match"
	reasonSelectedTopK       = "selected_top_k"
	reasonBelowTopKCutoff    = "below_top_k_cutoff"
	reasonLLMTriageOrder     = "llm_triage_order"
	reasonTierCoverageSplice = "tier_coverage_splice"
)

// RerankInput bundles the reranker's inputs.
type RerankInput struct {
	Identity      types.Identity
	Candidates    []types.Candidate
	MissingFields []string

	// Intel supplies learned field-yield signal; nil degrades to
	// tier-only ordering.
	Intel *intel.Store

	// LLMTriage enables the LLM ordering pass. UberAggressive implies it.
	LLMTriage      bool
	UberAggressive bool

	// DiscoveryCap is the top-K selection size.
	DiscoveryCap int
}

// coveredTiers are the tier names the final selection must include when
// the full candidate list has them at all.
var coveredTiers = []string{"lab", "database"}

// Rerank orders classified candidates, selects the top-K, and finalizes
// every candidate's decision and reason codes. When LLM triage succeeds
// its ordering replaces the deterministic one wholesale.
func Rerank(ctx context.Context, in RerankInput, features llmassist.Features, logger *zap.Logger) []types.Candidate {
	if logger == nil {
		logger = zap.NewNop()
	}

	ranked := make([]types.Candidate, len(in.Candidates))
	copy(ranked, in.Candidates)

	store := in.Intel
	if store == nil {
		store = intel.Empty()
	}
	for i := range ranked {
		ranked[i].TriageScore = deterministicScore(&ranked[i], in.MissingFields, store)
		annotate(&ranked[i], in.Identity)
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].TriageScore != ranked[b].TriageScore {
			return ranked[a].TriageScore > ranked[b].TriageScore
		}
		return ranked[a].URL < ranked[b].URL
	})

	if in.LLMTriage || in.UberAggressive {
		if order := llmOrder(ctx, in.Identity, ranked, features, logger); order != nil {
			ranked = order
		}
	}

	topK := in.DiscoveryCap
	if topK <= 0 {
		topK = 10
	}
	selected := topK
	if selected > len(ranked) {
		selected = len(ranked)
	}

	// Tier-coverage guarantee: the selection must carry a lab and a
	// database source whenever the full list has one. Finding a splice
	// candidate beyond the boundary implies the cap is full, so a
	// selected item is evicted to the first unselected slot. Eviction
	// skips covered-tier items so the second splice cannot undo the
	// first.
	for _, tierName := range coveredTiers {
		if hasTierName(ranked[:selected], tierName) {
			continue
		}
		best := -1
		for i := selected; i < len(ranked); i++ {
			if ranked[i].TierName == tierName {
				best = i
				break
			}
		}
		if best < 0 {
			continue
		}
		evict := selected - 1
		for evict >= 0 && isCoveredTier(ranked[evict].TierName) {
			evict--
		}
		if evict < 0 {
			evict = selected - 1
		}
		spliced := ranked[best]
		spliced.AddReason(reasonTierCoverageSplice)
		evicted := ranked[evict]
		copy(ranked[evict:selected-1], ranked[evict+1:selected])
		ranked[selected-1] = spliced
		copy(ranked[selected+1:best+1], ranked[selected:best])
		ranked[selected] = evicted
	}

	for i := range ranked {
		if i < selected {
			ranked[i].Decision = types.DecisionSelected
			ranked[i].AddReason(reasonSelectedTopK)
		} else {
			ranked[i].Decision = types.DecisionNotSelected
			ranked[i].AddReason(reasonBelowTopKCutoff)
		}
	}

	logger.Info("rerank complete",
		zap.Int("candidates", len(ranked)),
		zap.Int("selected", selected))
	return ranked
}

// deterministicScore orders by tier first and learned field-yield second,
// with smaller adjustments for document kind and provenance signals.
func deterministicScore(c *types.Candidate, missingFields []string, store *intel.Store) float64 {
	score := float64(5-c.Tier) * 10

	for _, field := range missingFields {
		score += store.FieldYield(c.RootDomain, field)
	}

	switch c.DocKindGuess {
	case types.DocManualPDF, types.DocSpecPDF:
		score += 4
	case types.DocSpec, types.DocLabReview:
		score += 3
	case types.DocTeardownReview, types.DocSupport:
		score += 2
	case types.DocProductPage:
		score += 1
	}

	switch c.IdentityMatchLevel {
	case types.MatchStrong:
		score += 3
	case types.MatchPartial:
		score += 2
	case types.MatchWeak:
		score += 1
	}

	if c.CrossProviderCount > 1 {
		score += 2
	}
	if c.VariantGuardHit {
		score -= 3
	}
	if c.MultiModelHint {
		score -= 1
	}
	return score
}

// annotate records the signal-level reason codes on a candidate.
func annotate(c *types.Candidate, id types.Identity) {
	if c.Tier < 4 {
		c.AddReason(reasonApprovedDomain)
	}
	if c.Tier == 1 {
		c.AddReason(reasonTier1)
	}
	switch c.DocKindGuess {
	case types.DocManualPDF, types.DocSpecPDF:
		c.AddReason(reasonDocPDF)
	case types.DocOther:
	default:
		c.AddReason(reasonDocHintMatch)
	}
	if c.CrossProviderCount > 1 {
		c.AddReason(reasonCrossProvider)
	}
	switch c.IdentityMatchLevel {
	case types.MatchStrong, types.MatchPartial:
		c.AddReason(reasonBrandMatch)
		c.AddReason(reasonModelMatch)
	case types.MatchWeak:
		c.AddReason(reasonBrandMatch)
	}
	if c.TierName == "lab" || c.TierName == "database" {
		c.AddReason(reasonDomainHintMatch)
	}
}

// llmOrder runs the LLM triage pass. A nil return means the pass is
// unavailable or returned nothing usable; the caller keeps the
// deterministic ordering.
func llmOrder(ctx context.Context, id types.Identity, ranked []types.Candidate, features llmassist.Features, logger *zap.Logger) []types.Candidate {
	hosts := make([]string, 0, len(ranked))
	seen := make(map[string]bool)
	for _, c := range ranked {
		if !seen[c.Host] {
			seen[c.Host] = true
			hosts = append(hosts, c.Host)
		}
	}
	safety, err := features.Safety.ClassifyDomains(ctx, hosts)
	if err != nil {
		logger.Warn("domain safety classification failed", zap.Error(err))
		safety = map[string]string{}
	}

	order, err := features.Triage.RankCandidates(ctx, id, ranked, safety)
	if err != nil {
		logger.Warn("llm triage failed, keeping deterministic order", zap.Error(err))
		return nil
	}
	if len(order) == 0 {
		return nil
	}

	byURL := make(map[string]int, len(ranked))
	for i, c := range ranked {
		byURL[c.URL] = i
	}
	out := make([]types.Candidate, 0, len(ranked))
	taken := make(map[string]bool, len(order))
	for _, u := range order {
		if idx, ok := byURL[u]; ok && !taken[u] {
			c := ranked[idx]
			c.AddReason(reasonLLMTriageOrder)
			out = append(out, c)
			taken[u] = true
		}
	}
	// Candidates the triage pass omitted keep their deterministic order
	// at the tail.
	for _, c := range ranked {
		if !taken[c.URL] {
			out = append(out, c)
		}
	}
	logger.Info("llm triage ordering applied", zap.Int("ranked", len(order)))
	return out
}

func isCoveredTier(tierName string) bool {
	for _, t := range coveredTiers {
		if t == tierName {
			return true
		}
	}
	return false
}

func hasTierName(cs []types.Candidate, tierName string) bool {
	for _, c := range cs {
		if c.TierName == tierName {
			return true
		}
	}
	return false
}
