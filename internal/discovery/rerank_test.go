package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pdiddy/source-scout/internal/intel"
	"github.com/pdiddy/source-scout/internal/llmassist"
	"github.com/pdiddy/source-scout/pkg/types"
)

func candidate(url, host string, tier int, tierName string) types.Candidate {
	return types.Candidate{
		URL:                url,
		Host:               host,
		RootDomain:         host,
		Tier:               tier,
		TierName:           tierName,
		DocKindGuess:       types.DocOther,
		IdentityMatchLevel: types.MatchNone,
		Decision:           types.DecisionPending,
	}
}

func TestRerankDeterministicOrder(t *testing.T) {
	in := RerankInput{
		Identity: viperIdentity(),
		Candidates: []types.Candidate{
			candidate("https://amazon.com/dp/x", "amazon.com", 3, "retailer"),
			candidate("https://razer.com/products/viper-v3-pro", "razer.com", 1, "manufacturer"),
			candidate("https://rtings.com/review", "rtings.com", 2, "lab"),
		},
		DiscoveryCap: 10,
	}
	out := Rerank(context.Background(), in, llmassist.Nop(), nil)

	if out[0].Host != "razer.com" || out[1].Host != "rtings.com" || out[2].Host != "amazon.com" {
		t.Errorf("order = %s, %s, %s", out[0].Host, out[1].Host, out[2].Host)
	}
	for _, c := range out {
		if c.Decision != types.DecisionSelected {
			t.Errorf("%s decision = %q, want selected under cap", c.URL, c.Decision)
		}
	}
}

func TestRerankFieldYieldBreaksTierTies(t *testing.T) {
	store := &intel.Store{Domains: map[string]intel.DomainIntel{
		"eloshapes.com": {FieldHelp: map[string]int{"sensor_name": 3}},
	}}
	in := RerankInput{
		Identity: viperIdentity(),
		Candidates: []types.Candidate{
			candidate("https://rtings.com/review", "rtings.com", 2, "lab"),
			candidate("https://eloshapes.com/mouse/viper-v3-pro", "eloshapes.com", 2, "database"),
		},
		MissingFields: []string{"sensor_name"},
		Intel:         store,
		DiscoveryCap:  10,
	}
	out := Rerank(context.Background(), in, llmassist.Nop(), nil)

	if out[0].Host != "eloshapes.com" {
		t.Errorf("out[0] = %s, want eloshapes.com ahead on field yield", out[0].Host)
	}
}

func TestRerankTopKDecisions(t *testing.T) {
	var cands []types.Candidate
	for i := 0; i < 5; i++ {
		cands = append(cands, candidate(fmt.Sprintf("https://rtings.com/p%d", i), "rtings.com", 2, "lab"))
	}
	in := RerankInput{
		Identity:     viperIdentity(),
		Candidates:   cands,
		DiscoveryCap: 3,
	}
	out := Rerank(context.Background(), in, llmassist.Nop(), nil)

	selected := 0
	for i, c := range out {
		switch c.Decision {
		case types.DecisionSelected:
			selected++
			if !hasReason(c, reasonSelectedTopK) {
				t.Errorf("selected %s missing selected_top_k", c.URL)
			}
		case types.DecisionNotSelected:
			if i < 3 {
				t.Errorf("position %d not selected", i)
			}
			if !hasReason(c, reasonBelowTopKCutoff) {
				t.Errorf("unselected %s missing below_top_k_cutoff", c.URL)
			}
		default:
			t.Errorf("%s decision = %q", c.URL, c.Decision)
		}
	}
	if selected != 3 {
		t.Errorf("selected = %d, want 3", selected)
	}
}

func TestRerankTierCoverageSplice(t *testing.T) {
	// Three tier-1 candidates fill the cap; the lab and database
	// candidates rank below it and must be spliced in.
	cands := []types.Candidate{
		candidate("https://razer.com/a", "razer.com", 1, "manufacturer"),
		candidate("https://razer.com/b", "razer.com", 1, "manufacturer"),
		candidate("https://razer.com/c", "razer.com", 1, "manufacturer"),
		candidate("https://rtings.com/review", "rtings.com", 2, "lab"),
		candidate("https://eloshapes.com/entry", "eloshapes.com", 2, "database"),
	}
	in := RerankInput{
		Identity:     viperIdentity(),
		Candidates:   cands,
		DiscoveryCap: 3,
	}
	out := Rerank(context.Background(), in, llmassist.Nop(), nil)

	var selectedTiers []string
	for _, c := range out {
		if c.Decision == types.DecisionSelected {
			selectedTiers = append(selectedTiers, c.TierName)
		}
	}
	if len(selectedTiers) != 3 {
		t.Fatalf("selected = %d, want 3", len(selectedTiers))
	}
	if !containsString(selectedTiers, "lab") || !containsString(selectedTiers, "database") {
		t.Errorf("selected tiers = %v, want lab and database covered", selectedTiers)
	}
	for _, c := range out {
		if c.TierName == "lab" && !hasReason(c, reasonTierCoverageSplice) {
			t.Error("spliced lab candidate missing tier_coverage_splice")
		}
	}
}

type stubTriage struct {
	order []string
	err   error
}

func (s stubTriage) RankCandidates(context.Context, types.Identity, []types.Candidate, map[string]string) ([]string, error) {
	return s.order, s.err
}

func TestRerankLLMTriageReplacesOrder(t *testing.T) {
	features := llmassist.Nop()
	features.Triage = stubTriage{order: []string{
		"https://amazon.com/dp/x",
		"https://razer.com/products/viper-v3-pro",
	}}

	in := RerankInput{
		Identity: viperIdentity(),
		Candidates: []types.Candidate{
			candidate("https://razer.com/products/viper-v3-pro", "razer.com", 1, "manufacturer"),
			candidate("https://amazon.com/dp/x", "amazon.com", 3, "retailer"),
		},
		LLMTriage:    true,
		DiscoveryCap: 10,
	}
	out := Rerank(context.Background(), in, features, nil)

	if out[0].Host != "amazon.com" {
		t.Errorf("out[0] = %s, want llm order to replace deterministic", out[0].Host)
	}
	if !hasReason(out[0], reasonLLMTriageOrder) {
		t.Error("llm-ordered candidate missing llm_triage_order")
	}
}

func TestRerankLLMTriageFailureKeepsDeterministic(t *testing.T) {
	features := llmassist.Nop()
	features.Triage = stubTriage{err: errors.New("model overloaded")}

	in := RerankInput{
		Identity: viperIdentity(),
		Candidates: []types.Candidate{
			candidate("https://amazon.com/dp/x", "amazon.com", 3, "retailer"),
			candidate("https://razer.com/products/viper-v3-pro", "razer.com", 1, "manufacturer"),
		},
		LLMTriage:    true,
		DiscoveryCap: 10,
	}
	out := Rerank(context.Background(), in, features, nil)

	if out[0].Host != "razer.com" {
		t.Errorf("out[0] = %s, want deterministic order kept on failure", out[0].Host)
	}
}

func TestAnnotateReasonCodes(t *testing.T) {
	c := candidate("https://razer.com/manuals/viper.pdf", "razer.com", 1, "manufacturer")
	c.DocKindGuess = types.DocManualPDF
	c.IdentityMatchLevel = types.MatchStrong
	c.CrossProviderCount = 2
	annotate(&c, viperIdentity())

	for _, want := range []string{
		reasonApprovedDomain, reasonTier1, reasonDocPDF,
		reasonCrossProvider, reasonBrandMatch, reasonModelMatch,
	} {
		if !hasReason(c, want) {
			t.Errorf("missing reason %q: %v", want, c.ReasonCodes)
		}
	}
}

func hasReason(c types.Candidate, code string) bool {
	return containsString(c.ReasonCodes, code)
}
