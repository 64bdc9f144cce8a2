package discovery

import (
	"testing"

	"github.com/pdiddy/source-scout/pkg/types"
)

type urlCooldown struct {
	NopCooldown
	skipURLs map[string]bool
}

func (c urlCooldown) ShouldSkipURL(u string) bool { return c.skipURLs[u] }

func TestClassifyPreFilters(t *testing.T) {
	in := ClassifyInput{
		Identity: viperIdentity(),
		Category: mouseCategory(),
		Cooldown: urlCooldown{skipURLs: map[string]bool{
			"https://rtings.com/razer-viper-v3-pro-review": true,
		}},
		Results: []types.RawResult{
			{URL: "ftp://razer.com/file", Provider: "searxng"},
			{URL: "http://rtings.com/mouse/reviews/razer/viper-v3-pro", Provider: "searxng"},
			{URL: "https://pinterest.com/pin/razer-viper-v3-pro", Provider: "searxng"},
			{URL: "https://rtings.com/razer-viper-v3-pro-review/", Provider: "searxng"},
		},
	}
	out := Classify(in, nil)

	if len(out.Candidates) != 0 {
		t.Fatalf("candidates = %+v, want none", out.Candidates)
	}
	reasons := map[string]string{}
	for _, d := range out.Dropped {
		reasons[d.URL] = d.Reason
	}
	if reasons["ftp://razer.com/file"] != reasonInsecureURL {
		t.Errorf("ftp drop reason = %q", reasons["ftp://razer.com/file"])
	}
	if reasons["http://rtings.com/mouse/reviews/razer/viper-v3-pro"] != reasonInsecureURL {
		t.Errorf("plain-http drop reason = %q", reasons["http://rtings.com/mouse/reviews/razer/viper-v3-pro"])
	}
	if reasons["https://pinterest.com/pin/razer-viper-v3-pro"] != reasonDeniedHost {
		t.Errorf("denied drop reason = %q", reasons["https://pinterest.com/pin/razer-viper-v3-pro"])
	}
	if reasons["https://rtings.com/razer-viper-v3-pro-review/"] != reasonCooldownURLSkip {
		t.Errorf("cooldown drop reason = %q", reasons["https://rtings.com/razer-viper-v3-pro-review/"])
	}
}

func TestClassifyMergesCrossProvider(t *testing.T) {
	in := ClassifyInput{
		Identity: viperIdentity(),
		Category: mouseCategory(),
		Results: []types.RawResult{
			{URL: "https://rtings.com/mouse/reviews/razer/viper-v3-pro?utm_source=x",
				Title: "Razer Viper V3 Pro Review", Provider: "searxng", Query: "q1"},
			{URL: "https://rtings.com/mouse/reviews/razer/viper-v3-pro/",
				Title: "Razer Viper V3 Pro Review", Provider: "duckduckgo", Query: "q2"},
		},
	}
	out := Classify(in, nil)

	if len(out.Candidates) != 1 {
		t.Fatalf("candidates = %d, want 1 after canonical merge", len(out.Candidates))
	}
	c := out.Candidates[0]
	if c.CrossProviderCount != 2 {
		t.Errorf("cross_provider_count = %d, want 2", c.CrossProviderCount)
	}
	if len(c.SeenInQueries) != 2 {
		t.Errorf("seen_in_queries = %v", c.SeenInQueries)
	}
	if c.Host != "rtings.com" || c.Tier != 2 || c.TierName != "lab" {
		t.Errorf("classification = host %q tier %d %q", c.Host, c.Tier, c.TierName)
	}
	if c.Decision != types.DecisionPending {
		t.Errorf("decision = %q, want pending", c.Decision)
	}
}

func TestClassifyRelevanceFilter(t *testing.T) {
	in := ClassifyInput{
		Identity: viperIdentity(),
		Category: mouseCategory(),
		Results: []types.RawResult{
			// Off-target page on an approved non-manufacturer host.
			{URL: "https://rtings.com/keyboard/reviews/corsair-k100",
				Title: "Corsair K100 Review", Provider: "searxng"},
			// Low-signal search page.
			{URL: "https://rtings.com/search?q=viper", Provider: "searxng"},
			// Manufacturer role bypasses the filter even with no tokens.
			{URL: "https://razer.com/downloads", Provider: "searxng"},
			// Plan provider bypasses the filter.
			{URL: "https://eloshapes.com/random-page", Provider: "plan"},
		},
	}
	out := Classify(in, nil)

	urls := map[string]bool{}
	for _, c := range out.Candidates {
		urls[c.URL] = true
	}
	if urls["https://rtings.com/keyboard/reviews/corsair-k100"] {
		t.Error("off-target page survived the relevance filter")
	}
	if urls["https://rtings.com/search?q=viper"] {
		t.Error("search page survived the low-signal filter")
	}
	if !urls["https://razer.com/downloads"] {
		t.Error("manufacturer page was filtered")
	}
	if !urls["https://eloshapes.com/random-page"] {
		t.Error("plan-provider page was filtered")
	}
}

func TestGuessDocKind(t *testing.T) {
	tests := []struct {
		url, title string
		want       types.DocKind
	}{
		{"https://razer.com/manuals/viper-v3-pro.pdf", "", types.DocManualPDF},
		{"https://razer.com/files/viper-v3-pro.pdf", "Dimensions", types.DocSpecPDF},
		{"https://example.com/viper-v3-pro-teardown", "", types.DocTeardownReview},
		{"https://rtings.com/mouse/reviews/razer/viper-v3-pro", "", types.DocLabReview},
		{"https://example.com/viper-v3-pro-datasheet", "", types.DocSpec},
		{"https://razer.com/support/viper-v3-pro", "", types.DocSupport},
		{"https://razer.com/products/viper-v3-pro", "", types.DocProductPage},
		{"https://example.com/news/some-article", "", types.DocOther},
	}
	for _, tt := range tests {
		if got := guessDocKind(tt.url, tt.title); got != tt.want {
			t.Errorf("guessDocKind(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestIdentityMatchLevel(t *testing.T) {
	id := types.Identity{Brand: "Razer", Model: "Viper V3", Variant: "Pro"}
	tests := []struct {
		text string
		want types.IdentityMatch
	}{
		{"razer viper v3 pro review", types.MatchStrong},
		{"razer viper v3 announced", types.MatchPartial},
		{"razer keyboards on sale", types.MatchWeak},
		{"logitech g502 review", types.MatchNone},
		{"razerviperv3pro specs", types.MatchStrong}, // compacted form counts
	}
	for _, tt := range tests {
		if got := identityMatchLevel(tt.text, id); got != tt.want {
			t.Errorf("identityMatchLevel(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestVariantGuardHit(t *testing.T) {
	known := []string{"Pro", "HyperSpeed", "Mini"}
	if !variantGuardHit("razer viper v3 hyperspeed review", "Pro", known) {
		t.Error("foreign variant not flagged")
	}
	if variantGuardHit("razer viper v3 pro review", "Pro", known) {
		t.Error("target variant flagged as foreign")
	}
	if variantGuardHit("razer viper v3 pro review", "Pro", nil) {
		t.Error("hit without any known variants")
	}
}

func TestMultiModelHint(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"razer viper v3 pro vs logitech g pro x", true},
		{"top 10 gaming mice of 2026", true},
		{"best 5 wireless mice compared", true},
		{"comparison of flagship mice", true},
		{"razer viper v3 pro review", false},
	}
	for _, tt := range tests {
		if got := multiModelHintRe.MatchString(tt.text); got != tt.want {
			t.Errorf("multiModelHint(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
