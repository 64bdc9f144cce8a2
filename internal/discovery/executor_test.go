package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/pdiddy/source-scout/internal/providers"
	"github.com/pdiddy/source-scout/pkg/types"
)

type stubProvider struct {
	name      string
	available bool
	results   map[string][]types.RawResult
	err       error
	calls     atomic.Int64
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.available }

func (s *stubProvider) Search(_ context.Context, query string, _ int, _ types.HTTPConfig) ([]types.RawResult, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

type stubCorpus struct {
	hits map[string][]types.RawResult
	err  error
}

func (s stubCorpus) Search(_ context.Context, query string, _ int) ([]types.RawResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.hits[query], nil
}

type recordingCooldown struct {
	NopCooldown
	skipQueries map[string]bool
	recorded    []string
}

func (c *recordingCooldown) ShouldSkipQuery(_, query string) bool { return c.skipQueries[query] }
func (c *recordingCooldown) RecordQuery(_, query string)          { c.recorded = append(c.recorded, query) }

func queryRows(texts ...string) []types.QueryRow {
	rows := make([]types.QueryRow, len(texts))
	for i, t := range texts {
		rows[i] = types.QueryRow{Text: t}
	}
	return rows
}

func TestExecuteExternal(t *testing.T) {
	p := &stubProvider{
		name:      "searxng",
		available: true,
		results: map[string][]types.RawResult{
			"q1": {{URL: "https://rtings.com/a", Provider: "searxng", Query: "q1"}},
			"q2": {{URL: "https://rtings.com/b", Provider: "searxng", Query: "q2"}},
		},
	}
	in := ExecInput{
		Identity:  viperIdentity(),
		Queries:   queryRows("q1", "q2"),
		Providers: []providers.Provider{p},
		Config:    types.DiscoveryConfig{ResultLimit: 10, Concurrency: 2},
	}
	out := Execute(context.Background(), in, nil)

	if out.ProviderState != providerStateExternal {
		t.Errorf("provider state = %q, want external", out.ProviderState)
	}
	if len(out.Results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(out.Results))
	}
	// Attempt order follows query order regardless of worker scheduling.
	if out.Attempts[0].Query != "q1" || out.Attempts[1].Query != "q2" {
		t.Errorf("attempt order = %q, %q", out.Attempts[0].Query, out.Attempts[1].Query)
	}
	for _, a := range out.Attempts {
		if a.Reason != "dual_fallback_searxng_only" {
			t.Errorf("attempt reason = %q", a.Reason)
		}
	}
}

func TestExecuteProviderErrorDegrades(t *testing.T) {
	p := &stubProvider{name: "searxng", available: true, err: errors.New("upstream 502")}
	in := ExecInput{
		Identity:  viperIdentity(),
		Queries:   queryRows("q1"),
		Providers: []providers.Provider{p},
		Config:    types.DiscoveryConfig{ResultLimit: 10},
	}
	out := Execute(context.Background(), in, nil)

	if len(out.Results) != 0 {
		t.Errorf("results = %v, want none", out.Results)
	}
	if out.Attempts[0].Reason != reasonProviderError {
		t.Errorf("attempt reason = %q, want provider_error", out.Attempts[0].Reason)
	}
}

func TestExecuteCooldownSkip(t *testing.T) {
	p := &stubProvider{name: "searxng", available: true}
	cd := &recordingCooldown{skipQueries: map[string]bool{"q1": true}}
	in := ExecInput{
		Identity:  viperIdentity(),
		Queries:   queryRows("q1", "q2"),
		Providers: []providers.Provider{p},
		Cooldown:  cd,
		Config:    types.DiscoveryConfig{ResultLimit: 10},
	}
	out := Execute(context.Background(), in, nil)

	if out.Attempts[0].Reason != reasonCooldownSkip {
		t.Errorf("q1 reason = %q, want cooldown_skip", out.Attempts[0].Reason)
	}
	if len(cd.recorded) != 1 || cd.recorded[0] != "q2" {
		t.Errorf("recorded queries = %v, want [q2]", cd.recorded)
	}
}

func TestExecuteInternalSatisfiedSkipsExternal(t *testing.T) {
	hits := map[string][]types.RawResult{}
	for i := 0; i < 5; i++ {
		hits["q1"] = append(hits["q1"], types.RawResult{
			URL: fmt.Sprintf("https://razer.com/page-%d", i), Provider: "corpus", Query: "q1",
		})
	}
	p := &stubProvider{name: "searxng", available: true}
	in := ExecInput{
		Identity:               viperIdentity(),
		Queries:                queryRows("q1"),
		Providers:              []providers.Provider{p},
		Corpus:                 stubCorpus{hits: hits},
		RequiredFieldsTargeted: true,
		Config: types.DiscoveryConfig{
			ResultLimit:        10,
			InternalFirst:      true,
			InternalMinResults: 5,
		},
	}
	out := Execute(context.Background(), in, nil)

	if out.ProviderState != providerStateInternalOnly {
		t.Errorf("provider state = %q, want internal_only", out.ProviderState)
	}
	if p.calls.Load() != 0 {
		t.Errorf("external provider called %d times, want 0", p.calls.Load())
	}
	found := false
	for _, a := range out.Attempts {
		if a.Reason == reasonInternalSatisfied {
			found = true
		}
	}
	if !found {
		t.Error("internal_satisfied_skip_external attempt not recorded")
	}
}

func TestExecuteInternalNotTargetedStillSearches(t *testing.T) {
	hits := map[string][]types.RawResult{}
	for i := 0; i < 5; i++ {
		hits["q1"] = append(hits["q1"], types.RawResult{
			URL: fmt.Sprintf("https://razer.com/page-%d", i), Provider: "corpus", Query: "q1",
		})
	}
	p := &stubProvider{name: "searxng", available: true}
	in := ExecInput{
		Identity:               viperIdentity(),
		Queries:                queryRows("q1"),
		Providers:              []providers.Provider{p},
		Corpus:                 stubCorpus{hits: hits},
		RequiredFieldsTargeted: false,
		Config: types.DiscoveryConfig{
			ResultLimit:        10,
			InternalFirst:      true,
			InternalMinResults: 5,
		},
	}
	out := Execute(context.Background(), in, nil)

	if p.calls.Load() == 0 {
		t.Error("external provider not called despite untargeted queries")
	}
	if out.ProviderState != providerStateInternalMixed {
		t.Errorf("provider state = %q, want internal+external", out.ProviderState)
	}
}

func TestExecutePlanOnlyFallback(t *testing.T) {
	unavailable := &stubProvider{name: "searxng", available: false}
	in := ExecInput{
		Identity:          viperIdentity(),
		Queries:           queryRows("razer viper v3 pro spec"),
		Providers:         []providers.Provider{unavailable},
		ManufacturerHosts: []string{"razer.com"},
		OtherSearchHosts:  []string{"rtings.com"},
		Config:            types.DiscoveryConfig{ResultLimit: 10},
	}
	out := Execute(context.Background(), in, nil)

	if !out.PlanOnly {
		t.Fatal("PlanOnly = false")
	}
	if out.ProviderState != providerStatePlanOnly {
		t.Errorf("provider state = %q, want plan_only", out.ProviderState)
	}
	found := false
	for _, r := range out.Results {
		if r.URL == "https://razer.com/support/razer-viper-v3-pro" {
			found = true
		}
	}
	if !found {
		t.Error("plan-only results missing manufacturer support path")
	}
}
