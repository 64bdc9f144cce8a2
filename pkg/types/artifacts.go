// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SearchAttempt records one query execution round against one backend.
type SearchAttempt struct {
	// Query is the executed (or skipped) query text.
	Query string `json:"query" yaml:"query"`

	// Provider identifies the backend, or "corpus" / "plan".
	Provider string `json:"provider" yaml:"provider"`

	// DurationMS is the wall-clock execution time.
	DurationMS int64 `json:"duration_ms" yaml:"duration_ms"`

	// Results is the number of raw results returned. Failed or skipped
	// attempts record zero.
	Results int `json:"results" yaml:"results"`

	// Reason is a status code for the attempt (e.g. "ok",
	// "cooldown_skip", "provider_error", "internal_satisfied_skip_external",
	// "dual_fallback_mixed").
	Reason string `json:"reason" yaml:"reason"`
}

// SerpEntry is one candidate row in the serp_explorer trace: the per-query
// audit view of what classification and triage decided.
type SerpEntry struct {
	URL         string   `json:"url" yaml:"url"`
	Query       string   `json:"query" yaml:"query"`
	Decision    Decision `json:"decision" yaml:"decision"`
	ReasonCodes []string `json:"reason_codes" yaml:"reason_codes"`
	TriageScore float64  `json:"triage_score" yaml:"triage_score"`
}

// SearchProfile is the planning/execution audit artifact. It is written
// twice per run: once with status "planned" after query planning, once
// with status "executed" after search and triage complete.
type SearchProfile struct {
	RunID          string           `json:"run_id" yaml:"run_id"`
	ProductID      string           `json:"product_id" yaml:"product_id"`
	Status         string           `json:"status" yaml:"status"` // "planned" or "executed"
	Aliases        []string         `json:"aliases" yaml:"aliases"`
	Queries        []QueryRow       `json:"queries" yaml:"queries"`
	Attempts       []SearchAttempt  `json:"attempts,omitempty" yaml:"attempts,omitempty"`
	QueryRejectLog []QueryRejection `json:"query_reject_log" yaml:"query_reject_log"`
	QueryGuard     GuardContext     `json:"query_guard" yaml:"query_guard"`
	SerpExplorer   []SerpEntry      `json:"serp_explorer,omitempty" yaml:"serp_explorer,omitempty"`
	Timestamp      time.Time        `json:"timestamp" yaml:"timestamp"`
}

// DiscoveryRecord is the full run record written to discovery.json.
type DiscoveryRecord struct {
	RunID          string           `json:"run_id" yaml:"run_id"`
	ProductID      string           `json:"product_id" yaml:"product_id"`
	Identity       Identity         `json:"identity" yaml:"identity"`
	MissingFields  []string         `json:"missing_fields" yaml:"missing_fields"`
	ProviderState  string           `json:"provider_state" yaml:"provider_state"`
	Queries        []QueryRow       `json:"queries" yaml:"queries"`
	QueryRejectLog []QueryRejection `json:"query_reject_log" yaml:"query_reject_log"`
	Attempts       []SearchAttempt  `json:"attempts" yaml:"attempts"`
	Journal        []string         `json:"journal" yaml:"journal"`
	UberSearchPlan []string         `json:"uber_search_plan,omitempty" yaml:"uber_search_plan,omitempty"`
	Discovered     []Candidate      `json:"discovered" yaml:"discovered"`
	Timestamp      time.Time        `json:"timestamp" yaml:"timestamp"`
}

// CandidatesRecord lists discovered URLs on non-approved domains, written
// to candidates.json for optional human or LLM review.
type CandidatesRecord struct {
	RunID      string      `json:"run_id" yaml:"run_id"`
	ProductID  string      `json:"product_id" yaml:"product_id"`
	Candidates []Candidate `json:"candidates" yaml:"candidates"`
	Timestamp  time.Time   `json:"timestamp" yaml:"timestamp"`
}
