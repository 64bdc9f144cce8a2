package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "source-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DiscoveryConfig holds settings for the discovery engine: query planning,
// search execution, classification, and reranking.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// QueryLimit is the maximum number of queries sent to execution.
	// The planner caps its working set at max(QueryLimit, 6) (default 8).
	QueryLimit int `json:"query_limit" yaml:"query_limit"`

	// ResultLimit is the per-query result limit passed to providers (default 10).
	ResultLimit int `json:"result_limit" yaml:"result_limit"`

	// DiscoveryCap is the top-K size of the selected candidate set (default 12).
	DiscoveryCap int `json:"discovery_cap" yaml:"discovery_cap"`

	// Concurrency bounds the external search worker pool (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// InternalFirst queries the internal corpus before external providers.
	InternalFirst bool `json:"internal_first" yaml:"internal_first"`

	// InternalMinResults is the distinct-URL coverage at which external
	// search is skipped when required fields are targeted (default 5).
	InternalMinResults int `json:"internal_min_results" yaml:"internal_min_results"`

	// UberAggressive enables aggressive LLM query planning and forces
	// LLM triage on.
	UberAggressive bool `json:"uber_aggressive" yaml:"uber_aggressive"`

	// LLMTriage enables the LLM reranking pass outside uber mode.
	LLMTriage bool `json:"llm_triage" yaml:"llm_triage"`

	// SearxngEndpoint is the base URL of a SearXNG instance. Empty
	// disables the backend.
	SearxngEndpoint string `json:"searxng_endpoint,omitempty" yaml:"searxng_endpoint,omitempty"`

	// EnableDuckDuckGo controls the DuckDuckGo HTML backend.
	EnableDuckDuckGo bool `json:"enable_duckduckgo" yaml:"enable_duckduckgo"`

	// KnownVariants lists other variant names of the same model, used by
	// the cross-variant contamination guard.
	KnownVariants []string `json:"known_variants,omitempty" yaml:"known_variants,omitempty"`

	// OutputDir is the base directory for run artifacts
	// (e.g. "output/discovery/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// FrontierConfig holds the crawl frontier's budgets. Caps are soft
// truncation, not errors.
type FrontierConfig struct {
	// MaxURLs caps total approved-planned URLs: manufacturer plus
	// approved queues plus their visited counts (default 60).
	MaxURLs int `json:"max_urls" yaml:"max_urls"`

	// MaxManufacturerURLs caps total manufacturer-role URLs (default 30).
	MaxManufacturerURLs int `json:"max_manufacturer_urls" yaml:"max_manufacturer_urls"`

	// MaxCandidateURLs caps the non-approved candidate queue (default 20).
	MaxCandidateURLs int `json:"max_candidate_urls" yaml:"max_candidate_urls"`

	// MaxPagesPerDomain caps per-host pages for non-manufacturer
	// approved hosts (default 8).
	MaxPagesPerDomain int `json:"max_pages_per_domain" yaml:"max_pages_per_domain"`

	// MaxManufacturerPagesPerDomain caps per-host pages for
	// manufacturer-role hosts (default 20).
	MaxManufacturerPagesPerDomain int `json:"max_manufacturer_pages_per_domain" yaml:"max_manufacturer_pages_per_domain"`

	// ManufacturerReserveURLs reserves part of MaxURLs for manufacturer
	// pages. Non-manufacturer enqueues are blocked once they would eat
	// into the remaining reserve; the remainder is recomputed on every
	// admission check.
	ManufacturerReserveURLs int `json:"manufacturer_reserve_urls" yaml:"manufacturer_reserve_urls"`

	// FetchCandidates enables the candidate (non-approved) queue.
	FetchCandidates bool `json:"fetch_candidates" yaml:"fetch_candidates"`
}

// CorpusConfig holds settings for the internal corpus index.
type CorpusConfig struct {
	// CorpusDir is the base directory for the corpus
	// (contains fetched/, index/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// MaxResults is the default maximum number of search hits (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AIConfig holds shared settings for optional LLM-backed features. Absent
// credentials mean the features no-op.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Frontier  FrontierConfig  `json:"frontier" yaml:"frontier"`
	Corpus    CorpusConfig    `json:"corpus" yaml:"corpus"`
	AI        AIConfig        `json:"ai" yaml:"ai"`
}
