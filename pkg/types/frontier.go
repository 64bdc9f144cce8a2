// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FrontierEntry is a queued crawl job. Entries are created on enqueue and
// move to the visited set on dequeue.
type FrontierEntry struct {
	// URL is the canonical URL to fetch.
	URL string `json:"url" yaml:"url"`

	// Host is the normalized host.
	Host string `json:"host" yaml:"host"`

	// RootDomain is the registrable domain of Host.
	RootDomain string `json:"root_domain" yaml:"root_domain"`

	// Tier and TierName rank the source quality of the host.
	Tier     int    `json:"tier" yaml:"tier"`
	TierName string `json:"tier_name" yaml:"tier_name"`

	// Role is the functional category of the host.
	Role string `json:"role" yaml:"role"`

	// Priority is the domain-intelligence score used for queue ordering.
	Priority float64 `json:"priority" yaml:"priority"`

	// ApprovedDomain is true when the host is category-approved or
	// allow-listed from seeds and preferred-source hints.
	ApprovedDomain bool `json:"approved_domain" yaml:"approved_domain"`

	// CandidateSource is true for entries admitted to the candidate
	// (non-approved) queue.
	CandidateSource bool `json:"candidate_source" yaml:"candidate_source"`

	// DiscoveredFrom records how the URL entered the frontier
	// (e.g. "seed", "html:<base>", "robots:<base>", "sitemap:<base>").
	DiscoveredFrom string `json:"discovered_from,omitempty" yaml:"discovered_from,omitempty"`
}

// FrontierStats is an observability snapshot of the frontier.
type FrontierStats struct {
	ManufacturerQueued  int `json:"manufacturer_queued" yaml:"manufacturer_queued"`
	ApprovedQueued      int `json:"approved_queued" yaml:"approved_queued"`
	CandidateQueued     int `json:"candidate_queued" yaml:"candidate_queued"`
	ManufacturerVisited int `json:"manufacturer_visited" yaml:"manufacturer_visited"`
	ApprovedVisited     int `json:"approved_visited" yaml:"approved_visited"`
	CandidateVisited    int `json:"candidate_visited" yaml:"candidate_visited"`

	RobotsDiscovered  int `json:"robots_discovered" yaml:"robots_discovered"`
	SitemapDiscovered int `json:"sitemap_discovered" yaml:"sitemap_discovered"`
	HTMLDiscovered    int `json:"html_discovered" yaml:"html_discovered"`

	MaxURLs                       int `json:"max_urls" yaml:"max_urls"`
	MaxManufacturerURLs           int `json:"max_manufacturer_urls" yaml:"max_manufacturer_urls"`
	MaxCandidateURLs              int `json:"max_candidate_urls" yaml:"max_candidate_urls"`
	MaxPagesPerDomain             int `json:"max_pages_per_domain" yaml:"max_pages_per_domain"`
	MaxManufacturerPagesPerDomain int `json:"max_manufacturer_pages_per_domain" yaml:"max_manufacturer_pages_per_domain"`
}
