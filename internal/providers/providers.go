// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package providers implements external web-search backends behind a
// common Strategy interface. Each backend is independently optional: a
// backend without its prerequisites reports itself unavailable and the
// executor routes around it.
//
// See docs/ARCHITECTURE § Search Providers.
package providers

import (
	"context"
	"net/http"

	"github.com/pdiddy/source-scout/pkg/types"
)

// Provider searches a single external backend.
type Provider interface {
	Name() string

	// Available reports whether the backend has what it needs to run
	// (endpoint configured, credentials present).
	Available() bool

	// Search runs one query and returns raw results, at most limit.
	Search(ctx context.Context, query string, limit int, cfg types.HTTPConfig) ([]types.RawResult, error)
}

// Build assembles the provider list from configuration. Order matters:
// the executor tries providers in slice order per query.
func Build(cfg types.DiscoveryConfig, client *http.Client) []Provider {
	var ps []Provider
	if cfg.SearxngEndpoint != "" {
		ps = append(ps, &SearxngProvider{Client: client, Endpoint: cfg.SearxngEndpoint})
	}
	if cfg.EnableDuckDuckGo {
		ps = append(ps, &DuckDuckGoProvider{Client: client})
	}
	return ps
}

// Usable filters providers to those currently available and returns
// their names alongside.
func Usable(ps []Provider) ([]Provider, []string) {
	var usable []Provider
	var names []string
	for _, p := range ps {
		if p.Available() {
			usable = append(usable, p)
			names = append(names, p.Name())
		}
	}
	return usable, names
}

// DualModeReason classifies which backends carried a dual-mode run that
// had no API-keyed provider. The reason code lands in the per-query
// attempt record.
func DualModeReason(usableNames []string) string {
	hasSearxng := false
	hasDDG := false
	for _, n := range usableNames {
		switch n {
		case "searxng":
			hasSearxng = true
		case "duckduckgo":
			hasDDG = true
		}
	}
	switch {
	case hasSearxng && hasDDG:
		return "dual_fallback_mixed"
	case hasSearxng:
		return "dual_fallback_searxng_only"
	case hasDDG:
		return "dual_fallback_duckduckgo_only"
	default:
		return "no_provider"
	}
}
