// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/source-scout/pkg/types"
)

// Plan-only synthesis limits.
const (
	maxSlugCandidates  = 6
	maxPlanURLsPerHost = 40
	maxSiteSearchTerms = 3
)

// planPathTemplates enumerate where manufacturers usually keep product,
// support, and spec pages. {slug} is substituted per slug candidate.
var planPathTemplates = []string{
	"/product/{slug}",
	"/products/{slug}",
	"/p/{slug}",
	"/{slug}",
	"/support/{slug}",
	"/manual/{slug}",
	"/downloads/{slug}",
	"/specs/{slug}",
}

// PlanOnlyCandidates deterministically synthesizes candidate URLs when no
// search provider is usable: model-slug paths on manufacturer hosts plus
// site-search URLs, and bare search URLs on the other approved hosts. The
// output is tagged with provider "plan" so classification skips the
// relevance filter for it.
func PlanOnlyCandidates(id types.Identity, manufacturerHosts, otherHosts, categorySegments []string, queries []types.QueryRow) []types.RawResult {
	slugs := slugCandidates(id)
	topQueries := make([]string, 0, maxSiteSearchTerms)
	for _, q := range queries {
		if len(topQueries) >= maxSiteSearchTerms {
			break
		}
		topQueries = append(topQueries, q.Text)
	}

	var results []types.RawResult
	emit := func(rawURL, query string) {
		results = append(results, types.RawResult{
			URL:      rawURL,
			Provider: "plan",
			Query:    query,
		})
	}

	for _, host := range manufacturerHosts {
		count := 0
		add := func(path string) {
			if count >= maxPlanURLsPerHost {
				return
			}
			emit("https://"+host+path, "")
			count++
		}

		for _, slug := range slugs {
			for _, tmpl := range planPathTemplates {
				add(strings.ReplaceAll(tmpl, "{slug}", slug))
			}
			for _, seg := range categorySegments {
				add("/" + seg + "/" + slug)
			}
			// Locale-prefixed variants for the most specific paths.
			add("/en-us/products/" + slug)
			add("/en-us/support/" + slug)
		}

		for _, q := range topQueries {
			if count >= maxPlanURLsPerHost {
				break
			}
			emit(fmt.Sprintf("https://%s/search?q=%s", host, url.QueryEscape(q)), q)
			count++
		}
	}

	for _, host := range otherHosts {
		for _, q := range topQueries {
			emit(fmt.Sprintf("https://%s/search?q=%s", host, url.QueryEscape(q)), q)
			emit(fmt.Sprintf("https://%s/search/?q=%s", host, url.QueryEscape(q)), q)
		}
	}

	return results
}

// slugCandidates builds up to six URL slugs from the identity, most
// specific first: brand+model+variant, brand+model, model+variant, model,
// and brand-prefixed compacted variants.
func slugCandidates(id types.Identity) []string {
	seen := make(map[string]bool)
	var slugs []string
	add := func(parts ...string) {
		if len(slugs) >= maxSlugCandidates {
			return
		}
		s := slugify(strings.Join(parts, " "))
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		slugs = append(slugs, s)
	}

	add(id.Brand, id.Model, id.Variant)
	add(id.Brand, id.Model)
	add(id.Model, id.Variant)
	add(id.Model)
	if id.Brand != "" && id.Model != "" {
		add(slugify(id.Brand) + foldAlnum(id.Model))
		add(foldAlnum(id.Brand + id.Model + id.Variant))
	}
	return slugs
}

// slugify lowercases s and joins alphanumeric runs with single hyphens.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
