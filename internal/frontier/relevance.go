// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frontier

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/source-scout/internal/urlx"
)

// staticExtensions never carry product data.
var staticExtensions = map[string]bool{
	".css": true, ".js": true, ".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".svg": true, ".ico": true, ".webp": true, ".woff": true,
	".woff2": true, ".ttf": true, ".eot": true, ".mp4": true, ".webm": true,
	".zip": true, ".dmg": true, ".exe": true, ".avif": true,
}

// negativeKeywords mark shop plumbing and community chatter paths.
var negativeKeywords = []string{
	"cart", "checkout", "account", "community", "blog", "newsroom",
	"store-locator", "gift-card", "forum", "forums",
}

// highSignalKeywords mark pages worth fetching on any approved source.
var highSignalKeywords = []string{
	"review", "spec", "manual", "support", "product", "technical",
	"datasheet", "benchmark", "teardown",
}

// manufacturerSignals relax the relevance rule on manufacturer sites,
// where navigation pages lead to the product pages we want.
var manufacturerSignals = []string{
	"support", "manual", "spec", "product", "products", "datasheet",
	"technical", "download",
}

var (
	localePrefixRe = regexp.MustCompile(`^/[a-z]{2}(-[a-z]{2})?/`)
	sitemapLikeRe  = regexp.MustCompile(`sitemap[^/]*\.(xml|txt)(\.gz)?$|/sitemap`)
)

// linkContext describes where a discovered link came from, which relaxes
// or tightens the relevance rule.
type linkContext struct {
	manufacturer bool
	sitemap      bool
}

// isRelevantLink decides whether a discovered URL is worth queueing. The
// rules mirror what the product pipeline actually extracts from: model
// pages, support/spec documents, and sitemap indexes.
func (f *Frontier) isRelevantLink(u *url.URL, lctx linkContext) bool {
	path := strings.ToLower(u.Path)

	if ext := extOf(path); staticExtensions[ext] {
		return false
	}
	if sitemapLikeRe.MatchString(path) {
		return true
	}
	if localePrefixRe.MatchString(path) && !lctx.manufacturer && !lctx.sitemap {
		return false
	}
	if path == "" || path == "/" {
		return false
	}
	for _, kw := range negativeKeywords {
		if containsSegment(path, kw) {
			return false
		}
	}

	haystack := path
	if u.RawQuery != "" {
		haystack += "?" + strings.ToLower(u.RawQuery)
	}
	modelHit := anyToken(haystack, f.modelTokens)
	brandHit := anyToken(haystack, f.brandTokens)
	tokenOK := modelHit || brandHit || len(f.modelTokens) == 0

	if lctx.manufacturer {
		for _, kw := range manufacturerSignals {
			if strings.Contains(haystack, kw) && tokenOK {
				return true
			}
		}
	}
	if modelHit {
		return true
	}
	for _, kw := range highSignalKeywords {
		if strings.Contains(haystack, kw) && tokenOK {
			return true
		}
	}
	return false
}

// hostAdmissible applies the host-level rule for discovered links: the
// target must be approved or allow-listed, or share the base page's host
// or root domain.
func (f *Frontier) hostAdmissible(targetHost, baseHost string) bool {
	if f.category != nil && f.category.IsDenied(targetHost) {
		return false
	}
	if f.category != nil && f.category.IsApproved(targetHost) {
		return true
	}
	root := urlx.RootDomain(targetHost)
	if f.allow[root] {
		return true
	}
	return targetHost == baseHost || root == urlx.RootDomain(baseHost)
}

func extOf(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 && !strings.Contains(path[idx:], "/") {
		return path[idx:]
	}
	return ""
}

// containsSegment reports whether kw appears as a full path segment or
// hyphenated word within one.
func containsSegment(path, kw string) bool {
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == kw {
			return true
		}
		for _, part := range strings.Split(seg, "-") {
			if part == kw {
				return true
			}
		}
	}
	return false
}

func anyToken(haystack string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}
