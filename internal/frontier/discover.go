// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frontier

import (
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/pdiddy/source-scout/internal/urlx"
)

// sitemapScanCap bounds the <loc> entries scanned per sitemap document.
const sitemapScanCap = 3000

var (
	sitemapDirectiveRe = regexp.MustCompile(`(?im)^\s*sitemap:\s*(\S+)`)
	sitemapLocRe       = regexp.MustCompile(`<loc>\s*([^<]+?)\s*</loc>`)
)

// DiscoverFromHTML parses a fetched page and enqueues relevant links.
// baseURL is the page's own URL; relative hrefs resolve against it.
// Returns the number of URLs admitted.
func (f *Frontier) DiscoverFromHTML(baseURL string, body io.Reader) int {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return 0
	}
	baseHost := urlx.NormalizeHost(base.Host)
	lctx := linkContext{manufacturer: f.isManufacturerHost(baseHost)}

	doc, err := xhtml.Parse(body)
	if err != nil {
		return 0
	}

	added := 0
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if f.admitLink(base, baseHost, attr.Val, "html:"+baseHost, lctx, false) {
					added++
				}
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	f.htmlDiscovered += added
	return added
}

// DiscoverFromRobots extracts Sitemap directives from a robots.txt body
// and force-enqueues them as approved work. Returns the number admitted.
func (f *Frontier) DiscoverFromRobots(baseURL, body string) int {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return 0
	}
	added := 0
	for _, m := range sitemapDirectiveRe.FindAllStringSubmatch(body, -1) {
		raw := html.UnescapeString(strings.TrimSpace(m[1]))
		resolved, ok := resolveRef(base, raw)
		if !ok {
			continue
		}
		if f.enqueue(resolved, "robots:"+urlx.NormalizeHost(base.Host), true) {
			added++
		}
	}
	f.robotsDiscovered += added
	return added
}

// DiscoverFromSitemap scans a sitemap (or sitemap index) fetched from a
// manufacturer host and enqueues relevant entries as approved work. At
// most sitemapScanCap <loc> entries are considered per document.
func (f *Frontier) DiscoverFromSitemap(baseURL, body string) int {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return 0
	}
	baseHost := urlx.NormalizeHost(base.Host)
	lctx := linkContext{manufacturer: true, sitemap: true}

	added := 0
	scanned := 0
	for _, m := range sitemapLocRe.FindAllStringSubmatch(body, -1) {
		if scanned >= sitemapScanCap {
			break
		}
		scanned++
		raw := html.UnescapeString(m[1])
		if f.admitLink(base, baseHost, raw, "sitemap:"+baseHost, lctx, true) {
			added++
		}
	}
	f.sitemapDiscovered += added
	return added
}

// admitLink resolves one discovered href and runs the host and relevance
// rules before enqueueing.
func (f *Frontier) admitLink(base *url.URL, baseHost, href, discoveredFrom string, lctx linkContext, forceApprove bool) bool {
	resolved, ok := resolveRef(base, href)
	if !ok {
		return false
	}
	u, err := url.Parse(resolved)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := urlx.NormalizeHost(u.Host)
	if !f.hostAdmissible(host, baseHost) {
		return false
	}
	if !f.isRelevantLink(u, lctx) {
		return false
	}
	return f.enqueue(resolved, discoveredFrom, forceApprove)
}

// resolveRef resolves href against base, dropping javascript:, mailto:,
// fragments, and unparsable references.
func resolveRef(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

func (f *Frontier) isManufacturerHost(host string) bool {
	if f.category == nil {
		return false
	}
	rule, ok := f.category.Lookup(host)
	return ok && rule.Role == "manufacturer"
}
