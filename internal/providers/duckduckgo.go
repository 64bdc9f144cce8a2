// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/source-scout/internal/httputil"
	"github.com/pdiddy/source-scout/pkg/types"
)

// duckduckgoBase is the keyless HTML results endpoint. Declared as a var
// so tests can substitute an httptest server.
var duckduckgoBase = "https://html.duckduckgo.com/html/"

// DuckDuckGoProvider scrapes the DuckDuckGo HTML results page. It needs
// no credentials, which makes it the backend of last resort in dual mode.
type DuckDuckGoProvider struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (p *DuckDuckGoProvider) Name() string { return "duckduckgo" }

// Available always reports true; the backend is keyless.
func (p *DuckDuckGoProvider) Available() bool { return true }

// Search runs one query against the HTML endpoint and parses result
// anchors out of the response.
func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, limit int, cfg types.HTTPConfig) ([]types.RawResult, error) {
	if limit <= 0 {
		limit = 10
	}

	endpoint := fmt.Sprintf("%s?q=%s", duckduckgoBase, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("DuckDuckGo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DuckDuckGo returned HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing DuckDuckGo response: %w", err)
	}

	var results []types.RawResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			href := resolveDDGHref(attr(n, "href"))
			if href != "" {
				results = append(results, types.RawResult{
					URL:      href,
					Title:    strings.TrimSpace(nodeText(n)),
					Provider: p.Name(),
					Query:    query,
				})
			}
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__snippet") {
			if len(results) > 0 && results[len(results)-1].Snippet == "" {
				results[len(results)-1].Snippet = strings.TrimSpace(nodeText(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results, nil
}

// resolveDDGHref unwraps DuckDuckGo's redirect links
// ("//duckduckgo.com/l/?uddg=<encoded>") to the target URL. Direct links
// pass through unchanged.
func resolveDDGHref(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		target := u.Query().Get("uddg")
		if target == "" {
			return ""
		}
		return target
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
