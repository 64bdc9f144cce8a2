// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/source-scout/internal/httputil"
	"github.com/pdiddy/source-scout/pkg/types"
)

// SearxngProvider queries a self-hosted SearXNG instance's JSON API.
type SearxngProvider struct {
	Client   *http.Client
	Endpoint string // instance base URL, e.g. "https://searx.example.org"
}

// Name returns the backend identifier.
func (p *SearxngProvider) Name() string { return "searxng" }

// Available reports whether an instance endpoint is configured.
func (p *SearxngProvider) Available() bool { return p.Endpoint != "" }

// searxngResponse mirrors the fields we read from /search?format=json.
type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

type searxngResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Search runs one query against the instance.
func (p *SearxngProvider) Search(ctx context.Context, query string, limit int, cfg types.HTTPConfig) ([]types.RawResult, error) {
	if limit <= 0 {
		limit = 10
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", p.Endpoint, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("SearXNG request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SearXNG returned HTTP %d", resp.StatusCode)
	}

	var sr searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing SearXNG response: %w", err)
	}

	var results []types.RawResult
	for _, r := range sr.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, types.RawResult{
			URL:      r.URL,
			Title:    r.Title,
			Snippet:  r.Content,
			Provider: p.Name(),
			Query:    query,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
