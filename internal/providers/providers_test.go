package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/source-scout/pkg/types"
)

func testHTTPCfg() types.HTTPConfig {
	return types.HTTPConfig{Timeout: 10 * time.Second, UserAgent: "test/0.1"}
}

func TestSearxngSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}
		fmt.Fprint(w, `{"results":[
			{"url":"https://rtings.com/mouse/reviews/razer/viper-v3-pro","title":"Razer Viper V3 Pro Review","content":"sensor latency tests"},
			{"url":"https://razer.com/gaming-mice/razer-viper-v3-pro","title":"Viper V3 Pro","content":"official page"},
			{"url":"","title":"no url"}
		]}`)
	}))
	defer srv.Close()

	p := &SearxngProvider{Client: srv.Client(), Endpoint: srv.URL}
	results, err := p.Search(context.Background(), "razer viper v3 pro review", 10, testHTTPCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Provider != "searxng" {
		t.Errorf("provider = %q, want searxng", results[0].Provider)
	}
	if results[0].Query != "razer viper v3 pro review" {
		t.Errorf("query = %q not carried onto result", results[0].Query)
	}
}

func TestSearxngLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[
			{"url":"https://a.example/1"},{"url":"https://a.example/2"},{"url":"https://a.example/3"}
		]}`)
	}))
	defer srv.Close()

	p := &SearxngProvider{Client: srv.Client(), Endpoint: srv.URL}
	results, err := p.Search(context.Background(), "q", 2, testHTTPCfg())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body>
			<div class="result">
				<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Frtings.com%2Fviper-v3-pro">Viper V3 Pro Review</a>
				<a class="result__snippet" href="#">deep sensor testing</a>
			</div>
			<div class="result">
				<a class="result__a" href="https://razer.com/gaming-mice/razer-viper-v3-pro">Razer Viper V3 Pro</a>
			</div>
		</body></html>`)
	}))
	defer srv.Close()

	old := duckduckgoBase
	duckduckgoBase = srv.URL
	defer func() { duckduckgoBase = old }()

	p := &DuckDuckGoProvider{Client: srv.Client()}
	results, err := p.Search(context.Background(), "razer viper v3 pro", 10, testHTTPCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].URL != "https://rtings.com/viper-v3-pro" {
		t.Errorf("redirect not unwrapped: %q", results[0].URL)
	}
	if results[0].Snippet != "deep sensor testing" {
		t.Errorf("snippet = %q", results[0].Snippet)
	}
	if results[1].URL != "https://razer.com/gaming-mice/razer-viper-v3-pro" {
		t.Errorf("direct link mangled: %q", results[1].URL)
	}
}

func TestDualModeReason(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{[]string{"searxng", "duckduckgo"}, "dual_fallback_mixed"},
		{[]string{"searxng"}, "dual_fallback_searxng_only"},
		{[]string{"duckduckgo"}, "dual_fallback_duckduckgo_only"},
		{nil, "no_provider"},
	}
	for _, tt := range tests {
		if got := DualModeReason(tt.names); got != tt.want {
			t.Errorf("DualModeReason(%v) = %q, want %q", tt.names, got, tt.want)
		}
	}
}

func TestBuildRespectsConfig(t *testing.T) {
	cfg := types.DiscoveryConfig{SearxngEndpoint: "https://searx.example", EnableDuckDuckGo: true}
	ps := Build(cfg, http.DefaultClient)
	if len(ps) != 2 {
		t.Fatalf("len(providers) = %d, want 2", len(ps))
	}

	usable, names := Usable(ps)
	if len(usable) != 2 || len(names) != 2 {
		t.Errorf("Usable = %v", names)
	}

	cfg = types.DiscoveryConfig{}
	if got := Build(cfg, http.DefaultClient); len(got) != 0 {
		t.Errorf("Build(empty config) = %d providers, want 0", len(got))
	}
}
