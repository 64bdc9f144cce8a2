package corpus

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/source-scout/pkg/types"
)

func writePage(t *testing.T, dir, name string, page PageRecord) {
	t.Helper()
	data, err := yaml.Marshal(&page)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	corpusDir := t.TempDir()
	fetched := filepath.Join(corpusDir, "fetched")
	if err := os.MkdirAll(fetched, 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := NewStore(types.CorpusConfig{CorpusDir: corpusDir, MaxResults: 10})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, fetched
}

func TestIngestAndSearch(t *testing.T) {
	store, fetched := newTestStore(t)

	writePage(t, fetched, "viper.yaml", PageRecord{
		URL:       "https://www.rtings.com/mouse/reviews/razer/viper-v3-pro/",
		Title:     "Razer Viper V3 Pro Review",
		Text:      "The Viper V3 Pro uses the Focus Pro 35K Gen-2 optical sensor.",
		FetchedAt: time.Now(),
	})
	writePage(t, fetched, "superlight.yaml", PageRecord{
		URL:   "https://www.logitechg.com/en-us/products/gaming-mice/pro-x2-superlight.html",
		Title: "PRO X SUPERLIGHT 2",
		Text:  "HERO 2 sensor with 32000 DPI.",
	})

	var buf bytes.Buffer
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Indexed != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 indexed", summary)
	}

	hits, err := store.Search(context.Background(), "viper sensor", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	if hits[0].Host != "rtings.com" {
		t.Errorf("host = %q, want rtings.com", hits[0].Host)
	}
	// Canonicalization strips the trailing slash.
	if hits[0].URL != "https://www.rtings.com/mouse/reviews/razer/viper-v3-pro" {
		t.Errorf("url = %q", hits[0].URL)
	}
}

func TestIngestSkipsUnchanged(t *testing.T) {
	store, fetched := newTestStore(t)
	writePage(t, fetched, "page.yaml", PageRecord{
		URL:  "https://razer.com/viper-v3-pro",
		Text: "specs",
	})

	var buf bytes.Buffer
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.Indexed != 0 {
		t.Errorf("second run summary = %+v, want 1 skipped", summary)
	}
}

func TestIngestContinuesAfterBadFile(t *testing.T) {
	store, fetched := newTestStore(t)
	if err := os.WriteFile(filepath.Join(fetched, "broken.yaml"), []byte(":\nnot yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	writePage(t, fetched, "good.yaml", PageRecord{
		URL:  "https://razer.com/viper-v3-pro",
		Text: "good page",
	})

	var buf bytes.Buffer
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Indexed != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 indexed 1 failed", summary)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Search(context.Background(), "  ", 5); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestCount(t *testing.T) {
	store, fetched := newTestStore(t)
	writePage(t, fetched, "a.yaml", PageRecord{URL: "https://a.example/1", Text: "x"})
	writePage(t, fetched, "b.yaml", PageRecord{URL: "https://a.example/2", Text: "y"})

	var buf bytes.Buffer
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}
