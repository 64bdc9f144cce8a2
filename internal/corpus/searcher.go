// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"

	"github.com/pdiddy/source-scout/pkg/types"
)

// Searcher adapts a Store to the discovery executor's corpus interface,
// projecting page hits into raw results tagged with the "corpus" provider.
type Searcher struct {
	Store *Store
}

func (s Searcher) Search(ctx context.Context, query string, limit int) ([]types.RawResult, error) {
	hits, err := s.Store.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	results := make([]types.RawResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, types.RawResult{
			URL:      h.URL,
			Title:    h.Title,
			Snippet:  h.Snippet,
			Provider: "corpus",
			Query:    query,
		})
	}
	return results, nil
}
