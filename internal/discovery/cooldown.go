// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import "github.com/pdiddy/source-scout/internal/urlx"

// Cooldown is the cross-run frontier service: it canonicalizes URLs and
// signals which URLs and (product, query) pairs were attempted recently
// enough to skip this round. Implementations live outside this stage; the
// engine uses NopCooldown when none is wired, so core logic never branches
// on availability.
type Cooldown interface {
	// Canonicalize maps equivalent URLs to one representative. An empty
	// return means the service could not parse the URL; callers fall
	// back to local canonicalization.
	Canonicalize(rawURL string) string

	// ShouldSkipURL reports whether the URL is under cooldown.
	ShouldSkipURL(rawURL string) bool

	// ShouldSkipQuery reports whether the (product, query) pair is under
	// cooldown.
	ShouldSkipQuery(productID, query string) bool

	// RecordQuery notes that the query was executed for the product.
	RecordQuery(productID, query string)
}

// NopCooldown is the default Cooldown: nothing is ever skipped and
// canonicalization happens locally.
type NopCooldown struct{}

func (NopCooldown) Canonicalize(rawURL string) string {
	c, err := urlx.Canonicalize(rawURL)
	if err != nil {
		return ""
	}
	return c
}

func (NopCooldown) ShouldSkipURL(string) bool           { return false }
func (NopCooldown) ShouldSkipQuery(string, string) bool { return false }
func (NopCooldown) RecordQuery(string, string)          {}
