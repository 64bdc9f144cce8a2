// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package urlx canonicalizes URLs and extracts host information. Equivalent
// URLs (tracking parameters, fragments, default ports, trailing slashes)
// map to one representative so dedup and visited checks agree across
// providers.
//
// See docs/ARCHITECTURE § Canonicalization.
package urlx

import (
	"net/url"
	"sort"
	"strings"
)

// trackingParams lists query parameters stripped during canonicalization.
var trackingParams = map[string]bool{
	"gclid":       true,
	"fbclid":      true,
	"msclkid":     true,
	"mc_cid":      true,
	"mc_eid":      true,
	"ref":         true,
	"ref_":        true,
	"referrer":    true,
	"igshid":      true,
	"spm":         true,
	"_ga":         true,
	"yclid":       true,
	"srsltid":     true,
	"affiliateid": true,
}

// secondLevelTLDs lists public suffixes that occupy two labels, so the
// registrable domain needs three.
var secondLevelTLDs = map[string]bool{
	"co.uk":  true,
	"co.jp":  true,
	"co.kr":  true,
	"co.nz":  true,
	"com.au": true,
	"com.br": true,
	"com.cn": true,
	"com.tw": true,
	"org.uk": true,
	"net.au": true,
	"ac.uk":  true,
	"gov.uk": true,
}

// Canonicalize returns the canonical form of rawURL: lowercased scheme and
// host, default port removed, fragment dropped, tracking parameters
// stripped, remaining query parameters sorted, and the trailing slash
// removed from non-root paths. Returns an error for unparsable input or
// URLs without a host.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", &url.Error{Op: "canonicalize", URL: rawURL, Err: errNoHost}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			lower := strings.ToLower(key)
			if trackingParams[lower] || strings.HasPrefix(lower, "utm_") {
				q.Del(key)
			}
		}
		u.RawQuery = sortedEncode(q)
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

type noHostError struct{}

func (noHostError) Error() string { return "URL has no host" }

var errNoHost = noHostError{}

// sortedEncode encodes values with keys in sorted order for a stable
// canonical form.
func sortedEncode(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		for _, val := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}
	return b.String()
}

// NormalizeHost lowercases host, strips any port, and removes a leading
// "www." label.
func NormalizeHost(host string) string {
	host = strings.ToLower(host)
	if idx := strings.LastIndex(host, ":"); idx > 0 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}

// RootDomain returns the registrable domain of host: the last two labels,
// or three when the suffix is a known two-label public suffix
// (e.g. "rtings.com" from "www.rtings.com", "example.co.uk" unchanged).
func RootDomain(host string) string {
	host = NormalizeHost(host)
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	lastTwo := strings.Join(labels[len(labels)-2:], ".")
	if secondLevelTLDs[lastTwo] && len(labels) >= 3 {
		return strings.Join(labels[len(labels)-3:], ".")
	}
	return lastTwo
}

// IsSecureHTTP reports whether rawURL parses and uses the https scheme
// with a non-empty host.
func IsSecureHTTP(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != ""
}
