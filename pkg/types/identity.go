// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the source-scout pipeline
// stage: product identity, planned queries, raw provider results, classified
// candidates, frontier entries, and the JSON artifact records consumed by
// downstream fetch/extract stages.
//
// See docs/ARCHITECTURE § Data Structures.
package types

import "strings"

// Identity is the product a discovery run is trying to find sources for.
// It is supplied by the caller and immutable for the duration of a run.
type Identity struct {
	// Brand is the manufacturer name (e.g. "Razer").
	Brand string `json:"brand" yaml:"brand"`

	// Model is the product model name (e.g. "Viper V3 Pro").
	Model string `json:"model" yaml:"model"`

	// Variant is an optional sub-model or edition (e.g. "White Edition").
	Variant string `json:"variant,omitempty" yaml:"variant,omitempty"`

	// Category is the product category slug (e.g. "mouse").
	Category string `json:"category" yaml:"category"`

	// ProductID is the pipeline-wide identifier for this product.
	ProductID string `json:"product_id" yaml:"product_id"`
}

// IsEmpty reports whether the identity carries no searchable terms.
func (id Identity) IsEmpty() bool {
	return id.Brand == "" && id.Model == "" && id.Variant == ""
}

// FullName returns the brand, model, and variant joined with spaces,
// skipping empty parts.
func (id Identity) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{id.Brand, id.Model, id.Variant} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Aliases returns the name forms a run records in its search profile:
// the full name, brand+model, and the model alone.
func (id Identity) Aliases() []string {
	seen := make(map[string]bool)
	var aliases []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			return
		}
		seen[strings.ToLower(s)] = true
		aliases = append(aliases, s)
	}
	add(id.FullName())
	add(strings.TrimSpace(id.Brand + " " + id.Model))
	add(id.Model)
	return aliases
}
