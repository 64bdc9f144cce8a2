// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intel loads learned domain intelligence: per-root-domain priors,
// per-brand overrides, and per-field helpfulness counts accumulated by
// earlier pipeline runs. The frontier and reranker read it to order work;
// this stage never writes it.
//
// See docs/ARCHITECTURE § Domain Intelligence.
package intel

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/source-scout/internal/urlx"
)

// Boost limits. Each field contributes at most perFieldCap to the
// required-field boost, and the summed boost is capped at totalBoostCap,
// so no single signal dominates queue ordering.
const (
	perFieldCap   = 3.0
	totalBoostCap = 9.0
)

// DomainIntel holds the learned record for one root domain.
type DomainIntel struct {
	// Score is the base priority prior for the domain.
	Score float64 `yaml:"score" json:"score"`

	// BrandScores overrides Score for specific brands (lowercased keys).
	BrandScores map[string]float64 `yaml:"brand_scores,omitempty" json:"brand_scores,omitempty"`

	// FieldHelp counts how often the domain historically supplied each
	// field (lowercased keys).
	FieldHelp map[string]int `yaml:"field_help,omitempty" json:"field_help,omitempty"`
}

// Store is a read-only view of the domain intelligence file.
type Store struct {
	Domains map[string]DomainIntel `yaml:"domains" json:"domains"`
}

// Load reads a domain intelligence YAML file. A missing file is not an
// error: it yields an empty store so discovery degrades to tier-only
// ordering.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{Domains: map[string]DomainIntel{}}, nil
		}
		return nil, fmt.Errorf("reading domain intelligence %s: %w", path, err)
	}
	var s Store
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing domain intelligence %s: %w", path, err)
	}
	if s.Domains == nil {
		s.Domains = map[string]DomainIntel{}
	}
	return &s, nil
}

// Empty returns a store with no learned domains.
func Empty() *Store {
	return &Store{Domains: map[string]DomainIntel{}}
}

// Priority computes the queue priority for rootDomain: the base score
// (brand override when present) plus a bounded boost summed over the
// currently missing fields.
func (s *Store) Priority(rootDomain, brand string, missingFields []string) float64 {
	d, ok := s.Domains[urlx.NormalizeHost(rootDomain)]
	if !ok {
		return 0
	}

	score := d.Score
	if brand != "" {
		if override, ok := d.BrandScores[strings.ToLower(brand)]; ok {
			score = override
		}
	}

	var boost float64
	for _, field := range missingFields {
		help := float64(d.FieldHelp[strings.ToLower(field)])
		if help > perFieldCap {
			help = perFieldCap
		}
		boost += help
	}
	if boost > totalBoostCap {
		boost = totalBoostCap
	}
	return score + boost
}

// FieldYield returns the capped helpfulness count for one field, used by
// the deterministic reranker.
func (s *Store) FieldYield(rootDomain, field string) float64 {
	d, ok := s.Domains[urlx.NormalizeHost(rootDomain)]
	if !ok {
		return 0
	}
	help := float64(d.FieldHelp[strings.ToLower(field)])
	if help > perFieldCap {
		return perFieldCap
	}
	return help
}
