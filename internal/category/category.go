// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package category loads per-category source configuration: host tiers and
// roles, deny lists, query templates, and path segments. Configuration
// files are YAML, one per category, under config/categories/.
//
// See docs/ARCHITECTURE § Category Configuration.
package category

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/source-scout/internal/urlx"
)

// HostRule assigns a tier and role to one approved host. Matching is by
// exact normalized host or registrable-domain suffix.
type HostRule struct {
	// Host is the normalized host or registrable domain (no "www.").
	Host string `yaml:"host" json:"host"`

	// Tier is the source-quality rank: manufacturer=1, lab=2,
	// database=2, retailer=3.
	Tier int `yaml:"tier" json:"tier"`

	// TierName is the human name for the tier (e.g. "manufacturer",
	// "lab", "database", "retailer").
	TierName string `yaml:"tier_name" json:"tier_name"`

	// Role is the functional category: manufacturer, review, retailer,
	// database, other.
	Role string `yaml:"role" json:"role"`
}

// Config is one category's source configuration.
type Config struct {
	// Name is the category slug (e.g. "mouse").
	Name string `yaml:"name" json:"name"`

	// Hosts lists the approved hosts with their tiers and roles.
	Hosts []HostRule `yaml:"hosts" json:"hosts"`

	// DeniedHosts lists hosts rejected outright during classification
	// and frontier admission.
	DeniedHosts []string `yaml:"denied_hosts,omitempty" json:"denied_hosts,omitempty"`

	// BaseTemplates are query templates expanded for every run.
	// Placeholders: {brand}, {model}, {variant}, {category}.
	BaseTemplates []string `yaml:"base_templates" json:"base_templates"`

	// TargetedTemplates are query templates expanded once per missing
	// field. Placeholder {field} receives the field name with
	// underscores replaced by spaces.
	TargetedTemplates []string `yaml:"targeted_templates" json:"targeted_templates"`

	// PathSegments are category-specific path words used when
	// synthesizing plan-only manufacturer URLs
	// (e.g. mouse -> mouse, mice, gaming-mice).
	PathSegments []string `yaml:"path_segments,omitempty" json:"path_segments,omitempty"`

	// PreferredSources are root domains hinted as useful for this
	// category; they join the frontier allow-list.
	PreferredSources []string `yaml:"preferred_sources,omitempty" json:"preferred_sources,omitempty"`

	// LabKeywords are domain words that mark a host as a measurement
	// lab; the query planner scores queries mentioning them.
	LabKeywords []string `yaml:"lab_keywords,omitempty" json:"lab_keywords,omitempty"`
}

// Load reads a category configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing category config %s: %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &cfg, nil
}

// LoadDir reads the configuration for the named category from
// dir/<name>.yaml.
func LoadDir(dir, name string) (*Config, error) {
	return Load(filepath.Join(dir, name+".yaml"))
}

// Lookup resolves the tier/role rule for host. It matches the normalized
// host exactly, then by registrable domain. The second return is false
// when the host is not approved.
func (c *Config) Lookup(host string) (HostRule, bool) {
	norm := urlx.NormalizeHost(host)
	root := urlx.RootDomain(norm)
	var rootMatch *HostRule
	for i := range c.Hosts {
		rule := urlx.NormalizeHost(c.Hosts[i].Host)
		if rule == norm {
			return c.Hosts[i], true
		}
		if rule == root && rootMatch == nil {
			rootMatch = &c.Hosts[i]
		}
	}
	if rootMatch != nil {
		return *rootMatch, true
	}
	return HostRule{}, false
}

// Classify returns the tier, tier name, and role for host. Unapproved
// hosts classify as tier 4 "candidate" with role "other".
func (c *Config) Classify(host string) (tier int, tierName, role string) {
	if rule, ok := c.Lookup(host); ok {
		return rule.Tier, rule.TierName, rule.Role
	}
	return 4, "candidate", "other"
}

// IsApproved reports whether host matches an approved host rule.
func (c *Config) IsApproved(host string) bool {
	_, ok := c.Lookup(host)
	return ok
}

// IsDenied reports whether host or its registrable domain is deny-listed.
func (c *Config) IsDenied(host string) bool {
	norm := urlx.NormalizeHost(host)
	root := urlx.RootDomain(norm)
	for _, d := range c.DeniedHosts {
		dn := urlx.NormalizeHost(d)
		if dn == norm || dn == root {
			return true
		}
	}
	return false
}

// ManufacturerHosts returns the approved hosts whose role is manufacturer.
func (c *Config) ManufacturerHosts() []string {
	var hosts []string
	for _, rule := range c.Hosts {
		if rule.Role == "manufacturer" {
			hosts = append(hosts, urlx.NormalizeHost(rule.Host))
		}
	}
	return hosts
}

// ExpandTemplate substitutes identity placeholders in a query template.
// Unreplaced placeholders and doubled spaces are cleaned up.
func ExpandTemplate(tmpl, brand, model, variant, categoryName, field string) string {
	r := strings.NewReplacer(
		"{brand}", brand,
		"{model}", model,
		"{variant}", variant,
		"{category}", categoryName,
		"{field}", strings.ReplaceAll(field, "_", " "),
	)
	return strings.Join(strings.Fields(r.Replace(tmpl)), " ")
}
