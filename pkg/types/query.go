// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QuerySource tags where a planned query row came from.
type QuerySource string

const (
	QuerySourceBase         QuerySource = "base_template"
	QuerySourceTargeted     QuerySource = "targeted"
	QuerySourceLLM          QuerySource = "llm"
	QuerySourceUber         QuerySource = "uber"
	QuerySourceRuntimeExtra QuerySource = "runtime_extra"
)

// QueryRow is one planned search string. Rows are created by the query
// planner and are not mutated after the identity guard pass.
type QueryRow struct {
	// Text is the search string sent to providers.
	Text string `json:"text" yaml:"text"`

	// Source is the tag of the origin that first proposed this row.
	Source QuerySource `json:"source" yaml:"source"`

	// Score is the heuristic ranking score assigned by the planner.
	Score int `json:"score" yaml:"score"`

	// Sources lists every origin that proposed this text; duplicates
	// merge into one row and accumulate here.
	Sources []QuerySource `json:"sources" yaml:"sources"`
}

// QueryRejection records one dropped or guard-rejected query. Every drop
// in the planner is logged; none is fatal.
type QueryRejection struct {
	// Query is the rejected text.
	Query string `json:"query" yaml:"query"`

	// Reason is the first failing rule (e.g. "duplicate_query",
	// "missing_brand_token", "foreign_model_token").
	Reason string `json:"reason" yaml:"reason"`

	// Details carries rule-specific context, such as the offending
	// foreign tokens (at most six are retained per query).
	Details []string `json:"details,omitempty" yaml:"details,omitempty"`
}

// GuardContext is the token material the identity guard derived from the
// identity. It is persisted into the search profile for auditing.
type GuardContext struct {
	// BrandTokens are the alphanumeric brand tokens (three or more chars).
	BrandTokens []string `json:"brand_tokens" yaml:"brand_tokens"`

	// ModelTokens are model/variant tokens after stoplist and brand removal.
	ModelTokens []string `json:"model_tokens" yaml:"model_tokens"`

	// RequiredDigits are digit groups (two or more consecutive digits)
	// extracted from the model and variant; every accepted query must
	// contain all of them.
	RequiredDigits []string `json:"required_digits" yaml:"required_digits"`

	// AllowedTokens is the set of model-like tokens a query may contain
	// without being flagged as referencing a foreign model.
	AllowedTokens []string `json:"allowed_tokens" yaml:"allowed_tokens"`
}
