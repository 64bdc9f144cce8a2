// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discovery turns a product identity and its missing fields into a
// ranked, identity-guarded set of search queries, executes them against the
// internal corpus and external providers, classifies and deduplicates the
// results, and triages them into a selected candidate set for the crawl
// frontier. No step in the pipeline throws: every rejection is a logged,
// non-fatal classification and a run always yields a usable (possibly
// plan-only) result.
//
// See docs/ARCHITECTURE § Discovery Engine.
package discovery

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/source-scout/internal/category"
	"github.com/pdiddy/source-scout/internal/llmassist"
	"github.com/pdiddy/source-scout/pkg/types"
)

// Planner drop reasons.
const (
	reasonEmptyQuery     = "empty_query"
	reasonDuplicateQuery = "duplicate_query"
	reasonMaxQueryCap    = "max_query_cap"
)

// docKeywords are document-seeking words the ranker rewards: queries that
// ask for specs, manuals, or datasheets land on extractable pages.
var docKeywords = []string{"spec", "manual", "support", "datasheet", "technical", "pdf"}

// PlanInput gathers everything the query planner consumes.
type PlanInput struct {
	Identity       types.Identity
	MissingFields  []string
	CriticalFields []string

	// Category supplies base and targeted templates plus lab keywords.
	Category *category.Config

	// RuntimeExtra are caller-supplied query strings.
	RuntimeExtra []string

	// ExtraGuardTerms extend the guard's allowed token set.
	ExtraGuardTerms []string

	// QueryLimit bounds the final query list. The planner's working set
	// is capped at max(QueryLimit, 6).
	QueryLimit int

	// Uber enables the aggressive LLM planning source.
	Uber bool
}

// PlanOutput is the planner's result: the final query list, the complete
// reject log, and the guard context, all persisted into the search profile.
type PlanOutput struct {
	Queries   []types.QueryRow
	RejectLog []types.QueryRejection
	Guard     types.GuardContext

	// UberPlan records the raw aggressive-planning suggestions for the
	// discovery.json artifact.
	UberPlan []string
}

// Plan builds, dedupes, ranks, and identity-guards the query set. LLM
// suggestions are best-effort: planner errors have already been degraded
// to empty by the llmassist guard.
func Plan(ctx context.Context, in PlanInput, features llmassist.Features, logger *zap.Logger) PlanOutput {
	if logger == nil {
		logger = zap.NewNop()
	}

	var out PlanOutput
	out.Guard = BuildGuardContext(in.Identity, in.ExtraGuardTerms)

	id := in.Identity
	catName := ""
	var baseTemplates, targetedTemplates, labKeywords []string
	if in.Category != nil {
		catName = in.Category.Name
		baseTemplates = in.Category.BaseTemplates
		targetedTemplates = in.Category.TargetedTemplates
		labKeywords = in.Category.LabKeywords
	}

	// 1. Collect candidate rows from the five tagged sources.
	type proposal struct {
		text   string
		source types.QuerySource
	}
	var proposals []proposal

	for _, tmpl := range baseTemplates {
		proposals = append(proposals, proposal{
			text:   category.ExpandTemplate(tmpl, id.Brand, id.Model, id.Variant, catName, ""),
			source: types.QuerySourceBase,
		})
	}
	for _, field := range in.MissingFields {
		for _, tmpl := range targetedTemplates {
			proposals = append(proposals, proposal{
				text:   category.ExpandTemplate(tmpl, id.Brand, id.Model, id.Variant, catName, field),
				source: types.QuerySourceTargeted,
			})
		}
	}

	llmQueries, _ := features.Planner.PlanQueries(ctx, id, in.MissingFields, in.QueryLimit, false)
	for _, q := range llmQueries {
		proposals = append(proposals, proposal{text: q, source: types.QuerySourceLLM})
	}

	if in.Uber {
		uberQueries, _ := features.Planner.PlanQueries(ctx, id, in.MissingFields, in.QueryLimit, true)
		out.UberPlan = uberQueries
		for _, q := range uberQueries {
			proposals = append(proposals, proposal{text: q, source: types.QuerySourceUber})
		}
	}

	for _, q := range in.RuntimeExtra {
		proposals = append(proposals, proposal{text: q, source: types.QuerySourceRuntimeExtra})
	}

	// 2. Dedupe by case-insensitive text, merging source provenance.
	queryLimit := in.QueryLimit
	if queryLimit <= 0 {
		queryLimit = 8
	}
	workingCap := queryLimit
	if workingCap < 6 {
		workingCap = 6
	}

	index := make(map[string]int)
	var rows []types.QueryRow
	for _, p := range proposals {
		text := strings.Join(strings.Fields(p.text), " ")
		if text == "" {
			out.RejectLog = append(out.RejectLog, types.QueryRejection{
				Query: p.text, Reason: reasonEmptyQuery,
			})
			continue
		}
		key := strings.ToLower(text)
		if i, ok := index[key]; ok {
			rows[i].Sources = appendSource(rows[i].Sources, p.source)
			out.RejectLog = append(out.RejectLog, types.QueryRejection{
				Query: text, Reason: reasonDuplicateQuery,
			})
			continue
		}
		if len(rows) >= workingCap {
			out.RejectLog = append(out.RejectLog, types.QueryRejection{
				Query: text, Reason: reasonMaxQueryCap,
			})
			continue
		}
		index[key] = len(rows)
		rows = append(rows, types.QueryRow{
			Text:    text,
			Source:  p.source,
			Sources: []types.QuerySource{p.source},
		})
	}

	// 3. Rank: heuristic score, stable sort score desc then lexical.
	for i := range rows {
		rows[i].Score = scoreQuery(rows[i].Text, id, labKeywords)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Text < rows[j].Text
	})

	// 4. Identity guard. Rejections are classifications, never errors.
	var accepted []types.QueryRow
	for _, row := range rows {
		ok, reason, details := checkQuery(row.Text, out.Guard)
		if !ok {
			out.RejectLog = append(out.RejectLog, types.QueryRejection{
				Query: row.Text, Reason: reason, Details: details,
			})
			logger.Debug("query rejected by identity guard",
				zap.String("query", row.Text), zap.String("reason", reason))
			continue
		}
		accepted = append(accepted, row)
	}

	// 5. Fallback: never send an empty set when something was proposed.
	if len(accepted) == 0 && len(rows) > 0 {
		best := rows[0]
		out.RejectLog = append(out.RejectLog, types.QueryRejection{
			Query: best.Text, Reason: reasonGuardFallback,
		})
		logger.Warn("identity guard rejected all queries, retaining best-ranked fallback",
			zap.String("query", best.Text))
		accepted = []types.QueryRow{best}
	}

	if len(accepted) > queryLimit {
		accepted = accepted[:queryLimit]
	}
	out.Queries = accepted
	return out
}

// scoreQuery assigns the heuristic ranking score: site: operator +6,
// document keyword +5, compacted brand +3, literal brand +2, literal
// model +2, lab-domain keyword +1.
func scoreQuery(text string, id types.Identity, labKeywords []string) int {
	lower := strings.ToLower(text)
	folded := foldAlnum(text)
	score := 0

	if strings.Contains(lower, "site:") {
		score += 6
	}
	for _, kw := range docKeywords {
		if strings.Contains(lower, kw) {
			score += 5
			break
		}
	}
	if compact := foldAlnum(id.Brand); compact != "" && strings.Contains(folded, compact) {
		score += 3
	}
	if b := strings.ToLower(id.Brand); b != "" && strings.Contains(lower, b) {
		score += 2
	}
	if m := strings.ToLower(id.Model); m != "" && strings.Contains(lower, m) {
		score += 2
	}
	for _, kw := range labKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			score++
			break
		}
	}
	return score
}

func appendSource(sources []types.QuerySource, s types.QuerySource) []types.QuerySource {
	for _, existing := range sources {
		if existing == s {
			return sources
		}
	}
	return append(sources, s)
}
