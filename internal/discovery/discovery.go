// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/source-scout/internal/category"
	"github.com/pdiddy/source-scout/internal/intel"
	"github.com/pdiddy/source-scout/internal/llmassist"
	"github.com/pdiddy/source-scout/internal/providers"
	"github.com/pdiddy/source-scout/pkg/types"
)

// Deps are the engine's collaborators. Category is required; everything
// else degrades gracefully when nil or empty.
type Deps struct {
	Category  *category.Config
	Intel     *intel.Store
	Providers []providers.Provider
	Corpus    CorpusSearcher
	Cooldown  Cooldown
	Features  llmassist.Features
}

// Engine runs the full discovery pipeline: plan, execute, classify,
// rerank, persist.
type Engine struct {
	cfg    types.DiscoveryConfig
	deps   Deps
	logger *zap.Logger
}

// NewEngine wires a discovery engine. The LLM features are wrapped so
// that any feature error degrades to a neutral default.
func NewEngine(cfg types.DiscoveryConfig, deps Deps, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Cooldown == nil {
		deps.Cooldown = NopCooldown{}
	}
	if deps.Intel == nil {
		deps.Intel = intel.Empty()
	}
	if deps.Features == (llmassist.Features{}) {
		deps.Features = llmassist.Nop()
	}
	deps.Features = llmassist.Guarded(deps.Features, logger)
	return &Engine{cfg: cfg, deps: deps, logger: logger}
}

// RunInput identifies the product and the fields the run should fill.
type RunInput struct {
	Identity        types.Identity
	MissingFields   []string
	CriticalFields  []string
	RuntimeExtra    []string
	ExtraGuardTerms []string
}

// RunOutput is the pipeline result. Discovered holds only the selected
// candidates; Record carries the full audit trail as persisted.
type RunOutput struct {
	RunID      string
	Discovered []types.Candidate
	Record     types.DiscoveryRecord
	PlanOnly   bool
}

// Run executes one discovery pass. The search profile artifact is written
// twice: once after planning (status "planned") and once after execution
// and triage (status "executed"). Artifact write failures are logged and
// do not fail the run.
func (e *Engine) Run(ctx context.Context, in RunInput) (RunOutput, error) {
	if in.Identity.IsEmpty() {
		return RunOutput{}, fmt.Errorf("discovery: empty identity")
	}
	runID := uuid.NewString()
	logger := e.logger.With(
		zap.String("run_id", runID),
		zap.String("product_id", in.Identity.ProductID))
	logger.Info("discovery run starting",
		zap.String("product", in.Identity.FullName()),
		zap.Strings("missing_fields", in.MissingFields))

	var journal []string
	note := func(format string, args ...any) {
		journal = append(journal, fmt.Sprintf(format, args...))
	}

	// 1. Plan.
	plan := Plan(ctx, PlanInput{
		Identity:        in.Identity,
		MissingFields:   in.MissingFields,
		CriticalFields:  in.CriticalFields,
		Category:        e.deps.Category,
		RuntimeExtra:    in.RuntimeExtra,
		ExtraGuardTerms: in.ExtraGuardTerms,
		QueryLimit:      e.cfg.QueryLimit,
		Uber:            e.cfg.UberAggressive,
	}, e.deps.Features, logger)
	note("planned %d queries, rejected %d", len(plan.Queries), len(plan.RejectLog))

	profile := types.SearchProfile{
		RunID:          runID,
		ProductID:      in.Identity.ProductID,
		Status:         "planned",
		Aliases:        in.Identity.Aliases(),
		Queries:        plan.Queries,
		QueryRejectLog: plan.RejectLog,
		QueryGuard:     plan.Guard,
		Timestamp:      time.Now().UTC(),
	}
	e.writeArtifact(in.Identity.ProductID, searchProfileFile, profile, logger)

	// 2. Execute.
	var manufacturerHosts, otherHosts, segments []string
	if e.deps.Category != nil {
		manufacturerHosts = e.deps.Category.ManufacturerHosts()
		for _, rule := range e.deps.Category.Hosts {
			if rule.Role != "manufacturer" {
				otherHosts = append(otherHosts, rule.Host)
			}
		}
		segments = e.deps.Category.PathSegments
	}
	exec := Execute(ctx, ExecInput{
		Identity:               in.Identity,
		Queries:                plan.Queries,
		Providers:              e.deps.Providers,
		Corpus:                 e.deps.Corpus,
		Cooldown:               e.deps.Cooldown,
		RequiredFieldsTargeted: queriesTargetFields(plan.Queries),
		ManufacturerHosts:      manufacturerHosts,
		OtherSearchHosts:       otherHosts,
		CategorySegments:       segments,
		Config:                 e.cfg,
	}, logger)
	note("executed: %d raw results, provider state %s", len(exec.Results), exec.ProviderState)

	// 3. Classify.
	classified := Classify(ClassifyInput{
		Identity:      in.Identity,
		Category:      e.deps.Category,
		KnownVariants: e.cfg.KnownVariants,
		Cooldown:      e.deps.Cooldown,
		Results:       exec.Results,
	}, logger)
	note("classified: %d candidates, %d dropped", len(classified.Candidates), len(classified.Dropped))

	// 4. Rerank and select.
	ranked := Rerank(ctx, RerankInput{
		Identity:       in.Identity,
		Candidates:     classified.Candidates,
		MissingFields:  in.MissingFields,
		Intel:          e.deps.Intel,
		LLMTriage:      e.cfg.LLMTriage,
		UberAggressive: e.cfg.UberAggressive,
		DiscoveryCap:   e.cfg.DiscoveryCap,
	}, e.deps.Features, logger)

	var discovered []types.Candidate
	for _, c := range ranked {
		if c.Decision == types.DecisionSelected {
			discovered = append(discovered, c)
		}
	}
	note("selected %d of %d candidates", len(discovered), len(ranked))

	// 5. Persist artifacts.
	profile.Status = "executed"
	profile.Attempts = exec.Attempts
	profile.SerpExplorer = serpEntries(ranked)
	profile.Timestamp = time.Now().UTC()
	e.writeArtifact(in.Identity.ProductID, searchProfileFile, profile, logger)

	record := types.DiscoveryRecord{
		RunID:          runID,
		ProductID:      in.Identity.ProductID,
		Identity:       in.Identity,
		MissingFields:  in.MissingFields,
		ProviderState:  exec.ProviderState,
		Queries:        plan.Queries,
		QueryRejectLog: plan.RejectLog,
		Attempts:       exec.Attempts,
		Journal:        journal,
		UberSearchPlan: plan.UberPlan,
		Discovered:     discovered,
		Timestamp:      time.Now().UTC(),
	}
	e.writeArtifact(in.Identity.ProductID, discoveryFile, record, logger)

	if offDomain := candidateTierOnly(ranked); len(offDomain) > 0 {
		e.writeArtifact(in.Identity.ProductID, candidatesFile, types.CandidatesRecord{
			RunID:      runID,
			ProductID:  in.Identity.ProductID,
			Candidates: offDomain,
			Timestamp:  time.Now().UTC(),
		}, logger)
	}

	logger.Info("discovery run complete",
		zap.Int("discovered", len(discovered)),
		zap.String("provider_state", exec.ProviderState))
	return RunOutput{
		RunID:      runID,
		Discovered: discovered,
		Record:     record,
		PlanOnly:   exec.PlanOnly,
	}, nil
}

// queriesTargetFields reports whether the query set includes
// field-targeted rows, the precondition for letting internal corpus
// coverage satisfy the run.
func queriesTargetFields(queries []types.QueryRow) bool {
	for _, q := range queries {
		for _, s := range q.Sources {
			if s == types.QuerySourceTargeted {
				return true
			}
		}
	}
	return false
}

// candidateTierOnly returns the candidates on non-approved domains, for
// the candidates.json review artifact.
func candidateTierOnly(ranked []types.Candidate) []types.Candidate {
	var out []types.Candidate
	for _, c := range ranked {
		if c.TierName == "candidate" {
			out = append(out, c)
		}
	}
	return out
}

// serpEntries projects the ranked candidates into the serp_explorer audit
// view.
func serpEntries(ranked []types.Candidate) []types.SerpEntry {
	entries := make([]types.SerpEntry, 0, len(ranked))
	for _, c := range ranked {
		query := ""
		if len(c.SeenInQueries) > 0 {
			query = c.SeenInQueries[0]
		}
		entries = append(entries, types.SerpEntry{
			URL:         c.URL,
			Query:       query,
			Decision:    c.Decision,
			ReasonCodes: c.ReasonCodes,
			TriageScore: c.TriageScore,
		})
	}
	return entries
}
