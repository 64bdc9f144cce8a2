// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/source-scout/internal/providers"
	"github.com/pdiddy/source-scout/pkg/types"
)

// Executor attempt reasons.
const (
	reasonOK                = "ok"
	reasonCooldownSkip      = "cooldown_skip"
	reasonProviderError     = "provider_error"
	reasonInternalSatisfied = "internal_satisfied_skip_external"
	reasonPlanOnly          = "plan_only"
	reasonCorpusError       = "corpus_error"
)

// Provider states recorded into discovery.json.
const (
	providerStateExternal      = "external"
	providerStateInternalOnly  = "internal_only"
	providerStatePlanOnly      = "plan_only"
	providerStateInternalMixed = "internal+external"
	providerStateEmpty         = "empty"
)

// CorpusSearcher is the internal corpus lookup collaborator.
type CorpusSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]types.RawResult, error)
}

// ExecInput gathers everything one execution pass consumes.
type ExecInput struct {
	Identity types.Identity
	Queries  []types.QueryRow

	// Providers are the external backends, in preference order.
	Providers []providers.Provider

	// Corpus is optional; nil disables internal-first lookups.
	Corpus CorpusSearcher

	// Cooldown signals per-query and per-URL skips.
	Cooldown Cooldown

	// RequiredFieldsTargeted is true when the run's queries target the
	// currently required fields; only then can internal coverage satisfy
	// the run without external search.
	RequiredFieldsTargeted bool

	// PlanOnly inputs: manufacturer hosts and other approved hosts for
	// deterministic URL synthesis when no provider is usable.
	ManufacturerHosts []string
	OtherSearchHosts  []string
	CategorySegments  []string

	Config types.DiscoveryConfig
}

// ExecOutput is the executor's result.
type ExecOutput struct {
	Results       []types.RawResult
	Attempts      []types.SearchAttempt
	ProviderState string
	PlanOnly      bool
}

// Execute runs the query set. Internal corpus lookups happen first when
// configured; external providers run under a bounded worker pool; when no
// provider is usable and nothing was gathered, deterministic plan-only
// URLs are synthesized. Nothing in here is fatal: provider failures
// degrade to zero-result attempts.
func Execute(ctx context.Context, in ExecInput, logger *zap.Logger) ExecOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	cooldown := in.Cooldown
	if cooldown == nil {
		cooldown = NopCooldown{}
	}

	var out ExecOutput

	// (a) Internal corpus pass.
	internalSatisfied := false
	if in.Config.InternalFirst && in.Corpus != nil {
		distinct := make(map[string]bool)
		for _, q := range in.Queries {
			if cooldown.ShouldSkipQuery(in.Identity.ProductID, q.Text) {
				out.Attempts = append(out.Attempts, types.SearchAttempt{
					Query: q.Text, Provider: "corpus", Reason: reasonCooldownSkip,
				})
				continue
			}
			start := time.Now()
			hits, err := in.Corpus.Search(ctx, q.Text, in.Config.ResultLimit)
			attempt := types.SearchAttempt{
				Query:      q.Text,
				Provider:   "corpus",
				DurationMS: time.Since(start).Milliseconds(),
				Results:    len(hits),
				Reason:     reasonOK,
			}
			if err != nil {
				attempt.Results = 0
				attempt.Reason = reasonCorpusError
				logger.Warn("corpus search failed", zap.String("query", q.Text), zap.Error(err))
			}
			out.Attempts = append(out.Attempts, attempt)
			for _, h := range hits {
				distinct[h.URL] = true
				out.Results = append(out.Results, h)
			}
		}

		minResults := in.Config.InternalMinResults
		if minResults <= 0 {
			minResults = 5
		}
		if len(distinct) >= minResults && in.RequiredFieldsTargeted {
			internalSatisfied = true
			out.Attempts = append(out.Attempts, types.SearchAttempt{
				Provider: "corpus", Reason: reasonInternalSatisfied, Results: len(distinct),
			})
			logger.Info("internal corpus coverage satisfied, skipping external search",
				zap.Int("distinct_urls", len(distinct)))
		}
	}

	// (b) External provider pass.
	usable, usableNames := providers.Usable(in.Providers)
	dualReason := providers.DualModeReason(usableNames)

	if !internalSatisfied && len(usable) > 0 {
		concurrency := in.Config.Concurrency
		if concurrency <= 0 {
			concurrency = 1
		}

		// Workers write into position-indexed slots: no two workers
		// contend on the same index, so no lock is needed.
		resultSlots := make([][]types.RawResult, len(in.Queries))
		attemptSlots := make([]types.SearchAttempt, len(in.Queries))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i := range in.Queries {
			i := i
			g.Go(func() error {
				q := in.Queries[i]
				if cooldown.ShouldSkipQuery(in.Identity.ProductID, q.Text) {
					attemptSlots[i] = types.SearchAttempt{
						Query: q.Text, Provider: "external", Reason: reasonCooldownSkip,
					}
					return nil
				}

				start := time.Now()
				var gathered []types.RawResult
				var lastErr error
				for _, p := range usable {
					rs, err := p.Search(gctx, q.Text, in.Config.ResultLimit, in.Config.HTTPConfig)
					if err != nil {
						lastErr = err
						logger.Warn("provider search failed",
							zap.String("provider", p.Name()),
							zap.String("query", q.Text),
							zap.Error(err))
						continue
					}
					gathered = append(gathered, rs...)
				}

				attempt := types.SearchAttempt{
					Query:      q.Text,
					Provider:   "external",
					DurationMS: time.Since(start).Milliseconds(),
					Results:    len(gathered),
					Reason:     dualReason,
				}
				if len(gathered) == 0 && lastErr != nil {
					attempt.Reason = reasonProviderError
				}
				attemptSlots[i] = attempt
				resultSlots[i] = gathered
				cooldown.RecordQuery(in.Identity.ProductID, q.Text)
				return nil
			})
		}
		g.Wait()

		for i := range in.Queries {
			out.Attempts = append(out.Attempts, attemptSlots[i])
			out.Results = append(out.Results, resultSlots[i]...)
		}
	}

	// (c) Plan-only fallback.
	switch {
	case len(usable) == 0 && len(out.Results) == 0:
		planned := PlanOnlyCandidates(in.Identity, in.ManufacturerHosts, in.OtherSearchHosts, in.CategorySegments, in.Queries)
		out.Results = append(out.Results, planned...)
		out.Attempts = append(out.Attempts, types.SearchAttempt{
			Provider: "plan", Reason: reasonPlanOnly, Results: len(planned),
		})
		out.PlanOnly = true
		out.ProviderState = providerStatePlanOnly
		logger.Info("no provider usable, synthesized plan-only candidates",
			zap.Int("urls", len(planned)))
	case internalSatisfied:
		out.ProviderState = providerStateInternalOnly
	case in.Config.InternalFirst && in.Corpus != nil:
		out.ProviderState = providerStateInternalMixed
	case len(out.Results) == 0:
		out.ProviderState = providerStateEmpty
	default:
		out.ProviderState = providerStateExternal
	}

	return out
}
