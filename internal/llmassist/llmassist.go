// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmassist defines the optional LLM-backed discovery features:
// query planning, SERP triage, domain-safety classification, brand
// resolution, and URL prediction. Every feature is best-effort. The core
// pipeline receives a Features value and never branches on availability:
// when credentials are absent the no-op implementation is used, and the
// Guarded wrapper degrades any error to an empty, neutral default.
//
// Prompt construction, provider routing, and billing live outside this
// repository; implementations are injected by the embedding application.
//
// See docs/ARCHITECTURE § Optional LLM Features.
package llmassist

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/source-scout/pkg/types"
)

// QueryPlanner proposes additional search queries for an identity.
type QueryPlanner interface {
	// PlanQueries returns up to limit query strings. Uber selects the
	// aggressive planning mode.
	PlanQueries(ctx context.Context, id types.Identity, missingFields []string, limit int, uber bool) ([]string, error)
}

// Triage reranks classified candidates. The returned slice is canonical
// URLs in final order; it replaces the deterministic ordering wholesale.
type Triage interface {
	RankCandidates(ctx context.Context, id types.Identity, candidates []types.Candidate, domainSafety map[string]string) ([]string, error)
}

// DomainSafety classifies hosts as "safe", "unsafe", or "unknown".
type DomainSafety interface {
	ClassifyDomains(ctx context.Context, hosts []string) (map[string]string, error)
}

// BrandResolver normalizes a raw brand string to its canonical form.
type BrandResolver interface {
	ResolveBrand(ctx context.Context, raw string) (string, error)
}

// URLPredictor guesses product URLs on a manufacturer host.
type URLPredictor interface {
	PredictURLs(ctx context.Context, id types.Identity, host string) ([]string, error)
}

// Features bundles all optional LLM capabilities. Nil fields are treated
// as absent; Guarded backfills them with no-op implementations.
type Features struct {
	Planner   QueryPlanner
	Triage    Triage
	Safety    DomainSafety
	Brand     BrandResolver
	Predictor URLPredictor
}

// Nop returns Features where every capability returns empty defaults.
func Nop() Features {
	n := nop{}
	return Features{Planner: n, Triage: n, Safety: n, Brand: n, Predictor: n}
}

type nop struct{}

func (nop) PlanQueries(context.Context, types.Identity, []string, int, bool) ([]string, error) {
	return nil, nil
}

func (nop) RankCandidates(context.Context, types.Identity, []types.Candidate, map[string]string) ([]string, error) {
	return nil, nil
}

func (nop) ClassifyDomains(context.Context, []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (nop) ResolveBrand(_ context.Context, raw string) (string, error) {
	return raw, nil
}

func (nop) PredictURLs(context.Context, types.Identity, string) ([]string, error) {
	return nil, nil
}

// Guarded wraps Features so that every error degrades to the neutral
// default and is logged instead of propagating. Discovery runs never
// abort or retry because an optional feature failed.
func Guarded(f Features, logger *zap.Logger) Features {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := nop{}
	if f.Planner == nil {
		f.Planner = n
	}
	if f.Triage == nil {
		f.Triage = n
	}
	if f.Safety == nil {
		f.Safety = n
	}
	if f.Brand == nil {
		f.Brand = n
	}
	if f.Predictor == nil {
		f.Predictor = n
	}
	return Features{
		Planner:   guardedPlanner{f.Planner, logger},
		Triage:    guardedTriage{f.Triage, logger},
		Safety:    guardedSafety{f.Safety, logger},
		Brand:     guardedBrand{f.Brand, logger},
		Predictor: guardedPredictor{f.Predictor, logger},
	}
}

type guardedPlanner struct {
	inner  QueryPlanner
	logger *zap.Logger
}

func (g guardedPlanner) PlanQueries(ctx context.Context, id types.Identity, missing []string, limit int, uber bool) ([]string, error) {
	qs, err := g.inner.PlanQueries(ctx, id, missing, limit, uber)
	if err != nil {
		g.logger.Warn("llm query planning degraded to empty", zap.Error(err))
		return nil, nil
	}
	return qs, nil
}

type guardedTriage struct {
	inner  Triage
	logger *zap.Logger
}

func (g guardedTriage) RankCandidates(ctx context.Context, id types.Identity, cands []types.Candidate, safety map[string]string) ([]string, error) {
	order, err := g.inner.RankCandidates(ctx, id, cands, safety)
	if err != nil {
		g.logger.Warn("llm triage degraded to deterministic order", zap.Error(err))
		return nil, nil
	}
	return order, nil
}

type guardedSafety struct {
	inner  DomainSafety
	logger *zap.Logger
}

func (g guardedSafety) ClassifyDomains(ctx context.Context, hosts []string) (map[string]string, error) {
	m, err := g.inner.ClassifyDomains(ctx, hosts)
	if err != nil {
		g.logger.Warn("domain safety degraded to empty", zap.Error(err))
		return map[string]string{}, nil
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

type guardedBrand struct {
	inner  BrandResolver
	logger *zap.Logger
}

func (g guardedBrand) ResolveBrand(ctx context.Context, raw string) (string, error) {
	resolved, err := g.inner.ResolveBrand(ctx, raw)
	if err != nil || resolved == "" {
		if err != nil {
			g.logger.Warn("brand resolution degraded to input", zap.Error(err))
		}
		return raw, nil
	}
	return resolved, nil
}

type guardedPredictor struct {
	inner  URLPredictor
	logger *zap.Logger
}

func (g guardedPredictor) PredictURLs(ctx context.Context, id types.Identity, host string) ([]string, error) {
	urls, err := g.inner.PredictURLs(ctx, id, host)
	if err != nil {
		g.logger.Warn("url prediction degraded to empty", zap.Error(err))
		return nil, nil
	}
	return urls, nil
}
