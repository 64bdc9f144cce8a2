// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package frontier schedules crawl work across three priority queues:
// manufacturer pages, other approved sources, and unapproved candidates.
// Dequeue order is strict: candidates are intentionally starved until all
// approved work is exhausted. Budgets are soft truncation, never errors.
//
// See docs/ARCHITECTURE § Crawl Frontier.
package frontier

import (
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/source-scout/internal/category"
	"github.com/pdiddy/source-scout/internal/intel"
	"github.com/pdiddy/source-scout/internal/urlx"
	"github.com/pdiddy/source-scout/pkg/types"
)

// Default budgets, applied when the configured value is zero.
const (
	defaultMaxURLs                = 60
	defaultMaxManufacturerURLs    = 30
	defaultMaxCandidateURLs       = 20
	defaultMaxPagesPerDomain      = 8
	defaultMaxManufacturerPerHost = 20
)

// Frontier holds the three queues, the visited sets, and the per-host
// counters. It is not safe for concurrent use; the fetch loop owns it.
type Frontier struct {
	cfg      types.FrontierConfig
	category *category.Config
	intel    *intel.Store
	logger   *zap.Logger

	identity      types.Identity
	missingFields []string
	brandTokens   []string
	modelTokens   []string

	manufacturerQueue []types.FrontierEntry
	approvedQueue     []types.FrontierEntry
	candidateQueue    []types.FrontierEntry

	queued  map[string]bool
	visited map[string]bool

	// allow holds root domains admitted beyond the category host list:
	// seeds and preferred-source hints.
	allow map[string]bool

	manufacturerVisited int
	approvedVisited     int
	candidateVisited    int

	// hostPages counts queued+visited pages per host within each class.
	manufacturerHostPages map[string]int
	approvedHostPages     map[string]int
	candidateHostPages    map[string]int

	htmlDiscovered    int
	robotsDiscovered  int
	sitemapDiscovered int
}

// New builds a frontier for one product. The intel store may be Empty();
// missing fields drive the priority boost and can be updated later via
// MarkFieldsFilled.
func New(cfg types.FrontierConfig, cat *category.Config, store *intel.Store, id types.Identity, missingFields []string, logger *zap.Logger) *Frontier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = intel.Empty()
	}
	applyDefaults(&cfg)

	f := &Frontier{
		cfg:                   cfg,
		category:              cat,
		intel:                 store,
		logger:                logger,
		identity:              id,
		missingFields:         append([]string(nil), missingFields...),
		queued:                make(map[string]bool),
		visited:               make(map[string]bool),
		allow:                 make(map[string]bool),
		manufacturerHostPages: make(map[string]int),
		approvedHostPages:     make(map[string]int),
		candidateHostPages:    make(map[string]int),
	}
	f.brandTokens = guardTokens(id.Brand)
	f.modelTokens = guardTokens(id.Model + " " + id.Variant)
	if cat != nil {
		for _, src := range cat.PreferredSources {
			f.allow[urlx.RootDomain(src)] = true
		}
	}
	return f
}

func applyDefaults(cfg *types.FrontierConfig) {
	if cfg.MaxURLs <= 0 {
		cfg.MaxURLs = defaultMaxURLs
	}
	if cfg.MaxManufacturerURLs <= 0 {
		cfg.MaxManufacturerURLs = defaultMaxManufacturerURLs
	}
	if cfg.MaxCandidateURLs <= 0 {
		cfg.MaxCandidateURLs = defaultMaxCandidateURLs
	}
	if cfg.MaxPagesPerDomain <= 0 {
		cfg.MaxPagesPerDomain = defaultMaxPagesPerDomain
	}
	if cfg.MaxManufacturerPagesPerDomain <= 0 {
		cfg.MaxManufacturerPagesPerDomain = defaultMaxManufacturerPerHost
	}
}

// Seed enqueues the discovery engine's selected candidates. Approved
// candidates extend the allow-list with their root domains so link
// discovery on their pages stays on-site.
func (f *Frontier) Seed(candidates []types.Candidate) int {
	added := 0
	for _, c := range candidates {
		if c.Tier < 4 {
			f.allow[c.RootDomain] = true
		}
		if f.enqueue(c.URL, "seed", false) {
			added++
		}
	}
	return added
}

// SeedCandidates enqueues unapproved review candidates. They only land in
// the candidate queue, and only when candidate fetching is enabled.
func (f *Frontier) SeedCandidates(candidates []types.Candidate) int {
	added := 0
	for _, c := range candidates {
		if f.enqueue(c.URL, "seed", false) {
			added++
		}
	}
	return added
}

// Add admits one URL found outside the discovery pass.
func (f *Frontier) Add(rawURL, discoveredFrom string) bool {
	return f.enqueue(rawURL, discoveredFrom, false)
}

// approvedPlanned is the approved-budget consumption: both approved-class
// queues plus everything already visited from them.
func (f *Frontier) approvedPlanned() int {
	return len(f.manufacturerQueue) + len(f.approvedQueue) + f.manufacturerVisited + f.approvedVisited
}

func (f *Frontier) manufacturerPlanned() int {
	return len(f.manufacturerQueue) + f.manufacturerVisited
}

// enqueue runs the admission checks and inserts the entry into the right
// queue in sorted position. forceApprove admits hosts outside the
// category list (robots/sitemap discoveries on already-approved sites).
func (f *Frontier) enqueue(rawURL, discoveredFrom string, forceApprove bool) bool {
	canonical, err := urlx.Canonicalize(rawURL)
	if err != nil {
		return false
	}
	u, err := url.Parse(canonical)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if f.visited[canonical] || f.queued[canonical] {
		return false
	}

	host := urlx.NormalizeHost(u.Host)
	root := urlx.RootDomain(host)
	if f.category != nil && f.category.IsDenied(host) {
		return false
	}

	tier, tierName, role := 4, "candidate", "other"
	if f.category != nil {
		tier, tierName, role = f.category.Classify(host)
	}
	approved := forceApprove || f.allow[root]
	if f.category != nil && f.category.IsApproved(host) {
		approved = true
	}

	entry := types.FrontierEntry{
		URL:            canonical,
		Host:           host,
		RootDomain:     root,
		Tier:           tier,
		TierName:       tierName,
		Role:           role,
		Priority:       f.intel.Priority(root, f.identity.Brand, f.missingFields),
		ApprovedDomain: approved,
		DiscoveredFrom: discoveredFrom,
	}

	if !approved {
		if !f.cfg.FetchCandidates {
			return false
		}
		if len(f.candidateQueue)+f.candidateVisited >= f.cfg.MaxCandidateURLs {
			return false
		}
		if f.candidateHostPages[host] >= f.cfg.MaxPagesPerDomain {
			return false
		}
		entry.CandidateSource = true
		f.candidateQueue = append(f.candidateQueue, entry)
		f.candidateHostPages[host]++
		f.queued[canonical] = true
		f.sortCandidate()
		return true
	}

	if f.approvedPlanned() >= f.cfg.MaxURLs {
		return false
	}

	if role == "manufacturer" {
		if f.manufacturerPlanned() >= f.cfg.MaxManufacturerURLs {
			return false
		}
		if f.manufacturerHostPages[host] >= f.cfg.MaxManufacturerPagesPerDomain {
			return false
		}
		f.manufacturerQueue = append(f.manufacturerQueue, entry)
		f.manufacturerHostPages[host]++
		f.queued[canonical] = true
		f.sortManufacturer()
		return true
	}

	if f.approvedHostPages[host] >= f.cfg.MaxPagesPerDomain {
		return false
	}
	// The manufacturer reserve is recomputed on every admission: a
	// non-manufacturer enqueue is blocked once it would consume budget
	// the remaining manufacturer allowance still needs.
	if f.cfg.ManufacturerReserveURLs > 0 {
		reserve := f.cfg.ManufacturerReserveURLs - f.manufacturerPlanned()
		if reserve > 0 && f.approvedPlanned()+1 > f.cfg.MaxURLs-reserve {
			return false
		}
	}
	f.approvedQueue = append(f.approvedQueue, entry)
	f.approvedHostPages[host]++
	f.queued[canonical] = true
	f.sortApproved()
	return true
}

// Next dequeues the highest-priority entry: manufacturer work first, then
// other approved sources, then candidates. The second return is false
// when all queues are empty.
func (f *Frontier) Next() (types.FrontierEntry, bool) {
	switch {
	case len(f.manufacturerQueue) > 0:
		e := f.manufacturerQueue[0]
		f.manufacturerQueue = f.manufacturerQueue[1:]
		f.manufacturerVisited++
		f.markVisited(e)
		return e, true
	case len(f.approvedQueue) > 0:
		e := f.approvedQueue[0]
		f.approvedQueue = f.approvedQueue[1:]
		f.approvedVisited++
		f.markVisited(e)
		return e, true
	case len(f.candidateQueue) > 0:
		e := f.candidateQueue[0]
		f.candidateQueue = f.candidateQueue[1:]
		f.candidateVisited++
		f.markVisited(e)
		return e, true
	}
	return types.FrontierEntry{}, false
}

func (f *Frontier) markVisited(e types.FrontierEntry) {
	delete(f.queued, e.URL)
	f.visited[e.URL] = true
}

// MarkFieldsFilled removes the named fields from the missing set,
// recomputes every queued entry's priority, and re-sorts all three
// queues.
func (f *Frontier) MarkFieldsFilled(fields []string) {
	filled := make(map[string]bool, len(fields))
	for _, field := range fields {
		filled[strings.ToLower(field)] = true
	}
	var remaining []string
	for _, field := range f.missingFields {
		if !filled[strings.ToLower(field)] {
			remaining = append(remaining, field)
		}
	}
	if len(remaining) == len(f.missingFields) {
		return
	}
	f.missingFields = remaining

	rescore := func(q []types.FrontierEntry) {
		for i := range q {
			q[i].Priority = f.intel.Priority(q[i].RootDomain, f.identity.Brand, f.missingFields)
		}
	}
	rescore(f.manufacturerQueue)
	rescore(f.approvedQueue)
	rescore(f.candidateQueue)
	f.sortManufacturer()
	f.sortApproved()
	f.sortCandidate()

	f.logger.Debug("frontier rebalanced",
		zap.Strings("filled", fields),
		zap.Int("remaining_fields", len(remaining)))
}

// sortManufacturer orders by priority desc, then path, then URL.
func (f *Frontier) sortManufacturer() {
	sort.SliceStable(f.manufacturerQueue, func(a, b int) bool {
		qa, qb := f.manufacturerQueue[a], f.manufacturerQueue[b]
		if qa.Priority != qb.Priority {
			return qa.Priority > qb.Priority
		}
		pa, pb := urlPath(qa.URL), urlPath(qb.URL)
		if pa != pb {
			return pa < pb
		}
		return qa.URL < qb.URL
	})
}

// sortApproved orders by tier asc, then priority desc, then URL.
func (f *Frontier) sortApproved() {
	sort.SliceStable(f.approvedQueue, func(a, b int) bool {
		qa, qb := f.approvedQueue[a], f.approvedQueue[b]
		if qa.Tier != qb.Tier {
			return qa.Tier < qb.Tier
		}
		if qa.Priority != qb.Priority {
			return qa.Priority > qb.Priority
		}
		return qa.URL < qb.URL
	})
}

// sortCandidate orders by priority desc, then URL.
func (f *Frontier) sortCandidate() {
	sort.SliceStable(f.candidateQueue, func(a, b int) bool {
		qa, qb := f.candidateQueue[a], f.candidateQueue[b]
		if qa.Priority != qb.Priority {
			return qa.Priority > qb.Priority
		}
		return qa.URL < qb.URL
	})
}

func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}

// Stats snapshots queue depths, visited counts, discovery counts, and the
// configured budgets.
func (f *Frontier) Stats() types.FrontierStats {
	return types.FrontierStats{
		ManufacturerQueued:  len(f.manufacturerQueue),
		ApprovedQueued:      len(f.approvedQueue),
		CandidateQueued:     len(f.candidateQueue),
		ManufacturerVisited: f.manufacturerVisited,
		ApprovedVisited:     f.approvedVisited,
		CandidateVisited:    f.candidateVisited,

		HTMLDiscovered:    f.htmlDiscovered,
		RobotsDiscovered:  f.robotsDiscovered,
		SitemapDiscovered: f.sitemapDiscovered,

		MaxURLs:                       f.cfg.MaxURLs,
		MaxManufacturerURLs:           f.cfg.MaxManufacturerURLs,
		MaxCandidateURLs:              f.cfg.MaxCandidateURLs,
		MaxPagesPerDomain:             f.cfg.MaxPagesPerDomain,
		MaxManufacturerPagesPerDomain: f.cfg.MaxManufacturerPagesPerDomain,
	}
}

// guardTokens splits s into lowercased tokens of at least two characters.
func guardTokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	var tokens []string
	for _, t := range fields {
		if len(t) >= 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
