package ambiguity

import (
	"context"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/edgeqc/internal/core/canonical"
	"github.com/agenthands/edgeqc/internal/core/common"
	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/logger"
	"github.com/agenthands/edgeqc/internal/resolution"
)

const (
	DefaultLookupBatchSize = 200
	DefaultCacheSize       = 50000
)

type lookupKey struct {
	typeFilter string
	surface    string
}

// Query is one reverse lookup the resolver will need for an edge batch.
type Query struct {
	TypeFilter string
	Surface    string
}

type Options struct {
	// TypeFilter scopes lookups by the original entity's most specific type.
	TypeFilter  bool
	BatchSize   int
	CacheSize   int
	Concurrency int
}

// Resolver decides whether a matched surface string denotes the original
// entity unambiguously. Lookup results are kept in an LRU shared across edge
// batches; candidate CURIEs are canonicalized through the run's cache.
type Resolver struct {
	Service       resolution.Service
	Canonicalizer *canonical.Canonicalizer
	Cache         *canonical.Cache
	Options       Options
	Log           *logger.Logger

	lookups *lru.Cache[lookupKey, []resolution.LookupResult]
}

func NewResolver(svc resolution.Service, canon *canonical.Canonicalizer, cache *canonical.Cache, opts Options, log *logger.Logger) (*Resolver, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultLookupBatchSize
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	lookups, err := lru.New[lookupKey, []resolution.LookupResult](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup cache: %w", err)
	}
	return &Resolver{
		Service:       svc,
		Canonicalizer: canon,
		Cache:         cache,
		Options:       opts,
		Log:           log,
		lookups:       lookups,
	}, nil
}

// TypeFilterFor returns the lookup type scope for entity.
func (r *Resolver) TypeFilterFor(entity model.CanonicalEntity) string {
	if !r.Options.TypeFilter {
		return ""
	}
	return entity.MostSpecificType()
}

// Prefetch runs the bulk lookups for an edge batch, grouped by type filter,
// and canonicalizes every returned candidate CURIE.
func (r *Resolver) Prefetch(ctx context.Context, queries []Query) error {
	groups := make(map[string]map[string]struct{})
	for _, q := range queries {
		if q.Surface == "" {
			continue
		}
		if _, ok := r.lookups.Get(lookupKey{q.TypeFilter, q.Surface}); ok {
			continue
		}
		if groups[q.TypeFilter] == nil {
			groups[q.TypeFilter] = make(map[string]struct{})
		}
		groups[q.TypeFilter][q.Surface] = struct{}{}
	}
	if len(groups) == 0 {
		return nil
	}

	type job struct {
		typeFilter string
		texts      []string
	}
	var jobs []job
	for _, tf := range common.SortedKeys(groups) {
		for _, chunk := range common.Chunk(common.SortedKeys(groups[tf]), r.Options.BatchSize) {
			jobs = append(jobs, job{typeFilter: tf, texts: chunk})
		}
	}

	results := make([]map[string][]resolution.LookupResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Options.Concurrency)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			res, err := r.Service.BulkLookup(gctx, j.texts, j.typeFilter)
			if err != nil {
				return fmt.Errorf("bulk lookup (type %q, %d strings): %w", j.typeFilter, len(j.texts), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var curies []string
	for i, j := range jobs {
		for _, text := range j.texts {
			hits := results[i][text]
			r.lookups.Add(lookupKey{j.typeFilter, text}, hits)
			for _, h := range hits {
				curies = append(curies, h.CURIE)
			}
		}
	}
	r.Log.Debug("prefetched lookups", "requests", len(jobs), "type_groups", len(groups), "candidates", len(curies))

	if err := r.Canonicalizer.Ensure(ctx, r.Cache, curies); err != nil {
		return fmt.Errorf("failed to canonicalize lookup candidates: %w", err)
	}
	return nil
}

// Resolve classifies one matched role. The returned error is always a
// service failure; resolution outcomes are carried in the status.
func (r *Resolver) Resolve(ctx context.Context, role model.Role, entity model.CanonicalEntity, match model.RoleMatch) (model.RoleResolution, error) {
	res := model.RoleResolution{
		Role:        role,
		CURIE:       entity.OriginalID,
		CanonicalID: entity.CanonicalID,
		Match:       match,
	}
	if !match.Matched {
		res.Status = model.StatusUnmatched
		res.Reason = fmt.Sprintf("no synonym of %s found in sentences", entity.OriginalID)
		return res, nil
	}

	hits, err := r.lookup(ctx, r.TypeFilterFor(entity), match.Surface)
	if err != nil {
		return res, err
	}
	hits = exactMatches(match.Surface, hits)

	curies := make([]string, 0, len(hits))
	for _, h := range hits {
		curies = append(curies, h.CURIE)
	}
	if err := r.Canonicalizer.Ensure(ctx, r.Cache, curies); err != nil {
		return res, fmt.Errorf("failed to canonicalize lookup candidates: %w", err)
	}

	candidates, labelled := r.candidates(match.Surface, hits, &res)
	res.Candidates = candidates

	switch {
	case len(candidates) == 0:
		res.Status = model.StatusLookupInconsistent
		res.Reason = fmt.Sprintf("reverse lookup of %q returned no candidates", match.Surface)
	case len(candidates) == 1 && candidates[0] == entity.CanonicalID:
		res.Status = model.StatusResolved
		res.Reason = fmt.Sprintf("%q resolves uniquely to %s", match.Surface, entity.CanonicalID)
	case len(candidates) == 1:
		res.Status = model.StatusMismatch
		res.Reason = fmt.Sprintf("%q resolves to %s but expected %s", match.Surface, candidates[0], entity.CanonicalID)
	case match.IsPreferredName && labelled[entity.CanonicalID] && len(labelled) == 1:
		res.Status = model.StatusResolved
		res.Reason = fmt.Sprintf("%q is the preferred name of %s among %d candidates", match.Surface, entity.CanonicalID, len(candidates))
	default:
		res.Status = model.StatusAmbiguous
		res.Reason = fmt.Sprintf("%q maps to %d candidates: %s", match.Surface, len(candidates), strings.Join(candidates, ", "))
	}
	return res, nil
}

func (r *Resolver) lookup(ctx context.Context, typeFilter, surface string) ([]resolution.LookupResult, error) {
	key := lookupKey{typeFilter, surface}
	if hits, ok := r.lookups.Get(key); ok {
		return hits, nil
	}
	hits, err := r.Service.Lookup(ctx, surface, typeFilter)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", surface, err)
	}
	r.lookups.Add(key, hits)
	return hits, nil
}

// candidates maps hits to distinct canonical ids in hit order and reports
// which ids carry a label equal to the surface. Lookup data is recorded on
// res for review.
func (r *Resolver) candidates(surface string, hits []resolution.LookupResult, res *model.RoleResolution) ([]string, map[string]bool) {
	var ids []string
	seen := make(map[string]struct{})
	labelled := make(map[string]bool)

	for _, h := range hits {
		id := h.CURIE
		label := h.Label
		if e, st := r.Cache.Lookup(h.CURIE); st == canonical.StatusKnown {
			id = e.CanonicalID
			if label == "" {
				label = e.Label
			}
		}
		res.LookupData = append(res.LookupData, model.LookupCandidate{
			CURIE:       h.CURIE,
			CanonicalID: id,
			Label:       label,
			Score:       h.Score,
			Types:       h.Types,
		})
		if strings.EqualFold(label, surface) {
			labelled[id] = true
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, labelled
}

// exactMatches keeps the hits whose label or one of whose synonyms equals
// surface, ignoring case. When no hit carries any names the top-scoring hits
// are kept instead.
func exactMatches(surface string, hits []resolution.LookupResult) []resolution.LookupResult {
	if len(hits) == 0 {
		return nil
	}

	named := false
	var exact []resolution.LookupResult
	for _, h := range hits {
		if h.Label != "" || len(h.Synonyms) > 0 {
			named = true
		}
		if denotes(surface, h) {
			exact = append(exact, h)
		}
	}
	if named {
		return exact
	}

	top := hits[0].Score
	for _, h := range hits[1:] {
		if h.Score > top {
			top = h.Score
		}
	}
	var best []resolution.LookupResult
	for _, h := range hits {
		if h.Score == top {
			best = append(best, h)
		}
	}
	sort.SliceStable(best, func(i, j int) bool { return best[i].CURIE < best[j].CURIE })
	return best
}

func denotes(surface string, h resolution.LookupResult) bool {
	if strings.EqualFold(h.Label, surface) {
		return true
	}
	for _, s := range h.Synonyms {
		if strings.EqualFold(s, surface) {
			return true
		}
	}
	return false
}
