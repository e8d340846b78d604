package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/edgeqc/internal/config"
	"github.com/agenthands/edgeqc/internal/core/ambiguity"
	"github.com/agenthands/edgeqc/internal/core/canonical"
	"github.com/agenthands/edgeqc/internal/core/classify"
	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/core/synonyms"
	"github.com/agenthands/edgeqc/internal/core/textmatch"
	"github.com/agenthands/edgeqc/internal/logger"
	"github.com/agenthands/edgeqc/internal/resolution"
)

// EdgeSource yields edges in input order. Each may be called more than once
// and must replay the same edges.
type EdgeSource interface {
	Each(ctx context.Context, fn func(model.Edge) error) error
}

// Sink receives classified edges in input order.
type Sink interface {
	Write(ctx context.Context, rec model.ClassifiedEdge) error
}

var errEdgeLimit = errors.New("edge limit reached")

// QC runs entity identification over a stream of edges.
type QC struct {
	Service    resolution.Service
	Resolution config.ResolutionConfig
	Classifier config.ClassifierConfig
	Log        *logger.Logger
}

func NewQC(svc resolution.Service, cfg *config.Config, log *logger.Logger) *QC {
	if log == nil {
		log = logger.Nop()
	}
	return &QC{
		Service:    svc,
		Resolution: cfg.Resolution,
		Classifier: cfg.Classifier,
		Log:        log,
	}
}

// run holds the caches of one Run.
type run struct {
	cache    *canonical.Cache
	index    *synonyms.Index
	resolver *ambiguity.Resolver
	matcher  *textmatch.Matcher
	names    map[string]string
}

// Run classifies every edge of src (up to the configured max) and writes
// each result to sink. Service failures abort the run and are returned.
func (q *QC) Run(ctx context.Context, src EdgeSource, names map[string]string, sink Sink) (*Summary, error) {
	summary := NewSummary()
	runStart := time.Now()

	start := time.Now()
	curies, edges, err := q.collectCURIEs(ctx, src)
	if err != nil {
		return nil, err
	}
	q.Log.Info("collected curies", "edges", edges, "curies", len(curies))

	canon := canonical.NewCanonicalizer(q.Service, q.Resolution.NormalizeBatchSize, q.Resolution.Concurrency, q.Log)
	cache, err := canon.Canonicalize(ctx, curies)
	if err != nil {
		return nil, fmt.Errorf("canonicalization failed: %w", err)
	}
	known, failed := cache.Len()
	summary.CURIEs = len(curies)
	summary.NormalizationFailed = failed
	summary.Timings.Canonicalize = time.Since(start)
	q.Log.Info("canonicalized curies", "known", known, "failed", failed, "elapsed", summary.Timings.Canonicalize)

	start = time.Now()
	index, err := synonyms.NewBuilder(q.Service, q.Resolution.SynonymsBatchSize, q.Resolution.Concurrency, q.Log).Build(ctx, cache)
	if err != nil {
		return nil, fmt.Errorf("synonym retrieval failed: %w", err)
	}
	summary.SynonymRecords = index.Len()
	summary.Timings.Synonyms = time.Since(start)
	q.Log.Info("built synonym index", "records", index.Len(), "elapsed", summary.Timings.Synonyms)

	resolver, err := ambiguity.NewResolver(q.Service, canon, cache, ambiguity.Options{
		TypeFilter:  q.Classifier.TypeFilter,
		BatchSize:   q.Resolution.LookupBatchSize,
		CacheSize:   q.Classifier.LookupCacheSize,
		Concurrency: q.Resolution.Concurrency,
	}, q.Log)
	if err != nil {
		return nil, err
	}

	r := &run{
		cache:    cache,
		index:    index,
		resolver: resolver,
		matcher:  textmatch.NewMatcher(q.Classifier.Delimiter, q.Classifier.Placeholder, q.Classifier.MatchMode),
		names:    names,
	}

	start = time.Now()
	batchSize := q.Classifier.EdgeBatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	batch := make([]model.Edge, 0, batchSize)
	batchNo := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		batchNo++
		if err := q.classifyBatch(ctx, r, batch, sink, summary); err != nil {
			return fmt.Errorf("edge batch %d: %w", batchNo, err)
		}
		q.Log.Debug("classified edge batch", "batch", batchNo, "edges", len(batch), "total", summary.Total)
		batch = batch[:0]
		return nil
	}

	err = q.eachEdge(ctx, src, func(e model.Edge) error {
		batch = append(batch, e)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}

	summary.Timings.Classify = time.Since(start)
	summary.Timings.Total = time.Since(runStart)
	summary.Log(q.Log)
	return summary, nil
}

// eachEdge applies the max_edges cap to src.
func (q *QC) eachEdge(ctx context.Context, src EdgeSource, fn func(model.Edge) error) error {
	limit := q.Classifier.MaxEdges
	seen := 0
	err := src.Each(ctx, func(e model.Edge) error {
		if limit > 0 && seen >= limit {
			return errEdgeLimit
		}
		seen++
		return fn(e)
	})
	if errors.Is(err, errEdgeLimit) {
		return nil
	}
	return err
}

func (q *QC) collectCURIEs(ctx context.Context, src EdgeSource) ([]string, int, error) {
	set := make(map[string]struct{})
	edges := 0
	err := q.eachEdge(ctx, src, func(e model.Edge) error {
		edges++
		for _, c := range []string{e.Subject, e.Object} {
			if c != "" {
				set[c] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read edges: %w", err)
	}
	curies := make([]string, 0, len(set))
	for c := range set {
		curies = append(curies, c)
	}
	return curies, edges, nil
}

// pending is the per-edge state between text matching and resolution.
type pending struct {
	edge        model.Edge
	noSentences bool
	roles       [2]roleState
}

type roleState struct {
	role   model.Role
	entity model.CanonicalEntity
	match  model.RoleMatch
	// resolved is set when the role was decided before lookup
	resolved *model.RoleResolution
}

func (q *QC) classifyBatch(ctx context.Context, r *run, edges []model.Edge, sink Sink, summary *Summary) error {
	items := make([]pending, len(edges))
	var queries []ambiguity.Query
	for i, e := range edges {
		items[i] = q.match(r, e)
		if items[i].noSentences {
			continue
		}
		for _, rs := range items[i].roles {
			if rs.resolved == nil {
				queries = append(queries, ambiguity.Query{
					TypeFilter: r.resolver.TypeFilterFor(rs.entity),
					Surface:    rs.match.Surface,
				})
			}
		}
	}

	if err := r.resolver.Prefetch(ctx, queries); err != nil {
		return err
	}

	results := make([]model.ClassifiedEdge, len(items))
	workers := q.Classifier.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range items {
		i := i
		g.Go(func() error {
			rec, err := q.resolve(gctx, r, items[i])
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, rec := range results {
		if err := sink.Write(ctx, rec); err != nil {
			return fmt.Errorf("failed to emit edge %s: %w", rec.EdgeID, err)
		}
		summary.Add(rec)
	}
	return nil
}

// match runs the lookup-free part of the pipeline for one edge.
func (q *QC) match(r *run, e model.Edge) pending {
	p := pending{edge: e}
	segments := r.matcher.Segments(e)
	if len(segments) == 0 {
		p.noSentences = true
		return p
	}

	for i, role := range []model.Role{model.RoleSubject, model.RoleObject} {
		curie := e.Subject
		if role == model.RoleObject {
			curie = e.Object
		}
		p.roles[i] = q.matchRole(r, role, curie, segments)
	}
	return p
}

func (q *QC) matchRole(r *run, role model.Role, curie string, segments []string) roleState {
	rs := roleState{role: role}
	decided := func(status model.RoleStatus, reason string) roleState {
		rs.resolved = &model.RoleResolution{
			Role:        role,
			CURIE:       curie,
			CanonicalID: rs.entity.CanonicalID,
			Status:      status,
			Match:       rs.match,
			Reason:      reason,
		}
		return rs
	}

	entity, st := r.cache.Lookup(curie)
	if st != canonical.StatusKnown {
		return decided(model.StatusNormalizationFailed, fmt.Sprintf("%s could not be normalized", curie))
	}
	rs.entity = entity

	record, ok := r.index.Lookup(entity.CanonicalID)
	if !ok {
		return decided(model.StatusNoSynonyms, fmt.Sprintf("no synonyms available for %s", entity.CanonicalID))
	}

	rs.match = r.matcher.Match(segments, record)
	if !rs.match.Matched {
		return decided(model.StatusUnmatched, fmt.Sprintf("no synonym of %s found in sentences", entity.CanonicalID))
	}
	return rs
}

func (q *QC) resolve(ctx context.Context, r *run, p pending) (model.ClassifiedEdge, error) {
	e := p.edge
	subjectName, objectName := r.names[e.Subject], r.names[e.Object]
	if p.noSentences {
		s, o := classify.NoSentences(e)
		return classify.Assemble(e, s, o, subjectName, objectName), nil
	}

	var out [2]model.RoleResolution
	for i, rs := range p.roles {
		if rs.resolved != nil {
			out[i] = *rs.resolved
			continue
		}
		res, err := r.resolver.Resolve(ctx, rs.role, rs.entity, rs.match)
		if err != nil {
			return model.ClassifiedEdge{}, err
		}
		out[i] = res
	}
	return classify.Assemble(e, out[0], out[1], subjectName, objectName), nil
}
