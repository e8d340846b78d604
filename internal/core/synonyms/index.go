package synonyms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/edgeqc/internal/core/canonical"
	"github.com/agenthands/edgeqc/internal/core/common"
	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/logger"
	"github.com/agenthands/edgeqc/internal/resolution"
)

const DefaultBatchSize = 500

// Index holds the synonym record of every canonical id the name resolver
// answered for. It is read-only once built.
type Index struct {
	records map[string]model.SynonymRecord
}

func NewIndex(records ...model.SynonymRecord) *Index {
	idx := &Index{records: make(map[string]model.SynonymRecord, len(records))}
	for _, r := range records {
		idx.records[r.CanonicalID] = r
	}
	return idx
}

// Lookup reports false when no synonyms are available for canonicalID. A
// record with no names is still returned.
func (i *Index) Lookup(canonicalID string) (model.SynonymRecord, bool) {
	r, ok := i.records[canonicalID]
	return r, ok
}

func (i *Index) Len() int {
	return len(i.records)
}

type Builder struct {
	Service     resolution.Service
	BatchSize   int
	Concurrency int
	Log         *logger.Logger
}

func NewBuilder(svc resolution.Service, batchSize, concurrency int, log *logger.Logger) *Builder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{Service: svc, BatchSize: batchSize, Concurrency: concurrency, Log: log}
}

// Build fetches synonyms for every canonical id in the cache. Normalization
// failures never reach the name resolver.
func (b *Builder) Build(ctx context.Context, cache *canonical.Cache) (*Index, error) {
	ids := cache.CanonicalIDs()
	idx := NewIndex()
	if len(ids) == 0 {
		return idx, nil
	}

	batches := common.Chunk(ids, b.BatchSize)
	start := time.Now()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Concurrency)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			entries, err := b.Service.Synonyms(gctx, batch)
			if err != nil {
				return fmt.Errorf("synonyms batch %d/%d: %w", i+1, len(batches), err)
			}
			mu.Lock()
			for _, id := range batch {
				entry, ok := entries[id]
				if !ok {
					continue
				}
				idx.records[id] = model.NewSynonymRecord(id, entry.PreferredName, entry.Names)
			}
			mu.Unlock()
			b.Log.Debug("fetched synonyms batch", "batch", i+1, "size", len(batch), "found", len(entries))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.Log.Debug("synonym index built", "canonical_ids", len(ids), "records", idx.Len(), "elapsed", time.Since(start))
	return idx, nil
}
