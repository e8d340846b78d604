package canonical

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/edgeqc/internal/core/common"
	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/logger"
	"github.com/agenthands/edgeqc/internal/resolution"
)

const DefaultBatchSize = 10000

type Canonicalizer struct {
	Service     resolution.Service
	BatchSize   int
	Concurrency int
	Log         *logger.Logger
}

func NewCanonicalizer(svc resolution.Service, batchSize, concurrency int, log *logger.Logger) *Canonicalizer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Canonicalizer{
		Service:     svc,
		BatchSize:   batchSize,
		Concurrency: concurrency,
		Log:         log,
	}
}

// Canonicalize normalizes every distinct CURIE into a fresh cache.
func (c *Canonicalizer) Canonicalize(ctx context.Context, curies []string) (*Cache, error) {
	cache := NewCache()
	if err := c.Ensure(ctx, cache, curies); err != nil {
		return nil, err
	}
	return cache, nil
}

// Ensure normalizes the CURIEs the cache does not know yet. A failed batch
// cancels the others and its error is returned; the cache keeps whatever
// earlier batches merged.
func (c *Canonicalizer) Ensure(ctx context.Context, cache *Cache, curies []string) error {
	pending := cache.Missing(common.UniqueSorted(curies))
	if len(pending) == 0 {
		return nil
	}

	batches := common.Chunk(pending, c.BatchSize)
	start := time.Now()
	c.Log.Debug("normalizing curies", "curies", len(pending), "batches", len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			nodes, err := c.Service.Normalize(gctx, batch, resolution.DefaultNormalizeOptions)
			if err != nil {
				return fmt.Errorf("normalize batch %d/%d: %w", i+1, len(batches), err)
			}
			found := make(map[string]model.CanonicalEntity, len(nodes))
			for curie, node := range nodes {
				found[curie] = toEntity(curie, node)
			}
			cache.merge(batch, found)
			c.Log.Debug("normalized batch", "batch", i+1, "size", len(batch), "found", len(found))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.Log.Debug("normalization complete", "curies", len(pending), "elapsed", time.Since(start))
	return nil
}

func toEntity(curie string, node resolution.NormalizedNode) model.CanonicalEntity {
	equiv := make([]string, 0, len(node.EquivalentIdentifiers))
	for _, id := range node.EquivalentIdentifiers {
		if id.Identifier != "" {
			equiv = append(equiv, id.Identifier)
		}
	}
	return model.CanonicalEntity{
		OriginalID:            curie,
		CanonicalID:           node.ID.Identifier,
		Label:                 node.ID.Label,
		Types:                 node.Types,
		InformationContent:    node.InformationContent,
		EquivalentIdentifiers: equiv,
	}
}
