package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/edgeqc/internal/logger"
)

type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
	Log    *logger.Logger
}

func NewMemgraphDriver(ctx context.Context, uri, username, password string, log *logger.Logger) (*MemgraphDriver, error) {
	if log == nil {
		log = logger.Nop()
	}
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create memgraph driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to memgraph at %s: %w", uri, err)
	}

	log.Info("connected to memgraph", "uri", uri)
	return &MemgraphDriver{Driver: driver, Log: log}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// indexQueries are safe to re-run; Memgraph rejects duplicates with an error
// that BuildIndices only logs.
var indexQueries = []string{
	"CREATE INDEX ON :Entity;",
	"CREATE INDEX ON :Entity(id);",
	"CREATE INDEX ON :Entity(canonical_id);",
	"CREATE EDGE INDEX ON :ASSERTS(edge_id);",
	"CREATE EDGE INDEX ON :ASSERTS(classification);",
}

func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	return buildIndices(ctx, d, d.Log)
}

func buildIndices(ctx context.Context, d GraphDriver, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	for _, q := range indexQueries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// the index most likely exists already
			log.Warn("failed to create index", "query", q, "error", err)
		}
	}
	return nil
}
