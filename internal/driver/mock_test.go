package driver

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type MockDriver struct {
	mu            sync.Mutex
	QueryExecuted string
	QueryParams   map[string]interface{}
	Queries       []string
	MockResult    neo4j.EagerResult
	Err           error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryExecuted = query
	m.QueryParams = params
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return buildIndices(ctx, m, nil)
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}
