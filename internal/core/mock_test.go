package core

import (
	"context"
	"sync"

	"github.com/agenthands/edgeqc/internal/core/model"
)

type MockSink struct {
	mu      sync.Mutex
	Records []model.ClassifiedEdge
	Err     error
}

func (m *MockSink) Write(ctx context.Context, rec model.ClassifiedEdge) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, rec)
	return nil
}

func (m *MockSink) byClassification(c model.Classification) []model.ClassifiedEdge {
	var out []model.ClassifiedEdge
	for _, r := range m.Records {
		if r.Classification == c {
			out = append(out, r)
		}
	}
	return out
}

// countingSource counts how many times the edges were scanned.
type countingSource struct {
	edges []model.Edge
	scans int
}

func (s *countingSource) Each(ctx context.Context, fn func(model.Edge) error) error {
	s.scans++
	for _, e := range s.edges {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}
