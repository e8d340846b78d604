package resolution

import (
	"context"
	"sync"
)

// MockService is an in-memory Service for tests. Lookup data is keyed by the
// query text; LookupByType overrides it for a given type filter.
type MockService struct {
	Nodes        map[string]NormalizedNode
	SynonymData  map[string]SynonymEntry
	LookupData   map[string][]LookupResult
	LookupByType map[string]map[string][]LookupResult

	NormalizeErr error
	SynonymsErr  error
	LookupErr    error

	mu             sync.Mutex
	NormalizeCalls [][]string
	NormalizeOpts  []NormalizeOptions
	SynonymsCalls  [][]string
	LookupCalls    []string
	BulkCalls      [][]string
	TypeFilters    []string
}

func (m *MockService) Normalize(ctx context.Context, curies []string, opts NormalizeOptions) (map[string]NormalizedNode, error) {
	m.mu.Lock()
	m.NormalizeCalls = append(m.NormalizeCalls, append([]string(nil), curies...))
	m.NormalizeOpts = append(m.NormalizeOpts, opts)
	m.mu.Unlock()

	if m.NormalizeErr != nil {
		return nil, m.NormalizeErr
	}
	out := make(map[string]NormalizedNode)
	for _, c := range curies {
		if n, ok := m.Nodes[c]; ok {
			out[c] = n
		}
	}
	return out, nil
}

func (m *MockService) Synonyms(ctx context.Context, curies []string) (map[string]SynonymEntry, error) {
	m.mu.Lock()
	m.SynonymsCalls = append(m.SynonymsCalls, append([]string(nil), curies...))
	m.mu.Unlock()

	if m.SynonymsErr != nil {
		return nil, m.SynonymsErr
	}
	out := make(map[string]SynonymEntry)
	for _, c := range curies {
		if s, ok := m.SynonymData[c]; ok {
			out[c] = s
		}
	}
	return out, nil
}

func (m *MockService) Lookup(ctx context.Context, text, typeFilter string) ([]LookupResult, error) {
	m.mu.Lock()
	m.LookupCalls = append(m.LookupCalls, text)
	m.TypeFilters = append(m.TypeFilters, typeFilter)
	m.mu.Unlock()

	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	return m.lookup(text, typeFilter), nil
}

func (m *MockService) BulkLookup(ctx context.Context, texts []string, typeFilter string) (map[string][]LookupResult, error) {
	m.mu.Lock()
	m.BulkCalls = append(m.BulkCalls, append([]string(nil), texts...))
	m.TypeFilters = append(m.TypeFilters, typeFilter)
	m.mu.Unlock()

	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	out := make(map[string][]LookupResult, len(texts))
	for _, t := range texts {
		out[t] = m.lookup(t, typeFilter)
	}
	return out, nil
}

func (m *MockService) lookup(text, typeFilter string) []LookupResult {
	if byType, ok := m.LookupByType[typeFilter]; ok {
		if res, ok := byType[text]; ok {
			return res
		}
	}
	return m.LookupData[text]
}

// Calls returns the total number of service calls made so far.
func (m *MockService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.NormalizeCalls) + len(m.SynonymsCalls) + len(m.LookupCalls) + len(m.BulkCalls)
}

// Node is a shorthand for building a NormalizedNode in tests.
func Node(id, label string, types ...string) NormalizedNode {
	return NormalizedNode{
		ID:                    Identifier{Identifier: id, Label: label},
		EquivalentIdentifiers: []Identifier{{Identifier: id, Label: label}},
		Types:                 types,
	}
}
