package synonyms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/edgeqc/internal/core/canonical"
	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/resolution"
)

func seededCache() *canonical.Cache {
	cache := canonical.NewCache()
	cache.Put(model.CanonicalEntity{OriginalID: "CHEBI:28748", CanonicalID: "CHEBI:28748"})
	cache.Put(model.CanonicalEntity{OriginalID: "UniProtKB:P18887", CanonicalID: "NCBIGene:7515"})
	cache.Put(model.CanonicalEntity{OriginalID: "HGNC:12828", CanonicalID: "NCBIGene:7515"})
	cache.Put(model.CanonicalEntity{OriginalID: "MONDO:1", CanonicalID: "MONDO:1"})
	cache.MarkFailed("FAKE:1")
	return cache
}

func TestBuild(t *testing.T) {
	svc := &resolution.MockService{
		SynonymData: map[string]resolution.SynonymEntry{
			"CHEBI:28748":   {CURIE: "CHEBI:28748", PreferredName: "Doxorubicin", Names: []string{"doxorubicin", "Adriamycin", "doxorubicin"}},
			"NCBIGene:7515": {CURIE: "NCBIGene:7515", PreferredName: "XRCC1", Names: []string{}},
		},
	}
	b := NewBuilder(svc, 2, 2, nil)

	idx, err := b.Build(context.Background(), seededCache())
	require.NoError(t, err)

	// three distinct canonical ids in batches of two
	require.Len(t, svc.SynonymsCalls, 2)
	for _, call := range svc.SynonymsCalls {
		assert.NotContains(t, call, "FAKE:1")
	}

	rec, ok := idx.Lookup("CHEBI:28748")
	require.True(t, ok)
	assert.Equal(t, []string{"doxorubicin", "Adriamycin"}, rec.Names)
	assert.Equal(t, "Doxorubicin", rec.PreferredName)

	rec, ok = idx.Lookup("NCBIGene:7515")
	require.True(t, ok)
	assert.Empty(t, rec.Names)

	_, ok = idx.Lookup("MONDO:1")
	assert.False(t, ok)
	assert.Equal(t, 2, idx.Len())
}

func TestBuild_EmptyCacheMakesNoCalls(t *testing.T) {
	svc := &resolution.MockService{}
	idx, err := NewBuilder(svc, 0, 0, nil).Build(context.Background(), canonical.NewCache())
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
	assert.Zero(t, svc.Calls())
}

func TestBuild_ServiceFailurePropagates(t *testing.T) {
	svc := &resolution.MockService{SynonymsErr: &resolution.ServiceError{Op: "synonyms", StatusCode: 500}}
	_, err := NewBuilder(svc, 1, 2, nil).Build(context.Background(), seededCache())
	require.Error(t, err)
	assert.True(t, errors.Is(err, resolution.ErrService))
}
