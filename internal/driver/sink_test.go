package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/logger"
)

func classified() model.ClassifiedEdge {
	return model.ClassifiedEdge{
		Edge:           model.Edge{Subject: "CHEBI:28748", Object: "MONDO:0005737", Predicate: "biolink:treats", Publications: []string{"PMID:1"}},
		EdgeID:         "3f1c",
		Classification: model.ClassificationAmbiguous,
		Phase:          model.Phase,
		SubjectName:    "doxorubicin",
		ObjectName:     "Ebola hemorrhagic fever",
		Rationale: model.Rationale{
			Subject: model.RoleResolution{Role: model.RoleSubject, CanonicalID: "CHEBI:28748", Status: model.StatusResolved, Match: model.RoleMatch{Matched: true, Surface: "doxorubicin"}},
			Object: model.RoleResolution{
				Role:        model.RoleObject,
				CanonicalID: "MONDO:0005737",
				Status:      model.StatusAmbiguous,
				Match:       model.RoleMatch{Matched: true, Surface: "EHF"},
				Candidates:  []string{"MONDO:0005737", "NCBIGene:26298"},
			},
			Reason: "object ambiguous",
		},
	}
}

func TestGraphSink_Write(t *testing.T) {
	mock := &MockDriver{}
	sink := NewGraphSink(mock, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sink.now = func() time.Time { return fixed }

	require.NoError(t, sink.Write(context.Background(), classified()))

	assert.Equal(t, SaveAssertionQuery, mock.QueryExecuted)
	p := mock.QueryParams
	assert.Equal(t, "3f1c", p["edge_id"])
	assert.Equal(t, "CHEBI:28748", p["subject_id"])
	assert.Equal(t, "ambiguous", p["classification"])
	assert.Equal(t, model.Phase, p["phase"])
	assert.Equal(t, "EHF", p["object_surface"])
	assert.Equal(t, []string{"MONDO:0005737", "NCBIGene:26298"}, p["object_candidates"])
	assert.Equal(t, []string{}, p["subject_candidates"])
	assert.Equal(t, fixed, p["classified_at"])
	assert.NoError(t, sink.Close(context.Background()))
}

func TestGraphSink_WriteError(t *testing.T) {
	mock := &MockDriver{Err: errors.New("connection refused")}
	err := NewGraphSink(mock, nil).Write(context.Background(), classified())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3f1c")
}

func TestGraphSink_Counts(t *testing.T) {
	mock := &MockDriver{MockResult: neo4j.EagerResult{
		Keys: []string{"classification", "total"},
		Records: []*neo4j.Record{
			{Keys: []string{"classification", "total"}, Values: []any{"good", int64(12)}},
			{Keys: []string{"classification", "total"}, Values: []any{"ambiguous", int64(3)}},
		},
	}}

	counts, err := NewGraphSink(mock, nil).Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[model.Classification]int{model.ClassificationGood: 12, model.ClassificationAmbiguous: 3}, counts)
	assert.Equal(t, model.Phase, mock.QueryParams["phase"])
}

func TestBuildIndices_ToleratesExistingIndexes(t *testing.T) {
	mock := &MockDriver{Err: errors.New("index already exists")}
	require.NoError(t, buildIndices(context.Background(), mock, logger.Nop()))
	assert.Len(t, mock.Queries, len(indexQueries))
}
