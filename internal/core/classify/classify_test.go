package classify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/edgeqc/internal/core/model"
)

func role(r model.Role, s model.RoleStatus) model.RoleResolution {
	return model.RoleResolution{Role: r, Status: s}
}

func TestCombine_Table(t *testing.T) {
	statuses := []model.RoleStatus{
		model.StatusResolved,
		model.StatusAmbiguous,
		model.StatusNormalizationFailed,
		model.StatusNoSynonyms,
		model.StatusUnmatched,
		model.StatusLookupInconsistent,
		model.StatusMismatch,
	}

	for _, s := range statuses {
		for _, o := range statuses {
			got, reason := Combine(role(model.RoleSubject, s), role(model.RoleObject, o))
			assert.NotEmpty(t, reason)

			var want model.Classification
			switch {
			case s.IsBad() || o.IsBad():
				want = model.ClassificationBad
			case s == model.StatusResolved && o == model.StatusResolved:
				want = model.ClassificationGood
			default:
				want = model.ClassificationAmbiguous
			}
			assert.Equal(t, want, got, "%s/%s", s, o)
		}
	}
}

func TestCombine_ReasonNamesRole(t *testing.T) {
	obj := model.RoleResolution{Role: model.RoleObject, Status: model.StatusAmbiguous, Reason: `"EHF" maps to 2 candidates`}
	_, reason := Combine(role(model.RoleSubject, model.StatusResolved), obj)
	assert.Equal(t, `object ambiguous: "EHF" maps to 2 candidates`, reason)
}

func TestNoSentences(t *testing.T) {
	e := model.Edge{Subject: "A:1", Object: "B:2", Sentences: "NA|NA"}
	s, o := NoSentences(e)
	rec := Assemble(e, s, o, "", "")

	assert.Equal(t, model.ClassificationBad, rec.Classification)
	assert.Equal(t, "A:1", rec.SubjectName)
	assert.Equal(t, "B:2", rec.ObjectName)
	assert.False(t, rec.Rationale.Subject.Match.Matched)
	assert.False(t, rec.Rationale.Object.Match.Matched)
}

func TestEdgeID_Stable(t *testing.T) {
	src := `{"subject":"CHEBI:28748","predicate":"biolink:affects","object":"UniProtKB:P18887","sentences":"x|NA","score":0.5}`
	var a, b model.Edge
	require.NoError(t, json.Unmarshal([]byte(src), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"score":0.5,"sentences":"x|NA","object":"UniProtKB:P18887","predicate":"biolink:affects","subject":"CHEBI:28748"}`), &b))

	id := EdgeID(a)
	assert.Equal(t, id, EdgeID(a))
	assert.Equal(t, id, EdgeID(b), "field order must not matter")

	rec := Assemble(a, role(model.RoleSubject, model.StatusResolved), role(model.RoleObject, model.StatusResolved), "doxorubicin", "XRCC1")
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var emitted model.Edge
	require.NoError(t, json.Unmarshal(data, &emitted))
	assert.Equal(t, id, EdgeID(emitted), "output fields must not change the id")

	var c model.Edge
	require.NoError(t, json.Unmarshal([]byte(`{"subject":"CHEBI:28748","predicate":"biolink:affects","object":"UniProtKB:P18888","sentences":"x|NA","score":0.5}`), &c))
	assert.NotEqual(t, id, EdgeID(c))
}

func TestAssemble(t *testing.T) {
	e := model.Edge{Subject: "CHEBI:28748", Object: "UniProtKB:P18887", Predicate: "biolink:affects"}
	rec := Assemble(e, role(model.RoleSubject, model.StatusResolved), role(model.RoleObject, model.StatusResolved), "doxorubicin", "XRCC1")

	assert.Equal(t, model.ClassificationGood, rec.Classification)
	assert.Equal(t, model.Phase, rec.Phase)
	assert.NotEmpty(t, rec.EdgeID)
	assert.Equal(t, "doxorubicin", rec.SubjectName)
}
