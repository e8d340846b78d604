package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/edgeqc/internal/core/model"
)

const doxSentences = "The significant increase in CDKN1A and XRCC1 suggest a cell cycle arrest in response to doxorubicin-induced DNA breaks.|NA|XRCC1 foci were only detected in Doxorubicin-treated XRCC4-deficient cells."

func TestMatch_PreferredName(t *testing.T) {
	m := NewMatcher("|", "NA", ModeSubstring)
	segs := m.Segments(model.Edge{Sentences: doxSentences})
	require.Len(t, segs, 2)

	rec := model.NewSynonymRecord("CHEBI:28748", "Doxorubicin", []string{"Adriamycin", "DOX", "doxorubicin"})
	got := m.Match(segs, rec)

	assert.True(t, got.Matched)
	assert.Equal(t, "doxorubicin", got.Surface)
	assert.Equal(t, "doxorubicin", got.Span)
	assert.True(t, got.IsPreferredName)
	assert.Equal(t, 0, got.SentenceIndex)
}

func TestMatch_PreferredBeatsEarlierName(t *testing.T) {
	m := NewMatcher("|", "NA", ModeSubstring)
	segs := []string{"XRCC1 binds ligase III in repair foci."}
	rec := model.NewSynonymRecord("NCBIGene:7515", "XRCC1", []string{"repair", "XRCC1"})

	got := m.Match(segs, rec)
	assert.Equal(t, "XRCC1", got.Surface)
	assert.True(t, got.IsPreferredName)
}

func TestMatch_FirstOccurringInNamesOrder(t *testing.T) {
	m := NewMatcher("|", "NA", ModeSubstring)
	segs := []string{"Levels of follitropin and FSH rose."}
	rec := model.NewSynonymRecord("NCBIGene:2488", "FSHB", []string{"not present", "FSH", "follitropin"})

	got := m.Match(segs, rec)
	assert.True(t, got.Matched)
	assert.Equal(t, "FSH", got.Surface)
	assert.False(t, got.IsPreferredName)
}

func TestMatch_PreferredNotInNames(t *testing.T) {
	m := NewMatcher("|", "NA", ModeSubstring)
	rec := model.NewSynonymRecord("X:1", "Something Else", []string{"alpha"})

	got := m.Match([]string{"ALPHA subunit"}, rec)
	assert.Equal(t, "alpha", got.Surface)
	assert.Equal(t, "ALPHA", got.Span)
	assert.False(t, got.IsPreferredName)
}

func TestMatch_Unmatched(t *testing.T) {
	m := NewMatcher("|", "NA", ModeSubstring)

	assert.False(t, m.Match([]string{"anything"}, model.SynonymRecord{}).Matched)
	assert.False(t, m.Match([]string{"anything"}, model.NewSynonymRecord("X:1", "beta", []string{"beta"})).Matched)
	assert.False(t, m.Match(nil, model.NewSynonymRecord("X:1", "beta", []string{"beta"})).Matched)
	assert.False(t, m.Match([]string{"anything"}, model.SynonymRecord{Names: []string{"  "}}).Matched)
}

func TestSegments_PlaceholderOnly(t *testing.T) {
	m := NewMatcher("|", "NA", ModeSubstring)
	assert.Empty(t, m.Segments(model.Edge{Sentences: "NA|NA"}))
}

func TestMatch_WordMode(t *testing.T) {
	rec := model.NewSynonymRecord("NCBIGene:2488", "FSH", []string{"FSH"})
	segs := []string{"FSHR expression increased."}

	assert.True(t, NewMatcher("|", "NA", ModeSubstring).Match(segs, rec).Matched)
	assert.False(t, NewMatcher("|", "NA", ModeWord).Match(segs, rec).Matched)

	segs = []string{"FSHR and FSH-dependent signalling"}
	got := NewMatcher("|", "NA", ModeWord).Match(segs, rec)
	assert.True(t, got.Matched)
	assert.Equal(t, "FSH", got.Span)
}
