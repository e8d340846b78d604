package model

type Role string

const (
	RoleSubject Role = "subject"
	RoleObject  Role = "object"
)

// RoleStatus is the outcome of resolving one role of an edge. Every status
// other than Resolved and Ambiguous is a Bad-role outcome.
type RoleStatus string

const (
	StatusResolved            RoleStatus = "resolved"
	StatusAmbiguous           RoleStatus = "ambiguous"
	StatusNormalizationFailed RoleStatus = "normalization_failed"
	StatusNoSynonyms          RoleStatus = "no_synonyms"
	StatusUnmatched           RoleStatus = "unmatched"
	StatusLookupInconsistent  RoleStatus = "lookup_inconsistent"
	StatusMismatch            RoleStatus = "mismatch"
)

func (s RoleStatus) IsBad() bool {
	return s != StatusResolved && s != StatusAmbiguous
}

// RoleMatch is the text-match result for one role. Surface is the synonym as
// listed in the record; Span is the literal text it matched in the sentence.
type RoleMatch struct {
	Matched         bool   `json:"matched"`
	Surface         string `json:"surface,omitempty"`
	Span            string `json:"span,omitempty"`
	SentenceIndex   int    `json:"sentence_index,omitempty"`
	IsPreferredName bool   `json:"is_preferred_name_match"`
}

func Unmatched() RoleMatch {
	return RoleMatch{}
}

// LookupCandidate is one reverse-lookup hit after canonicalization.
type LookupCandidate struct {
	CURIE       string   `json:"curie"`
	CanonicalID string   `json:"canonical_id"`
	Label       string   `json:"label"`
	Score       float64  `json:"score"`
	Types       []string `json:"types,omitempty"`
}

type RoleResolution struct {
	Role        Role              `json:"role"`
	CURIE       string            `json:"curie"`
	CanonicalID string            `json:"canonical_id,omitempty"`
	Status      RoleStatus        `json:"status"`
	Match       RoleMatch         `json:"match"`
	Candidates  []string          `json:"candidates,omitempty"`
	LookupData  []LookupCandidate `json:"lookup_data,omitempty"`
	Reason      string            `json:"reason,omitempty"`
}

type Classification string

const (
	ClassificationGood      Classification = "good"
	ClassificationBad       Classification = "bad"
	ClassificationAmbiguous Classification = "ambiguous"
)

// Classifications lists every partition in output order.
var Classifications = []Classification{
	ClassificationGood,
	ClassificationBad,
	ClassificationAmbiguous,
}

func (c Classification) Valid() bool {
	switch c {
	case ClassificationGood, ClassificationBad, ClassificationAmbiguous:
		return true
	}
	return false
}

// FileStem is the partition file name without extension.
func (c Classification) FileStem() string {
	return string(c) + "_edges"
}

type Rationale struct {
	Subject RoleResolution `json:"subject"`
	Object  RoleResolution `json:"object"`
	Reason  string         `json:"reason"`
}

// Role returns the resolution for r.
func (r Rationale) Role(role Role) RoleResolution {
	if role == RoleObject {
		return r.Object
	}
	return r.Subject
}
