package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	ConfidenceScoreKey = "biolink:tmkp_confidence_score"
	ProvenanceIDsKey   = "tmkp_ids"
)

// Edge is a text-mined KG edge. Raw keeps every field of the source record so
// the emitted record carries the original edge untouched.
type Edge struct {
	Subject         string
	Object          string
	Predicate       string
	Qualifiers      map[string]interface{}
	Sentences       string
	Publications    []string
	ConfidenceScore float64
	ProvenanceIDs   []string
	Raw             map[string]interface{}
}

func (e *Edge) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	raw := make(map[string]interface{})
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode edge: %w", err)
	}

	*e = Edge{Raw: raw}
	e.Subject = stringField(raw, "subject")
	e.Object = stringField(raw, "object")
	e.Predicate = stringField(raw, "predicate")
	e.Sentences = stringField(raw, "sentences")
	e.Publications = stringsField(raw, "publications")
	e.ProvenanceIDs = stringsField(raw, ProvenanceIDsKey)

	if n, ok := raw[ConfidenceScoreKey].(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			e.ConfidenceScore = f
		}
	}

	for k, v := range raw {
		if k == "qualified_predicate" || strings.HasSuffix(k, "_qualifier") {
			if e.Qualifiers == nil {
				e.Qualifiers = make(map[string]interface{})
			}
			e.Qualifiers[k] = v
		}
	}
	return nil
}

func (e Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Fields())
}

// Fields returns a copy of the edge as a flat field map. Edges built in code
// (no Raw) are rendered from the typed fields.
func (e Edge) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(e.Raw)+8)
	for k, v := range e.Raw {
		out[k] = v
	}
	if e.Raw != nil {
		return out
	}

	out["subject"] = e.Subject
	out["object"] = e.Object
	if e.Predicate != "" {
		out["predicate"] = e.Predicate
	}
	if e.Sentences != "" {
		out["sentences"] = e.Sentences
	}
	if len(e.Publications) > 0 {
		out["publications"] = e.Publications
	}
	if e.ConfidenceScore != 0 {
		out[ConfidenceScoreKey] = e.ConfidenceScore
	}
	if len(e.ProvenanceIDs) > 0 {
		out[ProvenanceIDsKey] = e.ProvenanceIDs
	}
	for k, v := range e.Qualifiers {
		out[k] = v
	}
	return out
}

// SentenceSegments splits Sentences on the delimiter and drops placeholder
// and blank segments. Segment order is preserved.
func (e Edge) SentenceSegments(delimiter, placeholder string) []string {
	if strings.TrimSpace(e.Sentences) == "" {
		return nil
	}
	parts := strings.Split(e.Sentences, delimiter)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == placeholder {
			continue
		}
		segments = append(segments, p)
	}
	return segments
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

func stringsField(raw map[string]interface{}, key string) []string {
	switch v := raw[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
