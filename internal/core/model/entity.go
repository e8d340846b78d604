package model

// CanonicalEntity is the normalization result for one source CURIE. It depends
// only on the CURIE, so it is computed once per run and shared by every edge
// that mentions the CURIE.
type CanonicalEntity struct {
	OriginalID            string   `json:"original_id"`
	CanonicalID           string   `json:"canonical_id"`
	Label                 string   `json:"label,omitempty"`
	Types                 []string `json:"types,omitempty"`
	InformationContent    float64  `json:"information_content,omitempty"`
	EquivalentIdentifiers []string `json:"equivalent_identifiers,omitempty"`
}

// MostSpecificType is the first entry of Types, or "" when none is known.
func (c CanonicalEntity) MostSpecificType() string {
	if len(c.Types) == 0 {
		return ""
	}
	return c.Types[0]
}

// SynonymRecord holds the lexical names for a canonical CURIE. PreferredName
// is not guaranteed to appear in Names.
type SynonymRecord struct {
	CanonicalID   string   `json:"canonical_id"`
	PreferredName string   `json:"preferred_name"`
	Names         []string `json:"names"`
}

// NewSynonymRecord drops empty names and case-sensitive duplicates, keeping
// first-seen order.
func NewSynonymRecord(canonicalID, preferredName string, names []string) SynonymRecord {
	seen := make(map[string]struct{}, len(names))
	deduped := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		deduped = append(deduped, n)
	}
	return SynonymRecord{
		CanonicalID:   canonicalID,
		PreferredName: preferredName,
		Names:         deduped,
	}
}
