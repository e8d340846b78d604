package resolution

import (
	"context"
	"errors"
	"fmt"
)

// NormalizeOptions are the node-normalizer flags. Phase 1 always conflates
// and never asks for descriptions; see DefaultNormalizeOptions.
type NormalizeOptions struct {
	Conflate             bool `json:"conflate"`
	Description          bool `json:"description"`
	DrugChemicalConflate bool `json:"drug_chemical_conflate"`
	IndividualTypes      bool `json:"individual_types"`
}

var DefaultNormalizeOptions = NormalizeOptions{
	Conflate:             true,
	Description:          false,
	DrugChemicalConflate: true,
}

type Identifier struct {
	Identifier string `json:"identifier"`
	Label      string `json:"label,omitempty"`
}

type NormalizedNode struct {
	ID                    Identifier   `json:"id"`
	EquivalentIdentifiers []Identifier `json:"equivalent_identifiers"`
	Types                 []string     `json:"type"`
	InformationContent    float64      `json:"information_content"`
}

type SynonymEntry struct {
	CURIE         string   `json:"curie"`
	PreferredName string   `json:"preferred_name"`
	Names         []string `json:"names"`
	Types         []string `json:"types"`
}

type LookupResult struct {
	CURIE    string   `json:"curie"`
	Label    string   `json:"label"`
	Synonyms []string `json:"synonyms"`
	Types    []string `json:"types"`
	Taxa     []string `json:"taxa"`
	Score    float64  `json:"score"`
}

// Service is the normalization / synonym / reverse-lookup capability the
// pipeline depends on. A CURIE missing from a successful Normalize or
// Synonyms response is an outcome, not an error; any returned error is a
// service failure.
type Service interface {
	Normalize(ctx context.Context, curies []string, opts NormalizeOptions) (map[string]NormalizedNode, error)
	Synonyms(ctx context.Context, curies []string) (map[string]SynonymEntry, error)
	Lookup(ctx context.Context, text, typeFilter string) ([]LookupResult, error)
	BulkLookup(ctx context.Context, texts []string, typeFilter string) (map[string][]LookupResult, error)
}

// ErrService matches every *ServiceError via errors.Is.
var ErrService = errors.New("resolution service failure")

type ServiceError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Op)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == ErrService }
