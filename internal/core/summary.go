package core

import (
	"time"

	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/logger"
)

type Timings struct {
	Canonicalize time.Duration `json:"canonicalize"`
	Synonyms     time.Duration `json:"synonyms"`
	Classify     time.Duration `json:"classify"`
	Total        time.Duration `json:"total"`
}

// Summary counts the outcome of a run.
type Summary struct {
	Total               int                                     `json:"total"`
	ByClassification    map[model.Classification]int            `json:"by_classification"`
	ByStatus            map[model.Role]map[model.RoleStatus]int `json:"by_status"`
	CURIEs              int                                     `json:"curies"`
	NormalizationFailed int                                     `json:"normalization_failed"`
	SynonymRecords      int                                     `json:"synonym_records"`
	Timings             Timings                                 `json:"timings"`
}

func NewSummary() *Summary {
	return &Summary{
		ByClassification: make(map[model.Classification]int),
		ByStatus: map[model.Role]map[model.RoleStatus]int{
			model.RoleSubject: {},
			model.RoleObject:  {},
		},
	}
}

func (s *Summary) Add(rec model.ClassifiedEdge) {
	s.Total++
	s.ByClassification[rec.Classification]++
	s.ByStatus[model.RoleSubject][rec.Rationale.Subject.Status]++
	s.ByStatus[model.RoleObject][rec.Rationale.Object.Status]++
}

func (s *Summary) EdgesPerSecond() float64 {
	if s.Timings.Classify <= 0 {
		return 0
	}
	return float64(s.Total) / s.Timings.Classify.Seconds()
}

func (s *Summary) Log(log *logger.Logger) {
	log.Info("classification complete",
		"total", s.Total,
		"good", s.ByClassification[model.ClassificationGood],
		"bad", s.ByClassification[model.ClassificationBad],
		"ambiguous", s.ByClassification[model.ClassificationAmbiguous],
		"edges_per_second", s.EdgesPerSecond(),
		"elapsed", s.Timings.Total,
	)
	for _, role := range []model.Role{model.RoleSubject, model.RoleObject} {
		log.Info("role outcomes", "role", role, "statuses", s.ByStatus[role])
	}
}
