package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/logger"
)

// GraphSink mirrors classified edges into the graph as
// (:Entity)-[:ASSERTS]->(:Entity) so reviewers can query outcomes with
// Cypher. Re-running a classification updates edges in place by edge_id.
type GraphSink struct {
	Driver GraphDriver
	Log    *logger.Logger
	now    func() time.Time
}

func NewGraphSink(d GraphDriver, log *logger.Logger) *GraphSink {
	if log == nil {
		log = logger.Nop()
	}
	return &GraphSink{Driver: d, Log: log, now: time.Now}
}

func (s *GraphSink) Write(ctx context.Context, rec model.ClassifiedEdge) error {
	params := assertionParams(rec, s.now().UTC())
	if _, err := s.Driver.ExecuteQuery(ctx, SaveAssertionQuery, params); err != nil {
		return fmt.Errorf("failed to save assertion %s: %w", rec.EdgeID, err)
	}
	return nil
}

// Close leaves the driver open; its owner closes it.
func (s *GraphSink) Close(ctx context.Context) error {
	return nil
}

// Counts returns the number of stored assertions per classification for the
// current phase.
func (s *GraphSink) Counts(ctx context.Context) (map[model.Classification]int, error) {
	res, err := s.Driver.ExecuteQuery(ctx, CountAssertionsByClassificationQuery, map[string]interface{}{
		"phase": model.Phase,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count assertions: %w", err)
	}

	counts := make(map[model.Classification]int)
	for _, record := range res.Records {
		c, _ := record.Get("classification")
		n, _ := record.Get("total")
		name, ok := c.(string)
		if !ok {
			continue
		}
		if total, ok := n.(int64); ok {
			counts[model.Classification(name)] = int(total)
		}
	}
	return counts, nil
}

func assertionParams(rec model.ClassifiedEdge, now time.Time) map[string]interface{} {
	subj, obj := rec.Rationale.Subject, rec.Rationale.Object
	return map[string]interface{}{
		"edge_id":              rec.EdgeID,
		"subject_id":           rec.Edge.Subject,
		"subject_name":         rec.SubjectName,
		"subject_canonical_id": subj.CanonicalID,
		"object_id":            rec.Edge.Object,
		"object_name":          rec.ObjectName,
		"object_canonical_id":  obj.CanonicalID,
		"predicate":            rec.Edge.Predicate,
		"classification":       string(rec.Classification),
		"phase":                rec.Phase,
		"subject_status":       string(subj.Status),
		"object_status":        string(obj.Status),
		"subject_surface":      subj.Match.Surface,
		"object_surface":       obj.Match.Surface,
		"subject_candidates":   nonNil(subj.Candidates),
		"object_candidates":    nonNil(obj.Candidates),
		"reason":               rec.Rationale.Reason,
		"publications":         nonNil(rec.Edge.Publications),
		"classified_at":        now,
	}
}

// nonNil keeps list properties as empty lists instead of nulls.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
