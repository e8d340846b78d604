package server

import (
	"fmt"
	"sort"
	"sync"

	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/jsonl"
	"github.com/agenthands/edgeqc/internal/logger"
)

// Reviewer holds the classified partitions of an output directory and a
// cursor per partition for step-through review.
type Reviewer struct {
	OutputDir string
	Log       *logger.Logger

	mu      sync.RWMutex
	edges   map[model.Classification][]model.ClassifiedEdge
	current map[model.Classification]int
}

func NewReviewer(outputDir string, log *logger.Logger) (*Reviewer, error) {
	if log == nil {
		log = logger.Nop()
	}
	r := &Reviewer{
		OutputDir: outputDir,
		Log:       log,
		edges:     make(map[model.Classification][]model.ClassifiedEdge),
		current:   make(map[model.Classification]int),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads every partition file and resets the cursors.
func (r *Reviewer) Reload() error {
	loaded := make(map[model.Classification][]model.ClassifiedEdge, len(model.Classifications))
	for _, c := range model.Classifications {
		edges, err := jsonl.ReadPartition(r.OutputDir, c)
		if err != nil {
			return fmt.Errorf("failed to load %s edges: %w", c, err)
		}
		loaded[c] = edges
	}

	r.mu.Lock()
	r.edges = loaded
	r.current = make(map[model.Classification]int)
	r.mu.Unlock()

	r.Log.Info("loaded classified edges",
		"good", len(loaded[model.ClassificationGood]),
		"bad", len(loaded[model.ClassificationBad]),
		"ambiguous", len(loaded[model.ClassificationAmbiguous]),
	)
	return nil
}

func (r *Reviewer) Summary() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(model.Classifications)+1)
	total := 0
	for _, c := range model.Classifications {
		out[string(c)] = len(r.edges[c])
		total += len(r.edges[c])
	}
	out["total"] = total
	return out
}

func (r *Reviewer) Count(c model.Classification) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.edges[c])
}

func (r *Reviewer) Edge(c model.Classification, index int) (model.ClassifiedEdge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.edgeLocked(c, index)
}

func (r *Reviewer) edgeLocked(c model.Classification, index int) (model.ClassifiedEdge, bool) {
	list := r.edges[c]
	if index < 0 || index >= len(list) {
		return model.ClassifiedEdge{}, false
	}
	return list[index], true
}

// Current returns the cursor position and the edge under it.
func (r *Reviewer) Current(c model.Classification) (int, model.ClassifiedEdge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.current[c]
	e, ok := r.edgeLocked(c, idx)
	return idx, e, ok
}

// Goto clamps index into the partition's range.
func (r *Reviewer) Goto(c model.Classification, index int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	last := len(r.edges[c]) - 1
	if index > last {
		index = last
	}
	if index < 0 {
		index = 0
	}
	r.current[c] = index
	return index
}

// Next advances the cursor; it reports false at the last edge.
func (r *Reviewer) Next(c model.Classification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current[c] < len(r.edges[c])-1 {
		r.current[c]++
		return true
	}
	return false
}

// Prev moves the cursor back; it reports false at the first edge.
func (r *Reviewer) Prev(c model.Classification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current[c] > 0 {
		r.current[c]--
		return true
	}
	return false
}

// LookupData returns the stored reverse-lookup hits for one role of an edge,
// one per CURIE, highest score first.
func (r *Reviewer) LookupData(c model.Classification, index int, role model.Role) ([]model.LookupCandidate, bool) {
	e, ok := r.Edge(c, index)
	if !ok {
		return nil, false
	}
	seen := make(map[string]struct{})
	var out []model.LookupCandidate
	for _, lc := range e.Rationale.Role(role).LookupData {
		if _, dup := seen[lc.CURIE]; dup {
			continue
		}
		seen[lc.CURIE] = struct{}{}
		out = append(out, lc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, true
}
