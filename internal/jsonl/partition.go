package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/agenthands/edgeqc/internal/core/model"
)

const Ext = ".jsonl"

// PartitionPath is the file holding one classification's edges in dir.
func PartitionPath(dir string, c model.Classification) string {
	return filepath.Join(dir, c.FileStem()+Ext)
}

// PartitionWriter writes each classified edge to the JSONL file of its
// classification. The three files are created up front, so an empty
// partition still exists after a run.
type PartitionWriter struct {
	Dir string

	mu      sync.Mutex
	files   map[model.Classification]*os.File
	writers map[model.Classification]*bufio.Writer
	counts  map[model.Classification]int
}

func NewPartitionWriter(dir string) (*PartitionWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir '%s': %w", dir, err)
	}
	w := &PartitionWriter{
		Dir:     dir,
		files:   make(map[model.Classification]*os.File),
		writers: make(map[model.Classification]*bufio.Writer),
		counts:  make(map[model.Classification]int),
	}
	for _, c := range model.Classifications {
		f, err := os.Create(PartitionPath(dir, c))
		if err != nil {
			_ = w.Close(context.Background())
			return nil, fmt.Errorf("failed to create partition file: %w", err)
		}
		w.files[c] = f
		w.writers[c] = bufio.NewWriter(f)
	}
	return w, nil
}

func (w *PartitionWriter) Write(ctx context.Context, rec model.ClassifiedEdge) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode edge %s: %w", rec.EdgeID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	bw, ok := w.writers[rec.Classification]
	if !ok {
		return fmt.Errorf("unknown classification %q for edge %s", rec.Classification, rec.EdgeID)
	}
	if _, err := bw.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write edge %s: %w", rec.EdgeID, err)
	}
	w.counts[rec.Classification]++
	return nil
}

// Counts returns the number of records written per classification.
func (w *PartitionWriter) Counts() map[model.Classification]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[model.Classification]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}

func (w *PartitionWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for c, f := range w.files {
		if bw, ok := w.writers[c]; ok {
			if err := bw.Flush(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.files = map[model.Classification]*os.File{}
	w.writers = map[model.Classification]*bufio.Writer{}
	return errors.Join(errs...)
}

// ReadPartition loads one partition file. A missing file reads as empty.
func ReadPartition(dir string, c model.Classification) ([]model.ClassifiedEdge, error) {
	path := PartitionPath(dir, c)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open partition '%s': %w", path, err)
	}
	defer f.Close()
	return ReadAll[model.ClassifiedEdge](f, path)
}
