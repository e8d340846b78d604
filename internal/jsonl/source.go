package jsonl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/agenthands/edgeqc/internal/core/common"
	"github.com/agenthands/edgeqc/internal/core/model"
)

// maxLine bounds a single JSONL record; text-mined edges with many sentences
// run to a few hundred kilobytes.
const maxLine = 16 * 1024 * 1024

// FileSource streams edges from a JSONL file. Every call to Each re-reads
// the file from the start.
type FileSource struct {
	Path string
}

func (s FileSource) Each(ctx context.Context, fn func(model.Edge) error) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("failed to open edges file '%s': %w", s.Path, err)
	}
	defer f.Close()

	return eachRecord(ctx, f, s.Path, fn)
}

// SliceSource serves edges already in memory.
type SliceSource []model.Edge

func (s SliceSource) Each(ctx context.Context, fn func(model.Edge) error) error {
	for _, e := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// ReadAll decodes every record of a JSONL stream.
func ReadAll[T any](r io.Reader, name string) ([]T, error) {
	var out []T
	err := eachRecord(context.Background(), r, name, func(v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

func eachRecord[T any](ctx context.Context, r io.Reader, name string, fn func(T) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(sc.Bytes()) == 0 || isBlank(sc.Bytes()) {
			continue
		}
		v, err := common.ParseJSON[T](sc.Bytes())
		if err != nil {
			return fmt.Errorf("%s:%d: %w", name, line, err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read '%s': %w", name, err)
	}
	return nil
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\r' {
			return false
		}
	}
	return true
}

// LoadNodeNames reads a JSONL node file and returns display names by id.
// Nodes without a name are skipped.
func LoadNodeNames(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open nodes file '%s': %w", path, err)
	}
	defer f.Close()

	names := make(map[string]string)
	err = eachRecord(context.Background(), f, path, func(n model.Node) error {
		if n.ID != "" && n.Name != "" {
			names[n.ID] = n.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
