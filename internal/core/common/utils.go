package common

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ParseJSON unmarshals one JSON record into a T. Surrounding whitespace is
// ignored; an empty record is an error.
func ParseJSON[T any](data []byte) (T, error) {
	var zero T
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return zero, fmt.Errorf("empty JSON record")
	}

	var result T
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// SortedKeys returns the keys of a string set in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UniqueSorted drops empty strings and duplicates and sorts the rest.
func UniqueSorted(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return SortedKeys(set)
}
