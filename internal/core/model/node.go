package model

import (
	"encoding/json"
	"fmt"
)

// StringList decodes either a JSON string or a list of strings.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*s = nil
		} else {
			*s = StringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*s = many
	return nil
}

// Node is a KG node as exported by the source graph. ID is not guaranteed to
// be canonical.
type Node struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Category              StringList `json:"category,omitempty"`
	EquivalentIdentifiers StringList `json:"equivalent_identifiers,omitempty"`
}
