package model

import (
	"encoding/json"
	"fmt"
)

const Phase = "phase1_entity_identification"

// Output field names added to the original edge record.
const (
	FieldEdgeID         = "edge_id"
	FieldClassification = "qc_classification"
	FieldPhase          = "qc_phase"
	FieldRationale      = "qc_rationale"
	FieldSubjectName    = "subject_name"
	FieldObjectName     = "object_name"
)

var outputFields = []string{
	FieldEdgeID, FieldClassification, FieldPhase, FieldRationale, FieldSubjectName, FieldObjectName,
}

// ClassifiedEdge is the record emitted into exactly one output partition.
type ClassifiedEdge struct {
	Edge           Edge
	EdgeID         string
	Classification Classification
	Phase          string
	SubjectName    string
	ObjectName     string
	Rationale      Rationale
}

func (c ClassifiedEdge) MarshalJSON() ([]byte, error) {
	fields := c.Edge.Fields()
	fields[FieldEdgeID] = c.EdgeID
	fields[FieldClassification] = c.Classification
	fields[FieldPhase] = c.Phase
	fields[FieldSubjectName] = c.SubjectName
	fields[FieldObjectName] = c.ObjectName
	fields[FieldRationale] = c.Rationale
	return json.Marshal(fields)
}

func (c *ClassifiedEdge) UnmarshalJSON(data []byte) error {
	var edge Edge
	if err := json.Unmarshal(data, &edge); err != nil {
		return err
	}

	out := ClassifiedEdge{
		EdgeID:         stringField(edge.Raw, FieldEdgeID),
		Classification: Classification(stringField(edge.Raw, FieldClassification)),
		Phase:          stringField(edge.Raw, FieldPhase),
		SubjectName:    stringField(edge.Raw, FieldSubjectName),
		ObjectName:     stringField(edge.Raw, FieldObjectName),
	}

	if raw, ok := edge.Raw[FieldRationale]; ok && raw != nil {
		b, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to re-encode rationale: %w", err)
		}
		if err := json.Unmarshal(b, &out.Rationale); err != nil {
			return fmt.Errorf("failed to decode rationale: %w", err)
		}
	}

	for _, k := range outputFields {
		delete(edge.Raw, k)
	}
	out.Edge = edge
	*c = out
	return nil
}
