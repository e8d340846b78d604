package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/agenthands/edgeqc/internal/core/model"
)

// edgeNamespace scopes edge ids so they never collide with other SHA-1 UUIDs.
var edgeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/agenthands/edgeqc/edge"))

const noSentencesReason = "no usable supporting sentences"

// Combine applies the role table: any bad role makes the edge bad, two
// resolved roles make it good, everything else is ambiguous.
func Combine(subject, object model.RoleResolution) (model.Classification, string) {
	var bad []string
	for _, r := range []model.RoleResolution{subject, object} {
		if r.Status.IsBad() {
			bad = append(bad, roleReason(r))
		}
	}
	if len(bad) > 0 {
		return model.ClassificationBad, strings.Join(bad, "; ")
	}

	if subject.Status == model.StatusResolved && object.Status == model.StatusResolved {
		return model.ClassificationGood, "subject and object resolved unambiguously"
	}

	var amb []string
	for _, r := range []model.RoleResolution{subject, object} {
		if r.Status == model.StatusAmbiguous {
			amb = append(amb, roleReason(r))
		}
	}
	return model.ClassificationAmbiguous, strings.Join(amb, "; ")
}

func roleReason(r model.RoleResolution) string {
	if r.Reason == "" {
		return fmt.Sprintf("%s %s", r.Role, r.Status)
	}
	return fmt.Sprintf("%s %s: %s", r.Role, r.Status, r.Reason)
}

// NoSentences builds the unmatched resolutions for an edge without usable
// sentences. Both roles are bad and no lookup is made.
func NoSentences(e model.Edge) (subject, object model.RoleResolution) {
	subject = model.RoleResolution{Role: model.RoleSubject, CURIE: e.Subject, Status: model.StatusUnmatched, Reason: noSentencesReason}
	object = model.RoleResolution{Role: model.RoleObject, CURIE: e.Object, Status: model.StatusUnmatched, Reason: noSentencesReason}
	return subject, object
}

// EdgeID derives a name-based UUID from the edge's own fields, so re-running
// on the same input yields the same ids. Output fields are ignored.
func EdgeID(e model.Edge) string {
	fields := e.Fields()
	for _, k := range []string{model.FieldEdgeID, model.FieldSubjectName, model.FieldObjectName} {
		delete(fields, k)
	}
	for k := range fields {
		if strings.HasPrefix(k, "qc_") {
			delete(fields, k)
		}
	}
	// map keys are marshalled in sorted order
	data, err := json.Marshal(fields)
	if err != nil {
		data = []byte(e.Subject + "\x00" + e.Predicate + "\x00" + e.Object + "\x00" + e.Sentences)
	}
	return uuid.NewSHA1(edgeNamespace, data).String()
}

// Assemble builds the output record for an edge.
func Assemble(e model.Edge, subject, object model.RoleResolution, subjectName, objectName string) model.ClassifiedEdge {
	class, reason := Combine(subject, object)
	if subjectName == "" {
		subjectName = e.Subject
	}
	if objectName == "" {
		objectName = e.Object
	}
	return model.ClassifiedEdge{
		Edge:           e,
		EdgeID:         EdgeID(e),
		Classification: class,
		Phase:          model.Phase,
		SubjectName:    subjectName,
		ObjectName:     objectName,
		Rationale: model.Rationale{
			Subject: subject,
			Object:  object,
			Reason:  reason,
		},
	}
}
