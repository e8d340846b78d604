package driver

const (
	SaveAssertionQuery = `
		MERGE (s:Entity {id: $subject_id})
		SET s.name = $subject_name,
			s.canonical_id = $subject_canonical_id
		MERGE (o:Entity {id: $object_id})
		SET o.name = $object_name,
			o.canonical_id = $object_canonical_id
		MERGE (s)-[e:ASSERTS {edge_id: $edge_id}]->(o)
		SET e.predicate = $predicate,
			e.classification = $classification,
			e.phase = $phase,
			e.subject_status = $subject_status,
			e.object_status = $object_status,
			e.subject_surface = $subject_surface,
			e.object_surface = $object_surface,
			e.subject_candidates = $subject_candidates,
			e.object_candidates = $object_candidates,
			e.reason = $reason,
			e.publications = $publications,
			e.classified_at = $classified_at
		RETURN e.edge_id AS edge_id
	`

	CountAssertionsByClassificationQuery = `
		MATCH ()-[e:ASSERTS]->()
		WHERE e.phase = $phase
		RETURN e.classification AS classification, count(e) AS total
	`
)
