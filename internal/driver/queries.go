package driver

const (
	SaveNetworkQuery = `
		CREATE (n:Network {fingerprint: $fingerprint})
		SET n.key_json = $key_json,
			n.fetched_at = $fetched_at
		RETURN n.fingerprint AS fingerprint
	`

	SaveProteinQuery = `
		MATCH (n:Network {fingerprint: $fingerprint})
		CREATE (p:Protein {fingerprint: $fingerprint, canonical_id: $canonical_id})
		SET p.preferred_name = $preferred_name
		CREATE (n)-[:CONTAINS]->(p)
		RETURN p.canonical_id AS canonical_id
	`

	SaveInteractionQuery = `
		MATCH (a:Protein {fingerprint: $fingerprint, canonical_id: $source_id})
		MATCH (b:Protein {fingerprint: $fingerprint, canonical_id: $target_id})
		CREATE (a)-[e:INTERACTS {ord: $ord}]->(b)
		SET e.combined_score = $combined_score,
			e.channels_json = $channels_json
		RETURN e.ord AS ord
	`

	DeleteNetworkQuery = `
		MATCH (n:Network {fingerprint: $fingerprint})
		OPTIONAL MATCH (n)-[:CONTAINS]->(p:Protein)
		DETACH DELETE n, p
	`

	// GetNetworkQuery reads the whole entry in one statement, so a lookup
	// runs in a single transaction and a concurrent replace is either fully
	// visible or not at all.
	GetNetworkQuery = `
		MATCH (n:Network {fingerprint: $fingerprint})
		OPTIONAL MATCH (n)-[:CONTAINS]->(p:Protein)
		WITH n, p ORDER BY p.canonical_id
		WITH n, collect(CASE WHEN p IS NULL THEN NULL ELSE
			{canonical_id: p.canonical_id, preferred_name: p.preferred_name} END) AS proteins
		OPTIONAL MATCH (a:Protein {fingerprint: $fingerprint})-[e:INTERACTS]->(b:Protein)
		WITH n, proteins, a, b, e ORDER BY e.ord
		RETURN n.key_json AS key_json, n.fetched_at AS fetched_at, proteins,
			collect(CASE WHEN e IS NULL THEN NULL ELSE
				{source_id: a.canonical_id, target_id: b.canonical_id,
				 combined_score: e.combined_score, channels_json: e.channels_json} END) AS interactions
	`
)
