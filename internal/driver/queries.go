package driver

// IndexQueries are run once by BuildIndices.
var IndexQueries = []string{
	"CREATE INDEX ON :Publication(key);",
	"CREATE INDEX ON :Author(pid);",
	"CREATE INDEX ON :Note(id);",
	"CREATE INDEX ON :AlignmentRun(uuid);",

	"CREATE INDEX ON :Publication(title_key);",
}

const (
	SavePublicationQuery = `
		MERGE (p:Publication {key: $key})
		SET p.pub_type = $pub_type,
			p.title = $title,
			p.title_key = $title_key,
			p.year = $year,
			p.doi = $doi,
			p.venue = $venue,
			p.url = $url,
			p.pages = $pages,
			p.record = $record,
			p.updated_at = $updated_at
		RETURN p.key AS key
	`

	SaveAuthorQuery = `
		MERGE (a:Author {pid: $pid})
		SET a.name = $name
		RETURN a.pid AS pid
	`

	SaveAuthoredEdgeQuery = `
		MATCH (a:Author {pid: $pid})
		MATCH (p:Publication {key: $key})
		MERGE (a)-[r:AUTHORED {role: $role}]->(p)
		SET r.ordinal = $ordinal
		RETURN r.ordinal AS ordinal
	`

	SaveNoteQuery = `
		MERGE (n:Note {id: $id})
		SET n.title = $title,
			n.venue = $venue,
			n.forum = $forum,
			n.authors = $authors
		RETURN n.id AS id
	`

	SaveAlignmentRunQuery = `
		MERGE (r:AlignmentRun {uuid: $uuid})
		SET r.author = $author,
			r.created_at = $created_at,
			r.matched = $matched,
			r.unmatched_notes = $unmatched_notes,
			r.unmatched_dblp = $unmatched_dblp,
			r.warnings = $warnings
		RETURN r.uuid AS uuid
	`

	SaveAlignedEdgeQuery = `
		MATCH (n:Note {id: $note_id})
		MATCH (p:Publication {key: $key})
		MERGE (n)-[e:ALIGNED_WITH]->(p)
		SET e.run_id = $run_id,
			e.match_key = $match_key,
			e.created_at = $created_at
		RETURN e.run_id AS run_id
	`

	GetAuthorPublicationsQuery = `
		MATCH (a:Author {pid: $pid})-[r:AUTHORED]->(p:Publication)
		RETURN p.key AS key, p.title AS title, p.year AS year, r.role AS role, r.ordinal AS ordinal
		ORDER BY p.year DESC, p.key
	`

	GetAlignmentRunQuery = `
		MATCH (r:AlignmentRun {uuid: $uuid})
		OPTIONAL MATCH (n:Note)-[e:ALIGNED_WITH {run_id: $uuid}]->(p:Publication)
		RETURN r.author AS author, r.created_at AS created_at, r.matched AS matched,
			r.unmatched_notes AS unmatched_notes, r.unmatched_dblp AS unmatched_dblp,
			collect({note_id: n.id, key: p.key}) AS pairs
	`
)
