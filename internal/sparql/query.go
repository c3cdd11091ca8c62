// Package sparql fetches dblp authorship tuples from a SPARQL endpoint and
// decodes them into relation tuples.
package sparql

import (
	"fmt"
	"strings"
)

// Variables bound by AuthorPublicationQuery, in tuple order.
var TupleVars = []string{"sub", "pred", "obj", "bpred", "bobj"}

const authorPublicationTemplate = `prefix dblp: <https://dblp.org/rdf/schema#>

SELECT ?sub ?pred ?obj ?bpred ?bobj
WHERE {
  ?sub dblp:authoredBy <%s> .
  {
    ?sub ?pred ?obj
    FILTER (! isBlank(?obj) )
  } UNION {
    ?sub ?pred ?obj
    FILTER (isBlank(?obj) ) .
    ?obj ?bpred ?bobj .
  } UNION {
    ?sub a ?obj .
    BIND("isA" as ?pred)
  } UNION {
    ?sub ?pred ?obj
    FILTER (isBlank(?obj) ) .
    ?obj a ?bobj .
    BIND("isA" as ?bpred)
  }
}
`

// AuthorPublicationQuery selects every fact about the publications authored
// by authorURI, one level into blank nodes. rdf:type facts come back with the
// literal predicate "isA".
func AuthorPublicationQuery(authorURI string) (string, error) {
	if authorURI == "" || strings.ContainsAny(authorURI, "<>\" {}|\\^`") {
		return "", fmt.Errorf("invalid author uri %q", authorURI)
	}
	return fmt.Sprintf(authorPublicationTemplate, authorURI), nil
}
