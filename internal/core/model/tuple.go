package model

// RelationTuple is one row of the authorship SPARQL query. BlankPredicate and
// BlankObject are set when the object is a blank node and the row carries one
// extra hop through it.
type RelationTuple struct {
	Subject        string `json:"sub"`
	Predicate      string `json:"pred"`
	Object         string `json:"obj"`
	BlankPredicate string `json:"bpred,omitempty"`
	BlankObject    string `json:"bobj,omitempty"`
}

// Path returns the non-empty segments of the tuple, subject first.
func (t RelationTuple) Path() []string {
	path := []string{t.Subject}
	for _, seg := range []string{t.Predicate, t.Object, t.BlankPredicate, t.BlankObject} {
		if seg != "" {
			path = append(path, seg)
		}
	}
	return path
}
