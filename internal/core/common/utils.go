package common

import (
	"strconv"
	"strings"
)

// SimplifyURLName reduces an IRI to its trailing local name: the last '/'
// segment, then the last '#' segment of that.
//
//	https://dblp.org/rdf/schema#hasSignature -> hasSignature
//	http://purl.org/spar/datacite/doi        -> doi
func SimplifyURLName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "#"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// ToInt parses a decimal integer literal, tolerating surrounding whitespace.
func ToInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// PIDFromURI extracts the person id from a dblp creator IRI such as
// https://dblp.org/pid/66/4867. Values without a /pid/ segment are returned
// unchanged.
func PIDFromURI(uri string) string {
	const marker = "/pid/"
	if i := strings.Index(uri, marker); i >= 0 {
		return uri[i+len(marker):]
	}
	return uri
}
