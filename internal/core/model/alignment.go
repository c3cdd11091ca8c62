package model

import (
	"fmt"
	"strings"
)

// PubKey is a key derived from a publication, used to match it against
// records from another source. KeyType names the derivation, e.g. title,
// dblp_key or doi.
type PubKey struct {
	KeyType string `json:"keytype"`
	Value   string `json:"value"`
}

func (k PubKey) String() string {
	return k.KeyType + ":" + k.Value
}

// AlignmentWarning reports more than one record collapsing onto one key.
type AlignmentWarning struct {
	Msg string   `json:"msg"`
	IDs []string `json:"ids"`
}

// DblpAuthID is a dblp person id such as "66/4867".
type DblpAuthID struct {
	pid string
}

const dblpPrefix = "https://dblp.org/"

// ParseDblpAuthID accepts "https://dblp.org/pid/66/4867", "pid/66/4867" and
// "66/4867".
func ParseDblpAuthID(s string) (DblpAuthID, error) {
	trimmed := strings.TrimPrefix(s, dblpPrefix)
	var segments []string
	for _, seg := range strings.Split(trimmed, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	switch {
	case len(segments) == 3 && segments[0] == "pid":
		return DblpAuthID{pid: segments[1] + "/" + segments[2]}, nil
	case len(segments) == 2 && segments[0] != "pid":
		return DblpAuthID{pid: segments[0] + "/" + segments[1]}, nil
	}
	return DblpAuthID{}, fmt.Errorf("invalid dblp pid: %q", s)
}

func (id DblpAuthID) PID() string {
	return id.pid
}

func (id DblpAuthID) URI() string {
	return dblpPrefix + "pid/" + id.pid
}
