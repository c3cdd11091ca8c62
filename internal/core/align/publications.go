package align

import (
	"github.com/agenthands/bibalign/internal/core/model"
	"github.com/agenthands/bibalign/internal/core/repr"
)

// PublicationAlignments is the outcome of matching OpenReview notes against
// dblp publications.
type PublicationAlignments struct {
	NoteMap        map[model.PubKey]model.Note
	DblpMap        map[model.PubKey]*repr.Publication
	MatchedPubs    KeySet
	UnmatchedNotes KeySet
	UnmatchedDblps KeySet
	Warnings       []model.AlignmentWarning
}

var (
	NoteSide = Side[model.Note]{
		Name: "openreview",
		Keys: NoteKeys,
		ID:   func(n model.Note) string { return n.ID },
	}
	PublicationSide = Side[*repr.Publication]{
		Name: "dblp",
		Keys: PublicationKeys,
		ID:   publicationID,
	}
)

func publicationID(p *repr.Publication) string {
	if p.Key != "" {
		return p.Key
	}
	return p.Title
}

// Publications aligns notes (left) with dblp publications (right).
func Publications(notes []model.Note, pubs []*repr.Publication) PublicationAlignments {
	a := Align(notes, pubs, NoteSide, PublicationSide)
	return PublicationAlignments{
		NoteMap:        a.LeftMap,
		DblpMap:        a.RightMap,
		MatchedPubs:    a.Matched,
		UnmatchedNotes: a.UnmatchedLeft,
		UnmatchedDblps: a.UnmatchedRight,
		Warnings:       a.Warnings,
	}
}
