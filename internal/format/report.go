package format

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/agenthands/bibalign/internal/core/align"
	"github.com/agenthands/bibalign/internal/core/model"
)

// Pair is one matched group.
type Pair struct {
	Key    string `json:"key"`
	NoteID string `json:"note_id"`
	DblpID string `json:"dblp_id"`
	Title  string `json:"title"`
}

// Entry is a group present on one side only.
type Entry struct {
	Key   string `json:"key"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Summary flattens an alignment into sorted, serializable lists.
type Summary struct {
	Matched        []Pair                   `json:"matched"`
	UnmatchedNotes []Entry                  `json:"unmatched_notes"`
	UnmatchedDblp  []Entry                  `json:"unmatched_dblp"`
	Warnings       []model.AlignmentWarning `json:"warnings"`
}

func Summarize(a align.PublicationAlignments) Summary {
	s := Summary{
		Matched:        []Pair{},
		UnmatchedNotes: []Entry{},
		UnmatchedDblp:  []Entry{},
		Warnings:       a.Warnings,
	}
	if s.Warnings == nil {
		s.Warnings = []model.AlignmentWarning{}
	}
	for _, k := range a.MatchedPubs.Sorted() {
		n, p := a.NoteMap[k], a.DblpMap[k]
		s.Matched = append(s.Matched, Pair{
			Key:    k.String(),
			NoteID: align.NoteSide.ID(n),
			DblpID: align.PublicationSide.ID(p),
			Title:  p.Title,
		})
	}
	for _, k := range a.UnmatchedNotes.Sorted() {
		n := a.NoteMap[k]
		s.UnmatchedNotes = append(s.UnmatchedNotes, Entry{Key: k.String(), ID: n.ID, Title: n.Content.Title})
	}
	for _, k := range a.UnmatchedDblps.Sorted() {
		p := a.DblpMap[k]
		s.UnmatchedDblp = append(s.UnmatchedDblp, Entry{Key: k.String(), ID: align.PublicationSide.ID(p), Title: p.Title})
	}
	return s
}

// WriteReport writes a human readable alignment report.
func WriteReport(w io.Writer, a align.PublicationAlignments) error {
	s := Summarize(a)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "matched: %d\n", len(s.Matched))
	for _, p := range s.Matched {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.NoteID, p.DblpID, p.Title)
	}
	fmt.Fprintf(tw, "openreview only: %d\n", len(s.UnmatchedNotes))
	for _, e := range s.UnmatchedNotes {
		fmt.Fprintf(tw, "  %s\t%s\n", e.ID, e.Title)
	}
	fmt.Fprintf(tw, "dblp only: %d\n", len(s.UnmatchedDblp))
	for _, e := range s.UnmatchedDblp {
		fmt.Fprintf(tw, "  %s\t%s\n", e.ID, e.Title)
	}
	if len(s.Warnings) > 0 {
		fmt.Fprintf(tw, "warnings: %d\n", len(s.Warnings))
		for _, warn := range s.Warnings {
			fmt.Fprintf(tw, "  %s\t%v\n", warn.Msg, warn.IDs)
		}
	}
	return tw.Flush()
}
