// Package format renders reduced publications as BibTeX and dblp-style XML,
// and alignments as plain text reports.
package format

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/agenthands/bibalign/internal/core/repr"
)

// entryTypes maps dblp publication types to BibTeX entry types.
var entryTypes = map[string]string{
	"Article":       "article",
	"Inproceedings": "inproceedings",
	"Book":          "book",
	"Incollection":  "incollection",
	"Editorship":    "proceedings",
	"Reference":     "incollection",
}

// Fields in the order they are written. Anything else follows, sorted.
var fieldOrder = []string{
	"title", "booktitle", "journal", "volume", "number", "chapter", "pages",
	"year", "month", "publisher", "series", "series_volume", "isbn", "url", "doi",
	"venue", "webpage",
}

// Fields that hold identifiers rather than text and are written verbatim.
var verbatimFields = map[string]bool{"url": true, "doi": true, "webpage": true}

var latexEscaper = strings.NewReplacer(`&`, `\&`, `%`, `\%`, `#`, `\#`)

// EntryType returns the BibTeX entry type for a dblp publication type.
func EntryType(pubType string) string {
	if t, ok := entryTypes[pubType]; ok {
		return t
	}
	return "misc"
}

// Bibtex renders p as a single BibTeX entry. Publications without a key get
// fallbackKey.
func Bibtex(p *repr.Publication, fallbackKey string) string {
	var sb strings.Builder
	writeBibtex(&sb, p, fallbackKey)
	return sb.String()
}

// BibtexLibrary writes every publication, separated by blank lines.
func BibtexLibrary(w io.Writer, pubs []*repr.Publication) error {
	var sb strings.Builder
	for i, p := range pubs {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeBibtex(&sb, p, fmt.Sprintf("key#%d", i+1))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeBibtex(sb *strings.Builder, p *repr.Publication, fallbackKey string) {
	key := p.Key
	if key == "" {
		key = fallbackKey
	}

	type field struct{ name, value string }
	var fields []field
	if names := fullnames(p.Authors); names != "" {
		fields = append(fields, field{"author", names})
	}
	if names := fullnames(p.Editors); names != "" {
		fields = append(fields, field{"editor", names})
	}

	m := p.Map()
	seen := map[string]bool{"pub_type": true, "key": true, "author": true, "editor": true}
	for _, name := range fieldOrder {
		seen[name] = true
		if s, ok := m[name].(string); ok && s != "" {
			fields = append(fields, field{name, s})
		}
	}
	var rest []string
	for name := range m {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	for _, name := range rest {
		if s, ok := m[name].(string); ok && s != "" {
			fields = append(fields, field{name, s})
		}
	}

	width := 0
	for _, f := range fields {
		width = max(width, len(f.name))
	}

	fmt.Fprintf(sb, "@%s{%s", EntryType(p.PubType), key)
	for _, f := range fields {
		value := f.value
		if !verbatimFields[f.name] {
			value = latexEscaper.Replace(value)
		}
		fmt.Fprintf(sb, ",\n  %-*s = {%s}", width, f.name, value)
	}
	sb.WriteString("\n}\n")
}

func fullnames(names []*repr.PersonName) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n.Fullname != "" {
			parts = append(parts, n.Fullname)
		}
	}
	return strings.Join(parts, " and ")
}
