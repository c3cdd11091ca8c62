package align

import (
	"regexp"
	"strings"

	"github.com/agenthands/bibalign/internal/core/model"
	"github.com/agenthands/bibalign/internal/core/repr"
)

const (
	KeyDblp  = "dblp_key"
	KeyTitle = "title"
	KeyDOI   = "doi"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonKeyRe     = regexp.MustCompile(`[^a-z0-9_]`)
	bibtexKeyRe  = regexp.MustCompile(`@\w+\s*\{\s*(DBLP:[^,\s]+)\s*,`)
)

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// NormalizeTitle lowercases title, joins words with underscores and drops
// everything else, so "Learning from Labeled Features." becomes
// "learning_from_labeled_features".
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = whitespaceRe.ReplaceAllString(s, "_")
	s = nonKeyRe.ReplaceAllString(s, "")
	return strings.Trim(s, "_")
}

// DblpKeyFromBibtex extracts "DBLP:..." citation keys from a bibtex entry.
func DblpKeyFromBibtex(bibtex string) (string, bool) {
	m := bibtexKeyRe.FindStringSubmatch(bibtex)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NormalizeDOI lowercases a doi and strips a resolver prefix.
func NormalizeDOI(doi string) string {
	s := strings.ToLower(strings.TrimSpace(doi))
	for _, p := range doiPrefixes {
		if strings.HasPrefix(s, p) {
			return s[len(p):]
		}
	}
	return s
}

func NoteKeys(n model.Note) []model.PubKey {
	var keys []model.PubKey
	if k, ok := DblpKeyFromBibtex(n.Content.Bibtex); ok {
		keys = append(keys, model.PubKey{KeyType: KeyDblp, Value: k})
	}
	if t := NormalizeTitle(n.Content.Title); t != "" {
		keys = append(keys, model.PubKey{KeyType: KeyTitle, Value: t})
	}
	return keys
}

func PublicationKeys(p *repr.Publication) []model.PubKey {
	var keys []model.PubKey
	if strings.HasPrefix(p.Key, "DBLP:") {
		keys = append(keys, model.PubKey{KeyType: KeyDblp, Value: p.Key})
	}
	if t := NormalizeTitle(p.Title); t != "" {
		keys = append(keys, model.PubKey{KeyType: KeyTitle, Value: t})
	}
	if d := NormalizeDOI(p.DOI); d != "" {
		keys = append(keys, model.PubKey{KeyType: KeyDOI, Value: d})
	}
	return keys
}
