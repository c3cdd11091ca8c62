package format

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/agenthands/bibalign/internal/core/repr"
)

type xmlPerson struct {
	PID   string `xml:"pid,attr,omitempty"`
	ORCID string `xml:"orcid,attr,omitempty"`
	Name  string `xml:",chardata"`
}

type xmlPublication struct {
	XMLName   xml.Name
	Key       string      `xml:"key,attr"`
	Authors   []xmlPerson `xml:"author"`
	Editors   []xmlPerson `xml:"editor"`
	Title     string      `xml:"title,omitempty"`
	BookTitle string      `xml:"booktitle,omitempty"`
	Journal   string      `xml:"journal,omitempty"`
	Volume    string      `xml:"volume,omitempty"`
	Number    string      `xml:"number,omitempty"`
	Pages     string      `xml:"pages,omitempty"`
	Year      string      `xml:"year,omitempty"`
	Publisher string      `xml:"publisher,omitempty"`
	ISBN      string      `xml:"isbn,omitempty"`
	EE        []string    `xml:"ee,omitempty"`
	URL       string      `xml:"url,omitempty"`
}

func persons(names []*repr.PersonName) []xmlPerson {
	out := make([]xmlPerson, 0, len(names))
	for _, n := range names {
		orcid, _ := n.Extra["orcid"].(string)
		out = append(out, xmlPerson{PID: n.PID, ORCID: orcid, Name: n.Fullname})
	}
	return out
}

func toXML(p *repr.Publication) xmlPublication {
	x := xmlPublication{
		XMLName:   xml.Name{Local: EntryType(p.PubType)},
		Key:       strings.TrimPrefix(p.Key, "DBLP:"),
		Authors:   persons(p.Authors),
		Editors:   persons(p.Editors),
		Title:     p.Title,
		BookTitle: p.Field("booktitle"),
		Journal:   p.Field("journal"),
		Volume:    p.Field("volume"),
		Number:    p.Field("number"),
		Pages:     p.Pages,
		Year:      p.Year,
		Publisher: p.Field("publisher"),
		ISBN:      p.ISBN,
		URL:       p.Field("webpage"),
	}
	if x.BookTitle == "" && x.Journal == "" {
		x.BookTitle = p.Venue
	}
	if p.URL != "" {
		x.EE = append(x.EE, p.URL)
	}
	if p.DOI != "" && p.DOI != p.URL {
		x.EE = append(x.EE, p.DOI)
	}
	return x
}

// XML renders p as a dblp record element, e.g.
// <inproceedings key="conf/acl/DruckGG11"><author pid="66/4867">...</author>.
func XML(p *repr.Publication) ([]byte, error) {
	return xml.MarshalIndent(toXML(p), "", "  ")
}

// WriteXML writes pubs inside a <dblp> element.
func WriteXML(w io.Writer, pubs []*repr.Publication) error {
	doc := struct {
		XMLName xml.Name         `xml:"dblp"`
		Records []xmlPublication `xml:",any"`
	}{}
	for _, p := range pubs {
		doc.Records = append(doc.Records, toXML(p))
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
