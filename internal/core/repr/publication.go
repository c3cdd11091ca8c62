package repr

// Publication is the record a dblp publication subject reduces to.
// Authors and Editors keep signature order.
type Publication struct {
	PubType string
	Key     string
	Title   string
	Year    string
	DOI     string
	ISBN    string
	URL     string
	Pages   string
	Venue   string
	Authors []*PersonName
	Editors []*PersonName
	Extra   Extra
}

func NewPublication(pubType string) *Publication {
	return &Publication{PubType: pubType}
}

func (p *Publication) Kind() Kind { return KindPublication }

func (p *Publication) field(name string) *string {
	switch name {
	case "pub_type":
		return &p.PubType
	case "key":
		return &p.Key
	case "title":
		return &p.Title
	case "year":
		return &p.Year
	case "doi":
		return &p.DOI
	case "isbn":
		return &p.ISBN
	case "url":
		return &p.URL
	case "pages":
		return &p.Pages
	case "venue":
		return &p.Venue
	}
	return nil
}

func (p *Publication) Get(field string) (any, bool) {
	if dst := p.field(field); dst != nil {
		return getString(*dst, p.Extra, field)
	}
	switch field {
	case "author":
		if len(p.Authors) > 0 {
			return p.Authors, true
		}
	case "editor":
		if len(p.Editors) > 0 {
			return p.Editors, true
		}
	}
	return p.Extra.get(field)
}

func (p *Publication) Set(field string, value any) {
	if dst := p.field(field); dst != nil {
		setString(dst, &p.Extra, field, value)
		return
	}
	p.Extra.set(field, value)
}

// Append adds value to a list field. Person names go to the ordered author
// and editor lists; anything else is kept in Extra.
func (p *Publication) Append(field string, value any) {
	if name, ok := value.(*PersonName); ok {
		switch field {
		case "author":
			p.Authors = append(p.Authors, name)
			return
		case "editor":
			p.Editors = append(p.Editors, name)
			return
		}
	}
	p.Extra.append(field, value)
}

func (p *Publication) Map() map[string]any {
	m := make(map[string]any)
	p.Extra.copyInto(m)
	putString(m, "pub_type", p.PubType)
	putString(m, "key", p.Key)
	putString(m, "title", p.Title)
	putString(m, "year", p.Year)
	putString(m, "doi", p.DOI)
	putString(m, "isbn", p.ISBN)
	putString(m, "url", p.URL)
	putString(m, "pages", p.Pages)
	putString(m, "venue", p.Venue)
	if len(p.Authors) > 0 {
		m["author"] = nameMaps(p.Authors)
	}
	if len(p.Editors) > 0 {
		m["editor"] = nameMaps(p.Editors)
	}
	return m
}

func (p *Publication) MarshalJSON() ([]byte, error) {
	return marshalRecord(p)
}

// Field returns a field as a string, or "" when unset or not a string.
func (p *Publication) Field(field string) string {
	v, ok := p.Get(field)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func nameMaps(names []*PersonName) []map[string]any {
	out := make([]map[string]any, len(names))
	for i, n := range names {
		out[i] = n.Map()
	}
	return out
}
