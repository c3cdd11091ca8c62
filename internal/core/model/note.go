package model

// Note is a publication record as served by the OpenReview notes endpoint.
type Note struct {
	ID         string      `json:"id"`
	Content    NoteContent `json:"content"`
	Forum      string      `json:"forum"`
	Invitation string      `json:"invitation"`
	Number     *int        `json:"number,omitempty"`
	Signatures []string    `json:"signatures"`
}

type NoteContent struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	AuthorIDs []string `json:"authorids"`
	Abstract  string   `json:"abstract,omitempty"`
	HTML      string   `json:"html,omitempty"`
	Venue     string   `json:"venue,omitempty"`
	VenueID   string   `json:"venueid,omitempty"`
	Bibtex    string   `json:"_bibtex,omitempty"`
	Paperhash string   `json:"paperhash,omitempty"`
}

// Notes is one page of the notes endpoint.
type Notes struct {
	Notes []Note `json:"notes"`
	Count int    `json:"count"`
}

// Valid reports whether the note carries the fields alignment depends on.
func (n Note) Valid() bool {
	return n.Content.Title != "" && n.Content.Authors != nil && n.Content.AuthorIDs != nil
}

// FilterValidNotes drops notes missing a title, author list or author id list.
func FilterValidNotes(notes []Note) []Note {
	valid := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.Valid() {
			valid = append(valid, n)
		}
	}
	return valid
}

type NameEntry struct {
	First     string `json:"first,omitempty"`
	Middle    string `json:"middle,omitempty"`
	Last      string `json:"last"`
	Preferred bool   `json:"preferred,omitempty"`
	Username  string `json:"username,omitempty"`
}

type ProfileContent struct {
	DBLP           string      `json:"dblp,omitempty"`
	Emails         []string    `json:"emails,omitempty"`
	Homepage       string      `json:"homepage,omitempty"`
	GScholar       string      `json:"gscholar,omitempty"`
	Names          []NameEntry `json:"names"`
	PreferredEmail string      `json:"preferredEmail,omitempty"`
}

// Profile is an OpenReview user profile.
type Profile struct {
	ID      string         `json:"id"`
	Content ProfileContent `json:"content"`
}

type Profiles struct {
	Profiles []Profile `json:"profiles"`
}

// PreferredName returns the preferred full name, or the first listed one.
func (p Profile) PreferredName() string {
	var chosen *NameEntry
	for i := range p.Content.Names {
		if p.Content.Names[i].Preferred {
			chosen = &p.Content.Names[i]
			break
		}
	}
	if chosen == nil && len(p.Content.Names) > 0 {
		chosen = &p.Content.Names[0]
	}
	if chosen == nil {
		return ""
	}
	name := chosen.First
	if chosen.Middle != "" {
		name += " " + chosen.Middle
	}
	if chosen.Last != "" {
		if name != "" {
			name += " "
		}
		name += chosen.Last
	}
	return name
}
