package repr

const (
	SchemeDBLP  = "DBLP"
	SchemeDOI   = "DOI"
	SchemeArXiv = "ARXIV"
)

// ResourceIdentifier is a (scheme, value) pair such as DBLP / conf/acl/DruckGG11.
type ResourceIdentifier struct {
	Scheme string
	Value  string
	Extra  Extra
}

func NewResourceIdentifier() *ResourceIdentifier {
	return &ResourceIdentifier{}
}

func (r *ResourceIdentifier) Kind() Kind { return KindResourceIdentifier }

func (r *ResourceIdentifier) Get(field string) (any, bool) {
	switch field {
	case "scheme":
		return getString(r.Scheme, r.Extra, field)
	case "value":
		return getString(r.Value, r.Extra, field)
	}
	return r.Extra.get(field)
}

func (r *ResourceIdentifier) Set(field string, value any) {
	switch field {
	case "scheme":
		setString(&r.Scheme, &r.Extra, field, value)
	case "value":
		setString(&r.Value, &r.Extra, field, value)
	default:
		r.Extra.set(field, value)
	}
}

func (r *ResourceIdentifier) Append(field string, value any) {
	r.Extra.append(field, value)
}

func (r *ResourceIdentifier) Map() map[string]any {
	m := make(map[string]any)
	r.Extra.copyInto(m)
	putString(m, "scheme", r.Scheme)
	putString(m, "value", r.Value)
	return m
}

func (r *ResourceIdentifier) MarshalJSON() ([]byte, error) {
	return marshalRecord(r)
}

// Qualified renders the identifier as SCHEME:value, or "" when incomplete.
func (r *ResourceIdentifier) Qualified() string {
	if r.Scheme == "" || r.Value == "" {
		return ""
	}
	return r.Scheme + ":" + r.Value
}
