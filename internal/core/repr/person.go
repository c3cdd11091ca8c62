package repr

const (
	NameTypeAuthor = "author"
	NameTypeEditor = "editor"
)

// PersonName is one author or editor signature on a publication. Ordinal is
// 1-based; zero means it was never set.
type PersonName struct {
	NameType string
	Fullname string
	Ordinal  int
	PID      string
	Extra    Extra
}

func NewPersonName(nameType string) *PersonName {
	return &PersonName{NameType: nameType}
}

func (n *PersonName) Kind() Kind { return KindPersonName }

func (n *PersonName) Get(field string) (any, bool) {
	switch field {
	case "name_type":
		return getString(n.NameType, n.Extra, field)
	case "fullname":
		return getString(n.Fullname, n.Extra, field)
	case "pid":
		return getString(n.PID, n.Extra, field)
	case "ordinal":
		if n.Ordinal != 0 {
			return n.Ordinal, true
		}
	}
	return n.Extra.get(field)
}

func (n *PersonName) Set(field string, value any) {
	switch field {
	case "name_type":
		setString(&n.NameType, &n.Extra, field, value)
	case "fullname":
		setString(&n.Fullname, &n.Extra, field, value)
	case "pid":
		setString(&n.PID, &n.Extra, field, value)
	case "ordinal":
		if i, ok := value.(int); ok {
			n.Ordinal = i
			delete(n.Extra, field)
			return
		}
		n.Ordinal = 0
		n.Extra.set(field, value)
	default:
		n.Extra.set(field, value)
	}
}

func (n *PersonName) Append(field string, value any) {
	n.Extra.append(field, value)
}

func (n *PersonName) Map() map[string]any {
	m := make(map[string]any)
	n.Extra.copyInto(m)
	putString(m, "name_type", n.NameType)
	putString(m, "fullname", n.Fullname)
	putString(m, "pid", n.PID)
	if n.Ordinal != 0 {
		m["ordinal"] = n.Ordinal
	}
	return m
}

func (n *PersonName) MarshalJSON() ([]byte, error) {
	return marshalRecord(n)
}
