package repr

import "fmt"

// Op is an update a handler asks the reducer to apply to the record of a
// triple's subject. The set of ops is closed.
type Op interface {
	fmt.Stringer
	isOp()
}

// SetField writes Value to Field. Without Overwrite an existing value wins.
type SetField struct {
	Field     string
	Value     any
	Overwrite bool
}

// AppendField appends Value to the list stored at Field.
type AppendField struct {
	Field string
	Value any
}

// InitFields installs Value as the subject's record. Without Replace a
// record that already exists is kept.
type InitFields struct {
	Value   Record
	Replace bool
}

func (SetField) isOp()    {}
func (AppendField) isOp() {}
func (InitFields) isOp()  {}

func (o SetField) String() string {
	return fmt.Sprintf("set %s=%v (overwrite=%t)", o.Field, o.Value, o.Overwrite)
}

func (o AppendField) String() string {
	return fmt.Sprintf("append %s+=%v", o.Field, o.Value)
}

func (o InitFields) String() string {
	kind := Kind("<nil>")
	if o.Value != nil {
		kind = o.Value.Kind()
	}
	return fmt.Sprintf("init %s (replace=%t)", kind, o.Replace)
}

func Set(field string, value any) SetField {
	return SetField{Field: field, Value: value, Overwrite: true}
}

func SetIfAbsent(field string, value any) SetField {
	return SetField{Field: field, Value: value}
}

func Append(field string, value any) AppendField {
	return AppendField{Field: field, Value: value}
}

func Init(r Record) InitFields {
	return InitFields{Value: r, Replace: true}
}

func InitIfAbsent(r Record) InitFields {
	return InitFields{Value: r}
}

// Apply applies op to current and returns the record the subject holds
// afterwards. applied is false when the op had no effect: a field op
// against a subject without a record, a non-overwriting write to a field
// that is already set, or a non-replacing init over an existing record.
func Apply(current Record, op Op) (next Record, applied bool) {
	switch o := op.(type) {
	case InitFields:
		if o.Value == nil {
			return current, false
		}
		if current != nil && !o.Replace {
			return current, false
		}
		return o.Value, true
	case SetField:
		if current == nil {
			return nil, false
		}
		if !o.Overwrite {
			if _, ok := current.Get(o.Field); ok {
				return current, false
			}
		}
		current.Set(o.Field, o.Value)
		return current, true
	case AppendField:
		if current == nil {
			return nil, false
		}
		current.Append(o.Field, o.Value)
		return current, true
	}
	return current, false
}
