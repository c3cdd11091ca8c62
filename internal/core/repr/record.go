// Package repr holds the intermediate records built while reducing a dblp
// authorship tree: publications, resource identifiers and person names.
//
// Each record kind keeps the fields downstream writers rely on as typed
// struct fields. Anything else a handler writes lands in the record's Extra
// table, so new vocabulary never gets lost. Map gives the flat, string-keyed
// view of a record.
package repr

import (
	"encoding/json"
	"maps"
)

type Kind string

const (
	KindPublication        Kind = "Publication"
	KindResourceIdentifier Kind = "ResourceIdentifier"
	KindPersonName         Kind = "PersonName"
)

// Record is a field bag with a fixed kind. Get reports whether a field has
// been written; empty strings count as unset.
type Record interface {
	Kind() Kind
	Get(field string) (any, bool)
	Set(field string, value any)
	Append(field string, value any)
	Map() map[string]any
}

// Extra stores fields that have no typed slot on a record.
type Extra map[string]any

func (e *Extra) set(field string, value any) {
	if *e == nil {
		*e = make(Extra)
	}
	(*e)[field] = value
}

func (e *Extra) append(field string, value any) {
	if *e == nil {
		*e = make(Extra)
	}
	list, _ := (*e)[field].([]any)
	(*e)[field] = append(list, value)
}

func (e Extra) get(field string) (any, bool) {
	v, ok := e[field]
	return v, ok
}

func (e Extra) copyInto(m map[string]any) {
	for k, v := range e {
		if list, ok := v.([]any); ok {
			out := make([]any, len(list))
			for i, item := range list {
				if r, ok := item.(Record); ok {
					out[i] = r.Map()
				} else {
					out[i] = item
				}
			}
			m[k] = out
			continue
		}
		if r, ok := v.(Record); ok {
			m[k] = r.Map()
			continue
		}
		m[k] = v
	}
}

func putString(m map[string]any, field, value string) {
	if value != "" {
		m[field] = value
	}
}

// setString writes value to the typed slot dst when it is a string and to
// extra otherwise. Only one of the two ever holds field.
func setString(dst *string, extra *Extra, field string, value any) {
	if s, ok := value.(string); ok {
		*dst = s
		delete(*extra, field)
		return
	}
	*dst = ""
	extra.set(field, value)
}

// getString reads a typed slot, falling back to extra for values of another
// type.
func getString(value string, extra Extra, field string) (any, bool) {
	if value != "" {
		return value, true
	}
	return extra.get(field)
}

func marshalRecord(r Record) ([]byte, error) {
	return json.Marshal(r.Map())
}

// Equal reports whether two records have the same kind and flattened fields.
func Equal(a, b Record) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	am, bm := a.Map(), b.Map()
	if len(am) != len(bm) {
		return false
	}
	ja, errA := json.Marshal(am)
	jb, errB := json.Marshal(bm)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// Clone returns a shallow copy of m, which is handy when callers want to
// annotate a flattened record without touching the original.
func Clone(m map[string]any) map[string]any {
	return maps.Clone(m)
}
