// Package reduce turns a subject's relation tree into a single record.
//
// Reduction runs two passes over tree.Relations. The first handles isA
// triples and decides what kind of record each node holds; the second
// handles every other relation and fills in fields. Records live in an
// Arena owned by one Reduce call, so subjects of the same tree can be
// reduced concurrently.
package reduce

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/agenthands/bibalign/internal/core/common"
	"github.com/agenthands/bibalign/internal/core/handlers"
	"github.com/agenthands/bibalign/internal/core/repr"
	"github.com/agenthands/bibalign/internal/core/tree"
)

// IsARelation is the relation name that marks a type assertion.
const IsARelation = "isA"

var ErrMissingRootRecord = errors.New("subject has no record")

// MissingRootRecordError means no isA handler ever typed the subject.
type MissingRootRecordError struct {
	Subject string
}

func (e *MissingRootRecordError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRootRecord, e.Subject)
}

func (e *MissingRootRecordError) Unwrap() error {
	return ErrMissingRootRecord
}

// Arena holds the record attached to each node during one reduction.
type Arena map[tree.NodeID]repr.Record

func (a Arena) Record(id tree.NodeID) repr.Record {
	return a[id]
}

type Reducer struct {
	registry *handlers.Registry
	logger   *slog.Logger
}

type Option func(*Reducer)

func WithLogger(l *slog.Logger) Option {
	return func(r *Reducer) {
		r.logger = l
	}
}

func WithRegistry(reg *handlers.Registry) Option {
	return func(r *Reducer) {
		r.registry = reg
	}
}

// New returns a Reducer using handlers.Default unless another registry is given.
func New(opts ...Option) *Reducer {
	r := &Reducer{}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = handlers.Default()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Reduce returns the record built for subject.
func (r *Reducer) Reduce(subject *tree.Node) (repr.Record, error) {
	arena := make(Arena)

	for triple := range tree.Relations(subject) {
		if triple.Relation.Name != IsARelation {
			continue
		}
		r.dispatch(arena, handlers.IsA, common.SimplifyURLName(triple.Object.Name), triple)
	}

	for triple := range tree.Relations(subject) {
		if triple.Relation.Name == IsARelation {
			continue
		}
		r.dispatch(arena, handlers.HasA, common.SimplifyURLName(triple.Relation.Name), triple)
	}

	for _, rec := range arena {
		if ident, ok := rec.(*repr.ResourceIdentifier); ok && ident.Scheme == "" {
			r.logger.Debug("dropped identifier with unknown scheme", "subject", subject.Name, "value", ident.Value)
		}
	}

	rec := arena[subject.ID]
	if rec == nil {
		return nil, &MissingRootRecordError{Subject: subject.Name}
	}
	return rec, nil
}

func (r *Reducer) dispatch(arena Arena, role handlers.Role, name string, triple tree.Triple) {
	h, ok := r.registry.Lookup(role, name)
	if !ok {
		return
	}
	op := h(arena, triple.Relation, triple.Object)
	if op == nil {
		return
	}

	id := triple.Subject.ID
	next, applied := repr.Apply(arena[id], op)
	if !applied {
		if arena[id] == nil {
			r.logger.Debug("dropped update for untyped node",
				"role", role, "handler", name, "node", triple.Subject.Name, "op", op)
		}
		return
	}
	arena[id] = next
}

// Result is the outcome of reducing one subject.
type Result struct {
	Subject string
	Record  repr.Record
	Err     error
}

// ReduceAll reduces every subject of t in order. A failing subject does not
// stop the others.
func (r *Reducer) ReduceAll(t *tree.Tree) []Result {
	subjects := t.Subjects()
	results := make([]Result, len(subjects))
	for i, s := range subjects {
		rec, err := r.Reduce(s)
		results[i] = Result{Subject: s.Name, Record: rec, Err: err}
	}
	return results
}

// Publications returns the publication records of results, skipping
// failures and records of any other kind.
func Publications(results []Result) []*repr.Publication {
	out := make([]*repr.Publication, 0, len(results))
	for _, res := range results {
		if p, ok := res.Record.(*repr.Publication); ok && res.Err == nil {
			out = append(out, p)
		}
	}
	return out
}
