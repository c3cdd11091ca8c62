// Package handlers maps dblp RDF vocabulary to record updates.
//
// A Registry is a fixed table keyed by role and simplified name. Type
// assertions (relation "isA") are looked up by the object's name and
// establish what kind of record a node holds; every other relation is
// looked up by its own name and fills in fields. Names without a handler
// are skipped by the reducer.
package handlers

import (
	"slices"

	"github.com/agenthands/bibalign/internal/core/repr"
	"github.com/agenthands/bibalign/internal/core/tree"
)

type Role int

const (
	IsA Role = iota
	HasA
)

func (r Role) String() string {
	switch r {
	case IsA:
		return "isA"
	case HasA:
		return "hasA"
	}
	return "unknown"
}

// Env gives handlers read access to records already attached to nodes.
type Env interface {
	Record(id tree.NodeID) repr.Record
}

// Handler returns the update for one (subject, rel, obj) triple, or nil.
// For IsA handlers rel is the isA relation node.
type Handler func(env Env, rel, obj *tree.Node) repr.Op

type Registry struct {
	table map[Role]map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{table: map[Role]map[string]Handler{
		IsA:  {},
		HasA: {},
	}}
}

// Register adds h under (role, name). A later registration replaces an
// earlier one.
func (r *Registry) Register(role Role, name string, h Handler) {
	r.table[role][name] = h
}

// Lookup returns the handler for (role, name).
func (r *Registry) Lookup(role Role, name string) (Handler, bool) {
	h, ok := r.table[role][name]
	return h, ok
}

// Names lists the registered vocabulary for role, sorted.
func (r *Registry) Names(role Role) []string {
	names := make([]string, 0, len(r.table[role]))
	for name := range r.table[role] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len is the total number of registered handlers.
func (r *Registry) Len() int {
	return len(r.table[IsA]) + len(r.table[HasA])
}

// noop registers vocabulary that is known but carries nothing we keep.
func noop(Env, *tree.Node, *tree.Node) repr.Op {
	return nil
}
