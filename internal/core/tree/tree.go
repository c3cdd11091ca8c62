// Package tree builds path-addressed trees out of flat relation tuples and
// walks them as (subject, relation, object) triples.
//
// A tuple (s, p, o, bp, bo) becomes the path s/p/o/bp/bo below a synthetic
// root, so every subject is a child of the root, its relations are the
// subject's children and the objects sit one level below the relations.
// Blank objects carry their own relations one level deeper:
//
//	root
//	└── https://dblp.org/rec/conf/acl/DruckGG11
//	    ├── isA
//	    │   └── https://dblp.org/rdf/schema#Inproceedings
//	    └── https://dblp.org/rdf/schema#hasSignature
//	        └── b8
//	            ├── https://dblp.org/rdf/schema#signatureDblpName
//	            │   └── Gregory Druck
//	            └── isA
//	                └── https://dblp.org/rdf/schema#AuthorSignature
package tree

import (
	"errors"
	"fmt"

	"github.com/agenthands/bibalign/internal/core/model"
)

// RootName is the name of the synthetic node every subject hangs from.
const RootName = "root"

// NodeID identifies a node within its tree. IDs are dense and assigned in
// creation order, starting with 0 for the root.
type NodeID int

type Node struct {
	ID       NodeID
	Name     string
	Parent   *Node
	Children []*Node

	byName map[string]*Node
}

// Child returns the direct child with the given name.
func (n *Node) Child(name string) *Node {
	return n.byName[name]
}

func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Depth is the number of edges between n and the tree root.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

var ErrMalformedTuple = errors.New("malformed relation tuple")

// MalformedTupleError is returned for a tuple that cannot be placed in the
// tree. Index is the tuple's position in the input, or -1 for a single
// Insert.
type MalformedTupleError struct {
	Index  int
	Tuple  model.RelationTuple
	Reason string
}

func (e *MalformedTupleError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("tuple %d: %s: %s", e.Index, ErrMalformedTuple, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedTuple, e.Reason)
}

func (e *MalformedTupleError) Unwrap() error {
	return ErrMalformedTuple
}

type Tree struct {
	Root  *Node
	nodes []*Node
}

func New() *Tree {
	t := &Tree{}
	t.Root = t.newNode(RootName, nil)
	return t
}

// Build inserts every tuple, in order, into a fresh tree.
func Build(tuples []model.RelationTuple) (*Tree, error) {
	t := New()
	for i, tuple := range tuples {
		if err := t.insert(tuple); err != nil {
			var mte *MalformedTupleError
			if errors.As(err, &mte) {
				mte.Index = i
			}
			return nil, err
		}
	}
	return t, nil
}

// Insert adds the tuple's path below the root, reusing existing nodes.
// Inserting the same tuple twice leaves the tree unchanged.
func (t *Tree) Insert(tuple model.RelationTuple) error {
	return t.insert(tuple)
}

func (t *Tree) insert(tuple model.RelationTuple) error {
	if tuple.Subject == "" {
		return &MalformedTupleError{Index: -1, Tuple: tuple, Reason: "empty subject"}
	}

	cur := t.Root
	for _, name := range tuple.Path() {
		next := cur.Child(name)
		if next == nil {
			next = t.newNode(name, cur)
		}
		cur = next
	}
	return nil
}

func (t *Tree) newNode(name string, parent *Node) *Node {
	n := &Node{
		ID:     NodeID(len(t.nodes)),
		Name:   name,
		Parent: parent,
		byName: make(map[string]*Node),
	}
	t.nodes = append(t.nodes, n)
	if parent != nil {
		parent.Children = append(parent.Children, n)
		parent.byName[name] = n
	}
	return n
}

// Subjects returns the subject roots in order of first appearance.
func (t *Tree) Subjects() []*Node {
	return t.Root.Children
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Len is the number of nodes including the synthetic root.
func (t *Tree) Len() int {
	return len(t.nodes)
}
