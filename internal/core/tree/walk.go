package tree

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// Triple is one subject -> relation -> object step of a tree.
type Triple struct {
	Subject  *Node
	Relation *Node
	Object   *Node
}

func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s", t.Subject.Name, t.Relation.Name, t.Object.Name)
}

// Relations yields every triple rooted at subject in insertion order. An
// object that has relations of its own is a blank node: its inner triples
// are yielded before the triple that points at it, so by the time the outer
// relation is seen the object has been fully visited.
//
// Relation nodes without objects yield nothing.
func Relations(subject *Node) iter.Seq[Triple] {
	return func(yield func(Triple) bool) {
		walk(subject, yield)
	}
}

func walk(subject *Node, yield func(Triple) bool) bool {
	for _, rel := range subject.Children {
		for _, obj := range rel.Children {
			if !obj.IsLeaf() {
				if !walk(obj, yield) {
					return false
				}
			}
			if !yield(Triple{Subject: subject, Relation: rel, Object: obj}) {
				return false
			}
		}
	}
	return true
}

// Fprint writes an indented rendering of the subtree below n.
func Fprint(w io.Writer, n *Node) error {
	if _, err := fmt.Fprintln(w, n.Name); err != nil {
		return err
	}
	return fprintChildren(w, n, "")
}

func fprintChildren(w io.Writer, n *Node, prefix string) error {
	for i, c := range n.Children {
		last := i == len(n.Children)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, c.Name); err != nil {
			return err
		}
		if err := fprintChildren(w, c, prefix+indent); err != nil {
			return err
		}
	}
	return nil
}

// Sprint is Fprint into a string.
func Sprint(n *Node) string {
	var sb strings.Builder
	_ = Fprint(&sb, n)
	return sb.String()
}
