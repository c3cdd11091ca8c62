package tree

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/bibalign/internal/core/model"
)

// tupleFromPath turns "s/p/o/bp/bo" into a tuple.
func tupleFromPath(path string) model.RelationTuple {
	segs := strings.Split(path, "/")
	fields := make([]string, 5)
	copy(fields, segs)
	return model.RelationTuple{
		Subject:        fields[0],
		Predicate:      fields[1],
		Object:         fields[2],
		BlankPredicate: fields[3],
		BlankObject:    fields[4],
	}
}

func buildPaths(t *testing.T, paths ...string) *Tree {
	t.Helper()
	tuples := make([]model.RelationTuple, 0, len(paths))
	for _, p := range paths {
		tuples = append(tuples, tupleFromPath(p))
	}
	tr, err := Build(tuples)
	require.NoError(t, err)
	return tr
}

func collect(subject *Node) []string {
	var out []string
	for tr := range Relations(subject) {
		out = append(out, tr.String())
	}
	return out
}

func TestBuild_MergesSharedPrefixes(t *testing.T) {
	tr := buildPaths(t,
		"sub1/rel1/obj11",
		"sub1/rel1/obj12",
		"sub1/rel2/obj21",
		"sub2/rel1/obj11",
	)

	subjects := tr.Subjects()
	require.Len(t, subjects, 2)
	assert.Equal(t, "sub1", subjects[0].Name)
	assert.Equal(t, "sub2", subjects[1].Name)

	rel1 := subjects[0].Child("rel1")
	require.NotNil(t, rel1)
	assert.Len(t, rel1.Children, 2)
	assert.Equal(t, 2, rel1.Depth())
	assert.Same(t, subjects[0], rel1.Parent)

	// root + 2 subjects + 3 relations + 4 objects
	assert.Equal(t, 10, tr.Len())
	assert.Same(t, rel1, tr.Node(rel1.ID))
	assert.Nil(t, tr.Node(NodeID(99)))
}

func TestBuild_IdempotentInsert(t *testing.T) {
	once := buildPaths(t, "s/r/b/br/bo", "s/r2/o")
	twice := buildPaths(t, "s/r/b/br/bo", "s/r/b/br/bo", "s/r2/o", "s/r2/o")

	assert.Equal(t, Sprint(once.Root), Sprint(twice.Root))
	assert.Equal(t, once.Len(), twice.Len())
}

func TestBuild_EmptySubject(t *testing.T) {
	_, err := Build([]model.RelationTuple{
		{Subject: "s", Predicate: "p", Object: "o"},
		{Predicate: "p", Object: "o"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedTuple))

	var mte *MalformedTupleError
	require.True(t, errors.As(err, &mte))
	assert.Equal(t, 1, mte.Index)
}

func TestInsert_EmptySubject(t *testing.T) {
	err := New().Insert(model.RelationTuple{Predicate: "p"})

	var mte *MalformedTupleError
	require.True(t, errors.As(err, &mte))
	assert.Equal(t, -1, mte.Index)
}

func TestRelations_Simple(t *testing.T) {
	tr := buildPaths(t,
		"sub1/rel1/obj11",
		"sub1/rel1/obj12",
		"sub1/rel2/obj21",
	)

	assert.Equal(t, []string{
		"sub1 rel1 obj11",
		"sub1 rel1 obj12",
		"sub1 rel2 obj21",
	}, collect(tr.Subjects()[0]))
}

func TestRelations_NestedObjectsFirst(t *testing.T) {
	tr := buildPaths(t,
		"s/r/so/r1/o",
		"s/r/so/r2/o",
	)

	assert.Equal(t, []string{
		"so r1 o",
		"so r2 o",
		"s r so",
	}, collect(tr.Subjects()[0]))
}

func TestRelations_RelativeToAnyDepth(t *testing.T) {
	tr := buildPaths(t, "r1/r2/sub1/rel1/obj1")

	sub1 := tr.Subjects()[0].Child("r2").Child("sub1")
	require.NotNil(t, sub1)

	assert.Equal(t, []string{"sub1 rel1 obj1"}, collect(sub1))
}

func TestRelations_SkipsRelationWithoutObject(t *testing.T) {
	tr := buildPaths(t, "s/lonely", "s/r/o")

	assert.Equal(t, []string{"s r o"}, collect(tr.Subjects()[0]))
}

func TestRelations_StopsEarly(t *testing.T) {
	tr := buildPaths(t, "s/r/a", "s/r/b", "s/r/c")

	var seen []string
	for triple := range Relations(tr.Subjects()[0]) {
		seen = append(seen, triple.Object.Name)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestFprint(t *testing.T) {
	tr := buildPaths(t, "s/r/o1", "s/r/o2")

	want := strings.Join([]string{
		"root",
		"└── s",
		"    └── r",
		"        ├── o1",
		"        └── o2",
		"",
	}, "\n")
	assert.Equal(t, want, Sprint(tr.Root))
}
