package reduce

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/bibalign/internal/core/handlers"
	"github.com/agenthands/bibalign/internal/core/model"
	"github.com/agenthands/bibalign/internal/core/repr"
	"github.com/agenthands/bibalign/internal/core/tree"
)

const (
	schema   = "https://dblp.org/rdf/schema#"
	datacite = "http://purl.org/spar/datacite/"
	druck    = "https://dblp.org/rec/conf/acl/DruckGG11"
)

func tuple(s, p, o string, blank ...string) model.RelationTuple {
	t := model.RelationTuple{Subject: s, Predicate: p, Object: o}
	if len(blank) == 2 {
		t.BlankPredicate, t.BlankObject = blank[0], blank[1]
	}
	return t
}

func signatureTuples(subject, blank, name, ordinal string) []model.RelationTuple {
	return []model.RelationTuple{
		tuple(subject, schema+"hasSignature", blank, schema+"signatureDblpName", name),
		tuple(subject, schema+"hasSignature", blank, schema+"signatureOrdinal", ordinal),
		tuple(subject, schema+"hasSignature", blank, "isA", schema+"AuthorSignature"),
	}
}

func identifierTuples(subject, blank, scheme, value string) []model.RelationTuple {
	return []model.RelationTuple{
		tuple(subject, datacite+"hasIdentifier", blank, "isA", datacite+"ResourceIdentifier"),
		tuple(subject, datacite+"hasIdentifier", blank, "http://purl.org/spar/literal/hasLiteralValue", value),
		tuple(subject, datacite+"hasIdentifier", blank, datacite+"usesIdentifierScheme", datacite+scheme),
	}
}

func reduceOne(t *testing.T, tuples ...[]model.RelationTuple) (repr.Record, error) {
	t.Helper()
	var all []model.RelationTuple
	for _, ts := range tuples {
		all = append(all, ts...)
	}
	tr, err := tree.Build(all)
	require.NoError(t, err)
	require.Len(t, tr.Subjects(), 1)
	return New().Reduce(tr.Subjects()[0])
}

func TestReduce_TwoSignatures(t *testing.T) {
	rec, err := reduceOne(t,
		[]model.RelationTuple{tuple("P1", "isA", schema+"Inproceedings")},
		signatureTuples("P1", "b1", "Ann Author", "1"),
		signatureTuples("P1", "b2", "Bob Author", "2"),
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"pub_type": "Inproceedings",
		"author": []map[string]any{
			{"name_type": "author", "fullname": "Ann Author", "ordinal": 1},
			{"name_type": "author", "fullname": "Bob Author", "ordinal": 2},
		},
	}, rec.Map())
}

func TestReduce_AuthorOrderFollowsSignatures(t *testing.T) {
	rec, err := reduceOne(t,
		[]model.RelationTuple{tuple("P", "isA", schema+"Article")},
		signatureTuples("P", "b9", "Zed", "1"),
		signatureTuples("P", "b1", "Amy", "2"),
		signatureTuples("P", "b5", "Max", "3"),
	)
	require.NoError(t, err)

	pub := rec.(*repr.Publication)
	require.Len(t, pub.Authors, 3)
	var names []string
	for _, a := range pub.Authors {
		names = append(names, a.Fullname)
	}
	assert.Equal(t, []string{"Zed", "Amy", "Max"}, names)
}

func TestReduce_AuthorOrderIgnoresOtherBranches(t *testing.T) {
	rec, err := reduceOne(t,
		identifierTuples("P", "i0", "dblp-record", "journals/x/ZAM"),
		[]model.RelationTuple{
			tuple("P", schema+"title", "Interleaved"),
			tuple("P", schema+"hasSignature", "b9", schema+"signatureDblpName", "Zed"),
			tuple("P", schema+"publishedIn", "JMLR"),
			tuple("P", schema+"hasSignature", "b1", schema+"signatureDblpName", "Amy"),
			tuple("P", "isA", schema+"Article"),
			tuple("P", datacite+"hasIdentifier", "i1", "isA", datacite+"ResourceIdentifier"),
			tuple("P", schema+"hasSignature", "b5", schema+"signatureDblpName", "Max"),
			tuple("P", schema+"yearOfPublication", "2020"),
		},
		signatureTuples("P", "b5", "Max", "3"),
		signatureTuples("P", "b1", "Amy", "2"),
		signatureTuples("P", "b9", "Zed", "1"),
	)
	require.NoError(t, err)

	pub := rec.(*repr.Publication)
	var names []string
	for _, a := range pub.Authors {
		names = append(names, a.Fullname)
	}
	assert.Equal(t, []string{"Zed", "Amy", "Max"}, names)
	assert.Equal(t, "Interleaved", pub.Title)
	assert.Equal(t, "DBLP:journals/x/ZAM", pub.Key)
}

func TestReduce_PubTypeRoundTrip(t *testing.T) {
	for _, typ := range []string{"Publication", "Book", "Article", "Inproceedings", "Incollection", "Informal"} {
		rec, err := reduceOne(t, []model.RelationTuple{
			tuple("P", "isA", schema+typ),
			tuple("P", schema+"title", "T"),
		})
		require.NoError(t, err, typ)
		assert.Equal(t, typ, rec.Map()["pub_type"], typ)
	}
}

func TestReduce_SubtypeWinsOverPublication(t *testing.T) {
	for _, order := range [][]string{
		{"Publication", "Inproceedings"},
		{"Inproceedings", "Publication"},
	} {
		rec, err := reduceOne(t, []model.RelationTuple{
			tuple("P", "isA", schema+order[0]),
			tuple("P", "isA", schema+order[1]),
		})
		require.NoError(t, err)
		assert.Equal(t, "Inproceedings", rec.(*repr.Publication).PubType, order)
	}
}

func TestReduce_FirstVenueWins(t *testing.T) {
	rec, err := reduceOne(t, []model.RelationTuple{
		tuple("P", "isA", schema+"Inproceedings"),
		tuple("P", schema+"publishedIn", "ACL"),
		tuple("P", schema+"publishedIn", "ACL (Short Papers)"),
		tuple("P", schema+"title", "First"),
		tuple("P", schema+"title", "Second"),
	})
	require.NoError(t, err)

	pub := rec.(*repr.Publication)
	assert.Equal(t, "ACL", pub.Venue)
	assert.Equal(t, "Second", pub.Title)
}

func TestReduce_DBLPKeyPreferred(t *testing.T) {
	base := []model.RelationTuple{tuple(druck, "isA", schema+"Inproceedings")}
	dblp := identifierTuples(druck, "b0", "dblp-record", "conf/acl/DruckGG11")
	doi := identifierTuples(druck, "b1", "doi", "10.5555/2002472")

	for name, order := range map[string][][]model.RelationTuple{
		"dblp first": {base, dblp, doi},
		"doi first":  {base, doi, dblp},
	} {
		rec, err := reduceOne(t, order...)
		require.NoError(t, err, name)
		assert.Equal(t, "DBLP:conf/acl/DruckGG11", rec.(*repr.Publication).Key, name)
	}
}

func TestReduce_DruckGG11(t *testing.T) {
	rec, err := reduceOne(t,
		[]model.RelationTuple{
			tuple(druck, "isA", schema+"Publication"),
			tuple(druck, "isA", schema+"Inproceedings"),
			tuple(druck, schema+"title", "Learning from Labeled Features using Generalized Expectation Criteria."),
			tuple(druck, schema+"yearOfPublication", "2011"),
			tuple(druck, schema+"publishedIn", "ACL"),
			tuple(druck, schema+"primarydocumentPage", "https://aclanthology.org/P11-1060"),
			tuple(druck, schema+"pagination", "595-604"),
			tuple(druck, schema+"bibtexType", "http://purl.org/net/nknouf/ns/bibtex#Inproceedings"),
			tuple(druck, schema+"hasSignature", "b8", schema+"signatureCreator", "https://dblp.org/pid/66/4867"),
		},
		signatureTuples(druck, "b8", "Gregory Druck", "1"),
		identifierTuples(druck, "b0", "dblp-record", "conf/acl/DruckGG11"),
	)
	require.NoError(t, err)

	m := rec.Map()
	assert.Equal(t, "Inproceedings", m["pub_type"])
	assert.Equal(t, "DBLP:conf/acl/DruckGG11", m["key"])
	assert.Equal(t, "2011", m["year"])
	assert.Equal(t, "ACL", m["venue"])
	assert.Equal(t, "595-604", m["pages"])
	assert.Equal(t, "https://aclanthology.org/P11-1060", m["url"])
	assert.Equal(t, []map[string]any{
		{"name_type": "author", "fullname": "Gregory Druck", "ordinal": 1, "pid": "66/4867"},
	}, m["author"])
}

func TestReduce_MissingRootRecord(t *testing.T) {
	_, err := reduceOne(t, []model.RelationTuple{
		tuple("P", schema+"title", "Untyped"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRootRecord))

	var mre *MissingRootRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, "P", mre.Subject)
}

func TestReduce_UntypedSignatureIsDropped(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tr, err := tree.Build([]model.RelationTuple{
		tuple("P", "isA", schema+"Article"),
		tuple("P", schema+"hasSignature", "b1", schema+"signatureDblpName", "Nobody"),
	})
	require.NoError(t, err)

	rec, err := New(WithLogger(logger)).Reduce(tr.Subjects()[0])
	require.NoError(t, err)
	assert.Empty(t, rec.(*repr.Publication).Authors)
	assert.Contains(t, buf.String(), "dropped update for untyped node")
}

func TestReduce_UnknownIdentifierSchemeIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tr, err := tree.Build(append(
		[]model.RelationTuple{tuple("P", "isA", schema+"Article")},
		identifierTuples("P", "b0", "isbn-13", "978-3-16")...,
	))
	require.NoError(t, err)

	rec, err := New(WithLogger(logger)).Reduce(tr.Subjects()[0])
	require.NoError(t, err)
	assert.Empty(t, rec.(*repr.Publication).Key)
	assert.Contains(t, buf.String(), "dropped identifier with unknown scheme")
	assert.Contains(t, buf.String(), "978-3-16")
}

func TestReduce_UnknownVocabularyIgnored(t *testing.T) {
	rec, err := reduceOne(t, []model.RelationTuple{
		tuple("P", "isA", schema+"Article"),
		tuple("P", "isA", schema+"SomethingNew"),
		tuple("P", schema+"wikidata", "Q42"),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"pub_type": "Article"}, rec.Map())
}

func TestReduce_CustomRegistry(t *testing.T) {
	reg := handlers.NewRegistry()
	reg.Register(handlers.IsA, "Thing", func(handlers.Env, *tree.Node, *tree.Node) repr.Op {
		return repr.Init(repr.NewResourceIdentifier())
	})

	tr, err := tree.Build([]model.RelationTuple{tuple("X", "isA", "ex#Thing")})
	require.NoError(t, err)

	rec, err := New(WithRegistry(reg)).Reduce(tr.Subjects()[0])
	require.NoError(t, err)
	assert.Equal(t, repr.KindResourceIdentifier, rec.Kind())
}

func TestReduceAll(t *testing.T) {
	tr, err := tree.Build([]model.RelationTuple{
		tuple("A", "isA", schema+"Article"),
		tuple("B", schema+"title", "no type"),
		tuple("C", "isA", schema+"Book"),
	})
	require.NoError(t, err)

	results := New().ReduceAll(tr)
	require.Len(t, results, 3)
	assert.Equal(t, "A", results[0].Subject)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrMissingRootRecord)
	assert.NoError(t, results[2].Err)

	pubs := Publications(results)
	require.Len(t, pubs, 2)
	assert.Equal(t, "Book", pubs[1].PubType)
}
