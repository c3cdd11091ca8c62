package sparql

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/bibalign/internal/core/model"
)

const resultsJSON = `{
  "head": {"vars": ["sub", "pred", "obj", "bpred", "bobj"]},
  "results": {"bindings": [
    {"sub": {"type": "uri", "value": "https://dblp.org/rec/conf/acl/DruckGG11"},
     "pred": {"type": "literal", "value": "isA"},
     "obj": {"type": "uri", "value": "https://dblp.org/rdf/schema#Inproceedings"}},
    {"sub": {"type": "uri", "value": "https://dblp.org/rec/conf/acl/DruckGG11"},
     "pred": {"type": "uri", "value": "https://dblp.org/rdf/schema#hasSignature"},
     "obj": {"type": "bnode", "value": "b8"},
     "bpred": {"type": "uri", "value": "https://dblp.org/rdf/schema#signatureDblpName"},
     "bobj": {"type": "literal", "value": "Gregory Druck"}}
  ]}
}`

func TestAuthorPublicationQuery(t *testing.T) {
	q, err := AuthorPublicationQuery("https://dblp.org/pid/66/4867")
	require.NoError(t, err)
	assert.Contains(t, q, "?sub dblp:authoredBy <https://dblp.org/pid/66/4867> .")
	assert.Equal(t, 3, strings.Count(q, "UNION"))

	_, err = AuthorPublicationQuery("https://x> . ?s ?p <y")
	assert.Error(t, err)
}

func TestDecodeResults(t *testing.T) {
	tuples, err := DecodeResults(strings.NewReader(resultsJSON))
	require.NoError(t, err)
	require.Len(t, tuples, 2)

	assert.Equal(t, model.RelationTuple{
		Subject:   "https://dblp.org/rec/conf/acl/DruckGG11",
		Predicate: "isA",
		Object:    "https://dblp.org/rdf/schema#Inproceedings",
	}, tuples[0])
	assert.Equal(t, "Gregory Druck", tuples[1].BlankObject)
}

func TestDecodeResults_MissingVariable(t *testing.T) {
	_, err := DecodeResults(strings.NewReader(`{"head":{"vars":[]},"results":{"bindings":[{"sub":{"value":"s"}}]}}`))
	assert.ErrorContains(t, err, `missing variable "pred"`)
}

func TestTuplesRoundTrip(t *testing.T) {
	in := []model.RelationTuple{
		{Subject: "s", Predicate: "p", Object: "o"},
		{Subject: "s", Predicate: "p", Object: "b", BlankPredicate: "bp", BlankObject: "bo"},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeTuples(&buf, in))
	assert.NotContains(t, strings.Split(buf.String(), "\n")[0], "bpred")

	out, err := DecodeTuples(strings.NewReader(buf.String() + "\n"))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeTuples_BadLine(t *testing.T) {
	_, err := DecodeTuples(strings.NewReader("{\"sub\":\"s\"}\nnot json\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestDecodeTuples_BlankLines(t *testing.T) {
	in := "{\"sub\":\"s1\",\"pred\":\"p\",\"obj\":\"o\"}\r\n  \r\n\t\n{\"sub\":\"s2\",\"pred\":\"p\",\"obj\":\"o\"}\n   "
	tuples, err := DecodeTuples(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, tuples, 2)
	assert.Equal(t, "s2", tuples[1].Subject)
}

func TestClient_Select(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("query")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(resultsJSON))
	}))
	defer srv.Close()

	id, err := model.ParseDblpAuthID("66/4867")
	require.NoError(t, err)

	c := NewClient(srv.URL, 5*time.Second)
	tuples, err := c.AuthorTuples(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, tuples, 2)
	assert.Contains(t, gotQuery, "<https://dblp.org/pid/66/4867>")
}

func TestClient_SelectError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "parse error", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Select(context.Background(), "SELECT")
	assert.ErrorContains(t, err, "400")
}
