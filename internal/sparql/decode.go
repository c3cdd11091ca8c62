package sparql

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/agenthands/bibalign/internal/core/model"
)

// Binding is one bound variable of a SPARQL JSON result row.
type Binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Results is the SPARQL 1.1 query results JSON document.
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]Binding `json:"bindings"`
	} `json:"results"`
}

// Tuples converts rows into relation tuples. Rows without sub, pred or obj
// are rejected.
func (r *Results) Tuples() ([]model.RelationTuple, error) {
	tuples := make([]model.RelationTuple, 0, len(r.Results.Bindings))
	for i, row := range r.Results.Bindings {
		var t model.RelationTuple
		for _, v := range []struct {
			name string
			dst  *string
		}{
			{"sub", &t.Subject},
			{"pred", &t.Predicate},
			{"obj", &t.Object},
		} {
			b, ok := row[v.name]
			if !ok {
				return nil, fmt.Errorf("row %d: missing variable %q", i, v.name)
			}
			*v.dst = b.Value
		}
		t.BlankPredicate = row["bpred"].Value
		t.BlankObject = row["bobj"].Value
		tuples = append(tuples, t)
	}
	return tuples, nil
}

// DecodeResults reads a SPARQL JSON results document and returns its tuples.
func DecodeResults(r io.Reader) ([]model.RelationTuple, error) {
	var res Results
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode sparql results: %w", err)
	}
	return res.Tuples()
}

// DecodeTuples reads one JSON tuple object per line, as written by
// EncodeTuples. Blank lines are skipped.
func DecodeTuples(r io.Reader) ([]model.RelationTuple, error) {
	var tuples []model.RelationTuple
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(bytes.TrimSpace(b)) == 0 {
			continue
		}
		var t model.RelationTuple
		if err := json.Unmarshal(b, &t); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tuples = append(tuples, t)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tuples, nil
}

// EncodeTuples writes tuples as JSON lines.
func EncodeTuples(w io.Writer, tuples []model.RelationTuple) error {
	enc := json.NewEncoder(w)
	for _, t := range tuples {
		if err := enc.Encode(t); err != nil {
			return err
		}
	}
	return nil
}
