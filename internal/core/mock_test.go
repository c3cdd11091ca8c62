package core

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/bibalign/internal/core/model"
)

type ExecutedQuery struct {
	Query  string
	Params map[string]interface{}
}

type MockDriver struct {
	mu         sync.Mutex
	Executed   []ExecutedQuery
	MockResult neo4j.EagerResult
	Err        error
	Indexed    bool
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Executed = append(m.Executed, ExecutedQuery{Query: query, Params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	m.Indexed = true
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

// Queries returns the executed queries whose text equals query.
func (m *MockDriver) Queries(query string) []ExecutedQuery {
	var out []ExecutedQuery
	for _, q := range m.Executed {
		if q.Query == query {
			out = append(out, q)
		}
	}
	return out
}

type MockTuples struct {
	Tuples []model.RelationTuple
	Err    error
	Asked  []string
}

func (m *MockTuples) AuthorTuples(ctx context.Context, author model.DblpAuthID) ([]model.RelationTuple, error) {
	m.Asked = append(m.Asked, author.PID())
	return m.Tuples, m.Err
}

type MockNotes struct {
	Notes []model.Note
	Err   error
	Asked []string
}

func (m *MockNotes) NotesForAuthor(ctx context.Context, authorID string) ([]model.Note, error) {
	m.Asked = append(m.Asked, authorID)
	return m.Notes, m.Err
}

type MockProfiles struct {
	Result *model.Profile
}

func (m *MockProfiles) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	return m.Result, nil
}

func (m *MockProfiles) ProfileByDBLP(ctx context.Context, dblpURL string) (*model.Profile, error) {
	return m.Result, nil
}
