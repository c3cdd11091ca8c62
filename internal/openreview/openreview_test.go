package openreview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/bibalign/internal/config"
	"github.com/agenthands/bibalign/internal/core/model"
	"github.com/agenthands/bibalign/internal/metrics"
	"github.com/agenthands/bibalign/internal/stash"
)

func validNote(i int) model.Note {
	return model.Note{
		ID: fmt.Sprintf("n%d", i),
		Content: model.NoteContent{
			Title:     fmt.Sprintf("Paper %d", i),
			Authors:   []string{"Ann Author"},
			AuthorIDs: []string{"~Ann_Author1"},
		},
	}
}

// fakeAPI serves total notes in pages and counts requests.
type fakeAPI struct {
	total    int
	requests atomic.Int32
	logins   atomic.Int32
	profiles []model.Profile
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			http.Error(w, "bad credentials", http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
	})
	mux.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		q := r.URL.Query()
		if id := q.Get("id"); id != "" {
			_ = json.NewEncoder(w).Encode(model.Notes{Notes: []model.Note{{ID: id}}})
			return
		}
		assert.Equal(t, "~Ann_Author1", q.Get("content.authorids"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		var page []model.Note
		for i := offset; i < f.total && i < offset+limit; i++ {
			n := validNote(i)
			if i == 0 {
				n.Content.AuthorIDs = nil
			}
			page = append(page, n)
		}
		_ = json.NewEncoder(w).Encode(model.Notes{Notes: page, Count: f.total})
	})
	mux.HandleFunc("/profiles", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(model.Profiles{Profiles: f.profiles})
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeAPI, cfg config.OpenReviewConfig, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	cfg.API = srv.URL
	return NewClient(cfg, opts...)
}

func TestNotesForAuthor_Pages(t *testing.T) {
	f := &fakeAPI{total: 5}
	m := metrics.New()
	c := newTestClient(t, f, config.OpenReviewConfig{PageSize: 2}, WithMetrics(m))

	notes, err := c.NotesForAuthor(context.Background(), "~Ann_Author1")
	require.NoError(t, err)

	// note 0 has no author ids and is filtered out
	require.Len(t, notes, 4)
	assert.Equal(t, "n1", notes[0].ID)
	assert.Equal(t, int32(3), f.requests.Load())
	assert.Equal(t, float64(3), testutil.ToFloat64(m.OpenReviewRequests.WithLabelValues("notes", "200")))
}

func TestNotesForAuthor_Stashed(t *testing.T) {
	s, err := stash.Open(stash.Config{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	f := &fakeAPI{total: 3}
	c := newTestClient(t, f, config.OpenReviewConfig{}, WithStash(s))

	first, err := c.NotesForAuthor(context.Background(), "~Ann_Author1")
	require.NoError(t, err)
	second, err := c.NotesForAuthor(context.Background(), "~Ann_Author1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.requests.Load())
}

func TestNote(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, config.OpenReviewConfig{})
	n, err := c.Note(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "abc", n.ID)
}

func TestProfile_LogsInLazily(t *testing.T) {
	f := &fakeAPI{profiles: []model.Profile{{ID: "~Ann_Author1"}}}
	c := newTestClient(t, f, config.OpenReviewConfig{User: "ann@example.org", Password: "secret"})

	p, err := c.Profile(context.Background(), "ann@example.org")
	require.NoError(t, err)
	assert.Equal(t, "~Ann_Author1", p.ID)

	_, err = c.ProfileByDBLP(context.Background(), "https://dblp.org/pid/66/4867")
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.logins.Load())
}

func TestProfile_Ambiguous(t *testing.T) {
	f := &fakeAPI{profiles: []model.Profile{{ID: "~A1"}, {ID: "~A2"}}}
	c := newTestClient(t, f, config.OpenReviewConfig{User: "u", Password: "secret"})

	_, err := c.Profile(context.Background(), "~A")
	assert.True(t, errors.Is(err, ErrAmbiguous))
}

func TestLogin_Rejected(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, config.OpenReviewConfig{User: "u", Password: "wrong"})
	_, err := c.Profile(context.Background(), "~A")
	assert.ErrorContains(t, err, "failed to log in")
}

func TestProfile_NoneFound(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, config.OpenReviewConfig{User: "u", Password: "secret"})
	p, err := c.Profile(context.Background(), "~Nobody1")
	require.NoError(t, err)
	assert.Nil(t, p)
}
