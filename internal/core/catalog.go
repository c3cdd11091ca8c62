// Package core ties reduction, alignment and the graph export together.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/bibalign/internal/core/align"
	"github.com/agenthands/bibalign/internal/core/model"
	"github.com/agenthands/bibalign/internal/core/reduce"
	"github.com/agenthands/bibalign/internal/core/repr"
	"github.com/agenthands/bibalign/internal/core/tree"
	"github.com/agenthands/bibalign/internal/driver"
	"github.com/agenthands/bibalign/internal/metrics"
	"github.com/agenthands/bibalign/internal/openreview"
)

var (
	ErrNoGraph   = errors.New("no graph driver configured")
	ErrNoSource  = errors.New("no source configured")
	ErrNoProfile = errors.New("no openreview profile links this dblp author")
)

// TupleSource fetches the dblp triples around one author.
type TupleSource interface {
	AuthorTuples(ctx context.Context, author model.DblpAuthID) ([]model.RelationTuple, error)
}

type Catalog struct {
	Driver   driver.GraphDriver
	Tuples   TupleSource
	Notes    openreview.NoteSource
	Profiles openreview.ProfileSource
	Reducer  *reduce.Reducer
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Workers  int
}

// NewCatalog returns a catalog using the default handler registry. Any of
// the collaborators may be nil; operations needing a missing one fail.
func NewCatalog(drv driver.GraphDriver, tuples TupleSource, notes openreview.NoteSource) *Catalog {
	return &Catalog{
		Driver:  drv,
		Tuples:  tuples,
		Notes:   notes,
		Reducer: reduce.New(),
		Logger:  slog.Default(),
		Workers: 8,
	}
}

func (c *Catalog) BuildIndices(ctx context.Context) error {
	if c.Driver == nil {
		return ErrNoGraph
	}
	return c.Driver.BuildIndices(ctx)
}

// ReducePublications builds the tree for tuples and reduces every subject,
// Workers at a time. Results keep subject order.
func (c *Catalog) ReducePublications(ctx context.Context, tuples []model.RelationTuple) ([]reduce.Result, error) {
	start := time.Now()
	t, err := tree.Build(tuples)
	if err != nil {
		return nil, err
	}

	subjects := t.Subjects()
	results := make([]reduce.Result, len(subjects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Workers, 1))
	for i, s := range subjects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := c.Reducer.Reduce(s)
			results[i] = reduce.Result{Subject: s.Name, Record: rec, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			c.Logger.Warn("failed to reduce subject", "subject", res.Subject, "error", res.Err)
		}
	}
	if c.Metrics != nil {
		c.Metrics.SubjectsReduced.WithLabelValues("ok").Add(float64(len(results) - failed))
		c.Metrics.SubjectsReduced.WithLabelValues("error").Add(float64(failed))
		c.Metrics.ReduceDuration.Observe(time.Since(start).Seconds())
	}
	c.Logger.Debug("reduced tuples", "tuples", len(tuples), "subjects", len(subjects), "failed", failed)
	return results, nil
}

// AuthorPublications fetches and reduces the publications of one dblp author.
func (c *Catalog) AuthorPublications(ctx context.Context, author model.DblpAuthID) ([]*repr.Publication, error) {
	if c.Tuples == nil {
		return nil, fmt.Errorf("dblp tuples: %w", ErrNoSource)
	}
	tuples, err := c.Tuples.AuthorTuples(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tuples for %s: %w", author.PID(), err)
	}
	results, err := c.ReducePublications(ctx, tuples)
	if err != nil {
		return nil, err
	}
	return reduce.Publications(results), nil
}

// ResolveOpenReviewID finds the OpenReview profile id linked to author.
func (c *Catalog) ResolveOpenReviewID(ctx context.Context, author model.DblpAuthID) (string, error) {
	if c.Profiles == nil {
		return "", fmt.Errorf("openreview profiles: %w", ErrNoSource)
	}
	p, err := c.Profiles.ProfileByDBLP(ctx, author.URI())
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", fmt.Errorf("%w: %s", ErrNoProfile, author.URI())
	}
	return p.ID, nil
}

// AlignmentRun is one alignment of an author's notes and dblp records.
type AlignmentRun struct {
	ID           string
	Author       string
	OpenReviewID string
	CreatedAt    time.Time
	Alignments   align.PublicationAlignments
}

// Align matches notes against pubs and records the outcome.
func (c *Catalog) Align(notes []model.Note, pubs []*repr.Publication) *AlignmentRun {
	if notes == nil {
		notes = []model.Note{}
	}
	if pubs == nil {
		pubs = []*repr.Publication{}
	}
	a := align.Publications(notes, pubs)
	for _, w := range a.Warnings {
		c.Logger.Warn(w.Msg, "ids", w.IDs)
	}
	if c.Metrics != nil {
		c.Metrics.AlignedKeys.WithLabelValues("matched").Add(float64(len(a.MatchedPubs)))
		c.Metrics.AlignedKeys.WithLabelValues("unmatched_notes").Add(float64(len(a.UnmatchedNotes)))
		c.Metrics.AlignedKeys.WithLabelValues("unmatched_dblp").Add(float64(len(a.UnmatchedDblps)))
		c.Metrics.AlignmentWarnings.Add(float64(len(a.Warnings)))
	}
	return &AlignmentRun{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Alignments: a,
	}
}

// AlignAuthor fetches both sides for one author and aligns them. An empty
// openreviewID is resolved through the author's profile.
func (c *Catalog) AlignAuthor(ctx context.Context, author model.DblpAuthID, openreviewID string) (*AlignmentRun, error) {
	if c.Notes == nil {
		return nil, fmt.Errorf("openreview notes: %w", ErrNoSource)
	}
	if openreviewID == "" {
		id, err := c.ResolveOpenReviewID(ctx, author)
		if err != nil {
			return nil, err
		}
		openreviewID = id
	}

	// 1. Fetch both sides concurrently
	var (
		notes []model.Note
		pubs  []*repr.Publication
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		notes, err = c.Notes.NotesForAuthor(gctx, openreviewID)
		return err
	})
	g.Go(func() error {
		var err error
		pubs, err = c.AuthorPublications(gctx, author)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 2. Align
	run := c.Align(notes, pubs)
	run.Author = author.PID()
	run.OpenReviewID = openreviewID
	c.Logger.Info("aligned author",
		"run", run.ID,
		"author", run.Author,
		"openreview", openreviewID,
		"matched", len(run.Alignments.MatchedPubs),
		"unmatched_notes", len(run.Alignments.UnmatchedNotes),
		"unmatched_dblp", len(run.Alignments.UnmatchedDblps),
	)
	return run, nil
}

// SavePublications writes pubs, their pid-bearing signatures and AUTHORED
// edges to the graph. Publications without a key are skipped.
func (c *Catalog) SavePublications(ctx context.Context, pubs []*repr.Publication) error {
	if c.Driver == nil {
		return ErrNoGraph
	}
	now := time.Now().UTC()
	for _, p := range pubs {
		if p.Key == "" {
			c.Logger.Warn("skipping publication without key", "title", p.Title)
			continue
		}
		record, err := json.Marshal(p)
		if err != nil {
			return err
		}
		params := map[string]interface{}{
			"key":        p.Key,
			"pub_type":   p.PubType,
			"title":      p.Title,
			"title_key":  align.NormalizeTitle(p.Title),
			"year":       p.Year,
			"doi":        p.DOI,
			"venue":      p.Venue,
			"url":        p.URL,
			"pages":      p.Pages,
			"record":     string(record),
			"updated_at": now,
		}
		if _, err := c.Driver.ExecuteQuery(ctx, driver.SavePublicationQuery, params); err != nil {
			return fmt.Errorf("failed to save publication %s: %w", p.Key, err)
		}

		for _, n := range append(append([]*repr.PersonName{}, p.Authors...), p.Editors...) {
			if err := c.saveSignature(ctx, p.Key, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Catalog) saveSignature(ctx context.Context, key string, n *repr.PersonName) error {
	if n.PID == "" {
		return nil
	}
	_, err := c.Driver.ExecuteQuery(ctx, driver.SaveAuthorQuery, map[string]interface{}{
		"pid":  n.PID,
		"name": n.Fullname,
	})
	if err != nil {
		return fmt.Errorf("failed to save author %s: %w", n.PID, err)
	}
	_, err = c.Driver.ExecuteQuery(ctx, driver.SaveAuthoredEdgeQuery, map[string]interface{}{
		"pid":     n.PID,
		"key":     key,
		"role":    n.NameType,
		"ordinal": n.Ordinal,
	})
	if err != nil {
		return fmt.Errorf("failed to link %s to %s: %w", n.PID, key, err)
	}
	return nil
}

// SaveAlignment writes a run, the publications and notes it saw, and an
// ALIGNED_WITH edge per matched key.
func (c *Catalog) SaveAlignment(ctx context.Context, run *AlignmentRun) error {
	if c.Driver == nil {
		return ErrNoGraph
	}
	a := run.Alignments

	_, err := c.Driver.ExecuteQuery(ctx, driver.SaveAlignmentRunQuery, map[string]interface{}{
		"uuid":            run.ID,
		"author":          run.Author,
		"created_at":      run.CreatedAt,
		"matched":         len(a.MatchedPubs),
		"unmatched_notes": len(a.UnmatchedNotes),
		"unmatched_dblp":  len(a.UnmatchedDblps),
		"warnings":        len(a.Warnings),
	})
	if err != nil {
		return fmt.Errorf("failed to save alignment run: %w", err)
	}

	pubs := make([]*repr.Publication, 0, len(a.DblpMap))
	for _, k := range sortedKeys(a.DblpMap) {
		pubs = append(pubs, a.DblpMap[k])
	}
	if err := c.SavePublications(ctx, pubs); err != nil {
		return err
	}

	for _, k := range sortedKeys(a.NoteMap) {
		n := a.NoteMap[k]
		_, err := c.Driver.ExecuteQuery(ctx, driver.SaveNoteQuery, map[string]interface{}{
			"id":      n.ID,
			"title":   n.Content.Title,
			"venue":   n.Content.Venue,
			"forum":   n.Forum,
			"authors": n.Content.Authors,
		})
		if err != nil {
			return fmt.Errorf("failed to save note %s: %w", n.ID, err)
		}
	}

	for _, k := range a.MatchedPubs.Sorted() {
		p := a.DblpMap[k]
		if p.Key == "" {
			continue
		}
		_, err := c.Driver.ExecuteQuery(ctx, driver.SaveAlignedEdgeQuery, map[string]interface{}{
			"note_id":    a.NoteMap[k].ID,
			"key":        p.Key,
			"run_id":     run.ID,
			"match_key":  k.String(),
			"created_at": run.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to save alignment edge for %s: %w", k, err)
		}
	}
	return nil
}

// StoredPublication is a publication row read back from the graph.
type StoredPublication struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Year    string `json:"year"`
	Role    string `json:"role"`
	Ordinal int64  `json:"ordinal"`
}

// StoredPublications lists the exported publications of one author.
func (c *Catalog) StoredPublications(ctx context.Context, author model.DblpAuthID) ([]StoredPublication, error) {
	if c.Driver == nil {
		return nil, ErrNoGraph
	}
	res, err := c.Driver.ExecuteQuery(ctx, driver.GetAuthorPublicationsQuery, map[string]interface{}{
		"pid": author.PID(),
	})
	if err != nil {
		return nil, err
	}

	out := make([]StoredPublication, 0, len(res.Records))
	for _, rec := range res.Records {
		m := rec.AsMap()
		sp := StoredPublication{}
		sp.Key, _ = m["key"].(string)
		sp.Title, _ = m["title"].(string)
		sp.Year, _ = m["year"].(string)
		sp.Role, _ = m["role"].(string)
		sp.Ordinal, _ = m["ordinal"].(int64)
		out = append(out, sp)
	}
	return out, nil
}

func sortedKeys[V any](m map[model.PubKey]V) []model.PubKey {
	set := make(align.KeySet, len(m))
	for k := range m {
		set[k] = struct{}{}
	}
	return set.Sorted()
}
