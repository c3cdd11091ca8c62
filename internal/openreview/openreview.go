// Package openreview is a small client for the OpenReview REST API.
//
// Requests are rate limited, paged with offset/limit and, when a stash is
// configured, cached locally so repeated alignments of the same author do
// not hit the API again.
package openreview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/agenthands/bibalign/internal/config"
	"github.com/agenthands/bibalign/internal/core/model"
	"github.com/agenthands/bibalign/internal/metrics"
	"github.com/agenthands/bibalign/internal/stash"
)

const defaultPageSize = 1000

// ErrAmbiguous is returned when a lookup expected at most one result.
var ErrAmbiguous = errors.New("openreview: more than one result")

var (
	_ NoteSource    = (*Client)(nil)
	_ ProfileSource = (*Client)(nil)
)

type Client struct {
	baseURL  string
	user     string
	password string
	pageSize int

	http    *http.Client
	limiter *rate.Limiter
	stash   *stash.Stash
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu    sync.Mutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithStash(s *stash.Stash) Option {
	return func(c *Client) { c.stash = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(cfg config.OpenReviewConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.API, "/"),
		user:     cfg.User,
		password: cfg.Password,
		pageSize: cfg.PageSize,
		http:     &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second},
		logger:   slog.Default(),
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(limit, burst)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges the configured credentials for a bearer token. Requests
// log in lazily when credentials are set, so calling Login is optional.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"id": c.user, "password": c.password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(req, "login", &out); err != nil {
		return fmt.Errorf("failed to log in to openreview: %w", err)
	}

	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return nil
}

func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" || c.user == "" {
		return token, nil
	}
	if err := c.Login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}
	u := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, endpoint, v)
}

func (c *Client) do(req *http.Request, endpoint string, v any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, "error")
		return err
	}
	defer resp.Body.Close()

	c.observe(endpoint, strconv.Itoa(resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", req.Method, endpoint, resp.Status, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) observe(endpoint, status string) {
	if c.metrics != nil {
		c.metrics.OpenReviewRequests.WithLabelValues(endpoint, status).Inc()
	}
}

// cached runs fetch unless key is already stashed.
func cached[T any](c *Client, key string, fetch func() (T, error)) (T, error) {
	var out T
	if c.stash != nil {
		ok, err := c.stash.GetJSON(key, &out)
		if err != nil {
			c.logger.Warn("stash read failed", "key", key, "error", err)
		} else if ok {
			return out, nil
		}
	}

	out, err := fetch()
	if err != nil {
		return out, err
	}
	if c.stash != nil {
		if err := c.stash.PutJSON(key, out); err != nil {
			c.logger.Warn("stash write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

// notes pages through the notes endpoint until a short page comes back.
func (c *Client) notes(ctx context.Context, params url.Values) ([]model.Note, error) {
	var all []model.Note
	for offset := 0; ; offset += c.pageSize {
		q := url.Values{}
		for k, vs := range params {
			q[k] = vs
		}
		q.Set("offset", strconv.Itoa(offset))
		q.Set("limit", strconv.Itoa(c.pageSize))

		var page model.Notes
		if err := c.get(ctx, "notes", q, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Notes...)
		if len(page.Notes) < c.pageSize {
			return all, nil
		}
	}
}

// NotesForAuthor returns the valid notes listing authorID (an OpenReview
// profile id such as ~Ann_Author1) among their authors.
func (c *Client) NotesForAuthor(ctx context.Context, authorID string) ([]model.Note, error) {
	notes, err := cached(c, "notes/author/"+authorID, func() ([]model.Note, error) {
		return c.notes(ctx, url.Values{"content.authorids": {authorID}})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notes for %s: %w", authorID, err)
	}
	valid := model.FilterValidNotes(notes)
	if dropped := len(notes) - len(valid); dropped > 0 {
		c.logger.Debug("dropped incomplete notes", "author", authorID, "count", dropped)
	}
	return valid, nil
}

// Note returns the note with the given id, or nil if there is none.
func (c *Client) Note(ctx context.Context, id string) (*model.Note, error) {
	var page model.Notes
	if err := c.get(ctx, "notes", url.Values{"id": {id}}, &page); err != nil {
		return nil, err
	}
	return atMostOne(page.Notes)
}

// Profile looks up a profile by email address or profile id.
func (c *Client) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	params := url.Values{"id": {userID}}
	if _, err := mail.ParseAddress(userID); err == nil {
		params = url.Values{"emails": {userID}}
	}
	return c.profile(ctx, params)
}

// ProfileByDBLP finds the profile that links the given dblp person page.
func (c *Client) ProfileByDBLP(ctx context.Context, dblpURL string) (*model.Profile, error) {
	return c.profile(ctx, url.Values{"dblp": {dblpURL}})
}

func (c *Client) profile(ctx context.Context, params url.Values) (*model.Profile, error) {
	profiles, err := cached(c, "profiles/"+params.Encode(), func() (model.Profiles, error) {
		var out model.Profiles
		err := c.get(ctx, "profiles", params, &out)
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return atMostOne(profiles.Profiles)
}

func atMostOne[T any](items []T) (*T, error) {
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return &items[0], nil
	}
	return nil, fmt.Errorf("%w: got %d", ErrAmbiguous, len(items))
}
