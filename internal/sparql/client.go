package sparql

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agenthands/bibalign/internal/core/model"
)

type Client struct {
	Endpoint string
	HTTP     *http.Client
	Logger   *slog.Logger
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: timeout},
		Logger:   slog.Default(),
	}
}

// Select posts query to the endpoint and returns its decoded tuples.
func (c *Client) Select(ctx context.Context, query string) ([]model.RelationTuple, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute sparql query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sparql endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	tuples, err := DecodeResults(resp.Body)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("sparql select", "endpoint", c.Endpoint, "rows", len(tuples), "elapsed", time.Since(start))
	return tuples, nil
}

// AuthorTuples runs AuthorPublicationQuery for the given dblp author.
func (c *Client) AuthorTuples(ctx context.Context, author model.DblpAuthID) ([]model.RelationTuple, error) {
	q, err := AuthorPublicationQuery(author.URI())
	if err != nil {
		return nil, err
	}
	return c.Select(ctx, q)
}
