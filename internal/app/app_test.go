package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/bibalign/internal/config"
	"github.com/agenthands/bibalign/internal/core"
	"github.com/agenthands/bibalign/internal/logging"
)

func TestNew_WithoutGraph(t *testing.T) {
	cfg := config.Default()
	cfg.Stash.InMemory = true
	cfg.Concurrency.ReduceWorkers = 3

	a, err := New(context.Background(), cfg, logging.Discard(), Options{})
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.Nil(t, a.Catalog.Driver)
	assert.Same(t, a.Sparql, a.Catalog.Tuples)
	assert.Same(t, a.OpenReview, a.Catalog.Notes)
	assert.Equal(t, 3, a.Catalog.Workers)
	assert.NotNil(t, a.stash)

	assert.ErrorIs(t, a.Catalog.BuildIndices(context.Background()), core.ErrNoGraph)
}

func TestNew_NoStash(t *testing.T) {
	a, err := New(context.Background(), config.Default(), logging.Discard(), Options{NoStash: true})
	require.NoError(t, err)
	assert.Nil(t, a.stash)
	assert.NoError(t, a.Close(context.Background()))
}
