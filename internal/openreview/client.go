package openreview

import (
	"context"

	"github.com/agenthands/bibalign/internal/core/model"
)

// NoteSource fetches the OpenReview notes of one author.
type NoteSource interface {
	NotesForAuthor(ctx context.Context, authorID string) ([]model.Note, error)
}

type ProfileSource interface {
	Profile(ctx context.Context, userID string) (*model.Profile, error)
	ProfileByDBLP(ctx context.Context, dblpURL string) (*model.Profile, error)
}
