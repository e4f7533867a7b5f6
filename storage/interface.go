package storage

import "context"

// ResultStore abstracts persistence for match results. Implementations can
// be swapped for testing (mocks) or different backends.
type ResultStore interface {
	InsertMatchResult(ctx context.Context, res MatchResult) (string, error)
	GetMatchResult(ctx context.Context, id string) (*MatchResult, error)
	ListByPlayer(ctx context.Context, playerName string, limit int) ([]MatchResult, error)
	Close()
}

// Ensure *Store implements ResultStore at compile time.
var _ ResultStore = (*Store)(nil)
