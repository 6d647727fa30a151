package match

import (
	"context"
	"time"
)

// Repository stores reconciled matches. UpsertMatches replaces each match
// wholesale, including its sub-entities; there is no partial-field patching.
type Repository interface {
	UpsertMatches(ctx context.Context, matches []Match) error
	ListSince(ctx context.Context, since time.Time) ([]Match, error)
}
