package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
)

// MatchRepository keeps the reconciled matches in process memory. It
// backs local development and tests where no database is configured.
type MatchRepository struct {
	mu      sync.RWMutex
	byID    map[string]match.Match
	ordered []string
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	repo := &MatchRepository{byID: make(map[string]match.Match, len(matches))}
	for _, m := range matches {
		repo.store(m)
	}
	return repo
}

func (r *MatchRepository) UpsertMatches(_ context.Context, matches []match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range matches {
		r.store(m)
	}
	return nil
}

func (r *MatchRepository) ListSince(_ context.Context, since time.Time) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.ordered))
	for _, id := range r.ordered {
		m := r.byID[id]
		if m.KickoffLocal.Before(since) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// store assumes the caller holds the write lock.
func (r *MatchRepository) store(m match.Match) {
	if _, exists := r.byID[m.ID]; !exists {
		r.ordered = append(r.ordered, m.ID)
	}
	r.byID[m.ID] = m
}
