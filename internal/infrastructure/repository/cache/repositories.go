package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	basecache "github.com/riskibarqy/castilla-calendar/internal/platform/cache"
)

// MatchRepository wraps another match repository with a read-through
// cache. Writes pass straight through and invalidate every cached list,
// so a reconciliation run is visible on the next read.
type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) UpsertMatches(ctx context.Context, matches []match.Match) error {
	if err := r.next.UpsertMatches(ctx, matches); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "match:")
	return nil
}

func (r *MatchRepository) ListSince(ctx context.Context, since time.Time) ([]match.Match, error) {
	key := "match:since:" + strconv.FormatInt(since.Unix(), 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListSince(ctx, since)
		if err != nil {
			return nil, err
		}
		return append([]match.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return append([]match.Match(nil), items...), nil
}
