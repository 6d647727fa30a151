package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
)

const (
	ViewChronological = "chronological"
	ViewRecent        = "recent"

	defaultHistoryWindow = 180 * 24 * time.Hour
)

// StatusReport summarizes the pipeline for the status endpoint.
type StatusReport struct {
	HasData        bool
	LastRunID      string
	UpdatedAt      time.Time
	CacheAge       time.Duration
	TotalMatches   int
	ScheduledCount int
	SourceCounts   map[string]int
}

type MatchServiceConfig struct {
	Reconciler    *ReconcileService
	Repository    match.Repository
	HistoryWindow time.Duration
	Logger        *logging.Logger
	Now           func() time.Time
}

// MatchService serves the read path. It prefers the last published
// snapshot and falls back to the repository when the process has not run
// a reconciliation yet (fresh boot).
type MatchService struct {
	reconciler    *ReconcileService
	repository    match.Repository
	historyWindow time.Duration
	logger        *logging.Logger
	now           func() time.Time
}

func NewMatchService(cfg MatchServiceConfig) *MatchService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	historyWindow := cfg.HistoryWindow
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &MatchService{
		reconciler:    cfg.Reconciler,
		repository:    cfg.Repository,
		historyWindow: historyWindow,
		logger:        logger,
		now:           now,
	}
}

// List returns the reconciled matches in the requested view order.
func (s *MatchService) List(ctx context.Context, view string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.List")
	defer span.End()

	switch view {
	case "", ViewChronological, ViewRecent:
	default:
		return nil, fmt.Errorf("%w: unknown view %q", ErrInvalidInput, view)
	}

	matches := s.currentMatches(ctx)
	ordered := make([]match.Match, len(matches))
	copy(ordered, matches)

	if view == ViewRecent {
		sortRecentFirst(ordered)
	} else {
		sortChronological(ordered)
	}
	return ordered, nil
}

// Next returns the first scheduled match that has not kicked off yet.
func (s *MatchService) Next(ctx context.Context) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.Next")
	defer span.End()

	now := s.now()
	matches := s.currentMatches(ctx)
	ordered := make([]match.Match, len(matches))
	copy(ordered, matches)
	sortChronological(ordered)

	for _, m := range ordered {
		if match.NormalizeStatus(m.Status) == match.StatusScheduled && m.KickoffLocal.After(now) {
			return m, nil
		}
	}
	return match.Match{}, fmt.Errorf("%w: no upcoming match", ErrNotFound)
}

// Get returns one match by its canonical id.
func (s *MatchService) Get(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.Get")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	for _, m := range s.currentMatches(ctx) {
		if m.ID == matchID {
			return m, nil
		}
	}
	return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
}

// Status reports when the pipeline last ran and what it produced.
func (s *MatchService) Status(_ context.Context) StatusReport {
	snap, ok := s.reconciler.Snapshot()
	if !ok {
		return StatusReport{}
	}
	return StatusReport{
		HasData:        true,
		LastRunID:      snap.RunID,
		UpdatedAt:      snap.UpdatedAt,
		CacheAge:       s.now().Sub(snap.UpdatedAt),
		TotalMatches:   len(snap.Matches),
		ScheduledCount: countScheduled(snap.Matches),
		SourceCounts:   snap.SourceCounts,
	}
}

func (s *MatchService) currentMatches(ctx context.Context) []match.Match {
	if snap, ok := s.reconciler.Snapshot(); ok {
		return snap.Matches
	}
	if s.repository == nil {
		return nil
	}
	matches, err := s.repository.ListSince(ctx, s.now().Add(-s.historyWindow))
	if err != nil {
		s.logger.WarnContext(ctx, "load matches from repository failed", "error", err)
		return nil
	}
	return matches
}
