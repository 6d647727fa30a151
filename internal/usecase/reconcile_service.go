package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	"github.com/riskibarqy/castilla-calendar/internal/platform/id"
	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
	"github.com/riskibarqy/castilla-calendar/internal/source"
)

const (
	defaultAdapterTimeout = 15 * time.Second
	defaultWorkerCount    = 3
	defaultMinScheduled   = 5
)

// Snapshot is one atomically published reconciliation result. Readers
// always see either the previous complete list or the new one, never a
// half-updated mix.
type Snapshot struct {
	RunID        string
	Matches      []match.Match
	SourceCounts map[string]int
	UpdatedAt    time.Time
}

type ReconcileServiceConfig struct {
	// Adapters in priority order: authoritative APIs first, scraped
	// sites after, fallback is appended internally and always loses.
	Adapters       []source.Adapter
	Team           source.TeamQuery
	Repository     match.Repository
	Fallback       *FallbackGenerator
	AdapterTimeout time.Duration
	WorkerCount    int
	MinScheduled   int
	Logger         *logging.Logger
	IDs            *id.RandomGenerator
	Now            func() time.Time
}

// ReconcileService owns the fixture pipeline: fan out to the source
// adapters, merge and dedupe their output by source priority, top up with
// fallback fixtures when live data runs thin, persist, and publish the
// result as the new read snapshot.
type ReconcileService struct {
	adapters       []source.Adapter
	team           source.TeamQuery
	repository     match.Repository
	fallback       *FallbackGenerator
	adapterTimeout time.Duration
	workerCount    int
	minScheduled   int
	logger         *logging.Logger
	ids            *id.RandomGenerator
	now            func() time.Time

	snapshot atomic.Pointer[Snapshot]

	mu      sync.Mutex
	running bool
	pending bool
}

func NewReconcileService(cfg ReconcileServiceConfig) *ReconcileService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	adapterTimeout := cfg.AdapterTimeout
	if adapterTimeout <= 0 {
		adapterTimeout = defaultAdapterTimeout
	}
	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	minScheduled := cfg.MinScheduled
	if minScheduled <= 0 {
		minScheduled = defaultMinScheduled
	}
	ids := cfg.IDs
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &ReconcileService{
		adapters:       cfg.Adapters,
		team:           cfg.Team,
		repository:     cfg.Repository,
		fallback:       cfg.Fallback,
		adapterTimeout: adapterTimeout,
		workerCount:    workerCount,
		minScheduled:   minScheduled,
		logger:         logger,
		ids:            ids,
		now:            now,
	}
}

// Snapshot returns the last published reconciliation result, if any.
func (s *ReconcileService) Snapshot() (*Snapshot, bool) {
	snap := s.snapshot.Load()
	return snap, snap != nil
}

// RunReconciliation executes the pipeline for the configured team. At most
// one run executes at a time; a trigger arriving mid-run is coalesced into
// a single rerun after the active one finishes, and its caller gets the
// last published snapshot immediately instead of blocking.
func (s *ReconcileService) RunReconciliation(ctx context.Context) ([]match.Match, error) {
	s.mu.Lock()
	if s.running {
		s.pending = true
		s.mu.Unlock()
		if snap := s.snapshot.Load(); snap != nil {
			return snap.Matches, nil
		}
		return nil, fmt.Errorf("%w: no snapshot published yet", ErrRunInProgress)
	}
	s.running = true
	s.mu.Unlock()

	for {
		matches, err := s.runOnce(ctx)

		s.mu.Lock()
		rerun := s.pending && err == nil && ctx.Err() == nil
		s.pending = false
		if rerun {
			s.mu.Unlock()
			continue
		}
		s.running = false
		s.mu.Unlock()
		return matches, err
	}
}

func (s *ReconcileService) runOnce(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "ReconcileService.runOnce")
	defer span.End()

	runID, err := s.ids.NewID()
	if err != nil {
		runID = fmt.Sprintf("run-%d", s.now().UnixNano())
	}
	logger := s.logger.With("run_id", runID)

	started := s.now()
	lists := s.fetchAll(ctx, logger)

	merged := mergeMatchLists(lists...)
	if s.fallback != nil && countScheduled(merged) < s.minScheduled {
		synthetic := s.fallback.Generate(s.now(), s.minScheduled)
		logger.InfoContext(ctx, "fallback fixtures generated",
			"scheduled", countScheduled(merged), "minimum", s.minScheduled, "generated", len(synthetic))
		merged = mergeMatchLists(append(lists, synthetic)...)
	}
	sortChronological(merged)

	if s.repository != nil {
		// Persistence failure never hides the reconciled list from
		// readers; the snapshot still gets published below.
		if err := s.repository.UpsertMatches(ctx, merged); err != nil {
			logger.ErrorContext(ctx, "persist reconciled matches failed", "error", err)
		}
	}

	snap := &Snapshot{
		RunID:        runID,
		Matches:      merged,
		SourceCounts: countBySource(merged),
		UpdatedAt:    s.now(),
	}
	s.snapshot.Store(snap)

	logger.InfoContext(ctx, "reconciliation run finished",
		"matches", len(merged),
		"scheduled", countScheduled(merged),
		"duration_ms", s.now().Sub(started).Milliseconds())

	return merged, nil
}

// fetchAll runs every adapter on a bounded worker pool with a per-adapter
// timeout. A failing or slow adapter yields an empty list and a warning;
// it never takes the run down with it. Results keep adapter order so
// priority survives into the merge.
func (s *ReconcileService) fetchAll(ctx context.Context, logger *logging.Logger) [][]match.Match {
	lists := make([][]match.Match, len(s.adapters))
	if len(s.adapters) == 0 {
		return lists
	}

	pool, err := ants.NewPool(s.workerCount)
	if err != nil {
		logger.ErrorContext(ctx, "create adapter worker pool failed", "error", err)
		return lists
	}
	defer pool.Release()

	var fetched atomic.Int32
	var workers sync.WaitGroup
	for index, adapter := range s.adapters {
		index, adapter := index, adapter
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			adapterCtx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
			defer cancel()

			started := s.now()
			matches, fetchErr := adapter.FetchFixtures(adapterCtx, s.team)
			if fetchErr != nil {
				logger.WarnContext(ctx, "source adapter failed",
					"adapter", adapter.Name(), "error", fetchErr,
					"duration_ms", s.now().Sub(started).Milliseconds())
				return
			}
			lists[index] = matches
			fetched.Add(int32(len(matches)))
			logger.InfoContext(ctx, "source adapter fetched",
				"adapter", adapter.Name(), "matches", len(matches),
				"duration_ms", s.now().Sub(started).Milliseconds())
		}); err != nil {
			workers.Done()
			logger.WarnContext(ctx, "submit adapter fetch failed", "adapter", adapter.Name(), "error", err)
		}
	}
	workers.Wait()

	if fetched.Load() == 0 {
		logger.WarnContext(ctx, "all source adapters returned empty")
	}
	return lists
}

func countBySource(matches []match.Match) map[string]int {
	counts := make(map[string]int, 4)
	for _, m := range matches {
		counts[m.Source]++
	}
	return counts
}
