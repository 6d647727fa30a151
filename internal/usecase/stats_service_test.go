package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
	"github.com/riskibarqy/castilla-calendar/internal/source"
)

func seededStatsService(t *testing.T) *StatsService {
	t.Helper()

	win := buildMatch(match.SourceFotMob, "2025-09-07", "Real Madrid Castilla", "CD Lugo", match.StatusFinished)
	win.Competition = "Primera Federación"
	win.HomeScore = intPtr(3)
	win.AwayScore = intPtr(1)
	win.Goals = []match.Goal{
		{Player: "Gonzalo García", Minute: 12, Side: match.SideHome, Type: match.GoalTypeNormal},
		{Player: "Gonzalo García", Minute: 55, Side: match.SideHome, Type: match.GoalTypePenalty},
		{Player: "Manuel Ángel", Minute: 78, Side: match.SideHome, Type: match.GoalTypeNormal},
		{Player: "Iker Losada", Minute: 84, Side: match.SideAway, Type: match.GoalTypeNormal},
	}

	loss := buildMatch(match.SourceFotMob, "2025-09-14", "Racing de Ferrol", "Real Madrid Castilla", match.StatusFinished)
	loss.Competition = "Primera Federación"
	loss.HomeScore = intPtr(2)
	loss.AwayScore = intPtr(1)
	loss.Goals = []match.Goal{
		{Player: "Manuel Ángel", Minute: 30, Side: match.SideAway, Type: match.GoalTypeNormal},
		{Player: "Álvaro Giménez", Minute: 61, Side: match.SideHome, Type: match.GoalTypeNormal},
		{Player: "Gonzalo García", Minute: 70, Side: match.SideHome, Type: match.GoalTypeOwnGoal},
	}

	cupDraw := buildMatch(match.SourceFotMob, "2025-09-21", "Real Madrid Castilla", "Zamora CF", match.StatusFinished)
	cupDraw.Competition = "Copa del Rey"
	cupDraw.HomeScore = intPtr(1)
	cupDraw.AwayScore = intPtr(1)

	pending := buildMatch(match.SourceFotMob, "2025-10-05", "Real Madrid Castilla", "Pontevedra CF", match.StatusScheduled)
	pending.Competition = "Primera Federación"

	adapter := &stubAdapter{name: match.SourceFotMob, matches: []match.Match{win, loss, cupDraw, pending}}
	reconciler := NewReconcileService(ReconcileServiceConfig{
		Adapters:     []source.Adapter{adapter},
		Team:         source.TeamQuery{CanonicalName: "Real Madrid Castilla"},
		MinScheduled: 1,
		Logger:       logging.NewNop(),
	})
	if _, err := reconciler.RunReconciliation(context.Background()); err != nil {
		t.Fatalf("seed reconciliation: %v", err)
	}

	matches := NewMatchService(MatchServiceConfig{
		Reconciler: reconciler,
		Logger:     logging.NewNop(),
		Now:        func() time.Time { return time.Date(2025, 9, 25, 0, 0, 0, 0, time.UTC) },
	})
	return NewStatsService(matches, "Real Madrid Castilla")
}

func TestSeasonStats(t *testing.T) {
	t.Parallel()

	service := seededStatsService(t)

	stats, err := service.SeasonStats(context.Background())
	if err != nil {
		t.Fatalf("season stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 competitions, got %d", len(stats))
	}

	cup := stats[0]
	if cup.Competition != "Copa del Rey" || cup.Played != 1 || cup.Draws != 1 {
		t.Fatalf("unexpected cup line: %+v", cup)
	}

	league := stats[1]
	if league.Competition != "Primera Federación" {
		t.Fatalf("unexpected competition order: %+v", stats)
	}
	if league.Played != 2 || league.Wins != 1 || league.Losses != 1 || league.Draws != 0 {
		t.Fatalf("unexpected league record: %+v", league)
	}
	if league.GoalsFor != 4 || league.GoalsAgainst != 3 {
		t.Fatalf("unexpected league goals: %+v", league)
	}
}

func TestTopScorers(t *testing.T) {
	t.Parallel()

	service := seededStatsService(t)

	scorers, err := service.TopScorers(context.Background(), 10)
	if err != nil {
		t.Fatalf("top scorers: %v", err)
	}
	// Gonzalo's own goal and the opponents' goals must not count.
	want := []TopScorer{
		{Player: "Gonzalo García", Goals: 2},
		{Player: "Manuel Ángel", Goals: 2},
	}
	if len(scorers) != len(want) {
		t.Fatalf("expected %d scorers, got %+v", len(want), scorers)
	}
	for i, scorer := range scorers {
		if scorer != want[i] {
			t.Fatalf("scorer[%d] = %+v, want %+v", i, scorer, want[i])
		}
	}
}

func TestTopScorers_Limit(t *testing.T) {
	t.Parallel()

	service := seededStatsService(t)

	scorers, err := service.TopScorers(context.Background(), 1)
	if err != nil {
		t.Fatalf("top scorers: %v", err)
	}
	if len(scorers) != 1 || scorers[0].Player != "Gonzalo García" {
		t.Fatalf("limit not applied: %+v", scorers)
	}
}
