package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
)

func TestGenerate_WeekendBiasAndTagging(t *testing.T) {
	t.Parallel()

	generator := testFallback(t)

	// A Monday: every generated date must land on the following weekends.
	now := time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)
	matches := generator.Generate(now, 6)

	if len(matches) != 6 {
		t.Fatalf("generated %d matches, want 6", len(matches))
	}

	seen := make(map[match.Key]struct{})
	for index, m := range matches {
		if m.Source != match.SourceFallback {
			t.Fatalf("source = %q, want fallback", m.Source)
		}
		if m.Status != match.StatusScheduled {
			t.Fatalf("status = %q, want scheduled", m.Status)
		}
		if m.HomeScore != nil || m.AwayScore != nil {
			t.Fatalf("synthetic match carries a score")
		}

		day, err := time.Parse(match.DateLayout, m.Date)
		if err != nil {
			t.Fatalf("unparseable date %q: %v", m.Date, err)
		}
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			t.Fatalf("date %s falls on %s, want weekend", m.Date, day.Weekday())
		}
		if day.Before(now) {
			t.Fatalf("generated date %s is in the past", m.Date)
		}

		key := m.Key()
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key %+v", key)
		}
		seen[key] = struct{}{}

		if err := m.Validate(); err != nil {
			t.Fatalf("generated match invalid: %v", err)
		}

		// Home and away alternate around the team.
		if index%2 == 0 && m.HomeTeam != "Real Madrid Castilla" {
			t.Fatalf("match %d should be at home, home=%q", index, m.HomeTeam)
		}
		if index%2 == 1 && m.AwayTeam != "Real Madrid Castilla" {
			t.Fatalf("match %d should be away, away=%q", index, m.AwayTeam)
		}
	}

	first := matches[0]
	if first.Date != "2025-09-20" {
		t.Fatalf("first date = %s, want the next Saturday 2025-09-20", first.Date)
	}
}

func TestGenerate_UsesConfiguredKickoffSlots(t *testing.T) {
	t.Parallel()

	generator := testFallback(t)
	matches := generator.Generate(time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC), 2)

	if matches[0].KickoffLocal.Hour() != 11 || matches[0].KickoffOrigin.Hour() != 19 {
		t.Fatalf("slot 0 hours = %d/%d, want 11/19", matches[0].KickoffLocal.Hour(), matches[0].KickoffOrigin.Hour())
	}
	if matches[1].KickoffLocal.Hour() != 5 || matches[1].KickoffOrigin.Hour() != 12 {
		t.Fatalf("slot 1 hours = %d/%d, want 5/12", matches[1].KickoffLocal.Hour(), matches[1].KickoffOrigin.Hour())
	}
}

func TestGenerate_EmptyPoolYieldsNothing(t *testing.T) {
	t.Parallel()

	display, _ := time.LoadLocation("America/Guatemala")
	origin, _ := time.LoadLocation("Europe/Madrid")
	generator := NewFallbackGenerator(FallbackConfig{
		TeamName:     "Real Madrid Castilla",
		Competitions: []FallbackCompetition{{Name: "Primera Federación"}},
		DisplayZone:  display,
		OriginZone:   origin,
	})

	if matches := generator.Generate(time.Now(), 5); matches != nil {
		t.Fatalf("expected nil for empty opponent pool, got %d matches", len(matches))
	}
}
