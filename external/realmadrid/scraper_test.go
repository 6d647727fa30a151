package realmadrid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
	"github.com/riskibarqy/castilla-calendar/internal/source"
)

const fixturesPage = `<!DOCTYPE html>
<html><body>
<div class="match-card">
  <span class="match-card__date">14/12/2025</span>
  <span class="match-card__time">12:00</span>
  <span class="match-card__home">Real Madrid Castilla</span>
  <span class="match-card__away">CD Tenerife B</span>
  <span class="match-card__competition">Primera Federación</span>
  <span class="match-card__venue">Estadio Alfredo Di Stéfano</span>
  <span class="match-card__score"></span>
</div>
<div class="match-card">
  <span class="match-card__date">17/09/2025</span>
  <span class="match-card__time">19:00</span>
  <span class="match-card__home">Real Madrid Castilla</span>
  <span class="match-card__away">Racing de Ferrol</span>
  <span class="match-card__competition">Primera Federación</span>
  <span class="match-card__venue">Estadio Alfredo Di Stéfano</span>
  <span class="match-card__score">0 - 1</span>
</div>
<div class="match-card">
  <span class="match-card__date">20/12/2025</span>
  <span class="match-card__time">20:00</span>
  <span class="match-card__home">Real Madrid</span>
  <span class="match-card__away">Sevilla FC</span>
  <span class="match-card__competition">LaLiga</span>
</div>
</body></html>`

func TestFetchFixtures_ParsesCards(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/es/futbol/castilla/partidos" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(fixturesPage))
	}))
	defer server.Close()

	zones, err := source.LoadZones("America/Guatemala", "Europe/Madrid")
	if err != nil {
		t.Fatalf("load zones: %v", err)
	}

	scraper := NewScraper(Config{
		BaseURL: server.URL,
		Zones:   zones,
		Logger:  logging.NewNop(),
	})

	query := source.TeamQuery{
		CanonicalName: "Real Madrid Castilla",
		ProviderIDs:   map[string]string{match.SourceRealMadrid: "es/futbol/castilla/partidos"},
	}

	matches, err := scraper.FetchFixtures(context.Background(), query)
	if err != nil {
		t.Fatalf("fetch fixtures: %v", err)
	}

	// The first-team card does not belong to Castilla and is dropped.
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	upcoming := matches[0]
	if upcoming.Status != match.StatusScheduled {
		t.Fatalf("status = %q, want scheduled", upcoming.Status)
	}
	// 12:00 Madrid winter time is 05:00 in Guatemala.
	if upcoming.KickoffLocal.Hour() != 5 {
		t.Fatalf("display hour = %d, want 5", upcoming.KickoffLocal.Hour())
	}
	if upcoming.Date != "2025-12-14" {
		t.Fatalf("date = %q", upcoming.Date)
	}

	played := matches[1]
	if played.Status != match.StatusFinished {
		t.Fatalf("status = %q, want finished", played.Status)
	}
	if played.HomeScore == nil || *played.HomeScore != 0 || played.AwayScore == nil || *played.AwayScore != 1 {
		t.Fatalf("unexpected score %v-%v", played.HomeScore, played.AwayScore)
	}
	if played.Venue != "Estadio Alfredo Di Stéfano" {
		t.Fatalf("venue = %q", played.Venue)
	}
}

func TestFetchFixtures_MissingPath(t *testing.T) {
	t.Parallel()

	zones, err := source.LoadZones("America/Guatemala", "Europe/Madrid")
	if err != nil {
		t.Fatalf("load zones: %v", err)
	}

	scraper := NewScraper(Config{Zones: zones, Logger: logging.NewNop()})

	query := source.TeamQuery{CanonicalName: "Real Madrid Castilla"}
	if _, err := scraper.FetchFixtures(context.Background(), query); err == nil {
		t.Fatalf("expected error when fixtures path is not configured")
	}
}
