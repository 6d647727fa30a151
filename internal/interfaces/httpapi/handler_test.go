package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
	"github.com/riskibarqy/castilla-calendar/internal/source"
	"github.com/riskibarqy/castilla-calendar/internal/usecase"
)

const testJobToken = "job-secret"

type fixedAdapter struct {
	matches []match.Match
}

func (a *fixedAdapter) Name() string { return match.SourceFotMob }

func (a *fixedAdapter) FetchFixtures(_ context.Context, _ source.TeamQuery) ([]match.Match, error) {
	return append([]match.Match(nil), a.matches...), nil
}

func intPtr(v int) *int { return &v }

func testMatches() []match.Match {
	kickoff := func(date string, hour int) time.Time {
		day, _ := time.Parse("2006-01-02", date)
		return day.Add(time.Duration(hour) * time.Hour)
	}
	finished := match.Match{
		ID:           "fotmob:2025-09-17:real-madrid-castilla:racing-de-ferrol",
		Source:       match.SourceFotMob,
		Date:         "2025-09-17",
		KickoffLocal: kickoff("2025-09-17", 11),
		HomeTeam:     "Real Madrid Castilla",
		AwayTeam:     "Racing de Ferrol",
		Competition:  "Primera Federación",
		Status:       match.StatusFinished,
		HomeScore:    intPtr(0),
		AwayScore:    intPtr(1),
	}
	upcoming := match.Match{
		ID:           "fotmob:2025-10-05:cd-lugo:real-madrid-castilla",
		Source:       match.SourceFotMob,
		Date:         "2025-10-05",
		KickoffLocal: kickoff("2025-10-05", 11),
		HomeTeam:     "CD Lugo",
		AwayTeam:     "Real Madrid Castilla",
		Competition:  "Primera Federación",
		Status:       match.StatusScheduled,
	}
	return []match.Match{finished, upcoming}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	reconciler := usecase.NewReconcileService(usecase.ReconcileServiceConfig{
		Adapters:     []source.Adapter{&fixedAdapter{matches: testMatches()}},
		Team:         source.TeamQuery{CanonicalName: "Real Madrid Castilla"},
		MinScheduled: 1,
		Logger:       logging.NewNop(),
	})
	if _, err := reconciler.RunReconciliation(context.Background()); err != nil {
		t.Fatalf("seed reconciliation: %v", err)
	}

	now := func() time.Time { return time.Date(2025, 9, 25, 12, 0, 0, 0, time.UTC) }
	matchService := usecase.NewMatchService(usecase.MatchServiceConfig{
		Reconciler: reconciler,
		Logger:     logging.NewNop(),
		Now:        now,
	})
	calendarService := usecase.NewCalendarService(matchService, "Real Madrid Castilla", now)
	statsService := usecase.NewStatsService(matchService, "Real Madrid Castilla")

	handler := NewHandler(matchService, calendarService, statsService, reconciler, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), true, []string{"*"}, testJobToken)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestListMatches_Endpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	matches, _ := data["matches"].([]any)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	first, _ := matches[0].(map[string]any)
	if got, _ := first["status"].(string); got != "finished" {
		t.Fatalf("status must be lowercase in JSON, got %q", got)
	}
	if got, _ := first["date"].(string); got != "2025-09-17" {
		t.Fatalf("default order must be chronological, got first date %q", got)
	}
	if got, _ := first["resultText"].(string); got != "0-1" {
		t.Fatalf("finished match must carry resultText, got %q", got)
	}
}

func TestToMatchDTO_ResultText(t *testing.T) {
	now := time.Date(2025, 9, 25, 12, 0, 0, 0, time.UTC)
	matches := testMatches()

	finished := toMatchDTO(matches[0], now)
	if finished.ResultText != "0-1" {
		t.Fatalf("unexpected resultText for scored match: %q", finished.ResultText)
	}

	upcoming := toMatchDTO(matches[1], now)
	if upcoming.ResultText != "" {
		t.Fatalf("future match must not carry resultText, got %q", upcoming.ResultText)
	}

	stale := matches[1]
	stale.KickoffLocal = now.Add(-48 * time.Hour)
	if got := toMatchDTO(stale, now).ResultText; got != match.ResultUnknown {
		t.Fatalf("past unscored match must mark the result unknown, got %q", got)
	}
}

func TestListMatches_UnknownViewRejected(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches?view=sideways", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetNextMatch_Endpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/next", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["date"].(string); got != "2025-10-05" {
		t.Fatalf("unexpected next match date %q", got)
	}
}

func TestGetMatch_NotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/unknown-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetCalendar_Endpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/calendar.ics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/calendar") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "BEGIN:VCALENDAR\r\n") {
		t.Fatalf("body is not an iCalendar feed:\n%s", rec.Body.String())
	}
}

func TestListTopScorers_InvalidLimit(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/season/top-scorers?limit=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetStatus_Endpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["hasData"].(bool); !got {
		t.Fatalf("expected hasData=true, got %v", data)
	}
	if got, _ := data["totalMatches"].(float64); got != 2 {
		t.Fatalf("expected 2 total matches, got %v", data["totalMatches"])
	}
}

func TestRunRefreshJob_RequiresToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestRunRefreshJob_Endpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/refresh", strings.NewReader(`{"reason":"manual check"}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "completed" {
		t.Fatalf("unexpected job status %v", data)
	}
	if got, _ := data["totalMatches"].(float64); got != 2 {
		t.Fatalf("unexpected total %v", data["totalMatches"])
	}
}
