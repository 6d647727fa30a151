package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
	"github.com/riskibarqy/castilla-calendar/internal/usecase"
)

const defaultTopScorerLimit = 10

type Handler struct {
	matchService    *usecase.MatchService
	calendarService *usecase.CalendarService
	statsService    *usecase.StatsService
	reconciler      *usecase.ReconcileService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	calendarService *usecase.CalendarService,
	statsService *usecase.StatsService,
	reconciler *usecase.ReconcileService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:    matchService,
		calendarService: calendarService,
		statsService:    statsService,
		reconciler:      reconciler,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCalendar")
	defer span.End()

	feed, err := h.calendarService.RenderICS(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "render calendar failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="castilla.ics"`)
	_, _ = w.Write([]byte(feed))
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	view := strings.TrimSpace(r.URL.Query().Get("view"))
	matches, err := h.matchService.List(ctx, view)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchListDTO{
		Matches: toMatchDTOs(matches, time.Now()),
		Total:   len(matches),
	})
}

func (h *Handler) GetNextMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetNextMatch")
	defer span.End()

	next, err := h.matchService.Next(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchDTO(next, time.Now()))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	m, err := h.matchService.Get(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchDTO(m, time.Now()))
}

func (h *Handler) GetSeasonStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonStats")
	defer span.End()

	stats, err := h.statsService.SeasonStats(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]competitionStatsDTO, 0, len(stats))
	for _, entry := range stats {
		out = append(out, competitionStatsDTO{
			Competition:  entry.Competition,
			Played:       entry.Played,
			Wins:         entry.Wins,
			Draws:        entry.Draws,
			Losses:       entry.Losses,
			GoalsFor:     entry.GoalsFor,
			GoalsAgainst: entry.GoalsAgainst,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListTopScorers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTopScorers")
	defer span.End()

	limit := defaultTopScorerLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(ctx, w, errInvalidLimit(raw))
			return
		}
		limit = parsed
	}

	scorers, err := h.statsService.TopScorers(ctx, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]topScorerDTO, 0, len(scorers))
	for _, scorer := range scorers {
		out = append(out, topScorerDTO{Player: scorer.Player, Goals: scorer.Goals})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatus")
	defer span.End()

	report := h.matchService.Status(ctx)
	dto := statusDTO{
		HasData:        report.HasData,
		LastRunID:      report.LastRunID,
		TotalMatches:   report.TotalMatches,
		ScheduledCount: report.ScheduledCount,
		SourceCounts:   report.SourceCounts,
	}
	if report.HasData {
		dto.UpdatedAt = report.UpdatedAt.UTC().Format(time.RFC3339)
		dto.CacheAgeSeconds = int64(report.CacheAge.Seconds())
	}
	writeSuccess(ctx, w, http.StatusOK, dto)
}

type matchListDTO struct {
	Matches []matchDTO `json:"matches"`
	Total   int        `json:"total"`
}

type matchDTO struct {
	ID            string            `json:"id"`
	Source        string            `json:"source"`
	Date          string            `json:"date"`
	KickoffLocal  string            `json:"kickoffLocal"`
	KickoffOrigin string            `json:"kickoffOrigin,omitempty"`
	HomeTeam      string            `json:"homeTeam"`
	AwayTeam      string            `json:"awayTeam"`
	Competition   string            `json:"competition,omitempty"`
	Venue         string            `json:"venue,omitempty"`
	Status        string            `json:"status"`
	HomeScore     *int              `json:"homeScore,omitempty"`
	AwayScore     *int              `json:"awayScore,omitempty"`
	ResultText    string            `json:"resultText,omitempty"`
	Goals         []goalDTO         `json:"goals,omitempty"`
	Cards         []cardDTO         `json:"cards,omitempty"`
	Substitutions []substitutionDTO `json:"substitutions,omitempty"`
	Broadcasts    []broadcastDTO    `json:"broadcasts,omitempty"`
	Referee       string            `json:"referee,omitempty"`
	Attendance    *int              `json:"attendance,omitempty"`
	Weather       *weatherDTO       `json:"weather,omitempty"`
	Statistics    *matchStatsDTO    `json:"statistics,omitempty"`
}

type goalDTO struct {
	Player string `json:"player"`
	Minute int    `json:"minute"`
	Side   string `json:"side"`
	Type   string `json:"type"`
	Assist string `json:"assist,omitempty"`
}

type cardDTO struct {
	Player string `json:"player"`
	Minute int    `json:"minute"`
	Side   string `json:"side"`
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

type substitutionDTO struct {
	PlayerIn  string `json:"playerIn"`
	PlayerOut string `json:"playerOut"`
	Minute    int    `json:"minute"`
	Side      string `json:"side"`
}

type broadcastDTO struct {
	Channel  string `json:"channel"`
	Country  string `json:"country,omitempty"`
	Language string `json:"language,omitempty"`
	Free     bool   `json:"free"`
}

type weatherDTO struct {
	Condition    string   `json:"condition,omitempty"`
	TemperatureC *float64 `json:"temperatureC,omitempty"`
}

type matchStatsDTO struct {
	HomePossession *int `json:"homePossession,omitempty"`
	AwayPossession *int `json:"awayPossession,omitempty"`
	HomeShots      *int `json:"homeShots,omitempty"`
	AwayShots      *int `json:"awayShots,omitempty"`
	HomeCorners    *int `json:"homeCorners,omitempty"`
	AwayCorners    *int `json:"awayCorners,omitempty"`
	HomeFouls      *int `json:"homeFouls,omitempty"`
	AwayFouls      *int `json:"awayFouls,omitempty"`
}

type competitionStatsDTO struct {
	Competition  string `json:"competition"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goalsFor"`
	GoalsAgainst int    `json:"goalsAgainst"`
}

type topScorerDTO struct {
	Player string `json:"player"`
	Goals  int    `json:"goals"`
}

type statusDTO struct {
	HasData         bool           `json:"hasData"`
	LastRunID       string         `json:"lastRunId,omitempty"`
	UpdatedAt       string         `json:"updatedAt,omitempty"`
	CacheAgeSeconds int64          `json:"cacheAgeSeconds"`
	TotalMatches    int            `json:"totalMatches"`
	ScheduledCount  int            `json:"scheduledCount"`
	SourceCounts    map[string]int `json:"sourceCounts,omitempty"`
}

func toMatchDTOs(matches []match.Match, now time.Time) []matchDTO {
	out := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchDTO(m, now))
	}
	return out
}

func toMatchDTO(m match.Match, now time.Time) matchDTO {
	dto := matchDTO{
		ID:           m.ID,
		Source:       m.Source,
		Date:         m.Date,
		KickoffLocal: m.KickoffLocal.Format(time.RFC3339),
		HomeTeam:     m.HomeTeam,
		AwayTeam:     m.AwayTeam,
		Competition:  m.Competition,
		Venue:        m.Venue,
		Status:       strings.ToLower(m.Status),
		HomeScore:    m.HomeScore,
		AwayScore:    m.AwayScore,
		ResultText:   m.ResultText(now),
		Referee:      m.Referee,
		Attendance:   m.Attendance,
	}
	if !m.KickoffOrigin.IsZero() {
		dto.KickoffOrigin = m.KickoffOrigin.Format(time.RFC3339)
	}
	for _, goal := range m.Goals {
		dto.Goals = append(dto.Goals, goalDTO{
			Player: goal.Player,
			Minute: goal.Minute,
			Side:   goal.Side,
			Type:   goal.Type,
			Assist: goal.Assist,
		})
	}
	for _, card := range m.Cards {
		dto.Cards = append(dto.Cards, cardDTO{
			Player: card.Player,
			Minute: card.Minute,
			Side:   card.Side,
			Type:   card.Type,
			Reason: card.Reason,
		})
	}
	for _, sub := range m.Substitutions {
		dto.Substitutions = append(dto.Substitutions, substitutionDTO{
			PlayerIn:  sub.PlayerIn,
			PlayerOut: sub.PlayerOut,
			Minute:    sub.Minute,
			Side:      sub.Side,
		})
	}
	for _, broadcast := range m.Broadcasts {
		dto.Broadcasts = append(dto.Broadcasts, broadcastDTO{
			Channel:  broadcast.Channel,
			Country:  broadcast.Country,
			Language: broadcast.Language,
			Free:     broadcast.Free,
		})
	}
	if m.Weather != nil {
		dto.Weather = &weatherDTO{
			Condition:    m.Weather.Condition,
			TemperatureC: m.Weather.TemperatureC,
		}
	}
	if m.Statistics != nil {
		dto.Statistics = &matchStatsDTO{
			HomePossession: m.Statistics.HomePossession,
			AwayPossession: m.Statistics.AwayPossession,
			HomeShots:      m.Statistics.HomeShots,
			AwayShots:      m.Statistics.AwayShots,
			HomeCorners:    m.Statistics.HomeCorners,
			AwayCorners:    m.Statistics.AwayCorners,
			HomeFouls:      m.Statistics.HomeFouls,
			AwayFouls:      m.Statistics.AwayFouls,
		}
	}
	return dto
}
