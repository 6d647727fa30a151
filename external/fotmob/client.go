// Package fotmob fetches fixtures from the undocumented fotmob.com JSON API.
package fotmob

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
	"github.com/riskibarqy/castilla-calendar/internal/platform/resilience"
	"github.com/riskibarqy/castilla-calendar/internal/source"
)

const (
	defaultBaseURL     = "https://www.fotmob.com/api"
	defaultDetailLimit = 5
)

// The API rejects non-browser traffic, so requests mimic a regular browser.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "es-ES,es;q=0.9,en;q=0.8",
	"Referer":         "https://www.fotmob.com/",
}

var errFotMobTransient = crerr.New("fotmob transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	DetailLimit    int
	Zones          source.Zones
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client implements source.Adapter on top of the fotmob team and match
// detail endpoints.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	detailLimit    int
	zones          source.Zones
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	detailLimit := cfg.DetailLimit
	if detailLimit <= 0 {
		detailLimit = defaultDetailLimit
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     cfg.MaxRetries,
		detailLimit:    detailLimit,
		zones:          cfg.Zones,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string { return match.SourceFotMob }

// FetchFixtures pulls the team fixture list and hydrates the most recent
// finished matches with event-level detail. Records the provider returns
// for other clubs are filtered out; malformed records are skipped one by
// one rather than failing the whole payload.
func (c *Client) FetchFixtures(ctx context.Context, team source.TeamQuery) ([]match.Match, error) {
	teamID, err := c.resolveTeamID(ctx, team)
	if err != nil {
		return nil, err
	}

	var envelope teamEnvelope
	if err := c.doJSON(ctx, "/teams", map[string]string{"id": teamID, "tab": "fixtures"}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch team fixtures team_id=%s: %w", teamID, err)
	}

	fixtures := envelope.Fixtures.AllFixtures.Fixtures
	matches := make([]match.Match, 0, len(fixtures))
	providerIDs := make([]int64, 0, len(fixtures))
	for _, item := range fixtures {
		mapped, ok := c.mapFixture(ctx, team, item)
		if !ok {
			continue
		}
		if err := mapped.Validate(); err != nil {
			c.logger.WarnContext(ctx, "fotmob fixture rejected", "fixture_id", item.ID, "error", err)
			continue
		}
		matches = append(matches, mapped)
		providerIDs = append(providerIDs, item.ID)
	}

	c.hydrateDetails(ctx, matches, providerIDs)

	return matches, nil
}

func (c *Client) resolveTeamID(ctx context.Context, team source.TeamQuery) (string, error) {
	if id, ok := team.ProviderID(match.SourceFotMob); ok {
		return id, nil
	}

	var envelope suggestEnvelope
	if err := c.doJSON(ctx, "/searchapi/suggest", map[string]string{"term": team.CanonicalName}, &envelope); err != nil {
		return "", fmt.Errorf("search team %q: %w", team.CanonicalName, err)
	}

	for _, candidate := range envelope.Teams {
		if team.BelongsTo(candidate.Name) {
			return fmt.Sprintf("%d", candidate.ID), nil
		}
	}
	return "", fmt.Errorf("team %q not found in provider search", team.CanonicalName)
}

func (c *Client) mapFixture(ctx context.Context, team source.TeamQuery, item teamFixture) (match.Match, bool) {
	home := strings.TrimSpace(item.Home.Name)
	away := strings.TrimSpace(item.Away.Name)
	if !team.BelongsTo(home) && !team.BelongsTo(away) {
		return match.Match{}, false
	}
	if item.Status.Cancelled {
		return match.Match{}, false
	}

	instant, ok := source.ParseInstant(item.Status.UTCTime)
	if !ok {
		c.logger.WarnContext(ctx, "fotmob fixture has unparseable kickoff", "fixture_id", item.ID, "utc_time", item.Status.UTCTime)
		return match.Match{}, false
	}
	local, origin := c.zones.Localize(instant)

	status := match.StatusScheduled
	var homeScore, awayScore *int
	switch {
	case item.Status.Finished:
		status = match.StatusFinished
		homeScore = item.Home.Score
		awayScore = item.Away.Score
	case item.Status.Started:
		status = match.StatusLive
		homeScore = item.Home.Score
		awayScore = item.Away.Score
	}

	homeName := team.Canonicalize(home)
	awayName := team.Canonicalize(away)
	date := c.zones.DateOf(local)

	return match.Match{
		ID:            source.MatchID(match.SourceFotMob, date, homeName, awayName),
		Source:        match.SourceFotMob,
		Date:          date,
		KickoffLocal:  local,
		KickoffOrigin: origin,
		HomeTeam:      homeName,
		AwayTeam:      awayName,
		Competition:   strings.TrimSpace(item.Tournament.Name),
		Status:        status,
		HomeScore:     homeScore,
		AwayScore:     awayScore,
	}, true
}

// hydrateDetails attaches goals, cards, substitutions, officials and team
// statistics to the most recent finished matches. The detail endpoint is a
// separate request per match, so only a bounded slice gets hydrated.
func (c *Client) hydrateDetails(ctx context.Context, matches []match.Match, providerIDs []int64) {
	finished := make([]int, 0, len(matches))
	for index := range matches {
		if matches[index].Status == match.StatusFinished && providerIDs[index] > 0 {
			finished = append(finished, index)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		return matches[finished[i]].KickoffLocal.After(matches[finished[j]].KickoffLocal)
	})
	if len(finished) > c.detailLimit {
		finished = finished[:c.detailLimit]
	}

	for _, index := range finished {
		detail, err := c.fetchMatchDetails(ctx, providerIDs[index])
		if err != nil {
			c.logger.WarnContext(ctx, "fotmob match detail fetch failed", "provider_match_id", providerIDs[index], "error", err)
			continue
		}
		if skipped := applyMatchDetails(&matches[index], detail); skipped > 0 {
			c.logger.WarnContext(ctx, "fotmob detail events dropped for invalid minutes", "match_id", matches[index].ID, "skipped", skipped)
		}
	}
}

func (c *Client) fetchMatchDetails(ctx context.Context, providerMatchID int64) (map[string]any, error) {
	var payload map[string]any
	err := c.doJSON(ctx, "/matchDetails", map[string]string{"matchId": fmt.Sprintf("%d", providerMatchID)}, &payload)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fotmob circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: fixture provider is temporarily unavailable", errFotMobTransient)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errFotMobTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		for key, value := range browserHeaders {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFotMobTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFotMobTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case source.IsRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFotMobTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		// 429s double the wait each attempt instead of hammering the API.
		backoff := time.Duration(1<<attempt) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "fotmob request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
