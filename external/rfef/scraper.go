// Package rfef scrapes the federation's public competition calendar. The
// page publishes naive Madrid wall-clock times and Spanish date formats.
package rfef

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
	"github.com/riskibarqy/castilla-calendar/internal/source"
)

const (
	defaultBaseURL = "https://www.rfef.es"
	defaultTimeout = 15 * time.Second

	dateLayout = "02/01/2006"
)

var scoreRegex = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	Competition string
	Zones       source.Zones
	Logger      *logging.Logger
}

// Scraper implements source.Adapter against the federation calendar page.
type Scraper struct {
	client      *fasthttp.Client
	baseURL     string
	timeout     time.Duration
	maxRetries  int
	competition string
	zones       source.Zones
	logger      *logging.Logger
}

func NewScraper(cfg Config) *Scraper {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	competition := strings.TrimSpace(cfg.Competition)
	if competition == "" {
		competition = "Primera Federación"
	}

	return &Scraper{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL:     baseURL,
		timeout:     timeout,
		maxRetries:  cfg.MaxRetries,
		competition: competition,
		zones:       cfg.Zones,
		logger:      logger,
	}
}

func (s *Scraper) Name() string { return match.SourceRFEF }

func (s *Scraper) FetchFixtures(ctx context.Context, team source.TeamQuery) ([]match.Match, error) {
	slug, ok := team.ProviderID(match.SourceRFEF)
	if !ok {
		return nil, crerr.New("rfef team slug is not configured")
	}

	pageURL := fmt.Sprintf("%s/es/competiciones/calendario/%s", s.baseURL, slug)
	body, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar page: %w", err)
	}

	return s.parseCalendar(ctx, team, body)
}

// fetch downloads the page with exponential backoff on rate limiting and
// transient upstream errors. Non-retryable statuses abort immediately.
func (s *Scraper) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	operation := func() ([]byte, error) {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(pageURL)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "text/html")
		req.Header.Set("Accept-Language", "es-ES,es;q=0.9")

		if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
			return nil, fmt.Errorf("send request: %w", err)
		}

		status := resp.StatusCode()
		switch {
		case status == http.StatusOK:
			body := make([]byte, len(resp.Body()))
			copy(body, resp.Body())
			return body, nil
		case source.IsRetryableStatus(status):
			return nil, fmt.Errorf("page status=%d", status)
		default:
			return nil, backoff.Permanent(fmt.Errorf("page status=%d", status))
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.maxRetries)),
		ctx,
	)

	body, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		s.logger.WarnContext(ctx, "rfef page fetch failed", "url", pageURL, "error", err)
		return nil, err
	}
	return body, nil
}

func (s *Scraper) parseCalendar(ctx context.Context, team source.TeamQuery, body []byte) ([]match.Match, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar html: %w", err)
	}

	matches := make([]match.Match, 0, 38)
	doc.Find("table.calendario tbody tr").Each(func(_ int, row *goquery.Selection) {
		mapped, ok := s.mapRow(ctx, team, row)
		if !ok {
			return
		}
		if err := mapped.Validate(); err != nil {
			s.logger.WarnContext(ctx, "rfef row rejected", "error", err)
			return
		}
		matches = append(matches, mapped)
	})

	return matches, nil
}

func (s *Scraper) mapRow(ctx context.Context, team source.TeamQuery, row *goquery.Selection) (match.Match, bool) {
	home := strings.TrimSpace(row.Find("td.local").Text())
	away := strings.TrimSpace(row.Find("td.visitante").Text())
	if !team.BelongsTo(home) && !team.BelongsTo(away) {
		return match.Match{}, false
	}

	rawDate := strings.TrimSpace(row.Find("td.fecha").Text())
	day, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		s.logger.WarnContext(ctx, "rfef row has unparseable date", "date", rawDate)
		return match.Match{}, false
	}

	hour, minute := 12, 0
	if rawTime := strings.TrimSpace(row.Find("td.hora").Text()); rawTime != "" {
		kickoff, err := time.Parse("15:04", rawTime)
		if err != nil {
			s.logger.WarnContext(ctx, "rfef row has unparseable kickoff time", "time", rawTime)
			return match.Match{}, false
		}
		hour, minute = kickoff.Hour(), kickoff.Minute()
	}

	local, origin := s.zones.FromOriginWallClock(day.Year(), day.Month(), day.Day(), hour, minute)

	homeName := team.Canonicalize(home)
	awayName := team.Canonicalize(away)
	date := s.zones.DateOf(local)

	mapped := match.Match{
		ID:            source.MatchID(match.SourceRFEF, date, homeName, awayName),
		Source:        match.SourceRFEF,
		Date:          date,
		KickoffLocal:  local,
		KickoffOrigin: origin,
		HomeTeam:      homeName,
		AwayTeam:      awayName,
		Competition:   s.competition,
		Venue:         strings.TrimSpace(row.Find("td.campo").Text()),
		Status:        match.StatusScheduled,
	}

	// A published score is the only signal the page gives that a match is
	// over. Past rows without one stay scheduled; the result is unknown.
	if parts := scoreRegex.FindStringSubmatch(strings.TrimSpace(row.Find("td.resultado").Text())); parts != nil {
		homeScore, _ := strconv.Atoi(parts[1])
		awayScore, _ := strconv.Atoi(parts[2])
		mapped.Status = match.StatusFinished
		mapped.HomeScore = &homeScore
		mapped.AwayScore = &awayScore
	}

	return mapped, true
}
