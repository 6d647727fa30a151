// Package realmadrid scrapes the club's official fixture listing. The site
// is markup-stable compared to the federation page but only covers matches
// the club itself publishes.
package realmadrid

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
	"github.com/riskibarqy/castilla-calendar/internal/source"
)

const (
	defaultBaseURL = "https://www.realmadrid.com"
	defaultTimeout = 15 * time.Second

	dateLayout = "02/01/2006"
)

var scoreRegex = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)

type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Zones      source.Zones
	Logger     *logging.Logger
}

// Scraper implements source.Adapter against the official club site.
type Scraper struct {
	client     *http.Client
	baseURL    string
	maxRetries int
	zones      source.Zones
	logger     *logging.Logger
}

func NewScraper(cfg Config) *Scraper {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Scraper{
		client:     client,
		baseURL:    baseURL,
		maxRetries: cfg.MaxRetries,
		zones:      cfg.Zones,
		logger:     logger,
	}
}

func (s *Scraper) Name() string { return match.SourceRealMadrid }

func (s *Scraper) FetchFixtures(ctx context.Context, team source.TeamQuery) ([]match.Match, error) {
	path, ok := team.ProviderID(match.SourceRealMadrid)
	if !ok {
		return nil, crerr.New("realmadrid fixtures path is not configured")
	}

	doc, err := s.fetchDocument(ctx, s.baseURL+"/"+strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures page: %w", err)
	}

	matches := make([]match.Match, 0, 16)
	doc.Find("div.match-card").Each(func(_ int, card *goquery.Selection) {
		mapped, ok := s.mapCard(ctx, team, card)
		if !ok {
			return
		}
		if err := mapped.Validate(); err != nil {
			s.logger.WarnContext(ctx, "realmadrid card rejected", "error", err)
			return
		}
		matches = append(matches, mapped)
	})

	return matches, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	operation := func() (*goquery.Document, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "text/html")
		req.Header.Set("Accept-Language", "es-ES,es;q=0.9")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("send request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
			doc, parseErr := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 6<<20))
			if parseErr != nil {
				return nil, backoff.Permanent(fmt.Errorf("parse fixtures html: %w", parseErr))
			}
			return doc, nil
		case source.IsRetryableStatus(resp.StatusCode):
			return nil, fmt.Errorf("page status=%d", resp.StatusCode)
		default:
			return nil, backoff.Permanent(fmt.Errorf("page status=%d", resp.StatusCode))
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.maxRetries)),
		ctx,
	)

	doc, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		s.logger.WarnContext(ctx, "realmadrid page fetch failed", "url", pageURL, "error", err)
		return nil, err
	}
	return doc, nil
}

func (s *Scraper) mapCard(ctx context.Context, team source.TeamQuery, card *goquery.Selection) (match.Match, bool) {
	home := strings.TrimSpace(card.Find(".match-card__home").Text())
	away := strings.TrimSpace(card.Find(".match-card__away").Text())
	if !team.BelongsTo(home) && !team.BelongsTo(away) {
		return match.Match{}, false
	}

	rawDate := strings.TrimSpace(card.Find(".match-card__date").Text())
	day, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		s.logger.WarnContext(ctx, "realmadrid card has unparseable date", "date", rawDate)
		return match.Match{}, false
	}

	hour, minute := 12, 0
	if rawTime := strings.TrimSpace(card.Find(".match-card__time").Text()); rawTime != "" {
		kickoff, err := time.Parse("15:04", rawTime)
		if err != nil {
			s.logger.WarnContext(ctx, "realmadrid card has unparseable kickoff time", "time", rawTime)
			return match.Match{}, false
		}
		hour, minute = kickoff.Hour(), kickoff.Minute()
	}

	local, origin := s.zones.FromOriginWallClock(day.Year(), day.Month(), day.Day(), hour, minute)

	homeName := team.Canonicalize(home)
	awayName := team.Canonicalize(away)
	date := s.zones.DateOf(local)

	mapped := match.Match{
		ID:            source.MatchID(match.SourceRealMadrid, date, homeName, awayName),
		Source:        match.SourceRealMadrid,
		Date:          date,
		KickoffLocal:  local,
		KickoffOrigin: origin,
		HomeTeam:      homeName,
		AwayTeam:      awayName,
		Competition:   strings.TrimSpace(card.Find(".match-card__competition").Text()),
		Venue:         strings.TrimSpace(card.Find(".match-card__venue").Text()),
		Status:        match.StatusScheduled,
	}

	if parts := scoreRegex.FindStringSubmatch(strings.TrimSpace(card.Find(".match-card__score").Text())); parts != nil {
		homeScore, _ := strconv.Atoi(parts[1])
		awayScore, _ := strconv.Atoi(parts[2])
		mapped.Status = match.StatusFinished
		mapped.HomeScore = &homeScore
		mapped.AwayScore = &awayScore
	}

	return mapped, true
}
