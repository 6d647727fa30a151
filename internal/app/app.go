package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/castilla-calendar/external/fotmob"
	"github.com/riskibarqy/castilla-calendar/external/realmadrid"
	"github.com/riskibarqy/castilla-calendar/external/rfef"
	"github.com/riskibarqy/castilla-calendar/internal/config"
	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	cacherepo "github.com/riskibarqy/castilla-calendar/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/castilla-calendar/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/castilla-calendar/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/castilla-calendar/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/castilla-calendar/internal/platform/cache"
	idgen "github.com/riskibarqy/castilla-calendar/internal/platform/id"
	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
	"github.com/riskibarqy/castilla-calendar/internal/platform/resilience"
	"github.com/riskibarqy/castilla-calendar/internal/source"
	"github.com/riskibarqy/castilla-calendar/internal/usecase"
)

// Application bundles the HTTP server with the background reconciliation
// loop so main only has to start, wait, and stop.
type Application struct {
	Server     *http.Server
	Reconciler *usecase.ReconcileService

	cfg    config.Config
	logger *logging.Logger
	db     *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	zones, err := source.LoadZones(cfg.DisplayTimezone, cfg.OriginTimezone)
	if err != nil {
		return nil, err
	}

	var db *sqlx.DB
	var repo match.Repository
	if cfg.DBURL != "" {
		db, err = openDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		repo = postgres.NewMatchRepository(db)
	} else {
		logger.Warn("DB_URL empty, using in-memory repository")
		repo = memory.NewMatchRepository(nil)
	}
	if cfg.CacheEnabled {
		repo = cacherepo.NewMatchRepository(repo, basecache.NewStore(cfg.CacheTTL))
	}

	adapters, err := buildAdapters(cfg, zones, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	team := source.TeamQuery{
		CanonicalName: cfg.TeamName,
		Aliases:       cfg.TeamAliases,
		ProviderIDs: map[string]string{
			match.SourceFotMob:     cfg.FotMobTeamID,
			match.SourceRFEF:       cfg.RFEFCalendarSlug,
			match.SourceRealMadrid: cfg.RealMadridFixturesPath,
		},
	}

	fallback := usecase.NewFallbackGenerator(usecase.FallbackConfig{
		TeamName:  cfg.TeamName,
		HomeVenue: cfg.FallbackHomeVenue,
		Competitions: []usecase.FallbackCompetition{
			{
				Name:      cfg.FallbackCompetition,
				Opponents: cfg.FallbackOpponents,
				Slots:     fallbackSlots(cfg.FallbackKickoffSlots),
			},
		},
		DisplayZone: zones.Display,
		OriginZone:  zones.Origin,
	})

	reconciler := usecase.NewReconcileService(usecase.ReconcileServiceConfig{
		Adapters:       adapters,
		Team:           team,
		Repository:     repo,
		Fallback:       fallback,
		AdapterTimeout: cfg.AdapterTimeout,
		WorkerCount:    cfg.ReconcileWorkerCount,
		MinScheduled:   cfg.MinScheduledThreshold,
		Logger:         logger,
		IDs:            idgen.NewRandomGenerator(),
	})

	matchSvc := usecase.NewMatchService(usecase.MatchServiceConfig{
		Reconciler: reconciler,
		Repository: repo,
		Logger:     logger,
	})
	calendarSvc := usecase.NewCalendarService(matchSvc, cfg.TeamName, nil)
	statsSvc := usecase.NewStatsService(matchSvc, cfg.TeamName)

	handler := httpapi.NewHandler(matchSvc, calendarSvc, statsSvc, reconciler, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Application{
		Server:     server,
		Reconciler: reconciler,
		cfg:        cfg,
		logger:     logger,
		db:         db,
	}, nil
}

// RunScheduler reconciles once immediately, then on every tick until the
// context is canceled. Failures are logged and retried on the next tick;
// a run already in flight coalesces inside the service.
func (a *Application) RunScheduler(ctx context.Context) {
	run := func() {
		matches, err := a.Reconciler.RunReconciliation(ctx)
		if err != nil {
			if crerr.Is(err, usecase.ErrRunInProgress) {
				return
			}
			a.logger.ErrorContext(ctx, "scheduled reconciliation failed", "error", err)
			return
		}
		a.logger.InfoContext(ctx, "scheduled reconciliation completed",
			"total_matches", len(matches),
		)
	}

	run()

	ticker := time.NewTicker(a.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// Close releases resources the application holds besides the HTTP server.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func buildAdapters(cfg config.Config, zones source.Zones, logger *logging.Logger) ([]source.Adapter, error) {
	available := map[string]source.Adapter{}

	if cfg.FotMobEnabled {
		available[match.SourceFotMob] = fotmob.NewClient(fotmob.ClientConfig{
			BaseURL:     cfg.FotMobBaseURL,
			Timeout:     cfg.FotMobTimeout,
			MaxRetries:  cfg.FotMobMaxRetries,
			DetailLimit: cfg.FotMobDetailLimit,
			Zones:       zones,
			Logger:      logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FotMobCircuitEnabled,
				FailureThreshold: cfg.FotMobCircuitFailureCount,
				OpenTimeout:      cfg.FotMobCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FotMobCircuitHalfOpenMaxReq,
			},
		})
	}
	if cfg.RFEFEnabled {
		available[match.SourceRFEF] = rfef.NewScraper(rfef.Config{
			BaseURL:     cfg.RFEFBaseURL,
			Timeout:     cfg.RFEFTimeout,
			MaxRetries:  cfg.RFEFMaxRetries,
			Competition: cfg.RFEFCompetition,
			Zones:       zones,
			Logger:      logger,
		})
	}
	if cfg.RealMadridEnabled {
		available[match.SourceRealMadrid] = realmadrid.NewScraper(realmadrid.Config{
			BaseURL:    cfg.RealMadridBaseURL,
			Timeout:    cfg.RealMadridTimeout,
			MaxRetries: cfg.RealMadridMaxRetries,
			Zones:      zones,
			Logger:     logger,
		})
	}

	adapters := make([]source.Adapter, 0, len(available))
	for _, name := range cfg.SourcePriority {
		adapter, ok := available[name]
		if !ok {
			continue
		}
		adapters = append(adapters, adapter)
		delete(available, name)
	}
	if len(available) > 0 {
		for name := range available {
			return nil, fmt.Errorf("source %q enabled but missing from SOURCE_PRIORITY", name)
		}
	}
	if len(adapters) == 0 {
		logger.Warn("no source adapters enabled, calendar will rely on fallback fixtures")
	}

	return adapters, nil
}

func fallbackSlots(slots []config.KickoffSlot) []usecase.KickoffSlot {
	out := make([]usecase.KickoffSlot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, usecase.KickoffSlot{OriginHour: slot.OriginHour, DisplayHour: slot.DisplayHour})
	}
	return out
}
