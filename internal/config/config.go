package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/castilla-calendar/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	DBURL                       string
	DBDisablePreparedBinary     bool
	CacheEnabled                bool
	CacheTTL                    time.Duration
	CORSAllowedOrigins          []string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	PprofEnabled                bool
	PprofAddr                   string
	SwaggerEnabled              bool
	UptraceEnabled              bool
	UptraceDSN                  string
	UptraceLogsEnabled          bool
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
	TeamName                    string
	TeamAliases                 []string
	DisplayTimezone             string
	OriginTimezone              string
	SourcePriority              []string
	FotMobEnabled               bool
	FotMobBaseURL               string
	FotMobTeamID                string
	FotMobTimeout               time.Duration
	FotMobMaxRetries            int
	FotMobDetailLimit           int
	FotMobCircuitEnabled        bool
	FotMobCircuitFailureCount   int
	FotMobCircuitOpenTimeout    time.Duration
	FotMobCircuitHalfOpenMaxReq int
	RFEFEnabled                 bool
	RFEFBaseURL                 string
	RFEFCalendarSlug            string
	RFEFCompetition             string
	RFEFTimeout                 time.Duration
	RFEFMaxRetries              int
	RealMadridEnabled           bool
	RealMadridBaseURL           string
	RealMadridFixturesPath      string
	RealMadridTimeout           time.Duration
	RealMadridMaxRetries        int
	MinScheduledThreshold       int
	AdapterTimeout              time.Duration
	ReconcileWorkerCount        int
	RefreshInterval             time.Duration
	FallbackCompetition         string
	FallbackOpponents           []string
	FallbackHomeVenue           string
	FallbackKickoffSlots        []KickoffSlot
	InternalJobToken            string
	LogLevel                    logging.Level
}

// KickoffSlot pairs an origin wall-clock hour with the hour it lands on
// in the display timezone.
type KickoffSlot struct {
	OriginHour  int
	DisplayHour int
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}

	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	fotMobEnabled, err := strconv.ParseBool(getEnv("FOTMOB_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_ENABLED: %w", err)
	}
	fotMobTimeout, err := time.ParseDuration(getEnv("FOTMOB_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_TIMEOUT: %w", err)
	}
	if fotMobTimeout <= 0 {
		return Config{}, fmt.Errorf("FOTMOB_TIMEOUT must be > 0")
	}
	fotMobMaxRetries, err := getEnvAsInt("FOTMOB_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_MAX_RETRIES: %w", err)
	}
	if fotMobMaxRetries < 0 {
		return Config{}, fmt.Errorf("FOTMOB_MAX_RETRIES must be >= 0")
	}
	fotMobDetailLimit, err := getEnvAsInt("FOTMOB_DETAIL_LIMIT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_DETAIL_LIMIT: %w", err)
	}
	if fotMobDetailLimit < 0 {
		return Config{}, fmt.Errorf("FOTMOB_DETAIL_LIMIT must be >= 0")
	}
	fotMobCircuitEnabled, err := strconv.ParseBool(getEnv("FOTMOB_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_CIRCUIT_ENABLED: %w", err)
	}
	fotMobCircuitFailureCount, err := getEnvAsInt("FOTMOB_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if fotMobCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("FOTMOB_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	fotMobCircuitOpenTimeout, err := time.ParseDuration(getEnv("FOTMOB_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if fotMobCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FOTMOB_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	fotMobCircuitHalfOpenMaxReq, err := getEnvAsInt("FOTMOB_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if fotMobCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("FOTMOB_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	rfefEnabled, err := strconv.ParseBool(getEnv("RFEF_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RFEF_ENABLED: %w", err)
	}
	rfefTimeout, err := time.ParseDuration(getEnv("RFEF_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RFEF_TIMEOUT: %w", err)
	}
	if rfefTimeout <= 0 {
		return Config{}, fmt.Errorf("RFEF_TIMEOUT must be > 0")
	}
	rfefMaxRetries, err := getEnvAsInt("RFEF_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse RFEF_MAX_RETRIES: %w", err)
	}
	if rfefMaxRetries < 0 {
		return Config{}, fmt.Errorf("RFEF_MAX_RETRIES must be >= 0")
	}
	rfefCalendarSlug := strings.TrimSpace(getEnv("RFEF_CALENDAR_SLUG", ""))
	if rfefEnabled && rfefCalendarSlug == "" {
		return Config{}, fmt.Errorf("RFEF_CALENDAR_SLUG is required when RFEF_ENABLED=true")
	}

	realMadridEnabled, err := strconv.ParseBool(getEnv("REALMADRID_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REALMADRID_ENABLED: %w", err)
	}
	realMadridTimeout, err := time.ParseDuration(getEnv("REALMADRID_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REALMADRID_TIMEOUT: %w", err)
	}
	if realMadridTimeout <= 0 {
		return Config{}, fmt.Errorf("REALMADRID_TIMEOUT must be > 0")
	}
	realMadridMaxRetries, err := getEnvAsInt("REALMADRID_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse REALMADRID_MAX_RETRIES: %w", err)
	}
	if realMadridMaxRetries < 0 {
		return Config{}, fmt.Errorf("REALMADRID_MAX_RETRIES must be >= 0")
	}

	minScheduledThreshold, err := getEnvAsInt("MIN_SCHEDULED_THRESHOLD", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse MIN_SCHEDULED_THRESHOLD: %w", err)
	}
	if minScheduledThreshold < 1 {
		return Config{}, fmt.Errorf("MIN_SCHEDULED_THRESHOLD must be >= 1")
	}
	adapterTimeout, err := time.ParseDuration(getEnv("ADAPTER_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ADAPTER_TIMEOUT: %w", err)
	}
	if adapterTimeout <= 0 {
		return Config{}, fmt.Errorf("ADAPTER_TIMEOUT must be > 0")
	}
	reconcileWorkerCount, err := getEnvAsInt("RECONCILE_WORKER_COUNT", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_WORKER_COUNT: %w", err)
	}
	if reconcileWorkerCount < 1 {
		return Config{}, fmt.Errorf("RECONCILE_WORKER_COUNT must be >= 1")
	}
	refreshInterval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_INTERVAL: %w", err)
	}
	if refreshInterval <= 0 {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL must be > 0")
	}

	sourcePriority := splitCSV(getEnv("SOURCE_PRIORITY", "fotmob,rfef,realmadrid"))
	if len(sourcePriority) == 0 {
		return Config{}, fmt.Errorf("SOURCE_PRIORITY cannot be empty")
	}

	fallbackKickoffSlots, err := parseKickoffSlots(getEnv("FALLBACK_KICKOFF_SLOTS", "19:11,12:5"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FALLBACK_KICKOFF_SLOTS: %w", err)
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "castilla-calendar-api"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                       strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:     true,
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
		SwaggerEnabled:              swaggerEnabled,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		UptraceLogsEnabled:          uptraceLogsEnabled,
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
		TeamName:                    strings.TrimSpace(getEnv("TEAM_NAME", "Real Madrid Castilla")),
		TeamAliases:                 splitCSV(getEnv("TEAM_ALIASES", "Castilla,RM Castilla,Real Madrid B")),
		DisplayTimezone:             strings.TrimSpace(getEnv("DISPLAY_TIMEZONE", "America/Guatemala")),
		OriginTimezone:              strings.TrimSpace(getEnv("ORIGIN_TIMEZONE", "Europe/Madrid")),
		SourcePriority:              sourcePriority,
		FotMobEnabled:               fotMobEnabled,
		FotMobBaseURL:               strings.TrimSpace(getEnv("FOTMOB_BASE_URL", "https://www.fotmob.com/api")),
		FotMobTeamID:                strings.TrimSpace(getEnv("FOTMOB_TEAM_ID", "")),
		FotMobTimeout:               fotMobTimeout,
		FotMobMaxRetries:            fotMobMaxRetries,
		FotMobDetailLimit:           fotMobDetailLimit,
		FotMobCircuitEnabled:        fotMobCircuitEnabled,
		FotMobCircuitFailureCount:   fotMobCircuitFailureCount,
		FotMobCircuitOpenTimeout:    fotMobCircuitOpenTimeout,
		FotMobCircuitHalfOpenMaxReq: fotMobCircuitHalfOpenMaxReq,
		RFEFEnabled:                 rfefEnabled,
		RFEFBaseURL:                 strings.TrimSpace(getEnv("RFEF_BASE_URL", "https://www.rfef.es")),
		RFEFCalendarSlug:            rfefCalendarSlug,
		RFEFCompetition:             strings.TrimSpace(getEnv("RFEF_COMPETITION", "Primera Federación")),
		RFEFTimeout:                 rfefTimeout,
		RFEFMaxRetries:              rfefMaxRetries,
		RealMadridEnabled:           realMadridEnabled,
		RealMadridBaseURL:           strings.TrimSpace(getEnv("REALMADRID_BASE_URL", "https://www.realmadrid.com")),
		RealMadridFixturesPath:      strings.TrimSpace(getEnv("REALMADRID_FIXTURES_PATH", "es/futbol/castilla/partidos")),
		RealMadridTimeout:           realMadridTimeout,
		RealMadridMaxRetries:        realMadridMaxRetries,
		MinScheduledThreshold:       minScheduledThreshold,
		AdapterTimeout:              adapterTimeout,
		ReconcileWorkerCount:        reconcileWorkerCount,
		RefreshInterval:             refreshInterval,
		FallbackCompetition:         strings.TrimSpace(getEnv("FALLBACK_COMPETITION", "Primera Federación")),
		FallbackOpponents:           splitCSV(getEnv("FALLBACK_OPPONENTS", "CD Lugo,Racing de Ferrol,Zamora CF,Pontevedra CF,Celta Fortuna,Barakaldo CF")),
		FallbackHomeVenue:           strings.TrimSpace(getEnv("FALLBACK_HOME_VENUE", "Estadio Alfredo Di Stéfano")),
		FallbackKickoffSlots:        fallbackKickoffSlots,
		InternalJobToken:            strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.TeamName == "" {
		return Config{}, fmt.Errorf("TEAM_NAME cannot be empty")
	}
	if cfg.FotMobEnabled && cfg.FotMobTeamID == "" {
		return Config{}, fmt.Errorf("FOTMOB_TEAM_ID is required when FOTMOB_ENABLED=true")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseKickoffSlots reads "originHour:displayHour" pairs, e.g.
// "19:11,12:5" for summer and winter Madrid kickoffs seen in Guatemala.
func parseKickoffSlots(raw string) ([]KickoffSlot, error) {
	parts := strings.Split(raw, ",")
	out := make([]KickoffSlot, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid slot %q, expected originHour:displayHour", item)
		}
		originHour, err := strconv.Atoi(strings.TrimSpace(segments[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid origin hour in slot %q: %w", item, err)
		}
		displayHour, err := strconv.Atoi(strings.TrimSpace(segments[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid display hour in slot %q: %w", item, err)
		}
		if originHour < 0 || originHour > 23 || displayHour < 0 || displayHour > 23 {
			return nil, fmt.Errorf("slot %q hours must be in [0,23]", item)
		}
		out = append(out, KickoffSlot{OriginHour: originHour, DisplayHour: displayHour})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no kickoff slots configured")
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
