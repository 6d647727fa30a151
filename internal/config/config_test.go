package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("FOTMOB_TEAM_ID", "469989")
	t.Setenv("RFEF_CALENDAR_SLUG", "primera-federacion-grupo-1")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_SERVICE_NAME", "castilla-calendar-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "castilla-calendar-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Run("default wildcard", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Run("default true", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_SourceConfigParsing(t *testing.T) {
	t.Run("fotmob enabled requires team id", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("FOTMOB_TEAM_ID", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when FOTMOB_ENABLED=true without FOTMOB_TEAM_ID")
		}
	})

	t.Run("rfef enabled requires calendar slug", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("RFEF_CALENDAR_SLUG", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when RFEF_ENABLED=true without RFEF_CALENDAR_SLUG")
		}
	})

	t.Run("disabled adapters skip required ids", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("FOTMOB_ENABLED", "false")
		t.Setenv("FOTMOB_TEAM_ID", "")
		t.Setenv("RFEF_ENABLED", "false")
		t.Setenv("RFEF_CALENDAR_SLUG", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.FotMobEnabled || cfg.RFEFEnabled {
			t.Fatalf("expected fotmob and rfef disabled")
		}
	})

	t.Run("priority order and defaults", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SOURCE_PRIORITY", "rfef, fotmob ,realmadrid")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.SourcePriority) != 3 || cfg.SourcePriority[0] != "rfef" {
			t.Fatalf("unexpected source priority: %+v", cfg.SourcePriority)
		}
		if cfg.AdapterTimeout != 15*time.Second {
			t.Fatalf("unexpected default adapter timeout: %s", cfg.AdapterTimeout)
		}
		if cfg.MinScheduledThreshold != 5 {
			t.Fatalf("unexpected default scheduled threshold: %d", cfg.MinScheduledThreshold)
		}
		if cfg.RefreshInterval != 30*time.Minute {
			t.Fatalf("unexpected default refresh interval: %s", cfg.RefreshInterval)
		}
	})
}

func TestLoad_TimezoneAndTeamDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TeamName != "Real Madrid Castilla" {
		t.Fatalf("unexpected team name: %q", cfg.TeamName)
	}
	if cfg.DisplayTimezone != "America/Guatemala" {
		t.Fatalf("unexpected display timezone: %q", cfg.DisplayTimezone)
	}
	if cfg.OriginTimezone != "Europe/Madrid" {
		t.Fatalf("unexpected origin timezone: %q", cfg.OriginTimezone)
	}
	if len(cfg.TeamAliases) != 3 {
		t.Fatalf("unexpected team aliases: %+v", cfg.TeamAliases)
	}
}

func TestLoad_FallbackKickoffSlotParsing(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("FALLBACK_KICKOFF_SLOTS", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.FallbackKickoffSlots) != 2 {
			t.Fatalf("unexpected slot count: %d", len(cfg.FallbackKickoffSlots))
		}
		if cfg.FallbackKickoffSlots[0].OriginHour != 19 || cfg.FallbackKickoffSlots[0].DisplayHour != 11 {
			t.Fatalf("unexpected first slot: %+v", cfg.FallbackKickoffSlots[0])
		}
	})

	t.Run("invalid slot", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("FALLBACK_KICKOFF_SLOTS", "25:11")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for out-of-range origin hour")
		}
	})

	t.Run("malformed slot", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("FALLBACK_KICKOFF_SLOTS", "19")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for malformed slot")
		}
	})
}
