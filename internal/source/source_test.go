package source

import (
	"testing"
	"time"
)

func castillaQuery() TeamQuery {
	return TeamQuery{
		CanonicalName: "Real Madrid Castilla",
		Aliases:       []string{"RM Castilla", "Real Madrid B"},
		ProviderIDs:   map[string]string{"fotmob": "139336"},
	}
}

func TestBelongsTo(t *testing.T) {
	t.Parallel()

	query := castillaQuery()

	tests := []struct {
		name string
		want bool
	}{
		{"Real Madrid Castilla", true},
		{"real  madrid castilla", true},
		{"RM Castilla", true},
		{"Real Madrid B", true},
		{"Real Madrid", false},
		{"Racing de Ferrol", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := query.BelongsTo(tc.name); got != tc.want {
			t.Fatalf("BelongsTo(%q) = %t, want %t", tc.name, got, tc.want)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	query := castillaQuery()

	if got := query.Canonicalize("RM Castilla"); got != "Real Madrid Castilla" {
		t.Fatalf("Canonicalize alias = %q", got)
	}
	if got := query.Canonicalize("  CD   Lugo "); got != "CD Lugo" {
		t.Fatalf("Canonicalize opponent = %q", got)
	}
}

func TestMatchIDStable(t *testing.T) {
	t.Parallel()

	first := MatchID("fotmob", "2025-09-17", "Real Madrid Castilla", "Racing de Ferrol")
	second := MatchID("fotmob", "2025-09-17", "REAL MADRID  CASTILLA", "Racing de Ferrol.")
	if first != second {
		t.Fatalf("ids differ for the same fixture: %q vs %q", first, second)
	}
	if first != "fotmob:2025-09-17:real-madrid-castilla:racing-de-ferrol" {
		t.Fatalf("unexpected id shape: %q", first)
	}
}

func TestZonesLocalize(t *testing.T) {
	t.Parallel()

	zones, err := LoadZones("America/Guatemala", "Europe/Madrid")
	if err != nil {
		t.Fatalf("load zones: %v", err)
	}

	instant := time.Date(2025, 9, 17, 17, 0, 0, 0, time.UTC)
	local, origin := zones.Localize(instant)

	if local.Hour() != 11 {
		t.Fatalf("display hour = %d, want 11", local.Hour())
	}
	if origin.Hour() != 19 {
		t.Fatalf("origin hour = %d, want 19", origin.Hour())
	}
	if !local.Equal(origin) {
		t.Fatalf("projections of one instant must compare equal")
	}
}

func TestZonesFromOriginWallClock(t *testing.T) {
	t.Parallel()

	zones, err := LoadZones("America/Guatemala", "Europe/Madrid")
	if err != nil {
		t.Fatalf("load zones: %v", err)
	}

	// Winter date: Madrid is UTC+1, Guatemala UTC-6.
	local, origin := zones.FromOriginWallClock(2025, time.December, 14, 12, 0)
	if origin.Hour() != 12 {
		t.Fatalf("origin hour = %d, want 12", origin.Hour())
	}
	if local.Hour() != 5 {
		t.Fatalf("display hour = %d, want 5", local.Hour())
	}
}

func TestParseInstant(t *testing.T) {
	t.Parallel()

	parsed, ok := ParseInstant("2025-09-17T17:00:00Z")
	if !ok {
		t.Fatalf("expected RFC3339 value to parse")
	}
	if parsed.Hour() != 17 {
		t.Fatalf("parsed hour = %d, want 17", parsed.Hour())
	}

	if _, ok := ParseInstant("2025-09-17 17:00:00"); ok {
		t.Fatalf("naive datetime must be rejected")
	}
	if _, ok := ParseInstant(""); ok {
		t.Fatalf("empty value must be rejected")
	}
}

func TestIsRetryableStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{429, 500, 502, 503, 504} {
		if !IsRetryableStatus(code) {
			t.Fatalf("status %d should be retryable", code)
		}
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404} {
		if IsRetryableStatus(code) {
			t.Fatalf("status %d should not be retryable", code)
		}
	}
}
