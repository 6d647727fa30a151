package source

import (
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
)

// Zones bundles the two locations every adapter converts into: the display
// zone the calendar is published in and the competition's origin zone.
// Conversion happens once here, at ingestion; nothing downstream re-derives
// instants from formatted strings.
type Zones struct {
	Display *time.Location
	Origin  *time.Location
}

func LoadZones(display, origin string) (Zones, error) {
	displayLoc, err := time.LoadLocation(display)
	if err != nil {
		return Zones{}, crerr.Wrapf(err, "load display timezone %q", display)
	}
	originLoc, err := time.LoadLocation(origin)
	if err != nil {
		return Zones{}, crerr.Wrapf(err, "load origin timezone %q", origin)
	}
	return Zones{Display: displayLoc, Origin: originLoc}, nil
}

// Localize projects one unambiguous instant into both zones.
func (z Zones) Localize(instant time.Time) (local time.Time, origin time.Time) {
	return instant.In(z.Display), instant.In(z.Origin)
}

// FromOriginWallClock resolves a wall-clock reading taken in the origin zone
// into both zones. Scraped pages publish naive local times, so the origin
// zone must be attached before any conversion.
func (z Zones) FromOriginWallClock(year int, month time.Month, day, hour, minute int) (local time.Time, origin time.Time) {
	origin = time.Date(year, month, day, hour, minute, 0, 0, z.Origin)
	return origin.In(z.Display), origin
}

// DateOf yields the calendar date used in identity keys, read in the
// display zone.
func (z Zones) DateOf(local time.Time) string {
	return local.In(z.Display).Format(match.DateLayout)
}

// ParseInstant parses the datetime shapes JSON providers use. UTC instants
// and offset-carrying timestamps both resolve; naive values are rejected so
// callers fall back to FromOriginWallClock explicitly.
func ParseInstant(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05Z07:00",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}
