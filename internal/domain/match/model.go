package match

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
)

const (
	SourceFotMob     = "fotmob"
	SourceRFEF       = "rfef"
	SourceRealMadrid = "realmadrid"
	SourceFallback   = "fallback"
)

const (
	SideHome = "home"
	SideAway = "away"
)

const (
	GoalTypeNormal   = "normal"
	GoalTypePenalty  = "penalty"
	GoalTypeFreeKick = "free_kick"
	GoalTypeOwnGoal  = "own_goal"
)

const (
	CardYellow = "yellow"
	CardRed    = "red"
)

// DateLayout is the calendar-date form used for identity and dedup keys.
const DateLayout = "2006-01-02"

const maxEventMinute = 120

// ResultUnknown marks a past fixture whose result could not be resolved
// from any source. Scores are never invented for these.
const ResultUnknown = "result unknown"

// Goal is one scoring event inside a match.
type Goal struct {
	Player string
	Minute int
	Side   string
	Type   string
	Assist string
}

// Card is one booking event.
type Card struct {
	Player string
	Minute int
	Side   string
	Type   string
	Reason string
}

// Substitution is one player swap.
type Substitution struct {
	PlayerIn  string
	PlayerOut string
	Minute    int
	Side      string
}

// Broadcast is one TV/stream listing for a match.
type Broadcast struct {
	Channel  string
	Country  string
	Language string
	Free     bool
}

// Weather is the pitch-side snapshot some providers attach to a fixture.
type Weather struct {
	Condition    string
	TemperatureC *float64
}

// Statistics holds the per-side team totals some providers expose.
type Statistics struct {
	HomePossession *int
	AwayPossession *int
	HomeShots      *int
	AwayShots      *int
	HomeCorners    *int
	AwayCorners    *int
	HomeFouls      *int
	AwayFouls      *int
}

// Match is the canonical fixture record. Every source adapter and the
// fallback generator produce this shape; everything downstream consumes it.
type Match struct {
	ID            string
	Source        string
	Date          string
	KickoffLocal  time.Time
	KickoffOrigin time.Time
	HomeTeam      string
	AwayTeam      string
	Competition   string
	Venue         string
	Status        string
	HomeScore     *int
	AwayScore     *int
	Goals         []Goal
	Cards         []Card
	Substitutions []Substitution
	Broadcasts    []Broadcast
	Referee       string
	Attendance    *int
	Weather       *Weather
	Statistics    *Statistics
}

// Key is the cross-source identity of a real-world fixture. Adapter-local
// IDs differ per provider, so dedup runs on (date, home, away) instead.
type Key struct {
	Date string
	Home string
	Away string
}

func (m Match) Key() Key {
	return Key{
		Date: m.Date,
		Home: NormalizeTeamName(m.HomeTeam),
		Away: NormalizeTeamName(m.AwayTeam),
	}
}

// ResultText renders the score line, or a result-unknown marker for past
// fixtures without one. Upcoming fixtures render empty.
func (m Match) ResultText(now time.Time) string {
	if m.HomeScore != nil && m.AwayScore != nil {
		return fmt.Sprintf("%d-%d", *m.HomeScore, *m.AwayScore)
	}
	if !m.KickoffLocal.IsZero() && m.KickoffLocal.Before(now) {
		return ResultUnknown
	}
	return ""
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "IN_PLAY", "HT", "1H", "2H":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET":
		return true
	default:
		return false
	}
}

// NormalizeTeamName lowers, trims and collapses whitespace so the same club
// spelled differently by two providers compares equal in dedup keys.
func NormalizeTeamName(value string) string {
	name := strings.ToLower(strings.TrimSpace(value))
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, ".", "")
	return strings.Join(strings.Fields(name), " ")
}

// Validate enforces the record-level invariants. Records failing validation
// are dropped at the adapter boundary rather than silently accepted.
func (m Match) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("match id is empty")
	}
	if strings.TrimSpace(m.HomeTeam) == "" || strings.TrimSpace(m.AwayTeam) == "" {
		return fmt.Errorf("match %s is missing a participant", m.ID)
	}
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return fmt.Errorf("match %s has unparseable date %q", m.ID, m.Date)
	}

	switch NormalizeStatus(m.Status) {
	case StatusFinished:
		if m.HomeScore == nil || m.AwayScore == nil {
			return fmt.Errorf("match %s is finished without both scores", m.ID)
		}
	case StatusScheduled:
		if m.HomeScore != nil || m.AwayScore != nil {
			return fmt.Errorf("match %s is scheduled but carries a score", m.ID)
		}
	}
	if m.HomeScore != nil && *m.HomeScore < 0 {
		return fmt.Errorf("match %s has negative home score", m.ID)
	}
	if m.AwayScore != nil && *m.AwayScore < 0 {
		return fmt.Errorf("match %s has negative away score", m.ID)
	}

	for _, goal := range m.Goals {
		if err := validateMinute(goal.Minute); err != nil {
			return fmt.Errorf("match %s goal by %q: %w", m.ID, goal.Player, err)
		}
	}
	for _, card := range m.Cards {
		if err := validateMinute(card.Minute); err != nil {
			return fmt.Errorf("match %s card for %q: %w", m.ID, card.Player, err)
		}
	}
	for _, sub := range m.Substitutions {
		if err := validateMinute(sub.Minute); err != nil {
			return fmt.Errorf("match %s substitution of %q: %w", m.ID, sub.PlayerOut, err)
		}
	}

	return nil
}

func validateMinute(minute int) error {
	if minute < 0 || minute > maxEventMinute {
		return fmt.Errorf("minute %d is outside [0, %d]", minute, maxEventMinute)
	}
	return nil
}
