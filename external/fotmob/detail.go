package fotmob

import (
	"strconv"
	"strings"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
)

// The match-detail payload is a deep, loosely-typed document whose shape
// shifts between deploys, so extraction walks map[string]any instead of
// binding a struct that would break on the next provider release.

// applyMatchDetails copies event, official, broadcast and statistics data
// from a detail payload onto the match. Events missing a minute or carrying
// one outside the playable range are dropped; the returned count lets the
// caller log them.
func applyMatchDetails(m *match.Match, payload map[string]any) (skipped int) {
	content := mapAt(payload, "content")
	matchFacts := mapAt(content, "matchFacts")

	infoBox := mapAt(matchFacts, "infoBox")
	if referee := getString(mapAt(infoBox, "Referee"), "text"); referee != "" {
		m.Referee = referee
	}
	if attendance, ok := getInt(infoBox, "Attendance"); ok && attendance > 0 {
		m.Attendance = &attendance
	}
	if venue := getString(mapAt(infoBox, "Stadium"), "name"); venue != "" && m.Venue == "" {
		m.Venue = venue
	}
	if weather := mapAt(infoBox, "Weather"); weather != nil {
		snapshot := match.Weather{Condition: getString(weather, "condition")}
		if raw, ok := weather["temperature"].(float64); ok {
			snapshot.TemperatureC = &raw
		}
		if snapshot.Condition != "" || snapshot.TemperatureC != nil {
			m.Weather = &snapshot
		}
	}

	for _, raw := range listAt(mapAt(matchFacts, "events"), "events") {
		event, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		minute, hasMinute := getInt(event, "time")
		if !hasMinute || minute < 0 || minute > 120 {
			skipped++
			continue
		}
		side := match.SideAway
		if boolAt(event, "isHome") {
			side = match.SideHome
		}

		switch strings.ToLower(getString(event, "type")) {
		case "goal":
			m.Goals = append(m.Goals, match.Goal{
				Player: getString(event, "nameStr"),
				Minute: minute,
				Side:   side,
				Type:   goalType(event),
				Assist: getString(event, "assistStr"),
			})
		case "card":
			m.Cards = append(m.Cards, match.Card{
				Player: getString(event, "nameStr"),
				Minute: minute,
				Side:   side,
				Type:   cardType(getString(event, "card")),
				Reason: getString(event, "reason"),
			})
		case "substitution":
			in, out := substitutionPair(event)
			if in == "" && out == "" {
				continue
			}
			m.Substitutions = append(m.Substitutions, match.Substitution{
				PlayerIn:  in,
				PlayerOut: out,
				Minute:    minute,
				Side:      side,
			})
		}
	}

	for _, raw := range listAt(mapAt(content, "broadcast"), "broadcasters") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		channel := getString(entry, "name")
		if channel == "" {
			continue
		}
		m.Broadcasts = append(m.Broadcasts, match.Broadcast{
			Channel:  channel,
			Country:  getString(entry, "country"),
			Language: getString(entry, "language"),
			Free:     boolAt(entry, "isFree"),
		})
	}

	applyStatistics(m, content)

	return skipped
}

func goalType(event map[string]any) string {
	if boolAt(event, "ownGoal") {
		return match.GoalTypeOwnGoal
	}
	description := strings.ToLower(getString(event, "goalDescription"))
	switch {
	case strings.Contains(description, "penalty"):
		return match.GoalTypePenalty
	case strings.Contains(description, "free kick"):
		return match.GoalTypeFreeKick
	default:
		return match.GoalTypeNormal
	}
}

func cardType(raw string) string {
	if strings.Contains(strings.ToLower(raw), "red") {
		return match.CardRed
	}
	return match.CardYellow
}

func substitutionPair(event map[string]any) (in string, out string) {
	swap := listAt(event, "swap")
	if len(swap) >= 1 {
		if entry, ok := swap[0].(map[string]any); ok {
			in = getString(entry, "name")
		}
	}
	if len(swap) >= 2 {
		if entry, ok := swap[1].(map[string]any); ok {
			out = getString(entry, "name")
		}
	}
	return in, out
}

var statTitles = map[string]func(*match.Statistics, *int, *int){
	"ball possession": func(s *match.Statistics, home, away *int) { s.HomePossession, s.AwayPossession = home, away },
	"total shots":     func(s *match.Statistics, home, away *int) { s.HomeShots, s.AwayShots = home, away },
	"corners":         func(s *match.Statistics, home, away *int) { s.HomeCorners, s.AwayCorners = home, away },
	"fouls committed": func(s *match.Statistics, home, away *int) { s.HomeFouls, s.AwayFouls = home, away },
}

func applyStatistics(m *match.Match, content map[string]any) {
	groups := listAt(mapAt(mapAt(mapAt(content, "stats"), "Periods"), "All"), "stats")
	stats := match.Statistics{}
	found := false
	for _, rawGroup := range groups {
		group, ok := rawGroup.(map[string]any)
		if !ok {
			continue
		}
		for _, rawRow := range listAt(group, "stats") {
			row, ok := rawRow.(map[string]any)
			if !ok {
				continue
			}
			assign, ok := statTitles[strings.ToLower(getString(row, "title"))]
			if !ok {
				continue
			}
			values := listAt(row, "stats")
			if len(values) < 2 {
				continue
			}
			home, homeOK := statValue(values[0])
			away, awayOK := statValue(values[1])
			if !homeOK || !awayOK {
				continue
			}
			assign(&stats, &home, &away)
			found = true
		}
	}
	if found {
		m.Statistics = &stats
	}
}

// statValue reads a per-side stat cell, which arrives as a number or as a
// decorated string such as "58%".
func statValue(raw any) (int, bool) {
	switch typed := raw.(type) {
	case float64:
		return int(typed), true
	case string:
		digits := strings.TrimRight(strings.TrimSpace(typed), "%")
		value, err := strconv.Atoi(digits)
		if err != nil {
			return 0, false
		}
		return value, true
	default:
		return 0, false
	}
}

func mapAt(src map[string]any, key string) map[string]any {
	if src == nil {
		return nil
	}
	value, ok := src[key].(map[string]any)
	if !ok {
		return nil
	}
	return value
}

func listAt(src map[string]any, key string) []any {
	if src == nil {
		return nil
	}
	value, ok := src[key].([]any)
	if !ok {
		return nil
	}
	return value
}

func boolAt(src map[string]any, key string) bool {
	if src == nil {
		return false
	}
	value, ok := src[key].(bool)
	return ok && value
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	value, ok := src[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// getInt reads a numeric cell that may arrive as a JSON number or a
// decorated string. The second return distinguishes an absent or
// unparseable value from a genuine zero.
func getInt(src map[string]any, key string) (int, bool) {
	if src == nil {
		return 0, false
	}
	switch typed := src[key].(type) {
	case float64:
		return int(typed), true
	case string:
		value, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, false
		}
		return value, true
	default:
		return 0, false
	}
}
