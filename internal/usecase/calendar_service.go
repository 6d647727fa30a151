package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
)

const (
	icsProdID        = "-//castilla-calendar//fixtures//ES"
	icsTimeLayout    = "20060102T150405Z"
	icsEventDuration = 2 * time.Hour
)

// CalendarService renders the reconciled match list as an iCalendar feed.
// Rendering is a pure projection of the canonical match shape; no fixture
// logic lives here.
type CalendarService struct {
	matches  *MatchService
	teamName string
	now      func() time.Time
}

func NewCalendarService(matches *MatchService, teamName string, now func() time.Time) *CalendarService {
	if now == nil {
		now = time.Now
	}
	return &CalendarService{matches: matches, teamName: teamName, now: now}
}

// RenderICS produces the calendar text. The feed is never empty: with no
// matches available it carries a single placeholder event telling
// subscribers the calendar is updating.
func (s *CalendarService) RenderICS(ctx context.Context) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "CalendarService.RenderICS")
	defer span.End()

	matches, err := s.matches.List(ctx, ViewChronological)
	if err != nil {
		return "", err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	now := s.now().UTC()
	writeICSLine(buf, "BEGIN:VCALENDAR")
	writeICSLine(buf, "VERSION:2.0")
	writeICSLine(buf, "PRODID:"+icsProdID)
	writeICSLine(buf, "CALSCALE:GREGORIAN")
	writeICSLine(buf, "METHOD:PUBLISH")
	writeICSLine(buf, "X-WR-CALNAME:"+escapeICS(s.teamName))

	if len(matches) == 0 {
		s.writePlaceholderEvent(buf, now)
	}
	for _, m := range matches {
		s.writeEvent(buf, m, now)
	}

	writeICSLine(buf, "END:VCALENDAR")
	return buf.String(), nil
}

func (s *CalendarService) writeEvent(buf *bytebufferpool.ByteBuffer, m match.Match, now time.Time) {
	start := m.KickoffLocal.UTC()
	end := start.Add(icsEventDuration)

	summary := fmt.Sprintf("%s vs %s", m.HomeTeam, m.AwayTeam)
	if result := m.ResultText(now); result != "" {
		summary += " (" + result + ")"
	}

	writeICSLine(buf, "BEGIN:VEVENT")
	writeICSLine(buf, "UID:"+escapeICS(m.ID)+"@castilla-calendar")
	writeICSLine(buf, "DTSTAMP:"+now.Format(icsTimeLayout))
	writeICSLine(buf, "DTSTART:"+start.Format(icsTimeLayout))
	writeICSLine(buf, "DTEND:"+end.Format(icsTimeLayout))
	writeICSLine(buf, "SUMMARY:"+escapeICS(summary))
	if m.Venue != "" {
		writeICSLine(buf, "LOCATION:"+escapeICS(m.Venue))
	}
	if description := buildEventDescription(m, now); description != "" {
		writeICSLine(buf, "DESCRIPTION:"+escapeICS(description))
	}
	writeICSLine(buf, "STATUS:CONFIRMED")
	writeICSLine(buf, "END:VEVENT")
}

func (s *CalendarService) writePlaceholderEvent(buf *bytebufferpool.ByteBuffer, now time.Time) {
	start := now.Add(24 * time.Hour)
	writeICSLine(buf, "BEGIN:VEVENT")
	writeICSLine(buf, "UID:placeholder-"+start.Format("20060102")+"@castilla-calendar")
	writeICSLine(buf, "DTSTAMP:"+now.Format(icsTimeLayout))
	writeICSLine(buf, "DTSTART:"+start.Format(icsTimeLayout))
	writeICSLine(buf, "DTEND:"+start.Add(time.Hour).Format(icsTimeLayout))
	writeICSLine(buf, "SUMMARY:"+escapeICS(s.teamName+" - calendario actualizándose"))
	writeICSLine(buf, "DESCRIPTION:"+escapeICS("Los partidos se están actualizando. Vuelve a consultar en unos minutos."))
	writeICSLine(buf, "STATUS:TENTATIVE")
	writeICSLine(buf, "END:VEVENT")
}

// buildEventDescription assembles the human-readable details block from
// whatever optional sub-entities the match carries.
func buildEventDescription(m match.Match, now time.Time) string {
	parts := make([]string, 0, 8)
	if m.Competition != "" {
		parts = append(parts, "Competición: "+m.Competition)
	}
	if result := m.ResultText(now); result != "" {
		parts = append(parts, "Resultado: "+result)
	}
	for _, goal := range m.Goals {
		line := fmt.Sprintf("Gol %d' %s", goal.Minute, goal.Player)
		switch goal.Type {
		case match.GoalTypePenalty:
			line += " (penalti)"
		case match.GoalTypeFreeKick:
			line += " (falta directa)"
		case match.GoalTypeOwnGoal:
			line += " (propia puerta)"
		}
		if goal.Assist != "" {
			line += ", asiste " + goal.Assist
		}
		parts = append(parts, line)
	}
	for _, card := range m.Cards {
		color := "amarilla"
		if card.Type == match.CardRed {
			color = "roja"
		}
		parts = append(parts, fmt.Sprintf("Tarjeta %s %d' %s", color, card.Minute, card.Player))
	}
	for _, sub := range m.Substitutions {
		parts = append(parts, fmt.Sprintf("Cambio %d': entra %s por %s", sub.Minute, sub.PlayerIn, sub.PlayerOut))
	}
	if len(m.Broadcasts) > 0 {
		channels := make([]string, 0, len(m.Broadcasts))
		for _, b := range m.Broadcasts {
			channels = append(channels, b.Channel)
		}
		parts = append(parts, "TV: "+strings.Join(channels, ", "))
	}
	if m.Referee != "" {
		parts = append(parts, "Árbitro: "+m.Referee)
	}
	if m.Attendance != nil {
		parts = append(parts, fmt.Sprintf("Asistencia: %d", *m.Attendance))
	}
	return strings.Join(parts, "\n")
}

const icsFoldLimit = 75

// RFC 5545 requires CRLF line endings, escaped text values, and content
// lines folded at 75 octets with a single-space continuation. The fold
// point backs up to a rune boundary so accented text never splits
// mid-character.
func writeICSLine(buf *bytebufferpool.ByteBuffer, line string) {
	limit := icsFoldLimit
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		_, _ = buf.WriteString(line[:cut])
		_, _ = buf.WriteString("\r\n ")
		line = line[cut:]
		limit = icsFoldLimit - 1
	}
	_, _ = buf.WriteString(line)
	_, _ = buf.WriteString("\r\n")
}

func escapeICS(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, ";", "\\;")
	value = strings.ReplaceAll(value, ",", "\\,")
	value = strings.ReplaceAll(value, "\n", "\\n")
	return value
}
