package usecase

import (
	"context"
	"sort"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
)

// CompetitionStats aggregates finished results from the team's perspective.
type CompetitionStats struct {
	Competition  string
	Played       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
}

// TopScorer is one player's goal tally across finished matches.
type TopScorer struct {
	Player string
	Goals  int
}

// StatsService derives season aggregates from the reconciled match list.
type StatsService struct {
	matches  *MatchService
	teamName string
}

func NewStatsService(matches *MatchService, teamName string) *StatsService {
	return &StatsService{matches: matches, teamName: teamName}
}

// SeasonStats returns per-competition win/draw/loss and goal tallies over
// finished matches, ordered by competition name.
func (s *StatsService) SeasonStats(ctx context.Context) ([]CompetitionStats, error) {
	ctx, span := startUsecaseSpan(ctx, "StatsService.SeasonStats")
	defer span.End()

	matches, err := s.matches.List(ctx, ViewChronological)
	if err != nil {
		return nil, err
	}

	team := match.NormalizeTeamName(s.teamName)
	byCompetition := make(map[string]*CompetitionStats)
	for _, m := range matches {
		if !match.IsFinishedStatus(m.Status) || m.HomeScore == nil || m.AwayScore == nil {
			continue
		}

		teamIsHome := match.NormalizeTeamName(m.HomeTeam) == team
		teamIsAway := match.NormalizeTeamName(m.AwayTeam) == team
		if !teamIsHome && !teamIsAway {
			continue
		}

		entry, ok := byCompetition[m.Competition]
		if !ok {
			entry = &CompetitionStats{Competition: m.Competition}
			byCompetition[m.Competition] = entry
		}

		scored, conceded := *m.HomeScore, *m.AwayScore
		if teamIsAway {
			scored, conceded = conceded, scored
		}

		entry.Played++
		entry.GoalsFor += scored
		entry.GoalsAgainst += conceded
		switch {
		case scored > conceded:
			entry.Wins++
		case scored < conceded:
			entry.Losses++
		default:
			entry.Draws++
		}
	}

	stats := make([]CompetitionStats, 0, len(byCompetition))
	for _, entry := range byCompetition {
		stats = append(stats, *entry)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Competition < stats[j].Competition })
	return stats, nil
}

// TopScorers tallies goals scored for the team, own goals excluded,
// ordered by goals descending then name.
func (s *StatsService) TopScorers(ctx context.Context, limit int) ([]TopScorer, error) {
	ctx, span := startUsecaseSpan(ctx, "StatsService.TopScorers")
	defer span.End()

	matches, err := s.matches.List(ctx, ViewChronological)
	if err != nil {
		return nil, err
	}

	team := match.NormalizeTeamName(s.teamName)
	tally := make(map[string]int)
	for _, m := range matches {
		if !match.IsFinishedStatus(m.Status) {
			continue
		}
		teamSide := ""
		if match.NormalizeTeamName(m.HomeTeam) == team {
			teamSide = match.SideHome
		} else if match.NormalizeTeamName(m.AwayTeam) == team {
			teamSide = match.SideAway
		}
		if teamSide == "" {
			continue
		}
		for _, goal := range m.Goals {
			if goal.Player == "" || goal.Type == match.GoalTypeOwnGoal {
				continue
			}
			if goal.Side != teamSide {
				continue
			}
			tally[goal.Player]++
		}
	}

	scorers := make([]TopScorer, 0, len(tally))
	for player, goals := range tally {
		scorers = append(scorers, TopScorer{Player: player, Goals: goals})
	}
	sort.Slice(scorers, func(i, j int) bool {
		if scorers[i].Goals != scorers[j].Goals {
			return scorers[i].Goals > scorers[j].Goals
		}
		return scorers[i].Player < scorers[j].Player
	})

	if limit > 0 && len(scorers) > limit {
		scorers = scorers[:limit]
	}
	return scorers, nil
}
