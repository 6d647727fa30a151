package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
	qb "github.com/riskibarqy/castilla-calendar/internal/platform/querybuilder"
)

const matchUpsertSuffix = `ON CONFLICT (id)
DO UPDATE SET
    source = EXCLUDED.source,
    match_date = EXCLUDED.match_date,
    kickoff_local = EXCLUDED.kickoff_local,
    kickoff_origin = EXCLUDED.kickoff_origin,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    competition = EXCLUDED.competition,
    venue = EXCLUDED.venue,
    status = EXCLUDED.status,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    referee = EXCLUDED.referee,
    attendance = EXCLUDED.attendance,
    weather_condition = EXCLUDED.weather_condition,
    weather_temp_c = EXCLUDED.weather_temp_c,
    home_possession = EXCLUDED.home_possession,
    away_possession = EXCLUDED.away_possession,
    home_shots = EXCLUDED.home_shots,
    away_shots = EXCLUDED.away_shots,
    home_corners = EXCLUDED.home_corners,
    away_corners = EXCLUDED.away_corners,
    home_fouls = EXCLUDED.home_fouls,
    away_fouls = EXCLUDED.away_fouls,
    updated_at = NOW()`

// MatchRepository persists reconciled matches and their event rows. A
// match's child rows (goals, cards, substitutions, broadcasts) are
// replaced wholesale on every upsert; they always reflect exactly what
// the winning source reported last.
type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) UpsertMatches(ctx context.Context, matches []match.Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range matches {
		if err := upsertMatchTx(ctx, tx, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert matches tx: %w", err)
	}
	return nil
}

func upsertMatchTx(ctx context.Context, tx *sqlx.Tx, m match.Match) error {
	insertModel := matchInsertModel{
		ID:            m.ID,
		Source:        m.Source,
		MatchDate:     m.Date,
		KickoffLocal:  m.KickoffLocal,
		KickoffOrigin: m.KickoffOrigin,
		HomeTeam:      m.HomeTeam,
		AwayTeam:      m.AwayTeam,
		Competition:   m.Competition,
		Venue:         m.Venue,
		Status:        m.Status,
		HomeScore:     nullableInt(m.HomeScore),
		AwayScore:     nullableInt(m.AwayScore),
		Referee:       m.Referee,
		Attendance:    nullableInt(m.Attendance),
	}
	if m.Weather != nil {
		insertModel.WeatherCond = sql.NullString{String: m.Weather.Condition, Valid: m.Weather.Condition != ""}
		insertModel.WeatherTempC = nullableFloat(m.Weather.TemperatureC)
	}
	if m.Statistics != nil {
		insertModel.HomePossession = nullableInt(m.Statistics.HomePossession)
		insertModel.AwayPossession = nullableInt(m.Statistics.AwayPossession)
		insertModel.HomeShots = nullableInt(m.Statistics.HomeShots)
		insertModel.AwayShots = nullableInt(m.Statistics.AwayShots)
		insertModel.HomeCorners = nullableInt(m.Statistics.HomeCorners)
		insertModel.AwayCorners = nullableInt(m.Statistics.AwayCorners)
		insertModel.HomeFouls = nullableInt(m.Statistics.HomeFouls)
		insertModel.AwayFouls = nullableInt(m.Statistics.AwayFouls)
	}

	query, args, err := qb.InsertModel("matches", insertModel, matchUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match %s: %w", m.ID, err)
	}

	for _, table := range []string{"match_goals", "match_cards", "match_substitutions", "match_broadcasts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE match_id = $1", m.ID); err != nil {
			return fmt.Errorf("clear %s for match %s: %w", table, m.ID, err)
		}
	}

	if err := insertGoalsTx(ctx, tx, m); err != nil {
		return err
	}
	if err := insertCardsTx(ctx, tx, m); err != nil {
		return err
	}
	if err := insertSubstitutionsTx(ctx, tx, m); err != nil {
		return err
	}
	return insertBroadcastsTx(ctx, tx, m)
}

func insertGoalsTx(ctx context.Context, tx *sqlx.Tx, m match.Match) error {
	if len(m.Goals) == 0 {
		return nil
	}
	builder := qb.InsertInto("match_goals").Columns("match_id", "player", "minute", "side", "goal_type", "assist")
	for _, goal := range m.Goals {
		builder.Values(m.ID, goal.Player, goal.Minute, goal.Side, goal.Type, goal.Assist)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert match goals query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert goals for match %s: %w", m.ID, err)
	}
	return nil
}

func insertCardsTx(ctx context.Context, tx *sqlx.Tx, m match.Match) error {
	if len(m.Cards) == 0 {
		return nil
	}
	builder := qb.InsertInto("match_cards").Columns("match_id", "player", "minute", "side", "card_type", "reason")
	for _, card := range m.Cards {
		builder.Values(m.ID, card.Player, card.Minute, card.Side, card.Type, card.Reason)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert match cards query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert cards for match %s: %w", m.ID, err)
	}
	return nil
}

func insertSubstitutionsTx(ctx context.Context, tx *sqlx.Tx, m match.Match) error {
	if len(m.Substitutions) == 0 {
		return nil
	}
	builder := qb.InsertInto("match_substitutions").Columns("match_id", "player_in", "player_out", "minute", "side")
	for _, sub := range m.Substitutions {
		builder.Values(m.ID, sub.PlayerIn, sub.PlayerOut, sub.Minute, sub.Side)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert match substitutions query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert substitutions for match %s: %w", m.ID, err)
	}
	return nil
}

func insertBroadcastsTx(ctx context.Context, tx *sqlx.Tx, m match.Match) error {
	if len(m.Broadcasts) == 0 {
		return nil
	}
	builder := qb.InsertInto("match_broadcasts").Columns("match_id", "channel", "country", "language", "free")
	for _, broadcast := range m.Broadcasts {
		builder.Values(m.ID, broadcast.Channel, broadcast.Country, broadcast.Language, broadcast.Free)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert match broadcasts query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert broadcasts for match %s: %w", m.ID, err)
	}
	return nil
}

func (r *MatchRepository) ListSince(ctx context.Context, since time.Time) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Expr("kickoff_local >= ?", since)).
		OrderBy("match_date", "kickoff_local", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	if len(rows) == 0 {
		return []match.Match{}, nil
	}

	ids := make([]any, 0, len(rows))
	out := make([]match.Match, 0, len(rows))
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		ids = append(ids, row.ID)
		index[row.ID] = i
		out = append(out, matchFromRow(row))
	}

	if err := r.attachGoals(ctx, ids, index, out); err != nil {
		return nil, err
	}
	if err := r.attachCards(ctx, ids, index, out); err != nil {
		return nil, err
	}
	if err := r.attachSubstitutions(ctx, ids, index, out); err != nil {
		return nil, err
	}
	if err := r.attachBroadcasts(ctx, ids, index, out); err != nil {
		return nil, err
	}
	return out, nil
}

func matchFromRow(row matchTableModel) match.Match {
	m := match.Match{
		ID:            row.ID,
		Source:        row.Source,
		Date:          row.MatchDate,
		KickoffLocal:  row.KickoffLocal,
		KickoffOrigin: row.KickoffOrigin,
		HomeTeam:      row.HomeTeam,
		AwayTeam:      row.AwayTeam,
		Competition:   row.Competition,
		Venue:         row.Venue,
		Status:        row.Status,
		HomeScore:     nullInt64ToIntPtr(row.HomeScore),
		AwayScore:     nullInt64ToIntPtr(row.AwayScore),
		Referee:       row.Referee,
		Attendance:    nullInt64ToIntPtr(row.Attendance),
	}
	if row.WeatherCond.Valid || row.WeatherTempC.Valid {
		m.Weather = &match.Weather{
			Condition:    row.WeatherCond.String,
			TemperatureC: nullFloat64ToPtr(row.WeatherTempC),
		}
	}
	if row.HomePossession.Valid || row.HomeShots.Valid || row.HomeCorners.Valid || row.HomeFouls.Valid {
		m.Statistics = &match.Statistics{
			HomePossession: nullInt64ToIntPtr(row.HomePossession),
			AwayPossession: nullInt64ToIntPtr(row.AwayPossession),
			HomeShots:      nullInt64ToIntPtr(row.HomeShots),
			AwayShots:      nullInt64ToIntPtr(row.AwayShots),
			HomeCorners:    nullInt64ToIntPtr(row.HomeCorners),
			AwayCorners:    nullInt64ToIntPtr(row.AwayCorners),
			HomeFouls:      nullInt64ToIntPtr(row.HomeFouls),
			AwayFouls:      nullInt64ToIntPtr(row.AwayFouls),
		}
	}
	return m
}

func (r *MatchRepository) attachGoals(ctx context.Context, ids []any, index map[string]int, out []match.Match) error {
	query, args, err := qb.Select("*").From("match_goals").
		Where(qb.In("match_id", ids)).
		OrderBy("match_id", "minute", "id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build list match goals query: %w", err)
	}
	var rows []matchGoalTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("list match goals: %w", err)
	}
	for _, row := range rows {
		i, ok := index[row.MatchID]
		if !ok {
			continue
		}
		out[i].Goals = append(out[i].Goals, match.Goal{
			Player: row.Player,
			Minute: row.Minute,
			Side:   row.Side,
			Type:   row.Type,
			Assist: row.Assist,
		})
	}
	return nil
}

func (r *MatchRepository) attachCards(ctx context.Context, ids []any, index map[string]int, out []match.Match) error {
	query, args, err := qb.Select("*").From("match_cards").
		Where(qb.In("match_id", ids)).
		OrderBy("match_id", "minute", "id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build list match cards query: %w", err)
	}
	var rows []matchCardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("list match cards: %w", err)
	}
	for _, row := range rows {
		i, ok := index[row.MatchID]
		if !ok {
			continue
		}
		out[i].Cards = append(out[i].Cards, match.Card{
			Player: row.Player,
			Minute: row.Minute,
			Side:   row.Side,
			Type:   row.Type,
			Reason: row.Reason,
		})
	}
	return nil
}

func (r *MatchRepository) attachSubstitutions(ctx context.Context, ids []any, index map[string]int, out []match.Match) error {
	query, args, err := qb.Select("*").From("match_substitutions").
		Where(qb.In("match_id", ids)).
		OrderBy("match_id", "minute", "id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build list match substitutions query: %w", err)
	}
	var rows []matchSubstitutionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("list match substitutions: %w", err)
	}
	for _, row := range rows {
		i, ok := index[row.MatchID]
		if !ok {
			continue
		}
		out[i].Substitutions = append(out[i].Substitutions, match.Substitution{
			PlayerIn:  row.PlayerIn,
			PlayerOut: row.PlayerOut,
			Minute:    row.Minute,
			Side:      row.Side,
		})
	}
	return nil
}

func (r *MatchRepository) attachBroadcasts(ctx context.Context, ids []any, index map[string]int, out []match.Match) error {
	query, args, err := qb.Select("*").From("match_broadcasts").
		Where(qb.In("match_id", ids)).
		OrderBy("match_id", "id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build list match broadcasts query: %w", err)
	}
	var rows []matchBroadcastTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("list match broadcasts: %w", err)
	}
	for _, row := range rows {
		i, ok := index[row.MatchID]
		if !ok {
			continue
		}
		out[i].Broadcasts = append(out[i].Broadcasts, match.Broadcast{
			Channel:  row.Channel,
			Country:  row.Country,
			Language: row.Language,
			Free:     row.Free,
		})
	}
	return nil
}
