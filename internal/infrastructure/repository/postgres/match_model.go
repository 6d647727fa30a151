package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID             string          `db:"id"`
	Source         string          `db:"source"`
	MatchDate      string          `db:"match_date"`
	KickoffLocal   time.Time       `db:"kickoff_local"`
	KickoffOrigin  time.Time       `db:"kickoff_origin"`
	HomeTeam       string          `db:"home_team"`
	AwayTeam       string          `db:"away_team"`
	Competition    string          `db:"competition"`
	Venue          string          `db:"venue"`
	Status         string          `db:"status"`
	HomeScore      sql.NullInt64   `db:"home_score"`
	AwayScore      sql.NullInt64   `db:"away_score"`
	Referee        string          `db:"referee"`
	Attendance     sql.NullInt64   `db:"attendance"`
	WeatherCond    sql.NullString  `db:"weather_condition"`
	WeatherTempC   sql.NullFloat64 `db:"weather_temp_c"`
	HomePossession sql.NullInt64   `db:"home_possession"`
	AwayPossession sql.NullInt64   `db:"away_possession"`
	HomeShots      sql.NullInt64   `db:"home_shots"`
	AwayShots      sql.NullInt64   `db:"away_shots"`
	HomeCorners    sql.NullInt64   `db:"home_corners"`
	AwayCorners    sql.NullInt64   `db:"away_corners"`
	HomeFouls      sql.NullInt64   `db:"home_fouls"`
	AwayFouls      sql.NullInt64   `db:"away_fouls"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type matchInsertModel struct {
	ID             string          `db:"id"`
	Source         string          `db:"source"`
	MatchDate      string          `db:"match_date"`
	KickoffLocal   time.Time       `db:"kickoff_local"`
	KickoffOrigin  time.Time       `db:"kickoff_origin"`
	HomeTeam       string          `db:"home_team"`
	AwayTeam       string          `db:"away_team"`
	Competition    string          `db:"competition"`
	Venue          string          `db:"venue"`
	Status         string          `db:"status"`
	HomeScore      sql.NullInt64   `db:"home_score"`
	AwayScore      sql.NullInt64   `db:"away_score"`
	Referee        string          `db:"referee"`
	Attendance     sql.NullInt64   `db:"attendance"`
	WeatherCond    sql.NullString  `db:"weather_condition"`
	WeatherTempC   sql.NullFloat64 `db:"weather_temp_c"`
	HomePossession sql.NullInt64   `db:"home_possession"`
	AwayPossession sql.NullInt64   `db:"away_possession"`
	HomeShots      sql.NullInt64   `db:"home_shots"`
	AwayShots      sql.NullInt64   `db:"away_shots"`
	HomeCorners    sql.NullInt64   `db:"home_corners"`
	AwayCorners    sql.NullInt64   `db:"away_corners"`
	HomeFouls      sql.NullInt64   `db:"home_fouls"`
	AwayFouls      sql.NullInt64   `db:"away_fouls"`
}

type matchGoalTableModel struct {
	ID      int64  `db:"id"`
	MatchID string `db:"match_id"`
	Player  string `db:"player"`
	Minute  int    `db:"minute"`
	Side    string `db:"side"`
	Type    string `db:"goal_type"`
	Assist  string `db:"assist"`
}

type matchCardTableModel struct {
	ID      int64  `db:"id"`
	MatchID string `db:"match_id"`
	Player  string `db:"player"`
	Minute  int    `db:"minute"`
	Side    string `db:"side"`
	Type    string `db:"card_type"`
	Reason  string `db:"reason"`
}

type matchSubstitutionTableModel struct {
	ID        int64  `db:"id"`
	MatchID   string `db:"match_id"`
	PlayerIn  string `db:"player_in"`
	PlayerOut string `db:"player_out"`
	Minute    int    `db:"minute"`
	Side      string `db:"side"`
}

type matchBroadcastTableModel struct {
	ID       int64  `db:"id"`
	MatchID  string `db:"match_id"`
	Channel  string `db:"channel"`
	Country  string `db:"country"`
	Language string `db:"language"`
	Free     bool   `db:"free"`
}

func nullableInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullInt64ToIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	out := int(value.Int64)
	return &out
}

func nullableFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func nullFloat64ToPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	out := value.Float64
	return &out
}
