package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "home_team", "away_team").
		From("matches").
		Where(Expr("season = ?", "2025-2026"), In("status", []any{"scheduled", "finished"})).
		OrderBy("kickoff_utc ASC").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, home_team, away_team FROM matches WHERE season = $1 AND status IN ($2, $3) ORDER BY kickoff_utc ASC"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "2025-2026" || args[1] != "scheduled" || args[2] != "finished" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyIn(t *testing.T) {
	query, args, err := Select("id").
		From("matches").
		Where(In("id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM matches WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("matches").
		Columns("id", "home_team").
		Values("m1", "Real Madrid Castilla").
		Values("m2", "CD Lugo").
		Suffix("ON CONFLICT (id) DO UPDATE SET home_team = EXCLUDED.home_team").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO matches (id, home_team) VALUES ($1, $2), ($3, $4) ON CONFLICT (id) DO UPDATE SET home_team = EXCLUDED.home_team"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "m1" || args[3] != "CD Lugo" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowArityMismatch(t *testing.T) {
	_, _, err := InsertInto("matches").
		Columns("id", "home_team").
		Values("m1").
		ToSQL()
	if err == nil {
		t.Fatal("expected error for row with wrong arity")
	}
}
