package bodds

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchup(t *testing.T) {
	team, opp, isHome, ok := parseMatchup("GSW vs. LAL")
	require.True(t, ok)
	assert.Equal(t, "GSW", team)
	assert.Equal(t, "LAL", opp)
	assert.True(t, isHome)

	team, opp, isHome, ok = parseMatchup("gsw @ bos")
	require.True(t, ok)
	assert.Equal(t, "GSW", team)
	assert.Equal(t, "BOS", opp)
	assert.False(t, isHome)

	_, _, _, ok = parseMatchup("GSW-LAL")
	assert.False(t, ok)
	_, _, _, ok = parseMatchup("")
	assert.False(t, ok)
}

func TestParseMinutes(t *testing.T) {
	v := parseMinutes("34:30")
	require.NotNil(t, v)
	assert.InDelta(t, 34.5, *v, 1e-9)

	v = parseMinutes("36")
	require.NotNil(t, v)
	assert.InDelta(t, 36.0, *v, 1e-9)

	assert.Nil(t, parseMinutes(""))
	assert.Nil(t, parseMinutes("DNP"))
}

func TestParseGameDateLayouts(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{"2024-03-05", "2024-03-05 19:30:00", "Mar 5, 2024", "03/05/2024"} {
		got, ok := parseGameDate(input)
		require.True(t, ok, "failed to parse %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, ok := parseGameDate("yesterday")
	assert.False(t, ok)
}

func TestDeriveSeason(t *testing.T) {
	// October onward starts a new season; earlier months belong to the
	// season started the previous autumn.
	assert.Equal(t, 2023, DeriveSeason(time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2023, DeriveSeason(time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2023, DeriveSeason(time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024, DeriveSeason(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)))
}

func TestIsTruthy(t *testing.T) {
	assert.True(t, isTruthy("1"))
	assert.True(t, isTruthy("True"))
	assert.True(t, isTruthy(" y "))
	assert.False(t, isTruthy("0"))
	assert.False(t, isTruthy(""))
	assert.False(t, isTruthy("no"))
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadStandardTablesTeamDataOnly(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, TeamsCSV,
		"id,full_name,abbreviation,city,state,year_founded\n"+
			"1610612744,Golden State Warriors,GSW,San Francisco,California,1946\n"+
			"1610612747,Los Angeles Lakers,LAL,Los Angeles,California,1948\n")
	writeCSV(t, dir, GamesCSV,
		"GAME_ID,TEAM_ID,GAME_DATE,MATCHUP,WL,PTS,FG_PCT,FG3_PCT,FT_PCT,REB,AST,TOV\n"+
			"0022300001,1610612744,2023-10-24,GSW vs. LAL,W,120,0.48,,0.81,44,29,13\n"+
			"0022300001,1610612747,2023-10-24,LAL @ GSW,L,109,0.44,0.31,0.76,41,24,15\n")

	tables, err := LoadStandardTables(dir)
	require.NoError(t, err)
	assert.False(t, tables.HasPlayers())
	require.Len(t, tables.Teams, 2)
	require.Len(t, tables.Games, 2)

	warriors := tables.Games[0]
	assert.Equal(t, "0022300001", warriors.GameID)
	assert.Equal(t, int64(1610612744), warriors.TeamID)
	assert.Equal(t, int64(1610612747), warriors.OpponentTeamID)
	assert.True(t, warriors.IsHome)
	assert.Equal(t, "W", warriors.WL)
	assert.Equal(t, 2023, warriors.Season)
	require.NotNil(t, warriors.Pts)
	assert.InDelta(t, 120.0, *warriors.Pts, 1e-9)
	// Empty FG3_PCT cell stays missing rather than becoming zero.
	assert.Nil(t, warriors.Fg3Pct)

	lakers := tables.Games[1]
	assert.Equal(t, int64(1610612744), lakers.OpponentTeamID)
	assert.False(t, lakers.IsHome)
}

func TestLoadStandardTablesWithPlayerExports(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, TeamsCSV,
		"id,full_name,abbreviation\n"+
			"1,Alpha,AAA\n"+
			"2,Beta,BBB\n")
	writeCSV(t, dir, GamesCSV,
		"game_id,team_id,game_date,opponent_team_id,is_home,wl,pts\n"+
			"g1,1,2023-11-01,2,1,W,101\n"+
			"g1,2,2023-11-01,1,0,L,97\n")
	writeCSV(t, dir, PlayersCSV,
		"id,full_name,first_name,last_name,is_active\n"+
			"30,Some Player,Some,Player,True\n")
	writeCSV(t, dir, PlayerGamesCSV,
		"PLAYER_ID,GAME_ID,GAME_DATE,MATCHUP,WL,MIN,PTS,PLUS_MINUS\n"+
			"30,g1,2023-11-01,AAA vs. BBB,W,32:30,27,11\n")

	tables, err := LoadStandardTables(dir)
	require.NoError(t, err)
	assert.True(t, tables.HasPlayers())
	require.Len(t, tables.PlayerGames, 1)

	pg := tables.PlayerGames[0]
	assert.Equal(t, int64(30), pg.PlayerID)
	assert.Equal(t, int64(1), pg.TeamID)
	assert.Equal(t, int64(2), pg.OpponentTeamID)
	assert.True(t, pg.IsHome)
	require.NotNil(t, pg.Minutes)
	assert.InDelta(t, 32.5, *pg.Minutes, 1e-9)
	require.NotNil(t, pg.PlusMinus)
	assert.InDelta(t, 11.0, *pg.PlusMinus, 1e-9)
}

func TestLoadStandardTablesMissingRequiredFile(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, TeamsCSV, "id,full_name,abbreviation\n1,Alpha,AAA\n")

	_, err := LoadStandardTables(dir)
	require.Error(t, err)
}

func TestStandardizeGamesRequiresOpponentInformation(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "games.csv", "game_id,team_id,game_date,wl\n" +
		"g1,1,2023-11-01,W\n")

	tbl, err := readCSVTable(filepath.Join(dir, "games.csv"))
	require.NoError(t, err)

	_, err = StandardizeGames(tbl, nil)
	require.Error(t, err)
}
