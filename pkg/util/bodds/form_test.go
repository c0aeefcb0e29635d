package bodds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func testGame(gameID string, teamID, oppID int64, n int, pts float64, won bool) *TeamGame {
	wl := "L"
	if won {
		wl = "W"
	}
	return &TeamGame{
		GameID:         gameID,
		TeamID:         teamID,
		Season:         2023,
		GameDate:       day(n),
		OpponentTeamID: oppID,
		WL:             wl,
		Pts:            float64Ptr(pts),
		Reb:            float64Ptr(40),
		Ast:            float64Ptr(25),
		Tov:            float64Ptr(12),
	}
}

func TestTeamFormFirstGameHasNoHistory(t *testing.T) {
	games := []*TeamGame{
		testGame("g1", 1, 2, 1, 100, true),
		testGame("g2", 1, 2, 3, 110, false),
	}

	forms := ComputeTeamForm(games)
	require.Len(t, forms, 2)

	first := forms[0]
	assert.Equal(t, "g1", first.GameID)
	assert.Nil(t, first.RestDays)
	assert.Nil(t, first.RollPts)
	assert.Nil(t, first.RollWinRate)
	assert.Equal(t, 1, first.YWin)

	second := forms[1]
	require.NotNil(t, second.RestDays)
	assert.InDelta(t, 2.0, *second.RestDays, 1e-9)
	require.NotNil(t, second.RollPts)
	assert.InDelta(t, 100.0, *second.RollPts, 1e-9)
	require.NotNil(t, second.RollWinRate)
	assert.InDelta(t, 1.0, *second.RollWinRate, 1e-9)
	assert.Equal(t, 0, second.YWin)
}

func TestTeamFormWindowIsBounded(t *testing.T) {
	// Seven games with distinct scores so the window contents are visible
	// in the rolling mean.
	var games []*TeamGame
	for i := 0; i < 7; i++ {
		games = append(games, testGame(
			string(rune('a'+i)), 1, 2, i+1, float64(100+i*10), i%2 == 0))
	}

	forms := ComputeTeamForm(games)
	require.Len(t, forms, 7)

	// Sixth game sees exactly the first five scores.
	require.NotNil(t, forms[5].RollPts)
	assert.InDelta(t, (100.0+110+120+130+140)/5, *forms[5].RollPts, 1e-9)

	// Seventh game slides the window forward by one.
	require.NotNil(t, forms[6].RollPts)
	assert.InDelta(t, (110.0+120+130+140+150)/5, *forms[6].RollPts, 1e-9)
}

func TestTeamFormAveragesAvailablePriors(t *testing.T) {
	games := []*TeamGame{
		testGame("g1", 1, 2, 1, 90, true),
		testGame("g2", 1, 2, 2, 110, true),
		testGame("g3", 1, 2, 4, 130, false),
	}

	forms := ComputeTeamForm(games)
	require.Len(t, forms, 3)

	third := forms[2]
	require.NotNil(t, third.RollPts)
	assert.InDelta(t, 100.0, *third.RollPts, 1e-9)
	require.NotNil(t, third.RollWinRate)
	assert.InDelta(t, 1.0, *third.RollWinRate, 1e-9)
}

func TestTeamFormIgnoresOtherTeamsHistory(t *testing.T) {
	games := []*TeamGame{
		testGame("g1", 1, 2, 1, 100, true),
		testGame("g1", 2, 1, 1, 90, false),
		testGame("g2", 1, 2, 3, 120, true),
	}

	forms := ComputeTeamForm(games)
	require.Len(t, forms, 3)

	var secondForTeam1 *TeamForm
	for _, f := range forms {
		if f.TeamID == 1 && f.GameID == "g2" {
			secondForTeam1 = f
		}
	}
	require.NotNil(t, secondForTeam1)
	require.NotNil(t, secondForTeam1.RollPts)
	assert.InDelta(t, 100.0, *secondForTeam1.RollPts, 1e-9)
}

func TestRollingMeanSkipsMissingValues(t *testing.T) {
	mean := rollingMean([]*float64{float64Ptr(10), nil, float64Ptr(20)})
	require.NotNil(t, mean)
	assert.InDelta(t, 15.0, *mean, 1e-9)

	assert.Nil(t, rollingMean([]*float64{nil, nil}))
	assert.Nil(t, rollingMean(nil))
}

func TestComputePlayerForm(t *testing.T) {
	games := []*PlayerGame{
		{GameID: "g1", PlayerID: 7, TeamID: 1, GameDate: day(1), Minutes: float64Ptr(30), Pts: float64Ptr(20), PlusMinus: float64Ptr(5)},
		{GameID: "g2", PlayerID: 7, TeamID: 1, GameDate: day(3), Minutes: float64Ptr(34), Pts: float64Ptr(28), PlusMinus: float64Ptr(-3)},
		{GameID: "g3", PlayerID: 7, TeamID: 1, GameDate: day(5), Minutes: float64Ptr(32), Pts: float64Ptr(24), PlusMinus: float64Ptr(1)},
	}

	forms := ComputePlayerForm(games)
	require.Len(t, forms, 3)

	assert.Nil(t, forms[0].RollPts)

	require.NotNil(t, forms[1].RollPts)
	assert.InDelta(t, 20.0, *forms[1].RollPts, 1e-9)

	require.NotNil(t, forms[2].RollPts)
	assert.InDelta(t, 24.0, *forms[2].RollPts, 1e-9)
	require.NotNil(t, forms[2].RollMinutes)
	assert.InDelta(t, 32.0, *forms[2].RollMinutes, 1e-9)
	require.NotNil(t, forms[2].RollPlusMinus)
	assert.InDelta(t, 1.0, *forms[2].RollPlusMinus, 1e-9)
}
