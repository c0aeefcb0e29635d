package bodds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDatabase(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDatabase(":memory:"))
	t.Cleanup(func() { CloseDatabase() })
}

func TestTeamRoundTrip(t *testing.T) {
	setupTestDatabase(t)

	team := &Team{
		TeamID:       1610612744,
		FullName:     "Golden State Warriors",
		Abbreviation: "GSW",
		City:         "San Francisco",
		State:        "California",
		YearFounded:  1946,
	}
	require.NoError(t, Save(team))

	loaded := &Team{}
	require.NoError(t, FindByPrimaryKey(loaded, map[string]interface{}{"team_id": int64(1610612744)}))
	assert.Equal(t, team.FullName, loaded.FullName)
	assert.Equal(t, team.Abbreviation, loaded.Abbreviation)
	assert.Equal(t, team.YearFounded, loaded.YearFounded)
	// BeforeSave stamps the metadata timestamps.
	assert.False(t, loaded.CreatedAt.IsZero())
}

func TestSaveUpdatesExistingRow(t *testing.T) {
	setupTestDatabase(t)

	team := &Team{TeamID: 7, FullName: "Old Name", Abbreviation: "OLD"}
	require.NoError(t, Save(team))

	team.FullName = "New Name"
	require.NoError(t, Save(team))

	loaded := &Team{}
	require.NoError(t, FindByPrimaryKey(loaded, map[string]interface{}{"team_id": int64(7)}))
	assert.Equal(t, "New Name", loaded.FullName)

	all, err := FindAll(&Team{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMatchupRowPreservesNulls(t *testing.T) {
	setupTestDatabase(t)

	row := &MatchupRow{
		GameID:         "g9",
		TeamID:         1,
		OpponentTeamID: 2,
		Season:         2023,
		GameDate:       time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC),
		WL:             "W",
		YWin:           1,
		RollPts:        float64Ptr(111.5),
		// RollReb deliberately left missing.
	}
	require.NoError(t, Save(row))

	loaded := &MatchupRow{}
	require.NoError(t, FindByPrimaryKey(loaded, map[string]interface{}{
		"game_id": "g9",
		"team_id": int64(1),
	}))

	require.NotNil(t, loaded.RollPts)
	assert.InDelta(t, 111.5, *loaded.RollPts, 1e-9)
	assert.Nil(t, loaded.RollReb)
	assert.Equal(t, 1, loaded.YWin)
	assert.True(t, loaded.GameDate.Equal(time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC)))
}

func TestBulkSaveAndFindWhere(t *testing.T) {
	setupTestDatabase(t)

	var rows []Persistable
	for i := 0; i < 5; i++ {
		rows = append(rows, &TeamGame{
			GameID:         "g1",
			TeamID:         int64(i + 1),
			OpponentTeamID: int64(i + 100),
			Season:         2023,
			GameDate:       time.Date(2023, 11, int(i)+1, 0, 0, 0, 0, time.UTC),
			WL:             "W",
		})
	}
	require.NoError(t, BulkSave(rows))

	found, err := FindWhere(&TeamGame{}, "team_id > ? ORDER BY team_id", int64(2))
	require.NoError(t, err)
	require.Len(t, found, 3)

	first, ok := found[0].(*TeamGame)
	require.True(t, ok)
	assert.Equal(t, int64(3), first.TeamID)
}

func TestDeleteAllEmptiesTable(t *testing.T) {
	setupTestDatabase(t)

	require.NoError(t, Save(&Team{TeamID: 1, FullName: "Alpha"}))
	require.NoError(t, Save(&Team{TeamID: 2, FullName: "Beta"}))
	require.NoError(t, DeleteAll(&Team{}))

	all, err := FindAll(&Team{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExists(t *testing.T) {
	setupTestDatabase(t)

	team := &Team{TeamID: 55, FullName: "Gamma"}
	found, err := Exists(team)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, Save(team))
	found, err = Exists(team)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestPredictionValidation(t *testing.T) {
	bad := &Prediction{GameID: "g1", TeamID: 1, RunID: "r", WinProbability: 1.7}
	require.Error(t, bad.BeforeSave())

	good := &Prediction{GameID: "g1", TeamID: 1, RunID: "r", WinProbability: 0.62}
	require.NoError(t, good.BeforeSave())
}

func TestCreateViewsAgainstSchema(t *testing.T) {
	setupTestDatabase(t)
	require.NoError(t, CreateViews())

	db, err := GetDB()
	require.NoError(t, err)

	// The named views are queryable even when the tables are empty.
	for _, view := range []string{"v_teams", "v_games", "v_training_dataset_named", "v_training_dataset_enriched_named", "v_predictions_named"} {
		rows, err := db.Query("SELECT * FROM " + view)
		require.NoError(t, err, "view %s", view)
		rows.Close()
	}
}
