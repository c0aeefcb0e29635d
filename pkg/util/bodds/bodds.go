package bodds

import (
	"fmt"

	"github.com/richard-senior/bodds/internal/logger"
)

/**
* Pipeline orchestration. Train runs the full chain from raw CSV exports
* to a saved model artifact; Predict replays a saved artifact over stored
* matchup rows. Each stage logs its row counts so a run can be audited
* from the log alone.
 */

// Train executes the end-to-end training pipeline against the configured
// data directory and returns the persisted artifact
func Train() (*Artifact, error) {
	tables, err := LoadStandardTables(Config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("loading source data: %w", err)
	}

	if err := SaveTeams(tables.Teams); err != nil {
		return nil, err
	}
	if err := SaveTeamGames(tables.Games); err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("loaded %d teams and %d team game rows", len(tables.Teams), len(tables.Games)))

	var stars map[StarKey]*StarFeatures
	if tables.HasPlayers() {
		if err := SavePlayers(tables.Players); err != nil {
			return nil, err
		}
		if err := SavePlayerGames(tables.PlayerGames); err != nil {
			return nil, err
		}

		playerForms := ComputePlayerForm(tables.PlayerGames)
		stars, err = BuildStarFeatures(playerForms)
		if err != nil {
			logger.Warn("player data present but unusable, falling back to team features:", err)
			stars = nil
		} else {
			logger.Info(fmt.Sprintf("computed star features for %d team game slots", len(stars)))
		}
	} else {
		logger.Info("no player data found, training on team features only")
	}

	forms := ComputeTeamForm(tables.Games)
	rows, variant, err := AssembleMatchups(forms, stars)
	if err != nil {
		return nil, fmt.Errorf("assembling matchups: %w", err)
	}
	if err := SaveMatchups(rows); err != nil {
		return nil, err
	}
	if err := CreateViews(); err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("assembled %d matchup rows (%s variant)", len(rows), variant))

	split, err := TimeSplit(rows, Config.TestFraction, Config.ValidationFraction)
	if err != nil {
		return nil, fmt.Errorf("splitting dataset: %w", err)
	}
	logger.Info(fmt.Sprintf("split: %d train, %d validation, %d test",
		len(split.Train), len(split.Validation), len(split.Test)))

	result, err := TrainAndSelect(split, variant)
	if err != nil {
		return nil, err
	}

	artifact, err := NewArtifact(result)
	if err != nil {
		return nil, err
	}
	if _, err := artifact.Save(Config.ArtifactsDir); err != nil {
		return nil, err
	}

	// The held-out test scores go to the predictions table as well, so the
	// run's evaluation rows can be queried next to later batch scores.
	testPredictions, err := Score(artifact, split.Test)
	if err != nil {
		return nil, fmt.Errorf("scoring test partition: %w", err)
	}
	if err := SavePredictions(testPredictions); err != nil {
		return nil, err
	}
	return artifact, nil
}

// Predict loads the saved artifact and scores stored matchup rows.
// A non-zero season restricts scoring to that season's rows.
func Predict(season int) ([]*Prediction, error) {
	artifact, err := LoadArtifact(Config.ArtifactsDir)
	if err != nil {
		return nil, err
	}

	rows, err := LoadMatchups(season)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no matchup rows in the database, run train first")
	}

	predictions, err := Score(artifact, rows)
	if err != nil {
		return nil, err
	}
	if err := SavePredictions(predictions); err != nil {
		return nil, err
	}
	return predictions, nil
}

// LoadMatchups reads matchup rows from the database in chronological order.
// Season zero means every season.
func LoadMatchups(season int) ([]*MatchupRow, error) {
	where := "1=1"
	var args []interface{}
	if season != 0 {
		where = "season = ?"
		args = append(args, season)
	}

	found, err := FindWhere(&MatchupRow{}, where+" ORDER BY game_date, game_id, team_id", args...)
	if err != nil {
		return nil, err
	}

	rows := make([]*MatchupRow, 0, len(found))
	for _, obj := range found {
		row, ok := obj.(*MatchupRow)
		if !ok {
			return nil, fmt.Errorf("unexpected type %T from matchup query", obj)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
