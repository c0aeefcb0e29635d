package bodds

import (
	"fmt"
	"time"

	"github.com/richard-senior/bodds/internal/logger"
)

/**
* Batch scoring. Feature rows are rebuilt exactly as at training time, the
* artifact's stored column order and imputation medians are replayed, and
* the reconstructed model produces one win probability per row. Scores are
* persisted alongside the run id that produced them.
 */

// Prediction is one scored matchup row
type Prediction struct {
	GameID         string    `json:"gameId" column:"game_id" dbtype:"TEXT" primary:"true"`
	TeamID         int64     `json:"teamId" column:"team_id" dbtype:"INTEGER" primary:"true"`
	RunID          string    `json:"runId" column:"run_id" dbtype:"TEXT" primary:"true"`
	GameDate       time.Time `json:"gameDate" column:"game_date" dbtype:"TIMESTAMP" index:"true"`
	OpponentTeamID int64     `json:"opponentTeamId" column:"opponent_team_id" dbtype:"INTEGER"`
	IsHome         bool      `json:"isHome" column:"is_home" dbtype:"BOOLEAN"`
	WinProbability float64   `json:"winProbability" column:"win_probability" dbtype:"REAL"`
	ModelName      string    `json:"modelName" column:"model_name" dbtype:"TEXT"`
	ScoredAt       time.Time `json:"scoredAt" column:"scored_at" dbtype:"TIMESTAMP"`
}

func (p *Prediction) GetTableName() string {
	return "predictions"
}

func (p *Prediction) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"game_id": p.GameID,
		"team_id": p.TeamID,
		"run_id":  p.RunID,
	}
}

func (p *Prediction) BeforeSave() error {
	if p.GameID == "" || p.TeamID == 0 {
		return fmt.Errorf("prediction requires a game id and team id")
	}
	if p.WinProbability < 0.0 || p.WinProbability > 1.0 {
		return fmt.Errorf("win probability %f outside [0, 1]", p.WinProbability)
	}
	return nil
}

var _ Persistable = (*Prediction)(nil)

// Score applies a loaded artifact to matchup rows and returns one
// prediction per row, in the rows' order
func Score(artifact *Artifact, rows []*MatchupRow) ([]*Prediction, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to score")
	}

	model, err := artifact.Model()
	if err != nil {
		return nil, err
	}

	features, _ := BuildMatrix(rows, artifact.FeatureColumns)
	features = artifact.Imputer.Apply(features)
	probs := model.PredictProba(features)

	now := time.Now().UTC()
	predictions := make([]*Prediction, len(rows))
	for i, row := range rows {
		predictions[i] = &Prediction{
			GameID:         row.GameID,
			TeamID:         row.TeamID,
			RunID:          artifact.RunID,
			GameDate:       row.GameDate,
			OpponentTeamID: row.OpponentTeamID,
			IsHome:         row.IsHome,
			WinProbability: probs[i],
			ModelName:      artifact.ModelName,
			ScoredAt:       now,
		}
	}

	logger.Info(fmt.Sprintf("scored %d rows with %s model (run %s)", len(rows), artifact.ModelName, artifact.RunID))
	return predictions, nil
}

// SavePredictions persists scored rows to the predictions table. Any rows
// previously stored for the same run are replaced, so re-scoring with the
// same artifact never collides with the run's earlier writes.
func SavePredictions(predictions []*Prediction) error {
	if len(predictions) == 0 {
		return nil
	}
	if err := DeleteWhere(&Prediction{}, "run_id = ?", predictions[0].RunID); err != nil {
		return err
	}
	objs := make([]Persistable, len(predictions))
	for i, p := range predictions {
		objs[i] = p
	}
	return BulkSave(objs)
}
