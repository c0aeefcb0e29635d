package bodds

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// synthMatchup builds a fully populated training row where the scoring form
// gap carries the outcome signal
func synthMatchup(i int, win bool) *MatchupRow {
	gap := 8.0
	if !win {
		gap = -8.0
	}
	// Mild deterministic jitter so the features are not perfectly separable.
	jitter := float64(i%5) - 2.0

	yWin := 0
	wl := "L"
	if win {
		yWin = 1
		wl = "W"
	}
	return &MatchupRow{
		GameID:         fmt.Sprintf("s%04d", i),
		TeamID:         1,
		OpponentTeamID: 2,
		Season:         2023,
		GameDate:       time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		IsHome:         i%2 == 0,
		WL:             wl,
		YWin:           yWin,

		RestDays:    float64Ptr(2),
		RollPts:     float64Ptr(105 + gap + jitter),
		RollReb:     float64Ptr(43),
		RollAst:     float64Ptr(25),
		RollTov:     float64Ptr(13),
		RollFgPct:   float64Ptr(0.47),
		RollFg3Pct:  float64Ptr(0.36),
		RollFtPct:   float64Ptr(0.78),
		RollWinRate: float64Ptr(0.5 + gap/40),

		OppRestDays:    float64Ptr(2),
		OppRollPts:     float64Ptr(105 - gap + jitter),
		OppRollReb:     float64Ptr(43),
		OppRollAst:     float64Ptr(25),
		OppRollTov:     float64Ptr(13),
		OppRollFgPct:   float64Ptr(0.47),
		OppRollFg3Pct:  float64Ptr(0.36),
		OppRollFtPct:   float64Ptr(0.78),
		OppRollWinRate: float64Ptr(0.5 - gap/40),
	}
}

func synthSplit(nTrain, nVal, nTest int) *DatasetSplit {
	split := &DatasetSplit{}
	i := 0
	for ; i < nTrain; i++ {
		split.Train = append(split.Train, synthMatchup(i, i%2 == 0))
	}
	for ; i < nTrain+nVal; i++ {
		split.Validation = append(split.Validation, synthMatchup(i, i%2 == 0))
	}
	for ; i < nTrain+nVal+nTest; i++ {
		split.Test = append(split.Test, synthMatchup(i, i%2 == 0))
	}
	return split
}

func TestTrainAndSelectRunsBothCandidates(t *testing.T) {
	split := synthSplit(60, 20, 20)

	result, err := TrainAndSelect(split, VariantBase)
	require.NoError(t, err)
	require.NotNil(t, result.Model)

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "logistic", result.Candidates[0].Name)
	assert.Equal(t, "boost", result.Candidates[1].Name)
	assert.False(t, result.Candidates[0].Failed)
	assert.False(t, result.Candidates[1].Failed)
}

func TestTrainAndSelectReportsCandidateValidationMetrics(t *testing.T) {
	split := synthSplit(60, 20, 20)

	result, err := TrainAndSelect(split, VariantBase)
	require.NoError(t, err)

	// Every surviving candidate is scored on the validation partition with
	// all three metrics, not just the selection criterion.
	for _, c := range result.Candidates {
		require.False(t, c.Failed)
		assert.Greater(t, c.ValLogLoss, 0.0)
		assert.Less(t, c.ValLogLoss, 0.693)
		assert.Greater(t, c.ValAccuracy, 0.7)
		require.NotNil(t, c.ValROCAUC, "candidate %s has no validation AUC", c.Name)
		assert.Greater(t, *c.ValROCAUC, 0.8)
	}
}

func TestTrainAndSelectScoresHeldOutRows(t *testing.T) {
	split := synthSplit(60, 20, 20)

	result, err := TrainAndSelect(split, VariantBase)
	require.NoError(t, err)

	require.Len(t, result.TestPredictions, len(split.Test))
	for i, tp := range result.TestPredictions {
		row := split.Test[i]
		assert.Equal(t, row.GameID, tp.GameID)
		assert.Equal(t, row.TeamID, tp.TeamID)
		assert.Equal(t, row.OpponentTeamID, tp.OpponentTeamID)
		assert.True(t, row.GameDate.Equal(tp.GameDate))
		assert.Equal(t, row.YWin, tp.YWin)
		assert.GreaterOrEqual(t, tp.PredictedProbability, 0.0)
		assert.LessOrEqual(t, tp.PredictedProbability, 1.0)
	}
}

func TestTrainAndSelectPicksLowestValidationLogLoss(t *testing.T) {
	split := synthSplit(60, 20, 20)

	result, err := TrainAndSelect(split, VariantBase)
	require.NoError(t, err)

	var winner CandidateMetrics
	best := -1.0
	for _, c := range result.Candidates {
		if c.Failed {
			continue
		}
		if best < 0 || c.ValLogLoss < best {
			best = c.ValLogLoss
			winner = c
		}
	}
	assert.Equal(t, winner.Name, result.Model.Name())
}

func TestTrainAndSelectReportsTestMetrics(t *testing.T) {
	split := synthSplit(60, 20, 20)

	result, err := TrainAndSelect(split, VariantBase)
	require.NoError(t, err)

	// The signal is strong so the winner beats the coin flip baseline.
	assert.Less(t, result.Test.LogLoss, 0.693)
	assert.Greater(t, result.Test.Accuracy, 0.7)
	require.NotNil(t, result.Test.ROCAUC)
	assert.Greater(t, *result.Test.ROCAUC, 0.8)

	assert.Equal(t, 60, result.TrainRows)
	assert.Equal(t, 20, result.ValidationRows)
	assert.Equal(t, 20, result.TestRows)
	assert.Equal(t, VariantBase, result.Variant)
	assert.Equal(t, FeatureColumns(VariantBase), result.FeatureColumns)
}

func TestTrainAndSelectImputesMissingFeatures(t *testing.T) {
	split := synthSplit(60, 20, 20)
	// Punch holes in a few rows; the imputer must absorb them.
	split.Train[3].RollFtPct = nil
	split.Train[9].OppRollReb = nil
	split.Validation[1].RestDays = nil

	result, err := TrainAndSelect(split, VariantBase)
	require.NoError(t, err)
	require.NotNil(t, result.Imputer)
	assert.Len(t, result.Imputer.Medians, len(result.FeatureColumns))
}

func TestTrainAndSelectFailsWhenNothingFits(t *testing.T) {
	// An empty train matrix makes the imputer fail before any candidate.
	split := &DatasetSplit{}
	_, err := TrainAndSelect(split, VariantBase)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConsistency))
}
