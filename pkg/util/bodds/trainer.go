package bodds

import (
	"fmt"
	"time"

	"github.com/richard-senior/bodds/internal/logger"
)

/**
* Candidate training and model selection. Both model families are fitted on
* the imputed training partition and compared on validation log-loss; the
* winner is evaluated once on the held-out test partition. Candidates are
* tried in a fixed order and ties go to the earlier candidate, so repeated
* runs over the same data pick the same model.
 */

// CandidateMetrics records how one candidate fared on the validation set
type CandidateMetrics struct {
	Name        string   `json:"name"`
	ValLogLoss  float64  `json:"valLogLoss"`
	ValAccuracy float64  `json:"valAccuracy"`
	ValROCAUC   *float64 `json:"valRocAuc,omitempty"`
	Failed      bool     `json:"failed"`
	FailureMsg  string   `json:"failureMsg,omitempty"`
}

// TestMetrics are computed once, for the selected model only
type TestMetrics struct {
	LogLoss  float64  `json:"logLoss"`
	Accuracy float64  `json:"accuracy"`
	ROCAUC   *float64 `json:"rocAuc,omitempty"`
}

// TestPrediction is one held-out test row scored by the selected model,
// kept alongside the metrics so a run's test evaluation can be re-audited
type TestPrediction struct {
	GameID               string    `json:"gameId"`
	GameDate             time.Time `json:"gameDate"`
	TeamID               int64     `json:"teamId"`
	OpponentTeamID       int64     `json:"opponentTeamId"`
	YWin                 int       `json:"yWin"`
	PredictedProbability float64   `json:"predictedProbability"`
}

// TrainResult is everything the artifact writer needs to persist a run
type TrainResult struct {
	Model           Classifier
	Imputer         *Imputer
	FeatureColumns  []string
	Variant         DatasetVariant
	Candidates      []CandidateMetrics
	Test            TestMetrics
	TestPredictions []TestPrediction
	TrainRows       int
	ValidationRows  int
	TestRows        int
}

// TrainAndSelect fits every candidate on the train partition, selects the
// one with the lowest validation log-loss and reports its test metrics.
// A candidate whose fit fails is logged and excluded; only when every
// candidate fails does training itself fail.
func TrainAndSelect(split *DatasetSplit, variant DatasetVariant) (*TrainResult, error) {
	columns := FeatureColumns(variant)

	trainX, trainY := BuildMatrix(split.Train, columns)
	valX, valY := BuildMatrix(split.Validation, columns)
	testX, testY := BuildMatrix(split.Test, columns)

	imputer, err := FitImputer(trainX)
	if err != nil {
		return nil, fmt.Errorf("fitting imputer: %w", err)
	}
	trainX = imputer.Apply(trainX)
	valX = imputer.Apply(valX)
	testX = imputer.Apply(testX)

	candidates := []Classifier{
		NewLogisticModel(),
		NewBoostModel(),
	}

	result := &TrainResult{
		Imputer:        imputer,
		FeatureColumns: columns,
		Variant:        variant,
		TrainRows:      len(split.Train),
		ValidationRows: len(split.Validation),
		TestRows:       len(split.Test),
	}

	var best Classifier
	bestLoss := 0.0

	for _, candidate := range candidates {
		if err := candidate.Fit(trainX, trainY); err != nil {
			logger.Warn("candidate", candidate.Name(), "failed to fit:", err)
			result.Candidates = append(result.Candidates, CandidateMetrics{
				Name:       candidate.Name(),
				Failed:     true,
				FailureMsg: err.Error(),
			})
			continue
		}

		valProbs := candidate.PredictProba(valX)
		valLoss := LogLoss(valY, valProbs)
		logger.Info(fmt.Sprintf("candidate %s: validation log-loss %.4f", candidate.Name(), valLoss))
		result.Candidates = append(result.Candidates, CandidateMetrics{
			Name:        candidate.Name(),
			ValLogLoss:  valLoss,
			ValAccuracy: Accuracy(valY, valProbs),
			ValROCAUC:   ROCAUC(valY, valProbs),
		})

		// Strict less-than keeps the earlier candidate on an exact tie.
		if best == nil || valLoss < bestLoss {
			best = candidate
			bestLoss = valLoss
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: every candidate model failed to fit", ErrFit)
	}

	testProbs := best.PredictProba(testX)
	result.Model = best
	result.Test = TestMetrics{
		LogLoss:  LogLoss(testY, testProbs),
		Accuracy: Accuracy(testY, testProbs),
		ROCAUC:   ROCAUC(testY, testProbs),
	}
	result.TestPredictions = make([]TestPrediction, len(split.Test))
	for i, row := range split.Test {
		result.TestPredictions[i] = TestPrediction{
			GameID:               row.GameID,
			GameDate:             row.GameDate,
			TeamID:               row.TeamID,
			OpponentTeamID:       row.OpponentTeamID,
			YWin:                 row.YWin,
			PredictedProbability: testProbs[i],
		}
	}

	logger.Highlight(fmt.Sprintf("selected %s (val log-loss %.4f, test log-loss %.4f, test accuracy %.3f)",
		best.Name(), bestLoss, result.Test.LogLoss, result.Test.Accuracy))

	return result, nil
}
