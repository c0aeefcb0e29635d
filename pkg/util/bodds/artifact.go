package bodds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/bodds/internal/logger"
)

/**
* Artifact persistence. A training run produces a single JSON bundle that
* carries everything scoring needs: the fitted model, the train-only
* imputation medians, the exact feature column order, the evaluation
* metrics and the scored test rows. The bundle is written to a temporary file and renamed into
* place, so readers only ever see a complete artifact.
 */

const artifactFileName = "model.json"

// Artifact is the serialized form of one training run
type Artifact struct {
	RunID           string             `json:"runId"`
	CreatedAt       time.Time          `json:"createdAt"`
	Seed            int64              `json:"seed"`
	ModelName       string             `json:"modelName"`
	ModelPayload    json.RawMessage    `json:"modelPayload"`
	Imputer         *Imputer           `json:"imputer"`
	FeatureColumns  []string           `json:"featureColumns"`
	Variant         DatasetVariant     `json:"variant"`
	Candidates      []CandidateMetrics `json:"candidates"`
	Test            TestMetrics        `json:"testMetrics"`
	TestPredictions []TestPrediction   `json:"testPredictions"`
	TrainRows       int                `json:"trainRows"`
	ValidationRows  int                `json:"validationRows"`
	TestRows        int                `json:"testRows"`
}

// NewArtifact packages a training result under a fresh run id
func NewArtifact(result *TrainResult) (*Artifact, error) {
	payload, err := json.Marshal(result.Model)
	if err != nil {
		return nil, fmt.Errorf("serializing %s model: %w", result.Model.Name(), err)
	}
	return &Artifact{
		RunID:           uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		Seed:            Config.Seed,
		ModelName:       result.Model.Name(),
		ModelPayload:    payload,
		Imputer:         result.Imputer,
		FeatureColumns:  result.FeatureColumns,
		Variant:         result.Variant,
		Candidates:      result.Candidates,
		Test:            result.Test,
		TestPredictions: result.TestPredictions,
		TrainRows:       result.TrainRows,
		ValidationRows:  result.ValidationRows,
		TestRows:        result.TestRows,
	}, nil
}

// Model reconstructs the fitted classifier from the stored payload
func (a *Artifact) Model() (Classifier, error) {
	switch a.ModelName {
	case "logistic":
		model := &LogisticModel{}
		if err := json.Unmarshal(a.ModelPayload, model); err != nil {
			return nil, fmt.Errorf("decoding logistic payload: %w", err)
		}
		return model, nil
	case "boost":
		model := &BoostModel{}
		if err := json.Unmarshal(a.ModelPayload, model); err != nil {
			return nil, fmt.Errorf("decoding boost payload: %w", err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unknown model name %q in artifact %s", a.ModelName, a.RunID)
	}
}

// Save writes the artifact atomically into the given directory.
// The temporary file lives in the same directory as the final path so the
// rename never crosses a filesystem boundary.
func (a *Artifact) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating artifacts directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding artifact: %w", err)
	}

	final := filepath.Join(dir, artifactFileName)
	tmp, err := os.CreateTemp(dir, artifactFileName+".*")
	if err != nil {
		return "", fmt.Errorf("creating temporary artifact file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing artifact: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("replacing artifact: %w", err)
	}

	logger.Info("saved artifact", a.RunID, "to", final)
	return final, nil
}

// LoadArtifact reads and validates the artifact in the given directory
func LoadArtifact(dir string) (*Artifact, error) {
	path := filepath.Join(dir, artifactFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}

	artifact := &Artifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, fmt.Errorf("decoding artifact %s: %w", path, err)
	}
	if artifact.ModelName == "" || len(artifact.FeatureColumns) == 0 || artifact.Imputer == nil {
		return nil, fmt.Errorf("artifact %s is incomplete", path)
	}
	if len(artifact.Imputer.Medians) != len(artifact.FeatureColumns) {
		return nil, fmt.Errorf("artifact %s: %d medians for %d feature columns",
			path, len(artifact.Imputer.Medians), len(artifact.FeatureColumns))
	}
	return artifact, nil
}
