package bodds

import (
	"fmt"
	"math"
)

/**
* L2-regularised logistic regression trained by full-batch gradient descent.
* Inputs are standardised internally so one learning rate works across
* features with very different scales (rest days vs shooting percentages).
* The fitted means and deviations travel with the model so scoring applies
* the identical transform.
 */
type LogisticModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Means   []float64 `json:"means"`
	Stddevs []float64 `json:"stddevs"`

	iterations   int
	learningRate float64
	l2           float64
}

// NewLogisticModel builds a model with the configured training parameters
func NewLogisticModel() *LogisticModel {
	return &LogisticModel{
		iterations:   Config.LogisticIterations,
		learningRate: Config.LogisticLearningRate,
		l2:           Config.LogisticL2,
	}
}

func (m *LogisticModel) Name() string {
	return "logistic"
}

// Fit learns weights by minimising regularised log-loss
func (m *LogisticModel) Fit(features [][]float64, labels []int) error {
	if len(features) == 0 {
		return fmt.Errorf("logistic fit requires at least one row")
	}
	if len(features) != len(labels) {
		return fmt.Errorf("feature rows (%d) and labels (%d) disagree", len(features), len(labels))
	}

	nCols := len(features[0])
	m.Means, m.Stddevs = columnStats(features)
	scaled := m.standardize(features)

	m.Weights = make([]float64, nCols)
	m.Bias = 0.0
	n := float64(len(scaled))

	for iter := 0; iter < m.iterations; iter++ {
		gradW := make([]float64, nCols)
		gradB := 0.0
		for i, row := range scaled {
			p := sigmoid(dot(m.Weights, row) + m.Bias)
			residual := p - float64(labels[i])
			for j, x := range row {
				gradW[j] += residual * x
			}
			gradB += residual
		}
		for j := range gradW {
			gradW[j] = gradW[j]/n + m.l2*m.Weights[j]
			m.Weights[j] -= m.learningRate * gradW[j]
		}
		m.Bias -= m.learningRate * (gradB / n)
	}

	for _, w := range m.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: logistic weights diverged", ErrFit)
		}
	}
	return nil
}

// PredictProba returns the home-team win probability for each row
func (m *LogisticModel) PredictProba(features [][]float64) []float64 {
	scaled := m.standardize(features)
	probs := make([]float64, len(scaled))
	for i, row := range scaled {
		probs[i] = sigmoid(dot(m.Weights, row) + m.Bias)
	}
	return probs
}

func (m *LogisticModel) standardize(features [][]float64) [][]float64 {
	out := make([][]float64, len(features))
	for i, row := range features {
		vec := make([]float64, len(row))
		for j, v := range row {
			if j < len(m.Means) {
				vec[j] = (v - m.Means[j]) / m.Stddevs[j]
			} else {
				vec[j] = v
			}
		}
		out[i] = vec
	}
	return out
}

// columnStats returns per-column means and standard deviations, with
// constant columns given unit deviation so standardisation stays finite
func columnStats(features [][]float64) ([]float64, []float64) {
	nCols := len(features[0])
	n := float64(len(features))
	means := make([]float64, nCols)
	stds := make([]float64, nCols)

	for _, row := range features {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, row := range features {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
		if stds[j] == 0 {
			stds[j] = 1.0
		}
	}
	return means, stds
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	total := 0.0
	for i := range a {
		total += a[i] * b[i]
	}
	return total
}
