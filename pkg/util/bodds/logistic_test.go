package bodds

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separableData builds a one-feature problem where the sign of the feature
// determines the label
func separableData() ([][]float64, []int) {
	var features [][]float64
	var labels []int
	for i := 1; i <= 10; i++ {
		features = append(features, []float64{float64(i)})
		labels = append(labels, 1)
		features = append(features, []float64{float64(-i)})
		labels = append(labels, 0)
	}
	return features, labels
}

func TestLogisticLearnsSeparableData(t *testing.T) {
	features, labels := separableData()

	model := NewLogisticModel()
	require.NoError(t, model.Fit(features, labels))

	probs := model.PredictProba([][]float64{{5}, {-5}})
	assert.Greater(t, probs[0], 0.8)
	assert.Less(t, probs[1], 0.2)

	assert.InDelta(t, 1.0, Accuracy(labels, model.PredictProba(features)), 1e-9)
}

func TestLogisticProbabilitiesAreBounded(t *testing.T) {
	features, labels := separableData()
	model := NewLogisticModel()
	require.NoError(t, model.Fit(features, labels))

	for _, p := range model.PredictProba(features) {
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
	}
}

func TestLogisticIsDeterministic(t *testing.T) {
	features, labels := separableData()

	a := NewLogisticModel()
	require.NoError(t, a.Fit(features, labels))
	b := NewLogisticModel()
	require.NoError(t, b.Fit(features, labels))

	assert.Equal(t, a.Weights, b.Weights)
	assert.Equal(t, a.Bias, b.Bias)
}

func TestLogisticHandlesConstantColumn(t *testing.T) {
	// A constant feature must not produce NaN weights through a zero
	// standard deviation.
	features := [][]float64{{1, 3}, {1, -2}, {1, 4}, {1, -1}}
	labels := []int{1, 0, 1, 0}

	model := NewLogisticModel()
	require.NoError(t, model.Fit(features, labels))
}

func TestLogisticRejectsBadInput(t *testing.T) {
	model := NewLogisticModel()
	require.Error(t, model.Fit(nil, nil))
	require.Error(t, model.Fit([][]float64{{1}}, []int{1, 0}))
}

func TestLogisticSurvivesJSONRoundTrip(t *testing.T) {
	features, labels := separableData()
	model := NewLogisticModel()
	require.NoError(t, model.Fit(features, labels))

	data, err := json.Marshal(model)
	require.NoError(t, err)

	restored := &LogisticModel{}
	require.NoError(t, json.Unmarshal(data, restored))

	want := model.PredictProba(features)
	got := restored.PredictProba(features)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}
