package bodds

import (
	"fmt"
	"math"
	"sort"
)

/**
* Gradient boosting for binary classification. Each round fits a small
* regression tree to the gradient of the log-loss and takes a Newton step
* in each leaf, accumulating an additive model on the log-odds scale.
* Training is fully deterministic: no row or column subsampling, greedy
* splits with first-wins tie breaking.
 */
type BoostModel struct {
	Trees        []*boostNode `json:"trees"`
	BasePred     float64      `json:"basePred"`
	LearningRate float64      `json:"learningRate"`

	rounds   int
	maxDepth int
	minLeaf  int
}

// boostNode is one node of a regression tree. Leaves carry a value and no
// children; internal nodes route on feature <= threshold.
type boostNode struct {
	Feature   int        `json:"feature"`
	Threshold float64    `json:"threshold"`
	Value     float64    `json:"value"`
	Left      *boostNode `json:"left,omitempty"`
	Right     *boostNode `json:"right,omitempty"`
}

func (n *boostNode) isLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// NewBoostModel builds a model with the configured training parameters
func NewBoostModel() *BoostModel {
	return &BoostModel{
		LearningRate: Config.BoostLearningRate,
		rounds:       Config.BoostRounds,
		maxDepth:     Config.BoostMaxDepth,
		minLeaf:      Config.BoostMinLeaf,
	}
}

func (m *BoostModel) Name() string {
	return "boost"
}

// Fit grows the tree ensemble against the training labels
func (m *BoostModel) Fit(features [][]float64, labels []int) error {
	if len(features) == 0 {
		return fmt.Errorf("boost fit requires at least one row")
	}
	if len(features) != len(labels) {
		return fmt.Errorf("feature rows (%d) and labels (%d) disagree", len(features), len(labels))
	}

	n := len(features)

	// Start from the log-odds of the base rate.
	pos := 0
	for _, y := range labels {
		pos += y
	}
	rate := float64(pos) / float64(n)
	eps := Config.LogLossEpsilon
	if rate < eps {
		rate = eps
	}
	if rate > 1.0-eps {
		rate = 1.0 - eps
	}
	m.BasePred = math.Log(rate / (1.0 - rate))

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = m.BasePred
	}

	grads := make([]float64, n)
	hess := make([]float64, n)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	m.Trees = make([]*boostNode, 0, m.rounds)
	for round := 0; round < m.rounds; round++ {
		for i := range scores {
			p := sigmoid(scores[i])
			grads[i] = p - float64(labels[i])
			hess[i] = p * (1.0 - p)
		}

		tree := m.growTree(features, grads, hess, indices, 0)
		if tree == nil {
			break
		}
		m.Trees = append(m.Trees, tree)

		for i := range scores {
			scores[i] += m.LearningRate * tree.predict(features[i])
			if math.IsNaN(scores[i]) || math.IsInf(scores[i], 0) {
				return fmt.Errorf("%w: boosted scores diverged at round %d", ErrFit, round)
			}
		}
	}

	return nil
}

// PredictProba returns the home-team win probability for each row
func (m *BoostModel) PredictProba(features [][]float64) []float64 {
	probs := make([]float64, len(features))
	for i, row := range features {
		score := m.BasePred
		for _, tree := range m.Trees {
			score += m.LearningRate * tree.predict(row)
		}
		probs[i] = sigmoid(score)
	}
	return probs
}

func (n *boostNode) predict(row []float64) float64 {
	node := n
	for !node.isLeaf() {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// growTree recursively builds a regression tree over the given row subset.
// Leaf values are Newton steps: -sum(grad) / (sum(hess) + lambda).
func (m *BoostModel) growTree(features [][]float64, grads, hess []float64, indices []int, depth int) *boostNode {
	if len(indices) == 0 {
		return nil
	}

	leaf := &boostNode{Value: newtonStep(grads, hess, indices)}
	if depth >= m.maxDepth || len(indices) < 2*m.minLeaf {
		return leaf
	}

	feature, threshold, ok := m.bestSplit(features, grads, hess, indices)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, i := range indices {
		if features[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	leaf.Feature = feature
	leaf.Threshold = threshold
	leaf.Left = m.growTree(features, grads, hess, left, depth+1)
	leaf.Right = m.growTree(features, grads, hess, right, depth+1)
	if leaf.Left == nil || leaf.Right == nil {
		return &boostNode{Value: leaf.Value}
	}
	return leaf
}

// bestSplit scans every feature for the threshold with the highest gain.
// Candidate thresholds are midpoints between consecutive distinct values.
func (m *BoostModel) bestSplit(features [][]float64, grads, hess []float64, indices []int) (int, float64, bool) {
	const lambda = 1.0

	var totalG, totalH float64
	for _, i := range indices {
		totalG += grads[i]
		totalH += hess[i]
	}
	parentScore := totalG * totalG / (totalH + lambda)

	bestGain := 1e-9
	bestFeature := -1
	bestThreshold := 0.0
	nCols := len(features[indices[0]])

	order := make([]int, len(indices))
	for j := 0; j < nCols; j++ {
		copy(order, indices)
		sort.SliceStable(order, func(a, b int) bool {
			return features[order[a]][j] < features[order[b]][j]
		})

		var leftG, leftH float64
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			leftG += grads[i]
			leftH += hess[i]

			v := features[i][j]
			next := features[order[k+1]][j]
			if v == next {
				continue
			}
			if k+1 < m.minLeaf || len(order)-k-1 < m.minLeaf {
				continue
			}

			rightG := totalG - leftG
			rightH := totalH - leftH
			gain := leftG*leftG/(leftH+lambda) + rightG*rightG/(rightH+lambda) - parentScore
			if gain > bestGain {
				bestGain = gain
				bestFeature = j
				bestThreshold = (v + next) / 2.0
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func newtonStep(grads, hess []float64, indices []int) float64 {
	const lambda = 1.0
	var g, h float64
	for _, i := range indices {
		g += grads[i]
		h += hess[i]
	}
	return -g / (h + lambda)
}
