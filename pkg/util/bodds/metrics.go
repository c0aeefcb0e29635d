package bodds

import (
	"math"
	"sort"
)

/**
* Evaluation metrics for binary win probabilities.
* Log-loss is the selection criterion; accuracy and ROC AUC are reported
* alongside it for context.
 */

// LogLoss computes the mean negative log-likelihood of the labels under the
// predicted probabilities. Probabilities are clamped away from 0 and 1 so a
// confidently wrong prediction stays finite.
func LogLoss(labels []int, probs []float64) float64 {
	if len(labels) == 0 {
		return math.NaN()
	}
	eps := Config.LogLossEpsilon
	total := 0.0
	for i, y := range labels {
		p := probs[i]
		if p < eps {
			p = eps
		}
		if p > 1.0-eps {
			p = 1.0 - eps
		}
		if y == 1 {
			total -= math.Log(p)
		} else {
			total -= math.Log(1.0 - p)
		}
	}
	return total / float64(len(labels))
}

// Accuracy scores at the conventional 0.5 threshold
func Accuracy(labels []int, probs []float64) float64 {
	if len(labels) == 0 {
		return math.NaN()
	}
	correct := 0
	for i, y := range labels {
		pred := 0
		if probs[i] >= 0.5 {
			pred = 1
		}
		if pred == y {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}

// ROCAUC returns the area under the ROC curve, or nil when the labels hold
// only a single class and the statistic is undefined. Tied probabilities
// contribute half credit, matching the rank-based formulation.
func ROCAUC(labels []int, probs []float64) *float64 {
	nPos := 0
	nNeg := 0
	for _, y := range labels {
		if y == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil
	}

	type scored struct {
		prob  float64
		label int
	}
	pairs := make([]scored, len(labels))
	for i := range labels {
		pairs[i] = scored{prob: probs[i], label: labels[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].prob < pairs[j].prob })

	// Rank sum for the positive class, with tied groups sharing the
	// average rank of the group.
	rankSum := 0.0
	i := 0
	for i < len(pairs) {
		j := i
		for j < len(pairs) && pairs[j].prob == pairs[i].prob {
			j++
		}
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if pairs[k].label == 1 {
				rankSum += avgRank
			}
		}
		i = j
	}

	auc := (rankSum - float64(nPos)*float64(nPos+1)/2.0) / (float64(nPos) * float64(nNeg))
	return &auc
}
