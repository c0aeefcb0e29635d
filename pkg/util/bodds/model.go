package bodds

import (
	"fmt"
	"math"
	"sort"
)

// Classifier is the capability both candidate model families implement.
// Selection logic depends only on this interface, never on a concrete model.
type Classifier interface {
	Name() string
	Fit(features [][]float64, labels []int) error
	PredictProba(features [][]float64) []float64
}

// Feature column names, in the exact order the feature matrix is built.
// This enumeration is versioned by being stored in every artifact: scoring
// code replays the stored list instead of re-deriving columns by exclusion.
var baseFeatureColumns = []string{
	"is_home",
	"rest_days",
	"roll_pts",
	"roll_reb",
	"roll_ast",
	"roll_tov",
	"roll_fg_pct",
	"roll_fg3_pct",
	"roll_ft_pct",
	"roll_win_rate",
	"opp_rest_days",
	"opp_roll_pts",
	"opp_roll_reb",
	"opp_roll_ast",
	"opp_roll_tov",
	"opp_roll_fg_pct",
	"opp_roll_fg3_pct",
	"opp_roll_ft_pct",
	"opp_roll_win_rate",
}

var starFeatureColumns = []string{
	"star3_pts_sum",
	"star3_minutes_avg",
	"star3_plus_minus_avg",
	"opp_star3_pts_sum",
	"opp_star3_minutes_avg",
	"opp_star3_plus_minus_avg",
}

// FeatureColumns returns the ordered feature list for a dataset variant.
// Identifier and label columns (game_id, game_date, team_id,
// opponent_team_id, season, y_win) are excluded by construction.
func FeatureColumns(variant DatasetVariant) []string {
	cols := make([]string, 0, len(baseFeatureColumns)+len(starFeatureColumns))
	cols = append(cols, baseFeatureColumns...)
	if variant == VariantEnriched {
		cols = append(cols, starFeatureColumns...)
	}
	return cols
}

// FeatureValue extracts one named feature from a matchup row.
// Missing values come back as NaN for the imputer to fill.
func (m *MatchupRow) FeatureValue(column string) float64 {
	switch column {
	case "is_home":
		if m.IsHome {
			return 1.0
		}
		return 0.0
	case "rest_days":
		return deref(m.RestDays)
	case "roll_pts":
		return deref(m.RollPts)
	case "roll_reb":
		return deref(m.RollReb)
	case "roll_ast":
		return deref(m.RollAst)
	case "roll_tov":
		return deref(m.RollTov)
	case "roll_fg_pct":
		return deref(m.RollFgPct)
	case "roll_fg3_pct":
		return deref(m.RollFg3Pct)
	case "roll_ft_pct":
		return deref(m.RollFtPct)
	case "roll_win_rate":
		return deref(m.RollWinRate)
	case "opp_rest_days":
		return deref(m.OppRestDays)
	case "opp_roll_pts":
		return deref(m.OppRollPts)
	case "opp_roll_reb":
		return deref(m.OppRollReb)
	case "opp_roll_ast":
		return deref(m.OppRollAst)
	case "opp_roll_tov":
		return deref(m.OppRollTov)
	case "opp_roll_fg_pct":
		return deref(m.OppRollFgPct)
	case "opp_roll_fg3_pct":
		return deref(m.OppRollFg3Pct)
	case "opp_roll_ft_pct":
		return deref(m.OppRollFtPct)
	case "opp_roll_win_rate":
		return deref(m.OppRollWinRate)
	case "star3_pts_sum":
		return deref(m.StarPtsSum)
	case "star3_minutes_avg":
		return deref(m.StarMinutesAvg)
	case "star3_plus_minus_avg":
		return deref(m.StarPlusMinusAvg)
	case "opp_star3_pts_sum":
		return deref(m.OppStarPtsSum)
	case "opp_star3_minutes_avg":
		return deref(m.OppStarMinutesAvg)
	case "opp_star3_plus_minus_avg":
		return deref(m.OppStarPlusMinusAvg)
	default:
		return math.NaN()
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// BuildMatrix turns matchup rows into a feature matrix and label vector
// using the supplied column order
func BuildMatrix(rows []*MatchupRow, columns []string) ([][]float64, []int) {
	features := make([][]float64, len(rows))
	labels := make([]int, len(rows))
	for i, row := range rows {
		vec := make([]float64, len(columns))
		for j, col := range columns {
			vec[j] = row.FeatureValue(col)
		}
		features[i] = vec
		labels[i] = row.YWin
	}
	return features, labels
}

// Imputer fills missing feature values with per-column medians.
// The medians come from the training partition only; validation and test
// statistics never influence them, and scoring reuses the fitted values.
type Imputer struct {
	Medians []float64 `json:"medians"`
}

// FitImputer computes the per-column median over the non-missing training
// values. A column with no observed value at all falls back to zero.
func FitImputer(train [][]float64) (*Imputer, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("cannot fit imputer on an empty matrix")
	}

	nCols := len(train[0])
	medians := make([]float64, nCols)
	for j := 0; j < nCols; j++ {
		var observed []float64
		for i := range train {
			if !math.IsNaN(train[i][j]) {
				observed = append(observed, train[i][j])
			}
		}
		medians[j] = median(observed)
	}

	return &Imputer{Medians: medians}, nil
}

// Apply returns a copy of the matrix with missing values replaced by the
// fitted medians
func (imp *Imputer) Apply(features [][]float64) [][]float64 {
	out := make([][]float64, len(features))
	for i, row := range features {
		vec := make([]float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) && j < len(imp.Medians) {
				vec[j] = imp.Medians[j]
			} else {
				vec[j] = v
			}
		}
		out[i] = vec
	}
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2.0
}
