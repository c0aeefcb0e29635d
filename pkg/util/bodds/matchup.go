package bodds

import (
	"fmt"
	"sort"
	"time"

	"github.com/richard-senior/bodds/internal/logger"
)

var _ Persistable = (*MatchupRow)(nil)

// DatasetVariant records which training dataset a run used. It is threaded
// explicitly from the assembler into the artifact, never a package global.
type DatasetVariant string

const (
	VariantBase     DatasetVariant = "base"
	VariantEnriched DatasetVariant = "enriched"
)

// MatchupRow is one training example: a team's form row joined with the
// opposing team's form row for the same game. Each game contributes two
// rows, A-vs-B and B-vs-A, predicting opposite labels.
type MatchupRow struct {
	// Compound primary key
	GameID string `json:"gameId" column:"game_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	TeamID int64  `json:"teamId" column:"team_id" dbtype:"INTEGER NOT NULL" primary:"true" index:"true"`

	Season         int       `json:"season" column:"season" dbtype:"INTEGER NOT NULL" index:"true"`
	GameDate       time.Time `json:"gameDate" column:"game_date" dbtype:"DATETIME NOT NULL" index:"true"`
	OpponentTeamID int64     `json:"opponentTeamId" column:"opponent_team_id" dbtype:"INTEGER NOT NULL" index:"true"`
	IsHome         bool      `json:"isHome" column:"is_home" dbtype:"INTEGER DEFAULT 0"`
	WL             string    `json:"wl" column:"wl" dbtype:"TEXT NOT NULL"`
	YWin           int       `json:"yWin" column:"y_win" dbtype:"INTEGER NOT NULL"`

	// Own form
	RestDays    *float64 `json:"restDays,omitempty" column:"rest_days" dbtype:"REAL"`
	RollPts     *float64 `json:"rollPts,omitempty" column:"roll_pts" dbtype:"REAL"`
	RollReb     *float64 `json:"rollReb,omitempty" column:"roll_reb" dbtype:"REAL"`
	RollAst     *float64 `json:"rollAst,omitempty" column:"roll_ast" dbtype:"REAL"`
	RollTov     *float64 `json:"rollTov,omitempty" column:"roll_tov" dbtype:"REAL"`
	RollFgPct   *float64 `json:"rollFgPct,omitempty" column:"roll_fg_pct" dbtype:"REAL"`
	RollFg3Pct  *float64 `json:"rollFg3Pct,omitempty" column:"roll_fg3_pct" dbtype:"REAL"`
	RollFtPct   *float64 `json:"rollFtPct,omitempty" column:"roll_ft_pct" dbtype:"REAL"`
	RollWinRate *float64 `json:"rollWinRate,omitempty" column:"roll_win_rate" dbtype:"REAL"`

	// Opponent form for the same game
	OppRestDays    *float64 `json:"oppRestDays,omitempty" column:"opp_rest_days" dbtype:"REAL"`
	OppRollPts     *float64 `json:"oppRollPts,omitempty" column:"opp_roll_pts" dbtype:"REAL"`
	OppRollReb     *float64 `json:"oppRollReb,omitempty" column:"opp_roll_reb" dbtype:"REAL"`
	OppRollAst     *float64 `json:"oppRollAst,omitempty" column:"opp_roll_ast" dbtype:"REAL"`
	OppRollTov     *float64 `json:"oppRollTov,omitempty" column:"opp_roll_tov" dbtype:"REAL"`
	OppRollFgPct   *float64 `json:"oppRollFgPct,omitempty" column:"opp_roll_fg_pct" dbtype:"REAL"`
	OppRollFg3Pct  *float64 `json:"oppRollFg3Pct,omitempty" column:"opp_roll_fg3_pct" dbtype:"REAL"`
	OppRollFtPct   *float64 `json:"oppRollFtPct,omitempty" column:"opp_roll_ft_pct" dbtype:"REAL"`
	OppRollWinRate *float64 `json:"oppRollWinRate,omitempty" column:"opp_roll_win_rate" dbtype:"REAL"`

	// Optional star block, populated only on the enriched variant
	StarPtsSum          *float64 `json:"starPtsSum,omitempty" column:"star3_pts_sum" dbtype:"REAL"`
	StarMinutesAvg      *float64 `json:"starMinutesAvg,omitempty" column:"star3_minutes_avg" dbtype:"REAL"`
	StarPlusMinusAvg    *float64 `json:"starPlusMinusAvg,omitempty" column:"star3_plus_minus_avg" dbtype:"REAL"`
	OppStarPtsSum       *float64 `json:"oppStarPtsSum,omitempty" column:"opp_star3_pts_sum" dbtype:"REAL"`
	OppStarMinutesAvg   *float64 `json:"oppStarMinutesAvg,omitempty" column:"opp_star3_minutes_avg" dbtype:"REAL"`
	OppStarPlusMinusAvg *float64 `json:"oppStarPlusMinusAvg,omitempty" column:"opp_star3_plus_minus_avg" dbtype:"REAL"`
}

func (m *MatchupRow) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"game_id": m.GameID,
		"team_id": m.TeamID,
	}
}

func (m *MatchupRow) GetTableName() string {
	return "training_dataset"
}

func (m *MatchupRow) BeforeSave() error {
	return nil
}

// hasCompleteForm is the warm-up guard: a row is only usable for training
// or evaluation once both sides have scoring and win-rate form
func (m *MatchupRow) hasCompleteForm() bool {
	return m.RollPts != nil && m.RollWinRate != nil &&
		m.OppRollPts != nil && m.OppRollWinRate != nil
}

// AssembleMatchups self-joins the team form mart on game id, pairing each
// row with its opponent's row for the same game. Rows whose own or opponent
// rolling form is still missing are filtered out (intended warm-up guard,
// not an error). When star aggregates are provided the rows are enriched
// and the enriched variant is reported.
//
// The returned variant must be carried into the artifact: downstream
// consumers need to know which feature set the model was trained on.
func AssembleMatchups(forms []*TeamForm, stars map[StarKey]*StarFeatures) ([]*MatchupRow, DatasetVariant, error) {
	index := make(map[StarKey]*TeamForm, len(forms))
	for _, f := range forms {
		index[StarKey{GameID: f.GameID, TeamID: f.TeamID}] = f
	}

	variant := VariantBase
	if len(stars) > 0 {
		variant = VariantEnriched
	}

	var rows []*MatchupRow
	unmatched := 0
	for _, f := range forms {
		opp, ok := index[StarKey{GameID: f.GameID, TeamID: f.OpponentTeamID}]
		if !ok {
			unmatched++
			continue
		}
		if opp.OpponentTeamID != f.TeamID {
			return nil, variant, fmt.Errorf("%w: game %s pairs team %d with %d but the reverse row references %d",
				ErrConsistency, f.GameID, f.TeamID, f.OpponentTeamID, opp.OpponentTeamID)
		}

		row := &MatchupRow{
			GameID:         f.GameID,
			TeamID:         f.TeamID,
			Season:         f.Season,
			GameDate:       f.GameDate,
			OpponentTeamID: f.OpponentTeamID,
			IsHome:         f.IsHome,
			WL:             f.WL,
			YWin:           f.YWin,

			RestDays:    f.RestDays,
			RollPts:     f.RollPts,
			RollReb:     f.RollReb,
			RollAst:     f.RollAst,
			RollTov:     f.RollTov,
			RollFgPct:   f.RollFgPct,
			RollFg3Pct:  f.RollFg3Pct,
			RollFtPct:   f.RollFtPct,
			RollWinRate: f.RollWinRate,

			OppRestDays:    opp.RestDays,
			OppRollPts:     opp.RollPts,
			OppRollReb:     opp.RollReb,
			OppRollAst:     opp.RollAst,
			OppRollTov:     opp.RollTov,
			OppRollFgPct:   opp.RollFgPct,
			OppRollFg3Pct:  opp.RollFg3Pct,
			OppRollFtPct:   opp.RollFtPct,
			OppRollWinRate: opp.RollWinRate,
		}

		if !row.hasCompleteForm() {
			continue
		}

		if variant == VariantEnriched {
			if s, ok := stars[StarKey{GameID: f.GameID, TeamID: f.TeamID}]; ok {
				row.StarPtsSum = s.StarPtsSum
				row.StarMinutesAvg = s.StarMinutesAvg
				row.StarPlusMinusAvg = s.StarPlusMinusAvg
			}
			if s, ok := stars[StarKey{GameID: f.GameID, TeamID: f.OpponentTeamID}]; ok {
				row.OppStarPtsSum = s.StarPtsSum
				row.OppStarMinutesAvg = s.StarMinutesAvg
				row.OppStarPlusMinusAvg = s.StarPlusMinusAvg
			}
		}

		rows = append(rows, row)
	}

	if unmatched > 0 {
		logger.Warn("Team-game rows without an opponent row were skipped", unmatched)
	}

	if err := verifySymmetry(rows); err != nil {
		return nil, variant, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].GameDate.Equal(rows[j].GameDate) {
			return rows[i].GameDate.Before(rows[j].GameDate)
		}
		if rows[i].GameID != rows[j].GameID {
			return rows[i].GameID < rows[j].GameID
		}
		return rows[i].TeamID < rows[j].TeamID
	})

	logger.Info("Assembled matchup rows", len(rows), "variant", string(variant))
	return rows, variant, nil
}

// verifySymmetry checks the pairing invariant on the assembled table:
// every row's mirror (same game, swapped team/opponent) must also be present
// and reference this row's team back
func verifySymmetry(rows []*MatchupRow) error {
	index := make(map[StarKey]*MatchupRow, len(rows))
	for _, r := range rows {
		index[StarKey{GameID: r.GameID, TeamID: r.TeamID}] = r
	}
	for _, r := range rows {
		partner, ok := index[StarKey{GameID: r.GameID, TeamID: r.OpponentTeamID}]
		if !ok {
			return fmt.Errorf("%w: game %s has row for team %d but none for opponent %d",
				ErrConsistency, r.GameID, r.TeamID, r.OpponentTeamID)
		}
		if partner.OpponentTeamID != r.TeamID {
			return fmt.Errorf("%w: game %s rows do not reference each other symmetrically",
				ErrConsistency, r.GameID)
		}
	}
	return nil
}

// SaveMatchups replaces the training_dataset table contents
func SaveMatchups(rows []*MatchupRow) error {
	logger.Info("Saving matchup rows to database", len(rows))

	if err := DeleteAll(&MatchupRow{}); err != nil {
		return err
	}

	persistables := make([]Persistable, 0, len(rows))
	for _, r := range rows {
		persistables = append(persistables, r)
	}
	return BulkSave(persistables)
}
