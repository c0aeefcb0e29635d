package bodds

import (
	"fmt"
	"sort"

	"github.com/richard-senior/bodds/internal/logger"
)

// StarKey identifies the star aggregate for one side of one game
type StarKey struct {
	GameID string
	TeamID int64
}

// StarFeatures aggregates the pre-game form of a team's top scorers: the
// Config.StarPlayerCount players with the highest rolling points form going
// into the game. Sum of their scoring form, mean of their minutes and
// plus/minus form.
type StarFeatures struct {
	GameID string
	TeamID int64

	StarPtsSum       *float64
	StarMinutesAvg   *float64
	StarPlusMinusAvg *float64
}

// BuildStarFeatures computes the per-(game, team) star aggregates from the
// player form mart. Players without scoring form (first career game) are
// ineligible; a team-game with no eligible player gets no entry, which the
// left join downstream turns into NULLs rather than a dropped row.
func BuildStarFeatures(playerForms []*PlayerForm) (map[StarKey]*StarFeatures, error) {
	if len(playerForms) == 0 {
		return nil, fmt.Errorf("no player form rows to aggregate")
	}

	topN := GetStarPlayerCount()

	grouped := make(map[StarKey][]*PlayerForm)
	for _, pf := range playerForms {
		if pf.RollPts == nil {
			continue
		}
		key := StarKey{GameID: pf.GameID, TeamID: pf.TeamID}
		grouped[key] = append(grouped[key], pf)
	}

	out := make(map[StarKey]*StarFeatures, len(grouped))
	for key, players := range grouped {
		sort.Slice(players, func(i, j int) bool {
			if *players[i].RollPts != *players[j].RollPts {
				return *players[i].RollPts > *players[j].RollPts
			}
			return players[i].PlayerID < players[j].PlayerID
		})
		if len(players) > topN {
			players = players[:topN]
		}

		var ptsSum float64
		for _, p := range players {
			ptsSum += *p.RollPts
		}

		out[key] = &StarFeatures{
			GameID:           key.GameID,
			TeamID:           key.TeamID,
			StarPtsSum:       float64Ptr(ptsSum),
			StarMinutesAvg:   rollingMean(collectForm(players, func(p *PlayerForm) *float64 { return p.RollMinutes })),
			StarPlusMinusAvg: rollingMean(collectForm(players, func(p *PlayerForm) *float64 { return p.RollPlusMinus })),
		}
	}

	logger.Info("Built star feature aggregates", len(out))
	return out, nil
}

func collectForm(players []*PlayerForm, get func(*PlayerForm) *float64) []*float64 {
	vals := make([]*float64, len(players))
	for i, p := range players {
		vals[i] = get(p)
	}
	return vals
}
