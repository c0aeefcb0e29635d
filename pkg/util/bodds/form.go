package bodds

import (
	"sort"
	"time"

	"github.com/richard-senior/bodds/internal/logger"
)

var _ Persistable = (*TeamForm)(nil)
var _ Persistable = (*PlayerForm)(nil)

// TeamForm is one team-game row enriched with backward-looking rolling
// features. Every rolling value at a row is computed only from that team's
// strictly earlier games, windowed to the closest Config.FormWindow of them.
// A team's first game has no history, so its rolling columns and rest days
// are nil (persisted as NULL, never zero-filled).
type TeamForm struct {
	// Compound primary key
	GameID string `json:"gameId" column:"game_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	TeamID int64  `json:"teamId" column:"team_id" dbtype:"INTEGER NOT NULL" primary:"true" index:"true"`

	// Carried from the source row
	Season         int       `json:"season" column:"season" dbtype:"INTEGER NOT NULL" index:"true"`
	GameDate       time.Time `json:"gameDate" column:"game_date" dbtype:"DATETIME NOT NULL" index:"true"`
	OpponentTeamID int64     `json:"opponentTeamId" column:"opponent_team_id" dbtype:"INTEGER NOT NULL" index:"true"`
	IsHome         bool      `json:"isHome" column:"is_home" dbtype:"INTEGER DEFAULT 0"`
	WL             string    `json:"wl" column:"wl" dbtype:"TEXT NOT NULL"`
	YWin           int       `json:"yWin" column:"y_win" dbtype:"INTEGER NOT NULL"`

	// Days since this team's previous game
	RestDays *float64 `json:"restDays,omitempty" column:"rest_days" dbtype:"REAL"`

	// Rolling averages over the prior window
	RollPts     *float64 `json:"rollPts,omitempty" column:"roll_pts" dbtype:"REAL"`
	RollReb     *float64 `json:"rollReb,omitempty" column:"roll_reb" dbtype:"REAL"`
	RollAst     *float64 `json:"rollAst,omitempty" column:"roll_ast" dbtype:"REAL"`
	RollTov     *float64 `json:"rollTov,omitempty" column:"roll_tov" dbtype:"REAL"`
	RollFgPct   *float64 `json:"rollFgPct,omitempty" column:"roll_fg_pct" dbtype:"REAL"`
	RollFg3Pct  *float64 `json:"rollFg3Pct,omitempty" column:"roll_fg3_pct" dbtype:"REAL"`
	RollFtPct   *float64 `json:"rollFtPct,omitempty" column:"roll_ft_pct" dbtype:"REAL"`
	RollWinRate *float64 `json:"rollWinRate,omitempty" column:"roll_win_rate" dbtype:"REAL"`
}

func (f *TeamForm) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"game_id": f.GameID,
		"team_id": f.TeamID,
	}
}

func (f *TeamForm) GetTableName() string {
	return "team_form"
}

func (f *TeamForm) BeforeSave() error {
	return nil
}

// PlayerForm is the player-level variant of TeamForm, carrying the rolling
// features the star aggregation consumes
type PlayerForm struct {
	// Compound primary key
	GameID   string `json:"gameId" column:"game_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	PlayerID int64  `json:"playerId" column:"player_id" dbtype:"INTEGER NOT NULL" primary:"true" index:"true"`

	TeamID   int64     `json:"teamId" column:"team_id" dbtype:"INTEGER NOT NULL" index:"true"`
	Season   int       `json:"season" column:"season" dbtype:"INTEGER NOT NULL"`
	GameDate time.Time `json:"gameDate" column:"game_date" dbtype:"DATETIME NOT NULL" index:"true"`

	RollMinutes   *float64 `json:"rollMinutes,omitempty" column:"roll_minutes" dbtype:"REAL"`
	RollPts       *float64 `json:"rollPts,omitempty" column:"roll_pts" dbtype:"REAL"`
	RollPlusMinus *float64 `json:"rollPlusMinus,omitempty" column:"roll_plus_minus" dbtype:"REAL"`
}

func (f *PlayerForm) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"game_id":   f.GameID,
		"player_id": f.PlayerID,
	}
}

func (f *PlayerForm) GetTableName() string {
	return "player_form"
}

func (f *PlayerForm) BeforeSave() error {
	return nil
}

// rollingMean averages the non-nil values in a window of observations
// Returns nil when the window holds no usable value at all
func rollingMean(window []*float64) *float64 {
	var sum float64
	n := 0
	for _, v := range window {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

func float64Ptr(v float64) *float64 {
	return &v
}

// ComputeTeamForm produces one TeamForm row per (game, team).
// Rows are partitioned by team and ordered by game date ascending with
// game id as tiebreak so the result is reproducible; the window for a row
// is the up-to-FormWindow rows immediately before it in that ordering.
func ComputeTeamForm(games []*TeamGame) []*TeamForm {
	window := GetFormWindow()

	byTeam := make(map[int64][]*TeamGame)
	for _, g := range games {
		byTeam[g.TeamID] = append(byTeam[g.TeamID], g)
	}

	teamIDs := make([]int64, 0, len(byTeam))
	for id := range byTeam {
		teamIDs = append(teamIDs, id)
	}
	sort.Slice(teamIDs, func(i, j int) bool { return teamIDs[i] < teamIDs[j] })

	var out []*TeamForm
	for _, teamID := range teamIDs {
		seq := byTeam[teamID]
		sort.Slice(seq, func(i, j int) bool {
			if !seq[i].GameDate.Equal(seq[j].GameDate) {
				return seq[i].GameDate.Before(seq[j].GameDate)
			}
			return seq[i].GameID < seq[j].GameID
		})

		for k, g := range seq {
			row := &TeamForm{
				GameID:         g.GameID,
				TeamID:         g.TeamID,
				Season:         g.Season,
				GameDate:       g.GameDate,
				OpponentTeamID: g.OpponentTeamID,
				IsHome:         g.IsHome,
				WL:             g.WL,
				YWin:           g.YWin(),
			}

			if k > 0 {
				prev := seq[k-1]
				row.RestDays = float64Ptr(g.GameDate.Sub(prev.GameDate).Hours() / 24.0)

				lo := k - window
				if lo < 0 {
					lo = 0
				}
				prior := seq[lo:k]

				row.RollPts = rollingMean(collect(prior, func(g *TeamGame) *float64 { return g.Pts }))
				row.RollReb = rollingMean(collect(prior, func(g *TeamGame) *float64 { return g.Reb }))
				row.RollAst = rollingMean(collect(prior, func(g *TeamGame) *float64 { return g.Ast }))
				row.RollTov = rollingMean(collect(prior, func(g *TeamGame) *float64 { return g.Tov }))
				row.RollFgPct = rollingMean(collect(prior, func(g *TeamGame) *float64 { return g.FgPct }))
				row.RollFg3Pct = rollingMean(collect(prior, func(g *TeamGame) *float64 { return g.Fg3Pct }))
				row.RollFtPct = rollingMean(collect(prior, func(g *TeamGame) *float64 { return g.FtPct }))

				var wins float64
				for _, p := range prior {
					wins += float64(p.YWin())
				}
				row.RollWinRate = float64Ptr(wins / float64(len(prior)))
			}

			out = append(out, row)
		}
	}

	logger.Info("Computed team form rows", len(out))
	return out
}

func collect(games []*TeamGame, get func(*TeamGame) *float64) []*float64 {
	vals := make([]*float64, len(games))
	for i, g := range games {
		vals[i] = get(g)
	}
	return vals
}

// ComputePlayerForm applies the same rolling algorithm per player over the
// player game log, producing the minutes/points/plus-minus form the star
// aggregation consumes
func ComputePlayerForm(games []*PlayerGame) []*PlayerForm {
	window := GetFormWindow()

	byPlayer := make(map[int64][]*PlayerGame)
	for _, g := range games {
		byPlayer[g.PlayerID] = append(byPlayer[g.PlayerID], g)
	}

	playerIDs := make([]int64, 0, len(byPlayer))
	for id := range byPlayer {
		playerIDs = append(playerIDs, id)
	}
	sort.Slice(playerIDs, func(i, j int) bool { return playerIDs[i] < playerIDs[j] })

	var out []*PlayerForm
	for _, playerID := range playerIDs {
		seq := byPlayer[playerID]
		sort.Slice(seq, func(i, j int) bool {
			if !seq[i].GameDate.Equal(seq[j].GameDate) {
				return seq[i].GameDate.Before(seq[j].GameDate)
			}
			return seq[i].GameID < seq[j].GameID
		})

		for k, g := range seq {
			row := &PlayerForm{
				GameID:   g.GameID,
				PlayerID: g.PlayerID,
				TeamID:   g.TeamID,
				Season:   g.Season,
				GameDate: g.GameDate,
			}

			if k > 0 {
				lo := k - window
				if lo < 0 {
					lo = 0
				}
				prior := seq[lo:k]

				row.RollMinutes = rollingMean(collectPlayer(prior, func(g *PlayerGame) *float64 { return g.Minutes }))
				row.RollPts = rollingMean(collectPlayer(prior, func(g *PlayerGame) *float64 { return g.Pts }))
				row.RollPlusMinus = rollingMean(collectPlayer(prior, func(g *PlayerGame) *float64 { return g.PlusMinus }))
			}

			out = append(out, row)
		}
	}

	logger.Info("Computed player form rows", len(out))
	return out
}

func collectPlayer(games []*PlayerGame, get func(*PlayerGame) *float64) []*float64 {
	vals := make([]*float64, len(games))
	for i, g := range games {
		vals[i] = get(g)
	}
	return vals
}
