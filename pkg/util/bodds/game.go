package bodds

import (
	"time"

	"github.com/richard-senior/bodds/internal/logger"
)

// Compile-time check to ensure TeamGame implements Persistable interface
var _ Persistable = (*TeamGame)(nil)

// TeamGame is one game from one team's perspective: the grain of the games
// table. Every game appears twice, once per participating team.
// Raw stat columns are pointers because source logs occasionally omit them;
// a nil value persists as SQL NULL rather than a fake zero.
type TeamGame struct {
	// Compound primary key
	GameID string `json:"gameId" column:"game_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	TeamID int64  `json:"teamId" column:"team_id" dbtype:"INTEGER NOT NULL" primary:"true" index:"true"`

	// Info
	Season         int       `json:"season" column:"season" dbtype:"INTEGER NOT NULL" index:"true"`
	GameDate       time.Time `json:"gameDate" column:"game_date" dbtype:"DATETIME NOT NULL" index:"true"`
	OpponentTeamID int64     `json:"opponentTeamId" column:"opponent_team_id" dbtype:"INTEGER NOT NULL" index:"true"`
	IsHome         bool      `json:"isHome" column:"is_home" dbtype:"INTEGER DEFAULT 0"`
	WL             string    `json:"wl" column:"wl" dbtype:"TEXT NOT NULL"`

	// Raw per-game stats
	Pts    *float64 `json:"pts,omitempty" column:"pts" dbtype:"REAL"`
	FgPct  *float64 `json:"fgPct,omitempty" column:"fg_pct" dbtype:"REAL"`
	Fg3Pct *float64 `json:"fg3Pct,omitempty" column:"fg3_pct" dbtype:"REAL"`
	FtPct  *float64 `json:"ftPct,omitempty" column:"ft_pct" dbtype:"REAL"`
	Reb    *float64 `json:"reb,omitempty" column:"reb" dbtype:"REAL"`
	Ast    *float64 `json:"ast,omitempty" column:"ast" dbtype:"REAL"`
	Tov    *float64 `json:"tov,omitempty" column:"tov" dbtype:"REAL"`
}

// GetPrimaryKey returns the compound primary key as a map
func (g *TeamGame) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"game_id": g.GameID,
		"team_id": g.TeamID,
	}
}

// GetTableName returns the table name for team-game rows
func (g *TeamGame) GetTableName() string {
	return "games"
}

// BeforeSave is called before saving the row
func (g *TeamGame) BeforeSave() error {
	return nil
}

// Won reports whether this team won the game
func (g *TeamGame) Won() bool {
	return g.WL == "W"
}

// YWin is the binary training label derived from the win/loss indicator
func (g *TeamGame) YWin() int {
	if g.Won() {
		return 1
	}
	return 0
}

// SaveTeamGames replaces the games table contents
func SaveTeamGames(games []*TeamGame) error {
	logger.Info("Saving team-game rows to database", len(games))

	if err := DeleteAll(&TeamGame{}); err != nil {
		return err
	}

	rows := make([]Persistable, 0, len(games))
	for _, g := range games {
		rows = append(rows, g)
	}
	return BulkSave(rows)
}

// DeriveSeason maps a game date onto the starting year of its season.
// Games from the boundary month onward belong to the season starting that
// year; earlier games belong to the season started the year before.
func DeriveSeason(gameDate time.Time) int {
	if int(gameDate.Month()) >= GetSeasonBoundaryMonth() {
		return gameDate.Year()
	}
	return gameDate.Year() - 1
}
