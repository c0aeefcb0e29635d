package bodds

import (
	"time"

	"github.com/richard-senior/bodds/internal/logger"
)

var _ Persistable = (*Player)(nil)
var _ Persistable = (*PlayerGame)(nil)

// Player represents one player with database persistence annotations
type Player struct {
	PlayerID  int64  `json:"playerId" column:"player_id" dbtype:"INTEGER NOT NULL" primary:"true" index:"true"`
	FullName  string `json:"fullName" column:"full_name" dbtype:"TEXT"`
	FirstName string `json:"firstName,omitempty" column:"first_name" dbtype:"TEXT"`
	LastName  string `json:"lastName,omitempty" column:"last_name" dbtype:"TEXT"`
	IsActive  bool   `json:"isActive" column:"is_active" dbtype:"INTEGER DEFAULT 0"`
}

func (p *Player) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"player_id": p.PlayerID,
	}
}

func (p *Player) GetTableName() string {
	return "players"
}

func (p *Player) BeforeSave() error {
	return nil
}

// PlayerGame is one game from one player's perspective, the optional
// player_games relation feeding the star feature block
type PlayerGame struct {
	// Compound primary key
	GameID   string `json:"gameId" column:"game_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	PlayerID int64  `json:"playerId" column:"player_id" dbtype:"INTEGER NOT NULL" primary:"true" index:"true"`

	// Info
	Season         int       `json:"season" column:"season" dbtype:"INTEGER NOT NULL" index:"true"`
	GameDate       time.Time `json:"gameDate" column:"game_date" dbtype:"DATETIME NOT NULL" index:"true"`
	TeamID         int64     `json:"teamId" column:"team_id" dbtype:"INTEGER NOT NULL" index:"true"`
	OpponentTeamID int64     `json:"opponentTeamId" column:"opponent_team_id" dbtype:"INTEGER NOT NULL"`
	IsHome         bool      `json:"isHome" column:"is_home" dbtype:"INTEGER DEFAULT 0"`
	WL             string    `json:"wl" column:"wl" dbtype:"TEXT"`

	// Raw per-game stats
	Minutes   *float64 `json:"minutes,omitempty" column:"minutes" dbtype:"REAL"`
	Pts       *float64 `json:"pts,omitempty" column:"pts" dbtype:"REAL"`
	Reb       *float64 `json:"reb,omitempty" column:"reb" dbtype:"REAL"`
	Ast       *float64 `json:"ast,omitempty" column:"ast" dbtype:"REAL"`
	Tov       *float64 `json:"tov,omitempty" column:"tov" dbtype:"REAL"`
	PlusMinus *float64 `json:"plusMinus,omitempty" column:"plus_minus" dbtype:"REAL"`
	FgPct     *float64 `json:"fgPct,omitempty" column:"fg_pct" dbtype:"REAL"`
	Fg3Pct    *float64 `json:"fg3Pct,omitempty" column:"fg3_pct" dbtype:"REAL"`
	FtPct     *float64 `json:"ftPct,omitempty" column:"ft_pct" dbtype:"REAL"`
	Stl       *float64 `json:"stl,omitempty" column:"stl" dbtype:"REAL"`
	Blk       *float64 `json:"blk,omitempty" column:"blk" dbtype:"REAL"`
	Pf        *float64 `json:"pf,omitempty" column:"pf" dbtype:"REAL"`
}

func (pg *PlayerGame) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"game_id":   pg.GameID,
		"player_id": pg.PlayerID,
	}
}

func (pg *PlayerGame) GetTableName() string {
	return "player_games"
}

func (pg *PlayerGame) BeforeSave() error {
	return nil
}

// SavePlayers replaces the players table contents
func SavePlayers(players []*Player) error {
	logger.Info("Saving players to database", len(players))

	if err := DeleteAll(&Player{}); err != nil {
		return err
	}

	rows := make([]Persistable, 0, len(players))
	for _, p := range players {
		rows = append(rows, p)
	}
	return BulkSave(rows)
}

// SavePlayerGames replaces the player_games table contents
func SavePlayerGames(games []*PlayerGame) error {
	logger.Info("Saving player-game rows to database", len(games))

	if err := DeleteAll(&PlayerGame{}); err != nil {
		return err
	}

	rows := make([]Persistable, 0, len(games))
	for _, g := range games {
		rows = append(rows, g)
	}
	return BulkSave(rows)
}
