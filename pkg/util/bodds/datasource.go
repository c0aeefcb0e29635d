package bodds

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/richard-senior/bodds/internal/logger"
	"github.com/richard-senior/bodds/pkg/util"
)

/**
* CSV ingestion and schema normalization.
* Reads the raw NBA_*.csv exports and produces the canonical tables the
* feature pipeline consumes. Column names in the wild vary between exports
* so each standard column is resolved from a list of candidates.
 */

// Source file names expected inside the data directory
const (
	TeamsCSV       = "NBA_TEAMS.csv"
	GamesCSV       = "NBA_GAMES.csv"
	PlayersCSV     = "NBA_PLAYERS.csv"
	PlayerGamesCSV = "NBA_PLAYER_GAMES.csv"
)

// StandardTables holds the canonical relations. Players and PlayerGames are
// nil when the optional player exports are absent.
type StandardTables struct {
	Teams       []*Team
	Games       []*TeamGame
	Players     []*Player
	PlayerGames []*PlayerGame
}

// HasPlayers reports whether the optional player relations were loaded
func (s *StandardTables) HasPlayers() bool {
	return len(s.Players) > 0 && len(s.PlayerGames) > 0
}

// csvTable is a parsed CSV file with normalized (trimmed, lowercased) headers
type csvTable struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func readCSVTable(path string) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrSchema, filepath.Base(path))
	}

	columns := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}

	return &csvTable{
		name:    filepath.Base(path),
		columns: columns,
		rows:    records[1:],
	}, nil
}

// pick returns the index of the first candidate column present, or -1
func (t *csvTable) pick(candidates ...string) int {
	for _, c := range candidates {
		if idx, ok := t.columns[strings.ToLower(c)]; ok {
			return idx
		}
	}
	return -1
}

func (t *csvTable) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// nullable numeric parse: empty or malformed cells coerce to nil
func (t *csvTable) floatCell(row []string, idx int) *float64 {
	s := t.cell(row, idx)
	if s == "" {
		return nil
	}
	v, err := util.GetAsFloat(s)
	if err != nil {
		return nil
	}
	return &v
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"Jan 2, 2006",
	"01/02/2006",
}

func parseGameDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseMatchup splits a matchup string like "GSW vs. LAL" or "GSW @ LAL"
// into team abbreviation, opponent abbreviation and home flag
func parseMatchup(matchup string) (team string, opp string, isHome bool, ok bool) {
	parts := strings.Fields(strings.TrimSpace(matchup))
	if len(parts) < 3 {
		return "", "", false, false
	}
	team = strings.ToUpper(parts[0])
	opp = strings.ToUpper(parts[2])
	if strings.Contains(strings.ToLower(parts[1]), "vs") {
		return team, opp, true, true
	}
	if parts[1] == "@" {
		return team, opp, false, true
	}
	return "", "", false, false
}

// parseMinutes converts a MIN cell to float minutes
// Accepts numeric strings or "MM:SS"
func parseMinutes(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ":") {
		mmss := strings.SplitN(s, ":", 2)
		mm, err1 := strconv.ParseFloat(mmss[0], 64)
		ss, err2 := strconv.ParseFloat(mmss[1], 64)
		if err1 != nil || err2 != nil {
			return nil
		}
		v := mm + ss/60.0
		return &v
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// StandardizeTeams converts the raw teams table into Team rows
func StandardizeTeams(tbl *csvTable) ([]*Team, error) {
	idIdx := tbl.pick("id", "team_id")
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: could not find a team id column (id/team_id) in %s", ErrSchema, tbl.name)
	}
	nameIdx := tbl.pick("full_name", "team_name", "nickname")
	abbrIdx := tbl.pick("abbreviation", "abbr")
	cityIdx := tbl.pick("city")
	stateIdx := tbl.pick("state")
	yearIdx := tbl.pick("year_founded", "founded")

	var teams []*Team
	for _, row := range tbl.rows {
		id, err := strconv.ParseInt(tbl.cell(row, idIdx), 10, 64)
		if err != nil {
			continue
		}
		team := &Team{
			TeamID:       id,
			FullName:     tbl.cell(row, nameIdx),
			Abbreviation: strings.ToUpper(tbl.cell(row, abbrIdx)),
			City:         tbl.cell(row, cityIdx),
			State:        tbl.cell(row, stateIdx),
		}
		if y, err := util.GetAsInteger(tbl.cell(row, yearIdx)); err == nil {
			team.YearFounded = y
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// StandardizeGames converts the raw games table into TeamGame rows.
// The opponent is taken from an opponent_team_id column when present,
// otherwise parsed from the MATCHUP string via the abbreviation mapping.
func StandardizeGames(tbl *csvTable, abbrevToID map[string]int64) ([]*TeamGame, error) {
	teamIdx := tbl.pick("team_id")
	if teamIdx < 0 {
		return nil, fmt.Errorf("%w: could not find team_id column in %s", ErrSchema, tbl.name)
	}
	wlIdx := tbl.pick("wl", "w_l")
	if wlIdx < 0 {
		return nil, fmt.Errorf("%w: could not find WL column in %s", ErrSchema, tbl.name)
	}
	dateIdx := tbl.pick("game_date_real", "game_date_est", "game_date", "date")
	if dateIdx < 0 {
		return nil, fmt.Errorf("%w: could not find a game date column in %s", ErrSchema, tbl.name)
	}

	gameIdx := tbl.pick("game_id", "id")
	seasonIdx := tbl.pick("season", "season_id", "year")
	oppIdx := tbl.pick("opponent_team_id", "opp_team_id")
	homeIdx := tbl.pick("is_home", "home")
	matchupIdx := tbl.pick("matchup")

	if oppIdx < 0 && matchupIdx < 0 {
		return nil, fmt.Errorf("%w: %s has no opponent_team_id and no matchup to parse", ErrSchema, tbl.name)
	}

	ptsIdx := tbl.pick("pts")
	fgIdx := tbl.pick("fg_pct")
	fg3Idx := tbl.pick("fg3_pct")
	ftIdx := tbl.pick("ft_pct")
	rebIdx := tbl.pick("reb")
	astIdx := tbl.pick("ast")
	tovIdx := tbl.pick("tov")

	var games []*TeamGame
	dropped := 0
	for i, row := range tbl.rows {
		teamID, err := strconv.ParseInt(tbl.cell(row, teamIdx), 10, 64)
		if err != nil {
			dropped++
			continue
		}
		gameDate, ok := parseGameDate(tbl.cell(row, dateIdx))
		if !ok {
			dropped++
			continue
		}

		gameID := tbl.cell(row, gameIdx)
		if gameID == "" {
			gameID = strconv.Itoa(i)
		}

		g := &TeamGame{
			GameID:   gameID,
			TeamID:   teamID,
			GameDate: gameDate,
			WL:       strings.ToUpper(tbl.cell(row, wlIdx)),
			Pts:      tbl.floatCell(row, ptsIdx),
			FgPct:    tbl.floatCell(row, fgIdx),
			Fg3Pct:   tbl.floatCell(row, fg3Idx),
			FtPct:    tbl.floatCell(row, ftIdx),
			Reb:      tbl.floatCell(row, rebIdx),
			Ast:      tbl.floatCell(row, astIdx),
			Tov:      tbl.floatCell(row, tovIdx),
		}

		if season, err := util.GetAsInteger(tbl.cell(row, seasonIdx)); err == nil && seasonIdx >= 0 {
			g.Season = season
		} else {
			g.Season = DeriveSeason(gameDate)
		}

		if oppIdx >= 0 {
			oppID, err := strconv.ParseInt(tbl.cell(row, oppIdx), 10, 64)
			if err != nil {
				dropped++
				continue
			}
			g.OpponentTeamID = oppID
			if homeIdx >= 0 {
				g.IsHome = isTruthy(tbl.cell(row, homeIdx))
			}
		} else {
			_, oppAbbr, isHome, ok := parseMatchup(tbl.cell(row, matchupIdx))
			if !ok {
				dropped++
				continue
			}
			oppID, found := abbrevToID[oppAbbr]
			if !found {
				dropped++
				continue
			}
			g.OpponentTeamID = oppID
			g.IsHome = isHome
		}

		games = append(games, g)
	}

	if dropped > 0 {
		logger.Warn("Dropped unusable game rows during standardization", dropped)
	}
	return games, nil
}

// StandardizePlayers converts the raw players table into Player rows
func StandardizePlayers(tbl *csvTable) ([]*Player, error) {
	idIdx := tbl.pick("id", "player_id")
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: could not find player id column (id/player_id) in %s", ErrSchema, tbl.name)
	}
	nameIdx := tbl.pick("full_name")
	firstIdx := tbl.pick("first_name")
	lastIdx := tbl.pick("last_name")
	activeIdx := tbl.pick("is_active")

	var players []*Player
	for _, row := range tbl.rows {
		id, err := strconv.ParseInt(tbl.cell(row, idIdx), 10, 64)
		if err != nil {
			continue
		}
		players = append(players, &Player{
			PlayerID:  id,
			FullName:  tbl.cell(row, nameIdx),
			FirstName: tbl.cell(row, firstIdx),
			LastName:  tbl.cell(row, lastIdx),
			IsActive:  isTruthy(tbl.cell(row, activeIdx)),
		})
	}
	return players, nil
}

// StandardizePlayerGames converts the raw player game log into PlayerGame rows
func StandardizePlayerGames(tbl *csvTable, abbrevToID map[string]int64) ([]*PlayerGame, error) {
	playerIdx := tbl.pick("player_id", "playerid")
	gameIdx := tbl.pick("game_id", "id")
	if playerIdx < 0 || gameIdx < 0 {
		return nil, fmt.Errorf("%w: %s must include player_id and game_id columns", ErrSchema, tbl.name)
	}
	dateIdx := tbl.pick("game_date_real", "game_date", "game_date_est")
	if dateIdx < 0 {
		return nil, fmt.Errorf("%w: %s must include a game date column", ErrSchema, tbl.name)
	}
	matchupIdx := tbl.pick("matchup")
	if matchupIdx < 0 {
		return nil, fmt.Errorf("%w: %s must include matchup for team/opponent parsing", ErrSchema, tbl.name)
	}
	wlIdx := tbl.pick("wl", "w_l")
	if wlIdx < 0 {
		return nil, fmt.Errorf("%w: %s must include WL", ErrSchema, tbl.name)
	}

	seasonIdx := tbl.pick("season_id", "season")
	minIdx := tbl.pick("min", "minutes")
	ptsIdx := tbl.pick("pts")
	rebIdx := tbl.pick("reb")
	astIdx := tbl.pick("ast")
	tovIdx := tbl.pick("tov")
	pmIdx := tbl.pick("plus_minus")
	fgIdx := tbl.pick("fg_pct")
	fg3Idx := tbl.pick("fg3_pct")
	ftIdx := tbl.pick("ft_pct")
	stlIdx := tbl.pick("stl")
	blkIdx := tbl.pick("blk")
	pfIdx := tbl.pick("pf")

	var games []*PlayerGame
	dropped := 0
	for _, row := range tbl.rows {
		playerID, err := strconv.ParseInt(tbl.cell(row, playerIdx), 10, 64)
		if err != nil {
			dropped++
			continue
		}
		gameDate, ok := parseGameDate(tbl.cell(row, dateIdx))
		if !ok {
			dropped++
			continue
		}
		teamAbbr, oppAbbr, isHome, ok := parseMatchup(tbl.cell(row, matchupIdx))
		if !ok {
			dropped++
			continue
		}
		teamID, foundTeam := abbrevToID[teamAbbr]
		oppID, foundOpp := abbrevToID[oppAbbr]
		if !foundTeam || !foundOpp {
			dropped++
			continue
		}

		pg := &PlayerGame{
			GameID:         tbl.cell(row, gameIdx),
			PlayerID:       playerID,
			GameDate:       gameDate,
			TeamID:         teamID,
			OpponentTeamID: oppID,
			IsHome:         isHome,
			WL:             strings.ToUpper(tbl.cell(row, wlIdx)),
			Minutes:        parseMinutes(tbl.cell(row, minIdx)),
			Pts:            tbl.floatCell(row, ptsIdx),
			Reb:            tbl.floatCell(row, rebIdx),
			Ast:            tbl.floatCell(row, astIdx),
			Tov:            tbl.floatCell(row, tovIdx),
			PlusMinus:      tbl.floatCell(row, pmIdx),
			FgPct:          tbl.floatCell(row, fgIdx),
			Fg3Pct:         tbl.floatCell(row, fg3Idx),
			FtPct:          tbl.floatCell(row, ftIdx),
			Stl:            tbl.floatCell(row, stlIdx),
			Blk:            tbl.floatCell(row, blkIdx),
			Pf:             tbl.floatCell(row, pfIdx),
		}
		if pg.GameID == "" {
			dropped++
			continue
		}

		if season, err := util.GetAsInteger(tbl.cell(row, seasonIdx)); err == nil && seasonIdx >= 0 {
			pg.Season = season
		} else {
			pg.Season = DeriveSeason(gameDate)
		}

		games = append(games, pg)
	}

	if dropped > 0 {
		logger.Warn("Dropped unusable player-game rows during standardization", dropped)
	}
	return games, nil
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y":
		return true
	default:
		return false
	}
}

// LoadStandardTables reads the CSV exports from the data directory and builds
// the canonical tables. Missing required files are schema errors; the player
// exports are optional and only loaded when both are present.
func LoadStandardTables(dataDir string) (*StandardTables, error) {
	teamsPath := filepath.Join(dataDir, TeamsCSV)
	gamesPath := filepath.Join(dataDir, GamesCSV)

	if _, err := os.Stat(teamsPath); err != nil {
		return nil, fmt.Errorf("%w: missing required file %s", ErrSchema, teamsPath)
	}
	if _, err := os.Stat(gamesPath); err != nil {
		return nil, fmt.Errorf("%w: missing required file %s", ErrSchema, gamesPath)
	}

	teamsTbl, err := readCSVTable(teamsPath)
	if err != nil {
		return nil, err
	}
	teams, err := StandardizeTeams(teamsTbl)
	if err != nil {
		return nil, err
	}
	mapping := AbbreviationToID(teams)

	gamesTbl, err := readCSVTable(gamesPath)
	if err != nil {
		return nil, err
	}
	games, err := StandardizeGames(gamesTbl, mapping)
	if err != nil {
		return nil, err
	}

	std := &StandardTables{Teams: teams, Games: games}

	playersPath := filepath.Join(dataDir, PlayersCSV)
	playerGamesPath := filepath.Join(dataDir, PlayerGamesCSV)
	_, errP := os.Stat(playersPath)
	_, errPG := os.Stat(playerGamesPath)
	if errP == nil && errPG == nil {
		playersTbl, err := readCSVTable(playersPath)
		if err != nil {
			return nil, err
		}
		players, err := StandardizePlayers(playersTbl)
		if err != nil {
			return nil, err
		}
		pgTbl, err := readCSVTable(playerGamesPath)
		if err != nil {
			return nil, err
		}
		playerGames, err := StandardizePlayerGames(pgTbl, mapping)
		if err != nil {
			return nil, err
		}
		std.Players = players
		std.PlayerGames = playerGames
	} else {
		logger.Info("Player exports not found, continuing with team data only")
	}

	logger.Info("Standardized tables", len(std.Teams), "teams,", len(std.Games), "team-game rows,",
		len(std.PlayerGames), "player-game rows")
	return std, nil
}
