package bodds

import (
	"fmt"

	"github.com/richard-senior/bodds/internal/logger"
)

/**
* Readable views over the canonical tables. The underlying tables key on
* numeric team ids; these views join team names back in so ad hoc queries
* against the database read naturally.
 */

var viewStatements = map[string]string{
	"v_teams": `
		CREATE VIEW IF NOT EXISTS v_teams AS
		SELECT team_id, full_name, abbreviation, city, state, year_founded
		FROM teams`,

	"v_games": `
		CREATE VIEW IF NOT EXISTS v_games AS
		SELECT g.game_id, g.game_date, g.season,
		       t.full_name AS team,
		       o.full_name AS opponent,
		       g.is_home, g.wl, g.pts
		FROM games g
		JOIN teams t ON t.team_id = g.team_id
		LEFT JOIN teams o ON o.team_id = g.opponent_team_id`,

	"v_training_dataset_named": `
		CREATE VIEW IF NOT EXISTS v_training_dataset_named AS
		SELECT d.game_id, d.game_date, d.season,
		       t.full_name AS team,
		       o.full_name AS opponent,
		       d.is_home, d.y_win,
		       d.rest_days, d.roll_pts, d.roll_reb, d.roll_ast, d.roll_tov,
		       d.roll_fg_pct, d.roll_fg3_pct, d.roll_ft_pct, d.roll_win_rate,
		       d.opp_rest_days, d.opp_roll_pts, d.opp_roll_reb, d.opp_roll_ast, d.opp_roll_tov,
		       d.opp_roll_fg_pct, d.opp_roll_fg3_pct, d.opp_roll_ft_pct, d.opp_roll_win_rate
		FROM training_dataset d
		JOIN teams t ON t.team_id = d.team_id
		LEFT JOIN teams o ON o.team_id = d.opponent_team_id`,

	"v_training_dataset_enriched_named": `
		CREATE VIEW IF NOT EXISTS v_training_dataset_enriched_named AS
		SELECT t.full_name AS team,
		       o.full_name AS opponent,
		       d.*
		FROM training_dataset d
		JOIN teams t ON t.team_id = d.team_id
		LEFT JOIN teams o ON o.team_id = d.opponent_team_id`,

	"v_predictions_named": `
		CREATE VIEW IF NOT EXISTS v_predictions_named AS
		SELECT p.game_id, p.game_date,
		       t.full_name AS team,
		       o.full_name AS opponent,
		       p.is_home, p.win_probability, p.model_name, p.run_id, p.scored_at
		FROM predictions p
		JOIN teams t ON t.team_id = p.team_id
		LEFT JOIN teams o ON o.team_id = p.opponent_team_id`,
}

// CreateViews installs the named views, replacing any stale definitions
func CreateViews() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	for name, stmt := range viewStatements {
		if _, err := db.Exec("DROP VIEW IF EXISTS " + name); err != nil {
			return fmt.Errorf("dropping view %s: %w", name, err)
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating view %s: %w", name, err)
		}
	}

	logger.Debug(fmt.Sprintf("created %d database views", len(viewStatements)))
	return nil
}
