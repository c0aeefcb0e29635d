package bodds

import (
	"time"

	"github.com/richard-senior/bodds/internal/logger"
)

// Compile-time check to ensure Team implements Persistable interface
var _ Persistable = (*Team)(nil)

// Team represents one franchise with database persistence annotations
type Team struct {
	TeamID       int64  `json:"teamId" column:"team_id" dbtype:"INTEGER NOT NULL" primary:"true" index:"true"`
	FullName     string `json:"fullName" column:"full_name" dbtype:"TEXT NOT NULL" index:"true"`
	Abbreviation string `json:"abbreviation" column:"abbreviation" dbtype:"TEXT" index:"true"`
	City         string `json:"city,omitempty" column:"city" dbtype:"TEXT"`
	State        string `json:"state,omitempty" column:"state" dbtype:"TEXT"`
	YearFounded  int    `json:"yearFounded,omitempty" column:"year_founded" dbtype:"INTEGER DEFAULT 0"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME"`
}

// GetPrimaryKey returns the primary key as a map
func (t *Team) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"team_id": t.TeamID,
	}
}

// GetTableName returns the table name for teams
func (t *Team) GetTableName() string {
	return "teams"
}

// BeforeSave is called before saving the team
func (t *Team) BeforeSave() error {
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}

// SaveTeams replaces the teams table contents
func SaveTeams(teams []*Team) error {
	logger.Info("Saving teams to database", len(teams))

	if err := DeleteAll(&Team{}); err != nil {
		return err
	}

	rows := make([]Persistable, 0, len(teams))
	for _, team := range teams {
		rows = append(rows, team)
	}
	return BulkSave(rows)
}

// AbbreviationToID builds the lookup used to resolve matchup strings
func AbbreviationToID(teams []*Team) map[string]int64 {
	mapping := make(map[string]int64, len(teams))
	for _, team := range teams {
		if team.Abbreviation != "" {
			mapping[team.Abbreviation] = team.TeamID
		}
	}
	return mapping
}
