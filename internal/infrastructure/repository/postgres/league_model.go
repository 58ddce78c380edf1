package postgres

import (
	"database/sql"
	"time"
)

type leagueTableModel struct {
	ID               int64          `db:"id"`
	LeagueID         string         `db:"league_id"`
	Name             string         `db:"name"`
	Season           string         `db:"season"`
	PreviousLeagueID sql.NullString `db:"previous_league_id"`
	TotalRosters     int            `db:"total_rosters"`
	Status           string         `db:"status"`
	Settings         []byte         `db:"settings"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type leagueInsertModel struct {
	LeagueID         string         `db:"league_id"`
	Name             string         `db:"name"`
	Season           string         `db:"season"`
	PreviousLeagueID sql.NullString `db:"previous_league_id"`
	TotalRosters     int            `db:"total_rosters"`
	Status           string         `db:"status"`
	Settings         string         `db:"settings"`
}

type managerInsertModel struct {
	ManagerID   string `db:"manager_id"`
	DisplayName string `db:"display_name"`
	Username    string `db:"username"`
	TeamName    string `db:"team_name"`
}

type rosterTableModel struct {
	LeagueID string         `db:"league_id"`
	RosterID int            `db:"roster_id"`
	OwnerID  sql.NullString `db:"owner_id"`
}
