package league

import (
	"fmt"
	"strings"
)

// League is one season instance of a dynasty league on the upstream platform.
type League struct {
	ID               string
	Name             string
	Season           string
	PreviousLeagueID string
	TotalRosters     int
	Status           string
	Settings         map[string]any
}

func (l League) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Season) == "" {
		return fmt.Errorf("league season is required")
	}

	return nil
}

// HasPrevious reports whether the league points at a previous season.
// Sleeper encodes "no previous league" as an empty value or "0".
func (l League) HasPrevious() bool {
	prev := strings.TrimSpace(l.PreviousLeagueID)
	return prev != "" && prev != "0"
}

// Roster binds a league-scoped roster number to one manager.
type Roster struct {
	LeagueID string
	RosterID int
	OwnerID  string
}

// Manager is a platform-global user identity.
type Manager struct {
	ID          string
	DisplayName string
	Username    string
	TeamName    string
}

// Family is a chain of league instances linked by previous-season pointers,
// ordered from the starting league backwards.
type Family struct {
	LeagueIDs []string
	Leagues   []League
}

// Head returns the league the family was resolved from.
func (f Family) Head() string {
	if len(f.LeagueIDs) == 0 {
		return ""
	}
	return f.LeagueIDs[0]
}

// Key returns the oldest league id of the chain. Every member that resolves
// down to the same root shares this key.
func (f Family) Key() string {
	if len(f.LeagueIDs) == 0 {
		return ""
	}
	return f.LeagueIDs[len(f.LeagueIDs)-1]
}

func (f Family) Contains(leagueID string) bool {
	for _, id := range f.LeagueIDs {
		if id == leagueID {
			return true
		}
	}
	return false
}

// LeagueForSeason returns the family member playing the given season.
func (f Family) LeagueForSeason(season string) (League, bool) {
	for _, l := range f.Leagues {
		if l.Season == season {
			return l, true
		}
	}
	return League{}, false
}
