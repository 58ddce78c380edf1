package league

// RosterOwnerMap translates a league-local roster id into a manager id.
// A map is only valid for the league it was built from.
type RosterOwnerMap map[int]string

// BuildRosterOwnerMap builds the roster-to-owner map of one league from its
// roster listing. Rosters without an owner are left out.
func BuildRosterOwnerMap(rosters []Roster) RosterOwnerMap {
	out := make(RosterOwnerMap, len(rosters))
	for _, r := range rosters {
		if r.RosterID <= 0 || r.OwnerID == "" {
			continue
		}
		out[r.RosterID] = r.OwnerID
	}
	return out
}

// Owner returns the manager bound to rosterID.
func (m RosterOwnerMap) Owner(rosterID int) (string, bool) {
	if m == nil || rosterID <= 0 {
		return "", false
	}
	owner, ok := m[rosterID]
	return owner, ok
}

// RosterOf returns the roster owned by managerID, if any.
func (m RosterOwnerMap) RosterOf(managerID string) (int, bool) {
	if managerID == "" {
		return 0, false
	}
	found := 0
	for rosterID, owner := range m {
		if owner != managerID {
			continue
		}
		if found == 0 || rosterID < found {
			found = rosterID
		}
	}
	return found, found > 0
}

// FamilyMaps keeps one roster-owner map per league of a family.
type FamilyMaps map[string]RosterOwnerMap

// For returns the map of exactly leagueID. It never falls back to another
// league's map.
func (f FamilyMaps) For(leagueID string) RosterOwnerMap {
	if f == nil {
		return nil
	}
	return f[leagueID]
}
