package sleeper

import (
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/player"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/transaction"
)

type leagueResponse struct {
	LeagueID         string         `json:"league_id"`
	Name             string         `json:"name"`
	Season           string         `json:"season"`
	PreviousLeagueID *string        `json:"previous_league_id"`
	TotalRosters     int            `json:"total_rosters"`
	Status           string         `json:"status"`
	Settings         map[string]any `json:"settings"`
	ScoringSettings  map[string]any `json:"scoring_settings"`
	RosterPositions  []string       `json:"roster_positions"`
}

func (r leagueResponse) toDomain() league.League {
	settings := make(map[string]any, len(r.Settings)+2)
	for k, v := range r.Settings {
		settings[k] = v
	}
	if len(r.ScoringSettings) > 0 {
		settings["scoring_settings"] = r.ScoringSettings
	}
	if len(r.RosterPositions) > 0 {
		settings["roster_positions"] = r.RosterPositions
	}

	prev := ""
	if r.PreviousLeagueID != nil {
		prev = strings.TrimSpace(*r.PreviousLeagueID)
	}
	if prev == "0" {
		prev = ""
	}

	return league.League{
		ID:               r.LeagueID,
		Name:             r.Name,
		Season:           r.Season,
		PreviousLeagueID: prev,
		TotalRosters:     r.TotalRosters,
		Status:           r.Status,
		Settings:         settings,
	}
}

type rosterResponse struct {
	RosterID int     `json:"roster_id"`
	OwnerID  *string `json:"owner_id"`
	LeagueID string  `json:"league_id"`
}

func (r rosterResponse) toDomain(leagueID string) league.Roster {
	owner := ""
	if r.OwnerID != nil {
		owner = *r.OwnerID
	}
	return league.Roster{LeagueID: leagueID, RosterID: r.RosterID, OwnerID: owner}
}

type userResponse struct {
	UserID      string            `json:"user_id"`
	DisplayName string            `json:"display_name"`
	Username    string            `json:"username"`
	Metadata    map[string]string `json:"metadata"`
}

func (r userResponse) toDomain() league.Manager {
	return league.Manager{
		ID:          r.UserID,
		DisplayName: r.DisplayName,
		Username:    r.Username,
		TeamName:    r.Metadata["team_name"],
	}
}

type tradedPickResponse struct {
	Season          string `json:"season"`
	Round           int    `json:"round"`
	RosterID        int    `json:"roster_id"`
	OwnerID         int    `json:"owner_id"`
	PreviousOwnerID int    `json:"previous_owner_id"`
}

func (r tradedPickResponse) toDomain() transaction.TradedPick {
	return transaction.TradedPick{
		Season:          r.Season,
		Round:           r.Round,
		RosterID:        r.RosterID,
		OwnerID:         r.OwnerID,
		PreviousOwnerID: r.PreviousOwnerID,
	}
}

type transactionSettings struct {
	WaiverBid *int `json:"waiver_bid"`
}

type transactionResponse struct {
	TransactionID string               `json:"transaction_id"`
	Type          string               `json:"type"`
	Status        string               `json:"status"`
	Leg           int                  `json:"leg"`
	Created       int64                `json:"created"`
	StatusUpdated int64                `json:"status_updated"`
	Creator       string               `json:"creator"`
	RosterIDs     []int                `json:"roster_ids"`
	Adds          map[string]int       `json:"adds"`
	Drops         map[string]int       `json:"drops"`
	DraftPicks    []tradedPickResponse `json:"draft_picks"`
	Settings      *transactionSettings `json:"settings"`
}

func (r transactionResponse) toDomain(leagueID string) transaction.Transaction {
	picks := make([]transaction.TradedPick, 0, len(r.DraftPicks))
	for _, p := range r.DraftPicks {
		picks = append(picks, p.toDomain())
	}
	var bid *int
	if r.Settings != nil && r.Settings.WaiverBid != nil {
		v := *r.Settings.WaiverBid
		bid = &v
	}
	return transaction.Transaction{
		ID:            r.TransactionID,
		LeagueID:      leagueID,
		Type:          transaction.Type(r.Type),
		Status:        r.Status,
		Leg:           r.Leg,
		Created:       r.Created,
		StatusUpdated: r.StatusUpdated,
		Creator:       r.Creator,
		RosterIDs:     r.RosterIDs,
		Adds:          r.Adds,
		Drops:         r.Drops,
		DraftPicks:    picks,
		WaiverBid:     bid,
	}
}

type draftSettings struct {
	Rounds int `json:"rounds"`
	Teams  int `json:"teams"`
}

type draftResponse struct {
	DraftID        string          `json:"draft_id"`
	LeagueID       string          `json:"league_id"`
	Season         string          `json:"season"`
	Status         string          `json:"status"`
	Type           string          `json:"type"`
	StartTime      int64           `json:"start_time"`
	Settings       draftSettings   `json:"settings"`
	SlotToRosterID map[string]*int `json:"slot_to_roster_id"`
}

func (r draftResponse) toDomain() transaction.Draft {
	slots := make(map[int]int, len(r.SlotToRosterID))
	for slot, rosterID := range r.SlotToRosterID {
		n, err := strconv.Atoi(slot)
		if err != nil || rosterID == nil {
			continue
		}
		slots[n] = *rosterID
	}
	teams := r.Settings.Teams
	if teams <= 0 {
		teams = len(slots)
	}
	return transaction.Draft{
		ID:             r.DraftID,
		LeagueID:       r.LeagueID,
		Season:         r.Season,
		Status:         r.Status,
		Type:           r.Type,
		StartTime:      r.StartTime,
		Rounds:         r.Settings.Rounds,
		Teams:          teams,
		SlotToRosterID: slots,
	}
}

type draftPickResponse struct {
	DraftID   string `json:"draft_id"`
	PickNo    int    `json:"pick_no"`
	Round     int    `json:"round"`
	DraftSlot int    `json:"draft_slot"`
	RosterID  int    `json:"roster_id"`
	PlayerID  string `json:"player_id"`
	PickedBy  string `json:"picked_by"`
	IsKeeper  *bool  `json:"is_keeper"`
}

func (r draftPickResponse) toDomain(draftID string) transaction.DraftSelection {
	id := r.DraftID
	if id == "" {
		id = draftID
	}
	return transaction.DraftSelection{
		DraftID:   id,
		PickNo:    r.PickNo,
		Round:     r.Round,
		DraftSlot: r.DraftSlot,
		RosterID:  r.RosterID,
		PlayerID:  r.PlayerID,
		PickedBy:  r.PickedBy,
		IsKeeper:  r.IsKeeper != nil && *r.IsKeeper,
	}
}

type playerResponse struct {
	PlayerID  string  `json:"player_id"`
	FullName  string  `json:"full_name"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Position  string  `json:"position"`
	Team      *string `json:"team"`
	Status    string  `json:"status"`
}

func (r playerResponse) toDomain(id string) player.Player {
	name := strings.TrimSpace(r.FullName)
	if name == "" {
		name = strings.TrimSpace(r.FirstName + " " + r.LastName)
	}
	team := ""
	if r.Team != nil {
		team = *r.Team
	}
	playerID := r.PlayerID
	if playerID == "" {
		playerID = id
	}
	return player.Player{
		ID:       playerID,
		FullName: name,
		Position: r.Position,
		Team:     team,
		Status:   r.Status,
	}
}

func sortedPlayerIDs(m map[string]playerResponse) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
