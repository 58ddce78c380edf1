package lineage

import (
	"fmt"
	"sort"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/transaction"
)

// DecomposeDraft synthesizes events for the selections of one draft held in
// lg. Every selection yields a draft_selected event; a selection made with a
// pick that originally belonged to another roster also yields pick_selected.
// Both share the selection's synthetic transaction id.
func DecomposeDraft(
	draft transaction.Draft,
	lg league.League,
	owners league.RosterOwnerMap,
	selections []transaction.DraftSelection,
	resolver *PickResolver,
) ([]asset.Event, []Warning) {
	ordered := append([]transaction.DraftSelection(nil), selections...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].PickNo < ordered[j].PickNo })

	season := draft.Season
	if season == "" {
		season = lg.Season
	}

	var (
		events   []asset.Event
		warnings []Warning
	)
	warn := func(sel transaction.DraftSelection, code, message string) {
		warnings = append(warnings, Warning{Code: code, LeagueID: lg.ID, TransactionID: sel.SourceID(), Message: message})
	}

	for _, sel := range ordered {
		if sel.PlayerID == "" {
			warn(sel, WarnMissingPlayer, fmt.Sprintf("pick %d has no player", sel.PickNo))
			continue
		}

		managerID := sel.PickedBy
		if managerID == "" {
			if owner, ok := owners.Owner(sel.RosterID); ok {
				managerID = owner
			} else {
				warn(sel, WarnRosterUnmapped, fmt.Sprintf("roster %d has no owner in league %s", sel.RosterID, lg.ID))
			}
		}

		base := asset.Event{
			LeagueID:      lg.ID,
			Season:        season,
			Timestamp:     draft.SelectionTime(sel.PickNo),
			ToManagerID:   managerID,
			TransactionID: sel.SourceID(),
		}
		if sel.RosterID > 0 {
			base.ToRosterID = asset.IntPtr(sel.RosterID)
		}

		res := resolver.Resolve(Selection{
			Season:    season,
			Round:     sel.Round,
			PickNo:    sel.PickNo,
			DraftSlot: sel.DraftSlot,
			Teams:     draft.Teams,
			RosterID:  sel.RosterID,
			ManagerID: managerID,
			PlayerID:  sel.PlayerID,
		})

		drafted := base
		drafted.Type = asset.EventDraftSelected
		drafted.Kind = asset.KindPlayer
		drafted.PlayerID = sel.PlayerID
		drafted.Details = map[string]any{
			"draft_id":   draft.ID,
			"pick_no":    sel.PickNo,
			"round":      sel.Round,
			"draft_slot": sel.DraftSlot,
			"is_keeper":  sel.IsKeeper,
		}
		if res.Resolved {
			drafted.Details["pick"] = res.Pick.Identity.String()
		}
		events = append(events, drafted)

		if res.Resolved && res.Pick.Identity.OriginalRosterID == sel.RosterID {
			continue
		}

		used := base
		used.Type = asset.EventPickSelected
		used.Kind = asset.KindPick
		used.PickSeason = season
		used.PickRound = sel.Round
		used.Details = res.Audit()
		used.Details["player_id"] = sel.PlayerID
		used.Details["pick_no"] = sel.PickNo
		used.Details["draft_slot"] = sel.DraftSlot
		if rosterID, ok := draft.SlotToRosterID[sel.DraftSlot]; ok {
			used.Details["slot_to_roster_id"] = rosterID
		}
		if res.Resolved {
			used.PickOriginalRosterID = asset.IntPtr(res.Pick.Identity.OriginalRosterID)
		} else {
			used.Details["unresolved"] = true
			warn(sel, WarnPickUnresolved, fmt.Sprintf("no %s round %d pick held by roster %d", season, sel.Round, sel.RosterID))
		}
		events = append(events, used)
	}

	return events, warnings
}

// AnnotatePickOwners records the manager that originally held each pick
// under details.original_manager_id. The original roster is read with the map
// of the family league playing the pick's season, or with the issuing
// league's map for seasons that have no league yet.
func AnnotatePickOwners(events []asset.Event, family league.Family, maps league.FamilyMaps) {
	for i := range events {
		ev := &events[i]
		if ev.Kind != asset.KindPick || ev.PickOriginalRosterID == nil {
			continue
		}
		owners := maps.For(ev.LeagueID)
		if lg, ok := family.LeagueForSeason(ev.PickSeason); ok {
			owners = maps.For(lg.ID)
		}
		owner, ok := owners.Owner(*ev.PickOriginalRosterID)
		if !ok {
			continue
		}
		if ev.Details == nil {
			ev.Details = make(map[string]any, 1)
		}
		ev.Details["original_manager_id"] = owner
	}
}
