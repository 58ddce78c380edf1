package lineage

import (
	"fmt"
	"sort"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/transaction"
)

// Decompose turns one transaction of lg into asset events. owners must be the
// roster-owner map of lg itself. Rosters missing from the map leave the
// manager side empty and produce a warning.
func Decompose(tx transaction.Transaction, lg league.League, owners league.RosterOwnerMap) ([]asset.Event, []Warning) {
	if !tx.Complete() {
		return nil, nil
	}

	d := decomposition{tx: tx, league: lg, owners: owners}
	switch tx.Type {
	case transaction.TypeTrade:
		d.trade()
	case transaction.TypeWaiver:
		d.claims(asset.EventWaiverAdd, asset.EventWaiverDrop)
	case transaction.TypeFreeAgent:
		d.claims(asset.EventFreeAgentAdd, asset.EventFreeAgentDrop)
	case transaction.TypeCommissioner:
		d.commissioner()
	default:
		d.warn(WarnUnknownType, fmt.Sprintf("transaction type %q is not decomposed", tx.Type))
	}
	return d.events, d.warnings
}

type decomposition struct {
	tx       transaction.Transaction
	league   league.League
	owners   league.RosterOwnerMap
	events   []asset.Event
	warnings []Warning
}

func (d *decomposition) trade() {
	for _, playerID := range sortedKeys(d.tx.Adds) {
		from := d.tx.Drops[playerID]
		ev := d.playerEvent(asset.EventTrade, playerID, from, d.tx.Adds[playerID])
		ev.Details = map[string]any{"roster_ids": d.tx.RosterIDs}
		d.events = append(d.events, ev)
	}

	// A player released as part of a trade without landing anywhere.
	for _, playerID := range sortedKeys(d.tx.Drops) {
		if _, added := d.tx.Adds[playerID]; added {
			continue
		}
		ev := d.playerEvent(asset.EventFreeAgentDrop, playerID, d.tx.Drops[playerID], 0)
		ev.Details = map[string]any{"within_trade": true}
		d.events = append(d.events, ev)
	}

	for _, pick := range sortedPicks(d.tx.DraftPicks) {
		if err := pick.Validate(); err != nil {
			d.warn(WarnInvalidPick, err.Error())
			continue
		}
		ev := d.pickEvent(asset.EventPickTrade, pick, pick.PreviousOwnerID, pick.OwnerID)
		d.events = append(d.events, ev)
	}
}

func (d *decomposition) claims(addType, dropType asset.EventType) {
	var details map[string]any
	if d.tx.WaiverBid != nil {
		details = map[string]any{"waiver_bid": *d.tx.WaiverBid}
	}

	for _, playerID := range sortedKeys(d.tx.Adds) {
		ev := d.playerEvent(addType, playerID, 0, d.tx.Adds[playerID])
		ev.Details = cloneDetails(details)
		d.events = append(d.events, ev)
	}
	for _, playerID := range sortedKeys(d.tx.Drops) {
		ev := d.playerEvent(dropType, playerID, d.tx.Drops[playerID], 0)
		ev.Details = cloneDetails(details)
		d.events = append(d.events, ev)
	}
}

func (d *decomposition) commissioner() {
	seen := make(map[string]struct{}, len(d.tx.Adds)+len(d.tx.Drops))
	players := append(sortedKeys(d.tx.Adds), sortedKeys(d.tx.Drops)...)
	for _, playerID := range players {
		if _, ok := seen[playerID]; ok {
			continue
		}
		seen[playerID] = struct{}{}
		ev := d.playerEvent(asset.EventCommissioner, playerID, d.tx.Drops[playerID], d.tx.Adds[playerID])
		ev.Details = map[string]any{"creator": d.tx.Creator}
		d.events = append(d.events, ev)
	}

	for _, pick := range sortedPicks(d.tx.DraftPicks) {
		if err := pick.Validate(); err != nil {
			d.warn(WarnInvalidPick, err.Error())
			continue
		}
		ev := d.pickEvent(asset.EventCommissioner, pick, pick.PreviousOwnerID, pick.OwnerID)
		ev.Details = map[string]any{"creator": d.tx.Creator}
		d.events = append(d.events, ev)
	}
}

func (d *decomposition) base(typ asset.EventType, kind asset.Kind, fromRoster, toRoster int) asset.Event {
	ev := asset.Event{
		LeagueID:      d.league.ID,
		Season:        d.league.Season,
		Week:          d.tx.Week(),
		Timestamp:     d.tx.Timestamp(),
		Type:          typ,
		Kind:          kind,
		TransactionID: d.tx.ID,
	}
	if fromRoster > 0 {
		ev.FromRosterID = asset.IntPtr(fromRoster)
		ev.FromManagerID = d.manager(fromRoster)
	}
	if toRoster > 0 {
		ev.ToRosterID = asset.IntPtr(toRoster)
		ev.ToManagerID = d.manager(toRoster)
	}
	return ev
}

func (d *decomposition) playerEvent(typ asset.EventType, playerID string, fromRoster, toRoster int) asset.Event {
	ev := d.base(typ, asset.KindPlayer, fromRoster, toRoster)
	ev.PlayerID = playerID
	return ev
}

func (d *decomposition) pickEvent(typ asset.EventType, pick transaction.TradedPick, fromRoster, toRoster int) asset.Event {
	ev := d.base(typ, asset.KindPick, fromRoster, toRoster)
	ev.PickSeason = pick.Season
	ev.PickRound = pick.Round
	ev.PickOriginalRosterID = asset.IntPtr(pick.RosterID)
	return ev
}

func (d *decomposition) manager(rosterID int) string {
	owner, ok := d.owners.Owner(rosterID)
	if !ok {
		d.warn(WarnRosterUnmapped, fmt.Sprintf("roster %d has no owner in league %s", rosterID, d.league.ID))
		return ""
	}
	return owner
}

func (d *decomposition) warn(code, message string) {
	d.warnings = append(d.warnings, Warning{
		Code:          code,
		LeagueID:      d.league.ID,
		TransactionID: d.tx.ID,
		Message:       message,
	})
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedPicks(picks []transaction.TradedPick) []transaction.TradedPick {
	out := append([]transaction.TradedPick(nil), picks...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].RosterID < out[j].RosterID
	})
	return out
}

func cloneDetails(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
