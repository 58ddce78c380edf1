package lineage

import (
	"fmt"
	"sort"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/transaction"
)

// Candidate ownership sources, most authoritative first.
const (
	SourceNatal             = "natal"
	SourceDraftTradedPicks  = "draft_traded_picks"
	SourcePickTradeEvents   = "pick_trade_events"
	SourceLeagueTradedPicks = "league_traded_picks"
)

// Resolution rules, in the order they are tried.
const (
	RuleSingleCandidate = "single_candidate"
	RuleAlreadyAssigned = "already_assigned"
	RuleSingleUnused    = "single_unused"
	RuleTieBreak        = "tie_break"
	RuleStableOrder     = "stable_order"
	RuleNoCandidate     = "no_candidate"
)

// PickCandidate is one pick of a draft season together with its holder at
// draft time.
type PickCandidate struct {
	Identity       asset.PickIdentity
	OwnerRosterID  int
	OwnerManagerID string
	Source         string
}

// Traded reports whether the pick sits with a roster other than its
// original one.
func (c PickCandidate) Traded() bool {
	return c.Identity.OriginalRosterID != c.OwnerRosterID
}

func (c PickCandidate) audit() map[string]any {
	return map[string]any{
		"pick":             c.Identity.String(),
		"owner_roster_id":  c.OwnerRosterID,
		"owner_manager_id": c.OwnerManagerID,
		"source":           c.Source,
		"traded":           c.Traded(),
	}
}

// CandidateInput is everything known about pick ownership for one draft.
type CandidateInput struct {
	Draft             transaction.Draft
	Owners            league.RosterOwnerMap
	DraftTradedPicks  []transaction.TradedPick
	PickTradeEvents   []asset.Event
	LeagueTradedPicks []transaction.TradedPick
}

// BuildPickCandidates lists every pick of the draft season: one natal pick
// per roster and round, re-owned by the draft's traded-pick listing when
// present, otherwise by replaying pick movements of the family, otherwise by
// the league traded-pick listing. A replayed movement whose receiver cannot be
// placed in the draft league is skipped with a warning.
func BuildPickCandidates(in CandidateInput) ([]PickCandidate, []Warning) {
	season := in.Draft.Season
	var warnings []Warning
	byIdentity := make(map[asset.PickIdentity]*PickCandidate)

	for _, rosterID := range draftRosters(in.Draft, in.Owners) {
		owner, _ := in.Owners.Owner(rosterID)
		for round := 1; round <= in.Draft.Rounds; round++ {
			id := asset.PickIdentity{Season: season, Round: round, OriginalRosterID: rosterID}
			byIdentity[id] = &PickCandidate{Identity: id, OwnerRosterID: rosterID, OwnerManagerID: owner, Source: SourceNatal}
		}
	}

	applyListing := func(picks []transaction.TradedPick, source string) {
		for _, p := range picks {
			if p.Season != season || p.Validate() != nil {
				continue
			}
			id := asset.PickIdentity{Season: p.Season, Round: p.Round, OriginalRosterID: p.RosterID}
			owner, _ := in.Owners.Owner(p.OwnerID)
			byIdentity[id] = &PickCandidate{Identity: id, OwnerRosterID: p.OwnerID, OwnerManagerID: owner, Source: source}
		}
	}

	switch {
	case hasSeason(in.DraftTradedPicks, season):
		applyListing(in.DraftTradedPicks, SourceDraftTradedPicks)
	case hasPickMoves(in.PickTradeEvents, season):
		moves := make([]asset.Event, 0, len(in.PickTradeEvents))
		for _, ev := range in.PickTradeEvents {
			if isPickMove(ev, season) {
				moves = append(moves, ev)
			}
		}
		SortTimeline(moves)
		for _, ev := range moves {
			id := ev.Ref().Pick
			rosterID, mapped := in.Owners.RosterOf(ev.ToManagerID)
			manager := ev.ToManagerID
			if !mapped {
				// Roster ids are league scoped, so only a movement inside the
				// draft league can name the receiver by roster.
				if ev.ToRosterID == nil || ev.LeagueID != in.Draft.LeagueID {
					warnings = append(warnings, Warning{
						Code:          WarnRosterUnmapped,
						LeagueID:      ev.LeagueID,
						TransactionID: ev.TransactionID,
						Message:       fmt.Sprintf("receiver of pick %s is unknown in draft league %s, movement skipped", id, in.Draft.LeagueID),
					})
					continue
				}
				rosterID = *ev.ToRosterID
				manager, _ = in.Owners.Owner(rosterID)
				warnings = append(warnings, Warning{
					Code:          WarnRosterUnmapped,
					LeagueID:      ev.LeagueID,
					TransactionID: ev.TransactionID,
					Message:       fmt.Sprintf("pick %s owner taken from receiving roster %d", id, rosterID),
				})
			}
			byIdentity[id] = &PickCandidate{Identity: id, OwnerRosterID: rosterID, OwnerManagerID: manager, Source: SourcePickTradeEvents}
		}
	default:
		applyListing(in.LeagueTradedPicks, SourceLeagueTradedPicks)
	}

	out := make([]PickCandidate, 0, len(byIdentity))
	for _, c := range byIdentity {
		out = append(out, *c)
	}
	sortCandidates(out)
	return out, warnings
}

func draftRosters(d transaction.Draft, owners league.RosterOwnerMap) []int {
	set := make(map[int]struct{})
	for rosterID := range owners {
		set[rosterID] = struct{}{}
	}
	for _, rosterID := range d.SlotToRosterID {
		if rosterID > 0 {
			set[rosterID] = struct{}{}
		}
	}
	if len(set) == 0 {
		for rosterID := 1; rosterID <= d.Teams; rosterID++ {
			set[rosterID] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for rosterID := range set {
		out = append(out, rosterID)
	}
	sort.Ints(out)
	return out
}

func hasSeason(picks []transaction.TradedPick, season string) bool {
	for _, p := range picks {
		if p.Season == season {
			return true
		}
	}
	return false
}

func isPickMove(ev asset.Event, season string) bool {
	if ev.Kind != asset.KindPick || ev.PickSeason != season || ev.PickOriginalRosterID == nil {
		return false
	}
	return ev.Type == asset.EventPickTrade || ev.Type == asset.EventCommissioner
}

func hasPickMoves(events []asset.Event, season string) bool {
	for _, ev := range events {
		if isPickMove(ev, season) {
			return true
		}
	}
	return false
}

func sortCandidates(items []PickCandidate) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Identity, items[j].Identity
		if a.Season != b.Season {
			return seasonLess(a.Season, b.Season)
		}
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		return a.OriginalRosterID < b.OriginalRosterID
	})
}

// Selection is the part of a draft pick the resolver reasons about.
type Selection struct {
	Season    string
	Round     int
	PickNo    int
	DraftSlot int
	Teams     int
	RosterID  int
	ManagerID string
	PlayerID  string
}

// SlotInRound is the 1-based position of the selection within its round.
func (s Selection) SlotInRound() int {
	if s.Teams <= 0 || s.PickNo <= 0 {
		return s.DraftSlot
	}
	return (s.PickNo-1)%s.Teams + 1
}

func (s Selection) owns(c PickCandidate) bool {
	if c.Identity.Season != s.Season || c.Identity.Round != s.Round {
		return false
	}
	if s.RosterID > 0 && c.OwnerRosterID == s.RosterID {
		return true
	}
	return s.ManagerID != "" && c.OwnerManagerID == s.ManagerID
}

// TieBreaker chooses among equally plausible candidates. It reports false
// when it has no preference.
type TieBreaker func(sel Selection, candidates []PickCandidate) (PickCandidate, bool)

// EarlyTradedInTieBreaker assumes selections in the first half of a round use
// a traded-in pick and later selections use the manager's own pick. It is a
// heuristic; the chosen rule is recorded on every resolution for audit.
func EarlyTradedInTieBreaker(sel Selection, candidates []PickCandidate) (PickCandidate, bool) {
	if sel.Teams <= 0 {
		return PickCandidate{}, false
	}
	early := sel.SlotInRound() <= sel.Teams/2
	for _, c := range candidates {
		if c.Traded() == early {
			return c, true
		}
	}
	return PickCandidate{}, false
}

// Resolution is the outcome of resolving one selection.
type Resolution struct {
	Selection  Selection
	Pick       PickCandidate
	Resolved   bool
	Rule       string
	Candidates []PickCandidate
}

// Audit renders the resolution for an event's details payload.
func (r Resolution) Audit() map[string]any {
	candidates := make([]map[string]any, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		candidates = append(candidates, c.audit())
	}
	return map[string]any{
		"rule":       r.Rule,
		"candidates": candidates,
	}
}

// PickResolver assigns draft selections to pick identities. It keeps the
// assignments of one rebuild, so selections must be fed in draft order.
// Setting TieBreak to nil disables the heuristic step.
type PickResolver struct {
	TieBreak TieBreaker

	candidates []PickCandidate
	assigned   map[asset.PickIdentity]string
}

func NewPickResolver(candidates []PickCandidate) *PickResolver {
	r := &PickResolver{
		TieBreak: EarlyTradedInTieBreaker,
		assigned: make(map[asset.PickIdentity]string),
	}
	r.Add(candidates...)
	return r
}

// Add registers further candidates. A candidate replaces an earlier one with
// the same identity.
func (r *PickResolver) Add(candidates ...PickCandidate) {
	for _, c := range candidates {
		replaced := false
		for i := range r.candidates {
			if r.candidates[i].Identity == c.Identity {
				r.candidates[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			r.candidates = append(r.candidates, c)
		}
	}
	sortCandidates(r.candidates)
}

func (r *PickResolver) Resolve(sel Selection) Resolution {
	if r.assigned == nil {
		r.assigned = make(map[asset.PickIdentity]string)
	}

	matching := make([]PickCandidate, 0, 2)
	for _, c := range r.candidates {
		if sel.owns(c) {
			matching = append(matching, c)
		}
	}
	res := Resolution{Selection: sel, Candidates: matching}

	choose := func(c PickCandidate, rule string) Resolution {
		res.Pick = c
		res.Resolved = true
		res.Rule = rule
		r.assigned[c.Identity] = sel.PlayerID
		return res
	}

	if len(matching) == 0 {
		res.Rule = RuleNoCandidate
		return res
	}
	if len(matching) == 1 {
		return choose(matching[0], RuleSingleCandidate)
	}
	for _, c := range matching {
		if player, ok := r.assigned[c.Identity]; ok && player == sel.PlayerID {
			return choose(c, RuleAlreadyAssigned)
		}
	}

	unused := make([]PickCandidate, 0, len(matching))
	for _, c := range matching {
		if _, ok := r.assigned[c.Identity]; !ok {
			unused = append(unused, c)
		}
	}
	if len(unused) == 1 {
		return choose(unused[0], RuleSingleUnused)
	}

	pool := unused
	if len(pool) == 0 {
		pool = matching
	}
	if r.TieBreak != nil {
		if c, ok := r.TieBreak(sel, pool); ok {
			return choose(c, RuleTieBreak)
		}
	}
	return choose(pool[0], RuleStableOrder)
}
