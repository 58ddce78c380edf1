package asset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidRef      = errors.New("invalid asset reference")
	ErrDuplicateEvent  = errors.New("duplicate asset event")
	ErrUnknownKind     = errors.New("unknown asset kind")
	ErrUnknownEvent    = errors.New("unknown asset event type")
	ErrMissingIdentity = errors.New("asset event has no asset identity")
)

// Kind is the class of fungible thing an event moves.
type Kind string

const (
	KindPlayer Kind = "player"
	KindPick   Kind = "pick"
)

// EventType names what happened to an asset.
type EventType string

const (
	EventTrade         EventType = "trade"
	EventPickTrade     EventType = "pick_trade"
	EventDraftSelected EventType = "draft_selected"
	EventPickSelected  EventType = "pick_selected"
	EventWaiverAdd     EventType = "waiver_add"
	EventWaiverDrop    EventType = "waiver_drop"
	EventFreeAgentAdd  EventType = "free_agent_add"
	EventFreeAgentDrop EventType = "free_agent_drop"
	EventCommissioner  EventType = "commissioner"
)

var knownEventTypes = map[EventType]struct{}{
	EventTrade:         {},
	EventPickTrade:     {},
	EventDraftSelected: {},
	EventPickSelected:  {},
	EventWaiverAdd:     {},
	EventWaiverDrop:    {},
	EventFreeAgentAdd:  {},
	EventFreeAgentDrop: {},
	EventCommissioner:  {},
}

// Links reports whether events of this type tie the assets of one
// transaction together (the assets were exchanged for, or converted into,
// each other).
func (t EventType) Links() bool {
	switch t {
	case EventTrade, EventPickTrade, EventPickSelected, EventDraftSelected:
		return true
	default:
		return false
	}
}

// PickIdentity names a draft-pick slot independent of its current holder.
// OriginalRosterID is the genesis roster; zero means it could not be resolved.
type PickIdentity struct {
	Season           string
	Round            int
	OriginalRosterID int
}

func (p PickIdentity) Resolved() bool {
	return p.OriginalRosterID > 0
}

func (p PickIdentity) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Season, p.Round, p.OriginalRosterID)
}

// Label is a human readable pick name, e.g. "2024 Round 1 (roster 5)".
func (p PickIdentity) Label() string {
	if !p.Resolved() {
		return fmt.Sprintf("%s Round %d (unresolved)", p.Season, p.Round)
	}
	return fmt.Sprintf("%s Round %d (roster %d)", p.Season, p.Round, p.OriginalRosterID)
}

// Ref identifies one asset: a player, or a pick identity.
type Ref struct {
	Kind     Kind
	PlayerID string
	Pick     PickIdentity
}

func PlayerRef(playerID string) Ref {
	return Ref{Kind: KindPlayer, PlayerID: playerID}
}

func PickRef(season string, round, originalRosterID int) Ref {
	return Ref{Kind: KindPick, Pick: PickIdentity{Season: season, Round: round, OriginalRosterID: originalRosterID}}
}

// Key is the canonical string form: player:<id> or pick:<season>:<round>:<roster>.
func (r Ref) Key() string {
	switch r.Kind {
	case KindPlayer:
		return "player:" + r.PlayerID
	case KindPick:
		return "pick:" + r.Pick.String()
	default:
		return ""
	}
}

func (r Ref) String() string {
	return r.Key()
}

func (r Ref) Validate() error {
	switch r.Kind {
	case KindPlayer:
		if strings.TrimSpace(r.PlayerID) == "" {
			return fmt.Errorf("%w: player id is required", ErrInvalidRef)
		}
	case KindPick:
		if strings.TrimSpace(r.Pick.Season) == "" {
			return fmt.Errorf("%w: pick season is required", ErrInvalidRef)
		}
		if r.Pick.Round <= 0 {
			return fmt.Errorf("%w: pick round must be > 0", ErrInvalidRef)
		}
		if r.Pick.OriginalRosterID <= 0 {
			return fmt.Errorf("%w: pick original roster must be > 0", ErrInvalidRef)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidRef, ErrUnknownKind, r.Kind)
	}
	return nil
}

// ParseRef reads the canonical form produced by Key. A bare value without a
// kind prefix is taken as a player id.
func ParseRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, fmt.Errorf("%w: empty reference", ErrInvalidRef)
	}

	kind, rest, found := strings.Cut(raw, ":")
	if !found {
		ref := PlayerRef(raw)
		return ref, ref.Validate()
	}

	switch Kind(strings.ToLower(kind)) {
	case KindPlayer:
		ref := PlayerRef(strings.TrimSpace(rest))
		return ref, ref.Validate()
	case KindPick:
		parts := strings.Split(rest, ":")
		if len(parts) != 3 {
			return Ref{}, fmt.Errorf("%w: pick reference %q, expected pick:<season>:<round>:<roster>", ErrInvalidRef, raw)
		}
		round, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return Ref{}, fmt.Errorf("%w: pick round %q", ErrInvalidRef, parts[1])
		}
		rosterID, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return Ref{}, fmt.Errorf("%w: pick roster %q", ErrInvalidRef, parts[2])
		}
		ref := PickRef(strings.TrimSpace(parts[0]), round, rosterID)
		return ref, ref.Validate()
	default:
		return Ref{}, fmt.Errorf("%w: %w %q", ErrInvalidRef, ErrUnknownKind, kind)
	}
}

// Event is one atomic movement or state change of one asset.
// Empty strings and nil pointers stand for absent values.
type Event struct {
	ID                   int64
	LeagueID             string
	Season               string
	Week                 *int
	Timestamp            time.Time
	Type                 EventType
	Kind                 Kind
	PlayerID             string
	PickSeason           string
	PickRound            int
	PickOriginalRosterID *int
	FromManagerID        string
	ToManagerID          string
	FromRosterID         *int
	ToRosterID           *int
	TransactionID        string
	Details              map[string]any
}

// Ref returns the asset the event moves. For a pick whose original owner is
// unknown the identity is returned unresolved.
func (e Event) Ref() Ref {
	if e.Kind == KindPick {
		orig := 0
		if e.PickOriginalRosterID != nil {
			orig = *e.PickOriginalRosterID
		}
		return PickRef(e.PickSeason, e.PickRound, orig)
	}
	return PlayerRef(e.PlayerID)
}

func (e Event) Validate() error {
	if e.LeagueID == "" {
		return fmt.Errorf("asset event league id is required")
	}
	if _, ok := knownEventTypes[e.Type]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	switch e.Kind {
	case KindPlayer:
		if e.PlayerID == "" {
			return ErrMissingIdentity
		}
	case KindPick:
		if e.PickSeason == "" || e.PickRound <= 0 {
			return ErrMissingIdentity
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	return nil
}

// BusinessKey renders the uniqueness tuple of the event log: league, type,
// kind, player, pick season/round/original owner, transaction, from and to
// manager.
func (e Event) BusinessKey() string {
	orig := ""
	if e.PickOriginalRosterID != nil {
		orig = strconv.Itoa(*e.PickOriginalRosterID)
	}
	round := ""
	if e.PickRound > 0 {
		round = strconv.Itoa(e.PickRound)
	}
	return strings.Join([]string{
		e.LeagueID,
		string(e.Type),
		string(e.Kind),
		e.PlayerID,
		e.PickSeason,
		round,
		orig,
		e.TransactionID,
		e.FromManagerID,
		e.ToManagerID,
	}, "|")
}

// WeekValue returns the week or zero when the event is not week scoped.
func (e Event) WeekValue() int {
	if e.Week == nil {
		return 0
	}
	return *e.Week
}

func IntPtr(v int) *int {
	return &v
}
