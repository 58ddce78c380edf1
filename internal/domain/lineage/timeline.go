package lineage

import (
	"sort"
	"strconv"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
)

// SortTimeline orders events by season, week and timestamp. Events that are
// not week scoped sort as week zero. Ties keep insertion order.
func SortTimeline(events []asset.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return timelineLess(events[i], events[j])
	})
}

func timelineLess(a, b asset.Event) bool {
	if a.Season != b.Season {
		return seasonLess(a.Season, b.Season)
	}
	if a.WeekValue() != b.WeekValue() {
		return a.WeekValue() < b.WeekValue()
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}

// SortCanonical puts freshly decomposed events into the order they are
// stored in. Two rebuilds from the same upstream data produce the same order
// and therefore the same insertion ids.
func SortCanonical(events []asset.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Season != b.Season {
			return seasonLess(a.Season, b.Season)
		}
		if a.WeekValue() != b.WeekValue() {
			return a.WeekValue() < b.WeekValue()
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.LeagueID != b.LeagueID {
			return a.LeagueID < b.LeagueID
		}
		if a.TransactionID != b.TransactionID {
			return a.TransactionID < b.TransactionID
		}
		return a.BusinessKey() < b.BusinessKey()
	})
}

// FilterByRef keeps the events of one asset.
func FilterByRef(events []asset.Event, ref asset.Ref) []asset.Event {
	key := ref.Key()
	out := make([]asset.Event, 0)
	for _, ev := range events {
		if ev.Ref().Key() == key {
			out = append(out, ev)
		}
	}
	return out
}

// seasonLess compares numeric seasons numerically and anything else
// lexically.
func seasonLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return a < b
}
