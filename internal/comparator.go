package internal

import (
	"cmp"
	"slices"
)

// Compare is a strict total order over subscriptions: higher priority first,
// then registration order. A subscription only compares equal to itself.
func Compare(a, b *Subscription) int {
	if a == b {
		return 0
	}

	// nil sorts last
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}

	// flipped so the more specific predicate comes first
	if c := cmp.Compare(b.priority, a.priority); c != 0 {
		return c
	}

	return cmp.Compare(a.id, b.id)
}

func SortSubscriptions(subs []*Subscription) {
	slices.SortFunc(subs, Compare)
}
