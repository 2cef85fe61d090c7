package internal

import (
	"maps"
	"slices"
)

// TierWorkbench is the coarsest tier. Unknown names and predicates without
// explicit variables get it.
const TierWorkbench uint32 = 0

// Tiers maps variable names to coarse priority tiers.
// Tiers are meant to be distinct bit flags so that combining them keeps the
// most specific name dominant.
type Tiers struct {
	byName map[string]uint32
}

func NewTiers() *Tiers {
	return &Tiers{
		byName: make(map[string]uint32),
	}
}

func (t *Tiers) Register(name string, tier uint32) {
	t.byName[name] = tier
}

func (t *Tiers) Tier(name string) uint32 {
	if tier, ok := t.byName[name]; ok {
		return tier
	}

	return TierWorkbench
}

// Priority combines the tiers of every name a predicate reads.
func (t *Tiers) Priority(names []string, explicit bool) uint32 {
	if !explicit {
		return TierWorkbench
	}

	var priority uint32
	for _, name := range names {
		priority |= t.Tier(name)
	}

	return priority
}

// Names returns, sorted, every registered name whose tier intersects mask.
func (t *Tiers) Names(mask uint32) []string {
	var names []string
	for _, name := range slices.Sorted(maps.Keys(t.byName)) {
		if t.byName[name]&mask != 0 {
			names = append(names, name)
		}
	}

	return names
}
