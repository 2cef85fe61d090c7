package internal

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Group is a snapshot of the subscriptions sharing one predicate under one variable name.
type Group struct {
	Predicate     PredicateID
	Subscriptions []*Subscription // registration order
}

// VariableIndex maps variable name -> predicate -> subscriptions.
// A subscription reading N names is indexed N times.
type VariableIndex struct {
	names map[string]map[PredicateID][]*Subscription
}

func NewVariableIndex() *VariableIndex {
	return &VariableIndex{
		names: make(map[string]map[PredicateID][]*Subscription),
	}
}

func (x *VariableIndex) Index(s *Subscription) {
	for _, name := range s.names {
		bucket, ok := x.names[name]
		if !ok {
			bucket = make(map[PredicateID][]*Subscription)
			x.names[name] = bucket
		}

		subs := bucket[s.predID]
		i, found := slices.BinarySearchFunc(subs, s.id, bySubscriptionID)
		if found {
			continue
		}
		bucket[s.predID] = slices.Insert(subs, i, s)
	}
}

// Deindex removes the subscription everywhere it was indexed and prunes empty buckets.
func (x *VariableIndex) Deindex(s *Subscription) {
	for _, name := range s.names {
		bucket, ok := x.names[name]
		if !ok {
			continue
		}

		subs := bucket[s.predID]
		i, found := slices.BinarySearchFunc(subs, s.id, bySubscriptionID)
		if !found {
			continue
		}

		subs = slices.Delete(subs, i, i+1)
		if len(subs) == 0 {
			delete(bucket, s.predID)
		} else {
			bucket[s.predID] = subs
		}

		if len(bucket) == 0 {
			delete(x.names, name)
		}
	}
}

// Lookup yields every predicate group indexed under the given names.
// Names are visited in first-occurrence order and groups in predicate order.
// The same group can be yielded once per name it is reachable from.
func (x *VariableIndex) Lookup(names []string) iter.Seq[Group] {
	return func(yield func(Group) bool) {
		seen := make(map[string]struct{}, len(names))

		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}

			bucket := x.names[name]
			for _, id := range slices.Sorted(maps.Keys(bucket)) {
				subs, ok := bucket[id]
				if !ok {
					continue
				}

				// cloning so callbacks can mutate the index while the group is processed
				if !yield(Group{Predicate: id, Subscriptions: slices.Clone(subs)}) {
					return
				}
			}
		}
	}
}

// Len returns the number of name buckets.
func (x *VariableIndex) Len() int {
	return len(x.names)
}

func (x *VariableIndex) Contains(name string, s *Subscription) bool {
	subs := x.names[name][s.predID]
	_, found := slices.BinarySearchFunc(subs, s.id, bySubscriptionID)
	return found
}

func bySubscriptionID(s *Subscription, id SubscriptionID) int {
	return cmp.Compare(s.id, id)
}
