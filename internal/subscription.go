package internal

import "fmt"

type SubscriptionID uint64

type PredicateID uint64

// Callback receives the previous and the new result of a subscription.
// old is unset on the first observation, new is unset on removal.
type Callback func(old, new Result)

// Subscription is the memo cell of one registered predicate.
type Subscription struct {
	id        SubscriptionID
	predicate Predicate
	predID    PredicateID
	names     []string

	// derived once from names, only used for ordering
	priority uint32

	result Result

	// false once unsubscribed
	participating bool
	// soft switch for callback delivery, the cache is kept either way
	notifications bool

	callback Callback
}

func newSubscription(id SubscriptionID, p Predicate, predID PredicateID, names []string, priority uint32, cb Callback) *Subscription {
	return &Subscription{
		id:            id,
		predicate:     p,
		predID:        predID,
		names:         names,
		priority:      priority,
		participating: true,
		notifications: true,
		callback:      cb,
	}
}

func (s *Subscription) ID() SubscriptionID         { return s.id }
func (s *Subscription) Predicate() Predicate       { return s.predicate }
func (s *Subscription) PredicateID() PredicateID   { return s.predID }
func (s *Subscription) Names() []string            { return s.names }
func (s *Subscription) Priority() uint32           { return s.priority }
func (s *Subscription) Result() Result             { return s.result }
func (s *Subscription) Participating() bool        { return s.participating }
func (s *Subscription) NotificationsEnabled() bool { return s.notifications }

func (s *Subscription) SetNotificationsEnabled(enabled bool) {
	s.notifications = enabled
}

// Evaluate returns the cached result, running the predicate only when the cache is unset.
// A failing predicate caches false and returns the fault alongside it.
func (s *Subscription) Evaluate(ctx VariableContext) (bool, error) {
	if v, ok := s.result.Get(); ok {
		return v, nil
	}

	value, err := s.run(ctx)
	s.result = Some(value)

	return value, err
}

// Invalidate forgets the cached result. It never triggers a callback.
func (s *Subscription) Invalidate() {
	s.result = None
}

// Force sets the cached result without running the predicate.
func (s *Subscription) Force(value bool) {
	s.result = Some(value)
}

func (s *Subscription) run(ctx VariableContext) (value bool, err error) {
	if s.predicate == nil {
		return true, nil
	}

	defer func() {
		if r := recover(); r != nil {
			value, err = false, fmt.Errorf("panic: %v", r)
		}
	}()

	value, err = s.predicate.Evaluate(ctx)
	if err != nil {
		return false, err
	}

	return value, nil
}
