package internal

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
)

type Config struct {
	Context VariableContext
	Logger  *slog.Logger
	Metrics Metrics

	ThrottleCapacity  int
	ThrottleThreshold int
}

// Authority owns the subscriptions, their index and the batch state.
// It is meant to be driven from a single goroutine.
type Authority struct {
	ctx     VariableContext
	logger  *slog.Logger
	metrics Metrics

	tiers     *Tiers
	index     *VariableIndex
	preds     *predicateTable
	batcher   *Batcher
	listeners *ListenerList
	throttle  *LogThrottle

	subs   map[SubscriptionID]*Subscription
	nextID SubscriptionID
}

func NewAuthority(cfg Config) *Authority {
	a := &Authority{
		ctx:     cfg.Context,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,

		tiers:     NewTiers(),
		index:     NewVariableIndex(),
		preds:     newPredicateTable(),
		batcher:   NewBatcher(),
		listeners: NewListenerList(),
		throttle:  NewLogThrottle(cfg.ThrottleCapacity, cfg.ThrottleThreshold),

		subs: make(map[SubscriptionID]*Subscription),
	}

	if a.ctx == nil {
		a.ctx = emptyContext{}
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.metrics == nil {
		a.metrics = nopMetrics{}
	}

	return a
}

func (a *Authority) Context() VariableContext { return a.ctx }

// SetContext swaps the variables predicates read. Cached results are kept;
// callers notify the names that differ.
func (a *Authority) SetContext(ctx VariableContext) {
	if ctx == nil {
		ctx = emptyContext{}
	}
	a.ctx = ctx
}

func (a *Authority) Tiers() *Tiers { return a.tiers }

func (a *Authority) Index() *VariableIndex { return a.index }

func (a *Authority) IsBatching() bool { return a.batcher.IsBatching() }

func (a *Authority) Len() int { return len(a.subs) }

func (a *Authority) Lookup(id SubscriptionID) (*Subscription, bool) {
	s, ok := a.subs[id]
	return s, ok
}

// Subscribe registers a predicate, evaluates it and delivers the baseline (None, result).
func (a *Authority) Subscribe(p Predicate, cb Callback, notifications bool) *Subscription {
	names, explicit, err := ReadVariables(p)

	a.nextID++
	s := newSubscription(a.nextID, p, a.preds.acquire(p), names, a.tiers.Priority(names, explicit), cb)
	s.notifications = notifications

	if err != nil {
		a.report("predicate", err, "subscription", s.id)
	}

	a.subs[s.id] = s
	a.index.Index(s)

	value := a.evaluate(s)
	a.fire(s, None, Some(value))

	return s
}

// Unsubscribe delivers (last, None) and forgets the subscription.
func (a *Authority) Unsubscribe(id SubscriptionID) {
	s, ok := a.subs[id]
	if !ok || !s.participating {
		a.logger.Debug("unsubscribe of unknown subscription", "subscription", id)
		return
	}

	s.participating = false

	last := a.evaluate(s)
	a.fire(s, Some(last), None)

	a.index.Deindex(s)
	delete(a.subs, id)
	a.preds.release(s.predicate)
}

func (a *Authority) SetNotificationsEnabled(id SubscriptionID, enabled bool) bool {
	s, ok := a.subs[id]
	if !ok {
		return false
	}

	s.SetNotificationsEnabled(enabled)
	return true
}

// Result returns the cached result, evaluating it if it was invalidated.
func (a *Authority) Result(id SubscriptionID) (Result, bool) {
	s, ok := a.subs[id]
	if !ok {
		return None, false
	}

	return Some(a.evaluate(s)), true
}

// NotifyChanged re-evaluates every predicate reading one of names and
// notifies the subscriptions whose result changed.
func (a *Authority) NotifyChanged(names []string) {
	if len(names) == 0 {
		return
	}

	a.batcher.Batch(
		func() { a.invalidate(names) },
		func() { a.batchStarted(names) },
		func() { a.batchEnded(names) },
	)
}

// NotifyTiersChanged notifies every registered name whose tier intersects mask.
func (a *Authority) NotifyTiersChanged(mask uint32) {
	a.NotifyChanged(a.tiers.Names(mask))
}

func (a *Authority) AddBatchListener(fn BatchListener) ListenerID {
	return a.listeners.Add(fn)
}

func (a *Authority) RemoveBatchListener(id ListenerID) bool {
	return a.listeners.Remove(id)
}

// Sort returns the known subscriptions among ids in comparator order.
func (a *Authority) Sort(ids []SubscriptionID) []*Subscription {
	subs := make([]*Subscription, 0, len(ids))
	for _, id := range ids {
		if s, ok := a.subs[id]; ok && !slices.Contains(subs, s) {
			subs = append(subs, s)
		}
	}

	SortSubscriptions(subs)
	return subs
}

func (a *Authority) invalidate(names []string) {
	// snapshot every group before any callback runs
	groups := slices.Collect(a.index.Lookup(names))

	visited := make(map[PredicateID]struct{}, len(groups))
	for _, g := range groups {
		if _, ok := visited[g.Predicate]; ok {
			continue
		}
		visited[g.Predicate] = struct{}{}

		a.refresh(g.Subscriptions)
	}
}

// refresh evaluates a shared predicate once and fans the result out to the group.
func (a *Authority) refresh(group []*Subscription) {
	k := slices.IndexFunc(group, func(s *Subscription) bool {
		return s.participating && s.notifications
	})
	if k < 0 {
		return
	}

	selected := group[k]
	before := a.evaluate(selected)
	selected.Invalidate()
	after := a.evaluate(selected)

	if before != after {
		a.fire(selected, Some(before), Some(after))
	}

	for i, s := range group {
		if i == k || !s.participating {
			continue
		}

		if !s.notifications {
			if v, ok := s.result.Get(); !ok || v != after {
				s.Force(after)
			}
			continue
		}

		prev := a.evaluate(s)
		if prev != after {
			s.Force(after)
			a.fire(s, Some(prev), Some(after))
		}
	}
}

func (a *Authority) evaluate(s *Subscription) bool {
	if v, ok := s.result.Get(); ok {
		return v
	}

	value, err := s.Evaluate(a.ctx)
	a.metrics.PredicateEvaluated()

	if err != nil {
		a.metrics.PredicateFailed()
		a.report("predicate", err, "subscription", s.id, "variables", s.names)
	}

	return value
}

func (a *Authority) fire(s *Subscription, old, new Result) {
	if s.callback == nil || !s.notifications {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			a.metrics.CallbackFailed()
			a.report("callback", fmt.Errorf("panic: %v", r), "subscription", s.id)
		}
	}()

	s.callback(old, new)
	a.metrics.CallbackDelivered()
}

func (a *Authority) emitBatch(batching bool) {
	a.listeners.Run(func(id ListenerID, fn BatchListener) {
		defer func() {
			if r := recover(); r != nil {
				a.report("listener", fmt.Errorf("panic: %v", r), "listener", id)
			}
		}()

		fn(batching)
	})
}

// report logs a fault unless the same message was already logged too often.
func (a *Authority) report(kind string, err error, attrs ...any) {
	message := kind + ": " + err.Error()

	log, suppressedNow := a.throttle.Record(message)
	if log {
		a.logger.Error("evaluation fault", append([]any{"kind", kind, "error", err}, attrs...)...)
	}
	if suppressedNow {
		a.metrics.LogSuppressed()
		a.logger.Warn("further occurrences suppressed", "message", message)
	}
}

// predicateTable hands out one id per predicate identity while it is referenced.
type predicateTable struct {
	ids  map[Predicate]*predicateEntry
	next PredicateID
}

type predicateEntry struct {
	id   PredicateID
	refs int
}

func newPredicateTable() *predicateTable {
	return &predicateTable{
		ids: make(map[Predicate]*predicateEntry),
	}
}

// acquire returns 0 for an absent predicate and a fresh id for predicates
// that cannot be used as a map key.
func (t *predicateTable) acquire(p Predicate) PredicateID {
	if p == nil {
		return 0
	}

	if !hashable(p) {
		t.next++
		return t.next
	}

	e, ok := t.ids[p]
	if !ok {
		t.next++
		e = &predicateEntry{id: t.next}
		t.ids[p] = e
	}
	e.refs++

	return e.id
}

func (t *predicateTable) release(p Predicate) {
	if p == nil || !hashable(p) {
		return
	}

	e, ok := t.ids[p]
	if !ok {
		return
	}

	e.refs--
	if e.refs <= 0 {
		delete(t.ids, p)
	}
}

// hashable reports whether p can key a map. A comparable struct can still
// hold an unhashable value in an interface field, which only hashing detects.
func hashable(p Predicate) (ok bool) {
	if !reflect.TypeOf(p).Comparable() {
		return false
	}

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	m := map[Predicate]struct{}{p: {}}
	return len(m) == 1
}
