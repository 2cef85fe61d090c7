// Package evaluation caches the results of boolean predicates over named
// variables and tells subscribers when a result changes.
//
// Predicates are indexed by the variables they read, so a change to one
// variable only re-evaluates the predicates that read it. Subscriptions
// sharing a predicate instance share a single evaluation.
package evaluation

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/AnatoleLucet/evaluation/internal"
	"github.com/AnatoleLucet/evaluation/internal/log"
)

// Result is an optional boolean, unset before the first evaluation and after removal.
type Result = internal.Result

// None is the unset result.
var None = internal.None

// Some wraps a boolean into a Result.
func Some(v bool) Result { return internal.Some(v) }

// Callback receives a subscription's previous and new result.
// old is unset on the first observation, new is unset on removal.
type Callback = internal.Callback

// Metrics receives counts of what an authority does. See the metrics package.
type Metrics = internal.Metrics

// Handle identifies a subscription. The zero Handle matches nothing.
type Handle struct {
	id internal.SubscriptionID
}

// IsZero reports whether the handle was never returned by Subscribe.
func (h Handle) IsZero() bool { return h.id == 0 }

// ListenerID identifies a batch listener.
type ListenerID = internal.ListenerID

// Authority evaluates predicates, memoizes their results and notifies subscribers.
//
// An Authority is not safe for concurrent use; drive it from one goroutine
// (see Default for a per-goroutine instance).
type Authority struct {
	engine *internal.Authority
}

// NewAuthority creates an authority reading variables from the configured context.
func NewAuthority(opts ...Option) *Authority {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Authority{engine: newEngine(o)}
}

func newEngine(o *options) *internal.Authority {
	logger := log.WithComponent(o.logger, "evaluation").With("authority", uuid.NewString())

	engine := internal.NewAuthority(internal.Config{
		Context:           o.ctx,
		Logger:            logger,
		Metrics:           o.metrics,
		ThrottleCapacity:  o.throttleCapacity,
		ThrottleThreshold: o.throttleThreshold,
	})

	for name, tier := range o.tiers {
		engine.Tiers().Register(name, tier)
	}

	return engine
}

// Context returns the variables predicates are evaluated against.
func (a *Authority) Context() VariableContext { return a.engine.Context() }

// SetContext replaces the variables predicates are evaluated against.
// Cached results are kept until the affected names are notified.
func (a *Authority) SetContext(ctx VariableContext) { a.engine.SetContext(ctx) }

// Subscribe registers a predicate (nil means always true), evaluates it and calls cb with
// (None, result) before returning.
func (a *Authority) Subscribe(p Predicate, cb Callback, opts ...SubscribeOption) Handle {
	o := subscribeOptions{notifications: true}
	for _, opt := range opts {
		opt(&o)
	}

	s := a.engine.Subscribe(p, cb, o.notifications)
	return Handle{id: s.ID()}
}

// Unsubscribe calls the subscription's callback with (last, None) and removes it.
// Unknown handles are ignored.
func (a *Authority) Unsubscribe(h Handle) { a.engine.Unsubscribe(h.id) }

// SetNotificationsEnabled turns callback delivery on or off without touching the cached result.
// It reports whether the handle is known.
func (a *Authority) SetNotificationsEnabled(h Handle, enabled bool) bool {
	return a.engine.SetNotificationsEnabled(h.id, enabled)
}

// Result returns the subscription's current result, evaluating it if needed.
func (a *Authority) Result(h Handle) (Result, bool) { return a.engine.Result(h.id) }

// Priority returns the priority computed for the subscription when it was registered.
func (a *Authority) Priority(h Handle) (uint32, bool) {
	s, ok := a.engine.Lookup(h.id)
	if !ok {
		return 0, false
	}

	return s.Priority(), true
}

// NotifyChanged tells the authority that the named variables changed.
// Every predicate reading one of them is re-evaluated once, and subscriptions
// whose result changed are called back.
func (a *Authority) NotifyChanged(names ...string) { a.engine.NotifyChanged(names) }

// NotifyTiersChanged notifies every variable registered with a tier intersecting mask.
func (a *Authority) NotifyTiersChanged(mask uint32) { a.engine.NotifyTiersChanged(mask) }

// BeginChange opens a batch by hand. Every BeginChange needs a matching EndChange.
func (a *Authority) BeginChange(names ...string) { a.engine.BeginChange(names) }

// EndChange closes a batch opened with BeginChange.
func (a *Authority) EndChange(names ...string) { a.engine.EndChange(names) }

// Batching reports whether a change is in progress.
func (a *Authority) Batching() bool { return a.engine.IsBatching() }

// RegisterPriorityTier maps a variable name to a priority tier.
// Only subscriptions registered afterwards use it.
func (a *Authority) RegisterPriorityTier(name string, tier uint32) {
	a.engine.Tiers().Register(name, tier)
}

// RegisterPriorityTiers registers every entry of tiers.
func (a *Authority) RegisterPriorityTiers(tiers map[string]uint32) {
	for name, tier := range tiers {
		a.RegisterPriorityTier(name, tier)
	}
}

// AddBatchListener registers fn to be called with true when a batch starts and false when it ends.
func (a *Authority) AddBatchListener(fn func(batching bool)) ListenerID {
	return a.engine.AddBatchListener(fn)
}

// RemoveBatchListener unregisters a batch listener.
func (a *Authority) RemoveBatchListener(id ListenerID) bool {
	return a.engine.RemoveBatchListener(id)
}

// Sort orders handles most specific first, then by registration. Unknown handles are dropped.
func (a *Authority) Sort(handles []Handle) []Handle {
	ids := make([]internal.SubscriptionID, len(handles))
	for i, h := range handles {
		ids[i] = h.id
	}

	subs := a.engine.Sort(ids)

	sorted := make([]Handle, len(subs))
	for i, s := range subs {
		sorted[i] = Handle{id: s.ID()}
	}

	return sorted
}

// FirstMatch returns the first handle in Sort order whose result is true.
func (a *Authority) FirstMatch(handles []Handle) (Handle, bool) {
	for _, h := range a.Sort(handles) {
		if r, ok := a.Result(h); ok && r.Bool() {
			return h, true
		}
	}

	return Handle{}, false
}

// Len returns the number of live subscriptions.
func (a *Authority) Len() int { return a.engine.Len() }

type options struct {
	ctx     VariableContext
	logger  *slog.Logger
	metrics Metrics
	tiers   map[string]uint32

	throttleCapacity  int
	throttleThreshold int
}

func defaultOptions() *options {
	return &options{
		ctx:               NewMapContext(nil),
		logger:            slog.Default(),
		throttleCapacity:  internal.DefaultThrottleCapacity,
		throttleThreshold: internal.DefaultThrottleThreshold,
	}
}

// Option configures an Authority.
type Option func(*options)

// WithContext sets the variables predicates read. Defaults to an empty MapContext.
func WithContext(ctx VariableContext) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithLogger sets the logger faults are reported to. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithThrottle bounds fault logging: at most capacity distinct messages are
// tracked and each is logged at most threshold times.
func WithThrottle(capacity, threshold int) Option {
	return func(o *options) {
		o.throttleCapacity = capacity
		o.throttleThreshold = threshold
	}
}

// WithTiers registers priority tiers before any subscription is made.
func WithTiers(tiers map[string]uint32) Option {
	return func(o *options) { o.tiers = tiers }
}

type subscribeOptions struct {
	notifications bool
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeOptions)

// WithNotificationsDisabled subscribes without callback delivery, baseline included.
// Enable it later with SetNotificationsEnabled.
func WithNotificationsDisabled() SubscribeOption {
	return func(o *subscribeOptions) { o.notifications = false }
}
