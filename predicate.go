package evaluation

import (
	"maps"

	"github.com/AnatoleLucet/evaluation/internal"
)

// DefaultVariable is the variable predicates without declared variables are invalidated by.
const DefaultVariable = internal.DefaultVariable

// TierWorkbench is the coarsest priority tier, used for unknown variable names.
const TierWorkbench = internal.TierWorkbench

// VariableContext is the read-only view of the host's variables.
type VariableContext = internal.VariableContext

// Predicate is a side-effect-free boolean function over a VariableContext.
// Its identity (Go equality of the interface value) decides which subscriptions
// share an evaluation, so implementations should be pointers.
type Predicate = internal.Predicate

// MapContext is a map-backed VariableContext. Setting a variable does not
// notify anything; call NotifyChanged afterwards.
type MapContext struct {
	values map[string]any
}

func NewMapContext(values map[string]any) *MapContext {
	c := &MapContext{values: make(map[string]any, len(values))}
	maps.Copy(c.values, values)

	return c
}

func (c *MapContext) Variable(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

func (c *MapContext) Set(name string, value any) {
	c.values[name] = value
}

func (c *MapContext) Delete(name string) {
	delete(c.values, name)
}

// Snapshot returns a copy of the variables.
func (c *MapContext) Snapshot() map[string]any {
	return maps.Clone(c.values)
}

// FuncPredicate is a Go function reading a declared set of variables.
type FuncPredicate struct {
	fn   func(VariableContext) (bool, error)
	vars []string
}

// Func creates a predicate from fn. vars are the names fn reads; with none it
// is invalidated by DefaultVariable.
func Func(fn func(VariableContext) (bool, error), vars ...string) *FuncPredicate {
	return &FuncPredicate{fn: fn, vars: vars}
}

func (p *FuncPredicate) Evaluate(ctx VariableContext) (bool, error) { return p.fn(ctx) }
func (p *FuncPredicate) Variables() []string                       { return p.vars }

// LegacyPredicate adapts an enabler that only looks at the current selection.
type LegacyPredicate struct {
	enabled func(selection any) bool
}

// Legacy wraps fn, which receives the value of DefaultVariable.
func Legacy(fn func(selection any) bool) *LegacyPredicate {
	return &LegacyPredicate{enabled: fn}
}

func (p *LegacyPredicate) Evaluate(ctx VariableContext) (bool, error) {
	selection, _ := ctx.Variable(DefaultVariable)
	return p.enabled(selection), nil
}

func (p *LegacyPredicate) Variables() []string { return nil }

type constPredicate struct {
	value bool
}

func (p *constPredicate) Evaluate(VariableContext) (bool, error) { return p.value, nil }
func (p *constPredicate) Variables() []string                   { return nil }

var (
	// True always holds.
	True Predicate = &constPredicate{value: true}
	// False never holds.
	False Predicate = &constPredicate{value: false}
)
