package internal

import (
	"fmt"

	"github.com/AnatoleLucet/evaluation/internal/log"
)

type mapContext map[string]any

func (m mapContext) Variable(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// countingPredicate reads vars from a mapContext and counts its evaluations.
type countingPredicate struct {
	vars  []string
	calls int
	fn    func(VariableContext) (bool, error)
}

func (p *countingPredicate) Evaluate(ctx VariableContext) (bool, error) {
	p.calls++
	return p.fn(ctx)
}

func (p *countingPredicate) Variables() []string { return p.vars }

// truthy holds when the named variable is true.
func truthy(name string) *countingPredicate {
	return &countingPredicate{
		vars: []string{name},
		fn: func(ctx VariableContext) (bool, error) {
			v, _ := ctx.Variable(name)
			return v == true, nil
		},
	}
}

func newTestAuthority(ctx VariableContext) *Authority {
	return NewAuthority(Config{Context: ctx, Logger: log.Discard()})
}

func recorder(log *[]string, name string) Callback {
	return func(old, new Result) {
		*log = append(*log, fmt.Sprintf("%s %s -> %s", name, old, new))
	}
}

// boxed is comparable by type but may hold an unhashable value.
type boxed struct{ v any }

func (boxed) Evaluate(VariableContext) (bool, error) { return true, nil }

func (boxed) Variables() []string { return []string{"x"} }

type panickyVariables struct{}

func (panickyVariables) Evaluate(VariableContext) (bool, error) { return true, nil }

func (panickyVariables) Variables() []string { panic("no variables today") }
