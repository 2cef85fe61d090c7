package evaluation

import (
	"fmt"

	"github.com/AnatoleLucet/evaluation/internal/log"
)

func newTestAuthority(vars *MapContext, opts ...Option) *Authority {
	return NewAuthority(append([]Option{WithContext(vars), WithLogger(log.Discard())}, opts...)...)
}

func record(log *[]string, name string) Callback {
	return func(old, new Result) {
		*log = append(*log, fmt.Sprintf("%s %s -> %s", name, old, new))
	}
}

// counted wraps a predicate and counts its evaluations.
func counted(p Predicate) (Predicate, *int) {
	calls := 0
	return Func(func(ctx VariableContext) (bool, error) {
		calls++
		return p.Evaluate(ctx)
	}, p.Variables()...), &calls
}
