package internal

import "fmt"

// DefaultVariable is the name under which predicates that declare no variables are indexed.
const DefaultVariable = "selection"

// VariableContext is the read-only view of the host's variables a predicate evaluates against.
type VariableContext interface {
	Variable(name string) (any, bool)
}

// Predicate is a side-effect-free boolean function over a VariableContext.
type Predicate interface {
	Evaluate(ctx VariableContext) (bool, error)

	// Variables reports the names the predicate reads, without evaluating it.
	Variables() []string
}

type emptyContext struct{}

func (emptyContext) Variable(string) (any, bool) { return nil, false }

// ReadVariables returns the distinct names a predicate is indexed under, in declaration order.
// explicit is false when the predicate is absent or declares nothing,
// in which case the only name is DefaultVariable.
// A panicking Variables is reported as err and treated as declaring nothing.
func ReadVariables(p Predicate) (names []string, explicit bool, err error) {
	if p == nil {
		return []string{DefaultVariable}, false, nil
	}

	declared, err := declaredVariables(p)

	seen := make(map[string]struct{})
	for _, name := range declared {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if len(names) == 0 {
		return []string{DefaultVariable}, false, err
	}

	return names, true, nil
}

func declaredVariables(p Predicate) (vars []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			vars, err = nil, fmt.Errorf("variables panic: %v", r)
		}
	}()

	return p.Variables(), nil
}
