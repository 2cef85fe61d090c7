package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/evaluation"
)

// Scenario is the YAML input of evalwatch.
type Scenario struct {
	Variables  map[string]any    `yaml:"variables"`
	Tiers      map[string]uint32 `yaml:"tiers"`
	Predicates []PredicateSpec   `yaml:"predicates"`
	Steps      []Step            `yaml:"steps"`
}

type PredicateSpec struct {
	Name string `yaml:"name"`
	// When is an expr-lang expression. Empty means always true.
	When  string `yaml:"when"`
	Quiet bool   `yaml:"quiet"`
}

// Step toggles notifications, then changes variables and notifies them, then removes predicates.
type Step struct {
	Set     map[string]any `yaml:"set"`
	Unset   []string       `yaml:"unset"`
	Enable  []string       `yaml:"enable"`
	Disable []string       `yaml:"disable"`
	Remove  []string       `yaml:"remove"`
}

var errInvalidScenario = errors.New("invalid scenario")

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", path, err)
	}

	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &sc, nil
}

func (sc *Scenario) validate() error {
	seen := make(map[string]struct{}, len(sc.Predicates))
	for i, p := range sc.Predicates {
		if p.Name == "" {
			return fmt.Errorf("%w: predicate %d has no name", errInvalidScenario, i)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("%w: duplicate predicate %q", errInvalidScenario, p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	for i, step := range sc.Steps {
		for _, name := range slices.Concat(step.Enable, step.Disable, step.Remove) {
			if _, ok := seen[name]; !ok {
				return fmt.Errorf("%w: step %d references unknown predicate %q", errInvalidScenario, i+1, name)
			}
		}
	}

	return nil
}

// subscribe registers every predicate of the scenario, printing notifications to out when it is not nil.
func subscribe(auth *evaluation.Authority, sc *Scenario, out io.Writer) (map[string]evaluation.Handle, error) {
	handles := make(map[string]evaluation.Handle, len(sc.Predicates))

	for _, spec := range sc.Predicates {
		var p evaluation.Predicate
		if spec.When != "" {
			compiled, err := evaluation.Expr(spec.When)
			if err != nil {
				return nil, fmt.Errorf("predicate %q: %w", spec.Name, err)
			}
			p = compiled
		}

		var cb evaluation.Callback
		if out != nil {
			name := spec.Name
			cb = func(old, new evaluation.Result) {
				fmt.Fprintf(out, "%s: %s -> %s\n", name, old, new)
			}
		}

		var opts []evaluation.SubscribeOption
		if spec.Quiet {
			opts = append(opts, evaluation.WithNotificationsDisabled())
		}

		handles[spec.Name] = auth.Subscribe(p, cb, opts...)
	}

	return handles, nil
}

func play(out io.Writer, auth *evaluation.Authority, vars *evaluation.MapContext, sc *Scenario) error {
	auth.AddBatchListener(func(batching bool) {
		if batching {
			fmt.Fprintln(out, "batch start")
		} else {
			fmt.Fprintln(out, "batch end")
		}
	})

	handles, err := subscribe(auth, sc, out)
	if err != nil {
		return err
	}

	for i, step := range sc.Steps {
		fmt.Fprintf(out, "step %d\n", i+1)

		for _, name := range step.Enable {
			auth.SetNotificationsEnabled(handles[name], true)
		}
		for _, name := range step.Disable {
			auth.SetNotificationsEnabled(handles[name], false)
		}

		var changed []string
		for _, name := range slices.Sorted(maps.Keys(step.Set)) {
			vars.Set(name, step.Set[name])
			changed = append(changed, name)
		}
		for _, name := range step.Unset {
			vars.Delete(name)
			changed = append(changed, name)
		}
		auth.NotifyChanged(changed...)

		for _, name := range step.Remove {
			auth.Unsubscribe(handles[name])
		}
	}

	return nil
}
