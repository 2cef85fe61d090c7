package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `
variables:
  x: 1
  part: editor
tiers:
  part: 8
predicates:
  - name: positive
    when: "x > 0"
  - name: editor
    when: 'part == "editor"'
  - name: always
steps:
  - set: {x: -1}
  - disable: [editor]
    set: {part: console}
  - enable: [editor]
    unset: [x]
    remove: [always]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRun(t *testing.T) {
	t.Run("prints notifications", func(t *testing.T) {
		path := writeFile(t, "scenario.yaml", scenario)

		out, _, err := execute(t, "run", path)
		require.NoError(t, err)

		assert.Equal(t, `positive: none -> true
editor: none -> true
always: none -> true
step 1
batch start
positive: true -> false
batch end
step 2
batch start
batch end
step 3
batch start
batch end
always: true -> none
`, out)
	})

	t.Run("missing variables fail as false", func(t *testing.T) {
		path := writeFile(t, "scenario.yaml", `
variables: {x: 1}
predicates:
  - name: positive
    when: "x > 0"
steps:
  - unset: [x]
`)

		out, logs, err := execute(t, "run", "--log-level", "error", path)
		require.NoError(t, err)

		assert.Contains(t, out, "positive: true -> false")
		assert.Contains(t, logs, "evaluation fault")
	})

	t.Run("invalid scenarios", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
		}{
			{"unnamed predicate", "predicates:\n  - when: x\n"},
			{"duplicate predicate", "predicates:\n  - name: a\n  - name: a\n"},
			{"unknown step reference", "predicates:\n  - name: a\nsteps:\n  - remove: [b]\n"},
			{"bad expression", "predicates:\n  - name: a\n    when: 'x >'\n"},
			{"bad yaml", "predicates: [\n"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := execute(t, "run", writeFile(t, "scenario.yaml", tt.content))
				assert.Error(t, err)
			})
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "run", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestSort(t *testing.T) {
	path := writeFile(t, "scenario.yaml", scenario)
	tiers := writeFile(t, "tiers.yaml", "tiers:\n  x: 2\n  part: 4\n")

	out, _, err := execute(t, "sort", "--tiers", tiers, path)
	require.NoError(t, err)

	// the scenario's own tiers win over the file
	assert.Equal(t, "editor\t8\npositive\t2\nalways\t0\n", out)
}
