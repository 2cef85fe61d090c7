package evaluation

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSort(t *testing.T) {
	tiers := map[string]uint32{"window": 2, "part": 8, "site": 16}

	t.Run("deterministic across shuffles", func(t *testing.T) {
		auth := newTestAuthority(NewMapContext(nil), WithTiers(tiers))

		var handles []Handle
		for _, name := range []string{"window", "part", "site", "nothing", "part", "window", "site"} {
			handles = append(handles, auth.Subscribe(Func(func(VariableContext) (bool, error) {
				return true, nil
			}, name), nil))
		}

		r := rand.New(rand.NewPCG(7, 11))

		first := slices.Clone(handles)
		r.Shuffle(len(first), func(i, j int) { first[i], first[j] = first[j], first[i] })

		second := slices.Clone(handles)
		r.Shuffle(len(second), func(i, j int) { second[i], second[j] = second[j], second[i] })

		sorted := auth.Sort(first)
		assert.Equal(t, sorted, auth.Sort(second))
		assert.Equal(t, []Handle{
			handles[2], handles[6], // site
			handles[1], handles[4], // part
			handles[0], handles[5], // window
			handles[3], // unknown name
		}, sorted)
	})

	t.Run("first match wins", func(t *testing.T) {
		vars := NewMapContext(map[string]any{"part": "editor", "window": "main"})
		auth := newTestAuthority(vars, WithTiers(tiers))

		generic := auth.Subscribe(MustExpr(`window == "main"`), nil)
		editor := auth.Subscribe(MustExpr(`part == "editor"`), nil)
		console := auth.Subscribe(MustExpr(`part == "console"`), nil)
		handlers := []Handle{generic, editor, console}

		h, ok := auth.FirstMatch(handlers)
		assert.True(t, ok)
		assert.Equal(t, editor, h)

		vars.Set("part", "outline")
		auth.NotifyChanged("part")

		h, ok = auth.FirstMatch(handlers)
		assert.True(t, ok)
		assert.Equal(t, generic, h)

		vars.Set("window", "other")
		auth.NotifyChanged("window")

		_, ok = auth.FirstMatch(handlers)
		assert.False(t, ok)
	})
}
