package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"consequence/internal/game"
	"consequence/stories"
)

func scene(id string, targets ...string) *game.Scene {
	sc := &game.Scene{ID: id, Text: id, Choices: []game.Choice{}}
	for i, t := range targets {
		sc.Choices = append(sc.Choices, game.Choice{ID: fmt.Sprint(i), Text: "go", GoTo: t})
	}
	return sc
}

func assertWellFormed(t *testing.T, db *Database, opts Options) {
	t.Helper()
	opts = opts.withDefaults()
	require.Contains(t, db.Scenes, db.Meta.Start)
	assert.Len(t, db.Meta.Endings, opts.Endings)
	assert.Len(t, db.Order, db.Meta.Total)
	assert.Len(t, db.Scenes, len(db.Order))
	for _, id := range db.Meta.Endings {
		assert.Contains(t, db.Scenes, id)
	}
	for id, sc := range db.Scenes {
		for _, ch := range sc.Choices {
			assert.NotEqual(t, id, ch.GoTo, "scene %s loops to itself", id)
		}
	}
}

func TestNormalize_PadsToTotal(t *testing.T) {
	in := []*game.Scene{scene("intro", "a"), scene("a", "ending_good"), scene("ending_good")}
	opts := Options{Endings: 3, Total: 10}

	db, rep := Normalize(in, opts)

	assertWellFormed(t, db, opts)
	assert.Equal(t, 10, db.Meta.Total)
	assert.Equal(t, "intro", db.Meta.Start)
	assert.Equal(t, []string{"ending_good", "ending_synth_0", "ending_synth_1"}, db.Meta.Endings)
	assert.Equal(t, 2, rep.Synthesized)
	assert.Equal(t, 5, rep.Padded)

	filler := db.Scenes["filler_0"]
	require.NotNil(t, filler)
	assert.Equal(t, "...the days blur together.", filler.Text)
	require.Len(t, filler.Choices, 1)
	assert.Equal(t, "ending_good", filler.Choices[0].GoTo)
}

func TestNormalize_TrimKeepsStartAndEndings(t *testing.T) {
	var in []*game.Scene
	for i := 0; i < 20; i++ {
		in = append(in, scene(fmt.Sprintf("s%d", i), "ending_x"))
	}
	in = append(in, scene("ending_x"), scene("intro", "s0"))

	opts := Options{Endings: 1, Total: 5}
	db, rep := Normalize(in, opts)

	assertWellFormed(t, db, opts)
	assert.Equal(t, []string{"intro", "ending_x", "s0", "s1", "s2"}, db.Order)
	assert.Equal(t, 17, rep.Trimmed)
}

func TestNormalize_RewritesSelfLoops(t *testing.T) {
	in := []*game.Scene{scene("intro", "intro", "b"), scene("b", "b"), scene("ending_a", "ending_a"), scene("ending_b")}
	opts := Options{Endings: 2, Total: 4}

	db, rep := Normalize(in, opts)

	assertWellFormed(t, db, opts)
	assert.Equal(t, 3, rep.Rewritten)
	assert.Equal(t, "ending_a", db.Scenes["intro"].Choices[0].GoTo)
	assert.Equal(t, "ending_a", db.Scenes["b"].Choices[0].GoTo)
	assert.Equal(t, "ending_b", db.Scenes["ending_a"].Choices[0].GoTo)
}

func TestNormalize_SelfLoopWithoutEscapeIsDropped(t *testing.T) {
	in := []*game.Scene{scene("intro", "x"), scene("ending_only", "ending_only")}
	opts := Options{Endings: 1, Total: 2}

	db, rep := Normalize(in, opts)

	assertWellFormed(t, db, opts)
	assert.Equal(t, 1, rep.Rewritten)
	assert.Empty(t, db.Scenes["ending_only"].Choices)
}

func TestNormalize_DetectsEndings(t *testing.T) {
	in := []*game.Scene{
		scene("intro", "a"),
		{ID: "quiet", Kind: "ending", Text: "q"},
		scene("bad_ending"),
		scene("ending_loud", "intro"),
		scene("pending_work", "intro"),
	}
	opts := Options{Endings: 3, Total: 5}

	db, rep := Normalize(in, opts)

	assert.Equal(t, []string{"quiet", "bad_ending", "ending_loud"}, db.Meta.Endings)
	assert.Zero(t, rep.Synthesized)
}

func TestNormalize_TruncatesEndings(t *testing.T) {
	in := []*game.Scene{scene("intro"), scene("ending_1"), scene("ending_2"), scene("ending_3")}
	db, _ := Normalize(in, Options{Endings: 2, Total: 4})
	assert.Equal(t, []string{"ending_1", "ending_2"}, db.Meta.Endings)
}

func TestNormalize_StartFallsBackToFirstScene(t *testing.T) {
	in := []*game.Scene{scene("opening", "ending_a"), scene("ending_a")}
	db, _ := Normalize(in, Options{Endings: 1, Total: 2})
	assert.Equal(t, "opening", db.Meta.Start)
}

func TestNormalize_EmptyInput(t *testing.T) {
	opts := Options{Endings: 2, Total: 6}
	db, rep := Normalize(nil, opts)

	assertWellFormed(t, db, opts)
	assert.Equal(t, "intro", db.Meta.Start)
	require.Len(t, db.Scenes["intro"].Choices, 1)
	assert.Equal(t, "ending_synth_0", db.Scenes["intro"].Choices[0].GoTo)
	assert.Equal(t, 2, rep.Synthesized)
}

func TestNormalize_TotalBelowKeepers(t *testing.T) {
	in := []*game.Scene{scene("intro"), scene("a"), scene("b")}
	opts := Options{Endings: 3, Total: 2}

	db, _ := Normalize(in, opts)

	assert.Equal(t, 4, db.Meta.Total)
	assert.Equal(t, []string{"intro", "ending_synth_0", "ending_synth_1", "ending_synth_2"}, db.Order)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := []*game.Scene{scene("intro", "intro"), scene("ending_a")}
	Normalize(in, Options{Endings: 1, Total: 3})
	assert.Equal(t, "intro", in[0].Choices[0].GoTo)
}

func TestNormalize_Idempotent(t *testing.T) {
	cases := map[string][]*game.Scene{
		"pad":   {scene("a", "a", "ending_z"), scene("ending_z"), scene("later_ending")},
		"trim":  {scene("x1", "x2"), scene("x2", "x1"), scene("x3"), scene("ending_q"), scene("x4"), scene("intro", "x1")},
		"empty": nil,
	}
	opts := Options{Endings: 2, Total: 5}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			first, _ := Normalize(in, opts)
			second, rep := Normalize(ordered(first), opts)

			assert.False(t, rep.Changed(), "second pass changed: %s", rep)
			assert.Equal(t, first.Meta, second.Meta)
			assert.Equal(t, first.Order, second.Order)
			for _, id := range first.Order {
				assert.Equal(t, first.Scenes[id].Choices, second.Scenes[id].Choices, id)
			}
		})
	}
}

func TestNormalize_DefaultStory(t *testing.T) {
	story, err := game.ParseStory(stories.Consequence)
	require.NoError(t, err)

	db, rep := Normalize(FromStory(story), Options{})

	assertWellFormed(t, db, Options{})
	assert.Equal(t, DefaultTotal, db.Meta.Total)
	assert.Equal(t, "intro", db.Meta.Start)
	assert.Zero(t, rep.Rewritten)
}

func TestDatabase_YAMLRoundTrip(t *testing.T) {
	in := []*game.Scene{scene("intro", "b"), scene("b", "ending_a"), scene("ending_a")}
	opts := Options{Endings: 2, Total: 6}
	db, _ := Normalize(in, opts)

	out, err := yaml.Marshal(db)
	require.NoError(t, err)

	var doc struct {
		Meta Meta `yaml:"meta"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, db.Meta, doc.Meta)

	scenes, err := DecodeScenes(out)
	require.NoError(t, err)
	again, rep := Normalize(scenes, opts)
	assert.False(t, rep.Changed(), "re-normalizing the written file changed: %s", rep)
	assert.Equal(t, db.Order, again.Order)
}

func TestDecodeScenes_Invalid(t *testing.T) {
	_, err := DecodeScenes([]byte("- a\n- b\n"))
	assert.Error(t, err)

	_, err = DecodeScenes([]byte("scenes: [1, 2]\n"))
	assert.Error(t, err)

	scenes, err := DecodeScenes(nil)
	assert.NoError(t, err)
	assert.Empty(t, scenes)
}

func ordered(db *Database) []*game.Scene {
	out := make([]*game.Scene, 0, len(db.Order))
	for _, id := range db.Order {
		out = append(out, db.Scenes[id])
	}
	return out
}
