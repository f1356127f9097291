package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consequence/internal/game"
	"consequence/internal/play"
	"consequence/internal/session"
)

func testModel(t *testing.T) model {
	t.Helper()
	story := &game.Story{
		Start:    "a",
		Fallback: "ending_one",
		Scenes: map[string]*game.Scene{
			"a": {Text: "Scene A", Choices: []game.Choice{
				{ID: "go", Text: "Go on", Effects: game.Effects{"trauma": 30}, GoTo: "b"},
			}},
			"b": {Text: "Scene B", Choices: []game.Choice{
				{ID: "end", Text: "Stop", GoTo: game.TheEnd},
			}},
		},
		Endings: []*game.Ending{{ID: "ending_one", Title: "One", Text: "Over.", When: &game.Criteria{Flags: []string{"x"}}}},
	}
	eng, err := game.NewEngine(story, nil)
	require.NoError(t, err)
	return NewModel(eng, play.Options{Saves: session.NewMemoryStore[[]byte]()})
}

func press(t *testing.T, m model, key string) model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next.(model)
}

func TestModel_StartsOnFirstScene(t *testing.T) {
	m := testModel(t)
	require.NotNil(t, m.screen.scene)
	assert.Equal(t, "a", m.screen.scene.ID)
	assert.Contains(t, m.View(), "Scene A")
	assert.Contains(t, m.View(), "1  Go on")
}

func TestModel_ChooseByKey(t *testing.T) {
	m := press(t, testModel(t), "1")

	require.NotNil(t, m.screen.scene)
	assert.Equal(t, "b", m.screen.scene.ID)
	assert.Equal(t, play.TierMedium, m.screen.scene.Status.TraumaTier)
	require.Len(t, m.screen.log, 1)
	assert.Equal(t, "trauma +30", m.screen.log[0].Message)

	m = press(t, m, "1")
	require.NotNil(t, m.screen.ending)
	assert.Contains(t, m.View(), "ONE")

	m = press(t, m, "1")
	assert.Contains(t, m.notice, "story is over")
}

func TestModel_UnshownKeyIgnored(t *testing.T) {
	m := press(t, testModel(t), "3")
	assert.Equal(t, "a", m.screen.scene.ID)
}

func TestModel_SaveLoadRestart(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "1")
	m = press(t, m, "s")
	m = press(t, m, "r")
	assert.Equal(t, "a", m.screen.scene.ID)

	m = press(t, m, "l")
	assert.Equal(t, "b", m.screen.scene.ID)
	assert.Equal(t, play.MsgLoaded, m.screen.log[len(m.screen.log)-1].Message)
}

func TestModel_Quit(t *testing.T) {
	_, cmd := testModel(t).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_WindowSize(t *testing.T) {
	next, _ := testModel(t).Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m := next.(model)
	assert.Equal(t, 100, m.viewport.Width)
	assert.Equal(t, 10, m.viewport.Height)
}
