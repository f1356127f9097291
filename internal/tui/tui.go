// Package tui is the terminal front end: the scene on the left, the
// survivor's status on the right and the event log underneath.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"consequence/internal/game"
	"consequence/internal/play"
)

var (
	sceneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			PaddingRight(2)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5F5F87")).
			PaddingLeft(1).
			PaddingRight(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	tierColors = map[string]lipgloss.Color{
		play.TierGood:    "#8FC48A",
		play.TierNeutral: "#AAAAAA",
		play.TierBad:     "#D0665A",
		play.TierLow:     "#AAAAAA",
		play.TierMedium:  "#D9B45A",
		play.TierHigh:    "#D0665A",
	}

	categoryColors = map[string]lipgloss.Color{
		game.CategoryConsequence: "#B8B0A0",
		game.CategoryWorldEvent:  "#8AB0D0",
		game.CategoryDiscovery:   "#8FC48A",
		game.CategoryTrauma:      "#D0665A",
	}
)

// screen is the render sink. It outlives model copies.
type screen struct {
	scene  *play.SceneView
	ending *play.EndingView
	log    []game.LogEntry
}

func (s *screen) Scene(v play.SceneView)   { s.scene, s.ending = &v, nil }
func (s *screen) Ending(v play.EndingView) { s.ending, s.scene = &v, nil }
func (s *screen) Log(e game.LogEntry)      { s.log = append(s.log, e) }

type model struct {
	session  *play.Session
	screen   *screen
	viewport viewport.Model
	width    int
	height   int
	notice   string
}

// NewModel builds the model and begins the run. opts.Sink is replaced by
// the terminal screen.
func NewModel(engine *game.Engine, opts play.Options) model {
	scr := &screen{}
	opts.Sink = scr
	sess := play.New(engine, nil, opts)
	sess.Begin()
	return model{
		session:  sess,
		screen:   scr,
		viewport: viewport.New(80, 6),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.notice = ""
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "1", "2", "3", "4":
			m.choose(int(msg.Runes[0] - '0'))
		case "s":
			if err := m.session.Save(context.Background()); err != nil {
				m.notice = "Save failed: " + err.Error()
			}
		case "l":
			if err := m.session.Load(context.Background()); err != nil {
				m.notice = "Load failed: " + err.Error()
			}
		case "r":
			m.session.Restart()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.refreshLog()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height/3, 3)
		m.refreshLog()
	}
	return m, nil
}

// choose takes the choice shown under key n, if any.
func (m *model) choose(n int) {
	if m.screen.scene == nil {
		m.notice = "The story is over. Press r to start again."
		return
	}
	for _, c := range m.screen.scene.Choices {
		if c.Key == n {
			if _, err := m.session.Choose(c.ID); err != nil {
				m.notice = err.Error()
			}
			return
		}
	}
}

func (m *model) refreshLog() {
	lines := make([]string, 0, len(m.screen.log))
	for _, e := range m.screen.log {
		style := lipgloss.NewStyle().Foreground(categoryColors[e.Category])
		lines = append(lines, style.Render("• "+e.Message))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	mainWidth := 60
	if m.width > 0 {
		mainWidth = int(float64(m.width) * 0.7)
	}

	var main string
	var status play.Status
	switch {
	case m.screen.ending != nil:
		e := m.screen.ending
		status = e.Status
		main = titleStyle.Render(strings.ToUpper(e.Title)) + "\n\n" +
			sceneStyle.Width(mainWidth).Render(e.Text) + "\n\n" +
			helpStyle.Render("Press r to live it again.")
	case m.screen.scene != nil:
		sc := m.screen.scene
		status = sc.Status
		var b strings.Builder
		b.WriteString(sceneStyle.Width(mainWidth).Render(sc.Text))
		b.WriteString("\n\n")
		for _, c := range sc.Choices {
			b.WriteString(choiceStyle.Render(fmt.Sprintf("%d  %s", c.Key, c.Text)))
			b.WriteString("\n")
		}
		main = b.String()
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, main, m.renderStatus(status))
	help := helpStyle.Render("1-4 choose · s save · l load · r restart · q quit")
	parts := []string{top, "", m.viewport.View()}
	if m.notice != "" {
		parts = append(parts, helpStyle.Render(m.notice))
	}
	parts = append(parts, help)
	return "\n" + lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m model) renderStatus(st play.Status) string {
	tier := func(label string, v int, t string) string {
		return lipgloss.NewStyle().Foreground(tierColors[t]).Render(fmt.Sprintf("%s: %d (%s)", label, v, t))
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("TIME") + "\n" + st.Clock + "\n\n")
	b.WriteString(titleStyle.Render("CONDITION") + "\n")
	b.WriteString(tier("Morality", st.Morality, st.MoralityTier) + "\n")
	b.WriteString(tier("Trauma", st.Trauma, st.TraumaTier) + "\n")
	b.WriteString(tier("Stress", st.Stress, st.StressTier) + "\n\n")
	b.WriteString(titleStyle.Render("INVENTORY") + "\n")
	if len(st.Inventory) == 0 {
		b.WriteString("(empty)")
	}
	for _, item := range st.Inventory {
		b.WriteString("- " + item + "\n")
	}
	return stateStyle.Render(b.String())
}

// Run starts the terminal client and blocks until the player quits.
func Run(engine *game.Engine, opts play.Options) error {
	p := tea.NewProgram(NewModel(engine, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
