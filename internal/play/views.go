package play

import (
	"slices"

	"consequence/internal/game"
)

// Tier labels for the status panel.
const (
	TierGood    = "good"
	TierNeutral = "neutral"
	TierBad     = "bad"
	TierLow     = "low"
	TierMedium  = "medium"
	TierHigh    = "high"
)

// Status is the stat panel shown beside every scene.
type Status struct {
	Clock        string
	Morality     int
	Trauma       int
	Stress       int
	MoralityTier string
	TraumaTier   string
	StressTier   string
	Inventory    []string
}

// ChoiceView is one button. Key is the 1-based shortcut.
type ChoiceView struct {
	ID   string
	Text string
	Key  int
}

// SceneView is a settled, non-terminal transition.
type SceneView struct {
	ID      string
	Text    string
	Setting string
	Choices []ChoiceView
	Status  Status
}

// EndingView is the resolved outcome of a run.
type EndingView struct {
	ID     string
	Title  string
	Text   string
	Status Status
}

// StatusOf builds the stat panel for st.
func StatusOf(st *game.State) Status {
	return Status{
		Clock:        st.Clock(),
		Morality:     st.Morality,
		Trauma:       st.Trauma,
		Stress:       st.Stress,
		MoralityTier: MoralityTier(st.Morality),
		TraumaTier:   PressureTier(st.Trauma),
		StressTier:   PressureTier(st.Stress),
		Inventory:    slices.Clone(st.Inventory),
	}
}

// MoralityTier classifies morality: above 15 is good, below -15 is bad.
func MoralityTier(v int) string {
	switch {
	case v > 15:
		return TierGood
	case v < -15:
		return TierBad
	default:
		return TierNeutral
	}
}

// PressureTier classifies trauma and stress.
func PressureTier(v int) string {
	switch {
	case v > 66:
		return TierHigh
	case v > 33:
		return TierMedium
	default:
		return TierLow
	}
}

func sceneView(sc *game.Scene, choices []game.Choice, st *game.State) SceneView {
	v := SceneView{
		ID:      sc.ID,
		Text:    sc.Text,
		Setting: sc.Setting,
		Choices: make([]ChoiceView, 0, len(choices)),
		Status:  StatusOf(st),
	}
	for i, ch := range choices {
		v.Choices = append(v.Choices, ChoiceView{ID: ch.ID, Text: ch.Text, Key: i + 1})
	}
	return v
}

func endingView(e *game.Ending, st *game.State) EndingView {
	return EndingView{ID: e.ID, Title: e.Title, Text: e.Text, Status: StatusOf(st)}
}
